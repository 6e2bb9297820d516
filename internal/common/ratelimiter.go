package common

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

type Analysis struct {
	allowed bool          // If the request is allowed
	wait    time.Duration // The minimal time to wait before the request is allowed
}

func (a Analysis) Allowed() bool {
	return a.allowed
}

func (a Analysis) Wait() time.Duration {
	return a.wait
}

type RateLimiter struct {
	mu           sync.Mutex
	restrictions []Restriction    // Restrictions to consider
	history      []time.Time      // History of requests, oldest first
	duration     time.Duration    // Longest duration among the restrictions
	now          func() time.Time // Clock, replaceable in tests
}

func NewRateLimiter(restrictions []Restriction) *RateLimiter {
	rl := &RateLimiter{now: time.Now}
	rl.restrictions = make([]Restriction, len(restrictions))
	copy(rl.restrictions, restrictions)
	for _, restriction := range restrictions {
		if restriction.Duration > rl.duration {
			rl.duration = restriction.Duration
		}
	}
	return rl
}

// Decide if a request is allowed right now.
// An allowed request is recorded in the history straight away,
// a rejected one reports how long to wait before trying again
func (rl *RateLimiter) Allow() Analysis {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.trim(now)
	analysis := rl.analyse(now)
	if !analysis.allowed {
		log.Warn().Msg(fmt.Sprintf("Rejecting request, restrictions lift in %.0f seconds", analysis.wait.Seconds()))
		return analysis
	}
	rl.history = append(rl.history, now)
	return analysis
}

// Trim the current history, leaving only the requests
// that are young enough to be affected by at least one restriction
func (rl *RateLimiter) trim(now time.Time) {
	index := 0
	for i := len(rl.history) - 1; i >= 0; i-- {
		if now.Sub(rl.history[i]) >= rl.duration {
			index = i + 1
			break
		}
	}
	rl.history = rl.history[index:]
}

func (rl *RateLimiter) analyse(now time.Time) Analysis {

	// Merge the analyses of every restriction
	var wait time.Duration = 0
	allowed := true
	for _, restriction := range rl.restrictions {
		analysis := restriction.Analyse(rl.history, now)
		allowed = allowed && analysis.allowed
		if analysis.wait > wait {
			wait = analysis.wait
		}
	}
	return Analysis{allowed, wait}
}
