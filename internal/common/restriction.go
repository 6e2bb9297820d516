package common

import "time"

// A restriction means that only the specified number of requests
// are allowed for a specific time duration
type Restriction struct {
	Requests int
	Duration time.Duration
}

// Analyse the recent history of requests and find out
// if a new request at the provided time should be allowed or not
func (rest *Restriction) Analyse(history []time.Time, now time.Time) Analysis {

	// No requests configured means no restriction at all
	if rest.Requests <= 0 {
		return Analysis{true, 0}
	}

	// Compute the number of requests that have been served in my duration.
	// Start counting from the end.
	// If one request is too old, the rest will be too
	count := 0
	for i := len(history) - 1; i >= 0; i-- {
		if now.Sub(history[i]) >= rest.Duration {
			break
		}
		count++
	}
	if count < rest.Requests {
		return Analysis{true, 0}
	}

	// The request that has to expire before a new one fits
	oldestRequestTime := history[len(history)-rest.Requests]
	return Analysis{false, oldestRequestTime.Add(rest.Duration).Sub(now)}
}
