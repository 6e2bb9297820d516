package rsi

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
)

// Citizen pages of the RSI website
const BASE_URL = "https://robertsspaceindustries.com/citizens/"

// Where the interesting fields live inside a citizen page
const (
	BIO_XPATH        = "//div[@class='value' and not(strong)]"
	AVATAR_SELECTOR  = ".profile-avatar"
	AVATAR_ATTRIBUTE = "src"
)

const (
	BIO_NOT_FOUND    = "Bio not found"
	AVATAR_NOT_FOUND = "Avatar not found"
)

// Maximum time to wait for each field to show up
const FIELD_TIMEOUT = 10 * time.Second

type Profile struct {
	Handle    string
	Bio       string
	AvatarURL string
	SourceURL string
}

// The lookup could not be performed at all.
// Missing fields are not errors, they resolve to placeholders
type ScrapeError struct {
	Handle string
	Err    error
}

func (e *ScrapeError) Error() string {
	return fmt.Sprintf("lookup of %s failed: %v", e.Handle, e.Err)
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

type Scraper struct {
	launcher     Launcher
	baseURL      string
	fieldTimeout time.Duration
	sessions     *semaphore.Weighted
}

// Create a scraper that keeps at most maxSessions browsers alive at the same time
func NewScraper(launcher Launcher, baseURL string, maxSessions int64) *Scraper {
	if baseURL == "" {
		baseURL = BASE_URL
	}
	if maxSessions < 1 {
		maxSessions = 1
	}
	return &Scraper{
		launcher:     launcher,
		baseURL:      baseURL,
		fieldTimeout: FIELD_TIMEOUT,
		sessions:     semaphore.NewWeighted(maxSessions),
	}
}

// Url of the citizen page of the provided handle
func (scraper *Scraper) ProfileURL(handle string) string {
	return scraper.baseURL + url.PathEscape(handle)
}

// Scrape the citizen page of the provided handle.
// The browser session is always closed before returning
func (scraper *Scraper) Lookup(ctx context.Context, handle string) (Profile, error) {

	logger := log.With().Str("lookup", uuid.NewString()).Str("handle", handle).Logger()
	profile := Profile{Handle: handle, SourceURL: scraper.ProfileURL(handle)}

	// Wait for a free browser slot
	if err := scraper.sessions.Acquire(ctx, 1); err != nil {
		return Profile{}, &ScrapeError{handle, err}
	}
	defer scraper.sessions.Release(1)

	logger.Debug().Msg("Launching browser")
	session, err := scraper.launcher.Launch(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Could not launch browser")
		return Profile{}, &ScrapeError{handle, err}
	}
	defer func() {
		logger.Debug().Msg("Tearing down browser")
		if err := session.Close(); err != nil {
			logger.Warn().Err(err).Msg("Browser did not shut down cleanly")
		}
	}()

	logger.Debug().Msg(fmt.Sprintf("Navigating to %s", profile.SourceURL))
	if err := session.Navigate(profile.SourceURL); err != nil {
		logger.Error().Err(err).Msg("Could not navigate to profile page")
		return Profile{}, &ScrapeError{handle, err}
	}

	logger.Debug().Msg("Extracting bio")
	bio, err := session.ElementText(BIO_XPATH, scraper.fieldTimeout)
	if err != nil {
		logger.Debug().Err(err).Msg("Bio not found")
	}
	profile.Bio = field(strings.TrimSpace(bio), err, BIO_NOT_FOUND)

	logger.Debug().Msg("Extracting avatar")
	avatar, err := session.ElementAttribute(AVATAR_SELECTOR, AVATAR_ATTRIBUTE, scraper.fieldTimeout)
	if err != nil {
		logger.Debug().Err(err).Msg("Avatar not found")
	}
	profile.AvatarURL = field(resolve(profile.SourceURL, avatar), err, AVATAR_NOT_FOUND)

	logger.Info().Msg("Profile retrieved")
	return profile, nil
}

// Resolve an extraction to its value, or to the placeholder if it failed
func field(value string, err error, placeholder string) string {
	if err != nil {
		return placeholder
	}
	return value
}

// Make a possibly relative link of the page absolute
func resolve(pageURL string, link string) string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return link
	}
	ref, err := url.Parse(link)
	if err != nil {
		return link
	}
	return base.ResolveReference(ref).String()
}
