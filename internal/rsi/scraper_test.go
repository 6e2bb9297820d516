package rsi

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeSession struct {
	navigateErr error
	bio         string
	bioErr      error
	avatar      string
	avatarErr   error
	visited     []string
	closed      int
}

func (s *fakeSession) Navigate(url string) error {
	s.visited = append(s.visited, url)
	return s.navigateErr
}

func (s *fakeSession) ElementText(xpath string, timeout time.Duration) (string, error) {
	return s.bio, s.bioErr
}

func (s *fakeSession) ElementAttribute(selector string, name string, timeout time.Duration) (string, error) {
	return s.avatar, s.avatarErr
}

func (s *fakeSession) Close() error {
	s.closed++
	return nil
}

type fakeLauncher struct {
	session   *fakeSession
	launchErr error
	launches  int
}

func (l *fakeLauncher) Launch(ctx context.Context) (Session, error) {
	l.launches++
	if l.launchErr != nil {
		return nil, l.launchErr
	}
	return l.session, nil
}

var errTimeout = errors.New("context deadline exceeded")

func TestLookupFindsBothFields(t *testing.T) {
	session := &fakeSession{bio: "  Space trucker  ", avatar: "https://cdn.example/avatar.png"}
	scraper := NewScraper(&fakeLauncher{session: session}, "", 1)

	profile, err := scraper.Lookup(context.Background(), "Citizen42")
	require.NoError(t, err)

	assert.Equal(t, Profile{
		Handle:    "Citizen42",
		Bio:       "Space trucker",
		AvatarURL: "https://cdn.example/avatar.png",
		SourceURL: "https://robertsspaceindustries.com/citizens/Citizen42",
	}, profile)
	assert.Equal(t, []string{profile.SourceURL}, session.visited)
	assert.Equal(t, 1, session.closed)
}

func TestLookupFallsBackToPlaceholders(t *testing.T) {
	session := &fakeSession{bioErr: errTimeout, avatarErr: errTimeout}
	scraper := NewScraper(&fakeLauncher{session: session}, "", 1)

	profile, err := scraper.Lookup(context.Background(), "Ghost")
	require.NoError(t, err)

	assert.Equal(t, BIO_NOT_FOUND, profile.Bio)
	assert.Equal(t, AVATAR_NOT_FOUND, profile.AvatarURL)
	assert.Equal(t, "Ghost", profile.Handle)
	assert.Equal(t, 1, session.closed)
}

func TestLookupFieldsAreIndependent(t *testing.T) {
	tests := []struct {
		name       string
		session    *fakeSession
		wantBio    string
		wantAvatar string
	}{
		{
			name:       "bio missing",
			session:    &fakeSession{bioErr: errTimeout, avatar: "a.png"},
			wantBio:    BIO_NOT_FOUND,
			wantAvatar: "a.png",
		},
		{
			name:       "avatar missing",
			session:    &fakeSession{bio: "hello", avatarErr: errTimeout},
			wantBio:    "hello",
			wantAvatar: AVATAR_NOT_FOUND,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scraper := NewScraper(&fakeLauncher{session: tt.session}, "", 1)

			profile, err := scraper.Lookup(context.Background(), "someone")
			require.NoError(t, err)
			assert.Equal(t, tt.wantBio, profile.Bio)
			assert.Equal(t, tt.wantAvatar, profile.AvatarURL)
			assert.Equal(t, 1, tt.session.closed)
		})
	}
}

func TestLookupNavigationFailure(t *testing.T) {
	navErr := errors.New("net::ERR_NAME_NOT_RESOLVED")
	session := &fakeSession{navigateErr: navErr, bio: "unused"}
	scraper := NewScraper(&fakeLauncher{session: session}, "", 1)

	_, err := scraper.Lookup(context.Background(), "Nobody")

	var scrapeErr *ScrapeError
	require.ErrorAs(t, err, &scrapeErr)
	assert.Equal(t, "Nobody", scrapeErr.Handle)
	assert.ErrorIs(t, err, navErr)
	assert.Equal(t, 1, session.closed)
}

func TestLookupLaunchFailure(t *testing.T) {
	launcher := &fakeLauncher{launchErr: errors.New("chrome not found")}
	scraper := NewScraper(launcher, "", 1)

	_, err := scraper.Lookup(context.Background(), "Nobody")

	var scrapeErr *ScrapeError
	require.ErrorAs(t, err, &scrapeErr)
	assert.Equal(t, 1, launcher.launches)
}

func TestLookupResolvesRelativeAvatar(t *testing.T) {
	session := &fakeSession{bio: "hi", avatar: "/media/avatar.png"}
	scraper := NewScraper(&fakeLauncher{session: session}, "", 1)

	profile, err := scraper.Lookup(context.Background(), "Citizen42")
	require.NoError(t, err)
	assert.Equal(t, "https://robertsspaceindustries.com/media/avatar.png", profile.AvatarURL)
}

func TestProfileURL(t *testing.T) {
	scraper := NewScraper(&fakeLauncher{}, "https://example.test/citizens/", 1)

	assert.Equal(t, "https://example.test/citizens/Citizen42", scraper.ProfileURL("Citizen42"))
	assert.Equal(t, "https://example.test/citizens/a%2Fb", scraper.ProfileURL("a/b"))
}

func TestLookupWaitsForSessionSlot(t *testing.T) {
	scraper := NewScraper(&fakeLauncher{session: &fakeSession{}}, "", 1)

	// Hold the only slot so the lookup cannot start
	require.NoError(t, scraper.sessions.Acquire(context.Background(), 1))
	defer scraper.sessions.Release(1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := scraper.Lookup(ctx, "Queued")

	var scrapeErr *ScrapeError
	require.ErrorAs(t, err, &scrapeErr)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type blockingLauncher struct {
	running    atomic.Int32
	maxRunning atomic.Int32
	release    chan struct{}
}

func (l *blockingLauncher) Launch(ctx context.Context) (Session, error) {
	running := l.running.Add(1)
	for {
		current := l.maxRunning.Load()
		if running <= current || l.maxRunning.CompareAndSwap(current, running) {
			break
		}
	}
	<-l.release
	l.running.Add(-1)
	return &fakeSession{}, nil
}

func TestLookupCapsConcurrentSessions(t *testing.T) {
	launcher := &blockingLauncher{release: make(chan struct{})}
	scraper := NewScraper(launcher, "", 2)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := scraper.Lookup(context.Background(), "busy")
			assert.NoError(t, err)
		}()
	}

	// Let every lookup through one at a time
	for i := 0; i < 5; i++ {
		launcher.release <- struct{}{}
	}
	wg.Wait()

	assert.LessOrEqual(t, launcher.maxRunning.Load(), int32(2))
}
