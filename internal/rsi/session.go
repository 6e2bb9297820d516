package rsi

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
)

// Launcher starts one browser session per lookup
type Launcher interface {
	Launch(ctx context.Context) (Session, error)
}

// Session is a single page inside a dedicated browser process.
// Close releases the page, the browser and the process
type Session interface {
	Navigate(url string) error
	ElementText(xpath string, timeout time.Duration) (string, error)
	ElementAttribute(selector string, name string, timeout time.Duration) (string, error)
	Close() error
}

// RodLauncher launches headless chrome through go-rod.
// An empty Bin lets the launcher find a browser on its own
type RodLauncher struct {
	Bin string
}

func NewRodLauncher(bin string) *RodLauncher {
	return &RodLauncher{Bin: bin}
}

func (l *RodLauncher) Launch(ctx context.Context) (Session, error) {

	// Headless and without sandbox so that it runs inside containers
	launch := launcher.New().
		Context(ctx).
		Headless(true).
		NoSandbox(true).
		Set(flags.Flag("disable-gpu"))
	if l.Bin != "" {
		launch = launch.Bin(l.Bin)
	}

	controlURL, err := launch.Launch()
	if err != nil {
		launch.Cleanup()
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		_ = release(launch)
		return nil, fmt.Errorf("connect to browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = release(launch, browser)
		return nil, fmt.Errorf("open page: %w", err)
	}

	return &rodSession{launcher: launch, browser: browser, page: page}, nil
}

type rodSession struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
}

func (s *rodSession) Navigate(url string) error {
	if err := s.page.Navigate(url); err != nil {
		return err
	}
	return s.page.WaitLoad()
}

func (s *rodSession) ElementText(xpath string, timeout time.Duration) (text string, err error) {
	err = withTimeout(s.page, timeout, func(page *rod.Page) error {
		el, err := page.ElementX(xpath)
		if err != nil {
			return err
		}
		text, err = el.Text()
		return err
	})
	return text, err
}

func (s *rodSession) ElementAttribute(selector string, name string, timeout time.Duration) (value string, err error) {
	err = withTimeout(s.page, timeout, func(page *rod.Page) error {
		el, err := page.Element(selector)
		if err != nil {
			return err
		}
		attribute, err := el.Attribute(name)
		if err != nil {
			return err
		}
		if attribute == nil {
			return fmt.Errorf("element %s has no attribute %s", selector, name)
		}
		value = *attribute
		return nil
	})
	return value, err
}

func (s *rodSession) Close() error {
	return release(s.launcher, s.browser, s.page)
}

// Run fn against the page bounded by timeout, and stop the timer once fn returns
func withTimeout(page *rod.Page, timeout time.Duration, fn func(page *rod.Page) error) error {
	timed := page.Timeout(timeout)
	defer timed.CancelTimeout()
	return fn(timed)
}

type process interface {
	Kill()
	Cleanup()
}

type closer interface {
	Close() error
}

// Close the given resources in reverse order, then kill the browser process.
// The process is killed even if closing failed, so that Cleanup never waits forever
func release(proc process, resources ...closer) error {
	errs := []error{}
	for i := len(resources) - 1; i >= 0; i-- {
		errs = append(errs, resources[i].Close())
	}
	proc.Kill()
	proc.Cleanup()
	return errors.Join(errs...)
}
