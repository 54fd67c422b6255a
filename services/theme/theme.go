package theme

import (
	"errors"
	"fmt"
	"sync"

	"github.com/meghashyamc/sitesearch/db/kvdb"
	"github.com/meghashyamc/sitesearch/logger"
)

type Theme string

const (
	Dark  Theme = "dark"
	Light Theme = "light"

	Default = Dark
)

var ErrUnknownTheme = errors.New("unknown theme")

func Parse(value string) (Theme, error) {
	switch Theme(value) {
	case Dark, Light:
		return Theme(value), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTheme, value)
	}
}

func (t Theme) Toggled() Theme {
	if t == Light {
		return Dark
	}
	return Light
}

// Switcher keeps each visitor's theme preference.
type Switcher struct {
	logger logger.Logger
	store  kvdb.DB
	// makes Toggle a single read-modify-write
	mu sync.Mutex
}

func New(logger logger.Logger, store kvdb.DB) *Switcher {
	return &Switcher{logger: logger, store: store}
}

// Current returns the visitor's theme, or Default if they never chose one.
func (s *Switcher) Current(visitorID string) (Theme, error) {
	value, err := s.store.Get(kvdb.PreferencesBucket, preferenceKey(visitorID))
	if errors.Is(err, kvdb.ErrNotFound) {
		return Default, nil
	}
	if err != nil {
		s.logger.Error("could not read theme preference", "visitor_id", visitorID, "err", err.Error())
		return "", err
	}

	theme, err := Parse(value)
	if err != nil {
		s.logger.Warn("ignoring stored theme preference", "visitor_id", visitorID, "value", value)
		return Default, nil
	}
	return theme, nil
}

func (s *Switcher) Set(visitorID string, theme Theme) error {
	if _, err := Parse(string(theme)); err != nil {
		return err
	}
	if visitorID == "" {
		return errors.New("visitor id cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set(visitorID, theme)
}

// Toggle flips the visitor's theme and returns the new one.
func (s *Switcher) Toggle(visitorID string) (Theme, error) {
	if visitorID == "" {
		return "", errors.New("visitor id cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.Current(visitorID)
	if err != nil {
		return "", err
	}
	next := current.Toggled()
	if err := s.set(visitorID, next); err != nil {
		return "", err
	}
	return next, nil
}

func (s *Switcher) set(visitorID string, theme Theme) error {
	if err := s.store.Set(kvdb.PreferencesBucket, preferenceKey(visitorID), string(theme)); err != nil {
		s.logger.Error("could not save theme preference", "visitor_id", visitorID, "err", err.Error())
		return err
	}
	s.logger.Debug("saved theme preference", "visitor_id", visitorID, "theme", theme)
	return nil
}

func preferenceKey(visitorID string) string {
	return "theme:" + visitorID
}
