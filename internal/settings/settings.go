// Package settings holds the user configuration and its TOML persistence.
package settings

import (
	"errors"
	"fmt"
)

// Settings is the persisted user configuration.
type Settings struct {
	MinIntervalSeconds      int  `toml:"min_interval_seconds"`
	MaxIntervalSeconds      int  `toml:"max_interval_seconds"`
	JiggleDistance          int  `toml:"jiggle_distance"`
	ZenModeEnabled          bool `toml:"zen_mode_enabled"`
	ZenModeIdleTimeSeconds  int  `toml:"zen_mode_idle_time_seconds"`
	PhantomKeystrokeEnabled bool `toml:"phantom_keystroke_enabled"`
	// StartMinimized starts jiggling immediately without the interactive UI.
	StartMinimized bool `toml:"start_minimized"`

	// Dirty marks unsaved edits. It is never persisted.
	Dirty bool `toml:"-"`
}

// Defaults returns the factory configuration.
func Defaults() Settings {
	return Settings{
		MinIntervalSeconds:     10,
		MaxIntervalSeconds:     45,
		JiggleDistance:         5,
		ZenModeEnabled:         true,
		ZenModeIdleTimeSeconds: 60,
	}
}

// Validate reports every violated invariant.
func (s Settings) Validate() error {
	var errs []error
	if s.MinIntervalSeconds <= 0 {
		errs = append(errs, fmt.Errorf("min_interval_seconds must be positive, got %d", s.MinIntervalSeconds))
	}
	if s.MaxIntervalSeconds < s.MinIntervalSeconds {
		errs = append(errs, fmt.Errorf("max_interval_seconds (%d) must not be below min_interval_seconds (%d)", s.MaxIntervalSeconds, s.MinIntervalSeconds))
	}
	if s.JiggleDistance < 0 {
		errs = append(errs, fmt.Errorf("jiggle_distance must not be negative, got %d", s.JiggleDistance))
	}
	if s.ZenModeIdleTimeSeconds < 0 {
		errs = append(errs, fmt.Errorf("zen_mode_idle_time_seconds must not be negative, got %d", s.ZenModeIdleTimeSeconds))
	}
	return errors.Join(errs...)
}

// Equal compares the persisted fields, ignoring Dirty.
func (s Settings) Equal(o Settings) bool {
	s.Dirty, o.Dirty = false, false
	return s == o
}
