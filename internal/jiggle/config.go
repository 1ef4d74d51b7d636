package jiggle

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/stigoleg/mouse-jiggler/internal/settings"
)

// Cycle shape. These are fixed, not user configuration.
const (
	// Steps is the number of interpolation steps per animation leg.
	Steps = 20
	// LegDuration is how long one leg (out or back) takes.
	LegDuration = 100 * time.Millisecond
	// LegPause separates the outbound and inbound legs.
	LegPause = 50 * time.Millisecond
)

// Config is the engine configuration, snapshotted on Start.
type Config struct {
	MinInterval      time.Duration
	MaxInterval      time.Duration
	Distance         int
	PhantomKeystroke bool
}

// ConfigFromSettings builds an engine configuration from user settings.
func ConfigFromSettings(s settings.Settings) Config {
	return Config{
		MinInterval:      time.Duration(s.MinIntervalSeconds) * time.Second,
		MaxInterval:      time.Duration(s.MaxIntervalSeconds) * time.Second,
		Distance:         s.JiggleDistance,
		PhantomKeystroke: s.PhantomKeystrokeEnabled,
	}
}

// Validate checks 0 < MinInterval <= MaxInterval and Distance >= 0.
func (c Config) Validate() error {
	var errs []error
	if c.MinInterval <= 0 {
		errs = append(errs, fmt.Errorf("minimum interval must be positive, got %s", c.MinInterval))
	}
	if c.MaxInterval < c.MinInterval {
		errs = append(errs, fmt.Errorf("maximum interval %s is below minimum %s", c.MaxInterval, c.MinInterval))
	}
	if c.Distance < 0 {
		errs = append(errs, fmt.Errorf("jiggle distance must not be negative, got %d", c.Distance))
	}
	return errors.Join(errs...)
}

// drawDelay returns a uniform delay in [MinInterval, MaxInterval) at
// millisecond resolution, or exactly MinInterval when the bounds are equal.
func drawDelay(rnd *rand.Rand, c Config) time.Duration {
	lo, hi := c.MinInterval.Milliseconds(), c.MaxInterval.Milliseconds()
	if hi <= lo {
		return time.Duration(lo) * time.Millisecond
	}
	return time.Duration(lo+rnd.Int63n(hi-lo)) * time.Millisecond
}
