package zen

import (
	"time"

	"github.com/stigoleg/mouse-jiggler/internal/jiggle"
)

type options struct {
	poll     time.Duration
	now      func() time.Time
	sleeper  jiggle.Sleeper
	discount bool
	buffer   int
}

// Option configures a Coordinator.
type Option interface {
	apply(*options)
}

type optionFunc func(*options)

func (f optionFunc) apply(o *options) { f(o) }

// WithPollInterval overrides the one second poll cadence.
func WithPollInterval(d time.Duration) Option {
	return optionFunc(func(o *options) {
		if d > 0 {
			o.poll = d
		}
	})
}

// WithClock sets the time source used for self-input accounting.
func WithClock(now func() time.Time) Option {
	return optionFunc(func(o *options) {
		if now != nil {
			o.now = now
		}
	})
}

// WithSleeper replaces the poll wait, mainly for tests.
func WithSleeper(s jiggle.Sleeper) Option {
	return optionFunc(func(o *options) {
		if s != nil {
			o.sleeper = s
		}
	})
}

// WithSelfInputDiscount controls whether idle resets caused by the engine's
// own injections are ignored. Enabled by default.
func WithSelfInputDiscount(enabled bool) Option {
	return optionFunc(func(o *options) { o.discount = enabled })
}

// WithStateBuffer sets the capacity of the States channel. Default 8.
func WithStateBuffer(n int) Option {
	return optionFunc(func(o *options) {
		if n > 0 {
			o.buffer = n
		}
	})
}
