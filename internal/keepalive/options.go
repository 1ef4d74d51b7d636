package keepalive

import (
	"time"

	"github.com/stigoleg/mouse-jiggler/internal/jiggle"
	"github.com/stigoleg/mouse-jiggler/internal/zen"
)

type options struct {
	engine   []jiggle.Option
	zen      []zen.Option
	sessions Sessions
	now      func() time.Time
}

// Option configures a Keeper.
type Option interface {
	apply(*options)
}

type optionFunc func(*options)

func (f optionFunc) apply(o *options) { f(o) }

// WithEngineOptions passes options through to the jiggle engine.
func WithEngineOptions(opts ...jiggle.Option) Option {
	return optionFunc(func(o *options) { o.engine = append(o.engine, opts...) })
}

// WithZenOptions passes options through to the zen coordinator.
func WithZenOptions(opts ...zen.Option) Option {
	return optionFunc(func(o *options) { o.zen = append(o.zen, opts...) })
}

// WithSessions records sessions and cycles, typically to the history store.
func WithSessions(s Sessions) Option {
	return optionFunc(func(o *options) { o.sessions = s })
}

// WithClock sets the time source for timed sessions.
func WithClock(now func() time.Time) Option {
	return optionFunc(func(o *options) {
		if now != nil {
			o.now = now
		}
	})
}
