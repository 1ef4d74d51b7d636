package jiggle

import (
	"math/rand"
	"time"
)

type options struct {
	rnd      *rand.Rand
	sleeper  Sleeper
	recorder Recorder
	now      func() time.Time
	buffer   int
}

// Option configures an Engine.
type Option interface {
	apply(*options)
}

type optionFunc func(*options)

func (f optionFunc) apply(o *options) { f(o) }

// WithRand sets the random source for delays and curves.
func WithRand(rnd *rand.Rand) Option {
	return optionFunc(func(o *options) {
		if rnd != nil {
			o.rnd = rnd
		}
	})
}

// WithSleeper replaces the timer based sleeper, mainly for tests.
func WithSleeper(s Sleeper) Option {
	return optionFunc(func(o *options) {
		if s != nil {
			o.sleeper = s
		}
	})
}

// WithRecorder receives a report for every finished cycle.
func WithRecorder(r Recorder) Option {
	return optionFunc(func(o *options) { o.recorder = r })
}

// WithClock sets the time source used for reports and LastInjection.
func WithClock(now func() time.Time) Option {
	return optionFunc(func(o *options) {
		if now != nil {
			o.now = now
		}
	})
}

// WithEventBuffer sets the capacity of the Events channel. Default 16.
func WithEventBuffer(n int) Option {
	return optionFunc(func(o *options) {
		if n > 0 {
			o.buffer = n
		}
	})
}
