// Package zen starts and stops the jiggle engine according to user idle time
// and whether a fullscreen application has focus.
package zen

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stigoleg/mouse-jiggler/internal/jiggle"
	"github.com/stigoleg/mouse-jiggler/internal/monitor"
	"github.com/stigoleg/mouse-jiggler/internal/settings"
)

const (
	// PollInterval is how often the monitor is sampled.
	PollInterval = time.Second

	// SelfInputTolerance is how close, on either side, the host's last-input
	// instant must be to the engine's last injection for the input to count
	// as our own.
	SelfInputTolerance = 250 * time.Millisecond

	stopTimeout = 2 * time.Second
)

// Engine is the part of jiggle.Engine the coordinator drives.
type Engine interface {
	Start() error
	Stop()
	IsRunning() bool
	LastInjection() time.Time
}

// Config is the zen configuration, snapshotted on Start.
type Config struct {
	Enabled       bool
	IdleThreshold time.Duration
}

// ConfigFromSettings builds a zen configuration from user settings.
func ConfigFromSettings(s settings.Settings) Config {
	return Config{
		Enabled:       s.ZenModeEnabled,
		IdleThreshold: time.Duration(s.ZenModeIdleTimeSeconds) * time.Second,
	}
}

// Coordinator polls a Monitor and keeps the engine running only while the
// user is idle past the threshold and no fullscreen window has focus.
type Coordinator struct {
	mu     sync.Mutex
	active bool
	cancel context.CancelFunc
	done   chan struct{}
	cfg    Config

	// transition serializes engine start decisions with Stop, so a poll that
	// outlives the stop timeout cannot start the engine after Stop.
	transition  sync.Mutex
	stopTimeout time.Duration

	engine   Engine
	mon      monitor.Monitor
	poll     time.Duration
	now      func() time.Time
	sleeper  jiggle.Sleeper
	discount bool

	states  chan State
	dropped int64

	// Owned by the poll loop.
	idleBase    time.Duration
	jiggleSince time.Time
}

// NewCoordinator creates an inactive coordinator.
func NewCoordinator(cfg Config, engine Engine, mon monitor.Monitor, opts ...Option) *Coordinator {
	o := options{
		poll:     PollInterval,
		now:      time.Now,
		sleeper:  jiggle.SleeperFunc(jiggle.Sleep),
		discount: true,
		buffer:   8,
	}
	for _, opt := range opts {
		opt.apply(&o)
	}
	return &Coordinator{
		cfg:      cfg,
		engine:   engine,
		mon:      mon,
		poll:     o.poll,
		now:      o.now,
		sleeper:  o.sleeper,
		discount: o.discount,
		states:   make(chan State, o.buffer),

		stopTimeout: stopTimeout,
	}
}

// States delivers a notification on every transition. Notifications fire
// only on edges, never on a poll that changes nothing.
func (c *Coordinator) States() <-chan State {
	return c.states
}

// SetConfig replaces the configuration used by the next Start.
func (c *Coordinator) SetConfig(cfg Config) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg = cfg
}

// IsActive returns whether the poll loop is running.
func (c *Coordinator) IsActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Start launches the poll loop. It does nothing when already active or
// when zen mode is disabled.
func (c *Coordinator) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active {
		return
	}
	if !c.cfg.Enabled {
		log.Printf("zen: not starting, zen mode is disabled")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	c.cancel = cancel
	c.done = done
	c.active = true

	go c.run(ctx, c.cfg, done)
	log.Printf("zen: started (idle threshold %s)", c.cfg.IdleThreshold)
}

// Stop ends the poll loop and stops the engine if it is running.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}
	c.cancel()
	c.cancel = nil
	done := c.done
	c.active = false
	c.mu.Unlock()

	select {
	case <-done:
	case <-time.After(c.stopTimeout):
		log.Printf("zen: stop timeout exceeded after %v", c.stopTimeout)
	}

	c.transition.Lock()
	if c.engine.IsRunning() {
		c.engine.Stop()
	}
	c.transition.Unlock()
	c.notify(Stopped)
	log.Printf("zen: stopped")
}

func (c *Coordinator) run(ctx context.Context, cfg Config, done chan struct{}) {
	defer close(done)
	c.jiggleSince = time.Time{}
	for {
		if err := c.sleeper.Sleep(ctx, c.poll); err != nil {
			return
		}
		c.evaluate(ctx, cfg)
	}
}

// evaluate samples the monitor once and applies at most one transition.
// Monitor queries may be slow; a poll cancelled while they run changes nothing.
func (c *Coordinator) evaluate(ctx context.Context, cfg Config) {
	idle := c.mon.IdleTime()
	fullscreen := c.mon.ForegroundFullscreen()

	c.transition.Lock()
	defer c.transition.Unlock()
	if ctx.Err() != nil {
		return
	}
	running := c.engine.IsRunning()

	if running && c.discount {
		idle = c.effectiveIdle(idle)
	}
	shouldJiggle := idle > cfg.IdleThreshold && !fullscreen

	switch {
	case shouldJiggle && !running:
		if err := c.engine.Start(); err != nil {
			log.Printf("zen: cannot start engine: %v", err)
			return
		}
		c.idleBase, c.jiggleSince = idle, c.now()
		log.Printf("zen: user idle for %s, jiggling", idle.Round(time.Second))
		c.notify(Jiggling)
	case !shouldJiggle && running:
		c.engine.Stop()
		if fullscreen {
			log.Printf("zen: fullscreen window focused, waiting")
		} else {
			log.Printf("zen: user active, waiting")
		}
		c.notify(Waiting)
	}
}

// effectiveIdle corrects an idle reading that the engine's own injection
// reset. When the host's last input lies within SelfInputTolerance of the
// last injection on either side, the user has not touched anything since
// jiggling began, so idle keeps growing from the reading taken at that
// moment. Input outside that window is the user's.
func (c *Coordinator) effectiveIdle(measured time.Duration) time.Duration {
	last := c.engine.LastInjection()
	if last.IsZero() || c.jiggleSince.IsZero() {
		return measured
	}
	now := c.now()
	lastInput := now.Add(-measured)
	if lastInput.After(last.Add(SelfInputTolerance)) || lastInput.Before(last.Add(-SelfInputTolerance)) {
		return measured
	}
	return c.idleBase + now.Sub(c.jiggleSince)
}

func (c *Coordinator) notify(s State) {
	select {
	case c.states <- s:
	default:
		if d := atomic.AddInt64(&c.dropped, 1); d == 1 || d%100 == 0 {
			log.Printf("zen: state channel full, dropped %d notifications", d)
		}
	}
}
