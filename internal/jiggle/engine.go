// Package jiggle runs the periodic pointer jiggle loop.
package jiggle

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stigoleg/mouse-jiggler/internal/platform"
	"github.com/stigoleg/mouse-jiggler/internal/trajectory"
)

// stopTimeout bounds how long Stop waits for an in-flight step to finish.
const stopTimeout = 2 * time.Second

// SimulationHealth represents the runtime health of input injection.
type SimulationHealth int

const (
	SimulationHealthUnknown SimulationHealth = iota
	SimulationHealthOK
	SimulationHealthFailed
)

func (h SimulationHealth) String() string {
	switch h {
	case SimulationHealthOK:
		return "ok"
	case SimulationHealthFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// InjectionError reports a failed call to the injection primitive.
type InjectionError struct {
	Op  string
	Err error
}

func (e *InjectionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *InjectionError) Unwrap() error {
	return e.Err
}

// CycleReport describes one completed or failed jiggle cycle.
type CycleReport struct {
	Started   time.Time
	Duration  time.Duration
	End       trajectory.Point
	Keystroke bool
	Err       error
}

// Recorder receives a report for every cycle that ran to completion or failed.
// Cycles abandoned because of Stop are not reported.
type Recorder interface {
	RecordCycle(CycleReport)
}

// Engine periodically moves the pointer along a short out-and-back curve.
type Engine struct {
	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
	cfg     Config

	inj      platform.Injector
	gen      *trajectory.Generator
	rndMu    sync.Mutex
	rnd      *rand.Rand
	sleeper  Sleeper
	recorder Recorder
	now      func() time.Time
	events   *notifier

	lastInjectNS        int64
	cycles              int64
	simulationFailCount int64
}

// NewEngine creates an idle engine. cfg is validated on Start.
func NewEngine(cfg Config, inj platform.Injector, opts ...Option) *Engine {
	o := options{
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
		sleeper: SleeperFunc(Sleep),
		now:     time.Now,
		buffer:  16,
	}
	for _, opt := range opts {
		opt.apply(&o)
	}
	return &Engine{
		cfg:      cfg,
		inj:      inj,
		gen:      trajectory.NewGenerator(rand.New(rand.NewSource(o.rnd.Int63()))),
		rnd:      o.rnd,
		sleeper:  o.sleeper,
		recorder: o.recorder,
		now:      o.now,
		events:   newNotifier(o.buffer),
	}
}

// SetConfig replaces the configuration used by the next Start.
func (e *Engine) SetConfig(cfg Config) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg = cfg
}

// Config returns the current configuration.
func (e *Engine) Config() Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// IsRunning returns whether the jiggle loop is active.
func (e *Engine) IsRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Events delivers engine notifications. Slow readers miss events rather
// than block the engine.
func (e *Engine) Events() <-chan Event {
	return e.events.ch
}

// Start launches the jiggle loop. It is a no-op when already running and
// fails only when the configuration is invalid.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		return nil
	}
	if err := e.cfg.Validate(); err != nil {
		return fmt.Errorf("jiggle: invalid config: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	e.cancel = cancel
	e.done = done
	e.running = true

	go e.run(ctx, e.cfg, done)

	log.Printf("jiggle: started (interval %s-%s, distance %d, phantom key %t)",
		e.cfg.MinInterval, e.cfg.MaxInterval, e.cfg.Distance, e.cfg.PhantomKeystroke)
	e.events.send(Event{Kind: EventStarted, Time: e.now()})
	return nil
}

// Stop cancels the jiggle loop and waits briefly for it to exit, so no
// injection happens after Stop returns. It is a no-op when not running.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.cancel()
	e.cancel = nil
	done := e.done
	e.running = false
	e.mu.Unlock()

	e.events.send(Event{Kind: EventStopped, Time: e.now(), Reason: "stopped by external stop"})

	select {
	case <-done:
		log.Printf("jiggle: stopped")
	case <-time.After(stopTimeout):
		log.Printf("jiggle: stop timeout exceeded after %v", stopTimeout)
	}
}

// LastInjection returns when the engine last injected input, or the zero time.
func (e *Engine) LastInjection() time.Time {
	ns := atomic.LoadInt64(&e.lastInjectNS)
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// Cycles returns the number of cycles completed since the engine was created.
func (e *Engine) Cycles() int64 {
	return atomic.LoadInt64(&e.cycles)
}

// Health reports whether the most recent cycles could inject input.
func (e *Engine) Health() SimulationHealth {
	if atomic.LoadInt64(&e.simulationFailCount) > 0 {
		return SimulationHealthFailed
	}
	if atomic.LoadInt64(&e.cycles) == 0 {
		return SimulationHealthUnknown
	}
	return SimulationHealthOK
}

// ResetHealth clears the consecutive failure counter.
func (e *Engine) ResetHealth() {
	atomic.StoreInt64(&e.simulationFailCount, 0)
}

func (e *Engine) run(ctx context.Context, cfg Config, done chan struct{}) {
	defer close(done)

	for ctx.Err() == nil {
		if err := e.sleeper.Sleep(ctx, e.nextDelay(cfg)); err != nil {
			return
		}

		report := e.cycle(ctx, cfg)
		if errors.Is(report.Err, context.Canceled) {
			return
		}
		e.finish(report)
	}
}

func (e *Engine) nextDelay(cfg Config) time.Duration {
	e.rndMu.Lock()
	defer e.rndMu.Unlock()
	return drawDelay(e.rnd, cfg)
}

// cycle moves out along a random curve, pauses, comes back along the
// reversed curve and optionally pulses a neutral key.
func (e *Engine) cycle(ctx context.Context, cfg Config) CycleReport {
	out := e.gen.Outbound(cfg.Distance)
	report := CycleReport{Started: e.now(), End: out.P3}

	err := e.leg(ctx, out)
	if err == nil {
		err = e.sleeper.Sleep(ctx, LegPause)
	}
	if err == nil {
		err = e.leg(ctx, out.Reverse())
	}
	if err == nil && cfg.PhantomKeystroke {
		err = e.keyPulse(ctx)
		report.Keystroke = err == nil
	}

	report.Duration = e.now().Sub(report.Started)
	report.Err = err
	return report
}

func (e *Engine) leg(ctx context.Context, c trajectory.Curve) error {
	step := LegDuration / Steps
	for dx, dy := range c.Deltas(Steps) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.inj.MoveRelative(dx, dy); err != nil {
			return &InjectionError{Op: "move", Err: err}
		}
		e.markInjection()
		if err := e.sleeper.Sleep(ctx, step); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) keyPulse(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := e.inj.KeyPulse(platform.KeyF15); err != nil {
		return &InjectionError{Op: "key pulse", Err: err}
	}
	e.markInjection()
	return nil
}

func (e *Engine) markInjection() {
	atomic.StoreInt64(&e.lastInjectNS, e.now().UnixNano())
}

func (e *Engine) finish(report CycleReport) {
	if e.recorder != nil {
		e.recorder.RecordCycle(report)
	}
	if report.Err != nil {
		n := atomic.AddInt64(&e.simulationFailCount, 1)
		// Log the first failure and then every tenth.
		if n == 1 || n%10 == 0 {
			log.Printf("jiggle: cycle failed via %s (%d consecutive): %v", e.inj.Name(), n, report.Err)
		}
		e.events.send(Event{Kind: EventCycleFailed, Time: e.now(), Err: report.Err})
		return
	}
	atomic.StoreInt64(&e.simulationFailCount, 0)
	atomic.AddInt64(&e.cycles, 1)
	e.events.send(Event{Kind: EventCycle, Time: e.now()})
}
