// Package keepalive wires the jiggle engine, the zen coordinator and the
// user's settings into a single Keeper that the shells drive.
package keepalive

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/stigoleg/mouse-jiggler/internal/jiggle"
	"github.com/stigoleg/mouse-jiggler/internal/monitor"
	"github.com/stigoleg/mouse-jiggler/internal/platform"
	"github.com/stigoleg/mouse-jiggler/internal/settings"
	"github.com/stigoleg/mouse-jiggler/internal/zen"
)

// ErrAlreadyRunning is returned by Start when the keeper is active.
var ErrAlreadyRunning = errors.New("mouse jiggler already running")

// Mode describes how the keeper is jiggling.
type Mode int

const (
	// ModeOff means nothing is running.
	ModeOff Mode = iota
	// ModeDirect runs the engine continuously.
	ModeDirect
	// ModeZen lets the coordinator run the engine while the user is idle.
	ModeZen
)

func (m Mode) String() string {
	switch m {
	case ModeDirect:
		return "direct"
	case ModeZen:
		return "zen"
	default:
		return "off"
	}
}

// Sessions records start and stop of jiggle sessions.
type Sessions interface {
	jiggle.Recorder
	BeginSession(ctx context.Context, mode string) (int64, error)
	EndSession(ctx context.Context) error
}

// Status is a point-in-time view of the keeper.
type Status struct {
	Running       bool
	Mode          Mode
	Timed         bool
	Remaining     time.Duration
	Health        jiggle.SimulationHealth
	Cycles        int64
	LastInjection time.Time
	Injector      string
}

// Keeper owns the engine, the coordinator and the active settings.
type Keeper struct {
	// op serializes start and stop transitions so a slow stop cannot
	// interleave with the next start.
	op sync.Mutex

	mu       sync.Mutex
	running  bool
	mode     Mode
	timer    *time.Timer
	endTime  time.Time
	session  uint64
	settings settings.Settings

	inj      platform.Injector
	engine   *jiggle.Engine
	zen      *zen.Coordinator
	sessions Sessions
	now      func() time.Time
}

// New creates a stopped keeper for s.
func New(s settings.Settings, inj platform.Injector, mon monitor.Monitor, opts ...Option) *Keeper {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt.apply(&o)
	}

	engineOpts := o.engine
	if o.sessions != nil {
		engineOpts = append([]jiggle.Option{jiggle.WithRecorder(o.sessions)}, engineOpts...)
	}
	engine := jiggle.NewEngine(jiggle.ConfigFromSettings(s), inj, engineOpts...)

	return &Keeper{
		settings: s,
		inj:      inj,
		engine:   engine,
		zen:      zen.NewCoordinator(zen.ConfigFromSettings(s), engine, mon, o.zen...),
		sessions: o.sessions,
		now:      o.now,
	}
}

// IsRunning returns whether jiggling, direct or zen, is active.
func (k *Keeper) IsRunning() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.running
}

// Mode returns the active mode, or ModeOff.
func (k *Keeper) Mode() Mode {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.mode
}

// Settings returns the settings the keeper currently applies.
func (k *Keeper) Settings() settings.Settings {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.settings
}

// ZenStates delivers zen coordinator transitions.
func (k *Keeper) ZenStates() <-chan zen.State {
	return k.zen.States()
}

// EngineEvents delivers jiggle engine notifications.
func (k *Keeper) EngineEvents() <-chan jiggle.Event {
	return k.engine.Events()
}

// Start begins jiggling until Stop. With zen mode enabled the coordinator
// decides when the engine runs, otherwise the engine runs continuously.
func (k *Keeper) Start() error {
	k.op.Lock()
	defer k.op.Unlock()
	return k.start(0)
}

// StartTimed starts like Start and stops automatically after d.
func (k *Keeper) StartTimed(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("duration must be positive, got %s", d)
	}
	k.op.Lock()
	defer k.op.Unlock()
	return k.start(d)
}

func (k *Keeper) start(d time.Duration) error {
	k.mu.Lock()
	if k.running {
		k.mu.Unlock()
		return ErrAlreadyRunning
	}
	s := k.settings
	k.mu.Unlock()

	mode, err := k.startComponents(s)
	if err != nil {
		return err
	}

	k.mu.Lock()
	k.running = true
	k.mode = mode
	k.session++
	if d > 0 {
		session := k.session
		k.endTime = k.now().Add(d)
		k.timer = time.AfterFunc(d, func() { k.expire(session) })
	}
	k.mu.Unlock()

	k.beginSession(mode)
	if d > 0 {
		log.Printf("keeper: started (%s, timed=%s)", mode, d)
	} else {
		log.Printf("keeper: started (%s, indefinite)", mode)
	}
	return nil
}

func (k *Keeper) startComponents(s settings.Settings) (Mode, error) {
	if err := s.Validate(); err != nil {
		return ModeOff, fmt.Errorf("invalid settings: %w", err)
	}
	k.engine.SetConfig(jiggle.ConfigFromSettings(s))
	k.zen.SetConfig(zen.ConfigFromSettings(s))

	if s.ZenModeEnabled {
		k.zen.Start()
		return ModeZen, nil
	}
	if err := k.engine.Start(); err != nil {
		return ModeOff, err
	}
	return ModeDirect, nil
}

func (k *Keeper) stopComponents(mode Mode) {
	switch mode {
	case ModeZen:
		k.zen.Stop()
	case ModeDirect:
		k.engine.Stop()
	}
}

// expire stops the session that armed the timer, and nothing newer.
func (k *Keeper) expire(session uint64) {
	k.op.Lock()
	defer k.op.Unlock()

	k.mu.Lock()
	current := k.running && k.session == session
	k.mu.Unlock()
	if !current {
		return
	}
	log.Printf("keeper: timer expired")
	k.stop()
}

// Stop ends jiggling. It is a no-op when nothing is running.
func (k *Keeper) Stop() {
	k.op.Lock()
	defer k.op.Unlock()
	k.stop()
}

func (k *Keeper) stop() {
	k.mu.Lock()
	if !k.running {
		k.mu.Unlock()
		return
	}
	if k.timer != nil {
		k.timer.Stop()
		k.timer = nil
	}
	mode := k.mode
	k.running = false
	k.mode = ModeOff
	k.endTime = time.Time{}
	k.mu.Unlock()

	k.stopComponents(mode)
	k.endSession()
	log.Printf("keeper: stopped")
}

// Toggle stops a running keeper or starts a stopped one.
func (k *Keeper) Toggle() error {
	if k.IsRunning() {
		k.Stop()
		return nil
	}
	err := k.Start()
	if errors.Is(err, ErrAlreadyRunning) {
		return nil
	}
	return err
}

// ApplySettings validates and adopts s. A running keeper restarts its
// components so the new values take effect; a pending timer keeps running.
func (k *Keeper) ApplySettings(s settings.Settings) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	k.op.Lock()
	defer k.op.Unlock()

	k.mu.Lock()
	old := k.settings
	k.settings = s
	running, mode := k.running, k.mode
	k.mu.Unlock()

	if !running || old.Equal(s) {
		k.engine.SetConfig(jiggle.ConfigFromSettings(s))
		k.zen.SetConfig(zen.ConfigFromSettings(s))
		return nil
	}

	k.stopComponents(mode)
	newMode, err := k.startComponents(s)
	if err != nil {
		k.mu.Lock()
		if k.timer != nil {
			k.timer.Stop()
			k.timer = nil
		}
		k.running, k.mode, k.endTime = false, ModeOff, time.Time{}
		k.mu.Unlock()
		k.endSession()
		return err
	}

	k.mu.Lock()
	k.mode = newMode
	k.mu.Unlock()
	if newMode != mode {
		k.beginSession(newMode)
	}
	log.Printf("keeper: settings applied, restarted in %s mode", newMode)
	return nil
}

// TimeRemaining returns the remaining duration for timed mode, or zero.
func (k *Keeper) TimeRemaining() time.Duration {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.remainingLocked()
}

func (k *Keeper) remainingLocked() time.Duration {
	if !k.running || k.endTime.IsZero() {
		return 0
	}
	remaining := k.endTime.Sub(k.now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// GetSimulationHealth returns the health of input injection.
func (k *Keeper) GetSimulationHealth() jiggle.SimulationHealth {
	return k.engine.Health()
}

// ResetSimulationHealth clears recorded injection failures.
func (k *Keeper) ResetSimulationHealth() {
	k.engine.ResetHealth()
}

// Status returns a snapshot of the keeper.
func (k *Keeper) Status() Status {
	k.mu.Lock()
	st := Status{
		Running:   k.running,
		Mode:      k.mode,
		Timed:     k.running && !k.endTime.IsZero(),
		Remaining: k.remainingLocked(),
	}
	k.mu.Unlock()

	st.Health = k.engine.Health()
	st.Cycles = k.engine.Cycles()
	st.LastInjection = k.engine.LastInjection()
	st.Injector = k.inj.Name()
	return st
}

func (k *Keeper) beginSession(mode Mode) {
	if k.sessions == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := k.sessions.BeginSession(ctx, mode.String()); err != nil {
		log.Printf("keeper: %v", err)
	}
}

func (k *Keeper) endSession() {
	if k.sessions == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := k.sessions.EndSession(ctx); err != nil {
		log.Printf("keeper: %v", err)
	}
}
