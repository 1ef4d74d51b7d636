package zen

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stigoleg/mouse-jiggler/internal/jiggle"
	"github.com/stigoleg/mouse-jiggler/internal/settings"
)

type fakeEngine struct {
	mu       sync.Mutex
	running  bool
	starts   int
	stops    int
	last     time.Time
	startErr error
}

func (e *fakeEngine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.startErr != nil {
		return e.startErr
	}
	if !e.running {
		e.starts++
	}
	e.running = true
	return nil
}

func (e *fakeEngine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		e.stops++
	}
	e.running = false
}

func (e *fakeEngine) IsRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

func (e *fakeEngine) LastInjection() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

func (e *fakeEngine) setLast(t time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.last = t
}

func (e *fakeEngine) counts() (int, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.starts, e.stops
}

type scriptedMonitor struct {
	mu         sync.Mutex
	idle       time.Duration
	fullscreen bool
}

func (m *scriptedMonitor) set(idle time.Duration, fullscreen bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.idle, m.fullscreen = idle, fullscreen
}

func (m *scriptedMonitor) IdleTime() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.idle
}

func (m *scriptedMonitor) ForegroundFullscreen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fullscreen
}

// stepSleeper parks the poll loop until the test releases one poll.
type stepSleeper struct {
	waiting chan time.Duration
	tick    chan struct{}
}

func newStepSleeper() *stepSleeper {
	return &stepSleeper{waiting: make(chan time.Duration), tick: make(chan struct{})}
}

func (s *stepSleeper) Sleep(ctx context.Context, d time.Duration) error {
	select {
	case s.waiting <- d:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-s.tick:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// parked waits until the loop is blocked in Sleep.
func (s *stepSleeper) parked(t *testing.T) time.Duration {
	t.Helper()
	select {
	case d := <-s.waiting:
		return d
	case <-time.After(2 * time.Second):
		t.Fatal("poll loop never parked")
		return 0
	}
}

// poll runs exactly one evaluation and waits for the loop to park again.
func (s *stepSleeper) poll(t *testing.T) {
	t.Helper()
	s.tick <- struct{}{}
	s.parked(t)
}

type harness struct {
	c     *Coordinator
	eng   *fakeEngine
	mon   *scriptedMonitor
	sleep *stepSleeper
	now   time.Time
	mu    sync.Mutex
}

func (h *harness) clock() time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.now
}

func (h *harness) advance(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.now = h.now.Add(d)
}

func newHarness(t *testing.T, threshold time.Duration, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		eng:   &fakeEngine{},
		mon:   &scriptedMonitor{},
		sleep: newStepSleeper(),
		now:   time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
	}
	opts = append([]Option{WithSleeper(h.sleep), WithClock(h.clock)}, opts...)
	h.c = NewCoordinator(Config{Enabled: true, IdleThreshold: threshold}, h.eng, h.mon, opts...)
	return h
}

func (h *harness) start(t *testing.T) {
	t.Helper()
	h.c.Start()
	h.sleep.parked(t)
	t.Cleanup(h.c.Stop)
}

func drain(ch <-chan State) []State {
	var out []State
	for {
		select {
		case s := <-ch:
			out = append(out, s)
		default:
			return out
		}
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "Waiting", Waiting.String())
	assert.Equal(t, "Jiggling", Jiggling.String())
	assert.Equal(t, "Stopped", Stopped.String())
	assert.Equal(t, "Unknown", State(42).String())
}

func TestConfigFromSettings(t *testing.T) {
	cfg := ConfigFromSettings(settings.Defaults())
	assert.True(t, cfg.Enabled)
	assert.Equal(t, time.Minute, cfg.IdleThreshold)
}

func TestStartDisabledIsNoop(t *testing.T) {
	c := NewCoordinator(Config{Enabled: false}, &fakeEngine{}, &scriptedMonitor{})
	c.Start()
	assert.False(t, c.IsActive())
	c.Stop()
	assert.Empty(t, drain(c.States()), "stopping an inactive coordinator emits nothing")
}

func TestStartStopIdempotent(t *testing.T) {
	h := newHarness(t, time.Minute)
	h.c.Start()
	h.c.Start()
	assert.True(t, h.c.IsActive())
	assert.Equal(t, PollInterval, h.sleep.parked(t))

	h.c.Stop()
	h.c.Stop()
	assert.False(t, h.c.IsActive())
	assert.Equal(t, []State{Stopped}, drain(h.c.States()))
}

func TestIdleStartsEngineOnce(t *testing.T) {
	h := newHarness(t, 60*time.Second)
	h.start(t)

	h.mon.set(60*time.Second+time.Millisecond, false)
	h.sleep.poll(t)
	assert.True(t, h.eng.IsRunning())
	assert.Equal(t, []State{Jiggling}, drain(h.c.States()))

	// Further polls with the same readings change nothing.
	h.sleep.poll(t)
	h.sleep.poll(t)
	assert.Empty(t, drain(h.c.States()))
	starts, _ := h.eng.counts()
	assert.Equal(t, 1, starts)
}

func TestIdleAtThresholdDoesNotJiggle(t *testing.T) {
	h := newHarness(t, 60*time.Second)
	h.start(t)

	h.mon.set(60*time.Second, false)
	h.sleep.poll(t)
	assert.False(t, h.eng.IsRunning())
	assert.Empty(t, drain(h.c.States()))
}

func TestZeroThresholdJigglesOnAnyIdle(t *testing.T) {
	h := newHarness(t, 0)
	h.start(t)

	h.mon.set(time.Millisecond, false)
	h.sleep.poll(t)
	assert.True(t, h.eng.IsRunning())
}

func TestFullscreenSuppresses(t *testing.T) {
	h := newHarness(t, 10*time.Second)
	h.start(t)

	h.mon.set(time.Hour, true)
	h.sleep.poll(t)
	assert.False(t, h.eng.IsRunning(), "fullscreen keeps the engine stopped")
	assert.Empty(t, drain(h.c.States()))

	h.mon.set(time.Hour, false)
	h.sleep.poll(t)
	assert.True(t, h.eng.IsRunning())
	assert.Equal(t, []State{Jiggling}, drain(h.c.States()))

	h.mon.set(time.Hour, true)
	h.sleep.poll(t)
	assert.False(t, h.eng.IsRunning())
	assert.Equal(t, []State{Waiting}, drain(h.c.States()))
}

func TestUserActivityStopsEngine(t *testing.T) {
	h := newHarness(t, 10*time.Second, WithSelfInputDiscount(false))
	h.start(t)

	h.mon.set(11*time.Second, false)
	h.sleep.poll(t)
	require.True(t, h.eng.IsRunning())

	h.mon.set(200*time.Millisecond, false)
	h.sleep.poll(t)
	assert.False(t, h.eng.IsRunning())
	assert.Equal(t, []State{Jiggling, Waiting}, drain(h.c.States()))
}

func TestSelfInputIsDiscounted(t *testing.T) {
	h := newHarness(t, 10*time.Second)
	h.start(t)

	h.mon.set(11*time.Second, false)
	h.sleep.poll(t)
	require.True(t, h.eng.IsRunning())
	drain(h.c.States())

	// The engine injected 100ms ago and the host idle clock reset with it.
	h.advance(20 * time.Second)
	h.eng.setLast(h.clock().Add(-100 * time.Millisecond))
	h.mon.set(100*time.Millisecond, false)
	h.sleep.poll(t)
	assert.True(t, h.eng.IsRunning(), "own injection must not look like user activity")
	assert.Empty(t, drain(h.c.States()))

	// Real input arrives well after the last injection.
	h.advance(5 * time.Second)
	h.mon.set(50*time.Millisecond, false)
	h.sleep.poll(t)
	assert.False(t, h.eng.IsRunning())
	assert.Equal(t, []State{Waiting}, drain(h.c.States()))
}

func TestSelfInputDiscountWhenHostIgnoresInjection(t *testing.T) {
	h := newHarness(t, 10*time.Second)
	h.start(t)

	h.mon.set(11*time.Second, false)
	h.sleep.poll(t)

	// Hosts that do not count synthetic input keep reporting growing idle.
	h.advance(time.Second)
	h.eng.setLast(h.clock().Add(-300 * time.Millisecond))
	h.mon.set(12*time.Second, false)
	h.sleep.poll(t)
	assert.True(t, h.eng.IsRunning())
}

func TestInputBeforeLastInjectionIsUserActivity(t *testing.T) {
	h := newHarness(t, 10*time.Second)
	h.start(t)

	h.mon.set(11*time.Second, false)
	h.sleep.poll(t)
	require.True(t, h.eng.IsRunning())
	drain(h.c.States())

	// The host skipped the latest injection but saw input 500ms ago, well
	// before that injection: the user is back.
	h.advance(20 * time.Second)
	h.eng.setLast(h.clock().Add(-10 * time.Millisecond))
	h.mon.set(500*time.Millisecond, false)
	h.sleep.poll(t)
	assert.False(t, h.eng.IsRunning())
	assert.Equal(t, []State{Waiting}, drain(h.c.States()))
}

func TestStopStopsRunningEngine(t *testing.T) {
	h := newHarness(t, time.Second)
	h.start(t)

	h.mon.set(time.Minute, false)
	h.sleep.poll(t)
	require.True(t, h.eng.IsRunning())

	h.c.Stop()
	assert.False(t, h.eng.IsRunning(), "no orphaned jiggling after zen stops")
	assert.Equal(t, []State{Jiggling, Stopped}, drain(h.c.States()))
}

func TestEngineStartFailure(t *testing.T) {
	h := newHarness(t, time.Second)
	h.eng.startErr = errors.New("bad config")
	h.start(t)

	h.mon.set(time.Minute, false)
	h.sleep.poll(t)
	assert.False(t, h.eng.IsRunning())
	assert.Empty(t, drain(h.c.States()))
}

func TestSetConfigAppliesOnNextStart(t *testing.T) {
	h := newHarness(t, time.Hour)
	h.start(t)

	h.mon.set(time.Minute, false)
	h.sleep.poll(t)
	assert.False(t, h.eng.IsRunning())

	h.c.SetConfig(Config{Enabled: true, IdleThreshold: time.Second})
	h.sleep.poll(t)
	assert.False(t, h.eng.IsRunning(), "running loop keeps its snapshot")

	h.c.Stop()
	h.c.Start()
	h.sleep.parked(t)
	h.sleep.poll(t)
	assert.True(t, h.eng.IsRunning())
}

func TestStatesBufferDropsInsteadOfBlocking(t *testing.T) {
	h := newHarness(t, time.Second, WithStateBuffer(1))
	h.start(t)

	for i := 0; i < 3; i++ {
		h.mon.set(time.Minute, false)
		h.sleep.poll(t)
		h.mon.set(0, false)
		h.sleep.poll(t)
	}
	assert.Len(t, drain(h.c.States()), 1)
}

// stalledMonitor blocks in IdleTime until released, like a hung helper tool.
type stalledMonitor struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (m *stalledMonitor) IdleTime() time.Duration {
	m.once.Do(func() { close(m.entered) })
	<-m.release
	return time.Hour
}

func (m *stalledMonitor) ForegroundFullscreen() bool { return false }

func TestSlowPollCannotStartEngineAfterStop(t *testing.T) {
	eng := &fakeEngine{}
	mon := &stalledMonitor{entered: make(chan struct{}), release: make(chan struct{})}
	noWait := jiggle.SleeperFunc(func(ctx context.Context, _ time.Duration) error { return ctx.Err() })

	c := NewCoordinator(Config{Enabled: true, IdleThreshold: time.Second}, eng, mon, WithSleeper(noWait))
	c.stopTimeout = 20 * time.Millisecond
	c.Start()
	done := c.done

	select {
	case <-mon.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("poll never queried the monitor")
	}

	c.Stop()
	assert.False(t, c.IsActive())
	assert.False(t, eng.IsRunning())

	// The stalled poll now reports a long idle time.
	close(mon.release)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poll loop did not exit")
	}

	assert.False(t, eng.IsRunning(), "engine must stay stopped once zen mode is off")
	starts, _ := eng.counts()
	assert.Zero(t, starts)
	assert.Equal(t, []State{Stopped}, drain(c.States()))
}
