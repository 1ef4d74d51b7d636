package jiggle

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stigoleg/mouse-jiggler/internal/platform"
	"github.com/stigoleg/mouse-jiggler/internal/settings"
)

type move struct{ dx, dy int }

type fakeInjector struct {
	mu    sync.Mutex
	moves []move
	keys  []platform.Key
	// failMoves makes the next n moves fail.
	failMoves int
	err       error
}

func (f *fakeInjector) MoveRelative(dx, dy int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failMoves > 0 {
		f.failMoves--
		return f.err
	}
	f.moves = append(f.moves, move{dx, dy})
	return nil
}

func (f *fakeInjector) KeyPulse(k platform.Key) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, k)
	return nil
}

func (f *fakeInjector) Name() string { return "fake" }
func (f *fakeInjector) Close() error { return nil }

func (f *fakeInjector) snapshot() ([]move, []platform.Key) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]move(nil), f.moves...), append([]platform.Key(nil), f.keys...)
}

// gateSleeper hands every interval wait to the test and returns step and
// pause sleeps immediately, optionally blocking on one step.
type gateSleeper struct {
	waits   chan time.Duration
	release chan struct{}

	mu        sync.Mutex
	steps     []time.Duration
	blockStep int
	blocked   chan struct{}
}

func newGateSleeper() *gateSleeper {
	return &gateSleeper{
		waits:   make(chan time.Duration),
		release: make(chan struct{}),
		blocked: make(chan struct{}),
	}
}

func (s *gateSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d >= time.Second {
		select {
		case s.waits <- d:
		case <-ctx.Done():
			return ctx.Err()
		}
		select {
		case <-s.release:
			return ctx.Err()
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	s.mu.Lock()
	s.steps = append(s.steps, d)
	n := len(s.steps)
	s.mu.Unlock()

	if s.blockStep > 0 && n == s.blockStep {
		close(s.blocked)
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

func (s *gateSleeper) nextWait(t *testing.T) time.Duration {
	t.Helper()
	select {
	case d := <-s.waits:
		return d
	case <-time.After(2 * time.Second):
		t.Fatal("engine never started an interval wait")
		return 0
	}
}

type recorder struct {
	mu      sync.Mutex
	reports []CycleReport
}

func (r *recorder) RecordCycle(rep CycleReport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, rep)
}

func (r *recorder) all() []CycleReport {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]CycleReport(nil), r.reports...)
}

func waitEvent(t *testing.T, ch <-chan Event, kind EventKind) Event {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev := <-ch:
			if ev.Kind == kind {
				return ev
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s event", kind)
			return Event{}
		}
	}
}

func testConfig() Config {
	return ConfigFromSettings(settings.Settings{
		MinIntervalSeconds: 10,
		MaxIntervalSeconds: 10,
		JiggleDistance:     5,
	})
}

func TestDrawDelayBounds(t *testing.T) {
	bounds := []struct{ min, max int }{{1, 1}, {1, 2}, {10, 45}, {3, 4}, {60, 600}}
	for seed := int64(1); seed <= 50; seed++ {
		rnd := rand.New(rand.NewSource(seed))
		for _, b := range bounds {
			cfg := Config{MinInterval: time.Duration(b.min) * time.Second, MaxInterval: time.Duration(b.max) * time.Second}
			for i := 0; i < 100; i++ {
				d := drawDelay(rnd, cfg)
				if b.min == b.max {
					require.Equal(t, cfg.MinInterval, d)
					continue
				}
				require.GreaterOrEqual(t, d, cfg.MinInterval)
				require.Less(t, d, cfg.MaxInterval)
				require.Zero(t, d%time.Millisecond, "delay has millisecond resolution")
			}
		}
	}
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, testConfig().Validate())

	cfg := testConfig()
	cfg.MinInterval = 0
	assert.Error(t, cfg.Validate())

	cfg = testConfig()
	cfg.MaxInterval = cfg.MinInterval - time.Second
	assert.Error(t, cfg.Validate())

	cfg = testConfig()
	cfg.Distance = -1
	assert.Error(t, cfg.Validate())
}

func TestConfigFromSettings(t *testing.T) {
	cfg := ConfigFromSettings(settings.Defaults())
	assert.Equal(t, 10*time.Second, cfg.MinInterval)
	assert.Equal(t, 45*time.Second, cfg.MaxInterval)
	assert.Equal(t, 5, cfg.Distance)
	assert.False(t, cfg.PhantomKeystroke)
}

func TestStartStopIdempotent(t *testing.T) {
	sl := newGateSleeper()
	e := NewEngine(testConfig(), &fakeInjector{}, WithSleeper(sl))

	assert.False(t, e.IsRunning())
	e.Stop() // no-op while idle
	assert.False(t, e.IsRunning())

	require.NoError(t, e.Start())
	require.NoError(t, e.Start())
	assert.True(t, e.IsRunning())
	waitEvent(t, e.Events(), EventStarted)

	e.Stop()
	e.Stop()
	assert.False(t, e.IsRunning())
	ev := waitEvent(t, e.Events(), EventStopped)
	assert.Equal(t, "stopped by external stop", ev.Reason)

	select {
	case ev := <-e.Events():
		t.Fatalf("unexpected extra event %s", ev.Kind)
	default:
	}
}

func TestStartInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.MinInterval = 0
	e := NewEngine(cfg, &fakeInjector{})
	assert.Error(t, e.Start())
	assert.False(t, e.IsRunning())
}

func TestCycleNetDisplacement(t *testing.T) {
	for _, phantom := range []bool{false, true} {
		name := "no phantom key"
		if phantom {
			name = "phantom key"
		}
		t.Run(name, func(t *testing.T) {
			cfg := testConfig()
			cfg.PhantomKeystroke = phantom

			inj := &fakeInjector{}
			sl := newGateSleeper()
			rec := &recorder{}
			e := NewEngine(cfg, inj, WithSleeper(sl), WithRecorder(rec), WithRand(rand.New(rand.NewSource(11))))

			require.NoError(t, e.Start())
			defer e.Stop()

			assert.Equal(t, 10*time.Second, sl.nextWait(t))
			sl.release <- struct{}{}
			waitEvent(t, e.Events(), EventCycle)

			moves, keys := inj.snapshot()
			require.Len(t, moves, 2*Steps)

			reports := rec.all()
			require.Len(t, reports, 1)
			require.NoError(t, reports[0].Err)
			ex, ey := reports[0].End.Round()
			assert.LessOrEqual(t, abs(ex), 5)
			assert.LessOrEqual(t, abs(ey), 5)

			sx, sy := 0, 0
			for _, m := range moves[:Steps] {
				sx += m.dx
				sy += m.dy
			}
			assert.InDelta(t, ex, sx, 1, "outbound leg reaches the endpoint")
			assert.InDelta(t, ey, sy, 1)

			for _, m := range moves[Steps:] {
				sx += m.dx
				sy += m.dy
			}
			assert.InDelta(t, 0, sx, 1, "inbound leg returns to origin")
			assert.InDelta(t, 0, sy, 1)

			if phantom {
				assert.Equal(t, []platform.Key{platform.KeyF15}, keys)
				assert.True(t, reports[0].Keystroke)
			} else {
				assert.Empty(t, keys)
			}

			sl.mu.Lock()
			steps := append([]time.Duration(nil), sl.steps...)
			sl.mu.Unlock()
			require.Len(t, steps, 2*Steps+1)
			assert.Equal(t, LegDuration/Steps, steps[0])
			assert.Equal(t, LegPause, steps[Steps])

			assert.Equal(t, SimulationHealthOK, e.Health())
			assert.EqualValues(t, 1, e.Cycles())
		})
	}
}

func TestStopDuringDelayEmitsNothing(t *testing.T) {
	inj := &fakeInjector{}
	sl := newGateSleeper()
	e := NewEngine(testConfig(), inj, WithSleeper(sl))

	require.NoError(t, e.Start())
	sl.nextWait(t)
	e.Stop()

	// Releasing after stop must not produce a cycle.
	select {
	case sl.release <- struct{}{}:
		t.Fatal("engine still waiting after Stop")
	case <-time.After(50 * time.Millisecond):
	}

	moves, keys := inj.snapshot()
	assert.Empty(t, moves)
	assert.Empty(t, keys)
	assert.True(t, e.LastInjection().IsZero())
}

func TestStopMidCycleAbandonsCycle(t *testing.T) {
	inj := &fakeInjector{}
	sl := newGateSleeper()
	sl.blockStep = 5
	rec := &recorder{}
	e := NewEngine(testConfig(), inj, WithSleeper(sl), WithRecorder(rec))

	require.NoError(t, e.Start())
	sl.nextWait(t)
	sl.release <- struct{}{}

	select {
	case <-sl.blocked:
	case <-time.After(2 * time.Second):
		t.Fatal("cycle never reached the blocking step")
	}

	e.Stop()
	moves, _ := inj.snapshot()
	assert.Len(t, moves, 5)

	time.Sleep(20 * time.Millisecond)
	after, _ := inj.snapshot()
	assert.Len(t, after, 5, "no injection after Stop returns")
	assert.Empty(t, rec.all(), "abandoned cycles are not reported")
}

func TestInjectionFailureIsReportedAndRecovered(t *testing.T) {
	boom := errors.New("device gone")
	inj := &fakeInjector{failMoves: 1, err: boom}
	sl := newGateSleeper()
	rec := &recorder{}
	e := NewEngine(testConfig(), inj, WithSleeper(sl), WithRecorder(rec))

	require.NoError(t, e.Start())
	defer e.Stop()

	sl.nextWait(t)
	sl.release <- struct{}{}
	ev := waitEvent(t, e.Events(), EventCycleFailed)
	assert.ErrorIs(t, ev.Err, boom)

	var injErr *InjectionError
	require.ErrorAs(t, ev.Err, &injErr)
	assert.Equal(t, "move", injErr.Op)

	assert.Equal(t, SimulationHealthFailed, e.Health())
	assert.True(t, e.IsRunning(), "a failed cycle does not stop the engine")

	sl.nextWait(t)
	sl.release <- struct{}{}
	waitEvent(t, e.Events(), EventCycle)
	assert.Equal(t, SimulationHealthOK, e.Health())

	reports := rec.all()
	require.Len(t, reports, 2)
	assert.Error(t, reports[0].Err)
	assert.NoError(t, reports[1].Err)
}

func TestUnavailableInjectorFailsCycles(t *testing.T) {
	sl := newGateSleeper()
	e := NewEngine(testConfig(), platform.Unavailable(nil), WithSleeper(sl))
	require.NoError(t, e.Start())
	defer e.Stop()

	sl.nextWait(t)
	sl.release <- struct{}{}
	ev := waitEvent(t, e.Events(), EventCycleFailed)
	assert.ErrorIs(t, ev.Err, platform.ErrInjectionUnavailable)
}

func TestLastInjectionUsesClock(t *testing.T) {
	fixed := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	sl := newGateSleeper()
	e := NewEngine(testConfig(), &fakeInjector{}, WithSleeper(sl), WithClock(func() time.Time { return fixed }))

	require.NoError(t, e.Start())
	defer e.Stop()
	sl.nextWait(t)
	sl.release <- struct{}{}
	waitEvent(t, e.Events(), EventCycle)

	assert.True(t, e.LastInjection().Equal(fixed))
}

func TestSetConfigAppliesOnNextStart(t *testing.T) {
	sl := newGateSleeper()
	e := NewEngine(testConfig(), &fakeInjector{}, WithSleeper(sl))
	require.NoError(t, e.Start())
	assert.Equal(t, 10*time.Second, sl.nextWait(t))

	next := testConfig()
	next.MinInterval, next.MaxInterval = 3*time.Second, 3*time.Second
	e.SetConfig(next)
	e.Stop()

	require.NoError(t, e.Start())
	defer e.Stop()
	assert.Equal(t, 3*time.Second, sl.nextWait(t))
}

func TestSleepCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := Sleep(ctx, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)

	assert.NoError(t, Sleep(context.Background(), 0))
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
