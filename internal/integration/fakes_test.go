package integration

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/stigoleg/mouse-jiggler/internal/jiggle"
	"github.com/stigoleg/mouse-jiggler/internal/platform"
)

// recordingInjector tracks the pointer offset and where each key pulse
// happened.
type recordingInjector struct {
	mu    sync.Mutex
	x, y  int
	moves int
	atKey [][2]int
	fail  bool
}

func (r *recordingInjector) MoveRelative(dx, dy int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("injection denied")
	}
	r.x += dx
	r.y += dy
	r.moves++
	return nil
}

func (r *recordingInjector) KeyPulse(platform.Key) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.atKey = append(r.atKey, [2]int{r.x, r.y})
	return nil
}

func (r *recordingInjector) Name() string { return "recording" }
func (r *recordingInjector) Close() error { return nil }

func (r *recordingInjector) setFail(fail bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail = fail
}

func (r *recordingInjector) keyOffsets() [][2]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][2]int(nil), r.atKey...)
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

// fastSleeper runs every wait a thousand times faster, so second-scale
// intervals take milliseconds.
type fastSleeper struct{}

func (fastSleeper) Sleep(ctx context.Context, d time.Duration) error {
	return jiggle.Sleep(ctx, d/1000)
}
