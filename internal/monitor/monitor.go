// Package monitor answers the two host questions zen mode needs: how long
// the user has been idle and whether a fullscreen window has focus.
package monitor

import (
	"log"
	"sync"
	"time"
)

// Monitor queries the host for idle time and foreground window state.
// Implementations never fail: a query that cannot be answered reports the
// safe value (zero idle, not fullscreen) so zen mode errs towards not jiggling.
type Monitor interface {
	// IdleTime is the time since the last user input event.
	IdleTime() time.Duration
	// ForegroundFullscreen reports whether the focused top-level window
	// exactly covers the screen it is on. No focused window means false.
	ForegroundFullscreen() bool
}

// Rect is a screen rectangle. Right and Bottom are exclusive.
type Rect struct {
	Left, Top, Right, Bottom int
}

// IsFullscreen reports whether window matches screen on all four edges.
func IsFullscreen(window, screen Rect) bool {
	return window == screen && screen.Right > screen.Left && screen.Bottom > screen.Top
}

// ErrorLogInterval is how often a repeating query failure is logged.
const ErrorLogInterval = 2 * time.Minute

// errorLog rate-limits failure logging per query so a broken idle source
// logs once every ErrorLogInterval instead of once per poll.
type errorLog struct {
	mu       sync.Mutex
	platform string
	now      func() time.Time
	failing  map[string]time.Time
}

func newErrorLog(platform string) *errorLog {
	return &errorLog{platform: platform, now: time.Now, failing: make(map[string]time.Time)}
}

// report records the outcome of a query and reports whether a line was logged.
func (l *errorLog) report(query string, err error) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	last, wasFailing := l.failing[query]
	if err == nil {
		if wasFailing {
			delete(l.failing, query)
			log.Printf("%s: %s recovered", l.platform, query)
			return true
		}
		return false
	}

	now := l.now()
	if wasFailing && now.Sub(last) < ErrorLogInterval {
		return false
	}
	l.failing[query] = now
	log.Printf("%s: %s failed: %v", l.platform, query, err)
	return true
}
