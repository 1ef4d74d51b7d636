//go:build linux

package monitor

import (
	"errors"
	"time"

	"github.com/stigoleg/mouse-jiggler/internal/platform/linux"
)

type linuxMonitor struct {
	idle *linux.IdleQuerier
	caps linux.Capabilities
	errs *errorLog
}

// New returns a monitor backed by GNOME's idle monitor or xprintidle, with
// xdotool for window geometry and xrandr for per-monitor bounds.
func New() Monitor {
	caps := linux.DetectCapabilities()
	return &linuxMonitor{
		idle: linux.NewIdleQuerier(caps),
		caps: caps,
		errs: newErrorLog("linux"),
	}
}

func (m *linuxMonitor) IdleTime() time.Duration {
	d, err := m.idle.IdleTime()
	m.errs.report("idle query", err)
	if err != nil {
		return 0
	}
	return d
}

func (m *linuxMonitor) ForegroundFullscreen() bool {
	if !m.caps.XdotoolAvailable {
		m.errs.report("fullscreen query", errors.New("xdotool not installed"))
		return false
	}

	win, err := linux.ActiveWindowGeometry()
	if errors.Is(err, linux.ErrNoActiveWindow) {
		return false
	}
	if err != nil {
		m.errs.report("fullscreen query", err)
		return false
	}
	screens, err := linux.ScreenGeometries()
	m.errs.report("fullscreen query", err)
	if err != nil {
		return false
	}
	return fullscreenOnAny(geometryRect(win), screens)
}

// fullscreenOnAny reports whether win exactly covers one of the screens.
func fullscreenOnAny(win Rect, screens []linux.Geometry) bool {
	for _, s := range screens {
		if IsFullscreen(win, geometryRect(s)) {
			return true
		}
	}
	return false
}

// Close releases the D-Bus connection used for idle queries.
func (m *linuxMonitor) Close() error {
	return m.idle.Close()
}

func geometryRect(g linux.Geometry) Rect {
	return Rect{Left: g.X, Top: g.Y, Right: g.X + g.Width, Bottom: g.Y + g.Height}
}
