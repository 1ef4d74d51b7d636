//go:build darwin

package monitor

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-vgo/robotgo"
)

// scriptExecutionTimeout limits how long we wait for ioreg or osascript.
const scriptExecutionTimeout = 3 * time.Second

var hidIdleTime = regexp.MustCompile(`"HIDIdleTime"\s*=\s*(\d+)`)

// frontWindowScript prints "x,y,w,h" of the frontmost window or "none".
const frontWindowScript = `
var se = Application("System Events");
var procs = se.processes.whose({frontmost: true});
if (procs.length === 0 || procs[0].windows.length === 0) {
	"none";
} else {
	var w = procs[0].windows[0];
	var p = w.position(), s = w.size();
	[p[0], p[1], s[0], s[1]].join(",");
}
`

type darwinMonitor struct {
	errs *errorLog
}

// New returns a monitor that reads HIDIdleTime from ioreg and the front
// window bounds through System Events.
func New() Monitor {
	return &darwinMonitor{errs: newErrorLog("darwin")}
}

func (m *darwinMonitor) IdleTime() time.Duration {
	d, err := hidIdle()
	m.errs.report("ioreg idle query", err)
	if err != nil {
		return 0
	}
	return d
}

func (m *darwinMonitor) ForegroundFullscreen() bool {
	win, ok, err := frontWindow()
	m.errs.report("front window query", err)
	if err != nil || !ok {
		return false
	}
	for i := 0; i < robotgo.DisplaysNum(); i++ {
		x, y, w, h := robotgo.GetDisplayBounds(i)
		if IsFullscreen(win, Rect{Left: x, Top: y, Right: x + w, Bottom: y + h}) {
			return true
		}
	}
	return false
}

func run(name string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), scriptExecutionTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, name, args...).Output()
	if ctx.Err() == context.DeadlineExceeded {
		return out, fmt.Errorf("%s timed out after %s", name, scriptExecutionTimeout)
	}
	return out, err
}

func hidIdle() (time.Duration, error) {
	out, err := run("ioreg", "-c", "IOHIDSystem")
	if err != nil {
		return 0, err
	}
	matches := hidIdleTime.FindSubmatch(out)
	if len(matches) < 2 {
		return 0, errors.New("HIDIdleTime not found in ioreg output")
	}
	nanos, err := strconv.ParseInt(string(matches[1]), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse HIDIdleTime: %w", err)
	}
	return time.Duration(nanos), nil
}

func frontWindow() (Rect, bool, error) {
	out, err := run("osascript", "-l", "JavaScript", "-e", frontWindowScript)
	if err != nil {
		return Rect{}, false, fmt.Errorf("osascript: %w", err)
	}
	text := strings.TrimSpace(string(out))
	if text == "none" || text == "" {
		return Rect{}, false, nil
	}
	parts := strings.Split(text, ",")
	if len(parts) != 4 {
		return Rect{}, false, fmt.Errorf("unexpected window bounds %q", text)
	}
	var v [4]int
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Rect{}, false, fmt.Errorf("parse window bounds %q: %w", text, err)
		}
		v[i] = int(f)
	}
	return Rect{Left: v[0], Top: v[1], Right: v[0] + v[2], Bottom: v[1] + v[3]}, true, nil
}
