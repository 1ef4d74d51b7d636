//go:build linux

package linux

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Geometry is a rectangle in X screen coordinates.
type Geometry struct {
	X, Y, Width, Height int
}

// ErrNoActiveWindow is returned when nothing has focus.
var ErrNoActiveWindow = errors.New("no active window")

// ActiveWindowGeometry returns the focused window's geometry using xdotool.
// Only X11 (and XWayland windows) can be queried this way.
func ActiveWindowGeometry() (Geometry, error) {
	out, err := runVerbose("xdotool", "getactivewindow", "getwindowgeometry", "--shell")
	if err != nil {
		if strings.Contains(out, "no window") || strings.Contains(out, "XGetWindowProperty") {
			return Geometry{}, ErrNoActiveWindow
		}
		return Geometry{}, fmt.Errorf("xdotool getwindowgeometry: %w (output: %q)", err, out)
	}
	return ParseShellGeometry(out)
}

// DisplayGeometry returns the size of the X screen.
func DisplayGeometry() (Geometry, error) {
	out, err := runVerbose("xdotool", "getdisplaygeometry")
	if err != nil {
		return Geometry{}, fmt.Errorf("xdotool getdisplaygeometry: %w (output: %q)", err, out)
	}
	fields := strings.Fields(out)
	if len(fields) != 2 {
		return Geometry{}, fmt.Errorf("unexpected display geometry %q", out)
	}
	w, err1 := strconv.Atoi(fields[0])
	h, err2 := strconv.Atoi(fields[1])
	if err := errors.Join(err1, err2); err != nil {
		return Geometry{}, fmt.Errorf("parse display geometry %q: %w", out, err)
	}
	return Geometry{Width: w, Height: h}, nil
}

// ScreenGeometries returns the rectangle of every active monitor from
// xrandr. Without xrandr it falls back to the whole X screen.
func ScreenGeometries() ([]Geometry, error) {
	if !hasCommand("xrandr") {
		g, err := DisplayGeometry()
		if err != nil {
			return nil, err
		}
		return []Geometry{g}, nil
	}
	out, err := runVerbose("xrandr", "--listactivemonitors")
	if err != nil {
		return nil, fmt.Errorf("xrandr --listactivemonitors: %w (output: %q)", err, out)
	}
	return ParseMonitorList(out)
}

// monitorGeometry matches the WIDTH/mmxHEIGHT/mm+X+Y field of a monitor line.
var monitorGeometry = regexp.MustCompile(`(\d+)/\d+x(\d+)/\d+([+-]\d+)([+-]\d+)`)

// ParseMonitorList parses the output of "xrandr --listactivemonitors":
//
//	Monitors: 2
//	 0: +*DP-1 2560/597x1440/336+0+0  DP-1
//	 1: +HDMI-1 1920/527x1080/296+2560+0  HDMI-1
func ParseMonitorList(out string) ([]Geometry, error) {
	var screens []Geometry
	for _, line := range strings.Split(out, "\n") {
		m := monitorGeometry.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		var nums [4]int
		for i, field := range m[1:] {
			n, err := strconv.Atoi(field)
			if err != nil {
				return nil, fmt.Errorf("parse monitor %q: %w", strings.TrimSpace(line), err)
			}
			nums[i] = n
		}
		screens = append(screens, Geometry{X: nums[2], Y: nums[3], Width: nums[0], Height: nums[1]})
	}
	if len(screens) == 0 {
		return nil, fmt.Errorf("no active monitors in %q", out)
	}
	return screens, nil
}

// ParseShellGeometry parses the KEY=value output of
// "xdotool getwindowgeometry --shell".
func ParseShellGeometry(out string) (Geometry, error) {
	var g Geometry
	seen := 0
	for _, line := range strings.Split(out, "\n") {
		key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
		if !ok {
			continue
		}
		var dst *int
		switch key {
		case "X":
			dst = &g.X
		case "Y":
			dst = &g.Y
		case "WIDTH":
			dst = &g.Width
		case "HEIGHT":
			dst = &g.Height
		default:
			continue
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return Geometry{}, fmt.Errorf("parse %s=%q: %w", key, value, err)
		}
		*dst = n
		seen++
	}
	if seen != 4 {
		return Geometry{}, fmt.Errorf("incomplete window geometry %q", out)
	}
	return g, nil
}
