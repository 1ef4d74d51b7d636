//go:build windows

package monitor

import (
	"errors"
	"fmt"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

const monitorDefaultToNearest = 0x00000002

var (
	moduser32            = windows.NewLazySystemDLL("user32.dll")
	modkernel32          = windows.NewLazySystemDLL("kernel32.dll")
	procGetLastInputInfo = moduser32.NewProc("GetLastInputInfo")
	procGetWindowRect    = moduser32.NewProc("GetWindowRect")
	procGetShellWindow   = moduser32.NewProc("GetShellWindow")
	procMonitorFromWin   = moduser32.NewProc("MonitorFromWindow")
	procGetMonitorInfo   = moduser32.NewProc("GetMonitorInfoW")
	procGetTickCount     = modkernel32.NewProc("GetTickCount")
)

type lastInputInfo struct {
	size uint32
	time uint32
}

type rect struct {
	left, top, right, bottom int32
}

func (r rect) toRect() Rect {
	return Rect{Left: int(r.left), Top: int(r.top), Right: int(r.right), Bottom: int(r.bottom)}
}

type monitorInfo struct {
	size    uint32
	monitor rect
	work    rect
	flags   uint32
}

type windowsMonitor struct {
	errs *errorLog
}

// New returns the Win32 monitor.
func New() Monitor {
	return &windowsMonitor{errs: newErrorLog("windows")}
}

// IdleTime compares the last input tick with the current tick count.
// Both are 32-bit millisecond counters, so the subtraction wraps correctly.
func (m *windowsMonitor) IdleTime() time.Duration {
	info := lastInputInfo{size: uint32(unsafe.Sizeof(lastInputInfo{}))}
	r, _, err := procGetLastInputInfo.Call(uintptr(unsafe.Pointer(&info)))
	if r == 0 {
		m.errs.report("GetLastInputInfo", err)
		return 0
	}
	m.errs.report("GetLastInputInfo", nil)

	tick, _, _ := procGetTickCount.Call()
	return time.Duration(uint32(tick)-info.time) * time.Millisecond
}

func (m *windowsMonitor) ForegroundFullscreen() bool {
	hwnd := windows.GetForegroundWindow()
	if hwnd == 0 {
		return false
	}
	if shell, _, _ := procGetShellWindow.Call(); shell == uintptr(hwnd) {
		return false
	}

	win, screen, err := windowAndMonitor(hwnd)
	m.errs.report("fullscreen query", err)
	if err != nil {
		return false
	}
	return IsFullscreen(win, screen)
}

// windowAndMonitor returns the window rectangle and the bounds of the
// monitor the window is on.
func windowAndMonitor(hwnd windows.HWND) (Rect, Rect, error) {
	var wr rect
	if r, _, err := procGetWindowRect.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&wr))); r == 0 {
		return Rect{}, Rect{}, fmt.Errorf("GetWindowRect: %w", err)
	}

	hmon, _, _ := procMonitorFromWin.Call(uintptr(hwnd), monitorDefaultToNearest)
	if hmon == 0 {
		return Rect{}, Rect{}, errors.New("MonitorFromWindow: no monitor for foreground window")
	}
	mi := monitorInfo{size: uint32(unsafe.Sizeof(monitorInfo{}))}
	if r, _, err := procGetMonitorInfo.Call(hmon, uintptr(unsafe.Pointer(&mi))); r == 0 {
		return Rect{}, Rect{}, fmt.Errorf("GetMonitorInfo: %w", err)
	}
	return wr.toRect(), mi.monitor.toRect(), nil
}
