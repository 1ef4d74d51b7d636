//go:build linux

package linux

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
)

// Mutter idle monitor D-Bus configuration.
const (
	idleMonitorDestination = "org.gnome.Mutter.IdleMonitor"
	idleMonitorObjectPath  = "/org/gnome/Mutter/IdleMonitor/Core"
	idleMonitorMethod      = "org.gnome.Mutter.IdleMonitor.GetIdletime"
)

// IdleQuerier reads the session idle time, preferring GNOME Mutter's idle
// monitor over D-Bus and falling back to xprintidle on X11.
type IdleQuerier struct {
	mu   sync.Mutex
	conn *dbus.Conn
	caps Capabilities
}

// NewIdleQuerier returns an idle querier for the detected session.
func NewIdleQuerier(caps Capabilities) *IdleQuerier {
	return &IdleQuerier{caps: caps}
}

// IdleTime returns the time since the last user input.
func (q *IdleQuerier) IdleTime() (time.Duration, error) {
	d, busErr := q.mutterIdle()
	if busErr == nil {
		return d, nil
	}
	if q.caps.DisplayServer == DisplayServerX11 && q.caps.XprintidleAvailable {
		return xprintidle()
	}
	return 0, fmt.Errorf("no idle source: %w", busErr)
}

func (q *IdleQuerier) mutterIdle() (time.Duration, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.conn == nil {
		conn, err := dbus.ConnectSessionBus()
		if err != nil {
			return 0, fmt.Errorf("connect session bus: %w", err)
		}
		q.conn = conn
	}

	var millis uint64
	obj := q.conn.Object(idleMonitorDestination, dbus.ObjectPath(idleMonitorObjectPath))
	if err := obj.Call(idleMonitorMethod, 0).Store(&millis); err != nil {
		var dbusErr dbus.Error
		if !errors.As(err, &dbusErr) {
			// Transport failure: reconnect on the next query.
			q.conn.Close()
			q.conn = nil
		}
		return 0, fmt.Errorf("%s: %w", idleMonitorMethod, err)
	}
	return time.Duration(millis) * time.Millisecond, nil
}

// Close releases the D-Bus connection.
func (q *IdleQuerier) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.conn == nil {
		return nil
	}
	err := q.conn.Close()
	q.conn = nil
	return err
}

// xprintidle only works on X11.
func xprintidle() (time.Duration, error) {
	out, err := runVerbose("xprintidle")
	if err != nil {
		return 0, err
	}
	millis, err := strconv.ParseInt(out, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse xprintidle output %q: %w", out, err)
	}
	return time.Duration(millis) * time.Millisecond, nil
}
