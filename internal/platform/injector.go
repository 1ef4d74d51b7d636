// Package platform provides the host input injection primitive used to jiggle the pointer.
package platform

import (
	"errors"
	"fmt"
)

// ErrInjectionUnavailable is returned when no input injection method works on this host.
var ErrInjectionUnavailable = errors.New("input injection unavailable")

// Key identifies a neutral key that can be pulsed without side effects.
type Key int

const (
	// KeyF15 is absent from most keyboards and ignored by applications.
	KeyF15 Key = iota
	// KeyShift is used where F15 cannot be synthesized.
	KeyShift
)

func (k Key) String() string {
	switch k {
	case KeyF15:
		return "F15"
	case KeyShift:
		return "Shift"
	default:
		return fmt.Sprintf("Key(%d)", int(k))
	}
}

// Injector synthesizes relative pointer moves and key pulses.
type Injector interface {
	// MoveRelative moves the pointer by dx, dy pixels.
	MoveRelative(dx, dy int) error
	// KeyPulse presses and releases k.
	KeyPulse(k Key) error
	// Name describes the injection method for logs and the UI.
	Name() string
	Close() error
}

// Unavailable returns an Injector whose every call fails with
// ErrInjectionUnavailable wrapping cause. It lets the rest of the
// application run when the host offers no way to inject input.
func Unavailable(cause error) Injector {
	return &unavailableInjector{cause: cause}
}

type unavailableInjector struct {
	cause error
}

func (u *unavailableInjector) err() error {
	if u.cause == nil {
		return ErrInjectionUnavailable
	}
	return fmt.Errorf("%w: %w", ErrInjectionUnavailable, u.cause)
}

func (u *unavailableInjector) MoveRelative(dx, dy int) error { return u.err() }
func (u *unavailableInjector) KeyPulse(k Key) error          { return u.err() }
func (u *unavailableInjector) Name() string                  { return "unavailable" }
func (u *unavailableInjector) Close() error                  { return nil }
