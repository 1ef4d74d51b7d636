//go:build linux

package linux

import (
	"errors"
	"fmt"
	"log"
	"strconv"
)

// Mover executes relative pointer moves and key pulses.
type Mover interface {
	Move(dx, dy int) error
	Key(code uint16) error
	Name() string
	Close() error
}

// UinputMover implements Mover on a uinput Device.
type UinputMover struct {
	Dev *Device
}

func (u *UinputMover) Move(dx, dy int) error {
	return u.Dev.Move(dx, dy)
}

func (u *UinputMover) Key(code uint16) error {
	return u.Dev.Key(code)
}

func (u *UinputMover) Name() string {
	return "uinput"
}

func (u *UinputMover) Close() error {
	return u.Dev.Close()
}

// CommandMover implements Mover with an external tool such as ydotool or xdotool.
type CommandMover struct {
	Cmd      string
	MoveArgs []string
	// KeyArgs builds the arguments for a key pulse.
	KeyArgs func(code uint16) []string
}

// NewYdotoolMover returns a mover that drives ydotool. It needs ydotoold running.
func NewYdotoolMover() *CommandMover {
	return &CommandMover{
		Cmd:      "ydotool",
		MoveArgs: []string{"mousemove", "--"},
		KeyArgs: func(code uint16) []string {
			c := strconv.Itoa(int(code))
			return []string{"key", c + ":1", c + ":0"}
		},
	}
}

// NewXdotoolMover returns a mover that drives xdotool. It only works on X11.
func NewXdotoolMover() *CommandMover {
	return &CommandMover{
		Cmd:      "xdotool",
		MoveArgs: []string{"mousemove_relative", "--"},
		KeyArgs: func(code uint16) []string {
			name := "F15"
			if code == KeyLeftShift {
				name = "Shift_L"
			}
			return []string{"key", name}
		},
	}
}

func (c *CommandMover) Move(dx, dy int) error {
	args := append(append([]string(nil), c.MoveArgs...), strconv.Itoa(dx), strconv.Itoa(dy))
	if out, err := runVerbose(c.Cmd, args...); err != nil {
		return fmt.Errorf("%s: %w (output: %q)", c.Cmd, err, out)
	}
	return nil
}

func (c *CommandMover) Key(code uint16) error {
	if out, err := runVerbose(c.Cmd, c.KeyArgs(code)...); err != nil {
		return fmt.Errorf("%s: %w (output: %q)", c.Cmd, err, out)
	}
	return nil
}

func (c *CommandMover) Name() string {
	return c.Cmd
}

func (c *CommandMover) Close() error {
	return nil
}

// ErrNoMover is returned when no injection method is usable.
var ErrNoMover = errors.New("no usable mouse injection method")

// NewMover picks the best available injection method: uinput, then ydotool
// when its daemon runs, then xdotool on X11.
func NewMover(caps Capabilities) (Mover, error) {
	var errs []error

	if caps.UinputAvailable {
		dev, err := OpenDevice()
		if err == nil {
			log.Printf("linux: using uinput virtual device")
			return &UinputMover{Dev: dev}, nil
		}
		errs = append(errs, err)
		log.Printf("linux: uinput setup failed: %v", err)
	}

	if caps.YdotoolAvailable {
		if caps.YdotooldRunning {
			log.Printf("linux: using ydotool")
			return NewYdotoolMover(), nil
		}
		errs = append(errs, errors.New("ydotool installed but ydotoold is not running"))
	}

	if caps.XdotoolAvailable && caps.DisplayServer == DisplayServerX11 {
		log.Printf("linux: using xdotool")
		return NewXdotoolMover(), nil
	}

	errs = append(errs, ErrNoMover)
	return nil, errors.Join(errs...)
}
