//go:build windows

package platform

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	inputMouse    = 0
	inputKeyboard = 1

	mouseeventfMove = 0x0001
	keyeventfKeyUp  = 0x0002

	vkShift = 0x10
	vkF15   = 0x7E
)

var (
	moduser32     = windows.NewLazySystemDLL("user32.dll")
	procSendInput = moduser32.NewProc("SendInput")
)

type mouseInput struct {
	dx        int32
	dy        int32
	mouseData uint32
	flags     uint32
	time      uint32
	extraInfo uintptr
}

type mouseEvent struct {
	kind uint32
	mi   mouseInput
}

type keybdInput struct {
	vk        uint16
	scan      uint16
	flags     uint32
	time      uint32
	extraInfo uintptr
}

// keyEvent is padded to the size of the INPUT union's largest member.
type keyEvent struct {
	kind uint32
	ki   keybdInput
	_    [8]byte
}

// sendInputInjector injects input through user32 SendInput.
type sendInputInjector struct{}

// NewInjector returns the SendInput based injector.
func NewInjector() (Injector, error) {
	if err := procSendInput.Find(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInjectionUnavailable, err)
	}
	return &sendInputInjector{}, nil
}

func (s *sendInputInjector) MoveRelative(dx, dy int) error {
	ev := mouseEvent{
		kind: inputMouse,
		mi:   mouseInput{dx: int32(dx), dy: int32(dy), flags: mouseeventfMove},
	}
	return sendInput(1, unsafe.Pointer(&ev), unsafe.Sizeof(ev))
}

func (s *sendInputInjector) KeyPulse(k Key) error {
	vk := uint16(vkF15)
	if k == KeyShift {
		vk = vkShift
	}
	events := [2]keyEvent{
		{kind: inputKeyboard, ki: keybdInput{vk: vk}},
		{kind: inputKeyboard, ki: keybdInput{vk: vk, flags: keyeventfKeyUp}},
	}
	return sendInput(2, unsafe.Pointer(&events[0]), unsafe.Sizeof(events[0]))
}

func (s *sendInputInjector) Name() string { return "SendInput" }

func (s *sendInputInjector) Close() error { return nil }

func sendInput(n uint32, inputs unsafe.Pointer, size uintptr) error {
	r, _, err := procSendInput.Call(uintptr(n), uintptr(inputs), size)
	if uint32(r) != n {
		return fmt.Errorf("SendInput inserted %d of %d events: %w", r, n, err)
	}
	return nil
}
