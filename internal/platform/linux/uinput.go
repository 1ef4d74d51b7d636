//go:build linux

package linux

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// uinput constants.
const (
	uinputDevicePath = "/dev/uinput"
	uinputBusTypeUSB = 0x03
	uinputVendorID   = 0x1234
	uinputProductID  = 0x5679
	uinputDeviceName = "mouse-jiggler"

	// Linux input event types and codes
	evSyn     = 0x00
	evKey     = 0x01
	evRel     = 0x02
	relX      = 0x00
	relY      = 0x01
	synReport = 0x00
	btnLeft   = 0x110

	// uinput ioctl commands
	uiSetEvbit   = 0x40045564 // _IOW('U', 100, int)
	uiSetKeybit  = 0x40045565 // _IOW('U', 101, int)
	uiSetRelbit  = 0x40045566 // _IOW('U', 102, int)
	uiDevCreate  = 0x5501     // _IO('U', 1)
	uiDevDestroy = 0x5502     // _IO('U', 2)
)

// Key codes from linux/input-event-codes.h.
const (
	KeyLeftShift uint16 = 42
	KeyF15       uint16 = 185
)

type uinputUserDev struct {
	name [80]byte
	id   struct {
		bustype uint16
		vendor  uint16
		product uint16
		version uint16
	}
	ffEffectsMax uint32
	absmax       [64]int32
	absmin       [64]int32
	absfuzz      [64]int32
	absflat      [64]int32
}

type inputEvent struct {
	time  unix.Timeval
	etype uint16
	code  uint16
	value int32
}

// Device is a virtual pointer and keyboard created through the uinput kernel interface.
type Device struct {
	file *os.File
}

// OpenDevice creates the virtual device. The caller must Close it.
func OpenDevice() (*Device, error) {
	f, err := os.OpenFile(uinputDevicePath, os.O_WRONLY|unix.O_NONBLOCK, 0660)
	if err != nil {
		return nil, fmt.Errorf("open uinput device: %w", err)
	}
	d := &Device{file: f}

	if err := d.enableEvents(); err != nil {
		d.file.Close()
		return nil, fmt.Errorf("enable uinput events: %w", err)
	}
	if err := d.create(); err != nil {
		d.file.Close()
		return nil, fmt.Errorf("create uinput device: %w", err)
	}
	return d, nil
}

func (d *Device) fd() int {
	return int(d.file.Fd())
}

func (d *Device) enableEvents() error {
	settings := []struct {
		req   uint
		value int
	}{
		{uiSetEvbit, evRel},
		{uiSetRelbit, relX},
		{uiSetRelbit, relY},
		{uiSetEvbit, evKey},
		{uiSetKeybit, btnLeft},
		{uiSetKeybit, int(KeyLeftShift)},
		{uiSetKeybit, int(KeyF15)},
	}
	for _, s := range settings {
		if err := unix.IoctlSetInt(d.fd(), s.req, s.value); err != nil {
			return err
		}
	}
	return nil
}

func (d *Device) create() error {
	var dev uinputUserDev
	copy(dev.name[:], uinputDeviceName)
	dev.id.bustype = uinputBusTypeUSB
	dev.id.vendor = uinputVendorID
	dev.id.product = uinputProductID

	if _, err := d.file.Write(unsafe.Slice((*byte)(unsafe.Pointer(&dev)), unsafe.Sizeof(dev))); err != nil {
		return err
	}
	return unix.IoctlSetInt(d.fd(), uiDevCreate, 0)
}

// Move moves the pointer by the given relative amounts.
func (d *Device) Move(dx, dy int) error {
	return d.emit(
		inputEvent{etype: evRel, code: relX, value: int32(dx)},
		inputEvent{etype: evRel, code: relY, value: int32(dy)},
	)
}

// Key presses and releases the key with the given code.
func (d *Device) Key(code uint16) error {
	if err := d.emit(inputEvent{etype: evKey, code: code, value: 1}); err != nil {
		return err
	}
	return d.emit(inputEvent{etype: evKey, code: code, value: 0})
}

// emit writes events followed by a sync report.
func (d *Device) emit(events ...inputEvent) error {
	events = append(events, inputEvent{etype: evSyn, code: synReport})
	size := int(unsafe.Sizeof(events[0]))
	buf := unsafe.Slice((*byte)(unsafe.Pointer(&events[0])), size*len(events))
	_, err := d.file.Write(buf)
	return err
}

// Close destroys the virtual device.
func (d *Device) Close() error {
	if d.file == nil {
		return nil
	}
	unix.IoctlSetInt(d.fd(), uiDevDestroy, 0)
	err := d.file.Close()
	d.file = nil
	return err
}
