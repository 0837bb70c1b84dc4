//go:build linux

package backend

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/penwyp/go-mouse-recorder/internal/core/model"
	"github.com/penwyp/go-mouse-recorder/internal/util"
	"golang.org/x/sys/unix"
)

const uinputPath = "/dev/uinput"

// linux/uinput.h and linux/input-event-codes.h
const (
	uiSetEvBit   = 0x40045564
	uiSetKeyBit  = 0x40045565
	uiSetRelBit  = 0x40045566
	uiSetAbsBit  = 0x40045567
	uiDevCreate  = 0x5501
	uiDevDestroy = 0x5502

	evSyn uint16 = 0x00
	evKey uint16 = 0x01
	evRel uint16 = 0x02
	evAbs uint16 = 0x03

	synReport uint16 = 0
	btnLeft   uint16 = 0x110
	btnRight  uint16 = 0x111
	relWheel  uint16 = 0x08
	absX      uint16 = 0x00
	absY      uint16 = 0x01

	busUSB       = 0x03
	absCount     = 64
	uinputNameSz = 80

	// Time for the compositor to pick up the new device.
	uinputSettle = 200 * time.Millisecond
)

type uinputUserDev struct {
	Name         [uinputNameSz]byte
	BusType      uint16
	Vendor       uint16
	Product      uint16
	Version      uint16
	FFEffectsMax uint32
	AbsMax       [absCount]int32
	AbsMin       [absCount]int32
	AbsFuzz      [absCount]int32
	AbsFlat      [absCount]int32
}

type inputEvent struct {
	Time  unix.Timeval
	Type  uint16
	Code  uint16
	Value int32
}

// Uinput injects synthetic pointer input through a virtual absolute-pointer
// device created on /dev/uinput.
type Uinput struct {
	mu     sync.Mutex
	fd     int
	width  int
	height int
}

// OpenUinput creates the virtual device sized to a width x height screen.
func OpenUinput(width, height int) (*Uinput, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: invalid screen size %dx%d", model.ErrBackendUnavailable, width, height)
	}

	fd, err := unix.Open(uinputPath, unix.O_WRONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", model.ErrBackendUnavailable, uinputPath, err)
	}

	u := &Uinput{fd: fd, width: width, height: height}
	if err := u.setup(); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("%w: configure uinput device: %v", model.ErrBackendUnavailable, err)
	}
	time.Sleep(uinputSettle)

	util.LogInfof("Created uinput pointer device %dx%d", width, height)
	return u, nil
}

func (u *Uinput) setup() error {
	bits := []struct {
		req  uint
		code uint16
	}{
		{uiSetEvBit, evSyn},
		{uiSetEvBit, evKey},
		{uiSetEvBit, evRel},
		{uiSetEvBit, evAbs},
		{uiSetKeyBit, btnLeft},
		{uiSetKeyBit, btnRight},
		{uiSetRelBit, relWheel},
		{uiSetAbsBit, absX},
		{uiSetAbsBit, absY},
	}
	for _, bit := range bits {
		if err := unix.IoctlSetInt(u.fd, bit.req, int(bit.code)); err != nil {
			return fmt.Errorf("ioctl 0x%x(%d): %w", bit.req, bit.code, err)
		}
	}

	dev := uinputUserDev{
		BusType: busUSB,
		Vendor:  0x1234,
		Product: 0x5678,
		Version: 1,
	}
	copy(dev.Name[:], "go-mouse-recorder")
	dev.AbsMax[absX] = int32(u.width - 1)
	dev.AbsMax[absY] = int32(u.height - 1)

	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.NativeEndian, &dev); err != nil {
		return err
	}
	if _, err := unix.Write(u.fd, buf.Bytes()); err != nil {
		return fmt.Errorf("write device description: %w", err)
	}

	return unix.IoctlSetInt(u.fd, uiDevCreate, 0)
}

func (u *Uinput) MovePointer(x, y int) error {
	return u.emit(
		inputEvent{Type: evAbs, Code: absX, Value: int32(clamp(x, 0, u.width-1))},
		inputEvent{Type: evAbs, Code: absY, Value: int32(clamp(y, 0, u.height-1))},
	)
}

func (u *Uinput) InjectButton(button model.Button, transition model.Transition) error {
	code := btnLeft
	if button == model.ButtonRight {
		code = btnRight
	}
	value := int32(0)
	if transition == model.TransitionDown {
		value = 1
	}
	return u.emit(inputEvent{Type: evKey, Code: code, Value: value})
}

func (u *Uinput) InjectWheel(direction int) error {
	return u.emit(inputEvent{Type: evRel, Code: relWheel, Value: int32(direction)})
}

func (u *Uinput) emit(events ...inputEvent) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.fd < 0 {
		return fmt.Errorf("%w: uinput device closed", model.ErrBackendUnavailable)
	}

	var buf bytes.Buffer
	for _, ev := range append(events, inputEvent{Type: evSyn, Code: synReport}) {
		if err := binary.Write(&buf, binary.NativeEndian, &ev); err != nil {
			return fmt.Errorf("%w: encode input event: %v", model.ErrBackendUnavailable, err)
		}
	}
	if _, err := unix.Write(u.fd, buf.Bytes()); err != nil {
		return fmt.Errorf("%w: write input event: %v", model.ErrBackendUnavailable, err)
	}
	return nil
}

// Close destroys the virtual device.
func (u *Uinput) Close() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.fd < 0 {
		return nil
	}
	destroyErr := unix.IoctlSetInt(u.fd, uiDevDestroy, 0)
	closeErr := unix.Close(u.fd)
	u.fd = -1
	if destroyErr != nil {
		return destroyErr
	}
	return closeErr
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
