//go:build linux

package daemon

import (
	"fmt"
	"time"
	"unsafe"

	"github.com/badu/crossmacro/evcode"
	"golang.org/x/sys/unix"
)

const uinputPath = "/dev/uinput"

// CreateVirtualDevice opens /dev/uinput and builds a device supporting
// EV_KEY (codes 1..255), EV_REL (REL_X, REL_Y, REL_WHEEL), and, when
// width and height are positive, EV_ABS (ABS_X/ABS_Y clamped to
// [0,w-1]/[0,h-1]) plus INPUT_PROP_DIRECT — exactly §4.2's Virtual
// device section. A width/height of 0 creates a relative-only device.
func (b *LinuxDeviceBackend) CreateVirtualDevice(width, height int32) (VirtualDevice, error) {
	fd, err := unix.Open(uinputPath, unix.O_WRONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("daemon: open %s: %w", uinputPath, err)
	}

	if err := setupUinput(fd, width, height); err != nil {
		unix.Close(fd)
		return nil, err
	}

	if err := ioctlNoArg(fd, uiDevCreate); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("daemon: UI_DEV_CREATE: %w", err)
	}

	// §4.2: "sleep 100 ms to allow the kernel to settle before the first
	// event."
	time.Sleep(100 * time.Millisecond)

	return &uinputDevice{fd: fd}, nil
}

func setupUinput(fd int, width, height int32) error {
	if err := ioctlSetInt(fd, uiSetEvBit, uintptr(evcode.EV_KEY)); err != nil {
		return err
	}
	for code := uintptr(1); code <= 255; code++ {
		if err := ioctlSetInt(fd, uiSetKeyBit, code); err != nil {
			return err
		}
	}

	if err := ioctlSetInt(fd, uiSetEvBit, uintptr(evcode.EV_REL)); err != nil {
		return err
	}
	for _, code := range []uint16{evcode.REL_X, evcode.REL_Y, evcode.REL_WHEEL} {
		if err := ioctlSetInt(fd, uiSetRelBit, uintptr(code)); err != nil {
			return err
		}
	}

	if width > 0 && height > 0 {
		if err := ioctlSetInt(fd, uiSetEvBit, uintptr(evcode.EV_ABS)); err != nil {
			return err
		}
		if err := ioctlSetInt(fd, uiSetAbsBit, uintptr(evcode.ABS_X)); err != nil {
			return err
		}
		if err := ioctlSetInt(fd, uiSetAbsBit, uintptr(evcode.ABS_Y)); err != nil {
			return err
		}
		if err := ioctlSetInt(fd, uiSetPropBit, uintptr(evcode.INPUT_PROP_DIRECT)); err != nil {
			return err
		}
	}

	setup := uinputSetup{
		id: inputID{
			bustype: evcode.BUS_USB,
			vendor:  0x1209, // pid.codes test/prototype vendor ID
			product: 0x0001,
			version: 1,
		},
	}
	copy(setup.name[:], "crossmacro-virtual-input")

	if err := ioctlSetPointer(fd, uiDevSetup, unsafe.Pointer(&setup)); err != nil {
		return fmt.Errorf("daemon: UI_DEV_SETUP: %w", err)
	}

	if width > 0 && height > 0 {
		for _, a := range []struct {
			code uint16
			max  int32
		}{{evcode.ABS_X, width - 1}, {evcode.ABS_Y, height - 1}} {
			abs := uinputAbsSetup{code: a.code, abs: absInfo{minimum: 0, maximum: a.max}}
			if err := ioctlSetPointer(fd, uiAbsSetup, unsafe.Pointer(&abs)); err != nil {
				return fmt.Errorf("daemon: UI_ABS_SETUP: %w", err)
			}
		}
	}

	return nil
}

func ioctlNoArg(fd int, req uintptr) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, 0)
	if errno != 0 {
		return errno
	}
	return nil
}

func ioctlSetInt(fd int, req uintptr, value uintptr) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, value)
	if errno != 0 {
		return errno
	}
	return nil
}

func ioctlSetPointer(fd int, req uintptr, p unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(p))
	if errno != 0 {
		return errno
	}
	return nil
}

// uinputDevice is the created virtual input device.
type uinputDevice struct {
	fd int
}

// WriteEvent writes one struct input_event to the uinput fd (§4.2
// Simulation: "the client is responsible for emitting the trailing
// EV_SYN/SYN_REPORT itself").
func (u *uinputDevice) WriteEvent(evType, code uint16, value int32) error {
	now := time.Now()
	ev := inputEvent{
		sec:   now.Unix(),
		usec:  int64(now.Nanosecond() / 1000),
		typ:   evType,
		code:  code,
		value: value,
	}
	buf := (*[unsafe.Sizeof(inputEvent{})]byte)(unsafe.Pointer(&ev))[:]
	_, err := unix.Write(u.fd, buf)
	return err
}

// Destroy tears down the uinput device, per ClosingClient's "destroys
// the uinput device" transition.
func (u *uinputDevice) Destroy() error {
	ioctlNoArg(u.fd, uiDevDestroy)
	return unix.Close(u.fd)
}
