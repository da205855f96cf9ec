//go:build linux

package daemon

import "unsafe"

// Kernel uapi wire structs for /dev/input/eventN and /dev/uinput,
// reproduced as unexported fixed-layout structs the way
// andrieee44-mylib's linux/input package reproduces struct input_event,
// struct input_id, and struct input_absinfo — here read and written
// directly via unsafe.Pointer + golang.org/x/sys/unix's raw ioctl
// syscall, matching the teacher's syscall-only (no cgo) style in
// core/engine_linux.go.
type inputEvent struct {
	sec   int64
	usec  int64
	typ   uint16
	code  uint16
	value int32
}

type inputID struct {
	bustype uint16
	vendor  uint16
	product uint16
	version uint16
}

const uinputMaxNameSize = 80

type uinputSetup struct {
	id           inputID
	name         [uinputMaxNameSize]byte
	ffEffectsMax uint32
}

type uinputAbsSetup struct {
	code uint16
	_    [2]byte // align absInfo to its 4-byte (int32) boundary
	abs  absInfo
}

type absInfo struct {
	value      int32
	minimum    int32
	maximum    int32
	fuzz       int32
	flat       int32
	resolution int32
}

// _IOC direction/shift constants from asm-generic/ioctl.h.
const (
	iocNrBits   = 8
	iocTypeBits = 8
	iocSizeBits = 14

	iocNrShift   = 0
	iocTypeShift = iocNrShift + iocNrBits
	iocSizeShift = iocTypeShift + iocTypeBits
	iocDirShift  = iocSizeShift + iocSizeBits

	iocNone  = 0
	iocWrite = 1
	iocRead  = 2
)

func ioc(dir, typ, nr, size uintptr) uintptr {
	return dir<<iocDirShift | typ<<iocTypeShift | nr<<iocNrShift | size<<iocSizeShift
}

func iow(typ, nr, size uintptr) uintptr { return ioc(iocWrite, typ, nr, size) }
func ior(typ, nr, size uintptr) uintptr { return ioc(iocRead, typ, nr, size) }
func ioNoArgs(typ, nr uintptr) uintptr  { return ioc(iocNone, typ, nr, 0) }

const uinputIoctlBase uintptr = 'U'
const eventIoctlBase uintptr = 'E'

var (
	uiDevCreate  = ioNoArgs(uinputIoctlBase, 1)
	uiDevDestroy = ioNoArgs(uinputIoctlBase, 2)
	uiDevSetup   = iow(uinputIoctlBase, 3, unsafe.Sizeof(uinputSetup{}))
	uiAbsSetup   = iow(uinputIoctlBase, 4, unsafe.Sizeof(uinputAbsSetup{}))
	uiSetEvBit   = iow(uinputIoctlBase, 100, 4)
	uiSetKeyBit  = iow(uinputIoctlBase, 101, 4)
	uiSetRelBit  = iow(uinputIoctlBase, 102, 4)
	uiSetAbsBit  = iow(uinputIoctlBase, 103, 4)
	uiSetPropBit = iow(uinputIoctlBase, 110, 4)
)

func eviocgbit(ev, length uintptr) uintptr {
	return ior(eventIoctlBase, 0x20+ev, length)
}
