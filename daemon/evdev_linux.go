//go:build linux

package daemon

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
	"unsafe"

	"github.com/badu/crossmacro/evcode"
	"golang.org/x/sys/unix"
)

const evdevDir = "/dev/input"

// evdevKeyBitmaskBytes is 0x300 bits, exactly covering codes up to
// KEY_MAX (0x2ff) with no headroom, and so the KEY_A..KEY_Z / BTN_LEFT bit positions §4.2's classifier inspects.
const evdevKeyBitmaskBytes = 96

// LinuxDeviceBackend discovers evdev devices and creates the uinput
// virtual device, the daemon/evdev_linux.go + daemon/uinput_linux.go
// half of DeviceBackend. Grounded on core/engine_linux.go's raw
// golang.org/x/sys/unix ioctl style.
type LinuxDeviceBackend struct{}

// NewLinuxDeviceBackend constructs the Linux DeviceBackend.
func NewLinuxDeviceBackend() *LinuxDeviceBackend {
	return &LinuxDeviceBackend{}
}

// DiscoverDevices scans /dev/input for eventN nodes, classifying each by
// its EV_KEY/EV_REL capability bitmask per §4.2's Device discovery rule.
func (b *LinuxDeviceBackend) DiscoverDevices() ([]InputDevice, error) {
	entries, err := os.ReadDir(evdevDir)
	if err != nil {
		return nil, fmt.Errorf("daemon: read %s: %w", evdevDir, err)
	}

	var names []string
	for _, e := range entries {
		if len(e.Name()) > 5 && e.Name()[:5] == "event" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var devices []InputDevice
	for _, name := range names {
		path := filepath.Join(evdevDir, name)
		fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK, 0)
		if err != nil {
			continue // permission denied or device vanished; skip silently
		}

		keyBits := make([]byte, evdevKeyBitmaskBytes)
		relBits := make([]byte, 4)
		ioctlGetBitmask(fd, uintptr(evcode.EV_KEY), keyBits)
		ioctlGetBitmask(fd, uintptr(evcode.EV_REL), relBits)

		isKeyboard := hasAnyLetterOrDigitBit(keyBits)
		isMouse := hasBit(relBits, uint(evcode.REL_X)) && hasBit(relBits, uint(evcode.REL_Y)) ||
			hasBit(keyBits, uint(evcode.BTN_LEFT))

		if !isKeyboard && !isMouse {
			unix.Close(fd)
			continue
		}

		devices = append(devices, &evdevDevice{
			path:       path,
			fd:         fd,
			isKeyboard: isKeyboard,
			isMouse:    isMouse,
		})
	}
	return devices, nil
}

func ioctlGetBitmask(fd int, evType uintptr, buf []byte) {
	req := eviocgbit(evType, uintptr(len(buf)))
	unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(unsafe.Pointer(&buf[0])))
}

func hasBit(bitmask []byte, code uint) bool {
	idx := code / 8
	if int(idx) >= len(bitmask) {
		return false
	}
	return bitmask[idx]&(1<<(code%8)) != 0
}

func hasAnyLetterOrDigitBit(keyBits []byte) bool {
	// KEY_Q(16)..KEY_P(25), KEY_A(30)..KEY_L(38), KEY_Z(44)..KEY_M(50),
	// KEY_1(2)..KEY_0(11) — the same ranges evcode.IsLetterOrDigit names.
	for code := uint(0); code < uint(len(keyBits))*8; code++ {
		if hasBit(keyBits, code) && evcode.IsLetterOrDigit(uint16(code)) {
			return true
		}
	}
	return false
}

// ReleaseAll has nothing to release: the backend keeps no handles.
func (b *LinuxDeviceBackend) ReleaseAll() {
	// The devices DiscoverDevices returned live in Server.inputs and are
	// closed by server.go's serveOneClient cleanup before this is called.
}

// evdevDevice is one opened /dev/input/eventN node.
type evdevDevice struct {
	path       string
	fd         int
	isKeyboard bool
	isMouse    bool
}

func (d *evdevDevice) Name() string     { return d.path }
func (d *evdevDevice) IsKeyboard() bool { return d.isKeyboard }
func (d *evdevDevice) IsMouse() bool    { return d.isMouse }

// ReadEvent blocks on a short poll(2) cycle so it can observe ctx
// cancellation, matching §4.2's "poll(2)-style multiplexing."
func (d *evdevDevice) ReadEvent(ctx context.Context) (kind uint8, code int32, value int32, ts int64, err error) {
	var buf [unsafe.Sizeof(inputEvent{})]byte

	for {
		if ctx.Err() != nil {
			return 0, 0, 0, 0, ctx.Err()
		}

		fds := []unix.PollFd{{Fd: int32(d.fd), Events: unix.POLLIN}}
		n, perr := unix.Poll(fds, 50)
		if perr != nil {
			if perr == unix.EINTR {
				continue
			}
			return 0, 0, 0, 0, perr
		}
		if n == 0 {
			continue // timeout, loop to recheck ctx
		}

		nread, rerr := unix.Read(d.fd, buf[:])
		if rerr != nil {
			if rerr == unix.EAGAIN {
				continue
			}
			return 0, 0, 0, 0, rerr
		}
		if nread < len(buf) {
			continue
		}

		ev := (*inputEvent)(unsafe.Pointer(&buf[0]))
		return classifyEventType(ev.typ, ev.code), int32(ev.code), ev.value, unixNanoToTimestamp(ev.sec, ev.usec), nil
	}
}

func (d *evdevDevice) Close() error {
	return unix.Close(d.fd)
}

// classifyEventType maps a kernel (EV_*, code) pair onto crossmacro's
// RawEvent kind tags (§3: 0=Key,1=MouseButton,2=MouseMove,3=MouseScroll,
// 4=Sync). EV_KEY carries both keyboard keys and BTN_* mouse buttons in
// the same namespace, so the code (not just the type) decides; EV_REL
// carries both pointer motion and the scroll wheel the same way.
func classifyEventType(evType, code uint16) uint8 {
	switch evType {
	case evcode.EV_SYN:
		return 4
	case evcode.EV_KEY:
		if code >= evcode.BTN_LEFT {
			return 1
		}
		return 0
	case evcode.EV_REL:
		if code == evcode.REL_WHEEL || code == evcode.REL_HWHEEL {
			return 3
		}
		return 2
	case evcode.EV_ABS:
		return 2
	default:
		return 0
	}
}

// unixNanoToTimestamp converts a kernel event time to RawEvent's 100ns ticks.
func unixNanoToTimestamp(sec, usec int64) int64 {
	return time.Unix(sec, usec*1000).UnixNano() / 100
}
