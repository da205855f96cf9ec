//go:build linux

package capture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
	"unsafe"

	"github.com/badu/crossmacro"
	"github.com/badu/crossmacro/evcode"
	"golang.org/x/sys/unix"
)

// LegacyEvdevProvider reads /dev/input/eventN nodes directly, bypassing
// the daemon entirely. It only works when the calling process itself
// has read access to the device nodes (typically root), which is why
// Select only ever picks KindLegacyEvdev as a last-resort fallback.
//
// Grounded on daemon/evdev_linux.go's discovery/classification/ioctl
// technique, reproduced here rather than imported: the daemon's helpers
// are unexported package-internal details of a different binary, and
// this backend runs in-process inside whatever calls capture.Select,
// not inside crossmacrod.
type LegacyEvdevProvider struct {
	mu      sync.Mutex
	devices []*legacyDevice
	events  chan crossmacro.RawEvent
	errs    chan error
	died    chan struct{}
	cancel  context.CancelFunc
}

// NewLegacyEvdevProvider constructs an unstarted provider.
func NewLegacyEvdevProvider() *LegacyEvdevProvider {
	return &LegacyEvdevProvider{
		events: make(chan crossmacro.RawEvent, eventBufferSize),
		errs:   make(chan error, 1),
		died:   make(chan struct{}),
	}
}

const legacyEvdevDir = "/dev/input"
const legacyKeyBitmaskBytes = 96

func (p *LegacyEvdevProvider) Start(ctx context.Context, mouse, keyboard bool) error {
	entries, err := os.ReadDir(legacyEvdevDir)
	if err != nil {
		return fmt.Errorf("capture: read %s: %w", legacyEvdevDir, err)
	}

	var names []string
	for _, e := range entries {
		if len(e.Name()) > 5 && e.Name()[:5] == "event" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var opened []*legacyDevice
	for _, name := range names {
		path := filepath.Join(legacyEvdevDir, name)
		fd, oerr := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK, 0)
		if oerr != nil {
			continue
		}

		keyBits := make([]byte, legacyKeyBitmaskBytes)
		relBits := make([]byte, 4)
		legacyIoctlGetBitmask(fd, uintptr(evcode.EV_KEY), keyBits)
		legacyIoctlGetBitmask(fd, uintptr(evcode.EV_REL), relBits)

		isKeyboard := legacyHasAnyLetterOrDigitBit(keyBits)
		isMouse := legacyHasBit(relBits, uint(evcode.REL_X)) && legacyHasBit(relBits, uint(evcode.REL_Y)) ||
			legacyHasBit(keyBits, uint(evcode.BTN_LEFT))

		if !keyboard && isKeyboard && !isMouse {
			unix.Close(fd)
			continue
		}
		if !mouse && isMouse && !isKeyboard {
			unix.Close(fd)
			continue
		}
		if !isKeyboard && !isMouse {
			unix.Close(fd)
			continue
		}

		opened = append(opened, &legacyDevice{path: path, fd: fd})
	}

	if len(opened) == 0 {
		return crossmacro.ErrDeviceUnavailable
	}

	runCtx, cancel := context.WithCancel(ctx)
	p.mu.Lock()
	p.devices = opened
	p.cancel = cancel
	p.mu.Unlock()

	var wg sync.WaitGroup
	for _, d := range opened {
		wg.Add(1)
		go func(d *legacyDevice) {
			defer wg.Done()
			p.readLoop(runCtx, d)
		}(d)
	}

	go func() {
		wg.Wait()
		close(p.died)
	}()
	return nil
}

func (p *LegacyEvdevProvider) readLoop(ctx context.Context, d *legacyDevice) {
	for {
		kind, code, value, ts, err := d.readEvent(ctx)
		if err != nil {
			if ctx.Err() == nil {
				select {
				case p.errs <- err:
				default:
				}
			}
			return
		}
		ev := crossmacro.RawEvent{Kind: crossmacro.EventKind(kind), Code: code, Value: value, Timestamp: ts}
		select {
		case p.events <- ev:
		default:
		}
	}
}

func (p *LegacyEvdevProvider) EventStream() <-chan crossmacro.RawEvent { return p.events }

func (p *LegacyEvdevProvider) ErrorStream() <-chan error { return p.errs }

func (p *LegacyEvdevProvider) DyingChan() chan struct{} { return p.died }

func (p *LegacyEvdevProvider) Stop() error {
	p.mu.Lock()
	cancel := p.cancel
	devices := p.devices
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	for _, d := range devices {
		d.close()
	}
	return nil
}

type legacyDevice struct {
	path string
	fd   int
}

func (d *legacyDevice) readEvent(ctx context.Context) (kind uint8, code int32, value int32, ts int64, err error) {
	var buf [unsafe.Sizeof(legacyInputEvent{})]byte

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
			continue
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

		ev := (*legacyInputEvent)(unsafe.Pointer(&buf[0]))
		return legacyClassify(ev.typ, ev.code), int32(ev.code), ev.value, time.Unix(ev.sec, ev.usec*1000).UnixNano() / 100, nil
	}
}

func (d *legacyDevice) close() error {
	return unix.Close(d.fd)
}

// legacyInputEvent mirrors daemon's unexported inputEvent wire struct —
// struct input_event cannot be shared across packages without exporting
// it solely for this one reuse, so it is reproduced here instead.
type legacyInputEvent struct {
	sec   int64
	usec  int64
	typ   uint16
	code  uint16
	value int32
}

func legacyClassify(evType, code uint16) uint8 {
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

const legacyEviocgbitBase uintptr = 'E'

func legacyIoctlGetBitmask(fd int, evType uintptr, buf []byte) {
	req := ior(legacyEviocgbitBase, 0x20+evType, uintptr(len(buf)))
	unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(unsafe.Pointer(&buf[0])))
}

func legacyHasBit(bitmask []byte, code uint) bool {
	idx := code / 8
	if int(idx) >= len(bitmask) {
		return false
	}
	return bitmask[idx]&(1<<(code%8)) != 0
}

func legacyHasAnyLetterOrDigitBit(keyBits []byte) bool {
	for code := uint(0); code < uint(len(keyBits))*8; code++ {
		if legacyHasBit(keyBits, code) && evcode.IsLetterOrDigit(uint16(code)) {
			return true
		}
	}
	return false
}

// ior mirrors daemon/uapi_linux.go's _IOC read-direction encoder (see
// that file for the asm-generic/ioctl.h derivation this repeats).
func ior(typ, nr, size uintptr) uintptr {
	const (
		iocNrBits    = 8
		iocTypeBits  = 8
		iocSizeBits  = 14
		iocNrShift   = 0
		iocTypeShift = iocNrShift + iocNrBits
		iocSizeShift = iocTypeShift + iocTypeBits
		iocDirShift  = iocSizeShift + iocSizeBits
		iocRead      = 2
	)
	return iocRead<<iocDirShift | typ<<iocTypeShift | nr<<iocNrShift | size<<iocSizeShift
}
