//go:build windows

package capture

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/badu/crossmacro"
	"github.com/badu/crossmacro/evcode"
)

// Grounded on LanternOps-breeze's windows input file and
// serty2005-clipQueue's platform/windows/input_listener.go: a pair of
// low-level SetWindowsHookEx hooks (WH_MOUSE_LL, WH_KEYBOARD_LL) pumped
// from a dedicated thread running a Win32 GetMessage loop, since hooks
// only deliver on the thread that installed them.
var (
	user32                 = windows.NewLazySystemDLL("user32.dll")
	procSetWindowsHookExW  = user32.NewProc("SetWindowsHookExW")
	procUnhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	procCallNextHookEx     = user32.NewProc("CallNextHookEx")
	procGetMessageW        = user32.NewProc("GetMessageW")
	procPostThreadMessageW = user32.NewProc("PostThreadMessageW")
)

const (
	whKeyboardLL = 13
	whMouseLL    = 14

	wmKeyDown    = 0x0100
	wmKeyUp      = 0x0101
	wmSysKeyDown = 0x0104
	wmSysKeyUp   = 0x0105

	wmLButtonDown = 0x0201
	wmLButtonUp   = 0x0202
	wmRButtonDown = 0x0204
	wmRButtonUp   = 0x0205
	wmMButtonDown = 0x0207
	wmMButtonUp   = 0x0208
	wmMouseMove   = 0x0200
	wmMouseWheel  = 0x020A

	wmQuit = 0x0012
)

type kbdllhookstruct struct {
	vkCode      uint32
	scanCode    uint32
	flags       uint32
	time        uint32
	dwExtraInfo uintptr
}

type msllhookstruct struct {
	pt          struct{ x, y int32 }
	mouseData   uint32
	flags       uint32
	time        uint32
	dwExtraInfo uintptr
}

// WindowsHookProvider captures global input via low-level keyboard/mouse
// hooks (§4.8).
type WindowsHookProvider struct {
	events chan crossmacro.RawEvent
	errs   chan error
	died   chan struct{}

	threadID uint32
	keyHook  uintptr
	mouseHook uintptr
}

var (
	activeHookMu sync.Mutex
	activeHook   *WindowsHookProvider
)

// NewWindowsHookProvider constructs an unstarted provider. As with the
// macOS tap backend, only one instance may be active per process: the
// hook callbacks are raw syscall.NewCallback trampolines dispatching to
// a single package global.
func NewWindowsHookProvider() *WindowsHookProvider {
	return &WindowsHookProvider{
		events: make(chan crossmacro.RawEvent, eventBufferSize),
		errs:   make(chan error, 1),
		died:   make(chan struct{}),
	}
}

func (w *WindowsHookProvider) Start(ctx context.Context, mouse, keyboard bool) error {
	activeHookMu.Lock()
	activeHook = w
	activeHookMu.Unlock()

	ready := make(chan error, 1)
	go w.messageLoop(keyboard, mouse, ready)
	if err := <-ready; err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		w.Stop()
	}()
	return nil
}

// messageLoop installs the hooks and pumps GetMessageW on a dedicated
// OS thread, exactly as Win32 requires for WH_*_LL hooks.
func (w *WindowsHookProvider) messageLoop(keyboard, mouse bool, ready chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	w.threadID = getCurrentThreadID()

	if keyboard {
		hook, _, _ := procSetWindowsHookExW.Call(uintptr(whKeyboardLL), keyboardHookCallback, 0, 0)
		if hook == 0 {
			ready <- fmt.Errorf("%w: SetWindowsHookExW(WH_KEYBOARD_LL) failed", crossmacro.ErrDeviceUnavailable)
			return
		}
		w.keyHook = hook
	}
	if mouse {
		hook, _, _ := procSetWindowsHookExW.Call(uintptr(whMouseLL), mouseHookCallback, 0, 0)
		if hook == 0 {
			ready <- fmt.Errorf("%w: SetWindowsHookExW(WH_MOUSE_LL) failed", crossmacro.ErrDeviceUnavailable)
			return
		}
		w.mouseHook = hook
	}
	ready <- nil

	var msg [48]byte // MSG struct (48 bytes on 64-bit), large enough for GetMessageW's out-param
	for {
		ret, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&msg[0])), 0, 0, 0)
		if ret == 0 { // WM_QUIT
			break
		}
	}

	if w.keyHook != 0 {
		procUnhookWindowsHookEx.Call(w.keyHook)
	}
	if w.mouseHook != 0 {
		procUnhookWindowsHookEx.Call(w.mouseHook)
	}
	close(w.died)
}

var (
	keyboardHookCallback = newHookCallback(dispatchKeyboardHook)
	mouseHookCallback     = newHookCallback(dispatchMouseHook)
)

func newHookCallback(fn func(nCode int32, wParam, lParam uintptr) uintptr) uintptr {
	return windows.NewCallback(fn)
}

func current() *WindowsHookProvider {
	activeHookMu.Lock()
	defer activeHookMu.Unlock()
	return activeHook
}

func dispatchKeyboardHook(nCode int32, wParam, lParam uintptr) uintptr {
	w := current()
	if w != nil && nCode == 0 {
		kb := (*kbdllhookstruct)(unsafe.Pointer(lParam))
		pressed := wParam == wmKeyDown || wParam == wmSysKeyDown
		if pressed || wParam == wmKeyUp || wParam == wmSysKeyUp {
			if code, ok := evcode.VKToEvdev(uint16(kb.vkCode)); ok {
				w.deliver(crossmacro.EventKey, int32(code), boolToInt32(pressed))
			}
		}
	}
	ret, _, _ := procCallNextHookEx.Call(0, uintptr(nCode), wParam, lParam)
	return ret
}

func dispatchMouseHook(nCode int32, wParam, lParam uintptr) uintptr {
	w := current()
	if w != nil && nCode == 0 {
		ms := (*msllhookstruct)(unsafe.Pointer(lParam))
		switch wParam {
		case wmMouseMove:
			w.deliverMove(ms.pt.x, ms.pt.y)
		case wmLButtonDown:
			w.deliver(crossmacro.EventMouseButton, int32(evcode.BTN_LEFT), 1)
		case wmLButtonUp:
			w.deliver(crossmacro.EventMouseButton, int32(evcode.BTN_LEFT), 0)
		case wmRButtonDown:
			w.deliver(crossmacro.EventMouseButton, int32(evcode.BTN_RIGHT), 1)
		case wmRButtonUp:
			w.deliver(crossmacro.EventMouseButton, int32(evcode.BTN_RIGHT), 0)
		case wmMButtonDown:
			w.deliver(crossmacro.EventMouseButton, int32(evcode.BTN_MIDDLE), 1)
		case wmMButtonUp:
			w.deliver(crossmacro.EventMouseButton, int32(evcode.BTN_MIDDLE), 0)
		case wmMouseWheel:
			delta := int32(int16(ms.mouseData >> 16))
			w.deliver(crossmacro.EventMouseScroll, int32(evcode.REL_WHEEL), delta/120)
		}
	}
	ret, _, _ := procCallNextHookEx.Call(0, uintptr(nCode), wParam, lParam)
	return ret
}

var lastMouseX, lastMouseY int32
var haveLastMouse bool

func (w *WindowsHookProvider) deliverMove(x, y int32) {
	if haveLastMouse {
		if dx := x - lastMouseX; dx != 0 {
			w.deliver(crossmacro.EventMouseMove, int32(evcode.REL_X), dx)
		}
		if dy := y - lastMouseY; dy != 0 {
			w.deliver(crossmacro.EventMouseMove, int32(evcode.REL_Y), dy)
		}
	}
	lastMouseX, lastMouseY, haveLastMouse = x, y, true
}

func boolToInt32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

func (w *WindowsHookProvider) deliver(kind crossmacro.EventKind, code, value int32) {
	ev := crossmacro.RawEvent{Kind: kind, Code: code, Value: value}
	select {
	case w.events <- ev:
	default:
	}
}

func (w *WindowsHookProvider) EventStream() <-chan crossmacro.RawEvent { return w.events }

func (w *WindowsHookProvider) ErrorStream() <-chan error { return w.errs }

func (w *WindowsHookProvider) DyingChan() chan struct{} { return w.died }

func (w *WindowsHookProvider) Stop() error {
	activeHookMu.Lock()
	if activeHook == w {
		activeHook = nil
	}
	activeHookMu.Unlock()

	if w.threadID != 0 {
		procPostThreadMessageW.Call(uintptr(w.threadID), uintptr(wmQuit), 0, 0)
	}
	return nil
}

var (
	kernel32                  = windows.NewLazySystemDLL("kernel32.dll")
	procGetCurrentThreadID    = kernel32.NewProc("GetCurrentThreadId")
)

func getCurrentThreadID() uint32 {
	id, _, _ := procGetCurrentThreadID.Call()
	return uint32(id)
}
