//go:build darwin

package capture

/*
#cgo LDFLAGS: -framework CoreGraphics -framework ApplicationServices -framework CoreFoundation
#include <CoreGraphics/CoreGraphics.h>
#include <ApplicationServices/ApplicationServices.h>

extern void crossmacroTapCallback(CGEventType type, CGEventRef event);

static CGEventRef tapCallback(CGEventTapProxy proxy, CGEventType type, CGEventRef event, void *refcon) {
    crossmacroTapCallback(type, event);
    return event;
}

static CFMachPortRef installTap() {
    CGEventMask mask =
        CGEventMaskBit(kCGEventKeyDown) | CGEventMaskBit(kCGEventKeyUp) |
        CGEventMaskBit(kCGEventLeftMouseDown) | CGEventMaskBit(kCGEventLeftMouseUp) |
        CGEventMaskBit(kCGEventRightMouseDown) | CGEventMaskBit(kCGEventRightMouseUp) |
        CGEventMaskBit(kCGEventMouseMoved) | CGEventMaskBit(kCGEventScrollWheel);

    CFMachPortRef tap = CGEventTapCreate(kCGHIDEventTap, kCGHeadInsertEventTap,
        kCGEventTapOptionListenOnly, mask, tapCallback, NULL);
    if (!tap) {
        return NULL;
    }
    CFRunLoopSourceRef src = CFMachPortCreateRunLoopSource(kCFAllocatorDefault, tap, 0);
    CFRunLoopAddSource(CFRunLoopGetCurrent(), src, kCFRunLoopCommonModes);
    CGEventTapEnable(tap, true);
    return tap;
}

static void runTapLoop() {
    CFRunLoopRun();
}

static void removeTap(CFMachPortRef tap) {
    if (tap) {
        CGEventTapEnable(tap, false);
        CFRelease(tap);
    }
}

static double cg_event_x(CGEventRef event) { return CGEventGetLocation(event).x; }
static double cg_event_y(CGEventRef event) { return CGEventGetLocation(event).y; }
static CGKeyCode cg_event_keycode(CGEventRef event) {
    return (CGKeyCode)CGEventGetIntegerValueField(event, kCGKeyboardEventKeycode);
}
static double cg_event_scroll(CGEventRef event) {
    return CGEventGetIntegerValueField(event, kCGScrollWheelEventDeltaAxis1);
}
*/
import "C"

import (
	"context"
	"fmt"
	"sync"

	"github.com/badu/crossmacro"
	"github.com/badu/crossmacro/evcode"
)

// DarwinTapProvider captures global input via a listen-only CGEventTap
// at the HID tap point (§4.8), grounded on mj1618-desktop-cli's
// Cocoa/CoreGraphics event-tap pattern and AmineAfia-super-characters'
// hotkey-recorder_darwin.go tap-plus-CFRunLoop shape.
type DarwinTapProvider struct {
	tap    C.CFMachPortRef
	events chan crossmacro.RawEvent
	errs   chan error
	died   chan struct{}

	lastX, lastY C.double
	haveLast     bool
}

var (
	activeTapMu sync.Mutex
	activeTap   *DarwinTapProvider
)

// NewDarwinTapProvider constructs an unstarted provider. Only one
// DarwinTapProvider may be active at a time per process, since the
// CGEventTap callback is a single C function dispatching to a package
// global (cgo export constraints forbid a per-instance closure).
func NewDarwinTapProvider() *DarwinTapProvider {
	return &DarwinTapProvider{
		events: make(chan crossmacro.RawEvent, eventBufferSize),
		errs:   make(chan error, 1),
		died:   make(chan struct{}),
	}
}

func (d *DarwinTapProvider) Start(ctx context.Context, mouse, keyboard bool) error {
	activeTapMu.Lock()
	activeTap = d
	activeTapMu.Unlock()

	tap := C.installTap()
	if tap == C.CFMachPortRef(nil) {
		return fmt.Errorf("%w: CGEventTapCreate failed (missing accessibility permission?)", crossmacro.ErrDeviceUnavailable)
	}
	d.tap = tap

	go func() {
		<-ctx.Done()
		d.Stop()
	}()
	go func() {
		C.runTapLoop()
	}()
	return nil
}

//export crossmacroTapCallback
func crossmacroTapCallback(eventType C.CGEventType, event C.CGEventRef) {
	activeTapMu.Lock()
	d := activeTap
	activeTapMu.Unlock()
	if d == nil {
		return
	}
	d.handle(eventType, event)
}

func (d *DarwinTapProvider) handle(eventType C.CGEventType, event C.CGEventRef) {
	switch eventType {
	case C.kCGEventKeyDown, C.kCGEventKeyUp:
		value := int32(0)
		if eventType == C.kCGEventKeyDown {
			value = 1
		}
		code, ok := cgKeyCodeToEvdev(uint16(C.cg_event_keycode(event)))
		if ok {
			d.deliver(crossmacro.EventKey, int32(code), value)
		}
	case C.kCGEventLeftMouseDown, C.kCGEventLeftMouseUp:
		d.deliverButtonPress(eventType == C.kCGEventLeftMouseDown, evcode.BTN_LEFT)
	case C.kCGEventRightMouseDown, C.kCGEventRightMouseUp:
		d.deliverButtonPress(eventType == C.kCGEventRightMouseDown, evcode.BTN_RIGHT)
	case C.kCGEventMouseMoved:
		x, y := C.cg_event_x(event), C.cg_event_y(event)
		if d.haveLast {
			if dx := int32(x - d.lastX); dx != 0 {
				d.deliver(crossmacro.EventMouseMove, int32(evcode.REL_X), dx)
			}
			if dy := int32(y - d.lastY); dy != 0 {
				d.deliver(crossmacro.EventMouseMove, int32(evcode.REL_Y), dy)
			}
		}
		d.lastX, d.lastY, d.haveLast = x, y, true
	case C.kCGEventScrollWheel:
		d.deliver(crossmacro.EventMouseScroll, int32(evcode.REL_WHEEL), int32(C.cg_event_scroll(event)))
	}
}

func (d *DarwinTapProvider) deliverButtonPress(down bool, code uint16) {
	value := int32(0)
	if down {
		value = 1
	}
	d.deliver(crossmacro.EventMouseButton, int32(code), value)
}

func (d *DarwinTapProvider) deliver(kind crossmacro.EventKind, code, value int32) {
	ev := crossmacro.RawEvent{Kind: kind, Code: code, Value: value}
	select {
	case d.events <- ev:
	default:
	}
}

func (d *DarwinTapProvider) EventStream() <-chan crossmacro.RawEvent { return d.events }

func (d *DarwinTapProvider) ErrorStream() <-chan error { return d.errs }

func (d *DarwinTapProvider) DyingChan() chan struct{} { return d.died }

func (d *DarwinTapProvider) Stop() error {
	activeTapMu.Lock()
	if activeTap == d {
		activeTap = nil
	}
	tap := d.tap
	activeTapMu.Unlock()

	C.removeTap(tap)
	select {
	case <-d.died:
	default:
		close(d.died)
	}
	return nil
}

// cgKeyCodeToEvdev is the inverse of simulate's evdevToCGKeyCode table
// (US layout), built once at init from a copy of its (evdev, CGKeyCode)
// pairs; the copy is a separate literal, not generated from simulate's
// table.
var cgKeyCodeToEvdevTable = map[uint16]uint16{}

func cgKeyCodeToEvdev(vk uint16) (uint16, bool) {
	code, ok := cgKeyCodeToEvdevTable[vk]
	return code, ok
}

func init() {
	forward := map[uint16]uint16{
		30: 0x00, 48: 0x0B, 46: 0x08, 32: 0x02, 18: 0x0E, 33: 0x03,
		34: 0x05, 35: 0x04, 23: 0x22, 36: 0x26, 37: 0x28, 38: 0x25,
		50: 0x2E, 49: 0x2D, 24: 0x1F, 25: 0x23, 16: 0x0C, 19: 0x0F,
		31: 0x01, 20: 0x11, 22: 0x20, 47: 0x09, 17: 0x0D, 45: 0x07,
		21: 0x10, 44: 0x06,
		11: 0x1D, 2: 0x12, 3: 0x13, 4: 0x14, 5: 0x15, 6: 0x17, 7: 0x16, 8: 0x1A, 9: 0x1C, 10: 0x19,
		28: 0x24, 15: 0x30, 57: 0x31, 14: 0x33, 1: 0x35,
		42: 0x38, 29: 0x3B, 56: 0x3A,
	}
	for evCode, vk := range forward {
		cgKeyCodeToEvdevTable[vk] = evCode
	}
}
