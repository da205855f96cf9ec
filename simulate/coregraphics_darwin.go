//go:build darwin

package simulate

/*
#cgo LDFLAGS: -framework CoreGraphics -framework ApplicationServices
#include <CoreGraphics/CoreGraphics.h>

static int cg_move(float x, float y) {
    CGPoint point = CGPointMake(x, y);
    CGEventRef ev = CGEventCreateMouseEvent(NULL, kCGEventMouseMoved, point, kCGMouseButtonLeft);
    if (!ev) return -1;
    CGEventPost(kCGHIDEventTap, ev);
    CFRelease(ev);
    return 0;
}

static int cg_button(float x, float y, int button, int down) {
    CGPoint point = CGPointMake(x, y);
    CGEventType type;
    CGMouseButton cgButton;
    switch (button) {
        case 1:
            cgButton = kCGMouseButtonRight;
            type = down ? kCGEventRightMouseDown : kCGEventRightMouseUp;
            break;
        case 2:
            cgButton = kCGMouseButtonCenter;
            type = down ? kCGEventOtherMouseDown : kCGEventOtherMouseUp;
            break;
        default:
            cgButton = kCGMouseButtonLeft;
            type = down ? kCGEventLeftMouseDown : kCGEventLeftMouseUp;
            break;
    }
    CGEventRef ev = CGEventCreateMouseEvent(NULL, type, point, cgButton);
    if (!ev) return -1;
    CGEventPost(kCGHIDEventTap, ev);
    CFRelease(ev);
    return 0;
}

static int cg_scroll(int dy, int dx) {
    CGEventRef ev = CGEventCreateScrollWheelEvent(NULL, kCGScrollEventUnitLine, 2, dy, dx);
    if (!ev) return -1;
    CGEventPost(kCGHIDEventTap, ev);
    CFRelease(ev);
    return 0;
}

static int cg_key(CGKeyCode code, int down) {
    CGEventRef ev = CGEventCreateKeyboardEvent(NULL, code, down != 0);
    if (!ev) return -1;
    CGEventPost(kCGHIDEventTap, ev);
    CFRelease(ev);
    return 0;
}
*/
import "C"

import (
	"context"
	"fmt"

	"github.com/badu/crossmacro"
)

// CoreGraphicsProvider drives macOS synthetic input through CGEventPost
// at the HID event tap (§4.7: "CGEventCreateKeyboardEvent/
// CGEventCreateMouseEvent/CGEventCreateScrollWheelEvent posted at
// HIDEventTap"). Grounded on mj1618-desktop-cli's darwin inputter's cgo
// shim shape, generalized here to an evdev-keyed Provider instead of a
// string-keyed Inputter.
type CoreGraphicsProvider struct {
	pressed    *PressedSet
	lastX      int32
	lastY      int32
}

// NewCoreGraphicsProvider returns a macOS simulation provider.
func NewCoreGraphicsProvider() *CoreGraphicsProvider {
	return &CoreGraphicsProvider{pressed: NewPressedSet()}
}

func (c *CoreGraphicsProvider) Initialize(ctx context.Context, width, height int32) error {
	return nil
}

func (c *CoreGraphicsProvider) MoveAbsolute(ctx context.Context, x, y int32) error {
	if C.cg_move(C.float(x), C.float(y)) != 0 {
		return fmt.Errorf("simulate: %w: CGEventCreateMouseEvent move failed", crossmacro.ErrSimulationFailed)
	}
	c.lastX, c.lastY = x, y
	return nil
}

func (c *CoreGraphicsProvider) MoveRelative(ctx context.Context, dx, dy int32) error {
	return c.MoveAbsolute(ctx, c.lastX+dx, c.lastY+dy)
}

var cgButtonIndex = map[crossmacro.Button]C.int{
	crossmacro.ButtonLeft:   0,
	crossmacro.ButtonRight:  1,
	crossmacro.ButtonMiddle: 2,
}

func (c *CoreGraphicsProvider) EmitButton(ctx context.Context, btn crossmacro.Button, pressed bool) error {
	idx, ok := cgButtonIndex[btn]
	if !ok {
		return nil
	}
	down := C.int(0)
	if pressed {
		down = 1
	}
	if C.cg_button(C.float(c.lastX), C.float(c.lastY), idx, down) != 0 {
		return fmt.Errorf("simulate: %w: CGEventCreateMouseEvent button failed", crossmacro.ErrSimulationFailed)
	}
	c.pressed.TrackButton(btn, pressed)
	return nil
}

func (c *CoreGraphicsProvider) EmitScroll(ctx context.Context, value int32) error {
	if C.cg_scroll(C.int(value), 0) != 0 {
		return fmt.Errorf("simulate: %w: CGEventCreateScrollWheelEvent failed", crossmacro.ErrSimulationFailed)
	}
	return nil
}

// EmitKey takes an evdev code and translates it to a macOS virtual key
// code via evdevToCGKeyCode before posting.
func (c *CoreGraphicsProvider) EmitKey(ctx context.Context, code int32, pressed bool) error {
	cgCode, ok := evdevToCGKeyCode(uint16(code))
	if !ok {
		return fmt.Errorf("simulate: %w: no CGKeyCode mapping for evdev code %d", crossmacro.ErrSimulationFailed, code)
	}
	down := C.int(0)
	if pressed {
		down = 1
	}
	if C.cg_key(C.CGKeyCode(cgCode), down) != 0 {
		return fmt.Errorf("simulate: %w: CGEventCreateKeyboardEvent failed", crossmacro.ErrSimulationFailed)
	}
	c.pressed.TrackKey(code, pressed)
	return nil
}

func (c *CoreGraphicsProvider) ReleaseAll(ctx context.Context) error {
	keys, buttons := c.pressed.Drain()
	for _, code := range keys {
		if err := c.EmitKey(ctx, code, false); err != nil {
			return err
		}
	}
	for _, btn := range buttons {
		if err := c.EmitButton(ctx, btn, false); err != nil {
			return err
		}
	}
	for _, btn := range FailsafeButtons {
		_ = c.EmitButton(ctx, btn, false)
	}
	return nil
}

func (c *CoreGraphicsProvider) Dispose(ctx context.Context) error {
	return c.ReleaseAll(ctx)
}

// evdevToCGKeyCode maps evdev codes to macOS virtual key codes (US
// layout), per mj1618-desktop-cli's charKeyMap table.
func evdevToCGKeyCode(code uint16) (uint16, bool) {
	table := map[uint16]uint16{
		30: 0x00, 48: 0x0B, 46: 0x08, 32: 0x02, 18: 0x0E, 33: 0x03, // A B C D E F
		34: 0x05, 35: 0x04, 23: 0x22, 36: 0x26, 37: 0x28, 38: 0x25, // G H I J K L
		50: 0x2E, 49: 0x2D, 24: 0x1F, 25: 0x23, 16: 0x0C, 19: 0x0F, // M N O P Q R
		31: 0x01, 20: 0x11, 22: 0x20, 47: 0x09, 17: 0x0D, 45: 0x07, // S T U V W X
		21: 0x10, 44: 0x06, // Y Z
		11: 0x1D, 2: 0x12, 3: 0x13, 4: 0x14, 5: 0x15, 6: 0x17, 7: 0x16, 8: 0x1A, 9: 0x1C, 10: 0x19, // 0-9
		28: 0x24, 15: 0x30, 57: 0x31, 14: 0x33, 1: 0x35, // Enter Tab Space Backspace Esc
		42: 0x38, 54: 0x38, 29: 0x3B, 97: 0x3B, 56: 0x3A, 100: 0x3A, // Shift Ctrl Alt (left==right VK on macOS too)
	}
	vk, ok := table[code]
	return vk, ok
}
