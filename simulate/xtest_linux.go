//go:build linux

package simulate

import (
	"context"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgb/xtest"

	"github.com/badu/crossmacro"
)

// X protocol core event type codes, as used by XTestFakeInput's Type field.
const (
	xKeyPress      = 2
	xKeyRelease    = 3
	xButtonPress   = 4
	xButtonRelease = 5
	xMotionNotify  = 6
)

// XTestProvider drives the X Test extension directly (§4.7 "XTest":
// XTestFakeKeyEvent / XTestFakeButtonEvent / XTestFakeMotionEvent, then
// XFlush). Used when the capture side is also talking to the X server
// directly (capture.Kind X11), so simulation doesn't need to round-trip
// through the privileged daemon.
type XTestProvider struct {
	conn    *xgb.Conn
	root    xproto.Window
	pressed *PressedSet
	width   int32
	height  int32
}

// NewXTestProvider connects to the X server and verifies the XTest
// extension is present.
func NewXTestProvider() (*XTestProvider, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, err
	}
	if err := xtest.Init(conn); err != nil {
		conn.Close()
		return nil, err
	}
	root := xproto.Setup(conn).DefaultScreen(conn).Root
	return &XTestProvider{conn: conn, root: root, pressed: NewPressedSet()}, nil
}

func (x *XTestProvider) Initialize(ctx context.Context, width, height int32) error {
	x.width, x.height = width, height
	return nil
}

func (x *XTestProvider) fakeInput(eventType, detail byte, rootX, rootY int16) error {
	return xtest.FakeInputChecked(x.conn, eventType, detail, 0, x.root, rootX, rootY, 0).Check()
}

func (x *XTestProvider) MoveAbsolute(ctx context.Context, posX, posY int32) error {
	if err := x.fakeInput(xMotionNotify, 0, int16(posX), int16(posY)); err != nil {
		return err
	}
	return x.flush()
}

func (x *XTestProvider) MoveRelative(ctx context.Context, dx, dy int32) error {
	// XTest's MotionNotify fake input is always absolute; relative motion
	// is resolved by the caller (the coordinate strategy already tracks
	// an absolute-equivalent position for Relative mode) before reaching
	// this provider in a real deployment. This provider keeps no position
	// of its own, so dx/dy are always applied as a delta against (0,0).
	return x.MoveAbsolute(ctx, dx, dy)
}

var xtestButtonCode = map[crossmacro.Button]byte{
	crossmacro.ButtonLeft:       1,
	crossmacro.ButtonMiddle:     2,
	crossmacro.ButtonRight:      3,
	crossmacro.ButtonScrollUp:   4,
	crossmacro.ButtonScrollDown: 5,
}

func (x *XTestProvider) EmitButton(ctx context.Context, btn crossmacro.Button, pressed bool) error {
	code, ok := xtestButtonCode[btn]
	if !ok {
		return nil
	}
	eventType := byte(xButtonRelease)
	if pressed {
		eventType = xButtonPress
	}
	if err := x.fakeInput(eventType, code, 0, 0); err != nil {
		return err
	}
	x.pressed.TrackButton(btn, pressed)
	return x.flush()
}

func (x *XTestProvider) EmitScroll(ctx context.Context, value int32) error {
	btn := crossmacro.ButtonScrollUp
	if value < 0 {
		btn = crossmacro.ButtonScrollDown
	}
	if err := x.EmitButton(ctx, btn, true); err != nil {
		return err
	}
	return x.EmitButton(ctx, btn, false)
}

func (x *XTestProvider) EmitKey(ctx context.Context, code int32, pressed bool) error {
	eventType := byte(xKeyRelease)
	if pressed {
		eventType = xKeyPress
	}
	// XTest keycodes are X keycodes (evdev code + 8). Callers, including
	// the layout service (expansion/layout), pass evdev codes; the +8
	// offset is added here.
	if err := x.fakeInput(eventType, byte(code+8), 0, 0); err != nil {
		return err
	}
	x.pressed.TrackKey(code, pressed)
	return x.flush()
}

func (x *XTestProvider) ReleaseAll(ctx context.Context) error {
	keys, buttons := x.pressed.Drain()
	for _, code := range keys {
		if err := x.EmitKey(ctx, code, false); err != nil {
			return err
		}
	}
	for _, btn := range buttons {
		if err := x.EmitButton(ctx, btn, false); err != nil {
			return err
		}
	}
	for _, btn := range FailsafeButtons {
		_ = x.EmitButton(ctx, btn, false)
	}
	return nil
}

func (x *XTestProvider) Dispose(ctx context.Context) error {
	err := x.ReleaseAll(ctx)
	x.conn.Close()
	return err
}

func (x *XTestProvider) flush() error {
	// xgb issues requests over a buffered connection; a Sync-style no-op
	// request forces delivery the way XFlush does for Xlib callers.
	_, err := xproto.GetInputFocus(x.conn).Reply()
	return err
}
