package simulate

import (
	"context"

	"github.com/badu/crossmacro"
	"github.com/badu/crossmacro/evcode"
)

// FrameSink is the minimal contract this provider needs from the IPC
// client (C3): a way to send a raw SimulateEvent and a way to send several
// under one write lock (§4.3 simulate_batch). DaemonProvider sends every
// event, mouse moves included, through SimulateEvent and does not call
// SimulateBatch. Declared locally, mirroring coordstrategy.PositionSource,
// to avoid a dependency on package ipcclient.
type FrameSink interface {
	SimulateEvent(ctx context.Context, evType, code uint16, value int32) error
	SimulateBatch(ctx context.Context, events [][3]int64) error
}

// DaemonProvider implements Provider by forwarding every call as
// SimulateEvent frames through a FrameSink (§4.7 "uinput via daemon").
// Every logical action ends with an explicit EV_SYN/SYN_REPORT, since the
// daemon never batches syncs on the client's behalf (§4.2).
type DaemonProvider struct {
	sink    FrameSink
	pressed *PressedSet
}

// NewDaemonProvider wraps sink.
func NewDaemonProvider(sink FrameSink) *DaemonProvider {
	return &DaemonProvider{sink: sink, pressed: NewPressedSet()}
}

func (d *DaemonProvider) Initialize(ctx context.Context, width, height int32) error {
	return nil // resolution is configured over IPC by the caller via ConfigureResolution, not here.
}

func (d *DaemonProvider) syncEvent(ctx context.Context) error {
	return d.sink.SimulateEvent(ctx, evcode.EV_SYN, evcode.SYN_REPORT, 0)
}

func (d *DaemonProvider) MoveAbsolute(ctx context.Context, x, y int32) error {
	if err := d.sink.SimulateEvent(ctx, evcode.EV_ABS, evcode.ABS_X, x); err != nil {
		return err
	}
	if err := d.sink.SimulateEvent(ctx, evcode.EV_ABS, evcode.ABS_Y, y); err != nil {
		return err
	}
	return d.syncEvent(ctx)
}

func (d *DaemonProvider) MoveRelative(ctx context.Context, dx, dy int32) error {
	if err := d.sink.SimulateEvent(ctx, evcode.EV_REL, evcode.REL_X, dx); err != nil {
		return err
	}
	if err := d.sink.SimulateEvent(ctx, evcode.EV_REL, evcode.REL_Y, dy); err != nil {
		return err
	}
	return d.syncEvent(ctx)
}

var buttonCodes = map[crossmacro.Button]uint16{
	crossmacro.ButtonLeft:   evcode.BTN_LEFT,
	crossmacro.ButtonRight:  evcode.BTN_RIGHT,
	crossmacro.ButtonMiddle: evcode.BTN_MIDDLE,
	crossmacro.ButtonSide1:  evcode.BTN_SIDE,
	crossmacro.ButtonSide2:  evcode.BTN_EXTRA,
}

func (d *DaemonProvider) EmitButton(ctx context.Context, btn crossmacro.Button, pressed bool) error {
	code, ok := buttonCodes[btn]
	if !ok {
		return nil
	}
	value := int32(0)
	if pressed {
		value = 1
	}
	if err := d.sink.SimulateEvent(ctx, evcode.EV_KEY, code, value); err != nil {
		return err
	}
	d.pressed.TrackButton(btn, pressed)
	return d.syncEvent(ctx)
}

func (d *DaemonProvider) EmitScroll(ctx context.Context, value int32) error {
	if err := d.sink.SimulateEvent(ctx, evcode.EV_REL, evcode.REL_WHEEL, value); err != nil {
		return err
	}
	return d.syncEvent(ctx)
}

func (d *DaemonProvider) EmitKey(ctx context.Context, code int32, pressed bool) error {
	value := int32(0)
	if pressed {
		value = 1
	}
	if err := d.sink.SimulateEvent(ctx, evcode.EV_KEY, uint16(code), value); err != nil {
		return err
	}
	d.pressed.TrackKey(code, pressed)
	return d.syncEvent(ctx)
}

func (d *DaemonProvider) ReleaseAll(ctx context.Context) error {
	keys, buttons := d.pressed.Drain()
	for _, code := range keys {
		if err := d.EmitKey(ctx, code, false); err != nil {
			return err
		}
	}
	for _, btn := range buttons {
		if err := d.EmitButton(ctx, btn, false); err != nil {
			return err
		}
	}
	for _, btn := range FailsafeButtons {
		_ = d.EmitButton(ctx, btn, false)
	}
	return nil
}

func (d *DaemonProvider) Dispose(ctx context.Context) error {
	return d.ReleaseAll(ctx)
}
