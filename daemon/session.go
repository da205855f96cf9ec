package daemon

import (
	"context"
	"errors"
	"net"

	"github.com/badu/crossmacro/codec"
	"github.com/rs/zerolog"
)

// session drives one authorized, handshaken connection through Ready,
// Capturing/Idle, until the peer disconnects or ctx is cancelled. It
// owns the capture-forwarding goroutine and the simulation-frame reader
// loop described in §4.2's Capture loop / Simulation sections.
type session struct {
	server *Server
	conn   net.Conn
	reader *codec.Reader
	writer *codec.Writer
	log    zerolog.Logger

	captureCancel context.CancelFunc
}

func (sess *session) run(ctx context.Context) {
	sessCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	for {
		frame, err := sess.reader.Decode()
		if err != nil {
			if errors.Is(err, codec.ErrUnknownOpcode) {
				sess.writer.WriteFrame(codec.ErrorFrame("unknown opcode"))
			}
			return
		}

		switch frame.Op {
		case codec.OpStartCapture:
			sess.startCapture(sessCtx, frame.StartCapture.Mouse, frame.StartCapture.Keyboard)

		case codec.OpStopCapture:
			sess.stopCapture()

		case codec.OpSimulateEvent:
			sess.simulate(frame.SimulateEvent.Type, frame.SimulateEvent.Code, frame.SimulateEvent.Value)

		case codec.OpConfigureResolution:
			sess.configureResolution(frame.ConfigureResolution.Width, frame.ConfigureResolution.Height)

		default:
			sess.writer.WriteFrame(codec.ErrorFrame("unexpected opcode after handshake: " + frame.Op.String()))
		}
	}
}

// startCapture replaces the running filter flags rather than layering a
// second forwarding goroutine — §4.2: "the daemon treats each new
// StartCapture as replacing the filter flags."
func (sess *session) startCapture(ctx context.Context, mouse, keyboard bool) {
	sess.stopCapture()

	if sess.server.devices == nil {
		sess.writer.WriteFrame(codec.ErrorFrame("no device backend available"))
		return
	}

	captureCtx, cancel := context.WithCancel(ctx)
	sess.captureCancel = cancel
	sess.server.setState(StateCapturing)

	for _, dev := range sess.server.inputs {
		if (dev.IsKeyboard() && keyboard) || (dev.IsMouse() && mouse) {
			go sess.forward(captureCtx, dev)
		}
	}
}

func (sess *session) stopCapture() {
	if sess.captureCancel != nil {
		sess.captureCancel()
		sess.captureCancel = nil
	}
	sess.server.setState(StateIdle)
}

func (sess *session) forward(ctx context.Context, dev InputDevice) {
	for {
		if ctx.Err() != nil {
			return
		}
		kind, code, value, ts, err := dev.ReadEvent(ctx)
		if err != nil {
			if ctx.Err() == nil {
				sess.log.Warn().Str("device", dev.Name()).Err(err).Msg("device read failed")
			}
			return
		}

		err = sess.writer.WriteFrame(codec.Frame{
			Op: codec.OpInputEvent,
			InputEvent: codec.InputEventPayload{
				Kind:      kind,
				Code:      code,
				Value:     value,
				Timestamp: ts,
			},
		})
		if err != nil {
			return
		}
	}
}

// simulate writes one struct input_event to the uinput fd, per §4.2:
// "the daemon does not batch" — the client emits its own trailing
// EV_SYN/SYN_REPORT.
func (sess *session) simulate(evType, code uint16, value int32) {
	if sess.server.virtual == nil {
		sess.writer.WriteFrame(codec.ErrorFrame("no virtual device configured"))
		return
	}
	if err := sess.server.virtual.WriteEvent(evType, code, value); err != nil {
		sess.log.Error().Err(err).Msg("uinput write failed")
		sess.writer.WriteFrame(codec.ErrorFrame("simulated input write failed"))
	}
}

// configureResolution creates the uinput device: absolute+relative when
// both dimensions are positive, relative-only otherwise (§4.2).
func (sess *session) configureResolution(width, height int32) {
	if sess.server.devices == nil {
		sess.writer.WriteFrame(codec.ErrorFrame("no device backend available"))
		return
	}

	if sess.server.virtual != nil {
		sess.server.virtual.Destroy()
		sess.server.virtual = nil
	}

	if width <= 0 || height <= 0 {
		width, height = 0, 0
	}

	vdev, err := sess.server.devices.CreateVirtualDevice(width, height)
	if err != nil {
		sess.log.Error().Err(err).Msg("uinput device creation failed")
		sess.writer.WriteFrame(codec.ErrorFrame("virtual device creation failed"))
		return
	}
	sess.server.virtual = vdev

	inputs, err := sess.server.devices.DiscoverDevices()
	if err != nil {
		sess.log.Warn().Err(err).Msg("device discovery failed")
	}
	sess.server.inputs = inputs
}
