// Package codec encodes and decodes the length-delimited binary frames
// exchanged between the daemon (C2) and its IPC client (C3), per §4.1.
//
// Grounded on key/dispatcher.go's and mouse/dispatcher.go's
// buffer-draining parse loops (scanInput/readSGR/readXTerm): a Reader owns
// a buffered source and decodes one frame at a time, blocking until the
// whole frame has arrived and returning a typed error when that frame is
// malformed. The wire format
// itself is a fixed 7-opcode binary protocol in native byte order, so
// encoding/binary and bytes are used directly rather than a third-party
// wire format (see DESIGN.md).
package codec

import "errors"

// Opcode identifies the frame kind, the first byte of every frame.
type Opcode uint8

const (
	OpHandshake           Opcode = 0x01
	OpStartCapture        Opcode = 0x02
	OpStopCapture         Opcode = 0x03
	OpSimulateEvent       Opcode = 0x04
	OpConfigureResolution Opcode = 0x05
	OpInputEvent          Opcode = 0x10
	OpError               Opcode = 0xFE
)

func (o Opcode) String() string {
	switch o {
	case OpHandshake:
		return "Handshake"
	case OpStartCapture:
		return "StartCapture"
	case OpStopCapture:
		return "StopCapture"
	case OpSimulateEvent:
		return "SimulateEvent"
	case OpConfigureResolution:
		return "ConfigureResolution"
	case OpInputEvent:
		return "InputEvent"
	case OpError:
		return "Error"
	default:
		return "Unknown"
	}
}

// ProtocolVersion is the compile-time wire version; a mismatch during
// handshake is a hard error (§6).
const ProtocolVersion int32 = 1

// EV_* namespace used by SimulateEvent.Type, mirrored here (rather than
// imported from evcode) because the wire constants are part of the
// protocol contract, not the local kernel vocabulary.
const (
	EvSyn uint16 = 0
	EvKey uint16 = 1
	EvRel uint16 = 2
	EvAbs uint16 = 3
)

// ErrUnknownOpcode is returned by Decode when the leading byte does not
// match any opcode in the table; per §4.1 the codec must refuse the frame
// with an Error frame and close the connection — callers are expected to
// do that on receiving this error.
var ErrUnknownOpcode = errors.New("codec: unknown opcode")

// ErrShortFrame is returned when a frame is empty or its body is shorter
// than its opcode's payload. The frame's bytes have already been
// consumed, so this marks a malformed frame, not a need for more data.
var ErrShortFrame = errors.New("codec: short frame")

// Frame is the decoded, opcode-tagged union of every payload shape in
// §4.1. Exactly one of the typed fields is meaningful for a given Op.
type Frame struct {
	Op Opcode

	Handshake           HandshakePayload
	StartCapture        StartCapturePayload
	SimulateEvent       SimulateEventPayload
	ConfigureResolution ConfigureResolutionPayload
	InputEvent          InputEventPayload
	Error               string
}

type HandshakePayload struct {
	ProtocolVersion int32
}

type StartCapturePayload struct {
	Mouse    bool
	Keyboard bool
}

type SimulateEventPayload struct {
	Type  uint16
	Code  uint16
	Value int32
}

type ConfigureResolutionPayload struct {
	Width  int32
	Height int32
}

type InputEventPayload struct {
	Kind      uint8
	Code      int32
	Value     int32
	Timestamp int64
}
