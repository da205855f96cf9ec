package codec

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// Reader decodes one frame at a time from a buffered source. Mirrors the
// teacher dispatchers' shape of owning a single buffered reader and
// draining it incrementally, but frames here are length-prefixed so a
// partial read never needs a "try again with more bytes" return — Reader
// simply blocks on the underlying io.Reader until a full frame arrives.
type Reader struct {
	r *bufio.Reader
}

// NewReader wraps r in a Reader. r is read exactly once per Decode call's
// worth of bytes; callers should not read from the same underlying stream
// concurrently.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// Decode reads and parses the next frame. It blocks until a full frame is
// available or the underlying reader returns an error (including io.EOF
// on a clean close).
func (d *Reader) Decode() (Frame, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(d.r, lenBuf[:]); err != nil {
		return Frame{}, err
	}
	n := binary.NativeEndian.Uint32(lenBuf[:])
	if n == 0 {
		return Frame{}, fmt.Errorf("codec: %w: zero-length frame", ErrShortFrame)
	}

	body := make([]byte, n)
	if _, err := io.ReadFull(d.r, body); err != nil {
		return Frame{}, err
	}

	return decodeBody(Opcode(body[0]), body[1:])
}

func decodeBody(op Opcode, payload []byte) (Frame, error) {
	switch op {
	case OpHandshake:
		if len(payload) < 4 {
			return Frame{}, fmt.Errorf("codec: Handshake: %w", ErrShortFrame)
		}
		return Frame{Op: op, Handshake: HandshakePayload{
			ProtocolVersion: int32(binary.NativeEndian.Uint32(payload)),
		}}, nil

	case OpStartCapture:
		if len(payload) < 2 {
			return Frame{}, fmt.Errorf("codec: StartCapture: %w", ErrShortFrame)
		}
		return Frame{Op: op, StartCapture: StartCapturePayload{
			Mouse:    payload[0] != 0,
			Keyboard: payload[1] != 0,
		}}, nil

	case OpStopCapture:
		return Frame{Op: op}, nil

	case OpSimulateEvent:
		if len(payload) < 8 {
			return Frame{}, fmt.Errorf("codec: SimulateEvent: %w", ErrShortFrame)
		}
		return Frame{Op: op, SimulateEvent: SimulateEventPayload{
			Type:  binary.NativeEndian.Uint16(payload[0:2]),
			Code:  binary.NativeEndian.Uint16(payload[2:4]),
			Value: int32(binary.NativeEndian.Uint32(payload[4:8])),
		}}, nil

	case OpConfigureResolution:
		if len(payload) < 8 {
			return Frame{}, fmt.Errorf("codec: ConfigureResolution: %w", ErrShortFrame)
		}
		return Frame{Op: op, ConfigureResolution: ConfigureResolutionPayload{
			Width:  int32(binary.NativeEndian.Uint32(payload[0:4])),
			Height: int32(binary.NativeEndian.Uint32(payload[4:8])),
		}}, nil

	case OpInputEvent:
		if len(payload) < 17 {
			return Frame{}, fmt.Errorf("codec: InputEvent: %w", ErrShortFrame)
		}
		return Frame{Op: op, InputEvent: InputEventPayload{
			Kind:      payload[0],
			Code:      int32(binary.NativeEndian.Uint32(payload[1:5])),
			Value:     int32(binary.NativeEndian.Uint32(payload[5:9])),
			Timestamp: int64(binary.NativeEndian.Uint64(payload[9:17])),
		}}, nil

	case OpError:
		s, err := decodeString(payload)
		if err != nil {
			return Frame{}, fmt.Errorf("codec: Error: %w", err)
		}
		return Frame{Op: op, Error: s}, nil

	default:
		return Frame{}, fmt.Errorf("%w: 0x%02x", ErrUnknownOpcode, uint8(op))
	}
}

func decodeString(payload []byte) (string, error) {
	if len(payload) < 4 {
		return "", ErrShortFrame
	}
	n := binary.NativeEndian.Uint32(payload[0:4])
	if uint32(len(payload)-4) < n {
		return "", ErrShortFrame
	}
	return string(payload[4 : 4+n]), nil
}
