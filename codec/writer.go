package codec

import (
	"bytes"
	"encoding/binary"
	"io"
	"sync"
)

// Writer encodes and writes frames, one call at a time, serialized by a
// mutex. Mirrors the teacher dispatchers' per-dispatcher sync.Mutex
// guarding shared write state (§5: "the client side of IPC holds one
// write task plus a mutex around the write stream").
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter wraps w in a Writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteFrame encodes f and writes its length prefix and body under one
// lock hold, so frames from concurrent callers never interleave.
func (e *Writer) WriteFrame(f Frame) error {
	body := encodeBody(f)

	var lenBuf [4]byte
	binary.NativeEndian.PutUint32(lenBuf[:], uint32(len(body)))

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := e.w.Write(body)
	return err
}

// WriteFrames writes every frame under a single lock acquisition, the
// shape simulate_batch (§4.3) needs to flush a batch of SimulateEvent
// frames as one write-lock hold.
func (e *Writer) WriteFrames(frames []Frame) error {
	buf := &bytes.Buffer{}
	for _, f := range frames {
		body := encodeBody(f)
		var lenBuf [4]byte
		binary.NativeEndian.PutUint32(lenBuf[:], uint32(len(body)))
		buf.Write(lenBuf[:])
		buf.Write(body)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	_, err := e.w.Write(buf.Bytes())
	return err
}

func encodeBody(f Frame) []byte {
	buf := &bytes.Buffer{}
	buf.WriteByte(byte(f.Op))

	switch f.Op {
	case OpHandshake:
		writeU32(buf, uint32(f.Handshake.ProtocolVersion))

	case OpStartCapture:
		buf.WriteByte(boolByte(f.StartCapture.Mouse))
		buf.WriteByte(boolByte(f.StartCapture.Keyboard))

	case OpStopCapture:
		// no payload

	case OpSimulateEvent:
		writeU16(buf, f.SimulateEvent.Type)
		writeU16(buf, f.SimulateEvent.Code)
		writeU32(buf, uint32(f.SimulateEvent.Value))

	case OpConfigureResolution:
		writeU32(buf, uint32(f.ConfigureResolution.Width))
		writeU32(buf, uint32(f.ConfigureResolution.Height))

	case OpInputEvent:
		buf.WriteByte(f.InputEvent.Kind)
		writeU32(buf, uint32(f.InputEvent.Code))
		writeU32(buf, uint32(f.InputEvent.Value))
		writeU64(buf, uint64(f.InputEvent.Timestamp))

	case OpError:
		writeString(buf, f.Error)
	}

	return buf.Bytes()
}

func writeU16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.NativeEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.NativeEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeU64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.NativeEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}

func writeString(buf *bytes.Buffer, s string) {
	writeU32(buf, uint32(len(s)))
	buf.WriteString(s)
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
