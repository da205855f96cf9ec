package codec_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/badu/crossmacro/codec"
	"github.com/stretchr/testify/require"
)

func TestRoundTripAllOpcodes(t *testing.T) {
	cases := []codec.Frame{
		codec.HandshakeFrame(),
		{Op: codec.OpStartCapture, StartCapture: codec.StartCapturePayload{Mouse: true, Keyboard: false}},
		{Op: codec.OpStopCapture},
		{Op: codec.OpSimulateEvent, SimulateEvent: codec.SimulateEventPayload{Type: codec.EvKey, Code: 30, Value: 1}},
		{Op: codec.OpConfigureResolution, ConfigureResolution: codec.ConfigureResolutionPayload{Width: 1920, Height: 1080}},
		{Op: codec.OpInputEvent, InputEvent: codec.InputEventPayload{Kind: 1, Code: 30, Value: 1, Timestamp: 123456789}},
		codec.ErrorFrame("authorization denied"),
	}

	for _, f := range cases {
		buf := &bytes.Buffer{}
		w := codec.NewWriter(buf)
		require.NoError(t, w.WriteFrame(f))

		r := codec.NewReader(buf)
		got, err := r.Decode()
		require.NoError(t, err)
		require.Equal(t, f, got)
	}
}

func TestWriteFramesBatchesUnderOneWrite(t *testing.T) {
	buf := &bytes.Buffer{}
	w := codec.NewWriter(buf)

	frames := []codec.Frame{
		{Op: codec.OpSimulateEvent, SimulateEvent: codec.SimulateEventPayload{Type: codec.EvRel, Code: 0, Value: 5}},
		{Op: codec.OpSimulateEvent, SimulateEvent: codec.SimulateEventPayload{Type: codec.EvRel, Code: 1, Value: -3}},
		{Op: codec.OpSimulateEvent, SimulateEvent: codec.SimulateEventPayload{Type: codec.EvSyn, Code: 0, Value: 0}},
	}
	require.NoError(t, w.WriteFrames(frames))

	r := codec.NewReader(buf)
	for _, want := range frames {
		got, err := r.Decode()
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestDecodeUnknownOpcodeIsRefused(t *testing.T) {
	buf := &bytes.Buffer{}
	w := codec.NewWriter(buf)
	require.NoError(t, w.WriteFrame(codec.Frame{Op: 0x77}))

	r := codec.NewReader(buf)
	_, err := r.Decode()
	require.Error(t, err)
	require.True(t, errors.Is(err, codec.ErrUnknownOpcode))
}

func TestDecodeShortFrameReturnsError(t *testing.T) {
	buf := &bytes.Buffer{}
	// length prefix says 3 bytes: the Handshake opcode plus only 2
	// payload bytes — Handshake needs a 4-byte payload.
	buf.Write([]byte{3, 0, 0, 0})
	buf.Write([]byte{byte(codec.OpHandshake), 0, 0})

	r := codec.NewReader(buf)
	_, err := r.Decode()
	require.Error(t, err)
	require.True(t, errors.Is(err, codec.ErrShortFrame))
}
