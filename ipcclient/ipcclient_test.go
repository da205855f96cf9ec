package ipcclient

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/badu/crossmacro"
	"github.com/badu/crossmacro/codec"
	"github.com/stretchr/testify/require"
)

// newTestClient wires a Client directly to one end of an in-memory
// net.Pipe, bypassing Connect's dial+handshake so tests can exercise the
// write-side API without a real listener.
func newTestClient(t *testing.T) (*Client, net.Conn) {
	t.Helper()
	serverConn, clientConn := net.Pipe()
	c := New()
	c.conn = clientConn
	c.writer = codec.NewWriter(clientConn)
	t.Cleanup(func() { c.Close(); serverConn.Close() })
	return c, serverConn
}

func TestStartCaptureResendsFrameOnEveryCall(t *testing.T) {
	c, server := newTestClient(t)
	r := codec.NewReader(server)

	done := make(chan struct{})
	go func() {
		defer close(done)
		require.NoError(t, c.StartCapture(true, false))
		require.NoError(t, c.StartCapture(true, true)) // flag change while already active
	}()

	frame, err := r.Decode()
	require.NoError(t, err)
	require.Equal(t, codec.OpStartCapture, frame.Op)
	require.True(t, frame.StartCapture.Mouse)
	require.False(t, frame.StartCapture.Keyboard)

	frame, err = r.Decode()
	require.NoError(t, err)
	require.True(t, frame.StartCapture.Keyboard)

	<-done
	require.Equal(t, 2, c.CaptureRefCount())
}

func TestStopCaptureOnlySendsOnZeroTransition(t *testing.T) {
	c, server := newTestClient(t)
	r := codec.NewReader(server)

	go func() {
		_, _ = r.Decode() // drain each StartCapture frame
		_, _ = r.Decode()
	}()
	require.NoError(t, c.StartCapture(true, true))
	require.NoError(t, c.StartCapture(true, true))
	require.Equal(t, 2, c.CaptureRefCount())

	require.NoError(t, c.StopCapture())
	require.Equal(t, 1, c.CaptureRefCount())

	done := make(chan struct{})
	go func() {
		defer close(done)
		require.NoError(t, c.StopCapture())
	}()

	frame, err := r.Decode()
	require.NoError(t, err)
	require.Equal(t, codec.OpStopCapture, frame.Op)
	<-done
	require.Equal(t, 0, c.CaptureRefCount())
}

func TestSimulateBatchWritesAllFramesUnderOneLock(t *testing.T) {
	c, server := newTestClient(t)
	r := codec.NewReader(server)

	events := [][3]int64{
		{int64(codec.EvRel), 0x00, 5},
		{int64(codec.EvRel), 0x01, -3},
		{int64(codec.EvSyn), 0, 0},
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		require.NoError(t, c.SimulateBatch(context.Background(), events))
	}()

	for i := 0; i < 3; i++ {
		frame, err := r.Decode()
		require.NoError(t, err)
		require.Equal(t, codec.OpSimulateEvent, frame.Op)
		require.Equal(t, uint16(events[i][0]), frame.SimulateEvent.Type)
	}
	<-done
}

func TestSubscribeDeliversDecodedInputEvents(t *testing.T) {
	c, server := newTestClient(t)
	ch := make(chan crossmacro.RawEvent, 4)
	c.Subscribe(ch)

	go c.lifeCycle(codec.NewReader(c.conn))

	w := codec.NewWriter(server)
	require.NoError(t, w.WriteFrame(codec.Frame{
		Op: codec.OpInputEvent,
		InputEvent: codec.InputEventPayload{
			Kind:      uint8(crossmacro.EventKey),
			Code:      30,
			Value:     1,
			Timestamp: 1234,
		},
	}))

	select {
	case ev := <-ch:
		require.Equal(t, crossmacro.EventKey, ev.Kind)
		require.Equal(t, int32(30), ev.Code)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for delivered event")
	}

	c.Unsubscribe(ch)
	require.Empty(t, c.listeners)
}

func TestHandshakeProtocolMismatchIsRejected(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	defer serverConn.Close()

	c := New(WithHandshakeTimeout(500 * time.Millisecond))
	c.conn = clientConn
	c.writer = codec.NewWriter(clientConn)

	errCh := make(chan error, 1)
	go func() {
		errCh <- c.handshake(context.Background(), clientConn)
	}()

	req, err := codec.NewReader(serverConn).Decode()
	require.NoError(t, err)
	require.Equal(t, codec.OpHandshake, req.Op)

	w := codec.NewWriter(serverConn)
	require.NoError(t, w.WriteFrame(codec.Frame{
		Op:        codec.OpHandshake,
		Handshake: codec.HandshakePayload{ProtocolVersion: codec.ProtocolVersion + 1},
	}))

	err = <-errCh
	require.ErrorIs(t, err, crossmacro.ErrProtocolMismatch)
}
