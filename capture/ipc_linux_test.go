//go:build linux

package capture

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/badu/crossmacro/codec"
	"github.com/badu/crossmacro/ipcclient"
	"github.com/stretchr/testify/require"
)

// fakeDaemon accepts one connection, performs the handshake, then
// forwards whatever StartCapturePayload it received into a channel for
// the test to inspect, and streams one InputEvent frame back.
func fakeDaemon(t *testing.T, addr string) chan codec.Frame {
	t.Helper()
	ln, err := net.Listen("unix", addr)
	require.NoError(t, err)

	received := make(chan codec.Frame, 4)
	go func() {
		defer ln.Close()
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		r := codec.NewReader(conn)
		w := codec.NewWriter(conn)

		hs, err := r.Decode()
		if err != nil || hs.Op != codec.OpHandshake {
			return
		}
		w.WriteFrame(codec.HandshakeFrame())

		frame, err := r.Decode()
		if err != nil {
			return
		}
		received <- frame

		w.WriteFrame(codec.Frame{
			Op:         codec.OpInputEvent,
			InputEvent: codec.InputEventPayload{Kind: 0, Code: 30, Value: 1, Timestamp: 1},
		})

		// keep the connection open until the test closes it
		time.Sleep(200 * time.Millisecond)
	}()
	return received
}

func TestIPCProviderStartSendsStartCaptureAndForwardsEvents(t *testing.T) {
	dir := t.TempDir()
	addr := filepath.Join(dir, "crossmacro.sock")
	received := fakeDaemon(t, addr)

	client := ipcclient.New()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, client.Connect(ctx, addr))
	defer client.Close()

	provider := NewIPCProvider(client)
	require.NoError(t, provider.Start(ctx, true, true))
	defer provider.Stop()

	select {
	case frame := <-received:
		require.Equal(t, codec.OpStartCapture, frame.Op)
		require.True(t, frame.StartCapture.Mouse)
		require.True(t, frame.StartCapture.Keyboard)
	case <-time.After(time.Second):
		t.Fatal("daemon never received StartCapture frame")
	}

	select {
	case ev := <-provider.EventStream():
		require.Equal(t, int32(30), ev.Code)
	case <-time.After(time.Second):
		t.Fatal("provider never forwarded the daemon's InputEvent")
	}
}
