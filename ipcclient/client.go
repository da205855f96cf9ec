// Package ipcclient is the unprivileged client side of the C1 wire
// protocol (§4.3): it dials the daemon's Unix socket, performs the
// handshake, and exposes StartCapture/StopCapture/SimulateEvent/
// SimulateBatch plus a subscription channel for decoded input events.
//
// Grounded on key/dispatcher.go's and mouse/dispatcher.go's
// Register/DyingChan/lifeCycle shape: one reader goroutine owns the
// connection's read side and fans decoded frames out to registered
// listener channels; the write side is serialized by a single
// sync.Mutex, mirroring eventDispatcher's guarded critical section.
package ipcclient

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/badu/crossmacro"
	"github.com/badu/crossmacro/codec"
	"github.com/rs/zerolog"
)

// InputListener receives decoded InputEvent frames. Deliver must not
// block for long — it runs on the client's single reader goroutine.
type InputListener interface {
	Deliver(ev crossmacro.RawEvent)
}

// InputListenerFunc adapts a function to an InputListener.
type InputListenerFunc func(ev crossmacro.RawEvent)

func (f InputListenerFunc) Deliver(ev crossmacro.RawEvent) { f(ev) }

// Option configures a Client before it dials.
type Option func(*Client)

// WithLogger attaches a zerolog.Logger; the zero value is a no-op logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithHandshakeTimeout bounds how long Connect waits for the daemon's
// Handshake reply.
func WithHandshakeTimeout(d time.Duration) Option {
	return func(c *Client) { c.handshakeTimeout = d }
}

// Client is one connection to the daemon. It is safe to call
// SimulateEvent/SimulateBatch/StartCapture/StopCapture concurrently; a
// single internal mutex serializes writes and the capture reference
// count, exactly as §4.3 specifies.
type Client struct {
	mu               sync.Mutex
	conn             net.Conn
	writer           *codec.Writer
	listeners        []chan crossmacro.RawEvent
	captureRefCount  int
	handshakeTimeout time.Duration
	log              zerolog.Logger
	died             chan struct{}
	errCh            chan error
}

// New constructs a Client. Call Connect to dial and perform the
// handshake before using any other method.
func New(opts ...Option) *Client {
	c := &Client{
		handshakeTimeout: 5 * time.Second,
		died:             make(chan struct{}),
		errCh:            make(chan error, 1),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Connect dials addr (a Unix socket path), performs the handshake, and
// starts the reader goroutine. ctx bounds only the dial and handshake;
// the reader goroutine outlives ctx and is stopped by Close.
func (c *Client) Connect(ctx context.Context, addr string) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", addr)
	if err != nil {
		return fmt.Errorf("%w: %v", crossmacro.ErrSocketUnavailable, err)
	}

	c.mu.Lock()
	c.conn = conn
	c.writer = codec.NewWriter(conn)
	c.mu.Unlock()

	if err := c.handshake(ctx, conn); err != nil {
		conn.Close()
		return err
	}

	go c.lifeCycle(codec.NewReader(conn))
	return nil
}

func (c *Client) handshake(ctx context.Context, conn net.Conn) error {
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.handshakeTimeout)
	}
	conn.SetDeadline(deadline)
	defer conn.SetDeadline(time.Time{})

	if err := c.writer.WriteFrame(codec.HandshakeFrame()); err != nil {
		return fmt.Errorf("ipcclient: handshake write: %w", err)
	}

	reply, err := codec.NewReader(conn).Decode()
	if err != nil {
		return fmt.Errorf("ipcclient: handshake read: %w", err)
	}
	switch reply.Op {
	case codec.OpHandshake:
		if reply.Handshake.ProtocolVersion != codec.ProtocolVersion {
			return crossmacro.ErrProtocolMismatch
		}
		return nil
	case codec.OpError:
		return fmt.Errorf("%w: %s", crossmacro.ErrAuthorizationDenied, reply.Error)
	default:
		return fmt.Errorf("ipcclient: unexpected handshake reply opcode %s", reply.Op)
	}
}

// lifeCycle owns the connection's read side for its lifetime, fanning
// decoded InputEvent frames out to every registered listener channel.
func (c *Client) lifeCycle(r *codec.Reader) {
	defer close(c.died)
	for {
		frame, err := r.Decode()
		if err != nil {
			select {
			case c.errCh <- err:
			default:
			}
			return
		}

		switch frame.Op {
		case codec.OpInputEvent:
			ev := crossmacro.RawEvent{
				Kind:      crossmacro.EventKind(frame.InputEvent.Kind),
				Code:      frame.InputEvent.Code,
				Value:     frame.InputEvent.Value,
				Timestamp: frame.InputEvent.Timestamp,
			}
			c.broadcast(ev)
		case codec.OpError:
			c.log.Error().Str("message", frame.Error).Msg("daemon reported error")
		default:
			c.log.Warn().Str("opcode", frame.Op.String()).Msg("unexpected frame from daemon")
		}
	}
}

func (c *Client) broadcast(ev crossmacro.RawEvent) {
	c.mu.Lock()
	listeners := append([]chan crossmacro.RawEvent(nil), c.listeners...)
	c.mu.Unlock()

	for _, ch := range listeners {
		select {
		case ch <- ev:
		default:
			c.log.Warn().Msg("input listener channel full, dropping event")
		}
	}
}

// Subscribe registers a channel that receives every decoded input event
// until Unsubscribe is called. The channel should be buffered: Deliver
// is best-effort and drops events on a full channel rather than block
// the reader goroutine, per the package doc's "must not block" contract.
func (c *Client) Subscribe(ch chan crossmacro.RawEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, ch)
}

// Unsubscribe removes a previously registered channel. Mirrors
// channels.delete's swap-with-last removal.
func (c *Client) Unsubscribe(ch chan crossmacro.RawEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, l := range c.listeners {
		if l == ch {
			c.listeners[i] = c.listeners[len(c.listeners)-1]
			c.listeners = c.listeners[:len(c.listeners)-1]
			return
		}
	}
}

// DyingChan implements crossmacro.Death: it closes when the reader
// goroutine exits, whether from Close or a connection error.
func (c *Client) DyingChan() chan struct{} {
	return c.died
}

// Err returns the error that ended the reader goroutine, if any. It is
// safe to call after DyingChan closes.
func (c *Client) Err() error {
	select {
	case err := <-c.errCh:
		return err
	default:
		return nil
	}
}

// Close closes the underlying connection, which unblocks the reader
// goroutine's next Decode call.
func (c *Client) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Close()
}

func (c *Client) writeFrame(f codec.Frame) error {
	c.mu.Lock()
	w := c.writer
	c.mu.Unlock()
	if w == nil {
		return crossmacro.ErrSocketUnavailable
	}
	return w.WriteFrame(f)
}
