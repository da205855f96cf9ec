package ipcclient

import (
	"github.com/badu/crossmacro/codec"
)

// StartCapture increments the capture reference count and always
// resends OpStartCapture to the daemon, even when capture is already
// active, so that a flag change (e.g. adding keyboard capture to an
// already-running mouse capture) takes effect immediately (§4.3).
// StopCapture is the asymmetric half: it only talks to the daemon on
// the 1→0 transition.
func (c *Client) StartCapture(mouse, keyboard bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.captureRefCount++

	return c.writer.WriteFrame(codec.Frame{
		Op: codec.OpStartCapture,
		StartCapture: codec.StartCapturePayload{
			Mouse:    mouse,
			Keyboard: keyboard,
		},
	})
}

// StopCapture decrements the capture reference count and, on the 1→0
// transition, sends OpStopCapture to the daemon. Calling StopCapture
// more times than StartCapture is a no-op rather than going negative.
func (c *Client) StopCapture() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.captureRefCount == 0 {
		return nil
	}
	c.captureRefCount--
	if c.captureRefCount > 0 {
		return nil
	}

	return c.writer.WriteFrame(codec.Frame{Op: codec.OpStopCapture})
}

// CaptureRefCount reports the current reference count, for diagnostics
// and tests.
func (c *Client) CaptureRefCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.captureRefCount
}
