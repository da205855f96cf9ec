package ipcclient

import (
	"context"

	"github.com/badu/crossmacro/codec"
)

// SimulateEvent sends a single SimulateEvent frame. Client implements
// simulate.FrameSink so simulate.DaemonProvider can drive input through
// the daemon without importing ipcclient directly.
func (c *Client) SimulateEvent(ctx context.Context, evType, code uint16, value int32) error {
	return c.writeFrame(codecFrame(evType, code, value))
}

// SimulateBatch sends every event under one write-lock hold, the shape
// §4.3 calls for so a logical action's worth of axis events (e.g.
// REL_X, REL_Y, SYN_REPORT) reaches the daemon as one write.
func (c *Client) SimulateBatch(ctx context.Context, events [][3]int64) error {
	frames := make([]codec.Frame, 0, len(events))
	for _, e := range events {
		frames = append(frames, codecFrame(uint16(e[0]), uint16(e[1]), int32(e[2])))
	}

	c.mu.Lock()
	w := c.writer
	c.mu.Unlock()
	if w == nil {
		return nil
	}
	return w.WriteFrames(frames)
}

// ConfigureResolution informs the daemon of the uinput virtual device's
// absolute-axis resolution, per §4.1's ConfigureResolution frame.
func (c *Client) ConfigureResolution(width, height int32) error {
	return c.writeFrame(codec.Frame{
		Op: codec.OpConfigureResolution,
		ConfigureResolution: codec.ConfigureResolutionPayload{
			Width:  width,
			Height: height,
		},
	})
}

func codecFrame(evType, code uint16, value int32) codec.Frame {
	return codec.Frame{
		Op: codec.OpSimulateEvent,
		SimulateEvent: codec.SimulateEventPayload{
			Type:  evType,
			Code:  code,
			Value: value,
		},
	}
}
