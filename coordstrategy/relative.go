package coordstrategy

import "github.com/badu/crossmacro"

// Relative accumulates per-axis deltas and flushes them on a Sync or on
// any non-move event, per §4.4. Force-Relative selects this same
// implementation — forcing relative mode changes only which Kind the
// priority table picks, not the state machine's behavior.
type Relative struct {
	pendingX, pendingY int32
	lastX, lastY       int32
}

// NewRelative returns a fresh Relative strategy with zeroed accumulators.
func NewRelative() *Relative {
	return &Relative{}
}

// Observe implements Strategy.
func (r *Relative) Observe(ev crossmacro.RawEvent) Sample {
	switch ev.Kind {
	case crossmacro.EventMouseMove:
		switch ev.Code {
		case 0: // REL_X
			r.pendingX += ev.Value
		case 1: // REL_Y
			r.pendingY += ev.Value
		}
		return Sample{}

	case crossmacro.EventSync, crossmacro.EventMouseButton, crossmacro.EventMouseScroll, crossmacro.EventKey:
		if r.pendingX == 0 && r.pendingY == 0 {
			return Sample{}
		}
		r.lastX += r.pendingX
		r.lastY += r.pendingY
		x, y := r.pendingX, r.pendingY
		r.pendingX, r.pendingY = 0, 0
		return Sample{X: x, Y: y, Flushed: true}

	default:
		return Sample{}
	}
}

// Last returns the last flushed absolute-equivalent position, tracked only
// for diagnostics — the strategy itself reports deltas, not positions.
func (r *Relative) Last() (int32, int32) {
	return r.lastX, r.lastY
}
