package coordstrategy

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/badu/crossmacro"
)

// PositionSource is the minimal contract Absolute needs from a position
// provider (C9): a single-shot query of the current cursor position. It
// is declared here rather than importing package position to avoid a
// dependency cycle — position providers are wired in by the caller that
// constructs an Absolute strategy.
type PositionSource interface {
	GetAbsolutePosition(ctx context.Context) (x, y int32, ok bool)
}

// Absolute samples a PositionSource on a background poller and reports
// the most recently sampled position on every event, per §4.4. Reads are
// behind an atomic pair store/load (§5: "paired atomic store/load of x,y
// via Volatile-equivalent ordering; stale reads of a single axis are
// tolerable as long as both axes are eventually consistent" — satisfied
// here by packing both axes into one atomic.Int64).
type Absolute struct {
	source PositionSource
	packed atomic.Int64

	mu              sync.Mutex
	consecutiveErrs int
	stopped         bool
}

// NewAbsolute builds an Absolute strategy, querying source once
// synchronously for an initial position (falling back to (0,0) per
// §4.4) and returning immediately — callers must separately call
// StartPolling to mount the background sampler.
func NewAbsolute(ctx context.Context, source PositionSource) *Absolute {
	a := &Absolute{source: source}
	if x, y, ok := source.GetAbsolutePosition(ctx); ok {
		a.store(x, y)
	}
	return a
}

// StartPolling mounts the 1ms-cadence background sampler described in
// §4.4. It backs off to 100ms after a query error, and stops entirely
// (keeping the last known position) after 10 consecutive errors.
func (a *Absolute) StartPolling(ctx context.Context) {
	go a.pollLoop(ctx)
}

func (a *Absolute) pollLoop(ctx context.Context) {
	const (
		fastInterval = time.Millisecond
		slowInterval = 100 * time.Millisecond
		maxErrors    = 10
	)

	interval := fastInterval
	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		a.mu.Lock()
		if a.stopped {
			a.mu.Unlock()
			return
		}
		a.mu.Unlock()

		x, y, ok := a.source.GetAbsolutePosition(ctx)
		a.mu.Lock()
		if ok {
			a.consecutiveErrs = 0
			interval = fastInterval
			a.mu.Unlock()
			a.store(x, y)
		} else {
			a.consecutiveErrs++
			interval = slowInterval
			if a.consecutiveErrs >= maxErrors {
				a.stopped = true
				a.mu.Unlock()
				return
			}
			a.mu.Unlock()
		}

		timer.Reset(interval)
	}
}

func (a *Absolute) store(x, y int32) {
	a.packed.Store(int64(uint32(x))<<32 | int64(uint32(y)))
}

func (a *Absolute) load() (int32, int32) {
	v := a.packed.Load()
	return int32(v >> 32), int32(uint32(v))
}

// Observe implements Strategy: it returns the last sampled position for
// any event, and the (0,0) sentinel on Sync (§4.4).
func (a *Absolute) Observe(ev crossmacro.RawEvent) Sample {
	if ev.Kind == crossmacro.EventSync {
		return Sample{}
	}
	x, y := a.load()
	return Sample{X: x, Y: y, Flushed: true}
}
