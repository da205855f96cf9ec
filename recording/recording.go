// Package recording implements the recording pipeline (C7): it observes
// every raw event through a coordinate strategy, filters/deduplicates,
// and accumulates a crossmacro.MacroSequence with per-event delays
// computed on finalize (§4.5).
//
// Grounded on mouse/dispatcher.go's buildMouseEvent — a stateful
// translate-then-emit function that tracks "last button state" across
// calls the same way this pipeline tracks "last emitted absolute sample".
package recording

import (
	"github.com/badu/crossmacro"
	"github.com/badu/crossmacro/coordstrategy"
	"github.com/badu/crossmacro/evcode"
)

// Options configures the pipeline (§4.5).
type Options struct {
	RecordMouse         bool
	RecordKeyboard      bool
	IgnoredKeys         map[int32]struct{}
	AbsoluteCoordinates bool
}

// Pipeline turns a raw event stream into a MacroSequence. It is not safe
// for concurrent use — a single capture provider's reader goroutine is
// the only expected caller, per §5's single-writer event-stream guarantee.
type Pipeline struct {
	opts     Options
	strategy coordstrategy.Strategy

	events   []crossmacro.MacroEvent
	startTs  int64
	started  bool
	lastAbsX int32
	lastAbsY int32
	haveLast bool
}

// NewPipeline constructs a Pipeline that delegates coordinate resolution
// to strategy (selected by coordstrategy.Select upstream).
func NewPipeline(opts Options, strategy coordstrategy.Strategy) *Pipeline {
	return &Pipeline{opts: opts, strategy: strategy}
}

// Observe processes one raw event, per §4.5's per-event rules. The
// coordinate strategy is always invoked first so it observes every event
// regardless of what this pipeline decides to keep.
func (p *Pipeline) Observe(ev crossmacro.RawEvent) {
	sample := p.strategy.Observe(ev)

	if !p.started {
		p.startTs = ev.Timestamp
		p.started = true
	}
	relativeTs := relativeMillis(ev.Timestamp, p.startTs)

	switch ev.Kind {
	case crossmacro.EventMouseMove:
		p.observeMove(sample, relativeTs)

	case crossmacro.EventMouseScroll:
		p.observeScroll(sample, ev, relativeTs)

	case crossmacro.EventMouseButton:
		p.observeButton(sample, ev, relativeTs)

	case crossmacro.EventKey:
		p.observeKey(sample, ev, relativeTs)

	case crossmacro.EventSync:
		p.observeSync(sample, relativeTs)
	}
}

func (p *Pipeline) observeMove(sample coordstrategy.Sample, ts int64) {
	if !p.opts.RecordMouse || !sample.Flushed {
		return
	}
	if p.opts.AbsoluteCoordinates && p.haveLast && sample.X == p.lastAbsX && sample.Y == p.lastAbsY {
		return
	}
	p.emit(crossmacro.MacroEvent{Kind: crossmacro.MacroMouseMove, X: sample.X, Y: sample.Y, Timestamp: ts})
	p.lastAbsX, p.lastAbsY = sample.X, sample.Y
	p.haveLast = true
}

func (p *Pipeline) observeScroll(sample coordstrategy.Sample, ev crossmacro.RawEvent, ts int64) {
	if !p.opts.RecordMouse {
		return
	}
	if sample.Flushed {
		p.observeMove(sample, ts)
	}
	var btn crossmacro.Button
	switch uint16(ev.Code) {
	case evcode.REL_WHEEL: // vertical
		if ev.Value > 0 {
			btn = crossmacro.ButtonScrollUp
		} else {
			btn = crossmacro.ButtonScrollDown
		}
	case evcode.REL_HWHEEL: // horizontal
		if ev.Value > 0 {
			btn = crossmacro.ButtonScrollRight
		} else {
			btn = crossmacro.ButtonScrollLeft
		}
	default:
		return
	}
	p.emit(crossmacro.MacroEvent{Kind: crossmacro.MacroClick, Button: btn, X: p.lastAbsX, Y: p.lastAbsY, Timestamp: ts})
}

var buttonTranslation = map[int32]crossmacro.Button{
	0x110: crossmacro.ButtonLeft,
	0x111: crossmacro.ButtonRight,
	0x112: crossmacro.ButtonMiddle,
	0x113: crossmacro.ButtonSide1,
	0x114: crossmacro.ButtonSide2,
}

func (p *Pipeline) observeButton(sample coordstrategy.Sample, ev crossmacro.RawEvent, ts int64) {
	if !p.opts.RecordMouse {
		return
	}
	if sample.Flushed {
		p.observeMove(sample, ts)
	}
	btn, ok := buttonTranslation[ev.Code]
	if !ok {
		return
	}
	kind := crossmacro.MacroButtonRelease
	if ev.Value == 1 {
		kind = crossmacro.MacroButtonPress
	}
	p.emit(crossmacro.MacroEvent{Kind: kind, Button: btn, X: p.lastAbsX, Y: p.lastAbsY, Timestamp: ts})
}

func (p *Pipeline) observeKey(sample coordstrategy.Sample, ev crossmacro.RawEvent, ts int64) {
	if sample.Flushed {
		p.observeMove(sample, ts)
	}
	if !p.opts.RecordKeyboard {
		return
	}
	if _, ignored := p.opts.IgnoredKeys[ev.Code]; ignored {
		return
	}
	if ev.Value != 0 && ev.Value != 1 {
		return // repeat (2) is dropped
	}
	kind := crossmacro.MacroKeyRelease
	if ev.Value == 1 {
		kind = crossmacro.MacroKeyPress
	}
	p.emit(crossmacro.MacroEvent{Kind: kind, KeyCode: ev.Code, X: p.lastAbsX, Y: p.lastAbsY, Timestamp: ts})
}

func (p *Pipeline) observeSync(sample coordstrategy.Sample, ts int64) {
	if p.opts.AbsoluteCoordinates {
		return
	}
	if !sample.Flushed {
		return
	}
	p.observeMove(sample, ts)
}

func (p *Pipeline) emit(ev crossmacro.MacroEvent) {
	p.events = append(p.events, ev)
}

func relativeMillis(tsTicks, startTicks int64) int64 {
	// Timestamps are monotonic ticks of 100ns (§3); convert to ms relative
	// to recording start.
	return (tsTicks - startTicks) / 10_000
}

// Finish computes delayMs for every recorded event and returns the final
// sequence (§4.5 "Delay computation"): delayMs[i] = ts[i+1]-ts[i], last
// entry zero. It also emits synthetic releases for any press left open,
// per §3's "every press has a later release... or the pipeline emits a
// synthetic release at end" invariant.
func (p *Pipeline) Finish(name string) crossmacro.MacroSequence {
	p.closeOpenPresses()

	for i := range p.events {
		if i == len(p.events)-1 {
			p.events[i].DelayMs = 0
			continue
		}
		p.events[i].DelayMs = p.events[i+1].Timestamp - p.events[i].Timestamp
		if p.events[i].DelayMs < 0 {
			p.events[i].DelayMs = 0
		}
	}

	return crossmacro.MacroSequence{Name: name, Events: p.events}
}

func (p *Pipeline) closeOpenPresses() {
	lastTs := int64(0)
	if len(p.events) > 0 {
		lastTs = p.events[len(p.events)-1].Timestamp
	}

	openButtons := map[crossmacro.Button]bool{}
	openKeys := map[int32]bool{}
	for _, ev := range p.events {
		switch ev.Kind {
		case crossmacro.MacroButtonPress:
			openButtons[ev.Button] = true
		case crossmacro.MacroButtonRelease:
			openButtons[ev.Button] = false
		case crossmacro.MacroKeyPress:
			openKeys[ev.KeyCode] = true
		case crossmacro.MacroKeyRelease:
			openKeys[ev.KeyCode] = false
		}
	}

	for btn, open := range openButtons {
		if open {
			p.emit(crossmacro.MacroEvent{Kind: crossmacro.MacroButtonRelease, Button: btn, X: p.lastAbsX, Y: p.lastAbsY, Timestamp: lastTs})
		}
	}
	for code, open := range openKeys {
		if open {
			p.emit(crossmacro.MacroEvent{Kind: crossmacro.MacroKeyRelease, KeyCode: code, X: p.lastAbsX, Y: p.lastAbsY, Timestamp: lastTs})
		}
	}
}
