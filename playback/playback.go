// Package playback implements the playback engine (C8): it interprets a
// crossmacro.MacroSequence with a speed multiplier and a repetition mode,
// driving a simulate.Provider with absolute-deadline scheduling and a
// mandatory release-all on every exit path (§4.6).
//
// Grounded on key/dispatcher.go's keyTimer/keyExpire discipline — the
// dispatcher compares time.Now() against a previously computed deadline
// (d.keyExpire) rather than accumulating sleeps, which is exactly the
// "absolute-deadline, not cumulative drift" scheduling §4.6 calls for.
package playback

import (
	"context"
	"time"

	"github.com/badu/crossmacro"
	"github.com/badu/crossmacro/evcode"
	"github.com/badu/crossmacro/simulate"
)

// Engine plays back one MacroSequence at a time. It is not safe for
// concurrent Play calls — §5 guarantees the engine is single-threaded
// across a playback invocation.
type Engine struct {
	provider simulate.Provider
	width    int32
	height   int32
}

// NewEngine builds an Engine driving provider, clamping absolute moves to
// [0,width-1]x[0,height-1] per §4.6.
func NewEngine(provider simulate.Provider, width, height int32) *Engine {
	return &Engine{provider: provider, width: width, height: height}
}

// Options configures one Play invocation (§4.6).
type Options struct {
	Speed         float64
	Mode          crossmacro.PlaybackMode
	LoopCount     int   // 0 ⇒ infinite, only meaningful for ModeLoopN
	RepeatDelayMs int64 // delay between LoopN iterations
	// AbsoluteCoordinates selects EV_ABS-style emission for MouseMove
	// events instead of EV_REL; the recording's coordinate mode at
	// capture time determines which is correct for a given sequence.
	AbsoluteCoordinates bool
	// HeldChan, for ModeWhileHeld, is closed or receives false when the
	// trigger hotkey is released; the engine cancels the in-flight
	// iteration and does not start another.
	HeldChan <-chan bool
}

// Play runs seq according to opts until completion, cancellation, or
// (ModeWhileHeld) hotkey release, then unconditionally release-alls.
func (e *Engine) Play(ctx context.Context, seq crossmacro.MacroSequence, opts Options) error {
	defer e.provider.ReleaseAll(ctx)

	snapshot := seq.Snapshot()
	if len(snapshot.Events) == 0 {
		return crossmacro.ErrEmptySequence
	}

	speed := opts.Speed
	if speed <= 0 {
		speed = 1.0
	}

	switch opts.Mode {
	case crossmacro.ModeOnce:
		return e.playOnce(ctx, snapshot, speed, opts.AbsoluteCoordinates)

	case crossmacro.ModeLoopN:
		return e.playLoop(ctx, snapshot, speed, opts)

	case crossmacro.ModeWhileHeld:
		return e.playWhileHeld(ctx, snapshot, speed, opts)

	default:
		return e.playOnce(ctx, snapshot, speed, opts.AbsoluteCoordinates)
	}
}

func (e *Engine) playLoop(ctx context.Context, seq crossmacro.MacroSequence, speed float64, opts Options) error {
	for i := 0; opts.LoopCount == 0 || i < opts.LoopCount; i++ {
		if err := e.playOnce(ctx, seq, speed, opts.AbsoluteCoordinates); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if opts.RepeatDelayMs > 0 {
			if err := sleepCancelable(ctx, time.Duration(opts.RepeatDelayMs)*time.Millisecond); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Engine) playWhileHeld(ctx context.Context, seq crossmacro.MacroSequence, speed float64, opts Options) error {
	for {
		held, ok := <-opts.HeldChan
		if !ok || !held {
			return nil
		}

		runCtx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() { done <- e.playOnce(runCtx, seq, speed, opts.AbsoluteCoordinates) }()

		select {
		case err := <-done:
			cancel()
			if err != nil {
				return err
			}
		case held, ok := <-opts.HeldChan:
			cancel()
			<-done
			if !ok || !held {
				return nil
			}
		}
	}
}

// playOnce emits every event of seq in order, sleeping to the
// deadline-compensated delay before each one.
func (e *Engine) playOnce(ctx context.Context, seq crossmacro.MacroSequence, speed float64, absolute bool) error {
	deadline := time.Now()

	for _, ev := range seq.Events {
		if ctx.Err() != nil {
			return crossmacro.ErrPlaybackCancelled
		}

		if err := e.emit(ctx, ev, absolute); err != nil {
			return err
		}

		delay := time.Duration(float64(ev.DelayMs)/speed) * time.Millisecond
		deadline = deadline.Add(delay)
		if err := sleepUntil(ctx, deadline); err != nil {
			return err
		}
	}
	return nil
}

// sleepUntil blocks until deadline or ctx cancellation, comparing
// time.Now() against deadline the way key/dispatcher.go compares
// time.Now() against d.keyExpire, instead of sleeping the originally
// intended duration and accumulating drift across iterations.
func sleepUntil(ctx context.Context, deadline time.Time) error {
	remaining := time.Until(deadline)
	if remaining <= 0 {
		return nil
	}
	return sleepCancelable(ctx, remaining)
}

func sleepCancelable(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return crossmacro.ErrPlaybackCancelled
	}
}

func (e *Engine) emit(ctx context.Context, ev crossmacro.MacroEvent, absolute bool) error {
	switch ev.Kind {
	case crossmacro.MacroMouseMove:
		x, y := clamp(ev.X, e.width), clamp(ev.Y, e.height)
		if absolute {
			return e.provider.MoveAbsolute(ctx, x, y)
		}
		return e.provider.MoveRelative(ctx, ev.X, ev.Y)

	case crossmacro.MacroButtonPress:
		return e.provider.EmitButton(ctx, ev.Button, true)
	case crossmacro.MacroButtonRelease:
		return e.provider.EmitButton(ctx, ev.Button, false)

	case crossmacro.MacroClick:
		return e.emitClick(ctx, ev.Button)

	case crossmacro.MacroKeyPress:
		return e.provider.EmitKey(ctx, ev.KeyCode, true)
	case crossmacro.MacroKeyRelease:
		return e.provider.EmitKey(ctx, ev.KeyCode, false)

	case crossmacro.MacroScroll:
		return e.emitClick(ctx, ev.Button)

	default:
		return nil
	}
}

func (e *Engine) emitClick(ctx context.Context, btn crossmacro.Button) error {
	value := int32(1)
	switch btn {
	case crossmacro.ButtonScrollDown, crossmacro.ButtonScrollLeft:
		value = -1
	}
	return e.provider.EmitScroll(ctx, value)
}

func clamp(v, limit int32) int32 {
	if limit <= 0 {
		return v
	}
	if v < 0 {
		return 0
	}
	if v > limit-1 {
		return limit - 1
	}
	return v
}

// EmitUnicodeCodePoint types r with the §4.6 Unicode-hex escape fallback
// used by the text-expansion core:
// LEFTCTRL down, LEFTSHIFT down, U down/up, release both modifiers, wait
// 200ms, emit hex digits, ENTER down/up.
func (e *Engine) EmitUnicodeCodePoint(ctx context.Context, r rune) error {
	if err := e.provider.EmitKey(ctx, int32(evcode.KEY_LEFTCTRL), true); err != nil {
		return err
	}
	if err := e.provider.EmitKey(ctx, int32(evcode.KEY_LEFTSHIFT), true); err != nil {
		return err
	}
	if err := e.provider.EmitKey(ctx, int32(evcode.KEY_U), true); err != nil {
		return err
	}
	if err := e.provider.EmitKey(ctx, int32(evcode.KEY_U), false); err != nil {
		return err
	}
	if err := e.provider.EmitKey(ctx, int32(evcode.KEY_LEFTSHIFT), false); err != nil {
		return err
	}
	if err := e.provider.EmitKey(ctx, int32(evcode.KEY_LEFTCTRL), false); err != nil {
		return err
	}
	if err := sleepCancelable(ctx, 200*time.Millisecond); err != nil {
		return err
	}

	hex := []byte(toHex(r))
	for _, digit := range hex {
		code, shift, ok := evcode.HexDigitKey(digit)
		if !ok {
			continue
		}
		if shift {
			if err := e.provider.EmitKey(ctx, int32(evcode.KEY_LEFTSHIFT), true); err != nil {
				return err
			}
		}
		if err := e.provider.EmitKey(ctx, int32(code), true); err != nil {
			return err
		}
		if err := e.provider.EmitKey(ctx, int32(code), false); err != nil {
			return err
		}
		if shift {
			if err := e.provider.EmitKey(ctx, int32(evcode.KEY_LEFTSHIFT), false); err != nil {
				return err
			}
		}
	}

	if err := e.provider.EmitKey(ctx, int32(evcode.KEY_ENTER), true); err != nil {
		return err
	}
	return e.provider.EmitKey(ctx, int32(evcode.KEY_ENTER), false)
}

func toHex(r rune) string {
	const digits = "0123456789abcdef"
	if r == 0 {
		return "0"
	}
	var buf [8]byte
	i := len(buf)
	v := uint32(r)
	for v > 0 {
		i--
		buf[i] = digits[v&0xf]
		v >>= 4
	}
	return string(buf[i:])
}
