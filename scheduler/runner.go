// Package scheduler implements the scheduler and shortcut runner (C11):
// small dispatchers that invoke the playback engine (C8) on a calendar
// schedule or on notification of an external hotkey trigger. Global
// hotkey registration itself is out of scope (§1 Non-goals) — this
// package only exposes the trigger surface an external registrar calls.
package scheduler

import (
	"context"

	"github.com/badu/crossmacro"
	"github.com/badu/crossmacro/playback"
)

// Player is the slice of *playback.Engine both dispatchers drive,
// declared locally the same way unicodeEmitter/modifierState/
// clipboardService are declared in the expansion package rather than
// importing a concrete type.
type Player interface {
	Play(ctx context.Context, seq crossmacro.MacroSequence, opts playback.Options) error
}

// SequenceLoader resolves a macro file path to its parsed sequence,
// satisfied in production by config.LoadMacroSequence.
type SequenceLoader interface {
	Load(path string) (crossmacro.MacroSequence, error)
}

// SequenceLoaderFunc adapts a plain function to a SequenceLoader, the
// same adapter idiom crossmacro.RawEventSinkFunc uses for RawEventSink.
type SequenceLoaderFunc func(path string) (crossmacro.MacroSequence, error)

func (f SequenceLoaderFunc) Load(path string) (crossmacro.MacroSequence, error) { return f(path) }

// runner holds the shared logic both the cron dispatcher and the hotkey
// dispatcher use to turn a task's Speed/LoopEnabled/RunWhileHeld/
// LoopCount/RepeatDelayMs fields into one playback.Options and invoke
// the player (§3 ShortcutTask/ScheduledTask, §4.11).
type runner struct {
	player Player
	loader SequenceLoader
}

// run loads macroPath and plays it once, looped, or while held,
// according to the flags. heldChan is only consulted when runWhileHeld
// is true.
func (r *runner) run(ctx context.Context, macroPath string, speed float64, loopEnabled, runWhileHeld bool, loopCount int, repeatDelayMs int64, heldChan <-chan bool) error {
	seq, err := r.loader.Load(macroPath)
	if err != nil {
		return err
	}

	opts := playback.Options{Speed: speed}
	switch {
	case loopEnabled:
		opts.Mode = crossmacro.ModeLoopN
		opts.LoopCount = loopCount
		opts.RepeatDelayMs = repeatDelayMs
	case runWhileHeld:
		opts.Mode = crossmacro.ModeWhileHeld
		opts.HeldChan = heldChan
	default:
		opts.Mode = crossmacro.ModeOnce
	}

	return r.player.Play(ctx, seq, opts)
}
