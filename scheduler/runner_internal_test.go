package scheduler

import (
	"context"
	"testing"

	"github.com/badu/crossmacro"
	"github.com/badu/crossmacro/playback"
	"github.com/stretchr/testify/require"
)

type capturingPlayer struct {
	opts playback.Options
}

func (p *capturingPlayer) Play(ctx context.Context, seq crossmacro.MacroSequence, opts playback.Options) error {
	p.opts = opts
	return nil
}

func loaderReturning(seq crossmacro.MacroSequence) SequenceLoaderFunc {
	return func(string) (crossmacro.MacroSequence, error) { return seq, nil }
}

var testSequence = crossmacro.MacroSequence{Name: "t"}

func TestRunnerTranslatesLoopEnabledToModeLoopN(t *testing.T) {
	player := &capturingPlayer{}
	r := &runner{player: player, loader: loaderReturning(testSequence)}

	require.NoError(t, r.run(context.Background(), "p", 2.0, true, false, 3, 500, nil))
	require.Equal(t, crossmacro.ModeLoopN, player.opts.Mode)
	require.Equal(t, 3, player.opts.LoopCount)
	require.Equal(t, int64(500), player.opts.RepeatDelayMs)
	require.Equal(t, 2.0, player.opts.Speed)
}

func TestRunnerTranslatesRunWhileHeldToModeWhileHeld(t *testing.T) {
	player := &capturingPlayer{}
	held := make(chan bool, 1)
	held <- false // released immediately so Play returns without blocking
	r := &runner{player: player, loader: loaderReturning(testSequence)}

	require.NoError(t, r.run(context.Background(), "p", 1.0, false, true, 0, 0, held))
	require.Equal(t, crossmacro.ModeWhileHeld, player.opts.Mode)
}

func TestRunnerDefaultsToModeOnce(t *testing.T) {
	player := &capturingPlayer{}
	r := &runner{player: player, loader: loaderReturning(testSequence)}

	require.NoError(t, r.run(context.Background(), "p", 1.0, false, false, 0, 0, nil))
	require.Equal(t, crossmacro.ModeOnce, player.opts.Mode)
}

func TestRunnerPropagatesLoaderError(t *testing.T) {
	loader := SequenceLoaderFunc(func(string) (crossmacro.MacroSequence, error) {
		return crossmacro.MacroSequence{}, crossmacro.ErrEmptySequence
	})
	r := &runner{player: &capturingPlayer{}, loader: loader}

	err := r.run(context.Background(), "missing.json", 1.0, false, false, 0, 0, nil)
	require.ErrorIs(t, err, crossmacro.ErrEmptySequence)
}
