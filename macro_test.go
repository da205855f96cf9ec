package crossmacro_test

import (
	"testing"

	"github.com/badu/crossmacro"
	"github.com/stretchr/testify/require"
)

func TestPointClampTo(t *testing.T) {
	size := crossmacro.Size{Width: 1920, Height: 1080}

	p := crossmacro.Point{X: -5, Y: 2000}
	clamped := p.ClampTo(size)
	require.Equal(t, int32(0), clamped.X)
	require.Equal(t, int32(1079), clamped.Y)

	inBounds := crossmacro.Point{X: 100, Y: 100}
	require.Equal(t, inBounds, inBounds.ClampTo(size))
}

func TestShortcutTaskValidateMutualExclusion(t *testing.T) {
	task := &crossmacro.ShortcutTask{Speed: 1.0, LoopEnabled: true, RunWhileHeld: true}
	require.NoError(t, task.Validate())
	require.True(t, task.LoopEnabled)
	require.False(t, task.RunWhileHeld)
}

func TestShortcutTaskValidateSpeedRange(t *testing.T) {
	task := &crossmacro.ShortcutTask{Speed: 11.0}
	require.ErrorIs(t, task.Validate(), crossmacro.ErrSpeedOutOfRange)

	task.Speed = 0.05
	require.ErrorIs(t, task.Validate(), crossmacro.ErrSpeedOutOfRange)

	task.Speed = 0.1
	require.NoError(t, task.Validate())
}

func TestMacroSequenceDuration(t *testing.T) {
	seq := crossmacro.MacroSequence{
		Name: "demo",
		Events: []crossmacro.MacroEvent{
			{Timestamp: 100},
			{Timestamp: 250},
			{Timestamp: 400},
		},
	}
	require.Equal(t, int64(300), seq.Duration())
}

func TestMacroSequenceSnapshotIsIndependent(t *testing.T) {
	seq := crossmacro.MacroSequence{Events: []crossmacro.MacroEvent{{KeyCode: 30}}}
	snap := seq.Snapshot()
	snap.Events[0].KeyCode = 99
	require.Equal(t, int32(30), seq.Events[0].KeyCode)
}
