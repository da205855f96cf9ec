package scheduler_test

import (
	"context"
	"sync"

	"github.com/badu/crossmacro"
	"github.com/badu/crossmacro/playback"
	"github.com/badu/crossmacro/scheduler"
)

type recordedPlay struct {
	seq  crossmacro.MacroSequence
	opts playback.Options
}

type fakePlayer struct {
	mu    sync.Mutex
	plays []recordedPlay
	err   error
}

func (f *fakePlayer) Play(ctx context.Context, seq crossmacro.MacroSequence, opts playback.Options) error {
	f.mu.Lock()
	f.plays = append(f.plays, recordedPlay{seq, opts})
	f.mu.Unlock()
	if opts.Mode == crossmacro.ModeWhileHeld {
		for {
			held, ok := <-opts.HeldChan
			if !ok || !held {
				return nil
			}
		}
	}
	return f.err
}

func (f *fakePlayer) snapshot() []recordedPlay {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedPlay(nil), f.plays...)
}

func fakeLoader(seq crossmacro.MacroSequence) scheduler.SequenceLoaderFunc {
	return func(path string) (crossmacro.MacroSequence, error) { return seq, nil }
}

var demoSequence = crossmacro.MacroSequence{
	Name: "demo",
	Events: []crossmacro.MacroEvent{
		{Kind: crossmacro.MacroKeyPress, KeyCode: 30},
		{Kind: crossmacro.MacroKeyRelease, KeyCode: 30},
	},
}
