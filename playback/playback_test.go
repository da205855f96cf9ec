package playback_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/badu/crossmacro"
	"github.com/badu/crossmacro/playback"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	mu           sync.Mutex
	keyEvents    []struct{ code int32; pressed bool }
	buttonEvents []struct {
		btn      crossmacro.Button
		pressed  bool
	}
	releaseAllCalls int
}

func (f *fakeProvider) Initialize(ctx context.Context, w, h int32) error { return nil }
func (f *fakeProvider) MoveAbsolute(ctx context.Context, x, y int32) error { return nil }
func (f *fakeProvider) MoveRelative(ctx context.Context, dx, dy int32) error { return nil }

func (f *fakeProvider) EmitButton(ctx context.Context, btn crossmacro.Button, pressed bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buttonEvents = append(f.buttonEvents, struct {
		btn     crossmacro.Button
		pressed bool
	}{btn, pressed})
	return nil
}

func (f *fakeProvider) EmitScroll(ctx context.Context, value int32) error { return nil }

func (f *fakeProvider) EmitKey(ctx context.Context, code int32, pressed bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keyEvents = append(f.keyEvents, struct {
		code    int32
		pressed bool
	}{code, pressed})
	return nil
}

func (f *fakeProvider) ReleaseAll(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.releaseAllCalls++
	return nil
}

func (f *fakeProvider) Dispose(ctx context.Context) error { return nil }

func TestPlayOnceEmitsEventsInOrderAndReleasesAll(t *testing.T) {
	seq := crossmacro.MacroSequence{
		Name: "demo",
		Events: []crossmacro.MacroEvent{
			{Kind: crossmacro.MacroKeyPress, KeyCode: 30, DelayMs: 1},
			{Kind: crossmacro.MacroKeyRelease, KeyCode: 30, DelayMs: 0},
		},
	}

	provider := &fakeProvider{}
	engine := playback.NewEngine(provider, 1920, 1080)

	err := engine.Play(context.Background(), seq, playback.Options{Speed: 1.0, Mode: crossmacro.ModeOnce})
	require.NoError(t, err)
	require.Len(t, provider.keyEvents, 2)
	require.True(t, provider.keyEvents[0].pressed)
	require.False(t, provider.keyEvents[1].pressed)
	require.Equal(t, 1, provider.releaseAllCalls)
}

func TestPlayEmptySequenceReturnsError(t *testing.T) {
	provider := &fakeProvider{}
	engine := playback.NewEngine(provider, 1920, 1080)

	err := engine.Play(context.Background(), crossmacro.MacroSequence{Name: "empty"}, playback.Options{Speed: 1.0})
	require.ErrorIs(t, err, crossmacro.ErrEmptySequence)
	require.Equal(t, 1, provider.releaseAllCalls)
}

func TestPlayLoopNRunsExactCount(t *testing.T) {
	seq := crossmacro.MacroSequence{
		Events: []crossmacro.MacroEvent{{Kind: crossmacro.MacroKeyPress, KeyCode: 30, DelayMs: 0}},
	}
	provider := &fakeProvider{}
	engine := playback.NewEngine(provider, 1920, 1080)

	err := engine.Play(context.Background(), seq, playback.Options{Speed: 1.0, Mode: crossmacro.ModeLoopN, LoopCount: 3})
	require.NoError(t, err)
	require.Len(t, provider.keyEvents, 3)
}

func TestPlayCancellationTriggersReleaseAll(t *testing.T) {
	seq := crossmacro.MacroSequence{
		Events: []crossmacro.MacroEvent{
			{Kind: crossmacro.MacroKeyPress, KeyCode: 30, DelayMs: 1000},
			{Kind: crossmacro.MacroKeyRelease, KeyCode: 30, DelayMs: 0},
		},
	}
	provider := &fakeProvider{}
	engine := playback.NewEngine(provider, 1920, 1080)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := engine.Play(ctx, seq, playback.Options{Speed: 1.0, Mode: crossmacro.ModeOnce})
	require.ErrorIs(t, err, crossmacro.ErrPlaybackCancelled)
	require.Equal(t, 1, provider.releaseAllCalls)
}
