package expansion

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/badu/crossmacro"
	"github.com/badu/crossmacro/evcode"
	"github.com/badu/crossmacro/expansion/layout"
	"github.com/stretchr/testify/require"
)

type keyTap struct {
	code    int32
	pressed bool
}

type fakeKeyProvider struct {
	mu   sync.Mutex
	taps []keyTap
}

func (f *fakeKeyProvider) Initialize(ctx context.Context, w, h int32) error     { return nil }
func (f *fakeKeyProvider) MoveAbsolute(ctx context.Context, x, y int32) error   { return nil }
func (f *fakeKeyProvider) MoveRelative(ctx context.Context, dx, dy int32) error { return nil }
func (f *fakeKeyProvider) EmitButton(ctx context.Context, btn crossmacro.Button, pressed bool) error {
	return nil
}
func (f *fakeKeyProvider) EmitScroll(ctx context.Context, value int32) error { return nil }

func (f *fakeKeyProvider) EmitKey(ctx context.Context, code int32, pressed bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.taps = append(f.taps, keyTap{code, pressed})
	return nil
}
func (f *fakeKeyProvider) ReleaseAll(ctx context.Context) error { return nil }
func (f *fakeKeyProvider) Dispose(ctx context.Context) error    { return nil }

func (f *fakeKeyProvider) snapshot() []keyTap {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]keyTap(nil), f.taps...)
}

// failingKeyProvider fails the call'th EmitKey invocation (1-indexed) and
// succeeds (recording the tap) on every other call, so tests can assert
// that an already-pressed modifier gets released after a later press in
// the same chord fails.
type failingKeyProvider struct {
	fakeKeyProvider
	failOn int
	calls  int
}

func (f *failingKeyProvider) EmitKey(ctx context.Context, code int32, pressed bool) error {
	f.calls++
	if f.calls == f.failOn {
		return context.DeadlineExceeded
	}
	return f.fakeKeyProvider.EmitKey(ctx, code, pressed)
}

type fakeUnicodeEmitter struct {
	emitted []rune
}

func (f *fakeUnicodeEmitter) EmitUnicodeCodePoint(ctx context.Context, r rune) error {
	f.emitted = append(f.emitted, r)
	return nil
}

type fakeModifierState struct {
	mu       sync.Mutex
	released bool
}

func (f *fakeModifierState) ModifiersReleased() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.released
}

func (f *fakeModifierState) setReleased(v bool) {
	f.mu.Lock()
	f.released = v
	f.mu.Unlock()
}

type memClipboard struct {
	mu        sync.Mutex
	content   string
	available bool
}

func (m *memClipboard) Read() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.content, nil
}

func (m *memClipboard) Write(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.content = text
	return nil
}

func (m *memClipboard) Available() bool { return m.available }

func newTestExecutor(provider *fakeKeyProvider, unicode *fakeUnicodeEmitter, clip clipboardService) *Executor {
	return &Executor{provider: provider, unicode: unicode, layout: layout.New(), clipboard: clip}
}

func TestExecutorEraseTriggerEmitsBackspacePairs(t *testing.T) {
	provider := &fakeKeyProvider{}
	x := newTestExecutor(provider, &fakeUnicodeEmitter{}, &memClipboard{})

	require.NoError(t, x.eraseTrigger(context.Background(), 3))

	taps := provider.snapshot()
	require.Len(t, taps, 6)
	for i := 0; i < len(taps); i += 2 {
		require.Equal(t, int32(evcode.KEY_BACKSPACE), taps[i].code)
		require.True(t, taps[i].pressed)
		require.Equal(t, int32(evcode.KEY_BACKSPACE), taps[i+1].code)
		require.False(t, taps[i+1].pressed)
	}
}

func TestExecutorTypeDirectlyMapsLayoutCharacters(t *testing.T) {
	provider := &fakeKeyProvider{}
	unicode := &fakeUnicodeEmitter{}
	x := newTestExecutor(provider, unicode, &memClipboard{})

	x.typeDirectly(context.Background(), "Hi\n\r")

	taps := provider.snapshot()
	// 'H' = shift down, code(h) down/up, shift up; 'i' = code(i) down/up;
	// '\n' = ENTER down/up; '\r' skipped entirely.
	require.Equal(t, int32(evcode.KEY_LEFTSHIFT), taps[0].code)
	require.True(t, taps[0].pressed)
	require.Equal(t, int32(35), taps[1].code) // KEY_H
	require.True(t, taps[1].pressed)
	require.Equal(t, int32(35), taps[2].code)
	require.False(t, taps[2].pressed)
	require.Equal(t, int32(evcode.KEY_LEFTSHIFT), taps[3].code)
	require.False(t, taps[3].pressed)

	require.Equal(t, int32(23), taps[4].code) // KEY_I
	require.Equal(t, int32(23), taps[5].code)

	require.Equal(t, int32(evcode.KEY_ENTER), taps[6].code)
	require.True(t, taps[6].pressed)
	require.Equal(t, int32(evcode.KEY_ENTER), taps[7].code)
	require.False(t, taps[7].pressed)

	require.Len(t, taps, 8)
	require.Empty(t, unicode.emitted)
}

func TestExecutorTypeDirectlyFallsBackToUnicodeForUnmappedRunes(t *testing.T) {
	provider := &fakeKeyProvider{}
	unicode := &fakeUnicodeEmitter{}
	x := newTestExecutor(provider, unicode, &memClipboard{})

	x.typeDirectly(context.Background(), "λ")

	require.Equal(t, []rune{'λ'}, unicode.emitted)
	require.Empty(t, provider.snapshot())
}

func TestExecutorEmitPasteChordPerMethod(t *testing.T) {
	cases := []struct {
		method crossmacro.PasteMethod
		mod1   int32
		mod2   int32
	}{
		{crossmacro.PasteCtrlV, int32(evcode.KEY_LEFTCTRL), int32(evcode.KEY_V)},
		{crossmacro.PasteCtrlShiftV, int32(evcode.KEY_LEFTCTRL), int32(evcode.KEY_LEFTSHIFT)},
		{crossmacro.PasteShiftInsert, int32(evcode.KEY_LEFTSHIFT), int32(evcode.KEY_INSERT)},
	}
	for _, tc := range cases {
		provider := &fakeKeyProvider{}
		x := newTestExecutor(provider, &fakeUnicodeEmitter{}, &memClipboard{})
		require.NoError(t, x.emitPasteChord(context.Background(), tc.method))

		taps := provider.snapshot()
		require.Len(t, taps, 4)
		require.Equal(t, keyTap{tc.mod1, true}, taps[0])
		require.Equal(t, keyTap{tc.mod2, true}, taps[1])
		require.Equal(t, keyTap{tc.mod2, false}, taps[2])
		require.Equal(t, keyTap{tc.mod1, false}, taps[3])
	}
}

func TestExecutorEmitPasteChordReleasesFirstModifierWhenSecondPressFails(t *testing.T) {
	provider := &failingKeyProvider{failOn: 2} // mod1 press ok, mod2 press fails
	x := newTestExecutor(&provider.fakeKeyProvider, &fakeUnicodeEmitter{}, &memClipboard{})
	x.provider = provider

	err := x.emitPasteChord(context.Background(), crossmacro.PasteCtrlV)
	require.Error(t, err)

	taps := provider.snapshot()
	require.Len(t, taps, 2)
	require.Equal(t, keyTap{int32(evcode.KEY_LEFTCTRL), true}, taps[0])
	require.Equal(t, keyTap{int32(evcode.KEY_LEFTCTRL), false}, taps[1])
}

func TestExecutorTypeMappedReleasesShiftWhenAltGrPressFails(t *testing.T) {
	provider := &failingKeyProvider{failOn: 2} // shift press ok, altGr press fails
	x := newTestExecutor(&provider.fakeKeyProvider, &fakeUnicodeEmitter{}, &memClipboard{})
	x.provider = provider

	err := x.typeMapped(context.Background(), 30, true, true) // KEY_A
	require.Error(t, err)

	taps := provider.snapshot()
	require.Len(t, taps, 2)
	require.Equal(t, keyTap{int32(evcode.KEY_LEFTSHIFT), true}, taps[0])
	require.Equal(t, keyTap{int32(evcode.KEY_LEFTSHIFT), false}, taps[1])
}

func TestExecutorExecuteUsesClipboardPathAndRestoresOldContent(t *testing.T) {
	provider := &fakeKeyProvider{}
	clip := &memClipboard{content: "previous", available: true}
	mods := &fakeModifierState{released: true}
	x := newTestExecutor(provider, &fakeUnicodeEmitter{}, clip)

	exp := crossmacro.TextExpansion{Trigger: ":hi", Replacement: "Hello, world!", Enabled: true, Method: crossmacro.PasteCtrlV}
	require.NoError(t, x.Execute(context.Background(), exp, mods))

	taps := provider.snapshot()
	// 3 backspace pairs (len(":hi")==3) + a Ctrl+V chord (4 taps).
	require.Len(t, taps, 10)

	time.Sleep(50 * time.Millisecond) // let the async restore goroutine run
	got, _ := clip.Read()
	require.Equal(t, "previous", got)
}

func TestExecutorExecuteFallsBackToTypingWhenClipboardUnavailable(t *testing.T) {
	provider := &fakeKeyProvider{}
	unicode := &fakeUnicodeEmitter{}
	clip := &memClipboard{available: false}
	mods := &fakeModifierState{released: true}
	x := newTestExecutor(provider, unicode, clip)

	exp := crossmacro.TextExpansion{Trigger: ":hi", Replacement: "ok", Enabled: true}
	require.NoError(t, x.Execute(context.Background(), exp, mods))

	taps := provider.snapshot()
	// 3 backspace pairs (6 taps) + 'o'(2 taps) + 'k'(2 taps) = 10.
	require.Len(t, taps, 10)
}

func TestExecutorExecuteWaitsForModifiersReleased(t *testing.T) {
	provider := &fakeKeyProvider{}
	mods := &fakeModifierState{released: false}
	x := newTestExecutor(provider, &fakeUnicodeEmitter{}, &memClipboard{available: false})

	done := make(chan error, 1)
	go func() {
		done <- x.Execute(context.Background(), crossmacro.TextExpansion{Trigger: "x", Replacement: "y", Enabled: true}, mods)
	}()

	// Give the executor a moment to enter its poll loop, then release.
	time.Sleep(20 * time.Millisecond)
	require.Empty(t, provider.snapshot())
	mods.setReleased(true)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Execute never returned after modifiers released")
	}
}

func TestExecutorExecuteReturnsErrorOnContextCancellation(t *testing.T) {
	provider := &fakeKeyProvider{}
	mods := &fakeModifierState{released: false}
	x := newTestExecutor(provider, &fakeUnicodeEmitter{}, &memClipboard{available: false})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := x.Execute(ctx, crossmacro.TextExpansion{Trigger: "x", Replacement: "y", Enabled: true}, mods)
	require.Error(t, err)
}
