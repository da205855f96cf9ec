// Package simulate implements the platform simulation providers (C5):
// uinput-via-daemon, XTest, CoreGraphics, and Windows SendInput, behind a
// single atomic-write interface (§4.7).
//
// Grounded on core/engine_linux.go / engine_darwin.go / engine_bsd.go's
// build-tag split of one platform-neutral contract into per-OS files, the
// same shape this package uses for its four Provider implementations.
package simulate

import (
	"context"
	"sync"

	"github.com/badu/crossmacro"
)

// Provider is the uniform simulation surface of §4.7. Every call is
// expected to be atomic with respect to concurrent callers — in practice
// the playback engine is the sole caller per §5 ("the engine is
// single-threaded across a playback invocation"). Implementations hold no
// writer lock of their own; only their PressedSet is mutex-guarded.
type Provider interface {
	Initialize(ctx context.Context, width, height int32) error
	MoveAbsolute(ctx context.Context, x, y int32) error
	MoveRelative(ctx context.Context, dx, dy int32) error
	EmitButton(ctx context.Context, btn crossmacro.Button, pressed bool) error
	EmitScroll(ctx context.Context, value int32) error
	EmitKey(ctx context.Context, code int32, pressed bool) error
	ReleaseAll(ctx context.Context) error
	Dispose(ctx context.Context) error
}

// PressedSet tracks every key/button code currently believed pressed, so
// ReleaseAll can emit exactly the releases needed (§4.7: "releaseAll is
// driven by a per-simulator set of pressed codes"). Provider
// implementations hold one and call TrackKey/TrackButton on every
// EmitKey/EmitButton.
type PressedSet struct {
	mu      sync.Mutex
	keys    map[int32]bool
	buttons map[crossmacro.Button]bool
}

// NewPressedSet returns an empty tracker.
func NewPressedSet() *PressedSet {
	return &PressedSet{keys: map[int32]bool{}, buttons: map[crossmacro.Button]bool{}}
}

// TrackKey records a key's press/release state.
func (p *PressedSet) TrackKey(code int32, pressed bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if pressed {
		p.keys[code] = true
	} else {
		delete(p.keys, code)
	}
}

// TrackButton records a button's press/release state.
func (p *PressedSet) TrackButton(btn crossmacro.Button, pressed bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if pressed {
		p.buttons[btn] = true
	} else {
		delete(p.buttons, btn)
	}
}

// Drain returns every currently-pressed key code and button, clearing the
// set — used by ReleaseAll so a second ReleaseAll call is a no-op.
func (p *PressedSet) Drain() ([]int32, []crossmacro.Button) {
	p.mu.Lock()
	defer p.mu.Unlock()

	keys := make([]int32, 0, len(p.keys))
	for k := range p.keys {
		keys = append(keys, k)
	}
	buttons := make([]crossmacro.Button, 0, len(p.buttons))
	for b := range p.buttons {
		buttons = append(buttons, b)
	}
	p.keys = map[int32]bool{}
	p.buttons = map[crossmacro.Button]bool{}
	return keys, buttons
}

// FailsafeButtons is the fixed set ReleaseAll additionally releases
// unconditionally, per §4.6: "a failsafe release of BTN_LEFT/RIGHT/MIDDLE".
var FailsafeButtons = []crossmacro.Button{crossmacro.ButtonLeft, crossmacro.ButtonRight, crossmacro.ButtonMiddle}
