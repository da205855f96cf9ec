package expansion

import (
	"context"
	"time"

	"github.com/atotto/clipboard"

	"github.com/badu/crossmacro"
	"github.com/badu/crossmacro/evcode"
	"github.com/badu/crossmacro/expansion/layout"
	"github.com/badu/crossmacro/simulate"
)

// unicodeEmitter is the narrow slice of *playback.Engine the executor
// needs for the Unicode-hex fallback (§4.6); declared locally rather
// than imported as a concrete type, the same way coordstrategy declares
// PositionSource instead of depending on the position package directly.
type unicodeEmitter interface {
	EmitUnicodeCodePoint(ctx context.Context, r rune) error
}

// modifierState is the slice of *Processor the executor needs to
// implement "wait for modifiers released" (§4.10c step 1) without
// importing the full Processor type.
type modifierState interface {
	ModifiersReleased() bool
}

// clipboardService is the read/write surface the executor needs from
// github.com/atotto/clipboard, declared as an interface — the same
// small-consumer-interface idiom as unicodeEmitter and modifierState —
// so tests can substitute an in-memory clipboard instead of shelling out
// to pbcopy/xclip/clip.exe.
type clipboardService interface {
	Read() (string, error)
	Write(text string) error
	Available() bool
}

// systemClipboard is the production clipboardService, backed by
// github.com/atotto/clipboard.
type systemClipboard struct{}

func (systemClipboard) Read() (string, error)  { return clipboard.ReadAll() }
func (systemClipboard) Write(text string) error { return clipboard.WriteAll(text) }
func (systemClipboard) Available() bool         { return !clipboard.Unsupported }

const (
	clipboardReadTimeout      = 100 * time.Millisecond
	clipboardWriteTimeout     = 100 * time.Millisecond
	clipboardPropagationDelay = 100 * time.Millisecond
	pasteChordSettleDelay     = 150 * time.Millisecond
	clipboardRestoreTimeout   = 200 * time.Millisecond
	modifierReleasePollPeriod = 5 * time.Millisecond
)

// Executor is the 10c expansion executor: it suppresses the typed
// trigger and replaces it, trying a clipboard paste first and falling
// back to direct character-by-character synthesis.
type Executor struct {
	provider  simulate.Provider
	unicode   unicodeEmitter
	layout    *layout.Service
	clipboard clipboardService
}

// NewExecutor builds an Executor. unicode is typically a
// *playback.Engine wrapping the same provider.
func NewExecutor(provider simulate.Provider, unicode unicodeEmitter, layoutSvc *layout.Service) *Executor {
	return &Executor{provider: provider, unicode: unicode, layout: layoutSvc, clipboard: systemClipboard{}}
}

// Execute runs the §4.10c operation sequence for one matched expansion.
// It never returns an error to the caller for failures during steps 2-4
// (§4.10c step 5: "on any exception, abort silently"); the returned
// error is reserved for context cancellation, so callers can distinguish
// shutdown from a best-effort expansion failure.
func (x *Executor) Execute(ctx context.Context, exp crossmacro.TextExpansion, mods modifierState) error {
	if err := waitModifiersReleased(ctx, mods); err != nil {
		return err
	}

	if err := x.eraseTrigger(ctx, len([]rune(exp.Trigger))); err != nil {
		return ctx.Err()
	}

	if x.clipboard.Available() {
		if x.pasteViaClipboard(ctx, exp) {
			return nil
		}
	}
	x.typeDirectly(ctx, exp.Replacement)
	return nil
}

func waitModifiersReleased(ctx context.Context, mods modifierState) error {
	for !mods.ModifiersReleased() {
		if err := sleepCancelable(ctx, modifierReleasePollPeriod); err != nil {
			return err
		}
	}
	return nil
}

func (x *Executor) eraseTrigger(ctx context.Context, n int) error {
	for i := 0; i < n; i++ {
		if err := x.tapKey(ctx, evcode.KEY_BACKSPACE); err != nil {
			return err
		}
	}
	return nil
}

func (x *Executor) tapKey(ctx context.Context, code uint16) error {
	if err := x.provider.EmitKey(ctx, int32(code), true); err != nil {
		return err
	}
	return x.provider.EmitKey(ctx, int32(code), false)
}

// pasteViaClipboard attempts the §4.10c step 3 clipboard path, returning
// true on success. Any failure falls through to direct typing.
func (x *Executor) pasteViaClipboard(ctx context.Context, exp crossmacro.TextExpansion) bool {
	old, err := x.readClipboardTimeout(clipboardReadTimeout)
	if err != nil {
		return false
	}
	if err := x.writeClipboardTimeout(exp.Replacement, clipboardWriteTimeout); err != nil {
		return false
	}
	if err := sleepCancelable(ctx, clipboardPropagationDelay); err != nil {
		return false
	}
	if err := x.emitPasteChord(ctx, exp.Method); err != nil {
		return false
	}
	if err := sleepCancelable(ctx, pasteChordSettleDelay); err != nil {
		return false
	}

	go x.restoreClipboard(old, clipboardRestoreTimeout)
	return true
}

// emitPasteChord presses mod1 then mod2 and releases them in reverse. If a
// press fails partway through, it releases whatever is already down before
// returning — step 5's "abort silently after attempting to release
// modifiers" guarantee, so a failed chord never leaves the real device
// with a stuck modifier.
func (x *Executor) emitPasteChord(ctx context.Context, method crossmacro.PasteMethod) error {
	var mod1, mod2 uint16
	switch method {
	case crossmacro.PasteCtrlShiftV:
		mod1, mod2 = evcode.KEY_LEFTCTRL, evcode.KEY_LEFTSHIFT
	case crossmacro.PasteShiftInsert:
		mod1, mod2 = evcode.KEY_LEFTSHIFT, evcode.KEY_INSERT
	default: // PasteCtrlV
		mod1, mod2 = evcode.KEY_LEFTCTRL, evcode.KEY_V
	}

	var pressed []uint16
	release := func() {
		for i := len(pressed) - 1; i >= 0; i-- {
			x.provider.EmitKey(ctx, int32(pressed[i]), false)
		}
	}

	if err := x.provider.EmitKey(ctx, int32(mod1), true); err != nil {
		release()
		return err
	}
	pressed = append(pressed, mod1)

	if err := x.provider.EmitKey(ctx, int32(mod2), true); err != nil {
		release()
		return err
	}
	pressed = append(pressed, mod2)

	if err := x.provider.EmitKey(ctx, int32(mod2), false); err != nil {
		release()
		return err
	}
	pressed = pressed[:1]

	return x.provider.EmitKey(ctx, int32(mod1), false)
}

// typeDirectly implements the §4.10c step 4 fallback typing path.
func (x *Executor) typeDirectly(ctx context.Context, replacement string) {
	for _, r := range replacement {
		if ctx.Err() != nil {
			return
		}
		switch r {
		case '\r':
			continue
		case '\n':
			_ = x.tapKey(ctx, evcode.KEY_ENTER)
			continue
		}

		if code, shift, altGr, ok := x.layout.RuneToCode(r); ok {
			_ = x.typeMapped(ctx, code, shift, altGr)
			continue
		}
		_ = x.unicode.EmitUnicodeCodePoint(ctx, r)
	}
}

// typeMapped presses whichever of shift/altGr the mapping calls for, taps
// code, then releases them in reverse. A failure at any point releases
// whatever is already down first, so typeDirectly's next character never
// inherits a stuck modifier from this one (§4.10c step 5).
func (x *Executor) typeMapped(ctx context.Context, code uint16, shift, altGr bool) error {
	var held []uint16
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			x.provider.EmitKey(ctx, int32(held[i]), false)
		}
	}

	if shift {
		if err := x.provider.EmitKey(ctx, int32(evcode.KEY_LEFTSHIFT), true); err != nil {
			release()
			return err
		}
		held = append(held, evcode.KEY_LEFTSHIFT)
	}
	if altGr {
		if err := x.provider.EmitKey(ctx, int32(evcode.KEY_RIGHTALT), true); err != nil {
			release()
			return err
		}
		held = append(held, evcode.KEY_RIGHTALT)
	}
	if err := x.tapKey(ctx, code); err != nil {
		release()
		return err
	}
	if altGr {
		if err := x.provider.EmitKey(ctx, int32(evcode.KEY_RIGHTALT), false); err != nil {
			release()
			return err
		}
		held = held[:len(held)-1]
	}
	if shift {
		if err := x.provider.EmitKey(ctx, int32(evcode.KEY_LEFTSHIFT), false); err != nil {
			release()
			return err
		}
		held = held[:len(held)-1]
	}
	return nil
}

// readClipboardTimeout and writeClipboardTimeout race the clipboard
// service (which, in production, blocks on an external pbcopy/xclip/
// clip.exe subprocess) against a timer, since atotto/clipboard offers no
// context-aware variant (§4.10c steps 3a/3b).
func (x *Executor) readClipboardTimeout(timeout time.Duration) (string, error) {
	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		text, err := x.clipboard.Read()
		done <- result{text, err}
	}()
	select {
	case r := <-done:
		return r.text, r.err
	case <-time.After(timeout):
		return "", crossmacro.ErrClipboardUnavailable
	}
}

func (x *Executor) writeClipboardTimeout(text string, timeout time.Duration) error {
	done := make(chan error, 1)
	go func() {
		done <- x.clipboard.Write(text)
	}()
	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		return crossmacro.ErrClipboardUnavailable
	}
}

// restoreClipboard writes old back, ignoring failure (§4.10c step 3
// "ignoring failure"); it runs detached from the triggering Execute call.
func (x *Executor) restoreClipboard(old string, timeout time.Duration) {
	_ = x.writeClipboardTimeout(old, timeout)
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
		return ctx.Err()
	}
}
