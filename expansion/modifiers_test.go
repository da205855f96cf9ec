package expansion_test

import (
	"testing"
	"time"

	"github.com/badu/crossmacro"
	"github.com/badu/crossmacro/evcode"
	"github.com/badu/crossmacro/expansion"
	"github.com/stretchr/testify/require"
)

func keyEvent(code uint16, value int32) crossmacro.RawEvent {
	return crossmacro.RawEvent{Kind: crossmacro.EventKey, Code: int32(code), Value: value}
}

func TestProcessorTracksShiftAndEmitsUppercaseCharacter(t *testing.T) {
	p := expansion.NewProcessor()
	expansion.DebounceDuration = time.Millisecond

	require.Equal(t, expansion.EventNone, p.Observe(keyEvent(evcode.KEY_LEFTSHIFT, 1)).Kind)
	require.True(t, p.Shift())

	ev := p.Observe(keyEvent(30, 1)) // KEY_A
	require.Equal(t, expansion.EventCharacter, ev.Kind)
	require.Equal(t, 'A', ev.Char)

	require.Equal(t, expansion.EventNone, p.Observe(keyEvent(evcode.KEY_LEFTSHIFT, 0)).Kind)
	require.False(t, p.Shift())
}

func TestProcessorEmitsSpecialKeysOnPressOnly(t *testing.T) {
	p := expansion.NewProcessor()
	expansion.DebounceDuration = time.Millisecond

	ev := p.Observe(keyEvent(evcode.KEY_BACKSPACE, 1))
	require.Equal(t, expansion.EventSpecialKey, ev.Kind)
	require.Equal(t, evcode.KEY_BACKSPACE, ev.Code)

	require.Equal(t, expansion.EventNone, p.Observe(keyEvent(evcode.KEY_BACKSPACE, 0)).Kind)
}

func TestProcessorTogglesCapsLock(t *testing.T) {
	p := expansion.NewProcessor()
	expansion.DebounceDuration = time.Millisecond

	require.Equal(t, expansion.EventNone, p.Observe(keyEvent(evcode.KEY_CAPSLOCK, 1)).Kind)

	ev := p.Observe(keyEvent(30, 1)) // KEY_A, no shift, capsLock on -> uppercase
	require.Equal(t, expansion.EventCharacter, ev.Kind)
	require.Equal(t, 'A', ev.Char)
}

func TestProcessorDebouncesRapidRepeatOfSameCode(t *testing.T) {
	p := expansion.NewProcessor()
	expansion.DebounceDuration = 20 * time.Millisecond

	first := p.Observe(keyEvent(31, 1)) // KEY_S
	require.Equal(t, expansion.EventCharacter, first.Kind)

	second := p.Observe(keyEvent(31, 1))
	require.Equal(t, expansion.EventNone, second.Kind)

	time.Sleep(25 * time.Millisecond)
	third := p.Observe(keyEvent(31, 1))
	require.Equal(t, expansion.EventCharacter, third.Kind)
}

func TestProcessorModifiersReleased(t *testing.T) {
	p := expansion.NewProcessor()
	expansion.DebounceDuration = time.Millisecond
	require.True(t, p.ModifiersReleased())

	p.Observe(keyEvent(evcode.KEY_RIGHTALT, 1))
	require.False(t, p.ModifiersReleased())
	require.True(t, p.AltGr())

	p.Observe(keyEvent(evcode.KEY_RIGHTALT, 0))
	require.True(t, p.ModifiersReleased())
}

func TestProcessorIgnoresNonKeyEvents(t *testing.T) {
	p := expansion.NewProcessor()
	ev := p.Observe(crossmacro.RawEvent{Kind: crossmacro.EventMouseMove, Code: 0, Value: 5})
	require.Equal(t, expansion.EventNone, ev.Kind)
}
