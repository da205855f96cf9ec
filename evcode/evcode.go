// Package evcode holds the Linux evdev/kernel constant tables that this
// module treats as the canonical input vocabulary on every platform
// (§3: "Linux evdev codes are the canonical vocabulary"), plus the
// cross-platform key-code translation table capture and simulation
// providers use to map a native key/button identifier onto one of
// these codes and back.
//
// Grounded on andrieee44-mylib's linux/input uapi struct shapes and on
// kafji-terong's keycode-translation-table pattern (see DESIGN.md).
package evcode

// EV_* event types, the kernel's struct input_event.type namespace.
const (
	EV_SYN uint16 = 0x00
	EV_KEY uint16 = 0x01
	EV_REL uint16 = 0x02
	EV_ABS uint16 = 0x03
)

// SYN_* report-boundary codes.
const (
	SYN_REPORT uint16 = 0
)

// REL_* relative axis codes.
const (
	REL_X     uint16 = 0x00
	REL_Y     uint16 = 0x01
	REL_WHEEL uint16 = 0x08
	REL_HWHEEL uint16 = 0x06
)

// ABS_* absolute axis codes.
const (
	ABS_X uint16 = 0x00
	ABS_Y uint16 = 0x01
)

// BTN_* mouse button codes (a slice of the KEY_* namespace the kernel
// reserves for buttons).
const (
	BTN_LEFT   uint16 = 0x110
	BTN_RIGHT  uint16 = 0x111
	BTN_MIDDLE uint16 = 0x112
	BTN_SIDE   uint16 = 0x113
	BTN_EXTRA  uint16 = 0x114
)

// A handful of KEY_* codes this module references directly (modifiers,
// the expansion core's special keys, the Unicode-hex fallback chord).
// The full KEY_A..KEY_Z / digit / punctuation range used by the layout
// service lives in evcode/keytable.go.
const (
	KEY_ESC        uint16 = 1
	KEY_BACKSPACE  uint16 = 14
	KEY_TAB        uint16 = 15
	KEY_ENTER      uint16 = 28
	KEY_LEFTCTRL   uint16 = 29
	KEY_LEFTSHIFT  uint16 = 42
	KEY_RIGHTSHIFT uint16 = 54
	KEY_LEFTALT    uint16 = 56
	KEY_SPACE      uint16 = 57
	KEY_CAPSLOCK   uint16 = 58
	KEY_RIGHTCTRL  uint16 = 97
	KEY_RIGHTALT   uint16 = 100
	KEY_U          uint16 = 22
	KEY_V          uint16 = 47
	KEY_INSERT     uint16 = 110
)

// Property flags for UI_SET_PROPBIT / uinput device capability setup.
const (
	INPUT_PROP_DIRECT uint16 = 0x01
)

// Bus types for struct input_id.bustype.
const (
	BUS_USB uint16 = 0x03
)

// ModifierKey identifies one of the six tracked modifier keys, used by
// the text-expansion input processor's modifier-state machine (§4.10a).
type ModifierKey uint8

const (
	ModLeftShift ModifierKey = iota
	ModRightShift
	ModLeftAlt
	ModRightAlt
	ModLeftCtrl
	ModRightCtrl
)

// ModifierCode maps a ModifierKey to its evdev code.
func ModifierCode(m ModifierKey) uint16 {
	switch m {
	case ModLeftShift:
		return KEY_LEFTSHIFT
	case ModRightShift:
		return KEY_RIGHTSHIFT
	case ModLeftAlt:
		return KEY_LEFTALT
	case ModRightAlt:
		return KEY_RIGHTALT
	case ModLeftCtrl:
		return KEY_LEFTCTRL
	case ModRightCtrl:
		return KEY_RIGHTCTRL
	default:
		return 0
	}
}

// HexDigitKey maps a hex digit ('0'-'9', 'a'-'f') to the evdev code used
// to type it, for the Ctrl+Shift+U unicode-hex fallback chord (§4.6).
func HexDigitKey(digit byte) (code uint16, shift bool, ok bool) {
	switch {
	case digit >= '0' && digit <= '9':
		return digitKeys[digit-'0'], false, true
	case digit >= 'a' && digit <= 'f':
		return letterKeys[digit-'a'], false, true
	default:
		return 0, false, false
	}
}

// digitKeys maps '0'..'9' to KEY_0..KEY_9 (KEY_0 follows KEY_9 on a real
// keyboard row, so it is not contiguous with the rest).
var digitKeys = [10]uint16{
	11, // KEY_0
	2,  // KEY_1
	3, 4, 5, 6, 7, 8, 9,
	10, // KEY_9
}

// letterKeys maps 'a'..'f' to KEY_A..KEY_F.
var letterKeys = [6]uint16{
	30, // KEY_A
	48, // KEY_B
	46, // KEY_C
	32, // KEY_D
	18, // KEY_E
	33, // KEY_F
}
