package evcode

// KeyName returns a short human-readable name for an evdev key code, used
// in log lines and in the daemon's audit trail. Grounded on
// kafji-terong's keyCodeToEvKey init() table shape (a flat lookup from a
// logical identifier to its kernel code) — here inverted, code to name.
func KeyName(code int32) string {
	if name, ok := keyNames[uint16(code)]; ok {
		return name
	}
	return "KEY_UNKNOWN"
}

var keyNames = map[uint16]string{
	1:  "ESC",
	2:  "1", 3: "2", 4: "3", 5: "4", 6: "5", 7: "6", 8: "7", 9: "8", 10: "9", 11: "0",
	12: "MINUS", 13: "EQUAL",
	14: "BACKSPACE", 15: "TAB",
	16: "Q", 17: "W", 18: "E", 19: "R", 20: "T", 21: "Y", 22: "U", 23: "I", 24: "O", 25: "P",
	26: "LEFTBRACE", 27: "RIGHTBRACE",
	28: "ENTER", 29: "LEFTCTRL",
	30: "A", 31: "S", 32: "D", 33: "F", 34: "G", 35: "H", 36: "J", 37: "K", 38: "L",
	39: "SEMICOLON", 40: "APOSTROPHE", 41: "GRAVE",
	42: "LEFTSHIFT", 43: "BACKSLASH",
	44: "Z", 45: "X", 46: "C", 47: "V", 48: "B", 49: "N", 50: "M",
	51: "COMMA", 52: "DOT", 53: "SLASH",
	54: "RIGHTSHIFT", 55: "KPASTERISK", 56: "LEFTALT", 57: "SPACE", 58: "CAPSLOCK",
	59: "F1", 60: "F2", 61: "F3", 62: "F4", 63: "F5", 64: "F6",
	65: "F7", 66: "F8", 67: "F9", 68: "F10",
	97: "RIGHTCTRL", 100: "RIGHTALT",
	103: "UP", 105: "LEFT", 106: "RIGHT", 108: "DOWN",
	102: "HOME", 107: "END", 104: "PAGEUP", 109: "PAGEDOWN",
	110: "INSERT", 111: "DELETE",
	125: "LEFTMETA", 126: "RIGHTMETA",
	BTN_LEFT:   "BTN_LEFT",
	BTN_RIGHT:  "BTN_RIGHT",
	BTN_MIDDLE: "BTN_MIDDLE",
	BTN_SIDE:   "BTN_SIDE",
	BTN_EXTRA:  "BTN_EXTRA",
}

// IsLetterOrDigit reports whether code falls in the KEY_A..KEY_Z or
// KEY_1..KEY_0 ranges the daemon's device classifier uses to recognize a
// keyboard device (§4.2 Device discovery: "keyboard if it reports EV_KEY
// with any KEY_A..KEY_Z").
func IsLetterOrDigit(code uint16) bool {
	switch code {
	case 16, 17, 18, 19, 20, 21, 22, 23, 24, 25, // Q..P
		30, 31, 32, 33, 34, 35, 36, 37, 38, // A..L
		44, 45, 46, 47, 48, 49, 50, // Z..M
		2, 3, 4, 5, 6, 7, 8, 9, 10, 11: // 1..0
		return true
	}
	return false
}
