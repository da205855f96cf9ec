package evcode

// VKToEvdev maps a Windows virtual-key code to an evdev code, the
// inverse of simulate's evdevToVK table (kept here, not in package
// simulate, so capture's Windows hook backend can use it without
// importing simulate). Only the subset this module synthesizes or
// captures (letters, digits, the expansion core's special keys) has an
// entry.
func VKToEvdev(vk uint16) (uint16, bool) {
	switch {
	case vk >= 'A' && vk <= 'Z':
		return vkLetterToEvdev(vk)
	case vk >= '0' && vk <= '9':
		return vkDigitToEvdev(vk)
	}
	switch vk {
	case 0x0D:
		return KEY_ENTER, true
	case 0x09:
		return KEY_TAB, true
	case 0x20:
		return KEY_SPACE, true
	case 0x08:
		return KEY_BACKSPACE, true
	case 0x1B:
		return KEY_ESC, true
	case 0x10, 0xA0:
		return KEY_LEFTSHIFT, true
	case 0xA1:
		return KEY_RIGHTSHIFT, true
	case 0x11, 0xA2:
		return KEY_LEFTCTRL, true
	case 0xA3:
		return KEY_RIGHTCTRL, true
	case 0x12, 0xA4:
		return KEY_LEFTALT, true
	case 0xA5:
		return KEY_RIGHTALT, true
	case 0x2D:
		return KEY_INSERT, true
	}
	return 0, false
}

var vkLetterKeys = map[uint16]uint16{
	'Q': 16, 'W': 17, 'E': 18, 'R': 19, 'T': 20, 'Y': 21, 'U': 22, 'I': 23, 'O': 24, 'P': 25,
	'A': 30, 'S': 31, 'D': 32, 'F': 33, 'G': 34, 'H': 35, 'J': 36, 'K': 37, 'L': 38,
	'Z': 44, 'X': 45, 'C': 46, 'V': 47, 'B': 48, 'N': 49, 'M': 50,
}

func vkLetterToEvdev(vk uint16) (uint16, bool) {
	code, ok := vkLetterKeys[vk]
	return code, ok
}

var vkDigitKeys = map[uint16]uint16{
	'0': 11, '1': 2, '2': 3, '3': 4, '4': 5, '5': 6, '6': 7, '7': 8, '8': 9, '9': 10,
}

func vkDigitToEvdev(vk uint16) (uint16, bool) {
	code, ok := vkDigitKeys[vk]
	return code, ok
}
