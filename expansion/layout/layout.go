// Package layout is the text-expansion core's layout service (§4.10):
// it maps a (keyCode, shift, altGr, capsLock) tuple to the character a US
// QWERTY keyboard would produce, and the reverse — a rune to the
// (keyCode, shift, altGr) a caller should synthesize to type it.
//
// Grounded on the teacher's encoding package (golang.org/x/text/encoding,
// golang.org/x/text/encoding/charmap): the base ASCII table is a plain Go
// map, the same "small static lookup table" idiom core/keys.go uses, but
// the AltGr layer's Latin-9 symbols (the ones hardware layouts usually
// expose via AltGr, e.g. the Euro sign) are decoded from a single byte
// through charmap.ISO8859_15's decoder exactly as encoding.go registers
// ISO8859-15 for its own character-set table.
package layout

import (
	"bytes"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/badu/crossmacro/evcode"
)

// Service is the layout lookup the text-expansion core's input processor
// and expansion executor both depend on. The zero value is a ready US
// QWERTY layout.
type Service struct{}

// New returns the default US QWERTY layout service.
func New() *Service { return &Service{} }

// baseKey associates one evdev code with its unshifted and shifted ASCII
// character.
type baseKey struct {
	code         uint16
	plain, shift rune
}

var baseKeys = []baseKey{
	{evcode.KEY_SPACE, ' ', ' '},
	{2, '1', '!'}, {3, '2', '@'}, {4, '3', '#'}, {5, '4', '$'}, {6, '5', '%'},
	{7, '6', '^'}, {8, '7', '&'}, {9, '8', '*'}, {10, '9', '('}, {11, '0', ')'},
	{12, '-', '_'}, {13, '=', '+'},
	{16, 'q', 'Q'}, {17, 'w', 'W'}, {18, 'e', 'E'}, {19, 'r', 'R'}, {20, 't', 'T'},
	{21, 'y', 'Y'}, {22, 'u', 'U'}, {23, 'i', 'I'}, {24, 'o', 'O'}, {25, 'p', 'P'},
	{26, '[', '{'}, {27, ']', '}'},
	{30, 'a', 'A'}, {31, 's', 'S'}, {32, 'd', 'D'}, {33, 'f', 'F'}, {34, 'g', 'G'},
	{35, 'h', 'H'}, {36, 'j', 'J'}, {37, 'k', 'K'}, {38, 'l', 'L'},
	{39, ';', ':'}, {40, '\'', '"'}, {41, '`', '~'}, {43, '\\', '|'},
	{44, 'z', 'Z'}, {45, 'x', 'X'}, {46, 'c', 'C'}, {47, 'v', 'V'}, {48, 'b', 'B'},
	{49, 'n', 'N'}, {50, 'm', 'M'},
	{51, ',', '<'}, {52, '.', '>'}, {53, '/', '?'},
}

// keyRef is where RuneToCode found r: which evdev code produces it, and
// whether shift must be held.
type keyRef struct {
	code  uint16
	shift bool
}

var (
	codeToPlain = map[uint16]rune{}
	codeToShift = map[uint16]rune{}
	runeToKey   = map[rune]keyRef{}
)

func init() {
	for _, k := range baseKeys {
		codeToPlain[k.code] = k.plain
		codeToShift[k.code] = k.shift
		runeToKey[k.plain] = keyRef{k.code, false}
		runeToKey[k.shift] = keyRef{k.code, true}
	}
}

// altGrKey associates an evdev code with the Latin-9 (ISO8859-15) byte an
// AltGr-combination produces on a typical European layout.
var altGrKeys = map[uint16]byte{
	6: 0xA4, // AltGr+5 -> Euro sign on most European AZERTY/QWERTZ layouts
}

// altGrRune decodes b through the same ISO8859-15 charmap encoding.go
// registers, rather than hard-coding '€' as a literal, so every Latin-9
// AltGr symbol this table grows to cover is resolved the same way.
func altGrRune(b byte) (rune, bool) {
	dst, _, err := transform.Bytes(charmap.ISO8859_15.NewDecoder(), []byte{b})
	if err != nil || len(dst) == 0 {
		return 0, false
	}
	r := bytes.Runes(dst)
	if len(r) == 0 {
		return 0, false
	}
	return r[0], true
}

// CodeToRune implements the 10a "layout service returns a character"
// lookup: given a key press and the currently tracked modifier state, it
// returns the character a US-layout keyboard would produce, or false if
// the code has no character mapping (function keys, arrows, etc).
func (s *Service) CodeToRune(code uint16, shift, altGr, capsLock bool) (rune, bool) {
	if altGr {
		if b, ok := altGrKeys[code]; ok {
			return altGrRune(b)
		}
	}

	if shift {
		if r, ok := codeToShift[code]; ok {
			return applyCapsLock(r, code, capsLock, true), true
		}
		return 0, false
	}
	if r, ok := codeToPlain[code]; ok {
		return applyCapsLock(r, code, capsLock, false), true
	}
	return 0, false
}

// applyCapsLock inverts letter case when capsLock is active and the key
// produces a letter, independent of the shift state already applied
// (capsLock XOR shift is the standard terminal behavior for letters).
func applyCapsLock(r rune, code uint16, capsLock, shifted bool) rune {
	if !capsLock || !evcode.IsLetterOrDigit(code) {
		return r
	}
	if r >= 'a' && r <= 'z' {
		return r - ('a' - 'A')
	}
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}

// RuneToCode implements the 10c forward-synthesis lookup: given a
// character from the replacement text, returns the (keyCode, shift,
// altGr) a caller should synthesize, or false when r falls outside the
// table (the caller's Unicode-hex fallback then takes over).
func (s *Service) RuneToCode(r rune) (code uint16, shift, altGr bool, ok bool) {
	if entry, found := runeToKey[r]; found {
		return entry.code, entry.shift, false, true
	}
	for c, b := range altGrKeys {
		if decoded, decOK := altGrRune(b); decOK && decoded == r {
			return c, false, true, true
		}
	}
	return 0, false, false, false
}
