package expansion

import (
	"strings"

	"github.com/badu/crossmacro"
)

// bufferCapacity is the bounded suffix window's size (§4.10b): the last
// 50 characters typed are enough to match any realistic trigger.
const bufferCapacity = 50

// Buffer is the 10b bounded append-only character window, grounded on
// core/model.go's Chars bounded-rune-slice ("Set" truncates the front on
// overflow rather than growing without limit).
type Buffer struct {
	chars []rune
}

// NewBuffer returns an empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{chars: make([]rune, 0, bufferCapacity)}
}

// Append adds c to the buffer, dropping the oldest character once the
// window exceeds bufferCapacity.
func (b *Buffer) Append(c rune) {
	b.chars = append(b.chars, c)
	if over := len(b.chars) - bufferCapacity; over > 0 {
		b.chars = b.chars[over:]
	}
}

// Backspace pops the most recently appended character, if any.
func (b *Buffer) Backspace() {
	if len(b.chars) == 0 {
		return
	}
	b.chars = b.chars[:len(b.chars)-1]
}

// Clear empties the buffer.
func (b *Buffer) Clear() {
	b.chars = b.chars[:0]
}

// String returns the buffer contents.
func (b *Buffer) String() string {
	return string(b.chars)
}

// TryMatch scans expansions in order and returns the first enabled entry
// whose trigger is a suffix of the buffer (§4.10b).
func (b *Buffer) TryMatch(expansions []crossmacro.TextExpansion) (crossmacro.TextExpansion, bool) {
	s := b.String()
	for _, e := range expansions {
		if !e.Enabled || e.Trigger == "" {
			continue
		}
		if strings.HasSuffix(s, e.Trigger) {
			return e, true
		}
	}
	return crossmacro.TextExpansion{}, false
}
