// Package expansion implements the text-expansion core (C10): the
// modifier-tracking input processor (10a), the bounded suffix buffer
// (10b), and the expansion executor (10c).
package expansion

import (
	"time"

	"github.com/badu/crossmacro"
	"github.com/badu/crossmacro/evcode"
	"github.com/badu/crossmacro/expansion/layout"
)

// DebounceDuration is the press-level debounce window (§9 Open Question
// decision, §4.10a): consecutive presses of the same code within this
// window are treated as hardware rebounce and dropped. A package-level
// var, not a const, so tests can shrink it.
var DebounceDuration = 20 * time.Millisecond

// EventKind tags what a Processor.Observe call produced.
type EventKind uint8

const (
	// EventNone means the observed RawEvent produced no output (a
	// modifier-only transition, a debounced repeat, or an unmapped code).
	EventNone EventKind = iota
	EventSpecialKey
	EventCharacter
)

// Event is the modifier-state machine's output (§4.10a): exactly one of
// Code/Char is meaningful depending on Kind.
type Event struct {
	Kind EventKind
	Code uint16 // valid when Kind == EventSpecialKey
	Char rune   // valid when Kind == EventCharacter
}

// Processor is the 10a modifier-tracking state machine. It is not safe
// for concurrent use — §5 runs the text-expansion task on one dedicated
// goroutine, and Processor is that goroutine's private state, exactly
// like key/dispatcher.go's escaped/keyTimer fields belong to one
// dispatcher instance.
type Processor struct {
	leftShift, rightShift bool
	leftAlt               bool
	rightAlt              bool // AltGr
	leftCtrl, rightCtrl   bool
	capsLock              bool

	layout *layout.Service

	lastCode uint16
	lastTime time.Time
}

// NewProcessor constructs a Processor using the default US QWERTY
// layout service.
func NewProcessor() *Processor {
	return &Processor{layout: layout.New()}
}

// Shift reports whether either shift key is currently held.
func (p *Processor) Shift() bool { return p.leftShift || p.rightShift }

// AltGr reports whether the right-alt (AltGr) modifier is held, per
// §4.10a's "rightAlt ≡ AltGr".
func (p *Processor) AltGr() bool { return p.rightAlt }

// CtrlHeld reports whether either ctrl key is currently held.
func (p *Processor) CtrlHeld() bool { return p.leftCtrl || p.rightCtrl }

// ModifiersReleased reports whether every tracked modifier is up, used
// by the expansion executor's "wait for modifiers released" step
// (§4.10c step 1).
func (p *Processor) ModifiersReleased() bool {
	return !p.leftShift && !p.rightShift && !p.leftAlt && !p.rightAlt && !p.leftCtrl && !p.rightCtrl
}

// Observe feeds one key-axis RawEvent through the modifier state machine
// and returns the resulting output event, if any. Only crossmacro.EventKey
// events are meaningful; anything else is ignored and returns EventNone.
func (p *Processor) Observe(ev crossmacro.RawEvent) Event {
	if ev.Kind != crossmacro.EventKey {
		return Event{Kind: EventNone}
	}
	code := uint16(ev.Code)
	pressed := ev.Value != 0 // value 1 (press) or 2 (repeat)

	if pressed && p.debounced(code) {
		return Event{Kind: EventNone}
	}

	if modifier, ok := modifierFor(code); ok {
		p.setModifier(modifier, pressed)
		return Event{Kind: EventNone}
	}

	if code == evcode.KEY_CAPSLOCK {
		if ev.Value == 1 {
			p.capsLock = !p.capsLock
		}
		return Event{Kind: EventNone}
	}

	if !pressed {
		return Event{Kind: EventNone}
	}

	if code == evcode.KEY_BACKSPACE || code == evcode.KEY_ENTER {
		return Event{Kind: EventSpecialKey, Code: code}
	}

	if ch, ok := p.layout.CodeToRune(code, p.Shift(), p.AltGr(), p.capsLock); ok {
		return Event{Kind: EventCharacter, Char: ch}
	}
	return Event{Kind: EventNone}
}

// debounced records code/now and reports whether this press arrived
// within DebounceDuration of the previous press of the same code.
func (p *Processor) debounced(code uint16) bool {
	now := time.Now()
	drop := code == p.lastCode && !p.lastTime.IsZero() && now.Sub(p.lastTime) < DebounceDuration
	p.lastCode, p.lastTime = code, now
	return drop
}

type modifierKind uint8

const (
	modLeftShift modifierKind = iota
	modRightShift
	modLeftAlt
	modRightAlt
	modLeftCtrl
	modRightCtrl
)

func modifierFor(code uint16) (modifierKind, bool) {
	switch code {
	case evcode.KEY_LEFTSHIFT:
		return modLeftShift, true
	case evcode.KEY_RIGHTSHIFT:
		return modRightShift, true
	case evcode.KEY_LEFTALT:
		return modLeftAlt, true
	case evcode.KEY_RIGHTALT:
		return modRightAlt, true
	case evcode.KEY_LEFTCTRL:
		return modLeftCtrl, true
	case evcode.KEY_RIGHTCTRL:
		return modRightCtrl, true
	default:
		return 0, false
	}
}

func (p *Processor) setModifier(m modifierKind, down bool) {
	switch m {
	case modLeftShift:
		p.leftShift = down
	case modRightShift:
		p.rightShift = down
	case modLeftAlt:
		p.leftAlt = down
	case modRightAlt:
		p.rightAlt = down
	case modLeftCtrl:
		p.leftCtrl = down
	case modRightCtrl:
		p.rightCtrl = down
	}
}
