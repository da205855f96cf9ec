package crossmacro

import "errors"

// MacroEventKind tags the MacroEvent union produced by the recording
// pipeline (C7) and consumed by the playback engine (C8) (§3).
type MacroEventKind uint8

const (
	MacroButtonPress MacroEventKind = iota
	MacroButtonRelease
	MacroMouseMove
	MacroClick
	MacroKeyPress
	MacroKeyRelease
	MacroScroll
)

func (k MacroEventKind) String() string {
	switch k {
	case MacroButtonPress:
		return "ButtonPress"
	case MacroButtonRelease:
		return "ButtonRelease"
	case MacroMouseMove:
		return "MouseMove"
	case MacroClick:
		return "Click"
	case MacroKeyPress:
		return "KeyPress"
	case MacroKeyRelease:
		return "KeyRelease"
	case MacroScroll:
		return "Scroll"
	default:
		return "Unknown"
	}
}

// MacroEvent is one step of a recorded or replayed macro. X and Y are
// always populated (the last known cursor position, if not itself a
// move). KeyCode is the evdev code, used as the canonical code on every
// platform via evcode's translation table. Timestamp is milliseconds
// from the start of recording; DelayMs is the millisecond wait before
// the *next* event, computed by the recording pipeline and never read
// off the wire (§3).
type MacroEvent struct {
	Kind      MacroEventKind `json:"kind"`
	X         int32          `json:"x"`
	Y         int32          `json:"y"`
	Button    Button         `json:"button"`
	KeyCode   int32          `json:"keyCode"`
	Timestamp int64          `json:"timestamp"`
	DelayMs   int64          `json:"delayMs"`
}

// IsPress reports whether this event is a press-class event (button or key).
func (e MacroEvent) IsPress() bool {
	return e.Kind == MacroButtonPress || e.Kind == MacroKeyPress
}

// IsRelease reports whether this event is a release-class event.
func (e MacroEvent) IsRelease() bool {
	return e.Kind == MacroButtonRelease || e.Kind == MacroKeyRelease
}

// MacroSequence is a named, ordered, finite sequence of MacroEvent.
// It is value-typed: the playback engine takes a read-only snapshot and
// must not mutate it (§3).
type MacroSequence struct {
	Name   string       `json:"name"`
	Events []MacroEvent `json:"events"`
}

// ErrEmptySequence is returned when an operation requires at least one event.
var ErrEmptySequence = errors.New("crossmacro: macro sequence has no events")

// Snapshot returns an independent copy of the sequence's events, so a
// caller may safely iterate it while the original is concurrently
// replaced (Observable properties, §9).
func (s MacroSequence) Snapshot() MacroSequence {
	events := make([]MacroEvent, len(s.Events))
	copy(events, s.Events)
	return MacroSequence{Name: s.Name, Events: events}
}

// Duration returns the total recorded duration in milliseconds, i.e.
// ts[last] - ts[0]. Returns 0 for an empty or single-event sequence.
func (s MacroSequence) Duration() int64 {
	if len(s.Events) < 2 {
		return 0
	}
	return s.Events[len(s.Events)-1].Timestamp - s.Events[0].Timestamp
}

// PlaybackMode selects the playback engine's repetition semantics (§4.6).
type PlaybackMode uint8

const (
	// ModeOnce runs the sequence exactly once.
	ModeOnce PlaybackMode = iota
	// ModeLoopN runs the sequence LoopCount times, or indefinitely if
	// LoopCount == 0.
	ModeLoopN
	// ModeWhileHeld restarts the sequence each time the trigger hotkey
	// transitions to pressed, and cancels on release.
	ModeWhileHeld
)

// ShortcutTask binds a macro file to a hotkey trigger (§3).
type ShortcutTask struct {
	MacroPath     string       `json:"macroPath"`
	Hotkey        string       `json:"hotkey"`
	Speed         float64      `json:"speed"`
	LoopEnabled   bool         `json:"loopEnabled"`
	RunWhileHeld  bool         `json:"runWhileHeld"`
	LoopCount     int          `json:"loopCount"`
	RepeatDelayMs int64        `json:"repeatDelayMs"`
}

// ScheduledTask binds a macro file to a calendar schedule (§3).
type ScheduledTask struct {
	MacroPath     string  `json:"macroPath"`
	Schedule      string  `json:"schedule"`
	Speed         float64 `json:"speed"`
	LoopEnabled   bool    `json:"loopEnabled"`
	RunWhileHeld  bool    `json:"runWhileHeld"`
	LoopCount     int     `json:"loopCount"`
	RepeatDelayMs int64   `json:"repeatDelayMs"`
}

// Validate enforces the mutual-exclusion invariant: turning one of
// LoopEnabled/RunWhileHeld on turns the other off, and Speed must sit in
// [0.1, 10.0] (§3).
func (t *ShortcutTask) Validate() error {
	if t.LoopEnabled && t.RunWhileHeld {
		t.RunWhileHeld = false
	}
	return validateSpeed(t.Speed)
}

// Validate applies the same rules as ShortcutTask.Validate.
func (t *ScheduledTask) Validate() error {
	if t.LoopEnabled && t.RunWhileHeld {
		t.RunWhileHeld = false
	}
	return validateSpeed(t.Speed)
}

var ErrSpeedOutOfRange = errors.New("crossmacro: playback speed must be in [0.1, 10.0]")

func validateSpeed(speed float64) error {
	if speed < 0.1 || speed > 10.0 {
		return ErrSpeedOutOfRange
	}
	return nil
}

// PasteMethod selects the keyboard chord the expansion executor uses to
// request a paste from the active application (§3, §4.10c).
type PasteMethod uint8

const (
	PasteCtrlV PasteMethod = iota
	PasteCtrlShiftV
	PasteShiftInsert
)

// TextExpansion is one dictionary entry (§3).
type TextExpansion struct {
	Trigger     string      `json:"trigger"`
	Replacement string      `json:"replacement"`
	Enabled     bool        `json:"enabled"`
	Method      PasteMethod `json:"method"`
}

// Valid reports whether the entry satisfies the non-empty-trigger invariant.
func (e TextExpansion) Valid() bool {
	return e.Trigger != ""
}
