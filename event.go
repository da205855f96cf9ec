package crossmacro

// EventKind tags the raw-input union carried on the wire (§3, §4.1).
type EventKind uint8

const (
	EventKey EventKind = iota
	EventMouseButton
	EventMouseMove
	EventMouseScroll
	EventSync
)

// String implements fmt.Stringer for log lines.
func (k EventKind) String() string {
	switch k {
	case EventKey:
		return "Key"
	case EventMouseButton:
		return "MouseButton"
	case EventMouseMove:
		return "MouseMove"
	case EventMouseScroll:
		return "MouseScroll"
	case EventSync:
		return "Sync"
	default:
		return "Unknown"
	}
}

// RawEvent is the tagged-union raw input event produced by a capture
// provider (C4) and carried on the wire by the codec (C1). Code is an
// evdev code (REL_X=0, REL_Y=1, REL_WHEEL=8, KEY_* per the kernel table);
// Timestamp is a monotonic clock reading in ticks of 100ns.
type RawEvent struct {
	Kind      EventKind
	Code      int32
	Value     int32
	Timestamp int64
}

// IsSync reports whether this event is the report-boundary sentinel.
func (e RawEvent) IsSync() bool {
	return e.Kind == EventSync
}

// Button is the canonical cross-platform mouse button/wheel-direction
// enumeration (§3).
type Button uint8

const (
	ButtonNone Button = iota
	ButtonLeft
	ButtonRight
	ButtonMiddle
	ButtonSide1
	ButtonSide2
	ButtonScrollUp
	ButtonScrollDown
	ButtonScrollLeft
	ButtonScrollRight
)

func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "Left"
	case ButtonRight:
		return "Right"
	case ButtonMiddle:
		return "Middle"
	case ButtonSide1:
		return "Side1"
	case ButtonSide2:
		return "Side2"
	case ButtonScrollUp:
		return "ScrollUp"
	case ButtonScrollDown:
		return "ScrollDown"
	case ButtonScrollLeft:
		return "ScrollLeft"
	case ButtonScrollRight:
		return "ScrollRight"
	default:
		return "None"
	}
}
