package crossmacro

// Size describes the resolution of a virtual screen: the bounds a
// coordinate strategy or the playback engine clamps absolute coordinates
// against (§4.4, §4.6).
type Size struct {
	Width  int
	Height int
}

// NewSize returns a newly allocated Size of the specified dimensions.
func NewSize(width, height int) *Size {
	return &Size{width, height}
}

// IsZero returns whether the Size has zero width and zero height.
func (s *Size) IsZero() bool {
	return s.Width == 0 && s.Height == 0
}

// Valid reports whether both dimensions are strictly positive, the
// precondition for creating an absolute-capable uinput device (§4.2).
func (s *Size) Valid() bool {
	return s != nil && s.Width > 0 && s.Height > 0
}

// Min returns the smaller of the passed values.
func Min(x, y int) int {
	if x < y {
		return x
	}
	return y
}

// Max returns the larger of the passed values.
func Max(x, y int) int {
	if x > y {
		return x
	}
	return y
}

// Abs returns the absolute value.
func Abs(a int) int {
	if a <= 0 {
		return -a
	}
	return a
}

// Clamp confines v to [0, limit-1], the bound used for absolute mouse
// coordinates (§4.6 Absolute clamping, §8 invariant).
func Clamp(v, limit int) int {
	if limit <= 0 {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > limit-1 {
		return limit - 1
	}
	return v
}
