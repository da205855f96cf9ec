package crossmacro

import "strconv"

// Point is an (x,y) cursor position, the unit coordinate strategies (§4.4),
// position providers (§4.9) and the playback engine (§4.6) all pass around.
type Point struct {
	X int32
	Y int32
}

// NewPoint returns a newly allocated Point.
func NewPoint(x, y int32) *Point {
	return &Point{X: x, Y: y}
}

// ClampTo confines the point to [0,size.Width) x [0,size.Height), the
// invariant absolute-strategy state must hold (§3 Coordinate-strategy state).
func (p Point) ClampTo(size Size) Point {
	return Point{
		X: int32(Clamp(int(p.X), size.Width)),
		Y: int32(Clamp(int(p.Y), size.Height)),
	}
}

// IsZero reports whether both axes are zero, the sentinel coordinate
// strategies return to signal "no coherent sample" (§4.4).
func (p Point) IsZero() bool {
	return p.X == 0 && p.Y == 0
}

// String implements fmt.Stringer.
func (p Point) String() string {
	return "x:" + strconv.Itoa(int(p.X)) + ", y:" + strconv.Itoa(int(p.Y))
}
