package geometry

import "fmt"

// Point is a location in display space. Display events carry fractional
// coordinates, so both components are float64.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned rectangle given by its two corners.
type Rect struct {
	X  int `json:"x"`
	Y  int `json:"y"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// XYWH is a rectangle given by its origin and size.
type XYWH struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// NewRect builds a Rect from two arbitrary corners, normalizing so that
// X2 >= X and Y2 >= Y.
func NewRect(x1, y1, x2, y2 int) Rect {
	if x2 < x1 {
		x1, x2 = x2, x1
	}
	if y2 < y1 {
		y1, y2 = y2, y1
	}
	return Rect{X: x1, Y: y1, X2: x2, Y2: y2}
}

// Width returns X2 - X.
func (r Rect) Width() int { return r.X2 - r.X }

// Height returns Y2 - Y.
func (r Rect) Height() int { return r.Y2 - r.Y }

// XYWH converts the rectangle to origin/size form.
func (r Rect) XYWH() XYWH {
	return XYWH{X: r.X, Y: r.Y, W: r.Width(), H: r.Height()}
}

// Contains reports whether (x, y) lies strictly inside r. Points on an edge are
// outside, so a click exactly on a grid line never matches the cell it borders.
func (r Rect) Contains(x, y float64) bool {
	return float64(r.X) < x && x < float64(r.X2) &&
		float64(r.Y) < y && y < float64(r.Y2)
}

func (r Rect) String() string {
	return fmt.Sprintf("[%d, %d, %d, %d]", r.X, r.Y, r.X2, r.Y2)
}

func (r XYWH) String() string {
	return fmt.Sprintf("[%d, %d, %d, %d]", r.X, r.Y, r.W, r.H)
}

// Bounds returns the smallest rectangle covering every rectangle in rects.
// ok is false when rects is empty.
func Bounds(rects []Rect) (bounds Rect, ok bool) {
	if len(rects) == 0 {
		return Rect{}, false
	}
	bounds = rects[0]
	for _, r := range rects[1:] {
		if r.X < bounds.X {
			bounds.X = r.X
		}
		if r.Y < bounds.Y {
			bounds.Y = r.Y
		}
		if r.X2 > bounds.X2 {
			bounds.X2 = r.X2
		}
		if r.Y2 > bounds.Y2 {
			bounds.Y2 = r.Y2
		}
	}
	return bounds, true
}
