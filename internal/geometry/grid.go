package geometry

import "math"

// DefaultSpacing is the cell size used when nothing else is configured.
const DefaultSpacing = 100

// Grid describes the selection grid laid over the displayed image.
//
// The grid starts at (OffsetX, OffsetY), the letterboxing offset of the image
// inside its container, and covers Width x Height display pixels.
type Grid struct {
	ColSpacing int `json:"col_spacing"`
	RowSpacing int `json:"row_spacing"`
	OffsetX    int `json:"offset_x"`
	OffsetY    int `json:"offset_y"`
	Width      int `json:"width"`
	Height     int `json:"height"`
}

// QuantizeClick maps a display point to the origin of the grid cell holding it.
//
// col is the greatest OffsetX + k*colSpacing that is <= x, and row is the
// greatest OffsetY + k*rowSpacing that is <= y. Spacings below 1 are treated
// as 1.
func QuantizeClick(x, y float64, rowSpacing, colSpacing, offsetX, offsetY int) (col, row int) {
	if colSpacing < 1 {
		colSpacing = 1
	}
	if rowSpacing < 1 {
		rowSpacing = 1
	}
	kx := math.Floor((x - float64(offsetX)) / float64(colSpacing))
	ky := math.Floor((y - float64(offsetY)) / float64(rowSpacing))
	return offsetX + int(kx)*colSpacing, offsetY + int(ky)*rowSpacing
}

// Cell returns the rectangle of the grid cell containing (x, y). ok is false
// when the point falls outside the image area covered by the grid.
func (g Grid) Cell(x, y float64) (cell Rect, ok bool) {
	col, row := QuantizeClick(x, y, g.RowSpacing, g.ColSpacing, g.OffsetX, g.OffsetY)
	if col < g.OffsetX || row < g.OffsetY {
		return Rect{}, false
	}
	if col >= g.OffsetX+g.Width || row >= g.OffsetY+g.Height {
		return Rect{}, false
	}
	cs, rs := g.spacing()
	return Rect{X: col, Y: row, X2: col + cs, Y2: row + rs}, true
}

func (g Grid) spacing() (col, row int) {
	col, row = g.ColSpacing, g.RowSpacing
	if col < 1 {
		col = 1
	}
	if row < 1 {
		row = 1
	}
	return col, row
}

// PlusProbes returns the five points of the "plus" proximity test used to
// decide whether a click extends an existing group:
//
//	      [3]
//	  [2] [0] [1]
//	      [4]
//
// The order is significant: callers test probes in this order.
func PlusProbes(x, y float64, colSpacing, rowSpacing int) [5]Point {
	cs, rs := float64(colSpacing), float64(rowSpacing)
	return [5]Point{
		{X: x, Y: y},
		{X: x + cs, Y: y},
		{X: x - cs, Y: y},
		{X: x, Y: y + rs},
		{X: x, Y: y - rs},
	}
}

// Axis selects the direction of a drag gesture.
type Axis int

const (
	// AxisNone means the gesture had no dominant direction.
	AxisNone Axis = iota
	AxisX
	AxisY
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	default:
		return "none"
	}
}

// ParseAxis converts "x" or "y" to an Axis. Anything else is AxisNone.
func ParseAxis(s string) Axis {
	switch s {
	case "x", "X":
		return AxisX
	case "y", "Y":
		return AxisY
	default:
		return AxisNone
	}
}

// DominantAxis picks the axis with the greater absolute delta. Equal deltas
// give AxisNone and the gesture is ignored.
func DominantAxis(dx, dy float64) Axis {
	switch {
	case math.Abs(dx) > math.Abs(dy):
		return AxisX
	case math.Abs(dy) > math.Abs(dx):
		return AxisY
	default:
		return AxisNone
	}
}

// SegmentPoints returns the click points visited by a drag from (x1, y1) to
// (x2, y2) along axis. Coordinates are rounded first; points step by spacing
// from the lower endpoint up to (not including) the higher one. The cross-axis
// coordinate is taken from the drag start.
func SegmentPoints(x1, y1, x2, y2 float64, axis Axis, spacing int) []Point {
	if spacing < 1 {
		spacing = 1
	}
	ix1, iy1 := int(math.Round(x1)), int(math.Round(y1))
	ix2, iy2 := int(math.Round(x2)), int(math.Round(y2))

	var points []Point
	switch axis {
	case AxisX:
		start, end := ix1, ix2
		if start > end {
			start, end = end, start
		}
		for c := start; c < end; c += spacing {
			points = append(points, Point{X: float64(c), Y: float64(iy1)})
		}
	case AxisY:
		start, end := iy1, iy2
		if start > end {
			start, end = end, start
		}
		for c := start; c < end; c += spacing {
			points = append(points, Point{X: float64(ix1), Y: float64(c)})
		}
	}
	return points
}

// LinePoints returns one click point per cell across the whole row (AxisX) or
// column (AxisY) that contains (x, y). Each point sits at the centre of its cell
// so it falls strictly inside it.
func (g Grid) LinePoints(x, y float64, axis Axis) []Point {
	cs, rs := g.spacing()
	var points []Point
	switch axis {
	case AxisX:
		for c := 0; c < g.Width; c += cs {
			points = append(points, Point{X: float64(g.OffsetX + c + cs/2), Y: y})
		}
	case AxisY:
		for c := 0; c < g.Height; c += rs {
			points = append(points, Point{X: x, Y: float64(g.OffsetY + c + rs/2)})
		}
	}
	return points
}
