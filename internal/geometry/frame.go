package geometry

import "math"

// Frame is the display metadata frozen onto a group when it is created.
//
// Different zoom levels and container sizes put the same logical region at
// different display coordinates, so every group keeps the frame it was drawn
// in and never recomputes it later.
type Frame struct {
	// OffsetX and OffsetY are the letterboxing offsets of the image inside
	// its display container.
	OffsetX int `json:"display_offset_x"`
	OffsetY int `json:"display_offset_y"`

	// DisplayWidth and DisplayHeight are the displayed image size.
	DisplayWidth  int `json:"display_width"`
	DisplayHeight int `json:"display_height"`

	// SourceWidth and SourceHeight are the true pixel dimensions of the
	// original, un-resized image.
	SourceWidth  int `json:"source_width"`
	SourceHeight int `json:"source_height"`
}

// Valid reports whether the frame can be used for scaling.
func (f Frame) Valid() bool {
	return f.DisplayWidth > 0 && f.DisplayHeight > 0
}

// ScaleToSource converts a display-space rectangle into source-image space.
//
// The steps are:
//  1. subtract OffsetX from both x coordinates; OffsetY is not subtracted
//  2. scale x by SourceWidth/DisplayWidth and y by SourceHeight/DisplayHeight,
//     rounding half to even
//  3. flip y from bottom-left origin to top-left origin: y' = |y - SourceHeight|
//
// The returned Rect keeps the corner order of the input, so after the flip Y is
// the image-space bottom edge of the region and Y2 the top edge. The XYWH form
// uses the flipped Y and the absolute deltas.
//
// The missing OffsetY subtraction means the vertical position is off by the
// letterbox height whenever OffsetY is non-zero. Downstream consumers compensate
// with a calibrated correction (the pipeline.vertical_correction setting).
//
// ok is false when the frame has no display size.
func (f Frame) ScaleToSource(r Rect) (scaled Rect, xywh XYWH, ok bool) {
	if !f.Valid() {
		return Rect{}, XYWH{}, false
	}
	xScale := float64(f.SourceWidth) / float64(f.DisplayWidth)
	yScale := float64(f.SourceHeight) / float64(f.DisplayHeight)

	x := scaleRound(r.X-f.OffsetX, xScale)
	x2 := scaleRound(r.X2-f.OffsetX, xScale)
	y := scaleRound(r.Y, yScale)
	y2 := scaleRound(r.Y2, yScale)

	y = abs(y - f.SourceHeight)
	y2 = abs(y2 - f.SourceHeight)

	scaled = Rect{X: x, Y: y, X2: x2, Y2: y2}
	xywh = XYWH{X: x, Y: y, W: abs(x2 - x), H: abs(y2 - y)}
	return scaled, xywh, true
}

func scaleRound(v int, scale float64) int {
	return int(math.RoundToEven(float64(v) * scale))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
