package render

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/anthonynsimon/bild/transform"

	"github.com/ironsheep/dss-annotator/internal/geometry"
	"github.com/ironsheep/dss-annotator/internal/model"
)

var (
	gridColor  = color.NRGBA{128, 128, 128, 128}
	labelColor = color.Black
)

// outlineWidth is the stroke width of group outlines.
const outlineWidth = 3

// toPixels converts a display rectangle into image pixels of an image shown
// in frame f.
func toPixels(f geometry.Frame, r geometry.Rect) image.Rectangle {
	x0 := r.X - f.OffsetX
	x1 := r.X2 - f.OffsetX
	y0 := f.DisplayHeight - (r.Y2 - f.OffsetY)
	y1 := f.DisplayHeight - (r.Y - f.OffsetY)
	return image.Rect(x0, y0, x1, y1)
}

// CropGroup cuts g's bounding box out of img, an image shown in g's frame
// but possibly stored at another size.
func CropGroup(img image.Image, g *model.Group) (*image.RGBA, bool) {
	bbox, ok := g.RegionRectangle()
	if !ok || !g.Frame.Valid() {
		return nil, false
	}
	px := toPixels(g.Frame, bbox)
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	sx := float64(w) / float64(g.Frame.DisplayWidth)
	sy := float64(h) / float64(g.Frame.DisplayHeight)
	r := image.Rect(
		int(float64(px.Min.X)*sx), int(float64(px.Min.Y)*sy),
		int(float64(px.Max.X)*sx), int(float64(px.Max.Y)*sy),
	).Intersect(image.Rect(0, 0, w, h))
	if r.Empty() {
		return nil, false
	}
	return transform.Crop(img, r), true
}

func fillRect(dst draw.Image, r image.Rectangle, c color.Color) {
	draw.Draw(dst, r.Intersect(dst.Bounds()), image.NewUniform(c), image.Point{}, draw.Over)
}

// strokeRect draws an outline of width w inside r.
func strokeRect(dst draw.Image, r image.Rectangle, w int, c color.Color) {
	if r.Empty() {
		return
	}
	fillRect(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+w), c)
	fillRect(dst, image.Rect(r.Min.X, r.Max.Y-w, r.Max.X, r.Max.Y), c)
	fillRect(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+w, r.Max.Y), c)
	fillRect(dst, image.Rect(r.Max.X-w, r.Min.Y, r.Max.X, r.Max.Y), c)
}

// drawGrid draws one vertical line per column and one horizontal line per
// row, starting at the image edge.
func drawGrid(dst *image.RGBA, colSpacing, rowSpacing int) {
	b := dst.Bounds()
	if colSpacing < 1 {
		colSpacing = 1
	}
	if rowSpacing < 1 {
		rowSpacing = 1
	}
	for x := 0; x < b.Dx(); x += colSpacing {
		fillRect(dst, image.Rect(b.Min.X+x, b.Min.Y, b.Min.X+x+1, b.Max.Y), gridColor)
	}
	// Rows count up from the bottom edge.
	for y := 0; y < b.Dy(); y += rowSpacing {
		py := b.Max.Y - 1 - y
		fillRect(dst, image.Rect(b.Min.X, py, b.Max.X, py+1), gridColor)
	}
}

// hiddenImage is the gradient shown instead of a hidden working image.
func hiddenImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	n := w * h
	if n == 0 {
		return img
	}
	for i := 0; i < n; i++ {
		v := uint8(i * 255 / n)
		img.Pix[i*4], img.Pix[i*4+1], img.Pix[i*4+2], img.Pix[i*4+3] = v, v, v, 255
	}
	return img
}
