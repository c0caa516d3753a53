package imagestore

import (
	"image"
	"image/color"
	"image/draw"
	"sort"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var placeholderGray = color.RGBA{155, 155, 155, 255}

// lineHeight is the advance between text lines for basicfont.Face7x13.
const lineHeight = 15

// PrettyFormat renders an item's fields for display: the id on the first
// line, then one "field: value" line per field in field order.
func PrettyFormat(fields map[string]string, id string) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(id)
	for _, k := range keys {
		b.WriteString("\n")
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(fields[k])
	}
	return b.String()
}

// Placeholder returns a gray size x size image with text drawn from (50, 50).
func Placeholder(size int, text string) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(placeholderGray), image.Point{}, draw.Src)
	DrawText(img, 50, 50, text, color.Black)
	return img
}

// DrawText draws text onto dst with its top-left corner at (x, y). Newlines
// start a new line.
func DrawText(dst draw.Image, x, y int, text string, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
	}
	for i, line := range strings.Split(text, "\n") {
		d.Dot = fixed.P(x, y+13+i*lineHeight)
		d.DrawString(line)
	}
}
