package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"
	"sync"

	"github.com/anthonynsimon/bild/transform"

	"github.com/ironsheep/dss-annotator/internal/imagestore"
	"github.com/ironsheep/dss-annotator/internal/model"
	"github.com/ironsheep/dss-annotator/internal/project"
)

// Sizes configures the project previews.
type Sizes struct {
	OverviewWidth   int
	OverviewHeight  int
	ThumbnailHeight int

	DimensionsWidth  int
	DimensionsHeight int
	DimensionsScale  int
}

// DefaultSizes matches the editor layout.
var DefaultSizes = Sizes{
	OverviewWidth:    1000,
	OverviewHeight:   50,
	ThumbnailHeight:  25,
	DimensionsWidth:  500,
	DimensionsHeight: 150,
	DimensionsScale:  5,
}

var background = color.RGBA{255, 255, 255, 255}

// Overview draws the category bar. Categories with no amount get no
// segment. With color key set each segment is captioned with its name.
func Overview(v project.View, width, height int, colorKey bool) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	total := 0
	for _, name := range v.CategoryOrder {
		if n := v.Categories[name]; n > 0 {
			total += n
		}
	}
	if total == 0 {
		return img
	}

	x := 0
	seen := 0
	for _, name := range v.CategoryOrder {
		n := v.Categories[name]
		if n <= 0 {
			continue
		}
		seen += n
		// Segment ends are computed from the running sum so the bar is
		// filled exactly.
		end := seen * width / total
		seg := image.Rect(x, 0, end, height)
		fill := background
		if c, err := model.ParseColor(v.Palette[name].Fill); err == nil {
			r, g, b := c.RGB255()
			fill = color.RGBA{r, g, b, 255}
		}
		draw.Draw(img, seg, image.NewUniform(fill), image.Point{}, draw.Src)
		if colorKey && seg.Dx() > 7 {
			label := fmt.Sprintf("%s %d", name, n)
			if room := seg.Dx() / 7; len(label) > room {
				label = label[:room]
			}
			imagestore.DrawText(img, x+1, (height-15)/2, label, labelColor)
		}
		x = end
	}
	return img
}

// Thumbnail scales img to height, keeping the aspect ratio.
func Thumbnail(img image.Image, height int) *image.RGBA {
	b := img.Bounds()
	if b.Dy() == 0 || height < 1 {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}
	width := b.Dx() * height / b.Dy()
	if width < 1 {
		width = 1
	}
	return transform.Resize(img, width, height, transform.Linear)
}

// FitThumbnail scales img to fit within width x height, keeping the aspect
// ratio. A width below 1 bounds the height only.
func FitThumbnail(img image.Image, width, height int) *image.RGBA {
	b := img.Bounds()
	if width >= 1 && b.Dx()*height > width*b.Dy() {
		height = b.Dy() * width / b.Dx()
		if height < 1 {
			height = 1
		}
	}
	return Thumbnail(img, height)
}

// Dimensions draws the project's width x height outline. Sizes are read
// from the width, height and units attributes and multiplied by scale; an
// outline larger than the image is shrunk to fit.
func Dimensions(v project.View, width, height, scale int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	attrs := map[string]string{}
	for _, a := range v.Attributes {
		attrs[a.Name] = a.Value
	}
	pw, errW := strconv.ParseFloat(attrs["width"], 64)
	ph, errH := strconv.ParseFloat(attrs["height"], 64)
	if errW != nil || errH != nil || pw <= 0 || ph <= 0 {
		imagestore.DrawText(img, 5, 5, "no dimensions", labelColor)
		return img
	}

	if scale < 1 {
		scale = 1
	}
	w, h := pw*float64(scale), ph*float64(scale)
	fit := 1.0
	maxW, maxH := float64(width-10), float64(height-25)
	if w > maxW {
		fit = maxW / w
	}
	if h*fit > maxH {
		fit = maxH / h
	}
	w, h = w*fit, h*fit

	r := image.Rect(5, 20, 5+int(w), 20+int(h))
	strokeRect(img, r, 2, color.Black)
	label := fmt.Sprintf("%s x %s %s", attrs["width"], attrs["height"], attrs["units"])
	imagestore.DrawText(img, 5, 2, label, labelColor)
	return img
}

// Previews are the latest project images.
type Previews struct {
	Overview   image.Image
	Thumbnail  image.Image
	Dimensions image.Image
}

// Renderer regenerates the project previews on every project change and
// holds the working-image overlay cache.
type Renderer struct {
	Sizes    Sizes
	Overlays *Overlays

	mu       sync.Mutex
	previews Previews
	renders  int
}

// NewRenderer returns a Renderer with the given sizes.
func NewRenderer(sizes Sizes) *Renderer {
	return &Renderer{Sizes: sizes, Overlays: NewOverlays()}
}

// RenderProject implements project.Renderer.
func (r *Renderer) RenderProject(v project.View) error {
	s := r.Sizes
	if s.OverviewWidth < 1 || s.OverviewHeight < 1 {
		return fmt.Errorf("invalid overview size %dx%d", s.OverviewWidth, s.OverviewHeight)
	}
	overview := Overview(v, s.OverviewWidth, s.OverviewHeight, true)
	thumb := Overview(v, s.OverviewWidth, s.ThumbnailHeight, true)
	dims := Dimensions(v, s.DimensionsWidth, s.DimensionsHeight, s.DimensionsScale)

	r.mu.Lock()
	r.previews = Previews{Overview: overview, Thumbnail: thumb, Dimensions: dims}
	r.renders++
	r.mu.Unlock()
	return nil
}

// Previews returns the latest images. They are nil before the first
// render.
func (r *Renderer) Previews() Previews {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.previews
}

// Renders counts RenderProject calls.
func (r *Renderer) Renders() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.renders
}
