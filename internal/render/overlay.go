package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"sync"

	"github.com/anthonynsimon/bild/blend"
	"github.com/anthonynsimon/bild/transform"

	"github.com/ironsheep/dss-annotator/internal/geometry"
	"github.com/ironsheep/dss-annotator/internal/imagestore"
	"github.com/ironsheep/dss-annotator/internal/model"
	"github.com/ironsheep/dss-annotator/internal/project"
)

// OverlayResult contains the working image with groups and grid drawn on it.
type OverlayResult struct {
	Width       int      `json:"width"`
	Height      int      `json:"height"`
	ImageBase64 string   `json:"image_base64"`
	MimeType    string   `json:"mime_type"`
	GridSpacing int      `json:"grid_spacing"`
	Groups      []string `json:"groups"`
	Hidden      bool     `json:"hidden"`
}

type layer struct {
	key string
	img *image.RGBA
}

// Overlays draws working-image overlays and caches one layer per group.
type Overlays struct {
	mu     sync.Mutex
	layers map[string]layer
}

// NewOverlays returns an empty layer cache.
func NewOverlays() *Overlays {
	return &Overlays{layers: map[string]layer{}}
}

// RetireGroups drops the cached layers of names.
func (o *Overlays) RetireGroups(names []string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, n := range names {
		delete(o.layers, n)
	}
}

// Cached returns the names with a cached layer.
func (o *Overlays) Cached() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	names := make([]string, 0, len(o.layers))
	for n := range o.layers {
		names = append(names, n)
	}
	return names
}

// Draw composes base with the groups and grid of ov. Stale names in ov are
// retired first. Only groups drawn on the working image are shown.
func (o *Overlays) Draw(base image.Image, ov project.Overlay) (*image.RGBA, []string) {
	o.RetireGroups(ov.Stale)

	f := ov.Working.Frame
	w, h := f.DisplayWidth, f.DisplayHeight
	if w < 1 || h < 1 {
		b := base.Bounds()
		w, h = b.Dx(), b.Dy()
		f.DisplayWidth, f.DisplayHeight = w, h
	}

	var out *image.RGBA
	switch {
	case ov.ImageHidden || base == nil:
		out = hiddenImage(w, h)
	case base.Bounds().Dx() != w || base.Bounds().Dy() != h:
		out = transform.Resize(base, w, h, transform.Linear)
	default:
		out = image.NewRGBA(image.Rect(0, 0, w, h))
		draw.Draw(out, out.Bounds(), base, base.Bounds().Min, draw.Src)
	}

	var drawn []string
	for _, g := range ov.Groups {
		if g.Source != ov.Working.Hash {
			continue
		}
		l, ok := o.layer(g, f)
		if !ok {
			continue
		}
		out = blend.Normal(out, l)
		drawn = append(drawn, g.Name)
	}

	drawGrid(out, ov.Grid.ColSpacing, ov.Grid.RowSpacing)
	return out, drawn
}

// DrawResult is Draw encoded as PNG for the tool server.
func (o *Overlays) DrawResult(base image.Image, ov project.Overlay) (*OverlayResult, error) {
	img, drawn := o.Draw(base, ov)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return &OverlayResult{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
		GridSpacing: ov.Grid.ColSpacing,
		Groups:      drawn,
		Hidden:      ov.ImageHidden,
	}, nil
}

// layer returns the cached layer for g, redrawing it when the group or
// frame changed. Groups without regions have no layer.
func (o *Overlays) layer(g *model.Group, f geometry.Frame) (*image.RGBA, bool) {
	bbox, ok := g.RegionRectangle()
	if !ok {
		o.RetireGroups([]string{g.Name})
		return nil, false
	}
	key := fmt.Sprintf("%s|%v|%v|%+v|%+v", g.Color.Hex(), g.Hide, g.Regions, g.Frame, f)

	o.mu.Lock()
	cached, hit := o.layers[g.Name]
	o.mu.Unlock()
	if hit && cached.key == key {
		return cached.img, true
	}

	img := drawGroup(g, bbox, f)
	o.mu.Lock()
	o.layers[g.Name] = layer{key: key, img: img}
	o.mu.Unlock()
	return img, true
}

func drawGroup(g *model.Group, bbox geometry.Rect, f geometry.Frame) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.DisplayWidth, f.DisplayHeight))
	r, gg, b := g.Color.RGB255()
	half := color.NRGBA{r, gg, b, 128}
	px := toPixels(f, bbox)

	if g.Hide {
		strokeRect(img, px, outlineWidth, half)
	} else {
		fillRect(img, px, half)
		drawn := geometry.Rect{
			X: g.Frame.OffsetX, Y: g.Frame.OffsetY,
			X2: g.Frame.OffsetX + g.Frame.DisplayWidth, Y2: g.Frame.OffsetY + g.Frame.DisplayHeight,
		}
		strokeRect(img, toPixels(f, drawn), outlineWidth, half)
	}
	imagestore.DrawText(img, px.Min.X, px.Max.Y-15, g.Name, labelColor)
	return img
}
