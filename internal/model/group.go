package model

import (
	"github.com/google/uuid"

	"github.com/ironsheep/dss-annotator/internal/geometry"
)

// Group is a named, colored collection of regions on one source image.
type Group struct {
	// Name identifies the group. It defaults to a fresh UUID.
	Name string `json:"name"`

	Color Color `json:"color"`

	// Regions are display-space rectangles in insertion order.
	Regions []geometry.Rect `json:"regions"`

	// Hide switches rendering to outline-only.
	Hide bool `json:"hide"`

	// Source is the content hash of the image the regions were drawn on.
	Source string `json:"source"`

	// Frame is the display metadata captured when the group was created.
	Frame geometry.Frame `json:"frame"`
}

// NewGroup creates a group drawn on source within frame. An empty name gets
// a UUID, and the color is picked from the name-keyed palette.
func NewGroup(name, source string, frame geometry.Frame) *Group {
	if name == "" {
		name = uuid.NewString()
	}
	return &Group{
		Name:   name,
		Color:  PickFor(name),
		Source: source,
		Frame:  frame,
	}
}

// SourceDimensions returns the display size the group was drawn at.
func (g *Group) SourceDimensions() [2]int {
	return [2]int{g.Frame.DisplayWidth, g.Frame.DisplayHeight}
}

// RegionRectangle returns the bounding box of all regions. ok is false for a
// group with no regions.
func (g *Group) RegionRectangle() (geometry.Rect, bool) {
	return geometry.Bounds(g.Regions)
}

// BoundingRectangle returns the bounding box as (x, y, width, height).
func (g *Group) BoundingRectangle() (geometry.XYWH, bool) {
	r, ok := g.RegionRectangle()
	if !ok {
		return geometry.XYWH{}, false
	}
	return r.XYWH(), true
}

// ScaledBoundingRectangle returns the bounding box converted to source-image
// space with a top-left origin. See geometry.Frame.ScaleToSource.
func (g *Group) ScaledBoundingRectangle() (geometry.Rect, geometry.XYWH, bool) {
	r, ok := g.RegionRectangle()
	if !ok {
		return geometry.Rect{}, geometry.XYWH{}, false
	}
	return g.Frame.ScaleToSource(r)
}

// ContainsPoint reports whether (x, y) lies strictly inside the group's
// bounding box. Empty groups contain nothing.
func (g *Group) ContainsPoint(x, y float64) bool {
	r, ok := g.RegionRectangle()
	return ok && r.Contains(x, y)
}

// HasRegion reports whether r is one of the group's regions.
func (g *Group) HasRegion(r geometry.Rect) bool {
	return g.indexOf(r) >= 0
}

func (g *Group) indexOf(r geometry.Rect) int {
	for i, existing := range g.Regions {
		if existing == r {
			return i
		}
	}
	return -1
}

// AddRegion appends r unless an identical rectangle is already present.
// It reports whether the region list changed.
func (g *Group) AddRegion(r geometry.Rect) bool {
	if g.HasRegion(r) {
		return false
	}
	g.Regions = append(g.Regions, r)
	return true
}

// RemoveRegion removes r by value. Removing a region that is not present is
// a no-op; the result reports whether anything was removed.
func (g *Group) RemoveRegion(r geometry.Rect) bool {
	i := g.indexOf(r)
	if i < 0 {
		return false
	}
	g.Regions = append(g.Regions[:i], g.Regions[i+1:]...)
	return true
}

// ToggleRegion removes r if present and adds it otherwise. It returns true
// when the region was added.
func (g *Group) ToggleRegion(r geometry.Rect) (added bool) {
	if g.RemoveRegion(r) {
		return false
	}
	g.AddRegion(r)
	return true
}

// ToggleHide flips Hide and returns the new value.
func (g *Group) ToggleHide() bool {
	g.Hide = !g.Hide
	return g.Hide
}

// Clone returns a deep copy.
func (g *Group) Clone() *Group {
	c := *g
	c.Regions = append([]geometry.Rect(nil), g.Regions...)
	return &c
}

// FindGroup runs the plus-pattern proximity test for a click at (x, y).
//
// The five probe points (see geometry.PlusProbes) are tested against each
// group's bounding box. Groups are visited in slice order and the first group
// matching any probe wins, so overlapping groups resolve to the earliest one.
// It returns nil when no group is near the click.
func FindGroup(groups []*Group, x, y float64, colSpacing, rowSpacing int) *Group {
	probes := geometry.PlusProbes(x, y, colSpacing, rowSpacing)
	for _, g := range groups {
		r, ok := g.RegionRectangle()
		if !ok {
			continue
		}
		for _, p := range probes {
			if r.Contains(p.X, p.Y) {
				return g
			}
		}
	}
	return nil
}
