package project

import (
	"fmt"
	"math"

	"github.com/ironsheep/dss-annotator/internal/geometry"
	"github.com/ironsheep/dss-annotator/internal/model"
)

// ClickResult reports what a click did.
type ClickResult struct {
	Group   string        `json:"group,omitempty"`
	Cell    geometry.Rect `json:"cell"`
	Added   bool          `json:"added"`
	Created bool          `json:"created"`

	// Ignored is set when the click fell outside the grid.
	Ignored bool `json:"ignored,omitempty"`

	// Redraw is set when the click was consumed by redraw mode, and
	// RedrawDone once the replacement rectangle was applied.
	Redraw     bool `json:"redraw,omitempty"`
	RedrawDone bool `json:"redraw_done,omitempty"`
}

type redrawState struct {
	group  string
	points []int
}

// Click toggles the grid cell under (x, y) in the group found by the plus
// test, creating a group when none is near. In redraw mode the click is a
// corner of the replacement rectangle instead.
func (p *Project) Click(x, y float64) (ClickResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.working.Hash == "" {
		return ClickResult{}, ErrNoWorkingImage
	}
	if p.redraw != nil {
		return p.redrawClickLocked(x, y)
	}
	return p.clickLocked(x, y), nil
}

func (p *Project) clickLocked(x, y float64) ClickResult {
	cell, ok := p.gridLocked().Cell(x, y)
	if !ok {
		return ClickResult{Ignored: true}
	}
	res := ClickResult{Cell: cell}
	g := model.FindGroup(p.groups, x, y, p.colSpacing, p.rowSpacing)
	if g == nil {
		g = model.NewGroup("", p.working.Hash, p.working.Frame)
		p.groups = append(p.groups, g)
		res.Created = true
	}
	res.Group = g.Name
	res.Added = g.ToggleRegion(cell)
	return res
}

// Segment applies a drag from (x1, y1) to (x2, y2): every cell along the
// dominant axis is clicked in turn. A drag with no dominant axis does
// nothing.
func (p *Project) Segment(x1, y1, x2, y2 float64) ([]ClickResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.working.Hash == "" {
		return nil, ErrNoWorkingImage
	}
	axis := geometry.DominantAxis(x2-x1, y2-y1)
	spacing := p.colSpacing
	if axis == geometry.AxisY {
		spacing = p.rowSpacing
	}
	var results []ClickResult
	for _, pt := range geometry.SegmentPoints(x1, y1, x2, y2, axis, spacing) {
		results = append(results, p.clickLocked(pt.X, pt.Y))
	}
	return results, nil
}

// Line clicks every cell of the row (AxisX) or column (AxisY) through
// (x, y).
func (p *Project) Line(x, y float64, axis geometry.Axis) ([]ClickResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.working.Hash == "" {
		return nil, ErrNoWorkingImage
	}
	var results []ClickResult
	for _, pt := range p.gridLocked().LinePoints(x, y, axis) {
		results = append(results, p.clickLocked(pt.X, pt.Y))
	}
	return results, nil
}

// BeginRedraw puts group name into redraw mode: the next two clicks give
// the corners of a rectangle that replaces all of its regions.
func (p *Project) BeginRedraw(name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.findGroupLocked(name) == nil {
		return fmt.Errorf("%w: %s", ErrGroupNotFound, name)
	}
	p.redraw = &redrawState{group: name}
	return nil
}

// CancelRedraw leaves redraw mode.
func (p *Project) CancelRedraw() {
	p.mu.Lock()
	p.redraw = nil
	p.mu.Unlock()
}

// RedrawGroup returns the group in redraw mode, if any.
func (p *Project) RedrawGroup() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.redraw == nil {
		return "", false
	}
	return p.redraw.group, true
}

func (p *Project) redrawClickLocked(x, y float64) (ClickResult, error) {
	st := p.redraw
	g := p.findGroupLocked(st.group)
	if g == nil {
		p.redraw = nil
		return ClickResult{}, fmt.Errorf("%w: %s", ErrGroupNotFound, st.group)
	}
	st.points = append(st.points, int(math.Round(x)), int(math.Round(y)))
	res := ClickResult{Group: g.Name, Redraw: true}
	if len(st.points) >= 4 {
		r := geometry.NewRect(st.points[0], st.points[1], st.points[2], st.points[3])
		g.Regions = []geometry.Rect{r}
		res.Cell = r
		res.RedrawDone = true
		p.redraw = nil
	}
	return res, nil
}

func (p *Project) findGroupLocked(name string) *model.Group {
	for _, g := range p.groups {
		if g.Name == name {
			return g
		}
	}
	return nil
}

// Group returns a copy of the named group.
func (p *Project) Group(name string) (*model.Group, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	g := p.findGroupLocked(name)
	if g == nil {
		return nil, fmt.Errorf("%w: %s", ErrGroupNotFound, name)
	}
	return g.Clone(), nil
}

// Groups returns copies of all groups in creation order.
func (p *Project) Groups() []*model.Group {
	p.mu.Lock()
	defer p.mu.Unlock()
	return cloneGroups(p.groups)
}

func cloneGroups(groups []*model.Group) []*model.Group {
	out := make([]*model.Group, 0, len(groups))
	for _, g := range groups {
		out = append(out, g.Clone())
	}
	return out
}

// RenameGroup renames a group. The old name is queued as stale, and a saved
// default color for the new name replaces the group's color.
func (p *Project) RenameGroup(oldName, newName string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	g := p.findGroupLocked(oldName)
	if g == nil {
		return fmt.Errorf("%w: %s", ErrGroupNotFound, oldName)
	}
	if oldName == newName {
		return nil
	}
	if newName == "" || p.findGroupLocked(newName) != nil {
		return fmt.Errorf("%w: %q", ErrDuplicateName, newName)
	}
	g.Name = newName
	g.SetNameDefault(p.saved)
	p.stale = append(p.stale, oldName)
	if p.redraw != nil && p.redraw.group == oldName {
		p.redraw.group = newName
	}
	return nil
}

// RecolorGroup sets a group's color.
func (p *Project) RecolorGroup(name string, c model.Color) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	g := p.findGroupLocked(name)
	if g == nil {
		return fmt.Errorf("%w: %s", ErrGroupNotFound, name)
	}
	g.Color = c
	return nil
}

// ToggleHideGroup flips a group's hide flag and returns the new value.
func (p *Project) ToggleHideGroup(name string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	g := p.findGroupLocked(name)
	if g == nil {
		return false, fmt.Errorf("%w: %s", ErrGroupNotFound, name)
	}
	return g.ToggleHide(), nil
}

// RemoveGroup deletes a group and queues its name as stale.
func (p *Project) RemoveGroup(name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, g := range p.groups {
		if g.Name == name {
			p.groups = append(p.groups[:i], p.groups[i+1:]...)
			p.stale = append(p.stale, name)
			if p.redraw != nil && p.redraw.group == name {
				p.redraw = nil
			}
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrGroupNotFound, name)
}

// Overlay is what the working-image overlay is drawn from.
type Overlay struct {
	Groups []*model.Group `json:"groups"`

	// Stale are names whose drawings must be discarded.
	Stale []string `json:"stale"`

	Grid        geometry.Grid `json:"grid"`
	Working     Working       `json:"working"`
	ImageHidden bool          `json:"image_hidden"`
}

// TakeOverlay returns the overlay state and drains the stale-name queue.
func (p *Project) TakeOverlay() Overlay {
	p.mu.Lock()
	defer p.mu.Unlock()
	o := Overlay{
		Groups:      cloneGroups(p.groups),
		Stale:       p.stale,
		Grid:        p.gridLocked(),
		Working:     p.working,
		ImageHidden: p.hideImage,
	}
	p.stale = nil
	return o
}
