package project

import (
	"github.com/ironsheep/dss-annotator/internal/geometry"
)

// Session is the ephemeral state restored on the next start.
type Session struct {
	// WorkingImage is the path of the image being annotated.
	WorkingImage string `json:"working_image"`

	// Thumbnails are the paths of the loaded images in load order.
	Thumbnails []string `json:"thumbnails"`
}

// Working describes the working image as currently displayed.
type Working struct {
	Path  string         `json:"path"`
	Hash  string         `json:"hash"`
	Frame geometry.Frame `json:"frame"`
}

// Session returns a copy of the session.
func (p *Project) Session() Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Session{
		WorkingImage: p.session.WorkingImage,
		Thumbnails:   append([]string(nil), p.session.Thumbnails...),
	}
}

// Working returns the working image.
func (p *Project) Working() Working {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.working
}

// SetWorkingImage switches the working image. Groups are kept; they carry
// their own frames. Switching to a different image shows it again if it
// was hidden.
func (p *Project) SetWorkingImage(w Working) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if w.Hash != p.working.Hash {
		p.hideImage = false
	}
	p.working = w
	p.session.WorkingImage = w.Path
	p.redraw = nil
}

// UpdateFrame replaces the display metadata of the working image, as when
// the display surface is resized. Existing groups are not touched.
func (p *Project) UpdateFrame(f geometry.Frame) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.working.Hash == "" {
		return ErrNoWorkingImage
	}
	p.working.Frame = f
	return nil
}

// ClearWorkingImage leaves no image open.
func (p *Project) ClearWorkingImage() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.working = Working{}
	p.session.WorkingImage = ""
	p.redraw = nil
}

// AddThumbnail records path as loaded. Empty and repeated paths are
// ignored.
func (p *Project) AddThumbnail(path string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.addThumbnailLocked(path)
}

func (p *Project) addThumbnailLocked(path string) bool {
	if path == "" {
		return false
	}
	for _, t := range p.session.Thumbnails {
		if t == path {
			return false
		}
	}
	p.session.Thumbnails = append(p.session.Thumbnails, path)
	return true
}

// RemoveThumbnail forgets path. When path was the working image, the
// thumbnail loaded before it (or the new first one) is returned as the
// fallback; the caller switches to it. An empty fallback with wasWorking
// set means the working image was cleared.
func (p *Project) RemoveThumbnail(path string) (fallback string, wasWorking bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	idx := -1
	for i, t := range p.session.Thumbnails {
		if t == path {
			idx = i
			break
		}
	}
	if idx >= 0 {
		p.session.Thumbnails = append(p.session.Thumbnails[:idx], p.session.Thumbnails[idx+1:]...)
	}
	if p.session.WorkingImage != path || path == "" {
		return "", false
	}
	if n := len(p.session.Thumbnails); n > 0 {
		if idx > 0 {
			idx--
		}
		if idx < 0 || idx >= n {
			idx = 0
		}
		return p.session.Thumbnails[idx], true
	}
	p.working = Working{}
	p.session.WorkingImage = ""
	p.redraw = nil
	return "", true
}

// Grid returns the selection grid over the working image.
func (p *Project) Grid() geometry.Grid {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gridLocked()
}

func (p *Project) gridLocked() geometry.Grid {
	f := p.working.Frame
	return geometry.Grid{
		ColSpacing: p.colSpacing,
		RowSpacing: p.rowSpacing,
		OffsetX:    f.OffsetX,
		OffsetY:    f.OffsetY,
		Width:      f.DisplayWidth,
		Height:     f.DisplayHeight,
	}
}

// SetGridSpacing sets both spacings. Values below 1 become 1.
func (p *Project) SetGridSpacing(n int) int {
	if n < 1 {
		n = 1
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.colSpacing, p.rowSpacing = n, n
	return n
}

// AdjustGridSpacing adds delta to the spacing and returns the result.
func (p *Project) AdjustGridSpacing(delta int) int {
	p.mu.Lock()
	n := p.colSpacing + delta
	p.mu.Unlock()
	return p.SetGridSpacing(n)
}

// ToggleHideImage hides or shows the working image content and returns the
// new state.
func (p *Project) ToggleHideImage() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.working.Hash == "" {
		return false, ErrNoWorkingImage
	}
	p.hideImage = !p.hideImage
	return p.hideImage, nil
}

// ImageHidden reports whether the working image is hidden.
func (p *Project) ImageHidden() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hideImage
}
