package project

import (
	"github.com/ironsheep/dss-annotator/internal/model"
)

// Snapshot is a detached copy of everything that is persisted.
type Snapshot struct {
	Attributes []Attribute
	Session    Session
	Groups     []*model.Group
	Rules      []*model.Rule
	Categories []*model.Category
}

// Snapshot copies the persisted state.
func (p *Project) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := Snapshot{
		Attributes: p.attrs.All(),
		Session: Session{
			WorkingImage: p.session.WorkingImage,
			Thumbnails:   append([]string(nil), p.session.Thumbnails...),
		},
		Groups: cloneGroups(p.groups),
	}
	for _, r := range p.rules {
		s.Rules = append(s.Rules, r.Clone())
	}
	for _, c := range p.categories.Items() {
		s.Categories = append(s.Categories, c.Clone())
	}
	return s
}

// Restore merges s into the project, as when several project files are
// loaded in turn. Attributes are updated, thumbnails are added, and groups
// and categories replace existing ones of the same name. Rules are
// appended. The session's working image is recorded but not opened; the
// caller loads it and calls SetWorkingImage.
func (p *Project) Restore(s Snapshot) {
	p.mu.Lock()
	for _, a := range s.Attributes {
		p.attrs.Set(a.Name, a.Value)
	}
	if s.Session.WorkingImage != "" {
		p.session.WorkingImage = s.Session.WorkingImage
	}
	for _, t := range s.Session.Thumbnails {
		p.addThumbnailLocked(t)
	}
	for _, g := range s.Groups {
		g = g.Clone()
		if i := p.groupIndexLocked(g.Name); i >= 0 {
			p.groups[i] = g
		} else {
			p.groups = append(p.groups, g)
		}
	}
	for _, r := range s.Rules {
		p.rules = append(p.rules, r.Clone())
	}
	for _, c := range s.Categories {
		p.categories.Remove(c.Name)
		p.categories.Add(c.Clone())
	}
	v := p.categoryChangedLocked()
	p.mu.Unlock()
	p.render(v)
}

func (p *Project) groupIndexLocked(name string) int {
	for i, g := range p.groups {
		if g.Name == name {
			return i
		}
	}
	return -1
}

// LiveDefaults returns a defaults entry for every live group and category.
func (p *Project) LiveDefaults() []model.DefaultEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []model.DefaultEntry
	for _, g := range p.groups {
		out = append(out, model.DefaultEntry{Kind: model.DefaultGroup, Name: g.Name, Color: g.Color})
	}
	for _, c := range p.categories.Items() {
		out = append(out, model.DefaultEntry{Kind: model.DefaultCategory, Name: c.Name, Color: c.Color})
	}
	return out
}

// SetSavedDefaults replaces the defaults loaded from the defaults file.
func (p *Project) SetSavedDefaults(d *model.Defaults) {
	if d == nil {
		d = model.NewDefaults()
	}
	p.mu.Lock()
	p.saved = d
	p.mu.Unlock()
}

// DefaultEntries returns what the defaults file should hold: live entries
// first, then saved entries that are not live.
func (p *Project) DefaultEntries() []model.DefaultEntry {
	live := p.LiveDefaults()
	p.mu.Lock()
	saved := p.saved
	p.mu.Unlock()
	return model.MergeEntries(live, saved)
}
