package model

import "sort"

// Default kinds used in the defaults file.
const (
	DefaultGroup    = "group"
	DefaultCategory = "category"
)

// Defaults holds the name to color mappings restored across sessions.
type Defaults struct {
	Group    map[string]Color
	Category map[string]Color
}

// NewDefaults returns empty defaults.
func NewDefaults() *Defaults {
	return &Defaults{Group: map[string]Color{}, Category: map[string]Color{}}
}

func (d *Defaults) table(kind string) map[string]Color {
	switch kind {
	case DefaultGroup:
		return d.Group
	case DefaultCategory:
		return d.Category
	}
	return nil
}

// Lookup returns the default color for name under kind.
func (d *Defaults) Lookup(kind, name string) (Color, bool) {
	if d == nil {
		return Color{}, false
	}
	c, ok := d.table(kind)[name]
	return c, ok
}

// Set records a default. Unknown kinds are ignored.
func (d *Defaults) Set(kind, name string, c Color) {
	if t := d.table(kind); t != nil {
		t[name] = c
	}
}

// Merge returns the union of live and saved. Live entries win on conflict.
func Merge(live, saved *Defaults) *Defaults {
	out := NewDefaults()
	for _, src := range []*Defaults{saved, live} {
		if src == nil {
			continue
		}
		for k, v := range src.Group {
			out.Group[k] = v
		}
		for k, v := range src.Category {
			out.Category[k] = v
		}
	}
	return out
}

// SetNameDefault applies a named default to g after a rename. A matching
// default overrides whatever color the group had.
func (g *Group) SetNameDefault(d *Defaults) bool {
	if c, ok := d.Lookup(DefaultGroup, g.Name); ok {
		g.Color = c
		return true
	}
	return false
}

// SetNameDefault applies a named default to c after a rename.
func (c *Category) SetNameDefault(d *Defaults) bool {
	if col, ok := d.Lookup(DefaultCategory, c.Name); ok {
		c.Color = col
		return true
	}
	return false
}

// DefaultEntry is one <default> row of the defaults file.
type DefaultEntry struct {
	Kind  string
	Name  string
	Color Color
}

// MergeEntries returns live entries first, in their order, then saved
// entries whose name is not live under the same kind, sorted by kind and
// name.
func MergeEntries(live []DefaultEntry, saved *Defaults) []DefaultEntry {
	out := append([]DefaultEntry(nil), live...)
	seen := make(map[string]bool, len(live))
	for _, e := range live {
		seen[e.Kind+"\x00"+e.Name] = true
	}
	if saved == nil {
		return out
	}
	for _, kind := range []string{DefaultGroup, DefaultCategory} {
		table := saved.table(kind)
		names := make([]string, 0, len(table))
		for name := range table {
			if !seen[kind+"\x00"+name] {
				names = append(names, name)
			}
		}
		sort.Strings(names)
		for _, name := range names {
			out = append(out, DefaultEntry{Kind: kind, Name: name, Color: table[name]})
		}
	}
	return out
}

// EntriesToDefaults converts entries into lookup tables. Later entries win.
func EntriesToDefaults(entries []DefaultEntry) *Defaults {
	d := NewDefaults()
	for _, e := range entries {
		d.Set(e.Kind, e.Name, e.Color)
	}
	return d
}
