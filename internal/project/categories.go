package project

import (
	"fmt"

	"github.com/ironsheep/dss-annotator/internal/model"
)

// AddCategory adds c to the sorted category list. A category without an
// explicit order is appended. A saved default for the name sets the color.
func (p *Project) AddCategory(c *model.Category) error {
	p.mu.Lock()
	if _, exists := p.categories.Get(c.Name); exists {
		p.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrDuplicateName, c.Name)
	}
	c.SetNameDefault(p.saved)
	p.categories.Add(c)
	v := p.categoryChangedLocked()
	p.mu.Unlock()
	p.render(v)
	return nil
}

// categoryChangedLocked recomputes the derived dictionaries and returns the
// view to render once the lock is released.
func (p *Project) categoryChangedLocked() View {
	p.updateDerivedLocked()
	return p.viewLocked()
}

// editCategory applies fn to the named category, then rebuilds the derived
// dictionaries and renders.
func (p *Project) editCategory(name string, fn func(c *model.Category) error) error {
	p.mu.Lock()
	c, ok := p.categories.Get(name)
	if !ok {
		p.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrCategoryNotFound, name)
	}
	if err := fn(c); err != nil {
		p.mu.Unlock()
		return err
	}
	v := p.categoryChangedLocked()
	p.mu.Unlock()
	p.render(v)
	return nil
}

// RenameCategory renames a category. The derived dictionaries are rebuilt
// under the new name and a saved default for it replaces the color.
func (p *Project) RenameCategory(oldName, newName string) error {
	if oldName == newName {
		return nil
	}
	return p.editCategory(oldName, func(c *model.Category) error {
		if _, taken := p.categories.Get(newName); newName == "" || taken {
			return fmt.Errorf("%w: %q", ErrDuplicateName, newName)
		}
		c.Name = newName
		c.SetNameDefault(p.saved)
		return nil
	})
}

// RecolorCategory sets a category's color.
func (p *Project) RecolorCategory(name string, col model.Color) error {
	return p.editCategory(name, func(c *model.Category) error {
		c.Color = col
		return nil
	})
}

// SetCategoryAmount records a typed rough amount.
func (p *Project) SetCategoryAmount(name string, n int) error {
	return p.editCategory(name, func(c *model.Category) error {
		c.SetAmount(n)
		return nil
	})
}

// SetCategoryRange applies a start/end edit. An unparseable range is not an
// error: the category is flagged RangeInvalid and keeps its amount. The
// resulting state is returned.
func (p *Project) SetCategoryRange(name, start, end string) (model.RangeState, error) {
	var state model.RangeState
	err := p.editCategory(name, func(c *model.Category) error {
		c.UpdateRange(start, end)
		state = c.Range
		return nil
	})
	return state, err
}

// SetCategoryOrder changes a category's rough order and re-sorts the list.
func (p *Project) SetCategoryOrder(name string, order float64) error {
	return p.editCategory(name, func(c *model.Category) error {
		c.SetOrder(order)
		p.categories.Reorder()
		return nil
	})
}

// RemoveCategory deletes a category and its derived entries.
func (p *Project) RemoveCategory(name string) error {
	p.mu.Lock()
	if !p.categories.Remove(name) {
		p.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrCategoryNotFound, name)
	}
	v := p.categoryChangedLocked()
	p.mu.Unlock()
	p.render(v)
	return nil
}

// Category returns a copy of the named category.
func (p *Project) Category(name string) (*model.Category, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.categories.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCategoryNotFound, name)
	}
	return c.Clone(), nil
}

// Categories returns copies of the categories sorted by rough order.
func (p *Project) Categories() []*model.Category {
	p.mu.Lock()
	defer p.mu.Unlock()
	items := p.categories.Items()
	out := make([]*model.Category, 0, len(items))
	for _, c := range items {
		out = append(out, c.Clone())
	}
	return out
}

// CategoryColor returns the fill color of the category named value. It lets
// the info panel tint fields whose value is a category.
func (p *Project) CategoryColor(value string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.derived.Palette[value]
	return e.Fill, ok
}

// Derived returns a copy of the category dictionaries.
func (p *Project) Derived() Derived {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.viewLocked().Derived
}
