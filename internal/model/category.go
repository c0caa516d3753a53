package model

import (
	"sort"

	"github.com/google/uuid"
)

// RangeState records where a category's rough amount came from.
type RangeState int

const (
	// RangeUnused means the amount was typed in directly.
	RangeUnused RangeState = iota
	// RangeActive means the amount was derived from start/end.
	RangeActive
	// RangeInvalid means the last range edit did not parse; the amount
	// kept its previous value.
	RangeInvalid
)

func (s RangeState) String() string {
	switch s {
	case RangeActive:
		return "active"
	case RangeInvalid:
		return "invalid"
	default:
		return "unused"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s RangeState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Category is a named classification bucket with a rough count.
type Category struct {
	Name  string `json:"name"`
	Color Color  `json:"color"`

	RoughAmount int `json:"rough_amount"`

	// RoughAmountStart and RoughAmountEnd hold integers or roman numerals
	// as typed.
	RoughAmountStart string `json:"rough_amount_start,omitempty"`
	RoughAmountEnd   string `json:"rough_amount_end,omitempty"`

	// RoughOrder controls display and export order. It may be negative or
	// fractional.
	RoughOrder float64 `json:"rough_order"`

	Range RangeState `json:"range"`

	orderSet bool
}

// NewCategory creates a category. An empty name gets a UUID; the color comes
// from the name-keyed palette. The order is left unset so that adding the
// category to a list appends it.
func NewCategory(name string) *Category {
	if name == "" {
		name = uuid.NewString()
	}
	return &Category{Name: name, Color: PickFor(name)}
}

// SetOrder sets RoughOrder and marks it as explicitly chosen.
func (c *Category) SetOrder(order float64) {
	c.RoughOrder = order
	c.orderSet = true
}

// HasOrder reports whether RoughOrder was set explicitly or by a list.
func (c *Category) HasOrder() bool { return c.orderSet }

// SetAmount records a manually typed count. The range no longer drives the
// amount.
func (c *Category) SetAmount(n int) {
	c.RoughAmount = n
	c.Range = RangeUnused
}

// DeriveAmountFromRange computes end - start where each endpoint is an
// integer or a roman numeral.
func DeriveAmountFromRange(start, end string) (int, error) {
	s, err := ParseRangeValue(start)
	if err != nil {
		return 0, err
	}
	e, err := ParseRangeValue(end)
	if err != nil {
		return 0, err
	}
	return e - s, nil
}

// UpdateRange applies a range edit. On success the endpoints are stored, the
// amount becomes end - start and Range is RangeActive. On failure only Range
// changes, to RangeInvalid; the amount and the stored endpoints keep their
// last good values. It reports whether the range was applied.
func (c *Category) UpdateRange(start, end string) bool {
	amount, err := DeriveAmountFromRange(start, end)
	if err != nil {
		c.Range = RangeInvalid
		return false
	}
	c.RoughAmountStart = start
	c.RoughAmountEnd = end
	c.RoughAmount = amount
	c.Range = RangeActive
	return true
}

// Clone returns a copy.
func (c *Category) Clone() *Category {
	cp := *c
	return &cp
}

// CategoryList keeps categories sorted by RoughOrder. Ties keep their
// relative insertion order.
type CategoryList struct {
	items []*Category
}

// Len returns the number of categories.
func (l *CategoryList) Len() int { return len(l.items) }

// Items returns the categories in order. The slice is a copy; the
// categories are shared.
func (l *CategoryList) Items() []*Category {
	return append([]*Category(nil), l.items...)
}

// Add appends c. A category without an explicit order gets the current
// length of the list as its order.
func (l *CategoryList) Add(c *Category) {
	if !c.orderSet {
		c.SetOrder(float64(len(l.items)))
	}
	l.items = append(l.items, c)
	l.Reorder()
}

// Reorder stable-sorts by RoughOrder. Call it after editing any order.
func (l *CategoryList) Reorder() {
	sort.SliceStable(l.items, func(i, j int) bool {
		return l.items[i].RoughOrder < l.items[j].RoughOrder
	})
}

// Get finds a category by name.
func (l *CategoryList) Get(name string) (*Category, bool) {
	for _, c := range l.items {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Remove deletes the first category with name and reports whether one was
// found.
func (l *CategoryList) Remove(name string) bool {
	for i, c := range l.items {
		if c.Name == name {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return true
		}
	}
	return false
}
