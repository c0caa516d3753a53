package project

import (
	"fmt"
	"strings"
	"unicode"
)

// Attribute is one free-form project field.
type Attribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// StandardAttributes are offered for editing on a new project.
var StandardAttributes = []string{"name", "width", "height", "depth", "units", "standard"}

// Attributes is an insertion-ordered attribute bag.
type Attributes struct {
	items []Attribute
}

// Get returns the value of name.
func (a *Attributes) Get(name string) (string, bool) {
	for _, it := range a.items {
		if it.Name == name {
			return it.Value, true
		}
	}
	return "", false
}

// Set updates name in place or appends it.
func (a *Attributes) Set(name, value string) {
	for i := range a.items {
		if a.items[i].Name == name {
			a.items[i].Value = value
			return
		}
	}
	a.items = append(a.items, Attribute{Name: name, Value: value})
}

// All returns a copy of the attributes in order.
func (a *Attributes) All() []Attribute {
	return append([]Attribute(nil), a.items...)
}

// CheckAttributeName reports whether name can be saved as an attribute of
// the project element: an XML name without a namespace prefix, not starting
// with "xml".
func CheckAttributeName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty", ErrInvalidAttributeName)
	}
	if strings.HasPrefix(strings.ToLower(name), "xml") {
		return fmt.Errorf("%w: %q is reserved", ErrInvalidAttributeName, name)
	}
	for i, r := range name {
		switch {
		case unicode.IsLetter(r), r == '_':
		case i > 0 && (unicode.IsDigit(r) || r == '-' || r == '.'):
		default:
			return fmt.Errorf("%w: %q", ErrInvalidAttributeName, name)
		}
	}
	return nil
}
