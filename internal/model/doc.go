// Package model defines the annotation data model: groups of rectangular
// regions, categories with rough counts, and comparison rules.
//
// Types in this package are plain values with methods; they hold no locks.
// The project package owns the live instances and serializes every mutation,
// so callers outside of it should treat these types as read-only snapshots.
//
// # Groups
//
// A Group is a named, colored set of regions drawn on one source image. It
// carries the geometry.Frame of the display it was drawn in, which is what
// makes ScaledBoundingRectangle possible long after the display has changed.
//
// # Categories
//
// A Category is a classification bucket with a rough count. The count is
// either typed in directly or derived from a start/end range, where each end
// may be an integer or a roman numeral. A bad range never fails: it flags the
// category with RangeInvalid and leaves the last good count in place.
//
// # Rules
//
// A Rule maps a source field, a comparator and its parameters to a
// destination field and result. It renders to a canonical one-line string and
// to the XML fragment handed to the rule compiler.
package model
