package model

import "errors"

var (
	// ErrInvalidRange is returned when a range endpoint is neither an
	// integer nor a roman numeral.
	ErrInvalidRange = errors.New("invalid range value")

	// ErrInvalidRoman is returned for malformed roman numerals.
	ErrInvalidRoman = errors.New("invalid roman numeral")

	// ErrInvalidColor is returned when a color string cannot be parsed.
	ErrInvalidColor = errors.New("invalid color")

	// ErrUnknownComparator is returned when validating parameters for a
	// symbol that has no parameter shape.
	ErrUnknownComparator = errors.New("unknown comparator symbol")

	// ErrParameterCount is returned when a comparator gets the wrong number
	// of parameters.
	ErrParameterCount = errors.New("wrong number of comparator parameters")
)
