package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/brandenc40/romannumeral"
)

// ParseRoman converts a canonical roman numeral (I to MMMCMXCIX) to an
// integer. Input is upper-cased first, so "xiv" is accepted. Numerals that
// do not format back to themselves, such as "IIII", are rejected.
func ParseRoman(s string) (int, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	n, err := romannumeral.ToInt(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRoman, s)
	}
	if back, err := romannumeral.FromInt(n); err != nil || back != s {
		return 0, fmt.Errorf("%w: %q is not canonical", ErrInvalidRoman, s)
	}
	return n, nil
}

// ParseRangeValue reads one endpoint of a category range: an integer, or
// failing that a roman numeral.
func ParseRangeValue(s string) (int, error) {
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		return n, nil
	}
	n, err := ParseRoman(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRange, s)
	}
	return n, nil
}
