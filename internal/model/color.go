package model

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an RGB color. It marshals to and from "#rrggbb".
type Color struct {
	colorful.Color
}

// namedColors covers the handful of names that show up in hand-edited
// project and defaults files.
var namedColors = map[string]string{
	"black":   "#000000",
	"white":   "#ffffff",
	"red":     "#ff0000",
	"green":   "#008000",
	"lime":    "#00ff00",
	"blue":    "#0000ff",
	"yellow":  "#ffff00",
	"orange":  "#ffa500",
	"purple":  "#800080",
	"cyan":    "#00ffff",
	"magenta": "#ff00ff",
	"gray":    "#808080",
	"grey":    "#808080",
}

// ParseColor accepts "#rrggbb", "#rgb" or one of a few color names.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if hex, ok := namedColors[s]; ok {
		s = hex
	}
	if s != "" && s[0] != '#' {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return Color{c}, nil
}

// MustParseColor is ParseColor for constants; it panics on bad input.
func MustParseColor(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// RGB255 builds a Color from 8-bit components.
func RGB255(r, g, b uint8) Color {
	return Color{colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}}
}

// Hex returns the color as lowercase "#rrggbb".
func (c Color) Hex() string {
	return c.Clamped().Hex()
}

// IsZero reports whether the color was never set. Pure black set explicitly
// is indistinguishable, which matches how unset colors are filled in: they
// only ever get a palette color.
func (c Color) IsZero() bool {
	return c.R == 0 && c.G == 0 && c.B == 0
}

func (c Color) String() string { return c.Hex() }

// MarshalText implements encoding.TextMarshaler.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// PickFor returns a deterministic color for key. The same key always gets
// the same color; distinct keys spread around the hue circle.
func PickFor(key string) Color {
	h := fnv.New32a()
	h.Write([]byte(key))
	sum := h.Sum32()

	hue := float64(sum % 360)
	sat := 0.45 + float64((sum>>9)%40)/100
	val := 0.70 + float64((sum>>17)%25)/100
	return Color{colorful.Hsv(hue, sat, val)}
}
