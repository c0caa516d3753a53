package persist

import (
	"log"
	"strconv"
	"strings"

	"github.com/ironsheep/dss-annotator/internal/geometry"
	"github.com/ironsheep/dss-annotator/internal/model"
)

// Group converts the element into a group. The frame comes from the
// display size and the optional offset and source attributes; files
// without them get zero offsets and a source size equal to the display
// size. The group's source is that of its first region.
func (el GroupElement) Group() *model.Group {
	frame := geometry.Frame{
		DisplayWidth:  atoiOr(el.Width, 0),
		DisplayHeight: atoiOr(el.Height, 0),
		OffsetX:       atoiOr(el.DisplayOffsetX, 0),
		OffsetY:       atoiOr(el.DisplayOffsetY, 0),
	}
	frame.SourceWidth = atoiOr(el.SourceWidth, frame.DisplayWidth)
	frame.SourceHeight = atoiOr(el.SourceHeight, frame.DisplayHeight)

	source := ""
	if len(el.Regions) > 0 {
		source = el.Regions[0].Source
	}
	g := model.NewGroup(el.Name, source, frame)
	if c, err := model.ParseColor(el.Color); err == nil {
		g.Color = c
	} else if el.Color != "" {
		log.Printf("group %s: %v, using palette color", g.Name, err)
	}
	for i, r := range el.Regions {
		rect, err := r.Rect()
		if err != nil {
			log.Printf("group %s: skipping region %d: %v", g.Name, i, err)
			continue
		}
		g.AddRegion(rect)
	}
	return g
}

// Rect reads the region, preferring x2/y2 and falling back to x+width and
// y+height.
func (el RegionElement) Rect() (geometry.Rect, error) {
	x, err := atoi("x", el.X)
	if err != nil {
		return geometry.Rect{}, err
	}
	y, err := atoi("y", el.Y)
	if err != nil {
		return geometry.Rect{}, err
	}
	x2, y2 := 0, 0
	if el.X2 != "" && el.Y2 != "" {
		if x2, err = atoi("x2", el.X2); err != nil {
			return geometry.Rect{}, err
		}
		if y2, err = atoi("y2", el.Y2); err != nil {
			return geometry.Rect{}, err
		}
	} else {
		w, err := atoi("width", el.Width)
		if err != nil {
			return geometry.Rect{}, err
		}
		h, err := atoi("height", el.Height)
		if err != nil {
			return geometry.Rect{}, err
		}
		x2, y2 = x+w, y+h
	}
	return geometry.Rect{X: x, Y: y, X2: x2, Y2: y2}, nil
}

// Category converts the element into a category. A missing or bad order
// reads as 0, a bad amount as 0. The range state is active when both
// endpoints parse.
func (el CategoryElement) Category() *model.Category {
	c := model.NewCategory(el.Name)
	if col, err := model.ParseColor(el.Color); err == nil {
		c.Color = col
	} else if el.Color != "" {
		log.Printf("category %s: %v, using palette color", c.Name, err)
	}
	c.RoughAmount = atoiOr(el.RoughAmount, 0)
	order, err := strconv.ParseFloat(strings.TrimSpace(el.RoughOrder), 64)
	if err != nil {
		order = 0
	}
	c.SetOrder(order)
	c.RoughAmountStart = el.RoughAmountStart
	c.RoughAmountEnd = el.RoughAmountEnd
	if _, err := model.DeriveAmountFromRange(el.RoughAmountStart, el.RoughAmountEnd); err == nil {
		c.Range = model.RangeActive
	}
	return c
}

func atoi(name, s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, &AttrError{Attr: name, Value: s}
	}
	return n, nil
}

func atoiOr(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}

// AttrError reports an attribute that is not an integer.
type AttrError struct {
	Attr  string
	Value string
}

func (e *AttrError) Error() string {
	return "attribute " + e.Attr + " is not an integer: " + strconv.Quote(e.Value)
}
