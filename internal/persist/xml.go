package persist

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/ironsheep/dss-annotator/internal/model"
	"github.com/ironsheep/dss-annotator/internal/pipeline"
	"github.com/ironsheep/dss-annotator/internal/project"
)

const indent = "  "

// ProjectElement is <project>. Attributes keep their order.
type ProjectElement struct {
	XMLName xml.Name   `xml:"project"`
	Attrs   []xml.Attr `xml:",any,attr"`
}

// SessionElement is <session>.
type SessionElement struct {
	XMLName      xml.Name       `xml:"session"`
	WorkingImage string         `xml:"working_image,attr,omitempty"`
	Thumbs       []ThumbElement `xml:"thumb"`
}

// ThumbElement is one loaded image of the session.
type ThumbElement struct {
	SourcePath string `xml:"source_path,attr"`
}

// GroupElement is <group>. Numbers are kept as text so that one bad
// attribute does not reject the file.
type GroupElement struct {
	XMLName        xml.Name        `xml:"group"`
	Name           string          `xml:"name,attr"`
	Color          string          `xml:"color,attr"`
	Width          string          `xml:"width,attr"`
	Height         string          `xml:"height,attr"`
	DisplayOffsetX string          `xml:"display_offset_x,attr,omitempty"`
	DisplayOffsetY string          `xml:"display_offset_y,attr,omitempty"`
	SourceWidth    string          `xml:"source_width,attr,omitempty"`
	SourceHeight   string          `xml:"source_height,attr,omitempty"`
	Regions        []RegionElement `xml:"region"`
}

// RegionElement is one <region> of a group.
type RegionElement struct {
	X      string `xml:"x,attr"`
	Y      string `xml:"y,attr"`
	X2     string `xml:"x2,attr,omitempty"`
	Y2     string `xml:"y2,attr,omitempty"`
	Width  string `xml:"width,attr"`
	Height string `xml:"height,attr"`
	Source string `xml:"source,attr"`
}

// SequenceElement is the <sequence> written after each group.
type SequenceElement struct {
	XMLName xml.Name      `xml:"sequence"`
	Name    string        `xml:"name,attr"`
	Steps   []StepElement `xml:"step"`
}

// StepElement is one <step> of a sequence.
type StepElement struct {
	Call      string            `xml:"call,attr"`
	Arguments []ArgumentElement `xml:"argument"`
}

// ArgumentElement is one <argument> of a step.
type ArgumentElement struct {
	Value       string `xml:"value,attr"`
	Description string `xml:"description,attr"`
}

// CategoryElement is <category>.
type CategoryElement struct {
	XMLName          xml.Name `xml:"category"`
	Name             string   `xml:"name,attr"`
	Color            string   `xml:"color,attr"`
	RoughAmount      string   `xml:"rough_amount,attr"`
	RoughAmountStart string   `xml:"rough_amount_start,attr,omitempty"`
	RoughAmountEnd   string   `xml:"rough_amount_end,attr,omitempty"`
	RoughOrder       string   `xml:"rough_order,attr"`
}

// Encode writes snap as an indented <machine> document.
func Encode(w io.Writer, snap project.Snapshot) error {
	enc := xml.NewEncoder(w)
	enc.Indent("", indent)

	root := xml.StartElement{Name: xml.Name{Local: "machine"}}
	if err := enc.EncodeToken(root); err != nil {
		return err
	}
	for _, el := range elements(snap) {
		if err := enc.Encode(el); err != nil {
			return fmt.Errorf("encode %T: %w", el, err)
		}
	}
	if err := enc.EncodeToken(root.End()); err != nil {
		return err
	}
	if err := enc.Flush(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// Marshal returns the encoded document.
func Marshal(snap project.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, snap); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// elements returns the children of <machine> in document order.
func elements(snap project.Snapshot) []any {
	out := []any{projectElement(snap.Attributes), sessionElement(snap.Session)}
	for _, g := range snap.Groups {
		out = append(out, groupElement(g), sequenceElement(g))
	}
	for _, r := range snap.Rules {
		out = append(out, r.XML())
	}
	for _, c := range snap.Categories {
		out = append(out, categoryElement(c))
	}
	return out
}

func projectElement(attrs []project.Attribute) ProjectElement {
	el := ProjectElement{}
	for _, a := range attrs {
		el.Attrs = append(el.Attrs, xml.Attr{Name: xml.Name{Local: a.Name}, Value: a.Value})
	}
	return el
}

func sessionElement(s project.Session) SessionElement {
	el := SessionElement{WorkingImage: s.WorkingImage}
	for _, t := range s.Thumbnails {
		if t != "" {
			el.Thumbs = append(el.Thumbs, ThumbElement{SourcePath: t})
		}
	}
	return el
}

func groupElement(g *model.Group) GroupElement {
	el := GroupElement{
		Name:           g.Name,
		Color:          g.Color.Hex(),
		Width:          strconv.Itoa(g.Frame.DisplayWidth),
		Height:         strconv.Itoa(g.Frame.DisplayHeight),
		DisplayOffsetX: strconv.Itoa(g.Frame.OffsetX),
		DisplayOffsetY: strconv.Itoa(g.Frame.OffsetY),
		SourceWidth:    strconv.Itoa(g.Frame.SourceWidth),
		SourceHeight:   strconv.Itoa(g.Frame.SourceHeight),
	}
	for _, r := range g.Regions {
		el.Regions = append(el.Regions, RegionElement{
			X:      strconv.Itoa(r.X),
			Y:      strconv.Itoa(r.Y),
			X2:     strconv.Itoa(r.X2),
			Y2:     strconv.Itoa(r.Y2),
			Width:  strconv.Itoa(r.Width()),
			Height: strconv.Itoa(r.Height()),
			Source: g.Source,
		})
	}
	return el
}

func sequenceElement(g *model.Group) SequenceElement {
	el := SequenceElement{Name: g.Name}
	for _, s := range pipeline.CropSteps(g) {
		step := StepElement{Call: s.Call}
		for _, a := range s.Arguments {
			step.Arguments = append(step.Arguments, ArgumentElement{Value: a.Value, Description: a.Description})
		}
		el.Steps = append(el.Steps, step)
	}
	return el
}

func categoryElement(c *model.Category) CategoryElement {
	return CategoryElement{
		Name:             c.Name,
		Color:            c.Color.Hex(),
		RoughAmount:      strconv.Itoa(c.RoughAmount),
		RoughAmountStart: c.RoughAmountStart,
		RoughAmountEnd:   c.RoughAmountEnd,
		RoughOrder:       FormatOrder(c.RoughOrder),
	}
}

// FormatOrder writes a rough order the way it is stored: the shortest
// decimal form, always with a fraction ("2.0", "0.5", "-1.25").
func FormatOrder(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return "0.0"
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Decode reads a project document. Only XML syntax errors are returned;
// malformed values are logged and skipped or defaulted.
func Decode(r io.Reader) (project.Snapshot, error) {
	var snap project.Snapshot
	d := xml.NewDecoder(r)
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return snap, nil
		}
		if err != nil {
			return snap, fmt.Errorf("parse project xml: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch se.Name.Local {
		case "project":
			// Read the attributes only; anything nested inside <project>
			// is picked up by the loop.
			for _, a := range se.Attr {
				snap.Attributes = append(snap.Attributes, project.Attribute{Name: a.Name.Local, Value: a.Value})
			}
		case "session":
			var el SessionElement
			if err := d.DecodeElement(&el, &se); err != nil {
				return snap, err
			}
			if el.WorkingImage != "" {
				snap.Session.WorkingImage = el.WorkingImage
			}
			for _, t := range el.Thumbs {
				if t.SourcePath != "" {
					snap.Session.Thumbnails = append(snap.Session.Thumbnails, t.SourcePath)
				}
			}
		case "group":
			var el GroupElement
			if err := d.DecodeElement(&el, &se); err != nil {
				return snap, err
			}
			snap.Groups = append(snap.Groups, el.Group())
		case "sequence":
			if err := d.Skip(); err != nil {
				return snap, err
			}
		case "rule":
			var el model.RuleElement
			if err := d.DecodeElement(&el, &se); err != nil {
				return snap, err
			}
			snap.Rules = append(snap.Rules, el.Rule())
		case "category":
			var el CategoryElement
			if err := d.DecodeElement(&el, &se); err != nil {
				return snap, err
			}
			snap.Categories = append(snap.Categories, el.Category())
		}
	}
}
