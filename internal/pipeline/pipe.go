// Package pipeline turns rules on groups into crop and OCR pipes.
package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ironsheep/dss-annotator/internal/geometry"
	"github.com/ironsheep/dss-annotator/internal/model"
)

// DefaultVerticalCorrection is the calibrated amount subtracted from the
// scaled y of every generated crop.
const DefaultVerticalCorrection = 150

// Step names in the pipe language.
const (
	StepCropToKey = "img_crop_to_key"
	StepOCRKey    = "img_ocr_key"
)

// ErrEmptyGroup is returned when a pipe is requested for a group without
// regions or without a usable frame.
var ErrEmptyGroup = errors.New("group has no scalable regions")

// ErrBadPipe is returned by ParsePipe for malformed pipe text.
var ErrBadPipe = errors.New("malformed pipe")

// Pipe crops a group's bounding box out of a source image and reads its
// text into a field.
type Pipe struct {
	Name      string `json:"name"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	W         int    `json:"w"`
	H         int    `json:"h"`
	GroupName string `json:"group_name"`
	KeyName   string `json:"key_name"`
}

// PipeName returns "p" followed by the hex SHA-224 of the concatenated
// decimal x, y, w and h.
func PipeName(x, y, w, h int) string {
	sum := sha256.Sum224([]byte(fmt.Sprintf("%d%d%d%d", x, y, w, h)))
	return "p" + hex.EncodeToString(sum[:])
}

// NewPipe builds the pipe for group g writing OCR text to keyName. The crop
// is the group's scaled bounding rectangle with verticalCorrection
// subtracted from y.
func NewPipe(g *model.Group, keyName string, verticalCorrection int) (Pipe, error) {
	_, r, ok := g.ScaledBoundingRectangle()
	if !ok {
		return Pipe{}, fmt.Errorf("%s: %w", g.Name, ErrEmptyGroup)
	}
	p := Pipe{
		X:         r.X,
		Y:         r.Y - verticalCorrection,
		W:         r.W,
		H:         r.H,
		GroupName: g.Name,
		KeyName:   keyName,
	}
	p.Name = PipeName(p.X, p.Y, p.W, p.H)
	return p, nil
}

// BinaryKey is the intermediate key the crop step writes.
func (p Pipe) BinaryKey() string {
	return p.GroupName + "_rule_test_binary"
}

// Rect returns the crop rectangle in top-left-origin source pixels.
func (p Pipe) Rect() geometry.XYWH {
	return geometry.XYWH{X: p.X, Y: p.Y, W: p.W, H: p.H}
}

// String renders the pipe in the pipe language.
func (p Pipe) String() string {
	return fmt.Sprintf("pipe %s { %s %d %d %d %d %s\n %s %s %s\n}",
		p.Name,
		StepCropToKey, p.X, p.Y, p.W, p.H, p.BinaryKey(),
		StepOCRKey, p.BinaryKey(), p.KeyName)
}

// Step is one call in a parsed pipe.
type Step struct {
	Call string   `json:"call"`
	Args []string `json:"args"`
}

// Program is a parsed pipe.
type Program struct {
	Name  string `json:"name"`
	Steps []Step `json:"steps"`
}

// ParsePipe parses "pipe NAME { call args...\n call args...\n }".
func ParsePipe(s string) (Program, error) {
	s = strings.TrimSpace(s)
	open := strings.Index(s, "{")
	if !strings.HasPrefix(s, "pipe ") || open < 0 || !strings.HasSuffix(s, "}") {
		return Program{}, fmt.Errorf("%w: %q", ErrBadPipe, s)
	}
	name := strings.TrimSpace(s[len("pipe "):open])
	if name == "" || strings.ContainsAny(name, " \t") {
		return Program{}, fmt.Errorf("%w: bad name %q", ErrBadPipe, name)
	}
	prog := Program{Name: name}
	body := s[open+1 : len(s)-1]
	for _, line := range strings.Split(body, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		prog.Steps = append(prog.Steps, Step{Call: fields[0], Args: fields[1:]})
	}
	if len(prog.Steps) == 0 {
		return Program{}, fmt.Errorf("%w: %s has no steps", ErrBadPipe, name)
	}
	return prog, nil
}

// IntArgs converts the first n arguments to integers.
func (s Step) IntArgs(n int) ([]int, error) {
	if len(s.Args) < n {
		return nil, fmt.Errorf("%s: want %d arguments, got %d", s.Call, n, len(s.Args))
	}
	out := make([]int, n)
	for i := 0; i < n; i++ {
		v, err := strconv.Atoi(s.Args[i])
		if err != nil {
			return nil, fmt.Errorf("%s argument %d: %w", s.Call, i, err)
		}
		out[i] = v
	}
	return out, nil
}
