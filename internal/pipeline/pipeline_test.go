package pipeline

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/ironsheep/dss-annotator/internal/geometry"
	"github.com/ironsheep/dss-annotator/internal/imagestore"
	"github.com/ironsheep/dss-annotator/internal/kv"
	"github.com/ironsheep/dss-annotator/internal/model"
)

func testGroup() *model.Group {
	g := model.NewGroup("label", "hash", geometry.Frame{
		OffsetX: 50, OffsetY: 20,
		DisplayWidth: 500, DisplayHeight: 400,
		SourceWidth: 1000, SourceHeight: 800,
	})
	g.AddRegion(geometry.Rect{X: 150, Y: 100, X2: 250, Y2: 300})
	return g
}

func TestNewPipe(t *testing.T) {
	p, err := NewPipe(testGroup(), "serial", DefaultVerticalCorrection)
	if err != nil {
		t.Fatal(err)
	}
	want := Pipe{X: 200, Y: 450, W: 200, H: 400, GroupName: "label", KeyName: "serial"}
	want.Name = PipeName(200, 450, 200, 400)
	if p != want {
		t.Errorf("NewPipe() = %+v, want %+v", p, want)
	}
	if !strings.HasPrefix(p.Name, "p") || len(p.Name) != 1+56 {
		t.Errorf("Name = %q", p.Name)
	}
}

func TestNewPipe_VerticalCorrectionIsConfigurable(t *testing.T) {
	p, err := NewPipe(testGroup(), "serial", 0)
	if err != nil {
		t.Fatal(err)
	}
	if p.Y != 600 {
		t.Errorf("Y = %d, want 600", p.Y)
	}
}

func TestNewPipe_EmptyGroup(t *testing.T) {
	g := model.NewGroup("empty", "", geometry.Frame{DisplayWidth: 1, DisplayHeight: 1})
	if _, err := NewPipe(g, "k", 0); !errors.Is(err, ErrEmptyGroup) {
		t.Errorf("err = %v, want ErrEmptyGroup", err)
	}
}

func TestPipe_String(t *testing.T) {
	p := Pipe{Name: "pabc", X: 1, Y: 2, W: 3, H: 4, GroupName: "g", KeyName: "serial"}
	want := "pipe pabc { img_crop_to_key 1 2 3 4 g_rule_test_binary\n img_ocr_key g_rule_test_binary serial\n}"
	if got := p.String(); got != want {
		t.Errorf("String() = %q\nwant %q", got, want)
	}
}

func TestParsePipe(t *testing.T) {
	p := Pipe{Name: "pabc", X: 1, Y: -2, W: 3, H: 4, GroupName: "g", KeyName: "serial"}
	prog, err := ParsePipe(p.String())
	if err != nil {
		t.Fatal(err)
	}
	if prog.Name != "pabc" || len(prog.Steps) != 2 {
		t.Fatalf("prog = %+v", prog)
	}
	args, err := prog.Steps[0].IntArgs(4)
	if err != nil || args[1] != -2 {
		t.Errorf("IntArgs = %v, %v", args, err)
	}
	if prog.Steps[1].Call != StepOCRKey || prog.Steps[1].Args[1] != "serial" {
		t.Errorf("step 2 = %+v", prog.Steps[1])
	}

	for _, bad := range []string{"", "pipe { x }", "pipe a b { x }", "pipe a { }", "notpipe a { x }"} {
		if _, err := ParsePipe(bad); !errors.Is(err, ErrBadPipe) {
			t.Errorf("ParsePipe(%q) err = %v, want ErrBadPipe", bad, err)
		}
	}
}

func TestCropSteps(t *testing.T) {
	g := model.NewGroup("g", "", geometry.Frame{})
	g.AddRegion(geometry.Rect{X: 0, Y: 100, X2: 100, Y2: 200})
	g.AddRegion(geometry.Rect{X: 100, Y: 100, X2: 200, Y2: 250})

	steps := CropSteps(g)
	if len(steps) != 2 {
		t.Fatalf("len = %d, want 2", len(steps))
	}
	var got []string
	for _, a := range steps[1].Arguments {
		got = append(got, a.Description+"="+a.Value)
	}
	want := "x=100 y=100 width=100 height=150 to key=g"
	if strings.Join(got, " ") != want {
		t.Errorf("args = %q, want %q", strings.Join(got, " "), want)
	}
}

type fakeOCR struct {
	text string
	seen []byte
}

func (f *fakeOCR) Text(data []byte) (string, error) {
	f.seen = data
	return f.text, nil
}

func TestService_RunPipe(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()

	var buf bytes.Buffer
	png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 100, 80)))
	mem.Set(ctx, "binary:1", buf.Bytes(), 0)
	mem.HSet(ctx, "glworb:1", map[string]string{"binary_key": "binary:1"})

	ocr := &fakeOCR{text: "M4"}
	svc := NewService(mem, time.Minute, ocr)
	p := Pipe{X: 10, Y: 20, W: 30, H: 40, GroupName: "g", KeyName: "serial"}
	p.Name = PipeName(p.X, p.Y, p.W, p.H)
	if err := svc.AddPipe(ctx, p); err != nil {
		t.Fatal(err)
	}

	env := map[string]string{"key": "binary_key", "key_prefix": "binary:"}
	if err := svc.RunPipe(ctx, p.Name, "glworb:1", env); err != nil {
		t.Fatalf("RunPipe() error: %v", err)
	}

	cropKey, _ := mem.HGet(ctx, "glworb:1", "g_rule_test_binary")
	if cropKey != "binary:glworb:1:g_rule_test_binary" {
		t.Errorf("crop key = %q", cropKey)
	}
	cropped, err := imagestore.Decode(ocr.seen)
	if err != nil {
		t.Fatal(err)
	}
	if b := cropped.Bounds(); b.Dx() != 30 || b.Dy() != 40 {
		t.Errorf("cropped size = %dx%d, want 30x40", b.Dx(), b.Dy())
	}
	if v, _ := mem.HGet(ctx, "glworb:1", "serial"); v != "M4" {
		t.Errorf("serial = %q, want M4", v)
	}
}

func TestService_RunPipeOutsideImage(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	var buf bytes.Buffer
	png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 10, 10)))
	mem.Set(ctx, "binary:1", buf.Bytes(), 0)
	mem.HSet(ctx, "glworb:1", map[string]string{"binary_key": "binary:1"})

	svc := NewService(mem, 0, &fakeOCR{})
	p := Pipe{X: 50, Y: 50, W: 5, H: 5, GroupName: "g", KeyName: "k"}
	p.Name = PipeName(p.X, p.Y, p.W, p.H)
	svc.AddPipe(ctx, p)
	if err := svc.RunPipe(ctx, p.Name, "glworb:1", nil); err == nil {
		t.Error("expected error for crop outside image")
	}
}

func TestService_Rules(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	svc := NewService(mem, 0, nil)

	r := model.NewRule("widget", "~~", []string{"Foo"}, "type", "bolt")
	name, err := svc.AddRule(ctx, r)
	if err != nil {
		t.Fatal(err)
	}
	stored, _ := mem.Get(ctx, RulePrefix+name)
	if string(stored) != `widget ~~ "Foo" -> type "bolt"` {
		t.Errorf("stored rule = %q", stored)
	}
	names, _ := svc.Rules(ctx)
	if len(names) != 1 || names[0] != name {
		t.Errorf("Rules() = %v", names)
	}
	if err := svc.RequestRules(ctx, "glworb:1", names); err != nil {
		t.Fatal(err)
	}
	if req, _ := mem.Get(ctx, RuleRequestPrefix+"glworb:1"); string(req) != name {
		t.Errorf("request = %q", req)
	}
}
