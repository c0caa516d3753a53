package project

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/ironsheep/dss-annotator/internal/geometry"
	"github.com/ironsheep/dss-annotator/internal/model"
	"github.com/ironsheep/dss-annotator/internal/pipeline"
)

type fakeRenderer struct {
	mu    sync.Mutex
	views []View
}

func (f *fakeRenderer) RenderProject(v View) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.views = append(f.views, v)
	return nil
}

func (f *fakeRenderer) last() View {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.views[len(f.views)-1]
}

type fakePipelines struct {
	rules    []*model.Rule
	pipes    []pipeline.Pipe
	runs     []string
	requests map[string][]string
	failAdd  error
}

func (f *fakePipelines) AddRule(_ context.Context, r *model.Rule) (string, error) {
	if f.failAdd != nil {
		return "", f.failAdd
	}
	f.rules = append(f.rules, r)
	return pipeline.RuleName(r), nil
}

func (f *fakePipelines) AddPipe(_ context.Context, p pipeline.Pipe) error {
	f.pipes = append(f.pipes, p)
	return nil
}

func (f *fakePipelines) Rules(context.Context) ([]string, error) {
	var names []string
	for _, r := range f.rules {
		names = append(names, pipeline.RuleName(r))
	}
	return names, nil
}

func (f *fakePipelines) RunPipe(_ context.Context, name, item string, _ map[string]string) error {
	f.runs = append(f.runs, name+"@"+item)
	return nil
}

func (f *fakePipelines) RequestRules(_ context.Context, item string, rules []string) error {
	if f.requests == nil {
		f.requests = map[string][]string{}
	}
	f.requests[item] = rules
	return nil
}

var testFrame = geometry.Frame{
	DisplayWidth: 1000, DisplayHeight: 1000,
	SourceWidth: 2000, SourceHeight: 2000,
}

// newTestProject returns a project with a 1000x1000 working image.
func newTestProject(t *testing.T) (*Project, *fakeRenderer, *fakePipelines) {
	t.Helper()
	r := &fakeRenderer{}
	pl := &fakePipelines{}
	p := New(Options{Renderer: r, Pipelines: pl, VerticalCorrection: 150})
	p.SetWorkingImage(Working{Path: "/tmp/a.png", Hash: "abc", Frame: testFrame})
	return p, r, pl
}

func TestClick_CreatesAndExtendsGroup(t *testing.T) {
	p, _, _ := newTestProject(t)

	first, err := p.Click(150, 150)
	if err != nil {
		t.Fatal(err)
	}
	if !first.Created || !first.Added {
		t.Fatalf("first click = %+v, want created and added", first)
	}
	if first.Cell != (geometry.Rect{X: 100, Y: 100, X2: 200, Y2: 200}) {
		t.Errorf("cell = %v", first.Cell)
	}

	second, _ := p.Click(250, 150)
	if second.Created || second.Group != first.Group {
		t.Errorf("neighbouring click = %+v, want to join %s", second, first.Group)
	}

	third, _ := p.Click(150, 150)
	if third.Added {
		t.Error("clicking a selected cell should deselect it")
	}
	g, err := p.Group(first.Group)
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Regions) != 1 || g.Regions[0] != (geometry.Rect{X: 200, Y: 100, X2: 300, Y2: 200}) {
		t.Errorf("regions = %v", g.Regions)
	}
	if g.Source != "abc" || g.Frame != testFrame {
		t.Errorf("group source/frame = %q %+v", g.Source, g.Frame)
	}

	far, _ := p.Click(750, 750)
	if !far.Created {
		t.Error("distant click should start a new group")
	}
	if n := len(p.Groups()); n != 2 {
		t.Errorf("groups = %d, want 2", n)
	}
}

func TestClick_Errors(t *testing.T) {
	p := New(Options{})
	if _, err := p.Click(10, 10); !errors.Is(err, ErrNoWorkingImage) {
		t.Errorf("err = %v, want ErrNoWorkingImage", err)
	}

	p, _, _ = newTestProject(t)
	res, err := p.Click(1500, 10)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Ignored || len(p.Groups()) != 0 {
		t.Errorf("outside click = %+v with %d groups", res, len(p.Groups()))
	}
}

func TestSegmentAndLine(t *testing.T) {
	tests := []struct {
		name    string
		run     func(p *Project) ([]ClickResult, error)
		regions int
	}{
		{
			name: "horizontal drag",
			run: func(p *Project) ([]ClickResult, error) {
				return p.Segment(110, 150, 390, 160)
			},
			regions: 3,
		},
		{
			name: "vertical drag backwards",
			run: func(p *Project) ([]ClickResult, error) {
				return p.Segment(150, 390, 160, 110)
			},
			regions: 3,
		},
		{
			name: "diagonal drag is ignored",
			run: func(p *Project) ([]ClickResult, error) {
				return p.Segment(100, 100, 200, 200)
			},
			regions: 0,
		},
		{
			name: "whole row",
			run: func(p *Project) ([]ClickResult, error) {
				return p.Line(450, 450, geometry.AxisX)
			},
			regions: 10,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _, _ := newTestProject(t)
			if _, err := tt.run(p); err != nil {
				t.Fatal(err)
			}
			groups := p.Groups()
			total := 0
			for _, g := range groups {
				total += len(g.Regions)
			}
			if total != tt.regions {
				t.Errorf("regions = %d, want %d", total, tt.regions)
			}
			if tt.regions > 0 && len(groups) != 1 {
				t.Errorf("groups = %d, want 1", len(groups))
			}
		})
	}
}

func TestRedraw(t *testing.T) {
	p, _, _ := newTestProject(t)
	res, _ := p.Click(150, 150)
	p.Click(250, 150)

	if err := p.BeginRedraw(res.Group); err != nil {
		t.Fatal(err)
	}
	r1, _ := p.Click(10, 20)
	if !r1.Redraw || r1.RedrawDone {
		t.Errorf("first corner = %+v", r1)
	}
	r2, _ := p.Click(300, 400)
	if !r2.RedrawDone {
		t.Errorf("second corner = %+v", r2)
	}
	g, _ := p.Group(res.Group)
	want := geometry.NewRect(10, 20, 300, 400)
	if len(g.Regions) != 1 || g.Regions[0] != want {
		t.Errorf("regions = %v, want [%v]", g.Regions, want)
	}
	if _, active := p.RedrawGroup(); active {
		t.Error("redraw mode should end after two corners")
	}

	if err := p.BeginRedraw("missing"); !errors.Is(err, ErrGroupNotFound) {
		t.Errorf("err = %v, want ErrGroupNotFound", err)
	}
}

func TestRenameGroup_QueuesStaleAndAppliesDefault(t *testing.T) {
	p, _, _ := newTestProject(t)
	saved := model.NewDefaults()
	saved.Set(model.DefaultGroup, "bolt", model.MustParseColor("#112233"))
	p.SetSavedDefaults(saved)

	res, _ := p.Click(150, 150)
	if err := p.RenameGroup(res.Group, "bolt"); err != nil {
		t.Fatal(err)
	}
	g, err := p.Group("bolt")
	if err != nil {
		t.Fatal(err)
	}
	if g.Color.Hex() != "#112233" {
		t.Errorf("color = %s, want default #112233", g.Color.Hex())
	}

	o := p.TakeOverlay()
	if len(o.Stale) != 1 || o.Stale[0] != res.Group {
		t.Errorf("stale = %v, want [%s]", o.Stale, res.Group)
	}
	if o := p.TakeOverlay(); len(o.Stale) != 0 {
		t.Errorf("stale queue not drained: %v", o.Stale)
	}

	p.Click(750, 750)
	other := p.Groups()[1].Name
	if err := p.RenameGroup(other, "bolt"); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("err = %v, want ErrDuplicateName", err)
	}

	if err := p.RemoveGroup("bolt"); err != nil {
		t.Fatal(err)
	}
	if o := p.TakeOverlay(); len(o.Stale) != 1 || o.Stale[0] != "bolt" {
		t.Errorf("stale after remove = %v", o.Stale)
	}
}

func TestCategories(t *testing.T) {
	p, r, _ := newTestProject(t)

	for _, name := range []string{"bolts", "nuts"} {
		if err := p.AddCategory(model.NewCategory(name)); err != nil {
			t.Fatal(err)
		}
	}
	if err := p.AddCategory(model.NewCategory("nuts")); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("err = %v, want ErrDuplicateName", err)
	}

	state, err := p.SetCategoryRange("bolts", "III", "X")
	if err != nil || state != model.RangeActive {
		t.Fatalf("range = %v, %v", state, err)
	}
	if got := r.last().Categories["bolts"]; got != 7 {
		t.Errorf("rendered amount = %d, want 7", got)
	}

	state, err = p.SetCategoryRange("bolts", "abc", "5")
	if err != nil || state != model.RangeInvalid {
		t.Fatalf("bad range = %v, %v", state, err)
	}
	c, _ := p.Category("bolts")
	if c.RoughAmount != 7 {
		t.Errorf("amount after bad range = %d, want 7", c.RoughAmount)
	}

	if err := p.SetCategoryOrder("nuts", -1); err != nil {
		t.Fatal(err)
	}
	if got := r.last().CategoryOrder; strings.Join(got, ",") != "nuts,bolts" {
		t.Errorf("order = %v", got)
	}

	if err := p.RenameCategory("bolts", "screws"); err != nil {
		t.Fatal(err)
	}
	d := p.Derived()
	if _, ok := d.Palette["bolts"]; ok {
		t.Error("old name still in palette")
	}
	if d.Categories["screws"] != 7 {
		t.Errorf("renamed amount = %d", d.Categories["screws"])
	}

	if err := p.RemoveCategory("screws"); err != nil {
		t.Fatal(err)
	}
	if _, ok := p.CategoryColor("screws"); ok {
		t.Error("removed category still has a color")
	}
	if err := p.RemoveCategory("screws"); !errors.Is(err, ErrCategoryNotFound) {
		t.Errorf("err = %v, want ErrCategoryNotFound", err)
	}
}

func TestAddRule_GroupSourceGeneratesPipe(t *testing.T) {
	p, _, pl := newTestProject(t)
	res, _ := p.Click(150, 150)
	if err := p.RenameGroup(res.Group, "label"); err != nil {
		t.Fatal(err)
	}
	p.AddThumbnail("glworb:1")
	p.AddThumbnail("/tmp/a.png")

	out, err := p.AddRule(context.Background(), "label", "~~", []string{"Foo"}, "type", "bolt")
	if err != nil {
		t.Fatal(err)
	}
	if out.Pipe == nil {
		t.Fatal("no pipe generated")
	}
	// Region {100,100,200,200} doubled and flipped in a 2000 high source.
	want := pipeline.Pipe{X: 200, Y: 1800 - 150, W: 200, H: 200, GroupName: "label", KeyName: "label"}
	want.Name = pipeline.PipeName(want.X, want.Y, want.W, want.H)
	if *out.Pipe != want {
		t.Errorf("pipe = %+v, want %+v", *out.Pipe, want)
	}
	if !strings.HasSuffix(out.Pipe.String(), "label_rule_test_binary label\n}") {
		t.Errorf("OCR text should land in the rule's source field:\n%s", out.Pipe.String())
	}
	if len(pl.runs) != 1 || pl.runs[0] != want.Name+"@glworb:1" {
		t.Errorf("runs = %v", pl.runs)
	}
	if len(pl.requests["glworb:1"]) != 1 {
		t.Errorf("requests = %v", pl.requests)
	}
	if _, ok := pl.requests["/tmp/a.png"]; ok {
		t.Error("file thumbnails must not be sent to the rules service")
	}

	plain, err := p.AddRule(context.Background(), "colour", "is", []string{"str"}, "kind", "x")
	if err != nil {
		t.Fatal(err)
	}
	if plain.Pipe != nil {
		t.Error("rule on a plain field should not create a pipe")
	}
	if n := len(p.Rules()); n != 2 {
		t.Errorf("rules = %d, want 2", n)
	}
}

func TestAddRule_Validation(t *testing.T) {
	p, _, _ := newTestProject(t)
	ctx := context.Background()

	if _, err := p.AddRule(ctx, "a", "between", []string{"1"}, "b", "c"); !errors.Is(err, model.ErrParameterCount) {
		t.Errorf("err = %v, want ErrParameterCount", err)
	}
	if _, err := p.AddRule(ctx, "a", "matches", nil, "b", "c"); !errors.Is(err, model.ErrParameterCount) {
		t.Errorf("err = %v, want ErrParameterCount for a rule without parameters", err)
	}
	if _, err := p.AddRule(ctx, "a", "matches", []string{"x", "y", "z"}, "b", "c"); err != nil {
		t.Errorf("unknown symbols should be stored, got %v", err)
	}
	if n := len(p.Rules()); n != 1 {
		t.Errorf("rules = %d, want 1", n)
	}
}

func TestAddRule_CollaboratorFailureBecomesStatus(t *testing.T) {
	p, _, pl := newTestProject(t)
	pl.failAdd = errors.New("connection refused")

	if _, err := p.AddRule(context.Background(), "a", "~~", []string{"x"}, "b", "c"); err != nil {
		t.Fatalf("collaborator failure returned %v", err)
	}
	if len(p.Rules()) != 1 {
		t.Error("rule should be kept")
	}
	status := p.Status()
	if len(status) == 0 || !strings.Contains(status[len(status)-1].Message, "connection refused") {
		t.Errorf("status = %+v", status)
	}
}

func TestRemoveThumbnail(t *testing.T) {
	tests := []struct {
		name       string
		thumbs     []string
		working    string
		remove     string
		fallback   string
		wasWorking bool
	}{
		{"previous thumbnail", []string{"a", "b", "c"}, "b", "b", "a", true},
		{"first falls to new first", []string{"a", "b"}, "a", "a", "b", true},
		{"last one clears", []string{"a"}, "a", "a", "", true},
		{"not working", []string{"a", "b"}, "a", "b", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(Options{})
			for _, th := range tt.thumbs {
				p.AddThumbnail(th)
			}
			p.SetWorkingImage(Working{Path: tt.working, Hash: "h-" + tt.working})
			fallback, was := p.RemoveThumbnail(tt.remove)
			if fallback != tt.fallback || was != tt.wasWorking {
				t.Errorf("RemoveThumbnail() = %q, %v; want %q, %v", fallback, was, tt.fallback, tt.wasWorking)
			}
			if tt.wasWorking && tt.fallback == "" && p.Working().Hash != "" {
				t.Error("working image not cleared")
			}
		})
	}
}

func TestHideImageResetsOnSwitch(t *testing.T) {
	p, _, _ := newTestProject(t)
	if hidden, _ := p.ToggleHideImage(); !hidden {
		t.Fatal("expected hidden")
	}
	p.SetWorkingImage(Working{Path: "/tmp/a.png", Hash: "abc", Frame: testFrame})
	if !p.ImageHidden() {
		t.Error("same image should stay hidden")
	}
	p.SetWorkingImage(Working{Path: "/tmp/b.png", Hash: "def", Frame: testFrame})
	if p.ImageHidden() {
		t.Error("new image should be shown")
	}
}

func TestGridSpacing(t *testing.T) {
	p, _, _ := newTestProject(t)
	if got := p.AdjustGridSpacing(-10); got != 90 {
		t.Errorf("spacing = %d, want 90", got)
	}
	if got := p.SetGridSpacing(-5); got != 1 {
		t.Errorf("spacing = %d, want 1", got)
	}
}

func TestDefaultEntries(t *testing.T) {
	p, _, _ := newTestProject(t)
	saved := model.NewDefaults()
	saved.Set(model.DefaultCategory, "nuts", model.MustParseColor("#000001"))
	saved.Set(model.DefaultCategory, "old", model.MustParseColor("#000002"))
	p.SetSavedDefaults(saved)

	c := model.NewCategory("nuts")
	c.Color = model.MustParseColor("#ff0000")
	if err := p.AddCategory(c); err != nil {
		t.Fatal(err)
	}
	p.RecolorCategory("nuts", model.MustParseColor("#00ff00"))

	entries := p.DefaultEntries()
	if len(entries) != 2 {
		t.Fatalf("entries = %+v", entries)
	}
	if entries[0].Name != "nuts" || entries[0].Color.Hex() != "#00ff00" {
		t.Errorf("live entry = %+v", entries[0])
	}
	if entries[1].Name != "old" {
		t.Errorf("saved entry = %+v", entries[1])
	}
}

func TestSnapshotRestore(t *testing.T) {
	p, _, _ := newTestProject(t)
	if err := p.SetAttribute("name", "widget"); err != nil {
		t.Fatal(err)
	}
	res, _ := p.Click(150, 150)
	p.AddCategory(model.NewCategory("bolts"))
	p.AddThumbnail("/tmp/a.png")

	snap := p.Snapshot()

	q := New(Options{})
	q.Restore(snap)
	q.Restore(snap)
	if n := len(q.Groups()); n != 1 {
		t.Errorf("groups = %d, want 1 after restoring twice", n)
	}
	if n := len(q.Categories()); n != 1 {
		t.Errorf("categories = %d, want 1", n)
	}
	if _, err := q.Group(res.Group); err != nil {
		t.Error(err)
	}
	if got := q.PublishKey(); got != "project:widget" {
		t.Errorf("PublishKey() = %q", got)
	}
	if s := q.Session(); s.WorkingImage != "/tmp/a.png" || len(s.Thumbnails) != 1 {
		t.Errorf("session = %+v", s)
	}
}

func TestSetAttribute_Names(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"name", false},
		{"shelf_location", false},
		{"rev-2.1", false},
		{"", true},
		{"shelf location", true},
		{"2nd", true},
		{"a:b", true},
		{"xmlns", true},
		{"a\"b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _, _ := newTestProject(t)
			err := p.SetAttribute(tt.name, "v")
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidAttributeName) {
					t.Fatalf("err = %v, want ErrInvalidAttributeName", err)
				}
				if _, ok := p.Attribute(tt.name); ok {
					t.Error("rejected attribute was stored")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if v, _ := p.Attribute(tt.name); v != "v" {
				t.Errorf("value = %q, want v", v)
			}
		})
	}
}
