package model

import (
	"encoding/xml"
	"errors"
	"reflect"
	"sort"
	"testing"

	"github.com/ironsheep/dss-annotator/internal/geometry"
)

func regionSet(rs []geometry.Rect) []geometry.Rect {
	out := append([]geometry.Rect(nil), rs...)
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

func TestGroup_ToggleRegionIsItsOwnInverse(t *testing.T) {
	g := NewGroup("g", "hash", geometry.Frame{DisplayWidth: 100, DisplayHeight: 100})
	g.AddRegion(geometry.Rect{X: 0, Y: 0, X2: 10, Y2: 10})
	g.AddRegion(geometry.Rect{X: 10, Y: 0, X2: 20, Y2: 10})
	before := regionSet(g.Regions)

	cell := geometry.Rect{X: 20, Y: 0, X2: 30, Y2: 10}
	if !g.ToggleRegion(cell) {
		t.Fatal("first toggle should add")
	}
	if g.ToggleRegion(cell) {
		t.Fatal("second toggle should remove")
	}
	if got := regionSet(g.Regions); !reflect.DeepEqual(got, before) {
		t.Errorf("regions = %v, want %v", got, before)
	}
}

func TestGroup_AddRemoveRegion(t *testing.T) {
	g := NewGroup("", "", geometry.Frame{})
	if g.Name == "" {
		t.Fatal("empty name should be replaced by a uuid")
	}
	r := geometry.Rect{X: 1, Y: 2, X2: 3, Y2: 4}
	if !g.AddRegion(r) {
		t.Error("AddRegion() = false for a new region")
	}
	if g.AddRegion(r) {
		t.Error("AddRegion() = true for a duplicate")
	}
	if len(g.Regions) != 1 {
		t.Errorf("len(Regions) = %d, want 1", len(g.Regions))
	}
	if g.RemoveRegion(geometry.Rect{X: 9, Y: 9, X2: 10, Y2: 10}) {
		t.Error("RemoveRegion() = true for a missing region")
	}
	if !g.RemoveRegion(r) {
		t.Error("RemoveRegion() = false for a present region")
	}
	if _, ok := g.RegionRectangle(); ok {
		t.Error("RegionRectangle() ok for an empty group")
	}
}

func TestGroup_ScaledBoundingRectangle(t *testing.T) {
	g := NewGroup("g", "hash", geometry.Frame{
		OffsetX: 50, OffsetY: 20,
		DisplayWidth: 500, DisplayHeight: 400,
		SourceWidth: 1000, SourceHeight: 800,
	})
	g.AddRegion(geometry.Rect{X: 150, Y: 100, X2: 200, Y2: 200})
	g.AddRegion(geometry.Rect{X: 200, Y: 200, X2: 250, Y2: 300})

	_, xywh, ok := g.ScaledBoundingRectangle()
	if !ok {
		t.Fatal("ScaledBoundingRectangle() not ok")
	}
	want := geometry.XYWH{X: 200, Y: 600, W: 200, H: 400}
	if xywh != want {
		t.Errorf("xywh = %+v, want %+v", xywh, want)
	}
}

func TestFindGroup(t *testing.T) {
	first := NewGroup("first", "", geometry.Frame{})
	first.AddRegion(geometry.Rect{X: 0, Y: 0, X2: 100, Y2: 100})
	second := NewGroup("second", "", geometry.Frame{})
	second.AddRegion(geometry.Rect{X: 50, Y: 50, X2: 200, Y2: 200})
	far := NewGroup("far", "", geometry.Frame{})
	far.AddRegion(geometry.Rect{X: 500, Y: 500, X2: 600, Y2: 600})
	empty := NewGroup("empty", "", geometry.Frame{})

	groups := []*Group{empty, first, second, far}

	tests := []struct {
		name string
		x, y float64
		want *Group
	}{
		{"overlap resolves to first", 75, 75, first},
		{"only second", 150, 150, second},
		{"neighbour cell to the left", 650, 550, far},
		{"nothing near", 400, 900, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindGroup(groups, tt.x, tt.y, 100, 100)
			if got != tt.want {
				t.Errorf("FindGroup() = %v, want %v", name(got), name(tt.want))
			}
		})
	}
}

func name(g *Group) string {
	if g == nil {
		return "<nil>"
	}
	return g.Name
}

func TestCategory_UpdateRange(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		wantAmount int
		wantState  RangeState
	}{
		{"integers", "5", "12", 7, RangeActive},
		{"roman", "III", "X", 7, RangeActive},
		{"lowercase roman", "iii", "x", 7, RangeActive},
		{"mixed", "2", "X", 8, RangeActive},
		{"malformed start", "abc", "5", 42, RangeInvalid},
		{"malformed end", "5", "", 42, RangeInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCategory("c")
			c.SetAmount(42)
			ok := c.UpdateRange(tt.start, tt.end)
			if ok != (tt.wantState == RangeActive) {
				t.Errorf("UpdateRange() = %v", ok)
			}
			if c.RoughAmount != tt.wantAmount {
				t.Errorf("RoughAmount = %d, want %d", c.RoughAmount, tt.wantAmount)
			}
			if c.Range != tt.wantState {
				t.Errorf("Range = %v, want %v", c.Range, tt.wantState)
			}
			if tt.wantState == RangeInvalid && (c.RoughAmountStart != "" || c.RoughAmountEnd != "") {
				t.Errorf("invalid range stored endpoints %q %q", c.RoughAmountStart, c.RoughAmountEnd)
			}
		})
	}
}

func TestDeriveAmountFromRange_Error(t *testing.T) {
	_, err := DeriveAmountFromRange("abc", "5")
	if !errors.Is(err, ErrInvalidRange) {
		t.Errorf("err = %v, want ErrInvalidRange", err)
	}
}

func TestCategoryList_StableReorder(t *testing.T) {
	var l CategoryList
	for _, c := range []struct {
		name  string
		order float64
	}{{"a", 2.0}, {"b", 0.5}, {"c", 2.0}} {
		cat := NewCategory(c.name)
		cat.SetOrder(c.order)
		l.Add(cat)
	}

	var got []string
	for _, c := range l.Items() {
		got = append(got, c.Name)
	}
	want := []string{"b", "a", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestCategoryList_AddAppendsByDefault(t *testing.T) {
	var l CategoryList
	l.Add(NewCategory("x"))
	l.Add(NewCategory("y"))
	y, ok := l.Get("y")
	if !ok {
		t.Fatal("Get(y) not found")
	}
	if y.RoughOrder != 1 {
		t.Errorf("RoughOrder = %v, want 1", y.RoughOrder)
	}
	if !l.Remove("x") || l.Remove("x") {
		t.Error("Remove should succeed once")
	}
	if l.Len() != 1 {
		t.Errorf("Len() = %d, want 1", l.Len())
	}
}

func TestRule_String(t *testing.T) {
	tests := []struct {
		name string
		rule Rule
		want string
	}{
		{
			name: "case insensitive equals",
			rule: Rule{SourceField: "widget", Symbol: "~~", Params: []string{"Foo"}, DestField: "type", Result: "bolt"},
			want: `widget ~~ "Foo" -> type "bolt"`,
		},
		{
			name: "already quoted",
			rule: Rule{SourceField: "widget", Symbol: "~~", Params: []string{`"Foo"`}, DestField: "type", Result: `"bolt"`},
			want: `widget ~~ "Foo" -> type "bolt"`,
		},
		{
			name: "between leaves params bare",
			rule: Rule{SourceField: "year", Symbol: "between", Params: []string{"1900", "1950"}, DestField: "era", Result: ""},
			want: `year between 1900 1950 -> era ""`,
		},
		{
			name: "no params",
			rule: Rule{SourceField: "a", Symbol: "~~", DestField: "b", Result: "c"},
			want: `a ~~  -> b "c"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rule.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRule_StringDoesNotMutateParams(t *testing.T) {
	r := NewRule("widget", "~~", []string{"Foo"}, "type", "bolt")
	_ = r.String()
	if r.Params[0] != "Foo" {
		t.Errorf("Params[0] = %q, want Foo", r.Params[0])
	}
}

func TestRule_XML(t *testing.T) {
	r := NewRule("year", "between", []string{"1900", "1950"}, "era", "early")
	b, err := r.MarshalFragment()
	if err != nil {
		t.Fatal(err)
	}
	want := `<rule source="year" destination="era" result="early">` +
		`<parameter symbol="between" values="1900"></parameter>` +
		`<parameter symbol="between" values="1950"></parameter></rule>`
	if string(b) != want {
		t.Errorf("fragment = %s\nwant %s", b, want)
	}

	var e RuleElement
	if err := xml.Unmarshal(b, &e); err != nil {
		t.Fatal(err)
	}
	back := e.Rule()
	if back.Symbol != r.Symbol || !reflect.DeepEqual(back.Params, r.Params) || back.Result != r.Result {
		t.Errorf("decoded %+v, want %+v", back, r)
	}
}

func TestCheckParams(t *testing.T) {
	tests := []struct {
		symbol  string
		params  []string
		wantErr error
		ok      bool
	}{
		{"~~", []string{"x"}, nil, true},
		{"~~", nil, ErrParameterCount, false},
		{"is", []string{"roman"}, nil, true},
		{"is", []string{"float"}, nil, false},
		{"between", []string{"1", "2"}, nil, true},
		{"matches", []string{"x"}, ErrUnknownComparator, false},
		{"matches", nil, ErrParameterCount, false},
	}
	for _, tt := range tests {
		err := CheckParams(tt.symbol, tt.params)
		if (err == nil) != tt.ok {
			t.Errorf("CheckParams(%q, %v) = %v", tt.symbol, tt.params, err)
		}
		if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
			t.Errorf("CheckParams(%q) = %v, want %v", tt.symbol, err, tt.wantErr)
		}
	}
}

func TestRoman(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"I", 1, false},
		{"iv", 4, false},
		{"XIV", 14, false},
		{"MCMXCIV", 1994, false},
		{"MMMCMXCIX", 3999, false},
		{"MMMM", 0, true},
		{"IIII", 0, true},
		{"IC", 0, true},
		{"", 0, true},
		{"ABC", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseRoman(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseRoman(%q) err = %v", tt.in, err)
			continue
		}
		if tt.wantErr && !errors.Is(err, ErrInvalidRoman) {
			t.Errorf("ParseRoman(%q) err = %v, want ErrInvalidRoman", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseRoman(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"#FF0000", "#ff0000", false},
		{"00ff00", "#00ff00", false},
		{"#fff", "#ffffff", false},
		{"Blue", "#0000ff", false},
		{"notacolor", "", true},
	}
	for _, tt := range tests {
		c, err := ParseColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseColor(%q) err = %v", tt.in, err)
			continue
		}
		if !tt.wantErr && c.Hex() != tt.want {
			t.Errorf("ParseColor(%q) = %s, want %s", tt.in, c.Hex(), tt.want)
		}
	}
}

func TestPickFor_Deterministic(t *testing.T) {
	if PickFor("alpha").Hex() != PickFor("alpha").Hex() {
		t.Error("PickFor not deterministic")
	}
	if PickFor("alpha").Hex() == PickFor("beta").Hex() {
		t.Error("distinct keys produced the same color")
	}
}

func TestDefaults_MergeLiveWins(t *testing.T) {
	saved := NewDefaults()
	saved.Set(DefaultGroup, "bolt", MustParseColor("#111111"))
	saved.Set(DefaultCategory, "old", MustParseColor("#222222"))
	live := NewDefaults()
	live.Set(DefaultGroup, "bolt", MustParseColor("#333333"))

	m := Merge(live, saved)
	if c, _ := m.Lookup(DefaultGroup, "bolt"); c.Hex() != "#333333" {
		t.Errorf("bolt = %s, want live color", c.Hex())
	}
	if _, ok := m.Lookup(DefaultCategory, "old"); !ok {
		t.Error("saved-only entry dropped")
	}

	g := NewGroup("bolt", "", geometry.Frame{})
	g.Color = MustParseColor("#abcdef")
	if !g.SetNameDefault(m) || g.Color.Hex() != "#333333" {
		t.Errorf("SetNameDefault color = %s", g.Color.Hex())
	}
}

func TestMergeEntries(t *testing.T) {
	saved := NewDefaults()
	saved.Set(DefaultGroup, "zeta", MustParseColor("#000001"))
	saved.Set(DefaultGroup, "bolt", MustParseColor("#000002"))
	saved.Set(DefaultCategory, "alpha", MustParseColor("#000003"))
	live := []DefaultEntry{
		{Kind: DefaultCategory, Name: "nuts", Color: MustParseColor("#000004")},
		{Kind: DefaultGroup, Name: "bolt", Color: MustParseColor("#000005")},
	}

	got := MergeEntries(live, saved)
	var names []string
	for _, e := range got {
		names = append(names, e.Kind+":"+e.Name+":"+e.Color.Hex())
	}
	want := []string{
		"category:nuts:#000004",
		"group:bolt:#000005",
		"group:zeta:#000001",
		"category:alpha:#000003",
	}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("MergeEntries() = %v, want %v", names, want)
	}
}
