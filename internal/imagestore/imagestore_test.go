package imagestore

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ironsheep/dss-annotator/internal/kv"
)

// encodeTestPNG creates a solid-color PNG and returns its bytes.
func encodeTestPNG(t *testing.T, width, height int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return buf.Bytes()
}

func TestIngester_FromBytes(t *testing.T) {
	data := encodeTestPNG(t, 400, 200, color.RGBA{255, 0, 0, 255})
	in := Ingester{ResizeSize: 100}

	img, err := in.FromBytes(data, "upload")
	if err != nil {
		t.Fatalf("FromBytes() error: %v", err)
	}
	if img.Hash != Hash(data) || len(img.Hash) != 64 {
		t.Errorf("Hash = %q", img.Hash)
	}
	if img.SourceWidth != 400 || img.SourceHeight != 200 {
		t.Errorf("source = %dx%d, want 400x200", img.SourceWidth, img.SourceHeight)
	}
	if img.Width() != 100 || img.Height() != 50 {
		t.Errorf("display = %dx%d, want 100x50", img.Width(), img.Height())
	}
}

func TestIngester_FromBytesKeepsSmallImages(t *testing.T) {
	data := encodeTestPNG(t, 40, 30, color.White)
	img, err := Ingester{ResizeSize: 100}.FromBytes(data, "")
	if err != nil {
		t.Fatal(err)
	}
	if img.Width() != 40 || img.Height() != 30 {
		t.Errorf("display = %dx%d, want 40x30", img.Width(), img.Height())
	}
}

func TestIngester_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "src.png")
	data := encodeTestPNG(t, 10, 10, color.Black)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	img, err := Ingester{}.FromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if img.Path != path {
		t.Errorf("Path = %q, want %q", img.Path, path)
	}

	if _, err := (Ingester{}).FromFile(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestIngester_RejectsGarbage(t *testing.T) {
	if _, err := (Ingester{}).FromBytes([]byte("not an image"), ""); err == nil {
		t.Error("expected decode error")
	}
}

func TestStore_FetchFallsBackAcrossBinaryFields(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	data := encodeTestPNG(t, 20, 20, color.White)
	mem.Set(ctx, "blob:1", data, 0)
	mem.HSet(ctx, "glworb:1", map[string]string{"binary_key": "blob:missing", "binary": "blob:1"})

	s := NewStore(mem, Ingester{ResizeSize: 100})
	img, err := s.Fetch(ctx, "glworb:1")
	if err != nil {
		t.Fatal(err)
	}
	if img.Placeholder {
		t.Error("got placeholder, want real image")
	}
	if img.Hash != Hash(data) || img.Path != "glworb:1" {
		t.Errorf("image = %+v", img)
	}
}

func TestStore_FetchPlaceholder(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	mem.HSet(ctx, "glworb:2", map[string]string{"name": "widget"})
	mem.Set(ctx, "blob:bad", []byte("garbage"), 0)
	mem.HSet(ctx, "glworb:3", map[string]string{"binary_key": "blob:bad"})

	s := NewStore(mem, Ingester{ResizeSize: 64})
	for _, id := range []string{"glworb:2", "glworb:3", "glworb:none"} {
		img, err := s.Fetch(ctx, id)
		if err != nil {
			t.Fatalf("Fetch(%s) error: %v", id, err)
		}
		if !img.Placeholder {
			t.Errorf("Fetch(%s) not a placeholder", id)
		}
		if img.SourceWidth != 64 || img.Width() != 64 {
			t.Errorf("Fetch(%s) size = %d/%d, want 64", id, img.SourceWidth, img.Width())
		}
	}
}

// brokenKV fails hash reads the way an unreachable server would.
type brokenKV struct {
	*kv.Memory
}

var errConnRefused = errors.New("connection refused")

func (brokenKV) HGet(context.Context, string, string) (string, error) {
	return "", errConnRefused
}

func TestStore_FetchReportsStoreErrors(t *testing.T) {
	s := NewStore(brokenKV{kv.NewMemory()}, Ingester{ResizeSize: 64})

	img, err := s.Fetch(context.Background(), "glworb:1")
	if !errors.Is(err, errConnRefused) {
		t.Fatalf("Fetch err = %v, want the store error", err)
	}
	if img != nil {
		t.Errorf("Fetch returned %+v with an error", img)
	}
	if _, err := s.Blob(context.Background(), "glworb:1"); errors.Is(err, kv.ErrNotFound) {
		t.Error("store failure reported as not found")
	}
}

func TestStore_List(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	mem.HSet(ctx, "glworb:a", map[string]string{"name": "bolt"})
	mem.HSet(ctx, "glworb:b", map[string]string{"name": "nut"})
	mem.HSet(ctx, "other:c", map[string]string{"name": "bolt"})
	s := NewStore(mem, Ingester{})

	all, err := s.List(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("List() = %d items, want 2", len(all))
	}
	filtered, _ := s.List(ctx, "bolt")
	if len(filtered) != 1 || filtered[0].ID != "glworb:a" {
		t.Errorf("List(bolt) = %+v", filtered)
	}
}

func TestPrettyFormat(t *testing.T) {
	got := PrettyFormat(map[string]string{"b": "2", "a": "1"}, "glworb:x")
	want := "glworb:x\na: 1\nb: 2"
	if got != want {
		t.Errorf("PrettyFormat() = %q, want %q", got, want)
	}
	if PrettyFormat(nil, "id") != "" {
		t.Error("empty fields should format as empty")
	}
}

func TestLibrary(t *testing.T) {
	lib := NewLibrary()
	a := &Image{Hash: "a", Path: "pa"}
	b := &Image{Hash: "b", Path: "pb"}
	c := &Image{Hash: "c"}
	for _, img := range []*Image{a, b, c} {
		lib.Add(img)
	}
	if lib.Add(&Image{Hash: "a", Path: "pa2"}) {
		t.Error("re-adding a hash should not be new")
	}
	if got := lib.Paths(); len(got) != 2 || got[0] != "pa2" {
		t.Errorf("Paths() = %v", got)
	}

	prev, ok := lib.Remove("b")
	if !ok || prev == nil || prev.Hash != "a" {
		t.Errorf("Remove(b) = %v, %v; want a", prev, ok)
	}
	prev, _ = lib.Remove("a")
	if prev == nil || prev.Hash != "c" {
		t.Errorf("Remove(first) = %v; want c", prev)
	}
	prev, ok = lib.Remove("c")
	if !ok || prev != nil {
		t.Errorf("Remove(last) = %v, %v", prev, ok)
	}
	if _, ok := lib.Remove("zzz"); ok {
		t.Error("Remove(missing) reported removal")
	}
}

func TestPanel_Refresh(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	mem.HSet(ctx, "glworb:1", map[string]string{"type": "bolt", "size": "m4"})
	p := NewPanel(NewStore(mem, Ingester{}))
	p.CategoryColor = func(v string) (string, bool) {
		if v == "bolt" {
			return "#ff0000", true
		}
		return "", false
	}

	p.Show(ctx, "glworb:1")
	snap := p.Snapshot()
	if len(snap.Fields) != 2 || snap.Fields[0].Name != "size" {
		t.Fatalf("Fields = %+v", snap.Fields)
	}
	if snap.Fields[1].Color != "#ff0000" {
		t.Errorf("bolt color = %q", snap.Fields[1].Color)
	}

	mem.HSet(ctx, "glworb:1", map[string]string{"size": "m5"})
	p.Refresh(ctx)
	if got := p.Snapshot().Fields[0].Value; got != "m5" {
		t.Errorf("after refresh size = %q, want m5", got)
	}
}

func TestEncode(t *testing.T) {
	img := Placeholder(32, "x")
	for _, f := range []string{FormatJPG, FormatPNG} {
		b, err := EncodeBytes(img, f)
		if err != nil || len(b) == 0 {
			t.Errorf("EncodeBytes(%s) = %d bytes, %v", f, len(b), err)
		}
		if _, err := Decode(b); err != nil {
			t.Errorf("Decode(%s) error: %v", f, err)
		}
	}
	if _, err := EncodeBytes(img, "gif"); err == nil {
		t.Error("expected error for unsupported format")
	}
}
