package persist

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/ironsheep/dss-annotator/internal/model"
	"github.com/ironsheep/dss-annotator/internal/project"
)

// LoadFile reads one project file.
func LoadFile(path string) (project.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return project.Snapshot{}, err
	}
	defer f.Close()
	snap, err := Decode(f)
	if err != nil {
		return project.Snapshot{}, fmt.Errorf("%s: %w", path, err)
	}
	return snap, nil
}

// LoadFiles reads each file in turn. Missing files and files that do not
// parse are logged and skipped.
func LoadFiles(paths []string) []project.Snapshot {
	var snaps []project.Snapshot
	for _, p := range paths {
		snap, err := LoadFile(p)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				log.Printf("cannot load %s, ignoring: %v", p, err)
			}
			continue
		}
		snaps = append(snaps, snap)
	}
	return snaps
}

// SaveFile writes snap to path, replacing any existing file. The directory
// is created if needed.
func SaveFile(path string, snap project.Snapshot) error {
	data, err := Marshal(snap)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}

// DefaultsElement is the <defaults> root of the defaults file.
type DefaultsElement struct {
	XMLName  xml.Name         `xml:"defaults"`
	Defaults []DefaultElement `xml:"default"`
}

// DefaultElement is one name to color default.
type DefaultElement struct {
	Type  string `xml:"type,attr"`
	Name  string `xml:"name,attr"`
	Color string `xml:"color,attr"`
}

// SaveDefaults writes entries to path in order.
func SaveDefaults(path string, entries []model.DefaultEntry) error {
	el := DefaultsElement{}
	for _, e := range entries {
		el.Defaults = append(el.Defaults, DefaultElement{Type: e.Kind, Name: e.Name, Color: e.Color.Hex()})
	}
	data, err := xml.MarshalIndent(el, "", indent)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, append(data, '\n'))
}

// LoadDefaults reads the defaults file. A missing file gives empty
// defaults. Entries with an unknown type or a bad color are skipped.
func LoadDefaults(path string) (*model.Defaults, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return model.NewDefaults(), nil
	}
	if err != nil {
		return nil, err
	}
	var el DefaultsElement
	if err := xml.Unmarshal(data, &el); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	var entries []model.DefaultEntry
	for _, d := range el.Defaults {
		if d.Type != model.DefaultGroup && d.Type != model.DefaultCategory {
			continue
		}
		c, err := model.ParseColor(d.Color)
		if err != nil {
			log.Printf("default %s %s: %v", d.Type, d.Name, err)
			continue
		}
		entries = append(entries, model.DefaultEntry{Kind: d.Type, Name: d.Name, Color: c})
	}
	return model.EntriesToDefaults(entries), nil
}

// usedSources returns the distinct group sources in sorted order.
func usedSources(snap project.Snapshot) []string {
	seen := map[string]bool{}
	var out []string
	for _, g := range snap.Groups {
		if g.Source != "" && !seen[g.Source] {
			seen[g.Source] = true
			out = append(out, g.Source)
		}
	}
	sort.Strings(out)
	return out
}
