package persist

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"

	"github.com/ironsheep/dss-annotator/internal/imagestore"
	"github.com/ironsheep/dss-annotator/internal/kv"
	"github.com/ironsheep/dss-annotator/internal/project"
)

// Export modes.
const (
	ModeXML        = "xml"
	ModePublish    = "xml->pub"
	ModeSourcesDir = "xml+sources(dir)"
	ModeSourcesZip = "xml+sources(zipped)"
)

// ExportModes lists the modes in menu order.
var ExportModes = []string{ModeXML, ModePublish, ModeSourcesDir, ModeSourcesZip}

// Output names.
const (
	XMLFilename = "generated.xml"
	SourcesDir  = "generated"
	ZipFilename = "generated.zip"
)

// ErrUnknownExportMode is returned for a mode not in ExportModes.
var ErrUnknownExportMode = errors.New("unknown export mode")

// Sources resolves a content hash to a loaded image.
type Sources interface {
	Get(hash string) (*imagestore.Image, bool)
}

// Exporter writes projects out.
type Exporter struct {
	// Dir is the output directory.
	Dir string

	// Format is the image format for exported sources.
	Format string

	// KV receives published projects.
	KV kv.Store

	// Sources supplies the images referenced by groups.
	Sources Sources
}

// Export writes snap in mode and returns where it went: a file path, or
// the key for ModePublish.
func (x *Exporter) Export(ctx context.Context, snap project.Snapshot, mode, publishKey string) (string, error) {
	data, err := Marshal(snap)
	if err != nil {
		return "", err
	}
	switch mode {
	case ModeXML:
		path := filepath.Join(x.Dir, XMLFilename)
		return path, writeFileAtomic(path, data)
	case ModePublish:
		if x.KV == nil {
			return "", fmt.Errorf("publish %s: no key-value store", publishKey)
		}
		if err := x.KV.Set(ctx, publishKey, data, 0); err != nil {
			return "", fmt.Errorf("publish %s: %w", publishKey, err)
		}
		return publishKey, nil
	case ModeSourcesDir:
		return x.exportDir(snap, data)
	case ModeSourcesZip:
		return x.exportZip(snap, data)
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownExportMode, mode)
}

func (x *Exporter) exportDir(snap project.Snapshot, data []byte) (string, error) {
	dir := filepath.Join(x.Dir, SourcesDir)
	if err := writeFileAtomic(filepath.Join(dir, XMLFilename), data); err != nil {
		return "", err
	}
	for _, hash := range usedSources(snap) {
		img, ok := x.source(hash)
		if !ok {
			continue
		}
		b, err := imagestore.EncodeBytes(img, x.Format)
		if err != nil {
			log.Printf("export source %s: %v", hash, err)
			continue
		}
		if err := os.WriteFile(filepath.Join(dir, x.sourceName(hash)), b, 0o644); err != nil {
			return "", err
		}
	}
	return dir, nil
}

func (x *Exporter) exportZip(snap project.Snapshot, data []byte) (string, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	if err := addZipFile(zw, XMLFilename, data); err != nil {
		return "", err
	}
	for _, hash := range usedSources(snap) {
		img, ok := x.source(hash)
		if !ok {
			continue
		}
		b, err := imagestore.EncodeBytes(img, x.Format)
		if err != nil {
			log.Printf("export source %s: %v", hash, err)
			continue
		}
		if err := addZipFile(zw, x.sourceName(hash), b); err != nil {
			return "", err
		}
	}
	if err := zw.Close(); err != nil {
		return "", err
	}
	path := filepath.Join(x.Dir, ZipFilename)
	return path, writeFileAtomic(path, buf.Bytes())
}

func addZipFile(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func (x *Exporter) source(hash string) (image.Image, bool) {
	if x.Sources == nil {
		return nil, false
	}
	img, ok := x.Sources.Get(hash)
	if !ok || img.Image == nil {
		log.Printf("export: source %s is not loaded, skipping", hash)
		return nil, false
	}
	return img.Image, true
}

func (x *Exporter) sourceName(hash string) string {
	return hash + "." + imagestore.Extension(x.Format)
}
