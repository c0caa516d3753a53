package imagestore

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
)

// DefaultResizeSize is the display bound used when an Ingester has none.
const DefaultResizeSize = 1000

// Image is one acquired source image.
type Image struct {
	// Hash is the hex SHA-256 of the bytes the image was decoded from.
	Hash string `json:"hash"`

	// Path is where the image came from: a file path or a store item key.
	// It is what the session records and what re-acquisition uses.
	Path string `json:"path"`

	// Image is the display copy, resized to fit the ingest bound.
	Image image.Image `json:"-"`

	// SourceWidth and SourceHeight are the dimensions before resizing.
	SourceWidth  int `json:"source_width"`
	SourceHeight int `json:"source_height"`

	// Placeholder is set when no real image could be loaded.
	Placeholder bool `json:"placeholder,omitempty"`
}

// Width returns the display width.
func (i *Image) Width() int { return i.Image.Bounds().Dx() }

// Height returns the display height.
func (i *Image) Height() int { return i.Image.Bounds().Dy() }

// Ingester decodes, hashes and resizes raw image data.
type Ingester struct {
	ResizeSize int
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Decode decodes data with the registered decoders, falling back to WebP.
func Decode(data []byte) (image.Image, error) {
	if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	return nil, fmt.Errorf("image: unknown or unsupported format")
}

// FromBytes ingests data. path is recorded as the image's origin and may be
// empty.
func (in Ingester) FromBytes(data []byte, path string) (*Image, error) {
	img, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	size := in.ResizeSize
	if size <= 0 {
		size = DefaultResizeSize
	}
	b := img.Bounds()
	return &Image{
		Hash:         Hash(data),
		Path:         path,
		Image:        imaging.Fit(img, size, size, imaging.Lanczos),
		SourceWidth:  b.Dx(),
		SourceHeight: b.Dy(),
	}, nil
}

// FromFile reads and ingests the file at path.
func (in Ingester) FromFile(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	return in.FromBytes(data, path)
}
