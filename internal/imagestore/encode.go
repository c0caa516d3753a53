package imagestore

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// Export formats.
const (
	FormatJPG  = "jpg"
	FormatPNG  = "png"
	FormatWebP = "webp"
)

// Encode writes img in format ("jpg", "png" or "webp").
func Encode(w io.Writer, img image.Image, format string) error {
	switch strings.ToLower(format) {
	case FormatWebP:
		return webp.Encode(w, img, &webp.Options{Quality: 90})
	case FormatPNG:
		return imaging.Encode(w, img, imaging.PNG)
	case FormatJPG, "jpeg", "":
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(90))
	}
	return fmt.Errorf("unsupported image format %q", format)
}

// EncodeBytes is Encode into a buffer.
func EncodeBytes(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Extension returns the file extension for format, without the dot.
func Extension(format string) string {
	switch strings.ToLower(format) {
	case FormatWebP:
		return "webp"
	case FormatPNG:
		return "png"
	}
	return "jpg"
}
