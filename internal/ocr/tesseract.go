package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// DefaultLanguage is used when a Reader has no language set.
const DefaultLanguage = "eng"

// Bounds represents a rectangular bounding box in pixel coordinates.
type Bounds struct {
	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// TextRegion represents a word with its location and OCR confidence.
type TextRegion struct {
	Text string `json:"text"`

	// Confidence is the OCR confidence score (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	Bounds Bounds `json:"bounds"`
}

// OCRResult contains the results of text extraction from an image.
type OCRResult struct {
	// FullText is all recognized text with original spacing and newlines.
	FullText string `json:"full_text"`

	// Regions contains individual words. It may be empty even when FullText
	// is not.
	Regions []TextRegion `json:"regions"`
}

// Reader runs OCR in one language.
type Reader struct {
	Language string
}

// NewReader returns a Reader for language. An empty language means
// DefaultLanguage.
func NewReader(language string) *Reader {
	if language == "" {
		language = DefaultLanguage
	}
	return &Reader{Language: language}
}

// ExtractText performs OCR on encoded image data (PNG, JPEG, TIFF or BMP).
func (r *Reader) ExtractText(data []byte) (*OCRResult, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("failed to set image: no data")
	}
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(r.language()); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetImageFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return &OCRResult{FullText: text, Regions: []TextRegion{}}, nil
	}

	regions := make([]TextRegion, 0, len(boxes))
	for _, box := range boxes {
		if box.Word == "" {
			continue
		}
		regions = append(regions, TextRegion{
			Text:       box.Word,
			Confidence: float64(box.Confidence) / 100.0,
			Bounds: Bounds{
				X1: box.Box.Min.X,
				Y1: box.Box.Min.Y,
				X2: box.Box.Max.X,
				Y2: box.Box.Max.Y,
			},
		})
	}
	return &OCRResult{FullText: text, Regions: regions}, nil
}

// ExtractImage encodes img as PNG and runs ExtractText on it.
func (r *Reader) ExtractImage(img image.Image) (*OCRResult, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return r.ExtractText(buf.Bytes())
}

// Text returns the recognized text of data with surrounding whitespace
// trimmed. It is what the img_ocr_key step stores.
func (r *Reader) Text(data []byte) (string, error) {
	res, err := r.ExtractText(data)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.FullText), nil
}

func (r *Reader) language() string {
	if r == nil || r.Language == "" {
		return DefaultLanguage
	}
	return r.Language
}

// Version returns the Tesseract library version.
func Version() string {
	return gosseract.Version()
}
