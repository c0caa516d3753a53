// Package ocr extracts text from images using Tesseract.
//
// This package wraps the Tesseract OCR engine (via gosseract/v2). It is used by
// the local pipe runner for the img_ocr_key step, which reads the text out of a
// region that an earlier img_crop_to_key step cropped from a source image.
//
// # Prerequisites
//
// Tesseract and its language data must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// The language is configured with ocr.language and defaults to "eng".
//
// # Error Handling
//
// Functions return errors for undecodable images, unsupported language codes
// and Tesseract initialization failures. If word bounding boxes cannot be read
// the text is still returned with an empty Regions slice.
package ocr
