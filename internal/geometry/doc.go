// Package geometry implements the coordinate engine behind region annotation.
//
// Clicks arrive from the display surface in display pixel space, which has its
// origin at the lower-left corner of the container the image is drawn into.
// This package turns those clicks into grid cells, tests them against group
// bounding boxes, and converts bounding boxes back into the pixel space of the
// original, un-resized source image.
//
// # Coordinate Spaces
//
// Display space:
//   - (0,0) is the lower-left corner of the display container
//   - the image is letterboxed inside the container, so the drawn image starts
//     at (OffsetX, OffsetY)
//   - X increases rightward, Y increases upward
//
// Source space:
//   - (0,0) is the top-left corner of the original image
//   - X increases rightward, Y increases downward
//   - this is what image-processing consumers (crop, OCR) expect
//
// # Rectangles
//
// A Rect is stored as two corners (X, Y) and (X2, Y2) with X2 >= X and Y2 >= Y.
// The XYWH form is used for drawing and for export.
//
// # Purity
//
// Every function in this package is pure. The only "failure" is asking for the
// bounding box of zero rectangles, which reports ok=false; callers treat that
// as "nothing to draw".
package geometry
