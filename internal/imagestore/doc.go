// Package imagestore acquires source images and keeps the loaded set.
//
// # Identity
//
// Every ingested image is identified by the hex SHA-256 of the raw bytes it
// was decoded from. That hash is the "source" recorded on groups and the file
// name used when sources are exported.
//
// # Acquisition
//
// Images come from three places:
//
//   - a file on disk ([Ingester.FromFile])
//   - raw bytes ([Ingester.FromBytes])
//   - an item in the key-value store ([Store.Fetch]), whose binary fields
//     name the key holding the image bytes
//
// Decoded images are shrunk to fit a square of Ingester.ResizeSize pixels
// for display. The original dimensions are kept on the [Image] because group
// coordinates are scaled back to them.
//
// When an item has no usable image the store generates a gray placeholder
// carrying the item's fields as text.
//
// # Loaded set
//
// [Library] is the ordered, concurrency-safe set of loaded thumbnails, and
// [Panel] periodically re-reads the working item's fields for display.
package imagestore
