// Package render draws the images shown next to the editor.
//
// # Project previews
//
// Every category change produces three images from the project view:
//
//   - an overview bar: one segment per category, in rough order, with a
//     width proportional to the category's rough amount and filled with its
//     palette color
//   - a thumbnail: the same bar at thumbnail height
//   - a dimensions image: the project's width x height outline, scaled
//
// Renderer keeps the latest set and implements project.Renderer.
//
// # Working image overlay
//
// DrawOverlay composes the working image, one layer per group and the
// selection grid. Display coordinates have a bottom-left origin and include
// the letterboxing offset; they are converted to image pixels here.
//
// Visible groups are filled at half opacity with an outline of the frame
// they were drawn in. Hidden groups get an outline of their bounding box
// only. Both get a caption with the group name.
//
// Group layers are cached by name. Names that were renamed or removed must
// be retired with RetireGroups, or their old drawing lingers in the cache.
package render
