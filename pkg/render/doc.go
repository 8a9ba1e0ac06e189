// Package render provides rendering for redaction pages.
//
// # Overview
//
// This package contains the rendering pipeline that turns document text
// into a page image with some words blacked out. It provides:
//
//   - Generic encoding helpers (JPEG, PNG, data URLs, thumbnails)
//   - Text placement and masking decisions (in [layout] subpackage)
//   - Drawing and output formats (in [sink] subpackage)
//
// # Encoding
//
// The [ToJPEG] and [ToPNG] functions encode any image. [Thumbnail] scales a
// page down for inline previews.
//
//	img, err := sink.RenderRaster(l)
//	jpg, err := render.ToJPEG(img, 90)
//	thumb := render.Thumbnail(img, 240)
//
// Masking is cosmetic. The original text never reaches the pixels of a
// masked token, but nothing here is a data-removal guarantee.
//
// [layout]: github.com/matzehuels/redactor/pkg/render/layout
// [sink]: github.com/matzehuels/redactor/pkg/render/sink
package render
