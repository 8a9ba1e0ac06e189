// Package sink draws computed page layouts and encodes them.
//
// [RenderRaster] paints a [layout.Layout] onto a drawing surface: the fixed
// page decoration (header banner, REDACTED stamp, archive-log footer), then
// every body token either as glyphs or as an opaque box. [RenderJPEG] and
// [RenderPNG] encode the result; [RenderJSON] exports the layout itself for
// inspection.
//
// Drawing surfaces come from a [Surface]. When none can be obtained the
// render fails with [ErrSurfaceUnavailable] instead of silently producing
// nothing.
package sink
