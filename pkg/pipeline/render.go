package pipeline

import (
	"github.com/matzehuels/redactor/pkg/render/layout"
	"github.com/matzehuels/redactor/pkg/render/sink"
)

// RenderLayout encodes l in the given format.
func RenderLayout(l layout.Layout, format string, quality int, opts ...sink.RasterOption) ([]byte, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}
	switch format {
	case FormatPNG:
		return sink.RenderPNG(l, opts...)
	case FormatJSON:
		return sink.RenderJSON(l)
	default:
		return sink.RenderJPEG(l, quality, opts...)
	}
}
