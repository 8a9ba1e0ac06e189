package sink

import (
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/matzehuels/redactor/pkg/render/layout"
)

// NewMeasurer returns a layout measurer backed by face.
func NewMeasurer(face font.Face) layout.Measurer {
	return layout.MeasureFunc(func(s string) float64 {
		return toFloat(font.MeasureString(face, s))
	})
}

func toFloat(x fixed.Int26_6) float64 {
	return float64(x) / 64
}
