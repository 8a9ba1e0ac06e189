package pipeline

import (
	"github.com/matzehuels/redactor/pkg/fonts"
	"github.com/matzehuels/redactor/pkg/render/layout"
	"github.com/matzehuels/redactor/pkg/render/sink"
)

// ComputeLayout lays out opts.Text with the body face of faces, drawing mask
// decisions from opts.Seed. Options must already be validated.
func ComputeLayout(faces *fonts.Faces, opts Options) layout.Layout {
	return layout.Compute(
		opts.Text,
		opts.Intensity,
		sink.NewMeasurer(faces.Body),
		layout.NewRand(opts.Seed),
		opts.LayoutConfig(),
	)
}
