package sink

import (
	"encoding/json"
	"slices"

	"github.com/matzehuels/redactor/pkg/render/layout"
)

// RenderJSON exports the layout as indented JSON. Masked tokens are
// exported without their text.
func RenderJSON(l layout.Layout) ([]byte, error) {
	l.Tokens = slices.Clone(l.Tokens)
	for i := range l.Tokens {
		if l.Tokens[i].Masked {
			l.Tokens[i].Text = ""
		}
	}
	return json.MarshalIndent(l, "", "  ")
}
