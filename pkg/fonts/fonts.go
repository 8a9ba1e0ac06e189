// Package fonts provides the font faces used to draw redaction pages.
//
// The faces come from the Go font family bundled with golang.org/x/image,
// so rendering needs no system fonts. Go Bold stands in for the header
// and stamp lettering and Go Mono for the typewriter-style body.
package fonts

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
)

// Point sizes for each role on the page.
const (
	HeaderSize = 12
	StampSize  = 16
	BodySize   = 16
	FooterSize = 10
)

// DPI at which sizes map 1:1 to pixels.
const DPI = 72

// Faces groups the faces for every text role on the page.
type Faces struct {
	Header font.Face
	Stamp  font.Face
	Body   font.Face
	Footer font.Face
}

// Parsed fonts are shared; faces are not, since a font.Face keeps
// per-face scratch buffers and must not be used from two goroutines.
var (
	boldFont, monoFont *opentype.Font
	parseErr           error
	parseOnce          sync.Once
)

func parse() error {
	parseOnce.Do(func() {
		if boldFont, parseErr = opentype.Parse(gobold.TTF); parseErr != nil {
			parseErr = fmt.Errorf("parse bold font: %w", parseErr)
			return
		}
		if monoFont, parseErr = opentype.Parse(gomono.TTF); parseErr != nil {
			parseErr = fmt.Errorf("parse mono font: %w", parseErr)
		}
	})
	return parseErr
}

// New returns a fresh set of faces. Callers own the result and should
// Close it when done.
func New() (*Faces, error) {
	if err := parse(); err != nil {
		return nil, err
	}

	var f Faces
	for _, spec := range []struct {
		dst  *font.Face
		font *opentype.Font
		size float64
	}{
		{&f.Header, boldFont, HeaderSize},
		{&f.Stamp, boldFont, StampSize},
		{&f.Body, monoFont, BodySize},
		{&f.Footer, monoFont, FooterSize},
	} {
		face, err := opentype.NewFace(spec.font, &opentype.FaceOptions{
			Size:    spec.size,
			DPI:     DPI,
			Hinting: font.HintingFull,
		})
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("create %vpt face: %w", spec.size, err)
		}
		*spec.dst = face
	}
	return &f, nil
}

// Close releases all faces.
func (f *Faces) Close() error {
	for _, face := range []font.Face{f.Header, f.Stamp, f.Body, f.Footer} {
		if face != nil {
			face.Close()
		}
	}
	return nil
}
