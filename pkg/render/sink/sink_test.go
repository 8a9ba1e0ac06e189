package sink

import (
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"testing"
	"time"

	rerrors "github.com/matzehuels/redactor/pkg/errors"
	"github.com/matzehuels/redactor/pkg/fonts"
	"github.com/matzehuels/redactor/pkg/render"
	"github.com/matzehuels/redactor/pkg/render/layout"
)

var fixedClock = func() time.Time { return time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC) }

// compute lays out text with the real body face so boxes match glyphs.
func compute(t *testing.T, text string, intensity int, seed uint64) (layout.Layout, *fonts.Faces) {
	t.Helper()
	faces, err := fonts.New()
	if err != nil {
		t.Fatalf("fonts.New() error: %v", err)
	}
	t.Cleanup(func() { faces.Close() })
	l := layout.Compute(text, intensity, NewMeasurer(faces.Body), layout.NewRand(seed), layout.DefaultConfig())
	return l, faces
}

func raster(t *testing.T, l layout.Layout, faces *fonts.Faces) *image.RGBA {
	t.Helper()
	img, err := RenderRaster(l, WithFaces(faces), WithClock(fixedClock))
	if err != nil {
		t.Fatalf("RenderRaster() error: %v", err)
	}
	return img.(*image.RGBA)
}

func sameColor(a, b color.Color) bool {
	r1, g1, b1, a1 := a.RGBA()
	r2, g2, b2, a2 := b.RGBA()
	return r1 == r2 && g1 == g2 && b1 == b2 && a1 == a2
}

func samePixels(a, b *image.RGBA) bool {
	if a.Bounds() != b.Bounds() {
		return false
	}
	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			return false
		}
	}
	return true
}

// interior returns the pixel rectangle strictly inside a mask box.
func interior(r layout.Rect) image.Rectangle {
	return image.Rect(int(r.X)+1, int(r.Y)+1, int(r.X+r.W)-1, int(r.Y+r.H)-1)
}

func TestRenderRasterSize(t *testing.T) {
	l, faces := compute(t, "hello", 0, 1)
	img := raster(t, l, faces)
	if b := img.Bounds(); b.Dx() != layout.DefaultWidth || b.Dy() != layout.DefaultHeight {
		t.Errorf("bounds = %v", b)
	}
	if !sameColor(img.At(5, 5), ColorBackground) {
		t.Errorf("corner pixel = %v, want background", img.At(5, 5))
	}
}

func TestRenderRasterFullIntensityMasksWords(t *testing.T) {
	l, faces := compute(t, "SECRET LOCATION", 100, 1)
	img := raster(t, l, faces)

	words := l.Words()
	if len(words) != 2 {
		t.Fatalf("Words() = %d, want 2", len(words))
	}
	for _, w := range words {
		box := interior(w.Box(l.MaskHeight))
		for y := box.Min.Y; y < box.Max.Y; y++ {
			for x := box.Min.X; x < box.Max.X; x++ {
				if !sameColor(img.At(x, y), ColorMask) {
					t.Fatalf("%s: pixel (%d,%d) = %v, want mask", w.Text, x, y, img.At(x, y))
				}
			}
		}
	}
}

func TestRenderRasterZeroIntensityDrawsGlyphs(t *testing.T) {
	l, faces := compute(t, "SECRET LOCATION", 0, 1)
	img := raster(t, l, faces)

	for _, w := range l.Words() {
		box := interior(w.Box(l.MaskHeight))
		var ink, paper int
		for y := box.Min.Y; y < box.Max.Y; y++ {
			for x := box.Min.X; x < box.Max.X; x++ {
				switch {
				case sameColor(img.At(x, y), ColorBackground):
					paper++
				default:
					ink++
				}
			}
		}
		if ink == 0 || paper == 0 {
			t.Errorf("%s: ink=%d paper=%d, want glyphs on paper", w.Text, ink, paper)
		}
	}
}

func TestRenderRasterZeroIntensityIgnoresSeed(t *testing.T) {
	text := "Agent Contact: Victor T. at (555) 019-2024"
	a, faces := compute(t, text, 0, 1)
	b, _ := compute(t, text, 0, 99)
	if !samePixels(raster(t, a, faces), raster(t, b, faces)) {
		t.Error("intensity 0 renders differ between seeds")
	}
}

func TestRenderRasterWhitespaceMatchesEmpty(t *testing.T) {
	blank, faces := compute(t, "", 100, 1)
	spaces, _ := compute(t, "   \n\t \n", 100, 1)
	if !samePixels(raster(t, blank, faces), raster(t, spaces, faces)) {
		t.Error("whitespace-only render differs from empty render")
	}
}

func TestRenderRasterEmptyHasOnlyDecoration(t *testing.T) {
	l, faces := compute(t, "", 40, 1)
	img := raster(t, l, faces)

	// Body area between the stamp and the footer stays blank.
	body := image.Rect(0, layout.DefaultTop-5, layout.DefaultWidth, layout.DefaultHeight-70)
	for y := body.Min.Y; y < body.Max.Y; y++ {
		for x := body.Min.X; x < body.Max.X; x++ {
			if !sameColor(img.At(x, y), ColorBackground) {
				t.Fatalf("pixel (%d,%d) = %v, want background", x, y, img.At(x, y))
			}
		}
	}

	// Header rule and stamp outline are painted.
	if !sameColor(img.At(100, 52), ColorAccent) {
		t.Errorf("header rule pixel = %v", img.At(100, 52))
	}
	if !sameColor(img.At(580, 90), ColorAccent) {
		t.Errorf("stamp outline pixel = %v", img.At(580, 90))
	}
}

func TestRenderRasterSurfaceUnavailable(t *testing.T) {
	l, faces := compute(t, "x", 0, 1)
	failing := SurfaceFunc(func(int, int) (draw.Image, error) {
		return nil, ErrSurfaceUnavailable
	})
	_, err := RenderRaster(l, WithFaces(faces), WithSurface(failing))
	if !errors.Is(err, ErrSurfaceUnavailable) {
		t.Errorf("error = %v, want ErrSurfaceUnavailable", err)
	}

	l.Width = 0
	_, err = RenderRaster(l, WithFaces(faces))
	if !rerrors.Is(err, rerrors.ErrCodeSurfaceUnavailable) {
		t.Errorf("zero width error = %v, want %s", err, rerrors.ErrCodeSurfaceUnavailable)
	}
}

func TestRenderJPEG(t *testing.T) {
	l, faces := compute(t, "SECRET LOCATION", 50, 3)
	data, err := RenderJPEG(l, 90, WithFaces(faces), WithClock(fixedClock))
	if err != nil {
		t.Fatalf("RenderJPEG() error: %v", err)
	}
	img, err := render.Decode(data)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 800 || b.Dy() != 1100 {
		t.Errorf("decoded bounds = %v", b)
	}
}

func TestRenderPNGIsLossless(t *testing.T) {
	l, faces := compute(t, "SECRET", 100, 3)
	data, err := RenderPNG(l, WithFaces(faces), WithClock(fixedClock))
	if err != nil {
		t.Fatalf("RenderPNG() error: %v", err)
	}
	img, err := render.Decode(data)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	box := interior(l.Words()[0].Box(l.MaskHeight))
	if !sameColor(img.At(box.Min.X, box.Min.Y), ColorMask) {
		t.Errorf("decoded mask pixel = %v", img.At(box.Min.X, box.Min.Y))
	}
}

func TestRenderJSONDropsMaskedText(t *testing.T) {
	l, _ := compute(t, "SECRET LOCATION", 100, 1)
	data, err := RenderJSON(l)
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}
	var got layout.Layout
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, tok := range got.Tokens {
		if tok.Masked && tok.Text != "" {
			t.Errorf("masked token exported with text %q", tok.Text)
		}
	}
	if l.Tokens[0].Text != "SECRET" {
		t.Error("RenderJSON mutated the layout")
	}
}

func TestMeasurerMonospace(t *testing.T) {
	faces, err := fonts.New()
	if err != nil {
		t.Fatal(err)
	}
	defer faces.Close()

	m := NewMeasurer(faces.Body)
	one := m.Measure("a")
	if one <= 0 {
		t.Fatalf("Measure(a) = %v", one)
	}
	if got := m.Measure("SECRET"); got != 6*one {
		t.Errorf("Measure(SECRET) = %v, want %v", got, 6*one)
	}
}
