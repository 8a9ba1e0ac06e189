package sink

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	rerrors "github.com/matzehuels/redactor/pkg/errors"
	"github.com/matzehuels/redactor/pkg/fonts"
	"github.com/matzehuels/redactor/pkg/render"
	"github.com/matzehuels/redactor/pkg/render/layout"
)

// Page decoration. Positions are in logical pixels; text positions are
// baselines.
const (
	DefaultHeader = "CLASSIFIED MANIFEST // SECURE PROTOCOL"
	StampText     = "REDACTED"
	FooterPrefix  = "ARCHIVE LOG: "

	// FooterTimeFormat mirrors a typical en-US locale timestamp.
	FooterTimeFormat = "1/2/2006, 3:04:05 PM"
)

var (
	headerPos  = image.Pt(70, 45)
	headerRule = layout.Rect{X: 70, Y: 52, W: 660, H: 1.5}
	stampBox   = layout.Rect{X: 580, Y: 70, W: 150, H: 45}
	stampPos   = image.Pt(610, 100)
	stampLine  = 3.0
	footerX    = 70
	footerLift = 50
)

// Page colors.
var (
	ColorBackground = color.RGBA{0xff, 0xff, 0xff, 0xff}
	ColorAccent     = color.RGBA{0xcc, 0x00, 0x00, 0xff}
	ColorText       = color.RGBA{0x1a, 0x1a, 0x1a, 0xff}
	ColorMask       = color.RGBA{0x00, 0x00, 0x00, 0xff}
	ColorFooter     = color.RGBA{0xaa, 0xaa, 0xaa, 0xff}
)

// RasterOption configures raster rendering.
type RasterOption func(*rasterRenderer)

type rasterRenderer struct {
	surface Surface
	faces   *fonts.Faces
	clock   func() time.Time
	header  string
}

// WithSurface sets the surface the page is drawn on.
func WithSurface(s Surface) RasterOption { return func(r *rasterRenderer) { r.surface = s } }

// WithFaces draws with the given faces instead of allocating fresh ones.
// Pass the same faces used to measure the layout.
func WithFaces(f *fonts.Faces) RasterOption { return func(r *rasterRenderer) { r.faces = f } }

// WithClock sets the time source for the footer timestamp.
func WithClock(now func() time.Time) RasterOption { return func(r *rasterRenderer) { r.clock = now } }

// WithHeader replaces the header banner text.
func WithHeader(s string) RasterOption { return func(r *rasterRenderer) { r.header = s } }

// RenderRaster draws l and returns the page image.
func RenderRaster(l layout.Layout, opts ...RasterOption) (image.Image, error) {
	r := rasterRenderer{
		surface: RGBASurface{},
		clock:   time.Now,
		header:  DefaultHeader,
	}
	for _, opt := range opts {
		opt(&r)
	}

	img, err := r.surface.NewSurface(l.Width, l.Height)
	if err != nil {
		return nil, err
	}
	if img == nil {
		return nil, rerrors.Wrap(rerrors.ErrCodeSurfaceUnavailable, ErrSurfaceUnavailable, "surface returned no image")
	}

	if r.faces == nil {
		faces, err := fonts.New()
		if err != nil {
			return nil, rerrors.Wrap(rerrors.ErrCodeInternal, err, "load fonts")
		}
		defer faces.Close()
		r.faces = faces
	}

	draw.Draw(img, img.Bounds(), image.NewUniform(ColorBackground), image.Point{}, draw.Src)
	r.drawDecoration(img, l)
	r.drawBody(img, l)
	return img, nil
}

// RenderJPEG draws l and encodes it as a JPEG.
func RenderJPEG(l layout.Layout, quality int, opts ...RasterOption) ([]byte, error) {
	img, err := RenderRaster(l, opts...)
	if err != nil {
		return nil, err
	}
	data, err := render.ToJPEG(img, quality)
	if err != nil {
		return nil, rerrors.Wrap(rerrors.ErrCodeEncode, err, "encode page")
	}
	return data, nil
}

// RenderPNG draws l and encodes it as a PNG.
func RenderPNG(l layout.Layout, opts ...RasterOption) ([]byte, error) {
	img, err := RenderRaster(l, opts...)
	if err != nil {
		return nil, err
	}
	data, err := render.ToPNG(img)
	if err != nil {
		return nil, rerrors.Wrap(rerrors.ErrCodeEncode, err, "encode page")
	}
	return data, nil
}

func (r *rasterRenderer) drawDecoration(img draw.Image, l layout.Layout) {
	drawText(img, r.faces.Header, ColorAccent, r.header, fixed.P(headerPos.X, headerPos.Y))
	fillRect(img, headerRule, ColorAccent)

	strokeRect(img, stampBox, stampLine, ColorAccent)
	drawText(img, r.faces.Stamp, ColorAccent, StampText, fixed.P(stampPos.X, stampPos.Y))

	footer := FooterPrefix + r.clock().Format(FooterTimeFormat)
	drawText(img, r.faces.Footer, ColorFooter, footer, fixed.P(footerX, l.Height-footerLift))
}

// drawBody paints tokens. Token Y is the top of the text box, so glyphs are
// offset by the body face ascent.
func (r *rasterRenderer) drawBody(img draw.Image, l layout.Layout) {
	ascent := r.faces.Body.Metrics().Ascent
	for _, tok := range l.Tokens {
		switch {
		case tok.Space:
		case tok.Masked:
			fillRect(img, tok.Box(l.MaskHeight), ColorMask)
		default:
			dot := fixed.Point26_6{X: toFixed(tok.X), Y: toFixed(tok.Y) + ascent}
			drawText(img, r.faces.Body, ColorText, tok.Text, dot)
		}
	}
}

func drawText(img draw.Image, face font.Face, c color.Color, s string, dot fixed.Point26_6) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  dot,
	}
	d.DrawString(s)
}

// fillRect fills the pixels touched by rc.
func fillRect(img draw.Image, rc layout.Rect, c color.Color) {
	px := image.Rect(
		int(math.Floor(rc.X)), int(math.Floor(rc.Y)),
		int(math.Ceil(rc.X+rc.W)), int(math.Ceil(rc.Y+rc.H)),
	).Intersect(img.Bounds())
	draw.Draw(img, px, image.NewUniform(c), image.Point{}, draw.Src)
}

// strokeRect outlines rc with a line of width lw centered on its edges.
func strokeRect(img draw.Image, rc layout.Rect, lw float64, c color.Color) {
	h := lw / 2
	fillRect(img, layout.Rect{X: rc.X - h, Y: rc.Y - h, W: rc.W + lw, H: lw}, c)
	fillRect(img, layout.Rect{X: rc.X - h, Y: rc.Y + rc.H - h, W: rc.W + lw, H: lw}, c)
	fillRect(img, layout.Rect{X: rc.X - h, Y: rc.Y - h, W: lw, H: rc.H + lw}, c)
	fillRect(img, layout.Rect{X: rc.X + rc.W - h, Y: rc.Y - h, W: lw, H: rc.H + lw}, c)
}

func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}
