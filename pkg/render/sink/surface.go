package sink

import (
	"errors"
	"image"
	"image/draw"

	rerrors "github.com/matzehuels/redactor/pkg/errors"
)

// ErrSurfaceUnavailable is returned when no drawing surface can be obtained.
var ErrSurfaceUnavailable = errors.New("drawing surface unavailable")

// MaxSurfaceDim bounds each side of the default surface.
const MaxSurfaceDim = 8192

// Surface allocates drawing targets.
type Surface interface {
	NewSurface(width, height int) (draw.Image, error)
}

// SurfaceFunc adapts a function to [Surface].
type SurfaceFunc func(width, height int) (draw.Image, error)

// NewSurface calls f(width, height).
func (f SurfaceFunc) NewSurface(width, height int) (draw.Image, error) { return f(width, height) }

// RGBASurface allocates in-memory RGBA images.
type RGBASurface struct{}

// NewSurface returns a blank RGBA image of the requested size.
func (RGBASurface) NewSurface(width, height int) (draw.Image, error) {
	if width <= 0 || height <= 0 || width > MaxSurfaceDim || height > MaxSurfaceDim {
		return nil, rerrors.Wrap(rerrors.ErrCodeSurfaceUnavailable, ErrSurfaceUnavailable,
			"cannot allocate a %dx%d canvas", width, height)
	}
	return image.NewRGBA(image.Rect(0, 0, width, height)), nil
}
