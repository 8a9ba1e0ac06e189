// Package pipeline provides the render pipeline shared by every redactor
// surface.
//
// This package implements the complete layout → render pipeline that the
// CLI, the terminal shell, and the web shell all use. By centralizing this
// logic, every entry point applies the same defaults, caching rules, and
// error codes.
//
// # Architecture
//
// The pipeline consists of two stages:
//
//  1. Layout: Tokenize and wrap the text, and decide which tokens to mask
//  2. Render: Draw the page and encode it (JPEG, PNG, or JSON)
//
// Both stages are cached, but only for seeded runs: an unseeded run draws a
// fresh mask pattern every time and would never hit.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Text:      "SECRET LOCATION",
//	    Intensity: 40,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	jpeg := result.Artifact
package pipeline

import (
	"time"

	"github.com/matzehuels/redactor/pkg/cache"
	"github.com/matzehuels/redactor/pkg/document"
	rerrors "github.com/matzehuels/redactor/pkg/errors"
	"github.com/matzehuels/redactor/pkg/render"
	"github.com/matzehuels/redactor/pkg/render/layout"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, TUI, and Server
// =============================================================================

const (
	// DefaultQuality is the JPEG quality used when none is set.
	DefaultQuality = render.DefaultQuality

	// DefaultFormat is the output format used when none is set.
	DefaultFormat = FormatJPEG
)

// Format constants for output formats.
const (
	FormatJPEG = "jpeg"
	FormatPNG  = "png"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJPEG: true,
	FormatPNG:  true,
	FormatJSON: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one render.
// This struct supports JSON serialization for API requests.
type Options struct {
	Text      string `json:"text"`
	Intensity int    `json:"intensity"`

	// Seed fixes the mask pattern. Zero draws a fresh seed and disables
	// caching for the run.
	Seed uint64 `json:"seed,omitempty"`

	// Render options
	Format  string `json:"format,omitempty"`
	Quality int    `json:"quality,omitempty"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
	Header  string `json:"header,omitempty"`

	// Refresh skips cache reads; fresh results are still written.
	Refresh bool `json:"refresh,omitempty"`

	// Delay is waited before any work starts so a busy indicator can paint.
	Delay time.Duration `json:"-"`

	seeded    bool
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Artifact is the encoded page.
	Artifact []byte

	// Format and ContentType describe Artifact.
	Format      string
	ContentType string

	// Layout is the placed and masked token stream.
	Layout layout.Layout

	// Seed is the seed the mask pattern was drawn from.
	Seed uint64

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Tokens     int
	Masked     int
	Drawn      int
	Rows       int
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether the artifact came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return rerrors.New(rerrors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: jpeg, png, json)", format)
	}
	return nil
}

// ContentType returns the MIME type for a format.
func ContentType(format string) string {
	switch format {
	case FormatPNG:
		return render.ContentTypePNG
	case FormatJSON:
		return render.ContentTypeJSON
	default:
		return render.ContentTypeJPEG
	}
}

// Extension returns the file extension for a format, without the dot.
func Extension(format string) string {
	if format == FormatJPEG {
		return "jpg"
	}
	return format
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks fields and applies defaults.
// Intensity is clamped rather than rejected. This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := rerrors.ValidateText(o.Text); err != nil {
		return err
	}
	o.Intensity = document.ClampIntensity(o.Intensity)

	if o.Format == "" {
		o.Format = DefaultFormat
	}
	if err := ValidateFormat(o.Format); err != nil {
		return err
	}
	if o.Quality == 0 {
		o.Quality = DefaultQuality
	}
	if err := rerrors.ValidateQuality(o.Quality); err != nil {
		return err
	}

	if o.Width == 0 {
		o.Width = layout.DefaultWidth
	}
	if o.Height == 0 {
		o.Height = layout.DefaultHeight
	}
	if err := o.LayoutConfig().Validate(); err != nil {
		return rerrors.Wrap(rerrors.ErrCodeInvalidInput, err, "invalid page size")
	}

	o.seeded = o.Seed != 0
	if !o.seeded {
		o.Seed = layout.Seed()
	}
	o.validated = true
	return nil
}

// Seeded reports whether the caller fixed the seed. Only seeded runs are
// cached.
func (o *Options) Seeded() bool {
	return o.seeded
}

// LayoutConfig returns the page geometry for these options.
func (o *Options) LayoutConfig() layout.Config {
	cfg := layout.DefaultConfig()
	cfg.Width = o.Width
	cfg.Height = o.Height
	return cfg
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Intensity: o.Intensity,
		Seed:      o.Seed,
		Width:     o.Width,
		Height:    o.Height,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts() cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: o.Format, Header: o.Header}
	if o.Format == FormatJPEG {
		k.Quality = o.Quality
	}
	return k
}
