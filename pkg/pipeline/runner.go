package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/redactor/pkg/cache"
	rerrors "github.com/matzehuels/redactor/pkg/errors"
	"github.com/matzehuels/redactor/pkg/fonts"
	"github.com/matzehuels/redactor/pkg/observability"
	"github.com/matzehuels/redactor/pkg/render/layout"
	"github.com/matzehuels/redactor/pkg/render/sink"
)

// Runner encapsulates pipeline execution with caching.
// The CLI, the terminal shell, and the web shell all use it so that caching
// and validation behave the same everywhere.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// Clock stamps the page footer. Nil means time.Now.
	Clock func() time.Time

	// Surface allocates the page. Nil means an in-memory RGBA image.
	Surface sink.Surface
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	if err := wait(ctx, opts.Delay); err != nil {
		return nil, err
	}

	faces, err := fonts.New()
	if err != nil {
		return nil, rerrors.Wrap(rerrors.ErrCodeInternal, err, "load fonts")
	}
	defer faces.Close()

	result := &Result{
		Format:      opts.Format,
		ContentType: ContentType(opts.Format),
		Seed:        opts.Seed,
	}

	// Stage 1: Layout
	layoutStart := time.Now()
	l, layoutHit := r.LayoutWithCacheInfo(ctx, faces, opts)
	result.Layout = l
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.Tokens = len(l.Words())
	result.Stats.Masked = l.Masked
	result.Stats.Drawn = l.Drawn
	result.Stats.Rows = l.Rows
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Debug("computed layout",
		"tokens", result.Stats.Tokens,
		"masked", l.Masked,
		"rows", l.Rows,
		"duration", result.Stats.LayoutTime)

	// Stage 2: Render
	renderStart := time.Now()
	data, renderHit, err := r.RenderWithCacheInfo(ctx, l, faces, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifact = data
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered page",
		"format", opts.Format,
		"bytes", len(data),
		"masked", l.Masked,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LayoutWithCacheInfo computes the layout, consulting the cache for seeded
// runs, and reports whether it was a cache hit.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, faces *fonts.Faces, opts Options) (layout.Layout, bool) {
	hooks := observability.Render()
	cacheKey := r.Keyer.LayoutKey(cache.Hash([]byte(opts.Text)), opts.LayoutKeyOpts())

	// Try cache first
	if opts.Seeded() && !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached layout.Layout
			if err := json.Unmarshal(data, &cached); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				return cached, true
			}
			// If deserialization fails, fall through to recompute
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	start := time.Now()
	hooks.OnLayoutStart(ctx, opts.Intensity, len(opts.Text))
	l := ComputeLayout(faces, opts)
	hooks.OnLayoutComplete(ctx, len(l.Tokens), l.Masked, time.Since(start))

	// Cache the result
	if opts.Seeded() {
		if data, err := json.Marshal(l); err == nil {
			if r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout) == nil {
				observability.Cache().OnCacheSet(ctx, "layout", len(data))
			}
		}
	}
	return l, false
}

// RenderWithCacheInfo encodes l, consulting the cache for seeded runs, and
// reports whether the artifact was a cache hit.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l layout.Layout, faces *fonts.Faces, opts Options) ([]byte, bool, error) {
	if err := ValidateFormat(opts.Format); err != nil {
		return nil, false, err
	}

	var cacheKey string
	if opts.Seeded() {
		layoutData, err := json.Marshal(l)
		if err != nil {
			return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
		}
		cacheKey = r.Keyer.ArtifactKey(cache.Hash(layoutData), opts.ArtifactKeyOpts())

		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, "artifact")
				return data, true, nil
			}
			observability.Cache().OnCacheMiss(ctx, "artifact")
		}
	}

	hooks := observability.Render()
	start := time.Now()
	hooks.OnRenderStart(ctx, opts.Format)
	data, err := RenderLayout(l, opts.Format, opts.Quality, r.rasterOptions(faces, opts)...)
	hooks.OnRenderComplete(ctx, opts.Format, len(data), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	// Cache the result
	if cacheKey != "" {
		if r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact) == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}
	return data, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) rasterOptions(faces *fonts.Faces, opts Options) []sink.RasterOption {
	ropts := []sink.RasterOption{sink.WithFaces(faces)}
	if r.Clock != nil {
		ropts = append(ropts, sink.WithClock(r.Clock))
	}
	if r.Surface != nil {
		ropts = append(ropts, sink.WithSurface(r.Surface))
	}
	if opts.Header != "" {
		ropts = append(ropts, sink.WithHeader(opts.Header))
	}
	return ropts
}

// wait blocks for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
