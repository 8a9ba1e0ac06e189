package shell

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/redactor/pkg/blob"
	rerrors "github.com/matzehuels/redactor/pkg/errors"
	"github.com/matzehuels/redactor/pkg/packager"
	"github.com/matzehuels/redactor/pkg/pipeline"
)

// Renderer runs the render pipeline. *pipeline.Runner implements it.
type Renderer interface {
	Execute(ctx context.Context, opts pipeline.Options) (*pipeline.Result, error)
}

// Controller binds a State to a renderer and a UI source. All transitions go
// through it; the state is never touched directly.
type Controller struct {
	mu       sync.Mutex
	state    State
	renderer Renderer
	source   packager.Source
	logger   *log.Logger
	delay    time.Duration
	base     pipeline.Options
	onChange func(context.Context, State)
}

// Option configures a Controller.
type Option func(*Controller)

// WithState starts the controller from s instead of [Initial].
func WithState(s State) Option { return func(c *Controller) { c.state = s } }

// WithDelay overrides [RenderDelay].
func WithDelay(d time.Duration) Option { return func(c *Controller) { c.delay = d } }

// WithRenderOptions sets the options every render starts from. Text,
// Intensity and Delay are always taken from the controller.
func WithRenderOptions(opts pipeline.Options) Option {
	return func(c *Controller) { c.base = opts }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option { return func(c *Controller) { c.logger = l } }

// WithOnChange registers fn to observe every state the controller commits,
// including the intermediate busy states.
func WithOnChange(fn func(context.Context, State)) Option {
	return func(c *Controller) { c.onChange = fn }
}

// NewController returns a controller in the [Initial] state.
func NewController(r Renderer, src packager.Source, opts ...Option) *Controller {
	c := &Controller{
		state:    Initial(),
		renderer: r,
		source:   src,
		logger:   log.Default(),
		delay:    RenderDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Apply commits fn(state) and returns the result. Use it for the
// instantaneous transitions (EditText, SetIntensity, ToggleHelp, ...).
func (c *Controller) Apply(ctx context.Context, fn func(State) State) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commit(ctx, fn(c.state))
}

// Reload replaces the state with one produced elsewhere, such as a copy
// saved by another process. fn receives the current state and reports
// whether to switch. Nothing is replaced while a render or packaging run is
// in flight, and OnChange is not called.
func (c *Controller) Reload(fn func(State) (State, bool)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Processing || c.state.Downloading {
		return false
	}
	next, ok := fn(c.state)
	if ok {
		c.state = next
	}
	return ok
}

// Generate renders the current document and installs the preview.
func (c *Controller) Generate(ctx context.Context) (State, error) {
	c.mu.Lock()
	s, err := BeginRender(c.state)
	if err != nil {
		c.mu.Unlock()
		return s, err
	}
	c.commit(ctx, s)
	doc := s.Doc
	c.mu.Unlock()

	opts := c.base
	opts.Text = doc.Text
	opts.Intensity = doc.Intensity
	opts.Delay = c.delay
	res, err := c.renderer.Execute(ctx, opts)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.logger.Error("render failed", "error", err)
		return c.commit(ctx, FailRender(c.state, err)), err
	}
	c.logger.Debug("render complete", "masked", res.Stats.Masked, "drawn", res.Stats.Drawn, "seed", res.Seed)
	return c.commit(ctx, CompleteRender(c.state, PreviewOf(res))), nil
}

// Save hands the current preview to sink as [SaveFilename].
func (c *Controller) Save(ctx context.Context, sink blob.Sink) error {
	s := c.State()
	if !CanSave(s) {
		return rerrors.New(rerrors.ErrCodeNotFound, "no preview to save")
	}
	return sink.Save(ctx, s.Preview.Data, s.Preview.Filename)
}

// GetFiles builds the deployment archive and hands it to sink. On success
// the instructions are shown; on failure the generic notice is set.
func (c *Controller) GetFiles(ctx context.Context, sink blob.Sink) (State, error) {
	c.mu.Lock()
	s, err := BeginPackage(c.state)
	if err != nil {
		c.mu.Unlock()
		return s, err
	}
	c.commit(ctx, s)
	c.mu.Unlock()

	if c.source == nil {
		err = rerrors.New(rerrors.ErrCodeArchive, "no UI source configured")
	} else {
		err = packager.Package(ctx, c.source, sink)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.logger.Error("packaging failed", "error", err)
		return c.commit(ctx, FailPackage(c.state, err)), err
	}
	c.logger.Info("archive saved", "name", packager.ArchiveName)
	return c.commit(ctx, CompletePackage(c.state)), nil
}

// commit installs s. The caller holds mu.
func (c *Controller) commit(ctx context.Context, s State) State {
	c.state = s
	if c.onChange != nil {
		c.onChange(ctx, s)
	}
	return s
}

// PreviewOf builds a preview from a pipeline result.
func PreviewOf(res *pipeline.Result) Preview {
	name := SaveFilename
	if res.Format != pipeline.FormatJPEG {
		name = "redacted_intel." + pipeline.Extension(res.Format)
	}
	return Preview{
		Data:       res.Artifact,
		Format:     res.Format,
		Filename:   name,
		RenderedAt: time.Now(),
		Seed:       res.Seed,
		Masked:     res.Stats.Masked,
		Drawn:      res.Stats.Drawn,
	}
}
