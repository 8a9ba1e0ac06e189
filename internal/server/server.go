// Package server serves the web shell.
//
// Every browser gets a session (a UUID cookie) holding one [shell.State].
// Requests drive the state through a [shell.Controller]; each committed
// state is written back to the [session.Store], so a Redis store lets
// several instances share sessions.
//
// Routes:
//
//	GET  /                 the shell page
//	POST /text             replace the document text
//	POST /intensity        set the masking intensity (clamped)
//	POST /generate         apply the posted text/intensity and render
//	POST /help             toggle the instructions (?hide=1 hides)
//	GET  /preview.jpg      the current preview (?thumb=1 for a thumbnail)
//	GET  /save             the preview as an attachment
//	POST /files            the deployment archive as an attachment
//	GET  /source/app.html  the live UI source the archive is built from
//	GET  /static/*         page assets
//	GET  /healthz          liveness
package server

import (
	"context"
	"errors"
	"html/template"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/redactor/internal/server/web"
	"github.com/matzehuels/redactor/pkg/packager"
	"github.com/matzehuels/redactor/pkg/pipeline"
	"github.com/matzehuels/redactor/pkg/session"
	"github.com/matzehuels/redactor/pkg/shell"
)

const (
	// CookieName holds the session id.
	CookieName = "redactor_session"

	// ThumbnailWidth is the width of ?thumb=1 previews.
	ThumbnailWidth = 400

	// DefaultMaxBody bounds request bodies.
	DefaultMaxBody = 1 << 20

	// DefaultShutdownTimeout bounds graceful shutdown.
	DefaultShutdownTimeout = 10 * time.Second

	sweepInterval = 10 * time.Minute
)

// Options configures a Server.
type Options struct {
	Addr            string
	SessionTTL      time.Duration
	MaxBody         int64
	ShutdownTimeout time.Duration

	// Delay is waited before each render. Zero renders immediately.
	Delay time.Duration

	// Render is the base for every render. The format is always JPEG.
	Render pipeline.Options

	// Source is the UI source packaged by POST /files. Defaults to the
	// embedded page template.
	Source packager.Source

	// SecureCookie marks the session cookie Secure.
	SecureCookie bool
}

func (o *Options) setDefaults() {
	if o.Addr == "" {
		o.Addr = ":8080"
	}
	if o.SessionTTL <= 0 {
		o.SessionTTL = session.DefaultTTL
	}
	if o.MaxBody <= 0 {
		o.MaxBody = DefaultMaxBody
	}
	if o.ShutdownTimeout <= 0 {
		o.ShutdownTimeout = DefaultShutdownTimeout
	}
	if o.Source == nil {
		o.Source = packager.FSSource{FS: web.FS, Path: web.AppSource}
	}
	o.Render.Format = pipeline.FormatJPEG
}

// Server is the web shell.
type Server struct {
	opts     Options
	renderer shell.Renderer
	store    session.Store
	logger   *log.Logger
	page     *template.Template

	mu       sync.Mutex
	sessions map[string]*liveSession
}

// New creates a server. The store is owned by the caller.
func New(renderer shell.Renderer, store session.Store, logger *log.Logger, opts Options) (*Server, error) {
	if logger == nil {
		logger = log.Default()
	}
	opts.setDefaults()
	page, err := template.ParseFS(web.FS, web.AppSource)
	if err != nil {
		return nil, err
	}
	return &Server{
		opts:     opts,
		renderer: renderer,
		store:    store,
		logger:   logger,
		page:     page,
		sessions: make(map[string]*liveSession),
	}, nil
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(limitBody(s.opts.MaxBody))

	r.Get("/healthz", s.handleHealth)
	r.Get("/source/app.html", s.handleSource)
	r.Handle("/static/*", staticHandler())

	r.Group(func(r chi.Router) {
		r.Use(s.withSession)
		r.Get("/", s.handleIndex)
		r.Post("/text", s.handleText)
		r.Post("/intensity", s.handleIntensity)
		r.Post("/generate", s.handleGenerate)
		r.Post("/help", s.handleHelp)
		r.Get("/preview.jpg", s.handlePreview)
		r.Get("/save", s.handleSave)
		r.Post("/files", s.handleFiles)
	})
	return r
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.opts.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		s.sweep(gctx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}

// sweep periodically drops expired sessions until ctx is done.
func (s *Server) sweep(ctx context.Context) {
	t := time.NewTicker(sweepInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.prune(ctx, time.Now())
		}
	}
}

func (s *Server) prune(ctx context.Context, now time.Time) {
	if err := s.store.Cleanup(ctx); err != nil {
		s.logger.Warn("session cleanup failed", "error", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ls := range s.sessions {
		if ls.expired(now) {
			delete(s.sessions, id)
		}
	}
}
