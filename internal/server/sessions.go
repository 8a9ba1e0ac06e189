package server

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/matzehuels/redactor/pkg/session"
	"github.com/matzehuels/redactor/pkg/shell"
)

// liveSession is a session with a controller attached. The controller
// serialises transitions for the session within this process; sess is the
// copy last written to or read from the store.
type liveSession struct {
	id      string
	ctrl    *shell.Controller
	expires atomic.Int64

	mu   sync.Mutex
	sess *session.Session
}

func (ls *liveSession) expired(now time.Time) bool {
	return now.UnixNano() > ls.expires.Load()
}

func (ls *liveSession) stale(stored *session.Session) bool {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return stored.Supersedes(ls.sess)
}

type ctxKey int

const controllerKey ctxKey = 0

func controllerFrom(ctx context.Context) *shell.Controller {
	c, _ := ctx.Value(controllerKey).(*shell.Controller)
	return c
}

// withSession attaches the request's controller to the context, creating a
// session (and its single automatic render) when the cookie is missing or
// stale.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var id string
		if c, err := r.Cookie(CookieName); err == nil && session.ValidateID(c.Value) == nil {
			id = c.Value
		}

		ls, err := s.lookup(ctx, id)
		if err != nil {
			s.logger.Error("session lookup failed", "error", err)
			writeError(w, http.StatusInternalServerError, "session unavailable")
			return
		}
		if ls == nil {
			ls, err = s.create(ctx)
			if err != nil {
				s.logger.Error("session create failed", "error", err)
				writeError(w, http.StatusInternalServerError, "session unavailable")
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     CookieName,
				Value:    ls.id,
				Path:     "/",
				MaxAge:   int(s.opts.SessionTTL / time.Second),
				HttpOnly: true,
				Secure:   s.opts.SecureCookie,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, controllerKey, ls.ctrl)))
	})
}

// lookup returns the live session for id. The store is read on every
// request so that edits saved by another instance are picked up. It returns
// nil for unknown or expired ids.
func (s *Server) lookup(ctx context.Context, id string) (*liveSession, error) {
	if id == "" {
		return nil, nil
	}
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	ls, ok := s.sessions[id]
	if ok && sess == nil {
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	switch {
	case sess == nil:
		return nil, nil
	case !ok:
		return s.attach(sess), nil
	}
	if ls.stale(sess) {
		s.reload(ls, sess)
	}
	return ls, nil
}

// reload installs a later stored copy into a live session. A render or
// packaging run in flight here keeps the local state; its result is saved
// over the stored copy when it completes.
func (s *Server) reload(ls *liveSession, sess *session.Session) {
	ok := ls.ctrl.Reload(func(shell.State) (shell.State, bool) {
		ls.mu.Lock()
		defer ls.mu.Unlock()
		if !sess.Supersedes(ls.sess) {
			return shell.State{}, false
		}
		ls.sess = sess
		ls.expires.Store(sess.ExpiresAt.UnixNano())
		return shell.Idle(sess.State), true
	})
	if ok {
		s.logger.Debug("session reloaded", "id", sess.ID, "revision", sess.Revision)
	}
}

// create starts a session and performs its automatic first render.
func (s *Server) create(ctx context.Context) (*liveSession, error) {
	sess, err := session.New(s.opts.SessionTTL)
	if err != nil {
		return nil, err
	}
	if err := s.store.Set(ctx, sess); err != nil {
		return nil, err
	}
	ls := s.attach(sess)
	s.logger.Debug("session created", "id", sess.ID)
	if _, err := ls.ctrl.Generate(ctx); err != nil {
		s.logger.Warn("initial render failed", "id", sess.ID, "error", err)
	}
	return ls, nil
}

// attach builds a controller for sess and registers it. If another request
// attached the same id first, that one wins. Busy flags in the stored copy
// are cleared; no work for it is running in this process.
func (s *Server) attach(sess *session.Session) *liveSession {
	ls := &liveSession{id: sess.ID, sess: sess}
	ls.expires.Store(sess.ExpiresAt.UnixNano())
	ls.ctrl = shell.NewController(s.renderer, s.opts.Source,
		shell.WithState(shell.Idle(sess.State)),
		shell.WithDelay(s.opts.Delay),
		shell.WithRenderOptions(s.opts.Render),
		shell.WithLogger(s.logger.With("session", sess.ID)),
		shell.WithOnChange(s.persist(ls)),
	)

	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.sessions[sess.ID]; ok && !cur.expired(time.Now()) {
		return cur
	}
	s.sessions[sess.ID] = ls
	return ls
}

// persist returns the OnChange hook writing states back to the store. The
// controller calls it with its lock held. Busy flags are not stored.
func (s *Server) persist(ls *liveSession) func(context.Context, shell.State) {
	return func(ctx context.Context, st shell.State) {
		ls.mu.Lock()
		next := *ls.sess
		next.State = shell.Idle(st)
		next.Revision++
		next.Touch(s.opts.SessionTTL)
		ls.sess = &next
		ls.mu.Unlock()

		ls.expires.Store(next.ExpiresAt.UnixNano())
		if err := s.store.Set(context.WithoutCancel(ctx), &next); err != nil {
			s.logger.Warn("session save failed", "id", next.ID, "error", err)
		}
	}
}
