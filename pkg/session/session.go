// Package session keeps one UI shell state per browser session.
//
// This package defines the Store interface with implementations for
// different backends:
//   - memory: In-memory storage for a single server process
//   - redis: Redis-backed storage for multi-instance deployments
//
// Sessions are ephemeral. They expire after a period of inactivity and are
// never written anywhere durable.
//
// # Usage
//
//	// Single process
//	store := session.NewMemoryStore()
//
//	// Several instances behind a load balancer
//	store, err := session.DialRedis(ctx, "redis://localhost:6379/0", "")
//
//	sess, err := session.New(session.DefaultTTL)
//	if err != nil {
//	    return err
//	}
//	store.Set(ctx, sess)
//
//	sess, err = store.Get(ctx, sessionID)
//	if err != nil {
//	    return err
//	}
//	if sess == nil {
//	    // Session not found or expired
//	}
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/redactor/pkg/shell"
)

// DefaultTTL is how long an idle session lives.
const DefaultTTL = 24 * time.Hour

// Sentinel errors for session operations.
var (
	// ErrInvalidID is returned for session ids that are not UUIDs.
	ErrInvalidID = errors.New("invalid session id")
)

// Session is one browser's shell state.
type Session struct {
	ID        string      `json:"id"`
	State     shell.State `json:"state"`
	CreatedAt time.Time   `json:"created_at"`
	ExpiresAt time.Time   `json:"expires_at"`

	// Revision counts saved states. Servers sharing a store compare it to
	// notice writes made by another instance.
	Revision uint64 `json:"revision"`
}

// New creates a session in the initial shell state.
func New(ttl time.Duration) (*Session, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return &Session{
		ID:        id.String(),
		State:     shell.Initial(),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}, nil
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Touch extends the session by ttl from now.
func (s *Session) Touch(ttl time.Duration) {
	s.ExpiresAt = time.Now().Add(ttl)
}

// Supersedes reports whether s is a later save than o. Two writers can
// reach the same revision; the expiry tells those copies apart, and then s
// wins since it is the one the store holds.
func (s *Session) Supersedes(o *Session) bool {
	if s.Revision != o.Revision {
		return s.Revision > o.Revision
	}
	return !s.ExpiresAt.Equal(o.ExpiresAt)
}

// ValidateID checks that id is a well-formed session id.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidID
	}
	return nil
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist or has expired.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, session *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, sessionID string) error

	// Cleanup removes expired sessions (optional, may be no-op for Redis).
	Cleanup(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}
