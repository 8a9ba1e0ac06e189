// Package cache stores rendered artifacts and fetched sources between runs.
//
// Backends implement [Cache]: [FileCache] for the CLI, [RedisCache] for
// servers sharing work across instances, and [NullCache] when caching is
// disabled. Keys come from a [Keyer] so that every backend agrees on the
// same namespace.
package cache

import (
	"context"
	"time"
)

// TTLs for each kind of entry.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
	TTLSource   = time.Hour
)

// Cache is a byte-oriented key/value store with per-entry expiry.
// A zero ttl means the entry never expires.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// LayoutKeyOpts identifies a computed layout for a given text.
type LayoutKeyOpts struct {
	Intensity int    `json:"intensity"`
	Seed      uint64 `json:"seed"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// ArtifactKeyOpts identifies an encoding of a layout.
type ArtifactKeyOpts struct {
	Format  string `json:"format"`
	Quality int    `json:"quality,omitempty"`
	Header  string `json:"header,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// LayoutKey keys a layout by the hash of its source text.
	LayoutKey(textHash string, opts LayoutKeyOpts) string

	// ArtifactKey keys an encoded page by the hash of its layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string

	// SourceKey keys a fetched source file by its location.
	SourceKey(location string) string
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey returns "layout:<sha256>".
func (DefaultKeyer) LayoutKey(textHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", textHash, opts)
}

// ArtifactKey returns "artifact:<sha256>".
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// SourceKey returns "source:<location>".
func (DefaultKeyer) SourceKey(location string) string {
	return "source:" + location
}
