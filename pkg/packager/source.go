package packager

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/matzehuels/redactor/pkg/cache"
	"github.com/matzehuels/redactor/pkg/httputil"
)

// Source supplies the live UI source included as [AppSourceName].
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// HTTPSource fetches the UI source from a running server.
type HTTPSource struct {
	URL    string
	Client *http.Client

	// Retry re-attempts transient failures with backoff.
	Retry bool
}

// Fetch GETs the URL. Any status other than 200 is an error.
func (s HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	if !s.Retry {
		return httputil.Fetch(ctx, s.Client, s.URL)
	}
	var body []byte
	err := httputil.RetryWithBackoff(ctx, func() error {
		var err error
		body, err = httputil.Fetch(ctx, s.Client, s.URL)
		return err
	})
	return body, err
}

func (s HTTPSource) String() string { return s.URL }

// FSSource reads the UI source from a file system, typically an embedded one.
type FSSource struct {
	FS   fs.FS
	Path string
}

// Fetch reads Path from FS.
func (s FSSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return fs.ReadFile(s.FS, s.Path)
}

func (s FSSource) String() string { return "fs:" + s.Path }

// StaticSource returns fixed bytes.
type StaticSource []byte

// Fetch returns a copy of s.
func (s StaticSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]byte(nil), s...), nil
}

func (StaticSource) String() string { return "static" }

// cachedSource serves fetches from a cache, falling back to the wrapped
// source on a miss.
type cachedSource struct {
	src   Source
	cache cache.Cache
	key   string
}

// Cached wraps src so successful fetches are kept in c under key for
// [cache.TTLSource]. Cache errors are ignored.
func Cached(src Source, c cache.Cache, key string) Source {
	if c == nil {
		return src
	}
	return &cachedSource{src: src, cache: c, key: key}
}

func (s *cachedSource) Fetch(ctx context.Context) ([]byte, error) {
	if data, hit, err := s.cache.Get(ctx, s.key); err == nil && hit {
		return data, nil
	}
	data, err := s.src.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, s.key, data, cache.TTLSource)
	return data, nil
}

func (s *cachedSource) String() string { return describe(s.src) }

// describe names a source for logs and hooks.
func describe(src Source) string {
	if s, ok := src.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", src)
}
