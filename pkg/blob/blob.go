// Package blob hands finished bytes to the host environment.
//
// A [Sink] accepts a blob and a suggested filename and delivers it: to a
// directory on disk, to a stream, or to a browser as a download. Callers
// that produce files (saving a preview, building an archive) depend only on
// Sink and never on a specific host API.
package blob

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	rerrors "github.com/matzehuels/redactor/pkg/errors"
)

// Sink accepts bytes and a suggested name and hands them to the host.
type Sink interface {
	Save(ctx context.Context, data []byte, name string) error
}

// SinkFunc adapts a function to [Sink].
type SinkFunc func(ctx context.Context, data []byte, name string) error

// Save calls f.
func (f SinkFunc) Save(ctx context.Context, data []byte, name string) error { return f(ctx, data, name) }

// DirSink writes each blob to Dir/name. Names with path components are
// rejected.
type DirSink struct {
	Dir string
}

// Save writes data to a temporary file and renames it into place, so a
// failed write never leaves a partial file under name.
func (s DirSink) Save(ctx context.Context, data []byte, name string) error {
	if err := rerrors.ValidateFilename(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+name+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(dir, name))
}

// Path returns where Save puts a blob called name.
func (s DirSink) Path(name string) string {
	return filepath.Join(s.Dir, name)
}

// WriterSink streams every blob to W and ignores the name.
type WriterSink struct {
	W io.Writer
}

// Save writes data to W.
func (s WriterSink) Save(ctx context.Context, data []byte, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.W.Write(data)
	return err
}

// HTTPSink sends a blob as a download response.
type HTTPSink struct {
	W http.ResponseWriter

	// ContentType overrides the type guessed from the name's extension.
	ContentType string
}

// Save writes headers and body. It must be called at most once per response.
func (s HTTPSink) Save(ctx context.Context, data []byte, name string) error {
	if err := rerrors.ValidateFilename(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	h := s.W.Header()
	h.Set("Content-Type", s.contentType(name))
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	h.Set("Content-Length", strconv.Itoa(len(data)))
	h.Set("Cache-Control", "no-store")
	s.W.WriteHeader(http.StatusOK)
	_, err := s.W.Write(data)
	return err
}

func (s HTTPSink) contentType(name string) string {
	if s.ContentType != "" {
		return s.ContentType
	}
	ext := filepath.Ext(name)
	if ext == ".zip" {
		return "application/zip"
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// MemorySink keeps the most recent blob. It is safe for concurrent use.
type MemorySink struct {
	mu    sync.Mutex
	name  string
	data  []byte
	saves int
}

// Save records a copy of data under name.
func (s *MemorySink) Save(ctx context.Context, data []byte, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
	s.data = append([]byte(nil), data...)
	s.saves++
	return nil
}

// Last returns the most recent blob and its name.
func (s *MemorySink) Last() ([]byte, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data, s.name
}

// Saves returns how many blobs were saved.
func (s *MemorySink) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// Ensure implementations satisfy Sink.
var (
	_ Sink = DirSink{}
	_ Sink = WriterSink{}
	_ Sink = HTTPSink{}
	_ Sink = (*MemorySink)(nil)
	_ Sink = SinkFunc(nil)
)
