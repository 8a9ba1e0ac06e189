package blob

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	rerrors "github.com/matzehuels/redactor/pkg/errors"
)

func TestDirSink(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	s := DirSink{Dir: dir}

	if err := s.Save(context.Background(), []byte("jpeg"), "redacted_intel.jpg"); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	got, err := os.ReadFile(s.Path("redacted_intel.jpg"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "jpeg" {
		t.Errorf("file = %q", got)
	}

	// No temp files left behind.
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want 1", len(entries))
	}
}

func TestDirSinkRejectsPaths(t *testing.T) {
	s := DirSink{Dir: t.TempDir()}
	for _, name := range []string{"../escape.jpg", "a/b.jpg", "", ".hidden"} {
		err := s.Save(context.Background(), []byte("x"), name)
		if !rerrors.Is(err, rerrors.ErrCodeInvalidFilename) {
			t.Errorf("Save(%q) error = %v, want invalid filename", name, err)
		}
	}
}

func TestDirSinkCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	dir := t.TempDir()
	if err := (DirSink{Dir: dir}).Save(ctx, []byte("x"), "a.jpg"); err == nil {
		t.Error("Save with cancelled context should fail")
	}
	if _, err := os.Stat(filepath.Join(dir, "a.jpg")); !os.IsNotExist(err) {
		t.Error("cancelled save produced a file")
	}
}

func TestWriterSink(t *testing.T) {
	var buf bytes.Buffer
	if err := (WriterSink{W: &buf}).Save(context.Background(), []byte("zip"), "ignored.zip"); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "zip" {
		t.Errorf("written = %q", buf.String())
	}
}

func TestHTTPSink(t *testing.T) {
	tests := []struct {
		name, override, wantType string
	}{
		{"redacted_intel.jpg", "", "image/jpeg"},
		{"redactor-files-to-upload.zip", "", "application/zip"},
		{"blob.unknownext", "", "application/octet-stream"},
		{"page.bin", "image/png", "image/png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s := HTTPSink{W: rec, ContentType: tt.override}
			if err := s.Save(context.Background(), []byte("data"), tt.name); err != nil {
				t.Fatal(err)
			}
			if got := rec.Header().Get("Content-Type"); got != tt.wantType {
				t.Errorf("Content-Type = %q, want %q", got, tt.wantType)
			}
			want := `attachment; filename=` + tt.name
			if got := rec.Header().Get("Content-Disposition"); got != want {
				t.Errorf("Content-Disposition = %q, want %q", got, want)
			}
			if rec.Body.String() != "data" {
				t.Errorf("body = %q", rec.Body.String())
			}
		})
	}
}

func TestMemorySink(t *testing.T) {
	s := &MemorySink{}
	if data, name := s.Last(); data != nil || name != "" {
		t.Error("empty sink should have no blob")
	}

	src := []byte("first")
	if err := s.Save(context.Background(), src, "a.jpg"); err != nil {
		t.Fatal(err)
	}
	src[0] = 'X'
	if err := s.Save(context.Background(), []byte("second"), "b.jpg"); err != nil {
		t.Fatal(err)
	}

	data, name := s.Last()
	if string(data) != "second" || name != "b.jpg" {
		t.Errorf("Last() = %q, %q", data, name)
	}
	if s.Saves() != 2 {
		t.Errorf("Saves() = %d", s.Saves())
	}
}
