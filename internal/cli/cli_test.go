package cli

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/redactor/internal/server/web"
	rerrors "github.com/matzehuels/redactor/pkg/errors"
	"github.com/matzehuels/redactor/pkg/packager"
	"github.com/matzehuels/redactor/pkg/render/layout"
)

// runCLI executes the root command with args in an isolated environment.
func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func decodeFile(t *testing.T, path string) image.Config {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return cfg
}

func TestRenderSample(t *testing.T) {
	out := filepath.Join(t.TempDir(), "page.jpg")
	if _, err := runCLI(t, "", "render", "--sample", "--seed", "7", "-o", out); err != nil {
		t.Fatalf("render error: %v", err)
	}
	cfg := decodeFile(t, out)
	if cfg.Width != 800 || cfg.Height != 1100 {
		t.Errorf("page = %dx%d, want 800x1100", cfg.Width, cfg.Height)
	}
}

func TestRenderStdinPNG(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "memo")
	if _, err := runCLI(t, "SECRET LOCATION", "render", "-", "-f", "png", "-o", base); err != nil {
		t.Fatalf("render error: %v", err)
	}
	cfg := decodeFile(t, base+".png")
	if cfg.Width != 800 {
		t.Errorf("width = %d", cfg.Width)
	}
}

func TestRenderFileJSONToStdout(t *testing.T) {
	in := writeFile(t, t.TempDir(), "memo.txt", "SECRET LOCATION")
	out, err := runCLI(t, "", "render", in, "-f", "json", "-i", "100", "-o", "-")
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	var l layout.Layout
	if err := json.Unmarshal([]byte(out), &l); err != nil {
		t.Fatalf("output is not a layout: %v", err)
	}
	if l.Intensity != 100 {
		t.Errorf("intensity = %d", l.Intensity)
	}
	if strings.Contains(out, "SECRET") {
		t.Error("masked words must not appear in the output")
	}
}

func TestRenderRejects(t *testing.T) {
	in := writeFile(t, t.TempDir(), "memo.txt", "x")
	tests := []struct {
		name string
		args []string
		code rerrors.Code
	}{
		{"intensity too high", []string{"render", "--sample", "-i", "150"}, rerrors.ErrCodeInvalidIntensity},
		{"intensity negative", []string{"render", "--sample", "-i", "-1"}, rerrors.ErrCodeInvalidIntensity},
		{"bad format", []string{"render", "--sample", "-f", "gif"}, rerrors.ErrCodeInvalidFormat},
		{"sample with file", []string{"render", "--sample", in}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, "", tt.args...)
			if err == nil {
				t.Fatal("expected an error")
			}
			if tt.code != "" && !rerrors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestRenderSeededIsCached(t *testing.T) {
	dir := t.TempDir()
	cacheDir := filepath.Join(dir, "cache")
	cfg := writeFile(t, dir, "config.toml", "[cache]\ndir = \""+filepath.ToSlash(cacheDir)+"\"\n")

	out := filepath.Join(dir, "a.jpg")
	if _, err := runCLI(t, "", "--config", cfg, "render", "--sample", "--seed", "11", "-o", out); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(cacheDir)
	if err != nil || len(entries) == 0 {
		t.Fatalf("seeded render should populate the cache: %v", err)
	}

	if _, err := runCLI(t, "", "--config", cfg, "cache", "clear"); err != nil {
		t.Fatal(err)
	}
	entries, _ = os.ReadDir(cacheDir)
	if len(entries) != 0 {
		t.Errorf("cache clear left %d entries", len(entries))
	}

	path, err := runCLI(t, "", "--config", cfg, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(path) != filepath.ToSlash(cacheDir) && strings.TrimSpace(path) != cacheDir {
		t.Errorf("cache path = %q, want %q", path, cacheDir)
	}
}

func readArchive(t *testing.T, path string) map[string]string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer zr.Close()
	files := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		b, _ := io.ReadAll(rc)
		rc.Close()
		files[f.Name] = string(b)
	}
	return files
}

func TestFilesEmbeddedSource(t *testing.T) {
	dir := t.TempDir()
	if _, err := runCLI(t, "", "files", "-o", dir); err != nil {
		t.Fatalf("files error: %v", err)
	}
	files := readArchive(t, filepath.Join(dir, packager.ArchiveName))
	if len(files) != 4 {
		t.Fatalf("archive has %d entries, want 4", len(files))
	}
	src, _ := web.FS.ReadFile(web.AppSource)
	if files[packager.AppSourceName] != string(src) {
		t.Error("app.html should be the embedded UI source")
	}
	if files[packager.IndexHTMLName] != packager.IndexHTML {
		t.Error("index.html should be the fixed bootstrap page")
	}
}

func TestFilesSourceFlag(t *testing.T) {
	dir := t.TempDir()
	local := writeFile(t, dir, "custom.html", "<p>custom</p>")

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/source/app.html" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("<p>remote</p>"))
	}))
	defer ts.Close()

	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"file", local, "<p>custom</p>"},
		{"url", ts.URL + "/source/app.html", "<p>remote</p>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := t.TempDir()
			if _, err := runCLI(t, "", "files", "-o", out, "--source", tt.source); err != nil {
				t.Fatalf("files error: %v", err)
			}
			files := readArchive(t, filepath.Join(out, packager.ArchiveName))
			if files[packager.AppSourceName] != tt.want {
				t.Errorf("app.html = %q, want %q", files[packager.AppSourceName], tt.want)
			}
		})
	}
}

func TestFilesSourceFailure(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	out := t.TempDir()
	_, err := runCLI(t, "", "files", "-o", out, "--no-cache", "--source", ts.URL+"/source/app.html")
	if !rerrors.Is(err, rerrors.ErrCodeArchive) {
		t.Errorf("error = %v, want %s", err, rerrors.ErrCodeArchive)
	}
	if _, err := os.Stat(filepath.Join(out, packager.ArchiveName)); !os.IsNotExist(err) {
		t.Error("no archive should be written when the source fetch fails")
	}
}

func TestFilesMissingLocalSource(t *testing.T) {
	if _, err := runCLI(t, "", "files", "--source", filepath.Join(t.TempDir(), "nope.html")); err == nil {
		t.Error("missing source file should fail")
	}
}

func TestConfigShow(t *testing.T) {
	out, err := runCLI(t, "", "config", "show")
	if err != nil {
		t.Fatal(err)
	}
	for _, section := range []string{"[render]", "[server]", "[cache]"} {
		if !strings.Contains(out, section) {
			t.Errorf("config show missing %s", section)
		}
	}
}

func TestBadConfigFails(t *testing.T) {
	cfg := writeFile(t, t.TempDir(), "config.toml", "[render]\nintensity = 400\n")
	_, err := runCLI(t, "", "--config", cfg, "config", "show")
	if !rerrors.Is(err, rerrors.ErrCodeInvalidConfig) {
		t.Errorf("error = %v, want %s", err, rerrors.ErrCodeInvalidConfig)
	}
}

func TestCompletion(t *testing.T) {
	out, err := runCLI(t, "", "completion", "bash")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "redactor") {
		t.Error("completion script should mention the command")
	}
}

func TestOutputPath(t *testing.T) {
	sep := string(filepath.Separator)
	tests := []struct {
		output, format, want string
	}{
		{"", "jpeg", "redacted_intel.jpg"},
		{"", "png", "redacted_intel.png"},
		{"memo", "json", "memo.json"},
		{"memo.jpeg", "jpeg", "memo.jpeg"},
		{"out" + sep, "jpeg", filepath.Join("out", "redacted_intel.jpg")},
	}
	for _, tt := range tests {
		if got := outputPath(tt.output, tt.format); got != tt.want {
			t.Errorf("outputPath(%q, %q) = %q, want %q", tt.output, tt.format, got, tt.want)
		}
	}
}

func TestReadInputRejectsControlCharacters(t *testing.T) {
	_, err := readInput(strings.NewReader("bad\x00text"), "-", false)
	if !rerrors.Is(err, rerrors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want %s", err, rerrors.ErrCodeInvalidInput)
	}
}

func TestDisplayURL(t *testing.T) {
	if got := displayURL(":8080"); got != "http://localhost:8080" {
		t.Errorf("displayURL(:8080) = %q", got)
	}
	if got := displayURL("0.0.0.0:9000"); got != "http://0.0.0.0:9000" {
		t.Errorf("displayURL(0.0.0.0:9000) = %q", got)
	}
}
