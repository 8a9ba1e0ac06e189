package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"strconv"

	"github.com/matzehuels/redactor/internal/server/web"
	"github.com/matzehuels/redactor/pkg/blob"
	"github.com/matzehuels/redactor/pkg/buildinfo"
	rerrors "github.com/matzehuels/redactor/pkg/errors"
	"github.com/matzehuels/redactor/pkg/pipeline"
	"github.com/matzehuels/redactor/pkg/render"
	"github.com/matzehuels/redactor/pkg/shell"
)

// pageData feeds app.html.
type pageData struct {
	Text        string
	Intensity   int
	Processing  bool
	Downloading bool
	ShowHelp    bool
	HasPreview  bool
	Masked      int
	Drawn       int
	Renders     int
	Notice      string
	SaveName    string
	Title       string
	Steps       []shell.Step
	Note        string
	Version     string
}

func newPageData(st shell.State) pageData {
	d := pageData{
		Text:        st.Doc.Text,
		Intensity:   st.Doc.Intensity,
		Processing:  st.Processing,
		Downloading: st.Downloading,
		ShowHelp:    shell.HelpVisible(st),
		HasPreview:  shell.CanSave(st),
		Renders:     st.Renders,
		Notice:      st.Notice,
		SaveName:    shell.SaveFilename,
		Title:       shell.InstructionsTitle,
		Steps:       shell.Instructions,
		Note:        shell.InstructionsNote,
		Version:     buildinfo.Version,
	}
	if st.Preview != nil {
		d.Masked = st.Preview.Masked
		d.Drawn = st.Preview.Drawn
		d.SaveName = st.Preview.Filename
	}
	return d
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	st := controllerFrom(r.Context()).State()
	var buf bytes.Buffer
	if err := s.page.Execute(&buf, newPageData(st)); err != nil {
		s.logger.Error("page render failed", "error", err)
		writeError(w, http.StatusInternalServerError, "page unavailable")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleText(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	text := r.PostFormValue("text")
	if err := rerrors.ValidateText(text); err != nil {
		writeErr(w, err)
		return
	}
	controllerFrom(r.Context()).Apply(r.Context(), func(st shell.State) shell.State {
		return shell.EditText(st, text)
	})
	backToPage(w, r)
}

func (s *Server) handleIntensity(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	n, err := formIntensity(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	controllerFrom(r.Context()).Apply(r.Context(), func(st shell.State) shell.State {
		return shell.SetIntensity(st, n)
	})
	backToPage(w, r)
}

// handleGenerate applies whichever of text and intensity the form carries,
// then renders. A failed render is reported through the page notice.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	var edits []func(shell.State) shell.State
	if _, ok := r.PostForm["text"]; ok {
		text := r.PostFormValue("text")
		if err := rerrors.ValidateText(text); err != nil {
			writeErr(w, err)
			return
		}
		edits = append(edits, func(st shell.State) shell.State { return shell.EditText(st, text) })
	}
	if _, ok := r.PostForm["intensity"]; ok {
		n, err := formIntensity(r)
		if err != nil {
			writeErr(w, err)
			return
		}
		edits = append(edits, func(st shell.State) shell.State { return shell.SetIntensity(st, n) })
	}

	ctrl := controllerFrom(r.Context())
	if len(edits) > 0 {
		ctrl.Apply(r.Context(), func(st shell.State) shell.State {
			for _, edit := range edits {
				st = edit(st)
			}
			return st
		})
	}
	if _, err := ctrl.Generate(r.Context()); err != nil && rerrors.Is(err, rerrors.ErrCodeBusy) {
		writeErr(w, err)
		return
	}
	backToPage(w, r)
}

func (s *Server) handleHelp(w http.ResponseWriter, r *http.Request) {
	hide := r.URL.Query().Get("hide") != ""
	controllerFrom(r.Context()).Apply(r.Context(), func(st shell.State) shell.State {
		if hide {
			return shell.HideHelp(st)
		}
		return shell.ToggleHelp(st)
	})
	backToPage(w, r)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	st := controllerFrom(r.Context()).State()
	if !shell.CanSave(st) {
		writeError(w, http.StatusNotFound, "no preview yet")
		return
	}
	data := st.Preview.Data
	ct := pipeline.ContentType(st.Preview.Format)
	if r.URL.Query().Get("thumb") != "" && st.Preview.Format != pipeline.FormatJSON {
		img, err := render.Decode(data)
		if err != nil {
			writeErr(w, err)
			return
		}
		if data, err = render.ToJPEG(render.Thumbnail(img, ThumbnailWidth), render.DefaultQuality); err != nil {
			writeErr(w, err)
			return
		}
		ct = render.ContentTypeJPEG
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(data)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if err := controllerFrom(r.Context()).Save(r.Context(), blob.HTTPSink{W: w}); err != nil {
		writeErr(w, err)
	}
}

// handleFiles streams the archive on success. On failure nothing has been
// written yet, so the generic notice goes out as the error body.
func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	st, err := controllerFrom(r.Context()).GetFiles(r.Context(), blob.HTTPSink{W: w})
	if err == nil {
		return
	}
	if rerrors.Is(err, rerrors.ErrCodeBusy) {
		writeErr(w, err)
		return
	}
	writeError(w, http.StatusBadGateway, st.Notice)
}

func (s *Server) handleSource(w http.ResponseWriter, r *http.Request) {
	data, err := fs.ReadFile(web.FS, web.AppSource)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "source unavailable")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	_, _ = w.Write(data)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func staticHandler() http.Handler {
	files := http.FileServerFS(web.FS)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		files.ServeHTTP(w, r)
	})
}

// =============================================================================
// Helpers
// =============================================================================

func parseForm(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseForm(); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid form")
		return false
	}
	return true
}

// formIntensity reads the intensity field. Out-of-range values are clamped
// later, like a slider would; only non-numbers are rejected.
func formIntensity(r *http.Request) (int, error) {
	v := r.PostFormValue("intensity")
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, rerrors.New(rerrors.ErrCodeInvalidIntensity, "intensity must be a number, got %q", v)
	}
	return n, nil
}

func backToPage(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// statusOf maps an error code to an HTTP status.
func statusOf(err error) int {
	switch rerrors.GetCode(err) {
	case rerrors.ErrCodeInvalidInput, rerrors.ErrCodeInvalidIntensity, rerrors.ErrCodeInvalidFormat,
		rerrors.ErrCodeInvalidQuality, rerrors.ErrCodeInvalidFilename:
		return http.StatusBadRequest
	case rerrors.ErrCodeBusy:
		return http.StatusConflict
	case rerrors.ErrCodeNotFound, rerrors.ErrCodeSessionNotFound:
		return http.StatusNotFound
	case rerrors.ErrCodeFetch, rerrors.ErrCodeArchive:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeErr(w http.ResponseWriter, err error) {
	writeError(w, statusOf(err), rerrors.UserMessage(err))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	http.Error(w, msg, status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
