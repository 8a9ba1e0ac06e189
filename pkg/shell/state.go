// Package shell holds the UI state shared by the terminal and web shells.
//
// [State] is an immutable record. Every user action is a function that takes
// a State and returns a new one; nothing mutates a State in place. Two busy
// flags (Processing, Downloading) gate the long-running actions: a second
// render or package request while one is in flight fails with [ErrBusy].
package shell

import (
	"time"

	"github.com/matzehuels/redactor/pkg/document"
	rerrors "github.com/matzehuels/redactor/pkg/errors"
)

// SaveFilename is the name a saved preview is offered under.
const SaveFilename = "redacted_intel.jpg"

// RenderDelay is waited before drawing so the busy indicator can paint.
const RenderDelay = 400 * time.Millisecond

// PackageFailedNotice is shown for any packaging failure.
const PackageFailedNotice = "Error creating ZIP. Try copying text manually."

// ErrBusy is returned when an action is requested while the same action is
// still in flight.
var ErrBusy = rerrors.New(rerrors.ErrCodeBusy, "operation already in progress")

// Preview is the most recent rendered page.
type Preview struct {
	Data       []byte    `json:"data"`
	Format     string    `json:"format"`
	Filename   string    `json:"filename"`
	RenderedAt time.Time `json:"rendered_at"`
	Seed       uint64    `json:"seed"`
	Masked     int       `json:"masked"`
	Drawn      int       `json:"drawn"`
}

// State is the complete UI state. Treat values as immutable.
type State struct {
	Doc         document.Document `json:"doc"`
	Preview     *Preview          `json:"preview,omitempty"`
	Processing  bool              `json:"processing,omitempty"`
	Downloading bool              `json:"downloading,omitempty"`
	ShowHelp    bool              `json:"show_help,omitempty"`

	// Notice is a one-line message for the user, empty when there is none.
	Notice string `json:"notice,omitempty"`

	// Renders counts completed renders.
	Renders int `json:"renders"`
}

// Initial returns the state a shell starts in: the sample document and no
// preview. Shells render it once on startup.
func Initial() State {
	return State{Doc: document.Sample()}
}

// EditText replaces the document text. It does not render.
func EditText(s State, text string) State {
	s.Doc = s.Doc.WithText(text)
	return s
}

// SetIntensity sets the masking intensity, clamped to [0,100]. It does not
// render.
func SetIntensity(s State, n int) State {
	s.Doc = s.Doc.WithIntensity(n)
	return s
}

// BeginRender marks a render in flight.
func BeginRender(s State) (State, error) {
	if s.Processing {
		return s, ErrBusy
	}
	s.Processing = true
	s.Notice = ""
	return s, nil
}

// CompleteRender installs p as the preview and clears the busy flag.
func CompleteRender(s State, p Preview) State {
	s.Processing = false
	s.Preview = &p
	s.Renders++
	s.Notice = ""
	return s
}

// FailRender clears the busy flag and reports err. The previous preview is
// kept.
func FailRender(s State, err error) State {
	s.Processing = false
	s.Notice = "Render failed: " + rerrors.UserMessage(err)
	return s
}

// BeginPackage marks packaging in flight.
func BeginPackage(s State) (State, error) {
	if s.Downloading {
		return s, ErrBusy
	}
	s.Downloading = true
	s.Notice = ""
	return s, nil
}

// CompletePackage clears the busy flag and reveals the instructions.
func CompletePackage(s State) State {
	s.Downloading = false
	s.ShowHelp = true
	return s
}

// FailPackage clears the busy flag and shows the generic failure notice.
// The cause is for logs only.
func FailPackage(s State, _ error) State {
	s.Downloading = false
	s.Notice = PackageFailedNotice
	return s
}

// Idle clears both busy flags. A state loaded from storage has no work in
// flight in this process, so its flags are stale.
func Idle(s State) State {
	s.Processing = false
	s.Downloading = false
	return s
}

// ToggleHelp shows or hides the instructions.
func ToggleHelp(s State) State {
	s.ShowHelp = !s.ShowHelp
	return s
}

// HideHelp hides the instructions.
func HideHelp(s State) State {
	s.ShowHelp = false
	return s
}

// DismissNotice clears the notice.
func DismissNotice(s State) State {
	s.Notice = ""
	return s
}

// CanGenerate reports whether the generate action is enabled.
func CanGenerate(s State) bool { return !s.Processing }

// CanSave reports whether there is a preview to save.
func CanSave(s State) bool { return s.Preview != nil && len(s.Preview.Data) > 0 }

// CanPackage reports whether the get-files action is enabled.
func CanPackage(s State) bool { return !s.Downloading }

// HelpVisible reports whether the instructions are shown. They are also
// shown while packaging is in flight.
func HelpVisible(s State) bool { return s.ShowHelp || s.Downloading }
