package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/redactor/pkg/blob"
	rerrors "github.com/matzehuels/redactor/pkg/errors"
	"github.com/matzehuels/redactor/pkg/packager"
	"github.com/matzehuels/redactor/pkg/pipeline"
	"github.com/matzehuels/redactor/pkg/shell"
)

// Shell styles
var (
	shellTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	shellFrameStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim)
	shellActiveStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorCyan)
	shellNoticeStyle = lipgloss.NewStyle().Foreground(colorRed)
	shellHelpStyle   = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(colorYellow).Padding(0, 1)
	shellBarOn       = lipgloss.NewStyle().Foreground(colorRed)
	shellBarOff      = lipgloss.NewStyle().Foreground(colorDim)
)

const (
	intensityBarWidth = 20
	defaultEditorRows = 12
)

// =============================================================================
// Messages
// =============================================================================

// generateMsg asks the shell to render. Init sends exactly one.
type generateMsg struct{}

type renderDoneMsg struct {
	res *pipeline.Result
	err error
}

type packageDoneMsg struct {
	path string
	err  error
}

type savedMsg struct {
	path string
	err  error
}

// =============================================================================
// ShellModel - Interactive redaction shell
// =============================================================================

// focus is the part of the shell receiving keys.
type focus int

const (
	focusEditor focus = iota
	focusControls
)

// ShellModel is the bubbletea model for the terminal shell. The shell state
// itself is a [shell.State] and only changes through its transitions.
type ShellModel struct {
	ctx      context.Context
	state    shell.State
	renderer shell.Renderer
	source   packager.Source
	sink     blob.DirSink
	base     pipeline.Options
	delay    time.Duration

	editor  textarea.Model
	spinner spinner.Model
	focus   focus
	width   int

	// status is a transient line about the last save.
	status string
}

// NewShellModel creates a shell in the initial state. Files land in dir.
func NewShellModel(ctx context.Context, r shell.Renderer, src packager.Source, dir string, base pipeline.Options, delay time.Duration) ShellModel {
	st := shell.Initial()
	if base.Intensity != 0 {
		st = shell.SetIntensity(st, base.Intensity)
	}

	ed := textarea.New()
	ed.ShowLineNumbers = false
	ed.CharLimit = rerrors.MaxTextLength
	ed.Placeholder = "Paste the text to redact..."
	ed.SetHeight(defaultEditorRows)
	ed.SetValue(st.Doc.Text)
	ed.Focus()

	sp := spinner.New(
		spinner.WithSpinner(spinner.Spinner{Frames: spinnerFrames, FPS: 80 * time.Millisecond}),
		spinner.WithStyle(styleIconSpinner),
	)

	base.Format = pipeline.FormatJPEG
	return ShellModel{
		ctx:      ctx,
		state:    st,
		renderer: r,
		source:   src,
		sink:     blob.DirSink{Dir: dir},
		base:     base,
		delay:    delay,
		editor:   ed,
		spinner:  sp,
		width:    80,
	}
}

// State returns the current shell state.
func (m ShellModel) State() shell.State { return m.state }

func (m ShellModel) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
		func() tea.Msg { return generateMsg{} },
	)
}

func (m ShellModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case generateMsg:
		return m.generate()

	case renderDoneMsg:
		if msg.err != nil {
			m.state = shell.FailRender(m.state, msg.err)
		} else {
			m.state = shell.CompleteRender(m.state, shell.PreviewOf(msg.res))
		}
		return m, nil

	case packageDoneMsg:
		if msg.err != nil {
			m.state = shell.FailPackage(m.state, msg.err)
		} else {
			m.state = shell.CompletePackage(m.state)
			m.status = "Archive saved to " + msg.path
		}
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.status = "Save failed: " + rerrors.UserMessage(msg.err)
		} else {
			m.status = "Saved " + msg.path
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.editor.SetWidth(max(20, msg.Width-4))
		m.editor.SetHeight(max(4, msg.Height-14))
		return m, nil
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m ShellModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		if shell.HelpVisible(m.state) {
			m.state = shell.HideHelp(m.state)
			return m, nil
		}
		if m.state.Notice != "" {
			m.state = shell.DismissNotice(m.state)
			return m, nil
		}
		return m, tea.Quit
	case "ctrl+g":
		return m.generate()
	case "ctrl+s":
		return m.save()
	case "ctrl+f":
		return m.getFiles()
	case "f1", "ctrl+o":
		m.state = shell.ToggleHelp(m.state)
		return m, nil
	case "tab":
		if m.focus == focusEditor {
			m.focus = focusControls
			m.editor.Blur()
			return m, nil
		}
		m.focus = focusEditor
		return m, m.editor.Focus()
	}

	if m.focus == focusControls {
		step := 0
		switch msg.String() {
		case "left", "h":
			step = -1
		case "right", "l":
			step = 1
		case "shift+left", "down", "j":
			step = -10
		case "shift+right", "up", "k":
			step = 10
		}
		if step != 0 {
			m.state = shell.SetIntensity(m.state, m.state.Doc.Intensity+step)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	if v := m.editor.Value(); v != m.state.Doc.Text {
		m.state = shell.EditText(m.state, v)
	}
	return m, cmd
}

// generate starts a render unless one is already running.
func (m ShellModel) generate() (tea.Model, tea.Cmd) {
	st, err := shell.BeginRender(m.state)
	if err != nil {
		return m, nil
	}
	m.state = st

	opts := m.base
	opts.Text = st.Doc.Text
	opts.Intensity = st.Doc.Intensity
	opts.Delay = m.delay
	ctx, r := m.ctx, m.renderer
	return m, func() tea.Msg {
		res, err := r.Execute(ctx, opts)
		return renderDoneMsg{res: res, err: err}
	}
}

// save writes the current preview into the output directory.
func (m ShellModel) save() (tea.Model, tea.Cmd) {
	if !shell.CanSave(m.state) {
		m.status = "Nothing to save yet"
		return m, nil
	}
	p := *m.state.Preview
	ctx, sink := m.ctx, m.sink
	return m, func() tea.Msg {
		err := sink.Save(ctx, p.Data, p.Filename)
		return savedMsg{path: sink.Path(p.Filename), err: err}
	}
}

// getFiles builds the deployment archive unless one is already being built.
func (m ShellModel) getFiles() (tea.Model, tea.Cmd) {
	st, err := shell.BeginPackage(m.state)
	if err != nil {
		return m, nil
	}
	m.state = st
	ctx, src, sink := m.ctx, m.source, m.sink
	return m, func() tea.Msg {
		err := packager.Package(ctx, src, sink)
		return packageDoneMsg{path: sink.Path(packager.ArchiveName), err: err}
	}
}

func (m ShellModel) View() string {
	var b strings.Builder

	b.WriteString(shellTitleStyle.Render("REDACTOR"))
	b.WriteString(StyleDim.Render("  classified document generator"))
	b.WriteString("\n")

	frame := shellFrameStyle
	if m.focus == focusEditor {
		frame = shellActiveStyle
	}
	b.WriteString(frame.Render(m.editor.View()))
	b.WriteString("\n")

	b.WriteString(m.intensityLine())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")

	if m.state.Notice != "" {
		b.WriteString(shellNoticeStyle.Render(styleIconError.Render(iconError) + " " + m.state.Notice))
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(StyleDim.Render(m.status))
		b.WriteString("\n")
	}
	if shell.HelpVisible(m.state) {
		b.WriteString(shellHelpStyle.Render(instructionsView()))
		b.WriteString("\n")
	}

	b.WriteString(StyleDim.Render("tab focus  ←/→ intensity  ctrl+g generate  ctrl+s save  ctrl+f get files  f1 instructions  ctrl+c quit"))
	return b.String()
}

func (m ShellModel) intensityLine() string {
	n := m.state.Doc.Intensity
	on := n * intensityBarWidth / 100
	bar := shellBarOn.Render(strings.Repeat("█", on)) + shellBarOff.Render(strings.Repeat("░", intensityBarWidth-on))
	label := "Intensity"
	if m.focus == focusControls {
		label = StyleHighlight.Render(label)
	}
	return fmt.Sprintf("%s %s %s", label, bar, StyleNumber.Render(fmt.Sprintf("%3d%%", n)))
}

func (m ShellModel) statusLine() string {
	switch {
	case m.state.Processing:
		return m.spinner.View() + " " + StyleDim.Render("Processing...")
	case m.state.Downloading:
		return m.spinner.View() + " " + StyleDim.Render("Packaging...")
	case m.state.Preview != nil:
		p := m.state.Preview
		return StyleSuccess.Render(iconSuccess) + " " + StyleDim.Render(fmt.Sprintf(
			"Preview #%d: %d redacted · %d visible · seed %d", m.state.Renders, p.Masked, p.Drawn, p.Seed))
	default:
		return StyleDim.Render("No preview yet")
	}
}

func instructionsView() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render(shell.InstructionsTitle))
	b.WriteString("\n")
	for _, s := range shell.Instructions {
		b.WriteString(fmt.Sprintf("%s %s %s\n", StyleNumber.Render(fmt.Sprintf("%s.", s.Number)), StyleValue.Render(s.Title), StyleDim.Render(s.Desc)))
	}
	b.WriteString(StyleWarning.Render(shell.InstructionsNote))
	return b.String()
}
