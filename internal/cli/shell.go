package cli

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// shellCommand creates the shell command, which runs the terminal shell.
func (c *CLI) shellCommand() *cobra.Command {
	var (
		output  string
		source  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Edit, redact, and save pages interactively",
		Long: `Edit, redact, and save pages interactively.

The shell renders the sample memo on start. Edit the text, press tab to
reach the intensity control, and press ctrl+g to render again. Saved pages
and the deployment archive are written to --output.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runShell(cmd.Context(), output, source, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", ".", "directory for saved pages and archives")
	cmd.Flags().StringVar(&source, "source", "", "UI source for ctrl+f: file path or http(s) URL (default: built in)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runShell runs the terminal shell until the user quits.
func (c *CLI) runShell(ctx context.Context, dir, source string, noCache bool) error {
	src, err := c.resolveSource(source, noCache)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	// Logs would draw over the alternate screen.
	runner.Logger = log.New(io.Discard)

	m := NewShellModel(ctx, runner, src, dir, c.baseOptions(), c.Config.Render.Delay.Duration)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return err
	}
	if sm, ok := final.(ShellModel); ok && sm.State().Renders > 0 {
		printInfo("%d pages rendered", sm.State().Renders)
	}
	return nil
}
