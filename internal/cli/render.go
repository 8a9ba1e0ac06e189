package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/redactor/pkg/document"
	rerrors "github.com/matzehuels/redactor/pkg/errors"
	"github.com/matzehuels/redactor/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output    string // output file path, "-" for stdout
	intensity int    // masking intensity, 0..100
	format    string // jpeg, png or json
	quality   int    // JPEG quality
	seed      uint64 // fixed mask pattern; 0 draws a fresh one
	header    string // header line override
	noCache   bool   // bypass the artifact cache
	refresh   bool   // ignore cached entries but store new ones
	sample    bool   // render the built-in sample memo
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [file|-]",
		Short: "Render text to a redacted page image",
		Long: `Render text to a redacted page image.

The text is read from the given file, or from stdin when the argument is "-"
or omitted. Each word is blacked out with a probability equal to the
intensity. Use --seed to get the same mask pattern every time; seeded
renders are cached locally.`,
		Args: cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("intensity") {
				opts.intensity = c.Config.Render.Intensity
			}
			if !flags.Changed("format") {
				opts.format = c.Config.Render.Format
			}
			if !flags.Changed("quality") {
				opts.quality = c.Config.Render.Quality
			}
			if !flags.Changed("header") {
				opts.header = c.Config.Render.Header
			}
			if err := rerrors.ValidateIntensity(opts.intensity); err != nil {
				return err
			}
			if err := pipeline.ValidateFormat(opts.format); err != nil {
				return err
			}
			if opts.sample && len(args) > 0 {
				return fmt.Errorf("--sample cannot be combined with an input file")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			input := "-"
			if len(args) > 0 {
				input = args[0]
			}
			return c.runRender(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), input, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", `output file (default redacted_intel.<ext>, "-" for stdout)`)
	cmd.Flags().IntVarP(&opts.intensity, "intensity", "i", document.DefaultIntensity, "share of words to black out, 0-100")
	cmd.Flags().StringVarP(&opts.format, "format", "f", pipeline.DefaultFormat, "output format: jpeg, png, json")
	cmd.Flags().IntVar(&opts.quality, "quality", pipeline.DefaultQuality, "JPEG quality, 1-100")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "fix the mask pattern (0 = random)")
	cmd.Flags().StringVar(&opts.header, "header", "", "override the page header line")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render even when cached")
	cmd.Flags().BoolVar(&opts.sample, "sample", false, "render the built-in sample memo")

	return cmd
}

// runRender reads the input, runs the pipeline, and writes the artifact.
func (c *CLI) runRender(ctx context.Context, stdin io.Reader, stdout io.Writer, input string, opts renderOpts) error {
	logger := loggerFromContext(ctx)

	text, err := readInput(stdin, input, opts.sample)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	popts := c.baseOptions()
	popts.Text = text
	popts.Intensity = opts.intensity
	popts.Format = opts.format
	popts.Quality = opts.quality
	popts.Header = opts.header
	popts.Seed = opts.seed
	popts.Refresh = opts.refresh

	toStdout := opts.output == "-"
	var spinner *Spinner
	if !toStdout {
		spinner = newSpinnerWithContext(ctx, "Rendering page...")
		spinner.Start()
	}
	prog := newProgress(logger)

	res, err := runner.Execute(ctx, popts)
	if err != nil {
		if spinner != nil {
			spinner.StopWithError("Render failed")
		}
		return fmt.Errorf("render: %w", err)
	}
	if spinner != nil {
		spinner.Stop()
	}

	if toStdout {
		_, err := stdout.Write(res.Artifact)
		return err
	}

	path := outputPath(opts.output, res.Format)
	if err := os.WriteFile(path, res.Artifact, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	prog.done("page written", "path", path, "masked", res.Stats.Masked, "drawn", res.Stats.Drawn)
	logger.Debug("render", "seed", res.Seed, "rows", res.Stats.Rows, "layout", res.Stats.LayoutTime, "draw", res.Stats.RenderTime)

	printFile(path)
	printStats(res.Stats.Masked, res.Stats.Drawn, res.CacheInfo.RenderHit)
	return nil
}

// readInput returns the document text from a file, stdin ("-"), or the
// sample memo.
func readInput(stdin io.Reader, input string, sample bool) (string, error) {
	if sample {
		return document.SampleText, nil
	}
	var (
		data []byte
		err  error
	)
	if input == "-" || input == "" {
		data, err = io.ReadAll(io.LimitReader(stdin, rerrors.MaxTextLength+1))
	} else {
		data, err = os.ReadFile(input)
	}
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	text := string(data)
	if err := rerrors.ValidateText(text); err != nil {
		return "", err
	}
	return text, nil
}

// outputPath resolves the output file name for a format.
func outputPath(output, format string) string {
	ext := "." + pipeline.Extension(format)
	name := "redacted_intel" + ext
	switch {
	case output == "":
		return name
	case strings.HasSuffix(output, string(filepath.Separator)):
		return filepath.Join(output, name)
	case filepath.Ext(output) == "":
		return output + ext
	default:
		return output
	}
}
