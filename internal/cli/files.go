package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/redactor/internal/server/web"
	"github.com/matzehuels/redactor/pkg/blob"
	rerrors "github.com/matzehuels/redactor/pkg/errors"
	"github.com/matzehuels/redactor/pkg/packager"
	"github.com/matzehuels/redactor/pkg/shell"
)

// filesCommand creates the files command, which writes the deployment archive.
func (c *CLI) filesCommand() *cobra.Command {
	var (
		output  string
		source  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "files",
		Short: "Write the deployment archive for the web shell",
		Long: `Write the deployment archive for the web shell.

The archive holds index.html, index.js, metadata.json, and app.html, the
UI source. By default app.html comes from this binary; --source takes a
file path or the URL of a running shell (for example
http://localhost:8080/source/app.html). Fetched sources are cached briefly.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := c.resolveSource(source, noCache)
			if err != nil {
				return err
			}
			return c.runFiles(cmd.Context(), src, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", ".", "directory to write "+packager.ArchiveName+" to")
	cmd.Flags().StringVar(&source, "source", "", "UI source: file path or http(s) URL (default: built in)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "always fetch a remote source")

	return cmd
}

// runFiles builds the archive from src and writes it under dir.
func (c *CLI) runFiles(ctx context.Context, src packager.Source, dir string) error {
	sink := blob.DirSink{Dir: dir}

	spinner := newSpinnerWithContext(ctx, "Packaging files...")
	spinner.Start()
	if err := packager.Package(ctx, src, sink); err != nil {
		spinner.StopWithError(shell.PackageFailedNotice)
		return err
	}
	spinner.Stop()

	printSuccess("Archive ready")
	printFile(sink.Path(packager.ArchiveName))
	printInstructions()
	return nil
}

// resolveSource maps the --source flag to a packager source.
func (c *CLI) resolveSource(s string, noCache bool) (packager.Source, error) {
	switch {
	case s == "":
		return packager.FSSource{FS: web.FS, Path: web.AppSource}, nil
	case strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://"):
		if err := rerrors.ValidateURL(s); err != nil {
			return nil, err
		}
		src := packager.HTTPSource{URL: s, Retry: true}
		store, err := c.newCache(noCache)
		if err != nil {
			return nil, fmt.Errorf("initialize cache: %w", err)
		}
		return packager.Cached(src, store, c.newKeyer().SourceKey(s)), nil
	default:
		if _, err := os.Stat(s); err != nil {
			return nil, fmt.Errorf("source: %w", err)
		}
		return packager.FSSource{FS: os.DirFS(filepath.Dir(s)), Path: filepath.Base(s)}, nil
	}
}
