package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/conneroisu/htmltag/internal/errors"
	"github.com/conneroisu/htmltag/internal/site"
)

var renderCmd = &cobra.Command{
	Use:     "render [page...]",
	Aliases: []string{"r"},
	Short:   "Render pages",
	Long: `Render template pages against the data file.

Page names are relative to the template directory. Without arguments every
page is rendered; files and directories starting with "_" or "." are
partials and are skipped.

Examples:
  htmltag render index.html                 # Render one page to stdout
  htmltag render --data site.yml --out dist # Render every page into dist/
  htmltag render about.html --indent 2      # Pretty-print the output`,
	PreRunE: bindFlags,
	RunE:    runRender,
}

var renderOut string

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().AddFlagSet(templateFlags())
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "", "Write pages into this directory instead of stdout")
}

func runRender(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if err := ValidateFileExists(env.config.Templates.Data); err != nil {
		return err
	}

	pages, err := selectPages(env.site, args)
	if err != nil {
		return err
	}

	collector := renderPages(cmd.Context(), env.site, pages, func(name, html string) error {
		if renderOut == "" {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), html)
			return err
		}
		return writePage(renderOut, name, html)
	})

	reportErrors(cmd.ErrOrStderr(), collector)
	if err := collector.Err(); err != nil {
		return fmt.Errorf("%d of %d pages failed", len(collector.GetErrors()), len(pages))
	}

	env.logger.Info(cmd.Context(), "rendered pages", "pages", len(pages), "out", renderOut)
	return nil
}

// selectPages returns args, or every page when args is empty.
func selectPages(s *site.Site, args []string) ([]string, error) {
	if len(args) > 0 {
		pages := make([]string, len(args))
		for i, arg := range args {
			pages[i] = filepath.ToSlash(filepath.Clean(arg))
		}
		return pages, nil
	}

	pages, err := s.Pages()
	if err != nil {
		return nil, fmt.Errorf("failed to list pages in %s: %w", s.Root(), err)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("no pages found in %s", s.Root())
	}
	return pages, nil
}

// renderPages renders pages in order and hands each result to emit. Render
// failures are collected; an emit failure is collected against the page too.
func renderPages(ctx context.Context, s *site.Site, pages []string, emit func(name, html string) error) *errors.ErrorCollector {
	if ctx == nil {
		ctx = context.Background()
	}
	collector := errors.NewErrorCollector()
	for _, name := range pages {
		html, err := s.Render(ctx, name)
		if err != nil {
			collector.Add(name, err)
			continue
		}
		if err := emit(name, html); err != nil {
			collector.Add(name, err)
		}
	}
	return collector
}

func writePage(out, name, html string) error {
	target := filepath.Join(out, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return os.WriteFile(target, []byte(html), 0o644)
}

// reportErrors prints each failure with its fix-up hints.
func reportErrors(w io.Writer, collector *errors.ErrorCollector) {
	fileErrors := collector.GetErrors()
	slices.SortStableFunc(fileErrors, func(a, b errors.FileError) int {
		switch {
		case a.File < b.File:
			return -1
		case a.File > b.File:
			return 1
		}
		return 0
	})

	for _, fe := range fileErrors {
		fmt.Fprintf(w, "✗ %s\n", fe.Error())
		for _, s := range errors.Suggest(fe.Err) {
			fmt.Fprintf(w, "  hint: %s. %s\n", s.Title, s.Description)
			if s.Example != "" {
				fmt.Fprintf(w, "        %s\n", s.Example)
			}
		}
	}
}
