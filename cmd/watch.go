package cmd

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/conneroisu/htmltag/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Aliases: []string{"w"},
	Short:   "Re-render pages when templates or data change",
	Long: `Watch the template directory and the data file, and re-render every page
after each batch of changes.

Without --out pages are only compiled, which reports template errors as you
edit.

Examples:
  htmltag watch --out dist               # Keep dist/ up to date
  htmltag watch --data site.yml          # Check pages on every save
  htmltag watch --debounce 500ms --out dist`,
	PreRunE: bindFlags,
	RunE:    runWatch,
}

var (
	watchOut     string
	watchVerbose bool
)

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().AddFlagSet(templateFlags())
	watchCmd.Flags().AddFlagSet(watchFlags())
	watchCmd.Flags().StringVarP(&watchOut, "out", "o", "", "Write pages into this directory")
	watchCmd.Flags().BoolVarP(&watchVerbose, "verbose", "v", false, "List every changed file")
}

func runWatch(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if err := ValidateDebounce(env.config.Watch.Debounce); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	rebuild := func() {
		rebuildSite(ctx, env, out, cmd.ErrOrStderr())
	}

	fileWatcher, err := watcher.NewFileWatcher(env.config.Watch.Debounce, env.logger)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fileWatcher.Stop()

	fileWatcher.Ignore(env.config.Watch.Ignore...)
	fileWatcher.AddFilter(watcher.PatternFilter(env.config.Watch.Patterns))
	fileWatcher.AddFilter(watcher.NoHiddenFilter)
	fileWatcher.AddHandler(func(events []watcher.ChangeEvent) error {
		if watchVerbose {
			fmt.Fprintln(out, "File changes detected:")
			for _, event := range events {
				fmt.Fprintf(out, "   %s: %s\n", event.Type, event.Path)
			}
		} else {
			fmt.Fprintf(out, "%d file(s) changed\n", len(events))
		}
		rebuild()
		return nil
	})

	if err := fileWatcher.AddRecursive(env.config.Templates.Dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", env.config.Templates.Dir, err)
	}
	if env.config.Templates.Data != "" {
		if err := fileWatcher.AddPath(env.config.Templates.Data); err != nil {
			return fmt.Errorf("failed to watch %s: %w", env.config.Templates.Data, err)
		}
	}

	rebuild()

	if err := fileWatcher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}

	fmt.Fprintln(out, "Watching for changes... (Press Ctrl+C to stop)")
	<-ctx.Done()
	fmt.Fprintln(out, "Stopping file watcher...")
	return nil
}

// rebuildSite renders every page and reports the outcome. Failures are
// printed, never returned, so watching continues.
func rebuildSite(ctx context.Context, env *environment, out, errOut io.Writer) {
	pages, collector, err := env.site.RenderAll(ctx)
	if err != nil {
		env.logger.Error(ctx, err, "failed to list pages")
		return
	}

	if watchOut != "" {
		for name, html := range pages {
			collector.Add(name, writePage(watchOut, name, html))
		}
	}

	reportErrors(errOut, collector)
	failed := len(collector.GetErrors())
	if failed == 0 {
		fmt.Fprintf(out, "✓ %d page(s) rendered\n", len(pages))
		return
	}
	fmt.Fprintf(out, "✗ %d page(s) rendered, %d error(s)\n", len(pages), failed)
}
