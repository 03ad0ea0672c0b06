package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/conneroisu/htmltag/internal/compiler"
	"github.com/conneroisu/htmltag/internal/server"
)

var serveCmd = &cobra.Command{
	Use:     "serve [page]",
	Aliases: []string{"s"},
	Short:   "Preview pages with live reload",
	Long: `Start a preview server for the template directory.

Every page is served at its path. Fragments are wrapped in a preview layout,
full documents are served as they are. Connected browsers reload when a
template or the data file changes. Render errors are shown in the browser.

Examples:
  htmltag serve                       # Serve on localhost:8080
  htmltag serve --port 3000           # Serve on another port
  htmltag serve index.html --open     # Open a specific page`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: bindFlags,
	RunE:    runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().AddFlagSet(templateFlags())
	serveCmd.Flags().AddFlagSet(serverFlags())
	serveCmd.Flags().AddFlagSet(watchFlags())
}

func runServe(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	env.config.TargetFiles = args

	srv, err := server.New(server.Options{
		Config: env.config,
		Pages:  env.site,
		// The preview chrome gets its own cache so it never evicts pages.
		Compiler: compiler.New(compiler.WithLogger(env.logger)),
		Logger:   env.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	url := "http://" + env.config.Address() + "/"
	if len(args) > 0 {
		url += args[0]
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Serving %s at %s\n", env.config.Templates.Dir, url)

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
