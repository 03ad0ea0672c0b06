package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/conneroisu/htmltag/internal/config"
)

// flagKeys maps shared flag names to configuration keys.
var flagKeys = map[string]string{
	"dir":        "templates.dir",
	"data":       "templates.data",
	"indent":     "render.indent",
	"cache-size": "cache.size",
	"host":       "server.host",
	"port":       "server.port",
	"open":       "server.open",
	"debounce":   "watch.debounce",
}

// templateFlags are shared by every command that renders pages.
func templateFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("templates", pflag.ContinueOnError)
	fs.StringP("dir", "d", ".", "Template directory")
	fs.String("data", "", "YAML or JSON data file bound to every page")
	fs.IntP("indent", "i", 0, "Indent rendered markup by this many spaces per level")
	fs.Int("cache-size", config.DefaultCacheSize, "Number of parsed templates to cache (0 for unbounded)")
	return fs
}

func serverFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("server", pflag.ContinueOnError)
	fs.IntP("port", "p", config.DefaultPort, "Port to serve on")
	fs.String("host", config.DefaultHost, "Host to bind to")
	fs.Bool("open", true, "Open the browser on start")
	return fs
}

func watchFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("watch", pflag.ContinueOnError)
	fs.Duration("debounce", config.DefaultDebounce, "Wait this long for changes to settle")
	return fs
}

// bindFlags binds the shared flags cmd defines to their configuration keys.
// Binding happens when the command runs, so commands sharing a flag name do
// not overwrite each other's binding.
func bindFlags(cmd *cobra.Command, _ []string) error {
	for name, key := range flagKeys {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if err := viper.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind --%s: %w", name, err)
		}
	}
	return nil
}

// ValidateFileExists validates an optional file argument.
func ValidateFileExists(filename string) error {
	if filename == "" {
		return nil
	}

	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", filename)
	}

	return nil
}

// ValidateDebounce rejects delays the watcher cannot use.
func ValidateDebounce(d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("debounce must not be negative, got %s", d)
	}
	return nil
}
