// Package cmd provides the command-line interface for htmltag with
// configuration management supporting multiple configuration sources.
//
// Configuration System:
//
//	The CLI supports flexible configuration through multiple sources with clear precedence:
//	1. Command-line flags (--port, --data, etc.) - highest priority
//	2. Individual environment variables (HTMLTAG_SERVER_PORT, etc.)
//	3. Configuration file named by --config or HTMLTAG_CONFIG_FILE
//	4. Configuration file .htmltag.yml in the current directory - lowest priority
package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/htmltag/internal/compiler"
	"github.com/conneroisu/htmltag/internal/config"
	"github.com/conneroisu/htmltag/internal/logging"
	"github.com/conneroisu/htmltag/internal/site"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "htmltag",
	Short: "Render markup templates with interpolated data",
	Long: `htmltag compiles markup templates into escaped, well-formed HTML.

Templates are ordinary HTML files with {path} slots. Slots are filled from a
YAML or JSON data file; {path!conv:format} applies a conversion and a format,
and {@_partial.html} includes another template.

Quick Start:
  htmltag render index.html --data site.yml   Render a page to stdout
  htmltag render --out dist                   Render every page into dist/
  htmltag watch --out dist                    Re-render on every change
  htmltag serve                               Preview with live reload`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .htmltag.yml, can also use HTMLTAG_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// initConfig points viper at the configuration file and the environment.
//
// Configuration file lookup (highest to lowest):
//  1. --config flag
//  2. HTMLTAG_CONFIG_FILE environment variable
//  3. .htmltag.yml in the current directory
//
// Every key can also be set as HTMLTAG_<SECTION>_<KEY>, for example
// HTMLTAG_SERVER_PORT=3000 or HTMLTAG_TEMPLATES_DATA=site.yml.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("HTMLTAG_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".htmltag")
	}

	viper.SetEnvPrefix("HTMLTAG")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// A missing or unreadable file leaves viper on defaults.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// environment is what every command builds from the loaded configuration.
type environment struct {
	config   *config.Config
	logger   logging.Logger
	compiler *compiler.Compiler
	site     *site.Site
}

func loadEnvironment(logOutput io.Writer) (*environment, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logCfg, err := cfg.LoggerConfig(logOutput)
	if err != nil {
		return nil, err
	}
	logger := logging.NewLogger(logCfg)

	c := compiler.New(
		compiler.WithCacheSize(cfg.Cache.Size),
		compiler.WithLogger(logger),
	)

	return &environment{
		config:   cfg,
		logger:   logger,
		compiler: c,
		site:     site.FromConfig(cfg, c, logger),
	}, nil
}
