package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/htmltag/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect htmltag configuration",
	Long: `Inspect htmltag configuration files and settings.

Examples:
  htmltag config validate                     # Validate .htmltag.yml
  htmltag config validate --file site.yml     # Validate a specific file
  htmltag config show --format json           # Show resolved configuration`,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Validate a configuration file for correctness and common mistakes.

This command checks for:
- Valid port ranges and hostnames
- Existing template directory and data file
- Valid log level and format
- Watch patterns and debounce delay

Examples:
  htmltag config validate                # Validate .htmltag.yml
  htmltag config validate --strict       # Treat warnings as errors`,
	RunE: runConfigValidate,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the resolved configuration",
	Long: `Display the configuration after the file, HTMLTAG_* environment
variables and defaults have been applied.

Examples:
  htmltag config show                    # YAML
  htmltag config show --format json      # JSON`,
	RunE: runConfigShow,
}

var (
	configFile   string
	configFormat string
	configStrict bool
)

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)

	configValidateCmd.Flags().
		StringVarP(&configFile, "file", "f", "", "Configuration file to validate (default: .htmltag.yml)")
	configValidateCmd.Flags().BoolVar(&configStrict, "strict", false, "Treat warnings as errors")

	configShowCmd.Flags().StringVar(&configFormat, "format", "yaml", "Output format (yaml, json)")
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	targetFile := configFile
	if targetFile == "" {
		targetFile = ".htmltag.yml"
		if _, err := os.Stat(targetFile); err != nil {
			return errors.New("no configuration file found. Use --file to specify a config file")
		}
	}
	if _, err := os.Stat(targetFile); os.IsNotExist(err) {
		return fmt.Errorf("configuration file %s does not exist", targetFile)
	}

	fmt.Fprintf(out, "Validating configuration file: %s\n", targetFile)

	v := viper.New()
	v.SetConfigFile(targetFile)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read configuration file: %w", err)
	}

	cfg, err := config.Decode(v)
	if err != nil {
		return fmt.Errorf("failed to parse configuration: %w", err)
	}

	validation := config.ValidateConfigWithDetails(cfg)

	if validation.Valid && !validation.HasWarnings() {
		fmt.Fprintln(out, "✅ Configuration is valid!")
		return nil
	}

	fmt.Fprint(out, validation.String())

	if validation.HasErrors() {
		return fmt.Errorf("configuration validation failed with %d errors", len(validation.Errors))
	}

	if configStrict {
		return fmt.Errorf(
			"configuration validation failed in strict mode with %d warnings",
			len(validation.Warnings),
		)
	}

	fmt.Fprintf(out, "Found %d warnings. Use --strict to treat warnings as errors.\n", len(validation.Warnings))
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	switch configFormat {
	case "yaml", "yml":
		return showConfigYAML(cmd.OutOrStdout(), cfg)
	case "json":
		return showConfigJSON(cmd.OutOrStdout(), cfg)
	default:
		return fmt.Errorf("unsupported format: %s (supported: yaml, json)", configFormat)
	}
}

func showConfigYAML(w io.Writer, cfg *config.Config) error {
	fmt.Fprintln(w, "# Resolved from all sources (file, env vars, defaults)")
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}

func showConfigJSON(w io.Writer, cfg *config.Config) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(cfg)
}
