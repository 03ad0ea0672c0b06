// Package config provides configuration management for htmltag using Viper
// for loading from files, environment variables and command-line flags.
//
// Configuration is read from .htmltag.yml (or the file named by --config or
// HTMLTAG_CONFIG_FILE) and overridden by HTMLTAG_* environment variables.
// It covers the template cache, rendering, logging, the preview server and
// the file watcher.
package config

import (
	"fmt"
	"io"
	"net"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/conneroisu/htmltag/internal/logging"
)

// Defaults applied by Load when a key is not set.
const (
	DefaultCacheSize = 1024
	DefaultHost      = "localhost"
	DefaultPort      = 8080
	DefaultDebounce  = 100 * time.Millisecond
	MaxIndent        = 16
)

// DefaultPatterns are the files the watcher reacts to.
var DefaultPatterns = []string{"*.html", "*.htm", "*.yml", "*.yaml", "*.json"}

type Config struct {
	Templates TemplatesConfig `json:"templates" yaml:"templates" mapstructure:"templates"`
	Cache     CacheConfig     `json:"cache" yaml:"cache" mapstructure:"cache"`
	Render    RenderConfig    `json:"render" yaml:"render" mapstructure:"render"`
	Log       LogConfig       `json:"log" yaml:"log" mapstructure:"log"`
	Server    ServerConfig    `json:"server" yaml:"server" mapstructure:"server"`
	Watch     WatchConfig     `json:"watch" yaml:"watch" mapstructure:"watch"`
	// TargetFiles holds CLI arguments, never the config file.
	TargetFiles []string `json:"-" yaml:"-" mapstructure:"-"`
}

type TemplatesConfig struct {
	// Dir is the root for {@include} slots and the served directory.
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`
	// Data is a YAML or JSON file bound to every template.
	Data string `json:"data" yaml:"data" mapstructure:"data"`
}

type CacheConfig struct {
	// Size is the number of placeholder trees kept; 0 keeps every tree.
	Size int `json:"size" yaml:"size" mapstructure:"size"`
}

type RenderConfig struct {
	Indent int `json:"indent" yaml:"indent" mapstructure:"indent"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level" mapstructure:"level"`
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

type ServerConfig struct {
	Host string `json:"host" yaml:"host" mapstructure:"host"`
	Port int    `json:"port" yaml:"port" mapstructure:"port"`
	Open bool   `json:"open" yaml:"open" mapstructure:"open"`
}

type WatchConfig struct {
	Debounce time.Duration `json:"debounce" yaml:"debounce" mapstructure:"debounce"`
	Patterns []string      `json:"patterns" yaml:"patterns" mapstructure:"patterns"`
	Ignore   []string      `json:"ignore" yaml:"ignore" mapstructure:"ignore"`
}

// Load unmarshals the global viper state into a Config, applies defaults and
// validates the result.
func Load() (*Config, error) {
	config, err := Decode(viper.GetViper())
	if err != nil {
		return nil, err
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Decode unmarshals v into a Config and applies defaults without validating.
func Decode(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Handle slices set via viper as comma separated strings (env, flags)
	if v.IsSet("watch.patterns") && len(config.Watch.Patterns) == 0 {
		config.Watch.Patterns = v.GetStringSlice("watch.patterns")
	}
	if v.IsSet("watch.ignore") && len(config.Watch.Ignore) == 0 {
		config.Watch.Ignore = v.GetStringSlice("watch.ignore")
	}

	applyDefaults(v, &config)
	return &config, nil
}

func applyDefaults(v *viper.Viper, config *Config) {
	if config.Templates.Dir == "" {
		config.Templates.Dir = "."
	}

	if !v.IsSet("cache.size") && config.Cache.Size == 0 {
		config.Cache.Size = DefaultCacheSize
	}

	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
	if config.Log.Format == "" {
		config.Log.Format = "text"
	}

	if config.Server.Host == "" {
		config.Server.Host = DefaultHost
	}
	if !v.IsSet("server.port") && config.Server.Port == 0 {
		config.Server.Port = DefaultPort
	}

	if !v.IsSet("watch.debounce") && config.Watch.Debounce == 0 {
		config.Watch.Debounce = DefaultDebounce
	}
	if len(config.Watch.Patterns) == 0 {
		config.Watch.Patterns = append([]string(nil), DefaultPatterns...)
	}
	if len(config.Watch.Ignore) == 0 {
		config.Watch.Ignore = []string{"node_modules", ".git"}
	}
}

// Address returns the host:port the preview server listens on.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// LoggerConfig builds the logger configuration for output.
func (c *Config) LoggerConfig(output io.Writer) (*logging.LoggerConfig, error) {
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}
	return &logging.LoggerConfig{
		Level:  level,
		Format: c.Log.Format,
		Output: output,
	}, nil
}

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if config.Cache.Size < 0 {
		return fmt.Errorf("cache config: size %d must not be negative", config.Cache.Size)
	}

	if config.Render.Indent < 0 || config.Render.Indent > MaxIndent {
		return fmt.Errorf("render config: indent %d is not in range 0-%d", config.Render.Indent, MaxIndent)
	}

	if _, err := logging.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("log config: %w", err)
	}
	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("log config: format %q must be text or json", config.Log.Format)
	}

	if err := validateWatchConfig(&config.Watch); err != nil {
		return fmt.Errorf("watch config: %w", err)
	}

	if err := validatePath(config.Templates.Dir); err != nil {
		return fmt.Errorf("templates config: dir: %w", err)
	}
	if config.Templates.Data != "" {
		if err := validatePath(config.Templates.Data); err != nil {
			return fmt.Errorf("templates config: data: %w", err)
		}
	}

	return nil
}

// validateServerConfig validates server configuration values
func validateServerConfig(config *ServerConfig) error {
	// allow 0 for system-assigned ports in testing
	if config.Port < 0 || config.Port > 65535 {
		return fmt.Errorf("port %d is not in valid range 0-65535", config.Port)
	}

	if config.Host != "" {
		if err := validateHostname(config.Host); err != nil {
			return fmt.Errorf("host %q: %w", config.Host, err)
		}
	}

	return nil
}

func validateWatchConfig(config *WatchConfig) error {
	if config.Debounce < 0 || config.Debounce > 10*time.Second {
		return fmt.Errorf("debounce %s is not in range 0s-10s", config.Debounce)
	}

	for _, pattern := range config.Patterns {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
	}

	return nil
}

// validatePath validates a file path for security
func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}

	cleanPath := filepath.Clean(path)

	// Reject path traversal attempts
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path contains traversal: %s", path)
	}

	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'"}
	for _, char := range dangerousChars {
		if strings.Contains(cleanPath, char) {
			return fmt.Errorf("path contains dangerous character: %s", char)
		}
	}

	return nil
}
