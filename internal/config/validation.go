package config

import (
	"fmt"
	"net"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/conneroisu/htmltag/internal/logging"
)

// ValidationError represents a configuration validation error with suggestions
type ValidationError struct {
	Field       string
	Value       interface{}
	Message     string
	Suggestions []string
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", ve.Field, ve.Message)
}

// ValidationResult holds the result of configuration validation
type ValidationResult struct {
	Valid    bool
	Errors   []ValidationError
	Warnings []ValidationError
}

// HasErrors returns true if there are any validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings
func (vr *ValidationResult) HasWarnings() bool {
	return len(vr.Warnings) > 0
}

// String returns a formatted string of all validation issues
func (vr *ValidationResult) String() string {
	var builder strings.Builder

	write := func(title string, issues []ValidationError) {
		if len(issues) == 0 {
			return
		}
		builder.WriteString(title + ":\n")
		for _, issue := range issues {
			builder.WriteString(fmt.Sprintf("  • %s: %s\n", issue.Field, issue.Message))
			for _, suggestion := range issue.Suggestions {
				builder.WriteString(fmt.Sprintf("    💡 %s\n", suggestion))
			}
		}
	}

	write("❌ Validation Errors", vr.Errors)
	if vr.HasErrors() && vr.HasWarnings() {
		builder.WriteString("\n")
	}
	write("⚠️  Validation Warnings", vr.Warnings)

	return builder.String()
}

func (vr *ValidationResult) addError(field string, value interface{}, msg string, suggestions ...string) {
	vr.Errors = append(vr.Errors, ValidationError{Field: field, Value: value, Message: msg, Suggestions: suggestions})
}

func (vr *ValidationResult) addWarning(field string, value interface{}, msg string, suggestions ...string) {
	vr.Warnings = append(vr.Warnings, ValidationError{Field: field, Value: value, Message: msg, Suggestions: suggestions})
}

// ValidateConfigWithDetails performs comprehensive validation with detailed feedback
func ValidateConfigWithDetails(config *Config) *ValidationResult {
	result := &ValidationResult{
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
	}

	validateServerConfigDetails(&config.Server, result)
	validateTemplatesConfigDetails(&config.Templates, result)

	if config.Cache.Size < 0 {
		result.addError("cache.size", config.Cache.Size, "size must not be negative",
			"Use 0 to keep every parsed template")
	} else if config.Cache.Size == 0 {
		result.addWarning("cache.size", config.Cache.Size, "cache is unbounded",
			fmt.Sprintf("Set a limit such as %d for long running servers", DefaultCacheSize))
	}

	if config.Render.Indent < 0 || config.Render.Indent > MaxIndent {
		result.addError("render.indent", config.Render.Indent,
			fmt.Sprintf("indent must be between 0 and %d", MaxIndent))
	}

	if _, err := logging.ParseLevel(config.Log.Level); err != nil {
		result.addError("log.level", config.Log.Level, err.Error(),
			"Use one of debug, info, warn, error, off")
	}
	if config.Log.Format != "text" && config.Log.Format != "json" {
		result.addError("log.format", config.Log.Format, "format must be text or json")
	}

	validateWatchConfigDetails(&config.Watch, result)

	result.Valid = !result.HasErrors()

	return result
}

func validateServerConfigDetails(config *ServerConfig, result *ValidationResult) {
	if config.Port < 0 || config.Port > 65535 {
		result.addError("server.port", config.Port,
			fmt.Sprintf("port %d is not in valid range 0-65535", config.Port),
			"Use a port between 1024-65535 for non-privileged access")
	} else if config.Port > 0 && config.Port < 1024 {
		result.addWarning("server.port", config.Port, "privileged port may require elevated permissions",
			"Use a port above 1024 such as 8080")
	}

	if config.Host != "" {
		if err := validateHostname(config.Host); err != nil {
			result.addError("server.host", config.Host, err.Error())
		} else if config.Host == "0.0.0.0" || config.Host == "::" {
			result.addWarning("server.host", config.Host, "preview server is reachable from other machines",
				"Use localhost unless you need remote access")
		}
	}
}

func validateTemplatesConfigDetails(config *TemplatesConfig, result *ValidationResult) {
	if err := validatePath(config.Dir); err != nil {
		result.addError("templates.dir", config.Dir, err.Error())
	} else if !pathExists(config.Dir) {
		result.addWarning("templates.dir", config.Dir, "directory does not exist")
	}

	if config.Data == "" {
		return
	}
	if err := validatePath(config.Data); err != nil {
		result.addError("templates.data", config.Data, err.Error())
	} else if !pathExists(config.Data) {
		result.addError("templates.data", config.Data, "data file does not exist",
			"Create the file or remove templates.data")
	}
}

func validateWatchConfigDetails(config *WatchConfig, result *ValidationResult) {
	if config.Debounce < 0 || config.Debounce > 10*time.Second {
		result.addError("watch.debounce", config.Debounce, "debounce must be between 0s and 10s")
	} else if config.Debounce > 0 && config.Debounce < 10*time.Millisecond {
		result.addWarning("watch.debounce", config.Debounce, "very short debounce may rebuild on every write",
			"Use at least 50ms")
	}

	if len(config.Patterns) == 0 {
		result.addWarning("watch.patterns", config.Patterns, "no patterns; nothing will be watched",
			fmt.Sprintf("Use the defaults: %s", strings.Join(DefaultPatterns, ", ")))
	}
	for _, pattern := range config.Patterns {
		if err := validateWatchConfig(&WatchConfig{Patterns: []string{pattern}}); err != nil {
			result.addError("watch.patterns", pattern, err.Error())
		}
	}
}

// Helper validation functions

var hostnameRegex = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

func validateHostname(host string) error {
	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\"}
	for _, char := range dangerousChars {
		if strings.Contains(host, char) {
			return fmt.Errorf("contains dangerous character: %s", char)
		}
	}

	if net.ParseIP(host) != nil {
		return nil
	}

	if !hostnameRegex.MatchString(host) {
		return fmt.Errorf("invalid hostname format")
	}

	return nil
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
