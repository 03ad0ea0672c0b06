package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/htmltag/internal/logging"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		setup       func()
		expectError bool
		check       func(t *testing.T, config *Config)
	}{
		{
			name: "defaults",
			setup: func() {
				viper.Reset()
			},
			check: func(t *testing.T, config *Config) {
				assert.Equal(t, ".", config.Templates.Dir)
				assert.Equal(t, DefaultCacheSize, config.Cache.Size)
				assert.Equal(t, 0, config.Render.Indent)
				assert.Equal(t, "info", config.Log.Level)
				assert.Equal(t, "text", config.Log.Format)
				assert.Equal(t, DefaultHost, config.Server.Host)
				assert.Equal(t, DefaultPort, config.Server.Port)
				assert.Equal(t, DefaultDebounce, config.Watch.Debounce)
				assert.Equal(t, DefaultPatterns, config.Watch.Patterns)
				assert.Equal(t, []string{"node_modules", ".git"}, config.Watch.Ignore)
			},
		},
		{
			name: "explicit values",
			setup: func() {
				viper.Reset()
				viper.Set("templates.dir", "site")
				viper.Set("templates.data", "site/data.yml")
				viper.Set("cache.size", 16)
				viper.Set("render.indent", 2)
				viper.Set("log.level", "debug")
				viper.Set("log.format", "json")
				viper.Set("server.host", "127.0.0.1")
				viper.Set("server.port", 3000)
				viper.Set("server.open", true)
				viper.Set("watch.debounce", "250ms")
				viper.Set("watch.patterns", []string{"*.html"})
			},
			check: func(t *testing.T, config *Config) {
				assert.Equal(t, "site", config.Templates.Dir)
				assert.Equal(t, "site/data.yml", config.Templates.Data)
				assert.Equal(t, 16, config.Cache.Size)
				assert.Equal(t, 2, config.Render.Indent)
				assert.Equal(t, "debug", config.Log.Level)
				assert.Equal(t, "json", config.Log.Format)
				assert.Equal(t, "127.0.0.1:3000", config.Address())
				assert.True(t, config.Server.Open)
				assert.Equal(t, 250*time.Millisecond, config.Watch.Debounce)
				assert.Equal(t, []string{"*.html"}, config.Watch.Patterns)
			},
		},
		{
			name: "zero cache size and port kept when set",
			setup: func() {
				viper.Reset()
				viper.Set("cache.size", 0)
				viper.Set("server.port", 0)
				viper.Set("watch.debounce", 0)
			},
			check: func(t *testing.T, config *Config) {
				assert.Equal(t, 0, config.Cache.Size)
				assert.Equal(t, 0, config.Server.Port)
				assert.Equal(t, time.Duration(0), config.Watch.Debounce)
			},
		},
		{
			name: "patterns from comma separated string",
			setup: func() {
				viper.Reset()
				viper.Set("watch.patterns", "*.html,*.yml")
			},
			check: func(t *testing.T, config *Config) {
				assert.Equal(t, []string{"*.html", "*.yml"}, config.Watch.Patterns)
			},
		},
		{
			name: "invalid viper config",
			setup: func() {
				viper.Reset()
				viper.Set("server.port", "invalid_port")
			},
			expectError: true,
		},
		{
			name: "invalid indent",
			setup: func() {
				viper.Reset()
				viper.Set("render.indent", MaxIndent+1)
			},
			expectError: true,
		},
		{
			name: "invalid log level",
			setup: func() {
				viper.Reset()
				viper.Set("log.level", "loud")
			},
			expectError: true,
		},
		{
			name: "negative cache size",
			setup: func() {
				viper.Reset()
				viper.Set("cache.size", -1)
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer viper.Reset()

			config, err := Load()

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, config)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, config)
			tt.check(t, config)
		})
	}
}

// TestLoadWithEnvironment mirrors the env binding done by the root command.
func TestLoadWithEnvironment(t *testing.T) {
	t.Setenv("HTMLTAG_SERVER_PORT", "9999")
	t.Setenv("HTMLTAG_RENDER_INDENT", "4")

	viper.Reset()
	defer viper.Reset()
	viper.SetEnvPrefix("HTMLTAG")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	require.NoError(t, viper.BindEnv("server.port"))
	require.NoError(t, viper.BindEnv("render.indent"))

	config, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9999, config.Server.Port)
	assert.Equal(t, 4, config.Render.Indent)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".htmltag.yml")
	content := `
cache:
  size: 64
render:
  indent: 2
watch:
  debounce: 50ms
  patterns: ["*.html"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	viper.Reset()
	defer viper.Reset()
	viper.SetConfigFile(path)
	require.NoError(t, viper.ReadInConfig())

	config, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 64, config.Cache.Size)
	assert.Equal(t, 2, config.Render.Indent)
	assert.Equal(t, 50*time.Millisecond, config.Watch.Debounce)
	assert.Equal(t, []string{"*.html"}, config.Watch.Patterns)
}

func TestLoggerConfig(t *testing.T) {
	var buf bytes.Buffer
	config := &Config{Log: LogConfig{Level: "warn", Format: "json"}}

	lc, err := config.LoggerConfig(&buf)
	require.NoError(t, err)
	assert.Equal(t, logging.LevelWarn, lc.Level)
	assert.Equal(t, "json", lc.Format)
	assert.Same(t, &buf, lc.Output)

	config.Log.Level = "chatty"
	_, err = config.LoggerConfig(&buf)
	assert.Error(t, err)
}

func TestValidateServerConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  ServerConfig
		wantErr bool
	}{
		{"localhost", ServerConfig{Host: "localhost", Port: 8080}, false},
		{"ipv6", ServerConfig{Host: "::1", Port: 8080}, false},
		{"system port", ServerConfig{Host: "localhost", Port: 0}, false},
		{"port too high", ServerConfig{Host: "localhost", Port: 70000}, true},
		{"negative port", ServerConfig{Port: -1}, true},
		{"command injection", ServerConfig{Host: "localhost; rm -rf /", Port: 8080}, true},
		{"bad hostname", ServerConfig{Host: "-bad-", Port: 8080}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateServerConfig(&tt.config)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	assert.NoError(t, validatePath("templates"))
	assert.NoError(t, validatePath("./site/data.yml"))
	assert.Error(t, validatePath(""))
	assert.Error(t, validatePath("../secrets"))
	assert.Error(t, validatePath("site/../../etc"))
	assert.Error(t, validatePath("site;rm"))
}

func TestValidateConfigWithDetails(t *testing.T) {
	config := &Config{
		Templates: TemplatesConfig{Dir: "."},
		Cache:     CacheConfig{Size: 0},
		Log:       LogConfig{Level: "info", Format: "text"},
		Server:    ServerConfig{Host: "0.0.0.0", Port: 80},
		Watch:     WatchConfig{Debounce: DefaultDebounce, Patterns: DefaultPatterns},
	}

	result := ValidateConfigWithDetails(config)
	assert.True(t, result.Valid)
	assert.False(t, result.HasErrors())
	assert.True(t, result.HasWarnings())

	fields := make([]string, 0, len(result.Warnings))
	for _, w := range result.Warnings {
		fields = append(fields, w.Field)
	}
	assert.ElementsMatch(t, []string{"cache.size", "server.port", "server.host"}, fields)
	assert.Contains(t, result.String(), "Validation Warnings")

	config.Log.Format = "xml"
	config.Watch.Patterns = []string{"[bad"}
	config.Templates.Data = filepath.Join("missing", "data.yml")

	result = ValidateConfigWithDetails(config)
	assert.False(t, result.Valid)
	assert.Len(t, result.Errors, 3)
	assert.Contains(t, result.String(), "Validation Errors")
}

func TestDecodeSkipsValidation(t *testing.T) {
	v := viper.New()
	v.Set("server.port", 70000)
	v.Set("cache.size", 0)

	config, err := Decode(v)
	require.NoError(t, err)
	assert.Equal(t, 70000, config.Server.Port)
	assert.Equal(t, 0, config.Cache.Size, "explicit zero is kept")
	assert.Equal(t, "info", config.Log.Level)
	assert.Equal(t, DefaultDebounce, config.Watch.Debounce)

	result := ValidateConfigWithDetails(config)
	assert.True(t, result.HasErrors())
	assert.True(t, result.HasWarnings())
}
