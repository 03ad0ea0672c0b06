// Package cmd provides the command-line interface for htmltag.
//
// This package implements the CLI commands using the Cobra framework. The
// commands operate on a directory of template source files: markup with
// {path} slots that are filled from a shared YAML or JSON data file.
//
// # Available Commands
//
//   - render: Render pages to stdout or to an output directory
//   - watch: Re-render pages whenever a template or the data file changes
//   - serve: Preview pages in the browser with live reload
//   - config: Validate or show the resolved configuration
//   - version: Show build information
//
// # Command Examples
//
//	// Render one page to stdout
//	htmltag render index.html --data site.yml
//
//	// Render every page into dist/ with indentation
//	htmltag render --out dist --indent 2
//
//	// Preview on another port without opening a browser
//	htmltag serve --port 3000 --open=false
//
// # Configuration
//
// Flags override HTMLTAG_* environment variables, which override the
// configuration file (.htmltag.yml by default). See the config package for
// every key.
package cmd
