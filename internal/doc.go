// Package internal contains the implementation packages behind the htmltag
// library and CLI.
//
// # Package Organization
//
// The compile path runs bottom-up through these packages:
//
//   - placeholder: encodes interpolation indices into private-use tokens
//   - parser: builds a tree from the joined static strings
//   - cache: memoizes trees by static-string identity
//   - engine: substitutes interpolated values into a cached tree
//   - nodes, safe: the node model and pre-escaped markup wrapper
//   - renderer: serializes nodes, compact or indented
//   - compiler: ties the above together behind Compile
//
// Around it sit the tooling packages:
//
//   - tmpl: Go-side builder for templates (T, Dict, ClassNames)
//   - source: parses on-disk templates with {path} slots and {@include}s
//   - site: discovers pages under a directory and renders them
//   - config: viper-backed configuration with validation
//   - errors, logging: structured errors, hints and slog setup
//   - server, watcher: live preview with WebSocket reloads
//
// # Inter-Package Communication
//
//   - The compiler owns a cache and a codec; everything else asks it for nodes
//   - Site renders pages through a compiler and reports via an ErrorCollector
//   - The watcher notifies the server, which broadcasts reloads to browsers
//
// # Security Considerations
//
//   - Text and attribute values are always escaped on render
//   - Only safe.HTML bypasses escaping; sanitize runs bluemonday first
//   - Site paths are confined to the site root
//   - The server checks WebSocket origins against its own address
package internal
