//go:build property

package watcher

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestFilterProperties validates the path filters used by watch and serve.
func TestFilterProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(9876)
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("pattern filter depends only on base name", prop.ForAll(
		func(dirs []string, name string) bool {
			filter := PatternFilter([]string{"*.html"})
			nested := filepath.Join(append(dirs, name+".html")...)
			return filter(nested) && filter(name+".html") && !filter(name+".txt")
		},
		gen.SliceOfN(3, gen.Identifier()),
		gen.Identifier(),
	))

	properties.Property("ignore filter rejects any path through an ignored dir", prop.ForAll(
		func(before, after []string, file string) bool {
			filter := IgnoreFilter([]string{"node_modules"})
			parts := append(append(append([]string{}, before...), "node_modules"), after...)
			parts = append(parts, file)
			return !filter(strings.Join(parts, "/"))
		},
		gen.SliceOfN(2, gen.Identifier()),
		gen.SliceOfN(2, gen.Identifier()),
		gen.Identifier(),
	))

	properties.Property("debouncer keeps one event per path, sorted", prop.ForAll(
		func(paths []string) bool {
			d := &Debouncer{output: make(chan []ChangeEvent, 1)}
			seen := map[string]bool{}
			for _, p := range paths {
				d.pending = append(d.pending, ChangeEvent{Path: p})
				seen[p] = true
			}
			d.flush()

			if len(paths) == 0 {
				return len(d.output) == 0
			}
			events := <-d.output
			if len(events) != len(seen) {
				return false
			}
			for i := 1; i < len(events); i++ {
				if events[i-1].Path >= events[i].Path {
					return false
				}
			}
			return len(d.pending) == 0
		},
		gen.SliceOf(gen.OneConstOf("a.html", "b.html", "c.yml", "d.json")),
	))

	properties.TestingRun(t)
}
