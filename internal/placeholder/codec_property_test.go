//go:build property
// +build property

package placeholder

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestCodecProperties checks that instrumenting and splitting are inverse
// operations.
func TestCodecProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)
	c := NewWithSalt("qwerty")

	properties.Property("index round trip", prop.ForAll(
		func(i int) bool {
			got, ok := c.Index(c.Token(i))
			return ok && got == i
		},
		gen.IntRange(0, 1<<20),
	))

	properties.Property("split recovers segments", prop.ForAll(
		func(segments []string) bool {
			if len(segments) == 0 {
				return true
			}
			parts := c.Split(c.Instrument(segments))

			var rebuilt []string
			var current strings.Builder
			next := 0
			for _, p := range parts {
				if !p.Placeholder {
					current.WriteString(p.Text)
					continue
				}
				if p.Index != next {
					return false
				}
				next++
				rebuilt = append(rebuilt, current.String())
				current.Reset()
			}
			rebuilt = append(rebuilt, current.String())

			if len(rebuilt) != len(segments) {
				return false
			}
			for i := range segments {
				if rebuilt[i] != segments[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.RegexMatch(`^[a-z0-9<>/ ="-]{0,12}$`)),
	))

	properties.Property("one placeholder between each pair of segments", prop.ForAll(
		func(segments []string) bool {
			count := 0
			for _, p := range c.Split(c.Instrument(segments)) {
				if p.Placeholder {
					count++
				}
			}
			if len(segments) == 0 {
				return count == 0
			}
			return count == len(segments)-1
		},
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t)
}
