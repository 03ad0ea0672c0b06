//go:build property
// +build property

package engine

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestClassNamesProperties checks class list invariants.
func TestClassNamesProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("no leading, trailing or doubled spaces", prop.ForAll(
		func(names []string) bool {
			values := make([]any, len(names))
			for i, n := range names {
				values[i] = n
			}
			got, err := ClassNames(values...)
			if err != nil {
				return false
			}
			return strings.TrimSpace(got) == got && !strings.Contains(got, "  ")
		},
		gen.SliceOf(gen.OneGenOf(gen.AlphaString(), gen.Const(" "), gen.Const(""))),
	))

	properties.Property("mapping keeps exactly the true keys", prop.ForAll(
		func(flags map[string]bool) bool {
			got, err := ClassNames(flags)
			if err != nil {
				return false
			}
			want := 0
			for _, on := range flags {
				if on {
					want++
				}
			}
			return len(strings.Fields(got)) == want
		},
		gen.MapOf(gen.Identifier(), gen.Bool()),
	))

	properties.Property("nesting does not change the result", prop.ForAll(
		func(names []string) bool {
			flat, err1 := ClassNames(toAny(names)...)
			nested, err2 := ClassNames([]any{toAny(names)})
			return err1 == nil && err2 == nil && flat == nested
		},
		gen.SliceOf(gen.Identifier()),
	))

	properties.TestingRun(t)
}

func toAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
