package engine

import (
	"html/template"
	"iter"
	"reflect"
	"slices"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"

	"github.com/conneroisu/htmltag/internal/nodes"
	"github.com/conneroisu/htmltag/internal/safe"
	"github.com/conneroisu/htmltag/internal/tmpl"
)

type props struct{ Name string }

func TestClassify(t *testing.T) {
	var nilElement *nodes.Element
	var seq iter.Seq[int] = slices.Values([]int{1})

	tests := []struct {
		name  string
		value any
		want  valueKind
	}{
		{"nil", nil, kindNil},
		{"typed nil node", nilElement, kindNil},
		{"bool", false, kindBool},
		{"string", "x", kindString},
		{"bytes", []byte("x"), kindString},
		{"safe", safe.HTML("<b>"), kindSafe},
		{"html/template", template.HTML("<b>"), kindSafe},
		{"node", nodes.NewText("x"), kindNode},
		{"template", tmpl.New([]string{"x"}), kindTemplate},
		{"template pointer", &tmpl.Template{}, kindTemplate},
		{"templ component", templ.Raw("x"), kindTempl},
		{"dict", tmpl.Dict{}, kindMapping},
		{"attrs", nodes.Attrs{}, kindMapping},
		{"go map", map[string]int{}, kindMapping},
		{"slice", []int{1}, kindIterable},
		{"array", [2]string{}, kindIterable},
		{"iterator", seq, kindIterable},
		{"component func", ComponentFunc(nil), kindCallable},
		{"props func", func(props) string { return "" }, kindCallable},
		{"props func with error", func(props) (any, error) { return nil, nil }, kindCallable},
		{"other func", func(int) string { return "" }, kindOther},
		{"number", 3, kindOther},
		{"struct", struct{}{}, kindOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.value), "got %s", classify(tt.value))
		})
	}
}

func TestTruthy(t *testing.T) {
	for _, v := range []any{true, "x", 1, 0.5, []int{1}, map[string]int{"a": 1}, &props{}} {
		assert.True(t, truthy(v), "%#v", v)
	}
	for _, v := range []any{nil, false, "", 0, 0.0, []int{}, map[string]int{}, (*props)(nil)} {
		assert.False(t, truthy(v), "%#v", v)
	}
}

func TestEntriesOrder(t *testing.T) {
	kvs, ok := entries(map[string]int{"b": 2, "a": 1})
	assert.True(t, ok)
	assert.Equal(t, []tmpl.KV{{Key: "a", Value: 1}, {Key: "b", Value: 2}}, kvs)

	kvs, ok = entries(nodes.NewAttrs(nodes.Boolean("x"), nodes.String("y", "1")))
	assert.True(t, ok)
	assert.Equal(t, []tmpl.KV{{Key: "x", Value: true}, {Key: "y", Value: "1"}}, kvs)

	_, ok = entries([]string{"a"})
	assert.False(t, ok)
}

func TestFieldAttr(t *testing.T) {
	type sample struct {
		Plain    string
		Named    string `attr:"data-name"`
		Required string `attr:",required"`
		Skipped  string `attr:"-"`
	}
	typ := reflect.TypeOf(sample{})

	name, required, skip := fieldAttr(typ.Field(0))
	assert.Equal(t, "plain", name)
	assert.False(t, required || skip)

	name, _, _ = fieldAttr(typ.Field(1))
	assert.Equal(t, "data-name", name)

	name, required, _ = fieldAttr(typ.Field(2))
	assert.Equal(t, "required", name)
	assert.True(t, required)

	_, _, skip = fieldAttr(typ.Field(3))
	assert.True(t, skip)
}
