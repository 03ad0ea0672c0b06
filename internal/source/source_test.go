package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/htmltag/internal/errors"
	"github.com/conneroisu/htmltag/internal/tmpl"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		strings []string
		slots   []Slot
	}{
		{
			name:    "no slots",
			text:    "<p>hello</p>",
			strings: []string{"<p>hello</p>"},
		},
		{
			name:    "single path",
			text:    "<p>{user.name}</p>",
			strings: []string{"<p>", "</p>"},
			slots:   []Slot{{Expr: "user.name", Offset: 3}},
		},
		{
			name:    "conversion and format",
			text:    "{price!s:[%s]}{html:safe}",
			strings: []string{"", "", ""},
			slots: []Slot{
				{Expr: "price", Conversion: "s", Format: "[%s]", Offset: 0},
				{Expr: "html", Format: "safe", Offset: 14},
			},
		},
		{
			name:    "include",
			text:    "<main>{@card.html}</main>",
			strings: []string{"<main>", "</main>"},
			slots:   []Slot{{Expr: "card.html", Include: true, Offset: 6}},
		},
		{
			name:    "escaped braces",
			text:    "<style>p {{ color: red }}</style>",
			strings: []string{"<style>p { color: red }</style>"},
		},
		{
			name:    "spaces trimmed",
			text:    "{ title }",
			strings: []string{"", ""},
			slots:   []Slot{{Expr: "title", Offset: 0}},
		},
		{
			name:    "dot is the whole data",
			text:    "{.}",
			strings: []string{"", ""},
			slots:   []Slot{{Expr: ".", Offset: 0}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := Parse("test.html", tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.strings, src.Strings)
			assert.Equal(t, tt.slots, src.Slots)
			assert.Len(t, src.Strings, len(src.Slots)+1)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"unterminated", "<p>{name</p>"},
		{"nested brace", "{a{b}}"},
		{"stray close", "<p>}</p>"},
		{"empty slot", "{}"},
		{"empty include", "{@ }"},
		{"unknown conversion", "{name!x}"},
		{"bad path", "{a..b}"},
		{"bad characters", "{a+b}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("bad.html", tt.text)
			require.Error(t, err)

			var me *errors.MarkupError
			require.ErrorAs(t, err, &me)
			assert.Equal(t, errors.ErrCodeSlotSyntax, me.Code)
			assert.Equal(t, "bad.html", me.Context["source"])
		})
	}
}

func TestBind(t *testing.T) {
	src, err := Parse("page.html", `<h1 class={cls}>{user.name!s}</h1><p>{items.1}</p>`)
	require.NoError(t, err)

	data := tmpl.Dict{
		{Key: "cls", Value: []any{"title", "big"}},
		{Key: "user", Value: tmpl.Dict{{Key: "name", Value: "Ada"}}},
		{Key: "items", Value: []any{"zero", "one"}},
	}

	tpl, err := src.Bind(data, nil)
	require.NoError(t, err)
	require.NoError(t, tpl.Validate())

	assert.Equal(t, []any{[]any{"title", "big"}, "Ada", "one"}, tpl.Values())
	assert.Equal(t, "s", tpl.Interpolations[1].Conversion)
	assert.Equal(t, "user.name", tpl.Interpolations[1].Expr)
}

func TestBindMissingValue(t *testing.T) {
	src, err := Parse("page.html", "<p>{user.email}</p>")
	require.NoError(t, err)

	_, err = src.Bind(map[string]any{"user": map[string]any{"name": "Ada"}}, nil)
	require.Error(t, err)

	var me *errors.MarkupError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, errors.ErrCodeMissingValue, me.Code)
	assert.Equal(t, 3, me.Offset)
	assert.Equal(t, "email", me.Context["segment"])
}

func TestBindIncludes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "card.html"), []byte(`<div>{title}</div>`), 0o644))

	src, err := Parse("page.html", "<main>{@card.html}</main>")
	require.NoError(t, err)

	tpl, err := src.Bind(tmpl.Dict{{Key: "title", Value: "Hi"}}, Dir(dir))
	require.NoError(t, err)

	nested, ok := tpl.Interpolations[0].Value.(tmpl.Template)
	require.True(t, ok)
	assert.Equal(t, []string{"<div>", "</div>"}, nested.Strings)
	assert.Equal(t, []any{"Hi"}, nested.Values())

	t.Run("no resolver", func(t *testing.T) {
		_, err := src.Bind(nil, nil)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		missing, err := Parse("page.html", "{@nope.html}")
		require.NoError(t, err)
		_, err = missing.Bind(nil, Dir(dir))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("cannot escape root", func(t *testing.T) {
		escape, err := Parse("page.html", "{@../card.html}")
		require.NoError(t, err)
		_, err = escape.Bind(tmpl.Dict{{Key: "title", Value: "x"}}, Dir(filepath.Join(dir, "sub")))
		assert.Error(t, err)
	})
}

func TestBindIncludeDepth(t *testing.T) {
	loop := func(name string) (*Source, error) {
		return Parse(name, "<i>{@self}</i>")
	}
	src, err := loop("self")
	require.NoError(t, err)

	_, err = src.Bind(nil, loop)
	require.Error(t, err)

	var me *errors.MarkupError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, errors.ErrCodeSlotSyntax, me.Code)
	assert.Contains(t, me.Message, "nested deeper")
}

func TestLookup(t *testing.T) {
	type profile struct {
		Name  string
		Email string `json:"mail"`
		age   int
	}
	data := map[string]any{
		"dict":    tmpl.Dict{{Key: "a", Value: 1}},
		"list":    []any{"x", "y"},
		"strings": []string{"p", "q"},
		"typed":   map[string]int{"n": 3},
		"user":    &profile{Name: "Ada", Email: "ada@example.com", age: 36},
		"nothing": nil,
	}

	tests := []struct {
		path string
		want any
	}{
		{"dict.a", 1},
		{"list.0", "x"},
		{"strings.1", "q"},
		{"typed.n", 3},
		{"user.name", "Ada"},
		{"user.mail", "ada@example.com"},
		{"nothing", nil},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := Lookup(data, tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, path := range []string{"dict.b", "list.2", "list.x", "user.age", "user.Email", "nothing.x", "missing"} {
		t.Run("missing "+path, func(t *testing.T) {
			_, err := Lookup(data, path)
			require.Error(t, err)
			assert.True(t, errors.IsTemplateValue(err))
		})
	}

	whole, err := Lookup(data, ".")
	require.NoError(t, err)
	assert.Equal(t, data, whole)
}
