package tmpl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/htmltag/internal/errors"
	"github.com/conneroisu/htmltag/internal/safe"
)

func TestNew(t *testing.T) {
	tpl := New([]string{"<p>", " ", "</p>"}, "a", Interpolation{Value: 2, Conversion: "r"})
	require.NoError(t, tpl.Validate())
	assert.Equal(t, []any{"a", 2}, tpl.Values())
	assert.Equal(t, "r", tpl.Interpolations[1].Conversion)
	assert.Equal(t, "<p>{0} {1}</p>", tpl.String())
}

func TestValidate(t *testing.T) {
	err := New([]string{"<p>", "</p>"}).Validate()
	require.Error(t, err)
	assert.True(t, errors.IsTemplateValue(err))

	assert.Error(t, Template{}.Validate())
	assert.NoError(t, New([]string{"x"}).Validate())
}

func TestBuilder(t *testing.T) {
	b := NewBuilder().
		Text("<p class=").Value("big").
		Text(">Hi ").ValueWith("<b>", "", "safe").
		Text("</p>")

	tpl := b.Template()
	require.NoError(t, tpl.Validate())
	assert.Equal(t, []string{"<p class=", ">Hi ", "</p>"}, tpl.Strings)
	assert.Equal(t, "safe", tpl.Interpolations[1].Format)

	b.Text("<br>")
	assert.Equal(t, "</p>", tpl.Strings[2], "earlier templates are not affected")
	assert.Equal(t, "</p><br>", b.Template().Strings[2])
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		in   Interpolation
		want any
	}{
		{name: "plain value", in: Interpolation{Value: 42}, want: 42},
		{name: "str", in: Interpolation{Value: 42, Conversion: "s"}, want: "42"},
		{name: "repr", in: Interpolation{Value: "x", Conversion: "r"}, want: `"x"`},
		{name: "ascii", in: Interpolation{Value: "é", Conversion: "a"}, want: `"\u00e9"`},
		{name: "safe", in: Interpolation{Value: "<b>", Format: "safe"}, want: safe.HTML("<b>")},
		{name: "safe keeps safe", in: Interpolation{Value: safe.HTML("<i>"), Format: "safe"}, want: safe.HTML("<i>")},
		{name: "sanitize", in: Interpolation{Value: `<b onclick="x()">hi</b>`, Format: "sanitize"}, want: safe.HTML("<b>hi</b>")},
		{name: "fmt verb", in: Interpolation{Value: 3.14159, Format: "%.2f"}, want: "3.14"},
		{name: "conversion then format", in: Interpolation{Value: 7, Conversion: "s", Format: "[%s]"}, want: "[7]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.in.Resolve()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveErrors(t *testing.T) {
	_, err := Interpolation{Value: 1, Conversion: "x", Expr: "count"}.Resolve()
	require.Error(t, err)
	assert.True(t, errors.IsTemplateValue(err))
	var me *errors.MarkupError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, errors.ErrCodeUnknownDirective, me.Code)
	assert.Equal(t, "count", me.Attr)

	_, err = Interpolation{Value: 1, Format: "bogus"}.Resolve()
	assert.True(t, errors.IsTemplateValue(err))
}

func TestDict(t *testing.T) {
	d := Dict{{Key: "b", Value: 1}}
	d = d.Set("a", 2)
	d = d.Set("b", 3)

	assert.Equal(t, []string{"b", "a"}, d.Keys())
	v, ok := d.Get("b")
	assert.True(t, ok)
	assert.Equal(t, 3, v)
	_, ok = d.Get("zzz")
	assert.False(t, ok)
}
