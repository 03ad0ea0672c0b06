package safe

import (
	"html/template"
	"testing"

	"github.com/stretchr/testify/assert"
)

type markup struct{ s string }

func (m markup) SafeHTML() string { return m.s }

func TestAs(t *testing.T) {
	testCases := []struct {
		name     string
		value    any
		expected string
		ok       bool
	}{
		{"html", HTML("<b>x</b>"), "<b>x</b>", true},
		{"go template html", template.HTML("<i>y</i>"), "<i>y</i>", true},
		{"value interface", markup{"<u>z</u>"}, "<u>z</u>", true},
		{"plain string", "<b>x</b>", "", false},
		{"nil", nil, "", false},
		{"int", 3, "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, ok := As(tc.value)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.expected, s)
			assert.Equal(t, tc.ok, Is(tc.value))
		})
	}
}

func TestEscapeText(t *testing.T) {
	assert.Equal(t, "&lt;script&gt;alert(&#34;x&#34;)&lt;/script&gt;",
		EscapeAttribute(`<script>alert("x")</script>`))
	assert.Equal(t, `&lt;script&gt;alert("x")&lt;/script&gt;`,
		EscapeText(`<script>alert("x")</script>`))
	assert.Equal(t, "Tom &amp; Jerry's", EscapeText("Tom & Jerry's"))
}

func TestEscapeAttribute(t *testing.T) {
	assert.Equal(t, "a &amp; b", EscapeAttribute("a & b"))
	assert.Equal(t, "&#39;quoted&#39;", EscapeAttribute("'quoted'"))
	assert.Equal(t, "&#34;x&#34;", EscapeAttribute(`"x"`))
}

func TestSanitize(t *testing.T) {
	out := Sanitize(`<p onclick="evil()">Hello <script>alert(1)</script><b>world</b></p>`)
	assert.Equal(t, HTML("<p>Hello <b>world</b></p>"), out)
	assert.True(t, Is(out))
}
