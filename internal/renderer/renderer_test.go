package renderer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/htmltag/internal/nodes"
)

func el(tag string, attrs nodes.Attrs, children ...nodes.Node) *nodes.Element {
	return nodes.MustElement(tag, attrs, children...)
}

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		node nodes.Node
		want string
	}{
		{
			name: "escaped text",
			node: nodes.NewText(`<script>"x" & 'y'</script>`),
			want: `&lt;script&gt;"x" &amp; 'y'&lt;/script&gt;`,
		},
		{
			name: "safe text",
			node: nodes.NewSafeText("<b>bold</b>"),
			want: "<b>bold</b>",
		},
		{
			name: "element with attributes",
			node: el("a", nodes.NewAttrs(nodes.String("href", `/q?a=1&b="2"`), nodes.Boolean("download")), nodes.NewText("go")),
			want: `<a href="/q?a=1&amp;b=&#34;2&#34;" download>go</a>`,
		},
		{
			name: "void self closes",
			node: el("img", nodes.NewAttrs(nodes.String("src", "a.png"))),
			want: `<img src="a.png" />`,
		},
		{
			name: "childless element",
			node: el("div", nil),
			want: `<div></div>`,
		},
		{
			name: "raw content is not escaped",
			node: el("script", nil, nodes.NewText("if (a < b && c) {}")),
			want: `<script>if (a < b && c) {}</script>`,
		},
		{
			name: "rcdata is not escaped",
			node: el("textarea", nil, nodes.NewText("<b>")),
			want: `<textarea><b></textarea>`,
		},
		{
			name: "raw applies to direct children only",
			node: el("noscript", nil, el("p", nil, nodes.NewText("<x>"))),
			want: `<noscript><p>&lt;x&gt;</p></noscript>`,
		},
		{
			name: "fragment",
			node: nodes.NewFragment(el("li", nil, nodes.NewText("a")), el("li", nil, nodes.NewText("b"))),
			want: `<li>a</li><li>b</li>`,
		},
		{
			name: "comment verbatim",
			node: nodes.NewComment(" <keep> "),
			want: `<!-- <keep> -->`,
		},
		{
			name: "doctype",
			node: nodes.NewFragment(nodes.NewDocumentType(""), el("html", nil)),
			want: `<!DOCTYPE html><html></html>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tt.node))
		})
	}
}

func TestRenderIndent(t *testing.T) {
	tree := el("ul", nodes.NewAttrs(nodes.String("class", "list")),
		nodes.NewText("\n  "),
		el("li", nil, nodes.NewText("one")),
		el("li", nil, el("br", nil)),
		el("li", nil),
		el("script", nil, nodes.NewText("a < b")),
	)

	want := `<ul class="list">
  <li>
    one
  </li>
  <li>
    <br />
  </li>
  <li></li>
  <script>a < b</script>
</ul>`
	assert.Equal(t, want, New(2).Render(tree))
}

func TestRenderIndentFragment(t *testing.T) {
	tree := nodes.NewFragment(nodes.NewDocumentType(""), nodes.NewText(" "), el("p", nil, nodes.NewText("x")))
	assert.Equal(t, "<!DOCTYPE html>\n<p>\n    x\n</p>", New(4).Render(tree))
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(0).Write(&buf, el("p", nil, nodes.NewText("hi"))))
	assert.Equal(t, "<p>hi</p>", buf.String())
	assert.Equal(t, 0, New(-3).Indent)
}

func TestRenderIsDeterministic(t *testing.T) {
	tree := el("div", nodes.NewAttrs(nodes.String("id", "x"), nodes.String("class", "a b")),
		nodes.NewText("<"), nodes.NewSafeText("<i>"))
	first := Render(tree)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Render(tree))
	}
}

func BenchmarkRender(b *testing.B) {
	items := make([]nodes.Node, 100)
	for i := range items {
		items[i] = el("li", nodes.NewAttrs(nodes.String("class", "item")), nodes.NewText("item & <more>"))
	}
	tree := el("ul", nil, items...)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Render(tree)
	}
}
