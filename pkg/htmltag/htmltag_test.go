package htmltag_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/htmltag/internal/testutils"
	"github.com/conneroisu/htmltag/pkg/htmltag"
)

func TestHTMLErrors(t *testing.T) {
	_, err := htmltag.HTML(htmltag.T([]string{"<div><p></div>"}))
	require.Error(t, err)
	assert.ErrorIs(t, err, htmltag.ErrMalformedMarkup)
	assert.ErrorIs(t, err, htmltag.ErrMismatchedTag)
	assert.NotErrorIs(t, err, htmltag.ErrTemplateValue)

	_, err = htmltag.HTML(htmltag.T([]string{"<div>"}))
	assert.ErrorIs(t, err, htmltag.ErrUnclosedTag)

	_, err = htmltag.HTML(htmltag.T([]string{"<b style=", "></b>"}, 12))
	require.Error(t, err)
	assert.ErrorIs(t, err, htmltag.ErrTemplateValue)
	var me *htmltag.MarkupError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, "style", me.Attr)
}

func TestHTMLContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := htmltag.HTMLContext(ctx, htmltag.T([]string{"<p></p>"}))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestComponents(t *testing.T) {
	greet := htmltag.ComponentFunc(func(children []htmltag.Node, attrs htmltag.Attrs) (any, error) {
		name, _ := attrs.Get("name")
		return htmltag.T([]string{"<h1>Hi ", "</h1>", ""}, name.Value, children), nil
	})

	node, err := htmltag.HTML(htmltag.T([]string{`<`, ` name="Ada"><p>x</p></`, `>`}, greet, greet))
	require.NoError(t, err)
	assert.Equal(t, "<h1>Hi Ada</h1><p>x</p>", htmltag.Render(node))
}

func TestSafeAndSanitize(t *testing.T) {
	node, err := htmltag.HTML(htmltag.T(
		[]string{"<div>", "", "</div>"},
		htmltag.Safe("<i>ok</i>"),
		htmltag.Sanitize(`<b onclick="x()">bold</b><script>bad()</script>`),
	))
	require.NoError(t, err)
	assert.Equal(t, "<div><i>ok</i><b>bold</b></div>", htmltag.Render(node))
}

func TestNewCompilerHasOwnCache(t *testing.T) {
	c := htmltag.NewCompiler(htmltag.WithCacheSize(1))
	strs := []string{"<p>", "</p>"}

	for _, v := range []string{"a", "b", "c"} {
		_, err := c.Compile(context.Background(), htmltag.T(strs, v))
		require.NoError(t, err)
	}

	stats := c.Cache().Stats()
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, int64(1), stats.Builds)
	assert.Equal(t, int64(2), stats.Hits)
}

func TestDictKeepsOrder(t *testing.T) {
	attrs := htmltag.Dict{{Key: "z", Value: "1"}, {Key: "a", Value: "2"}}
	node, err := htmltag.HTML(htmltag.T([]string{"<p ", "></p>"}, attrs))
	require.NoError(t, err)
	assert.Equal(t, `<p z="1" a="2"></p>`, htmltag.Render(node))
}

func TestHostileInputIsEscaped(t *testing.T) {
	for _, payload := range testutils.SecurityTestCases.ScriptInjection {
		node, err := htmltag.HTML(htmltag.T([]string{"<p>", "</p>"}, payload))
		require.NoError(t, err)
		out := htmltag.Render(node)
		inner := strings.TrimSuffix(strings.TrimPrefix(out, "<p>"), "</p>")
		assert.NotContains(t, inner, "<", payload)
	}

	for _, payload := range testutils.SecurityTestCases.AttributeBreakout {
		node, err := htmltag.HTML(htmltag.T([]string{"<a title=", "></a>"}, payload))
		require.NoError(t, err)
		out := htmltag.Render(node)
		inner := strings.TrimSuffix(strings.TrimPrefix(out, `<a title="`), `"></a>`)
		assert.NotContains(t, inner, `"`, payload)
	}
}
