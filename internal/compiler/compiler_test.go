package compiler

import (
	"bytes"
	"context"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/htmltag/internal/cache"
	"github.com/conneroisu/htmltag/internal/errors"
	"github.com/conneroisu/htmltag/internal/logging"
	"github.com/conneroisu/htmltag/internal/placeholder"
	"github.com/conneroisu/htmltag/internal/renderer"
	"github.com/conneroisu/htmltag/internal/tmpl"
)

func TestCompileUsesCache(t *testing.T) {
	c := New(WithCodec(placeholder.NewWithSalt("cachetest")))
	strs := []string{`<div class=`, `>`, `</div>`}

	a, err := c.Compile(context.Background(), tmpl.New(strs, "x", "first"))
	require.NoError(t, err)
	b, err := c.Compile(context.Background(), tmpl.New([]string{`<div class=`, `>`, `</div>`}, "y", "second"))
	require.NoError(t, err)

	assert.Equal(t, `<div class="x">first</div>`, renderer.Render(a))
	assert.Equal(t, `<div class="y">second</div>`, renderer.Render(b))

	stats := c.Cache().Stats()
	assert.Equal(t, int64(1), stats.Builds)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, 1, stats.Entries)

	first, err := c.Parse(strs)
	require.NoError(t, err)
	second, err := c.Parse(strs)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestCompileIsIdempotent(t *testing.T) {
	c := New()
	template := tmpl.New([]string{`<ul>`, `</ul>`}, []tmpl.Template{
		tmpl.New([]string{`<li data=`, `>`, `</li>`}, map[string]any{"b": 2, "a": 1}, "one"),
		tmpl.New([]string{`<li data=`, `>`, `</li>`}, map[string]any{"c": true}, "two"),
	})

	first, err := c.Compile(context.Background(), template)
	require.NoError(t, err)
	want := renderer.Render(first)
	assert.Equal(t, `<ul><li data-a="1" data-b="2">one</li><li data-c>two</li></ul>`, want)

	for i := 0; i < 20; i++ {
		n, err := c.Compile(context.Background(), template)
		require.NoError(t, err)
		assert.Equal(t, want, renderer.Render(n))
	}
}

func TestLiteralRoundTrip(t *testing.T) {
	inputs := []string{
		`<div id="main"><p class="lead">Hello &amp; welcome</p><img src="a.png" alt="A" /></div>`,
		`<!DOCTYPE html><html><head><title>T</title></head><body></body></html>`,
		`<ul><li>a</li><li>b</li></ul>`,
		`<script>if (a < b) { run(); }</script>`,
		`<form><input value="" alt="" disabled /><textarea>&lt;/textarea&gt;&lt;b&gt;</textarea></form>`,
		`<head><title>Q &amp; A</title></head>`,
		`<!-- a &amp; b --><p>x</p>`,
	}
	c := New()
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			n, err := c.Compile(context.Background(), tmpl.New([]string{in}))
			require.NoError(t, err)
			assert.Equal(t, in, renderer.Render(n))
		})
	}
}

func TestCompileErrors(t *testing.T) {
	c := New()

	_, err := c.Compile(context.Background(), tmpl.New([]string{`<div><span></div>`}))
	assert.ErrorIs(t, err, errors.ErrMismatchedTag)

	_, err = c.Compile(context.Background(), tmpl.New([]string{`<div>`}))
	assert.ErrorIs(t, err, errors.ErrUnclosedTag)
	assert.Equal(t, 0, c.Cache().Len(), "failed builds are not cached")

	_, err = c.Compile(context.Background(), tmpl.Template{Strings: []string{"a", "b"}})
	assert.True(t, errors.IsTemplateValue(err))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Compile(ctx, tmpl.New([]string{`<p></p>`}))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOptions(t *testing.T) {
	shared := cache.New(2)
	codec := placeholder.NewWithSalt("opts")
	c := New(WithCache(shared), WithCodec(codec), WithLogger(logging.Nop()))
	assert.Same(t, shared, c.Cache())
	assert.Same(t, codec, c.Codec())

	bounded := New(WithCacheSize(1))
	for _, s := range []string{"<a></a>", "<b></b>", "<i></i>"} {
		_, err := bounded.Compile(context.Background(), tmpl.New([]string{s}))
		require.NoError(t, err)
	}
	assert.Equal(t, 1, bounded.Cache().Len())
	assert.Equal(t, int64(2), bounded.Cache().Stats().Evictions)

	assert.Same(t, Default(), Default())
}

func TestCompileLogsCacheMisses(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger(&logging.LoggerConfig{Level: logging.LevelDebug, Format: "json", Output: &buf})
	c := New(WithLogger(logger))

	_, err := c.Compile(context.Background(), tmpl.New([]string{`<p>`, `</p>`}, "x"))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "template cache miss")
	assert.Contains(t, buf.String(), `"component":"compiler"`)
}

func TestConcurrentCompile(t *testing.T) {
	c := New()
	strs := []string{`<li>`, `</li>`}

	var wg sync.WaitGroup
	out := make([]string, 50)
	for i := range out {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			n, err := c.Compile(context.Background(), tmpl.New(strs, i))
			if err == nil {
				out[i] = renderer.Render(n)
			}
		}(i)
	}
	wg.Wait()

	for i, s := range out {
		assert.Equal(t, "<li>"+strconv.Itoa(i)+"</li>", s)
	}
	assert.Equal(t, 1, c.Cache().Len())
}
