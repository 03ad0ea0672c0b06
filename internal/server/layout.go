package server

import (
	"context"
	"strings"

	"github.com/conneroisu/htmltag/internal/errors"
	"github.com/conneroisu/htmltag/internal/renderer"
	"github.com/conneroisu/htmltag/internal/safe"
	"github.com/conneroisu/htmltag/internal/tmpl"
)

const reloadScript = `(function(){` +
	`var p=location.protocol==="https:"?"wss://":"ws://";` +
	`var ws=new WebSocket(p+location.host+"/_htmltag/ws");` +
	`ws.onmessage=function(e){var m=JSON.parse(e.data);if(m.type==="reload"){location.reload();}};` +
	`})();`

const previewCSS = `body{margin:0;font-family:system-ui,sans-serif;background:#f9fafb;color:#1f2937}` +
	`.htmltag-bar{display:flex;gap:1rem;align-items:center;padding:.75rem 1.5rem;background:#1f2937;color:#f9fafb}` +
	`.htmltag-bar a{color:#93c5fd}` +
	`main{max-width:56rem;margin:2rem auto;padding:1.5rem;background:#fff;border-radius:.5rem;box-shadow:0 1px 3px rgba(0,0,0,.1)}` +
	`.htmltag-error h1{color:#b91c1c;font-size:1.25rem}` +
	`.htmltag-error pre{white-space:pre-wrap;background:#fef2f2;padding:1rem;border-radius:.375rem}` +
	`.htmltag-pages li{margin:.25rem 0}`

var layoutStrings = []string{
	`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>htmltag preview</title><style>` +
		previewCSS + `</style></head><body><header class="htmltag-bar"><a href="/">pages</a><span>`,
	`</span></header><main>`,
	`</main><script>` + reloadScript + `</script></body></html>`,
}

var indexStrings = []string{`<h1>Pages</h1><ul class="htmltag-pages">`, `</ul>`}

var pageLinkStrings = []string{`<li><a href=`, `>`, `</a></li>`}

var overlayStrings = []string{
	`<section class="htmltag-error"><h1>Failed to render `, `</h1><pre>`, `</pre><ul>`, `</ul></section>`,
}

var suggestionStrings = []string{`<li><strong>`, `</strong> `, ` <code>`, `</code></li>`}

func (s *PreviewServer) render(ctx context.Context, t tmpl.Template) (string, error) {
	n, err := s.compiler.Compile(ctx, t)
	if err != nil {
		return "", err
	}
	return renderer.Render(n), nil
}

func (s *PreviewServer) layout(ctx context.Context, title string, body safe.HTML) (string, error) {
	return s.render(ctx, tmpl.New(layoutStrings, title, body))
}

// wrapPage adds the reload script to a full document, or places a fragment
// inside the preview layout.
func (s *PreviewServer) wrapPage(ctx context.Context, name, body string) (string, error) {
	if i := strings.LastIndex(strings.ToLower(body), "</body>"); i >= 0 {
		return body[:i] + "<script>" + reloadScript + "</script>" + body[i:], nil
	}
	return s.layout(ctx, name, safe.HTML(body))
}

func (s *PreviewServer) indexPage(ctx context.Context, pages []string) (string, error) {
	links := make([]tmpl.Template, len(pages))
	for i, name := range pages {
		links[i] = tmpl.New(pageLinkStrings, "/"+name, name)
	}
	body, err := s.render(ctx, tmpl.New(indexStrings, links))
	if err != nil {
		return "", err
	}
	return s.layout(ctx, "index", safe.HTML(body))
}

func (s *PreviewServer) errorPage(ctx context.Context, name string, renderErr error) (string, error) {
	suggestions := errors.Suggest(renderErr)
	items := make([]tmpl.Template, len(suggestions))
	for i, sg := range suggestions {
		items[i] = tmpl.New(suggestionStrings, sg.Title, sg.Description, sg.Example)
	}

	body, err := s.render(ctx, tmpl.New(overlayStrings, name, renderErr.Error(), items))
	if err != nil {
		return "", err
	}
	return s.layout(ctx, name, safe.HTML(body))
}
