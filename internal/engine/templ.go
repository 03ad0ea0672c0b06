package engine

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/conneroisu/htmltag/internal/nodes"
	"github.com/conneroisu/htmltag/internal/renderer"
)

// Component adapts a resolved tree to templ.Component so it can be used
// inside templ templates and handlers.
func Component(n nodes.Node) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return (&renderer.Renderer{}).Write(w, n)
	})
}
