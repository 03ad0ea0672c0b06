package htmltag

import (
	"context"

	"github.com/a-h/templ"

	"github.com/conneroisu/htmltag/internal/compiler"
	"github.com/conneroisu/htmltag/internal/engine"
	"github.com/conneroisu/htmltag/internal/errors"
	"github.com/conneroisu/htmltag/internal/nodes"
	"github.com/conneroisu/htmltag/internal/renderer"
	"github.com/conneroisu/htmltag/internal/safe"
	"github.com/conneroisu/htmltag/internal/tmpl"
)

// Node model.
type (
	Node         = nodes.Node
	Element      = nodes.Element
	Text         = nodes.Text
	Fragment     = nodes.Fragment
	Comment      = nodes.Comment
	DocumentType = nodes.DocumentType
	Attr         = nodes.Attr
	Attrs        = nodes.Attrs
)

// Templates.
type (
	Template      = tmpl.Template
	Interpolation = tmpl.Interpolation
	Builder       = tmpl.Builder
	Dict          = tmpl.Dict
	KV            = tmpl.KV
)

// SafeHTML is markup that is trusted and written without escaping.
type SafeHTML = safe.HTML

// SafeValue is implemented by values that carry their own trusted markup.
type SafeValue = safe.Value

// Component shapes accepted in tag position.
type (
	ComponentFunc        = engine.ComponentFunc
	ContextComponentFunc = engine.ContextComponentFunc
)

// Compilers.
type (
	Compiler       = compiler.Compiler
	CompilerOption = compiler.Option
)

// Errors.
type (
	MarkupError = errors.MarkupError
	BindError   = errors.BindError
)

var (
	ErrMalformedMarkup = errors.ErrMalformedMarkup
	ErrMismatchedTag   = errors.ErrMismatchedTag
	ErrUnclosedTag     = errors.ErrUnclosedTag
	ErrTemplateValue   = errors.ErrTemplateValue
)

// Compiler options.
var (
	WithCache     = compiler.WithCache
	WithCacheSize = compiler.WithCacheSize
	WithCodec     = compiler.WithCodec
	WithLogger    = compiler.WithLogger
)

// T builds a template from literal segments and the values between them.
func T(strs []string, values ...any) Template {
	return tmpl.New(strs, values...)
}

// NewBuilder starts a template built piece by piece.
func NewBuilder() *Builder {
	return tmpl.NewBuilder()
}

// NewCompiler creates a compiler with its own cache.
func NewCompiler(opts ...CompilerOption) *Compiler {
	return compiler.New(opts...)
}

// HTML compiles t with the shared default compiler.
func HTML(t Template) (Node, error) {
	return HTMLContext(context.Background(), t)
}

// HTMLContext compiles t with the shared default compiler. ctx is passed to
// context-aware components.
func HTMLContext(ctx context.Context, t Template) (Node, error) {
	return compiler.Default().Compile(ctx, t)
}

// Render serializes n to markup.
func Render(n Node) string {
	return renderer.Render(n)
}

// RenderIndent serializes n with each child on its own line, indented by
// indent spaces per level.
func RenderIndent(n Node, indent int) string {
	return renderer.New(indent).Render(n)
}

// ClassNames joins class values the way the class attribute does.
func ClassNames(values ...any) (string, error) {
	return engine.ClassNames(values...)
}

// Safe marks s as trusted markup.
func Safe(s string) SafeHTML {
	return SafeHTML(s)
}

// Sanitize strips s down to a user-generated-content allow list and marks
// the result trusted.
func Sanitize(s string) SafeHTML {
	return safe.Sanitize(s)
}

// Component adapts n to templ.Component.
func Component(n Node) templ.Component {
	return engine.Component(n)
}
