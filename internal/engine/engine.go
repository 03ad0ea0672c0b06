// Package engine resolves placeholder trees against interpolation values.
//
// Placeholders can sit in four positions, and each has its own coercion
// rules: attribute values, attribute names (spreads), child content and tag
// names. Values are classified into a closed set of shapes before they are
// coerced; see ClassNames and the attribute rules in attrs.go.
package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/a-h/templ"

	"github.com/conneroisu/htmltag/internal/errors"
	"github.com/conneroisu/htmltag/internal/logging"
	"github.com/conneroisu/htmltag/internal/nodes"
	"github.com/conneroisu/htmltag/internal/placeholder"
	"github.com/conneroisu/htmltag/internal/tmpl"
)

// Compiler compiles nested templates found in interpolation values.
type Compiler interface {
	Compile(ctx context.Context, t tmpl.Template) (nodes.Node, error)
}

// Engine resolves placeholder trees.
type Engine struct {
	compiler Compiler
	codec    *placeholder.Codec
	logger   logging.Logger
}

// New creates an engine. The compiler is used for nested templates and must
// share codec with the tree builder.
func New(compiler Compiler, codec *placeholder.Codec, logger logging.Logger) *Engine {
	if codec == nil {
		codec = placeholder.Default()
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Engine{compiler: compiler, codec: codec, logger: logger.WithComponent("engine")}
}

// Resolve substitutes every placeholder in tree. The returned node is a
// fresh tree; tree itself is never modified and can be resolved again with
// other interpolations.
func (e *Engine) Resolve(ctx context.Context, tree nodes.Node, interps []tmpl.Interpolation) (nodes.Node, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	r := &resolver{
		Engine:   e,
		ctx:      ctx,
		interps:  interps,
		resolved: make([]any, len(interps)),
		done:     make([]bool, len(interps)),
	}

	out, err := r.node(tree)
	if err != nil {
		return nil, err
	}
	if len(out) == 1 {
		if _, isFragment := tree.(*nodes.Fragment); !isFragment {
			return out[0], nil
		}
	}
	return nodes.NewFragment(out...), nil
}

// resolver carries the state of one Resolve call. Each interpolation is
// resolved at most once even if its placeholder appears more than once.
type resolver struct {
	*Engine
	ctx      context.Context
	interps  []tmpl.Interpolation
	resolved []any
	done     []bool
}

func (r *resolver) value(token string) (any, error) {
	i, ok := r.codec.Index(token)
	if !ok || i >= len(r.interps) {
		return nil, errors.NewTemplateValueError(errors.ErrCodeInterpolations, "",
			fmt.Sprintf("placeholder %q has no interpolation", token))
	}
	if r.done[i] {
		return r.resolved[i], nil
	}
	v, err := r.interps[i].Resolve()
	if err != nil {
		return nil, err
	}
	r.resolved[i], r.done[i] = v, true
	return v, nil
}

// interpolateString replaces every placeholder in s with its stringified
// value.
func (r *resolver) interpolateString(s string) (string, error) {
	var b strings.Builder
	for _, part := range r.codec.Split(s) {
		if !part.Placeholder {
			b.WriteString(part.Text)
			continue
		}
		v, err := r.value(part.Text)
		if err != nil {
			return "", err
		}
		b.WriteString(stringify(v))
	}
	return b.String(), nil
}

// node resolves one placeholder node into zero or more final nodes.
func (r *resolver) node(n nodes.Node) ([]nodes.Node, error) {
	switch n := n.(type) {
	case *nodes.Text:
		if !r.codec.IsPlaceholder(n.Text()) {
			return []nodes.Node{n}, nil
		}
		v, err := r.value(n.Text())
		if err != nil {
			return nil, err
		}
		return r.toNodes(v)

	case *nodes.Element:
		return r.element(n)

	case *nodes.Fragment:
		return r.children(n.Children())

	case *nodes.Comment:
		if !r.codec.Contains(n.Text()) {
			return []nodes.Node{n}, nil
		}
		s, err := r.interpolateString(n.Text())
		if err != nil {
			return nil, err
		}
		if !validComment(s) {
			return nil, errors.NewTemplateValueError(errors.ErrCodeInvalidComment, "comment",
				fmt.Sprintf("value would end the comment early: %q", s))
		}
		return []nodes.Node{nodes.NewComment(s)}, nil

	case *nodes.DocumentType:
		if !r.codec.Contains(n.Name()) {
			return []nodes.Node{n}, nil
		}
		s, err := r.interpolateString(n.Name())
		if err != nil {
			return nil, err
		}
		if strings.ContainsAny(s, "<>") {
			return nil, errors.NewTemplateValueError(errors.ErrCodeInvalidTag, "doctype",
				fmt.Sprintf("invalid doctype name %q", s))
		}
		return []nodes.Node{nodes.NewDocumentType(s)}, nil
	}
	return []nodes.Node{n}, nil
}

// validComment reports whether s can sit between <!-- and --> without
// closing the comment or opening a nested one.
func validComment(s string) bool {
	if strings.HasPrefix(s, ">") || strings.HasPrefix(s, "->") || strings.HasSuffix(s, "<!-") {
		return false
	}
	for _, bad := range []string{"-->", "--!>", "<!--"} {
		if strings.Contains(s, bad) {
			return false
		}
	}
	return true
}

// children resolves a child list, splicing fragments into it.
func (r *resolver) children(in []nodes.Node) ([]nodes.Node, error) {
	var out []nodes.Node
	for _, child := range in {
		resolved, err := r.node(child)
		if err != nil {
			return nil, err
		}
		out = append(out, resolved...)
	}
	return out, nil
}

func (r *resolver) element(el *nodes.Element) ([]nodes.Node, error) {
	attrs, err := r.resolveAttrs(el.Attrs())
	if err != nil {
		return nil, err
	}
	children, err := r.children(el.Children())
	if err != nil {
		return nil, err
	}

	tag := el.Tag()
	switch {
	case r.codec.IsPlaceholder(tag):
		return r.dynamicTag(tag, attrs, children)
	case r.codec.Contains(tag):
		return nil, errors.NewTemplateValueError(errors.ErrCodeInvalidTag, "tag",
			"an interpolation must fill the whole tag name").WithTag(tag)
	}
	return r.newElement(tag, attrs, children)
}

func (r *resolver) newElement(tag string, attrs nodes.Attrs, children []nodes.Node) ([]nodes.Node, error) {
	el, err := nodes.NewElement(tag, attrs, children...)
	if err != nil {
		return nil, errors.NewTemplateValueError(errors.ErrCodeVoidChildren, "tag",
			"cannot build element").WithTag(tag).WithCause(err)
	}
	return []nodes.Node{el}, nil
}

// dynamicTag resolves an element whose tag name is an interpolation: a
// string names the tag, a callable is invoked as a component.
func (r *resolver) dynamicTag(token string, attrs nodes.Attrs, children []nodes.Node) ([]nodes.Node, error) {
	v, err := r.value(token)
	if err != nil {
		return nil, err
	}

	switch classify(v) {
	case kindString:
		tag := nodes.NormalizeTag(stringify(v))
		if !validTag(tag) {
			return nil, errors.NewTemplateValueError(errors.ErrCodeInvalidTag, "tag",
				fmt.Sprintf("invalid tag name %q", tag))
		}
		return r.newElement(tag, attrs, children)

	case kindCallable:
		if err := r.ctx.Err(); err != nil {
			return nil, err
		}
		r.logger.Debug(r.ctx, "invoking component", "children", len(children), "attrs", attrs.Len())
		result, err := r.callComponent(v, children, attrs)
		if err != nil {
			return nil, err
		}
		return r.componentResult(result)

	case kindTempl:
		return r.templWithChildren(v.(templ.Component), children)
	}

	return nil, errors.TypeError("tag", v, "tag name or component")
}

func (r *resolver) componentResult(v any) ([]nodes.Node, error) {
	switch classify(v) {
	case kindNil, kindString, kindSafe, kindNode, kindTemplate, kindTempl:
		return r.toNodes(v)
	}
	return nil, errors.NewTemplateValueError(errors.ErrCodeComponentResult, "tag",
		fmt.Sprintf("component returned %T, want string, node or template", v))
}

// validTag accepts names the tokenizer would read back as a single tag.
func validTag(tag string) bool {
	if tag == "" {
		return false
	}
	c := tag[0]
	if !(c >= 'a' && c <= 'z') {
		return false
	}
	return !strings.ContainsAny(tag, " \t\n\f\r/>\"'=<")
}

// toNodes converts a child value into nodes. Fragments are spliced.
func (r *resolver) toNodes(v any) ([]nodes.Node, error) {
	switch classify(v) {
	case kindNil:
		return nil, nil
	case kindBool:
		if !v.(bool) {
			return nil, nil
		}
	case kindString:
		return []nodes.Node{nodes.NewText(stringify(v))}, nil
	case kindSafe:
		return []nodes.Node{nodes.NewSafeText(stringify(v))}, nil
	case kindNode:
		return splice(v.(nodes.Node)), nil
	case kindTemplate:
		return r.compile(v)
	case kindTempl:
		return r.renderTempl(v.(templ.Component))
	case kindIterable:
		var out []nodes.Node
		for _, item := range items(v) {
			converted, err := r.toNodes(item)
			if err != nil {
				return nil, err
			}
			out = append(out, converted...)
		}
		return out, nil
	}
	return []nodes.Node{nodes.NewText(stringify(v))}, nil
}

func splice(n nodes.Node) []nodes.Node {
	if f, ok := n.(*nodes.Fragment); ok {
		return f.Children()
	}
	return []nodes.Node{n}
}

// compile resolves a nested template through the full pipeline. The nested
// template has its own interpolations and never sees the outer ones.
func (r *resolver) compile(v any) ([]nodes.Node, error) {
	if r.compiler == nil {
		return nil, errors.TypeError("child", v, "child without a compiler")
	}
	var t tmpl.Template
	switch v := v.(type) {
	case tmpl.Template:
		t = v
	case *tmpl.Template:
		t = *v
	}
	n, err := r.compiler.Compile(r.ctx, t)
	if err != nil {
		return nil, err
	}
	return splice(n), nil
}

// renderTempl renders a templ component into safe text.
func (r *resolver) renderTempl(c templ.Component) ([]nodes.Node, error) {
	s, err := templ.ToGoHTML(r.ctx, c)
	if err != nil {
		return nil, err
	}
	return []nodes.Node{nodes.NewSafeText(string(s))}, nil
}

// templWithChildren renders a templ component in tag position, exposing the
// element's children through templ's children mechanism.
func (r *resolver) templWithChildren(c templ.Component, children []nodes.Node) ([]nodes.Node, error) {
	ctx := r.ctx
	if len(children) > 0 {
		ctx = templ.WithChildren(ctx, Component(nodes.NewFragment(children...)))
	}
	s, err := templ.ToGoHTML(ctx, c)
	if err != nil {
		return nil, err
	}
	return []nodes.Node{nodes.NewSafeText(string(s))}, nil
}
