// Package renderer serializes resolved node trees to markup.
//
// Text is escaped for body context and attribute values for double-quoted
// attribute context. Safe text and the direct text children of raw-content
// elements such as script or textarea are written verbatim. Void elements
// always self-close.
package renderer

import (
	"io"
	"strings"

	"github.com/conneroisu/htmltag/internal/nodes"
	"github.com/conneroisu/htmltag/internal/safe"
)

// Renderer renders node trees. With Indent greater than zero every child is
// placed on its own line, indented by Indent spaces per level.
type Renderer struct {
	Indent int
}

// New creates a renderer with the given indentation width.
func New(indent int) *Renderer {
	if indent < 0 {
		indent = 0
	}
	return &Renderer{Indent: indent}
}

// Render renders a node compactly.
func Render(n nodes.Node) string {
	return (&Renderer{}).Render(n)
}

// Render returns the markup for n.
func (r *Renderer) Render(n nodes.Node) string {
	var b strings.Builder
	r.render(&b, n)
	return b.String()
}

// Write renders n to w.
func (r *Renderer) Write(w io.Writer, n nodes.Node) error {
	_, err := io.WriteString(w, r.Render(n))
	return err
}

func (r *Renderer) render(b *strings.Builder, n nodes.Node) {
	if r.Indent > 0 {
		r.pretty(b, n, 0)
		return
	}
	r.compact(b, n, false)
}

func (r *Renderer) compact(b *strings.Builder, n nodes.Node, raw bool) {
	switch n := n.(type) {
	case *nodes.Text:
		writeText(b, n, raw)
	case *nodes.Element:
		writeOpen(b, n)
		if n.IsVoid() {
			return
		}
		rawChildren := nodes.IsRawContent(n.Tag())
		for _, child := range n.Children() {
			r.compact(b, child, rawChildren)
		}
		writeClose(b, n)
	case *nodes.Fragment:
		for _, child := range n.Children() {
			r.compact(b, child, raw)
		}
	case *nodes.Comment:
		writeComment(b, n)
	case *nodes.DocumentType:
		writeDoctype(b, n)
	}
}

func (r *Renderer) pretty(b *strings.Builder, n nodes.Node, level int) {
	pad := strings.Repeat(" ", r.Indent*level)

	switch n := n.(type) {
	case *nodes.Text:
		b.WriteString(pad)
		writeText(b, n, false)
	case *nodes.Element:
		b.WriteString(pad)
		writeOpen(b, n)
		if n.IsVoid() {
			return
		}
		children := visible(n.Children())
		if len(children) == 0 {
			writeClose(b, n)
			return
		}
		if nodes.IsRawContent(n.Tag()) {
			for _, child := range n.Children() {
				r.compact(b, child, true)
			}
			writeClose(b, n)
			return
		}
		for _, child := range children {
			b.WriteByte('\n')
			r.pretty(b, child, level+1)
		}
		b.WriteByte('\n')
		b.WriteString(pad)
		writeClose(b, n)
	case *nodes.Fragment:
		for i, child := range visible(n.Children()) {
			if i > 0 {
				b.WriteByte('\n')
			}
			r.pretty(b, child, level)
		}
	case *nodes.Comment:
		b.WriteString(pad)
		writeComment(b, n)
	case *nodes.DocumentType:
		b.WriteString(pad)
		writeDoctype(b, n)
	}
}

// visible drops whitespace-only text, which only carries source layout.
func visible(in []nodes.Node) []nodes.Node {
	out := in[:0:0]
	for _, n := range in {
		if t, ok := n.(*nodes.Text); ok && !t.Safe() && strings.TrimSpace(t.Text()) == "" {
			continue
		}
		out = append(out, n)
	}
	return out
}

func writeText(b *strings.Builder, t *nodes.Text, raw bool) {
	if raw || t.Safe() {
		b.WriteString(t.Text())
		return
	}
	b.WriteString(safe.EscapeText(t.Text()))
}

func writeOpen(b *strings.Builder, el *nodes.Element) {
	b.WriteByte('<')
	b.WriteString(el.Tag())
	for _, a := range el.Attrs() {
		b.WriteByte(' ')
		b.WriteString(a.Name)
		if a.Bool {
			continue
		}
		b.WriteString(`="`)
		b.WriteString(safe.EscapeAttribute(a.Value))
		b.WriteByte('"')
	}
	if el.IsVoid() {
		b.WriteString(" />")
		return
	}
	b.WriteByte('>')
}

func writeClose(b *strings.Builder, el *nodes.Element) {
	b.WriteString("</")
	b.WriteString(el.Tag())
	b.WriteByte('>')
}

func writeComment(b *strings.Builder, c *nodes.Comment) {
	b.WriteString("<!--")
	b.WriteString(c.Text())
	b.WriteString("-->")
}

func writeDoctype(b *strings.Builder, d *nodes.DocumentType) {
	b.WriteString("<!DOCTYPE ")
	b.WriteString(d.Name())
	b.WriteByte('>')
}
