// Package nodes defines the immutable markup tree produced by the compiler.
//
// A tree is made of five node kinds: Text, Element, Fragment, Comment and
// DocumentType. Nodes are created through constructors that validate their
// invariants and expose their contents through accessors that return
// copies, so a tree never changes once built. Changing a tree means building
// a new node.
package nodes

import (
	"github.com/conneroisu/htmltag/internal/errors"
)

// Kind identifies the variant of a Node.
type Kind int

const (
	KindText Kind = iota
	KindElement
	KindFragment
	KindComment
	KindDocumentType
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindElement:
		return "element"
	case KindFragment:
		return "fragment"
	case KindComment:
		return "comment"
	case KindDocumentType:
		return "doctype"
	default:
		return "unknown"
	}
}

// Node is a closed variant: only the types in this package implement it.
type Node interface {
	Kind() Kind
	isNode()
}

// Text holds character data. Whether it is escaped is decided by the
// renderer; a safe text is emitted verbatim.
type Text struct {
	text string
	safe bool
}

// NewText creates a text node that will be escaped on output.
func NewText(s string) *Text { return &Text{text: s} }

// NewSafeText creates a text node holding pre-escaped markup.
func NewSafeText(s string) *Text { return &Text{text: s, safe: true} }

func (t *Text) Kind() Kind { return KindText }
func (*Text) isNode()      {}

// Text returns the raw content.
func (t *Text) Text() string { return t.text }

// Safe reports whether the content is pre-escaped markup.
func (t *Text) Safe() bool { return t.safe }

// Element is a tagged node with ordered attributes and children.
type Element struct {
	tag      string
	attrs    Attrs
	children []Node
}

// NewElement validates and creates an element. The tag must be non-empty and
// void elements must not have children.
func NewElement(tag string, attrs Attrs, children ...Node) (*Element, error) {
	if tag == "" {
		return nil, errors.NewMalformedMarkupError(errors.ErrCodeEmptyTag, "element tag cannot be empty", nil)
	}
	if IsVoid(tag) && len(children) > 0 {
		return nil, errors.NewMalformedMarkupError(errors.ErrCodeVoidChildren,
			"void element cannot have children", nil).WithTag(tag)
	}

	el := &Element{tag: tag, attrs: attrs.Clone()}
	if len(children) > 0 {
		el.children = make([]Node, len(children))
		copy(el.children, children)
	}
	return el, nil
}

// MustElement is like NewElement but panics on invalid input. It is meant
// for trees written out in code and tests.
func MustElement(tag string, attrs Attrs, children ...Node) *Element {
	el, err := NewElement(tag, attrs, children...)
	if err != nil {
		panic(err)
	}
	return el
}

func (e *Element) Kind() Kind { return KindElement }
func (*Element) isNode()      {}

// Tag returns the element's tag name.
func (e *Element) Tag() string { return e.tag }

// Attrs returns a copy of the element's attributes.
func (e *Element) Attrs() Attrs { return e.attrs.Clone() }

// Attr looks up a single attribute.
func (e *Element) Attr(name string) (Attr, bool) { return e.attrs.Get(name) }

// AttrCount returns the number of attributes.
func (e *Element) AttrCount() int { return len(e.attrs) }

// Children returns a copy of the element's children.
func (e *Element) Children() []Node { return cloneNodes(e.children) }

// ChildCount returns the number of children.
func (e *Element) ChildCount() int { return len(e.children) }

// Child returns the i-th child.
func (e *Element) Child(i int) Node { return e.children[i] }

// IsVoid reports whether the element can never have children.
func (e *Element) IsVoid() bool { return IsVoid(e.tag) }

// Fragment is a tagless list of nodes.
type Fragment struct {
	children []Node
}

// NewFragment creates a fragment.
func NewFragment(children ...Node) *Fragment {
	return &Fragment{children: cloneNodes(children)}
}

func (f *Fragment) Kind() Kind { return KindFragment }
func (*Fragment) isNode()      {}

// Children returns a copy of the fragment's children.
func (f *Fragment) Children() []Node { return cloneNodes(f.children) }

// ChildCount returns the number of children.
func (f *Fragment) ChildCount() int { return len(f.children) }

// Child returns the i-th child.
func (f *Fragment) Child(i int) Node { return f.children[i] }

// Comment is emitted verbatim between comment delimiters.
type Comment struct {
	text string
}

// NewComment creates a comment node.
func NewComment(text string) *Comment { return &Comment{text: text} }

func (c *Comment) Kind() Kind { return KindComment }
func (*Comment) isNode()      {}

// Text returns the comment body.
func (c *Comment) Text() string { return c.text }

// DocumentType is a <!DOCTYPE> declaration.
type DocumentType struct {
	name string
}

// NewDocumentType creates a doctype; an empty name means "html".
func NewDocumentType(name string) *DocumentType {
	if name == "" {
		name = "html"
	}
	return &DocumentType{name: name}
}

func (d *DocumentType) Kind() Kind { return KindDocumentType }
func (*DocumentType) isNode()      {}

// Name returns the declaration name.
func (d *DocumentType) Name() string { return d.name }

// ChildrenOf returns the children of an element or fragment, and nil for
// every other kind.
func ChildrenOf(n Node) []Node {
	switch n := n.(type) {
	case *Element:
		return n.Children()
	case *Fragment:
		return n.Children()
	}
	return nil
}

func cloneNodes(in []Node) []Node {
	if len(in) == 0 {
		return nil
	}
	out := make([]Node, len(in))
	copy(out, in)
	return out
}
