package parser

import (
	"github.com/conneroisu/htmltag/internal/errors"
	"github.com/conneroisu/htmltag/internal/nodes"
	"github.com/conneroisu/htmltag/internal/placeholder"
)

// frame is an element that is still open.
type frame struct {
	tag      string
	attrs    nodes.Attrs
	children []nodes.Node
	offset   int
}

// Builder builds a placeholder tree from tokenizer events.
type Builder struct {
	codec *placeholder.Codec
	stack []*frame
}

// NewBuilder creates a builder. Placeholder tokens are recognised using
// codec; a nil codec uses the process-wide default.
func NewBuilder(codec *placeholder.Codec) *Builder {
	if codec == nil {
		codec = placeholder.Default()
	}
	return &Builder{codec: codec}
}

// Build tokenizes text and builds its tree. A single root element is
// returned as is; any other content is returned as a fragment.
func Build(codec *placeholder.Codec, text string) (nodes.Node, error) {
	events, err := Tokenize(text)
	if err != nil {
		return nil, err
	}
	return NewBuilder(codec).Build(events)
}

// Build consumes events and returns the resulting tree.
func (b *Builder) Build(events []Event) (nodes.Node, error) {
	b.stack = []*frame{{}}

	for _, ev := range events {
		var err error
		switch ev.Type {
		case StartTag:
			err = b.startTag(ev)
		case EndTag:
			err = b.endTag(ev)
		case Text:
			b.text(ev.Data)
		case Comment:
			b.append(nodes.NewComment(ev.Data))
		case Doctype:
			b.append(nodes.NewDocumentType(ev.Data))
		}
		if err != nil {
			return nil, err
		}
	}

	if len(b.stack) != 1 {
		open := make([]string, 0, len(b.stack)-1)
		for _, f := range b.stack[1:] {
			open = append(open, f.tag)
		}
		last := b.stack[len(b.stack)-1]
		return nil, errors.NewUnclosedTagError(open).WithOffset(last.offset)
	}

	root := b.stack[0]
	if len(root.children) == 1 {
		if el, ok := root.children[0].(*nodes.Element); ok {
			return el, nil
		}
	}
	return nodes.NewFragment(root.children...), nil
}

func (b *Builder) top() *frame { return b.stack[len(b.stack)-1] }

func (b *Builder) append(n nodes.Node) {
	top := b.top()
	top.children = append(top.children, n)
}

func (b *Builder) startTag(ev Event) error {
	b.stack = append(b.stack, &frame{tag: ev.Tag, attrs: ev.Attrs, offset: ev.Offset})
	if nodes.IsVoid(ev.Tag) {
		return b.close()
	}
	return nil
}

func (b *Builder) endTag(ev Event) error {
	top := b.top()
	if len(b.stack) > 1 && (top.tag == ev.Tag || b.closesPlaceholder(ev.Tag)) {
		return b.close()
	}
	if b.duplicateVoidEnd(ev.Tag) {
		return nil
	}
	if len(b.stack) == 1 {
		return errors.NewMismatchedTagError("", ev.Tag).WithOffset(ev.Offset)
	}
	return errors.NewMismatchedTagError(top.tag, ev.Tag).WithOffset(ev.Offset)
}

// duplicateVoidEnd reports whether an end tag repeats the void element that
// was just closed, as in <br/> or <br></br>.
func (b *Builder) duplicateVoidEnd(tag string) bool {
	if !nodes.IsVoid(tag) {
		return false
	}
	children := b.top().children
	if len(children) == 0 {
		return false
	}
	el, ok := children[len(children)-1].(*nodes.Element)
	return ok && el.Tag() == tag
}

// closesPlaceholder reports whether a placeholder end tag closes a
// placeholder start tag. Dynamic tags are closed by their own slot, which
// has a different index than the opening one. The closing slot only marks
// the end of the element; its value is never consulted, so <{A}>...</{B}>
// is an element named by A.
func (b *Builder) closesPlaceholder(tag string) bool {
	return b.codec.IsPlaceholder(tag) && b.codec.IsPlaceholder(b.top().tag)
}

func (b *Builder) close() error {
	f := b.top()
	b.stack = b.stack[:len(b.stack)-1]

	el, err := nodes.NewElement(f.tag, f.attrs, f.children...)
	if err != nil {
		if me, ok := err.(*errors.MarkupError); ok {
			return me.WithOffset(f.offset)
		}
		return err
	}
	b.append(el)
	return nil
}

// text appends character data, giving every placeholder its own node.
func (b *Builder) text(data string) {
	if !b.codec.Contains(data) {
		b.append(nodes.NewText(data))
		return
	}
	for _, part := range b.codec.Split(data) {
		b.append(nodes.NewText(part.Text))
	}
}
