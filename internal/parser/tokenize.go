// Package parser turns instrumented template text into a placeholder tree.
//
// Tokenizing is delegated to golang.org/x/net/html; this package only adapts
// its tokens into a flat event stream and builds a tree from those events
// with an explicit stack.
//
// An element whose tag name is a placeholder is closed by any placeholder end
// tag. Only the opening placeholder names the element: in <{A}>...</{B}> the
// value of B is ignored.
package parser

import (
	"bytes"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/conneroisu/htmltag/internal/errors"
	"github.com/conneroisu/htmltag/internal/nodes"
)

// EventType identifies a tokenizer event.
type EventType int

const (
	StartTag EventType = iota
	EndTag
	Text
	Comment
	Doctype
)

// String returns the string representation of the event type
func (t EventType) String() string {
	switch t {
	case StartTag:
		return "start"
	case EndTag:
		return "end"
	case Text:
		return "text"
	case Comment:
		return "comment"
	case Doctype:
		return "doctype"
	default:
		return "unknown"
	}
}

// Event is one tokenizer event. Tag is set for start and end tags, Data for
// text, comments and doctypes. Offset is the byte offset of the token in
// the input.
type Event struct {
	Type   EventType
	Tag    string
	Attrs  nodes.Attrs
	Data   string
	Offset int
}

// Tokenize splits text into events. Self-closing tags produce a start event
// followed by an end event. Attributes written without a value become
// boolean attributes; attr="" stays an empty string. Comments and the text
// of textarea and title are kept as written.
func Tokenize(text string) ([]Event, error) {
	z := html.NewTokenizer(strings.NewReader(text))

	var events []Event
	offset := 0
	rcdata := false
	for {
		tt := z.Next()
		// Token unescapes in place, so raw must be copied first.
		raw := bytes.Clone(z.Raw())
		at := offset
		offset += len(raw)

		switch tt {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return nil, errors.NewMalformedMarkupError(errors.ErrCodeTokenizer,
					"tokenizer failed", err).WithOffset(at)
			}
			return events, nil

		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			events = append(events, Event{
				Type:   StartTag,
				Tag:    tok.Data,
				Attrs:  attrsOf(tok.Attr, attrHasValue(raw)),
				Offset: at,
			})
			if tt == html.SelfClosingTagToken {
				events = append(events, Event{Type: EndTag, Tag: tok.Data, Offset: at})
			}
			rcdata = nodes.IsEscapableRawText(tok.Data)

		case html.EndTagToken:
			tok := z.Token()
			events = append(events, Event{Type: EndTag, Tag: tok.Data, Offset: at})
			rcdata = false

		case html.TextToken:
			data := z.Token().Data
			if rcdata {
				data = string(raw)
			}
			if data == "" {
				continue
			}
			events = append(events, Event{Type: Text, Data: data, Offset: at})

		case html.CommentToken:
			events = append(events, Event{Type: Comment, Data: commentBody(raw, z.Token().Data), Offset: at})

		case html.DoctypeToken:
			events = append(events, Event{Type: Doctype, Data: strings.TrimSpace(z.Token().Data), Offset: at})
		}
	}
}

// commentBody prefers the raw comment text so entities inside comments are
// kept as written.
func commentBody(raw []byte, unescaped string) string {
	if bytes.HasPrefix(raw, []byte("<!--")) && bytes.HasSuffix(raw, []byte("-->")) && len(raw) >= 7 {
		return string(raw[4 : len(raw)-3])
	}
	return unescaped
}

// attrsOf converts tokenizer attributes. hasValue, when it lines up with in,
// tells an empty value apart from a bare attribute.
func attrsOf(in []html.Attribute, hasValue []bool) nodes.Attrs {
	if len(in) == 0 {
		return nil
	}
	if len(hasValue) != len(in) {
		hasValue = nil
	}
	var out nodes.Attrs
	for i, a := range in {
		bare := a.Val == ""
		if hasValue != nil {
			bare = !hasValue[i]
		}
		if bare {
			out.SetBool(a.Key)
			continue
		}
		out.Set(a.Key, a.Val)
	}
	return out
}

// attrHasValue scans a raw start tag the way the tokenizer reads attributes
// and reports, per attribute, whether it had an "=".
func attrHasValue(raw []byte) []bool {
	i := 1
	for i < len(raw) && !isHTMLSpace(raw[i]) && raw[i] != '/' && raw[i] != '>' {
		i++
	}
	skip := func() {
		for i < len(raw) && isHTMLSpace(raw[i]) {
			i++
		}
	}

	var flags []bool
	skip()
	for i < len(raw) && raw[i] != '>' {
		// name
		start := i
		for i < len(raw) {
			c := raw[i]
			i++
			if c == '=' && i-1 == start {
				continue
			}
			if c == '=' || c == '/' || c == '>' || isHTMLSpace(c) {
				i--
				break
			}
		}
		named := i > start

		// value
		valued := false
		skip()
		if i < len(raw) {
			c := raw[i]
			i++
			switch c {
			case '/':
			case '=':
				valued = true
				skip()
				if i < len(raw) {
					switch q := raw[i]; q {
					case '>':
					case '"', '\'':
						i++
						for i < len(raw) && raw[i] != q {
							i++
						}
						i++
					default:
						for i < len(raw) && !isHTMLSpace(raw[i]) && raw[i] != '>' {
							i++
						}
					}
				}
			default:
				i--
			}
		}

		if named {
			flags = append(flags, valued)
		}
		skip()
	}
	return flags
}

func isHTMLSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t' || c == '\f'
}
