// Package safe holds the two collaborators the renderer relies on: values
// marked as pre-escaped markup, and the text/attribute escaping functions
// applied to everything else.
package safe

import (
	"html/template"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// HTML is a string of markup that must be emitted without escaping.
type HTML string

// SafeHTML implements Value.
func (h HTML) SafeHTML() string { return string(h) }

// Value is implemented by any type that carries pre-escaped markup.
type Value interface {
	SafeHTML() string
}

// As reports whether v is a safe value and returns its markup.
//
// Besides HTML and Value implementations, html/template.HTML is accepted so
// output of the standard template package can be interpolated directly.
func As(v any) (string, bool) {
	switch s := v.(type) {
	case HTML:
		return string(s), true
	case template.HTML:
		return string(s), true
	case Value:
		return s.SafeHTML(), true
	}
	return "", false
}

// Is reports whether v is a safe value.
func Is(v any) bool {
	_, ok := As(v)
	return ok
}

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

func sanitizer() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.UGCPolicy()
	})
	return policy
}

// Sanitize strips untrusted markup down to a user-generated-content allow
// list and marks the result safe.
func Sanitize(s string) HTML {
	return HTML(sanitizer().Sanitize(s))
}

var textEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

// EscapeText escapes s for element body context. Quotes are left alone.
func EscapeText(s string) string {
	return textEscaper.Replace(s)
}

// EscapeAttribute escapes s for a double-quoted attribute value.
func EscapeAttribute(s string) string {
	return html.EscapeString(s)
}
