package nodes

import (
	"strings"

	"golang.org/x/net/html/atom"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// See https://developer.mozilla.org/en-US/docs/Glossary/Void_element
var voidElements = map[atom.Atom]bool{
	atom.Area:   true,
	atom.Base:   true,
	atom.Br:     true,
	atom.Col:    true,
	atom.Embed:  true,
	atom.Hr:     true,
	atom.Img:    true,
	atom.Input:  true,
	atom.Link:   true,
	atom.Meta:   true,
	atom.Param:  true,
	atom.Source: true,
	atom.Track:  true,
	atom.Wbr:    true,
}

// Raw text elements hold unescaped character data.
var rawTextElements = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Xmp:      true,
	atom.Iframe:   true,
	atom.Noembed:  true,
	atom.Noframes: true,
	atom.Noscript: true,
}

// Escapable raw text elements.
var rcdataElements = map[atom.Atom]bool{
	atom.Textarea: true,
	atom.Title:    true,
}

// NormalizeTag folds a tag name the way HTML does: surrounding space is
// dropped and letters are lower-cased.
func NormalizeTag(tag string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(tag))
}

func lookup(tag string) atom.Atom {
	a := atom.Lookup([]byte(tag))
	if a == 0 {
		a = atom.Lookup([]byte(NormalizeTag(tag)))
	}
	return a
}

// IsVoid reports whether tag names a void element.
func IsVoid(tag string) bool { return voidElements[lookup(tag)] }

// IsRawText reports whether tag names a raw text element such as script.
func IsRawText(tag string) bool { return rawTextElements[lookup(tag)] }

// IsEscapableRawText reports whether tag names an RCDATA element such as
// textarea.
func IsEscapableRawText(tag string) bool { return rcdataElements[lookup(tag)] }

// IsRawContent reports whether the text children of tag are written without
// escaping.
func IsRawContent(tag string) bool {
	a := lookup(tag)
	return rawTextElements[a] || rcdataElements[a]
}
