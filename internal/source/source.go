// Package source reads template files written with {slot} placeholders and
// binds them to data, producing a tmpl.Template for the compiler.
//
// A slot is {path}, {path!conv} or {path!conv:format}, where path is a
// dotted lookup into the bound data (user.name, items.0). {@name} includes
// another source file as a nested template. Literal braces are written
// {{ and }}.
package source

import (
	"fmt"
	"os"
	"strings"

	"github.com/conneroisu/htmltag/internal/errors"
)

// Slot is one placeholder found in a source file.
type Slot struct {
	Expr       string
	Conversion string
	Format     string
	// Include marks an {@name} slot; Expr holds the included name.
	Include bool
	// Offset is the byte offset of the opening brace.
	Offset int
}

// Source is a parsed template file. Strings always has one more element
// than Slots.
type Source struct {
	Name    string
	Strings []string
	Slots   []Slot
}

// ParseFile reads and parses the file at path.
func ParseFile(path string) (*Source, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", path, err)
	}
	return Parse(path, string(content))
}

// Parse splits text into literal segments and slots.
func Parse(name, text string) (*Source, error) {
	src := &Source{Name: name}
	var lit strings.Builder

	for i := 0; i < len(text); {
		c := text[i]
		switch c {
		case '{':
			if i+1 < len(text) && text[i+1] == '{' {
				lit.WriteByte('{')
				i += 2
				continue
			}
			end := strings.IndexAny(text[i+1:], "{}")
			if end < 0 || text[i+1+end] != '}' {
				return nil, slotError(name, i, "unterminated slot")
			}
			slot, err := parseSlot(text[i+1:i+1+end], i)
			if err != nil {
				return nil, err.WithContext("source", name)
			}
			src.Strings = append(src.Strings, lit.String())
			src.Slots = append(src.Slots, slot)
			lit.Reset()
			i += end + 2
		case '}':
			if i+1 < len(text) && text[i+1] == '}' {
				lit.WriteByte('}')
				i += 2
				continue
			}
			return nil, slotError(name, i, "unmatched '}'; write '}}' for a literal brace")
		default:
			lit.WriteByte(c)
			i++
		}
	}

	src.Strings = append(src.Strings, lit.String())
	return src, nil
}

func parseSlot(body string, offset int) (Slot, *errors.MarkupError) {
	slot := Slot{Offset: offset}
	body = strings.TrimSpace(body)

	if name, ok := strings.CutPrefix(body, "@"); ok {
		name = strings.TrimSpace(name)
		if name == "" {
			return slot, slotError("", offset, "include needs a file name")
		}
		slot.Include = true
		slot.Expr = name
		return slot, nil
	}

	head, format, _ := strings.Cut(body, ":")
	expr, conv, hasConv := strings.Cut(head, "!")
	slot.Expr = strings.TrimSpace(expr)
	slot.Format = format

	if hasConv {
		slot.Conversion = strings.TrimSpace(conv)
		switch slot.Conversion {
		case "s", "r", "a":
		default:
			return slot, slotError("", offset, fmt.Sprintf("unknown conversion %q", slot.Conversion))
		}
	}

	if slot.Expr == "" {
		return slot, slotError("", offset, "empty slot")
	}
	if !validPath(slot.Expr) {
		return slot, slotError("", offset, fmt.Sprintf("invalid path %q", slot.Expr))
	}
	return slot, nil
}

func validPath(p string) bool {
	if p == "." {
		return true
	}
	for _, seg := range strings.Split(p, ".") {
		if seg == "" {
			return false
		}
		for _, r := range seg {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			case r == '_' || r == '-':
			default:
				return false
			}
		}
	}
	return true
}

func slotError(name string, offset int, msg string) *errors.MarkupError {
	err := errors.NewTemplateValueError(errors.ErrCodeSlotSyntax, "", msg).WithOffset(offset)
	if name != "" {
		err = err.WithContext("source", name)
	}
	return err
}
