// Package tmpl defines the template value handed to the compiler: literal
// segments interleaved with interpolations.
package tmpl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/conneroisu/htmltag/internal/errors"
	"github.com/conneroisu/htmltag/internal/safe"
)

// Template is a sequence of literal segments with one interpolation between
// each pair of neighbouring segments.
type Template struct {
	Strings        []string
	Interpolations []Interpolation
}

// New builds a template from literal segments and values. A value that is
// already an Interpolation is used as is.
func New(strs []string, values ...any) Template {
	t := Template{Strings: strs}
	if len(values) > 0 {
		t.Interpolations = make([]Interpolation, len(values))
	}
	for i, v := range values {
		switch v := v.(type) {
		case Interpolation:
			t.Interpolations[i] = v
		case *Interpolation:
			t.Interpolations[i] = *v
		default:
			t.Interpolations[i] = Interpolation{Value: v}
		}
	}
	return t
}

// Validate checks that segments and interpolations line up.
func (t Template) Validate() error {
	if len(t.Strings) != len(t.Interpolations)+1 {
		return errors.NewTemplateValueError(errors.ErrCodeInterpolations, "",
			fmt.Sprintf("template has %d literal segments for %d interpolations, want %d",
				len(t.Strings), len(t.Interpolations), len(t.Interpolations)+1))
	}
	return nil
}

// Values returns the raw interpolation values.
func (t Template) Values() []any {
	out := make([]any, len(t.Interpolations))
	for i, in := range t.Interpolations {
		out[i] = in.Value
	}
	return out
}

// String shows the template with its slots written as {expr} or {N}.
func (t Template) String() string {
	var b strings.Builder
	for i, s := range t.Strings {
		b.WriteString(s)
		if i < len(t.Interpolations) {
			b.WriteByte('{')
			if expr := t.Interpolations[i].Expr; expr != "" {
				b.WriteString(expr)
			} else {
				b.WriteString(strconv.Itoa(i))
			}
			b.WriteByte('}')
		}
	}
	return b.String()
}

// Interpolation is one dynamic value with optional directives. Conversion is
// one of "s", "r" or "a"; Format is "safe", "sanitize" or a fmt verb
// string. Expr is the source expression, used in messages only.
type Interpolation struct {
	Value      any
	Conversion string
	Format     string
	Expr       string
}

// Resolve applies the conversion and format directives to the value.
func (in Interpolation) Resolve() (any, error) {
	v := in.Value

	switch in.Conversion {
	case "":
	case "s":
		v = fmt.Sprint(v)
	case "r":
		v = fmt.Sprintf("%#v", v)
	case "a":
		v = strconv.QuoteToASCII(fmt.Sprint(v))
	default:
		return nil, errors.NewTemplateValueError(errors.ErrCodeUnknownDirective, in.Expr,
			fmt.Sprintf("unknown conversion %q", in.Conversion))
	}

	switch in.Format {
	case "":
		return v, nil
	case "safe":
		if s, ok := safe.As(v); ok {
			return safe.HTML(s), nil
		}
		return safe.HTML(fmt.Sprint(v)), nil
	case "sanitize":
		if s, ok := safe.As(v); ok {
			return safe.Sanitize(s), nil
		}
		return safe.Sanitize(fmt.Sprint(v)), nil
	}

	if !strings.Contains(in.Format, "%") {
		return nil, errors.NewTemplateValueError(errors.ErrCodeUnknownDirective, in.Expr,
			fmt.Sprintf("unknown format %q", in.Format))
	}
	return fmt.Sprintf(in.Format, v), nil
}

// Builder assembles a template piece by piece.
type Builder struct {
	strs    []string
	current strings.Builder
	interps []Interpolation
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder { return &Builder{} }

// Text appends literal markup.
func (b *Builder) Text(s string) *Builder {
	b.current.WriteString(s)
	return b
}

// Value appends an interpolation slot.
func (b *Builder) Value(v any) *Builder {
	return b.Interpolation(Interpolation{Value: v})
}

// ValueWith appends an interpolation slot with directives.
func (b *Builder) ValueWith(v any, conversion, format string) *Builder {
	return b.Interpolation(Interpolation{Value: v, Conversion: conversion, Format: format})
}

// Interpolation appends a prepared interpolation.
func (b *Builder) Interpolation(in Interpolation) *Builder {
	b.strs = append(b.strs, b.current.String())
	b.current.Reset()
	b.interps = append(b.interps, in)
	return b
}

// Template returns the assembled template. The builder can keep being used.
func (b *Builder) Template() Template {
	strs := make([]string, len(b.strs), len(b.strs)+1)
	copy(strs, b.strs)
	interps := make([]Interpolation, len(b.interps))
	copy(interps, b.interps)
	return Template{Strings: append(strs, b.current.String()), Interpolations: interps}
}
