package engine

import (
	"context"
	"fmt"
	"reflect"
	"sort"

	"github.com/a-h/templ"

	"github.com/conneroisu/htmltag/internal/nodes"
	"github.com/conneroisu/htmltag/internal/safe"
	"github.com/conneroisu/htmltag/internal/tmpl"
)

// valueKind is the closed set of shapes an interpolated value can take.
// Every coercion switches over it; anything unrecognised is kindOther and
// gets stringified.
type valueKind int

const (
	kindNil valueKind = iota
	kindBool
	kindString
	kindSafe
	kindNode
	kindTemplate
	kindTempl
	kindMapping
	kindIterable
	kindCallable
	kindOther
)

func (k valueKind) String() string {
	switch k {
	case kindNil:
		return "nil"
	case kindBool:
		return "bool"
	case kindString:
		return "string"
	case kindSafe:
		return "safe"
	case kindNode:
		return "node"
	case kindTemplate:
		return "template"
	case kindTempl:
		return "templ component"
	case kindMapping:
		return "mapping"
	case kindIterable:
		return "iterable"
	case kindCallable:
		return "callable"
	default:
		return "other"
	}
}

var (
	nodeSliceType = reflect.TypeOf([]nodes.Node(nil))
	attrsType     = reflect.TypeOf(nodes.Attrs(nil))
	errorType     = reflect.TypeOf((*error)(nil)).Elem()
	contextType   = reflect.TypeOf((*context.Context)(nil)).Elem()
)

func classify(v any) valueKind {
	switch v := v.(type) {
	case nil:
		return kindNil
	case bool:
		return kindBool
	case string, []byte:
		return kindString
	case nodes.Node:
		if isNilPointer(v) {
			return kindNil
		}
		return kindNode
	case tmpl.Template, *tmpl.Template:
		return kindTemplate
	case tmpl.Dict, []tmpl.KV, nodes.Attrs, templ.OrderedAttributes:
		return kindMapping
	case ComponentFunc, ContextComponentFunc,
		func([]nodes.Node, nodes.Attrs) (any, error),
		func(context.Context, []nodes.Node, nodes.Attrs) (any, error):
		return kindCallable
	}
	if safe.Is(v) {
		return kindSafe
	}
	if _, ok := v.(templ.Component); ok {
		return kindTempl
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return kindNil
		}
	case reflect.Map:
		return kindMapping
	case reflect.Slice, reflect.Array:
		return kindIterable
	case reflect.Func:
		if rv.IsNil() {
			return kindNil
		}
		if componentSignature(rv.Type()) {
			return kindCallable
		}
		if rv.Type().CanSeq() {
			return kindIterable
		}
	}
	return kindOther
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// stringify renders a scalar for attribute or text output.
func stringify(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	}
	if s, ok := safe.As(v); ok {
		return s
	}
	return fmt.Sprint(v)
}

// entries returns the key/value pairs of a mapping. Ordered mappings keep
// their order; Go maps are sorted by key so output is deterministic.
func entries(v any) ([]tmpl.KV, bool) {
	switch m := v.(type) {
	case tmpl.Dict:
		return []tmpl.KV(m), true
	case []tmpl.KV:
		return m, true
	case nodes.Attrs:
		out := make([]tmpl.KV, len(m))
		for i, a := range m {
			if a.Bool {
				out[i] = tmpl.KV{Key: a.Name, Value: true}
				continue
			}
			out[i] = tmpl.KV{Key: a.Name, Value: a.Value}
		}
		return out, true
	case templ.OrderedAttributes:
		out := make([]tmpl.KV, len(m))
		for i, kv := range m {
			out[i] = tmpl.KV{Key: kv.Key, Value: kv.Value}
		}
		return out, true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return nil, false
	}
	out := make([]tmpl.KV, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out = append(out, tmpl.KV{Key: fmt.Sprint(iter.Key().Interface()), Value: iter.Value().Interface()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, true
}

// items returns the elements of an iterable.
func items(v any) []any {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out
	case reflect.Func:
		var out []any
		for item := range rv.Seq() {
			out = append(out, item.Interface())
		}
		return out
	}
	return nil
}

// truthy follows the usual notion of truth for mapping values in class
// lists: false, nil, zero numbers and empty strings or collections are
// false.
func truthy(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array, reflect.String, reflect.Chan:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface, reflect.Func:
		return !rv.IsNil()
	}
	return !rv.IsZero()
}
