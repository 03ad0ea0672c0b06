package engine

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
	"strconv"
	"strings"

	"github.com/conneroisu/htmltag/internal/errors"
	"github.com/conneroisu/htmltag/internal/nodes"
)

// ComponentFunc is a component placed in a tag position. It receives the
// resolved children and attributes of the element it replaces and returns
// a string, node, template, safe value or templ component.
type ComponentFunc func(children []nodes.Node, attrs nodes.Attrs) (any, error)

// ContextComponentFunc is a ComponentFunc that also receives the context
// the template is being compiled with.
type ContextComponentFunc func(ctx context.Context, children []nodes.Node, attrs nodes.Attrs) (any, error)

// Components may also be plain functions taking a props struct:
//
//	func(p Props) R
//	func(p Props) (R, error)
//	func(ctx context.Context, p Props) (R, error)
//
// Props fields are filled from attributes. A field named by the tag
// `attr:"name"` or, without a tag, by its lower-cased field name. Adding
// ",required" makes a missing attribute an error. A Children []nodes.Node
// field receives the children and an Attrs nodes.Attrs field receives every
// attribute.
func componentSignature(t reflect.Type) bool {
	if t.Kind() != reflect.Func || t.IsVariadic() {
		return false
	}

	first := 0
	if t.NumIn() > 0 && t.In(0) == contextType {
		first = 1
	}
	if t.NumIn()-first != 1 || t.In(first).Kind() != reflect.Struct {
		return false
	}

	switch t.NumOut() {
	case 1:
		return true
	case 2:
		return t.Out(1) == errorType
	}
	return false
}

func (r *resolver) callComponent(fn any, children []nodes.Node, attrs nodes.Attrs) (any, error) {
	switch f := fn.(type) {
	case ComponentFunc:
		return f(children, attrs)
	case func([]nodes.Node, nodes.Attrs) (any, error):
		return f(children, attrs)
	case ContextComponentFunc:
		return f(r.ctx, children, attrs)
	case func(context.Context, []nodes.Node, nodes.Attrs) (any, error):
		return f(r.ctx, children, attrs)
	}

	rv := reflect.ValueOf(fn)
	t := rv.Type()

	var args []reflect.Value
	if t.In(0) == contextType {
		args = append(args, reflect.ValueOf(&r.ctx).Elem())
	}
	props, err := bindProps(funcName(rv), t.In(len(args)), children, attrs)
	if err != nil {
		return nil, err
	}
	args = append(args, props)

	results := rv.Call(args)
	if len(results) == 2 && !results[1].IsNil() {
		return nil, results[1].Interface().(error)
	}
	return results[0].Interface(), nil
}

func funcName(fn reflect.Value) string {
	if f := runtime.FuncForPC(fn.Pointer()); f != nil {
		name := f.Name()
		return name[strings.LastIndex(name, "/")+1:]
	}
	return fn.Type().String()
}

func bindProps(component string, pt reflect.Type, children []nodes.Node, attrs nodes.Attrs) (reflect.Value, error) {
	props := reflect.New(pt).Elem()

	for i := 0; i < pt.NumField(); i++ {
		field := pt.Field(i)
		if !field.IsExported() {
			continue
		}
		fv := props.Field(i)

		if field.Name == "Children" && field.Type == nodeSliceType {
			fv.Set(reflect.ValueOf(children))
			continue
		}
		if field.Name == "Attrs" && field.Type == attrsType {
			fv.Set(reflect.ValueOf(attrs.Clone()))
			continue
		}

		name, required, skip := fieldAttr(field)
		if skip {
			continue
		}
		a, ok := attrs.Get(name)
		if !ok {
			if required {
				return reflect.Value{}, &errors.BindError{Component: component, Field: field.Name, Attr: name}
			}
			continue
		}
		if err := assign(fv, a); err != nil {
			return reflect.Value{}, &errors.BindError{Component: component, Field: field.Name, Attr: name, Reason: err.Error()}
		}
	}
	return props, nil
}

func fieldAttr(f reflect.StructField) (name string, required, skip bool) {
	tag, ok := f.Tag.Lookup("attr")
	if tag == "-" {
		return "", false, true
	}
	name = strings.ToLower(f.Name)
	if !ok {
		return name, false, false
	}

	parts := strings.Split(tag, ",")
	if parts[0] != "" {
		name = parts[0]
	}
	for _, opt := range parts[1:] {
		if opt == "required" {
			required = true
		}
	}
	return name, required, false
}

func assign(fv reflect.Value, a nodes.Attr) error {
	switch fv.Kind() {
	case reflect.String:
		fv.SetString(a.Value)
	case reflect.Bool:
		if a.Bool {
			fv.SetBool(true)
			return nil
		}
		b, err := strconv.ParseBool(a.Value)
		if err != nil {
			return err
		}
		fv.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(a.Value, 10, fv.Type().Bits())
		if err != nil {
			return err
		}
		fv.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(a.Value, 10, fv.Type().Bits())
		if err != nil {
			return err
		}
		fv.SetUint(n)
	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(a.Value, fv.Type().Bits())
		if err != nil {
			return err
		}
		fv.SetFloat(n)
	case reflect.Interface:
		val := reflect.ValueOf(a.Value)
		if a.Bool {
			val = reflect.ValueOf(true)
		}
		if !val.Type().AssignableTo(fv.Type()) {
			return fmt.Errorf("cannot assign %s to %s", val.Type(), fv.Type())
		}
		fv.Set(val)
	default:
		return fmt.Errorf("unsupported field type %s", fv.Type())
	}
	return nil
}
