package source

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/conneroisu/htmltag/internal/errors"
	"github.com/conneroisu/htmltag/internal/tmpl"
)

// MaxIncludeDepth bounds nested {@name} includes.
const MaxIncludeDepth = 16

// Resolver loads the source named by an include slot.
type Resolver func(name string) (*Source, error)

// Dir resolves includes relative to root. Names cannot escape root.
func Dir(root string) Resolver {
	return func(name string) (*Source, error) {
		path := filepath.Join(root, filepath.Clean("/"+name))
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("include %s: %w", name, err)
		}
		return ParseFile(path)
	}
}

// Bind looks up every slot in data and returns the resulting template.
// Include slots become nested templates bound to the same data.
func (s *Source) Bind(data any, include Resolver) (tmpl.Template, error) {
	return s.bind(data, include, 0)
}

func (s *Source) bind(data any, include Resolver, depth int) (tmpl.Template, error) {
	t := tmpl.Template{
		Strings:        append([]string(nil), s.Strings...),
		Interpolations: make([]tmpl.Interpolation, len(s.Slots)),
	}

	for i, slot := range s.Slots {
		in := tmpl.Interpolation{
			Conversion: slot.Conversion,
			Format:     slot.Format,
			Expr:       slot.Expr,
		}

		if slot.Include {
			nested, err := s.includeSlot(slot, data, include, depth)
			if err != nil {
				return tmpl.Template{}, err
			}
			in.Value = nested
			t.Interpolations[i] = in
			continue
		}

		v, err := Lookup(data, slot.Expr)
		if err != nil {
			if me, ok := err.(*errors.MarkupError); ok {
				me.WithOffset(slot.Offset).WithContext("source", s.Name)
			}
			return tmpl.Template{}, err
		}
		in.Value = v
		t.Interpolations[i] = in
	}

	return t, nil
}

func (s *Source) includeSlot(slot Slot, data any, include Resolver, depth int) (tmpl.Template, error) {
	if include == nil {
		return tmpl.Template{}, slotError(s.Name, slot.Offset,
			fmt.Sprintf("cannot include %q: no resolver", slot.Expr))
	}
	if depth >= MaxIncludeDepth {
		return tmpl.Template{}, slotError(s.Name, slot.Offset,
			fmt.Sprintf("include %q nested deeper than %d", slot.Expr, MaxIncludeDepth))
	}

	sub, err := include(slot.Expr)
	if err != nil {
		return tmpl.Template{}, err
	}
	return sub.bind(data, include, depth+1)
}

// Lookup follows a dotted path through data. Path "." returns data itself.
// Mappings are indexed by key, slices by position and structs by field
// name (case-insensitive) or json tag.
func Lookup(data any, path string) (any, error) {
	if path == "." || path == "" {
		return data, nil
	}

	cur := data
	for _, seg := range strings.Split(path, ".") {
		next, ok := step(cur, seg)
		if !ok {
			return nil, errors.NewTemplateValueError(errors.ErrCodeMissingValue, "",
				fmt.Sprintf("no value for %q", path)).WithContext("segment", seg)
		}
		cur = next
	}
	return cur, nil
}

func step(cur any, seg string) (any, bool) {
	switch c := cur.(type) {
	case nil:
		return nil, false
	case tmpl.Dict:
		return c.Get(seg)
	case map[string]any:
		v, ok := c[seg]
		return v, ok
	case []any:
		i, err := strconv.Atoi(seg)
		if err != nil || i < 0 || i >= len(c) {
			return nil, false
		}
		return c[i], true
	}

	rv := reflect.ValueOf(cur)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		v := rv.MapIndex(reflect.ValueOf(seg).Convert(rv.Type().Key()))
		if !v.IsValid() {
			return nil, false
		}
		return v.Interface(), true
	case reflect.Slice, reflect.Array:
		i, err := strconv.Atoi(seg)
		if err != nil || i < 0 || i >= rv.Len() {
			return nil, false
		}
		return rv.Index(i).Interface(), true
	case reflect.Struct:
		return structField(rv, seg)
	}
	return nil, false
}

func structField(rv reflect.Value, seg string) (any, bool) {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == seg || (name == "" && strings.EqualFold(f.Name, seg)) {
			return rv.Field(i).Interface(), true
		}
	}
	return nil, false
}
