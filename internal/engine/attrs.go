package engine

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/conneroisu/htmltag/internal/errors"
	"github.com/conneroisu/htmltag/internal/nodes"
)

// resolveAttrs substitutes every placeholder in a placeholder tree's
// attributes. Attributes are applied in source order so later assignments
// win, whether they come from a spread or a literal.
func (r *resolver) resolveAttrs(in nodes.Attrs) (nodes.Attrs, error) {
	var out nodes.Attrs
	for _, a := range in {
		switch {
		case r.codec.IsPlaceholder(a.Name):
			v, err := r.value(a.Name)
			if err != nil {
				return nil, err
			}
			if err := spread(&out, v); err != nil {
				return nil, err
			}

		case r.codec.Contains(a.Name):
			return nil, errors.NewTemplateValueError(errors.ErrCodeInvalidAttr, a.Name,
				"an interpolation must fill the whole attribute name")

		case a.Bool:
			out.Put(a)

		case r.codec.IsPlaceholder(a.Value):
			v, err := r.value(a.Value)
			if err != nil {
				return nil, err
			}
			if err := setAttr(&out, a.Name, v); err != nil {
				return nil, err
			}

		case r.codec.Contains(a.Value):
			s, err := r.interpolateString(a.Value)
			if err != nil {
				return nil, err
			}
			out.Set(a.Name, s)

		default:
			out.Put(a)
		}
	}
	return out, nil
}

// spread merges every entry of a mapping as if each were written as its own
// attribute.
func spread(out *nodes.Attrs, v any) error {
	kvs, ok := entries(v)
	if !ok {
		return errors.NewTemplateValueError(errors.ErrCodeNotMapping, "spread",
			fmt.Sprintf("cannot use %T as value for spread attributes", v))
	}
	for _, kv := range kvs {
		if err := setAttr(out, kv.Key, kv.Value); err != nil {
			return err
		}
	}
	return nil
}

// setAttr coerces a single attribute value. The names class, style, data and
// aria have dedicated rules; every other name takes strings as is, true as
// a boolean attribute, false or nil as absence and anything else
// stringified.
func setAttr(out *nodes.Attrs, key string, v any) error {
	if !validAttrName(key) {
		return errors.NewTemplateValueError(errors.ErrCodeInvalidAttr, key,
			fmt.Sprintf("invalid attribute name %q", key))
	}
	switch key {
	case "class":
		return setClass(out, v)
	case "style":
		return setStyle(out, v)
	case "data":
		return setPrefixed(out, "data", v)
	case "aria":
		return setPrefixed(out, "aria", v)
	}

	switch classify(v) {
	case kindNil:
	case kindBool:
		if v.(bool) {
			out.SetBool(key)
		}
	default:
		out.Set(key, stringify(v))
	}
	return nil
}

func setClass(out *nodes.Attrs, v any) error {
	s, err := ClassNames(v)
	if err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	out.Set("class", s)
	return nil
}

func setStyle(out *nodes.Attrs, v any) error {
	switch classify(v) {
	case kindString, kindSafe:
		out.Set("style", stringify(v))
		return nil
	case kindMapping:
		kvs, _ := entries(v)
		decls := make([]string, 0, len(kvs))
		for _, kv := range kvs {
			decls = append(decls, kv.Key+": "+stringify(kv.Value))
		}
		out.Set("style", strings.Join(decls, "; "))
		return nil
	}
	return errors.TypeError("style", v, "value for style attribute")
}

// setPrefixed expands data or aria mappings. data renders true as a bare
// attribute and drops false; aria spells booleans out as "true"/"false".
// Both drop nil entries. The value itself must be a mapping.
func setPrefixed(out *nodes.Attrs, prefix string, v any) error {
	if classify(v) == kindMapping {
		kvs, _ := entries(v)
		for _, kv := range kvs {
			name := prefix + "-" + kv.Key
			if !validAttrName(name) {
				return errors.NewTemplateValueError(errors.ErrCodeInvalidAttr, prefix,
					fmt.Sprintf("invalid attribute name %q", name))
			}
			switch sub := kv.Value.(type) {
			case nil:
			case bool:
				switch {
				case prefix == "aria":
					out.Set(name, fmt.Sprint(sub))
				case sub:
					out.SetBool(name)
				}
			default:
				out.Set(name, stringify(sub))
			}
		}
		return nil
	}
	return errors.NewTemplateValueError(errors.ErrCodeNotMapping, prefix,
		fmt.Sprintf("cannot use %T as value for %s attributes", v, prefix))
}

// validAttrName rejects names that would end the start tag or start another
// attribute when written unquoted.
func validAttrName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r <= ' ', r == 0x7f:
			return false
		case unicode.IsSpace(r), unicode.IsControl(r):
			return false
		case strings.ContainsRune(`"'<>/=`, r):
			return false
		}
	}
	return true
}
