package engine

import (
	"strings"

	"github.com/a-h/templ"

	"github.com/conneroisu/htmltag/internal/errors"
)

// ClassNames builds a class attribute value. Strings are trimmed and kept
// when non-empty, mappings contribute each key whose value is truthy, lists
// are flattened recursively and nil or booleans are skipped. templ class
// values (templ.KV, templ.Class) are accepted too. Any other value is an
// error.
func ClassNames(values ...any) (string, error) {
	var names []string
	for _, v := range values {
		if err := addClasses(&names, v); err != nil {
			return "", err
		}
	}
	return strings.Join(names, " "), nil
}

func addClasses(names *[]string, v any) error {
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			*names = append(*names, s)
		}
	}

	switch c := v.(type) {
	case templ.KeyValue[string, bool]:
		if c.Value {
			add(c.Key)
		}
		return nil
	case templ.CSSClass:
		add(c.ClassName())
		return nil
	}

	switch classify(v) {
	case kindNil, kindBool:
	case kindString, kindSafe:
		add(stringify(v))
	case kindMapping:
		kvs, _ := entries(v)
		for _, kv := range kvs {
			if truthy(kv.Value) {
				add(kv.Key)
			}
		}
	case kindIterable:
		for _, item := range items(v) {
			if err := addClasses(names, item); err != nil {
				return err
			}
		}
	default:
		return errors.TypeError("class", v, "class name")
	}
	return nil
}
