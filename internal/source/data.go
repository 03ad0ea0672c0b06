package source

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/conneroisu/htmltag/internal/tmpl"
)

// maxDataDepth bounds alias expansion in data files.
const maxDataDepth = 64

// LoadData reads a YAML or JSON data file.
func LoadData(path string) (any, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read data %s: %w", path, err)
	}
	v, err := DecodeData(content)
	if err != nil {
		return nil, fmt.Errorf("data %s: %w", path, err)
	}
	return v, nil
}

// DecodeData decodes YAML (or JSON) into template data. Mappings become
// tmpl.Dict so that key order in the file is the order attributes and
// styles render in. Sequences become []any; scalars keep their YAML type.
func DecodeData(content []byte) (any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if doc.Kind == 0 {
		return tmpl.Dict{}, nil
	}
	return convertNode(&doc, 0)
}

func convertNode(n *yaml.Node, depth int) (any, error) {
	if depth > maxDataDepth {
		return nil, fmt.Errorf("line %d: data nested deeper than %d", n.Line, maxDataDepth)
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return tmpl.Dict{}, nil
		}
		return convertNode(n.Content[0], depth+1)

	case yaml.AliasNode:
		return convertNode(n.Alias, depth+1)

	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := convertNode(item, depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil

	case yaml.MappingNode:
		return convertMapping(n, depth)

	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return v, nil
	}

	return nil, fmt.Errorf("line %d: unsupported yaml node", n.Line)
}

// convertMapping keeps key order. Merge keys (<<) contribute entries not
// already present.
func convertMapping(n *yaml.Node, depth int) (tmpl.Dict, error) {
	out := make(tmpl.Dict, 0, len(n.Content)/2)
	var merges []*yaml.Node

	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], n.Content[i+1]
		if key.Tag == "!!merge" || (key.Kind == yaml.ScalarNode && key.Value == "<<" && key.Tag != "!!str") {
			merges = append(merges, value)
			continue
		}
		v, err := convertNode(value, depth+1)
		if err != nil {
			return nil, err
		}
		out = out.Set(key.Value, v)
	}

	for _, m := range merges {
		v, err := convertNode(m, depth+1)
		if err != nil {
			return nil, err
		}
		var sources []any
		if list, ok := v.([]any); ok {
			sources = list
		} else {
			sources = []any{v}
		}
		for _, src := range sources {
			d, ok := src.(tmpl.Dict)
			if !ok {
				return nil, fmt.Errorf("line %d: merge value is not a mapping", m.Line)
			}
			for _, kv := range d {
				if _, exists := out.Get(kv.Key); !exists {
					out = append(out, kv)
				}
			}
		}
	}

	return out, nil
}
