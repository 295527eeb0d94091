package site

import (
	"bytes"
	"encoding/json"
	"sort"

	"gopkg.in/yaml.v3"
)

// Entry is one key/value pair of an OrderedMap.
type Entry struct {
	Key   string
	Value any
}

// OrderedMap is a raw mapping that remembers document key order. The document
// loader produces it so label->URL social mappings keep their written order.
type OrderedMap []Entry

// Get returns the value stored under key.
func (m OrderedMap) Get(key string) (any, bool) {
	for _, e := range m {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Has reports whether key is present.
func (m OrderedMap) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// AsMapping views a raw value as an ordered mapping. Plain Go maps are
// returned in sorted key order so normalization stays deterministic.
func AsMapping(v any) (OrderedMap, bool) {
	switch m := v.(type) {
	case OrderedMap:
		return m, true
	case map[string]any:
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(OrderedMap, 0, len(keys))
		for _, k := range keys {
			out = append(out, Entry{Key: k, Value: m[k]})
		}
		return out, true
	case map[string]string:
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(OrderedMap, 0, len(keys))
		for _, k := range keys {
			out = append(out, Entry{Key: k, Value: m[k]})
		}
		return out, true
	default:
		return nil, false
	}
}

// AsSequence views a raw value as a sequence.
func AsSequence(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []map[string]any:
		out := make([]any, len(s))
		for i := range s {
			out[i] = s[i]
		}
		return out, true
	default:
		return nil, false
	}
}

// MarshalJSON writes the mapping as a JSON object in key order.
func (m OrderedMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML writes the mapping as a YAML mapping in key order.
func (m OrderedMap) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, e := range m {
		var val yaml.Node
		if err := val.Encode(e.Value); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Key}, &val)
	}
	return node, nil
}
