// Package normalization maps free-form setting strings onto typed enumerations.
package normalization

import (
	"fmt"
	"sort"
	"strings"
)

// Normalizer folds case and whitespace before looking a value up, so
// "JSON", " json " and "json" all resolve to the same enumeration value.
type Normalizer[T comparable] struct {
	values       map[string]T
	defaultValue T
	keys         []string
}

// NewNormalizer creates a normalizer. Several spellings may map to one value.
func NewNormalizer[T comparable](values map[string]T, defaultValue T) *Normalizer[T] {
	n := &Normalizer[T]{values: make(map[string]T, len(values)), defaultValue: defaultValue}
	for k, v := range values {
		key := fold(k)
		n.values[key] = v
		n.keys = append(n.keys, key)
	}
	sort.Strings(n.keys)
	return n
}

// Normalize returns the matching value, or the default for unknown input.
func (n *Normalizer[T]) Normalize(raw string) T {
	if v, ok := n.values[fold(raw)]; ok {
		return v
	}
	return n.defaultValue
}

// Parse is Normalize with an error for unknown input. Empty input yields the default.
func (n *Normalizer[T]) Parse(raw string) (T, error) {
	if fold(raw) == "" {
		return n.defaultValue, nil
	}
	if v, ok := n.values[fold(raw)]; ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid value %q, valid options: %s", raw, strings.Join(n.keys, ", "))
}

// Keys returns the accepted spellings in sorted order.
func (n *Normalizer[T]) Keys() []string {
	return append([]string(nil), n.keys...)
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
