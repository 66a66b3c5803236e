// Package normalization maps loosely written configuration values onto their canonical form.
package normalization

import (
	"fmt"
	"sort"
	"strings"
)

// Clean trims surrounding whitespace and lower-cases s.
func Clean(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Normalizer resolves raw strings to one of a fixed set of values.
type Normalizer[T comparable] struct {
	values map[string]T
	keys   []string
}

// NewNormalizer builds a Normalizer. Keys are matched after Clean.
func NewNormalizer[T comparable](values map[string]T) *Normalizer[T] {
	n := &Normalizer[T]{values: make(map[string]T, len(values))}
	for k, v := range values {
		key := Clean(k)
		n.values[key] = v
		n.keys = append(n.keys, key)
	}
	sort.Strings(n.keys)
	return n
}

// Lookup returns the value registered for raw.
func (n *Normalizer[T]) Lookup(raw string) (T, error) {
	if v, ok := n.values[Clean(raw)]; ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid value %q, valid options: %v", raw, n.keys)
}

// Normalize returns the value registered for raw, or fallback.
func (n *Normalizer[T]) Normalize(raw string, fallback T) T {
	if v, err := n.Lookup(raw); err == nil {
		return v
	}
	return fallback
}

// Keys returns the accepted keys in sorted order.
func (n *Normalizer[T]) Keys() []string {
	return append([]string(nil), n.keys...)
}
