package common

import (
	"cmp"
	"slices"
)

// First returns the first element of the slice and true, or the zero value and false if empty.
func First[S ~[]E, E any](s S) (E, bool) {
	if len(s) == 0 {
		var zero E
		return zero, false
	}

	return s[0], true
}

// AppendUnique appends values that are not yet present, keeping first-seen order.
func AppendUnique[S ~[]E, E comparable](s S, values ...E) S {
	for _, v := range values {
		if !slices.Contains(s, v) {
			s = append(s, v)
		}
	}

	return s
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[M ~map[K]V, K cmp.Ordered, V any](m M) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	return keys
}
