package generic

import (
	"fmt"
	"slices"
	"strings"
)

// =============================================================================
// PREDICATES - In-memory list filtering
// =============================================================================

// Predicate reports whether an item should be kept.
type Predicate[T any] func(T) bool

// Filter returns the items that satisfy every predicate, in their original order.
// Nil predicates are skipped. The result is never nil so it serializes as [].
func Filter[T any](items []T, preds ...Predicate[T]) []T {
	out := make([]T, 0, len(items))
next:
	for _, item := range items {
		for _, p := range preds {
			if p != nil && !p(item) {
				continue next
			}
		}
		out = append(out, item)
	}
	return out
}

// Search matches items where any of the extracted fields contains needle,
// case-insensitively. An empty needle matches everything.
func Search[T any](needle string, fields func(T) []string) Predicate[T] {
	needle = strings.ToLower(strings.TrimSpace(needle))
	if needle == "" {
		return nil
	}
	return func(item T) bool {
		for _, f := range fields(item) {
			if strings.Contains(strings.ToLower(f), needle) {
				return true
			}
		}
		return false
	}
}

// Match keeps items whose field equals want. An empty want matches everything,
// which is how list views treat an unset "all" filter.
func Match[T any](want string, field func(T) string) Predicate[T] {
	if want == "" {
		return nil
	}
	return func(item T) bool {
		return field(item) == want
	}
}

// =============================================================================
// SORTING - "sort=field" ascending, "sort=-field" descending
// =============================================================================

// SortKey is a parsed sort parameter.
type SortKey struct {
	Field string
	Desc  bool
}

// ParseSort parses "name" or "-name". Empty input yields the fallback.
func ParseSort(s, fallback string) SortKey {
	s = strings.TrimSpace(s)
	if s == "" {
		s = fallback
	}
	if strings.HasPrefix(s, "-") {
		return SortKey{Field: s[1:], Desc: true}
	}
	return SortKey{Field: strings.TrimPrefix(s, "+")}
}

// Comparators maps sortable field names to three-way comparisons.
type Comparators[T any] map[string]func(a, b T) int

// Sort orders items in place by key. Unknown fields are a validation error.
func Sort[T any](items []T, key SortKey, cmps Comparators[T]) error {
	if key.Field == "" {
		return nil
	}
	cmp, ok := cmps[key.Field]
	if !ok {
		verr := NewValidationError()
		verr.Add("sort", fmt.Sprintf("unknown field %q", key.Field))
		return verr
	}
	slices.SortStableFunc(items, func(a, b T) int {
		if key.Desc {
			return cmp(b, a)
		}
		return cmp(a, b)
	})
	return nil
}

// CompareFold compares strings case-insensitively.
func CompareFold(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}
