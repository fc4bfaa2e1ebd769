// Package view turns an already-fetched entity list plus a declarative spec
// (search, filters, sort, page) into the exact slice a dashboard screen
// renders, with pagination metadata. It is a pure function over its inputs:
// no I/O, no hidden state, and the input slice is never reordered.
package view

import (
	"sort"
	"strconv"
	"strings"
)

const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// Field describes one filterable/sortable dimension of an entity.
type Field[T any] struct {
	// Value reads the field as a string. Missing data must come back as ""
	// rather than panicking.
	Value func(T) string
	// Numeric selects numeric comparison for sorting. Values that fail to
	// parse sort as 0.
	Numeric bool
	// Searchable includes the field in free-text search.
	Searchable bool
}

// Fields is the per-entity registry keyed by field name.
type Fields[T any] map[string]Field[T]

// Spec is the transient view state of one list screen.
type Spec struct {
	Search    string
	Filters   map[string]string
	SortBy    string
	SortOrder string
	Page      int
	Size      int
}

// Result is what a screen renders.
type Result[T any] struct {
	PageItems     []T
	TotalElements int
	TotalPages    int
}

// Derive filters, sorts and paginates items according to spec. Filtering is
// conjunctive; enum filters with value "all" or "" are inactive. The page is
// always a contiguous slice of the filtered and sorted collection.
//
// spec.Size must be positive; callers normalize at the boundary.
func Derive[T any](items []T, spec Spec, fields Fields[T]) Result[T] {
	filtered := filter(items, spec, fields)
	sorted := sortItems(filtered, spec, fields)

	total := len(sorted)
	totalPages := 0
	if total > 0 {
		totalPages = (total + spec.Size - 1) / spec.Size
	}

	start := spec.Page * spec.Size
	if start < 0 || start >= total {
		return Result[T]{PageItems: []T{}, TotalElements: total, TotalPages: totalPages}
	}
	end := start + spec.Size
	if end > total {
		end = total
	}

	return Result[T]{PageItems: sorted[start:end], TotalElements: total, TotalPages: totalPages}
}

func filter[T any](items []T, spec Spec, fields Fields[T]) []T {
	search := strings.ToLower(strings.TrimSpace(spec.Search))

	out := make([]T, 0, len(items))
	for _, item := range items {
		if !matchesSearch(item, search, fields) {
			continue
		}
		if !matchesFilters(item, spec.Filters, fields) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func matchesSearch[T any](item T, search string, fields Fields[T]) bool {
	if search == "" {
		return true
	}
	for _, f := range fields {
		if !f.Searchable {
			continue
		}
		if strings.Contains(strings.ToLower(f.Value(item)), search) {
			return true
		}
	}
	return false
}

func matchesFilters[T any](item T, filters map[string]string, fields Fields[T]) bool {
	for name, want := range filters {
		if want == "" || strings.EqualFold(want, "all") {
			continue
		}
		f, ok := fields[name]
		if !ok {
			return false
		}
		if !strings.EqualFold(f.Value(item), want) {
			return false
		}
	}
	return true
}

// sortItems sorts a copy; ties keep original fetch order.
func sortItems[T any](items []T, spec Spec, fields Fields[T]) []T {
	f, ok := fields[spec.SortBy]
	if !ok {
		return items
	}

	desc := strings.EqualFold(spec.SortOrder, SortDesc)
	out := make([]T, len(items))
	copy(out, items)

	sort.SliceStable(out, func(i, j int) bool {
		var less bool
		if f.Numeric {
			less = numericValue(f.Value(out[i])) < numericValue(f.Value(out[j]))
		} else {
			less = strings.ToLower(f.Value(out[i])) < strings.ToLower(f.Value(out[j]))
		}
		if desc {
			return !less && !equal(f, out[i], out[j])
		}
		return less
	})
	return out
}

func equal[T any](f Field[T], a, b T) bool {
	if f.Numeric {
		return numericValue(f.Value(a)) == numericValue(f.Value(b))
	}
	return strings.EqualFold(f.Value(a), f.Value(b))
}

// numericValue parses leniently: a non-numeric value compares as 0 instead of
// corrupting the order with NaN.
func numericValue(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
