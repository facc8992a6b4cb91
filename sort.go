package livequery

import "slices"

// MaxSortFields is the maximum number of sort columns a SortSpec may hold.
// The cap bounds the cost of the in-page refinement sort; toggle requests
// beyond it are silently ignored.
const MaxSortFields = 3

// Sort represents a single sort directive for query results.
type Sort struct {
	// Field is the record field to sort by.
	Field string `json:"field"`

	// Desc indicates descending order. False means ascending.
	Desc bool `json:"desc"`
}

// SortSpec is an ordered list of sort directives. Insertion order is
// precedence order: the first entry drives the indexed scan, later entries
// break ties within a fetched page.
//
// Invariants: no duplicate fields, length never exceeds MaxSortFields.
// Build and mutate specs through Toggle to keep them holding.
type SortSpec []Sort

// IndexOf returns the position of field in the spec, or -1.
func (s SortSpec) IndexOf(field string) int {
	return slices.IndexFunc(s, func(entry Sort) bool {
		return entry.Field == field
	})
}

// Contains reports whether field appears anywhere in the spec.
func (s SortSpec) Contains(field string) bool {
	return s.IndexOf(field) != -1
}

// Primary returns the first (highest-precedence) directive.
// ok is false for an empty spec.
func (s SortSpec) Primary() (sort Sort, ok bool) {
	if len(s) == 0 {
		return Sort{}, false
	}
	return s[0], true
}

// Clone returns an independent copy of the spec.
func (s SortSpec) Clone() SortSpec {
	return slices.Clone(s)
}

// Toggle applies a column-header click to a spec and returns the resulting
// spec. The input is never mutated. changed is false only when the request
// was a no-op (appending beyond MaxSortFields).
//
// With appendMode false (a plain click):
//   - if field is the sole entry, its direction flips;
//   - otherwise the spec is replaced by a single descending entry for field.
//
// With appendMode true (a multi-sort click):
//   - if field is already present, that entry's direction flips in place;
//   - otherwise a descending entry is appended, unless the spec is full.
//
// New columns default to descending: most-recent-first and highest-first
// dominate how operational listings are read.
//
// A changed spec invalidates the current page; callers are expected to
// reset their page number to 1.
func Toggle(spec SortSpec, field string, appendMode bool) (result SortSpec, changed bool) {
	if field == "" {
		return spec.Clone(), false
	}

	if !appendMode {
		if len(spec) == 1 && spec[0].Field == field {
			return SortSpec{{Field: field, Desc: !spec[0].Desc}}, true
		}
		return SortSpec{{Field: field, Desc: true}}, true
	}

	if idx := spec.IndexOf(field); idx != -1 {
		result = spec.Clone()
		result[idx].Desc = !result[idx].Desc
		return result, true
	}

	if len(spec) >= MaxSortFields {
		return spec.Clone(), false
	}

	result = append(spec.Clone(), Sort{Field: field, Desc: true})
	return result, true
}
