package livequery

import "github.com/aarondl/strmangle"

// Default fallback fields for sort resolution, tried in order when the
// requested field has no index backing it.
const (
	FallbackCreatedAt = "created_at"
	FallbackUpdatedAt = "updated_at"
)

// Schema describes the index surface of a collection: which fields the
// store can iterate in order without a full scan.
//
// A Schema is immutable for the lifetime of a query session.
type Schema struct {
	// PrimaryKey is the primary-key field, possibly compound.
	PrimaryKey []string

	// Indexes lists the declared secondary indexes. Each index is a field
	// or an ordered list of fields (compound index).
	Indexes [][]string

	// Sortable is an optional extra allow-list of fields the caller knows
	// to be safe for ordered iteration.
	Sortable []string
}

// SortableFields returns the set of fields usable for ordered iteration:
// the flattened primary key, every field of every secondary index, and the
// extra allow-list.
func (s Schema) SortableFields() map[string]struct{} {
	fields := make(map[string]struct{})
	for _, f := range s.PrimaryKey {
		fields[f] = struct{}{}
	}
	for _, index := range s.Indexes {
		for _, f := range index {
			fields[f] = struct{}{}
		}
	}
	for _, f := range s.Sortable {
		fields[f] = struct{}{}
	}
	return fields
}

// SafeSortField resolves a requested sort field to one the store can order
// on. If the request (or a snake/camel spelling of it) is backed by an
// index it is returned as declared; otherwise resolution falls back to
// created_at, then updated_at, then the first primary-key field.
//
// Resolution never fails: an unknown request degrades to a still-efficient
// default ordering rather than forcing a full-collection scan per page.
func (s Schema) SafeSortField(requested string) string {
	fields := s.SortableFields()

	if requested != "" {
		if f, ok := matchField(fields, requested); ok {
			return f
		}
	}
	for _, fallback := range []string{FallbackCreatedAt, FallbackUpdatedAt} {
		if f, ok := matchField(fields, fallback); ok {
			return f
		}
	}
	if len(s.PrimaryKey) > 0 {
		return s.PrimaryKey[0]
	}
	return DefaultIDField
}

// Resolve maps a requested field name to its declared spelling when the
// schema backs it, directly or under a snake/camel alias. Fields the
// schema does not know come back unchanged; they are still usable for the
// in-page refinement sort, just not for the indexed scan.
func (s Schema) Resolve(field string) string {
	if f, ok := matchField(s.SortableFields(), field); ok {
		return f
	}
	return field
}

// ResolveSpec returns spec with every directive's field resolved through
// Resolve, so stores and comparators see one spelling per column.
func (s Schema) ResolveSpec(spec SortSpec) SortSpec {
	resolved := spec.Clone()
	for i := range resolved {
		resolved[i].Field = s.Resolve(resolved[i].Field)
	}
	return resolved
}

// DefaultIDField is the primary-key field assumed when a Schema declares
// none.
const DefaultIDField = "_id"

// matchField looks name up in the declared field set, first verbatim, then
// by camelCase-normalized spelling. Screens tend to request camelCase
// ("createdAt") while stores declare snake_case ("created_at"); the match
// returns the field as declared so the store recognizes it.
func matchField(fields map[string]struct{}, name string) (string, bool) {
	if _, ok := fields[name]; ok {
		return name, true
	}
	want := strmangle.CamelCase(name)
	for declared := range fields {
		if strmangle.CamelCase(declared) == want {
			return declared, true
		}
	}
	return "", false
}
