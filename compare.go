package livequery

import (
	"database/sql/driver"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"
)

// CompareRecords compares two records under a SortSpec: by the first
// directive, tie-broken by the second, then the third. Null field values
// (nil, nil pointers, and invalid nullable wrappers such as null.String)
// sort last regardless of the requested direction, so empty cells never
// lead a listing.
//
// Returns a negative number when a sorts before b, positive when after,
// zero when the spec cannot tell them apart.
func CompareRecords[T any](spec SortSpec, field FieldFunc[T], a, b T) int {
	for _, directive := range spec {
		av, aNull := normalizeValue(field(a, directive.Field))
		bv, bNull := normalizeValue(field(b, directive.Field))

		switch {
		case aNull && bNull:
			continue
		case aNull:
			return 1
		case bNull:
			return -1
		}

		if c := compareValues(av, bv); c != 0 {
			if directive.Desc {
				return -c
			}
			return c
		}
	}
	return 0
}

// SortPage stably reorders a fetched page in place under spec.
//
// This refines ordering within one page only. It is globally correct when
// the indexed scan already determined the right page boundaries and the
// remaining directives merely break ties among adjacent records; a
// secondary key that is meant to dominate ordering will be right within a
// page but not across pages.
func SortPage[T any](items []T, spec SortSpec, field FieldFunc[T]) {
	if len(spec) == 0 || field == nil || len(items) < 2 {
		return
	}
	sort.SliceStable(items, func(i, j int) bool {
		return CompareRecords(spec, field, items[i], items[j]) < 0
	})
}

// normalizeValue unwraps a field value for comparison and reports whether
// it is null. Nullable wrappers that implement driver.Valuer (null.String,
// null.Time, sql.NullInt64, ...) unwrap to their inner value; an invalid
// wrapper is null.
func normalizeValue(v any) (value any, isNull bool) {
	if v == nil {
		return nil, true
	}

	if valuer, ok := v.(driver.Valuer); ok {
		inner, err := valuer.Value()
		if err != nil || inner == nil {
			return nil, true
		}
		return normalizeValue(inner)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return nil, true
		}
		return normalizeValue(rv.Elem().Interface())
	}

	return v, false
}

// compareValues compares two non-null values of possibly different
// dynamic types. Values of the same comparison class (numeric, string,
// bool, time) compare natively; anything else falls back to a stable
// textual ordering so mixed-type collections still sort deterministically.
func compareValues(a, b any) int {
	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			return at.Compare(bt)
		}
	}

	if af, ok := asFloat(a); ok {
		if bf, ok := asFloat(b); ok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	}

	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			return strings.Compare(as, bs)
		}
	}

	if ab, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ab == bb:
				return 0
			case bb:
				return -1
			default:
				return 1
			}
		}
	}

	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

// asFloat widens any integer or float kind to float64.
func asFloat(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}
