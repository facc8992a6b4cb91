package engine

import (
	"context"

	"github.com/friendsofgo/errors"

	"github.com/perch-erp/livequery-go"
)

// queryInputs is the immutable state one pipeline run operates on.
type queryInputs[T any] struct {
	sort   livequery.SortSpec
	page   int
	size   int
	filter livequery.FilterFunc[T]
}

// execute runs the full pipeline once: resolve the safe sort key, build
// the combined predicate, count, clamp the page, fetch the slice and
// refine its ordering. It never mutates session state; the caller decides
// whether the result is still current.
//
// Count and Fetch are two store reads: if writes interleave between them
// the totals and the page can disagree by those writes. Acceptable for an
// operational listing, not for reconciliation.
func execute[T any](ctx context.Context, cfg Config[T], in queryInputs[T]) (Snapshot[T], error) {
	schema := cfg.Collection.Schema()

	// One spelling per column: a camelCase request addresses its declared
	// snake_case field in both the scan and the refinement sort.
	spec := schema.ResolveSpec(in.sort)

	requested := cfg.DefaultSort
	if primary, ok := spec.Primary(); ok {
		requested = primary
	}
	orderBy := livequery.Sort{
		Field: schema.SafeSortField(requested.Field),
		Desc:  requested.Desc,
	}

	combined := combinedFilter(cfg, in.filter)

	total, err := cfg.Collection.Count(ctx, combined)
	if err != nil {
		return Snapshot[T]{}, errors.Wrapf(err, "engine: count %q", cfg.Collection.Name())
	}

	totalPages := livequery.TotalPages(total, in.size)
	page := livequery.ClampPage(in.page, totalPages)

	items := make([]T, 0)
	if total > 0 {
		items, err = cfg.Collection.Fetch(ctx, livequery.FetchParams[T]{
			OrderBy: orderBy,
			Filter:  combined,
			Offset:  livequery.PageArgs{Page: page, Size: in.size}.Offset(in.size),
			Limit:   in.size,
		})
		if err != nil {
			return Snapshot[T]{}, errors.Wrapf(err, "engine: fetch %q", cfg.Collection.Name())
		}
	}

	if needsRefinement(spec, orderBy.Field) {
		livequery.SortPage(items, spec, cfg.Field)
	}

	return Snapshot[T]{
		Data:        items,
		TotalItems:  int(total),
		TotalPages:  totalPages,
		CurrentPage: page,
		SortState:   in.sort.Clone(),
	}, nil
}

// needsRefinement reports whether the fetched page needs the in-page
// multi-key sort: more than one directive, or a single directive whose
// field is not the one the indexed scan actually used.
func needsRefinement(spec livequery.SortSpec, orderField string) bool {
	switch len(spec) {
	case 0:
		return false
	case 1:
		return spec[0].Field != orderField
	default:
		return true
	}
}

// combinedFilter conjoins the soft-delete exclusion rule with the
// screen's predicate. Soft-deleted records are excluded unless the
// session opted in; the caller predicate is evaluated either way.
func combinedFilter[T any](cfg Config[T], filter livequery.FilterFunc[T]) livequery.FilterFunc[T] {
	if cfg.IncludeDeleted {
		return filter
	}

	deleted := cfg.Deleted
	if deleted == nil {
		field := cfg.Field
		deleted = func(record T) bool {
			return field(record, deletedField) != nil
		}
	}

	return func(record T) bool {
		if deleted(record) {
			return false
		}
		return filter == nil || filter(record)
	}
}

// loadingSnapshot is what a screen renders while storage cannot serve the
// query: empty data, loading flag up, controls still reflecting state.
func loadingSnapshot[T any](in queryInputs[T]) Snapshot[T] {
	page := in.page
	if page < 1 {
		page = 1
	}
	return Snapshot[T]{
		CurrentPage: page,
		SortState:   in.sort.Clone(),
		Loading:     true,
	}
}
