// Package livequery provides the building blocks for reactive, paginated
// list queries over embedded document stores.
//
// The package grew out of an ERP whose every list screen needs the same
// plumbing: take a collection, a filter predicate, a multi-column sort
// request and a page size, and produce a correctly ordered, correctly
// paginated result that stays up to date as the store changes.
//
// It is split in two layers:
//
//   - This root package holds the shared vocabulary: Sort and SortSpec
//     (capped multi-column sort state with toggle semantics), Schema (which
//     fields support ordered iteration, and the safe-sort-field fallback),
//     page arithmetic (TotalPages, ClampPage), the Collection interface the
//     storage layer implements, and the stable nulls-last comparator used
//     to refine a fetched page.
//
//   - Package engine composes those pieces into a Session: per-screen sort
//     and page state, the query pipeline, and a watch loop that recomputes
//     the result on every store mutation.
//
// Package docstore ships an in-memory implementation of Collection with
// declared indexes, soft deletes and change notification, suitable for
// tests and for single-tenant embedded use.
package livequery
