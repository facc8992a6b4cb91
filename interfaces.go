package livequery

import "context"

// FilterFunc is an opaque boolean predicate over a single record.
//
// Predicates are black boxes to the engine and the store: they can never be
// pushed into an index, so counting always evaluates them over the full
// collection. A nil FilterFunc matches everything.
type FilterFunc[T any] func(record T) bool

// FieldFunc extracts a named field value from a record. It is how the
// engine reads sort keys and soft-delete markers without reflecting over
// live records. Unknown fields should yield nil, which the comparator
// treats as null (sorted last).
type FieldFunc[T any] func(record T, field string) any

// FetchParams contains all parameters needed to fetch one page of data.
type FetchParams[T any] struct {
	// OrderBy is the indexed field driving the ordered scan, with its
	// direction. The field must be declared in the collection's Schema;
	// resolve requests through Schema.SafeSortField first.
	OrderBy Sort

	// Filter is the combined predicate applied during the scan.
	// Nil matches every record.
	Filter FilterFunc[T]

	// Offset is the number of matching records to skip.
	Offset int

	// Limit is the maximum number of records to return. Non-positive
	// means no limit.
	Limit int
}

// ChangeKind classifies a collection mutation.
type ChangeKind string

const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
	ChangeDeleted ChangeKind = "deleted"
)

// ChangeEvent describes a single mutation of a watched collection.
// Watchers typically only care that something changed; the fields exist
// for logging and selective invalidation.
type ChangeEvent struct {
	Collection string
	ID         string
	Kind       ChangeKind
}

// Collection abstracts an open handle on one named collection of an
// embedded document store. It is the full storage surface the query engine
// consumes: schema introspection, an ordered filtered scan, an exact
// count, and change notification.
//
// Implementations must treat the handle as read-only from the engine's
// perspective; all mutation happens through other collaborators.
//
// Type parameter T is the record type (e.g. docstore.Document, or a domain
// struct for stores that decode into one).
type Collection[T any] interface {
	// Name returns the collection name.
	Name() string

	// Schema returns the declared index surface. It must be stable for
	// the lifetime of the handle.
	Schema() Schema

	// Fetch returns one slice of records ordered by params.OrderBy,
	// filtered by params.Filter, skipping params.Offset matches and
	// returning at most params.Limit.
	Fetch(ctx context.Context, params FetchParams[T]) ([]T, error)

	// Count returns the exact number of records matching filter across
	// the whole collection.
	Count(ctx context.Context, filter FilterFunc[T]) (int64, error)

	// Watch returns a channel of mutation events for this collection.
	// The channel is closed when ctx is done. Events may be coalesced
	// under load; receivers must not rely on one event per write.
	Watch(ctx context.Context) (<-chan ChangeEvent, error)
}
