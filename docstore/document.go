package docstore

import (
	"maps"
	"time"
)

// System fields maintained by the store on every document.
const (
	FieldID        = "_id"
	FieldCreatedAt = "created_at"
	FieldUpdatedAt = "updated_at"
	FieldDeletedAt = "deleted_at"
)

// Document is a schema-flexible record: a flat map of field names to
// values. The store owns the system fields; everything else belongs to the
// caller.
type Document map[string]any

// ID returns the document's primary key, or "" if unset.
func (d Document) ID() string {
	id, _ := d[FieldID].(string)
	return id
}

// Field returns the named field value, or nil when absent.
func (d Document) Field(name string) any {
	return d[name]
}

// CreatedAt returns the creation timestamp stamped by the store.
func (d Document) CreatedAt() time.Time {
	t, _ := d[FieldCreatedAt].(time.Time)
	return t
}

// UpdatedAt returns the last-write timestamp stamped by the store.
func (d Document) UpdatedAt() time.Time {
	t, _ := d[FieldUpdatedAt].(time.Time)
	return t
}

// Deleted reports whether the document is soft-deleted.
func (d Document) Deleted() bool {
	v, ok := d[FieldDeletedAt]
	return ok && v != nil
}

// Clone returns a shallow copy. Field values are treated as immutable by
// convention; replace them rather than mutating in place.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	return maps.Clone(d)
}

// Field is a livequery.FieldFunc for documents.
func Field(d Document, name string) any {
	return d.Field(name)
}

// NotDeleted is a livequery.FilterFunc excluding soft-deleted documents.
func NotDeleted(d Document) bool {
	return !d.Deleted()
}
