package docstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/friendsofgo/errors"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/xeipuuv/gojsonschema"

	"github.com/perch-erp/livequery-go"
)

// Collection is one named set of documents. It implements
// livequery.Collection[Document].
//
// Reads return defensive copies; callers never observe each other's
// mutations through shared maps.
type Collection struct {
	store     *Store
	name      string
	schema    livequery.Schema
	validator *gojsonschema.Schema
	clock     func() time.Time

	mu          sync.RWMutex
	docs        map[string]Document
	watchers    map[int]*watcher
	nextWatcher int
}

var _ livequery.Collection[Document] = (*Collection)(nil)

// Name returns the collection name.
func (c *Collection) Name() string {
	return c.name
}

// Schema returns the declared index surface.
func (c *Collection) Schema() livequery.Schema {
	return c.schema
}

// Insert stores a new document. A missing _id is assigned a UUID;
// created_at and updated_at are stamped by the store. The stored document
// is returned.
func (c *Collection) Insert(ctx context.Context, doc Document) (Document, error) {
	if err := c.usable(ctx); err != nil {
		return nil, err
	}

	stored := doc.Clone()
	if stored == nil {
		stored = Document{}
	}
	if stored.ID() == "" {
		stored[FieldID] = uuid.NewString()
	}
	now := c.clock()
	stored[FieldCreatedAt] = now
	stored[FieldUpdatedAt] = now

	if err := c.validate(stored); err != nil {
		return nil, err
	}

	c.mu.Lock()
	if _, exists := c.docs[stored.ID()]; exists {
		c.mu.Unlock()
		return nil, errors.Errorf("document %q already exists in %q", stored.ID(), c.name)
	}
	c.docs[stored.ID()] = stored
	c.mu.Unlock()

	c.notify(livequery.ChangeEvent{Collection: c.name, ID: stored.ID(), Kind: livequery.ChangeCreated})
	return stored.Clone(), nil
}

// Get returns the document with the given id, soft-deleted or not.
func (c *Collection) Get(ctx context.Context, id string) (Document, error) {
	if err := c.usable(ctx); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	doc, ok := c.docs[id]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "%q in %q", id, c.name)
	}
	return doc.Clone(), nil
}

// Update merges fields into an existing document (patch semantics) and
// stamps updated_at. The _id and created_at fields cannot be changed.
func (c *Collection) Update(ctx context.Context, id string, fields Document) (Document, error) {
	if err := c.usable(ctx); err != nil {
		return nil, err
	}

	c.mu.Lock()
	current, ok := c.docs[id]
	if !ok {
		c.mu.Unlock()
		return nil, errors.Wrapf(ErrNotFound, "%q in %q", id, c.name)
	}

	merged := current.Clone()
	for k, v := range fields {
		if k == FieldID || k == FieldCreatedAt {
			continue
		}
		merged[k] = v
	}
	merged[FieldUpdatedAt] = c.clock()

	if err := c.validate(merged); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	c.docs[id] = merged
	c.mu.Unlock()

	c.notify(livequery.ChangeEvent{Collection: c.name, ID: id, Kind: livequery.ChangeUpdated})
	return merged.Clone(), nil
}

// SoftDelete marks a document as logically removed. It stays in the
// collection (recoverable with Restore) but default listings exclude it.
func (c *Collection) SoftDelete(ctx context.Context, id string) error {
	if err := c.usable(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	current, ok := c.docs[id]
	if !ok {
		c.mu.Unlock()
		return errors.Wrapf(ErrNotFound, "%q in %q", id, c.name)
	}
	updated := current.Clone()
	now := c.clock()
	updated[FieldDeletedAt] = now
	updated[FieldUpdatedAt] = now
	c.docs[id] = updated
	c.mu.Unlock()

	c.notify(livequery.ChangeEvent{Collection: c.name, ID: id, Kind: livequery.ChangeDeleted})
	return nil
}

// Restore clears a document's soft-delete marker.
func (c *Collection) Restore(ctx context.Context, id string) error {
	if err := c.usable(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	current, ok := c.docs[id]
	if !ok {
		c.mu.Unlock()
		return errors.Wrapf(ErrNotFound, "%q in %q", id, c.name)
	}
	updated := current.Clone()
	delete(updated, FieldDeletedAt)
	updated[FieldUpdatedAt] = c.clock()
	c.docs[id] = updated
	c.mu.Unlock()

	c.notify(livequery.ChangeEvent{Collection: c.name, ID: id, Kind: livequery.ChangeUpdated})
	return nil
}

// Fetch implements livequery.Collection: an ordered, filtered scan with
// offset/limit. The order field must be part of the declared schema;
// ordering on anything else would force a full sort per page and is
// rejected so callers route requests through Schema.SafeSortField.
func (c *Collection) Fetch(ctx context.Context, params livequery.FetchParams[Document]) ([]Document, error) {
	if err := c.usable(ctx); err != nil {
		return nil, err
	}

	if _, ok := c.schema.SortableFields()[params.OrderBy.Field]; !ok {
		return nil, errors.Errorf("field %q is not indexed in collection %q", params.OrderBy.Field, c.name)
	}

	matched := c.snapshot(params.Filter)

	// Ties on the order field break by _id so pages are deterministic.
	spec := livequery.SortSpec{params.OrderBy}
	if params.OrderBy.Field != FieldID {
		spec = append(spec, livequery.Sort{Field: FieldID})
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return livequery.CompareRecords(spec, Field, matched[i], matched[j]) < 0
	})

	if params.Offset > 0 {
		if params.Offset >= len(matched) {
			return []Document{}, nil
		}
		matched = matched[params.Offset:]
	}
	if params.Limit > 0 && params.Limit < len(matched) {
		matched = matched[:params.Limit]
	}

	return lo.Map(matched, func(doc Document, _ int) Document {
		return doc.Clone()
	}), nil
}

// Count implements livequery.Collection: the exact number of documents
// matching filter. The predicate is opaque, so this is always a full scan.
func (c *Collection) Count(ctx context.Context, filter livequery.FilterFunc[Document]) (int64, error) {
	if err := c.usable(ctx); err != nil {
		return 0, err
	}
	return int64(len(c.snapshot(filter))), nil
}

// snapshot collects the documents passing filter under the read lock.
func (c *Collection) snapshot(filter livequery.FilterFunc[Document]) []Document {
	c.mu.RLock()
	defer c.mu.RUnlock()

	all := lo.Values(c.docs)
	if filter == nil {
		return all
	}
	return lo.Filter(all, func(doc Document, _ int) bool {
		return filter(doc)
	})
}

// usable verifies the context and the store are still live.
func (c *Collection) usable(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.store.isClosed() {
		return errors.Wrapf(livequery.ErrStorageUnavailable, "collection %q: store is closed", c.name)
	}
	return nil
}

// validate applies the collection's JSON Schema, when one is attached.
func (c *Collection) validate(doc Document) error {
	if c.validator == nil {
		return nil
	}

	result, err := c.validator.Validate(gojsonschema.NewGoLoader(map[string]any(doc)))
	if err != nil {
		return errors.Wrapf(err, "validate document in %q", c.name)
	}
	if result.Valid() {
		return nil
	}

	details := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		details = append(details, desc.String())
	}
	return errors.Wrap(ErrInvalidDocument, strings.Join(details, "; "))
}
