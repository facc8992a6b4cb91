// Package docstore implements a small in-memory, schema-flexible document
// store: named collections with declared indexes, soft deletes, optional
// JSON Schema validation on write, and per-collection change notification.
//
// It implements the livequery.Collection contract, making it both the
// reference storage backend for the query engine and a usable embedded
// store for bounded, single-tenant datasets (thousands of rows, not
// millions). Persistence to disk is out of scope.
package docstore

import (
	"sync"
	"time"

	"github.com/friendsofgo/errors"
	"github.com/xeipuuv/gojsonschema"

	"github.com/perch-erp/livequery-go"
)

// ErrNotFound is returned when a document id does not exist in a
// collection (or only exists soft-deleted, for operations that exclude
// those).
var ErrNotFound = errors.New("document not found")

// ErrInvalidDocument is returned when a write does not satisfy the
// collection's JSON Schema.
var ErrInvalidDocument = errors.New("document does not match collection schema")

// Store is an in-memory document database: a set of named collections.
// All methods are safe for concurrent use.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*Collection
	closed      bool
}

// New creates an empty store.
func New() *Store {
	return &Store{
		collections: make(map[string]*Collection),
	}
}

// CollectionOption configures a collection at creation time.
type CollectionOption func(*Collection) error

// WithSchema declares the collection's index surface. Without it the
// collection can only be ordered on the default system fields.
func WithSchema(schema livequery.Schema) CollectionOption {
	return func(c *Collection) error {
		c.schema = schema
		return nil
	}
}

// WithValidation attaches a JSON Schema, applied to every insert and
// update. Documents failing validation are rejected with
// ErrInvalidDocument.
func WithValidation(jsonSchema string) CollectionOption {
	return func(c *Collection) error {
		compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(jsonSchema))
		if err != nil {
			return errors.Wrapf(err, "compile schema for collection %q", c.name)
		}
		c.validator = compiled
		return nil
	}
}

// WithClock overrides the timestamp source. Intended for tests that need
// deterministic created_at/updated_at values.
func WithClock(clock func() time.Time) CollectionOption {
	return func(c *Collection) error {
		if clock != nil {
			c.clock = clock
		}
		return nil
	}
}

// Collection opens the named collection, creating it on first use.
// Options apply only at creation; reopening an existing collection returns
// the same handle and ignores them.
func (s *Store) Collection(name string, opts ...CollectionOption) (*Collection, error) {
	if name == "" {
		return nil, errors.New("collection name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, errors.Wrap(livequery.ErrStorageUnavailable, "store is closed")
	}

	if existing, ok := s.collections[name]; ok {
		return existing, nil
	}

	c := &Collection{
		store:    s,
		name:     name,
		clock:    time.Now,
		docs:     make(map[string]Document),
		watchers: make(map[int]*watcher),
	}
	// Default schema: orderable on the system fields every document carries.
	c.schema = livequery.Schema{
		PrimaryKey: []string{FieldID},
		Indexes:    [][]string{{FieldCreatedAt}, {FieldUpdatedAt}},
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if len(c.schema.PrimaryKey) == 0 {
		c.schema.PrimaryKey = []string{FieldID}
	}

	s.collections[name] = c
	return c, nil
}

// Close shuts the store down. All collection handles become unusable and
// every watcher channel is closed.
func (s *Store) Close() {
	s.mu.Lock()
	collections := make([]*Collection, 0, len(s.collections))
	if !s.closed {
		s.closed = true
		for _, c := range s.collections {
			collections = append(collections, c)
		}
	}
	s.mu.Unlock()

	for _, c := range collections {
		c.closeWatchers()
	}
}

// isClosed reports whether the store has been closed.
func (s *Store) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}
