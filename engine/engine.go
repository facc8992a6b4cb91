// Package engine composes the livequery building blocks into a reactive
// list-query session: per-screen sort and page state, the query pipeline
// (safe sort key, combined predicate, count, slice, in-page refinement,
// page clamp), and a watch loop that recomputes the published result on
// every store mutation.
//
// One Session backs one list screen. All state a screen owns (its sort
// spec and current page) lives in the Session; nothing is global.
//
// Example usage:
//
//	session, _ := engine.New(engine.Config[docstore.Document]{
//	    Collection: orders,
//	    Field:      docstore.Field,
//	    PageSize:   25,
//	})
//	go session.Run(ctx)
//	for snap := range session.Updates() {
//	    render(snap)
//	}
package engine

import (
	"context"
	"sync"

	"github.com/friendsofgo/errors"

	"github.com/perch-erp/livequery-go"
)

// deletedField is the soft-delete marker consulted by the default
// Config.Deleted test.
const deletedField = "deleted_at"

// Config configures a Session.
type Config[T any] struct {
	// Collection is the open store handle to query. Required.
	Collection livequery.Collection[T]

	// Field extracts named field values from records, for the in-page
	// refinement sort and the default soft-delete test. Required.
	Field livequery.FieldFunc[T]

	// DefaultSort orders the listing before the user picks a column.
	// A zero value means created_at descending (most recent first).
	DefaultSort livequery.Sort

	// PageSize is the fixed page size for this screen.
	// Non-positive means livequery.DefaultPageSize; values above
	// MaxPageSize are capped.
	PageSize int

	// MaxPageSize caps PageSize. Non-positive means
	// livequery.DefaultMaxPageSize.
	MaxPageSize int

	// IncludeDeleted keeps soft-deleted records in the listing.
	IncludeDeleted bool

	// Filter is the screen's initial predicate. Changeable later via
	// SetFilter. Nil matches everything.
	Filter livequery.FilterFunc[T]

	// Deleted reports whether a record is soft-deleted. Nil defaults to
	// checking the deleted_at field through Field.
	Deleted livequery.FilterFunc[T]
}

// Snapshot is one published result of the pipeline: the page data plus
// everything a screen needs to render pagination and sort controls.
type Snapshot[T any] struct {
	// Data is the current page, at most PageSize records.
	Data []T

	// TotalItems is the exact match count of the combined predicate at
	// query time.
	TotalItems int

	// TotalPages is ceil(TotalItems / PageSize); zero for an empty result.
	TotalPages int

	// CurrentPage is the clamped one-based page number.
	CurrentPage int

	// SortState is the sort spec this snapshot was computed under.
	SortState livequery.SortSpec

	// Loading is true before the first result lands and while storage is
	// unavailable. A loading snapshot always carries empty Data.
	Loading bool
}

// Session owns the state and pipeline of one list screen.
//
// Controls (RequestSort, SetPage, SetFilter) may be called from any
// goroutine. Recomputes triggered while a previous one is still in flight
// supersede it: the stale result is discarded, never published over a
// newer one.
type Session[T any] struct {
	cfg  Config[T]
	size int

	mu      sync.Mutex
	sort    livequery.SortSpec
	page    int
	filter  livequery.FilterFunc[T]
	last    Snapshot[T]
	gen     uint64
	cancel  context.CancelFunc
	base    context.Context
	updates chan Snapshot[T]
	closed  bool
}

// New validates the config and creates an idle Session. The session does
// not touch the store until Run or Refresh is called; until then its
// snapshot is a loading placeholder.
func New[T any](cfg Config[T]) (*Session[T], error) {
	if cfg.Collection == nil {
		return nil, errors.New("engine: Collection is required")
	}
	if cfg.Field == nil {
		return nil, errors.New("engine: Field extractor is required")
	}
	if cfg.DefaultSort.Field == "" {
		cfg.DefaultSort = livequery.Sort{Field: livequery.FallbackCreatedAt, Desc: true}
	}

	size := livequery.NewPageConfig().
		WithMaxSize(cfg.MaxPageSize).
		EffectiveSize(livequery.PageArgs{Size: cfg.PageSize})

	s := &Session[T]{
		cfg:     cfg,
		size:    size,
		page:    1,
		filter:  cfg.Filter,
		updates: make(chan Snapshot[T], 1),
	}
	s.last = Snapshot[T]{CurrentPage: 1, Loading: true}
	return s, nil
}

// RequestSort applies a column-header click. appendMode false replaces the
// sort; true stacks up to livequery.MaxSortFields columns. A successful
// toggle resets the page to 1 and triggers a recompute; a no-op (stacking
// beyond the cap) changes nothing.
//
// Field names resolve through the collection schema's alias matching
// first, so a camelCase request and its snake_case declaration toggle the
// same column.
func (s *Session[T]) RequestSort(field string, appendMode bool) {
	field = s.cfg.Collection.Schema().Resolve(field)

	s.mu.Lock()
	defer s.mu.Unlock()

	next, changed := livequery.Toggle(s.sort, field, appendMode)
	if !changed {
		return
	}
	s.sort = next
	s.page = 1
	s.triggerLocked()
}

// SetPage moves to the given one-based page and triggers a recompute,
// which clamps it against the current result size.
func (s *Session[T]) SetPage(page int) {
	if page < 1 {
		page = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if page == s.page {
		return
	}
	s.page = page
	s.triggerLocked()
}

// SetFilter replaces the screen's predicate, resets the page to 1 and
// triggers a recompute. A nil filter matches everything.
func (s *Session[T]) SetFilter(filter livequery.FilterFunc[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.filter = filter
	s.page = 1
	s.triggerLocked()
}

// SortState returns a copy of the current sort spec.
func (s *Session[T]) SortState() livequery.SortSpec {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sort.Clone()
}

// CurrentPage returns the current one-based page number.
func (s *Session[T]) CurrentPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// Snapshot returns the most recently computed result.
func (s *Session[T]) Snapshot() Snapshot[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Updates returns the channel of published snapshots. The channel holds
// only the latest result: a slow consumer observes the newest state, not
// a backlog of stale pages.
func (s *Session[T]) Updates() <-chan Snapshot[T] {
	return s.updates
}

// Refresh runs the pipeline synchronously and returns the resulting
// snapshot. On storage failure it returns a loading snapshot together
// with the error; the screen stays alive either way.
func (s *Session[T]) Refresh(ctx context.Context) (Snapshot[T], error) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	in := s.inputsLocked()
	s.mu.Unlock()

	snap, err := execute(ctx, s.cfg, in)
	if err != nil {
		snap = loadingSnapshot[T](in)
	}

	s.mu.Lock()
	if gen == s.gen && !s.closed {
		s.page = snap.CurrentPage
		s.last = snap
		s.publishLocked(snap)
	}
	s.mu.Unlock()

	return snap, err
}

// Run subscribes to the collection's change feed and recomputes the
// published snapshot on every mutation. It publishes an initial snapshot
// immediately and blocks until ctx is done or the store shuts down.
//
// Losing interest is cancelling ctx: pending results are dropped with no
// side effects.
func (s *Session[T]) Run(ctx context.Context) error {
	events, err := s.cfg.Collection.Watch(ctx)
	if err != nil {
		s.mu.Lock()
		s.last = loadingSnapshot[T](s.inputsLocked())
		s.publishLocked(s.last)
		s.mu.Unlock()
		return errors.Wrap(err, "engine: watch")
	}

	s.mu.Lock()
	s.base = ctx
	s.triggerLocked()
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.cancel != nil {
			s.cancel()
			s.cancel = nil
		}
		s.base = nil
		s.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-events:
			if !ok {
				// Store closed underneath us.
				s.mu.Lock()
				s.last = loadingSnapshot[T](s.inputsLocked())
				s.publishLocked(s.last)
				s.mu.Unlock()
				return nil
			}
			s.mu.Lock()
			s.triggerLocked()
			s.mu.Unlock()
		}
	}
}

// Close detaches the session: the in-flight recompute (if any) is
// cancelled and no further snapshots are published. The Updates channel
// is left open; readers should select on it together with their own done
// signal.
func (s *Session[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// triggerLocked starts an asynchronous recompute, superseding any
// in-flight one (last-triggered-wins). Callers must hold s.mu. Before Run
// attaches a base context the session is idle and state changes simply
// accumulate.
func (s *Session[T]) triggerLocked() {
	if s.base == nil || s.closed {
		return
	}

	s.gen++
	gen := s.gen
	if s.cancel != nil {
		s.cancel()
	}
	runCtx, cancel := context.WithCancel(s.base)
	s.cancel = cancel
	in := s.inputsLocked()

	go func() {
		snap, err := execute(runCtx, s.cfg, in)
		if err != nil {
			snap = loadingSnapshot[T](in)
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if gen != s.gen || s.closed || runCtx.Err() != nil {
			// A newer recompute superseded this one; drop the result.
			return
		}
		s.page = snap.CurrentPage
		s.last = snap
		s.publishLocked(snap)
	}()
}

// publishLocked replaces whatever sits in the updates buffer with snap.
// Callers must hold s.mu.
func (s *Session[T]) publishLocked(snap Snapshot[T]) {
	for {
		select {
		case s.updates <- snap:
			return
		default:
		}
		select {
		case <-s.updates:
		default:
		}
	}
}

// inputsLocked captures the state one pipeline run needs. Callers must
// hold s.mu.
func (s *Session[T]) inputsLocked() queryInputs[T] {
	return queryInputs[T]{
		sort:   s.sort.Clone(),
		page:   s.page,
		size:   s.size,
		filter: s.filter,
	}
}
