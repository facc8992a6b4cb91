package docstore

import (
	"context"

	"github.com/friendsofgo/errors"

	"github.com/perch-erp/livequery-go"
)

// watchBuffer is the per-watcher event buffer. A full buffer drops events:
// watchers recompute from the store on any event, so a dropped event is
// coalesced into the one already queued, never lost semantically.
const watchBuffer = 32

// watcher pairs an event channel with a done signal so its cleanup
// goroutine exits on store close as well as on context cancellation.
type watcher struct {
	events chan livequery.ChangeEvent
	done   chan struct{}
}

// Watch implements livequery.Collection. The returned channel receives an
// event for every mutation of this collection and is closed when ctx is
// done or the store closes.
func (c *Collection) Watch(ctx context.Context) (<-chan livequery.ChangeEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.store.isClosed() {
		return nil, errors.Wrapf(livequery.ErrStorageUnavailable, "collection %q: store is closed", c.name)
	}

	w := &watcher{
		events: make(chan livequery.ChangeEvent, watchBuffer),
		done:   make(chan struct{}),
	}

	c.mu.Lock()
	id := c.nextWatcher
	c.nextWatcher++
	c.watchers[id] = w
	c.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			c.mu.Lock()
			if _, ok := c.watchers[id]; ok {
				delete(c.watchers, id)
				close(w.events)
			}
			c.mu.Unlock()
		case <-w.done:
			// Store closed; closeWatchers already tore the channel down.
		}
	}()

	return w.events, nil
}

// notify fans an event out to every watcher without blocking writers.
func (c *Collection) notify(event livequery.ChangeEvent) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, w := range c.watchers {
		select {
		case w.events <- event:
		default:
		}
	}
}

// closeWatchers tears down every watcher channel. Called by Store.Close.
func (c *Collection) closeWatchers() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, w := range c.watchers {
		delete(c.watchers, id)
		close(w.events)
		close(w.done)
	}
}
