// Package coherence keeps the ranking view consistent with the customer
// store under concurrency.
//
// SCALABILITY STRATEGY:
// Rebuilding the view on every single update is expensive (O(N log N)). This
// controller debounces rebuilds: each update restarts a quiet-period timer,
// and any number of pending updates are coalesced into the single rebuild
// that runs when it expires. The staleness ceiling only starts a rebuild at
// once when an update dirties a clean view long after the last rebuild; it
// does not cut short a stream of updates that keeps restarting the timer.
// A query that arrives while the
// view is dirty always forces an on-demand rebuild first, so the debounce
// window never lets a caller observe a stale view for its own update.
package coherence

import (
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"rankboard/internal/customerstore"
	"rankboard/internal/metrics"
	"rankboard/internal/ranking"
)

// DefaultDebounce is how long the controller waits for more updates to
// arrive before rebuilding.
const DefaultDebounce = 100 * time.Millisecond

// DefaultCeiling is the staleness ceiling: when an update dirties a clean
// view and at least this long has passed since the last completed rebuild,
// the rebuild starts immediately instead of waiting for the debounce.
// Updates that arrive while the view is already dirty only restart the
// debounce timer, so the ceiling does not bound how long a dirty view waits
// for a background rebuild.
const DefaultCeiling = 500 * time.Millisecond

// Controller owns the dirty flag and the currently published view. A zero
// Controller is not usable; construct one with New.
type Controller struct {
	store *customerstore.Store

	debounce time.Duration
	ceiling  time.Duration

	mu          sync.Mutex
	dirty       bool
	lastRebuilt time.Time
	timer       *time.Timer

	published atomicView
	group     singleflight.Group

	rebuildCount int64
}

// atomicView wraps an atomic.Value to avoid exposing the any-typed Load
// result at every call site.
type atomicView struct {
	v atomic.Value
}

func (a *atomicView) store(v *ranking.View) {
	a.v.Store(v)
}

func (a *atomicView) load() *ranking.View {
	return a.v.Load().(*ranking.View)
}

func newController(store *customerstore.Store, debounce, ceiling time.Duration) *Controller {
	c := &Controller{
		store:    store,
		debounce: debounce,
		ceiling:  ceiling,
	}
	c.published.store(ranking.Empty())
	return c
}

// New creates a Controller over store using the default debounce and
// ceiling durations.
func New(store *customerstore.Store) *Controller {
	return newController(store, DefaultDebounce, DefaultCeiling)
}

// NewWithTiming creates a Controller with an explicit debounce delay and
// forced-rebuild ceiling, for hosts that want to tune the staleness
// trade-off via configuration.
func NewWithTiming(store *customerstore.Store, debounce, ceiling time.Duration) *Controller {
	return newController(store, debounce, ceiling)
}

// NoteUpdate must be called after every successful ApplyDelta. It marks the
// published view stale and schedules a debounced rebuild; it never blocks
// on the rebuild itself, even when the staleness ceiling forces an
// immediate rebuild.
func (c *Controller) NoteUpdate() {
	c.mu.Lock()
	wasDirty := c.dirty
	c.dirty = true
	forceNow := !wasDirty && c.ceiling > 0 && time.Since(c.lastRebuilt) >= c.ceiling
	if !forceNow {
		if c.timer != nil {
			c.timer.Stop()
		}
		c.timer = time.AfterFunc(c.debounce, c.rebuildAsync)
	}
	c.mu.Unlock()

	if forceNow {
		go c.rebuildAsync()
	}
}

// rebuildAsync runs from the debounce timer or from NoteUpdate's
// ceiling-forced path; it ignores the result since
// note_update never surfaces a rebuild error (rebuilds are infallible).
func (c *Controller) rebuildAsync() {
	_, _, _ = c.group.Do("rebuild", func() (interface{}, error) {
		c.rebuildIfDirty()
		return nil, nil
	})
}

// rebuildIfDirty performs a rebuild only if the flag is still set, clearing
// it before releasing the mutex so a racing NoteUpdate is never lost.
func (c *Controller) rebuildIfDirty() {
	c.mu.Lock()
	if !c.dirty {
		c.mu.Unlock()
		return
	}
	c.dirty = false
	c.mu.Unlock()

	started := time.Now()
	v := ranking.Build(c.store)
	elapsed := time.Since(started)

	c.mu.Lock()
	c.lastRebuilt = time.Now()
	c.rebuildCount++
	c.mu.Unlock()

	c.published.store(v)
	metrics.ObserveRebuild(elapsed)
	metrics.SetLiveCustomers(v.Size())
}

// GetView returns a view that reflects at least every update that completed
// before this call began. If the view is clean it is returned immediately
// with no locking beyond the brief flag check. If dirty, this call joins or
// starts a rebuild via the single-flight guard, then rechecks the flag: a
// joined rebuild may have started before a concurrent update re-dirtied the
// view, so one join is not sufficient on its own — the loop keeps rebuilding
// until a rebuild completes with nothing left dirty behind it.
func (c *Controller) GetView() *ranking.View {
	for {
		c.mu.Lock()
		dirty := c.dirty
		c.mu.Unlock()

		if !dirty {
			return c.published.load()
		}

		c.group.Do("rebuild", func() (interface{}, error) {
			c.rebuildIfDirty()
			return nil, nil
		})
	}
}

// RebuildCount returns how many rebuilds have completed, for metrics.
func (c *Controller) RebuildCount() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rebuildCount
}
