package querycache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/tickdone/tickdone/internal/task"
	"github.com/tickdone/tickdone/pkg/panicerr"
)

const (
	// DefaultStaleAfter is the freshness window: younger entries are served
	// without touching the network.
	DefaultStaleAfter = 30 * time.Second
	// DefaultEvictAfter is the inactivity window after which an unused
	// entry is dropped from memory.
	DefaultEvictAfter = 300 * time.Second

	listKeyPrefix   = "tasks/list?"
	detailKeyPrefix = "tasks/detail/"
)

// API is the access-layer surface the cache wraps.
type API interface {
	ListTasks(ctx context.Context, q task.Query) (*task.List, error)
	GetTask(ctx context.Context, id string) (*task.Task, error)
	CreateTask(ctx context.Context, tc task.Create) (*task.Task, error)
	UpdateTask(ctx context.Context, id string, tu task.Update) (*task.Task, error)
	DeleteTask(ctx context.Context, id string) (*task.Task, error)
}

type entry struct {
	value      any
	fetchedAt  time.Time
	lastAccess time.Time
	refreshing bool
}

// Queries caches read results keyed by a canonical serialization of
// (operation, parameters). A stale entry is served immediately while a
// single background refresh per key re-issues the fetch; mutations
// overwrite or invalidate exactly the keys they affect.
type Queries struct {
	api        API
	staleAfter time.Duration
	evictAfter time.Duration
	now        func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
	// version is bumped on every invalidation; a background refresh that
	// started before the bump discards its result instead of reinserting
	// data that may predate the mutation.
	version uint64

	wg conc.WaitGroup
}

type Option func(*Queries)

func WithStaleAfter(d time.Duration) Option {
	return func(c *Queries) {
		c.staleAfter = d
	}
}

func WithEvictAfter(d time.Duration) Option {
	return func(c *Queries) {
		c.evictAfter = d
	}
}

// WithClock injects the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(c *Queries) {
		c.now = now
	}
}

func NewQueries(api API, opts ...Option) *Queries {
	c := &Queries{
		api:        api,
		staleAfter: DefaultStaleAfter,
		evictAfter: DefaultEvictAfter,
		now:        time.Now,
		entries:    map[string]*entry{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close waits for outstanding background refreshes to finish.
func (c *Queries) Close() {
	c.wg.Wait()
}

func listKey(q task.Query) string {
	return listKeyPrefix + q.Key()
}

func detailKey(id string) string {
	return detailKeyPrefix + id
}

// Tasks returns the cached list for the query, fetching or refreshing as
// the entry's age requires.
func (c *Queries) Tasks(ctx context.Context, q task.Query) (*task.List, error) {
	v, err := c.read(ctx, listKey(q), func(ctx context.Context) (any, error) {
		return c.api.ListTasks(ctx, q)
	})
	if err != nil {
		return nil, err
	}
	return v.(*task.List), nil
}

// Task returns the cached task for the id. An empty id skips the read
// entirely and returns nil.
func (c *Queries) Task(ctx context.Context, id string) (*task.Task, error) {
	if id == "" {
		return nil, nil
	}
	v, err := c.read(ctx, detailKey(id), func(ctx context.Context) (any, error) {
		return c.api.GetTask(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return v.(*task.Task), nil
}

// CreateTask creates a task. On success every cached list is invalidated
// (the new task may belong to any of them) and the detail cache for the new
// id is seeded from the response.
func (c *Queries) CreateTask(ctx context.Context, tc task.Create) (*task.Task, error) {
	t, err := c.api.CreateTask(ctx, tc)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.invalidateListsLocked()
	c.seedLocked(detailKey(t.ID), t)
	c.mu.Unlock()
	return t, nil
}

// UpdateTask applies a partial update. On success the detail cache is
// overwritten from the response and every cached list is invalidated, since
// a changed task may now match or fail to match outstanding filters.
func (c *Queries) UpdateTask(ctx context.Context, id string, tu task.Update) (*task.Task, error) {
	t, err := c.api.UpdateTask(ctx, id, tu)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.invalidateListsLocked()
	c.seedLocked(detailKey(t.ID), t)
	c.mu.Unlock()
	return t, nil
}

// DeleteTask deletes a task. On success the detail entry for the id is
// removed and every cached list is invalidated.
func (c *Queries) DeleteTask(ctx context.Context, id string) (*task.Task, error) {
	t, err := c.api.DeleteTask(ctx, id)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.invalidateListsLocked()
	delete(c.entries, detailKey(id))
	c.version++
	c.mu.Unlock()
	return t, nil
}

type fetchFunc func(ctx context.Context) (any, error)

func (c *Queries) read(ctx context.Context, key string, fetch fetchFunc) (any, error) {
	now := c.now()

	c.mu.Lock()
	c.evictIdleLocked(now)
	if e, ok := c.entries[key]; ok {
		e.lastAccess = now
		value := e.value
		if now.Sub(e.fetchedAt) >= c.staleAfter && !e.refreshing {
			e.refreshing = true
			version := c.version
			// The refresh must outlive the triggering call.
			bgCtx := context.WithoutCancel(ctx)
			c.wg.Go(func() {
				_ = panicerr.Safe(func() error {
					return c.refresh(bgCtx, key, version, fetch)
				})()
			})
		}
		c.mu.Unlock()
		return value, nil
	}
	c.mu.Unlock()

	value, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.seedLocked(key, value)
	c.mu.Unlock()
	return value, nil
}

func (c *Queries) refresh(ctx context.Context, key string, version uint64, fetch fetchFunc) error {
	value, err := fetch(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if ok {
		e.refreshing = false
	}
	if err != nil {
		// Keep serving the last good value.
		return err
	}
	if c.version != version {
		// The key was invalidated while the refresh was in flight; this
		// result may predate the mutation, so drop it.
		return nil
	}
	if !ok {
		return nil
	}
	e.value = value
	e.fetchedAt = c.now()
	return nil
}

func (c *Queries) seedLocked(key string, value any) {
	now := c.now()
	c.entries[key] = &entry{
		value:      value,
		fetchedAt:  now,
		lastAccess: now,
	}
}

func (c *Queries) invalidateListsLocked() {
	for key := range c.entries {
		if strings.HasPrefix(key, listKeyPrefix) {
			delete(c.entries, key)
		}
	}
	c.version++
}

func (c *Queries) evictIdleLocked(now time.Time) {
	for key, e := range c.entries {
		if now.Sub(e.lastAccess) >= c.evictAfter {
			delete(c.entries, key)
		}
	}
}
