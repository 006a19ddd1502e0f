package query

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/learninghub/learninghub/internal/errors"
	"golang.org/x/sync/singleflight"
)

// DefaultSize bounds the number of cached results.
const DefaultSize = 256

// maxRejoins bounds how often a waiter follows a superseded fetch to its
// replacement before giving up.
const maxRejoins = 3

// Status is the lifecycle state of a query.
type Status string

// Query states.
const (
	StatusIdle    Status = "idle"
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Observer receives cache events, typically for metrics.
type Observer interface {
	CacheHit(group string)
	CacheMiss(group string)
	FetchSuperseded(group string)
}

// Fetcher loads the value of one key.
type Fetcher[T any] func(ctx context.Context) (T, error)

type entry struct {
	key       Key
	status    Status
	data      any
	err       error
	stale     bool
	updatedAt time.Time
}

// flight is the current in-flight fetch of a key.
type flight struct {
	ctx        context.Context
	cancel     context.CancelFunc
	waiters    int
	stale      bool
	superseded bool

	done bool
	val  any
	err  error
}

// Snapshot is a read-only view of one cache entry.
type Snapshot struct {
	Status    Status
	Data      any
	Err       error
	Stale     bool
	Fetching  bool
	UpdatedAt time.Time
}

// Cache is a bounded, concurrency-safe query cache. Entries change only
// through fetches and invalidation; callers never write them directly.
type Cache struct {
	mu       sync.Mutex
	entries  *lru.Cache[string, *entry]
	flights  map[string]*flight
	group    singleflight.Group
	observer Observer
	maxAge   time.Duration
	now      func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithMaxAge makes results older than d stale, so the next read refetches
// them. Zero keeps results fresh until they are invalidated.
func WithMaxAge(d time.Duration) Option {
	return func(c *Cache) { c.maxAge = d }
}

// WithClock sets the time source used for entry ages.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// NewCache creates a cache holding at most size results.
func NewCache(size int, observer Observer, opts ...Option) (*Cache, error) {
	if size <= 0 {
		size = DefaultSize
	}
	entries, err := lru.New[string, *entry](size)
	if err != nil {
		return nil, fmt.Errorf("create lru: %w", err)
	}
	c := &Cache{
		entries:  entries,
		flights:  make(map[string]*flight),
		observer: observer,
		now:      time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// isStale reports whether e must be refetched before it is served.
// Caller holds c.mu.
func (c *Cache) isStale(e *entry) bool {
	return e.stale || (c.maxAge > 0 && c.now().Sub(e.updatedAt) >= c.maxAge)
}

// Fetch returns the cached value of key, or loads it with fn. Concurrent
// fetches of the same key share one call. A fetch superseded by a forced
// refetch or an invalidation never writes the cache; its waiters follow
// the replacement.
func Fetch[T any](ctx context.Context, c *Cache, key Key, fn Fetcher[T]) (T, error) {
	return typed[T](c.fetch(ctx, key, false, erase(fn)))
}

// Refetch is Fetch that ignores any cached value and supersedes an
// in-flight fetch of the same key.
func Refetch[T any](ctx context.Context, c *Cache, key Key, fn Fetcher[T]) (T, error) {
	return typed[T](c.fetch(ctx, key, true, erase(fn)))
}

func erase[T any](fn Fetcher[T]) func(context.Context) (any, error) {
	return func(ctx context.Context) (any, error) {
		return fn(ctx)
	}
}

func typed[T any](v any, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	if t, ok := v.(T); ok {
		return t, nil
	}
	return zero, nil
}

func (c *Cache) fetch(ctx context.Context, key Key, force bool, fn func(context.Context) (any, error)) (any, error) {
	k := key.String()

	for attempt := 0; ; attempt++ {
		c.mu.Lock()
		if !force {
			if e, ok := c.entries.Get(k); ok && e.status == StatusSuccess && !c.isStale(e) {
				c.mu.Unlock()
				c.hit(key)
				return e.data, nil
			}
		}

		f := c.flights[k]
		if f != nil && (force || f.stale) {
			c.supersede(k, key, f)
			f = nil
		}
		if f == nil {
			fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
			f = &flight{ctx: fctx, cancel: cancel}
			c.flights[k] = f
		}
		f.waiters++
		c.mu.Unlock()
		force = false

		if attempt == 0 {
			c.miss(key)
		}

		run := f
		ch := c.group.DoChan(k, func() (any, error) {
			return c.run(k, key, run, fn)
		})

		select {
		case res := <-ch:
			c.mu.Lock()
			f.waiters--
			// f may have joined a call that is not its own; once that call
			// has answered, f will never finish.
			if !f.done && c.flights[k] == f {
				delete(c.flights, k)
			}
			rejoin := f.superseded && res.Err != nil && ctx.Err() == nil
			c.mu.Unlock()
			if rejoin && attempt < maxRejoins {
				continue
			}
			return res.Val, res.Err

		case <-ctx.Done():
			c.mu.Lock()
			f.waiters--
			if f.waiters <= 0 && c.flights[k] == f {
				// Nobody is left waiting: abort the request.
				f.cancel()
				delete(c.flights, k)
				c.group.Forget(k)
			}
			c.mu.Unlock()
			return nil, errors.Network(ctx.Err())
		}
	}
}

// run executes fn for flight f and stores the outcome if f is still current.
// A waiter that joins after f finished gets f's outcome without a new call.
func (c *Cache) run(k string, key Key, f *flight, fn func(context.Context) (any, error)) (any, error) {
	c.mu.Lock()
	if f.done {
		v, err := f.val, f.err
		c.mu.Unlock()
		return v, err
	}
	c.mu.Unlock()

	v, err := fn(f.ctx)

	c.mu.Lock()
	f.done, f.val, f.err = true, v, err
	if c.flights[k] == f {
		delete(c.flights, k)
		e := &entry{key: key, data: v, err: err, stale: f.stale, updatedAt: c.now()}
		if err != nil {
			e.status = StatusError
			// Keep the last good data visible next to the error.
			if prev, ok := c.entries.Peek(k); ok && prev.status == StatusSuccess {
				e.data = prev.data
			}
		} else {
			e.status = StatusSuccess
		}
		c.entries.Add(k, e)
	}
	c.mu.Unlock()

	return v, err
}

// supersede cancels f and detaches it so its result is discarded.
// Caller holds c.mu.
func (c *Cache) supersede(k string, key Key, f *flight) {
	f.superseded = true
	f.cancel()
	delete(c.flights, k)
	c.group.Forget(k)
	if c.observer != nil {
		c.observer.FetchSuperseded(key.Group())
	}
}

func (c *Cache) hit(key Key) {
	if c.observer != nil {
		c.observer.CacheHit(key.Group())
	}
}

func (c *Cache) miss(key Key) {
	if c.observer != nil {
		c.observer.CacheMiss(key.Group())
	}
}

// Invalidate marks every entry under prefix stale. In-flight fetches under
// prefix are marked too, so their results are stored stale and the next
// read starts a fresh request.
func (c *Cache) Invalidate(prefix Key) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, k := range c.entries.Keys() {
		if e, ok := c.entries.Peek(k); ok && e.key.HasPrefix(prefix) {
			e.stale = true
			n++
		}
	}
	c.markFlights(prefix)
	return n
}

// Remove drops every entry under prefix.
func (c *Cache) Remove(prefix Key) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, k := range c.entries.Keys() {
		if e, ok := c.entries.Peek(k); ok && e.key.HasPrefix(prefix) {
			c.entries.Remove(k)
			n++
		}
	}
	c.markFlights(prefix)
	return n
}

func (c *Cache) markFlights(prefix Key) {
	p := prefix.String()
	for k, f := range c.flights {
		if k == p || hasKeyPrefix(k, p) {
			f.stale = true
		}
	}
}

func hasKeyPrefix(k, p string) bool {
	return len(k) > len(p) && k[:len(p)] == p && k[len(p)] == '\x1f'
}

// Apply runs the effects of a write.
func (c *Cache) Apply(effects ...Effect) {
	for _, e := range effects {
		switch e.Action {
		case ActionRemove:
			c.Remove(e.Key)
		default:
			c.Invalidate(e.Key)
		}
	}
}

// Peek returns the state of key without fetching.
func (c *Cache) Peek(key Key) Snapshot {
	k := key.String()
	c.mu.Lock()
	defer c.mu.Unlock()

	_, fetching := c.flights[k]
	e, ok := c.entries.Peek(k)
	if !ok {
		if fetching {
			return Snapshot{Status: StatusPending, Fetching: true}
		}
		return Snapshot{Status: StatusIdle}
	}
	return Snapshot{
		Status:    e.status,
		Data:      e.data,
		Err:       e.err,
		Stale:     c.isStale(e),
		Fetching:  fetching,
		UpdatedAt: e.updatedAt,
	}
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	return c.entries.Len()
}

// Purge drops every entry and aborts in-flight fetches.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, f := range c.flights {
		f.superseded = true
		f.cancel()
		c.group.Forget(k)
	}
	c.flights = make(map[string]*flight)
	c.entries.Purge()
}
