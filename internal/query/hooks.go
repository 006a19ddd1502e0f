package query

import (
	"context"
	"sync"
)

// Result is the observable state of a query or mutation.
type Result[T any] struct {
	Status Status
	Data   T
	Err    error
	// Superseded is set on the value returned by a Run whose outcome was
	// discarded because a newer Run started.
	Superseded bool
}

// Query tracks one consumer of a cached query, the way a view holds a
// single list or detail subscription. Each Run aborts the previous one;
// only the latest-started Run updates the result.
type Query[T any] struct {
	cache *Cache

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
	key    Key
	res    Result[T]
}

// NewQuery creates an idle query bound to c.
func NewQuery[T any](c *Cache) *Query[T] {
	return &Query[T]{cache: c, res: Result[T]{Status: StatusIdle}}
}

// Run fetches key through the cache and returns the new result. Data from
// the previous result stays visible while pending.
func (q *Query[T]) Run(ctx context.Context, key Key, fn Fetcher[T]) Result[T] {
	return q.run(ctx, key, fn, false)
}

// Refetch is Run bypassing the cached value.
func (q *Query[T]) Refetch(ctx context.Context, key Key, fn Fetcher[T]) Result[T] {
	return q.run(ctx, key, fn, true)
}

func (q *Query[T]) run(ctx context.Context, key Key, fn Fetcher[T], force bool) Result[T] {
	q.mu.Lock()
	q.seq++
	seq := q.seq
	if q.cancel != nil {
		q.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	q.cancel = cancel
	q.key = key
	q.res.Status = StatusPending
	q.res.Err = nil
	q.mu.Unlock()

	var (
		data T
		err  error
	)
	if force {
		data, err = Refetch(ctx, q.cache, key, fn)
	} else {
		data, err = Fetch(ctx, q.cache, key, fn)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if seq != q.seq {
		cancel()
		out := q.res
		out.Superseded = true
		return out
	}
	cancel()
	q.cancel = nil
	if err != nil {
		q.res = Result[T]{Status: StatusError, Data: q.res.Data, Err: err}
	} else {
		q.res = Result[T]{Status: StatusSuccess, Data: data}
	}
	return q.res
}

// Result returns the current result.
func (q *Query[T]) Result() Result[T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.res
}

// Key returns the key of the latest Run.
func (q *Query[T]) Key() Key {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.key
}

// Stop aborts an in-flight Run.
func (q *Query[T]) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.cancel != nil {
		q.cancel()
		q.cancel = nil
	}
}

// Mutation runs a write and, on success, applies its cache effects.
type Mutation[In, Out any] struct {
	cache   *Cache
	do      func(ctx context.Context, in In) (Out, error)
	effects func(in In) []Effect

	mu  sync.Mutex
	res Result[Out]
}

// NewMutation creates an idle mutation.
func NewMutation[In, Out any](c *Cache, do func(context.Context, In) (Out, error), effects func(In) []Effect) *Mutation[In, Out] {
	return &Mutation[In, Out]{cache: c, do: do, effects: effects, res: Result[Out]{Status: StatusIdle}}
}

// Run executes the write.
func (m *Mutation[In, Out]) Run(ctx context.Context, in In) Result[Out] {
	m.mu.Lock()
	m.res = Result[Out]{Status: StatusPending}
	m.mu.Unlock()

	out, err := m.do(ctx, in)

	if err == nil && m.effects != nil {
		m.cache.Apply(m.effects(in)...)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.res = Result[Out]{Status: StatusError, Err: err}
	} else {
		m.res = Result[Out]{Status: StatusSuccess, Data: out}
	}
	return m.res
}

// Result returns the current result.
func (m *Mutation[In, Out]) Result() Result[Out] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.res
}

// Reset returns the mutation to idle.
func (m *Mutation[In, Out]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.res = Result[Out]{Status: StatusIdle}
}
