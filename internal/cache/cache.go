package cache

import (
	"context"
	"sync"
	"time"
)

// FetchFunc produces the raw value for a cache key. It runs outside the
// cache lock and at most once per key at any time.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Cache is a single-flight TTL cache for one response shape. Concurrent
// Fetch calls for the same key collapse to one physical fetch; calls for
// different keys proceed in parallel. Entries are evicted on expiry and on
// fetch failure; a failure is never cached.
type Cache[T any] struct {
	mu      sync.Mutex
	entries map[string]*entry[T]
	now     func() time.Time
}

type entry[T any] struct {
	done     chan struct{} // closed once the fetch settles
	value    T
	err      error
	ready    bool
	storedAt time.Time
}

func New[T any]() *Cache[T] {
	return &Cache[T]{
		entries: make(map[string]*entry[T]),
		now:     time.Now,
	}
}

// Fetch returns the cached value for key when it is younger than ttl,
// otherwise fetches it. A non-positive ttl treats every ready entry as
// stale while still sharing an in-flight fetch. post is applied once per
// physical fetch, before the value is stored; cache hits never re-run it.
//
// When another caller already owns the fetch for key, Fetch waits for that
// shared outcome; ctx cancellation abandons the wait for this caller only.
func (c *Cache[T]) Fetch(ctx context.Context, key string, ttl time.Duration, fetch FetchFunc[T], post func(T) T) (T, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		if !e.ready {
			c.mu.Unlock()
			return c.await(ctx, e)
		}
		if ttl > 0 && c.now().Sub(e.storedAt) < ttl {
			v := e.value
			c.mu.Unlock()
			return v, nil
		}
		delete(c.entries, key) // expired
	}

	// Insert the in-flight entry before any suspension so late arrivals
	// join this fetch instead of starting their own.
	e := &entry[T]{done: make(chan struct{})}
	c.entries[key] = e
	c.mu.Unlock()

	v, err := fetch(ctx)
	if err == nil && post != nil {
		v = post(v)
	}

	c.mu.Lock()
	if err != nil {
		delete(c.entries, key)
		e.err = err
	} else {
		e.value = v
		e.ready = true
		e.storedAt = c.now()
	}
	c.mu.Unlock()
	close(e.done)

	if err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

func (c *Cache[T]) await(ctx context.Context, e *entry[T]) (T, error) {
	select {
	case <-e.done:
		if e.err != nil {
			var zero T
			return zero, e.err
		}
		return e.value, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Len reports the number of live entries, ready or in-flight.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
