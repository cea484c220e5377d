// Package regcache holds the per-run registry caches: team search results
// keyed by institution search variant, and team rosters keyed by team URL.
//
// Both tiers guarantee that concurrent callers requesting the same key
// observe at most one upstream fetch: the first caller performs the fetch
// and stores the result, later callers wait for that store. Entries live
// for one reconciliation run; nothing is persisted.
package regcache

import (
	"context"
	"sync"

	"meikan/internal/registry"
)

// FetchFunc loads a value for a key on cache miss.
type FetchFunc[V any] func(ctx context.Context) (V, error)

type entry[V any] struct {
	done  chan struct{}
	value V
	err   error
}

// Cache is a mutex-guarded map with single-flight fetch semantics. Fetch
// errors are cached for the run as well, so a failing key costs one round
// trip, not one per caller.
type Cache[V any] struct {
	mu      sync.Mutex
	entries map[string]*entry[V]
}

// New creates an empty cache.
func New[V any]() *Cache[V] {
	return &Cache[V]{entries: make(map[string]*entry[V])}
}

// GetOrFetch returns the cached value for key, fetching it with fetch on
// first access. Concurrent callers for the same key block until the first
// caller's fetch has been stored.
func (c *Cache[V]) GetOrFetch(ctx context.Context, key string, fetch FetchFunc[V]) (V, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		c.mu.Unlock()
		select {
		case <-e.done:
			return e.value, e.err
		case <-ctx.Done():
			var zero V
			return zero, ctx.Err()
		}
	}
	e := &entry[V]{done: make(chan struct{})}
	c.entries[key] = e
	c.mu.Unlock()

	e.value, e.err = fetch(ctx)
	close(e.done)
	return e.value, e.err
}

// Peek returns the stored value for key without fetching. It reports false
// for absent keys and keys whose fetch has not completed.
func (c *Cache[V]) Peek(key string) (V, bool) {
	c.mu.Lock()
	e, ok := c.entries[key]
	c.mu.Unlock()
	if !ok {
		var zero V
		return zero, false
	}
	select {
	case <-e.done:
		if e.err != nil {
			var zero V
			return zero, false
		}
		return e.value, true
	default:
		var zero V
		return zero, false
	}
}

// Len returns the number of keys with completed fetches.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := 0
	for _, e := range c.entries {
		select {
		case <-e.done:
			count++
		default:
		}
	}
	return count
}

// TeamSearch caches SearchTeams results for one run, keyed by the
// normalized institution search variant.
type TeamSearch = Cache[[]registry.Team]

// Roster caches FetchRoster results for one run, keyed by team URL.
type Roster = Cache[[]registry.Member]

// NewTeamSearch creates an empty team-search cache.
func NewTeamSearch() *TeamSearch { return New[[]registry.Team]() }

// NewRoster creates an empty roster cache.
func NewRoster() *Roster { return New[[]registry.Member]() }
