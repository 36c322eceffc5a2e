package cache

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

type entry[V any] struct {
	value V
	err   error
}

// Memo memoizes the outcome of a keyed computation, errors included.
// Concurrent calls for the same key share one computation; later calls
// return the stored outcome without recomputing.
//
// The zero value is ready to use.
type Memo[V any] struct {
	mu     sync.Mutex
	done   map[string]entry[V]
	group  singleflight.Group
	misses int
}

// Do returns the memoized outcome for key, computing it with fn on first use.
func (m *Memo[V]) Do(key string, fn func() (V, error)) (V, error) {
	if e, ok := m.lookup(key); ok {
		return e.value, e.err
	}

	v, err, _ := m.group.Do(key, func() (any, error) {
		// A caller that lost the race to singleflight may arrive after the
		// winner stored the outcome.
		if e, ok := m.lookup(key); ok {
			return e.value, e.err
		}
		value, err := fn()
		m.mu.Lock()
		if m.done == nil {
			m.done = make(map[string]entry[V])
		}
		m.done[key] = entry[V]{value: value, err: err}
		m.misses++
		m.mu.Unlock()
		return value, err
	})
	value, _ := v.(V)
	return value, err
}

// Get returns a stored outcome without computing anything.
func (m *Memo[V]) Get(key string) (V, error, bool) {
	e, ok := m.lookup(key)
	return e.value, e.err, ok
}

// Len returns the number of stored keys.
func (m *Memo[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.done)
}

// Computations returns how many times a computation actually ran.
func (m *Memo[V]) Computations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.misses
}

func (m *Memo[V]) lookup(key string) (entry[V], bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.done[key]
	return e, ok
}
