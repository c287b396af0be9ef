package field

import (
	"iter"
	"slices"
	"sync"
)

// ConcurrentMap is a Map safe for concurrent use while an entity is being
// populated. Iteration works on a snapshot, so it never observes a concurrent
// modification.
type ConcurrentMap[K comparable, V any] struct {
	mu sync.RWMutex
	m  *Map[K, V]
}

// NewConcurrentMap returns an empty mutable map.
func NewConcurrentMap[K comparable, V any](opts ...Option) *ConcurrentMap[K, V] {
	return &ConcurrentMap[K, V]{m: NewMap[K, V](opts...)}
}

// Freeze makes the map permanently read-only.
func (c *ConcurrentMap[K, V]) Freeze() {
	c.mu.Lock()
	c.m.Freeze()
	c.mu.Unlock()
}

// IsFrozen reports whether the map or its owner is frozen.
func (c *ConcurrentMap[K, V]) IsFrozen() bool { return c.m.IsFrozen() }

// Len returns the number of entries.
func (c *ConcurrentMap[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.m.Len()
}

// Get returns the value stored under k.
func (c *ConcurrentMap[K, V]) Get(k K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.m.Get(k)
}

// Put stores v under k and returns the previous value, if any.
func (c *ConcurrentMap[K, V]) Put(k K, v V) (V, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.m.Put(k, v)
}

// PutIfAbsent stores v under k unless k is present. It returns the value
// stored under k afterwards and whether v was stored.
func (c *ConcurrentMap[K, V]) PutIfAbsent(k K, v V) (V, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.m.Get(k); ok {
		return cur, false, nil
	}
	if _, _, err := c.m.Put(k, v); err != nil {
		var zero V
		return zero, false, err
	}
	return v, true, nil
}

// Compute replaces the value under k with f(current, present) atomically.
func (c *ConcurrentMap[K, V]) Compute(k K, f func(cur V, ok bool) V) (V, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cur, ok := c.m.Get(k)
	next := f(cur, ok)
	if _, _, err := c.m.Put(k, next); err != nil {
		var zero V
		return zero, err
	}
	return next, nil
}

// Delete removes k and returns its value.
func (c *ConcurrentMap[K, V]) Delete(k K) (V, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.m.Delete(k)
}

// Clear removes every entry.
func (c *ConcurrentMap[K, V]) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.m.Clear()
}

// Keys returns a snapshot of the keys in insertion order.
func (c *ConcurrentMap[K, V]) Keys() []K {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.m.Keys()
}

// All iterates over a snapshot of the entries.
func (c *ConcurrentMap[K, V]) All() iter.Seq2[K, V] {
	c.mu.RLock()
	keys, vals := c.m.Keys(), c.m.Values()
	c.mu.RUnlock()
	return func(yield func(K, V) bool) {
		for i, k := range keys {
			if !yield(k, vals[i]) {
				return
			}
		}
	}
}

// Equal reports whether both maps hold the same entries.
func (c *ConcurrentMap[K, V]) Equal(o *ConcurrentMap[K, V]) bool {
	if c == nil || o == nil {
		return c == o
	}
	if c == o {
		return true
	}
	return c.snapshot().Equal(o.snapshot())
}

// Hash returns an order-insensitive hash consistent with Equal.
func (c *ConcurrentMap[K, V]) Hash() uint64 { return c.snapshot().Hash() }

func (c *ConcurrentMap[K, V]) snapshot() *Map[K, V] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := NewMap[K, V]()
	for k, v := range c.m.All() {
		s.index[k] = len(s.keys)
		s.keys = append(s.keys, k)
		s.vals = append(s.vals, v)
	}
	return s
}

// ConcurrentSet is a Set safe for concurrent use while an entity is being
// populated.
type ConcurrentSet[T comparable] struct {
	mu sync.RWMutex
	s  *Set[T]
}

// NewConcurrentSet returns an empty mutable set.
func NewConcurrentSet[T comparable](opts ...Option) *ConcurrentSet[T] {
	return &ConcurrentSet[T]{s: NewSet[T](opts...)}
}

// Freeze makes the set permanently read-only.
func (c *ConcurrentSet[T]) Freeze() {
	c.mu.Lock()
	c.s.Freeze()
	c.mu.Unlock()
}

// IsFrozen reports whether the set or its owner is frozen.
func (c *ConcurrentSet[T]) IsFrozen() bool { return c.s.IsFrozen() }

// Len returns the number of elements.
func (c *ConcurrentSet[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.s.Len()
}

// Contains reports whether v is present.
func (c *ConcurrentSet[T]) Contains(v T) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.s.Contains(v)
}

// Add inserts v and reports whether it was absent.
func (c *ConcurrentSet[T]) Add(v T) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.s.Add(v)
}

// Remove deletes v and reports whether it was present.
func (c *ConcurrentSet[T]) Remove(v T) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.s.Remove(v)
}

// Clear removes every element.
func (c *ConcurrentSet[T]) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.s.Clear()
}

// Values returns a snapshot of the elements in insertion order.
func (c *ConcurrentSet[T]) Values() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.s.Values()
}

// All iterates over a snapshot of the elements.
func (c *ConcurrentSet[T]) All() iter.Seq[T] { return slices.Values(c.Values()) }

// Equal reports whether both sets hold the same elements.
func (c *ConcurrentSet[T]) Equal(o *ConcurrentSet[T]) bool {
	if c == nil || o == nil {
		return c == o
	}
	if c == o {
		return true
	}
	return SetOf(c.Values()).Equal(SetOf(o.Values()))
}

// Hash returns an order-insensitive hash consistent with Equal.
func (c *ConcurrentSet[T]) Hash() uint64 { return SetOf(c.Values()).Hash() }
