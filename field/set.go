package field

import (
	"fmt"
	"iter"
	"slices"

	"github.com/reoring/goseal"
)

// Set is an insertion-ordered set of comparable values. It is not safe for
// concurrent mutation; use ConcurrentSet for that.
type Set[T comparable] struct {
	st    state
	index map[T]int
	items []T
	mod   int
}

// NewSet returns an empty mutable set.
func NewSet[T comparable](opts ...Option) *Set[T] {
	s := &Set[T]{index: make(map[T]int)}
	s.st.apply(opts)
	return s
}

// SetOf returns a mutable set holding the distinct values of vs.
func SetOf[T comparable](vs []T, opts ...Option) *Set[T] {
	s := NewSet[T](opts...)
	for _, v := range vs {
		s.add(v)
	}
	return s
}

// Freeze makes the set permanently read-only.
func (s *Set[T]) Freeze() { s.st.freeze() }

// IsFrozen reports whether the set or its owner is frozen.
func (s *Set[T]) IsFrozen() bool { return s.st.isFrozen() }

// Len returns the number of elements.
func (s *Set[T]) Len() int { return len(s.items) }

// Contains reports whether v is present.
func (s *Set[T]) Contains(v T) bool {
	_, ok := s.index[v]
	return ok
}

// Values returns the elements in insertion order.
func (s *Set[T]) Values() []T { return slices.Clone(s.items) }

// All iterates over the elements in insertion order.
func (s *Set[T]) All() iter.Seq[T] { return slices.Values(s.items) }

func (s *Set[T]) add(v T) bool {
	if _, ok := s.index[v]; ok {
		return false
	}
	s.index[v] = len(s.items)
	s.items = append(s.items, v)
	s.mod++
	return true
}

func (s *Set[T]) remove(v T) bool {
	i, ok := s.index[v]
	if !ok {
		return false
	}
	delete(s.index, v)
	s.items = slices.Delete(s.items, i, i+1)
	for j := i; j < len(s.items); j++ {
		s.index[s.items[j]] = j
	}
	s.mod++
	return true
}

// Add inserts v and reports whether it was absent.
func (s *Set[T]) Add(v T) (bool, error) {
	if err := s.st.check("set add"); err != nil {
		return false, err
	}
	return s.add(v), nil
}

// Remove deletes v and reports whether it was present.
func (s *Set[T]) Remove(v T) (bool, error) {
	if err := s.st.check("set remove"); err != nil {
		return false, err
	}
	return s.remove(v), nil
}

// Clear removes every element.
func (s *Set[T]) Clear() error {
	if err := s.st.check("set clear"); err != nil {
		return err
	}
	clear(s.index)
	s.items = s.items[:0]
	s.mod++
	return nil
}

// Equal reports whether both sets hold the same elements, in any order.
func (s *Set[T]) Equal(o *Set[T]) bool {
	if s == nil || o == nil {
		return s == o
	}
	if len(s.items) != len(o.items) {
		return false
	}
	for _, v := range s.items {
		if !o.Contains(v) {
			return false
		}
	}
	return true
}

// Hash returns an order-insensitive hash consistent with Equal.
func (s *Set[T]) Hash() uint64 {
	return unorderedHash(func(yield func(uint64) bool) {
		for _, v := range s.items {
			if !yield(goseal.HashValue(v)) {
				return
			}
		}
	})
}

func (s *Set[T]) String() string { return fmt.Sprint(s.items) }

// Iterator returns a cursor over the set that can remove elements.
func (s *Set[T]) Iterator() *SetIterator[T] {
	return &SetIterator[T]{s: s, last: -1, expected: s.mod}
}

// SetIterator walks a Set in insertion order.
type SetIterator[T comparable] struct {
	s        *Set[T]
	cursor   int
	last     int
	expected int
	err      error
}

// Next advances to the next element; Err reports a concurrent modification.
func (it *SetIterator[T]) Next() bool {
	if it.err != nil {
		return false
	}
	if it.s.mod != it.expected {
		it.err = goseal.ErrConcurrentModification
		return false
	}
	if it.cursor >= len(it.s.items) {
		return false
	}
	it.last = it.cursor
	it.cursor++
	return true
}

// Value returns the current element.
func (it *SetIterator[T]) Value() T { return it.s.items[it.last] }

// Err returns ErrConcurrentModification if iteration stopped early.
func (it *SetIterator[T]) Err() error { return it.err }

// Remove deletes the current element.
func (it *SetIterator[T]) Remove() error {
	if err := it.s.st.check("set iterator remove"); err != nil {
		return err
	}
	if it.s.mod != it.expected {
		return goseal.ErrConcurrentModification
	}
	if it.last < 0 {
		return ErrNoCurrent
	}
	it.s.remove(it.s.items[it.last])
	it.cursor = it.last
	it.last = -1
	it.expected = it.s.mod
	return nil
}
