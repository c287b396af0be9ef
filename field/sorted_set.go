package field

import (
	"cmp"
	"iter"
	"slices"
	"sync"

	"github.com/google/btree"

	"github.com/reoring/goseal"
)

// sortedSetDegree is the B-tree branching factor.
const sortedSetDegree = 16

// SortedSet keeps distinct elements ordered by a comparator. It is safe for
// concurrent use; elements equal under the comparator are the same element.
type SortedSet[T any] struct {
	st   state
	mu   sync.RWMutex
	cmp  func(a, b T) int
	tree *btree.BTreeG[T]
}

// NewSortedSet returns an empty set ordered by compare.
func NewSortedSet[T any](compare func(a, b T) int, opts ...Option) *SortedSet[T] {
	s := &SortedSet[T]{
		cmp:  compare,
		tree: btree.NewG(sortedSetDegree, func(a, b T) bool { return compare(a, b) < 0 }),
	}
	s.st.apply(opts)
	return s
}

// NewOrderedSet returns an empty set of naturally ordered values.
func NewOrderedSet[T cmp.Ordered](opts ...Option) *SortedSet[T] {
	return NewSortedSet(cmp.Compare[T], opts...)
}

// Freeze makes the set permanently read-only.
func (s *SortedSet[T]) Freeze() {
	s.mu.Lock()
	s.st.freeze()
	s.mu.Unlock()
}

// IsFrozen reports whether the set or its owner is frozen.
func (s *SortedSet[T]) IsFrozen() bool { return s.st.isFrozen() }

// Len returns the number of elements.
func (s *SortedSet[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Len()
}

// Contains reports whether v is present.
func (s *SortedSet[T]) Contains(v T) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Has(v)
}

// Add inserts v and reports whether it was absent. A present element is kept
// as it is.
func (s *SortedSet[T]) Add(v T) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.st.check("sorted set add"); err != nil {
		return false, err
	}
	if s.tree.Has(v) {
		return false, nil
	}
	s.tree.ReplaceOrInsert(v)
	return true, nil
}

// Remove deletes v and reports whether it was present.
func (s *SortedSet[T]) Remove(v T) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.st.check("sorted set remove"); err != nil {
		return false, err
	}
	_, ok := s.tree.Delete(v)
	return ok, nil
}

// Clear removes every element.
func (s *SortedSet[T]) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.st.check("sorted set clear"); err != nil {
		return err
	}
	s.tree.Clear(false)
	return nil
}

// First returns the smallest element.
func (s *SortedSet[T]) First() (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Min()
}

// Last returns the largest element.
func (s *SortedSet[T]) Last() (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Max()
}

// Ceiling returns the smallest element not less than v.
func (s *SortedSet[T]) Ceiling(v T) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var (
		got   T
		found bool
	)
	s.tree.AscendGreaterOrEqual(v, func(item T) bool {
		got, found = item, true
		return false
	})
	return got, found
}

// Values returns a snapshot of the elements in order.
func (s *SortedSet[T]) Values() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, 0, s.tree.Len())
	s.tree.Ascend(func(item T) bool {
		out = append(out, item)
		return true
	})
	return out
}

// All iterates over a snapshot of the elements in order.
func (s *SortedSet[T]) All() iter.Seq[T] { return slices.Values(s.Values()) }

// Equal reports whether both sets hold the same elements.
func (s *SortedSet[T]) Equal(o *SortedSet[T]) bool {
	if s == nil || o == nil {
		return s == o
	}
	a, b := s.Values(), o.Values()
	return slices.EqualFunc(a, b, func(x, y T) bool { return s.cmp(x, y) == 0 })
}

// Hash returns a hash consistent with Equal.
func (s *SortedSet[T]) Hash() uint64 {
	h := uint64(1)
	for _, v := range s.Values() {
		h = h*31 + goseal.HashValue(v)
	}
	return h
}

// Iterator returns an iterator over a snapshot whose Remove deletes the
// current element from the set.
func (s *SortedSet[T]) Iterator() *SortedSetIterator[T] {
	return &SortedSetIterator[T]{s: s, items: s.Values(), cursor: -1}
}

// SortedSetIterator walks a snapshot of a SortedSet.
type SortedSetIterator[T any] struct {
	s       *SortedSet[T]
	items   []T
	cursor  int
	removed bool
}

// Next advances to the next element.
func (it *SortedSetIterator[T]) Next() bool {
	if it.cursor+1 >= len(it.items) {
		return false
	}
	it.cursor++
	it.removed = false
	return true
}

// Value returns the current element.
func (it *SortedSetIterator[T]) Value() T { return it.items[it.cursor] }

// Remove deletes the current element from the set.
func (it *SortedSetIterator[T]) Remove() error {
	if err := it.s.st.check("sorted set iterator remove"); err != nil {
		return err
	}
	if it.cursor < 0 || it.removed {
		return ErrNoCurrent
	}
	if _, err := it.s.Remove(it.items[it.cursor]); err != nil {
		return err
	}
	it.removed = true
	return nil
}
