package field

import (
	"iter"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/reoring/goseal"
)

// CopyOnWriteList is a list whose every mutation publishes a new backing
// slice. Readers and iterators never block and always see a consistent
// snapshot. Suited to lists filled by several goroutines and read often.
type CopyOnWriteList[T any] struct {
	st   state
	mu   sync.Mutex
	snap atomic.Pointer[[]T]
}

// NewCopyOnWriteList returns an empty mutable list.
func NewCopyOnWriteList[T any](opts ...Option) *CopyOnWriteList[T] {
	l := &CopyOnWriteList[T]{}
	l.st.apply(opts)
	l.snap.Store(&[]T{})
	return l
}

func (l *CopyOnWriteList[T]) load() []T { return *l.snap.Load() }

// Freeze makes the list permanently read-only.
func (l *CopyOnWriteList[T]) Freeze() {
	l.mu.Lock()
	l.st.freeze()
	l.mu.Unlock()
}

// IsFrozen reports whether the list or its owner is frozen.
func (l *CopyOnWriteList[T]) IsFrozen() bool { return l.st.isFrozen() }

// Len returns the number of elements.
func (l *CopyOnWriteList[T]) Len() int { return len(l.load()) }

// At returns the element at i. It panics when i is out of range.
func (l *CopyOnWriteList[T]) At(i int) T { return l.load()[i] }

// Values returns a copy of the current snapshot.
func (l *CopyOnWriteList[T]) Values() []T { return slices.Clone(l.load()) }

// All iterates over the snapshot current at the call.
func (l *CopyOnWriteList[T]) All() iter.Seq2[int, T] { return slices.All(l.load()) }

// mutate applies f to a copy of the current snapshot and publishes the result.
func (l *CopyOnWriteList[T]) mutate(op string, f func([]T) ([]T, error)) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.st.check(op); err != nil {
		return err
	}
	next, err := f(slices.Clone(l.load()))
	if err != nil {
		return err
	}
	l.snap.Store(&next)
	return nil
}

// Add appends v.
func (l *CopyOnWriteList[T]) Add(v T) error {
	return l.mutate("cow list add", func(s []T) ([]T, error) { return append(s, v), nil })
}

// AddIfAbsent appends v unless an equal element is present, and reports
// whether it was added.
func (l *CopyOnWriteList[T]) AddIfAbsent(v T) (bool, error) {
	added := false
	err := l.mutate("cow list add if absent", func(s []T) ([]T, error) {
		for _, x := range s {
			if goseal.ValuesEqual(x, v) {
				return s, nil
			}
		}
		added = true
		return append(s, v), nil
	})
	return added, err
}

// Set replaces the element at i.
func (l *CopyOnWriteList[T]) Set(i int, v T) error {
	return l.mutate("cow list set", func(s []T) ([]T, error) {
		if i < 0 || i >= len(s) {
			return nil, outOfRange(i, len(s))
		}
		s[i] = v
		return s, nil
	})
}

// RemoveAt removes the element at i.
func (l *CopyOnWriteList[T]) RemoveAt(i int) error {
	return l.mutate("cow list remove", func(s []T) ([]T, error) {
		if i < 0 || i >= len(s) {
			return nil, outOfRange(i, len(s))
		}
		return slices.Delete(s, i, i+1), nil
	})
}

// Clear removes every element.
func (l *CopyOnWriteList[T]) Clear() error {
	return l.mutate("cow list clear", func([]T) ([]T, error) { return []T{}, nil })
}

// Equal reports element-wise equality in order.
func (l *CopyOnWriteList[T]) Equal(o *CopyOnWriteList[T]) bool {
	if l == nil || o == nil {
		return l == o
	}
	return slices.EqualFunc(l.load(), o.load(), func(a, b T) bool { return goseal.ValuesEqual(a, b) })
}

// Hash returns an order-sensitive hash consistent with Equal.
func (l *CopyOnWriteList[T]) Hash() uint64 { return ListOf(l.load()).Hash() }

// Iterator returns an iterator over the current snapshot. It never reports a
// concurrent modification, and its Remove is unsupported.
func (l *CopyOnWriteList[T]) Iterator() *SnapshotIterator[T] {
	return &SnapshotIterator[T]{items: l.load(), cursor: -1}
}

// SnapshotIterator walks a fixed snapshot.
type SnapshotIterator[T any] struct {
	items  []T
	cursor int
}

// Next advances to the next element.
func (it *SnapshotIterator[T]) Next() bool {
	if it.cursor+1 >= len(it.items) {
		return false
	}
	it.cursor++
	return true
}

// Value returns the current element.
func (it *SnapshotIterator[T]) Value() T { return it.items[it.cursor] }

// Remove always fails with goseal.ErrUnsupported.
func (it *SnapshotIterator[T]) Remove() error { return goseal.ErrUnsupported }
