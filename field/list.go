package field

import (
	"fmt"
	"iter"
	"slices"

	"github.com/reoring/goseal"
)

// List is an ordered collection. It is not safe for concurrent mutation; use
// CopyOnWriteList for that.
type List[T any] struct {
	st    state
	items []T
	mod   int
}

// NewList returns an empty mutable list.
func NewList[T any](opts ...Option) *List[T] {
	l := &List[T]{}
	l.st.apply(opts)
	return l
}

// ListOf returns a mutable list holding vs.
func ListOf[T any](vs []T, opts ...Option) *List[T] {
	l := &List[T]{items: slices.Clone(vs)}
	l.st.apply(opts)
	return l
}

// Freeze makes the list permanently read-only.
func (l *List[T]) Freeze() { l.st.freeze() }

// IsFrozen reports whether the list or its owner is frozen.
func (l *List[T]) IsFrozen() bool { return l.st.isFrozen() }

// Len returns the number of elements.
func (l *List[T]) Len() int { return len(l.items) }

// At returns the element at i. It panics when i is out of range.
func (l *List[T]) At(i int) T { return l.items[i] }

// Values returns a copy of the elements.
func (l *List[T]) Values() []T { return slices.Clone(l.items) }

// All iterates over index/element pairs.
func (l *List[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, v := range l.items {
			if !yield(i, v) {
				return
			}
		}
	}
}

// IndexFunc returns the index of the first element satisfying f, or -1.
func (l *List[T]) IndexFunc(f func(T) bool) int { return slices.IndexFunc(l.items, f) }

// Add appends v.
func (l *List[T]) Add(v T) error {
	if err := l.st.check("list add"); err != nil {
		return err
	}
	l.items = append(l.items, v)
	l.mod++
	return nil
}

// AddAll appends vs.
func (l *List[T]) AddAll(vs ...T) error {
	if err := l.st.check("list add all"); err != nil {
		return err
	}
	l.items = append(l.items, vs...)
	l.mod++
	return nil
}

// Insert places v at i, shifting later elements.
func (l *List[T]) Insert(i int, v T) error {
	if err := l.st.check("list insert"); err != nil {
		return err
	}
	if i < 0 || i > len(l.items) {
		return outOfRange(i, len(l.items))
	}
	l.items = slices.Insert(l.items, i, v)
	l.mod++
	return nil
}

// Set replaces the element at i and returns the previous one.
func (l *List[T]) Set(i int, v T) (T, error) {
	var zero T
	if err := l.st.check("list set"); err != nil {
		return zero, err
	}
	if i < 0 || i >= len(l.items) {
		return zero, outOfRange(i, len(l.items))
	}
	old := l.items[i]
	l.items[i] = v
	return old, nil
}

// RemoveAt removes and returns the element at i.
func (l *List[T]) RemoveAt(i int) (T, error) {
	var zero T
	if err := l.st.check("list remove"); err != nil {
		return zero, err
	}
	if i < 0 || i >= len(l.items) {
		return zero, outOfRange(i, len(l.items))
	}
	old := l.items[i]
	l.items = slices.Delete(l.items, i, i+1)
	l.mod++
	return old, nil
}

// RemoveFunc removes every element satisfying f and returns how many were
// removed.
func (l *List[T]) RemoveFunc(f func(T) bool) (int, error) {
	if err := l.st.check("list remove func"); err != nil {
		return 0, err
	}
	n := len(l.items)
	l.items = slices.DeleteFunc(l.items, f)
	if removed := n - len(l.items); removed > 0 {
		l.mod++
		return removed, nil
	}
	return 0, nil
}

// Clear removes every element.
func (l *List[T]) Clear() error {
	if err := l.st.check("list clear"); err != nil {
		return err
	}
	clear(l.items)
	l.items = l.items[:0]
	l.mod++
	return nil
}

// Equal reports element-wise equality in order. Frozen state is ignored.
func (l *List[T]) Equal(o *List[T]) bool {
	if l == nil || o == nil {
		return l == o
	}
	return slices.EqualFunc(l.items, o.items, func(a, b T) bool { return goseal.ValuesEqual(a, b) })
}

// Hash returns an order-sensitive hash consistent with Equal.
func (l *List[T]) Hash() uint64 {
	h := uint64(1)
	for _, v := range l.items {
		h = h*31 + goseal.HashValue(v)
	}
	return h
}

func (l *List[T]) String() string { return fmt.Sprint(l.items) }

// Iterator returns a cursor over the list that can mutate it in place.
func (l *List[T]) Iterator() *ListIterator[T] {
	return &ListIterator[T]{l: l, last: -1, expected: l.mod}
}

// ListIterator walks a List:
//
//	it := l.Iterator()
//	for it.Next() {
//		if drop(it.Value()) {
//			if err := it.Remove(); err != nil { ... }
//		}
//	}
//	if err := it.Err(); err != nil { ... }
type ListIterator[T any] struct {
	l        *List[T]
	cursor   int
	last     int
	expected int
	err      error
}

func (it *ListIterator[T]) comod() error {
	if it.l.mod != it.expected {
		return goseal.ErrConcurrentModification
	}
	return nil
}

// Next advances to the next element. It returns false at the end or when the
// list was modified behind the iterator's back; Err tells them apart.
func (it *ListIterator[T]) Next() bool {
	if it.err != nil {
		return false
	}
	if err := it.comod(); err != nil {
		it.err = err
		return false
	}
	if it.cursor >= len(it.l.items) {
		return false
	}
	it.last = it.cursor
	it.cursor++
	return true
}

// Value returns the current element.
func (it *ListIterator[T]) Value() T { return it.l.items[it.last] }

// Index returns the position of the current element.
func (it *ListIterator[T]) Index() int { return it.last }

// Err returns ErrConcurrentModification if iteration stopped early.
func (it *ListIterator[T]) Err() error { return it.err }

// Remove deletes the current element.
func (it *ListIterator[T]) Remove() error {
	if err := it.l.st.check("list iterator remove"); err != nil {
		return err
	}
	if err := it.comod(); err != nil {
		return err
	}
	if it.last < 0 {
		return ErrNoCurrent
	}
	if _, err := it.l.RemoveAt(it.last); err != nil {
		return err
	}
	it.cursor = it.last
	it.last = -1
	it.expected = it.l.mod
	return nil
}

// Set replaces the current element.
func (it *ListIterator[T]) Set(v T) error {
	if err := it.l.st.check("list iterator set"); err != nil {
		return err
	}
	if err := it.comod(); err != nil {
		return err
	}
	if it.last < 0 {
		return ErrNoCurrent
	}
	_, err := it.l.Set(it.last, v)
	return err
}

// Add inserts v before the element Next would return.
func (it *ListIterator[T]) Add(v T) error {
	if err := it.l.st.check("list iterator add"); err != nil {
		return err
	}
	if err := it.comod(); err != nil {
		return err
	}
	if err := it.l.Insert(it.cursor, v); err != nil {
		return err
	}
	it.cursor++
	it.last = -1
	it.expected = it.l.mod
	return nil
}

// SubList returns a view of the elements in [from, to). Changes through the
// view write through to the list; a structural change made to the list
// directly invalidates the view.
func (l *List[T]) SubList(from, to int) (*SubList[T], error) {
	if from < 0 || to > len(l.items) || from > to {
		return nil, fmt.Errorf("%w: [%d,%d) with length %d", ErrIndexOutOfRange, from, to, len(l.items))
	}
	return &SubList[T]{l: l, offset: from, size: to - from, expected: l.mod}, nil
}

// SubList is a live window onto a List.
type SubList[T any] struct {
	l        *List[T]
	offset   int
	size     int
	expected int
}

func (s *SubList[T]) comod() error {
	if s.l.mod != s.expected {
		return goseal.ErrConcurrentModification
	}
	return nil
}

// Len returns the size of the window.
func (s *SubList[T]) Len() int { return s.size }

// At returns the element at i of the window.
func (s *SubList[T]) At(i int) (T, error) {
	var zero T
	if err := s.comod(); err != nil {
		return zero, err
	}
	if i < 0 || i >= s.size {
		return zero, outOfRange(i, s.size)
	}
	return s.l.items[s.offset+i], nil
}

// Values returns a copy of the window.
func (s *SubList[T]) Values() ([]T, error) {
	if err := s.comod(); err != nil {
		return nil, err
	}
	return slices.Clone(s.l.items[s.offset : s.offset+s.size]), nil
}

// Set replaces the element at i of the window.
func (s *SubList[T]) Set(i int, v T) (T, error) {
	var zero T
	if err := s.l.st.check("sublist set"); err != nil {
		return zero, err
	}
	if err := s.comod(); err != nil {
		return zero, err
	}
	if i < 0 || i >= s.size {
		return zero, outOfRange(i, s.size)
	}
	return s.l.Set(s.offset+i, v)
}

// Add appends v at the end of the window.
func (s *SubList[T]) Add(v T) error {
	if err := s.l.st.check("sublist add"); err != nil {
		return err
	}
	if err := s.comod(); err != nil {
		return err
	}
	if err := s.l.Insert(s.offset+s.size, v); err != nil {
		return err
	}
	s.size++
	s.expected = s.l.mod
	return nil
}

// RemoveAt removes the element at i of the window.
func (s *SubList[T]) RemoveAt(i int) (T, error) {
	var zero T
	if err := s.l.st.check("sublist remove"); err != nil {
		return zero, err
	}
	if err := s.comod(); err != nil {
		return zero, err
	}
	if i < 0 || i >= s.size {
		return zero, outOfRange(i, s.size)
	}
	v, err := s.l.RemoveAt(s.offset + i)
	if err != nil {
		return zero, err
	}
	s.size--
	s.expected = s.l.mod
	return v, nil
}

// Clear removes the window's elements from the list.
func (s *SubList[T]) Clear() error {
	if err := s.l.st.check("sublist clear"); err != nil {
		return err
	}
	if err := s.comod(); err != nil {
		return err
	}
	if s.size == 0 {
		return nil
	}
	s.l.items = slices.Delete(s.l.items, s.offset, s.offset+s.size)
	s.l.mod++
	s.size = 0
	s.expected = s.l.mod
	return nil
}
