package field

import (
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/reoring/goseal"
)

// Map is an insertion-ordered map. It is not safe for concurrent mutation; use
// ConcurrentMap for that.
type Map[K comparable, V any] struct {
	st    state
	index map[K]int
	keys  []K
	vals  []V
	mod   int
}

// NewMap returns an empty mutable map.
func NewMap[K comparable, V any](opts ...Option) *Map[K, V] {
	m := &Map[K, V]{index: make(map[K]int)}
	m.st.apply(opts)
	return m
}

// Freeze makes the map permanently read-only.
func (m *Map[K, V]) Freeze() { m.st.freeze() }

// IsFrozen reports whether the map or its owner is frozen.
func (m *Map[K, V]) IsFrozen() bool { return m.st.isFrozen() }

// Len returns the number of entries.
func (m *Map[K, V]) Len() int { return len(m.keys) }

// Get returns the value stored under k.
func (m *Map[K, V]) Get(k K) (V, bool) {
	if i, ok := m.index[k]; ok {
		return m.vals[i], true
	}
	var zero V
	return zero, false
}

// Contains reports whether k is present.
func (m *Map[K, V]) Contains(k K) bool {
	_, ok := m.index[k]
	return ok
}

// Keys returns the keys in insertion order.
func (m *Map[K, V]) Keys() []K { return slices.Clone(m.keys) }

// Values returns the values in key insertion order.
func (m *Map[K, V]) Values() []V { return slices.Clone(m.vals) }

// All iterates over the entries in insertion order.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for i, k := range m.keys {
			if !yield(k, m.vals[i]) {
				return
			}
		}
	}
}

// Put stores v under k and returns the previous value, if any. Replacing the
// value of an existing key keeps its position.
func (m *Map[K, V]) Put(k K, v V) (old V, existed bool, err error) {
	if err := m.st.check("map put"); err != nil {
		return old, false, err
	}
	if i, ok := m.index[k]; ok {
		old = m.vals[i]
		m.vals[i] = v
		return old, true, nil
	}
	m.index[k] = len(m.keys)
	m.keys = append(m.keys, k)
	m.vals = append(m.vals, v)
	m.mod++
	return old, false, nil
}

// Delete removes k and returns its value.
func (m *Map[K, V]) Delete(k K) (V, bool, error) {
	var zero V
	if err := m.st.check("map delete"); err != nil {
		return zero, false, err
	}
	i, ok := m.index[k]
	if !ok {
		return zero, false, nil
	}
	v := m.vals[i]
	m.removeAt(i)
	return v, true, nil
}

func (m *Map[K, V]) removeAt(i int) {
	delete(m.index, m.keys[i])
	m.keys = slices.Delete(m.keys, i, i+1)
	m.vals = slices.Delete(m.vals, i, i+1)
	for j := i; j < len(m.keys); j++ {
		m.index[m.keys[j]] = j
	}
	m.mod++
}

// Clear removes every entry.
func (m *Map[K, V]) Clear() error {
	if err := m.st.check("map clear"); err != nil {
		return err
	}
	clear(m.index)
	clear(m.vals)
	m.keys = m.keys[:0]
	m.vals = m.vals[:0]
	m.mod++
	return nil
}

// Equal reports whether both maps hold the same entries, in any order. Values
// are compared with goseal.ValuesEqual.
func (m *Map[K, V]) Equal(o *Map[K, V]) bool {
	if m == nil || o == nil {
		return m == o
	}
	if len(m.keys) != len(o.keys) {
		return false
	}
	for i, k := range m.keys {
		ov, ok := o.Get(k)
		if !ok || !goseal.ValuesEqual(m.vals[i], ov) {
			return false
		}
	}
	return true
}

// Hash returns an order-insensitive hash consistent with Equal.
func (m *Map[K, V]) Hash() uint64 {
	return unorderedHash(func(yield func(uint64) bool) {
		for i, k := range m.keys {
			if !yield(goseal.HashValue(k)*31 ^ goseal.HashValue(m.vals[i])) {
				return
			}
		}
	})
}

func (m *Map[K, V]) String() string {
	var b strings.Builder
	b.WriteString("map[")
	for i, k := range m.keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%v:%v", k, m.vals[i])
	}
	b.WriteByte(']')
	return b.String()
}

// MapIterator walks a Map in insertion order. It is shared by the key, value
// and entry views.
type MapIterator[K comparable, V any] struct {
	m        *Map[K, V]
	cursor   int
	last     int
	expected int
	err      error
}

func (m *Map[K, V]) iterator() *MapIterator[K, V] {
	return &MapIterator[K, V]{m: m, last: -1, expected: m.mod}
}

// Next advances to the next entry; Err reports a concurrent modification.
func (it *MapIterator[K, V]) Next() bool {
	if it.err != nil {
		return false
	}
	if it.m.mod != it.expected {
		it.err = goseal.ErrConcurrentModification
		return false
	}
	if it.cursor >= len(it.m.keys) {
		return false
	}
	it.last = it.cursor
	it.cursor++
	return true
}

// Key returns the current key.
func (it *MapIterator[K, V]) Key() K { return it.m.keys[it.last] }

// Value returns the current value.
func (it *MapIterator[K, V]) Value() V { return it.m.vals[it.last] }

// Entry returns a live handle on the current entry.
func (it *MapIterator[K, V]) Entry() *MapEntry[K, V] {
	return &MapEntry[K, V]{m: it.m, key: it.m.keys[it.last]}
}

// Err returns ErrConcurrentModification if iteration stopped early.
func (it *MapIterator[K, V]) Err() error { return it.err }

// Remove deletes the current entry.
func (it *MapIterator[K, V]) Remove() error {
	if err := it.m.st.check("map iterator remove"); err != nil {
		return err
	}
	if it.m.mod != it.expected {
		return goseal.ErrConcurrentModification
	}
	if it.last < 0 {
		return ErrNoCurrent
	}
	it.m.removeAt(it.last)
	it.cursor = it.last
	it.last = -1
	it.expected = it.m.mod
	return nil
}

// MapEntry is a live handle on one key of a Map.
type MapEntry[K comparable, V any] struct {
	m   *Map[K, V]
	key K
}

// Key returns the entry's key.
func (e *MapEntry[K, V]) Key() K { return e.key }

// Value returns the value currently stored under the key.
func (e *MapEntry[K, V]) Value() V {
	v, _ := e.m.Get(e.key)
	return v
}

// SetValue replaces the value stored under the key and returns the previous
// one. It fails when the key was removed in the meantime.
func (e *MapEntry[K, V]) SetValue(v V) (V, error) {
	var zero V
	if err := e.m.st.check("map entry set value"); err != nil {
		return zero, err
	}
	i, ok := e.m.index[e.key]
	if !ok {
		return zero, goseal.ErrConcurrentModification
	}
	old := e.m.vals[i]
	e.m.vals[i] = v
	return old, nil
}

// KeySet returns a live view of the keys. Removing through the view removes
// the entry.
func (m *Map[K, V]) KeySet() *KeySet[K, V] { return &KeySet[K, V]{m: m} }

// KeySet is a live view of a Map's keys.
type KeySet[K comparable, V any] struct{ m *Map[K, V] }

func (ks *KeySet[K, V]) Len() int                     { return ks.m.Len() }
func (ks *KeySet[K, V]) Contains(k K) bool            { return ks.m.Contains(k) }
func (ks *KeySet[K, V]) Values() []K                  { return ks.m.Keys() }
func (ks *KeySet[K, V]) Iterator() *MapIterator[K, V] { return ks.m.iterator() }

// All iterates over the keys.
func (ks *KeySet[K, V]) All() iter.Seq[K] {
	return func(yield func(K) bool) {
		for k := range ks.m.All() {
			if !yield(k) {
				return
			}
		}
	}
}

// Remove deletes the entry for k.
func (ks *KeySet[K, V]) Remove(k K) (bool, error) {
	if err := ks.m.st.check("key set remove"); err != nil {
		return false, err
	}
	_, ok, err := ks.m.Delete(k)
	return ok, err
}

// Clear removes every entry of the map.
func (ks *KeySet[K, V]) Clear() error {
	if err := ks.m.st.check("key set clear"); err != nil {
		return err
	}
	return ks.m.Clear()
}

// ValueView returns a live view of the values.
func (m *Map[K, V]) ValueView() *ValueView[K, V] { return &ValueView[K, V]{m: m} }

// ValueView is a live view of a Map's values.
type ValueView[K comparable, V any] struct{ m *Map[K, V] }

func (vv *ValueView[K, V]) Len() int                     { return vv.m.Len() }
func (vv *ValueView[K, V]) Values() []V                  { return vv.m.Values() }
func (vv *ValueView[K, V]) Iterator() *MapIterator[K, V] { return vv.m.iterator() }

// All iterates over the values.
func (vv *ValueView[K, V]) All() iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, v := range vv.m.All() {
			if !yield(v) {
				return
			}
		}
	}
}

// Remove deletes the first entry whose value equals v.
func (vv *ValueView[K, V]) Remove(v V) (bool, error) {
	if err := vv.m.st.check("values remove"); err != nil {
		return false, err
	}
	for i, x := range vv.m.vals {
		if goseal.ValuesEqual(x, v) {
			vv.m.removeAt(i)
			return true, nil
		}
	}
	return false, nil
}

// EntrySet returns a live view of the entries.
func (m *Map[K, V]) EntrySet() *EntrySet[K, V] { return &EntrySet[K, V]{m: m} }

// EntrySet is a live view of a Map's entries.
type EntrySet[K comparable, V any] struct{ m *Map[K, V] }

func (es *EntrySet[K, V]) Len() int                     { return es.m.Len() }
func (es *EntrySet[K, V]) Iterator() *MapIterator[K, V] { return es.m.iterator() }

// All iterates over live entry handles.
func (es *EntrySet[K, V]) All() iter.Seq[*MapEntry[K, V]] {
	return func(yield func(*MapEntry[K, V]) bool) {
		for k := range es.m.All() {
			if !yield(&MapEntry[K, V]{m: es.m, key: k}) {
				return
			}
		}
	}
}

// Remove deletes the entry for k.
func (es *EntrySet[K, V]) Remove(k K) (bool, error) {
	if err := es.m.st.check("entry set remove"); err != nil {
		return false, err
	}
	_, ok, err := es.m.Delete(k)
	return ok, err
}
