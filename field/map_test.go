package field_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/reoring/goseal"
	"github.com/reoring/goseal/field"
)

func sampleMap(t *testing.T) *field.Map[string, int] {
	t.Helper()
	m := field.NewMap[string, int]()
	for i, k := range []string{"a", "b", "c", "d"} {
		if _, _, err := m.Put(k, i); err != nil {
			t.Fatal(err)
		}
	}
	return m
}

func TestMap_InsertionOrder(t *testing.T) {
	m := sampleMap(t)
	old, existed, err := m.Put("b", 10)
	if err != nil || !existed || old != 1 {
		t.Fatalf("Put existing = %d, %v, %v", old, existed, err)
	}
	if got := m.Keys(); !slices.Equal(got, []string{"a", "b", "c", "d"}) {
		t.Fatalf("replacing a value must keep its position: %v", got)
	}
	if v, ok, _ := m.Delete("a"); !ok || v != 0 {
		t.Fatalf("Delete = %d, %v", v, ok)
	}
	if _, ok, _ := m.Delete("zz"); ok {
		t.Fatalf("Delete of a missing key reported success")
	}
	_, _, _ = m.Put("a", 5)
	if got := m.Keys(); !slices.Equal(got, []string{"b", "c", "d", "a"}) {
		t.Fatalf("Keys = %v", got)
	}
	if got := m.Values(); !slices.Equal(got, []int{10, 2, 3, 5}) {
		t.Fatalf("Values = %v", got)
	}
	if v, ok := m.Get("c"); !ok || v != 2 {
		t.Fatalf("Get(c) = %d, %v", v, ok)
	}
	if m.String() != "map[b:10 c:2 d:3 a:5]" {
		t.Fatalf("String = %s", m)
	}
}

func TestMap_Views(t *testing.T) {
	m := sampleMap(t)

	ks := m.KeySet()
	if removed, err := ks.Remove("b"); err != nil || !removed {
		t.Fatalf("KeySet.Remove = %v, %v", removed, err)
	}
	if m.Contains("b") || ks.Len() != 3 {
		t.Fatalf("KeySet removal should write through")
	}

	vv := m.ValueView()
	if removed, _ := vv.Remove(2); !removed {
		t.Fatalf("ValueView.Remove(2) failed")
	}
	if m.Contains("c") {
		t.Fatalf("removing a value should drop its entry")
	}

	for e := range m.EntrySet().All() {
		if _, err := e.SetValue(e.Value() * 100); err != nil {
			t.Fatal(err)
		}
	}
	var got []int
	for v := range vv.All() {
		got = append(got, v)
	}
	if !slices.Equal(got, []int{0, 300}) {
		t.Fatalf("values = %v", got)
	}

	if err := ks.Clear(); err != nil || m.Len() != 0 {
		t.Fatalf("KeySet.Clear: %v", err)
	}
}

func TestMapIterator_Remove(t *testing.T) {
	m := sampleMap(t)
	it := m.EntrySet().Iterator()
	for it.Next() {
		if it.Value()%2 == 1 {
			if err := it.Remove(); err != nil {
				t.Fatal(err)
			}
		}
	}
	if err := it.Err(); err != nil {
		t.Fatal(err)
	}
	if got := m.Keys(); !slices.Equal(got, []string{"a", "c"}) {
		t.Fatalf("Keys = %v", got)
	}
}

func TestMapIterator_ConcurrentModification(t *testing.T) {
	m := sampleMap(t)
	it := m.KeySet().Iterator()
	it.Next()
	entry := it.Entry()
	_, _, _ = m.Delete(it.Key())
	if it.Next() || !errors.Is(it.Err(), goseal.ErrConcurrentModification) {
		t.Fatalf("expected concurrent modification, got %v", it.Err())
	}
	if _, err := entry.SetValue(1); !errors.Is(err, goseal.ErrConcurrentModification) {
		t.Fatalf("SetValue on a removed key = %v", err)
	}

	// Replacing a value is not structural.
	it = m.ValueView().Iterator()
	it.Next()
	_, _, _ = m.Put("b", 42)
	if !it.Next() || it.Err() != nil {
		t.Fatalf("value replacement should not invalidate iterators")
	}
}

func TestMap_FreezeCoversViews(t *testing.T) {
	m := sampleMap(t)
	it := m.EntrySet().Iterator()
	it.Next()
	entry := it.Entry()
	ks, vv, es := m.KeySet(), m.ValueView(), m.EntrySet()
	m.Freeze()

	var errs []error
	_, _, err := m.Put("z", 1)
	errs = append(errs, err)
	_, _, err = m.Delete("a")
	errs = append(errs, err)
	errs = append(errs, m.Clear(), it.Remove(), ks.Clear())
	_, err = ks.Remove("a")
	errs = append(errs, err)
	_, err = vv.Remove(0)
	errs = append(errs, err)
	_, err = es.Remove("a")
	errs = append(errs, err)
	_, err = entry.SetValue(9)
	errs = append(errs, err)

	for i, err := range errs {
		if !errors.Is(err, goseal.ErrImmutable) {
			t.Errorf("mutator %d: expected ErrImmutable, got %v", i, err)
		}
	}
	if m.Len() != 4 {
		t.Fatalf("frozen map changed")
	}
}

func TestMap_EqualIgnoresOrder(t *testing.T) {
	a := field.NewMap[string, any]()
	b := field.NewMap[string, any]()
	_, _, _ = a.Put("x", int32(1))
	_, _, _ = a.Put("y", "two")
	_, _, _ = b.Put("y", "two")
	_, _, _ = b.Put("x", int32(1))
	if !a.Equal(b) || a.Hash() != b.Hash() {
		t.Fatalf("maps with the same entries should be equal")
	}
	_, _, _ = b.Put("x", int64(1))
	if a.Equal(b) {
		t.Fatalf("values of different primitive types must differ")
	}
}

func TestSet_Basics(t *testing.T) {
	s := field.SetOf([]string{"b", "a", "b"})
	if s.Len() != 2 || !slices.Equal(s.Values(), []string{"b", "a"}) {
		t.Fatalf("SetOf = %v", s)
	}
	if added, _ := s.Add("a"); added {
		t.Fatalf("duplicate Add reported success")
	}
	if removed, _ := s.Remove("b"); !removed || s.Contains("b") {
		t.Fatalf("Remove failed")
	}
	_, _ = s.Add("c")
	if !slices.Equal(slices.Collect(s.All()), []string{"a", "c"}) {
		t.Fatalf("All = %v", s)
	}

	o := field.SetOf([]string{"c", "a"})
	if !s.Equal(o) || s.Hash() != o.Hash() {
		t.Fatalf("sets are order-insensitive")
	}
}

func TestSetIterator(t *testing.T) {
	s := field.SetOf([]int{1, 2, 3, 4, 5})
	it := s.Iterator()
	for it.Next() {
		if it.Value() > 2 {
			if err := it.Remove(); err != nil {
				t.Fatal(err)
			}
		}
	}
	if !slices.Equal(s.Values(), []int{1, 2}) {
		t.Fatalf("Values = %v", s.Values())
	}

	it = s.Iterator()
	it.Next()
	_, _ = s.Add(9)
	if it.Next() || !errors.Is(it.Err(), goseal.ErrConcurrentModification) {
		t.Fatalf("expected concurrent modification")
	}

	it = s.Iterator()
	it.Next()
	s.Freeze()
	if err := it.Remove(); !errors.Is(err, goseal.ErrImmutable) {
		t.Fatalf("Remove after Freeze = %v", err)
	}
	if err := s.Clear(); !errors.Is(err, goseal.ErrImmutable) {
		t.Fatalf("Clear after Freeze = %v", err)
	}
}
