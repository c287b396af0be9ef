package field_test

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/reoring/goseal"
	"github.com/reoring/goseal/field"
)

func TestConcurrentMap_ParallelWriters(t *testing.T) {
	m := field.NewConcurrentMap[string, int]()
	var wg sync.WaitGroup
	for w := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 100 {
				if _, err := m.Compute("hits", func(cur int, _ bool) int { return cur + 1 }); err != nil {
					t.Error(err)
					return
				}
				_, _, _ = m.Put(fmt.Sprintf("w%d-%d", w, i%10), i)
			}
		}()
	}
	wg.Wait()

	if v, _ := m.Get("hits"); v != 800 {
		t.Fatalf("hits = %d, want 800", v)
	}
	if m.Len() != 81 {
		t.Fatalf("Len = %d, want 81", m.Len())
	}
}

func TestConcurrentMap_PutIfAbsentAndSnapshot(t *testing.T) {
	m := field.NewConcurrentMap[string, string]()
	if v, stored, _ := m.PutIfAbsent("k", "first"); !stored || v != "first" {
		t.Fatalf("PutIfAbsent = %q, %v", v, stored)
	}
	if v, stored, _ := m.PutIfAbsent("k", "second"); stored || v != "first" {
		t.Fatalf("PutIfAbsent on a present key = %q, %v", v, stored)
	}
	_, _, _ = m.Put("j", "x")

	// Mutating while ranging works on the snapshot.
	for k := range m.All() {
		if _, _, err := m.Delete(k); err != nil {
			t.Fatal(err)
		}
	}
	if m.Len() != 0 {
		t.Fatalf("Len = %d", m.Len())
	}

	o := field.NewConcurrentMap[string, string]()
	if !m.Equal(o) || m.Hash() != o.Hash() {
		t.Fatalf("empty maps should be equal")
	}
	m.Freeze()
	if _, _, err := m.Put("a", "b"); !errors.Is(err, goseal.ErrImmutable) {
		t.Fatalf("Put after Freeze = %v", err)
	}
	if _, err := m.Compute("a", func(string, bool) string { return "" }); !errors.Is(err, goseal.ErrImmutable) {
		t.Fatalf("Compute after Freeze = %v", err)
	}
}

func TestConcurrentSet(t *testing.T) {
	s := field.NewConcurrentSet[int]()
	var wg sync.WaitGroup
	for w := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 50 {
				_, _ = s.Add(i * (w%2 + 1))
			}
		}()
	}
	wg.Wait()
	// 0..49 and the even numbers 0..98
	if s.Len() != 75 {
		t.Fatalf("Len = %d, want 75", s.Len())
	}
	if !s.Contains(98) || s.Contains(99) {
		t.Fatalf("Contains mismatch")
	}

	a := field.NewConcurrentSet[string]()
	b := field.NewConcurrentSet[string]()
	_, _ = a.Add("x")
	_, _ = a.Add("y")
	_, _ = b.Add("y")
	_, _ = b.Add("x")
	if !a.Equal(b) || a.Hash() != b.Hash() {
		t.Fatalf("sets with the same elements should be equal")
	}
	a.Freeze()
	if _, err := a.Remove("x"); !errors.Is(err, goseal.ErrImmutable) {
		t.Fatalf("Remove after Freeze = %v", err)
	}
}

func TestCopyOnWriteList_ParallelAdds(t *testing.T) {
	l := field.NewCopyOnWriteList[int]()
	var wg sync.WaitGroup
	for w := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 25 {
				_ = l.Add(w*100 + i)
				_ = l.Values()
			}
		}()
	}
	wg.Wait()
	if l.Len() != 100 {
		t.Fatalf("Len = %d", l.Len())
	}
}

func TestSortedSet(t *testing.T) {
	s := field.NewOrderedSet[string]()
	for _, v := range []string{"pear", "apple", "fig", "apple"} {
		_, _ = s.Add(v)
	}
	if got := s.Values(); !slices.Equal(got, []string{"apple", "fig", "pear"}) {
		t.Fatalf("Values = %v", got)
	}
	if v, _ := s.First(); v != "apple" {
		t.Fatalf("First = %q", v)
	}
	if v, _ := s.Last(); v != "pear" {
		t.Fatalf("Last = %q", v)
	}
	if v, ok := s.Ceiling("b"); !ok || v != "fig" {
		t.Fatalf("Ceiling(b) = %q", v)
	}
	if _, ok := s.Ceiling("z"); ok {
		t.Fatalf("Ceiling past the end should fail")
	}

	it := s.Iterator()
	for it.Next() {
		if strings.HasPrefix(it.Value(), "f") {
			if err := it.Remove(); err != nil {
				t.Fatal(err)
			}
			if err := it.Remove(); !errors.Is(err, field.ErrNoCurrent) {
				t.Fatalf("second Remove = %v", err)
			}
		}
	}
	if s.Contains("fig") || s.Len() != 2 {
		t.Fatalf("iterator removal failed: %v", s.Values())
	}

	folded := field.NewSortedSet(func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})
	_, _ = folded.Add("Apple")
	if added, _ := folded.Add("APPLE"); added {
		t.Fatalf("comparator-equal elements are the same element")
	}

	s.Freeze()
	if _, err := s.Add("kiwi"); !errors.Is(err, goseal.ErrImmutable) {
		t.Fatalf("Add after Freeze = %v", err)
	}
	it = s.Iterator()
	it.Next()
	if err := it.Remove(); !errors.Is(err, goseal.ErrImmutable) {
		t.Fatalf("iterator Remove after Freeze = %v", err)
	}
}

func TestSortedSet_ConcurrentAdds(t *testing.T) {
	s := field.NewOrderedSet[int]()
	var wg sync.WaitGroup
	for w := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 100 {
				_, _ = s.Add(i*4 + w)
			}
		}()
	}
	wg.Wait()
	vals := s.Values()
	if len(vals) != 400 || !slices.IsSorted(vals) {
		t.Fatalf("len = %d sorted = %v", len(vals), slices.IsSorted(vals))
	}
}

func TestSortedSet_LargeRemoveAndClear(t *testing.T) {
	s := field.NewOrderedSet[int]()
	for i := 9999; i >= 0; i-- {
		if added, err := s.Add(i); err != nil || !added {
			t.Fatalf("Add(%d) = %v, %v", i, added, err)
		}
	}
	for i := 0; i < 10000; i += 2 {
		if removed, _ := s.Remove(i); !removed {
			t.Fatalf("Remove(%d) should report presence", i)
		}
	}
	if removed, _ := s.Remove(0); removed {
		t.Fatalf("removing an absent element should report false")
	}
	if s.Len() != 5000 {
		t.Fatalf("Len = %d", s.Len())
	}
	if v, ok := s.Ceiling(4000); !ok || v != 4001 {
		t.Fatalf("Ceiling(4000) = %d, %v", v, ok)
	}
	if v, _ := s.First(); v != 1 {
		t.Fatalf("First = %d", v)
	}
	if v, _ := s.Last(); v != 9999 {
		t.Fatalf("Last = %d", v)
	}
	if err := s.Clear(); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.First(); ok || s.Len() != 0 {
		t.Fatalf("Clear should empty the set")
	}
	_, _ = s.Add(7)
	if !slices.Equal(s.Values(), []int{7}) {
		t.Fatalf("set should be reusable after Clear: %v", s.Values())
	}
}
