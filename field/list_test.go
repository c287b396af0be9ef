package field_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/reoring/goseal"
	"github.com/reoring/goseal/field"
)

type owner struct{ frozen bool }

func (o *owner) IsFrozen() bool { return o.frozen }

func TestList_Basics(t *testing.T) {
	l := field.NewList[string]()
	if err := l.AddAll("a", "c"); err != nil {
		t.Fatal(err)
	}
	if err := l.Insert(1, "b"); err != nil {
		t.Fatal(err)
	}
	if got := l.Values(); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Fatalf("Values = %v", got)
	}
	old, err := l.Set(2, "C")
	if err != nil || old != "c" {
		t.Fatalf("Set = %q, %v", old, err)
	}
	if l.IndexFunc(func(s string) bool { return s == "C" }) != 2 {
		t.Fatalf("IndexFunc failed")
	}
	v, err := l.RemoveAt(0)
	if err != nil || v != "a" || l.Len() != 2 {
		t.Fatalf("RemoveAt = %q, %v, len %d", v, err, l.Len())
	}
	if _, err := l.RemoveAt(5); !errors.Is(err, field.ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
	if err := l.Insert(-1, "x"); !errors.Is(err, field.ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
	n, err := l.RemoveFunc(func(s string) bool { return s == "b" })
	if err != nil || n != 1 {
		t.Fatalf("RemoveFunc = %d, %v", n, err)
	}
	if l.String() != "[C]" {
		t.Fatalf("String = %s", l)
	}
	if err := l.Clear(); err != nil || l.Len() != 0 {
		t.Fatalf("Clear: %v", err)
	}
}

func TestList_ValuesIsACopy(t *testing.T) {
	l := field.ListOf([]int{1, 2})
	vs := l.Values()
	vs[0] = 99
	if l.At(0) != 1 {
		t.Fatalf("Values must not alias the list")
	}
}

func TestList_FreezeRejectsEveryMutator(t *testing.T) {
	l := field.ListOf([]int{1, 2, 3})
	it := l.Iterator()
	it.Next()
	sub, _ := l.SubList(0, 2)
	l.Freeze()

	checks := map[string]error{
		"Add":       l.Add(4),
		"AddAll":    l.AddAll(4, 5),
		"Insert":    l.Insert(0, 0),
		"Clear":     l.Clear(),
		"it.Remove": it.Remove(),
		"it.Set":    it.Set(9),
		"it.Add":    it.Add(9),
		"sub.Add":   sub.Add(9),
		"sub.Clear": sub.Clear(),
	}
	_, checks["Set"] = l.Set(0, 9)
	_, checks["RemoveAt"] = l.RemoveAt(0)
	_, checks["RemoveFunc"] = l.RemoveFunc(func(int) bool { return true })
	_, checks["sub.Set"] = sub.Set(0, 9)
	_, checks["sub.RemoveAt"] = sub.RemoveAt(0)

	for op, err := range checks {
		if !errors.Is(err, goseal.ErrImmutable) {
			t.Errorf("%s: expected ErrImmutable, got %v", op, err)
		}
	}
	if got := l.Values(); !slices.Equal(got, []int{1, 2, 3}) {
		t.Fatalf("frozen list changed: %v", got)
	}
}

func TestList_OwnerFreezesCollection(t *testing.T) {
	o := &owner{}
	l := field.NewList[int](field.WithOwner(o))
	if err := l.Add(1); err != nil {
		t.Fatal(err)
	}
	o.frozen = true
	if !l.IsFrozen() {
		t.Fatalf("list should report its owner's frozen state")
	}
	var ie *goseal.ImmutableError
	if err := l.Add(2); !errors.As(err, &ie) || ie.Op != "list add" {
		t.Fatalf("expected ImmutableError for list add, got %v", err)
	}
}

func TestListIterator_RemoveSetAdd(t *testing.T) {
	l := field.ListOf([]int{1, 2, 3, 4})
	it := l.Iterator()
	if err := it.Remove(); !errors.Is(err, field.ErrNoCurrent) {
		t.Fatalf("Remove before Next: %v", err)
	}
	for it.Next() {
		switch v := it.Value(); {
		case v%2 == 0:
			if err := it.Remove(); err != nil {
				t.Fatal(err)
			}
			if err := it.Remove(); !errors.Is(err, field.ErrNoCurrent) {
				t.Fatalf("second Remove: %v", err)
			}
		case v == 3:
			if err := it.Set(30); err != nil {
				t.Fatal(err)
			}
			if err := it.Add(35); err != nil {
				t.Fatal(err)
			}
		}
	}
	if err := it.Err(); err != nil {
		t.Fatal(err)
	}
	if got := l.Values(); !slices.Equal(got, []int{1, 30, 35}) {
		t.Fatalf("Values = %v", got)
	}
}

func TestListIterator_ConcurrentModification(t *testing.T) {
	l := field.ListOf([]string{"a", "b", "c"})
	it := l.Iterator()
	it.Next()
	_ = l.Add("d")
	if it.Next() {
		t.Fatalf("Next should stop after a structural change")
	}
	if !errors.Is(it.Err(), goseal.ErrConcurrentModification) {
		t.Fatalf("Err = %v", it.Err())
	}
	if err := it.Remove(); !errors.Is(err, goseal.ErrConcurrentModification) {
		t.Fatalf("Remove = %v", err)
	}

	// Set is not structural.
	it = l.Iterator()
	it.Next()
	_, _ = l.Set(3, "D")
	if !it.Next() || it.Err() != nil {
		t.Fatalf("Set should not invalidate iterators")
	}
}

func TestSubList_WritesThrough(t *testing.T) {
	l := field.ListOf([]int{0, 1, 2, 3, 4})
	sub, err := l.SubList(1, 4)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sub.Set(0, 10); err != nil {
		t.Fatal(err)
	}
	if err := sub.Add(35); err != nil {
		t.Fatal(err)
	}
	if v, err := sub.RemoveAt(1); err != nil || v != 2 {
		t.Fatalf("RemoveAt = %d, %v", v, err)
	}
	vals, _ := sub.Values()
	if !slices.Equal(vals, []int{10, 3, 35}) || sub.Len() != 3 {
		t.Fatalf("sub = %v", vals)
	}
	if got := l.Values(); !slices.Equal(got, []int{0, 10, 3, 35, 4}) {
		t.Fatalf("list = %v", got)
	}
	if err := sub.Clear(); err != nil {
		t.Fatal(err)
	}
	if got := l.Values(); !slices.Equal(got, []int{0, 4}) {
		t.Fatalf("list after Clear = %v", got)
	}
	if _, err := l.SubList(1, 9); !errors.Is(err, field.ErrIndexOutOfRange) {
		t.Fatalf("bad range: %v", err)
	}
}

func TestSubList_InvalidatedByDirectChange(t *testing.T) {
	l := field.ListOf([]int{1, 2, 3})
	sub, _ := l.SubList(0, 2)
	_ = l.Add(4)
	if _, err := sub.At(0); !errors.Is(err, goseal.ErrConcurrentModification) {
		t.Fatalf("At = %v", err)
	}
	if _, err := sub.Values(); !errors.Is(err, goseal.ErrConcurrentModification) {
		t.Fatalf("Values = %v", err)
	}
}

func TestList_EqualAndHash(t *testing.T) {
	a := field.ListOf([]any{int32(1), "x", nil})
	b := field.ListOf([]any{int32(1), "x", nil})
	c := field.ListOf([]any{"x", int32(1), nil})
	if !a.Equal(b) || a.Hash() != b.Hash() {
		t.Fatalf("equal lists should match")
	}
	if a.Equal(c) {
		t.Fatalf("lists are order-sensitive")
	}
	b.Freeze()
	if !a.Equal(b) {
		t.Fatalf("frozen state must not affect equality")
	}
	var nilList *field.List[any]
	if a.Equal(nilList) || !nilList.Equal(nil) {
		t.Fatalf("nil handling")
	}
}

func TestCopyOnWriteList(t *testing.T) {
	l := field.NewCopyOnWriteList[string]()
	_ = l.Add("a")
	_ = l.Add("b")
	it := l.Iterator()
	if err := l.Set(0, "A"); err != nil {
		t.Fatal(err)
	}
	_ = l.Add("c")

	var seen []string
	for it.Next() {
		seen = append(seen, it.Value())
	}
	if !slices.Equal(seen, []string{"a", "b"}) {
		t.Fatalf("iterator should see its snapshot, got %v", seen)
	}
	if err := it.Remove(); !errors.Is(err, goseal.ErrUnsupported) {
		t.Fatalf("Remove = %v", err)
	}
	added, _ := l.AddIfAbsent("b")
	if added {
		t.Fatalf("b is present")
	}
	if err := l.RemoveAt(7); !errors.Is(err, field.ErrIndexOutOfRange) {
		t.Fatalf("RemoveAt = %v", err)
	}
	if got := l.Values(); !slices.Equal(got, []string{"A", "b", "c"}) {
		t.Fatalf("Values = %v", got)
	}

	l.Freeze()
	if err := l.Add("d"); !errors.Is(err, goseal.ErrImmutable) {
		t.Fatalf("Add after Freeze = %v", err)
	}
	if err := l.Clear(); !errors.Is(err, goseal.ErrImmutable) {
		t.Fatalf("Clear after Freeze = %v", err)
	}
}
