// Package deck provides Deck entities: immutable wrappers whose only content
// is one field collection of a fixed element type.
//
// A Kind binds a type name to the element strategies and registers the
// reconstruction factory:
//
//	var tags = deck.MustListKind(goseal.MustTypeName("app.Tags"), nil,
//		goseal.WriteAsString, goseal.ReadAsString)
//	d, err := tags.Of("a", "b")
package deck

import (
	"github.com/reoring/goseal"
	"github.com/reoring/goseal/field"
)

var (
	fieldItems   = goseal.MustFieldName("items")
	fieldEntries = goseal.MustFieldName("entries")
)

func registry(reg *goseal.Registry) *goseal.Registry {
	if reg == nil {
		return goseal.DefaultRegistry()
	}
	return reg
}

// ---- list ----

// ListKind describes decks holding a List of T.
type ListKind[T any] struct {
	name  goseal.TypeName
	write goseal.WriteAs[T]
	read  goseal.ReadAs[T]
}

// NewListKind registers a list deck type on reg (nil means the process-wide
// registry).
func NewListKind[T any](name goseal.TypeName, reg *goseal.Registry, w goseal.WriteAs[T], r goseal.ReadAs[T]) (*ListKind[T], error) {
	k := &ListKind[T]{name: name, write: w, read: r}
	if err := goseal.RegisterType(registry(reg), name, k.readDeck); err != nil {
		return nil, err
	}
	return k, nil
}

// MustListKind is NewListKind that panics on error.
func MustListKind[T any](name goseal.TypeName, reg *goseal.Registry, w goseal.WriteAs[T], r goseal.ReadAs[T]) *ListKind[T] {
	k, err := NewListKind(name, reg, w, r)
	if err != nil {
		panic(err)
	}
	return k
}

// TypeName returns the deck type name.
func (k *ListKind[T]) TypeName() goseal.TypeName { return k.name }

func (k *ListKind[T]) fresh() *ListDeck[T] {
	d := &ListDeck[T]{kind: k}
	d.items = field.NewList[T](field.WithOwner(d))
	return d
}

// Builder returns a builder for decks of this kind.
func (k *ListKind[T]) Builder() *goseal.Builder[*ListDeck[T]] { return goseal.NewBuilder(k.fresh) }

// Of returns a completed deck holding vs.
func (k *ListKind[T]) Of(vs ...T) (*ListDeck[T], error) {
	b := k.Builder()
	if err := b.Edit(func(d *ListDeck[T]) error { return d.items.AddAll(vs...) }); err != nil {
		return nil, err
	}
	return b.Create()
}

func (k *ListKind[T]) readDeck(r *goseal.ObjectReader) (*ListDeck[T], error) {
	d := k.fresh()
	if err := d.items.AddAll(goseal.ReadSlice(r, fieldItems, k.read)...); err != nil {
		return nil, err
	}
	return d, r.Err()
}

// ListDeck is an entity wrapping one List.
type ListDeck[T any] struct {
	goseal.Completion
	kind  *ListKind[T]
	items *field.List[T]
}

func (d *ListDeck[T]) TypeName() goseal.TypeName { return d.kind.name }
func (d *ListDeck[T]) Items() *field.List[T]     { return d.items }
func (d *ListDeck[T]) Normalize()                {}
func (d *ListDeck[T]) Validate() error           { return nil }
func (d *ListDeck[T]) Freeze()                   { d.items.Freeze() }

func (d *ListDeck[T]) Write(w *goseal.ObjectWriter) error {
	goseal.WriteSlice(w, fieldItems, d.items.Values(), d.kind.write)
	return w.Err()
}

// Equal compares the wrapped lists.
func (d *ListDeck[T]) Equal(other goseal.Entity) bool {
	o, ok := other.(*ListDeck[T])
	return ok && d.kind.name == o.kind.name && d.items.Equal(o.items)
}

// Hash is consistent with Equal.
func (d *ListDeck[T]) Hash() uint64 { return d.items.Hash() }

// ---- set ----

// SetKind describes decks holding a Set of T.
type SetKind[T comparable] struct {
	name  goseal.TypeName
	write goseal.WriteAs[T]
	read  goseal.ReadAs[T]
}

// NewSetKind registers a set deck type on reg (nil means the process-wide
// registry).
func NewSetKind[T comparable](name goseal.TypeName, reg *goseal.Registry, w goseal.WriteAs[T], r goseal.ReadAs[T]) (*SetKind[T], error) {
	k := &SetKind[T]{name: name, write: w, read: r}
	if err := goseal.RegisterType(registry(reg), name, k.readDeck); err != nil {
		return nil, err
	}
	return k, nil
}

// MustSetKind is NewSetKind that panics on error.
func MustSetKind[T comparable](name goseal.TypeName, reg *goseal.Registry, w goseal.WriteAs[T], r goseal.ReadAs[T]) *SetKind[T] {
	k, err := NewSetKind(name, reg, w, r)
	if err != nil {
		panic(err)
	}
	return k
}

// TypeName returns the deck type name.
func (k *SetKind[T]) TypeName() goseal.TypeName { return k.name }

func (k *SetKind[T]) fresh() *SetDeck[T] {
	d := &SetDeck[T]{kind: k}
	d.items = field.NewSet[T](field.WithOwner(d))
	return d
}

// Builder returns a builder for decks of this kind.
func (k *SetKind[T]) Builder() *goseal.Builder[*SetDeck[T]] { return goseal.NewBuilder(k.fresh) }

// Of returns a completed deck holding the distinct values of vs.
func (k *SetKind[T]) Of(vs ...T) (*SetDeck[T], error) {
	b := k.Builder()
	err := b.Edit(func(d *SetDeck[T]) error {
		for _, v := range vs {
			if _, err := d.items.Add(v); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return b.Create()
}

func (k *SetKind[T]) readDeck(r *goseal.ObjectReader) (*SetDeck[T], error) {
	d := k.fresh()
	for _, v := range goseal.ReadSlice(r, fieldItems, k.read) {
		if _, err := d.items.Add(v); err != nil {
			return nil, err
		}
	}
	return d, r.Err()
}

// SetDeck is an entity wrapping one Set.
type SetDeck[T comparable] struct {
	goseal.Completion
	kind  *SetKind[T]
	items *field.Set[T]
}

func (d *SetDeck[T]) TypeName() goseal.TypeName { return d.kind.name }
func (d *SetDeck[T]) Items() *field.Set[T]      { return d.items }
func (d *SetDeck[T]) Normalize()                {}
func (d *SetDeck[T]) Validate() error           { return nil }
func (d *SetDeck[T]) Freeze()                   { d.items.Freeze() }

func (d *SetDeck[T]) Write(w *goseal.ObjectWriter) error {
	goseal.WriteSet(w, fieldItems, d.items.All(), d.kind.write)
	return w.Err()
}

// Equal compares the wrapped sets regardless of order.
func (d *SetDeck[T]) Equal(other goseal.Entity) bool {
	o, ok := other.(*SetDeck[T])
	return ok && d.kind.name == o.kind.name && d.items.Equal(o.items)
}

// Hash is consistent with Equal.
func (d *SetDeck[T]) Hash() uint64 { return d.items.Hash() }

// ---- map ----

// MapKind describes decks holding a Map from K to V.
type MapKind[K comparable, V any] struct {
	name     goseal.TypeName
	writeKey goseal.WriteAs[K]
	writeVal goseal.WriteAs[V]
	readKey  goseal.ReadAs[K]
	readVal  goseal.ReadAs[V]
}

// MapCodec bundles the key and value strategies of a MapKind.
type MapCodec[K comparable, V any] struct {
	WriteKey   goseal.WriteAs[K]
	WriteValue goseal.WriteAs[V]
	ReadKey    goseal.ReadAs[K]
	ReadValue  goseal.ReadAs[V]
}

// NewMapKind registers a map deck type on reg (nil means the process-wide
// registry).
func NewMapKind[K comparable, V any](name goseal.TypeName, reg *goseal.Registry, c MapCodec[K, V]) (*MapKind[K, V], error) {
	k := &MapKind[K, V]{name: name, writeKey: c.WriteKey, writeVal: c.WriteValue, readKey: c.ReadKey, readVal: c.ReadValue}
	if err := goseal.RegisterType(registry(reg), name, k.readDeck); err != nil {
		return nil, err
	}
	return k, nil
}

// MustMapKind is NewMapKind that panics on error.
func MustMapKind[K comparable, V any](name goseal.TypeName, reg *goseal.Registry, c MapCodec[K, V]) *MapKind[K, V] {
	k, err := NewMapKind(name, reg, c)
	if err != nil {
		panic(err)
	}
	return k
}

// TypeName returns the deck type name.
func (k *MapKind[K, V]) TypeName() goseal.TypeName { return k.name }

func (k *MapKind[K, V]) fresh() *MapDeck[K, V] {
	d := &MapDeck[K, V]{kind: k}
	d.entries = field.NewMap[K, V](field.WithOwner(d))
	return d
}

// Builder returns a builder for decks of this kind.
func (k *MapKind[K, V]) Builder() *goseal.Builder[*MapDeck[K, V]] { return goseal.NewBuilder(k.fresh) }

// Of returns a completed deck holding the given entries in order.
func (k *MapKind[K, V]) Of(entries ...goseal.Entry[K, V]) (*MapDeck[K, V], error) {
	b := k.Builder()
	err := b.Edit(func(d *MapDeck[K, V]) error {
		for _, e := range entries {
			if _, _, err := d.entries.Put(e.Key, e.Value); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return b.Create()
}

func (k *MapKind[K, V]) readDeck(r *goseal.ObjectReader) (*MapDeck[K, V], error) {
	d := k.fresh()
	for _, e := range goseal.ReadMap(r, fieldEntries, k.readKey, k.readVal) {
		if _, _, err := d.entries.Put(e.Key, e.Value); err != nil {
			return nil, err
		}
	}
	return d, r.Err()
}

// MapDeck is an entity wrapping one Map.
type MapDeck[K comparable, V any] struct {
	goseal.Completion
	kind    *MapKind[K, V]
	entries *field.Map[K, V]
}

func (d *MapDeck[K, V]) TypeName() goseal.TypeName { return d.kind.name }
func (d *MapDeck[K, V]) Entries() *field.Map[K, V] { return d.entries }
func (d *MapDeck[K, V]) Normalize()                {}
func (d *MapDeck[K, V]) Validate() error           { return nil }
func (d *MapDeck[K, V]) Freeze()                   { d.entries.Freeze() }

func (d *MapDeck[K, V]) Write(w *goseal.ObjectWriter) error {
	goseal.WriteMap(w, fieldEntries, d.entries.All(), d.kind.writeKey, d.kind.writeVal)
	return w.Err()
}

// Equal compares the wrapped maps regardless of order.
func (d *MapDeck[K, V]) Equal(other goseal.Entity) bool {
	o, ok := other.(*MapDeck[K, V])
	return ok && d.kind.name == o.kind.name && d.entries.Equal(o.entries)
}

// Hash is consistent with Equal.
func (d *MapDeck[K, V]) Hash() uint64 { return d.entries.Hash() }
