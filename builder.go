package goseal

import "fmt"

// Builder owns an under-construction instance of T and produces completed
// instances from it.
//
// Typical usage wraps a Builder in a type-specific builder exposing setters:
//
//	type BookBuilder struct{ b *goseal.Builder[*Book] }
//
//	func (bb *BookBuilder) SetTitle(t string) error {
//		return bb.b.Edit(func(b *Book) error { b.title = t; return nil })
//	}
type Builder[T ImmutableEntity] struct {
	fresh func() T
	under T
}

// NewBuilder returns a builder whose under-construction instance comes from
// fresh. fresh must return a new, non-completed instance on every call.
func NewBuilder[T ImmutableEntity](fresh func() T) *Builder[T] {
	return &Builder[T]{fresh: fresh, under: fresh()}
}

// NewBuilderFrom returns a builder starting from a deep clone of start, so
// that edits never reach start itself.
func NewBuilderFrom[T ImmutableEntity](fresh func() T, start T, opts ...Options) (*Builder[T], error) {
	if isNilEntity(start) {
		return NewBuilder(fresh), nil
	}
	clone, err := MutableClone(start, opts...)
	if err != nil {
		return nil, fmt.Errorf("builder: clone starting point: %w", err)
	}
	return &Builder[T]{fresh: fresh, under: clone}, nil
}

// Under returns the under-construction instance.
func (b *Builder[T]) Under() T { return b.under }

// Edit applies fn to the under-construction instance. It fails once that
// instance is complete.
func (b *Builder[T]) Edit(fn func(T) error) error {
	if b.under.IsComplete() || b.under.IsFrozen() {
		return Immutable("builder edit on completed " + b.under.TypeName().Value())
	}
	return fn(b.under)
}

// Create completes the under-construction instance and returns it. A fresh
// instance is swapped in before completion so a validation failure never
// leaves the builder holding a half-completed object.
func (b *Builder[T]) Create() (T, error) {
	out := b.under
	b.under = b.fresh()
	if err := Complete(out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
