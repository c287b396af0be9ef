// Package field provides the collections entities own: List, Set and Map, and
// the thread-safe variants used while an entity is populated concurrently.
//
// Every collection starts mutable and becomes read-only when frozen, either
// directly or through its Owner. The check runs on every mutator at call time,
// including mutators reached through views and iterators obtained earlier.
package field

import (
	"errors"
	"fmt"
	"iter"
	"sync/atomic"

	"github.com/reoring/goseal"
)

// Owner is the entity a collection belongs to. A collection with an owner is
// frozen as soon as the owner is.
type Owner interface {
	IsFrozen() bool
}

// Option configures a collection at construction.
type Option func(*state)

// WithOwner delegates the frozen check to o in addition to the collection's
// own flag.
func WithOwner(o Owner) Option {
	return func(s *state) { s.owner = o }
}

var (
	// ErrIndexOutOfRange is returned by positional mutators given a bad index.
	ErrIndexOutOfRange = errors.New("field: index out of range")
	// ErrNoCurrent is returned by iterator mutators called before Next or
	// after the current element was removed.
	ErrNoCurrent = errors.New("field: iterator has no current element")
)

type state struct {
	frozen atomic.Bool
	owner  Owner
}

func (s *state) apply(opts []Option) {
	for _, o := range opts {
		o(s)
	}
}

func (s *state) freeze() { s.frozen.Store(true) }

func (s *state) isFrozen() bool {
	return s.frozen.Load() || (s.owner != nil && s.owner.IsFrozen())
}

func (s *state) check(op string) error {
	if s.isFrozen() {
		return goseal.Immutable(op)
	}
	return nil
}

func outOfRange(i, n int) error {
	return fmt.Errorf("%w: %d with length %d", ErrIndexOutOfRange, i, n)
}

// unorderedHash combines element hashes independently of their order.
func unorderedHash(hs iter.Seq[uint64]) uint64 {
	var sum, xor uint64
	n := uint64(0)
	for h := range hs {
		sum += h
		xor ^= h
		n++
	}
	return sum*31 ^ xor ^ n
}
