package goseal

import (
	"encoding/binary"
	"errors"
	"fmt"
	"reflect"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

// Entity is the contract shared by every object that can travel over the wire.
//
// Implementations embed Completion, which supplies IsComplete, IsFrozen, and
// the unexported hook that lets Complete drive the lifecycle.
type Entity interface {
	// TypeName is the wire type of the entity.
	TypeName() TypeName
	// Write emits every field of the entity.
	Write(w *ObjectWriter) error
	// Normalize canonicalizes field values. It must be total: it may assume
	// nothing about field validity and must never fail.
	Normalize()
	// Validate is the single place that reports bad data. It runs after
	// Normalize.
	Validate() error

	IsComplete() bool
	IsFrozen() bool
	completion() *Completion
}

// ImmutableEntity is an Entity that becomes permanently read-only when it is
// completed. Freeze must cascade to every owned field collection and nested
// entity.
type ImmutableEntity interface {
	Entity
	Freeze()
}

// Freezer is anything that can be frozen; field collections implement it.
type Freezer interface {
	Freeze()
}

// Equaler lets an entity define structural equality. Entities that do not
// implement it are compared by canonical serialization.
type Equaler interface {
	Equal(other Entity) bool
}

// Hasher lets an entity define a structural hash consistent with Equaler.
type Hasher interface {
	Hash() uint64
}

const (
	stateBuilding int32 = iota
	stateCompleting
	stateComplete
	stateFailed
)

// Completion tracks the lifecycle of an entity. Embed it by value.
type Completion struct {
	state  atomic.Int32
	frozen atomic.Bool
}

func (c *Completion) completion() *Completion { return c }

// IsComplete reports whether Complete finished successfully.
func (c *Completion) IsComplete() bool { return c.state.Load() == stateComplete }

// IsFrozen reports whether the owning entity has been frozen. Field
// collections that name the entity as their owner consult it.
func (c *Completion) IsFrozen() bool { return c.frozen.Load() }

// CheckMutable returns an ImmutableError for op once the entity is frozen.
func (c *Completion) CheckMutable(op string) error {
	if c.frozen.Load() {
		return Immutable(op)
	}
	return nil
}

// Complete runs Normalize, Validate and, for immutable entities, Freeze. It
// may run at most once per instance.
func Complete(e Entity) error {
	if isNilEntity(e) {
		return errors.New("goseal: complete on nil entity")
	}
	c := e.completion()
	if !c.state.CompareAndSwap(stateBuilding, stateCompleting) {
		return fmt.Errorf("%w: %s", ErrAlreadyComplete, e.TypeName().Value())
	}
	e.Normalize()
	if err := e.Validate(); err != nil {
		c.state.Store(stateFailed)
		return asValidationError(e.TypeName(), err)
	}
	if ie, ok := e.(ImmutableEntity); ok {
		ie.Freeze()
		c.frozen.Store(true)
	}
	c.state.Store(stateComplete)
	return nil
}

func asValidationError(t TypeName, err error) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		if ve.Type.IsZero() {
			ve.Type = t
		}
		return ve
	}
	var iss Issues
	if errors.As(err, &iss) {
		return &ValidationError{Type: t, Issues: iss}
	}
	return &ValidationError{Type: t, Issues: Issues{{Path: "/", Code: CodeBusinessRule, Message: err.Error(), Cause: err}}}
}

// FreezeAll freezes each argument in order.
func FreezeAll(fs ...Freezer) {
	for _, f := range fs {
		if f != nil {
			f.Freeze()
		}
	}
}

// Equal reports structural equality of two entities.
func Equal(a, b Entity) bool {
	an, bn := isNilEntity(a), isNilEntity(b)
	if an || bn {
		return an && bn
	}
	if a.TypeName() != b.TypeName() {
		return false
	}
	if eq, ok := a.(Equaler); ok {
		return eq.Equal(b)
	}
	as, err := canonical(a)
	if err != nil {
		return false
	}
	bs, err := canonical(b)
	if err != nil {
		return false
	}
	return as == bs
}

// Hash returns a structural hash of e consistent with Equal.
func Hash(e Entity) uint64 {
	if isNilEntity(e) {
		return 0
	}
	if h, ok := e.(Hasher); ok {
		return h.Hash()
	}
	s, err := canonical(e)
	if err != nil {
		return 0
	}
	return hashString(s)
}

// ValuesEqual compares two element values: entities structurally, everything
// else with reflect.DeepEqual.
func ValuesEqual(a, b any) bool {
	ae, aok := a.(Entity)
	be, bok := b.(Entity)
	switch {
	case aok && bok:
		return Equal(ae, be)
	case aok:
		return b == nil && isNilEntity(ae)
	case bok:
		return a == nil && isNilEntity(be)
	}
	return reflect.DeepEqual(a, b)
}

// HashValue hashes an element value consistently with ValuesEqual. Pointers
// are followed, so values that are deeply equal hash alike.
func HashValue(v any) uint64 {
	if e, ok := v.(Entity); ok {
		return Hash(e)
	}
	d := xxhash.New()
	hashReflect(d, reflect.ValueOf(v), 0)
	return d.Sum64()
}

// maxHashDepth stops the walk on cyclic values.
const maxHashDepth = 64

func hashReflect(d *xxhash.Digest, v reflect.Value, depth int) {
	if !v.IsValid() {
		_, _ = d.WriteString("nil;")
		return
	}
	if depth > maxHashDepth {
		return
	}
	if v.CanInterface() {
		if e, ok := v.Interface().(Entity); ok && !isNilEntity(e) {
			writeUint64(d, Hash(e))
			return
		}
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			_, _ = d.WriteString("nil;")
			return
		}
		hashReflect(d, v.Elem(), depth+1)
	case reflect.Slice, reflect.Array:
		_, _ = fmt.Fprintf(d, "%s[%d;", v.Type(), v.Len())
		for i := range v.Len() {
			hashReflect(d, v.Index(i), depth+1)
		}
	case reflect.Map:
		// entries combine by sum so iteration order does not matter
		var sum uint64
		it := v.MapRange()
		for it.Next() {
			e := xxhash.New()
			hashReflect(e, it.Key(), depth+1)
			hashReflect(e, it.Value(), depth+1)
			sum += e.Sum64()
		}
		_, _ = fmt.Fprintf(d, "%s{%d;", v.Type(), v.Len())
		writeUint64(d, sum)
	case reflect.Struct:
		_, _ = fmt.Fprintf(d, "%s{", v.Type())
		for i := range v.NumField() {
			hashReflect(d, v.Field(i), depth+1)
		}
	case reflect.Func:
		_, _ = fmt.Fprintf(d, "%s;", v.Type())
	default:
		_, _ = fmt.Fprintf(d, "%s:%v;", v.Type(), v)
	}
}

func writeUint64(d *xxhash.Digest, n uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], n)
	_, _ = d.Write(buf[:])
}

func hashString(s string) uint64 { return xxhash.Sum64String(s) }

func isNilEntity(e Entity) bool {
	if e == nil {
		return true
	}
	v := reflect.ValueOf(e)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
