package goseal

import (
	"math/bits"
	"strings"
)

// ReadTree is one node of a parsed document: a field name, an optional scalar
// value, and ordered children. Repeated children with the same name form an
// array.
//
// Readers consume children by marking them in a bitmask rather than removing
// them, so a tree is never mutated while it is being walked and can be read
// again after Reset.
type ReadTree struct {
	name     FieldName
	value    string
	hasValue bool
	children []*ReadTree
	consumed []uint64
}

// NewReadTree returns an empty node.
func NewReadTree(name FieldName) *ReadTree { return &ReadTree{name: name} }

// Name returns the node's field name.
func (t *ReadTree) Name() FieldName { return t.name }

// Value returns the scalar value and whether one is present.
func (t *ReadTree) Value() (string, bool) { return t.value, t.hasValue }

// SetValue assigns the scalar value.
func (t *ReadTree) SetValue(v string) {
	t.value = v
	t.hasValue = true
}

// Add appends a child.
func (t *ReadTree) Add(child *ReadTree) {
	t.children = append(t.children, child)
}

// Len returns the number of children, consumed or not.
func (t *ReadTree) Len() int { return len(t.children) }

// Children returns all children in document order.
func (t *ReadTree) Children() []*ReadTree { return t.children }

// IsNull reports whether the node carries neither a value nor children.
func (t *ReadTree) IsNull() bool { return !t.hasValue && len(t.children) == 0 }

func (t *ReadTree) isConsumed(i int) bool {
	w := i / 64
	return w < len(t.consumed) && t.consumed[w]&(1<<(uint(i)%64)) != 0
}

func (t *ReadTree) markConsumed(i int) {
	w := i / 64
	for len(t.consumed) <= w {
		t.consumed = append(t.consumed, 0)
	}
	t.consumed[w] |= 1 << (uint(i) % 64)
}

// Find returns the first unconsumed child named name without consuming it.
func (t *ReadTree) Find(name FieldName) (*ReadTree, bool) {
	for i, c := range t.children {
		if c.name == name && !t.isConsumed(i) {
			return c, true
		}
	}
	return nil, false
}

// Take returns the first unconsumed child named name and marks it consumed.
func (t *ReadTree) Take(name FieldName) (*ReadTree, bool) {
	for i, c := range t.children {
		if c.name == name && !t.isConsumed(i) {
			t.markConsumed(i)
			return c, true
		}
	}
	return nil, false
}

// TakeAll returns every unconsumed child named name, in order, and marks them
// consumed.
func (t *ReadTree) TakeAll(name FieldName) []*ReadTree {
	var out []*ReadTree
	for i, c := range t.children {
		if c.name == name && !t.isConsumed(i) {
			t.markConsumed(i)
			out = append(out, c)
		}
	}
	return out
}

// Residual returns the children that have not been consumed.
func (t *ReadTree) Residual() []*ReadTree {
	var out []*ReadTree
	for i, c := range t.children {
		if !t.isConsumed(i) {
			out = append(out, c)
		}
	}
	return out
}

// ConsumedCount returns the number of consumed children.
func (t *ReadTree) ConsumedCount() int {
	n := 0
	for _, w := range t.consumed {
		n += bits.OnesCount64(w)
	}
	return n
}

// Reset clears the consumed marks of t and all its descendants.
func (t *ReadTree) Reset() {
	t.consumed = t.consumed[:0]
	for _, c := range t.children {
		c.Reset()
	}
}

// String renders the tree in an indented debug form.
func (t *ReadTree) String() string {
	var b strings.Builder
	t.dump(&b, 0)
	return b.String()
}

func (t *ReadTree) dump(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(t.name.Value())
	if t.hasValue {
		b.WriteString(" = ")
		b.WriteString(t.value)
	}
	b.WriteByte('\n')
	for _, c := range t.children {
		c.dump(b, depth+1)
	}
}
