package goseal

import (
	"fmt"

	"github.com/rs/zerolog"
)

// decodeState is shared by every ObjectReader of one document.
type decodeState struct {
	reg    *Registry
	log    zerolog.Logger
	obs    Observer
	sink   func(Issue)
	issues Issues
	err    error
	// openRoot leaves the root entity un-completed.
	openRoot bool
	root     *ReadTree
}

func newDecodeState(o Options) *decodeState {
	return &decodeState{
		reg:  o.registry(),
		log:  o.logger(),
		obs:  o.Observer,
		sink: o.IssueSink,
	}
}

func (st *decodeState) issue(iss Issue) {
	st.issues = append(st.issues, iss)
	if st.sink != nil {
		st.sink(iss)
	}
	st.log.Debug().Str("path", iss.Path).Str("code", iss.Code).Msg(iss.Message)
}

func (st *decodeState) fail(err error) {
	if st.err == nil && err != nil {
		st.err = err
	}
}

// ObjectReader gives an entity factory access to the fields of its node.
//
// Reading a field consumes it; fields left unconsumed once the factory
// returns are reported as unknown and otherwise ignored. Scalar readers fall
// back to the supplied default when the field is absent, null, or malformed.
type ObjectReader struct {
	node     *ReadTree
	st       *decodeState
	typeName TypeName
	path     string
}

// TypeName returns the type hint of the entity being read.
func (r *ObjectReader) TypeName() TypeName { return r.typeName }

// Node returns the node being read.
func (r *ObjectReader) Node() *ReadTree { return r.node }

// Path returns the slash-separated location of the node.
func (r *ObjectReader) Path() string {
	if r.path == "" {
		return "/"
	}
	return r.path
}

// Err returns the first fatal failure of the document.
func (r *ObjectReader) Err() error { return r.st.err }

// Fail records a fatal failure; the whole read returns it.
func (r *ObjectReader) Fail(err error) { r.st.fail(err) }

// Has reports whether an unconsumed field named name is present.
func (r *ObjectReader) Has(name FieldName) bool {
	_, ok := r.node.Find(name)
	return ok
}

// Issues returns the non-fatal issues found so far in the document.
func (r *ObjectReader) Issues() Issues { return r.st.issues }

func (r *ObjectReader) childPath(n *ReadTree) string {
	if n == r.st.root {
		return "/"
	}
	return r.path + "/" + n.Name().Value()
}

// Report records a non-fatal issue about the child node n. Custom ReadAs
// strategies use it to explain why a node was skipped.
func (r *ObjectReader) Report(n *ReadTree, code, msg string) { r.issueAt(n, code, msg) }

func (r *ObjectReader) issueAt(n *ReadTree, code, msg string) {
	r.st.issue(Issue{Path: r.childPath(n), Code: code, Message: msg})
}

// ReadString reads a string field.
func (r *ObjectReader) ReadString(name FieldName, def string) string {
	return ReadField(r, name, def, ReadAsString)
}

// ReadChar reads a single-character field.
func (r *ObjectReader) ReadChar(name FieldName, def Char) Char {
	return ReadField(r, name, def, ReadAsChar)
}

// ReadUint8 reads a byte field.
func (r *ObjectReader) ReadUint8(name FieldName, def uint8) uint8 {
	return ReadField(r, name, def, ReadAsUint8)
}

// ReadInt16 reads a short field.
func (r *ObjectReader) ReadInt16(name FieldName, def int16) int16 {
	return ReadField(r, name, def, ReadAsInt16)
}

// ReadInt32 reads an int field.
func (r *ObjectReader) ReadInt32(name FieldName, def int32) int32 {
	return ReadField(r, name, def, ReadAsInt32)
}

// ReadInt64 reads a long field.
func (r *ObjectReader) ReadInt64(name FieldName, def int64) int64 {
	return ReadField(r, name, def, ReadAsInt64)
}

// ReadFloat32 reads a float field.
func (r *ObjectReader) ReadFloat32(name FieldName, def float32) float32 {
	return ReadField(r, name, def, ReadAsFloat32)
}

// ReadFloat64 reads a double field.
func (r *ObjectReader) ReadFloat64(name FieldName, def float64) float64 {
	return ReadField(r, name, def, ReadAsFloat64)
}

// ReadBool reads a boolean field.
func (r *ObjectReader) ReadBool(name FieldName, def bool) bool {
	return ReadField(r, name, def, ReadAsBool)
}

// ReadObject reads a polymorphic field. An absent field yields def; an explicit
// null yields nil.
func (r *ObjectReader) ReadObject(name FieldName, def any) any {
	if r.st.err != nil {
		return def
	}
	child, ok := r.node.Take(name)
	if !ok {
		return def
	}
	v, ok := r.decodeObject(child)
	if !ok {
		return def
	}
	return v
}

// ReadEntity reads a nested entity field of type T. An absent field yields def;
// an explicit null yields the zero T. A value of another type is reported as
// an issue and yields def.
func ReadEntity[T Entity](r *ObjectReader, name FieldName, def T) T {
	if r.st.err != nil {
		return def
	}
	child, ok := r.node.Take(name)
	if !ok {
		return def
	}
	v, ok := ReadAsEntity[T]()(r, child)
	if !ok {
		return def
	}
	return v
}

// ReadField reads the field name with the strategy as.
func ReadField[T any](r *ObjectReader, name FieldName, def T, as ReadAs[T]) T {
	if r.st.err != nil {
		return def
	}
	child, ok := r.node.Take(name)
	if !ok {
		return def
	}
	v, ok := as(r, child)
	if !ok {
		return def
	}
	return v
}

// primitive extracts the type hint and decoded text of a primitive node. ok is
// false for nulls and for malformed nodes, which are reported as issues. A raw
// scalar node without a type hint yields a zero hint.
func (r *ObjectReader) primitive(n *ReadTree) (hint TypeName, text string, ok bool) {
	if v, has := n.Value(); has && n.Len() == 0 {
		return TypeName{}, v, true
	}
	if n.IsNull() {
		return HintNull, "", false
	}
	hint, ok = r.typeHint(n)
	if !ok || hint == HintNull {
		return hint, "", false
	}
	if !IsPrimitiveHint(hint) {
		r.issueAt(n, CodeInvalidType, fmt.Sprintf("expected a primitive, found %s", hint.Value()))
		return hint, "", false
	}
	if b, has := n.Take(FieldPrimitiveValueBase64); has {
		enc, _ := b.Value()
		dec, err := decodeBase64(enc)
		if err != nil {
			r.issueAt(n, CodeInvalidFormat, "malformed base64 primitive value")
			return hint, "", false
		}
		return hint, dec, true
	}
	if p, has := n.Take(FieldPrimitiveValue); has {
		v, _ := p.Value()
		return hint, v, true
	}
	r.issueAt(n, CodeRequired, "primitive value missing")
	return hint, "", false
}

// typeHint consumes and parses the type_hint child of n.
func (r *ObjectReader) typeHint(n *ReadTree) (TypeName, bool) {
	h, ok := n.Take(FieldTypeHint)
	if !ok {
		r.issueAt(n, CodeDiscriminatorMissing, "type hint missing")
		return TypeName{}, false
	}
	s, _ := h.Value()
	t, err := NewTypeName(s)
	if err != nil {
		r.issueAt(n, CodeInvalidFormat, fmt.Sprintf("invalid type hint %q", s))
		return TypeName{}, false
	}
	return t, true
}

// decodeObject decodes any node: null, primitive, or entity.
func (r *ObjectReader) decodeObject(n *ReadTree) (any, bool) {
	if v, has := n.Value(); has && n.Len() == 0 {
		return v, true
	}
	if n.IsNull() {
		return nil, true
	}
	hint, ok := r.typeHint(n)
	if !ok {
		return nil, false
	}
	switch {
	case hint == HintNull:
		return nil, true
	case IsPrimitiveHint(hint):
		n.Reset()
		_, text, ok := r.primitive(n)
		if !ok {
			return nil, false
		}
		v, err := fromScalar(hint, text)
		if err != nil {
			r.issueAt(n, CodeInvalidFormat, err.Error())
			return nil, false
		}
		return v, true
	}
	e, ok := r.decodeEntity(n, hint, true)
	if !ok {
		return nil, false
	}
	return e, true
}

// decodeEntity reconstructs the entity of a node whose type hint is already
// consumed.
func (r *ObjectReader) decodeEntity(n *ReadTree, hint TypeName, complete bool) (Entity, bool) {
	f, ok := r.st.reg.Lookup(hint)
	if !ok {
		r.issueAt(n, CodeDiscriminatorUnknown, fmt.Sprintf("type %s is not registered", hint.Value()))
		if r.st.obs != nil {
			r.st.obs.UnregisteredType(hint, "read")
		}
		return nil, false
	}
	path := r.path
	if n != r.st.root {
		path = r.childPath(n)
	}
	child := &ObjectReader{node: n, st: r.st, typeName: hint, path: path}
	e, err := f(child)
	if err != nil {
		r.st.fail(err)
		return nil, false
	}
	if r.st.err != nil {
		return nil, false
	}
	if isNilEntity(e) {
		r.issueAt(n, CodeInvalidType, fmt.Sprintf("factory for %s returned nil", hint.Value()))
		return nil, false
	}
	for _, extra := range n.Residual() {
		r.st.issue(Issue{
			Path:    child.childPath(extra),
			Code:    CodeUnknownKey,
			Message: fmt.Sprintf("unknown field %s on %s", extra.Name().Value(), hint.Value()),
		})
		if r.st.obs != nil {
			r.st.obs.UnknownField(hint, extra.Name().Value())
		}
	}
	if complete && !e.IsComplete() {
		if err := Complete(e); err != nil {
			r.st.fail(err)
			return nil, false
		}
	}
	return e, true
}

// readRoot decodes the document root.
func (st *decodeState) readRoot(root *ReadTree) (any, bool) {
	st.root = root
	r := &ObjectReader{node: root, st: st}
	if root.IsNull() {
		return nil, true
	}
	hint, ok := r.typeHint(root)
	if !ok {
		return nil, false
	}
	if hint == HintNull || IsPrimitiveHint(hint) {
		root.Reset()
		return r.decodeObject(root)
	}
	e, ok := r.decodeEntity(root, hint, !st.openRoot)
	if !ok {
		return nil, false
	}
	return e, true
}
