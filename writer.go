package goseal

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

// maxWriteDepth bounds entity nesting on write. Completed entities cannot form
// cycles through their own fields, but mutable ones can.
const maxWriteDepth = 10000

// ObjectWriter emits the fields of one entity. Entities call its typed Write
// methods from their Write method.
//
// Errors are sticky: after the first failure every call is a no-op and Err
// reports the failure.
type ObjectWriter struct {
	out    emitter
	format Format
	reg    *Registry
	log    zerolog.Logger
	obs    Observer
	warn   bool
	path   []string
	depth  int
	err    error
	// canonical sorts unordered collections so that structurally equal
	// entities render identically.
	canonical bool
}

func newObjectWriter(f Format, o Options, warn bool) *ObjectWriter {
	return &ObjectWriter{
		out:    newEmitter(f),
		format: f,
		reg:    o.registry(),
		log:    o.logger(),
		obs:    o.Observer,
		warn:   warn,
	}
}

// fragment renders what fn writes as a standalone compact JSON text, with the
// settings of w. Unordered collections use it to derive a canonical order.
func (w *ObjectWriter) fragment(fn func(sub *ObjectWriter)) string {
	sub := &ObjectWriter{
		out:       &jsonEmitter{},
		format:    FormatJSON,
		reg:       w.reg,
		log:       w.log,
		path:      append([]string(nil), w.path...),
		depth:     w.depth,
		canonical: w.canonical,
	}
	fn(sub)
	data, err := sub.finish()
	if err != nil {
		w.Fail(err)
		return ""
	}
	return string(data)
}

// Format returns the syntax being written.
func (w *ObjectWriter) Format() Format { return w.format }

// Err returns the first failure.
func (w *ObjectWriter) Err() error { return w.err }

// Fail records err unless a failure is already recorded.
func (w *ObjectWriter) Fail(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

func (w *ObjectWriter) pathString() string {
	if len(w.path) == 0 {
		return "/"
	}
	return "/" + strings.Join(w.path, "/")
}

// WriteString writes a string field.
func (w *ObjectWriter) WriteString(name FieldName, v string) { w.WriteObject(name, v) }

// WriteChar writes a single-character field.
func (w *ObjectWriter) WriteChar(name FieldName, v Char) { w.WriteObject(name, v) }

// WriteUint8 writes a byte field.
func (w *ObjectWriter) WriteUint8(name FieldName, v uint8) { w.WriteObject(name, v) }

// WriteInt16 writes a short field.
func (w *ObjectWriter) WriteInt16(name FieldName, v int16) { w.WriteObject(name, v) }

// WriteInt32 writes an int field.
func (w *ObjectWriter) WriteInt32(name FieldName, v int32) { w.WriteObject(name, v) }

// WriteInt64 writes a long field.
func (w *ObjectWriter) WriteInt64(name FieldName, v int64) { w.WriteObject(name, v) }

// WriteFloat32 writes a float field.
func (w *ObjectWriter) WriteFloat32(name FieldName, v float32) { w.WriteObject(name, v) }

// WriteFloat64 writes a double field.
func (w *ObjectWriter) WriteFloat64(name FieldName, v float64) { w.WriteObject(name, v) }

// WriteBool writes a boolean field.
func (w *ObjectWriter) WriteBool(name FieldName, v bool) { w.WriteObject(name, v) }

// WriteEntity writes a nested entity field. A nil entity is a null.
func (w *ObjectWriter) WriteEntity(name FieldName, e Entity) { w.WriteObject(name, e) }

// WriteObject writes a polymorphic field: nil, a primitive, or an entity. Its
// type hint tells the reader what to reconstruct.
func (w *ObjectWriter) WriteObject(name FieldName, v any) {
	if w.err != nil {
		return
	}
	w.writeValue(name.Value(), v, name == FieldArrayElement)
}

// writeValue emits v under name. explicitNull forces a null to be written
// even in syntaxes that express a null field by omission.
func (w *ObjectWriter) writeValue(name string, v any, explicitNull bool) {
	if e, ok := v.(Entity); ok {
		if isNilEntity(e) {
			v = nil
		} else {
			w.writeEntity(name, e)
			return
		}
	}
	if v == nil {
		w.writeNull(name, explicitNull)
		return
	}
	if c, isChar := v.(Char); isChar && !utf8.ValidRune(rune(c)) {
		w.Fail(&ProtocolError{
			Code:    CodeUnsupportedValue,
			Path:    w.pathString() + "/" + name,
			Offset:  -1,
			Message: fmt.Sprintf("char %U is not a valid Unicode scalar value", rune(c)),
		})
		return
	}
	s, ok := toScalar(v)
	if !ok {
		w.Fail(&ProtocolError{
			Code:    CodeUnsupportedValue,
			Path:    w.pathString() + "/" + name,
			Offset:  -1,
			Message: fmt.Sprintf("cannot write value of type %T", v),
		})
		return
	}
	w.out.beginObject(name)
	w.out.scalar(FieldTypeHint.Value(), scalar{hint: HintString, text: s.hint.Value()})
	if (s.hint == HintString || s.hint == HintChar) && needsBase64(s.text) {
		w.out.scalar(FieldPrimitiveValueBase64.Value(), scalar{hint: HintString, text: encodeBase64(s.text)})
	} else {
		w.out.scalar(FieldPrimitiveValue.Value(), s)
	}
	w.out.endObject()
}

func (w *ObjectWriter) writeNull(name string, explicit bool) {
	if w.out.atRoot() || explicit || !w.out.omitsNullFields() {
		w.out.beginObject(name)
		w.out.scalar(FieldTypeHint.Value(), scalar{hint: HintString, text: HintNull.Value()})
		w.out.endObject()
	}
}

func (w *ObjectWriter) writeEntity(name string, e Entity) {
	t := e.TypeName()
	if w.warn && !w.reg.IsRegistered(t) {
		w.log.Warn().Str("type", t.Value()).Str("path", w.pathString()).
			Msg("writing entity whose type is not registered; it cannot be read back")
		if w.obs != nil {
			w.obs.UnregisteredType(t, "write")
		}
	}
	if w.depth >= maxWriteDepth {
		w.Fail(protocolError(CodeTooBig, "entity nesting too deep", nil))
		return
	}
	w.depth++
	w.path = append(w.path, name)
	w.out.beginObject(name)
	w.out.scalar(FieldTypeHint.Value(), scalar{hint: HintString, text: t.Value()})
	if err := e.Write(w); err != nil {
		w.Fail(err)
	}
	w.out.endObject()
	w.path = w.path[:len(w.path)-1]
	w.depth--
}

// writeTree re-emits a parsed tree. Repeated children become an array.
func (w *ObjectWriter) writeTree(name string, t *ReadTree) {
	if v, ok := t.Value(); ok && t.Len() == 0 {
		w.out.scalar(name, scalar{hint: HintString, text: v})
		return
	}
	if t.IsNull() && !w.out.atRoot() {
		if name != FieldArrayElement.Value() && w.out.omitsNullFields() {
			return
		}
		w.out.null(name)
		return
	}
	w.out.beginObject(name)
	var order []FieldName
	groups := make(map[FieldName][]*ReadTree)
	for _, c := range t.Children() {
		if _, seen := groups[c.Name()]; !seen {
			order = append(order, c.Name())
		}
		groups[c.Name()] = append(groups[c.Name()], c)
	}
	for _, n := range order {
		g := groups[n]
		if len(g) == 1 {
			w.writeTree(n.Value(), g[0])
			continue
		}
		w.out.beginArray(n.Value())
		for _, c := range g {
			w.writeTree(FieldArrayElement.Value(), c)
		}
		w.out.endArray()
	}
	w.out.endObject()
}

func (w *ObjectWriter) finish() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	return w.out.finish()
}
