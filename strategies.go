package goseal

import (
	"fmt"
	"iter"
	"slices"
	"strconv"
	"strings"
)

// WriteAs writes one value of type T under name. Collection helpers call it
// once per element with FieldArrayElement, or with FieldKey and FieldValue for
// map entries; a strategy must write exactly one value under the name it is
// given.
type WriteAs[T any] func(w *ObjectWriter, name FieldName, v T)

// ReadAs decodes one node into a T. r is the reader of the node's parent. ok is
// false when the node cannot be decoded; the strategy reports why through the
// reader's issues.
type ReadAs[T any] func(r *ObjectReader, node *ReadTree) (v T, ok bool)

// Write strategies for the primitive types.
var (
	WriteAsString  WriteAs[string]  = (*ObjectWriter).WriteString
	WriteAsChar    WriteAs[Char]    = (*ObjectWriter).WriteChar
	WriteAsUint8   WriteAs[uint8]   = (*ObjectWriter).WriteUint8
	WriteAsInt16   WriteAs[int16]   = (*ObjectWriter).WriteInt16
	WriteAsInt32   WriteAs[int32]   = (*ObjectWriter).WriteInt32
	WriteAsInt64   WriteAs[int64]   = (*ObjectWriter).WriteInt64
	WriteAsFloat32 WriteAs[float32] = (*ObjectWriter).WriteFloat32
	WriteAsFloat64 WriteAs[float64] = (*ObjectWriter).WriteFloat64
	WriteAsBool    WriteAs[bool]    = (*ObjectWriter).WriteBool
	WriteAsAny     WriteAs[any]     = (*ObjectWriter).WriteObject
)

// WriteAsEntity writes entities of type T.
func WriteAsEntity[T Entity]() WriteAs[T] {
	return func(w *ObjectWriter, name FieldName, v T) { w.WriteEntity(name, v) }
}

// WriteAsObject writes any T polymorphically.
func WriteAsObject[T any]() WriteAs[T] {
	return func(w *ObjectWriter, name FieldName, v T) { w.WriteObject(name, v) }
}

// Read strategies for the primitive types. A raw scalar without a type hint is
// accepted and parsed as the requested type.
var (
	ReadAsString  ReadAs[string]  = readPrimitive(HintString, func(s string) (string, error) { return s, nil })
	ReadAsChar    ReadAs[Char]    = readPrimitive(HintChar, func(s string) (Char, error) { r, err := parseChar(s); return Char(r), err })
	ReadAsUint8   ReadAs[uint8]   = readPrimitive(HintByte, func(s string) (uint8, error) { n, err := strconv.ParseUint(s, 10, 8); return uint8(n), err })
	ReadAsInt16   ReadAs[int16]   = readPrimitive(HintShort, func(s string) (int16, error) { n, err := strconv.ParseInt(s, 10, 16); return int16(n), err })
	ReadAsInt32   ReadAs[int32]   = readPrimitive(HintInt, func(s string) (int32, error) { n, err := strconv.ParseInt(s, 10, 32); return int32(n), err })
	ReadAsInt64   ReadAs[int64]   = readPrimitive(HintLong, func(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) })
	ReadAsFloat32 ReadAs[float32] = readPrimitive(HintFloat, func(s string) (float32, error) { f, err := strconv.ParseFloat(s, 32); return float32(f), err })
	ReadAsFloat64 ReadAs[float64] = readPrimitive(HintDouble, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
	ReadAsBool    ReadAs[bool]    = readPrimitive(HintBoolean, strconv.ParseBool)
	ReadAsAny     ReadAs[any]     = func(r *ObjectReader, n *ReadTree) (any, bool) { return r.decodeObject(n) }
)

func readPrimitive[T any](want TypeName, parse func(string) (T, error)) ReadAs[T] {
	return func(r *ObjectReader, n *ReadTree) (T, bool) {
		var zero T
		hint, text, ok := r.primitive(n)
		if !ok {
			return zero, false
		}
		if !hint.IsZero() && hint != want {
			r.issueAt(n, CodeInvalidType, fmt.Sprintf("expected %s, found %s", want.Value(), hint.Value()))
			return zero, false
		}
		v, err := parse(text)
		if err != nil {
			r.issueAt(n, CodeInvalidFormat, err.Error())
			return zero, false
		}
		return v, true
	}
}

// ReadAsEntity decodes entities of type T. A null decodes to the zero T.
func ReadAsEntity[T Entity]() ReadAs[T] {
	return func(r *ObjectReader, n *ReadTree) (T, bool) {
		var zero T
		v, ok := r.decodeObject(n)
		if !ok {
			return zero, false
		}
		if v == nil {
			return zero, true
		}
		t, ok := v.(T)
		if !ok {
			r.issueAt(n, CodeInvalidType, fmt.Sprintf("expected %T, found %T", zero, v))
			return zero, false
		}
		return t, true
	}
}

// ReadAsObject decodes any value and asserts it to T. A null decodes to the
// zero T.
func ReadAsObject[T any]() ReadAs[T] {
	return func(r *ObjectReader, n *ReadTree) (T, bool) {
		var zero T
		v, ok := r.decodeObject(n)
		if !ok {
			return zero, false
		}
		if v == nil {
			return zero, true
		}
		t, ok := v.(T)
		if !ok {
			r.issueAt(n, CodeInvalidType, fmt.Sprintf("expected %T, found %T", zero, v))
			return zero, false
		}
		return t, true
	}
}

// WriteSeq writes the values of seq as a collection field.
func WriteSeq[T any](w *ObjectWriter, name FieldName, seq iter.Seq[T], as WriteAs[T]) {
	if w.err != nil {
		return
	}
	w.out.beginArray(name.Value())
	w.path = append(w.path, name.Value())
	for v := range seq {
		if w.err != nil {
			break
		}
		as(w, FieldArrayElement, v)
	}
	w.path = w.path[:len(w.path)-1]
	w.out.endArray()
}

// WriteSlice writes vs as a collection field.
func WriteSlice[T any](w *ObjectWriter, name FieldName, vs []T, as WriteAs[T]) {
	WriteSeq(w, name, slices.Values(vs), as)
}

// WriteSet writes seq as a collection field whose order carries no meaning.
// The wire keeps iteration order; equality and hashing see the elements
// sorted by their rendering.
func WriteSet[T any](w *ObjectWriter, name FieldName, seq iter.Seq[T], as WriteAs[T]) {
	if w.err != nil {
		return
	}
	if !w.canonical {
		WriteSeq(w, name, seq, as)
		return
	}
	vs := slices.Collect(seq)
	keys := make([]string, len(vs))
	for i, v := range vs {
		keys[i] = w.fragment(func(sub *ObjectWriter) { as(sub, FieldArrayElement, v) })
	}
	WriteSeq(w, name, canonicalOrder(vs, keys), as)
}

// canonicalOrder yields vs sorted by keys.
func canonicalOrder[T any](vs []T, keys []string) iter.Seq[T] {
	idx := make([]int, len(vs))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int { return strings.Compare(keys[a], keys[b]) })
	return func(yield func(T) bool) {
		for _, i := range idx {
			if !yield(vs[i]) {
				return
			}
		}
	}
}

// WriteMap writes the pairs of seq as a collection of key/value entries.
// Entry order carries no meaning, as with WriteSet.
func WriteMap[K, V any](w *ObjectWriter, name FieldName, seq iter.Seq2[K, V], keyAs WriteAs[K], valueAs WriteAs[V]) {
	if w.err != nil {
		return
	}
	if w.canonical {
		type pair struct {
			k K
			v V
		}
		var ps []pair
		var keys []string
		for k, v := range seq {
			keys = append(keys, w.fragment(func(sub *ObjectWriter) {
				sub.out.beginObject(FieldArrayElement.Value())
				keyAs(sub, FieldKey, k)
				valueAs(sub, FieldValue, v)
				sub.out.endObject()
			}))
			ps = append(ps, pair{k, v})
		}
		sorted := canonicalOrder(ps, keys)
		seq = func(yield func(K, V) bool) {
			for p := range sorted {
				if !yield(p.k, p.v) {
					return
				}
			}
		}
	}
	w.out.beginArray(name.Value())
	w.path = append(w.path, name.Value())
	for k, v := range seq {
		if w.err != nil {
			break
		}
		w.out.beginObject(FieldArrayElement.Value())
		keyAs(w, FieldKey, k)
		valueAs(w, FieldValue, v)
		w.out.endObject()
	}
	w.path = w.path[:len(w.path)-1]
	w.out.endArray()
}

// ReadSlice reads every element of the collection field name. Elements that
// cannot be decoded are skipped and reported as issues.
func ReadSlice[T any](r *ObjectReader, name FieldName, as ReadAs[T]) []T {
	if r.st.err != nil {
		return nil
	}
	nodes := r.node.TakeAll(name)
	out := make([]T, 0, len(nodes))
	for _, n := range nodes {
		if r.st.err != nil {
			return nil
		}
		if v, ok := as(r, n); ok {
			out = append(out, v)
		}
	}
	return out
}

// Entry is one key/value pair of a map field.
type Entry[K, V any] struct {
	Key   K
	Value V
}

// ReadMap reads every entry of the map field name in document order. An absent
// key or value is read as a null.
func ReadMap[K, V any](r *ObjectReader, name FieldName, keyAs ReadAs[K], valueAs ReadAs[V]) []Entry[K, V] {
	if r.st.err != nil {
		return nil
	}
	nodes := r.node.TakeAll(name)
	out := make([]Entry[K, V], 0, len(nodes))
	for _, n := range nodes {
		er := &ObjectReader{node: n, st: r.st, typeName: r.typeName, path: r.childPath(n)}
		kn, ok := n.Take(FieldKey)
		if !ok {
			kn = NewReadTree(FieldKey)
		}
		vn, ok := n.Take(FieldValue)
		if !ok {
			vn = NewReadTree(FieldValue)
		}
		k, ok := keyAs(er, kn)
		if !ok {
			er.issueAt(kn, CodeInvalidType, "map entry key cannot be decoded")
			continue
		}
		v, ok := valueAs(er, vn)
		if !ok {
			er.issueAt(vn, CodeInvalidType, "map entry value cannot be decoded")
			continue
		}
		out = append(out, Entry[K, V]{Key: k, Value: v})
		if r.st.err != nil {
			return nil
		}
	}
	return out
}
