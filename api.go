package goseal

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Serialize renders e in format f.
func Serialize(f Format, e Entity, opts ...Options) (string, error) {
	return SerializeValue(f, e, opts...)
}

// SerializeValue renders v, which may be nil, a primitive, or an entity.
func SerializeValue(f Format, v any, opts ...Options) (string, error) {
	var b strings.Builder
	if err := Write(&b, f, v, opts...); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Write renders v in format f to dst.
func Write(dst io.Writer, f Format, v any, opts ...Options) error {
	o := lastOptions(opts)
	start := time.Now()
	data, err := render(f, v, o, true)
	if err != nil {
		return err
	}
	if o.Observer != nil {
		o.Observer.DocumentWritten(f, len(data), time.Since(start))
	}
	_, err = dst.Write(data)
	return err
}

func render(f Format, v any, o Options, warn bool) ([]byte, error) {
	w := newObjectWriter(f, o, warn)
	w.writeValue(FieldDocumentRoot.Value(), v, true)
	return w.finish()
}

// Deserialize reads one document in either syntax and returns its root
// entity, completed. A null root yields a nil entity. A primitive root, or a
// root whose type is not registered, is an error.
func Deserialize(text string, opts ...Options) (Entity, error) {
	o := lastOptions(opts)
	v, ok, err := read(strings.NewReader(text), o, false)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errUndecodableRoot
	}
	if v == nil {
		return nil, nil
	}
	e, isEntity := v.(Entity)
	if !isEntity {
		return nil, &ProtocolError{Code: CodeInvalidType, Path: "/", Offset: -1,
			Message: fmt.Sprintf("document root is a %T, not an entity", v)}
	}
	return e, nil
}

// DeserializeAs reads one document whose root should be a T. A root that is
// unregistered or of another type yields def.
func DeserializeAs[T Entity](text string, def T, opts ...Options) (T, error) {
	v, err := DeserializeValue(text, def, opts...)
	if err != nil {
		return def, err
	}
	if v == nil {
		var zero T
		return zero, nil
	}
	t, ok := v.(T)
	if !ok {
		return def, nil
	}
	return t, nil
}

// DeserializeValue reads one document whose root may be nil, a primitive, or
// an entity. A root that cannot be decoded yields def.
func DeserializeValue(text string, def any, opts ...Options) (any, error) {
	return Read(strings.NewReader(text), def, opts...)
}

// Read reads one document from r. A root that cannot be decoded, such as one
// whose type is not registered, yields def.
//
// Unknown fields and unregistered nested types are tolerated: they are
// reported through Options.IssueSink and skipped. Malformed input and
// failures raised by factories or Complete abort the read.
func Read(r io.Reader, def any, opts ...Options) (any, error) {
	v, ok, err := read(r, lastOptions(opts), false)
	if err != nil {
		return nil, err
	}
	if !ok {
		return def, nil
	}
	return v, nil
}

var errUndecodableRoot = &ProtocolError{Code: CodeDiscriminatorUnknown, Path: "/", Offset: -1, Message: "document root cannot be decoded"}

func read(r io.Reader, o Options, openRoot bool) (any, bool, error) {
	start := time.Now()
	counter := &capReader{}
	v, ok, err := readCounted(r, o, openRoot, counter)
	if o.Observer != nil {
		o.Observer.DocumentRead(counter.format, int(counter.n), time.Since(start), err)
	}
	return v, ok, err
}

func readCounted(r io.Reader, o Options, openRoot bool, counter *capReader) (any, bool, error) {
	src, f, err := openSource(r, o, counter)
	counter.format = f
	if err != nil {
		return nil, false, err
	}
	tree, err := buildTree(src)
	if err != nil {
		if o.MaxBytes > 0 && counter.n > o.MaxBytes {
			err = protocolError(CodeTruncated, "max bytes exceeded", err)
		}
		return nil, false, err
	}
	return decodeTree(tree, o, openRoot)
}

func decodeTree(tree *ReadTree, o Options, openRoot bool) (any, bool, error) {
	st := newDecodeState(o)
	st.openRoot = openRoot
	v, ok := st.readRoot(tree)
	if st.err != nil {
		return nil, false, st.err
	}
	return v, ok, nil
}

// ReadTreeValue decodes an already parsed tree. The tree's consumed marks are
// reset first, so one tree can be decoded many times.
func ReadTreeValue(tree *ReadTree, def any, opts ...Options) (any, error) {
	tree.Reset()
	v, ok, err := decodeTree(tree, lastOptions(opts), false)
	if err != nil {
		return nil, err
	}
	if !ok {
		return def, nil
	}
	return v, nil
}

// DeepClone returns a completed structural copy of e, made by a serialization
// round trip.
func DeepClone[T Entity](e T, opts ...Options) (T, error) {
	return clone(e, lastOptions(opts), false)
}

// MutableClone returns a structural copy of e whose root is not completed, so
// it can be edited and then completed. Nested entities are completed.
func MutableClone[T Entity](e T, opts ...Options) (T, error) {
	return clone(e, lastOptions(opts), true)
}

func clone[T Entity](e T, o Options, open bool) (T, error) {
	var zero T
	if isNilEntity(e) {
		return zero, nil
	}
	data, err := render(FormatJSON, e, o, true)
	if err != nil {
		return zero, fmt.Errorf("clone %s: %w", e.TypeName().Value(), err)
	}
	v, ok, err := read(bytes.NewReader(data), o, open)
	if err != nil {
		return zero, fmt.Errorf("clone %s: %w", e.TypeName().Value(), err)
	}
	if !ok {
		return zero, fmt.Errorf("clone %s: %w", e.TypeName().Value(), errUndecodableRoot)
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("clone %s: reconstructed %T", e.TypeName().Value(), v)
	}
	return t, nil
}

// Transcode converts a document between syntaxes without decoding entities,
// so it needs no registry.
func Transcode(text string, to Format, opts ...Options) (string, error) {
	o := lastOptions(opts)
	tree, _, err := ParseTreeString(text, o)
	if err != nil {
		return "", err
	}
	w := newObjectWriter(to, o, false)
	w.writeTree(FieldDocumentRoot.Value(), tree)
	data, err := w.finish()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

var quiet = zerolog.Nop()

// canonical renders e as compact JSON with warnings and events suppressed.
// Unordered collections are sorted, so structurally equal entities render
// identically.
func canonical(e Entity) (string, error) {
	w := newObjectWriter(FormatJSON, Options{Logger: &quiet}, false)
	w.canonical = true
	w.writeValue(FieldDocumentRoot.Value(), e, true)
	data, err := w.finish()
	if err != nil {
		return "", err
	}
	return string(data), nil
}
