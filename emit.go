package goseal

import (
	"bytes"
	"encoding/xml"

	gojson "github.com/goccy/go-json"
)

// emitter is the low-level writer shared by both surface syntaxes. Names
// passed inside an array are ignored by JSON and replaced by the array's field
// name in XML.
type emitter interface {
	beginObject(name string)
	endObject()
	beginArray(name string)
	endArray()
	scalar(name string, s scalar)
	null(name string)
	// omitsNullFields reports whether a null field is written by omission.
	omitsNullFields() bool
	// atRoot reports whether nothing has been opened yet.
	atRoot() bool
	finish() ([]byte, error)
}

func newEmitter(f Format) emitter {
	if f.IsXML() {
		return newXMLEmitter(f.IsPretty())
	}
	return &jsonEmitter{pretty: f.IsPretty()}
}

// ---- JSON ----

type jsonFrame struct {
	array bool
	count int
}

type jsonEmitter struct {
	buf    bytes.Buffer
	stack  []jsonFrame
	pretty bool
	err    error
}

func (e *jsonEmitter) atRoot() bool          { return len(e.stack) == 0 && e.buf.Len() == 0 }
func (e *jsonEmitter) omitsNullFields() bool { return false }

// key writes the separator and, inside an object, the quoted key.
func (e *jsonEmitter) key(name string) {
	n := len(e.stack)
	if n == 0 {
		return
	}
	top := &e.stack[n-1]
	if top.count > 0 {
		e.buf.WriteByte(',')
	}
	top.count++
	if !top.array {
		e.quote(name)
		e.buf.WriteByte(':')
	}
}

func (e *jsonEmitter) quote(s string) {
	b, err := gojson.MarshalNoEscape(s)
	if err != nil {
		if e.err == nil {
			e.err = err
		}
		return
	}
	e.buf.Write(b)
}

func (e *jsonEmitter) beginObject(name string) {
	e.key(name)
	e.buf.WriteByte('{')
	e.stack = append(e.stack, jsonFrame{})
}

func (e *jsonEmitter) endObject() {
	e.buf.WriteByte('}')
	e.stack = e.stack[:len(e.stack)-1]
}

func (e *jsonEmitter) beginArray(name string) {
	e.key(name)
	e.buf.WriteByte('[')
	e.stack = append(e.stack, jsonFrame{array: true})
}

func (e *jsonEmitter) endArray() {
	e.buf.WriteByte(']')
	e.stack = e.stack[:len(e.stack)-1]
}

func (e *jsonEmitter) scalar(name string, s scalar) {
	e.key(name)
	if s.numeric || s.boolean {
		e.buf.WriteString(s.text)
		return
	}
	e.quote(s.text)
}

func (e *jsonEmitter) null(name string) {
	e.key(name)
	e.buf.WriteString("null")
}

func (e *jsonEmitter) finish() ([]byte, error) {
	if e.err != nil {
		return nil, e.err
	}
	if !e.pretty {
		return e.buf.Bytes(), nil
	}
	var out bytes.Buffer
	if err := gojson.Indent(&out, e.buf.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// ---- XML ----

type xmlFrame struct {
	array bool
	name  string
}

type xmlEmitter struct {
	buf   bytes.Buffer
	enc   *xml.Encoder
	stack []xmlFrame
	began bool
	err   error
}

func newXMLEmitter(pretty bool) *xmlEmitter {
	e := &xmlEmitter{}
	e.enc = xml.NewEncoder(&e.buf)
	if pretty {
		e.enc.Indent("", "  ")
	}
	return e
}

func (e *xmlEmitter) atRoot() bool          { return !e.began }
func (e *xmlEmitter) omitsNullFields() bool { return true }

func (e *xmlEmitter) token(t xml.Token) {
	if e.err != nil {
		return
	}
	e.err = e.enc.EncodeToken(t)
}

// element resolves the tag for name: the document root is always <object>,
// and elements inside an array take the array's field name.
func (e *xmlEmitter) element(name string) string {
	if len(e.stack) == 0 {
		return FieldDocumentRoot.Value()
	}
	if top := e.stack[len(e.stack)-1]; top.array {
		return top.name
	}
	return name
}

func (e *xmlEmitter) beginObject(name string) {
	el := e.element(name)
	e.began = true
	e.token(xml.StartElement{Name: xml.Name{Local: el}})
	e.stack = append(e.stack, xmlFrame{name: el})
}

func (e *xmlEmitter) endObject() {
	top := e.stack[len(e.stack)-1]
	e.stack = e.stack[:len(e.stack)-1]
	e.token(xml.EndElement{Name: xml.Name{Local: top.name}})
}

func (e *xmlEmitter) beginArray(name string) {
	e.stack = append(e.stack, xmlFrame{array: true, name: e.element(name)})
}

func (e *xmlEmitter) endArray() { e.stack = e.stack[:len(e.stack)-1] }

func (e *xmlEmitter) scalar(name string, s scalar) {
	el := e.element(name)
	e.began = true
	e.token(xml.StartElement{Name: xml.Name{Local: el}})
	e.token(xml.CharData(s.text))
	e.token(xml.EndElement{Name: xml.Name{Local: el}})
}

func (e *xmlEmitter) null(name string) {
	el := e.element(name)
	e.began = true
	e.token(xml.StartElement{Name: xml.Name{Local: el}})
	e.token(xml.EndElement{Name: xml.Name{Local: el}})
}

func (e *xmlEmitter) finish() ([]byte, error) {
	if e.err != nil {
		return nil, e.err
	}
	if err := e.enc.Flush(); err != nil {
		return nil, err
	}
	return e.buf.Bytes(), nil
}
