package goseal

import (
	"errors"
	"fmt"
	"io"
	"strings"

	eng "github.com/reoring/goseal/internal/engine"
)

// frameKind distinguishes the three parser frames.
type frameKind int

const (
	frameObject frameKind = iota // inside an object, expecting a key or its end
	frameField                   // a key was read, expecting its value
	frameArray                   // inside an array, expecting elements or its end
)

type parseFrame struct {
	kind   frameKind
	node   *ReadTree // object node, or the placeholder of a field
	parent *ReadTree // for fields and arrays: the object receiving siblings
	name   FieldName // for arrays: the field name every element takes
}

// treeBuilder turns a token stream into a ReadTree.
//
// A key pushes a placeholder child. A scalar fills the placeholder and pops
// it. An object start turns the placeholder into an object. An array start
// discards the placeholder and produces one sibling per element, each named
// after the field, because a key followed by an object and a key followed by
// an array of objects are indistinguishable until the array start arrives.
type treeBuilder struct {
	stack []parseFrame
	root  *ReadTree
}

func (b *treeBuilder) top() *parseFrame {
	if len(b.stack) == 0 {
		return nil
	}
	return &b.stack[len(b.stack)-1]
}

func (b *treeBuilder) pop() { b.stack = b.stack[:len(b.stack)-1] }

// done reports whether the root object has been closed.
func (b *treeBuilder) done() bool { return b.root != nil && len(b.stack) == 0 }

func (b *treeBuilder) push(tok Token) error {
	top := b.top()
	switch tok.Kind {
	case eng.KindBeginObject:
		switch {
		case top == nil:
			if b.root != nil {
				return errors.New("multiple document roots")
			}
			b.root = NewReadTree(FieldDocumentRoot)
			b.stack = append(b.stack, parseFrame{kind: frameObject, node: b.root})
		case top.kind == frameField:
			top.kind = frameObject
		case top.kind == frameArray:
			child := NewReadTree(top.name)
			top.parent.Add(child)
			b.stack = append(b.stack, parseFrame{kind: frameObject, node: child})
		default:
			return errors.New("object where a key was expected")
		}
	case eng.KindEndObject:
		if top == nil || top.kind != frameObject {
			return errors.New("unbalanced end of object")
		}
		b.pop()
	case eng.KindKey:
		if top == nil || top.kind != frameObject {
			return fmt.Errorf("key %q outside of an object", tok.String)
		}
		name, err := NewFieldName(tok.String)
		if err != nil {
			return fmt.Errorf("invalid field name %q", tok.String)
		}
		child := NewReadTree(name)
		top.node.Add(child)
		b.stack = append(b.stack, parseFrame{kind: frameField, node: child, parent: top.node})
	case eng.KindBeginArray:
		if top == nil || top.kind != frameField {
			if top != nil && top.kind == frameArray {
				return errors.New("nested arrays are not supported")
			}
			return errors.New("array outside of a field")
		}
		// Replace the placeholder by the array's future siblings.
		parent := top.parent
		parent.children = parent.children[:len(parent.children)-1]
		*top = parseFrame{kind: frameArray, parent: parent, name: top.node.name}
	case eng.KindEndArray:
		if top == nil || top.kind != frameArray {
			return errors.New("unbalanced end of array")
		}
		b.pop()
	case eng.KindString, eng.KindNumber, eng.KindBool, eng.KindNull:
		switch {
		case top == nil:
			return errors.New("document root must be an object")
		case top.kind == frameField:
			if tok.Kind != eng.KindNull {
				top.node.SetValue(tok.Text())
			}
			b.pop()
		case top.kind == frameArray:
			child := NewReadTree(top.name)
			if tok.Kind != eng.KindNull {
				child.SetValue(tok.Text())
			}
			top.parent.Add(child)
		default:
			return errors.New("scalar where a key was expected")
		}
	default:
		return fmt.Errorf("unexpected token %s", tok.Kind)
	}
	return nil
}

// buildTree drains src into a ReadTree.
func buildTree(src Source) (*ReadTree, error) {
	var b treeBuilder
	for !b.done() {
		tok, err := src.NextToken()
		if err != nil {
			if err == io.EOF {
				return nil, protocolError(CodeParseError, "unexpected end of document", io.ErrUnexpectedEOF)
			}
			return nil, wrapReadError(err)
		}
		if err := b.push(tok); err != nil {
			pe := protocolError(CodeParseError, err.Error(), err)
			pe.Offset = src.Location()
			return nil, pe
		}
	}
	if err := eng.Drain(src); err != nil {
		return nil, wrapReadError(err)
	}
	return b.root, nil
}

// ParseTree reads one document in either surface syntax and returns its tree
// together with the detected format (compact variant).
func ParseTree(r io.Reader, opts ...Options) (*ReadTree, Format, error) {
	o := lastOptions(opts)
	counter := &capReader{}
	src, f, err := openSource(r, o, counter)
	if err != nil {
		return nil, f, err
	}
	t, err := buildTree(src)
	if err != nil && o.MaxBytes > 0 && counter.n > o.MaxBytes {
		return nil, f, protocolError(CodeTruncated, "max bytes exceeded", err)
	}
	return t, f, err
}

// ParseTreeString is ParseTree over a string.
func ParseTreeString(s string, opts ...Options) (*ReadTree, Format, error) {
	return ParseTree(strings.NewReader(s), opts...)
}
