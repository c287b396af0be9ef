package goseal

import (
	"strings"
	"sync"

	"github.com/reoring/goseal/i18n"
)

// interned holds one canonical *string per distinct identifier so that equal
// names share a single representation and compare with ==.
var interned sync.Map // map[string]*string

func intern(s string) *string {
	if p, ok := interned.Load(s); ok {
		return p.(*string)
	}
	p, _ := interned.LoadOrStore(s, &s)
	return p.(*string)
}

// FieldName names a field slot on the wire. It must start with a lowercase
// letter followed by lowercase letters, digits, or underscores.
//
// The zero value is not a valid name; use NewFieldName or MustFieldName.
type FieldName struct{ v *string }

// NewFieldName validates and interns s.
func NewFieldName(s string) (FieldName, error) {
	if !validFieldName(s) {
		return FieldName{}, invalidIdentifier("field name", s)
	}
	return FieldName{v: intern(s)}, nil
}

// MustFieldName is NewFieldName for package-level vocabulary. It panics on
// invalid input.
func MustFieldName(s string) FieldName {
	n, err := NewFieldName(s)
	if err != nil {
		panic(err)
	}
	return n
}

// Value returns the underlying string.
func (n FieldName) Value() string {
	if n.v == nil {
		return ""
	}
	return *n.v
}

func (n FieldName) String() string { return n.Value() }

// IsZero reports whether n is the zero FieldName.
func (n FieldName) IsZero() bool { return n.v == nil }

// Compare orders names lexicographically.
func (n FieldName) Compare(o FieldName) int { return strings.Compare(n.Value(), o.Value()) }

// TypeName names a polymorphic wire type. It must start with a letter followed
// by letters, digits, underscores, dots, or dollar signs.
type TypeName struct{ v *string }

// NewTypeName validates and interns s.
func NewTypeName(s string) (TypeName, error) {
	if !validTypeName(s) {
		return TypeName{}, invalidIdentifier("type name", s)
	}
	return TypeName{v: intern(s)}, nil
}

// MustTypeName is NewTypeName for package-level vocabulary. It panics on
// invalid input.
func MustTypeName(s string) TypeName {
	n, err := NewTypeName(s)
	if err != nil {
		panic(err)
	}
	return n
}

// Value returns the underlying string.
func (n TypeName) Value() string {
	if n.v == nil {
		return ""
	}
	return *n.v
}

func (n TypeName) String() string { return n.Value() }

// IsZero reports whether n is the zero TypeName.
func (n TypeName) IsZero() bool { return n.v == nil }

// Compare orders names lexicographically.
func (n TypeName) Compare(o TypeName) int { return strings.Compare(n.Value(), o.Value()) }

func validFieldName(s string) bool {
	if s == "" {
		return false
	}
	if s[0] < 'a' || s[0] > 'z' {
		return false
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '_':
		default:
			return false
		}
	}
	return true
}

func validTypeName(s string) bool {
	if s == "" || !isLetter(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		switch {
		case isLetter(c), c >= '0' && c <= '9', c == '_', c == '.', c == '$':
		default:
			return false
		}
	}
	return true
}

func isLetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }

func invalidIdentifier(kind, s string) error {
	return &ValidationError{Issues: Issues{{
		Path:    "/",
		Code:    CodeInvalidFormat,
		Message: i18n.T(CodeInvalidFormat, map[string]string{"kind": kind, "value": s}),
		Params:  map[string]any{"kind": kind, "value": s},
	}}}
}

// Wire vocabulary.
var (
	FieldTypeHint             = MustFieldName("type_hint")
	FieldPrimitiveValue       = MustFieldName("primitive_value")
	FieldPrimitiveValueBase64 = MustFieldName("primitive_value_base64")
	FieldKey                  = MustFieldName("key")
	FieldValue                = MustFieldName("value")
	// FieldDocumentRoot names the root node of every ReadTree and the root
	// element of XML documents.
	FieldDocumentRoot = MustFieldName("object")
	// FieldArrayElement marks values written inside a collection. It is never
	// emitted as an XML tag; elements take the collection's field name.
	FieldArrayElement = MustFieldName("array_element")
)
