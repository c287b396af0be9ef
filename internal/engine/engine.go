package engine

import (
	"errors"
	"io"
)

// Kind represents token kinds from a generic source.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

func (k Kind) String() string {
	switch k {
	case KindBeginObject:
		return "begin_object"
	case KindEndObject:
		return "end_object"
	case KindBeginArray:
		return "begin_array"
	case KindEndArray:
		return "end_array"
	case KindKey:
		return "key"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindNull:
		return "null"
	default:
		return "unknown"
	}
}

// IsScalar reports whether the kind carries a scalar value.
func (k Kind) IsScalar() bool {
	return k == KindString || k == KindNumber || k == KindBool || k == KindNull
}

// Token represents a streaming token with approximate input offset.
type Token struct {
	Kind   Kind
	String string
	Number string
	Bool   bool
	Offset int64
}

// Text returns the scalar text of the token. Bool tokens render as
// "true"/"false"; null and structural tokens render as "".
func (t Token) Text() string {
	switch t.Kind {
	case KindString, KindKey:
		return t.String
	case KindNumber:
		return t.Number
	case KindBool:
		if t.Bool {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

// TokenSource is a minimal interface required by the engine.
type TokenSource interface {
	NextToken() (Token, error)
	Location() int64
}

// ErrUnexpectedToken is returned by sources when the underlying syntax does
// not map onto the token model.
var ErrUnexpectedToken = errors.New("engine: unexpected token")

// Drain reads tokens until io.EOF and fails if any token remains. It is used
// to confirm that a document has a single root value.
func Drain(src TokenSource) error {
	tok, err := src.NextToken()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return err
	}
	return &TrailingError{Token: tok}
}

// TrailingError reports content after the document root.
type TrailingError struct{ Token Token }

func (e *TrailingError) Error() string {
	return "engine: trailing " + e.Token.Kind.String() + " token after document root"
}
