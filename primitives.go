package goseal

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"unicode/utf8"
)

// Primitive type hints.
var (
	HintString  = MustTypeName("string")
	HintChar    = MustTypeName("char")
	HintByte    = MustTypeName("byte")
	HintShort   = MustTypeName("short")
	HintInt     = MustTypeName("int")
	HintLong    = MustTypeName("long")
	HintFloat   = MustTypeName("float")
	HintDouble  = MustTypeName("double")
	HintBoolean = MustTypeName("boolean")
	HintNull    = MustTypeName("null")
)

var primitiveHints = map[TypeName]struct{}{
	HintString: {}, HintChar: {}, HintByte: {}, HintShort: {}, HintInt: {},
	HintLong: {}, HintFloat: {}, HintDouble: {}, HintBoolean: {}, HintNull: {},
}

// IsPrimitiveHint reports whether name is one of the primitive type hints.
func IsPrimitiveHint(name TypeName) bool {
	_, ok := primitiveHints[name]
	return ok
}

// scalar is a primitive value rendered for the wire.
type scalar struct {
	hint TypeName
	text string
	// numeric marks values a JSON emitter may write unquoted.
	numeric bool
	boolean bool
}

// toScalar maps a Go value onto a primitive type hint. ok is false for values
// that are not primitives.
func toScalar(v any) (scalar, bool) {
	switch x := v.(type) {
	case string:
		return scalar{hint: HintString, text: x}, true
	case Char:
		return scalar{hint: HintChar, text: string(rune(x))}, true
	case uint8:
		return scalar{hint: HintByte, text: strconv.FormatUint(uint64(x), 10), numeric: true}, true
	case int16:
		return scalar{hint: HintShort, text: strconv.FormatInt(int64(x), 10), numeric: true}, true
	case int32:
		return scalar{hint: HintInt, text: strconv.FormatInt(int64(x), 10), numeric: true}, true
	case int64:
		return scalar{hint: HintLong, text: strconv.FormatInt(x, 10), numeric: true}, true
	case int:
		return scalar{hint: HintLong, text: strconv.FormatInt(int64(x), 10), numeric: true}, true
	case float32:
		return floatScalar(HintFloat, float64(x), 32), true
	case float64:
		return floatScalar(HintDouble, x, 64), true
	case bool:
		return scalar{hint: HintBoolean, text: strconv.FormatBool(x), boolean: true}, true
	}
	return scalar{}, false
}

func floatScalar(hint TypeName, f float64, bits int) scalar {
	s := scalar{hint: hint, text: strconv.FormatFloat(f, 'g', -1, bits)}
	s.numeric = !math.IsNaN(f) && !math.IsInf(f, 0)
	return s
}

// fromScalar decodes text according to hint into the matching Go value.
func fromScalar(hint TypeName, text string) (any, error) {
	switch hint {
	case HintString:
		return text, nil
	case HintChar:
		r, err := parseChar(text)
		return Char(r), err
	case HintByte:
		n, err := strconv.ParseUint(text, 10, 8)
		return uint8(n), err
	case HintShort:
		n, err := strconv.ParseInt(text, 10, 16)
		return int16(n), err
	case HintInt:
		n, err := strconv.ParseInt(text, 10, 32)
		return int32(n), err
	case HintLong:
		return strconv.ParseInt(text, 10, 64)
	case HintFloat:
		f, err := strconv.ParseFloat(text, 32)
		return float32(f), err
	case HintDouble:
		return strconv.ParseFloat(text, 64)
	case HintBoolean:
		return strconv.ParseBool(text)
	case HintNull:
		return nil, nil
	}
	return nil, fmt.Errorf("goseal: %q is not a primitive type hint", hint.Value())
}

func parseChar(text string) (rune, error) {
	r, size := utf8.DecodeRuneInString(text)
	if (r == utf8.RuneError && size <= 1) || size != len(text) {
		return 0, fmt.Errorf("goseal: %q is not a single character", text)
	}
	return r, nil
}

// needsBase64 reports whether s holds characters outside the printable,
// whitespace-safe range every surface syntax can carry verbatim.
func needsBase64(s string) bool {
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size <= 1 {
			return true
		}
		if !safeRune(r) {
			return true
		}
		i += size
	}
	return false
}

func safeRune(r rune) bool {
	switch {
	case r == '\t', r == '\n', r == '\r':
		return true
	case r < 0x20, r == 0x7f:
		return false
	case r >= 0xD800 && r <= 0xDFFF:
		return false
	case r == 0xFFFE, r == 0xFFFF:
		return false
	}
	return r <= utf8.MaxRune
}

func encodeBase64(s string) string { return base64.StdEncoding.EncodeToString([]byte(s)) }

func decodeBase64(s string) (string, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
