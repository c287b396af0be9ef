package goseal

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType          = "invalid_type"
	CodeInvalidFormat        = "invalid_format"
	CodeRequired             = "required"
	CodeTooSmall             = "too_small"
	CodeTooBig               = "too_big"
	CodeUnknownKey           = "unknown_key"
	CodeDuplicateKey         = "duplicate_key"
	CodeDiscriminatorMissing = "discriminator_missing"
	CodeDiscriminatorUnknown = "discriminator_unknown"
	CodeUnsupportedValue     = "unsupported_value"
	CodeParseError           = "parse_error"
	CodeTruncated            = "truncated"
	CodeImmutable            = "immutable"
	CodeBusinessRule         = "business_rule"
)

// Issue represents a single validation or decoding entry.
type Issue struct {
	Path    string // Slash separated field path (for example: /authors/2).
	Code    string // One of the codes listed above.
	Message string
	Cause   error // Optional: underlying error.
	// Params carries structured parameters (e.g., {"min":1, "got":0}) for i18n
	// and observability.
	Params map[string]any
}

// Issues is a collection of issues that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
		if it.Message != "" && it.Message != it.Code {
			fmt.Fprintf(b, " (%s)", it.Message)
		}
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	return append(dst, more...)
}

// AsIssues extracts Issues from an error using errors.As internally. It also
// unwraps ValidationError and ProtocolError.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Issues, true
	}
	var pe *ProtocolError
	if errors.As(err, &pe) {
		return Issues{pe.Issue()}, true
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// Sentinel errors.
var (
	// ErrImmutable matches every ImmutableError.
	ErrImmutable = errors.New("goseal: entity is immutable")
	// ErrAlreadyComplete is returned when Complete runs twice on one instance.
	ErrAlreadyComplete = errors.New("goseal: complete already invoked")
	// ErrUnsupported is returned by views and iterators that do not support an
	// operation even while mutable.
	ErrUnsupported = errors.New("goseal: operation not supported")
	// ErrConcurrentModification is returned by views and iterators whose
	// backing collection was structurally modified behind their back.
	ErrConcurrentModification = errors.New("goseal: concurrent modification")
)

// ValidationError is raised from Validate and surfaced by Complete and
// Builder.Create.
type ValidationError struct {
	Type   TypeName
	Issues Issues
}

func (e *ValidationError) Error() string {
	if e.Type.IsZero() {
		return "validation failed: " + e.Issues.Error()
	}
	return "validation failed for " + e.Type.Value() + ": " + e.Issues.Error()
}

func (e *ValidationError) Unwrap() error { return e.Issues }

// ImmutableError is returned by every mutator invoked after freezing. It is a
// programming error and must not be retried.
type ImmutableError struct {
	Op string
}

func (e *ImmutableError) Error() string {
	if e.Op == "" {
		return ErrImmutable.Error()
	}
	return ErrImmutable.Error() + ": " + e.Op
}

func (e *ImmutableError) Is(target error) bool { return target == ErrImmutable }

// Immutable builds an ImmutableError for op.
func Immutable(op string) error { return &ImmutableError{Op: op} }

// ProtocolError reports structurally malformed input or an unsupported value.
type ProtocolError struct {
	Code    string
	Path    string
	Offset  int64 // Byte offset in the input (-1 when unknown).
	Message string
	Cause   error
}

func (e *ProtocolError) Error() string {
	b := &strings.Builder{}
	b.WriteString("protocol error")
	if e.Code != "" {
		b.WriteString(" [" + e.Code + "]")
	}
	if e.Path != "" {
		b.WriteString(" at " + e.Path)
	}
	if e.Offset >= 0 {
		fmt.Fprintf(b, " (offset %d)", e.Offset)
	}
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	}
	return b.String()
}

func (e *ProtocolError) Unwrap() error { return e.Cause }

// Issue projects the error onto the Issue model.
func (e *ProtocolError) Issue() Issue {
	return Issue{Path: e.Path, Code: e.Code, Message: e.Message, Cause: e.Cause}
}

func protocolError(code, msg string, cause error) *ProtocolError {
	return &ProtocolError{Code: code, Offset: -1, Message: msg, Cause: cause}
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsProtocol reports whether err carries a ProtocolError.
func IsProtocol(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}
