package goseal

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Format selects the surface syntax used when writing.
type Format int

const (
	FormatJSON Format = iota
	FormatJSONPretty
	FormatXML
	FormatXMLPretty
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatJSONPretty:
		return "json-pretty"
	case FormatXML:
		return "xml"
	case FormatXMLPretty:
		return "xml-pretty"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// IsXML reports whether f renders the XML surface syntax.
func (f Format) IsXML() bool { return f == FormatXML || f == FormatXMLPretty }

// IsPretty reports whether f indents its output.
func (f Format) IsPretty() bool { return f == FormatJSONPretty || f == FormatXMLPretty }

// Pretty returns the indenting variant of f.
func (f Format) Pretty() Format {
	if f.IsXML() {
		return FormatXMLPretty
	}
	return FormatJSONPretty
}

// Compact returns the non-indenting variant of f.
func (f Format) Compact() Format {
	if f.IsXML() {
		return FormatXML
	}
	return FormatJSON
}

// ParseFormat parses "json", "json-pretty", "xml" or "xml-pretty"
// (case-insensitive; "_" is accepted in place of "-").
func ParseFormat(s string) (Format, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-") {
	case "json":
		return FormatJSON, nil
	case "json-pretty":
		return FormatJSONPretty, nil
	case "xml":
		return FormatXML, nil
	case "xml-pretty":
		return FormatXMLPretty, nil
	}
	return FormatJSON, fmt.Errorf("goseal: unknown format %q", s)
}

// Severity expresses the severity level for issues.
type Severity int

const (
	Ignore Severity = iota
	Warn
	Error
)

// Observer receives engine events. The metrics package provides a Prometheus
// implementation.
type Observer interface {
	DocumentWritten(f Format, bytes int, d time.Duration)
	DocumentRead(f Format, bytes int, d time.Duration, err error)
	UnregisteredType(name TypeName, op string)
	UnknownField(owner TypeName, field string)
}

// Options bundles settings for reading and writing. Every entry point takes a
// trailing Options; the last one wins. The zero value is usable.
type Options struct {
	// Registry resolves type hints; nil means DefaultRegistry().
	Registry *Registry
	// Logger overrides the package logger.
	Logger *zerolog.Logger
	// JSONDriver overrides the current JSON driver for reads.
	JSONDriver JSONDriver
	// MaxDepth caps object/array nesting. Zero means unbounded.
	MaxDepth int
	// MaxBytes caps the raw document size on read. Zero means unbounded.
	MaxBytes int64
	// MaxObjects caps the number of objects in one document. Zero means
	// unbounded.
	MaxObjects int
	// OnDuplicateKey controls duplicate JSON object keys. Ignore keeps every
	// occurrence as a repeated child.
	OnDuplicateKey Severity
	// IssueSink receives non-fatal issues found while reading (unknown
	// fields, unregistered type hints, malformed scalars).
	IssueSink func(Issue)
	// Observer receives engine events.
	Observer Observer
}

func lastOptions(opts []Options) Options {
	if len(opts) == 0 {
		return Options{}
	}
	return opts[len(opts)-1]
}

func (o Options) registry() *Registry {
	if o.Registry != nil {
		return o.Registry
	}
	return DefaultRegistry()
}

func (o Options) logger() zerolog.Logger {
	if o.Logger != nil {
		return *o.Logger
	}
	return Logger()
}

func (o Options) jsonDriver() JSONDriver {
	if o.JSONDriver != nil {
		return o.JSONDriver
	}
	return getJSONDriver()
}

// Char is a single character value. It maps to the char type hint so that a
// character survives a polymorphic round trip distinct from an int.
type Char rune
