package goseal

import (
	"bufio"
	"errors"
	"io"
	"sync"

	eng "github.com/reoring/goseal/internal/engine"
	gojsonsrc "github.com/reoring/goseal/source/gojson"
	jsonsrc "github.com/reoring/goseal/source/json"
	xmlsrc "github.com/reoring/goseal/source/xml"
)

// Token describes a token in the input stream. Offset records the byte
// position when known (-1 otherwise).
type Token = eng.Token

// TokenKind enumerates token kinds.
type TokenKind = eng.Kind

const (
	TokenBeginObject = eng.KindBeginObject
	TokenEndObject   = eng.KindEndObject
	TokenBeginArray  = eng.KindBeginArray
	TokenEndArray    = eng.KindEndArray
	TokenKey         = eng.KindKey
	TokenString      = eng.KindString
	TokenNumber      = eng.KindNumber
	TokenBool        = eng.KindBool
	TokenNull        = eng.KindNull
)

// Source is a stream of tokens in either surface syntax.
type Source interface {
	NextToken() (Token, error)
	Location() int64 // byte offset; -1 if unknown
}

// JSONDriver converts JSON input into a Source via a pluggable SPI. The default
// implementation is based on goccy/go-json and may be swapped with
// SetJSONDriver.
type JSONDriver interface {
	NewReader(r io.Reader) Source
	Name() string
}

var (
	jsonDriverMu      sync.RWMutex
	currentJSONDriver JSONDriver = goJSONDriver{}
)

// SetJSONDriver replaces the global JSON driver; nil values are ignored.
func SetJSONDriver(d JSONDriver) {
	if d == nil {
		return
	}
	jsonDriverMu.Lock()
	currentJSONDriver = d
	jsonDriverMu.Unlock()
}

// UseDefaultJSONDriver restores the default go-json-backed driver.
func UseDefaultJSONDriver() { SetJSONDriver(goJSONDriver{}) }

func getJSONDriver() JSONDriver {
	jsonDriverMu.RLock()
	d := currentJSONDriver
	jsonDriverMu.RUnlock()
	return d
}

type goJSONDriver struct{}

func (goJSONDriver) NewReader(r io.Reader) Source { return gojsonsrc.NewReader(r) }
func (goJSONDriver) Name() string                 { return "go-json" }

type stdJSONDriver struct{}

func (stdJSONDriver) NewReader(r io.Reader) Source { return jsonsrc.NewReader(r) }
func (stdJSONDriver) Name() string                 { return "encoding/json" }

// GoJSONDriver returns the goccy/go-json driver (the default).
func GoJSONDriver() JSONDriver { return goJSONDriver{} }

// StdJSONDriver returns the encoding/json driver.
func StdJSONDriver() JSONDriver { return stdJSONDriver{} }

// JSONDriverByName resolves "go-json" or "encoding/json".
func JSONDriverByName(name string) (JSONDriver, bool) {
	switch name {
	case "", "go-json", "gojson":
		return goJSONDriver{}, true
	case "encoding/json", "std", "stdlib":
		return stdJSONDriver{}, true
	}
	return nil, false
}

// JSONReader wraps an io.Reader as a JSON Source using the current driver.
func JSONReader(r io.Reader) Source { return getJSONDriver().NewReader(r) }

// XMLReader wraps an io.Reader as an XML Source.
func XMLReader(r io.Reader) Source { return xmlsrc.NewReader(r) }

// ErrEmptyDocument is returned when the input holds only whitespace.
var ErrEmptyDocument = errors.New("goseal: empty document")

var errMaxBytes = errors.New("goseal: max bytes exceeded")

// sniff inspects the first non-whitespace byte of br: '{' selects JSON and '<'
// selects XML. The whitespace it skips is consumed.
func sniff(br *bufio.Reader) (Format, error) {
	if bom, err := br.Peek(3); err == nil && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		_, _ = br.Discard(3)
	}
	for {
		b, err := br.ReadByte()
		if err == io.EOF {
			return FormatJSON, ErrEmptyDocument
		}
		if err != nil {
			return FormatJSON, err
		}
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		case '{':
			_ = br.UnreadByte()
			return FormatJSON, nil
		case '<':
			_ = br.UnreadByte()
			return FormatXML, nil
		default:
			return FormatJSON, protocolError(CodeParseError, "document must start with '{' or '<'", nil)
		}
	}
}

// capReader fails once more than max bytes have been read.
type capReader struct {
	r      io.Reader
	n      int64
	max    int64
	format Format
}

func (c *capReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	if c.max > 0 && c.n > c.max {
		return n, errMaxBytes
	}
	return n, err
}

// openSource sniffs r and returns a token source for the detected syntax with
// enforcement applied.
func openSource(r io.Reader, o Options, counter *capReader) (Source, Format, error) {
	counter.r = r
	counter.max = o.MaxBytes
	br := bufio.NewReader(counter)
	f, err := sniff(br)
	if err != nil {
		return nil, f, wrapReadError(err)
	}
	var src Source
	dup := toEngineDup(o.OnDuplicateKey)
	if f.IsXML() {
		// Repeated sibling elements are how XML spells a collection.
		src = xmlsrc.NewReader(br)
		dup = eng.DupIgnore
	} else {
		src = o.jsonDriver().NewReader(br)
	}
	return eng.WrapWithEnforcement(src, eng.EnforceOptions{
		OnDuplicate: dup,
		MaxDepth:    o.MaxDepth,
		MaxObjects:  o.MaxObjects,
		IssueSink:   issueForwarder(o.IssueSink),
	}), f, nil
}

func toEngineDup(s Severity) eng.DuplicateStrictness {
	switch s {
	case Error:
		return eng.DupError
	case Warn:
		return eng.DupWarn
	default:
		return eng.DupIgnore
	}
}

func issueForwarder(sink func(Issue)) func(eng.SimpleIssue) {
	if sink == nil {
		return nil
	}
	return func(si eng.SimpleIssue) {
		sink(Issue{Path: si.Path, Code: si.Code, Message: si.Message})
	}
}

// wrapReadError maps token-source failures onto ProtocolError.
func wrapReadError(err error) error {
	if err == nil {
		return nil
	}
	var pe *ProtocolError
	if errors.As(err, &pe) {
		return pe
	}
	var ie eng.IssueError
	if errors.As(err, &ie) {
		return &ProtocolError{Code: ie.Code, Path: ie.Path, Offset: ie.Offset, Message: ie.Message, Cause: err}
	}
	if errors.Is(err, errMaxBytes) {
		return protocolError(CodeTruncated, "max bytes exceeded", err)
	}
	if errors.Is(err, ErrEmptyDocument) {
		return protocolError(CodeParseError, "empty document", err)
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return protocolError(CodeParseError, "unexpected end of document", io.ErrUnexpectedEOF)
	}
	return protocolError(CodeParseError, err.Error(), err)
}
