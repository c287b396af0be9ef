// Package xml adapts encoding/xml to the engine token model.
//
// The root element becomes BeginObject/EndObject. A child element holding only
// character data becomes Key followed by a String token; a child element
// holding further elements becomes Key followed by BeginObject. Repeated
// sibling elements are emitted as repeated keys, which is how the XML surface
// expresses arrays. Array tokens are never produced.
package xml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	eng "github.com/reoring/goseal/internal/engine"
)

// ErrMixedContent is returned for elements mixing text and child elements.
var ErrMixedContent = errors.New("xml: mixed content is not supported")

type source struct {
	dec      *xml.Decoder
	queue    []eng.Token
	pushback xml.Token
	depth    int
	rootSeen bool
}

// NewReader wraps an io.Reader into an engine.TokenSource for XML.
func NewReader(r io.Reader) eng.TokenSource {
	dec := xml.NewDecoder(r)
	dec.Strict = true
	return &source{dec: dec}
}

// NewBytes wraps a byte slice into an engine.TokenSource for XML.
func NewBytes(b []byte) eng.TokenSource { return NewReader(bytes.NewReader(b)) }

func (s *source) next() (xml.Token, error) {
	if s.pushback != nil {
		t := s.pushback
		s.pushback = nil
		return t, nil
	}
	t, err := s.dec.Token()
	if err != nil {
		return nil, err
	}
	return xml.CopyToken(t), nil
}

func (s *source) NextToken() (eng.Token, error) {
	if len(s.queue) > 0 {
		t := s.queue[0]
		s.queue = s.queue[1:]
		return t, nil
	}
	for {
		tok, err := s.next()
		if err == io.EOF {
			if s.depth > 0 || !s.rootSeen {
				return eng.Token{}, io.ErrUnexpectedEOF
			}
			return eng.Token{}, io.EOF
		}
		if err != nil {
			return eng.Token{}, err
		}
		off := s.dec.InputOffset()
		switch t := tok.(type) {
		case xml.StartElement:
			if s.depth == 0 {
				if s.rootSeen {
					return eng.Token{Kind: eng.KindBeginObject, Offset: off}, nil
				}
				s.rootSeen = true
				s.depth++
				return eng.Token{Kind: eng.KindBeginObject, Offset: off}, nil
			}
			text, isObject, err := s.classify()
			if err != nil {
				return eng.Token{}, err
			}
			key := eng.Token{Kind: eng.KindKey, String: t.Name.Local, Offset: off}
			if isObject {
				s.depth++
				s.queue = append(s.queue, eng.Token{Kind: eng.KindBeginObject, Offset: off})
				return key, nil
			}
			s.queue = append(s.queue, eng.Token{Kind: eng.KindString, String: text, Offset: s.dec.InputOffset()})
			return key, nil
		case xml.EndElement:
			s.depth--
			return eng.Token{Kind: eng.KindEndObject, Offset: off}, nil
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return eng.Token{}, fmt.Errorf("%w at offset %d", ErrMixedContent, off)
			}
		}
	}
}

// classify consumes the content of an element whose start tag was just read.
// It returns the element text when the element holds only character data, or
// reports isObject after pushing back the first child start tag.
func (s *source) classify() (string, bool, error) {
	var b strings.Builder
	for {
		tok, err := s.next()
		if err == io.EOF {
			return "", false, io.ErrUnexpectedEOF
		}
		if err != nil {
			return "", false, err
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.StartElement:
			if strings.TrimSpace(b.String()) != "" {
				return "", false, ErrMixedContent
			}
			s.pushback = t
			return "", true, nil
		case xml.EndElement:
			return b.String(), false, nil
		}
	}
}

func (s *source) Location() int64 { return s.dec.InputOffset() }
