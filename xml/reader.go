// Copyright 2022 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package xml

import (
	"bytes"
	stdxml "encoding/xml"
	"io"

	"mellium.im/serde/internal/decode"
)

// xmlNS is the namespace bound to the predeclared "xml" prefix.
const xmlNS = "http://www.w3.org/XML/1998/namespace"

// A StreamReader is a pull parser producing a lazy, finite, non restartable
// sequence of tokens from one XML document.
//
// The reader owns its cursor state exclusively: create one per payload,
// drive it to EndDocument (or an error), and discard it.
type StreamReader struct {
	dec      *stdxml.Decoder
	peeked   Token
	depth    int
	scopes   []scope
	open     []stdxml.Name
	rootSeen bool
	done     bool
	err      error
}

// scope holds the namespace declarations introduced by one open element.
type scope struct {
	decls []NS
}

// NewStreamReader returns a reader over one complete document. The payload
// is normalized to UTF-8 first (a byte order mark is stripped and UTF-16
// payloads are transcoded); a payload that cannot be normalized fails with
// a *MalformedDocumentError.
func NewStreamReader(payload []byte) (*StreamReader, error) {
	p, err := decode.Normalize(payload)
	if err != nil {
		return nil, &MalformedDocumentError{Msg: "normalizing payload", Err: err}
	}
	dec := stdxml.NewDecoder(bytes.NewReader(p))
	// The payload is already UTF-8 regardless of what the XML declaration
	// claims.
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		return input, nil
	}
	return &StreamReader{dec: dec}, nil
}

// NextToken consumes and returns the next token. Once the root element has
// been fully consumed it returns EndDocument for every call. Any
// malformation in the payload surfaces as a *MalformedDocumentError, and
// every later call returns the same error.
func (r *StreamReader) NextToken() (Token, error) {
	tok, err := r.fill()
	if err != nil {
		return nil, err
	}
	r.peeked = nil
	switch tok.(type) {
	case StartElement:
		r.depth++
	case EndElement:
		r.depth--
	}
	return tok, nil
}

// Peek returns the token NextToken would return without consuming it. The
// lookahead is cached: peeking has no observable effect on depth or on any
// subsequent read.
func (r *StreamReader) Peek() (Token, error) {
	return r.fill()
}

// Skip discards the next logical value. If the next token is a
// StartElement everything through its matching EndElement is discarded,
// recursively; any other token is discarded alone.
func (r *StreamReader) Skip() error {
	tok, err := r.NextToken()
	if err != nil {
		return err
	}
	if _, ok := tok.(StartElement); !ok {
		return nil
	}
	target := r.depth - 1
	for r.depth > target {
		tok, err = r.NextToken()
		if err != nil {
			return err
		}
		if _, ok := tok.(EndDocument); ok {
			return &MalformedDocumentError{Msg: "document ended inside skipped subtree"}
		}
	}
	return nil
}

// Depth returns the element nesting depth at the reader's position: zero
// before the root element and after it closes, incremented by each
// consumed StartElement and decremented by each consumed EndElement.
func (r *StreamReader) Depth() int {
	return r.depth
}

// fill parses tokens until one is available for the consumer, leaving it in
// the lookahead slot. Comments, processing instructions, directives, and
// inter-document whitespace are discarded here and never surface.
func (r *StreamReader) fill() (Token, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.peeked != nil {
		return r.peeked, nil
	}
	for {
		if r.done {
			r.peeked = EndDocument{}
			return r.peeked, nil
		}
		tok, err := r.dec.RawToken()
		if err != nil {
			if ferr := r.fail(err); ferr != nil {
				return nil, ferr
			}
			// Clean end of document; fail left EndDocument in the
			// lookahead slot.
			return r.peeked, nil
		}
		switch t := tok.(type) {
		case stdxml.StartElement:
			if r.rootSeen && len(r.open) == 0 {
				r.err = &MalformedDocumentError{Msg: "multiple root elements"}
				return nil, r.err
			}
			r.rootSeen = true
			start, err := r.pushStart(t)
			if err != nil {
				r.err = err
				return nil, err
			}
			r.peeked = start
			return r.peeked, nil
		case stdxml.EndElement:
			end, err := r.popEnd(t)
			if err != nil {
				r.err = err
				return nil, err
			}
			r.peeked = end
			return r.peeked, nil
		case stdxml.CharData:
			if len(r.open) == 0 {
				if len(bytes.TrimSpace(t)) > 0 {
					r.err = &MalformedDocumentError{Msg: "text outside of root element"}
					return nil, r.err
				}
				continue
			}
			// RawToken reuses its buffer; the string conversion copies.
			r.peeked = CharData(t)
			return r.peeked, nil
		default:
			// Comments, processing instructions, and directives.
			continue
		}
	}
}

// fail converts a decoder error into the reader's sticky error state.
func (r *StreamReader) fail(err error) error {
	if err == io.EOF {
		switch {
		case len(r.open) > 0:
			r.err = &MalformedDocumentError{Msg: "unexpected end of document: <" + r.open[len(r.open)-1].Local + "> not closed"}
		case !r.rootSeen:
			r.err = &MalformedDocumentError{Msg: "document has no root element"}
		default:
			r.done = true
			r.peeked = EndDocument{}
			return nil
		}
		return r.err
	}
	r.err = &MalformedDocumentError{Err: err}
	return r.err
}

// pushStart opens a namespace scope for the element, resolves its name and
// attributes, and returns the corresponding token.
func (r *StreamReader) pushStart(t stdxml.StartElement) (Token, error) {
	var sc scope
	for _, a := range t.Attr {
		switch {
		case a.Name.Space == "" && a.Name.Local == "xmlns":
			sc.decls = append(sc.decls, NS{Space: a.Value})
		case a.Name.Space == "xmlns":
			sc.decls = append(sc.decls, NS{Space: a.Value, Prefix: a.Name.Local})
		}
	}
	r.scopes = append(r.scopes, sc)
	r.open = append(r.open, t.Name)

	name, err := r.resolve(t.Name, true)
	if err != nil {
		return nil, err
	}
	var attrs []Attr
	for _, a := range t.Attr {
		if (a.Name.Space == "" && a.Name.Local == "xmlns") || a.Name.Space == "xmlns" {
			continue
		}
		an, err := r.resolve(a.Name, false)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, Attr{Name: an, Value: a.Value})
	}
	return StartElement{Name: name, Attr: attrs, NS: sc.decls}, nil
}

// popEnd checks tag balance, resolves the closing name in the scope it
// closes, and pops that scope.
func (r *StreamReader) popEnd(t stdxml.EndElement) (Token, error) {
	if len(r.open) == 0 {
		return nil, &MalformedDocumentError{Msg: "unexpected end tag </" + rawName(t.Name) + ">"}
	}
	want := r.open[len(r.open)-1]
	if want != t.Name {
		return nil, &MalformedDocumentError{Msg: "mismatched end tag: expected </" + rawName(want) + ">, found </" + rawName(t.Name) + ">"}
	}
	name, err := r.resolve(t.Name, true)
	if err != nil {
		return nil, err
	}
	r.open = r.open[:len(r.open)-1]
	r.scopes = r.scopes[:len(r.scopes)-1]
	return EndElement{Name: name}, nil
}

// resolve maps a raw name from the decoder (whose Space field holds the
// undecoded prefix) to a resolved Name. Elements inherit the default
// namespace; attributes acquire a namespace only through an explicit
// prefix.
func (r *StreamReader) resolve(raw stdxml.Name, element bool) (Name, error) {
	prefix := raw.Space
	if prefix == "" {
		if !element {
			return Name{Local: raw.Local}, nil
		}
		return Name{Local: raw.Local, Space: r.lookup("")}, nil
	}
	if prefix == "xml" {
		return Name{Local: raw.Local, Space: xmlNS, Prefix: prefix}, nil
	}
	for i := len(r.scopes) - 1; i >= 0; i-- {
		for _, d := range r.scopes[i].decls {
			if d.Prefix == prefix {
				return Name{Local: raw.Local, Space: d.Space, Prefix: prefix}, nil
			}
		}
	}
	return Name{}, &MalformedDocumentError{Msg: "undeclared namespace prefix " + prefix}
}

// lookup returns the URI bound to a prefix at the current position, or the
// empty string when the prefix (or the default namespace) is unbound.
func (r *StreamReader) lookup(prefix string) string {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		for _, d := range r.scopes[i].decls {
			if d.Prefix == prefix {
				return d.Space
			}
		}
	}
	return ""
}

func rawName(n stdxml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}
