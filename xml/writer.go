// Copyright 2022 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package xml

import (
	"bytes"
	stdxml "encoding/xml"
	"strconv"
	"strings"
)

// A WriterOption configures a StreamWriter.
type WriterOption func(*StreamWriter)

// Indent enables pretty printing: each element boundary is separated by a
// newline and the given unit of indentation per nesting level. Character
// data is never touched, so indented and compact output parse back to the
// same logical token stream.
func Indent(unit string) WriterOption {
	return func(w *StreamWriter) {
		w.indent = unit
	}
}

// A StreamWriter emits one well formed XML document incrementally.
//
// Attributes written between StartElement and the next non attribute call
// are buffered, in call order, into the opening tag; the first Text,
// StartElement, or EndElement call closes the tag and later Attribute
// calls fail with a *WriterStateError.
//
// Writers are single use: create one per document, finish it with
// EndDocument, collect the payload with Bytes or String, and discard it.
type StreamWriter struct {
	buf      bytes.Buffer
	indent   string
	open     []openElement
	pending  *pendingTag
	bindings []NS
	next     []NS
	gen      int
	ended    bool
}

type openElement struct {
	name     Name
	written  string
	bindings int
	children bool
	text     bool
}

type pendingTag struct {
	name    Name
	written string
	decls   []NS
	attrs   []pendingAttr
}

type pendingAttr struct {
	written string
	value   string
}

// NewStreamWriter returns an empty writer.
func NewStreamWriter(opts ...WriterOption) *StreamWriter {
	w := &StreamWriter{}
	for _, o := range opts {
		o(w)
	}
	return w
}

// StartDocument writes the XML declaration. It may only be called before
// any other output. An empty encoding omits the encoding attribute;
// standalone emits standalone="yes".
func (w *StreamWriter) StartDocument(encoding string, standalone bool) error {
	if w.ended {
		return &WriterStateError{Msg: "write after end of document"}
	}
	if w.buf.Len() != 0 || w.pending != nil {
		return &WriterStateError{Msg: "document already started"}
	}
	w.buf.WriteString(`<?xml version="1.0"`)
	if encoding != "" {
		w.buf.WriteString(` encoding="`)
		w.buf.WriteString(encoding)
		w.buf.WriteString(`"`)
	}
	if standalone {
		w.buf.WriteString(` standalone="yes"`)
	}
	w.buf.WriteString("?>")
	return nil
}

// SetPrefix declares a prefix binding for a namespace URI. The declaration
// is emitted on the next element started and stays in scope for that
// element's subtree. An empty prefix makes the URI the default namespace.
// A binding identical to one already in scope is not redeclared.
func (w *StreamWriter) SetPrefix(prefix, uri string) error {
	if w.ended {
		return &WriterStateError{Msg: "write after end of document"}
	}
	w.next = append(w.next, NS{Space: uri, Prefix: prefix})
	return nil
}

// StartElement opens an element. The name's Space selects the namespace:
// an explicit binding from SetPrefix is used when one covers the URI, an
// in scope declaration is reused otherwise, and failing both a synthetic
// prefix (n1, n2, ...) is generated and declared on this element.
func (w *StreamWriter) StartElement(name Name) error {
	if w.ended {
		return &WriterStateError{Msg: "write after end of document"}
	}
	w.flushPending()
	if len(w.open) > 0 {
		w.open[len(w.open)-1].children = true
	}

	p := &pendingTag{name: name}
	for _, d := range w.next {
		if w.needsDecl(d) {
			p.decls = append(p.decls, d)
			w.bindings = append(w.bindings, d)
		}
	}
	w.next = nil

	written := name.Local
	if name.Space != "" {
		prefix, ok := w.prefixFor(p, name.Space, false)
		if !ok {
			prefix = w.declare(p, name)
		}
		if prefix != "" {
			written = prefix + ":" + name.Local
		}
	}
	p.written = written
	w.pending = p
	return nil
}

// Attribute buffers an attribute into the currently open start tag. Unlike
// elements, an attribute in a namespace always requires a non empty
// prefix; one is generated and declared if needed.
func (w *StreamWriter) Attribute(name Name, value string) error {
	if w.ended {
		return &WriterStateError{Msg: "write after end of document"}
	}
	if w.pending == nil {
		return &WriterStateError{Msg: "attribute " + name.Local + " written after start tag was closed"}
	}
	written := name.Local
	if name.Space != "" {
		prefix, ok := w.prefixFor(w.pending, name.Space, true)
		if !ok {
			prefix = w.declare(w.pending, name)
		}
		written = prefix + ":" + name.Local
	}
	w.pending.attrs = append(w.pending.attrs, pendingAttr{written: written, value: value})
	return nil
}

// Text writes escaped character data at the current position.
func (w *StreamWriter) Text(s string) error {
	if w.ended {
		return &WriterStateError{Msg: "write after end of document"}
	}
	w.flushPending()
	if len(w.open) > 0 {
		w.open[len(w.open)-1].text = true
	}
	escape(&w.buf, s)
	return nil
}

// EndElement closes the innermost open element, which must match the given
// name (prefixes are not compared).
func (w *StreamWriter) EndElement(name Name) error {
	if w.ended {
		return &WriterStateError{Msg: "write after end of document"}
	}
	if w.pending != nil && !w.pending.name.Equal(name) {
		return &WriterStateError{Msg: "end tag " + name.Local + " does not match open element " + w.pending.name.Local}
	}
	w.flushPending()
	if len(w.open) == 0 {
		return &WriterStateError{Msg: "end tag " + name.Local + " with no open element"}
	}
	top := w.open[len(w.open)-1]
	if !top.name.Equal(name) {
		return &WriterStateError{Msg: "end tag " + name.Local + " does not match open element " + top.name.Local}
	}
	w.closeTop()
	return nil
}

// EndDocument finishes the document, closing any elements left open. It is
// idempotent: repeated calls change nothing and the accumulated bytes stay
// identical.
func (w *StreamWriter) EndDocument() error {
	if w.ended {
		return nil
	}
	w.flushPending()
	for len(w.open) > 0 {
		w.closeTop()
	}
	w.ended = true
	return nil
}

// Bytes returns the accumulated output.
func (w *StreamWriter) Bytes() []byte {
	return w.buf.Bytes()
}

// String returns the accumulated output as a string.
func (w *StreamWriter) String() string {
	return w.buf.String()
}

// flushPending emits the buffered start tag, if any: name, namespace
// declarations, then attributes in call order.
func (w *StreamWriter) flushPending() {
	p := w.pending
	if p == nil {
		return
	}
	w.pending = nil
	if w.indent != "" && w.buf.Len() > 0 {
		w.buf.WriteByte('\n')
		w.buf.WriteString(strings.Repeat(w.indent, len(w.open)))
	}
	w.buf.WriteByte('<')
	w.buf.WriteString(p.written)
	for _, d := range p.decls {
		if d.Prefix == "" {
			w.buf.WriteString(` xmlns="`)
		} else {
			w.buf.WriteString(` xmlns:`)
			w.buf.WriteString(d.Prefix)
			w.buf.WriteString(`="`)
		}
		escape(&w.buf, d.Space)
		w.buf.WriteByte('"')
	}
	for _, a := range p.attrs {
		w.buf.WriteByte(' ')
		w.buf.WriteString(a.written)
		w.buf.WriteString(`="`)
		escape(&w.buf, a.value)
		w.buf.WriteByte('"')
	}
	w.buf.WriteByte('>')
	w.open = append(w.open, openElement{name: p.name, written: p.written, bindings: len(p.decls)})
}

// closeTop writes the close tag for the innermost open element and drops
// the bindings it introduced.
func (w *StreamWriter) closeTop() {
	top := w.open[len(w.open)-1]
	if w.indent != "" && top.children && !top.text {
		w.buf.WriteByte('\n')
		w.buf.WriteString(strings.Repeat(w.indent, len(w.open)-1))
	}
	w.buf.WriteString("</")
	w.buf.WriteString(top.written)
	w.buf.WriteByte('>')
	w.bindings = w.bindings[:len(w.bindings)-top.bindings]
	w.open = w.open[:len(w.open)-1]
}

// needsDecl reports whether a requested binding is not already in scope.
func (w *StreamWriter) needsDecl(d NS) bool {
	for i := len(w.bindings) - 1; i >= 0; i-- {
		if w.bindings[i].Prefix == d.Prefix {
			return w.bindings[i].Space != d.Space
		}
	}
	return true
}

// prefixFor finds an in scope prefix for a URI, preferring declarations
// made on the tag being built. Attributes cannot use the default
// namespace, so for them empty prefixes are skipped.
func (w *StreamWriter) prefixFor(p *pendingTag, space string, attr bool) (string, bool) {
	if space == xmlNS {
		return "xml", true
	}
	for i := len(p.decls) - 1; i >= 0; i-- {
		if p.decls[i].Space == space && !(attr && p.decls[i].Prefix == "") {
			return p.decls[i].Prefix, true
		}
	}
	for i := len(w.bindings) - 1; i >= 0; i-- {
		b := w.bindings[i]
		if b.Space != space || (attr && b.Prefix == "") {
			continue
		}
		// The binding must not be shadowed by a nearer one for the same
		// prefix.
		if w.lookupBinding(b.Prefix) == space {
			return b.Prefix, true
		}
	}
	return "", false
}

// lookupBinding returns the URI currently bound to a prefix.
func (w *StreamWriter) lookupBinding(prefix string) string {
	for i := len(w.bindings) - 1; i >= 0; i-- {
		if w.bindings[i].Prefix == prefix {
			return w.bindings[i].Space
		}
	}
	return ""
}

// declare adds a declaration for the name's URI to the tag being built,
// using the name's own prefix when it carries one and is free, otherwise a
// generated one.
func (w *StreamWriter) declare(p *pendingTag, name Name) string {
	prefix := name.Prefix
	if prefix == "" || w.lookupBinding(prefix) != "" {
		w.gen++
		prefix = "n" + strconv.Itoa(w.gen)
	}
	d := NS{Space: name.Space, Prefix: prefix}
	p.decls = append(p.decls, d)
	w.bindings = append(w.bindings, d)
	return prefix
}

// escape writes s with XML special characters replaced by entities. The
// escaping is shared by text, attribute values, and namespace URIs.
func escape(buf *bytes.Buffer, s string) {
	// bytes.Buffer cannot fail.
	_ = stdxml.EscapeText(buf, []byte(s))
}
