// Copyright 2023 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package xml

import (
	stdxml "encoding/xml"
	"strings"

	"mellium.im/xmlstream"
)

// A Node is one element of a document held in memory: its name, its
// attributes, its accumulated character data, and its child elements in
// document order. It is a convenience for callers that prefer a tree over
// driving the token stream themselves.
type Node struct {
	Name     Name
	Attr     []Attr
	Text     string
	Children []*Node
}

// ParseNode parses a complete payload into a tree rooted at the document's
// root element.
func ParseNode(payload []byte) (*Node, error) {
	r, err := NewStreamReader(payload)
	if err != nil {
		return nil, err
	}
	return ReadNode(r)
}

// ReadNode consumes the next element from the reader, subtree included,
// and returns it as a tree. Character data runs are concatenated and
// trimmed of surrounding whitespace.
func ReadNode(r *StreamReader) (*Node, error) {
	for {
		tok, err := r.NextToken()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case StartElement:
			return readNodeFrom(r, t)
		case CharData:
			continue
		case EndElement:
			return nil, &MalformedDocumentError{Msg: "expected an element, found end tag </" + t.Name.String() + ">"}
		case EndDocument:
			return nil, &MalformedDocumentError{Msg: "expected an element, found end of document"}
		}
	}
}

// readNodeFrom builds the node for an element whose start tag has already
// been consumed.
func readNodeFrom(r *StreamReader, start StartElement) (*Node, error) {
	n := &Node{Name: start.Name, Attr: start.Attr}
	var text strings.Builder
	for {
		tok, err := r.NextToken()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case CharData:
			text.WriteString(string(t))
		case StartElement:
			child, err := readNodeFrom(r, t)
			if err != nil {
				return nil, err
			}
			n.Children = append(n.Children, child)
		case EndElement:
			n.Text = strings.TrimSpace(text.String())
			return n, nil
		case EndDocument:
			return nil, &MalformedDocumentError{Msg: "unexpected end of document inside <" + n.Name.String() + ">"}
		}
	}
}

// WriteTo re-linearizes the tree through a StreamWriter: the node's
// attributes, then its text, then its children, recursively.
func (n *Node) WriteTo(w *StreamWriter) error {
	if n.Name.Space != "" && n.Name.Prefix != "" {
		if err := w.SetPrefix(n.Name.Prefix, n.Name.Space); err != nil {
			return err
		}
	}
	if err := w.StartElement(n.Name); err != nil {
		return err
	}
	for _, a := range n.Attr {
		if err := w.Attribute(a.Name, a.Value); err != nil {
			return err
		}
	}
	if n.Text != "" {
		if err := w.Text(n.Text); err != nil {
			return err
		}
	}
	for _, c := range n.Children {
		if err := c.WriteTo(w); err != nil {
			return err
		}
	}
	return w.EndElement(n.Name)
}

// TokenReader adapts the tree to an encoding/xml token stream so that it
// composes with the xmlstream package and anything else that consumes
// xml.TokenReader. Names are emitted with their resolved namespace in
// Space, the way encoding/xml's own decoder reports them.
func (n *Node) TokenReader() stdxml.TokenReader {
	start := stdxml.StartElement{
		Name: stdxml.Name{Space: n.Name.Space, Local: n.Name.Local},
	}
	for _, a := range n.Attr {
		start.Attr = append(start.Attr, stdxml.Attr{
			Name:  stdxml.Name{Space: a.Name.Space, Local: a.Name.Local},
			Value: a.Value,
		})
	}
	inner := make([]stdxml.TokenReader, 0, len(n.Children)+1)
	if n.Text != "" {
		inner = append(inner, xmlstream.Token(stdxml.CharData(n.Text)))
	}
	for _, c := range n.Children {
		inner = append(inner, c.TokenReader())
	}
	return xmlstream.Wrap(xmlstream.MultiReader(inner...), start)
}

// EncodeNode writes the tree to an xmlstream token writer, flushing it if
// it supports flushing.
func EncodeNode(w xmlstream.TokenWriter, n *Node) error {
	_, err := xmlstream.Copy(w, n.TokenReader())
	if err != nil {
		return err
	}
	if wf, ok := w.(xmlstream.Flusher); ok {
		return wf.Flush()
	}
	return nil
}
