// Copyright 2022 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package xml

// A Name is an XML name annotated with the namespace it resolved to.
// Unlike the names produced by encoding/xml's Decoder, the prefix used in
// the source document is preserved alongside the resolved URI.
type Name struct {
	// Local is the local part of the name.
	Local string

	// Space is the namespace URI the name resolved to, or empty if the name
	// is in no namespace.
	Space string

	// Prefix is the namespace prefix as it appeared in the document, or
	// empty for unprefixed names. It is a serialization detail and is
	// ignored by Equal.
	Prefix string
}

// Equal reports whether two names refer to the same local name in the same
// namespace. Prefixes are not compared.
func (n Name) Equal(o Name) bool {
	return n.Local == o.Local && n.Space == o.Space
}

// String returns the name as it would appear in a document.
func (n Name) String() string {
	if n.Prefix == "" {
		return n.Local
	}
	return n.Prefix + ":" + n.Local
}

// An NS is a namespace declaration: a binding of a prefix (or of the
// default namespace, when Prefix is empty) to a URI, scoped to the element
// it is declared on and that element's descendants until shadowed.
type NS struct {
	// Space is the namespace URI.
	Space string

	// Prefix is the bound prefix, or empty for the default namespace.
	Prefix string
}

// An Attr is a single attribute on a start element.
type Attr struct {
	Name  Name
	Value string
}

// A Token is one event in a document's token stream. The concrete types are
// StartElement, EndElement, CharData, and EndDocument.
type Token interface {
	token()
}

// A StartElement marks the opening tag of an element, carrying its resolved
// name, its attributes (namespace declarations excluded), and the namespace
// declarations that appeared on it.
type StartElement struct {
	Name Name
	Attr []Attr
	NS   []NS
}

func (StartElement) token() {}

// Attribute returns the value of the named attribute and whether it was
// present.
func (s StartElement) Attribute(name Name) (string, bool) {
	for _, a := range s.Attr {
		if a.Name.Equal(name) {
			return a.Value, true
		}
	}
	return "", false
}

// An EndElement marks the closing tag of an element.
type EndElement struct {
	Name Name
}

func (EndElement) token() {}

// CharData is one contiguous run of character data. A single element may
// contain several runs (for example when a comment splits its text); the
// reader never concatenates them.
type CharData string

func (CharData) token() {}

// EndDocument is the terminal sentinel produced once the document's root
// element has been fully consumed. The reader returns it for every read
// past the end of the document.
type EndDocument struct{}

func (EndDocument) token() {}
