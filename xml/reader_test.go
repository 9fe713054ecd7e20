// Copyright 2022 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package xml_test

import (
	"errors"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"

	"mellium.im/serde/xml"
)

var tokenTests = [...]struct {
	in   string
	toks []xml.Token
}{
	0: {
		in: `<a></a>`,
		toks: []xml.Token{
			xml.StartElement{Name: xml.Name{Local: "a"}},
			xml.EndElement{Name: xml.Name{Local: "a"}},
			xml.EndDocument{},
		},
	},
	1: {
		in: `<a><b>text</b></a>`,
		toks: []xml.Token{
			xml.StartElement{Name: xml.Name{Local: "a"}},
			xml.StartElement{Name: xml.Name{Local: "b"}},
			xml.CharData("text"),
			xml.EndElement{Name: xml.Name{Local: "b"}},
			xml.EndElement{Name: xml.Name{Local: "a"}},
			xml.EndDocument{},
		},
	},
	2: {
		// Self closing tags produce balanced start/end pairs.
		in: `<a><b/></a>`,
		toks: []xml.Token{
			xml.StartElement{Name: xml.Name{Local: "a"}},
			xml.StartElement{Name: xml.Name{Local: "b"}},
			xml.EndElement{Name: xml.Name{Local: "b"}},
			xml.EndElement{Name: xml.Name{Local: "a"}},
			xml.EndDocument{},
		},
	},
	3: {
		// Comments are never surfaced and do not introduce element
		// boundaries, but the text runs they split are not merged.
		in: `<a>one<!-- hi -->two</a>`,
		toks: []xml.Token{
			xml.StartElement{Name: xml.Name{Local: "a"}},
			xml.CharData("one"),
			xml.CharData("two"),
			xml.EndElement{Name: xml.Name{Local: "a"}},
			xml.EndDocument{},
		},
	},
	4: {
		// The XML declaration and leading whitespace are skipped.
		in: "<?xml version=\"1.0\"?>\n<a></a>",
		toks: []xml.Token{
			xml.StartElement{Name: xml.Name{Local: "a"}},
			xml.EndElement{Name: xml.Name{Local: "a"}},
			xml.EndDocument{},
		},
	},
	5: {
		// Entities are decoded into character data.
		in: `<a>1 &lt; 2 &amp; 3 &gt; 2</a>`,
		toks: []xml.Token{
			xml.StartElement{Name: xml.Name{Local: "a"}},
			xml.CharData("1 < 2 & 3 > 2"),
			xml.EndElement{Name: xml.Name{Local: "a"}},
			xml.EndDocument{},
		},
	},
	6: {
		// A prefixed child resolves against the declaration on its parent
		// and the prefix used in the document is preserved.
		in: `<a xmlns:baz="http://foo.com"><baz:bar>v</baz:bar></a>`,
		toks: []xml.Token{
			xml.StartElement{
				Name: xml.Name{Local: "a"},
				NS:   []xml.NS{{Space: "http://foo.com", Prefix: "baz"}},
			},
			xml.StartElement{Name: xml.Name{Local: "bar", Space: "http://foo.com", Prefix: "baz"}},
			xml.CharData("v"),
			xml.EndElement{Name: xml.Name{Local: "bar", Space: "http://foo.com", Prefix: "baz"}},
			xml.EndElement{Name: xml.Name{Local: "a"}},
			xml.EndDocument{},
		},
	},
	7: {
		// The default namespace applies to the declaring element and its
		// descendants, but never to attributes.
		in: `<a xmlns="urn:d" id="1"><b pre:id="2" xmlns:pre="urn:p"></b></a>`,
		toks: []xml.Token{
			xml.StartElement{
				Name: xml.Name{Local: "a", Space: "urn:d"},
				Attr: []xml.Attr{{Name: xml.Name{Local: "id"}, Value: "1"}},
				NS:   []xml.NS{{Space: "urn:d"}},
			},
			xml.StartElement{
				Name: xml.Name{Local: "b", Space: "urn:d"},
				Attr: []xml.Attr{{Name: xml.Name{Local: "id", Space: "urn:p", Prefix: "pre"}, Value: "2"}},
				NS:   []xml.NS{{Space: "urn:p", Prefix: "pre"}},
			},
			xml.EndElement{Name: xml.Name{Local: "b", Space: "urn:d"}},
			xml.EndElement{Name: xml.Name{Local: "a", Space: "urn:d"}},
			xml.EndDocument{},
		},
	},
	8: {
		// The xml prefix is predeclared.
		in: `<a xml:lang="en"></a>`,
		toks: []xml.Token{
			xml.StartElement{
				Name: xml.Name{Local: "a"},
				Attr: []xml.Attr{{
					Name:  xml.Name{Local: "lang", Space: "http://www.w3.org/XML/1998/namespace", Prefix: "xml"},
					Value: "en",
				}},
			},
			xml.EndElement{Name: xml.Name{Local: "a"}},
			xml.EndDocument{},
		},
	},
}

func TestTokens(t *testing.T) {
	for i, tc := range tokenTests {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			r, err := xml.NewStreamReader([]byte(tc.in))
			if err != nil {
				t.Fatalf("unexpected error creating reader: %v", err)
			}
			var got []xml.Token
			for range tc.toks {
				tok, err := r.NextToken()
				if err != nil {
					t.Fatalf("unexpected error reading token: %v", err)
				}
				got = append(got, tok)
			}
			if diff := cmp.Diff(tc.toks, got); diff != "" {
				t.Errorf("wrong tokens (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestTokenBalance(t *testing.T) {
	const doc = `<a><b><c>x</c><c/></b><b>y</b></a>`
	r, err := xml.NewStreamReader([]byte(doc))
	if err != nil {
		t.Fatalf("unexpected error creating reader: %v", err)
	}
	var starts, ends int
	for {
		tok, err := r.NextToken()
		if err != nil {
			t.Fatalf("unexpected error reading token: %v", err)
		}
		if _, ok := tok.(xml.EndDocument); ok {
			break
		}
		switch tok.(type) {
		case xml.StartElement:
			starts++
		case xml.EndElement:
			ends++
		}
		if d := r.Depth(); d < 0 {
			t.Fatalf("depth went negative: %d", d)
		}
	}
	if starts != ends {
		t.Errorf("unbalanced document: %d start elements, %d end elements", starts, ends)
	}
	if d := r.Depth(); d != 0 {
		t.Errorf("depth not restored at end of document: %d", d)
	}
}

func TestPeek(t *testing.T) {
	const doc = `<a at="1"><b>text</b><c/></a>`
	peeked, err := xml.NewStreamReader([]byte(doc))
	if err != nil {
		t.Fatalf("unexpected error creating reader: %v", err)
	}
	plain, err := xml.NewStreamReader([]byte(doc))
	if err != nil {
		t.Fatalf("unexpected error creating reader: %v", err)
	}
	for {
		before := peeked.Depth()
		p, err := peeked.Peek()
		if err != nil {
			t.Fatalf("unexpected error peeking: %v", err)
		}
		if after := peeked.Depth(); after != before {
			t.Fatalf("peek changed depth from %d to %d", before, after)
		}
		got, err := peeked.NextToken()
		if err != nil {
			t.Fatalf("unexpected error after peek: %v", err)
		}
		if diff := cmp.Diff(p, got); diff != "" {
			t.Fatalf("peeked token does not match consumed token (-peek, +next):\n%s", diff)
		}
		want, err := plain.NextToken()
		if err != nil {
			t.Fatalf("unexpected error on plain reader: %v", err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("peeking disturbed the stream (-plain, +peeked):\n%s", diff)
		}
		if peeked.Depth() != plain.Depth() {
			t.Fatalf("depth diverged: peeked %d, plain %d", peeked.Depth(), plain.Depth())
		}
		if _, ok := got.(xml.EndDocument); ok {
			break
		}
	}
}

func TestSkip(t *testing.T) {
	const doc = `<a><skipme><deep><deeper>x</deeper></deep><sibling/>t</skipme><after>y</after></a>`
	r, err := xml.NewStreamReader([]byte(doc))
	if err != nil {
		t.Fatalf("unexpected error creating reader: %v", err)
	}
	// Consume <a>.
	if _, err = r.NextToken(); err != nil {
		t.Fatalf("unexpected error reading root: %v", err)
	}
	if err = r.Skip(); err != nil {
		t.Fatalf("unexpected error skipping subtree: %v", err)
	}
	if d := r.Depth(); d != 1 {
		t.Errorf("wrong depth after skip: want 1, got %d", d)
	}
	tok, err := r.NextToken()
	if err != nil {
		t.Fatalf("unexpected error after skip: %v", err)
	}
	start, ok := tok.(xml.StartElement)
	if !ok || start.Name.Local != "after" {
		t.Errorf("skip did not stop at the matching end tag, next token: %#v", tok)
	}
}

func TestSkipLeaf(t *testing.T) {
	const doc = `<a>text<b/></a>`
	r, err := xml.NewStreamReader([]byte(doc))
	if err != nil {
		t.Fatalf("unexpected error creating reader: %v", err)
	}
	if _, err = r.NextToken(); err != nil {
		t.Fatalf("unexpected error reading root: %v", err)
	}
	// Skipping a leaf discards the single text token.
	if err = r.Skip(); err != nil {
		t.Fatalf("unexpected error skipping text: %v", err)
	}
	tok, err := r.NextToken()
	if err != nil {
		t.Fatalf("unexpected error after skip: %v", err)
	}
	start, ok := tok.(xml.StartElement)
	if !ok || start.Name.Local != "b" {
		t.Errorf("expected <b> after skipping text, got %#v", tok)
	}
}

func TestUTF16Payload(t *testing.T) {
	// "<?xml version="1.0" encoding="utf-16"?><a>hi</a>" in little endian
	// UTF-16 with a byte order mark.
	src := `<?xml version="1.0" encoding="utf-16"?><a>hi</a>`
	payload := []byte{0xFF, 0xFE}
	for i := 0; i < len(src); i++ {
		payload = append(payload, src[i], 0x00)
	}
	r, err := xml.NewStreamReader(payload)
	if err != nil {
		t.Fatalf("unexpected error creating reader: %v", err)
	}
	want := []xml.Token{
		xml.StartElement{Name: xml.Name{Local: "a"}},
		xml.CharData("hi"),
		xml.EndElement{Name: xml.Name{Local: "a"}},
		xml.EndDocument{},
	}
	var got []xml.Token
	for range want {
		tok, err := r.NextToken()
		if err != nil {
			t.Fatalf("unexpected error reading token: %v", err)
		}
		got = append(got, tok)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("wrong tokens (-want, +got):\n%s", diff)
	}
}

var malformedTests = [...]string{
	0: ``,
	1: `this is not xml`,
	2: `not <xml></xml>`,
	3: `<a>`,
	4: `<a><b></a>`,
	5: `</a>`,
	6: `<a></a><b></b>`,
	7: `<a></a>trailing`,
	8: `<a attr="unterminated></a>`,
	9: `<pre:a></pre:a>`,
}

func TestMalformed(t *testing.T) {
	for i, in := range malformedTests {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			r, err := xml.NewStreamReader([]byte(in))
			if err != nil {
				t.Fatalf("unexpected error creating reader: %v", err)
			}
			for j := 0; ; j++ {
				if j > 100 {
					t.Fatalf("reader did not terminate")
				}
				tok, err := r.NextToken()
				if err != nil {
					var malformed *xml.MalformedDocumentError
					if !errors.As(err, &malformed) {
						t.Fatalf("wrong error type: %v", err)
					}
					// The error is sticky.
					if _, err2 := r.NextToken(); !errors.Is(err2, err) && err2.Error() != err.Error() {
						t.Errorf("expected sticky error, got %v then %v", err, err2)
					}
					return
				}
				if _, ok := tok.(xml.EndDocument); ok {
					t.Fatalf("malformed document drained without error")
				}
			}
		})
	}
}
