// Copyright 2023 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package xml_test

import (
	"bytes"
	stdxml "encoding/xml"
	"testing"

	"github.com/google/go-cmp/cmp"

	"mellium.im/serde/xml"
)

func TestParseNode(t *testing.T) {
	const doc = `<root id="1">
		<child>hi</child>
		<empty/>
	</root>`
	want := &xml.Node{
		Name: xml.Name{Local: "root"},
		Attr: []xml.Attr{{Name: xml.Name{Local: "id"}, Value: "1"}},
		Children: []*xml.Node{
			{Name: xml.Name{Local: "child"}, Text: "hi"},
			{Name: xml.Name{Local: "empty"}},
		},
	}
	got, err := xml.ParseNode([]byte(doc))
	if err != nil {
		t.Fatalf("unexpected error parsing: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("wrong tree (-want, +got):\n%s", diff)
	}
}

func TestNodeWriteTo(t *testing.T) {
	n := &xml.Node{
		Name: xml.Name{Local: "root"},
		Attr: []xml.Attr{{Name: xml.Name{Local: "id"}, Value: "1"}},
		Text: "text",
		Children: []*xml.Node{
			{Name: xml.Name{Local: "child"}, Text: "hi"},
		},
	}
	w := xml.NewStreamWriter()
	if err := n.WriteTo(w); err != nil {
		t.Fatalf("unexpected error writing tree: %v", err)
	}
	if err := w.EndDocument(); err != nil {
		t.Fatalf("unexpected error ending document: %v", err)
	}
	got, err := xml.ParseNode(w.Bytes())
	if err != nil {
		t.Fatalf("unexpected error reparsing: %v", err)
	}
	if diff := cmp.Diff(n, got); diff != "" {
		t.Errorf("tree changed through write and reparse (-want, +got):\n%s", diff)
	}
}

func TestEncodeNode(t *testing.T) {
	n := &xml.Node{
		Name: xml.Name{Local: "root"},
		Attr: []xml.Attr{{Name: xml.Name{Local: "id"}, Value: "1"}},
		Text: "text",
		Children: []*xml.Node{
			{Name: xml.Name{Local: "child"}, Text: "hi"},
		},
	}
	var buf bytes.Buffer
	e := stdxml.NewEncoder(&buf)
	if err := xml.EncodeNode(e, n); err != nil {
		t.Fatalf("unexpected error encoding: %v", err)
	}
	const want = `<root id="1">text<child>hi</child></root>`
	if got := buf.String(); got != want {
		t.Errorf("wrong output: want %s, got %s", want, got)
	}
}
