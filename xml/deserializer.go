// Copyright 2022 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package xml

import (
	"strconv"
	"strings"

	"mellium.im/serde"
)

// A Deserializer reads one XML payload through the field index dispatch
// protocol: callers enter a structure, loop on NextField, switch on the
// returned index, and call the precisely typed extraction for each field.
//
// Unknown members at any nesting level are reported as serde.UnknownField
// and discarded with SkipValue, which skips entire subtrees.
type Deserializer struct {
	r *StreamReader
}

var _ serde.Deserializer = (*Deserializer)(nil)

// NewDeserializer returns a deserializer over one complete document.
func NewDeserializer(payload []byte) (*Deserializer, error) {
	r, err := NewStreamReader(payload)
	if err != nil {
		return nil, err
	}
	return &Deserializer{r: r}, nil
}

// DeserializeStruct consumes the structure's container start tag and
// returns the iterator that dispatches its attributes and child elements.
func (d *Deserializer) DeserializeStruct(obj *serde.ObjectDescriptor) (serde.FieldIterator, error) {
	start, err := d.nextStart()
	if err != nil {
		return nil, err
	}
	fi := &fieldIterator{d: d, desc: obj, attrs: start.Attr}
	fi.textScalars = textScalars{src: fi.text}
	return fi, nil
}

// DeserializeList enters a list. For a wrapped list the wrapper element's
// start tag is consumed here; a flattened list has no wrapper and the
// cursor stays before the first repeated element.
func (d *Deserializer) DeserializeList(f *serde.FieldDescriptor) (serde.ElementIterator, error) {
	it := &elementIterator{d: d}
	if flattened(f) {
		it.flat = true
		it.item = elementName(f)
	} else {
		if _, err := d.nextStart(); err != nil {
			return nil, err
		}
		it.item = Name{Local: memberName(f)}
	}
	it.textScalars = textScalars{src: it.text}
	return it, nil
}

// DeserializeMap enters a map, consuming the wrapper start tag unless the
// map is flattened.
func (d *Deserializer) DeserializeMap(f *serde.FieldDescriptor) (serde.EntryIterator, error) {
	entry, key, value := mapNames(f)
	it := &entryIterator{
		d:     d,
		key:   Name{Local: key},
		value: Name{Local: value},
	}
	if flattened(f) {
		it.flat = true
		it.entry = elementName(f)
	} else {
		if _, err := d.nextStart(); err != nil {
			return nil, err
		}
		it.entry = Name{Local: entry}
	}
	it.textScalars = textScalars{src: it.valueText}
	return it, nil
}

// nextStart consumes tokens up to and including the next start tag,
// discarding intervening character data.
func (d *Deserializer) nextStart() (StartElement, error) {
	for {
		tok, err := d.r.NextToken()
		if err != nil {
			return StartElement{}, err
		}
		switch t := tok.(type) {
		case StartElement:
			return t, nil
		case CharData:
			continue
		case EndElement:
			return StartElement{}, &serde.DeserializationError{Msg: "expected an element, found end tag </" + t.Name.String() + ">"}
		case EndDocument:
			return StartElement{}, &serde.DeserializationError{Msg: "expected an element, found end of document"}
		}
	}
}

// elementText consumes the remainder of an element whose start tag has
// already been consumed, concatenating its character data runs. The result
// is trimmed of surrounding whitespace.
func (d *Deserializer) elementText() (string, error) {
	var sb strings.Builder
	for {
		tok, err := d.r.NextToken()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case CharData:
			sb.WriteString(string(t))
		case EndElement:
			return strings.TrimSpace(sb.String()), nil
		case StartElement:
			return "", &serde.DeserializationError{Msg: "expected scalar content, found element <" + t.Name.String() + ">"}
		case EndDocument:
			return "", &serde.DeserializationError{Msg: "unexpected end of document inside scalar value"}
		}
	}
}

// readElementText consumes one whole element and returns its trimmed text
// content.
func (d *Deserializer) readElementText() (string, error) {
	if _, err := d.nextStart(); err != nil {
		return "", err
	}
	return d.elementText()
}

// skipElement discards leading character data and then the next value's
// entire subtree. The cursor must be positioned where an element is known
// to follow.
func (d *Deserializer) skipElement() error {
	for {
		tok, err := d.r.Peek()
		if err != nil {
			return err
		}
		if _, ok := tok.(CharData); !ok {
			return d.r.Skip()
		}
		if _, err := d.r.NextToken(); err != nil {
			return err
		}
	}
}

// textScalars implements the typed extractions of ScalarDeserializer over
// a source of trimmed text content.
type textScalars struct {
	src func() (string, error)
}

func (t textScalars) String() (string, error) {
	return t.src()
}

func (t textScalars) Bool() (bool, error) {
	s, err := t.src()
	if err != nil {
		return false, err
	}
	if s == "" {
		return false, errEmpty("boolean")
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, &serde.DeserializationError{Msg: "invalid boolean value " + strconv.Quote(s), Err: err}
	}
	return v, nil
}

func (t textScalars) Byte() (int8, error) {
	v, err := t.integer("byte", 8)
	return int8(v), err
}

func (t textScalars) Short() (int16, error) {
	v, err := t.integer("short", 16)
	return int16(v), err
}

func (t textScalars) Int() (int32, error) {
	v, err := t.integer("integer", 32)
	return int32(v), err
}

func (t textScalars) Long() (int64, error) {
	return t.integer("long", 64)
}

func (t textScalars) Float() (float32, error) {
	v, err := t.float("float", 32)
	return float32(v), err
}

func (t textScalars) Double() (float64, error) {
	return t.float("double", 64)
}

// integer parses integral content; fractional or empty text is rejected.
func (t textScalars) integer(kind string, bits int) (int64, error) {
	s, err := t.src()
	if err != nil {
		return 0, err
	}
	if s == "" {
		return 0, errEmpty(kind)
	}
	v, err := strconv.ParseInt(s, 10, bits)
	if err != nil {
		return 0, &serde.DeserializationError{Msg: "invalid " + kind + " value " + strconv.Quote(s), Err: err}
	}
	return v, nil
}

// float parses decimal or scientific notation.
func (t textScalars) float(kind string, bits int) (float64, error) {
	s, err := t.src()
	if err != nil {
		return 0, err
	}
	if s == "" {
		return 0, errEmpty(kind)
	}
	v, err := strconv.ParseFloat(s, bits)
	if err != nil {
		return 0, &serde.DeserializationError{Msg: "invalid " + kind + " value " + strconv.Quote(s), Err: err}
	}
	return v, nil
}

func errEmpty(kind string) error {
	return &serde.DeserializationError{Msg: "expected " + kind + " value, found empty content"}
}

// fieldIterator dispatches one structure's members by field index.
type fieldIterator struct {
	textScalars

	d    *Deserializer
	desc *serde.ObjectDescriptor

	// attrs holds the not yet examined attributes from the container's
	// start tag; they are matched before any child element.
	attrs []Attr

	// attrValue is the pending scalar source when the last dispatched
	// field was an attribute.
	attrValue *string

	done bool
}

var _ serde.FieldIterator = (*fieldIterator)(nil)

func (f *fieldIterator) NextField() (int, bool, error) {
	if f.done {
		return 0, false, nil
	}
	// A matched attribute whose value was never extracted is abandoned.
	f.attrValue = nil

	for len(f.attrs) > 0 {
		a := f.attrs[0]
		f.attrs = f.attrs[1:]
		if idx, ok := f.matchAttr(a.Name); ok {
			v := a.Value
			f.attrValue = &v
			return idx, true, nil
		}
		// Attributes matching no descriptor are not dispatched: there is
		// no subtree for the caller to skip.
	}
	for {
		tok, err := f.d.r.Peek()
		if err != nil {
			return 0, false, err
		}
		switch t := tok.(type) {
		case CharData:
			if _, err := f.d.r.NextToken(); err != nil {
				return 0, false, err
			}
		case EndElement:
			if _, err := f.d.r.NextToken(); err != nil {
				return 0, false, err
			}
			f.done = true
			return 0, false, nil
		case EndDocument:
			return 0, false, &serde.DeserializationError{Msg: "unexpected end of document inside <" + f.desc.Name + ">"}
		case StartElement:
			if idx, ok := f.matchElement(t.Name); ok {
				return idx, true, nil
			}
			return serde.UnknownField, true, nil
		}
	}
}

func (f *fieldIterator) matchAttr(n Name) (int, bool) {
	for _, fd := range f.desc.Fields() {
		if _, ok := attributeTrait(fd); !ok {
			continue
		}
		if n.Equal(attrName(fd)) {
			return fd.Index, true
		}
	}
	return 0, false
}

func (f *fieldIterator) matchElement(n Name) (int, bool) {
	for _, fd := range f.desc.Fields() {
		if _, ok := attributeTrait(fd); ok {
			continue
		}
		want := elementName(fd)
		if n.Local != want.Local {
			continue
		}
		if want.Space != "" && n.Space != want.Space {
			continue
		}
		return fd.Index, true
	}
	return 0, false
}

func (f *fieldIterator) SkipValue() error {
	if f.attrValue != nil {
		f.attrValue = nil
		return nil
	}
	return f.d.skipElement()
}

func (f *fieldIterator) Null() error {
	if f.attrValue != nil {
		f.attrValue = nil
		return nil
	}
	return f.d.skipElement()
}

// text is the scalar source: the pending attribute value if the last
// dispatched field was an attribute, the next child element's content
// otherwise.
func (f *fieldIterator) text() (string, error) {
	if f.attrValue != nil {
		v := strings.TrimSpace(*f.attrValue)
		f.attrValue = nil
		return v, nil
	}
	return f.d.readElementText()
}

// elementIterator reads list items.
type elementIterator struct {
	textScalars

	d    *Deserializer
	item Name
	flat bool

	// entered is set when NextHasValue consumed the next item's start tag;
	// the following extraction must not consume another one.
	entered bool
	done    bool
}

var _ serde.ElementIterator = (*elementIterator)(nil)

func (it *elementIterator) HasNext() (bool, error) {
	if it.done {
		return false, nil
	}
	if it.entered {
		return true, nil
	}
	for {
		tok, err := it.d.r.Peek()
		if err != nil {
			return false, err
		}
		switch t := tok.(type) {
		case CharData:
			if _, err := it.d.r.NextToken(); err != nil {
				return false, err
			}
		case StartElement:
			if it.flat && !it.matchItem(t.Name) {
				// A sibling with a different name ends the repeated run.
				it.done = true
				return false, nil
			}
			return true, nil
		case EndElement:
			it.done = true
			if it.flat {
				// The enclosing container's end tag belongs to our caller.
				return false, nil
			}
			if _, err := it.d.r.NextToken(); err != nil {
				return false, err
			}
			return false, nil
		case EndDocument:
			if it.flat {
				it.done = true
				return false, nil
			}
			return false, &serde.DeserializationError{Msg: "unexpected end of document inside list"}
		}
	}
}

func (it *elementIterator) matchItem(n Name) bool {
	if n.Local != it.item.Local {
		return false
	}
	return it.item.Space == "" || n.Space == it.item.Space
}

func (it *elementIterator) NextHasValue() (bool, error) {
	if !it.entered {
		if _, err := it.d.nextStart(); err != nil {
			return false, err
		}
		it.entered = true
	}
	return it.d.probeValue()
}

func (it *elementIterator) Null() error {
	if it.entered {
		it.entered = false
		_, err := it.d.elementText()
		return err
	}
	return it.d.skipElement()
}

// text is the scalar source: one item element's content per call.
func (it *elementIterator) text() (string, error) {
	if it.entered {
		it.entered = false
		return it.d.elementText()
	}
	return it.d.readElementText()
}

// probeValue reports whether the element the cursor is inside has any
// content besides whitespace.
func (d *Deserializer) probeValue() (bool, error) {
	for {
		tok, err := d.r.Peek()
		if err != nil {
			return false, err
		}
		switch t := tok.(type) {
		case EndElement:
			return false, nil
		case CharData:
			if strings.TrimSpace(string(t)) != "" {
				return true, nil
			}
			if _, err := d.r.NextToken(); err != nil {
				return false, err
			}
		case StartElement:
			return true, nil
		case EndDocument:
			return false, &serde.DeserializationError{Msg: "unexpected end of document inside value"}
		}
	}
}

// entryIterator reads map entries.
type entryIterator struct {
	textScalars

	d     *Deserializer
	entry Name
	key   Name
	value Name
	flat  bool

	inEntry    bool
	entryDepth int

	// entered is set when NextHasValue consumed the value element's start
	// tag.
	entered bool
	done    bool
}

var _ serde.EntryIterator = (*entryIterator)(nil)

func (it *entryIterator) HasNext() (bool, error) {
	if it.done {
		return false, nil
	}
	if it.inEntry {
		if err := it.finishEntry(); err != nil {
			return false, err
		}
	}
	for {
		tok, err := it.d.r.Peek()
		if err != nil {
			return false, err
		}
		switch t := tok.(type) {
		case CharData:
			if _, err := it.d.r.NextToken(); err != nil {
				return false, err
			}
		case StartElement:
			if it.flat && !it.matchEntry(t.Name) {
				it.done = true
				return false, nil
			}
			return true, nil
		case EndElement:
			it.done = true
			if it.flat {
				return false, nil
			}
			if _, err := it.d.r.NextToken(); err != nil {
				return false, err
			}
			return false, nil
		case EndDocument:
			if it.flat {
				it.done = true
				return false, nil
			}
			return false, &serde.DeserializationError{Msg: "unexpected end of document inside map"}
		}
	}
}

func (it *entryIterator) matchEntry(n Name) bool {
	if n.Local != it.entry.Local {
		return false
	}
	return it.entry.Space == "" || n.Space == it.entry.Space
}

func (it *entryIterator) Key() (string, error) {
	if it.done {
		return "", &serde.DeserializationError{Msg: "Key called after end of map"}
	}
	if !it.inEntry {
		if _, err := it.d.nextStart(); err != nil {
			return "", err
		}
		it.entryDepth = it.d.r.Depth()
		it.inEntry = true
	}
	start, err := it.d.nextStart()
	if err != nil {
		return "", err
	}
	if start.Name.Local != it.key.Local {
		return "", &serde.DeserializationError{Msg: "expected <" + it.key.Local + "> element, found <" + start.Name.String() + ">"}
	}
	return it.d.elementText()
}

func (it *entryIterator) NextHasValue() (bool, error) {
	if !it.inEntry {
		return false, &serde.DeserializationError{Msg: "NextHasValue called outside of a map entry"}
	}
	if !it.entered {
		for {
			tok, err := it.d.r.Peek()
			if err != nil {
				return false, err
			}
			switch tok.(type) {
			case EndElement:
				// The entry ends with no value element at all.
				return false, nil
			case CharData:
				if _, err := it.d.r.NextToken(); err != nil {
					return false, err
				}
				continue
			case StartElement:
			case EndDocument:
				return false, &serde.DeserializationError{Msg: "unexpected end of document inside map entry"}
			}
			break
		}
		if _, err := it.d.nextStart(); err != nil {
			return false, err
		}
		it.entered = true
	}
	return it.d.probeValue()
}

func (it *entryIterator) Null() error {
	if !it.inEntry {
		return &serde.DeserializationError{Msg: "Null called outside of a map entry"}
	}
	if it.entered {
		it.entered = false
		_, err := it.d.elementText()
		return err
	}
	for {
		tok, err := it.d.r.Peek()
		if err != nil {
			return err
		}
		switch tok.(type) {
		case CharData:
			if _, err := it.d.r.NextToken(); err != nil {
				return err
			}
		case StartElement:
			return it.d.r.Skip()
		default:
			// No value element; the entry's own end tag is consumed by the
			// next HasNext.
			return nil
		}
	}
}

// finishEntry drains whatever remains of the current entry, including its
// closing tag.
func (it *entryIterator) finishEntry() error {
	for it.d.r.Depth() >= it.entryDepth {
		tok, err := it.d.r.NextToken()
		if err != nil {
			return err
		}
		if _, ok := tok.(EndDocument); ok {
			return &serde.DeserializationError{Msg: "unexpected end of document inside map entry"}
		}
	}
	it.inEntry = false
	it.entered = false
	return nil
}

// valueText is the scalar source for entry values: the content of the
// entry's value element.
func (it *entryIterator) valueText() (string, error) {
	if it.done || !it.inEntry {
		return "", &serde.DeserializationError{Msg: "value extraction outside of a map entry"}
	}
	if it.entered {
		it.entered = false
		return it.d.elementText()
	}
	start, err := it.d.nextStart()
	if err != nil {
		return "", err
	}
	if start.Name.Local != it.value.Local {
		return "", &serde.DeserializationError{Msg: "expected <" + it.value.Local + "> element, found <" + start.Name.String() + ">"}
	}
	return it.d.elementText()
}
