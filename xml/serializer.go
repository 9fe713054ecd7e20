// Copyright 2022 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package xml

import (
	"strconv"

	"mellium.im/serde"
)

// A Serializer writes structured values as one XML document, realizing the
// binding rules carried by the descriptors it is given: attribute traits
// become attributes on the container's opening tag, lists and maps are
// written wrapped or flattened, and namespace traits select (or introduce)
// prefixes on the underlying writer.
//
// Attribute valued fields must be written before any element valued field
// of the same structure; this mirrors the order in which generated code
// emits fields and is not checked beyond the writer's own state error.
type Serializer struct {
	w *StreamWriter

	// pending overrides the element name of the next container begun, used
	// when a structure is serialized in a position (list item, map value,
	// struct field) whose element name belongs to the position rather than
	// to the structure.
	pending *Name
}

var _ serde.Serializer = (*Serializer)(nil)

// NewSerializer returns a serializer writing a fresh document.
func NewSerializer(opts ...WriterOption) *Serializer {
	return &Serializer{w: NewStreamWriter(opts...)}
}

// Bytes finalizes the document and returns it. Later calls return the same
// bytes.
func (s *Serializer) Bytes() []byte {
	_ = s.w.EndDocument()
	return s.w.Bytes()
}

// String is like Bytes but returns the document as a string.
func (s *Serializer) String() string {
	_ = s.w.EndDocument()
	return s.w.String()
}

// SerializeStruct opens the container element for a structure.
func (s *Serializer) SerializeStruct(d *serde.ObjectDescriptor) (serde.StructSerializer, error) {
	name := s.takeName(&d.FieldDescriptor)
	if err := s.beginElement(name); err != nil {
		return nil, err
	}
	return &structSerializer{s: s, name: name}, nil
}

// SerializeList opens a list. Wrapped lists open their wrapper element
// here; flattened lists write nothing until the first item.
func (s *Serializer) SerializeList(d *serde.FieldDescriptor) (serde.ListSerializer, error) {
	if flattened(d) {
		return &listSerializer{s: s, item: elementName(d)}, nil
	}
	wrapper := s.takeName(d)
	if err := s.beginElement(wrapper); err != nil {
		return nil, err
	}
	return &listSerializer{
		s:       s,
		wrapper: wrapper,
		wrapped: true,
		item:    Name{Local: memberName(d)},
	}, nil
}

// SerializeMap opens a map. Wrapped maps open their wrapper element here;
// flattened maps write nothing until the first entry.
func (s *Serializer) SerializeMap(d *serde.FieldDescriptor) (serde.MapSerializer, error) {
	entry, key, value := mapNames(d)
	m := &mapSerializer{
		s:     s,
		entry: Name{Local: entry},
		key:   Name{Local: key},
		value: Name{Local: value},
	}
	if flattened(d) {
		m.entry = elementName(d)
		return m, nil
	}
	wrapper := s.takeName(d)
	if err := s.beginElement(wrapper); err != nil {
		return nil, err
	}
	m.wrapper = wrapper
	m.wrapped = true
	return m, nil
}

// Top level scalars become bare character data at the current position.

func (s *Serializer) SerializeBool(v bool) error     { return s.w.Text(strconv.FormatBool(v)) }
func (s *Serializer) SerializeByte(v int8) error     { return s.w.Text(formatInt(int64(v))) }
func (s *Serializer) SerializeShort(v int16) error   { return s.w.Text(formatInt(int64(v))) }
func (s *Serializer) SerializeInt(v int32) error     { return s.w.Text(formatInt(int64(v))) }
func (s *Serializer) SerializeLong(v int64) error    { return s.w.Text(formatInt(v)) }
func (s *Serializer) SerializeFloat(v float32) error { return s.w.Text(formatFloat(float64(v), 32)) }
func (s *Serializer) SerializeDouble(v float64) error {
	return s.w.Text(formatFloat(v, 64))
}
func (s *Serializer) SerializeString(v string) error { return s.w.Text(v) }
func (s *Serializer) SerializeNull() error           { return nil }

// takeName consumes the pending positional name if one is set, falling
// back to the descriptor's own element name.
func (s *Serializer) takeName(d *serde.FieldDescriptor) Name {
	if s.pending != nil {
		n := *s.pending
		s.pending = nil
		return n
	}
	return elementName(d)
}

// beginElement starts an element, declaring the trait's preferred prefix
// first so the writer picks it up instead of generating one.
func (s *Serializer) beginElement(n Name) error {
	if n.Space != "" && n.Prefix != "" {
		if err := s.w.SetPrefix(n.Prefix, n.Space); err != nil {
			return err
		}
	}
	return s.w.StartElement(n)
}

// writeTextElement writes one element containing only character data.
func (s *Serializer) writeTextElement(n Name, text string) error {
	if err := s.beginElement(n); err != nil {
		return err
	}
	if err := s.w.Text(text); err != nil {
		return err
	}
	return s.w.EndElement(n)
}

// writeEmptyElement writes one element with no content.
func (s *Serializer) writeEmptyElement(n Name) error {
	if err := s.beginElement(n); err != nil {
		return err
	}
	return s.w.EndElement(n)
}

type structSerializer struct {
	s    *Serializer
	name Name
}

var _ serde.StructSerializer = (*structSerializer)(nil)

// scalarField writes one scalar valued field, as an attribute on the still
// open container tag when the descriptor carries an attribute trait and as
// a child element otherwise.
func (ss *structSerializer) scalarField(d *serde.FieldDescriptor, text string) error {
	if _, ok := attributeTrait(d); ok {
		return ss.s.w.Attribute(attrName(d), text)
	}
	return ss.s.writeTextElement(elementName(d), text)
}

func (ss *structSerializer) BoolField(d *serde.FieldDescriptor, v bool) error {
	return ss.scalarField(d, strconv.FormatBool(v))
}

func (ss *structSerializer) ByteField(d *serde.FieldDescriptor, v int8) error {
	return ss.scalarField(d, formatInt(int64(v)))
}

func (ss *structSerializer) ShortField(d *serde.FieldDescriptor, v int16) error {
	return ss.scalarField(d, formatInt(int64(v)))
}

func (ss *structSerializer) IntField(d *serde.FieldDescriptor, v int32) error {
	return ss.scalarField(d, formatInt(int64(v)))
}

func (ss *structSerializer) LongField(d *serde.FieldDescriptor, v int64) error {
	return ss.scalarField(d, formatInt(v))
}

func (ss *structSerializer) FloatField(d *serde.FieldDescriptor, v float32) error {
	return ss.scalarField(d, formatFloat(float64(v), 32))
}

func (ss *structSerializer) DoubleField(d *serde.FieldDescriptor, v float64) error {
	return ss.scalarField(d, formatFloat(v, 64))
}

func (ss *structSerializer) StringField(d *serde.FieldDescriptor, v string) error {
	return ss.scalarField(d, v)
}

func (ss *structSerializer) StructField(d *serde.FieldDescriptor, v serde.Marshaler) error {
	name := elementName(d)
	ss.s.pending = &name
	err := v.MarshalSerde(ss.s)
	ss.s.pending = nil
	return err
}

func (ss *structSerializer) ListField(d *serde.FieldDescriptor, fn func(serde.ListSerializer) error) error {
	ls, err := ss.s.SerializeList(d)
	if err != nil {
		return err
	}
	if err := fn(ls); err != nil {
		return err
	}
	return ls.Close()
}

func (ss *structSerializer) MapField(d *serde.FieldDescriptor, fn func(serde.MapSerializer) error) error {
	ms, err := ss.s.SerializeMap(d)
	if err != nil {
		return err
	}
	if err := fn(ms); err != nil {
		return err
	}
	return ms.Close()
}

func (ss *structSerializer) NullField(d *serde.FieldDescriptor) error {
	if _, ok := attributeTrait(d); ok {
		// An absent attribute is how a null attribute field is rendered.
		return nil
	}
	return ss.s.writeEmptyElement(elementName(d))
}

func (ss *structSerializer) Close() error {
	return ss.s.w.EndElement(ss.name)
}

type listSerializer struct {
	s       *Serializer
	wrapper Name
	wrapped bool
	item    Name
}

var _ serde.ListSerializer = (*listSerializer)(nil)

func (l *listSerializer) SerializeBool(v bool) error {
	return l.s.writeTextElement(l.item, strconv.FormatBool(v))
}

func (l *listSerializer) SerializeByte(v int8) error {
	return l.s.writeTextElement(l.item, formatInt(int64(v)))
}

func (l *listSerializer) SerializeShort(v int16) error {
	return l.s.writeTextElement(l.item, formatInt(int64(v)))
}

func (l *listSerializer) SerializeInt(v int32) error {
	return l.s.writeTextElement(l.item, formatInt(int64(v)))
}

func (l *listSerializer) SerializeLong(v int64) error {
	return l.s.writeTextElement(l.item, formatInt(v))
}

func (l *listSerializer) SerializeFloat(v float32) error {
	return l.s.writeTextElement(l.item, formatFloat(float64(v), 32))
}

func (l *listSerializer) SerializeDouble(v float64) error {
	return l.s.writeTextElement(l.item, formatFloat(v, 64))
}

func (l *listSerializer) SerializeString(v string) error {
	return l.s.writeTextElement(l.item, v)
}

func (l *listSerializer) SerializeNull() error {
	return l.s.writeEmptyElement(l.item)
}

func (l *listSerializer) SerializeValue(v serde.Marshaler) error {
	item := l.item
	l.s.pending = &item
	err := v.MarshalSerde(l.s)
	l.s.pending = nil
	return err
}

func (l *listSerializer) Close() error {
	if !l.wrapped {
		return nil
	}
	l.wrapped = false
	return l.s.w.EndElement(l.wrapper)
}

type mapSerializer struct {
	s       *Serializer
	wrapper Name
	wrapped bool
	entry   Name
	key     Name
	value   Name
}

var _ serde.MapSerializer = (*mapSerializer)(nil)

// scalarEntry writes one complete entry with a scalar value.
func (m *mapSerializer) scalarEntry(key, text string) error {
	if err := m.s.beginElement(m.entry); err != nil {
		return err
	}
	if err := m.s.writeTextElement(m.key, key); err != nil {
		return err
	}
	if err := m.s.writeTextElement(m.value, text); err != nil {
		return err
	}
	return m.s.w.EndElement(m.entry)
}

func (m *mapSerializer) BoolEntry(key string, v bool) error {
	return m.scalarEntry(key, strconv.FormatBool(v))
}

func (m *mapSerializer) ByteEntry(key string, v int8) error {
	return m.scalarEntry(key, formatInt(int64(v)))
}

func (m *mapSerializer) ShortEntry(key string, v int16) error {
	return m.scalarEntry(key, formatInt(int64(v)))
}

func (m *mapSerializer) IntEntry(key string, v int32) error {
	return m.scalarEntry(key, formatInt(int64(v)))
}

func (m *mapSerializer) LongEntry(key string, v int64) error {
	return m.scalarEntry(key, formatInt(v))
}

func (m *mapSerializer) FloatEntry(key string, v float32) error {
	return m.scalarEntry(key, formatFloat(float64(v), 32))
}

func (m *mapSerializer) DoubleEntry(key string, v float64) error {
	return m.scalarEntry(key, formatFloat(v, 64))
}

func (m *mapSerializer) StringEntry(key string, v string) error {
	return m.scalarEntry(key, v)
}

func (m *mapSerializer) ValueEntry(key string, v serde.Marshaler) error {
	if err := m.s.beginElement(m.entry); err != nil {
		return err
	}
	if err := m.s.writeTextElement(m.key, key); err != nil {
		return err
	}
	value := m.value
	m.s.pending = &value
	err := v.MarshalSerde(m.s)
	m.s.pending = nil
	if err != nil {
		return err
	}
	return m.s.w.EndElement(m.entry)
}

func (m *mapSerializer) ListEntry(key string, fn func(serde.ListSerializer) error) error {
	if err := m.s.beginElement(m.entry); err != nil {
		return err
	}
	if err := m.s.writeTextElement(m.key, key); err != nil {
		return err
	}
	if err := m.s.beginElement(m.value); err != nil {
		return err
	}
	inner := &listSerializer{s: m.s, item: Name{Local: "member"}}
	if err := fn(inner); err != nil {
		return err
	}
	if err := m.s.w.EndElement(m.value); err != nil {
		return err
	}
	return m.s.w.EndElement(m.entry)
}

func (m *mapSerializer) MapEntry(key string, fn func(serde.MapSerializer) error) error {
	if err := m.s.beginElement(m.entry); err != nil {
		return err
	}
	if err := m.s.writeTextElement(m.key, key); err != nil {
		return err
	}
	if err := m.s.beginElement(m.value); err != nil {
		return err
	}
	inner := &mapSerializer{
		s:     m.s,
		entry: Name{Local: "entry"},
		key:   Name{Local: "key"},
		value: Name{Local: "value"},
	}
	if err := fn(inner); err != nil {
		return err
	}
	if err := m.s.w.EndElement(m.value); err != nil {
		return err
	}
	return m.s.w.EndElement(m.entry)
}

func (m *mapSerializer) NullEntry(key string) error {
	if err := m.s.beginElement(m.entry); err != nil {
		return err
	}
	if err := m.s.writeTextElement(m.key, key); err != nil {
		return err
	}
	if err := m.s.writeEmptyElement(m.value); err != nil {
		return err
	}
	return m.s.w.EndElement(m.entry)
}

func (m *mapSerializer) Close() error {
	if !m.wrapped {
		return nil
	}
	m.wrapped = false
	return m.s.w.EndElement(m.wrapper)
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

func formatFloat(v float64, bits int) string {
	return strconv.FormatFloat(v, 'g', -1, bits)
}
