// Copyright 2022 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package serde

// A Marshaler can write itself through a Serializer. Generated per-shape
// serialize functions satisfy this interface so that nested structures can
// be delegated to.
type Marshaler interface {
	MarshalSerde(s Serializer) error
}

// A ScalarSerializer writes single values at the current position in the
// output. On the XML format a scalar written inside a list becomes one item
// element; at the top level it becomes bare character data.
type ScalarSerializer interface {
	SerializeBool(v bool) error
	SerializeByte(v int8) error
	SerializeShort(v int16) error
	SerializeInt(v int32) error
	SerializeLong(v int64) error
	SerializeFloat(v float32) error
	SerializeDouble(v float64) error
	SerializeString(v string) error

	// SerializeNull writes an explicitly absent value (an empty element on
	// the XML format). It is how sparse collection entries are produced.
	SerializeNull() error
}

// A Serializer writes one payload. Instances are single use: create one,
// serialize a value through it, call Bytes, and discard it.
type Serializer interface {
	ScalarSerializer

	// SerializeStruct opens the container for a structure and returns the
	// serializer used to write its fields. Close must be called on the
	// result once all fields are written.
	SerializeStruct(d *ObjectDescriptor) (StructSerializer, error)

	// SerializeList opens a list bound by d and returns the serializer used
	// to write its items. Close must be called on the result.
	SerializeList(d *FieldDescriptor) (ListSerializer, error)

	// SerializeMap opens a map bound by d and returns the serializer used
	// to write its entries. Close must be called on the result.
	SerializeMap(d *FieldDescriptor) (MapSerializer, error)

	// Bytes finalizes the document and returns the accumulated payload.
	// It may be called more than once; later calls return the same bytes.
	Bytes() []byte
}

// A StructSerializer writes the fields of one structure in descriptor
// order.
//
// On formats where attributes share the container's opening tag (XML),
// every field carrying an attribute trait must be written before the first
// element valued field. This is a precondition on the caller, matching the
// order in which generated code emits fields; violating it surfaces as the
// writer's state error.
type StructSerializer interface {
	BoolField(d *FieldDescriptor, v bool) error
	ByteField(d *FieldDescriptor, v int8) error
	ShortField(d *FieldDescriptor, v int16) error
	IntField(d *FieldDescriptor, v int32) error
	LongField(d *FieldDescriptor, v int64) error
	FloatField(d *FieldDescriptor, v float32) error
	DoubleField(d *FieldDescriptor, v float64) error
	StringField(d *FieldDescriptor, v string) error

	// StructField writes a nested structure under the field's serial name.
	StructField(d *FieldDescriptor, v Marshaler) error

	// ListField writes a list valued field. The callback receives the open
	// list serializer; the field closes it when the callback returns.
	ListField(d *FieldDescriptor, fn func(ListSerializer) error) error

	// MapField writes a map valued field. The callback receives the open
	// map serializer; the field closes it when the callback returns.
	MapField(d *FieldDescriptor, fn func(MapSerializer) error) error

	// NullField writes an explicitly absent field value.
	NullField(d *FieldDescriptor) error

	// Close ends the structure's container.
	Close() error
}

// A ListSerializer writes list items. Scalar items are written with the
// embedded ScalarSerializer methods; structure items with SerializeValue.
type ListSerializer interface {
	ScalarSerializer

	// SerializeValue writes one structure valued item.
	SerializeValue(v Marshaler) error

	// Close ends the list.
	Close() error
}

// A MapSerializer writes map entries.
type MapSerializer interface {
	BoolEntry(key string, v bool) error
	ByteEntry(key string, v int8) error
	ShortEntry(key string, v int16) error
	IntEntry(key string, v int32) error
	LongEntry(key string, v int64) error
	FloatEntry(key string, v float32) error
	DoubleEntry(key string, v float64) error
	StringEntry(key string, v string) error

	// ValueEntry writes one entry whose value is a structure.
	ValueEntry(key string, v Marshaler) error

	// ListEntry writes one entry whose value is a list. The callback
	// receives the open list serializer for the entry's value.
	ListEntry(key string, fn func(ListSerializer) error) error

	// MapEntry writes one entry whose value is a nested map.
	MapEntry(key string, fn func(MapSerializer) error) error

	// NullEntry writes an entry with an explicitly absent value.
	NullEntry(key string) error

	// Close ends the map.
	Close() error
}
