// Copyright 2022 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package serde

// UnknownField is returned by FieldIterator.NextField when the next member
// in the payload matches no descriptor in the object's field table. The
// caller is expected to call SkipValue and continue.
const UnknownField = -1

// An Unmarshaler can read itself from a Deserializer. Generated per-shape
// deserialize functions satisfy this interface.
type Unmarshaler interface {
	UnmarshalSerde(d Deserializer) error
}

// A ScalarDeserializer extracts single values. Each call consumes exactly
// one value from the payload; on the XML format that is one element's
// subtree or one pending attribute.
//
// Extraction parses the value's trimmed text content. Empty or whitespace
// only content for any non string extraction, fractional text for the
// integral extractions, and any other conversion failure fail with a
// *DeserializationError. Callers that need to tolerate explicitly empty
// values must probe with NextHasValue (where available) and call Null
// instead of a typed extraction.
type ScalarDeserializer interface {
	Bool() (bool, error)
	Byte() (int8, error)
	Short() (int16, error)
	Int() (int32, error)
	Long() (int64, error)
	Float() (float32, error)
	Double() (float64, error)
	String() (string, error)

	// Null consumes an explicitly absent value.
	Null() error
}

// A Deserializer reads one payload. Instances are single use and must not
// be shared across concurrent operations.
type Deserializer interface {
	// DeserializeStruct enters the container for a structure and returns
	// the iterator used to dispatch its fields.
	DeserializeStruct(d *ObjectDescriptor) (FieldIterator, error)

	// DeserializeList enters a list bound by d and returns the iterator
	// used to read its items.
	DeserializeList(d *FieldDescriptor) (ElementIterator, error)

	// DeserializeMap enters a map bound by d and returns the iterator used
	// to read its entries.
	DeserializeMap(d *FieldDescriptor) (EntryIterator, error)
}

// A FieldIterator dispatches the members of one structure by field index so
// that callers can switch on the index and invoke the precisely typed
// extraction.
type FieldIterator interface {
	ScalarDeserializer

	// NextField reports the index of the next recognized member, or
	// UnknownField if the next member matches no descriptor (the caller
	// must then call SkipValue). ok is false once the structure's container
	// has been fully consumed.
	NextField() (index int, ok bool, err error)

	// SkipValue discards the next value, including its entire subtree when
	// it is a nested structure or collection.
	SkipValue() error
}

// An ElementIterator reads list items in order.
type ElementIterator interface {
	ScalarDeserializer

	// HasNext reports whether another item remains in the list.
	HasNext() (bool, error)

	// NextHasValue reports whether the next item carries a value. When it
	// reports false the caller must consume the item with Null rather than
	// a typed extraction.
	NextHasValue() (bool, error)
}

// An EntryIterator reads map entries in order.
type EntryIterator interface {
	ScalarDeserializer

	// HasNext reports whether another entry remains in the map.
	HasNext() (bool, error)

	// Key reads the next entry's key. It must be called before the entry's
	// value is extracted.
	Key() (string, error)

	// NextHasValue reports whether the current entry carries a value. When
	// it reports false the caller must consume the value with Null rather
	// than a typed extraction.
	NextHasValue() (bool, error)
}
