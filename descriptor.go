// Copyright 2022 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package serde

// A Trait customizes how a descriptor is bound to a particular wire format.
// Trait types are defined by the format packages; the core protocol only
// carries them.
// Format packages look traits up by their concrete type, so at most one
// trait of a given type should be attached to a descriptor.
type Trait interface{}

// A FieldDescriptor describes one member of a structure: the shape of its
// value, its serial name on the wire, its position in the containing
// object's field table, and any format specific traits.
//
// Descriptors are plain data. They are constructed once, normally at
// package init time, and shared by every serialize and deserialize call for
// the lifetime of the process; nothing may mutate them after construction.
type FieldDescriptor struct {
	// Index is the position of the field in the containing object's field
	// table, or -1 for descriptors that do not belong to an object (for
	// example a document level list or map).
	Index int

	// Kind is the shape of the field's value.
	Kind Kind

	// Name is the serial name: the element or attribute name used on the
	// wire before any trait based renaming.
	Name string

	// Traits holds format specific binding customizations.
	Traits []Trait
}

// NewFieldDescriptor returns a descriptor that is not part of an object's
// field table. It is used for document level collections and as the input
// to ObjectBuilder.Field.
func NewFieldDescriptor(kind Kind, name string, traits ...Trait) *FieldDescriptor {
	return &FieldDescriptor{
		Index:  -1,
		Kind:   kind,
		Name:   name,
		Traits: traits,
	}
}

// An ObjectDescriptor describes a structure: its own serial name and traits
// (the embedded FieldDescriptor, which always has KindStruct) plus an
// ordered table of member descriptors.
type ObjectDescriptor struct {
	FieldDescriptor

	fields []*FieldDescriptor
}

// Fields returns the ordered field table. The returned slice is shared;
// callers must not modify it.
func (o *ObjectDescriptor) Fields() []*FieldDescriptor {
	return o.fields
}

// Len returns the number of fields in the table.
func (o *ObjectDescriptor) Len() int {
	return len(o.fields)
}

// An ObjectBuilder assembles an ObjectDescriptor, assigning each field its
// index in registration order.
type ObjectBuilder struct {
	obj *ObjectDescriptor
}

// BuildObject starts a new object descriptor with the given serial name and
// object level traits.
func BuildObject(name string, traits ...Trait) *ObjectBuilder {
	return &ObjectBuilder{
		obj: &ObjectDescriptor{
			FieldDescriptor: FieldDescriptor{
				Index:  -1,
				Kind:   KindStruct,
				Name:   name,
				Traits: traits,
			},
		},
	}
}

// Field registers a member and returns its descriptor with the next free
// index assigned. The returned descriptor is what generated code switches
// on after field index dispatch.
func (b *ObjectBuilder) Field(kind Kind, name string, traits ...Trait) *FieldDescriptor {
	f := &FieldDescriptor{
		Index:  len(b.obj.fields),
		Kind:   kind,
		Name:   name,
		Traits: traits,
	}
	b.obj.fields = append(b.obj.fields, f)
	return f
}

// Build finalizes the descriptor. The builder must not be used afterwards.
func (b *ObjectBuilder) Build() *ObjectDescriptor {
	obj := b.obj
	b.obj = nil
	return obj
}
