// Copyright 2022 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package xml

import (
	"mellium.im/serde"
)

// AttributeTrait binds a field to an XML attribute on its container's
// opening tag instead of a child element. Name overrides the attribute's
// local name; when empty the field's serial name is used.
type AttributeTrait struct {
	Name string
}

// NamespaceTrait places an element or attribute in a namespace. Prefix is
// a hint for serialization; deserialization matches on the URI alone.
type NamespaceTrait struct {
	URI    string
	Prefix string
}

// FlattenedTrait marks a list or map field as flattened: its items or
// entries are written as repeated siblings named after the field itself,
// with no wrapper element.
type FlattenedTrait struct{}

// CollectionNameTrait overrides the item element name of a wrapped list.
// The default is "member".
type CollectionNameTrait struct {
	Element string
}

// MapNameTrait overrides the entry, key, and value element names of a map.
// Empty members keep the defaults "entry", "key", and "value".
type MapNameTrait struct {
	Entry string
	Key   string
	Value string
}

func attributeTrait(d *serde.FieldDescriptor) (AttributeTrait, bool) {
	for _, t := range d.Traits {
		if a, ok := t.(AttributeTrait); ok {
			return a, true
		}
	}
	return AttributeTrait{}, false
}

func namespaceTrait(d *serde.FieldDescriptor) (NamespaceTrait, bool) {
	for _, t := range d.Traits {
		if n, ok := t.(NamespaceTrait); ok {
			return n, true
		}
	}
	return NamespaceTrait{}, false
}

func flattened(d *serde.FieldDescriptor) bool {
	for _, t := range d.Traits {
		if _, ok := t.(FlattenedTrait); ok {
			return true
		}
	}
	return false
}

// memberName returns the item element name of a wrapped list bound by d.
func memberName(d *serde.FieldDescriptor) string {
	for _, t := range d.Traits {
		if c, ok := t.(CollectionNameTrait); ok && c.Element != "" {
			return c.Element
		}
	}
	return "member"
}

func mapNames(d *serde.FieldDescriptor) (entry, key, value string) {
	entry, key, value = "entry", "key", "value"
	for _, t := range d.Traits {
		if m, ok := t.(MapNameTrait); ok {
			if m.Entry != "" {
				entry = m.Entry
			}
			if m.Key != "" {
				key = m.Key
			}
			if m.Value != "" {
				value = m.Value
			}
		}
	}
	return entry, key, value
}

// elementName returns the name the field's element is written and matched
// under, with the namespace trait applied.
func elementName(d *serde.FieldDescriptor) Name {
	n := Name{Local: d.Name}
	if ns, ok := namespaceTrait(d); ok {
		n.Space = ns.URI
		n.Prefix = ns.Prefix
	}
	return n
}

// attrName returns the name the field's attribute is written and matched
// under.
func attrName(d *serde.FieldDescriptor) Name {
	a, _ := attributeTrait(d)
	n := Name{Local: d.Name}
	if a.Name != "" {
		n.Local = a.Name
	}
	if ns, ok := namespaceTrait(d); ok {
		n.Space = ns.URI
		n.Prefix = ns.Prefix
	}
	return n
}
