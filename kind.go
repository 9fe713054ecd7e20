// Copyright 2022 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package serde

// Kind identifies the shape of the value a descriptor binds to the wire.
type Kind uint8

// The set of value shapes understood by the protocol.
const (
	KindUnit Kind = iota
	KindBoolean
	KindByte
	KindShort
	KindInteger
	KindLong
	KindFloat
	KindDouble
	KindString
	KindBlob
	KindTimestamp
	KindEnum
	KindStruct
	KindList
	KindMap
)

// String satisfies fmt.Stringer for diagnostics.
func (k Kind) String() string {
	switch k {
	case KindUnit:
		return "Unit"
	case KindBoolean:
		return "Boolean"
	case KindByte:
		return "Byte"
	case KindShort:
		return "Short"
	case KindInteger:
		return "Integer"
	case KindLong:
		return "Long"
	case KindFloat:
		return "Float"
	case KindDouble:
		return "Double"
	case KindString:
		return "String"
	case KindBlob:
		return "Blob"
	case KindTimestamp:
		return "Timestamp"
	case KindEnum:
		return "Enum"
	case KindStruct:
		return "Struct"
	case KindList:
		return "List"
	case KindMap:
		return "Map"
	}
	return "Unknown"
}
