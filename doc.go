// Copyright 2022 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

// Package serde implements a descriptor driven structural serialization
// protocol.
//
// The package defines the format agnostic half of the protocol: field and
// object descriptors that describe how the members of a structure are bound
// to a wire format, and the Serializer and Deserializer contracts that
// generated (or hand written) per-shape functions drive.
// Concrete wire formats live in subpackages; see the xml package for the
// streaming XML implementation.
//
// Descriptors are built once, normally in a package level var, and are safe
// for concurrent use by any number of serialize or deserialize calls.
// Serializer and Deserializer instances are not: each one is created for a
// single payload, driven to completion, and discarded.
package serde // import "mellium.im/serde"
