// Copyright 2022 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

// Package xml implements the streaming XML wire format for the serde
// protocol.
//
// The package has three layers. At the bottom, StreamReader turns a byte
// payload into a forward only sequence of tokens with one token lookahead
// and subtree skip, and StreamWriter emits well formed XML from start, end,
// attribute, and text calls. On top of those, Serializer and Deserializer
// realize the structural protocol from the parent package, including
// wrapped and flattened collections, attribute bound fields, and namespace
// traits. Node is a small tree convenience for callers that want a document
// in memory rather than a token stream.
//
// Payloads are complete, in memory documents: the reader does not accept
// streamed chunks and the writer accumulates everything it is given until
// Bytes is called. Reader, writer, serializer, and deserializer instances
// are all single use and must not be shared across goroutines.
package xml // import "mellium.im/serde/xml"
