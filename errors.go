// Copyright 2022 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package serde

// A DeserializationError is returned when payload content cannot be
// converted to the type a descriptor declares, or when the payload's
// structure does not match the protocol the caller is driving. It is
// unrecoverable for the call that produced it; the partially built value
// must be discarded.
type DeserializationError struct {
	// Msg describes the mismatch.
	Msg string

	// Err is the underlying cause, if any.
	Err error
}

// Error satisfies the error interface.
func (e *DeserializationError) Error() string {
	msg := "serde: " + e.Msg
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause of the error, if any.
func (e *DeserializationError) Unwrap() error {
	return e.Err
}

// A SerializationError is returned when a value cannot be represented on
// the wire format being written.
type SerializationError struct {
	// Msg describes the failure.
	Msg string

	// Err is the underlying cause, if any.
	Err error
}

// Error satisfies the error interface.
func (e *SerializationError) Error() string {
	msg := "serde: " + e.Msg
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause of the error, if any.
func (e *SerializationError) Unwrap() error {
	return e.Err
}
