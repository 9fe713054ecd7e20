// Copyright 2022 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package xml

// A MalformedDocumentError is returned by the reader when the payload is
// not a well formed XML document: a syntax error, unbalanced or mismatched
// tags, content outside the root element, an undeclared namespace prefix,
// or a document that ends before its root element closes. The error is
// unrecoverable; every later read on the same reader returns it again.
type MalformedDocumentError struct {
	// Msg describes the problem when it was detected by this package.
	Msg string

	// Err is the underlying decoder error, if any.
	Err error
}

// Error satisfies the error interface.
func (e *MalformedDocumentError) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return "xml: malformed document: " + e.Msg + ": " + e.Err.Error()
	case e.Err != nil:
		return "xml: malformed document: " + e.Err.Error()
	}
	return "xml: malformed document: " + e.Msg
}

// Unwrap returns the underlying decoder error, if any.
func (e *MalformedDocumentError) Unwrap() error {
	return e.Err
}

// A WriterStateError is returned when the writer API is misused: an
// attribute written after the opening tag was closed, an end tag that does
// not match the open element, or writes after the document was ended.
type WriterStateError struct {
	// Msg describes the misuse.
	Msg string
}

// Error satisfies the error interface.
func (e *WriterStateError) Error() string {
	return "xml: invalid writer state: " + e.Msg
}
