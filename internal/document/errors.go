package document

import "errors"

// Errors returned by document operations.
var (
	// ErrNoPath indicates an operation that requires a backing file was
	// attempted on a document without one.
	ErrNoPath = errors.New("document has no backing path")

	// ErrRangeInvalid indicates an edit range is out of order or out of bounds.
	ErrRangeInvalid = errors.New("invalid range")

	// ErrOffsetOutOfRange indicates an offset outside the document text.
	ErrOffsetOutOfRange = errors.New("offset out of range")

	// ErrClosed indicates the document has been closed.
	ErrClosed = errors.New("document is closed")
)
