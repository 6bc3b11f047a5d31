package view

import "errors"

// Errors returned by view construction.
var (
	// ErrNilDocument indicates Open was called without both documents.
	ErrNilDocument = errors.New("nil document")

	// ErrNilWorkspace indicates Open was called without a workspace.
	ErrNilWorkspace = errors.New("nil workspace")
)
