package diff

import "errors"

// Errors returned by diff operations.
var (
	// ErrNilSnapshot indicates a nil document snapshot was passed to Compute.
	ErrNilSnapshot = errors.New("nil document snapshot")
)
