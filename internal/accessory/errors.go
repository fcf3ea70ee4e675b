package accessory

import "errors"

// Directory errors.
var (
	// ErrNotFound is returned when no accessory exists for an identity.
	ErrNotFound = errors.New("accessory: not found")
)
