package config

import "errors"

// Configuration errors.
// Use errors.Is() to check for these in calling code.
var (
	// ErrMissingField is returned when a required field is absent.
	ErrMissingField = errors.New("config: required field missing")

	// ErrInvalidValue is returned when a field holds an out-of-range value.
	ErrInvalidValue = errors.New("config: invalid value")

	// ErrNoDevices is returned when no televisions are configured.
	ErrNoDevices = errors.New("config: no devices configured")
)
