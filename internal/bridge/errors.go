package bridge

import "errors"

// Domain errors for the bridge package.
var (
	// ErrChannelNotFound is returned by the resolver when a channel number
	// has no entry in the current channel map. This is a reportable but
	// non-fatal condition - the usual cause is a favourites/source
	// mismatch, not a failure.
	ErrChannelNotFound = errors.New("bridge: channel not found in source list")

	// ErrMissingName is returned when a configured device has no name.
	ErrMissingName = errors.New("bridge: device name is required")

	// ErrMissingIP is returned when a configured device has no ip.
	ErrMissingIP = errors.New("bridge: device ip is required")

	// ErrAlreadyStarted is returned when Start is called twice.
	ErrAlreadyStarted = errors.New("bridge: controller already started")
)
