package bravia

import "errors"

// Domain errors for the television control protocol.
// Use errors.Is() to distinguish transport from protocol failures.
var (
	// ErrTransport is returned when the HTTP call itself fails
	// (connection refused, reset, timeout). The television is likely
	// unreachable or asleep; callers typically retry on their own schedule.
	ErrTransport = errors.New("bravia: transport failure")

	// ErrProtocol is returned when the television answers but the answer
	// is unusable: HTTP status >= 400, a body that is not JSON, or a
	// JSON-RPC error member.
	ErrProtocol = errors.New("bravia: protocol error")
)
