// Package bravia implements the local HTTP+JSON control protocol spoken
// by network-connected Sony televisions.
//
// Calls are HTTP POSTs to service endpoints under /sony with a JSON-RPC
// style body ({id, method, version, params}) and the pre-shared key in
// the X-Auth-PSK header. Success is any status < 400 with a JSON body
// carrying a result array; result[0] holds the method-specific payload.
//
// The package deliberately contains no retry or caching logic; it is a
// thin, honest transport used by the bridge package, which owns polling,
// throttling and failure policy.
package bravia
