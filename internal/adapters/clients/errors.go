// Package clients provides the instrumented HTTP client used to reach the
// remote quote endpoint and, from quotectl, the quote-sync API.
package clients

import "errors"

// Transport-level failures. Adapters translate these into domain errors.
var (
	// ErrCircuitOpen is returned without calling the endpoint while the circuit is open.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrMaxRetriesExceeded wraps the last transport error once every attempt has failed.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)
