package graph

import (
	"errors"
	"fmt"
)

// Sentinel kinds for upstream call failures. Callers classify with errors.Is.
var (
	// ErrUpstream marks a request the upstream API rejected with a non-2xx,
	// non-429 status.
	ErrUpstream = errors.New("upstream rejected request")

	// ErrRateLimited marks a 429 that survived the retry budget.
	ErrRateLimited = errors.New("upstream rate limited")

	// ErrTransport marks a network-level failure before any status code.
	ErrTransport = errors.New("upstream transport failed")

	// ErrDecode marks a 2xx response whose body was not valid JSON.
	ErrDecode = errors.New("upstream response not decodable")
)

// APIError carries the status code and detail message surfaced to callers
// for any failed upstream call. It wraps one of the sentinel kinds above.
type APIError struct {
	StatusCode int
	Message    string
	kind       error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("graph: %s (status %d)", e.Message, e.StatusCode)
}

func (e *APIError) Unwrap() error {
	return e.kind
}

func newAPIError(status int, kind error, message string) *APIError {
	return &APIError{StatusCode: status, Message: message, kind: kind}
}
