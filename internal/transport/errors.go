package transport

import "errors"

// Sentinel errors for the transport package. Using sentinels instead of
// ad-hoc fmt.Errorf allows callers to match with errors.Is for reliable
// error handling.
var (
	// ErrTimeout is returned when a backend call exceeds the request timeout.
	ErrTimeout = errors.New("request timed out")

	// ErrUnexpectedFormat is returned when a 200 response carries neither
	// choices nor an error payload.
	ErrUnexpectedFormat = errors.New("unexpected response format")
)
