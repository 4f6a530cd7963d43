package session

import "errors"

// Sentinel errors for the session package. Using sentinels instead of
// ad-hoc fmt.Errorf allows callers to match with errors.Is for reliable
// error handling.
var (
	// ErrNoSession is returned when no session id was given and no
	// current-session marker exists.
	ErrNoSession = errors.New("no active session")

	// ErrNotFound is returned when a session id does not correspond to an
	// existing session directory.
	ErrNotFound = errors.New("session not found")
)
