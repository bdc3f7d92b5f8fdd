package api

import "errors"

// Sentinel errors returned by the client. ErrUnauthorized is special: it
// must force a session termination upstream instead of being retried.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
)
