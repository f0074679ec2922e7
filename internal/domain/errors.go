package domain

import "errors"

// ErrUnauthenticated is returned when a store call requires a user session
// and none is configured.
var ErrUnauthenticated = errors.New("not authenticated")

// ErrNotFound is returned when a referenced record does not exist.
var ErrNotFound = errors.New("not found")
