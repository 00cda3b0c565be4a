package model

import "errors"

// ErrActivityNotFound is returned by catalog implementations when no
// activity has the requested name.
var ErrActivityNotFound = errors.New("activity not found")
