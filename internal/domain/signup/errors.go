package signup

import (
	"errors"

	"github.com/okian/mergington/internal/domain/roster"
)

// Sentinel kinds for signup errors. Callers match them with errors.Is.
var (
	ErrActivityNotFound  = errors.New("activity not found")
	ErrAlreadyRegistered = errors.New("participant already signed up")
	ErrNotRegistered     = errors.New("participant not registered")
	ErrActivityFull      = errors.New("activity is full")
	ErrInvalidEmail      = roster.ErrInvalidEmail
)
