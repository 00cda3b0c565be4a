package api

import (
	"errors"
	"net/http"

	"github.com/okian/mergington/internal/adapters/repository"
	"github.com/okian/mergington/internal/domain/signup"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrInvalidLimit = errors.New("limit must be a positive integer")
)

type errorMapping struct {
	target error
	status int
	code   string
	detail string
}

// errorTable is checked in order; the first match wins.
var errorTable = []errorMapping{
	{signup.ErrInvalidEmail, http.StatusBadRequest, "invalid_email", ""},
	{signup.ErrActivityNotFound, http.StatusNotFound, "activity_not_found", "Activity not found"},
	{signup.ErrAlreadyRegistered, http.StatusBadRequest, "already_registered", "Student is already signed up"},
	{signup.ErrNotRegistered, http.StatusNotFound, "not_registered", "Student is not signed up for this activity"},
	{signup.ErrActivityFull, http.StatusBadRequest, "activity_full", "Activity is full"},
	{ErrInvalidLimit, http.StatusBadRequest, "invalid_limit", ""},
	{repository.ErrInvalidLimit, http.StatusBadRequest, "invalid_limit", ""},
	{ErrBadRequest, http.StatusBadRequest, "bad_request", ""},
}

// statusFor maps an error onto an HTTP status, an error code and the detail
// shown to the client. Unknown errors are internal and their text is not
// exposed.
func statusFor(err error) (int, string, error) {
	for _, m := range errorTable {
		if !errors.Is(err, m.target) {
			continue
		}
		if m.detail != "" {
			return m.status, m.code, errors.New(m.detail)
		}
		return m.status, m.code, err
	}
	return http.StatusInternalServerError, "internal_error", nil
}
