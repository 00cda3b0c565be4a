package roster

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
)

// ErrInvalidEmail is returned when a participant identifier is not a bare
// email address.
var ErrInvalidEmail = errors.New("invalid email")

// NormalizeEmail trims raw and checks it is a bare address such as
// "emma@mergington.edu". Display-name forms are rejected.
func NormalizeEmail(raw string) (string, error) {
	email := strings.TrimSpace(raw)
	if email == "" {
		return "", fmt.Errorf("%w: email is required", ErrInvalidEmail)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}
	return email, nil
}

// Invalid returns the entries of list that are not already normalized
// email addresses, in list order.
func Invalid(list []string) []string {
	var bad []string
	for _, p := range list {
		if norm, err := NormalizeEmail(p); err != nil || norm != p {
			bad = append(bad, p)
		}
	}
	return bad
}
