package loadcheck

import (
	"errors"
	"fmt"

	"github.com/okian/mergington/internal/domain/roster"
)

// Verification failures.
var (
	ErrDuplicateParticipant = errors.New("roster contains a duplicate participant")
	ErrOverCapacity         = errors.New("roster exceeds max_participants")
	ErrMissingParticipant   = errors.New("accepted signup missing from roster")
	ErrRosterMismatch       = errors.New("roster size does not match accepted signups")
	ErrNotRestored          = errors.New("roster not restored")
)

// verifyRoster checks the roster after the signup burst.
func verifyRoster(before, after Activity, accepted []string, allowOverCapacity bool) error {
	var errs []error

	if dups := roster.Duplicates(after.Participants); len(dups) > 0 {
		errs = append(errs, fmt.Errorf("%w: %v", ErrDuplicateParticipant, dups))
	}
	if !allowOverCapacity && len(after.Participants) > after.MaxParticipants {
		errs = append(errs, fmt.Errorf("%w: %d > %d", ErrOverCapacity, len(after.Participants), after.MaxParticipants))
	}
	for _, email := range accepted {
		if !roster.Contains(after.Participants, email) {
			errs = append(errs, fmt.Errorf("%w: %s", ErrMissingParticipant, email))
		}
	}
	if got, want := len(after.Participants), len(before.Participants)+len(accepted); got != want {
		errs = append(errs, fmt.Errorf("%w: have %d, want %d", ErrRosterMismatch, got, want))
	}
	return errors.Join(errs...)
}

// verifyRestored checks the roster matches its state before the run.
func verifyRestored(before, now Activity) error {
	if len(before.Participants) != len(now.Participants) {
		return fmt.Errorf("%w: %v != %v", ErrNotRestored, now.Participants, before.Participants)
	}
	for i := range before.Participants {
		if before.Participants[i] != now.Participants[i] {
			return fmt.Errorf("%w: %v != %v", ErrNotRestored, now.Participants, before.Participants)
		}
	}
	return nil
}
