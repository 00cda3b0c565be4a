// Package loadcheck drives concurrent signups against a running service and
// verifies the roster invariants hold afterwards.
package loadcheck

import (
	"time"

	"github.com/okian/mergington/internal/domain/model"
)

// Config holds configuration for a load check run.
type Config struct {
	BaseURL    string        // Base URL of the service
	Activity   string        // Activity to sign students up for
	Signups    int           // Distinct students to sign up
	Duplicates int           // Extra attempts for one already-submitted email
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout

	// AllowOverCapacity accepts rosters longer than max_participants, for
	// services running with capacity enforcement off.
	AllowOverCapacity bool
	Verbose           bool
}

// Activity is the record returned by the activities routes.
type Activity = model.Activity

// Outcome of a single signup attempt.
type Outcome struct {
	Email  string
	Status int
	Code   string
}

// Stats holds run statistics.
type Stats struct {
	Attempts      int
	Accepted      int
	Rejected      map[string]int // error code -> count
	Failed        int            // transport errors
	RosterBefore  int
	RosterAfter   int
	Capacity      int
	Unregistered  int
	StartTime     time.Time
	EndTime       time.Time
	Duration      time.Duration
	AcceptedEmail []string
}
