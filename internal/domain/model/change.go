package model

import "time"

// ChangeKind names the roster transition recorded by a Change.
type ChangeKind string

// Roster transitions.
const (
	ChangeSignup     ChangeKind = "signup"
	ChangeUnregister ChangeKind = "unregister"
)

// Change records one successful roster mutation.
type Change struct {
	ID         string     `json:"id"`
	Kind       ChangeKind `json:"kind"`
	Activity   string     `json:"activity"`
	Email      string     `json:"email"`
	RosterSize int        `json:"roster_size"` // size after the mutation
	Capacity   int        `json:"capacity"`
	At         time.Time  `json:"at"`
}
