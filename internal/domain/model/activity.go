// Package model contains domain models passed between layers.
package model

// Activity is one extracurricular offering and its current roster.
// Participants are kept in signup order.
type Activity struct {
	Name            string   `json:"name" koanf:"name"`
	Description     string   `json:"description" koanf:"description"`
	Schedule        string   `json:"schedule" koanf:"schedule"`
	MaxParticipants int      `json:"max_participants" koanf:"max_participants"`
	Participants    []string `json:"participants" koanf:"participants"`
}

// MutateFunc inspects and changes one activity while the catalog holds its
// lock. Returning an error leaves the stored activity untouched.
type MutateFunc func(a *Activity) error

// Clone returns a deep copy so callers can hold it without sharing the roster slice.
func (a Activity) Clone() Activity {
	out := a
	out.Participants = make([]string, len(a.Participants))
	copy(out.Participants, a.Participants)
	return out
}

// SpotsLeft reports remaining capacity. It is negative when oversubscribed.
func (a Activity) SpotsLeft() int {
	return a.MaxParticipants - len(a.Participants)
}

// Full reports whether the roster has reached capacity.
func (a Activity) Full() bool {
	return len(a.Participants) >= a.MaxParticipants
}
