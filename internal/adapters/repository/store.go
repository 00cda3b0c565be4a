// Package repository holds the in-memory activity catalog, its seed data
// and the roster change journal.
package repository

import (
	"context"

	"github.com/okian/mergington/internal/domain/model"
)

// MutateFunc is the catalog's update callback.
type MutateFunc = model.MutateFunc

// Store provides read/write access to the activity catalog.
type Store interface {
	// Get returns a copy of the activity with exactly this name.
	// Returns ErrNotFound if no such activity exists.
	Get(ctx context.Context, name string) (model.Activity, error)

	// ListAll returns a snapshot of every activity keyed by name.
	ListAll(ctx context.Context) (map[string]model.Activity, error)

	// Update runs fn under the activity's lock and stores the result.
	// It returns a copy of the activity after fn ran.
	Update(ctx context.Context, name string, fn MutateFunc) (model.Activity, error)

	// Len returns the number of activities in the catalog.
	Len(ctx context.Context) int
}
