package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/okian/mergington/internal/domain/model"
	"github.com/okian/mergington/internal/domain/roster"
	"github.com/okian/mergington/pkg/metrics"
)

// entry guards a single activity. Each activity has its own lock so
// signups to different activities never contend.
type entry struct {
	mu       sync.Mutex
	activity model.Activity
}

// Catalog is the in-memory Store. The name -> entry map is built once in
// NewCatalog and never written afterwards, so lookups take no lock.
type Catalog struct {
	entries map[string]*entry
	names   []string // seed order

	checkCapacity bool
}

var _ Store = (*Catalog)(nil)

// NewCatalog validates seed and builds a catalog from it.
func NewCatalog(_ context.Context, seed []model.Activity, opts ...CatalogOption) (*Catalog, error) {
	c := &Catalog{
		entries:       make(map[string]*entry, len(seed)),
		names:         make([]string, 0, len(seed)),
		checkCapacity: true,
	}
	for _, opt := range opts {
		opt(c)
	}

	for i := range seed {
		a := seed[i].Clone()
		if err := c.validate(a); err != nil {
			return nil, err
		}
		c.entries[a.Name] = &entry{activity: a}
		c.names = append(c.names, a.Name)

		metrics.UpdateRosterSize(a.Name, len(a.Participants))
		metrics.UpdateRosterCapacity(a.Name, a.MaxParticipants)
	}
	metrics.UpdateActivityCount(len(c.names))
	return c, nil
}

func (c *Catalog) validate(a model.Activity) error {
	switch {
	case strings.TrimSpace(a.Name) == "":
		return fmt.Errorf("%w: activity name must not be empty", ErrInvalidSeed)
	case a.MaxParticipants <= 0:
		return fmt.Errorf("%w: %q: max_participants must be positive", ErrInvalidSeed, a.Name)
	}
	if _, exists := c.entries[a.Name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateActivity, a.Name)
	}
	if dups := roster.Duplicates(a.Participants); len(dups) > 0 {
		return fmt.Errorf("%w: %q: duplicate participants %v", ErrInvalidSeed, a.Name, dups)
	}
	if bad := roster.Invalid(a.Participants); len(bad) > 0 {
		return fmt.Errorf("%w: %q: participants must be bare email addresses %q", ErrInvalidSeed, a.Name, bad)
	}
	if c.checkCapacity && len(a.Participants) > a.MaxParticipants {
		return fmt.Errorf("%w: %q: %d participants exceed capacity %d",
			ErrInvalidSeed, a.Name, len(a.Participants), a.MaxParticipants)
	}
	return nil
}

// Get returns a copy of the named activity.
func (c *Catalog) Get(_ context.Context, name string) (model.Activity, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	e, ok := c.entries[name]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.Activity{}, fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.activity.Clone(), nil
}

// ListAll returns a copy of every activity. Each activity is copied under
// its own lock; the map as a whole is not a single atomic snapshot.
func (c *Catalog) ListAll(_ context.Context) (map[string]model.Activity, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	out := make(map[string]model.Activity, len(c.entries))
	for name, e := range c.entries {
		e.mu.Lock()
		out[name] = e.activity.Clone()
		e.mu.Unlock()
	}
	return out, nil
}

// Names returns activity names in seed order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Update applies fn to a working copy of the activity while holding its
// lock, and stores the copy only if fn succeeds.
func (c *Catalog) Update(_ context.Context, name string, fn MutateFunc) (model.Activity, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	e, ok := c.entries[name]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.Activity{}, fmt.Errorf("%q: %w", name, ErrNotFound)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	work := e.activity.Clone()
	if err := fn(&work); err != nil {
		return e.activity.Clone(), err
	}
	// Activity identity and capacity are fixed after seeding.
	work.Name = e.activity.Name
	work.MaxParticipants = e.activity.MaxParticipants
	e.activity = work

	metrics.UpdateRosterSize(name, len(work.Participants))
	return work.Clone(), nil
}

// Len returns the number of activities.
func (c *Catalog) Len(_ context.Context) int {
	return len(c.entries)
}

// Participants returns the total roster size across all activities.
func (c *Catalog) Participants(_ context.Context) int {
	total := 0
	for _, e := range c.entries {
		e.mu.Lock()
		total += len(e.activity.Participants)
		e.mu.Unlock()
	}
	return total
}
