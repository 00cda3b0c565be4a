package repository

import (
	"context"
	"sync"

	"github.com/okian/mergington/internal/domain/model"
	"github.com/okian/mergington/pkg/metrics"
)

const defaultJournalSize = 1024

// Journal keeps the most recent roster changes in a fixed-size ring.
type Journal struct {
	mu    sync.RWMutex
	buf   []model.Change
	next  int // slot for the next append
	count int // filled slots, <= size
	total uint64
	size  int
}

// NewJournal creates an empty journal.
func NewJournal(opts ...JournalOption) *Journal {
	j := &Journal{size: defaultJournalSize}
	for _, opt := range opts {
		opt(j)
	}
	j.buf = make([]model.Change, j.size)
	return j
}

// Append records ch, evicting the oldest change when full.
func (j *Journal) Append(_ context.Context, ch model.Change) error {
	j.mu.Lock()
	j.buf[j.next] = ch
	j.next = (j.next + 1) % j.size
	if j.count < j.size {
		j.count++
	}
	j.total++
	n := j.count
	j.mu.Unlock()

	metrics.UpdateJournalSize(n)
	return nil
}

// Recent returns up to n changes, newest first.
func (j *Journal) Recent(_ context.Context, n int) ([]model.Change, error) {
	if n <= 0 {
		return nil, ErrInvalidLimit
	}

	j.mu.RLock()
	defer j.mu.RUnlock()

	if n > j.count {
		n = j.count
	}
	out := make([]model.Change, 0, n)
	for i := 1; i <= n; i++ {
		idx := (j.next - i + j.size) % j.size
		out = append(out, j.buf[idx])
	}
	return out, nil
}

// Len returns the number of retained changes.
func (j *Journal) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.count
}

// Total returns how many changes were ever appended.
func (j *Journal) Total() uint64 {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.total
}
