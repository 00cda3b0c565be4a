// Package service wires the catalog, the change feed and the signup
// operations together and implements the dependencies required by the
// HTTP API.
package service

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"

	eventqueue "github.com/okian/mergington/internal/adapters/mq/queue"
	workerpool "github.com/okian/mergington/internal/adapters/mq/worker"
	repository "github.com/okian/mergington/internal/adapters/repository"
	"github.com/okian/mergington/internal/domain/model"
	"github.com/okian/mergington/internal/domain/signup"
	"github.com/okian/mergington/pkg/logger"
	"github.com/okian/mergington/pkg/metrics"
)

// ErrNotStarted is returned by operations called before Start.
var ErrNotStarted = errors.New("service not started")

// Service implements the API dependencies for the activity signup system.
type Service struct {
	mu sync.RWMutex

	// Core components
	catalog    *repository.Catalog
	journal    *repository.Journal
	workerPool *workerpool.Pool
	signups    *signup.Service

	// Configuration
	seed            []model.Activity
	enforceCapacity bool
	workerCount     int
	queueSize       int
	journalSize     int

	started bool
	dropped atomic.Int64

	// feed is the live change queue, nil while stopped. Publish loads it
	// without taking mu so a signup never waits on Start or Stop.
	feed atomic.Pointer[eventqueue.InMemoryQueue]

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSeed replaces the built-in activity catalog.
func WithSeed(activities []model.Activity) Option {
	return func(s *Service) {
		if len(activities) > 0 {
			s.seed = activities
		}
	}
}

// WithEnforceCapacity toggles the max_participants check on signup.
func WithEnforceCapacity(enabled bool) Option {
	return func(s *Service) {
		s.enforceCapacity = enabled
	}
}

// WithWorkerCount sets the number of change feed workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the change queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithJournalSize sets how many recent changes are retained.
func WithJournalSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.journalSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		seed:            repository.DefaultActivities(),
		enforceCapacity: true,
		workerCount:     runtime.NumCPU(),
		queueSize:       4096,
		journalSize:     1024,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds the catalog from the seed and starts the change feed workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting signup service...")

	catalog, err := repository.NewCatalog(ctx, s.seed, repository.WithCapacityCheck(s.enforceCapacity))
	if err != nil {
		return err
	}
	s.catalog = catalog
	s.journal = repository.NewJournal(repository.WithJournalSize(s.journalSize))
	changes := eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))

	s.workerPool = workerpool.NewPool(s.workerCount, changes, s.journal)
	s.workerPool.Start(ctx)
	s.feed.Store(changes)

	s.signups = signup.New(s.catalog,
		signup.WithCapacityEnforcement(s.enforceCapacity),
		signup.WithPublisher(s),
		signup.WithLogger(s.logger.Named("signup")),
	)

	s.started = true
	s.logger.Info(ctx, "signup service started",
		logger.Int("activities", s.catalog.Len(ctx)),
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("journalSize", s.journalSize),
		logger.Bool("enforceCapacity", s.enforceCapacity),
	)
	return nil
}

// Stop closes the change queue and waits for the workers to drain it.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping signup service...")

	s.feed.Store(nil)
	if err := s.workerPool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "change feed did not drain", logger.Error(err))
	}

	s.started = false
	s.logger.Info(ctx, "signup service stopped", logger.Int("journaled", int(s.journal.Total())))
}

// Publish hands a roster change to the feed without blocking. A change that
// does not fit in the queue is dropped and counted; the roster mutation
// stands. Changes published while the feed is stopped are not counted.
func (s *Service) Publish(ctx context.Context, ch model.Change) {
	q := s.feed.Load()
	if q == nil {
		return
	}
	if q.Enqueue(ctx, ch) {
		return
	}
	if q.IsClosed() {
		s.logger.Debug(ctx, "change feed stopped, change not journaled",
			logger.String("change_id", ch.ID),
			logger.String("activity", ch.Activity))
		return
	}
	s.dropped.Add(1)
	metrics.RecordChangeDropped()
	s.logger.Warn(ctx, "roster change dropped",
		logger.String("change_id", ch.ID),
		logger.String("activity", ch.Activity),
		logger.String("email", ch.Email),
		logger.String("kind", string(ch.Kind)))
}

func (s *Service) ops() (*signup.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.signups, nil
}

// ListActivities returns every activity keyed by name.
func (s *Service) ListActivities(ctx context.Context) (map[string]model.Activity, error) {
	ops, err := s.ops()
	if err != nil {
		return nil, err
	}
	return ops.ListActivities(ctx)
}

// Activity returns one activity by name.
func (s *Service) Activity(ctx context.Context, name string) (model.Activity, error) {
	ops, err := s.ops()
	if err != nil {
		return model.Activity{}, err
	}
	return ops.Activity(ctx, name)
}

// SignUp adds email to the named activity.
func (s *Service) SignUp(ctx context.Context, name, email string) (signup.Result, error) {
	ops, err := s.ops()
	if err != nil {
		return signup.Result{}, err
	}
	return ops.SignUp(ctx, name, email)
}

// Unregister removes email from the named activity.
func (s *Service) Unregister(ctx context.Context, name, email string) (signup.Result, error) {
	ops, err := s.ops()
	if err != nil {
		return signup.Result{}, err
	}
	return ops.Unregister(ctx, name, email)
}

// RecentChanges returns up to limit journaled changes, newest first.
// Changes still in the queue are not visible yet. The journal stays
// readable after Stop.
func (s *Service) RecentChanges(ctx context.Context, limit int) ([]model.Change, error) {
	s.mu.RLock()
	journal := s.journal
	s.mu.RUnlock()
	if journal == nil {
		return nil, ErrNotStarted
	}
	return journal.Recent(ctx, limit)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":         s.started,
		"enforceCapacity": s.enforceCapacity,
		"workerCount":     s.workerCount,
		"queueSize":       s.queueSize,
		"journalSize":     s.journalSize,
		"droppedChanges":  s.dropped.Load(),
	}

	if s.started {
		queueLen := 0
		if q := s.feed.Load(); q != nil {
			queueLen = q.Len(ctx)
		}
		stats["queueLength"] = queueLen
		stats["activities"] = s.catalog.Len(ctx)
		stats["participants"] = s.catalog.Participants(ctx)

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateWorkerCount(s.workerCount)
		metrics.UpdateJournalSize(s.journal.Len())
	}
	if s.journal != nil {
		stats["journaled"] = s.journal.Len()
		stats["changesTotal"] = s.journal.Total()
	}

	return stats
}
