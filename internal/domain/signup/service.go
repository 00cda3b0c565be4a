// Package signup implements the operations over the activity catalog:
// listing activities, signing a participant up and unregistering one.
//
// Every mutation runs as a single check-then-mutate step under the
// activity's lock, so the roster invariants (no duplicate email, no growth
// past capacity when enforced) hold under concurrent requests.
package signup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/mergington/internal/domain/model"
	"github.com/okian/mergington/internal/domain/roster"
	"github.com/okian/mergington/pkg/logger"
	"github.com/okian/mergington/pkg/metrics"
)

// Outcome labels recorded on the signup/unregister metrics.
const (
	outcomeOK       = "ok"
	outcomeNotFound = "not_found"
	outcomeConflict = "already_registered"
	outcomeMissing  = "not_registered"
	outcomeFull     = "full"
	outcomeInvalid  = "invalid_email"
	unknownActivity = "unknown"
)

// Catalog is the store the service reads and mutates.
type Catalog interface {
	Get(ctx context.Context, name string) (model.Activity, error)
	ListAll(ctx context.Context) (map[string]model.Activity, error)
	Update(ctx context.Context, name string, fn model.MutateFunc) (model.Activity, error)
}

// Publisher receives every successful roster change. Publish must not block.
type Publisher interface {
	Publish(ctx context.Context, ch model.Change)
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, model.Change) {}

// Result is returned by successful SignUp and Unregister calls.
type Result struct {
	Message  string
	Activity model.Activity
	Change   model.Change
}

// Service implements the signup operations.
type Service struct {
	catalog         Catalog
	publisher       Publisher
	enforceCapacity bool
	now             func() time.Time
	logger          logger.Logger
}

// New creates a Service over catalog. Capacity is enforced unless
// WithCapacityEnforcement(false) is given.
func New(catalog Catalog, opts ...Option) *Service {
	s := &Service{
		catalog:         catalog,
		publisher:       noopPublisher{},
		enforceCapacity: true,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("signup")
	}
	return s
}

// ListActivities returns every activity keyed by name, including rosters.
func (s *Service) ListActivities(ctx context.Context) (map[string]model.Activity, error) {
	all, err := s.catalog.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return all, nil
}

// Activity returns a single activity by exact name.
func (s *Service) Activity(ctx context.Context, name string) (model.Activity, error) {
	a, err := s.catalog.Get(ctx, name)
	if err != nil {
		return model.Activity{}, translate(err)
	}
	return a, nil
}

// SignUp appends email to the named activity's roster.
//
// Checks run in order: the activity exists (ErrActivityNotFound), email is
// not already on the roster (ErrAlreadyRegistered), and, when capacity is
// enforced, the roster is not full (ErrActivityFull). A failed check
// leaves the roster unchanged.
func (s *Service) SignUp(ctx context.Context, name, rawEmail string) (Result, error) {
	email, err := roster.NormalizeEmail(rawEmail)
	if err != nil {
		metrics.RecordSignup(unknownActivity, outcomeInvalid)
		return Result{}, err
	}

	after, err := s.catalog.Update(ctx, name, func(a *model.Activity) error {
		if roster.Contains(a.Participants, email) {
			return ErrAlreadyRegistered
		}
		if s.enforceCapacity && a.Full() {
			return ErrActivityFull
		}
		a.Participants, _ = roster.Add(a.Participants, email)
		return nil
	})
	if err != nil {
		err = translate(err)
		s.reject(ctx, "signup rejected", name, email, err)
		metrics.RecordSignup(activityLabel(name, err), outcomeFor(err))
		return Result{}, err
	}

	if len(after.Participants) > after.MaxParticipants {
		s.logger.Warn(ctx, "activity oversubscribed",
			logger.String("activity", name),
			logger.Int("participants", len(after.Participants)),
			logger.Int("capacity", after.MaxParticipants))
	}

	ch := s.record(ctx, model.ChangeSignup, after, email)
	metrics.RecordSignup(name, outcomeOK)
	s.logger.Info(ctx, "participant signed up",
		logger.String("activity", name),
		logger.String("email", email),
		logger.Int("participants", len(after.Participants)))

	return Result{
		Message:  fmt.Sprintf("Signed up %s for %s", email, name),
		Activity: after,
		Change:   ch,
	}, nil
}

// Unregister removes email from the named activity's roster, keeping the
// order of the remaining participants. It fails with ErrActivityNotFound
// or ErrNotRegistered.
func (s *Service) Unregister(ctx context.Context, name, rawEmail string) (Result, error) {
	email, err := roster.NormalizeEmail(rawEmail)
	if err != nil {
		metrics.RecordUnregister(unknownActivity, outcomeInvalid)
		return Result{}, err
	}

	after, err := s.catalog.Update(ctx, name, func(a *model.Activity) error {
		out, ok := roster.Remove(a.Participants, email)
		if !ok {
			return ErrNotRegistered
		}
		a.Participants = out
		return nil
	})
	if err != nil {
		err = translate(err)
		s.reject(ctx, "unregister rejected", name, email, err)
		metrics.RecordUnregister(activityLabel(name, err), outcomeFor(err))
		return Result{}, err
	}

	ch := s.record(ctx, model.ChangeUnregister, after, email)
	metrics.RecordUnregister(name, outcomeOK)
	s.logger.Info(ctx, "participant removed",
		logger.String("activity", name),
		logger.String("email", email),
		logger.Int("participants", len(after.Participants)))

	return Result{
		Message:  fmt.Sprintf("Removed %s from %s", email, name),
		Activity: after,
		Change:   ch,
	}, nil
}

func (s *Service) record(ctx context.Context, kind model.ChangeKind, a model.Activity, email string) model.Change {
	ch := model.Change{
		ID:         uuid.NewString(),
		Kind:       kind,
		Activity:   a.Name,
		Email:      email,
		RosterSize: len(a.Participants),
		Capacity:   a.MaxParticipants,
		At:         s.now().UTC(),
	}
	s.publisher.Publish(ctx, ch)
	return ch
}

func (s *Service) reject(ctx context.Context, msg, name, email string, err error) {
	s.logger.Debug(ctx, msg,
		logger.String("activity", name),
		logger.String("email", email),
		logger.Error(err))
}

// translate maps store errors onto this package's sentinels.
func translate(err error) error {
	if errors.Is(err, model.ErrActivityNotFound) {
		return fmt.Errorf("%w: %w", ErrActivityNotFound, err)
	}
	return err
}

func outcomeFor(err error) string {
	switch {
	case errors.Is(err, ErrActivityNotFound):
		return outcomeNotFound
	case errors.Is(err, ErrAlreadyRegistered):
		return outcomeConflict
	case errors.Is(err, ErrNotRegistered):
		return outcomeMissing
	case errors.Is(err, ErrActivityFull):
		return outcomeFull
	default:
		return "error"
	}
}

// activityLabel keeps caller-supplied names of unknown activities out of
// metric labels.
func activityLabel(name string, err error) string {
	if errors.Is(err, ErrActivityNotFound) {
		return unknownActivity
	}
	return name
}
