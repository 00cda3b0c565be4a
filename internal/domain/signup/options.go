package signup

import (
	"time"

	"github.com/okian/mergington/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithCapacityEnforcement makes SignUp reject a full activity with
// ErrActivityFull. When disabled, rosters may grow past capacity.
func WithCapacityEnforcement(enabled bool) Option {
	return func(s *Service) {
		s.enforceCapacity = enabled
	}
}

// WithPublisher sets where successful roster changes are sent.
func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
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

// WithClock overrides the time source used to stamp changes.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
