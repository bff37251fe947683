package app

import (
	"time"

	"github.com/passbet/arena/internal/adapters/assessor"
	"github.com/passbet/arena/internal/adapters/repository"
	"github.com/passbet/arena/internal/domain/inflight"
	"github.com/passbet/arena/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore injects the persistence layer. Defaults to the in-memory
// store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithAssessor injects the outcome assessor client.
func WithAssessor(a assessor.Assessor) Option {
	return func(s *Service) {
		if a != nil {
			s.assessor = a
		}
	}
}

// WithTestCaseGenerator injects the test-case generator used for
// challenges without pre-authored cases.
func WithTestCaseGenerator(g assessor.TestCaseGenerator) Option {
	return func(s *Service) {
		if g != nil {
			s.generator = g
		}
	}
}

// WithGuard injects the per-challenge settlement guard.
func WithGuard(g inflight.Guard) Option {
	return func(s *Service) {
		if g != nil {
			s.guard = g
		}
	}
}

// WithWorkerCount sets the number of settlement workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize bounds the settlement job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithSweepInterval sets how often the deadline sweeper runs.
func WithSweepInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.sweepInterval = interval
		}
	}
}

// WithAllowNegativeScore controls whether a proposer may wager more
// points than they currently hold.
func WithAllowNegativeScore(allow bool) Option {
	return func(s *Service) {
		s.allowNegativeScore = allow
	}
}

// WithClock swaps the time source; used by tests to settle past-deadline
// challenges deterministically.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
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
