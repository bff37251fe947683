// Package app provides the settlement engine and the inbound operations
// exposed to the presentation layer.
package app

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/passbet/arena/internal/adapters/assessor"
	"github.com/passbet/arena/internal/adapters/mq/queue"
	"github.com/passbet/arena/internal/adapters/mq/worker"
	"github.com/passbet/arena/internal/adapters/repository"
	"github.com/passbet/arena/internal/domain/inflight"
	"github.com/passbet/arena/internal/domain/model"
	"github.com/passbet/arena/pkg/logger"
	"github.com/passbet/arena/pkg/metrics"
)

// Service implements the challenge lifecycle and wagering settlement
// engine. All mutations of scores, prediction outcomes and bet statuses
// flow through it.
type Service struct {
	mu sync.Mutex

	// Core components
	store     repository.Store
	assessor  assessor.Assessor
	generator assessor.TestCaseGenerator
	guard     inflight.Guard
	jobs      queue.Queue
	pool      *worker.Pool

	// Configuration
	workerCount        int
	queueSize          int
	sweepInterval      time.Duration
	allowNegativeScore bool

	// now is the clock; swappable in tests.
	now func() time.Time

	// State
	started     bool
	stopSweeper func()

	logger logger.Logger
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:        runtime.NumCPU() * 2,
		queueSize:          1024,
		sweepInterval:      time.Minute,
		allowNegativeScore: true,
		now:                time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the service components and background workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("engine")
	}
	if s.store == nil {
		s.store = repository.NewMemory(ctx)
	}
	if s.guard == nil {
		s.guard = inflight.NewInMemoryGuard()
	}
	if s.jobs == nil {
		s.jobs = queue.NewInMemoryQueue(queue.WithBufferSize(s.queueSize))
	}

	s.pool = worker.NewPool(s.workerCount, s.jobs, s)
	s.pool.Start(ctx)

	if err := s.startSweeper(ctx); err != nil {
		return fmt.Errorf("start sweeper: %w", err)
	}

	s.started = true
	s.logger.Info(ctx, "settlement engine started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Bool("allowNegativeScore", s.allowNegativeScore),
	)
	return nil
}

// Stop gracefully shuts down the background workers.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	if s.stopSweeper != nil {
		s.stopSweeper()
	}
	if q, ok := s.jobs.(*queue.InMemoryQueue); ok {
		_ = q.Close()
	}
	if s.pool != nil {
		s.pool.Stop()
	}

	s.started = false
	s.logger.Info(context.Background(), "settlement engine stopped")
}

// CreateChallenge stores a new challenge in the open state.
func (s *Service) CreateChallenge(ctx context.Context, c model.Challenge) (model.Challenge, error) {
	if c.Title == "" || c.Points <= 0 || c.Deadline.IsZero() {
		return model.Challenge{}, fmt.Errorf("%w: title, points and deadline are required", ErrInvalidChallenge)
	}
	c.ID = uuid.NewString()
	c.Status = model.StatusOpen
	c.CreatedAt = s.now()

	if err := s.store.CreateChallenge(ctx, &c); err != nil {
		return model.Challenge{}, err
	}
	s.logger.Info(ctx, "challenge created",
		logger.String("challengeID", c.ID),
		logger.String("title", c.Title),
		logger.Int("points", c.Points),
	)
	return c, nil
}

// RegisterUser stores a new user identity with a zero score.
func (s *Service) RegisterUser(ctx context.Context, name string) (model.User, error) {
	u := model.User{
		ID:       uuid.NewString(),
		Name:     name,
		JoinedAt: s.now(),
	}
	if err := s.store.CreateUser(ctx, &u); err != nil {
		return model.User{}, err
	}
	return u, nil
}

// SubmitPrediction records a user's solution and self-assessed pass/fail
// guess for an open challenge.
func (s *Service) SubmitPrediction(ctx context.Context, userID, challengeID, code string, willPass bool) (model.Prediction, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return model.Prediction{}, err
	}
	c, err := s.store.GetChallenge(ctx, challengeID)
	if err != nil {
		return model.Prediction{}, err
	}
	if !c.AcceptsPredictions(s.now()) {
		return model.Prediction{}, fmt.Errorf("challenge %s in %s: %w", challengeID, c.Status, ErrChallengeNotOpen)
	}

	p := model.Prediction{
		ID:                uuid.NewString(),
		UserID:            userID,
		ChallengeID:       challengeID,
		SubmittedCode:     code,
		PredictedWillPass: willPass,
		SubmittedAt:       s.now(),
	}
	if err := s.store.AppendPrediction(ctx, &p); err != nil {
		return model.Prediction{}, err
	}

	metrics.RecordPredictionSubmitted()
	s.logger.Info(ctx, "prediction submitted",
		logger.String("predictionID", p.ID),
		logger.String("userID", userID),
		logger.String("challengeID", challengeID),
		logger.Bool("willPass", willPass),
	)
	return p, nil
}

// ProposeBet records a wager that the target user's prediction will prove
// incorrect. The challenge must still be open.
func (s *Service) ProposeBet(ctx context.Context, challengeID, proposerID, targetID, targetPredictionID string, amount int) (model.ProposedBet, error) {
	if amount <= 0 {
		return model.ProposedBet{}, fmt.Errorf("amount %d: %w", amount, ErrInvalidAmount)
	}
	if proposerID == targetID {
		return model.ProposedBet{}, ErrSelfBet
	}

	target, err := s.store.GetPrediction(ctx, targetPredictionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.ProposedBet{}, fmt.Errorf("prediction %s: %w", targetPredictionID, ErrUnknownPrediction)
		}
		return model.ProposedBet{}, err
	}
	if target.ChallengeID != challengeID || target.UserID != targetID {
		return model.ProposedBet{}, fmt.Errorf("prediction %s: %w", targetPredictionID, ErrUnknownPrediction)
	}

	c, err := s.store.GetChallenge(ctx, challengeID)
	if err != nil {
		return model.ProposedBet{}, err
	}
	if c.Status != model.StatusOpen {
		return model.ProposedBet{}, fmt.Errorf("challenge %s in %s: %w", challengeID, c.Status, ErrChallengeNotOpen)
	}

	proposer, err := s.store.GetUser(ctx, proposerID)
	if err != nil {
		return model.ProposedBet{}, err
	}
	if !s.allowNegativeScore && amount > proposer.Score {
		return model.ProposedBet{}, fmt.Errorf("stake %d exceeds score %d: %w", amount, proposer.Score, ErrInsufficientScore)
	}

	b := model.ProposedBet{
		ID:                 uuid.NewString(),
		ChallengeID:        challengeID,
		ProposerID:         proposerID,
		TargetID:           targetID,
		TargetPredictionID: targetPredictionID,
		Amount:             amount,
		Status:             model.BetPendingAcceptance,
		CreatedAt:          s.now(),
	}
	if err := s.store.AppendBet(ctx, &b); err != nil {
		return model.ProposedBet{}, err
	}

	metrics.RecordBetProposed()
	s.logger.Info(ctx, "bet proposed",
		logger.String("betID", b.ID),
		logger.String("proposerID", proposerID),
		logger.String("targetID", targetID),
		logger.Int("amount", amount),
	)
	return b, nil
}

// AcceptBet moves a pending bet to accepted. Only the bet's target may
// accept, and only before settlement. Accepting twice is a no-op.
func (s *Service) AcceptBet(ctx context.Context, userID, betID string) error {
	return s.respondToBet(ctx, userID, betID, model.BetAccepted)
}

// DeclineBet moves a pending bet to declined. Declined bets are never
// settled and never move points.
func (s *Service) DeclineBet(ctx context.Context, userID, betID string) error {
	return s.respondToBet(ctx, userID, betID, model.BetDeclined)
}

func (s *Service) respondToBet(ctx context.Context, userID, betID string, to model.BetStatus) error {
	b, err := s.store.GetBet(ctx, betID)
	if err != nil {
		return err
	}
	if b.TargetID != userID {
		return fmt.Errorf("bet %s: %w", betID, ErrNotBetTarget)
	}

	changed, err := s.store.TransitionBet(ctx, betID, model.BetPendingAcceptance, to)
	if err != nil {
		return err
	}
	if !changed {
		// A CAS miss against a non-terminal state means the bet already
		// carries the requested (or the opposite) response; idempotent
		// re-responses are tolerated, flips are not.
		current, err := s.store.GetBet(ctx, betID)
		if err != nil {
			return err
		}
		if current.Status == to {
			return nil
		}
		return fmt.Errorf("bet %s in %s: %w", betID, current.Status, repository.ErrAlreadySettled)
	}

	s.logger.Info(ctx, "bet response recorded",
		logger.String("betID", betID),
		logger.String("status", string(to)),
	)
	return nil
}

// BeginAssessment idempotently moves an open challenge into assessing and
// queues a settlement run. Safe to call repeatedly and from concurrent
// callers.
func (s *Service) BeginAssessment(ctx context.Context, challengeID string) error {
	c, err := s.store.GetChallenge(ctx, challengeID)
	if err != nil {
		return err
	}
	if c.Status.Terminal() {
		return nil
	}

	if c.Status == model.StatusOpen {
		if _, err := s.store.AdvanceStatus(ctx, challengeID, model.StatusOpen, model.StatusAssessing); err != nil {
			return err
		}
	}

	if ok := s.jobs.Enqueue(ctx, queue.Job{ChallengeID: challengeID}); !ok {
		return fmt.Errorf("challenge %s: %w", challengeID, ErrBackpressure)
	}

	s.logger.Info(ctx, "assessment queued", logger.String("challengeID", challengeID))
	return nil
}

// GetChallenge returns a challenge by id.
func (s *Service) GetChallenge(ctx context.Context, id string) (model.Challenge, error) {
	return s.store.GetChallenge(ctx, id)
}

// ListChallenges returns all challenges, newest first.
func (s *Service) ListChallenges(ctx context.Context) ([]model.Challenge, error) {
	return s.store.ListChallenges(ctx)
}

// PredictionsForChallenge returns all predictions on a challenge.
func (s *Service) PredictionsForChallenge(ctx context.Context, challengeID string) ([]model.Prediction, error) {
	return s.store.ListPredictionsByChallenge(ctx, challengeID)
}

// PredictionsByOtherUsers returns predictions on a challenge made by
// anyone but the given user.
func (s *Service) PredictionsByOtherUsers(ctx context.Context, challengeID, userID string) ([]model.Prediction, error) {
	all, err := s.store.ListPredictionsByChallenge(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	others := make([]model.Prediction, 0, len(all))
	for _, p := range all {
		if p.UserID != userID {
			others = append(others, p)
		}
	}
	return others, nil
}

// BetsForChallenge returns all proposed bets on a challenge.
func (s *Service) BetsForChallenge(ctx context.Context, challengeID string) ([]model.ProposedBet, error) {
	return s.store.ListBetsByChallenge(ctx, challengeID)
}

// BetsForPrediction returns all bets targeting one prediction.
func (s *Service) BetsForPrediction(ctx context.Context, predictionID string) ([]model.ProposedBet, error) {
	return s.store.ListBetsByPrediction(ctx, predictionID)
}

// GetUser returns a user by id.
func (s *Service) GetUser(ctx context.Context, id string) (model.User, error) {
	return s.store.GetUser(ctx, id)
}

// Leaderboard returns up to limit users ordered by score descending.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]model.User, error) {
	return s.store.ListUsersByScoreDesc(ctx, limit)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]any {
	s.mu.Lock()
	started := s.started
	workerCount := s.workerCount
	s.mu.Unlock()

	stats := map[string]any{
		"started":     started,
		"workerCount": workerCount,
	}
	if !started {
		return stats
	}

	stats["queueLength"] = s.jobs.Len(ctx)
	stats["settlementsInFlight"] = s.guard.Size()

	counts := s.store.CountByStatus(ctx)
	byStatus := make(map[string]int, len(counts))
	for status, n := range counts {
		byStatus[string(status)] = n
		metrics.UpdateChallengesByStatus(string(status), n)
	}
	stats["challengesByStatus"] = byStatus
	return stats
}
