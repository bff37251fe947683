package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/passbet/arena/internal/adapters/assessor"
	"github.com/passbet/arena/internal/adapters/repository"
	"github.com/passbet/arena/internal/domain/model"
	"github.com/passbet/arena/internal/domain/rules"
	"github.com/passbet/arena/pkg/logger"
	"github.com/passbet/arena/pkg/metrics"
)

// Settle runs one settlement pass for a challenge: resolve every
// prediction against the assessor's verdict, settle every bet, apply
// score deltas, then mark the challenge completed.
//
// The pass is restartable, not atomic: an assessor failure leaves the
// affected prediction unresolved and the challenge short of completed,
// and a later run picks up where this one stopped. Runs for the same
// challenge never interleave; a second concurrent run fails with
// ErrSettlementInFlight. Runs for different challenges are fully
// independent.
func (s *Service) Settle(ctx context.Context, challengeID string) error {
	if !s.guard.TryAcquire(ctx, challengeID) {
		return fmt.Errorf("challenge %s: %w", challengeID, ErrSettlementInFlight)
	}
	defer s.guard.Release(ctx, challengeID)

	start := time.Now()
	result := "error"
	defer func() {
		metrics.RecordSettlementRun(result)
		metrics.RecordSettlementDuration(float64(time.Since(start).Milliseconds()))
	}()

	c, err := s.store.GetChallenge(ctx, challengeID)
	if err != nil {
		return err
	}
	switch {
	case c.Status.Terminal():
		result = "completed"
		return nil
	case c.Status == model.StatusOpen && !c.PastDeadline(s.now()):
		return fmt.Errorf("challenge %s before deadline: %w", challengeID, ErrChallengeNotOpen)
	case c.Status == model.StatusOpen:
		if _, err := s.store.AdvanceStatus(ctx, challengeID, model.StatusOpen, model.StatusAssessing); err != nil {
			return err
		}
		c.Status = model.StatusAssessing
	}

	unresolved, err := s.resolvePredictions(ctx, &c)
	if err != nil {
		return err
	}
	if unresolved > 0 {
		result = "incomplete"
		return fmt.Errorf("challenge %s with %d unresolved predictions: %w", challengeID, unresolved, ErrIncompleteSettlement)
	}

	if err := s.settleBets(ctx, challengeID); err != nil {
		return err
	}

	if err := s.CompleteChallenge(ctx, challengeID); err != nil {
		return err
	}

	result = "completed"
	s.logger.Info(ctx, "challenge settled", logger.String("challengeID", challengeID))
	return nil
}

// resolvePredictions obtains verdicts for every unresolved prediction on
// the challenge and returns how many remain unresolved after the pass.
// The assessor is invoked outside any lock; the resolution write is the
// guarded store op.
func (s *Service) resolvePredictions(ctx context.Context, c *model.Challenge) (int, error) {
	predictions, err := s.store.ListPredictionsByChallenge(ctx, c.ID)
	if err != nil {
		return 0, err
	}

	var pending []model.Prediction
	for _, p := range predictions {
		if !p.Resolved() {
			pending = append(pending, p)
		}
	}
	if len(pending) == 0 {
		return 0, nil
	}

	cases, err := s.testCasesFor(ctx, c)
	if err != nil {
		// Without test cases nothing can be judged; the whole batch stays
		// unresolved for a later run.
		return len(pending), nil //nolint:nilerr // recoverable: retried by the next run
	}
	encoded, err := json.Marshal(cases)
	if err != nil {
		return 0, fmt.Errorf("encode test cases: %w", err)
	}

	unresolved := 0
	for _, p := range pending {
		outcome, err := s.assessor.Assess(ctx, assessor.AssessmentRequest{
			Code:                 p.SubmittedCode,
			TestCases:            string(encoded),
			Language:             c.Language,
			ChallengeDescription: c.Description,
		})
		if err != nil {
			unresolved++
			s.logger.Warn(ctx, "assessor failed; prediction left unresolved",
				logger.String("predictionID", p.ID),
				logger.Error(err),
			)
			continue
		}

		res := rules.ResolvePrediction(p.PredictedWillPass, outcome, c.Points)
		err = s.store.ResolvePrediction(ctx, p.ID, outcome, res.IsCorrect, res.PointsEarned)
		if errors.Is(err, repository.ErrAlreadyResolved) {
			// Lost a race against a concurrent resolver; the winner already
			// applied the score delta.
			continue
		}
		if err != nil {
			return 0, err
		}

		metrics.RecordPredictionResolved(res.IsCorrect)
		if res.PointsEarned > 0 {
			if _, err := s.store.AddScore(ctx, p.UserID, res.PointsEarned); err != nil {
				return 0, err
			}
			metrics.RecordPointsAwarded(res.PointsEarned)
		}

		s.logger.Info(ctx, "prediction resolved",
			logger.String("predictionID", p.ID),
			logger.Bool("isCorrect", res.IsCorrect),
			logger.Int("pointsEarned", res.PointsEarned),
		)
	}
	return unresolved, nil
}

// testCasesFor returns the challenge's test cases, generating and caching
// them once when none were pre-authored.
func (s *Service) testCasesFor(ctx context.Context, c *model.Challenge) ([]model.TestCase, error) {
	if len(c.TestCases) > 0 {
		return c.TestCases, nil
	}
	if s.generator == nil {
		return nil, fmt.Errorf("challenge %s has no test cases and no generator is configured", c.ID)
	}

	cases, err := s.generator.GenerateTestCases(ctx, c.Description, c.Language)
	if err != nil {
		return nil, err
	}

	err = s.store.SetTestCases(ctx, c.ID, cases)
	if errors.Is(err, repository.ErrTestCasesSet) {
		// A concurrent run generated first; use the cached set.
		fresh, gerr := s.store.GetChallenge(ctx, c.ID)
		if gerr != nil {
			return nil, gerr
		}
		return fresh.TestCases, nil
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "test cases generated",
		logger.String("challengeID", c.ID),
		logger.Int("count", len(cases)),
	)
	return cases, nil
}

// settleBets settles every bet on the challenge. Predictions must all be
// resolved before this is called.
func (s *Service) settleBets(ctx context.Context, challengeID string) error {
	bets, err := s.store.ListBetsByChallenge(ctx, challengeID)
	if err != nil {
		return err
	}

	for i := range bets {
		if err := s.settleBet(ctx, &bets[i]); err != nil {
			return err
		}
	}
	return nil
}

// SettleBet settles a single bet by id. Exposed for operator-driven
// retries; Settle covers the normal path. While the challenge is still
// open the bet is not due: a pending one keeps its acceptance window and
// is never voided early.
func (s *Service) SettleBet(ctx context.Context, betID string) error {
	b, err := s.store.GetBet(ctx, betID)
	if err != nil {
		return err
	}
	if b.Status.Terminal() {
		return fmt.Errorf("bet %s in %s: %w", betID, b.Status, repository.ErrAlreadySettled)
	}

	c, err := s.store.GetChallenge(ctx, b.ChallengeID)
	if err != nil {
		return err
	}
	if c.Status == model.StatusOpen {
		return fmt.Errorf("challenge %s still open: %w", b.ChallengeID, ErrChallengeNotOpen)
	}
	return s.settleBet(ctx, &b)
}

func (s *Service) settleBet(ctx context.Context, b *model.ProposedBet) error {
	switch b.Status {
	case model.BetPendingAcceptance:
		// Never accepted before completion: voided, no transfer.
		changed, err := s.store.TransitionBet(ctx, b.ID, model.BetPendingAcceptance, model.BetVoided)
		if err != nil && !errors.Is(err, repository.ErrAlreadySettled) {
			return err
		}
		if changed {
			metrics.RecordBetSettled("voided")
			s.logger.Info(ctx, "unaccepted bet voided", logger.String("betID", b.ID))
		}
		return nil

	case model.BetAccepted:
		target, err := s.store.GetPrediction(ctx, b.TargetPredictionID)
		if err != nil {
			return err
		}
		if !target.Resolved() || target.IsCorrect == nil {
			return fmt.Errorf("bet %s against prediction %s: %w", b.ID, target.ID, ErrPredictionUnresolved)
		}

		res := rules.SettleBet(b, *target.IsCorrect)
		changed, err := s.store.TransitionBet(ctx, b.ID, model.BetAccepted, res.Status)
		if err != nil && !errors.Is(err, repository.ErrAlreadySettled) {
			return err
		}
		if !changed {
			// A concurrent settler won the CAS and applied the transfer.
			return nil
		}

		if res.Transfer > 0 {
			if _, err := s.store.AddScore(ctx, b.TargetID, -res.Transfer); err != nil {
				return err
			}
			if _, err := s.store.AddScore(ctx, b.ProposerID, res.Transfer); err != nil {
				return err
			}
			metrics.RecordPointsTransferred(res.Transfer)
		}
		winner := "target"
		if res.Status == model.BetSettledProposer {
			winner = "proposer"
		}
		metrics.RecordBetSettled(winner)
		s.logger.Info(ctx, "bet settled",
			logger.String("betID", b.ID),
			logger.String("winner", winner),
			logger.Int("transfer", res.Transfer),
		)
		return nil

	default:
		// Declined or already terminal: nothing to settle.
		return nil
	}
}

// CompleteChallenge moves the challenge into the terminal completed state.
// It fails with ErrIncompleteSettlement while unresolved predictions or
// live bets remain. Completing a completed challenge is a no-op.
func (s *Service) CompleteChallenge(ctx context.Context, challengeID string) error {
	c, err := s.store.GetChallenge(ctx, challengeID)
	if err != nil {
		return err
	}
	if c.Status.Terminal() {
		return nil
	}
	if c.Status == model.StatusOpen {
		return fmt.Errorf("challenge %s still open: %w", challengeID, ErrIncompleteSettlement)
	}

	predictions, err := s.store.ListPredictionsByChallenge(ctx, challengeID)
	if err != nil {
		return err
	}
	for _, p := range predictions {
		if !p.Resolved() {
			return fmt.Errorf("prediction %s unresolved: %w", p.ID, ErrIncompleteSettlement)
		}
	}

	bets, err := s.store.ListBetsByChallenge(ctx, challengeID)
	if err != nil {
		return err
	}
	for _, b := range bets {
		if b.Live() {
			return fmt.Errorf("bet %s still %s: %w", b.ID, b.Status, ErrIncompleteSettlement)
		}
	}

	if _, err := s.store.AdvanceStatus(ctx, challengeID, c.Status, model.StatusCompleted); err != nil {
		return err
	}
	return nil
}
