// Package repository defines the persistence interfaces for the settlement
// engine and an in-memory implementation. The engine is specified against
// these interfaces only; a persistent store can be swapped in behind them.
package repository

import (
	"context"

	"github.com/passbet/arena/internal/domain/model"
)

// ChallengeStore holds challenge records and their lifecycle state.
type ChallengeStore interface {
	CreateChallenge(ctx context.Context, c *model.Challenge) error

	// GetChallenge returns a copy of the challenge. Reads never block on
	// settlement.
	GetChallenge(ctx context.Context, id string) (model.Challenge, error)

	ListChallenges(ctx context.Context) ([]model.Challenge, error)

	// AdvanceStatus moves the challenge from one status to the next under a
	// compare-and-set guard. It returns false (and no error) when the
	// current status is not from, so concurrent advancers are idempotent.
	// A transition that does not move forward fails with
	// ErrInvalidTransition.
	AdvanceStatus(ctx context.Context, id string, from, to model.ChallengeStatus) (bool, error)

	// SetTestCases caches generated test cases on the challenge, write-once.
	// Fails with ErrTestCasesSet when cases are already present.
	SetTestCases(ctx context.Context, id string, cases []model.TestCase) error

	// CountByStatus returns the number of challenges per lifecycle status.
	CountByStatus(ctx context.Context) map[model.ChallengeStatus]int
}

// PredictionStore is the append-mostly prediction ledger.
type PredictionStore interface {
	// AppendPrediction records a new prediction. Fails with
	// ErrDuplicatePrediction when one exists for the same (user, challenge).
	AppendPrediction(ctx context.Context, p *model.Prediction) error

	GetPrediction(ctx context.Context, id string) (model.Prediction, error)

	ListPredictionsByChallenge(ctx context.Context, challengeID string) ([]model.Prediction, error)

	// ResolvePrediction sets the write-once settlement fields under a
	// guarded write. A second call fails with ErrAlreadyResolved.
	ResolvePrediction(ctx context.Context, id string, actual model.Outcome, isCorrect bool, points int) error
}

// BetStore is the append-mostly bet ledger.
type BetStore interface {
	AppendBet(ctx context.Context, b *model.ProposedBet) error

	GetBet(ctx context.Context, id string) (model.ProposedBet, error)

	ListBetsByChallenge(ctx context.Context, challengeID string) ([]model.ProposedBet, error)

	ListBetsByPrediction(ctx context.Context, predictionID string) ([]model.ProposedBet, error)

	// TransitionBet moves the bet status forward under a compare-and-set
	// guard. It returns false (and no error) when the current status is not
	// from. Leaving a terminal state fails with ErrAlreadySettled; other
	// illegal moves fail with ErrInvalidTransition.
	TransitionBet(ctx context.Context, id string, from, to model.BetStatus) (bool, error)
}

// UserStore holds identities and their cumulative scores.
type UserStore interface {
	CreateUser(ctx context.Context, u *model.User) error

	GetUser(ctx context.Context, id string) (model.User, error)

	// AddScore applies an atomic increment (delta may be negative) and
	// returns the new score. Never a read-modify-write race.
	AddScore(ctx context.Context, id string, delta int) (int, error)

	// ListUsersByScoreDesc returns up to limit users, highest score first,
	// ties broken by id ascending. limit <= 0 means all.
	ListUsersByScoreDesc(ctx context.Context, limit int) ([]model.User, error)
}

// Store bundles all four ledgers the engine depends on.
type Store interface {
	ChallengeStore
	PredictionStore
	BetStore
	UserStore
}
