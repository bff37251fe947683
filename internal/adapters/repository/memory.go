package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/passbet/arena/internal/domain/model"
)

// Memory is the in-memory Store implementation. Each ledger is guarded by
// its own mutex so challenge settlement never contends with user reads.
// All guarded writes (status advances, prediction resolution, bet
// transitions, score increments) happen under the ledger lock, which makes
// them compare-and-set from the caller's point of view.
type Memory struct {
	cmu        sync.RWMutex
	challenges map[string]*model.Challenge

	pmu         sync.RWMutex
	predictions map[string]*model.Prediction
	// byOwner indexes prediction ids by (challengeID, userID) to enforce
	// the one-prediction-per-user-per-challenge invariant atomically.
	byOwner map[ownerKey]string

	bmu  sync.RWMutex
	bets map[string]*model.ProposedBet

	umu   sync.RWMutex
	users map[string]*model.User
}

type ownerKey struct {
	challengeID string
	userID      string
}

// NewMemory creates an empty in-memory store.
func NewMemory(_ context.Context) *Memory {
	return &Memory{
		challenges:  make(map[string]*model.Challenge),
		predictions: make(map[string]*model.Prediction),
		byOwner:     make(map[ownerKey]string),
		bets:        make(map[string]*model.ProposedBet),
		users:       make(map[string]*model.User),
	}
}

// compile-time interface check.
var _ Store = (*Memory)(nil)

// CreateChallenge stores a new challenge record.
func (m *Memory) CreateChallenge(_ context.Context, c *model.Challenge) error {
	m.cmu.Lock()
	defer m.cmu.Unlock()

	if _, ok := m.challenges[c.ID]; ok {
		return fmt.Errorf("challenge %s: %w", c.ID, ErrDuplicateID)
	}
	cp := *c
	cp.TestCases = append([]model.TestCase(nil), c.TestCases...)
	m.challenges[c.ID] = &cp
	return nil
}

// GetChallenge returns a copy of the challenge record.
func (m *Memory) GetChallenge(_ context.Context, id string) (model.Challenge, error) {
	m.cmu.RLock()
	defer m.cmu.RUnlock()

	c, ok := m.challenges[id]
	if !ok {
		return model.Challenge{}, fmt.Errorf("challenge %s: %w", id, ErrNotFound)
	}
	return copyChallenge(c), nil
}

// ListChallenges returns all challenges, newest first.
func (m *Memory) ListChallenges(_ context.Context) ([]model.Challenge, error) {
	m.cmu.RLock()
	defer m.cmu.RUnlock()

	out := make([]model.Challenge, 0, len(m.challenges))
	for _, c := range m.challenges {
		out = append(out, copyChallenge(c))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// AdvanceStatus moves a challenge forward under compare-and-set.
func (m *Memory) AdvanceStatus(_ context.Context, id string, from, to model.ChallengeStatus) (bool, error) {
	if !from.CanAdvanceTo(to) {
		return false, fmt.Errorf("challenge %s: %s -> %s: %w", id, from, to, ErrInvalidTransition)
	}

	m.cmu.Lock()
	defer m.cmu.Unlock()

	c, ok := m.challenges[id]
	if !ok {
		return false, fmt.Errorf("challenge %s: %w", id, ErrNotFound)
	}
	if c.Status != from {
		return false, nil
	}
	c.Status = to
	return true, nil
}

// SetTestCases caches generated test cases, write-once.
func (m *Memory) SetTestCases(_ context.Context, id string, cases []model.TestCase) error {
	m.cmu.Lock()
	defer m.cmu.Unlock()

	c, ok := m.challenges[id]
	if !ok {
		return fmt.Errorf("challenge %s: %w", id, ErrNotFound)
	}
	if len(c.TestCases) > 0 {
		return fmt.Errorf("challenge %s: %w", id, ErrTestCasesSet)
	}
	c.TestCases = append([]model.TestCase(nil), cases...)
	return nil
}

// CountByStatus returns challenge counts per lifecycle status.
func (m *Memory) CountByStatus(_ context.Context) map[model.ChallengeStatus]int {
	m.cmu.RLock()
	defer m.cmu.RUnlock()

	counts := make(map[model.ChallengeStatus]int, 4)
	for _, c := range m.challenges {
		counts[c.Status]++
	}
	return counts
}

// AppendPrediction records a prediction, rejecting duplicates per
// (user, challenge) atomically.
func (m *Memory) AppendPrediction(_ context.Context, p *model.Prediction) error {
	m.pmu.Lock()
	defer m.pmu.Unlock()

	if _, ok := m.predictions[p.ID]; ok {
		return fmt.Errorf("prediction %s: %w", p.ID, ErrDuplicateID)
	}
	key := ownerKey{challengeID: p.ChallengeID, userID: p.UserID}
	if _, ok := m.byOwner[key]; ok {
		return fmt.Errorf("user %s on challenge %s: %w", p.UserID, p.ChallengeID, ErrDuplicatePrediction)
	}
	cp := *p
	m.predictions[p.ID] = &cp
	m.byOwner[key] = p.ID
	return nil
}

// GetPrediction returns a copy of the prediction record.
func (m *Memory) GetPrediction(_ context.Context, id string) (model.Prediction, error) {
	m.pmu.RLock()
	defer m.pmu.RUnlock()

	p, ok := m.predictions[id]
	if !ok {
		return model.Prediction{}, fmt.Errorf("prediction %s: %w", id, ErrNotFound)
	}
	return copyPrediction(p), nil
}

// ListPredictionsByChallenge returns the challenge's predictions ordered by
// submission time, then id.
func (m *Memory) ListPredictionsByChallenge(_ context.Context, challengeID string) ([]model.Prediction, error) {
	m.pmu.RLock()
	defer m.pmu.RUnlock()

	var out []model.Prediction
	for _, p := range m.predictions {
		if p.ChallengeID == challengeID {
			out = append(out, copyPrediction(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].SubmittedAt.Before(out[j].SubmittedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// ResolvePrediction sets the write-once settlement fields.
func (m *Memory) ResolvePrediction(_ context.Context, id string, actual model.Outcome, isCorrect bool, points int) error {
	m.pmu.Lock()
	defer m.pmu.Unlock()

	p, ok := m.predictions[id]
	if !ok {
		return fmt.Errorf("prediction %s: %w", id, ErrNotFound)
	}
	if p.Actual != nil {
		return fmt.Errorf("prediction %s: %w", id, ErrAlreadyResolved)
	}
	outcome := actual
	correct := isCorrect
	p.Actual = &outcome
	p.IsCorrect = &correct
	p.PointsEarned = points
	return nil
}

// AppendBet records a proposed bet.
func (m *Memory) AppendBet(_ context.Context, b *model.ProposedBet) error {
	m.bmu.Lock()
	defer m.bmu.Unlock()

	if _, ok := m.bets[b.ID]; ok {
		return fmt.Errorf("bet %s: %w", b.ID, ErrDuplicateID)
	}
	cp := *b
	m.bets[b.ID] = &cp
	return nil
}

// GetBet returns a copy of the bet record.
func (m *Memory) GetBet(_ context.Context, id string) (model.ProposedBet, error) {
	m.bmu.RLock()
	defer m.bmu.RUnlock()

	b, ok := m.bets[id]
	if !ok {
		return model.ProposedBet{}, fmt.Errorf("bet %s: %w", id, ErrNotFound)
	}
	cp := *b
	return cp, nil
}

// ListBetsByChallenge returns the challenge's bets ordered by creation
// time, then id.
func (m *Memory) ListBetsByChallenge(_ context.Context, challengeID string) ([]model.ProposedBet, error) {
	m.bmu.RLock()
	defer m.bmu.RUnlock()

	var out []model.ProposedBet
	for _, b := range m.bets {
		if b.ChallengeID == challengeID {
			out = append(out, *b)
		}
	}
	sortBets(out)
	return out, nil
}

// ListBetsByPrediction returns bets wagered against one prediction.
func (m *Memory) ListBetsByPrediction(_ context.Context, predictionID string) ([]model.ProposedBet, error) {
	m.bmu.RLock()
	defer m.bmu.RUnlock()

	var out []model.ProposedBet
	for _, b := range m.bets {
		if b.TargetPredictionID == predictionID {
			out = append(out, *b)
		}
	}
	sortBets(out)
	return out, nil
}

// TransitionBet moves a bet status forward under compare-and-set.
func (m *Memory) TransitionBet(_ context.Context, id string, from, to model.BetStatus) (bool, error) {
	m.bmu.Lock()
	defer m.bmu.Unlock()

	b, ok := m.bets[id]
	if !ok {
		return false, fmt.Errorf("bet %s: %w", id, ErrNotFound)
	}
	if b.Status != from {
		if b.Status.Terminal() {
			return false, fmt.Errorf("bet %s in %s: %w", id, b.Status, ErrAlreadySettled)
		}
		return false, nil
	}
	if !from.CanTransitionTo(to) {
		if from.Terminal() {
			return false, fmt.Errorf("bet %s in %s: %w", id, from, ErrAlreadySettled)
		}
		return false, fmt.Errorf("bet %s: %s -> %s: %w", id, from, to, ErrInvalidTransition)
	}
	b.Status = to
	return true, nil
}

// CreateUser stores a new user record.
func (m *Memory) CreateUser(_ context.Context, u *model.User) error {
	m.umu.Lock()
	defer m.umu.Unlock()

	if _, ok := m.users[u.ID]; ok {
		return fmt.Errorf("user %s: %w", u.ID, ErrDuplicateID)
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

// GetUser returns a copy of the user record.
func (m *Memory) GetUser(_ context.Context, id string) (model.User, error) {
	m.umu.RLock()
	defer m.umu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return model.User{}, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	cp := *u
	return cp, nil
}

// AddScore applies an atomic score increment and returns the new score.
func (m *Memory) AddScore(_ context.Context, id string, delta int) (int, error) {
	m.umu.Lock()
	defer m.umu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return 0, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	u.Score += delta
	return u.Score, nil
}

// ListUsersByScoreDesc returns users ordered by score descending, ties
// broken by id ascending.
func (m *Memory) ListUsersByScoreDesc(_ context.Context, limit int) ([]model.User, error) {
	m.umu.RLock()
	defer m.umu.RUnlock()

	out := make([]model.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func copyChallenge(c *model.Challenge) model.Challenge {
	cp := *c
	cp.TestCases = append([]model.TestCase(nil), c.TestCases...)
	return cp
}

func copyPrediction(p *model.Prediction) model.Prediction {
	cp := *p
	if p.Actual != nil {
		outcome := *p.Actual
		cp.Actual = &outcome
	}
	if p.IsCorrect != nil {
		correct := *p.IsCorrect
		cp.IsCorrect = &correct
	}
	return cp
}

func sortBets(bets []model.ProposedBet) {
	sort.Slice(bets, func(i, j int) bool {
		if !bets[i].CreatedAt.Equal(bets[j].CreatedAt) {
			return bets[i].CreatedAt.Before(bets[j].CreatedAt)
		}
		return bets[i].ID < bets[j].ID
	})
}
