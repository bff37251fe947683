// Package rules contains the pure settlement decision functions: how a
// resolved outcome scores a prediction and who wins a bet. Keeping these
// free of store access makes the engine's arithmetic trivially testable.
package rules

import "github.com/passbet/arena/internal/domain/model"

// Resolution is the derived result of matching a prediction against the
// actual outcome.
type Resolution struct {
	IsCorrect    bool
	PointsEarned int
}

// ResolvePrediction derives correctness and the points earned for a
// prediction given the actual outcome and the challenge's point reward.
// A correct self-prediction earns the full reward; an incorrect one earns
// nothing.
func ResolvePrediction(predictedWillPass bool, actual model.Outcome, challengePoints int) Resolution {
	correct := predictedWillPass == actual.WillPass
	points := 0
	if correct {
		points = challengePoints
	}
	return Resolution{IsCorrect: correct, PointsEarned: points}
}

// BetResult describes how a settled bet moves points.
type BetResult struct {
	Status model.BetStatus
	// Transfer is the amount moved target -> proposer. Zero on a target win:
	// the bet is a challenge to the target's correctness, not a symmetric
	// stake, so a correct target loses nothing extra.
	Transfer int
}

// SettleBet decides a bet given whether the target's prediction turned out
// correct. The proposer is betting that the target's prediction is wrong.
func SettleBet(bet *model.ProposedBet, targetWasCorrect bool) BetResult {
	if targetWasCorrect {
		return BetResult{Status: model.BetSettledTarget}
	}
	return BetResult{Status: model.BetSettledProposer, Transfer: bet.Amount}
}
