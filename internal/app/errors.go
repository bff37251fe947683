package app

import "errors"

// Validation errors: rejected synchronously, no state mutation.
var (
	// ErrChallengeNotOpen indicates a submission or wager against a
	// challenge that is past open (or past its deadline, for predictions).
	ErrChallengeNotOpen = errors.New("challenge not open")

	// ErrInvalidAmount indicates a non-positive bet amount.
	ErrInvalidAmount = errors.New("invalid bet amount")

	// ErrSelfBet indicates a user wagering against their own prediction.
	ErrSelfBet = errors.New("cannot bet against yourself")

	// ErrUnknownPrediction indicates the target prediction does not exist,
	// is on a different challenge, or belongs to a different user.
	ErrUnknownPrediction = errors.New("unknown target prediction")

	// ErrInsufficientScore indicates the proposer wagered more points than
	// they hold while the allow-negative-score policy is off.
	ErrInsufficientScore = errors.New("insufficient score for stake")

	// ErrNotBetTarget indicates someone other than the bet's target tried
	// to accept or decline it.
	ErrNotBetTarget = errors.New("only the bet target may respond")

	// ErrInvalidChallenge indicates a challenge created without a title,
	// positive points or a deadline.
	ErrInvalidChallenge = errors.New("invalid challenge")
)

// Consistency errors: ordering bugs or races; safe to retry once the
// precondition holds.
var (
	// ErrPredictionUnresolved indicates a bet settlement attempted before
	// the referenced prediction was resolved.
	ErrPredictionUnresolved = errors.New("prediction not yet resolved")

	// ErrIncompleteSettlement indicates completion was attempted while
	// unresolved predictions or live bets remain.
	ErrIncompleteSettlement = errors.New("incomplete settlement")

	// ErrSettlementInFlight indicates a settlement run for the challenge
	// is already in progress.
	ErrSettlementInFlight = errors.New("settlement already in flight")
)

// ErrBackpressure indicates the settlement queue refused a job.
var ErrBackpressure = errors.New("settlement queue full")
