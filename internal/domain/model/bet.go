package model

import "time"

// BetStatus is the settlement state of a proposed bet.
// Transitions only move forward; the settled and voided states are terminal.
type BetStatus string

// Bet states.
const (
	BetPendingAcceptance BetStatus = "pending_acceptance"
	BetAccepted          BetStatus = "accepted"
	BetDeclined          BetStatus = "declined"
	BetSettledProposer   BetStatus = "settled_win_proposer"
	BetSettledTarget     BetStatus = "settled_win_target"
	BetVoided            BetStatus = "voided"
)

// Valid reports whether s is a known bet state.
func (s BetStatus) Valid() bool {
	switch s {
	case BetPendingAcceptance, BetAccepted, BetDeclined,
		BetSettledProposer, BetSettledTarget, BetVoided:
		return true
	}
	return false
}

// Terminal reports whether s admits no further transitions.
func (s BetStatus) Terminal() bool {
	switch s {
	case BetDeclined, BetSettledProposer, BetSettledTarget, BetVoided:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving from s to next is legal.
func (s BetStatus) CanTransitionTo(next BetStatus) bool {
	if !s.Valid() || !next.Valid() || s.Terminal() {
		return false
	}
	switch s {
	case BetPendingAcceptance:
		// Unaccepted bets may be voided at challenge completion.
		return next == BetAccepted || next == BetDeclined || next == BetVoided
	case BetAccepted:
		return next == BetSettledProposer || next == BetSettledTarget || next == BetVoided
	}
	return false
}

// ProposedBet is a peer wager that a target user's prediction will prove
// incorrect. The stake is one-sided: on a proposer win, Amount points move
// target -> proposer; on a target win nothing moves.
type ProposedBet struct {
	ID                 string    `json:"id"`
	ChallengeID        string    `json:"challengeId"`
	ProposerID         string    `json:"proposingUserId"`
	TargetID           string    `json:"targetUserId"`
	TargetPredictionID string    `json:"targetPredictionId"`
	Amount             int       `json:"betAmount"`
	Status             BetStatus `json:"status"`
	CreatedAt          time.Time `json:"createdAt"`
}

// Live reports whether the bet still needs attention from settlement.
func (b *ProposedBet) Live() bool {
	return !b.Status.Terminal()
}
