package model

import "time"

// Outcome is a pass/fail verdict with the assessor's reasoning.
type Outcome struct {
	WillPass  bool   `json:"willPass"`
	Reasoning string `json:"reasoning,omitempty"`
}

// Prediction is a user's submitted solution plus their self-assessed
// pass/fail guess for a challenge. Actual, IsCorrect and PointsEarned are
// write-once: they are set exactly once by settlement.
type Prediction struct {
	ID                string    `json:"id"`
	UserID            string    `json:"userId"`
	ChallengeID       string    `json:"challengeId"`
	SubmittedCode     string    `json:"submittedCode"`
	PredictedWillPass bool      `json:"predictedWillPass"`
	Actual            *Outcome  `json:"actualOutcome,omitempty"`
	IsCorrect         *bool     `json:"isCorrect,omitempty"`
	PointsEarned      int       `json:"pointsEarned"`
	SubmittedAt       time.Time `json:"submissionDate"`
}

// Resolved reports whether settlement has recorded an actual outcome.
func (p *Prediction) Resolved() bool {
	return p.Actual != nil
}
