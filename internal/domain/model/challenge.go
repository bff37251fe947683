// Package model contains domain records passed between layers.
package model

import "time"

// ChallengeStatus is the lifecycle state of a challenge.
// Transitions only move forward: open -> assessing -> closed -> completed.
// The engine treats assessing and closed as one transient phase.
type ChallengeStatus string

// Challenge lifecycle states.
const (
	StatusOpen      ChallengeStatus = "open"
	StatusAssessing ChallengeStatus = "assessing"
	StatusClosed    ChallengeStatus = "closed"
	StatusCompleted ChallengeStatus = "completed"
)

// rank orders statuses along the forward-only lifecycle.
func (s ChallengeStatus) rank() int {
	switch s {
	case StatusOpen:
		return 0
	case StatusAssessing:
		return 1
	case StatusClosed:
		return 2
	case StatusCompleted:
		return 3
	}
	return -1
}

// Valid reports whether s is a known lifecycle state.
func (s ChallengeStatus) Valid() bool {
	return s.rank() >= 0
}

// CanAdvanceTo reports whether moving from s to next is a legal forward
// transition. Staying in place is not an advance, and completed is only
// reachable from the assessing/closed phase, never straight from open.
func (s ChallengeStatus) CanAdvanceTo(next ChallengeStatus) bool {
	if !s.Valid() || !next.Valid() || next.rank() <= s.rank() {
		return false
	}
	if next == StatusCompleted {
		return s == StatusAssessing || s == StatusClosed
	}
	return true
}

// Terminal reports whether s admits no further transitions.
func (s ChallengeStatus) Terminal() bool {
	return s == StatusCompleted
}

// TestCase is a single input/expected-output pair used to judge a solution.
type TestCase struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expectedOutput"`
}

// Challenge is a coding problem with a deadline and a point reward.
// Status is mutated only forward; the record is immutable once completed.
type Challenge struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Language        string          `json:"language"`
	Difficulty      string          `json:"difficulty"`
	Points          int             `json:"points"`
	Deadline        time.Time       `json:"deadline"`
	Status          ChallengeStatus `json:"status"`
	TestCases       []TestCase      `json:"testCases,omitempty"`
	ExampleSolution string          `json:"exampleSolution,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// AcceptsPredictions reports whether the challenge currently takes
// prediction submissions.
func (c *Challenge) AcceptsPredictions(now time.Time) bool {
	return c.Status == StatusOpen && now.Before(c.Deadline)
}

// PastDeadline reports whether the submission deadline has elapsed.
func (c *Challenge) PastDeadline(now time.Time) bool {
	return !now.Before(c.Deadline)
}
