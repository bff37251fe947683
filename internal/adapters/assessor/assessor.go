// Package assessor declares the outcome assessor and test-case generator
// contracts consumed by the settlement engine, plus an OpenAI-backed client.
//
// The assessor is an external collaborator: it judges a submitted solution
// against test cases but never mutates core state. Failures are transient
// by contract - the caller retries later, it never treats an error as a
// fail verdict.
package assessor

import (
	"context"

	"github.com/passbet/arena/internal/domain/model"
)

// AssessmentRequest carries everything the assessor needs to judge one
// submitted solution. TestCases is a JSON-encoded array of
// {input, expectedOutput} objects.
type AssessmentRequest struct {
	Code                 string `json:"code"`
	TestCases            string `json:"testCases"`
	Language             string `json:"language"`
	ChallengeDescription string `json:"challengeDescription"`
}

// Assessor produces a pass/fail verdict with reasoning for a solution.
type Assessor interface {
	Assess(ctx context.Context, req AssessmentRequest) (model.Outcome, error)
}

// TestCaseGenerator produces test cases for a challenge that ships without
// pre-authored ones.
type TestCaseGenerator interface {
	GenerateTestCases(ctx context.Context, description, language string) ([]model.TestCase, error)
}
