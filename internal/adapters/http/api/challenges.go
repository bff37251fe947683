// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/passbet/arena/internal/domain/model"
)

// ChallengeDependencies defines the interface for challenge operations.
type ChallengeDependencies interface {
	CreateChallenge(ctx context.Context, c model.Challenge) (model.Challenge, error)
	GetChallenge(ctx context.Context, id string) (model.Challenge, error)
	ListChallenges(ctx context.Context) ([]model.Challenge, error)
	BeginAssessment(ctx context.Context, challengeID string) error
}

// ChallengesHandler handles challenge requests.
type ChallengesHandler struct {
	deps ChallengeDependencies
}

// NewChallengesHandler creates a new challenges handler.
func NewChallengesHandler(deps ChallengeDependencies) *ChallengesHandler {
	return &ChallengesHandler{deps: deps}
}

// createChallengeRequest mirrors the wire schema for POST /challenges.
type createChallengeRequest struct {
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	Language        string           `json:"language"`
	Difficulty      string           `json:"difficulty"`
	Points          int              `json:"points"`
	Deadline        string           `json:"deadline"`
	TestCases       []model.TestCase `json:"testCases,omitempty"`
	ExampleSolution string           `json:"exampleSolution,omitempty"`
}

func (c createChallengeRequest) validate() error {
	switch {
	case strings.TrimSpace(c.Title) == "":
		return errors.New("missing title")
	case strings.TrimSpace(c.Description) == "":
		return errors.New("missing description")
	case c.Points <= 0:
		return errors.New("points must be positive")
	case strings.TrimSpace(c.Deadline) == "":
		return errors.New("missing deadline")
	}
	if _, err := time.Parse(time.RFC3339, c.Deadline); err != nil {
		return errors.New("invalid deadline; must be RFC3339")
	}
	return nil
}

// HandleCreateChallenge handles POST /challenges requests.
func (h *ChallengesHandler) HandleCreateChallenge(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_challenge"
	var req createChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	deadline, _ := time.Parse(time.RFC3339, req.Deadline)

	c, err := h.deps.CreateChallenge(r.Context(), model.Challenge{
		Title:           req.Title,
		Description:     req.Description,
		Language:        req.Language,
		Difficulty:      req.Difficulty,
		Points:          req.Points,
		Deadline:        deadline,
		TestCases:       req.TestCases,
		ExampleSolution: req.ExampleSolution,
	})
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// HandleListChallenges handles GET /challenges requests.
func (h *ChallengesHandler) HandleListChallenges(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_challenges"
	challenges, err := h.deps.ListChallenges(r.Context())
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, challenges)
}

// HandleGetChallenge handles GET /challenges/{id} requests.
func (h *ChallengesHandler) HandleGetChallenge(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_challenge"
	c, err := h.deps.GetChallenge(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// HandleBeginAssessment handles POST /challenges/{id}/assess requests.
// The operation is idempotent; repeated calls queue at most one extra
// settlement run.
func (h *ChallengesHandler) HandleBeginAssessment(w http.ResponseWriter, r *http.Request) {
	const op = "api.begin_assessment"
	if err := h.deps.BeginAssessment(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "assessing"})
}
