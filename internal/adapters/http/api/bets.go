// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/passbet/arena/internal/domain/model"
)

// BetDependencies defines the interface for wager operations.
type BetDependencies interface {
	ProposeBet(ctx context.Context, challengeID, proposerID, targetID, targetPredictionID string, amount int) (model.ProposedBet, error)
	BetsForChallenge(ctx context.Context, challengeID string) ([]model.ProposedBet, error)
	BetsForPrediction(ctx context.Context, predictionID string) ([]model.ProposedBet, error)
	AcceptBet(ctx context.Context, userID, betID string) error
	DeclineBet(ctx context.Context, userID, betID string) error
}

// BetsHandler handles wager requests.
type BetsHandler struct {
	deps BetDependencies
}

// NewBetsHandler creates a new bets handler.
func NewBetsHandler(deps BetDependencies) *BetsHandler {
	return &BetsHandler{deps: deps}
}

// proposeBetRequest mirrors the wire schema for POST /challenges/{id}/bets.
// The proposer comes from the X-User-ID header.
type proposeBetRequest struct {
	TargetUserID       string `json:"targetUserId"`
	TargetPredictionID string `json:"targetPredictionId"`
	Amount             int    `json:"betAmount"`
}

func (b proposeBetRequest) validate() error {
	switch {
	case strings.TrimSpace(b.TargetUserID) == "":
		return errors.New("missing targetUserId")
	case strings.TrimSpace(b.TargetPredictionID) == "":
		return errors.New("missing targetPredictionId")
	}
	return nil
}

// HandleProposeBet handles POST /challenges/{id}/bets requests.
func (h *BetsHandler) HandleProposeBet(w http.ResponseWriter, r *http.Request) {
	const op = "api.propose_bet"
	proposerID, err := identity(r)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	var req proposeBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	b, err := h.deps.ProposeBet(r.Context(), r.PathValue("id"), proposerID, req.TargetUserID, req.TargetPredictionID, req.Amount)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

// HandleListBets handles GET /challenges/{id}/bets requests.
func (h *BetsHandler) HandleListBets(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_bets"
	bets, err := h.deps.BetsForChallenge(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, bets)
}

// HandleListBetsForPrediction handles GET /predictions/{id}/bets requests.
func (h *BetsHandler) HandleListBetsForPrediction(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_bets_for_prediction"
	bets, err := h.deps.BetsForPrediction(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, bets)
}

// HandleAcceptBet handles POST /bets/{id}/accept requests. Only the bet's
// target may accept; accepting twice is a no-op.
func (h *BetsHandler) HandleAcceptBet(w http.ResponseWriter, r *http.Request) {
	const op = "api.accept_bet"
	h.respond(w, r, op, h.deps.AcceptBet, "accepted")
}

// HandleDeclineBet handles POST /bets/{id}/decline requests.
func (h *BetsHandler) HandleDeclineBet(w http.ResponseWriter, r *http.Request) {
	const op = "api.decline_bet"
	h.respond(w, r, op, h.deps.DeclineBet, "declined")
}

func (h *BetsHandler) respond(w http.ResponseWriter, r *http.Request, op string, fn func(ctx context.Context, userID, betID string) error, status string) {
	userID, err := identity(r)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	if err := fn(r.Context(), userID, r.PathValue("id")); err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, ackResponse{Status: status})
}
