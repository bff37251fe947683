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

// PredictionDependencies defines the interface for prediction operations.
type PredictionDependencies interface {
	SubmitPrediction(ctx context.Context, userID, challengeID, code string, willPass bool) (model.Prediction, error)
	PredictionsForChallenge(ctx context.Context, challengeID string) ([]model.Prediction, error)
	PredictionsByOtherUsers(ctx context.Context, challengeID, userID string) ([]model.Prediction, error)
}

// PredictionsHandler handles prediction requests.
type PredictionsHandler struct {
	deps PredictionDependencies
}

// NewPredictionsHandler creates a new predictions handler.
func NewPredictionsHandler(deps PredictionDependencies) *PredictionsHandler {
	return &PredictionsHandler{deps: deps}
}

// submitPredictionRequest mirrors the wire schema for
// POST /challenges/{id}/predictions.
type submitPredictionRequest struct {
	Code              string `json:"code"`
	PredictedWillPass bool   `json:"predictedWillPass"`
}

func (p submitPredictionRequest) validate() error {
	if strings.TrimSpace(p.Code) == "" {
		return errors.New("missing code")
	}
	return nil
}

// HandleSubmitPrediction handles POST /challenges/{id}/predictions requests.
// The caller identifies itself via the X-User-ID header.
func (h *PredictionsHandler) HandleSubmitPrediction(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_prediction"
	userID, err := identity(r)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	var req submitPredictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	p, err := h.deps.SubmitPrediction(r.Context(), userID, r.PathValue("id"), req.Code, req.PredictedWillPass)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// HandleListPredictions handles GET /challenges/{id}/predictions requests.
// With ?others=true and an X-User-ID header the caller's own prediction is
// filtered out, which is the view used for picking a bet target.
func (h *PredictionsHandler) HandleListPredictions(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_predictions"
	challengeID := r.PathValue("id")

	if r.URL.Query().Get("others") == "true" {
		userID, err := identity(r)
		if err != nil {
			writeServiceError(w, op, err)
			return
		}
		predictions, err := h.deps.PredictionsByOtherUsers(r.Context(), challengeID, userID)
		if err != nil {
			writeServiceError(w, op, err)
			return
		}
		writeJSON(w, http.StatusOK, predictions)
		return
	}

	predictions, err := h.deps.PredictionsForChallenge(r.Context(), challengeID)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, predictions)
}
