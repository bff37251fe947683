// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/passbet/arena/internal/adapters/repository"
	"github.com/passbet/arena/internal/app"
)

// Dependencies bundles everything the HTTP handlers need from the
// settlement engine. Using an interface bundle keeps the handler layer
// loosely coupled to the application package.
type Dependencies interface {
	ChallengeDependencies
	PredictionDependencies
	BetDependencies
	UserDependencies
	LeaderboardDependencies
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	challengesHandler  *ChallengesHandler
	predictionsHandler *PredictionsHandler
	betsHandler        *BetsHandler
	usersHandler       *UsersHandler
	leaderboardHandler *LeaderboardHandler
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, maxLeaderboardLimit int) *Server {
	return &Server{
		challengesHandler:  NewChallengesHandler(deps),
		predictionsHandler: NewPredictionsHandler(deps),
		betsHandler:        NewBetsHandler(deps),
		usersHandler:       NewUsersHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, maxLeaderboardLimit),
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("POST /challenges", MetricsMiddleware(s.challengesHandler.HandleCreateChallenge, "challenges"))
	mux.HandleFunc("GET /challenges", MetricsMiddleware(s.challengesHandler.HandleListChallenges, "challenges"))
	mux.HandleFunc("GET /challenges/{id}", MetricsMiddleware(s.challengesHandler.HandleGetChallenge, "challenge"))
	mux.HandleFunc("POST /challenges/{id}/assess", MetricsMiddleware(s.challengesHandler.HandleBeginAssessment, "assess"))

	mux.HandleFunc("POST /challenges/{id}/predictions", MetricsMiddleware(s.predictionsHandler.HandleSubmitPrediction, "predictions"))
	mux.HandleFunc("GET /challenges/{id}/predictions", MetricsMiddleware(s.predictionsHandler.HandleListPredictions, "predictions"))

	mux.HandleFunc("POST /challenges/{id}/bets", MetricsMiddleware(s.betsHandler.HandleProposeBet, "bets"))
	mux.HandleFunc("GET /challenges/{id}/bets", MetricsMiddleware(s.betsHandler.HandleListBets, "bets"))
	mux.HandleFunc("GET /predictions/{id}/bets", MetricsMiddleware(s.betsHandler.HandleListBetsForPrediction, "prediction_bets"))
	mux.HandleFunc("POST /bets/{id}/accept", MetricsMiddleware(s.betsHandler.HandleAcceptBet, "bet_accept"))
	mux.HandleFunc("POST /bets/{id}/decline", MetricsMiddleware(s.betsHandler.HandleDeclineBet, "bet_decline"))

	mux.HandleFunc("POST /users", MetricsMiddleware(s.usersHandler.HandleRegisterUser, "users"))
	mux.HandleFunc("GET /users/{id}", MetricsMiddleware(s.usersHandler.HandleGetUser, "user"))
	mux.HandleFunc("GET /leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
}

// identity extracts the calling user's id from the X-User-ID header.
func identity(r *http.Request) (string, error) {
	id := r.Header.Get("X-User-ID")
	if id == "" {
		return "", ErrMissingIdentity
	}
	return id, nil
}

type ackResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError translates engine errors to their HTTP representation.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	status, code := statusFor(err)
	writeError(w, status, code, Wrap(op, err))
}

// statusFor maps engine error kinds to HTTP status codes. Validation
// failures are client errors, consistency violations are conflicts, and
// queue saturation surfaces as too-many-requests.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, app.ErrInvalidAmount),
		errors.Is(err, app.ErrSelfBet),
		errors.Is(err, app.ErrInvalidChallenge):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrMissingIdentity):
		return http.StatusUnauthorized, "missing_identity"
	case errors.Is(err, app.ErrNotBetTarget):
		return http.StatusForbidden, "not_bet_target"
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, app.ErrUnknownPrediction),
		errors.Is(err, app.ErrInsufficientScore):
		return http.StatusUnprocessableEntity, "unprocessable"
	case errors.Is(err, app.ErrChallengeNotOpen),
		errors.Is(err, repository.ErrDuplicatePrediction),
		errors.Is(err, repository.ErrAlreadyResolved),
		errors.Is(err, repository.ErrAlreadySettled),
		errors.Is(err, app.ErrPredictionUnresolved),
		errors.Is(err, app.ErrIncompleteSettlement),
		errors.Is(err, app.ErrSettlementInFlight):
		return http.StatusConflict, "conflict"
	case errors.Is(err, app.ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
