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

// UserDependencies defines the interface for user operations.
type UserDependencies interface {
	RegisterUser(ctx context.Context, name string) (model.User, error)
	GetUser(ctx context.Context, id string) (model.User, error)
}

// UsersHandler handles user requests.
type UsersHandler struct {
	deps UserDependencies
}

// NewUsersHandler creates a new users handler.
func NewUsersHandler(deps UserDependencies) *UsersHandler {
	return &UsersHandler{deps: deps}
}

type registerUserRequest struct {
	Name string `json:"name"`
}

func (u registerUserRequest) validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return errors.New("missing name")
	}
	return nil
}

// HandleRegisterUser handles POST /users requests.
func (h *UsersHandler) HandleRegisterUser(w http.ResponseWriter, r *http.Request) {
	const op = "api.register_user"
	var req registerUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	u, err := h.deps.RegisterUser(r.Context(), req.Name)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

// HandleGetUser handles GET /users/{id} requests.
func (h *UsersHandler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_user"
	u, err := h.deps.GetUser(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
