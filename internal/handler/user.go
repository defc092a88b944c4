package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/queregalo/queregalo/internal/model"
	"github.com/queregalo/queregalo/internal/service"
)

// UserHandler serves group membership: joining with a name and listing members.
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

type joinRequest struct {
	Name string `json:"name"`
}

type joinResponse struct {
	UserID  string `json:"userId"`
	GroupID string `json:"groupId"`
	Name    string `json:"name"`
}

// memberResponse is the shape of a member in listings: id and name only.
type memberResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// HandleJoin registers a name in a group, or fetches the existing user if the
// name is already registered. Always 200 — the caller can't tell (and doesn't
// care) whether the user already existed.
//
// HTTP: POST /api/groups/{groupID}/users
// BODY: {"name": "Ana"}
func (h *UserHandler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	groupID := r.PathValue("groupID")

	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid user JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid JSON body",
		})
		return
	}

	user, err := h.users.Join(r.Context(), groupID, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, joinResponse{
		UserID:  user.ID,
		GroupID: user.GroupID,
		Name:    user.Name,
	})
}

// HandleList returns the members of a group.
//
// HTTP: GET /api/groups/{groupID}/users
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	groupID := r.PathValue("groupID")

	users, err := h.users.List(r.Context(), groupID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toMembers(users))
}

func toMembers(users []model.User) []memberResponse {
	members := make([]memberResponse, 0, len(users))
	for _, u := range users {
		members = append(members, memberResponse{ID: u.ID, Name: u.Name})
	}
	return members
}
