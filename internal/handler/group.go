// Package handler contains the HTTP layer: request parsing, response
// encoding, and nothing else. Business rules live in internal/service.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/queregalo/queregalo/internal/service"
)

// GroupHandler serves group creation and lookup.
type GroupHandler struct {
	groups *service.GroupService
	logger *slog.Logger
}

// NewGroupHandler creates a GroupHandler.
func NewGroupHandler(groups *service.GroupService, logger *slog.Logger) *GroupHandler {
	return &GroupHandler{groups: groups, logger: logger}
}

type createGroupRequest struct {
	Name string `json:"name"`
}

type createGroupResponse struct {
	GroupID string `json:"groupId"`
	Name    string `json:"name"`
}

// HandleCreate creates a new group.
//
// HTTP: POST /api/groups
// BODY: {"name": "Reyes2024"}
//
// The response's groupId is the shareable invite link token.
func (h *GroupHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid group JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid JSON body",
		})
		return
	}

	group, err := h.groups.Create(r.Context(), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, createGroupResponse{
		GroupID: group.ID,
		Name:    group.Name,
	})
}

// HandleGet returns a group by ID.
//
// HTTP: GET /api/groups/{groupID}
func (h *GroupHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	groupID := r.PathValue("groupID")

	group, err := h.groups.Get(r.Context(), groupID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, group)
}
