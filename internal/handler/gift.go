package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/queregalo/queregalo/internal/service"
)

// GiftHandler serves the gift endpoints, including the two lock transitions.
//
// Gifts never leave this layer in their raw storage shape: responses carry
// the claimed/claimedByMe booleans instead of locked_by, so a gift's owner
// cannot learn who reserved it by reading their own wish list endpoint.
type GiftHandler struct {
	gifts  *service.GiftService
	logger *slog.Logger
}

// NewGiftHandler creates a GiftHandler.
func NewGiftHandler(gifts *service.GiftService, logger *slog.Logger) *GiftHandler {
	return &GiftHandler{gifts: gifts, logger: logger}
}

type giftRequest struct {
	Name     string `json:"name"`
	Price    int    `json:"price"`
	Location string `json:"location"`
}

type giftResponse struct {
	GiftID   string `json:"giftId"`
	UserID   string `json:"userId"`
	Name     string `json:"name"`
	Price    int    `json:"price"`
	Location string `json:"location"`
	Claimed  bool   `json:"claimed"`
}

type lockRequest struct {
	LockedBy string `json:"lockedBy"`
}

type unlockRequest struct {
	UnlockedBy string `json:"unlockedBy"`
}

// HandleCreate adds a gift to a user's wish list.
//
// HTTP: POST /api/groups/{groupID}/users/{userID}/gifts
// BODY: {"name": "Bici", "price": 150, "location": "TiendaX"}
func (h *GiftHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	groupID := r.PathValue("groupID")
	userID := r.PathValue("userID")

	var req giftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid gift JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid JSON body",
		})
		return
	}

	gift, err := h.gifts.Create(r.Context(), groupID, userID, req.Name, req.Price, req.Location)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, giftResponse{
		GiftID:   gift.ID,
		UserID:   gift.UserID,
		Name:     gift.Name,
		Price:    gift.Price,
		Location: gift.Location,
		Claimed:  false, // new gifts start unclaimed
	})
}

// HandleListByUser returns a user's own wish list, owner-projected: each gift
// carries an anonymous claimed flag only.
//
// HTTP: GET /api/groups/{groupID}/users/{userID}/gifts
func (h *GiftHandler) HandleListByUser(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")

	views, err := h.gifts.ListOwn(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, views)
}

// HandleListByGroup returns all gifts in a group with owner names, projected
// for the viewer named in the query string.
//
// HTTP: GET /api/groups/{groupID}/gifts?viewer={userID}
func (h *GiftHandler) HandleListByGroup(w http.ResponseWriter, r *http.Request) {
	groupID := r.PathValue("groupID")
	viewerID := r.URL.Query().Get("viewer")

	views, err := h.gifts.ListGroup(r.Context(), groupID, viewerID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, views)
}

// HandleLock claims a gift for the user in the request body.
//
// HTTP: PUT /api/gifts/{giftID}/lock
// BODY: {"lockedBy": "<userID>"}
//
// 200 {"success":true} on a won (or repeated) claim, 409 when the gift is
// already reserved by someone else — including the case where a competing
// claim won the race mid-request.
func (h *GiftHandler) HandleLock(w http.ResponseWriter, r *http.Request) {
	giftID := r.PathValue("giftID")

	var req lockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid lock JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid JSON body",
		})
		return
	}

	if err := h.gifts.Claim(r.Context(), giftID, req.LockedBy); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// HandleUnlock releases a claim. Only the user who holds it may do so.
//
// HTTP: PUT /api/gifts/{giftID}/unlock
// BODY: {"unlockedBy": "<userID>"}
func (h *GiftHandler) HandleUnlock(w http.ResponseWriter, r *http.Request) {
	giftID := r.PathValue("giftID")

	var req unlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid unlock JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid JSON body",
		})
		return
	}

	if err := h.gifts.Release(r.Context(), giftID, req.UnlockedBy); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// HandleUpdate replaces a gift's fields. The edit drops any claim on the gift.
//
// HTTP: PUT /api/gifts/{giftID}
// BODY: {"name": "...", "price": 123, "location": "..."}
func (h *GiftHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	giftID := r.PathValue("giftID")

	var req giftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid gift JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid JSON body",
		})
		return
	}

	gift, err := h.gifts.Update(r.Context(), giftID, req.Name, req.Price, req.Location)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, giftResponse{
		GiftID:   gift.ID,
		UserID:   gift.UserID,
		Name:     gift.Name,
		Price:    gift.Price,
		Location: gift.Location,
		Claimed:  false, // edits always clear the claim
	})
}

// HandleDelete removes a gift. Idempotent — deleting twice succeeds twice.
//
// HTTP: DELETE /api/gifts/{giftID}
func (h *GiftHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	giftID := r.PathValue("giftID")

	if err := h.gifts.Delete(r.Context(), giftID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}
