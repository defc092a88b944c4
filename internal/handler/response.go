package handler

// Response helpers shared by all handlers. Every endpoint sends JSON through
// writeJSON, and every failure goes through writeError so the error body
// always has the same shape:
//
//	{"error": "conflict", "message": "gift already claimed by another user"}
//
// The machine-readable type lets the frontend branch without parsing prose,
// and the message is safe to show to people.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/queregalo/queregalo/internal/apperror"
)

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`   // Machine-readable error type (e.g., "not_found")
	Message string `json:"message"` // Human-readable description
}

// successResponse is the body for state transitions that have no entity to
// return (lock, unlock, delete).
type successResponse struct {
	Success bool `json:"success"`
}

// writeJSON sends a JSON response with the given status code. Headers and
// status must be set before the first body write, hence the order here.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already gone out — all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to an HTTP status code and sends it.
//
// This is the only place that knows both vocabularies: the service layer
// speaks apperror sentinels, the wire speaks status codes. errors.Is walks
// the wrapped chain, so services are free to annotate errors with %w.
//
//	ErrValidation   → 400  (bad input)
//	ErrForbidden    → 403  (release by non-claimer, claiming your own gift)
//	ErrInvalidActor → 403  (claimant unknown or from another group)
//	ErrNotFound     → 404
//	ErrConflict     → 409  (claim lost — someone else holds the lock)
//	anything else   → 500, with the internal detail kept out of the body
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errorType = "not_found"
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
			errorType = "forbidden"
		case errors.Is(err, apperror.ErrInvalidActor):
			status = http.StatusForbidden
			errorType = "invalid_actor"
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
			errorType = "conflict"
		case errors.Is(err, apperror.ErrUnavailable):
			status = http.StatusInternalServerError
			errorType = "store_unavailable"
		}

		writeJSON(w, status, ErrorResponse{
			Error:   errorType,
			Message: appErr.Message,
		})
		return
	}

	// Unknown error — never leak internal details (SQL, file paths) to clients.
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}
