package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AtanuDevOps/blood-project/internal/middleware"
	"github.com/AtanuDevOps/blood-project/internal/models"
	"github.com/AtanuDevOps/blood-project/internal/services"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeServiceError maps service sentinels onto HTTP statuses. Store failures
// are surfaced as retryable 503s, never escalated.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrNotAuthenticated):
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Authentication required"))
	case errors.Is(err, services.ErrNotAuthorized):
		writeJSON(w, http.StatusForbidden, models.NewErrorResponse("Not authorized"))
	case errors.Is(err, services.ErrDonorNotFound),
		errors.Is(err, services.ErrRequestNotFound),
		errors.Is(err, services.ErrThreadNotFound),
		errors.Is(err, services.ErrNotificationNotFound):
		writeJSON(w, http.StatusNotFound, models.NewErrorResponse(err.Error()))
	case errors.Is(err, services.ErrPhoneExists):
		writeJSON(w, http.StatusConflict, models.NewErrorResponse("Phone already registered"))
	case errors.Is(err, services.ErrEmptyMessage),
		errors.Is(err, services.ErrMissingParticipant),
		errors.Is(err, services.ErrInvalidDecision):
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse(err.Error()))
	case errors.Is(err, services.ErrStoreUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, models.NewErrorResponse("Temporarily unavailable, please try again"))
	default:
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Internal error"))
	}
}

// callerIdentity resolves who is acting: the authenticated user when a token
// was presented, otherwise the anonymous requester id the client supplied.
// Guests carry a locally persisted pseudo-id, so both paths funnel into the
// same service calls.
func callerIdentity(r *http.Request, fallback string) string {
	if userID := middleware.GetUserID(r.Context()); userID != "" {
		return userID
	}
	if fallback != "" {
		return fallback
	}
	return r.URL.Query().Get("requester_id")
}
