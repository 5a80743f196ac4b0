package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AtanuDevOps/blood-project/internal/models"
)

type NotificationHandler struct {
	notifications NotificationInbox
}

func NewNotificationHandler(notifications NotificationInbox) *NotificationHandler {
	return &NotificationHandler{
		notifications: notifications,
	}
}

// List returns the caller's feed, newest first. Anonymous requesters pass
// their pseudo-id, so accept/reject notices reach guests too.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	recipientID := callerIdentity(r, "")
	if recipientID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}

	notifications, err := h.notifications.ListForRecipient(r.Context(), recipientID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(notifications))
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	recipientID := callerIdentity(r, "")
	if recipientID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}

	count, err := h.notifications.UnreadCount(r.Context(), recipientID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(models.UnreadCountResponse{Count: count}))
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	recipientID := callerIdentity(r, "")
	if recipientID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}

	notificationID := chi.URLParam(r, "notificationId")

	if err := h.notifications.MarkRead(r.Context(), recipientID, notificationID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]string{"message": "Notification marked read"}))
}
