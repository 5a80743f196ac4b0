package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/AtanuDevOps/blood-project/internal/middleware"
	"github.com/AtanuDevOps/blood-project/internal/models"
	"github.com/AtanuDevOps/blood-project/internal/services"
)

// StreamHandler serves the realtime views over server-sent events. Each open
// stream holds exactly one hub subscription, cancelled when the client
// disconnects; reconnecting therefore replaces the old handler instead of
// stacking a second one.
type StreamHandler struct {
	hub      *services.Hub
	contacts ContactDirectory
}

func NewStreamHandler(hub *services.Hub, contacts ContactDirectory) *StreamHandler {
	return &StreamHandler{
		hub:      hub,
		contacts: contacts,
	}
}

// Requests streams the authenticated donor's inbox changes.
func (h *StreamHandler) Requests(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}
	h.stream(w, r, services.RequestsTopic(userID))
}

// Chat streams new messages in a thread to a participant.
func (h *StreamHandler) Chat(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatId")

	callerID := callerIdentity(r, "")
	if callerID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}
	if _, err := h.contacts.Thread(r.Context(), chatID, callerID); err != nil {
		writeServiceError(w, err)
		return
	}
	h.stream(w, r, services.ChatTopic(chatID))
}

// Notifications streams the caller's notification feed.
func (h *StreamHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	recipientID := callerIdentity(r, "")
	if recipientID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}
	h.stream(w, r, services.NotificationsTopic(recipientID))
}

func (h *StreamHandler) stream(w http.ResponseWriter, r *http.Request, topic string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Streaming unsupported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	sub := h.hub.Subscribe(topic)
	defer sub.Cancel()

	keepalive := time.NewTicker(30 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepalive.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case event, ok := <-sub.C:
			if !ok {
				return
			}
			payload, err := json.Marshal(event.Data)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Kind, payload)
			flusher.Flush()
		}
	}
}
