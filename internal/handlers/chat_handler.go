package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AtanuDevOps/blood-project/internal/middleware"
	"github.com/AtanuDevOps/blood-project/internal/models"
)

type ChatHandler struct {
	contacts ContactDirectory
}

func NewChatHandler(contacts ContactDirectory) *ChatHandler {
	return &ChatHandler{
		contacts: contacts,
	}
}

func (h *ChatHandler) ListThreads(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}

	threads, err := h.contacts.ListThreadsForUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(threads))
}

// ListMessages returns a thread's log in creation order. Anonymous requesters
// identify themselves with their pseudo-id; participants only.
func (h *ChatHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatId")

	callerID := callerIdentity(r, "")
	if callerID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}

	messages, err := h.contacts.ListMessages(r.Context(), chatID, callerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(messages))
}

func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatId")

	var req models.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}

	senderID := callerIdentity(r, req.SenderID)
	if senderID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}

	message, err := h.contacts.SendMessage(r.Context(), chatID, senderID, req.Text)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(message))
}
