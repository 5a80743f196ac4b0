package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/AtanuDevOps/blood-project/internal/middleware"
	"github.com/AtanuDevOps/blood-project/internal/models"
	"github.com/AtanuDevOps/blood-project/internal/services"
)

type RequestHandler struct {
	contacts  ContactDirectory
	recaptcha *services.RecaptchaVerifier
}

func NewRequestHandler(contacts ContactDirectory, recaptcha *services.RecaptchaVerifier) *RequestHandler {
	return &RequestHandler{
		contacts:  contacts,
		recaptcha: recaptcha,
	}
}

// MintRequester hands a guest a pseudo-id to act under. The web client kept
// this in localStorage; minting it server-side keeps the format in one place.
func (h *RequestHandler) MintRequester(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(models.RequesterResponse{
		RequesterID: "anon_" + uuid.New().String(),
	}))
}

// Submit upserts a contact request for (donor, caller). Re-submission always
// resets the pair to pending, whatever the prior outcome.
func (h *RequestHandler) Submit(w http.ResponseWriter, r *http.Request) {
	donorID := chi.URLParam(r, "donorId")

	var req models.SubmitContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}

	requesterID := callerIdentity(r, req.RequesterID)
	if requesterID == "" {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(map[string]string{
			"requester_id": "Requester id is required for anonymous requests",
		}))
		return
	}

	// Guests go through reCAPTCHA when it is configured; authenticated callers
	// are accountable already.
	if h.recaptcha.Enabled() && middleware.GetUserID(r.Context()) == "" {
		ok, reason, err := h.recaptcha.Verify(r.Context(), req.RecaptchaToken, r.RemoteAddr)
		if err != nil {
			log.Printf("recaptcha verify failed: %v", err)
			writeJSON(w, http.StatusServiceUnavailable, models.NewErrorResponse("Verification unavailable, please try again"))
			return
		}
		if !ok {
			log.Printf("recaptcha rejected submission: %s", reason)
			writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Captcha verification failed"))
			return
		}
	}

	request, err := h.contacts.SubmitRequest(r.Context(), donorID, requesterID, req.RequesterName)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(request))
}

// Status lets a visitor check where their request stands before deciding
// whether the request button should even be shown.
func (h *RequestHandler) Status(w http.ResponseWriter, r *http.Request) {
	donorID := chi.URLParam(r, "donorId")
	requesterID := chi.URLParam(r, "requesterId")

	request, err := h.contacts.GetRequest(r.Context(), donorID, requesterID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(request))
}

// Inbox returns the authenticated donor's requests, newest first.
func (h *RequestHandler) Inbox(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}

	requests, err := h.contacts.ListRequestsForDonor(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(requests))
}

// Decide records the donor's approve/reject choice on a request.
func (h *RequestHandler) Decide(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}

	requestID := chi.URLParam(r, "requestId")

	var req models.DecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}
	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errors))
		return
	}

	request, err := h.contacts.Decide(r.Context(), userID, requestID, req.Decision)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(request))
}
