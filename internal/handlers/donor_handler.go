package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/AtanuDevOps/blood-project/internal/middleware"
	"github.com/AtanuDevOps/blood-project/internal/models"
	"github.com/AtanuDevOps/blood-project/internal/services"
)

type DonorHandler struct {
	donors   DonorDirectory
	contacts ContactDirectory
}

func NewDonorHandler(donors DonorDirectory, contacts ContactDirectory) *DonorHandler {
	return &DonorHandler{
		donors:   donors,
		contacts: contacts,
	}
}

// ListDonors is the directory search. Phone numbers are never included here;
// they are revealed per-donor only after approval.
func (h *DonorHandler) ListDonors(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.DonorSearchFilter{
		Name:       q.Get("name"),
		Location:   q.Get("location"),
		BloodGroup: q.Get("blood_group"),
	}

	donors, err := h.donors.Search(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	now := time.Now().UTC()
	viewerID := middleware.GetUserID(r.Context())

	results := make([]models.PublicDonor, 0, len(donors))
	for _, d := range donors {
		// A logged-in donor does not appear in their own search results.
		if viewerID != "" && d.UserID == viewerID {
			continue
		}
		results = append(results, publicDonor(d, false, now))
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(results))
}

// GetDonor returns one donor's public card. The phone number is included only
// when the caller's contact request is approved and the donor is not in
// cooldown, mirroring the web client's reveal rules.
func (h *DonorHandler) GetDonor(w http.ResponseWriter, r *http.Request) {
	donorID := chi.URLParam(r, "donorId")

	donor, err := h.donors.GetByID(r.Context(), donorID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	now := time.Now().UTC()
	includePhone := false

	if viewerID := callerIdentity(r, ""); viewerID != "" {
		req, err := h.contacts.GetRequest(r.Context(), donorID, viewerID)
		if err == nil && req.Status == models.RequestApproved {
			includePhone = true
		} else if err != nil && !errors.Is(err, services.ErrRequestNotFound) {
			writeServiceError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(publicDonor(donor, includePhone, now)))
}

// RecordDonation stamps "I donated today" for the caller and starts the
// 180-day cooldown. No availability check: re-recording mid-cooldown pushes
// the window out, matching the original behavior.
func (h *DonorHandler) RecordDonation(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}

	donor, err := h.donors.RecordDonation(r.Context(), userID, time.Now().UTC())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(donor))
}

func (h *DonorHandler) MyAvailability(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}

	availability, err := h.donors.Availability(r.Context(), userID, time.Now().UTC())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(availability))
}

func publicDonor(d *models.DonorProfile, includePhone bool, now time.Time) models.PublicDonor {
	availability := services.EvaluateAvailability(d.NextAvailableDate, now)

	pd := models.PublicDonor{
		UserID:            d.UserID,
		Name:              d.Name,
		BloodGroup:        d.BloodGroup,
		Location:          d.Location,
		Status:            d.Status,
		NextAvailableDate: d.NextAvailableDate,
		Availability:      availability,
		AvatarText:        d.AvatarText,
		AvatarColor:       d.AvatarColor,
	}
	// Privacy: a recovering donor's phone stays hidden even for approved pairs.
	if includePhone && availability.Available {
		pd.Phone = d.Phone
	}
	return pd
}
