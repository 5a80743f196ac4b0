package services

import "errors"

var (
	ErrNotAuthenticated = errors.New("authentication required")
	ErrNotAuthorized    = errors.New("not authorized")

	ErrDonorNotFound        = errors.New("donor not found")
	ErrRequestNotFound      = errors.New("contact request not found")
	ErrThreadNotFound       = errors.New("chat thread not found")
	ErrNotificationNotFound = errors.New("notification not found")

	ErrPhoneExists     = errors.New("phone already registered")
	ErrInvalidPassword = errors.New("invalid password")

	ErrEmptyMessage       = errors.New("message text is empty")
	ErrMissingParticipant = errors.New("donor and requester ids are required")
	ErrInvalidDecision    = errors.New("decision must be approved or rejected")

	// ErrStoreUnavailable wraps transient failures from the backing store.
	// Callers may retry; it is never escalated to a fatal condition.
	ErrStoreUnavailable = errors.New("store unavailable")
)
