package handlers

import (
	"context"
	"time"

	"github.com/AtanuDevOps/blood-project/internal/models"
)

// DonorDirectory is the donor account/profile surface handlers depend on.
// Satisfied by both the in-memory and the Mongo donor services.
type DonorDirectory interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.DonorProfile, error)
	Login(ctx context.Context, phone, password string) (*models.DonorProfile, error)
	GetByID(ctx context.Context, id string) (*models.DonorProfile, error)
	Search(ctx context.Context, filter models.DonorSearchFilter) ([]*models.DonorProfile, error)
	RecordDonation(ctx context.Context, donorID string, now time.Time) (*models.DonorProfile, error)
	Availability(ctx context.Context, donorID string, now time.Time) (models.Availability, error)
}

// ContactDirectory is the contact-request workflow surface: the request state
// machine, the chat threads it unlocks, and their message logs.
type ContactDirectory interface {
	SubmitRequest(ctx context.Context, donorID, requesterID, requesterName string) (*models.ContactRequest, error)
	Decide(ctx context.Context, callerID, requestID, decision string) (*models.ContactRequest, error)
	SendMessage(ctx context.Context, threadID, senderID, text string) (*models.Message, error)
	GetRequest(ctx context.Context, donorID, requesterID string) (*models.ContactRequest, error)
	ListRequestsForDonor(ctx context.Context, donorID string) ([]*models.ContactRequest, error)
	Thread(ctx context.Context, threadID, callerID string) (*models.ChatThread, error)
	ListThreadsForUser(ctx context.Context, userID string) ([]*models.ChatThread, error)
	ListMessages(ctx context.Context, threadID, callerID string) ([]*models.Message, error)
}

// NotificationInbox is the per-user notification feed surface.
type NotificationInbox interface {
	ListForRecipient(ctx context.Context, recipientID string) ([]*models.Notification, error)
	UnreadCount(ctx context.Context, recipientID string) (int, error)
	MarkRead(ctx context.Context, recipientID, notificationID string) error
}
