package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AtanuDevOps/blood-project/internal/models"
)

// ContactService owns the contact-request state machine, the chat threads it
// unlocks, and their message logs, all in memory. The Mongo-backed variant has
// the same transitions.
//
// State machine per (donor, requester) pair:
//
//	absent   --submit--> pending
//	pending  --decide--> approved | rejected
//	any      --submit--> pending   (overwrite; an approved pair's thread survives)
type ContactService struct {
	mu       sync.RWMutex
	requests map[string]*models.ContactRequest // request id -> request
	threads  map[string]*models.ChatThread     // thread id (= request id) -> thread
	messages map[string][]*models.Message      // thread id -> ordered log
	notifier Notifier
	hub      *Hub
}

func NewContactService(notifier Notifier, hub *Hub) *ContactService {
	return &ContactService{
		requests: make(map[string]*models.ContactRequest),
		threads:  make(map[string]*models.ChatThread),
		messages: make(map[string][]*models.Message),
		notifier: notifier,
		hub:      hub,
	}
}

// SubmitRequest upserts the pending request for the (donor, requester) pair,
// overwriting any prior approved or rejected outcome, and notifies the donor.
// Calling it twice re-stamps CreatedAt; that is intentional, it supports
// re-asking. The donor's availability is not re-checked here.
func (s *ContactService) SubmitRequest(ctx context.Context, donorID, requesterID, requesterName string) (*models.ContactRequest, error) {
	if donorID == "" || requesterID == "" {
		return nil, ErrMissingParticipant
	}

	name := strings.TrimSpace(requesterName)
	if name == "" {
		name = "Anonymous"
	}

	req := &models.ContactRequest{
		ID:            models.RequestID(donorID, requesterID),
		DonorID:       donorID,
		RequesterID:   requesterID,
		RequesterName: name,
		Status:        models.RequestPending,
		CreatedAt:     time.Now().UTC(),
	}

	s.mu.Lock()
	s.requests[req.ID] = req
	s.mu.Unlock()

	s.notify(ctx, models.Notification{
		RecipientID: donorID,
		SenderID:    requesterID,
		Kind:        models.NotificationRequest,
		Text:        fmt.Sprintf("%s requested your contact details", name),
		Link:        "/profile",
	})
	s.publishRequest(req)

	return req, nil
}

// Decide records the donor's approve/reject choice. Approval creates the chat
// thread keyed by the request id if it does not exist yet, so a double approve
// never produces a second thread. The caller must be the request's donor.
func (s *ContactService) Decide(ctx context.Context, callerID, requestID, decision string) (*models.ContactRequest, error) {
	if decision != models.RequestApproved && decision != models.RequestRejected {
		return nil, ErrInvalidDecision
	}

	s.mu.Lock()
	req, exists := s.requests[requestID]
	if !exists {
		s.mu.Unlock()
		return nil, ErrRequestNotFound
	}
	if req.DonorID != callerID {
		s.mu.Unlock()
		return nil, ErrNotAuthorized
	}

	req.Status = decision

	if decision == models.RequestApproved {
		if _, ok := s.threads[requestID]; !ok {
			s.threads[requestID] = &models.ChatThread{
				ID:          requestID,
				DonorID:     req.DonorID,
				RequesterID: req.RequesterID,
				CreatedAt:   time.Now().UTC(),
			}
		}
	}
	s.mu.Unlock()

	if decision == models.RequestApproved {
		s.notify(ctx, models.Notification{
			RecipientID: req.RequesterID,
			SenderID:    req.DonorID,
			Kind:        models.NotificationAccept,
			Text:        "Your contact request was approved. You can now chat with the donor.",
			Link:        "/chat/" + requestID,
		})
	} else {
		s.notify(ctx, models.Notification{
			RecipientID: req.RequesterID,
			SenderID:    req.DonorID,
			Kind:        models.NotificationReject,
			Text:        "Your contact request was rejected by the donor.",
		})
	}
	s.publishRequest(req)

	return req, nil
}

// SendMessage appends to a thread's log. The sender must be a participant and
// the text must be non-empty after trimming; both are checked before anything
// is written. The other participant gets a message notification.
func (s *ContactService) SendMessage(ctx context.Context, threadID, senderID, text string) (*models.Message, error) {
	s.mu.Lock()
	thread, exists := s.threads[threadID]
	if !exists {
		s.mu.Unlock()
		return nil, ErrThreadNotFound
	}
	if !thread.Participant(senderID) {
		s.mu.Unlock()
		return nil, ErrNotAuthorized
	}

	body := strings.TrimSpace(text)
	if body == "" {
		s.mu.Unlock()
		return nil, ErrEmptyMessage
	}

	msg := &models.Message{
		ID:        uuid.New().String(),
		ThreadID:  threadID,
		SenderID:  senderID,
		Text:      body,
		CreatedAt: time.Now().UTC(),
	}
	s.messages[threadID] = append(s.messages[threadID], msg)
	other := thread.Other(senderID)
	s.mu.Unlock()

	s.notify(ctx, models.Notification{
		RecipientID: other,
		SenderID:    senderID,
		Kind:        models.NotificationMessage,
		Text:        "You have a new message",
		Link:        "/chat/" + threadID,
	})
	if s.hub != nil {
		s.hub.Publish(Event{
			Topic: ChatTopic(threadID),
			Kind:  models.NotificationMessage,
			Data:  msg,
		})
	}

	return msg, nil
}

// GetRequest returns the current request for a (donor, requester) pair, which
// is how a visitor checks whether contact has been unlocked.
func (s *ContactService) GetRequest(ctx context.Context, donorID, requesterID string) (*models.ContactRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	req, exists := s.requests[models.RequestID(donorID, requesterID)]
	if !exists {
		return nil, ErrRequestNotFound
	}
	return req, nil
}

// ListRequestsForDonor returns the donor's inbox, newest first.
func (s *ContactService) ListRequestsForDonor(ctx context.Context, donorID string) ([]*models.ContactRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]*models.ContactRequest, 0)
	for _, req := range s.requests {
		if req.DonorID == donorID {
			results = append(results, req)
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})
	return results, nil
}

// Thread returns a thread by id. Only participants may see it.
func (s *ContactService) Thread(ctx context.Context, threadID, callerID string) (*models.ChatThread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	thread, exists := s.threads[threadID]
	if !exists {
		return nil, ErrThreadNotFound
	}
	if !thread.Participant(callerID) {
		return nil, ErrNotAuthorized
	}
	return thread, nil
}

// ListThreadsForUser returns every thread the user participates in, newest
// first.
func (s *ContactService) ListThreadsForUser(ctx context.Context, userID string) ([]*models.ChatThread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]*models.ChatThread, 0)
	for _, t := range s.threads {
		if t.Participant(userID) {
			results = append(results, t)
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})
	return results, nil
}

// ListMessages returns the thread's log in creation order. Only participants
// may read it.
func (s *ContactService) ListMessages(ctx context.Context, threadID, callerID string) ([]*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	thread, exists := s.threads[threadID]
	if !exists {
		return nil, ErrThreadNotFound
	}
	if !thread.Participant(callerID) {
		return nil, ErrNotAuthorized
	}

	msgs := s.messages[threadID]
	out := make([]*models.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

// notify emits a notification as a side effect of a transition. The status
// write has already happened; delivery is at-least-once and a failure here
// must not roll the transition back, so it is only logged.
func (s *ContactService) notify(ctx context.Context, n models.Notification) {
	if s.notifier == nil {
		return
	}
	if _, err := s.notifier.Notify(ctx, n); err != nil {
		log.Printf("contact: notification %s -> %s failed: %v", n.Kind, n.RecipientID, err)
	}
}

func (s *ContactService) publishRequest(req *models.ContactRequest) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(Event{
		Topic: RequestsTopic(req.DonorID),
		Kind:  req.Status,
		Data:  req,
	})
}
