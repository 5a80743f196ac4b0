package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AtanuDevOps/blood-project/internal/models"
)

// Notifier is the sink the contact workflow emits into. Both notification
// service variants satisfy it.
type Notifier interface {
	Notify(ctx context.Context, n models.Notification) (*models.Notification, error)
}

// NotificationService keeps per-user notification feeds in memory and pushes
// new entries to hub subscribers.
type NotificationService struct {
	mu            sync.RWMutex
	notifications map[string]*models.Notification // id -> notification
	byRecipient   map[string][]string             // recipientID -> ids, append order
	hub           *Hub
}

func NewNotificationService(hub *Hub) *NotificationService {
	return &NotificationService{
		notifications: make(map[string]*models.Notification),
		byRecipient:   make(map[string][]string),
		hub:           hub,
	}
}

// Notify stores the notification and publishes it to the recipient's stream.
// The id and timestamp are assigned here so callers only describe the event.
func (s *NotificationService) Notify(ctx context.Context, n models.Notification) (*models.Notification, error) {
	s.mu.Lock()

	n.ID = uuid.New().String()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	stored := n

	s.notifications[stored.ID] = &stored
	s.byRecipient[stored.RecipientID] = append(s.byRecipient[stored.RecipientID], stored.ID)
	s.mu.Unlock()

	if s.hub != nil {
		s.hub.Publish(Event{
			Topic: NotificationsTopic(stored.RecipientID),
			Kind:  stored.Kind,
			Data:  stored,
		})
	}
	return &stored, nil
}

// ListForRecipient returns the recipient's notifications, newest first.
func (s *NotificationService) ListForRecipient(ctx context.Context, recipientID string) ([]*models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byRecipient[recipientID]
	results := make([]*models.Notification, 0, len(ids))
	for _, id := range ids {
		if n, ok := s.notifications[id]; ok {
			results = append(results, n)
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})
	return results, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, recipientID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, id := range s.byRecipient[recipientID] {
		if n, ok := s.notifications[id]; ok && !n.Read {
			count++
		}
	}
	return count, nil
}

// MarkRead flips the read flag. Only the recipient may do so.
func (s *NotificationService) MarkRead(ctx context.Context, recipientID, notificationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, exists := s.notifications[notificationID]
	if !exists {
		return ErrNotificationNotFound
	}
	if n.RecipientID != recipientID {
		return ErrNotAuthorized
	}
	n.Read = true
	return nil
}
