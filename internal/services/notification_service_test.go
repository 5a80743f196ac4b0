package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AtanuDevOps/blood-project/internal/models"
)

func TestNotifyAndList(t *testing.T) {
	ctx := context.Background()
	s := NewNotificationService(nil)

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	first, err := s.Notify(ctx, models.Notification{
		RecipientID: "donor-1",
		SenderID:    "anon_a",
		Kind:        models.NotificationRequest,
		Text:        "first",
		CreatedAt:   base,
	})
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if first.ID == "" {
		t.Error("notification id not assigned")
	}

	s.Notify(ctx, models.Notification{
		RecipientID: "donor-1",
		SenderID:    "anon_b",
		Kind:        models.NotificationMessage,
		Text:        "second",
		CreatedAt:   base.Add(time.Minute),
	})
	s.Notify(ctx, models.Notification{
		RecipientID: "donor-2",
		Kind:        models.NotificationRequest,
		Text:        "other recipient",
		CreatedAt:   base,
	})

	feed, err := s.ListForRecipient(ctx, "donor-1")
	if err != nil {
		t.Fatalf("ListForRecipient: %v", err)
	}
	if len(feed) != 2 {
		t.Fatalf("feed has %d entries, want 2", len(feed))
	}
	if feed[0].Text != "second" || feed[1].Text != "first" {
		t.Errorf("feed not newest first: %q, %q", feed[0].Text, feed[1].Text)
	}

	empty, _ := s.ListForRecipient(ctx, "nobody")
	if len(empty) != 0 {
		t.Errorf("unknown recipient feed has %d entries, want 0", len(empty))
	}
}

func TestUnreadCountAndMarkRead(t *testing.T) {
	ctx := context.Background()
	s := NewNotificationService(nil)

	n1, _ := s.Notify(ctx, models.Notification{RecipientID: "donor-1", Kind: models.NotificationRequest, Text: "a"})
	s.Notify(ctx, models.Notification{RecipientID: "donor-1", Kind: models.NotificationMessage, Text: "b"})

	count, err := s.UnreadCount(ctx, "donor-1")
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if count != 2 {
		t.Errorf("unread = %d, want 2", count)
	}

	if err := s.MarkRead(ctx, "donor-1", n1.ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	count, _ = s.UnreadCount(ctx, "donor-1")
	if count != 1 {
		t.Errorf("unread after MarkRead = %d, want 1", count)
	}

	// Marking twice is a no-op.
	if err := s.MarkRead(ctx, "donor-1", n1.ID); err != nil {
		t.Errorf("second MarkRead: %v", err)
	}

	if err := s.MarkRead(ctx, "donor-1", "missing"); !errors.Is(err, ErrNotificationNotFound) {
		t.Errorf("unknown id: err = %v, want ErrNotificationNotFound", err)
	}
	if err := s.MarkRead(ctx, "intruder", n1.ID); !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("wrong recipient: err = %v, want ErrNotAuthorized", err)
	}
}

func TestNotifyPublishesToHub(t *testing.T) {
	ctx := context.Background()
	hub := NewHub()
	s := NewNotificationService(hub)

	sub := hub.Subscribe(NotificationsTopic("donor-1"))
	defer sub.Cancel()

	s.Notify(ctx, models.Notification{RecipientID: "donor-1", Kind: models.NotificationAccept, Text: "approved"})

	select {
	case event := <-sub.C:
		if event.Kind != models.NotificationAccept {
			t.Errorf("event kind = %q, want %q", event.Kind, models.NotificationAccept)
		}
	default:
		t.Error("no event published to recipient topic")
	}
}
