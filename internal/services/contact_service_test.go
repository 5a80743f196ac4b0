package services

import (
	"context"
	"errors"
	"testing"

	"github.com/AtanuDevOps/blood-project/internal/models"
)

func newContactFixture() (*ContactService, *NotificationService) {
	notifications := NewNotificationService(nil)
	return NewContactService(notifications, nil), notifications
}

func TestSubmitRequestCreatesPendingAndNotifiesDonor(t *testing.T) {
	ctx := context.Background()
	contacts, notifications := newContactFixture()

	req, err := contacts.SubmitRequest(ctx, "donor-1", "anon_abc", "Rahim")
	if err != nil {
		t.Fatalf("SubmitRequest: %v", err)
	}

	if req.ID != "donor-1_anon_abc" {
		t.Errorf("request id = %q, want %q", req.ID, "donor-1_anon_abc")
	}
	if req.Status != models.RequestPending {
		t.Errorf("status = %q, want %q", req.Status, models.RequestPending)
	}

	feed, err := notifications.ListForRecipient(ctx, "donor-1")
	if err != nil {
		t.Fatalf("ListForRecipient: %v", err)
	}
	if len(feed) != 1 {
		t.Fatalf("donor feed has %d notifications, want 1", len(feed))
	}
	if feed[0].Kind != models.NotificationRequest {
		t.Errorf("notification kind = %q, want %q", feed[0].Kind, models.NotificationRequest)
	}
}

func TestSubmitRequestDefaultsAnonymousName(t *testing.T) {
	ctx := context.Background()
	contacts, _ := newContactFixture()

	req, err := contacts.SubmitRequest(ctx, "donor-1", "anon_abc", "   ")
	if err != nil {
		t.Fatalf("SubmitRequest: %v", err)
	}
	if req.RequesterName != "Anonymous" {
		t.Errorf("requester name = %q, want Anonymous", req.RequesterName)
	}
}

func TestSubmitRequestRequiresBothParticipants(t *testing.T) {
	ctx := context.Background()
	contacts, _ := newContactFixture()

	if _, err := contacts.SubmitRequest(ctx, "", "anon_abc", "x"); !errors.Is(err, ErrMissingParticipant) {
		t.Errorf("empty donor: err = %v, want ErrMissingParticipant", err)
	}
	if _, err := contacts.SubmitRequest(ctx, "donor-1", "", "x"); !errors.Is(err, ErrMissingParticipant) {
		t.Errorf("empty requester: err = %v, want ErrMissingParticipant", err)
	}
}

func TestResubmitResetsToPending(t *testing.T) {
	ctx := context.Background()
	contacts, _ := newContactFixture()

	for _, decision := range []string{models.RequestRejected, models.RequestApproved} {
		req, err := contacts.SubmitRequest(ctx, "donor-1", "anon_abc", "Rahim")
		if err != nil {
			t.Fatalf("SubmitRequest: %v", err)
		}
		if _, err := contacts.Decide(ctx, "donor-1", req.ID, decision); err != nil {
			t.Fatalf("Decide(%s): %v", decision, err)
		}

		again, err := contacts.SubmitRequest(ctx, "donor-1", "anon_abc", "Rahim")
		if err != nil {
			t.Fatalf("resubmit after %s: %v", decision, err)
		}
		if again.Status != models.RequestPending {
			t.Errorf("status after resubmit over %s = %q, want pending", decision, again.Status)
		}
	}
}

func TestApproveUnlocksChatExactlyOnce(t *testing.T) {
	ctx := context.Background()
	contacts, _ := newContactFixture()

	req, _ := contacts.SubmitRequest(ctx, "donor-1", "anon_abc", "Rahim")

	if _, err := contacts.Decide(ctx, "donor-1", req.ID, models.RequestApproved); err != nil {
		t.Fatalf("Decide: %v", err)
	}

	thread, err := contacts.Thread(ctx, req.ID, "donor-1")
	if err != nil {
		t.Fatalf("Thread after approve: %v", err)
	}
	if thread.DonorID != "donor-1" || thread.RequesterID != "anon_abc" {
		t.Errorf("thread participants = (%q, %q)", thread.DonorID, thread.RequesterID)
	}

	if _, err := contacts.SendMessage(ctx, req.ID, "anon_abc", "hello"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	// A second approve must not create a fresh thread or lose the log.
	if _, err := contacts.Decide(ctx, "donor-1", req.ID, models.RequestApproved); err != nil {
		t.Fatalf("second Decide: %v", err)
	}
	msgs, err := contacts.ListMessages(ctx, req.ID, "donor-1")
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 1 {
		t.Errorf("thread has %d messages after double approve, want 1", len(msgs))
	}

	threads, _ := contacts.ListThreadsForUser(ctx, "donor-1")
	if len(threads) != 1 {
		t.Errorf("donor has %d threads, want 1", len(threads))
	}
}

func TestRejectDoesNotUnlockChat(t *testing.T) {
	ctx := context.Background()
	contacts, notifications := newContactFixture()

	req, _ := contacts.SubmitRequest(ctx, "donor-1", "anon_abc", "Rahim")
	if _, err := contacts.Decide(ctx, "donor-1", req.ID, models.RequestRejected); err != nil {
		t.Fatalf("Decide: %v", err)
	}

	if _, err := contacts.Thread(ctx, req.ID, "anon_abc"); !errors.Is(err, ErrThreadNotFound) {
		t.Errorf("Thread after reject: err = %v, want ErrThreadNotFound", err)
	}

	feed, _ := notifications.ListForRecipient(ctx, "anon_abc")
	if len(feed) != 1 || feed[0].Kind != models.NotificationReject {
		t.Errorf("requester feed = %+v, want one reject notification", feed)
	}
}

func TestDecideAuthorization(t *testing.T) {
	ctx := context.Background()
	contacts, _ := newContactFixture()

	req, _ := contacts.SubmitRequest(ctx, "donor-1", "anon_abc", "Rahim")

	if _, err := contacts.Decide(ctx, "donor-1", req.ID, "maybe"); !errors.Is(err, ErrInvalidDecision) {
		t.Errorf("bad decision: err = %v, want ErrInvalidDecision", err)
	}
	if _, err := contacts.Decide(ctx, "donor-1", "missing", models.RequestApproved); !errors.Is(err, ErrRequestNotFound) {
		t.Errorf("unknown request: err = %v, want ErrRequestNotFound", err)
	}
	if _, err := contacts.Decide(ctx, "someone-else", req.ID, models.RequestApproved); !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("wrong donor: err = %v, want ErrNotAuthorized", err)
	}

	// The failed attempts must not have touched the request.
	current, _ := contacts.GetRequest(ctx, "donor-1", "anon_abc")
	if current.Status != models.RequestPending {
		t.Errorf("status after failed decisions = %q, want pending", current.Status)
	}
}

func TestSendMessageGuards(t *testing.T) {
	ctx := context.Background()
	contacts, _ := newContactFixture()

	req, _ := contacts.SubmitRequest(ctx, "donor-1", "anon_abc", "Rahim")
	contacts.Decide(ctx, "donor-1", req.ID, models.RequestApproved)

	if _, err := contacts.SendMessage(ctx, "missing", "donor-1", "hi"); !errors.Is(err, ErrThreadNotFound) {
		t.Errorf("unknown thread: err = %v, want ErrThreadNotFound", err)
	}
	if _, err := contacts.SendMessage(ctx, req.ID, "intruder", "hi"); !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("non-participant: err = %v, want ErrNotAuthorized", err)
	}
	if _, err := contacts.SendMessage(ctx, req.ID, "donor-1", "   \n "); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("blank text: err = %v, want ErrEmptyMessage", err)
	}

	// None of the rejected sends may appear in the log.
	msgs, err := contacts.ListMessages(ctx, req.ID, "donor-1")
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("thread has %d messages, want 0", len(msgs))
	}
}

func TestSendMessageNotifiesOtherParticipant(t *testing.T) {
	ctx := context.Background()
	contacts, notifications := newContactFixture()

	req, _ := contacts.SubmitRequest(ctx, "donor-1", "anon_abc", "Rahim")
	contacts.Decide(ctx, "donor-1", req.ID, models.RequestApproved)

	msg, err := contacts.SendMessage(ctx, req.ID, "anon_abc", "  need B+ this friday  ")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if msg.Text != "need B+ this friday" {
		t.Errorf("text = %q, want trimmed", msg.Text)
	}

	feed, _ := notifications.ListForRecipient(ctx, "donor-1")
	var messageNotices int
	for _, n := range feed {
		if n.Kind == models.NotificationMessage {
			messageNotices++
			if n.SenderID != "anon_abc" {
				t.Errorf("sender = %q, want anon_abc", n.SenderID)
			}
		}
	}
	if messageNotices != 1 {
		t.Errorf("donor got %d message notifications, want 1", messageNotices)
	}
}

func TestThreadAndMessagesParticipantGated(t *testing.T) {
	ctx := context.Background()
	contacts, _ := newContactFixture()

	req, _ := contacts.SubmitRequest(ctx, "donor-1", "anon_abc", "Rahim")
	contacts.Decide(ctx, "donor-1", req.ID, models.RequestApproved)

	if _, err := contacts.Thread(ctx, req.ID, "intruder"); !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("Thread: err = %v, want ErrNotAuthorized", err)
	}
	if _, err := contacts.ListMessages(ctx, req.ID, "intruder"); !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("ListMessages: err = %v, want ErrNotAuthorized", err)
	}
}

func TestListRequestsForDonor(t *testing.T) {
	ctx := context.Background()
	contacts, _ := newContactFixture()

	contacts.SubmitRequest(ctx, "donor-1", "anon_a", "A")
	contacts.SubmitRequest(ctx, "donor-1", "anon_b", "B")
	contacts.SubmitRequest(ctx, "donor-2", "anon_a", "A")

	inbox, err := contacts.ListRequestsForDonor(ctx, "donor-1")
	if err != nil {
		t.Fatalf("ListRequestsForDonor: %v", err)
	}
	if len(inbox) != 2 {
		t.Fatalf("inbox has %d requests, want 2", len(inbox))
	}
	for _, r := range inbox {
		if r.DonorID != "donor-1" {
			t.Errorf("inbox leaked request for donor %q", r.DonorID)
		}
	}
}

func TestGetRequestUnknownPair(t *testing.T) {
	ctx := context.Background()
	contacts, _ := newContactFixture()

	if _, err := contacts.GetRequest(ctx, "donor-1", "anon_x"); !errors.Is(err, ErrRequestNotFound) {
		t.Errorf("err = %v, want ErrRequestNotFound", err)
	}
}
