package models

import "time"

// ChatThread is a message channel unlocked when a contact request is approved.
// Its id is the originating contact request id, which makes creation naturally
// idempotent: approving twice maps to the same document.
type ChatThread struct {
	ID          string    `json:"id" bson:"_id"`
	DonorID     string    `json:"donor_id" bson:"donor_id"`
	RequesterID string    `json:"requester_id" bson:"requester_id"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

// Participant reports whether userID is one of the two thread members.
func (t *ChatThread) Participant(userID string) bool {
	return userID == t.DonorID || userID == t.RequesterID
}

// Other returns the participant opposite to userID.
func (t *ChatThread) Other(userID string) string {
	if userID == t.DonorID {
		return t.RequesterID
	}
	return t.DonorID
}

// Message is one entry in a thread's append-only log, ordered by CreatedAt.
type Message struct {
	ID        string    `json:"id" bson:"_id"`
	ThreadID  string    `json:"thread_id" bson:"thread_id"`
	SenderID  string    `json:"sender_id" bson:"sender_id"`
	Text      string    `json:"text" bson:"text"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// SendMessageRequest is the body of a message send. SenderID may be omitted by
// authenticated callers.
type SendMessageRequest struct {
	SenderID string `json:"sender_id"`
	Text     string `json:"text"`
}
