package models

import "time"

// Notification kinds, one per contact-workflow transition.
const (
	NotificationRequest = "request"
	NotificationAccept  = "accept"
	NotificationReject  = "reject"
	NotificationMessage = "message"
)

// Notification is created as a side effect of a state transition and mutated
// only to flip Read. Delivery is at-least-once: the status write and the
// notification write are independent.
type Notification struct {
	ID          string    `json:"id" bson:"_id"`
	RecipientID string    `json:"recipient_id" bson:"recipient_id"`
	SenderID    string    `json:"sender_id" bson:"sender_id"`
	Kind        string    `json:"kind" bson:"kind"`
	Text        string    `json:"text" bson:"text"`
	Link        string    `json:"link,omitempty" bson:"link,omitempty"`
	Read        bool      `json:"read" bson:"read"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

type UnreadCountResponse struct {
	Count int `json:"count"`
}
