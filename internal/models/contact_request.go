package models

import "time"

// Contact request status values. A request cycles back to pending when the
// requester submits again; approved and rejected are terminal only until then.
const (
	RequestPending  = "pending"
	RequestApproved = "approved"
	RequestRejected = "rejected"
)

// RequestID builds the composite document id for a (donor, requester) pair.
// One active request per pair: re-submission overwrites the same document
// instead of creating a duplicate.
func RequestID(donorID, requesterID string) string {
	return donorID + "_" + requesterID
}

// ContactRequest is the approval-gated handshake required before a requester
// may see a donor's phone number. Keyed by RequestID(donorID, requesterID).
type ContactRequest struct {
	ID            string    `json:"id" bson:"_id"`
	DonorID       string    `json:"donor_id" bson:"donor_id"`
	RequesterID   string    `json:"requester_id" bson:"requester_id"`
	RequesterName string    `json:"requester_name" bson:"requester_name"`
	Status        string    `json:"status" bson:"status"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
}

// SubmitContactRequest is the body of a contact request submission. RequesterID
// may be omitted by authenticated callers; the handler fills it from the token.
type SubmitContactRequest struct {
	RequesterID    string `json:"requester_id"`
	RequesterName  string `json:"requester_name"`
	RecaptchaToken string `json:"recaptcha_token,omitempty"`
}

// DecisionRequest carries the donor's approve/reject choice.
type DecisionRequest struct {
	Decision string `json:"decision"`
}

func (r *DecisionRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Decision != RequestApproved && r.Decision != RequestRejected {
		errors["decision"] = "Decision must be approved or rejected"
	}

	return errors
}
