package models

import "time"

// Donor availability status values.
const (
	StatusAvailable = "available"
	StatusCooldown  = "cooldown"
)

// BloodGroups is the set of accepted blood group values.
var BloodGroups = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

func IsValidBloodGroup(g string) bool {
	for _, bg := range BloodGroups {
		if g == bg {
			return true
		}
	}
	return false
}

// DonorProfile is the donor record stored in Mongo, keyed by user id.
// NextAvailableDate is nil or exactly 180 days after LastDonationDate.
type DonorProfile struct {
	UserID            string     `json:"user_id" bson:"user_id"`
	Name              string     `json:"name" bson:"name"`
	Phone             string     `json:"phone" bson:"phone"`
	PasswordHash      string     `json:"-" bson:"password_hash"`
	BloodGroup        string     `json:"blood_group" bson:"blood_group"`
	Location          string     `json:"location" bson:"location"`
	Email             string     `json:"email" bson:"email,omitempty"`
	Status            string     `json:"status" bson:"status"`
	LastDonationDate  *time.Time `json:"last_donation_date,omitempty" bson:"last_donation_date,omitempty"`
	NextAvailableDate *time.Time `json:"next_available_date,omitempty" bson:"next_available_date,omitempty"`
	AvatarText        string     `json:"avatar_text" bson:"avatar_text,omitempty"`
	AvatarColor       string     `json:"avatar_color" bson:"avatar_color,omitempty"`
	CreatedAt         time.Time  `json:"created_at" bson:"created_at"`
}

// Availability is the result of evaluating a donor's cooldown window at a
// point in time.
type Availability struct {
	Available             bool `json:"available"`
	CooldownDaysRemaining int  `json:"cooldown_days_remaining"`
}

// PublicDonor is safe to share with other users. Phone is filled in only when
// the viewer's contact request has been approved and the donor is not in
// cooldown; otherwise it stays empty.
type PublicDonor struct {
	UserID            string       `json:"user_id"`
	Name              string       `json:"name"`
	BloodGroup        string       `json:"blood_group"`
	Location          string       `json:"location"`
	Phone             string       `json:"phone,omitempty"`
	Status            string       `json:"status"`
	NextAvailableDate *time.Time   `json:"next_available_date,omitempty"`
	Availability      Availability `json:"availability"`
	AvatarText        string       `json:"avatar_text,omitempty"`
	AvatarColor       string       `json:"avatar_color,omitempty"`
}

// DonorSearchFilter mirrors the dashboard search: case-insensitive substring
// match on name and location, exact match on blood group. Empty fields match
// everything.
type DonorSearchFilter struct {
	Name       string
	Location   string
	BloodGroup string
}
