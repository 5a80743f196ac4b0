package services

import (
	"math"
	"time"

	"github.com/AtanuDevOps/blood-project/internal/models"
)

// CooldownDays is the recovery period after a recorded donation.
const CooldownDays = 180

// NextAvailableAfter returns the end of the cooldown window opened by a
// donation at the given time.
func NextAvailableAfter(donatedAt time.Time) time.Time {
	return donatedAt.AddDate(0, 0, CooldownDays)
}

// EvaluateAvailability reports whether a donor can donate at now. A donor is in
// cooldown iff nextAvailable is non-nil and strictly in the future. Remaining
// days use ceiling math so a partial day still counts as a full day, which is
// what a day-granularity display needs.
func EvaluateAvailability(nextAvailable *time.Time, now time.Time) models.Availability {
	if nextAvailable == nil || !nextAvailable.After(now) {
		return models.Availability{Available: true}
	}
	days := int(math.Ceil(nextAvailable.Sub(now).Hours() / 24))
	return models.Availability{
		Available:             false,
		CooldownDaysRemaining: days,
	}
}
