package models

import (
	"math"
	"time"
)

// ExpiryWindowDays is how far ahead a document counts as expiring soon.
const ExpiryWindowDays = 30

// DaysUntil returns the whole days from now to date, rounded up.
func DaysUntil(date, now time.Time) int {
	return int(math.Ceil(date.Sub(now).Hours() / 24))
}

// IsExpiringSoon reports whether date falls within the next ExpiryWindowDays.
// Past and zero dates are not expiring soon.
func IsExpiringSoon(date, now time.Time) bool {
	if date.IsZero() {
		return false
	}
	days := DaysUntil(date, now)
	return days >= 0 && days <= ExpiryWindowDays
}

// IsExpired reports whether a non-zero date is already in the past.
func IsExpired(date, now time.Time) bool {
	return !date.IsZero() && DaysUntil(date, now) < 0
}
