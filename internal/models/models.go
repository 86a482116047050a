package models

import (
	"regexp"
	"time"
)

// Booking statuses.
const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// TimestampLayout is the format used for all persisted timestamps.
const TimestampLayout = "2006-01-02 15:04:05"

// Now returns the current time formatted with TimestampLayout.
func Now() string {
	return time.Now().Format(TimestampLayout)
}

// User is a directory record, keyed by email (case-sensitive).
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Contact   string `json:"contact"`
	CreatedAt string `json:"createdAt"`
	LastLogin string `json:"lastLogin"`
}

// Booking is a ledger record. Bookings are never deleted; cancellation
// is a soft transition of Status to StatusCancelled.
type Booking struct {
	ID          string `json:"id"`
	UserEmail   string `json:"userEmail"`
	Date        string `json:"date"`     // YYYY-MM-DD
	TimeSlot    string `json:"timeSlot"` // e.g. "09:00-10:00"
	GuestName   string `json:"guestName"`
	Purpose     string `json:"purpose"`
	Status      string `json:"status"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
	CancelledAt string `json:"cancelledAt,omitempty"`
}

// IsActive reports whether the booking counts against its slot.
func (b *Booking) IsActive() bool {
	return b.Status != StatusCancelled
}

// SameSlot reports whether the booking occupies the given (date, timeSlot) pair.
func (b *Booking) SameSlot(date, timeSlot string) bool {
	return b.Date == date && b.TimeSlot == timeSlot
}

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailRe.MatchString(s)
}
