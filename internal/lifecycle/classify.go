// Package lifecycle classifies appointments into dashboard buckets and owns
// the status-changing and cascade-delete operations.
package lifecycle

import (
	"time"

	"clinic-appointments-server/internal/models"
)

// Classification is the dashboard bucket an appointment falls into.
type Classification string

const (
	Upcoming       Classification = "upcoming"
	Completed      Classification = "completed"
	PendingBilling Classification = "pendingBilling"
	Other          Classification = "other"
)

// IsUpcoming reports whether a is booked or pending with a date after now.
// An appointment without a parsable date is never upcoming.
func IsUpcoming(a *models.Appointment, now time.Time) bool {
	if a.Status != models.StatusBooked && a.Status != models.StatusPending {
		return false
	}
	return a.Date.After(now)
}

// IsCompleted reports whether a has been completed.
func IsCompleted(a *models.Appointment) bool {
	return a.Status == models.StatusCompleted
}

// IsPendingBilling reports whether a is completed but not yet paid.
func IsPendingBilling(a *models.Appointment) bool {
	return a.Status == models.StatusCompleted && !a.Paid
}

// Classify returns the single most specific bucket for a. A completed,
// unpaid appointment is PendingBilling.
func Classify(a *models.Appointment, now time.Time) Classification {
	switch {
	case IsUpcoming(a, now):
		return Upcoming
	case IsPendingBilling(a):
		return PendingBilling
	case IsCompleted(a):
		return Completed
	}
	return Other
}

// Tally counts a set of appointments per bucket. Completed includes the
// appointments also counted in PendingBilling.
type Tally struct {
	Total          int `json:"totalAppointments"`
	Upcoming       int `json:"upcomingAppointments"`
	Completed      int `json:"completedAppointments"`
	PendingBilling int `json:"pendingBills"`
}

// CountByClassification tallies as relative to now.
func CountByClassification(as []models.Appointment, now time.Time) Tally {
	t := Tally{Total: len(as)}
	for i := range as {
		a := &as[i]
		if IsUpcoming(a, now) {
			t.Upcoming++
		}
		if IsCompleted(a) {
			t.Completed++
		}
		if IsPendingBilling(a) {
			t.PendingBilling++
		}
	}
	return t
}
