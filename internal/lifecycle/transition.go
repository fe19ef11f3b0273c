package lifecycle

import (
	"errors"
	"fmt"

	"clinic-appointments-server/internal/models"
)

// ErrNotParticipant is returned when the caller is not the appointment's
// patient or doctor.
var ErrNotParticipant = errors.New("caller is not a participant of this appointment")

// ValidationError reports malformed input. Field names the offending input
// when known.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// TransitionStatus sets a's status to next and returns the previous status.
//
// Any status may move to any other status, including back out of completed
// or cancelled. This looseness is kept on purpose; only values outside the
// four known statuses are rejected. Stricter rules belong in a separate
// policy layered on top.
func TransitionStatus(a *models.Appointment, next models.AppointmentStatus) (models.AppointmentStatus, error) {
	if !next.Valid() {
		return a.Status, invalid("status", "unknown status %q", next)
	}
	prev := a.Status
	a.Status = next
	return prev, nil
}
