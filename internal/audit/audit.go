// Package audit records appointment lifecycle events: bookings, status
// changes, feedback and owner cascades.
package audit

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// Kind names a lifecycle event.
type Kind string

const (
	KindBooked        Kind = "appointment_booked"
	KindStatusChanged Kind = "status_changed"
	KindFeedback      Kind = "feedback_submitted"
	KindOwnerDeleted  Kind = "owner_deleted"
)

// Event is a single audit record.
type Event struct {
	Kind          Kind      `json:"kind" bson:"kind"`
	AppointmentID string    `json:"appointmentId,omitempty" bson:"appointment_id,omitempty"`
	OwnerID       string    `json:"ownerId,omitempty" bson:"owner_id,omitempty"`
	Role          string    `json:"role,omitempty" bson:"role,omitempty"`
	From          string    `json:"from,omitempty" bson:"from,omitempty"`
	To            string    `json:"to,omitempty" bson:"to,omitempty"`
	Actor         string    `json:"actor,omitempty" bson:"actor,omitempty"`
	Count         int64     `json:"count,omitempty" bson:"count,omitempty"`
	At            time.Time `json:"at" bson:"at"`
}

// Recorder persists events.
type Recorder interface {
	Record(ctx context.Context, ev Event) error
}

// HistoryReader returns the events recorded for one appointment, oldest first.
type HistoryReader interface {
	History(ctx context.Context, appointmentID string) ([]Event, error)
}

// LogRecorder writes events to a zerolog logger.
type LogRecorder struct {
	log zerolog.Logger
}

// NewLogRecorder creates a LogRecorder.
func NewLogRecorder(log zerolog.Logger) *LogRecorder {
	return &LogRecorder{log: log.With().Str("component", "audit").Logger()}
}

// Record implements Recorder.
func (r *LogRecorder) Record(_ context.Context, ev Event) error {
	evt := r.log.Info().Str("kind", string(ev.Kind)).Time("at", ev.At)
	if ev.AppointmentID != "" {
		evt = evt.Str("appointment_id", ev.AppointmentID)
	}
	if ev.OwnerID != "" {
		evt = evt.Str("owner_id", ev.OwnerID).Str("role", ev.Role).Int64("count", ev.Count)
	}
	if ev.From != "" || ev.To != "" {
		evt = evt.Str("from", ev.From).Str("to", ev.To)
	}
	if ev.Actor != "" {
		evt = evt.Str("actor", ev.Actor)
	}
	evt.Msg("audit event")
	return nil
}

// Multi fans an event out to several recorders.
type Multi []Recorder

// Record implements Recorder. Every recorder is attempted.
func (m Multi) Record(ctx context.Context, ev Event) error {
	var errs []error
	for _, r := range m {
		if err := r.Record(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// History returns the history of the first recorder able to serve it.
func (m Multi) History(ctx context.Context, appointmentID string) ([]Event, error) {
	for _, r := range m {
		if h, ok := r.(HistoryReader); ok {
			return h.History(ctx, appointmentID)
		}
	}
	return nil, ErrNoHistory
}

// ErrNoHistory is returned when no configured recorder keeps history.
var ErrNoHistory = errors.New("audit history is not configured")
