package lifecycle

import (
	"context"
	"encoding/json"
	"time"

	"clinic-appointments-server/internal/audit"
	"clinic-appointments-server/internal/models"

	"github.com/rs/zerolog"
)

// UserFinder resolves identity store records by id and role.
type UserFinder interface {
	FindByRole(ctx context.Context, id string, role models.Role) (*models.User, error)
}

// AppointmentRepository is the part of the appointment store the lifecycle needs.
type AppointmentRepository interface {
	Create(ctx context.Context, a *models.Appointment) error
	FindByID(ctx context.Context, id string) (*models.Appointment, error)
	Save(ctx context.Context, a *models.Appointment) error
}

// OwnerDeleter removes a user together with every appointment it owns.
type OwnerDeleter interface {
	DeleteOwnerCascade(ctx context.Context, ownerID string, role models.Role) (int64, error)
}

// Service applies lifecycle operations against the stores.
type Service struct {
	users        UserFinder
	appointments AppointmentRepository
	owners       OwnerDeleter
	recorder     audit.Recorder
	log          zerolog.Logger
	now          func() time.Time
}

// NewService creates a lifecycle Service.
func NewService(users UserFinder, appointments AppointmentRepository, owners OwnerDeleter, recorder audit.Recorder, log zerolog.Logger) *Service {
	return &Service{
		users:        users,
		appointments: appointments,
		owners:       owners,
		recorder:     recorder,
		log:          log.With().Str("component", "lifecycle").Logger(),
		now:          time.Now,
	}
}

// BookRequest describes a new appointment.
type BookRequest struct {
	PatientID string
	DoctorID  string
	Date      models.Timestamp
	Status    models.AppointmentStatus
	Actor     string
}

// Book creates an appointment after resolving both participants. The
// initial status is pending unless booked is requested.
func (s *Service) Book(ctx context.Context, req BookRequest) (*models.Appointment, error) {
	if req.PatientID == req.DoctorID {
		return nil, invalid("doctorId", "a user cannot book an appointment with themselves")
	}
	if !req.Date.Valid {
		return nil, invalid("date", "must be a valid date and time")
	}
	status := req.Status
	switch status {
	case "":
		status = models.StatusPending
	case models.StatusPending, models.StatusBooked:
	default:
		return nil, invalid("status", "new appointments must be pending or booked, got %q", status)
	}

	if _, err := s.users.FindByRole(ctx, req.PatientID, models.RolePatient); err != nil {
		return nil, err
	}
	if _, err := s.users.FindByRole(ctx, req.DoctorID, models.RoleDoctor); err != nil {
		return nil, err
	}

	a := &models.Appointment{
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		Date:      req.Date,
		Status:    status,
	}
	if err := s.appointments.Create(ctx, a); err != nil {
		return nil, err
	}

	s.record(ctx, audit.Event{Kind: audit.KindBooked, AppointmentID: a.ID, To: string(status), Actor: req.Actor})
	return a, nil
}

// Transition changes the status of the appointment with id.
func (s *Service) Transition(ctx context.Context, id string, next models.AppointmentStatus, actor string) (*models.Appointment, error) {
	a, err := s.appointments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	prev, err := TransitionStatus(a, next)
	if err != nil {
		return nil, err
	}
	if err := s.appointments.Save(ctx, a); err != nil {
		return nil, err
	}

	s.record(ctx, audit.Event{Kind: audit.KindStatusChanged, AppointmentID: a.ID, From: string(prev), To: string(next), Actor: actor})
	return a, nil
}

// SubmitFeedback attaches feedback to a completed appointment. Only the
// appointment's patient may submit it.
func (s *Service) SubmitFeedback(ctx context.Context, id, patientID string, feedback map[string]interface{}) (*models.Appointment, error) {
	if len(feedback) == 0 {
		return nil, invalid("feedback", "must not be empty")
	}
	a, err := s.appointments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.PatientID != patientID {
		return nil, ErrNotParticipant
	}
	if a.Status != models.StatusCompleted {
		return nil, invalid("status", "feedback can only be left on completed appointments")
	}

	raw, err := json.Marshal(feedback)
	if err != nil {
		return nil, invalid("feedback", "cannot be encoded: %v", err)
	}
	a.Feedback = raw
	if err := s.appointments.Save(ctx, a); err != nil {
		return nil, err
	}

	s.record(ctx, audit.Event{Kind: audit.KindFeedback, AppointmentID: a.ID, Actor: patientID})
	return a, nil
}

// CascadeDeleteOwner deletes every appointment where ownerID is the patient
// (role patient) or the doctor (role doctor), then the user. Both phases run
// in one store transaction so no appointment is left referencing a deleted
// user.
func (s *Service) CascadeDeleteOwner(ctx context.Context, ownerID string, role models.Role, actor string) (int64, error) {
	if !role.Valid() {
		return 0, invalid("role", "unknown role %q", role)
	}
	removed, err := s.owners.DeleteOwnerCascade(ctx, ownerID, role)
	if err != nil {
		return 0, err
	}

	s.log.Info().Str("owner_id", ownerID).Str("role", string(role)).Int64("appointments", removed).Msg("owner deleted")
	s.record(ctx, audit.Event{Kind: audit.KindOwnerDeleted, OwnerID: ownerID, Role: string(role), Count: removed, Actor: actor})
	return removed, nil
}

func (s *Service) record(ctx context.Context, ev audit.Event) {
	if s.recorder == nil {
		return
	}
	ev.At = s.now().UTC()
	if err := s.recorder.Record(ctx, ev); err != nil {
		s.log.Warn().Err(err).Str("kind", string(ev.Kind)).Msg("audit record failed")
	}
}
