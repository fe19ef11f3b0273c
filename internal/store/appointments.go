package store

import (
	"context"
	"fmt"
	"time"

	"clinic-appointments-server/internal/models"

	"gorm.io/gorm"
)

// AppointmentFilter narrows appointment queries. Zero fields do not filter.
type AppointmentFilter struct {
	PatientID string
	DoctorID  string
	Statuses  []models.AppointmentStatus
	// DateFrom keeps appointments whose date is at or after the instant.
	DateFrom *time.Time
}

func (f AppointmentFilter) apply(q *gorm.DB) *gorm.DB {
	if f.PatientID != "" {
		q = q.Where("patient_id = ?", f.PatientID)
	}
	if f.DoctorID != "" {
		q = q.Where("doctor_id = ?", f.DoctorID)
	}
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	if f.DateFrom != nil {
		q = q.Where("date >= ?", f.DateFrom.UTC())
	}
	return q
}

// AppointmentStore is the appointment store.
type AppointmentStore struct {
	db *gorm.DB
}

// Create inserts a.
func (s *AppointmentStore) Create(ctx context.Context, a *models.Appointment) error {
	if err := s.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("create appointment: %w", translate(err))
	}
	return nil
}

// FindByID returns the appointment with id.
func (s *AppointmentStore) FindByID(ctx context.Context, id string) (*models.Appointment, error) {
	var a models.Appointment
	if err := s.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("appointment %s: %w", id, translate(err))
	}
	return &a, nil
}

// Save persists every column of a.
func (s *AppointmentStore) Save(ctx context.Context, a *models.Appointment) error {
	if err := s.db.WithContext(ctx).Omit("Patient", "Doctor").Save(a).Error; err != nil {
		return fmt.Errorf("save appointment %s: %w", a.ID, translate(err))
	}
	return nil
}

// List returns the appointments matching f ordered by date, with the
// patient and doctor attached.
func (s *AppointmentStore) List(ctx context.Context, f AppointmentFilter) ([]models.Appointment, error) {
	var out []models.Appointment
	q := f.apply(s.db.WithContext(ctx)).Preload("Patient").Preload("Doctor").Order("date asc")
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return out, nil
}

// ListWithParticipants returns every appointment with its patient and doctor,
// newest first.
func (s *AppointmentStore) ListWithParticipants(ctx context.Context) ([]models.Appointment, error) {
	var out []models.Appointment
	q := s.db.WithContext(ctx).Preload("Patient").Preload("Doctor").Order("date desc")
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return out, nil
}

// Count counts appointments matching f.
func (s *AppointmentStore) Count(ctx context.Context, f AppointmentFilter) (int64, error) {
	if f.DateFrom != nil {
		rows, err := s.datedRows(ctx, f)
		if err != nil {
			return 0, fmt.Errorf("count appointments: %w", err)
		}
		return int64(len(rows)), nil
	}
	var n int64
	if err := f.apply(s.db.WithContext(ctx).Model(&models.Appointment{})).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count appointments: %w", err)
	}
	return n, nil
}

// CountDistinctPatients counts the distinct patient ids among appointments
// matching f.
func (s *AppointmentStore) CountDistinctPatients(ctx context.Context, f AppointmentFilter) (int64, error) {
	if f.DateFrom != nil {
		rows, err := s.datedRows(ctx, f)
		if err != nil {
			return 0, fmt.Errorf("count distinct patients: %w", err)
		}
		seen := make(map[string]struct{}, len(rows))
		for _, r := range rows {
			seen[r.PatientID] = struct{}{}
		}
		return int64(len(seen)), nil
	}
	var n int64
	q := f.apply(s.db.WithContext(ctx).Model(&models.Appointment{})).Distinct("patient_id")
	if err := q.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count distinct patients: %w", err)
	}
	return n, nil
}

type datedRow struct {
	PatientID string
	Date      models.Timestamp
}

// datedRows returns the rows matching f whose date parses and is not before
// f.DateFrom. A text column (sqlite) compares unparsable values as strings,
// so the SQL range alone is not trusted.
func (s *AppointmentStore) datedRows(ctx context.Context, f AppointmentFilter) ([]datedRow, error) {
	var rows []datedRow
	q := f.apply(s.db.WithContext(ctx).Model(&models.Appointment{})).Select("patient_id", "date")
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	from := f.DateFrom.UTC()
	out := rows[:0]
	for _, r := range rows {
		if r.Date.Valid && !r.Date.Time.Before(from) {
			out = append(out, r)
		}
	}
	return out, nil
}

// DatesSince returns the date of every appointment at or after since.
// Unparsable stored values come back invalid.
func (s *AppointmentStore) DatesSince(ctx context.Context, since time.Time) ([]models.Timestamp, error) {
	var rows []struct {
		Date models.Timestamp
	}
	err := s.db.WithContext(ctx).Model(&models.Appointment{}).
		Select("date").
		Where("date >= ?", since.UTC()).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list appointment dates: %w", err)
	}
	out := make([]models.Timestamp, len(rows))
	for i, r := range rows {
		out[i] = r.Date
	}
	return out, nil
}

// DeleteByOwner removes every appointment where ownerID is the patient (role
// patient) or the doctor (role doctor). Other roles own no appointments.
func (s *AppointmentStore) DeleteByOwner(ctx context.Context, ownerID string, role models.Role) (int64, error) {
	var column string
	switch role {
	case models.RolePatient:
		column = "patient_id"
	case models.RoleDoctor:
		column = "doctor_id"
	default:
		return 0, nil
	}
	res := s.db.WithContext(ctx).Where(column+" = ?", ownerID).Delete(&models.Appointment{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete appointments of %s %s: %w", role, ownerID, res.Error)
	}
	return res.RowsAffected, nil
}
