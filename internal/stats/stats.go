// Package stats computes the dashboard statistics. Every call rescans the
// stores; nothing is cached.
package stats

import (
	"context"
	"time"

	"clinic-appointments-server/internal/models"
	"clinic-appointments-server/internal/store"
)

// Global is the admin dashboard summary.
type Global struct {
	TotalPatients           int64                 `json:"totalPatients"`
	TotalDoctors            int64                 `json:"totalDoctors"`
	TotalAppointments       int64                 `json:"totalAppointments"`
	AppointmentsToday       int64                 `json:"appointmentsToday"`
	AppointmentsByMonth     []MonthCount          `json:"appointmentsByMonth"`
	DoctorsBySpecialization []SpecializationCount `json:"doctorsBySpecialization"`
	PatientGrowth           []MonthCount          `json:"patientGrowth"`
}

// SpecializationCount pairs a specialization with the number of doctors in it.
type SpecializationCount struct {
	Specialization string `json:"specialization"`
	Count          int    `json:"count"`
}

// Doctor is a doctor's workload. Only booked and completed appointments count.
type Doctor struct {
	AppointmentsToday int64 `json:"appointmentsToday"`
	TotalAppointments int64 `json:"totalAppointments"`
	PatientsToday     int64 `json:"patientsToday"`
	TotalPatients     int64 `json:"totalPatients"`
}

// DoctorWithStats is a doctor record joined with its workload.
type DoctorWithStats struct {
	models.UserSanitized
	Doctor
}

// Patient summarises one patient's appointments. PendingAppointments counts
// appointments in the booked status.
type Patient struct {
	TotalAppointments     int64 `json:"totalAppointments"`
	CompletedAppointments int64 `json:"completedAppointments"`
	PendingAppointments   int64 `json:"pendingAppointments"`
}

// Service computes statistics from the stores.
type Service struct {
	users        UserReader
	appointments AppointmentReader
	loc          *time.Location
}

// NewService creates a stats Service. Calendar days and months are taken in
// loc; a nil loc means UTC.
func NewService(users UserReader, appointments AppointmentReader, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{users: users, appointments: appointments, loc: loc}
}

// GlobalStats computes the admin dashboard summary as of t.
func (s *Service) GlobalStats(ctx context.Context, t time.Time) (*Global, error) {
	t = t.In(s.loc)
	var (
		g   Global
		err error
	)

	if g.TotalPatients, err = s.users.CountByRole(ctx, models.RolePatient); err != nil {
		return nil, err
	}
	if g.TotalDoctors, err = s.users.CountByRole(ctx, models.RoleDoctor); err != nil {
		return nil, err
	}
	if g.TotalAppointments, err = s.appointments.Count(ctx, store.AppointmentFilter{}); err != nil {
		return nil, err
	}

	today := midnight(t, s.loc)
	if g.AppointmentsToday, err = s.appointments.Count(ctx, store.AppointmentFilter{DateFrom: &today}); err != nil {
		return nil, err
	}

	keys := MonthWindow(t)
	since := t.AddDate(0, -WindowMonths, 0)

	dates, err := s.appointments.DatesSince(ctx, since)
	if err != nil {
		return nil, err
	}
	g.AppointmentsByMonth = Histogram(keys, dates, s.loc)

	created, err := s.users.CreatedSince(ctx, models.RolePatient, since)
	if err != nil {
		return nil, err
	}
	g.PatientGrowth = Histogram(keys, created, s.loc)

	specs, err := s.users.Specializations(ctx)
	if err != nil {
		return nil, err
	}
	g.DoctorsBySpecialization = groupSpecializations(specs)

	return &g, nil
}

// groupSpecializations counts doctors per specialization in order of first
// appearance. Unset values fall into the NoSpecialization bucket.
func groupSpecializations(specs []*string) []SpecializationCount {
	out := []SpecializationCount{}
	index := map[string]int{}
	for _, sp := range specs {
		name := models.NoSpecialization
		if sp != nil && *sp != "" {
			name = *sp
		}
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, SpecializationCount{Specialization: name})
		}
		out[i].Count++
	}
	return out
}

// PerDoctorStats computes the workload of doctorID as of t. An id that does
// not resolve to a doctor yields store.ErrNotFound.
func (s *Service) PerDoctorStats(ctx context.Context, doctorID string, t time.Time) (*Doctor, error) {
	if _, err := s.users.FindByRole(ctx, doctorID, models.RoleDoctor); err != nil {
		return nil, err
	}
	return s.doctorWorkload(ctx, doctorID, midnight(t, s.loc))
}

func (s *Service) doctorWorkload(ctx context.Context, doctorID string, today time.Time) (*Doctor, error) {
	all := store.AppointmentFilter{DoctorID: doctorID, Statuses: models.WorkloadStatuses}
	fromToday := all
	fromToday.DateFrom = &today

	var (
		d   Doctor
		err error
	)
	if d.AppointmentsToday, err = s.appointments.Count(ctx, fromToday); err != nil {
		return nil, err
	}
	if d.TotalAppointments, err = s.appointments.Count(ctx, all); err != nil {
		return nil, err
	}
	if d.PatientsToday, err = s.appointments.CountDistinctPatients(ctx, fromToday); err != nil {
		return nil, err
	}
	if d.TotalPatients, err = s.appointments.CountDistinctPatients(ctx, all); err != nil {
		return nil, err
	}
	return &d, nil
}

// DoctorsWithStats lists every doctor with its workload as of t.
func (s *Service) DoctorsWithStats(ctx context.Context, t time.Time) ([]DoctorWithStats, error) {
	doctors, err := s.users.List(ctx, models.RoleDoctor)
	if err != nil {
		return nil, err
	}

	today := midnight(t, s.loc)
	out := make([]DoctorWithStats, 0, len(doctors))
	for i := range doctors {
		d, err := s.doctorWorkload(ctx, doctors[i].ID, today)
		if err != nil {
			return nil, err
		}
		out = append(out, DoctorWithStats{UserSanitized: doctors[i].Sanitize(), Doctor: *d})
	}
	return out, nil
}

// PatientDetail summarises the appointments of patientID. An id that does
// not resolve to a patient yields store.ErrNotFound.
func (s *Service) PatientDetail(ctx context.Context, patientID string) (*Patient, error) {
	if _, err := s.users.FindByRole(ctx, patientID, models.RolePatient); err != nil {
		return nil, err
	}

	var (
		p   Patient
		err error
	)
	if p.TotalAppointments, err = s.appointments.Count(ctx, store.AppointmentFilter{PatientID: patientID}); err != nil {
		return nil, err
	}
	completed := store.AppointmentFilter{PatientID: patientID, Statuses: []models.AppointmentStatus{models.StatusCompleted}}
	if p.CompletedAppointments, err = s.appointments.Count(ctx, completed); err != nil {
		return nil, err
	}
	booked := store.AppointmentFilter{PatientID: patientID, Statuses: []models.AppointmentStatus{models.StatusBooked}}
	if p.PendingAppointments, err = s.appointments.Count(ctx, booked); err != nil {
		return nil, err
	}
	return &p, nil
}
