package models

import (
	"gorm.io/datatypes"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusBooked    AppointmentStatus = "booked"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// Valid reports whether s is one of the four known statuses.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusBooked, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// WorkloadStatuses are the statuses that count toward a doctor's totals.
var WorkloadStatuses = []AppointmentStatus{StatusBooked, StatusCompleted}

// Appointment represents a scheduled encounter between a patient and a doctor.
// Feedback and Paid are only meaningful once Status is completed.
type Appointment struct {
	BaseModel
	PatientID string            `gorm:"size:36;not null;index:idx_appointments_patient_date,priority:1" json:"patientId"`
	DoctorID  string            `gorm:"size:36;not null;index:idx_appointments_doctor_date,priority:1" json:"doctorId"`
	Date      Timestamp         `gorm:"not null;index:idx_appointments_patient_date,priority:2;index:idx_appointments_doctor_date,priority:2" json:"date"`
	Status    AppointmentStatus `gorm:"size:20;default:'pending'" json:"status"`
	Feedback  datatypes.JSON    `json:"feedback,omitempty"`
	Paid      bool              `gorm:"default:false" json:"paid"`

	// Relations
	Patient *User `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Doctor  *User `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}
