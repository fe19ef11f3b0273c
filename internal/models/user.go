package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role enum
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RolePatient:
		return true
	}
	return false
}

// User represents a user in the system
type User struct {
	BaseModel
	Username       string  `gorm:"uniqueIndex;size:100;not null" json:"username"`
	Password       string  `gorm:"size:255;not null" json:"-"` // Never send password in JSON
	Name           string  `gorm:"size:200" json:"name"`
	Email          *string `gorm:"uniqueIndex;size:255" json:"email,omitempty"`
	Phone          string  `gorm:"size:50" json:"phone,omitempty"`
	Role           Role    `gorm:"size:20;index;not null" json:"role"`
	Specialization *string `gorm:"size:100" json:"specialization,omitempty"`
	Experience     int     `gorm:"default:0" json:"experience,omitempty"`
}

// UserSanitized represents the user data that is safe to send in API responses.
type UserSanitized struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Name           string    `json:"name"`
	Email          string    `json:"email,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	Role           Role      `json:"role"`
	Specialization string    `json:"specialization,omitempty"`
	Experience     int       `json:"experience,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// SetPassword hashes a password and sets it on the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the user's hashed password
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// SpecializationOrDefault returns the doctor's specialization, or the
// "No Specialization" bucket label when none is set.
func (u *User) SpecializationOrDefault() string {
	if u.Specialization == nil || *u.Specialization == "" {
		return NoSpecialization
	}
	return *u.Specialization
}

// NoSpecialization groups doctors without a specialization.
const NoSpecialization = "No Specialization"

// Sanitize creates a UserSanitized struct from a User model, excluding sensitive data.
func (u *User) Sanitize() UserSanitized {
	s := UserSanitized{
		ID:         u.ID,
		Username:   u.Username,
		Name:       u.Name,
		Phone:      u.Phone,
		Role:       u.Role,
		Experience: u.Experience,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
	if u.Email != nil {
		s.Email = *u.Email
	}
	if u.Specialization != nil {
		s.Specialization = *u.Specialization
	}
	return s
}
