package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserPassword(t *testing.T) {
	u := &User{Username: "admin"}
	require.NoError(t, u.SetPassword("Admin@123"))

	assert.NotEqual(t, "Admin@123", u.Password)
	assert.True(t, u.CheckPassword("Admin@123"))
	assert.False(t, u.CheckPassword("admin@123"))
}

func TestUserSanitize(t *testing.T) {
	email := "house@example.org"
	spec := "Diagnostics"
	u := &User{Username: "ghouse", Password: "hash", Email: &email, Specialization: &spec, Role: RoleDoctor, Experience: 20}

	s := u.Sanitize()
	assert.Equal(t, "house@example.org", s.Email)
	assert.Equal(t, "Diagnostics", s.Specialization)
	assert.Equal(t, 20, s.Experience)
}

func TestSpecializationOrDefault(t *testing.T) {
	empty := ""
	cardio := "Cardiology"

	assert.Equal(t, NoSpecialization, (&User{}).SpecializationOrDefault())
	assert.Equal(t, NoSpecialization, (&User{Specialization: &empty}).SpecializationOrDefault())
	assert.Equal(t, "Cardiology", (&User{Specialization: &cardio}).SpecializationOrDefault())
}

func TestRoleAndStatusValid(t *testing.T) {
	assert.True(t, RoleDoctor.Valid())
	assert.False(t, Role("nurse").Valid())

	for _, s := range []AppointmentStatus{StatusPending, StatusBooked, StatusCompleted, StatusCancelled} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, AppointmentStatus("confirmed").Valid())
}
