package handlers

import (
	"testing"

	"clinic-appointments-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRequestToUser(t *testing.T) {
	req := &UserRequest{
		Username:       "  drgrey ",
		Password:       "secret1",
		Name:           "Meredith Grey",
		Email:          "",
		Specialization: "Surgery",
		Experience:     12,
	}

	doctor, err := req.toUser(models.RoleDoctor)
	require.NoError(t, err)
	assert.Equal(t, "drgrey", doctor.Username)
	assert.Nil(t, doctor.Email)
	require.NotNil(t, doctor.Specialization)
	assert.Equal(t, "Surgery", *doctor.Specialization)
	assert.Equal(t, 12, doctor.Experience)
	assert.True(t, doctor.CheckPassword("secret1"))
	assert.NotEqual(t, "secret1", doctor.Password)

	req.Email = "grey@example.org"
	patient, err := req.toUser(models.RolePatient)
	require.NoError(t, err)
	assert.Nil(t, patient.Specialization)
	assert.Zero(t, patient.Experience)
	require.NotNil(t, patient.Email)
	assert.Equal(t, "grey@example.org", *patient.Email)
}

func TestCanAccess(t *testing.T) {
	a := &models.Appointment{PatientID: "p-1", DoctorID: "d-1"}

	assert.True(t, canAccess(a, "anyone", models.RoleAdmin))
	assert.True(t, canAccess(a, "p-1", models.RolePatient))
	assert.True(t, canAccess(a, "d-1", models.RoleDoctor))
	assert.False(t, canAccess(a, "p-2", models.RolePatient))
	assert.False(t, canAccess(a, "p-1", models.RoleDoctor))
	assert.False(t, canAccess(a, "d-1", "nurse"))
}
