package lifecycle

import (
	"testing"
	"time"

	"clinic-appointments-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func appt(status models.AppointmentStatus, date models.Timestamp, paid bool) models.Appointment {
	return models.Appointment{Status: status, Date: date, Paid: paid}
}

func future() models.Timestamp { return models.NewTimestamp(now.Add(48 * time.Hour)) }
func past() models.Timestamp   { return models.NewTimestamp(now.Add(-48 * time.Hour)) }

func TestClassify(t *testing.T) {
	cases := map[string]struct {
		a    models.Appointment
		want Classification
	}{
		"booked in future":        {appt(models.StatusBooked, future(), false), Upcoming},
		"pending in future":       {appt(models.StatusPending, future(), false), Upcoming},
		"booked in past":          {appt(models.StatusBooked, past(), false), Other},
		"cancelled in future":     {appt(models.StatusCancelled, future(), false), Other},
		"completed in future":     {appt(models.StatusCompleted, future(), true), Completed},
		"completed unpaid":        {appt(models.StatusCompleted, past(), false), PendingBilling},
		"completed paid":          {appt(models.StatusCompleted, past(), true), Completed},
		"booked unparsable date":  {appt(models.StatusBooked, models.ParseTimestamp("not-a-date"), false), Other},
		"completed without date":  {appt(models.StatusCompleted, models.Timestamp{}, false), PendingBilling},
		"booked exactly now":      {appt(models.StatusBooked, models.NewTimestamp(now), false), Other},
		"unknown status upcoming": {appt(models.AppointmentStatus("confirmed"), future(), false), Other},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			a := tc.a
			assert.Equal(t, tc.want, Classify(&a, now))
		})
	}
}

func TestCancelledIsNeverUpcoming(t *testing.T) {
	for _, offset := range []time.Duration{-365 * 24 * time.Hour, -time.Minute, time.Minute, 365 * 24 * time.Hour} {
		a := appt(models.StatusCancelled, models.NewTimestamp(now.Add(offset)), false)
		assert.NotEqual(t, Upcoming, Classify(&a, now))
		assert.False(t, IsUpcoming(&a, now))
	}
}

func TestCountByClassification(t *testing.T) {
	as := []models.Appointment{
		appt(models.StatusBooked, future(), false),
		appt(models.StatusPending, future(), false),
		appt(models.StatusCancelled, future(), false),
		appt(models.StatusCompleted, past(), false),
		appt(models.StatusCompleted, past(), true),
		appt(models.StatusBooked, models.ParseTimestamp("not-a-date"), false),
	}

	got := CountByClassification(as, now)
	assert.Equal(t, Tally{Total: 6, Upcoming: 2, Completed: 2, PendingBilling: 1}, got)
}

func TestCountByClassificationBounds(t *testing.T) {
	statuses := []models.AppointmentStatus{models.StatusPending, models.StatusBooked, models.StatusCompleted, models.StatusCancelled}
	dates := []models.Timestamp{future(), past(), {}}

	var as []models.Appointment
	for i := 0; i < 40; i++ {
		as = append(as, appt(statuses[i%len(statuses)], dates[i%len(dates)], i%3 == 0))

		got := CountByClassification(as, now)
		require.Equal(t, len(as), got.Total)
		assert.LessOrEqual(t, got.Upcoming, got.Total)
		assert.LessOrEqual(t, got.Completed, got.Total)
		assert.LessOrEqual(t, got.PendingBilling, got.Completed)
	}

	assert.Equal(t, Tally{}, CountByClassification(nil, now))
}

func TestTransitionStatusIsPermissive(t *testing.T) {
	all := []models.AppointmentStatus{models.StatusPending, models.StatusBooked, models.StatusCompleted, models.StatusCancelled}
	for _, from := range all {
		for _, to := range all {
			a := models.Appointment{Status: from}
			prev, err := TransitionStatus(&a, to)
			require.NoError(t, err)
			assert.Equal(t, from, prev)
			assert.Equal(t, to, a.Status)
		}
	}
}

func TestTransitionStatusRejectsUnknown(t *testing.T) {
	a := models.Appointment{Status: models.StatusBooked}
	prev, err := TransitionStatus(&a, "rescheduled")

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "status", verr.Field)
	assert.Equal(t, models.StatusBooked, prev)
	assert.Equal(t, models.StatusBooked, a.Status)
}
