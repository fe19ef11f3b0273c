package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"clinic-appointments-server/internal/audit"
	"clinic-appointments-server/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errNotFound = errors.New("not found")

// -- Mocks --

var _ UserFinder = (*mockUsers)(nil)
var _ AppointmentRepository = (*mockAppointments)(nil)
var _ OwnerDeleter = (*mockOwners)(nil)

type mockUsers struct {
	users map[string]*models.User
}

func (m *mockUsers) add(role models.Role) *models.User {
	u := &models.User{Role: role}
	u.ID = uuid.NewString()
	m.users[u.ID] = u
	return u
}

func (m *mockUsers) FindByRole(_ context.Context, id string, role models.Role) (*models.User, error) {
	u, ok := m.users[id]
	if !ok || u.Role != role {
		return nil, fmt.Errorf("%s %s: %w", role, id, errNotFound)
	}
	return u, nil
}

type mockAppointments struct {
	byID    map[string]*models.Appointment
	saveErr error
	saves   int
}

func (m *mockAppointments) Create(_ context.Context, a *models.Appointment) error {
	a.ID = uuid.NewString()
	m.byID[a.ID] = a
	return nil
}

func (m *mockAppointments) FindByID(_ context.Context, id string) (*models.Appointment, error) {
	a, ok := m.byID[id]
	if !ok {
		return nil, errNotFound
	}
	return a, nil
}

func (m *mockAppointments) Save(_ context.Context, a *models.Appointment) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.byID[a.ID] = a
	return nil
}

type mockOwners struct {
	DeleteOwnerCascadeFunc func(ctx context.Context, ownerID string, role models.Role) (int64, error)
}

func (m *mockOwners) DeleteOwnerCascade(ctx context.Context, ownerID string, role models.Role) (int64, error) {
	if m.DeleteOwnerCascadeFunc != nil {
		return m.DeleteOwnerCascadeFunc(ctx, ownerID, role)
	}
	return 0, errors.New("DeleteOwnerCascadeFunc not implemented in mock")
}

type captureRecorder struct {
	events []audit.Event
	err    error
}

func (c *captureRecorder) Record(_ context.Context, ev audit.Event) error {
	c.events = append(c.events, ev)
	return c.err
}

type fixture struct {
	svc   *Service
	users *mockUsers
	appts *mockAppointments
	owner *mockOwners
	rec   *captureRecorder
}

func newFixture() *fixture {
	f := &fixture{
		users: &mockUsers{users: map[string]*models.User{}},
		appts: &mockAppointments{byID: map[string]*models.Appointment{}},
		owner: &mockOwners{},
		rec:   &captureRecorder{},
	}
	f.svc = NewService(f.users, f.appts, f.owner, f.rec, zerolog.Nop())
	return f
}

// -- Book --

func TestBookDefaultsToPending(t *testing.T) {
	f := newFixture()
	p := f.users.add(models.RolePatient)
	d := f.users.add(models.RoleDoctor)

	a, err := f.svc.Book(context.Background(), BookRequest{PatientID: p.ID, DoctorID: d.ID, Date: future(), Actor: p.ID})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, a.Status)
	assert.NotEmpty(t, a.ID)
	assert.False(t, a.Paid)

	require.Len(t, f.rec.events, 1)
	assert.Equal(t, audit.KindBooked, f.rec.events[0].Kind)
	assert.Equal(t, a.ID, f.rec.events[0].AppointmentID)
	assert.False(t, f.rec.events[0].At.IsZero())
}

func TestBookAsBooked(t *testing.T) {
	f := newFixture()
	p := f.users.add(models.RolePatient)
	d := f.users.add(models.RoleDoctor)

	a, err := f.svc.Book(context.Background(), BookRequest{PatientID: p.ID, DoctorID: d.ID, Date: future(), Status: models.StatusBooked})
	require.NoError(t, err)
	assert.Equal(t, models.StatusBooked, a.Status)
}

func TestBookValidation(t *testing.T) {
	f := newFixture()
	p := f.users.add(models.RolePatient)
	d := f.users.add(models.RoleDoctor)

	cases := map[string]BookRequest{
		"self booking":     {PatientID: p.ID, DoctorID: p.ID, Date: future()},
		"unparsable date":  {PatientID: p.ID, DoctorID: d.ID, Date: models.ParseTimestamp("not-a-date")},
		"completed status": {PatientID: p.ID, DoctorID: d.ID, Date: future(), Status: models.StatusCompleted},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Book(context.Background(), req)
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
	assert.Empty(t, f.appts.byID)
}

func TestBookUnknownParticipants(t *testing.T) {
	f := newFixture()
	p := f.users.add(models.RolePatient)
	d := f.users.add(models.RoleDoctor)

	_, err := f.svc.Book(context.Background(), BookRequest{PatientID: d.ID, DoctorID: p.ID, Date: future()})
	assert.ErrorIs(t, err, errNotFound)

	_, err = f.svc.Book(context.Background(), BookRequest{PatientID: p.ID, DoctorID: uuid.NewString(), Date: future()})
	assert.ErrorIs(t, err, errNotFound)
	assert.Empty(t, f.appts.byID)
}

// -- Transition --

func TestTransition(t *testing.T) {
	f := newFixture()
	a := &models.Appointment{Status: models.StatusCompleted}
	require.NoError(t, f.appts.Create(context.Background(), a))

	got, err := f.svc.Transition(context.Background(), a.ID, models.StatusPending, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)

	require.Len(t, f.rec.events, 1)
	ev := f.rec.events[0]
	assert.Equal(t, audit.KindStatusChanged, ev.Kind)
	assert.Equal(t, "completed", ev.From)
	assert.Equal(t, "pending", ev.To)
	assert.Equal(t, "admin-1", ev.Actor)
}

func TestTransitionErrors(t *testing.T) {
	f := newFixture()
	a := &models.Appointment{Status: models.StatusBooked}
	require.NoError(t, f.appts.Create(context.Background(), a))

	_, err := f.svc.Transition(context.Background(), uuid.NewString(), models.StatusCancelled, "")
	assert.ErrorIs(t, err, errNotFound)

	_, err = f.svc.Transition(context.Background(), a.ID, "archived", "")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Zero(t, f.appts.saves)

	f.appts.saveErr = errors.New("connection reset")
	_, err = f.svc.Transition(context.Background(), a.ID, models.StatusCancelled, "")
	assert.EqualError(t, err, "connection reset")
	assert.Empty(t, f.rec.events)
}

func TestAuditFailureDoesNotFailRequest(t *testing.T) {
	f := newFixture()
	f.rec.err = errors.New("mongo down")
	a := &models.Appointment{Status: models.StatusBooked}
	require.NoError(t, f.appts.Create(context.Background(), a))

	_, err := f.svc.Transition(context.Background(), a.ID, models.StatusCancelled, "")
	assert.NoError(t, err)
}

// -- Feedback --

func TestSubmitFeedback(t *testing.T) {
	f := newFixture()
	p := f.users.add(models.RolePatient)
	a := &models.Appointment{PatientID: p.ID, Status: models.StatusCompleted}
	require.NoError(t, f.appts.Create(context.Background(), a))

	got, err := f.svc.SubmitFeedback(context.Background(), a.ID, p.ID, map[string]interface{}{"rating": 4, "comment": "ok"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"rating":4,"comment":"ok"}`, string(got.Feedback))
	assert.Equal(t, audit.KindFeedback, f.rec.events[0].Kind)
}

func TestSubmitFeedbackRules(t *testing.T) {
	f := newFixture()
	p := f.users.add(models.RolePatient)
	booked := &models.Appointment{PatientID: p.ID, Status: models.StatusBooked}
	done := &models.Appointment{PatientID: p.ID, Status: models.StatusCompleted}
	require.NoError(t, f.appts.Create(context.Background(), booked))
	require.NoError(t, f.appts.Create(context.Background(), done))

	_, err := f.svc.SubmitFeedback(context.Background(), booked.ID, p.ID, map[string]interface{}{"rating": 5})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = f.svc.SubmitFeedback(context.Background(), done.ID, uuid.NewString(), map[string]interface{}{"rating": 5})
	assert.ErrorIs(t, err, ErrNotParticipant)

	_, err = f.svc.SubmitFeedback(context.Background(), done.ID, p.ID, nil)
	assert.ErrorAs(t, err, &verr)

	assert.Zero(t, f.appts.saves)
}

// -- Cascade --

func TestCascadeDeleteOwner(t *testing.T) {
	f := newFixture()
	var gotID string
	var gotRole models.Role
	f.owner.DeleteOwnerCascadeFunc = func(_ context.Context, ownerID string, role models.Role) (int64, error) {
		gotID, gotRole = ownerID, role
		return 4, nil
	}

	n, err := f.svc.CascadeDeleteOwner(context.Background(), "doc-1", models.RoleDoctor, "admin-1")
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)
	assert.Equal(t, "doc-1", gotID)
	assert.Equal(t, models.RoleDoctor, gotRole)

	require.Len(t, f.rec.events, 1)
	assert.Equal(t, audit.KindOwnerDeleted, f.rec.events[0].Kind)
	assert.EqualValues(t, 4, f.rec.events[0].Count)
}

func TestCascadeDeleteOwnerErrors(t *testing.T) {
	f := newFixture()
	f.owner.DeleteOwnerCascadeFunc = func(context.Context, string, models.Role) (int64, error) {
		return 0, errNotFound
	}

	_, err := f.svc.CascadeDeleteOwner(context.Background(), "doc-1", models.RoleDoctor, "")
	assert.ErrorIs(t, err, errNotFound)

	_, err = f.svc.CascadeDeleteOwner(context.Background(), "doc-1", "nurse", "")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Empty(t, f.rec.events)
}
