package audit

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRecorder struct {
	events []Event
	err    error
}

func (m *memRecorder) Record(_ context.Context, ev Event) error {
	m.events = append(m.events, ev)
	return m.err
}

func (m *memRecorder) History(_ context.Context, id string) ([]Event, error) {
	var out []Event
	for _, ev := range m.events {
		if ev.AppointmentID == id {
			out = append(out, ev)
		}
	}
	return out, nil
}

func TestLogRecorder(t *testing.T) {
	var buf bytes.Buffer
	rec := NewLogRecorder(zerolog.New(&buf))

	err := rec.Record(context.Background(), Event{
		Kind:          KindStatusChanged,
		AppointmentID: "a-1",
		From:          "booked",
		To:            "cancelled",
		Actor:         "u-1",
		At:            time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"kind":"status_changed"`)
	assert.Contains(t, out, `"appointment_id":"a-1"`)
	assert.Contains(t, out, `"to":"cancelled"`)
	assert.Contains(t, out, `"component":"audit"`)
}

func TestMultiRecordsEverywhere(t *testing.T) {
	failing := &memRecorder{err: errors.New("down")}
	ok := &memRecorder{}

	err := Multi{failing, ok}.Record(context.Background(), Event{Kind: KindBooked, AppointmentID: "a-1"})
	assert.Error(t, err)
	assert.Len(t, failing.events, 1)
	assert.Len(t, ok.events, 1)
}

func TestMultiHistory(t *testing.T) {
	var buf bytes.Buffer
	mem := &memRecorder{}
	m := Multi{NewLogRecorder(zerolog.New(&buf)), mem}

	require.NoError(t, m.Record(context.Background(), Event{Kind: KindBooked, AppointmentID: "a-1"}))
	require.NoError(t, m.Record(context.Background(), Event{Kind: KindBooked, AppointmentID: "a-2"}))

	events, err := m.History(context.Background(), "a-1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, KindBooked, events[0].Kind)

	_, err = Multi{NewLogRecorder(zerolog.Nop())}.History(context.Background(), "a-1")
	assert.ErrorIs(t, err, ErrNoHistory)
}

func TestNewMongoRecorderRejectsBadURI(t *testing.T) {
	_, err := NewMongoRecorder(context.Background(), "bogus://localhost", "clinic")
	assert.Error(t, err)
}
