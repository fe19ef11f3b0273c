package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	cases := map[string]struct {
		in    string
		valid bool
		want  time.Time
	}{
		"rfc3339":        {"2024-01-10T09:30:00Z", true, time.Date(2024, 1, 10, 9, 30, 0, 0, time.UTC)},
		"sql datetime":   {"2024-02-05 14:00:00", true, time.Date(2024, 2, 5, 14, 0, 0, 0, time.UTC)},
		"date only":      {"2024-03-01", true, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		"sqlite driver":  {"2024-03-01 08:00:00+00:00", true, time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)},
		"garbage":        {"not-a-date", false, time.Time{}},
		"empty":          {"", false, time.Time{}},
		"impossible day": {"2024-02-31", false, time.Time{}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got := ParseTimestamp(tc.in)
			assert.Equal(t, tc.valid, got.Valid)
			if tc.valid {
				assert.True(t, tc.want.Equal(got.Time), "got %v", got.Time)
			}
		})
	}
}

func TestTimestampScanNeverFails(t *testing.T) {
	var ts Timestamp

	require.NoError(t, ts.Scan("not-a-date"))
	assert.False(t, ts.Valid)

	require.NoError(t, ts.Scan([]byte("2024-01-10 09:30:00")))
	assert.True(t, ts.Valid)

	require.NoError(t, ts.Scan(nil))
	assert.False(t, ts.Valid)

	require.NoError(t, ts.Scan(int64(42)))
	assert.False(t, ts.Valid)

	now := time.Now()
	require.NoError(t, ts.Scan(now))
	assert.True(t, ts.Valid)
	assert.True(t, now.Equal(ts.Time))
}

func TestTimestampValueIsUTC(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	ts := NewTimestamp(time.Date(2024, 5, 1, 12, 0, 0, 0, loc))

	v, err := ts.Value()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, v.(time.Time).Location())
	assert.Equal(t, 9, v.(time.Time).Hour())

	v, err = Timestamp{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestTimestampJSON(t *testing.T) {
	var payload struct {
		Date Timestamp `json:"date"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"date":"not-a-date"}`), &payload))
	assert.False(t, payload.Date.Valid)

	require.NoError(t, json.Unmarshal([]byte(`{"date":12}`), &payload))
	assert.False(t, payload.Date.Valid)

	require.NoError(t, json.Unmarshal([]byte(`{"date":"2024-01-10T09:30:00Z"}`), &payload))
	assert.True(t, payload.Date.Valid)

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2024-01-10T09:30:00Z"}`, string(out))

	out, err = json.Marshal(struct {
		Date Timestamp `json:"date"`
	}{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":null}`, string(out))
}

func TestTimestampAfter(t *testing.T) {
	now := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	assert.True(t, NewTimestamp(now.Add(time.Hour)).After(now))
	assert.False(t, NewTimestamp(now.Add(-time.Hour)).After(now))
	assert.False(t, Timestamp{}.After(now))
}
