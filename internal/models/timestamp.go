package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"strings"
	"time"
)

// Timestamp is a point in time that may be missing or unparsable. Decoding
// never fails: a value that cannot be interpreted leaves Valid false so the
// record is skipped by date based computations instead of aborting them.
type Timestamp struct {
	Time  time.Time
	Valid bool
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
}

// NewTimestamp wraps t. The zero time is treated as missing.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t, Valid: !t.IsZero()}
}

// ParseTimestamp interprets s using the layouts accepted from clients and
// from the supported SQL drivers.
func ParseTimestamp(s string) Timestamp {
	s = strings.TrimSpace(s)
	if s == "" {
		return Timestamp{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t, Valid: true}
		}
	}
	return Timestamp{}
}

// Scan implements sql.Scanner.
func (t *Timestamp) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*t = NewTimestamp(v)
	case string:
		*t = ParseTimestamp(v)
	case []byte:
		*t = ParseTimestamp(string(v))
	default:
		*t = Timestamp{}
	}
	return nil
}

// Value implements driver.Valuer.
func (t Timestamp) Value() (driver.Value, error) {
	if !t.Valid {
		return nil, nil
	}
	return t.Time.UTC(), nil
}

// GormDataType maps the column to the dialect's datetime type.
func (Timestamp) GormDataType() string {
	return "time"
}

// MarshalJSON encodes invalid timestamps as null.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time)
}

// UnmarshalJSON accepts any string or null; unparsable input yields an
// invalid timestamp rather than an error.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*t = Timestamp{}
		return nil
	}
	*t = ParseTimestamp(s)
	return nil
}

// After reports whether t is valid and strictly after u.
func (t Timestamp) After(u time.Time) bool {
	return t.Valid && t.Time.After(u)
}
