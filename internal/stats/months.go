package stats

import (
	"time"

	"clinic-appointments-server/internal/models"

	"github.com/jinzhu/now"
)

// MonthLayout formats month bucket keys.
const MonthLayout = "2006-01"

// WindowMonths is the number of buckets in every monthly histogram.
const WindowMonths = 12

// MonthCount is one histogram bucket.
type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// MonthWindow returns the keys of the twelve calendar months ending with the
// month containing t, oldest first. Keys are computed in t's location.
func MonthWindow(t time.Time) []string {
	start := now.With(t).BeginningOfMonth()
	keys := make([]string, WindowMonths)
	for i := 0; i < WindowMonths; i++ {
		keys[i] = start.AddDate(0, i-(WindowMonths-1), 0).Format(MonthLayout)
	}
	return keys
}

// Histogram counts dates per key in loc. Invalid timestamps and dates
// outside keys are ignored; every key is emitted, zero or not.
func Histogram(keys []string, dates []models.Timestamp, loc *time.Location) []MonthCount {
	counts := make(map[string]int, len(keys))
	for _, d := range dates {
		if !d.Valid {
			continue
		}
		counts[d.Time.In(loc).Format(MonthLayout)]++
	}

	out := make([]MonthCount, len(keys))
	for i, k := range keys {
		out[i] = MonthCount{Month: k, Count: counts[k]}
	}
	return out
}

// midnight returns the start of t's calendar day in loc.
func midnight(t time.Time, loc *time.Location) time.Time {
	return now.With(t.In(loc)).BeginningOfDay()
}
