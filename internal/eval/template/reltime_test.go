package template

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelativeTime_Thresholds(t *testing.T) {
	t.Parallel()
	ref := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		offset time.Duration
		want   string
	}{
		{"same instant", 0, "a few seconds ago"},
		{"30 seconds", -30 * time.Second, "a few seconds ago"},
		{"50 seconds", -50 * time.Second, "a minute ago"},
		{"3 minutes", -3 * time.Minute, "3 minutes ago"},
		{"45 minutes", -45 * time.Minute, "an hour ago"},
		{"one hour", -time.Hour, "an hour ago"},
		{"5 hours", -5 * time.Hour, "5 hours ago"},
		{"22 hours", -22 * time.Hour, "a day ago"},
		{"3 days", -72 * time.Hour, "3 days ago"},
		{"future minutes", 10 * time.Minute, "in 10 minutes"},
		{"future days", 48 * time.Hour, "in 2 days"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, relativeTime(ref.Add(tt.offset), ref, false, false))
		})
	}
}

func TestRelativeTime_Calendar(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		date, ref string
		want      string
	}{
		{"one month", "2024-05-15", "2024-06-15", "a month ago"},
		{"five months", "2024-01-15", "2024-06-15", "5 months ago"},
		{"eleven months", "2023-07-15", "2024-06-15", "a year ago"},
		{"two years", "2022-06-15", "2024-06-15", "2 years ago"},
		{"leap day", "2023-02-28", "2024-02-29", "a year ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			date, err := parseDate(tt.date)
			require.NoError(t, err)
			ref, err := parseDate(tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.want, relativeTime(date, ref, false, false))
		})
	}
}

func TestRelativeTime_Direction(t *testing.T) {
	t.Parallel()
	earlier := time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)
	later := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "a year ago", relativeTime(earlier, later, false, false))
	assert.Equal(t, "in a year", relativeTime(earlier, later, true, false))
	assert.Equal(t, "a year", relativeTime(earlier, later, false, true))
	assert.Equal(t, "a year", relativeTime(earlier, later, true, true))
}

func TestMonthDiff(t *testing.T) {
	t.Parallel()
	d := func(s string) time.Time {
		tm, err := parseDate(s)
		require.NoError(t, err)
		return tm
	}

	assert.Equal(t, -12.0, monthDiff(d("1999-01-01"), d("2000-01-01")))
	assert.Equal(t, 12.0, monthDiff(d("2000-01-01"), d("1999-01-01")))
	assert.Equal(t, 0.0, monthDiff(d("2024-03-10"), d("2024-03-10")))
	assert.InDelta(t, -0.5, monthDiff(d("2024-04-01"), d("2024-04-16")), 0.05)
}

func TestAddMonths_ClampsDay(t *testing.T) {
	t.Parallel()
	jan31 := time.Date(2024, 1, 31, 8, 30, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2024, 2, 29, 8, 30, 0, 0, time.UTC), addMonths(jan31, 1))
	assert.Equal(t, time.Date(2024, 4, 30, 8, 30, 0, 0, time.UTC), addMonths(jan31, 3))
	assert.Equal(t, time.Date(2023, 12, 31, 8, 30, 0, 0, time.UTC), addMonths(jan31, -1))
}

func TestParseDate(t *testing.T) {
	t.Parallel()
	want := time.Date(2024, 9, 12, 21, 14, 15, 0, time.UTC)

	tests := []struct {
		name string
		in   any
		want time.Time
	}{
		{"rfc3339", "2024-09-12T21:14:15Z", want},
		{"millis", "2024-09-12T21:14:15.000Z", want},
		{"offset", "2024-09-12T23:14:15+02:00", want},
		{"no zone", "2024-09-12T21:14:15", want},
		{"space separated", "2024-09-12 21:14:15", want},
		{"date only", "2024-09-12", time.Date(2024, 9, 12, 0, 0, 0, 0, time.UTC)},
		{"time value", want.In(time.FixedZone("X", 3600)), want},
		{"unix millis", want.UnixMilli(), want},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDate(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}

	_, err := parseDate("next tuesday")
	assert.ErrorIs(t, err, errNotDate)
	_, err = parseDate(true)
	assert.ErrorIs(t, err, errNotDate)
}
