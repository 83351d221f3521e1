package template

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var errNotDate = errors.New("not a date")

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseDate accepts time values, ISO-8601 strings (date-only strings are UTC
// midnight) and integer Unix milliseconds.
func parseDate(v any) (time.Time, error) {
	switch d := v.(type) {
	case time.Time:
		return d.UTC(), nil
	case string:
		s := strings.TrimSpace(d)
		for _, layout := range dateLayouts {
			if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
				return t.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("%w: %q", errNotDate, d)
	}
	if ms, ok := toInt(v); ok {
		return time.UnixMilli(ms).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%w: %T", errNotDate, v)
}

type unit int

const (
	unitNone unit = iota
	unitSecond
	unitMinute
	unitHour
	unitDay
	unitMonth
	unitYear
)

// threshold selects a phrase when the rounded distance in the most recent
// unit is at most limit. limit 0 means unbounded.
type threshold struct {
	label string
	limit float64
	unit  unit
}

var thresholds = []threshold{
	{"s", 44, unitSecond},
	{"m", 89, unitNone},
	{"mm", 44, unitMinute},
	{"h", 89, unitNone},
	{"hh", 21, unitHour},
	{"d", 35, unitNone},
	{"dd", 25, unitDay},
	{"M", 45, unitNone},
	{"MM", 10, unitMonth},
	{"y", 17, unitNone},
	{"yy", 0, unitYear},
}

var phrases = map[string]string{
	"s":  "a few seconds",
	"m":  "a minute",
	"mm": "%d minutes",
	"h":  "an hour",
	"hh": "%d hours",
	"d":  "a day",
	"dd": "%d days",
	"M":  "a month",
	"MM": "%d months",
	"y":  "a year",
	"yy": "%d years",
}

// relativeTime phrases the distance between date and ref. With forward
// false it reads from ref to date ("a year ago" when date is earlier); with
// forward true it reads from date to ref ("in a year" when ref is later).
func relativeTime(date, ref time.Time, forward, suppressSuffix bool) string {
	var result float64
	var out string
	for i, th := range thresholds {
		if th.unit != unitNone {
			if forward {
				result = diff(ref, date, th.unit)
			} else {
				result = diff(date, ref, th.unit)
			}
		}
		abs := math.Round(math.Abs(result))
		if abs <= th.limit || th.limit == 0 {
			if abs <= 1 && i > 0 {
				th = thresholds[i-1]
			}
			out = phrases[th.label]
			if strings.Contains(out, "%d") {
				out = fmt.Sprintf(out, int64(abs))
			}
			break
		}
	}

	if suppressSuffix {
		return out
	}
	if result > 0 {
		return "in " + out
	}
	return out + " ago"
}

// diff returns a - b in the given unit as a fractional value
func diff(a, b time.Time, u unit) float64 {
	d := float64(a.Sub(b).Milliseconds())
	switch u {
	case unitSecond:
		return d / 1e3
	case unitMinute:
		return d / 6e4
	case unitHour:
		return d / 36e5
	case unitDay:
		return d / 864e5
	case unitMonth:
		return monthDiff(a, b)
	case unitYear:
		return monthDiff(a, b) / 12
	}
	return d
}

// monthDiff returns a - b in calendar months, with the remainder expressed
// as a fraction of the month it falls in.
func monthDiff(a, b time.Time) float64 {
	if a.Day() < b.Day() {
		return -monthDiff(b, a)
	}
	whole := (b.Year()-a.Year())*12 + int(b.Month()-a.Month())
	anchor := addMonths(a, whole)
	before := b.Before(anchor)
	step := 1
	if before {
		step = -1
	}
	anchor2 := addMonths(a, whole+step)

	num := ms(b.Sub(anchor))
	var den float64
	if before {
		den = ms(anchor.Sub(anchor2))
	} else {
		den = ms(anchor2.Sub(anchor))
	}
	if den == 0 {
		return -float64(whole)
	}
	res := -(float64(whole) + num/den)
	if res == 0 {
		return 0
	}
	return res
}

// addMonths adds n calendar months, clamping the day to the target month
func addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

func ms(d time.Duration) float64 {
	return float64(d.Milliseconds())
}
