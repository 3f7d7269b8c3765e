// Package timeutil is the single boundary for local-to-UTC conversions.
// The rule compiler and the booking materializer both go through CombineUTC
// so the "date + time-of-day in the requester's timezone" arithmetic exists
// exactly once.
package timeutil

import (
	"fmt"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// CombineUTC interprets the calendar date of date plus the "15:04" clock in
// loc and returns the resulting instant in UTC.
func CombineUTC(date time.Time, clock string, loc *time.Location) (time.Time, error) {
	c, err := time.Parse(ClockLayout, clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("timeutil: bad clock %q: %w", clock, err)
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, c.Hour(), c.Minute(), 0, 0, loc).UTC(), nil
}

// LocalDate formats the calendar date of t as seen in loc.
func LocalDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

// LocalClock formats the time of day of t as seen in loc.
func LocalClock(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(ClockLayout)
}

// ParseDate reads a "2006-01-02" date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("timeutil: bad date %q: %w", s, err)
	}
	return t, nil
}

// Location resolves an IANA timezone name, defaulting to UTC for empty input.
func Location(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("timeutil: unknown timezone %q: %w", name, err)
	}
	return loc, nil
}
