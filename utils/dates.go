package utils

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date key format used by the record store.
const DateLayout = "2006-01-02"

// DateKey returns the calendar date of t in loc. A nil loc means UTC.
func DateKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DateLayout)
}

// ParseDateKey parses a YYYY-MM-DD key as midnight UTC.
func ParseDateKey(key string) (time.Time, error) {
	t, err := time.Parse(DateLayout, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date key %q: %w", key, err)
	}
	return t, nil
}

// PreviousDateKey returns the calendar day before key.
func PreviousDateKey(key string) (string, error) {
	t, err := ParseDateKey(key)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, -1).Format(DateLayout), nil
}

// ISOWeekKey returns the ISO-8601 week bucket (YYYY-Www) a date key falls in.
// Weeks start on Monday and week 1 is the week holding the year's first
// Thursday, so early January days may belong to the previous ISO year.
func ISOWeekKey(key string) (string, error) {
	t, err := ParseDateKey(key)
	if err != nil {
		return "", err
	}
	year, week := t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week), nil
}

// MonthKey returns the YYYY-MM bucket of a date key.
func MonthKey(key string) (string, error) {
	t, err := ParseDateKey(key)
	if err != nil {
		return "", err
	}
	return t.Format("2006-01"), nil
}

// RoundHalfUp returns numerator/denominator rounded to the nearest integer,
// halves up. Both operands are expected to be non-negative; a zero
// denominator yields 0.
func RoundHalfUp(numerator, denominator int) int {
	if denominator <= 0 || numerator <= 0 {
		return 0
	}
	return (2*numerator + denominator) / (2 * denominator)
}
