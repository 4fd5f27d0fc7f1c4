// Package dayutil provides calendar-day arithmetic for the engagement engine.
//
// All operations work on DayKey values: local-calendar day identifiers in
// the form YYYY-MM-DD. Fixed-width zero-padded fields make lexicographic
// comparison equivalent to chronological comparison, so DayKey ordering is
// plain string ordering throughout the codebase.
package dayutil

import (
	"fmt"
	"math"
	"time"
)

// DayKey identifies one calendar day in the user's local timezone.
type DayKey string

// MonthKey identifies one calendar month, format YYYY-MM.
type MonthKey string

const (
	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"
)

// Parse validates a day key taken from user input.
func Parse(s string) (DayKey, error) {
	if _, err := time.ParseInLocation(dayLayout, s, time.Local); err != nil {
		return "", fmt.Errorf("invalid day key %q: %w", s, err)
	}
	return DayKey(s), nil
}

// ParseMonth validates a month key taken from user input.
func ParseMonth(s string) (MonthKey, error) {
	if _, err := time.ParseInLocation(monthLayout, s, time.Local); err != nil {
		return "", fmt.Errorf("invalid month key %q: %w", s, err)
	}
	return MonthKey(s), nil
}

// Time returns local midnight of the key's day. Malformed keys are a
// programmer error and panic.
func (d DayKey) Time() time.Time {
	t, err := time.ParseInLocation(dayLayout, string(d), time.Local)
	if err != nil {
		panic(fmt.Sprintf("dayutil: malformed day key %q", string(d)))
	}
	return t
}

// Month returns the month key containing this day.
func (d DayKey) Month() MonthKey {
	if len(d) < 7 {
		panic(fmt.Sprintf("dayutil: malformed day key %q", string(d)))
	}
	return MonthKey(d[:7])
}

// AddDays returns the key n days after (or before, for negative n) this one.
func (d DayKey) AddDays(n int) DayKey {
	return FromTime(d.Time().AddDate(0, 0, n))
}

// Before reports whether d is chronologically before other.
func (d DayKey) Before(other DayKey) bool { return d < other }

// After reports whether d is chronologically after other.
func (d DayKey) After(other DayKey) bool { return d > other }

// FromTime projects an instant to its local-calendar day key.
func FromTime(t time.Time) DayKey {
	return DayKey(t.In(time.Local).Format(dayLayout))
}

// MonthFromTime projects an instant to its local-calendar month key.
func MonthFromTime(t time.Time) MonthKey {
	return MonthKey(t.In(time.Local).Format(monthLayout))
}

// DayOfYear returns the leap-aware ordinal of the day within its year,
// in [1, 366].
func DayOfYear(d DayKey) int {
	return d.Time().YearDay()
}

// IsMonday reports whether the instant falls on a local Monday.
func IsMonday(t time.Time) bool {
	return t.In(time.Local).Weekday() == time.Monday
}

// Bounds returns the first and last day keys of the month, inclusive.
func (m MonthKey) Bounds() (start, end DayKey) {
	t, err := time.ParseInLocation(monthLayout, string(m), time.Local)
	if err != nil {
		panic(fmt.Sprintf("dayutil: malformed month key %q", string(m)))
	}
	start = FromTime(t)
	end = FromTime(t.AddDate(0, 1, -1))
	return start, end
}

// WeekRange is an inclusive Monday..Sunday span.
type WeekRange struct {
	Start DayKey
	End   DayKey
}

// PreviousWeekRange returns the Monday–Sunday week immediately before the
// week containing the instant. Used by the weekly recap.
func PreviousWeekRange(t time.Time) WeekRange {
	day := FromTime(t)
	// Back up to the Monday of the current week, then one week further.
	wd := int(t.In(time.Local).Weekday())
	if wd == 0 {
		wd = 7 // Sunday
	}
	thisMonday := day.AddDays(-(wd - 1))
	return WeekRange{
		Start: thisMonday.AddDays(-7),
		End:   thisMonday.AddDays(-1),
	}
}

// DaysBetween returns the whole-day difference end-start. Negative when
// end precedes start. Rounded so that DST-shifted local midnights still
// count as whole days.
func DaysBetween(start, end DayKey) int {
	return int(math.Round(end.Time().Sub(start.Time()).Hours() / 24))
}

// AnswerableDaysInRange counts days in [start, end] on or after the
// account-creation day. A zero createdAt means the creation day is
// unknown and every day in the range counts. This is the denominator
// for "X of Y answered".
func AnswerableDaysInRange(start, end DayKey, createdAt time.Time) int {
	if end.Before(start) {
		return 0
	}
	if !createdAt.IsZero() {
		created := FromTime(createdAt)
		if created.After(end) {
			return 0
		}
		if created.After(start) {
			start = created
		}
	}
	return DaysBetween(start, end) + 1
}

// WithinTrailingWindow reports whether day is at most windowSize-1 days
// before today. Days after today are never within the window; the caller
// handles day == today separately (it is not "missed").
func WithinTrailingWindow(day, today DayKey, windowSize int) bool {
	diff := DaysBetween(day, today)
	return diff >= 0 && diff < windowSize
}
