// Package booking holds the availability and pricing resolution engine:
// calendar value types, blackout rule evaluation, tiered pricing, and
// quote aggregation. Everything in this package is a pure computation
// over inputs the caller already fetched; "today" is always an explicit
// argument, never read from the ambient clock.
package booking

import (
	"fmt"
	"time"
)

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"
	timeLayout  = "15:04"
)

// CalendarDate is a civil date with no time zone attached. Two dates
// compare by calendar position only.
type CalendarDate struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseCalendarDate parses a date in "YYYY-MM-DD" form.
func ParseCalendarDate(raw string) (CalendarDate, error) {
	parsed, err := time.Parse(dateLayout, raw)
	if err != nil {
		return CalendarDate{}, fmt.Errorf("invalid date %q: must be YYYY-MM-DD", raw)
	}
	return DateOf(parsed), nil
}

// DateOf truncates a time.Time to its civil date in the time's location.
func DateOf(t time.Time) CalendarDate {
	year, month, day := t.Date()
	return CalendarDate{Year: year, Month: month, Day: day}
}

func (d CalendarDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// MarshalText renders d in "YYYY-MM-DD" form for JSON payloads.
func (d CalendarDate) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText parses the "YYYY-MM-DD" form.
func (d *CalendarDate) UnmarshalText(text []byte) error {
	parsed, err := ParseCalendarDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// IsZero reports whether d is the zero value.
func (d CalendarDate) IsZero() bool {
	return d == CalendarDate{}
}

// Before reports whether d falls strictly before other on the calendar.
func (d CalendarDate) Before(other CalendarDate) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// AddDays returns the date n days after d, normalized across month and
// year boundaries.
func (d CalendarDate) AddDays(n int) CalendarDate {
	t := time.Date(d.Year, d.Month, d.Day+n, 0, 0, 0, 0, time.UTC)
	return DateOf(t)
}

// CalendarMonth identifies a calendar month for month-view rendering.
type CalendarMonth struct {
	Year  int
	Month time.Month
}

// ParseCalendarMonth parses a month in "YYYY-MM" form.
func ParseCalendarMonth(raw string) (CalendarMonth, error) {
	parsed, err := time.Parse(monthLayout, raw)
	if err != nil {
		return CalendarMonth{}, fmt.Errorf("invalid month %q: must be YYYY-MM", raw)
	}
	return CalendarMonth{Year: parsed.Year(), Month: parsed.Month()}, nil
}

func (m CalendarMonth) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, m.Month)
}

// Days returns the number of days in the month.
func (m CalendarMonth) Days() int {
	// Day zero of the next month is the last day of this one.
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Date returns the given day-of-month within m.
func (m CalendarMonth) Date(day int) CalendarDate {
	return CalendarDate{Year: m.Year, Month: m.Month, Day: day}
}

// TimeOfDay is a clock time expressed as minutes from midnight, so
// blackout-window checks are plain integer comparisons.
type TimeOfDay int

// ParseTimeOfDay parses a clock time in 24-hour "HH:MM" form.
func ParseTimeOfDay(raw string) (TimeOfDay, error) {
	parsed, err := time.Parse(timeLayout, raw)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: must be HH:MM", raw)
	}
	return TimeOfDay(parsed.Hour()*60 + parsed.Minute()), nil
}

// MustTimeOfDay is ParseTimeOfDay for static values; it panics on error.
func MustTimeOfDay(raw string) TimeOfDay {
	t, err := ParseTimeOfDay(raw)
	if err != nil {
		panic(err)
	}
	return t
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// Valid reports whether t falls within a single day.
func (t TimeOfDay) Valid() bool {
	return t >= 0 && t < 24*60
}
