// Package calendar provides a timezone-free calendar day used as the key for
// day entries and heatmap cells.
package calendar

import (
	"fmt"
	"time"
)

const Layout = "2006-01-02"

// Day is a calendar date without a time component.
type Day struct {
	Year  int
	Month time.Month
	Day   int
}

// New normalises out-of-range components the way time.Date does, so
// New(2026, 12, 32) is 2027-01-01.
func New(year int, month time.Month, day int) Day {
	return FromTime(time.Date(year, month, day, 12, 0, 0, 0, time.UTC))
}

// FromTime takes the calendar day of t in t's own location.
func FromTime(t time.Time) Day {
	y, m, d := t.Date()
	return Day{Year: y, Month: m, Day: d}
}

func Parse(s string) (Day, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return Day{}, fmt.Errorf("parse day %q: %w", s, err)
	}
	return FromTime(t), nil
}

func MustParse(s string) Day {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Day) IsZero() bool { return d == Day{} }

// Time returns midnight UTC of the day. Only used for arithmetic.
func (d Day) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Day) AddDays(n int) Day {
	return New(d.Year, d.Month, d.Day+n)
}

func (d Day) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// StartOfWeek is the Sunday on or before d.
func (d Day) StartOfWeek() Day {
	return d.AddDays(-int(d.Weekday()))
}

// EndOfWeek is the Saturday on or after d.
func (d Day) EndOfWeek() Day {
	return d.AddDays(int(time.Saturday - d.Weekday()))
}

// DaysUntil counts whole days from d to other; negative when other is earlier.
func (d Day) DaysUntil(other Day) int {
	return int(other.Time().Sub(d.Time()).Hours() / 24)
}

func (d Day) Compare(other Day) int {
	switch {
	case d.Year != other.Year:
		return cmpInt(d.Year, other.Year)
	case d.Month != other.Month:
		return cmpInt(int(d.Month), int(other.Month))
	default:
		return cmpInt(d.Day, other.Day)
	}
}

func (d Day) Before(other Day) bool { return d.Compare(other) < 0 }
func (d Day) After(other Day) bool  { return d.Compare(other) > 0 }

// Within reports whether d lies in the inclusive range [from, to].
func (d Day) Within(from, to Day) bool {
	return !d.Before(from) && !d.After(to)
}

func (d Day) MarshalText() ([]byte, error) {
	if d.IsZero() {
		return []byte{}, nil
	}
	return []byte(d.String()), nil
}

func (d *Day) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*d = Day{}
		return nil
	}
	// PostgREST may return full timestamps for date columns.
	raw := string(text)
	if len(raw) > len(Layout) {
		raw = raw[:len(Layout)]
	}
	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
