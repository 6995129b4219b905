// Package calendar handles naive calendar dates: parsing the short (M/D) and
// canonical (Y/M/D) text forms, formatting, and closed-interval overlap.
package calendar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrUnparseable is returned for any text that is not a valid M/D or Y/M/D date.
var ErrUnparseable = errors.New("calendar: unparseable date")

const (
	minYear = 1
	maxYear = 9999
)

// Date is a plain year/month/day value with no time of day and no zone.
type Date struct {
	Year  int
	Month int
	Day   int
}

// New validates y/m/d and returns the Date.
func New(year, month, day int) (Date, error) {
	if year < minYear || year > maxYear || month < 1 || month > 12 {
		return Date{}, ErrUnparseable
	}
	if day < 1 || day > daysIn(year, month) {
		return Date{}, ErrUnparseable
	}
	return Date{Year: year, Month: month, Day: day}, nil
}

// FromTime takes the calendar date of t in t's own location.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: int(m), Day: d}
}

// Today returns the local calendar date.
func Today() Date {
	return FromTime(time.Now())
}

// Parse accepts "M/D" or "Y/M/D". A short date takes today's year, or the
// next year when that date has already passed. Today itself is not rolled.
func Parse(text string, today Date) (Date, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Date{}, ErrUnparseable
	}
	parts := strings.Split(text, "/")
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Date{}, ErrUnparseable
		}
		nums[i] = n
	}

	switch len(nums) {
	case 2:
		d, err := New(today.Year, nums[0], nums[1])
		if err != nil {
			return Date{}, err
		}
		if d.Before(today) {
			return New(today.Year+1, nums[0], nums[1])
		}
		return d, nil
	case 3:
		return New(nums[0], nums[1], nums[2])
	default:
		return Date{}, ErrUnparseable
	}
}

// Canonical renders the storage form "Y/M/D".
func (d Date) Canonical() string {
	return fmt.Sprintf("%d/%d/%d", d.Year, d.Month, d.Day)
}

// Display renders the year-less UI form "M/D".
func (d Date) Display() string {
	return fmt.Sprintf("%d/%d", d.Month, d.Day)
}

func (d Date) String() string { return d.Canonical() }

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return d == Date{} }

// Compare returns -1, 0 or +1.
func (d Date) Compare(o Date) int {
	a, b := d.ordinal(), o.ordinal()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Before reports d < o.
func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }

// After reports d > o.
func (d Date) After(o Date) bool { return d.Compare(o) > 0 }

// Within reports start <= d <= end.
func (d Date) Within(start, end Date) bool {
	return !d.Before(start) && !d.After(end)
}

func (d Date) ordinal() int {
	return d.Year*10000 + d.Month*100 + d.Day
}

func daysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
