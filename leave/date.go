package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DATE - Day-granularity calendar date (UTC)
// =============================================================================

// Date is a calendar date at day granularity, normalized to UTC midnight.
type Date struct {
	Time time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an arbitrary time to its UTC calendar date.
func DateOf(t time.Time) Date {
	u := t.UTC()
	return NewDate(u.Year(), u.Month(), u.Day())
}

func Today() Date { return DateOf(time.Now()) }

// ParseDate parses an ISO date (2006-01-02).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// Comparison
func (d Date) Before(other Date) bool { return d.Time.Before(other.Time) }
func (d Date) After(other Date) bool  { return d.Time.After(other.Time) }
func (d Date) Equal(other Date) bool  { return d.Time.Equal(other.Time) }

// Arithmetic and properties
func (d Date) AddDays(n int) Date      { return Date{Time: d.Time.AddDate(0, 0, n)} }
func (d Date) Year() int               { return d.Time.Year() }
func (d Date) Weekday() time.Weekday   { return d.Time.Weekday() }
func (d Date) IsZero() bool            { return d.Time.IsZero() }
func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
func (d Date) IsWorkday() bool { return !d.IsWeekend() }

func (d Date) String() string { return d.Time.Format("2006-01-02") }

// =============================================================================
// HOLIDAY CALENDAR
// =============================================================================

// HolidayCalendar answers whether a date is a public holiday.
// The working-day count excludes holidays only when the caller opts in
// via WorkingDaysWithCalendar; the plain count matches the reference
// behavior of weekends-only.
type HolidayCalendar interface {
	IsHoliday(d Date) bool
}

// NoHolidays is the default calendar: no exclusions.
type NoHolidays struct{}

func (NoHolidays) IsHoliday(Date) bool { return false }

// HolidaySet is a HolidayCalendar over a fixed list of holidays.
type HolidaySet map[Date]struct{}

func NewHolidaySet(holidays []PublicHoliday) HolidaySet {
	set := make(HolidaySet, len(holidays))
	for _, h := range holidays {
		set[h.Date] = struct{}{}
	}
	return set
}

func (s HolidaySet) IsHoliday(d Date) bool {
	_, ok := s[d]
	return ok
}

// =============================================================================
// WORKING-DAY COUNT
// =============================================================================

var half = decimal.NewFromFloat(0.5)

// WorkingDays counts working days in [start, end] inclusive, with
// optional half-day adjustments at either boundary.
//
// Rules:
//   - start must not be after end (ErrInvalidRange otherwise)
//   - Saturdays and Sundays do not count
//   - halfStart/halfEnd each subtract 0.5, but only when the
//     corresponding boundary day is itself a working day, and never
//     below zero
//
// The result is a non-negative decimal in half-day precision.
func WorkingDays(start, end Date, halfStart, halfEnd bool) (decimal.Decimal, error) {
	return WorkingDaysWithCalendar(start, end, halfStart, halfEnd, NoHolidays{})
}

// WorkingDaysWithCalendar is WorkingDays with holiday exclusion. Pass
// NoHolidays{} for the reference weekends-only behavior.
func WorkingDaysWithCalendar(start, end Date, halfStart, halfEnd bool, cal HolidayCalendar) (decimal.Decimal, error) {
	if start.After(end) {
		return decimal.Zero, &InvalidRangeError{Start: start, End: end}
	}
	if cal == nil {
		cal = NoHolidays{}
	}

	counts := func(d Date) bool { return d.IsWorkday() && !cal.IsHoliday(d) }

	total := decimal.Zero
	for d := start; !d.After(end); d = d.AddDays(1) {
		if counts(d) {
			total = total.Add(decimal.NewFromInt(1))
		}
	}

	if halfStart && counts(start) && total.Sub(half).Sign() >= 0 {
		total = total.Sub(half)
	}
	if halfEnd && counts(end) && total.Sub(half).Sign() >= 0 {
		total = total.Sub(half)
	}

	return total, nil
}
