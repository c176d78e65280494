package leave_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leavedesk/leave"
)

// =============================================================================
// WORKING DAY COUNTING
// =============================================================================

func TestWorkingDays_FullWeek(t *testing.T) {
	// GIVEN: Monday through Friday (2026-03-09 .. 2026-03-13)
	start := leave.NewDate(2026, time.March, 9)
	end := leave.NewDate(2026, time.March, 13)

	// WHEN: Counting working days
	total, err := leave.WorkingDays(start, end, false, false)

	// THEN: All five weekdays count
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(5)), "got %s", total)
}

func TestWorkingDays_SpanningWeekend(t *testing.T) {
	// GIVEN: Friday through Monday
	start := leave.NewDate(2026, time.March, 13)
	end := leave.NewDate(2026, time.March, 16)

	// WHEN: Counting working days
	total, err := leave.WorkingDays(start, end, false, false)

	// THEN: Saturday and Sunday are skipped
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(2)), "got %s", total)
}

func TestWorkingDays_WeekendOnly(t *testing.T) {
	// GIVEN: Saturday through Sunday
	start := leave.NewDate(2026, time.March, 14)
	end := leave.NewDate(2026, time.March, 15)

	// WHEN: Counting working days
	total, err := leave.WorkingDays(start, end, false, false)

	// THEN: Zero days, no error
	require.NoError(t, err)
	assert.True(t, total.IsZero(), "got %s", total)
}

func TestWorkingDays_HalfDays(t *testing.T) {
	// GIVEN: Mon-Fri with half days on both ends
	start := leave.NewDate(2026, time.March, 9)
	end := leave.NewDate(2026, time.March, 13)

	// WHEN: Counting with halfStart and halfEnd
	total, err := leave.WorkingDays(start, end, true, true)

	// THEN: 5 - 0.5 - 0.5 = 4
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(4)), "got %s", total)
}

func TestWorkingDays_SingleDayBothHalves(t *testing.T) {
	// GIVEN: A single Wednesday with both half flags set
	day := leave.NewDate(2026, time.March, 11)

	// WHEN: Counting
	total, err := leave.WorkingDays(day, day, true, true)

	// THEN: 1 - 0.5 - 0.5 = 0, never negative
	require.NoError(t, err)
	assert.True(t, total.IsZero(), "got %s", total)
}

func TestWorkingDays_HalfDayOnWeekend_Ignored(t *testing.T) {
	// GIVEN: Saturday start with halfStart set, range ending Monday
	start := leave.NewDate(2026, time.March, 14)
	end := leave.NewDate(2026, time.March, 16)

	// WHEN: Counting
	total, err := leave.WorkingDays(start, end, true, false)

	// THEN: The half-day flag on a non-working boundary has no effect
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(1)), "got %s", total)
}

func TestWorkingDays_ReversedRange(t *testing.T) {
	// GIVEN: start after end
	start := leave.NewDate(2026, time.March, 13)
	end := leave.NewDate(2026, time.March, 9)

	// WHEN: Counting
	_, err := leave.WorkingDays(start, end, false, false)

	// THEN: Invalid range error
	require.ErrorIs(t, err, leave.ErrInvalidRange)
	assert.True(t, leave.IsClientError(err))
}

func TestWorkingDaysWithCalendar_ExcludesHolidays(t *testing.T) {
	// GIVEN: Mon-Fri with Wednesday a public holiday
	start := leave.NewDate(2026, time.March, 9)
	end := leave.NewDate(2026, time.March, 13)
	cal := leave.NewHolidaySet([]leave.PublicHoliday{
		{ID: "h1", Name: "Founders Day", Date: leave.NewDate(2026, time.March, 11)},
	})

	// WHEN: Counting with the calendar
	total, err := leave.WorkingDaysWithCalendar(start, end, false, false, cal)

	// THEN: The holiday does not count
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(4)), "got %s", total)
}

// =============================================================================
// DATE PARSING
// =============================================================================

func TestParseDate(t *testing.T) {
	d, err := leave.ParseDate("2026-03-09")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-09", d.String())
	assert.Equal(t, time.Monday, d.Weekday())

	_, err = leave.ParseDate("09/03/2026")
	assert.Error(t, err)
}
