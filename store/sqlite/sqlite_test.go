package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leavedesk/leave"
	"github.com/warp/leavedesk/store/sqlite"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// =============================================================================
// LEAVE TYPES
// =============================================================================

func TestLeaveTypes_RoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	limit := decimal.NewFromFloat(2.5)
	lt := leave.LeaveType{
		ID:                "vacation",
		Name:              "Vacation",
		Code:              "VAC",
		Color:             "#22c55e",
		RequiresApproval:  true,
		MaxDaysPerRequest: &limit,
		IsActive:          true,
		SortOrder:         1,
	}
	require.NoError(t, store.SaveLeaveType(ctx, lt))

	got, err := store.GetLeaveType(ctx, "vacation")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "VAC", got.Code)
	assert.True(t, got.RequiresApproval)
	require.NotNil(t, got.MaxDaysPerRequest)
	assert.True(t, got.MaxDaysPerRequest.Equal(limit))
}

func TestLeaveTypes_GetMissingReturnsNil(t *testing.T) {
	store := newStore(t)

	got, err := store.GetLeaveType(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLeaveTypes_ActiveOnlyFilter(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveLeaveType(ctx, leave.LeaveType{
		ID: "a", Name: "Active", Code: "ACT", IsActive: true,
	}))
	require.NoError(t, store.SaveLeaveType(ctx, leave.LeaveType{
		ID: "b", Name: "Archived", Code: "ARC", IsActive: false,
	}))

	all, err := store.ListLeaveTypes(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := store.ListLeaveTypes(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "a", active[0].ID)
}

func TestLeaveTypes_ArchivedCodeReusable(t *testing.T) {
	// GIVEN: An archived type holding code VAC
	store := newStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveLeaveType(ctx, leave.LeaveType{
		ID: "old", Name: "Old Vacation", Code: "VAC", IsActive: false,
	}))

	// THEN: A new active type may claim the code
	require.NoError(t, store.SaveLeaveType(ctx, leave.LeaveType{
		ID: "new", Name: "Vacation", Code: "VAC", IsActive: true,
	}))

	// AND: A second active type with the same code is refused
	err := store.SaveLeaveType(ctx, leave.LeaveType{
		ID: "dup", Name: "Duplicate", Code: "VAC", IsActive: true,
	})
	assert.Error(t, err)
}

// =============================================================================
// REQUESTS
// =============================================================================

func sampleRequest(id string, start, end leave.Date, status leave.RequestStatus) leave.LeaveRequest {
	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	return leave.LeaveRequest{
		ID:          id,
		EmployeeID:  "emp-1",
		LeaveTypeID: "vacation",
		StartDate:   start,
		EndDate:     end,
		TotalDays:   decimal.NewFromInt(5),
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestRequests_RoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	approvedAt := time.Date(2026, 2, 2, 10, 0, 0, 0, time.UTC)
	r := sampleRequest("req-1",
		leave.NewDate(2026, time.March, 9), leave.NewDate(2026, time.March, 13),
		leave.StatusApproved)
	r.HalfDayStart = true
	r.TotalDays = decimal.NewFromFloat(4.5)
	r.ApproverID = "mgr-1"
	r.ApprovedAt = &approvedAt

	require.NoError(t, store.SaveRequest(ctx, r))

	got, err := store.GetRequest(ctx, "req-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, leave.StatusApproved, got.Status)
	assert.True(t, got.HalfDayStart)
	assert.True(t, got.TotalDays.Equal(decimal.NewFromFloat(4.5)))
	assert.Equal(t, "mgr-1", got.ApproverID)
	require.NotNil(t, got.ApprovedAt)
	assert.True(t, got.ApprovedAt.Equal(approvedAt))
	assert.Equal(t, "2026-03-09", got.StartDate.String())
}

func TestRequests_FilterByStatusAndOverlap(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRequest(ctx, sampleRequest("r1",
		leave.NewDate(2026, time.June, 1), leave.NewDate(2026, time.June, 5),
		leave.StatusApproved)))
	require.NoError(t, store.SaveRequest(ctx, sampleRequest("r2",
		leave.NewDate(2026, time.June, 8), leave.NewDate(2026, time.June, 12),
		leave.StatusRejected)))
	require.NoError(t, store.SaveRequest(ctx, sampleRequest("r3",
		leave.NewDate(2026, time.July, 1), leave.NewDate(2026, time.July, 3),
		leave.StatusPending)))

	// Overlap window touching r1's last day only
	got, err := store.ListRequests(ctx, leave.RequestFilter{
		Statuses:      []leave.RequestStatus{leave.StatusApproved, leave.StatusPending},
		OverlapsStart: leave.NewDate(2026, time.June, 5),
		OverlapsEnd:   leave.NewDate(2026, time.June, 10),
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "r1", got[0].ID)
}

func TestRequests_FilterByEmployee(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	r := sampleRequest("r1",
		leave.NewDate(2026, time.June, 1), leave.NewDate(2026, time.June, 5),
		leave.StatusPending)
	other := r
	other.ID = "r2"
	other.EmployeeID = "emp-2"
	require.NoError(t, store.SaveRequest(ctx, r))
	require.NoError(t, store.SaveRequest(ctx, other))

	mine, err := store.ListRequests(ctx, leave.RequestFilter{EmployeeID: "emp-1"})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "r1", mine[0].ID)

	theirs, err := store.ListRequests(ctx, leave.RequestFilter{ExcludeEmployeeID: "emp-1"})
	require.NoError(t, err)
	require.Len(t, theirs, 1)
	assert.Equal(t, "r2", theirs[0].ID)
}

// =============================================================================
// BALANCES
// =============================================================================

func TestBalances_UpsertByNaturalKey(t *testing.T) {
	// GIVEN: A saved balance
	store := newStore(t)
	ctx := context.Background()
	b := leave.LeaveBalance{
		ID:          "bal-1",
		EmployeeID:  "emp-1",
		LeaveTypeID: "vacation",
		Year:        2026,
		Entitlement: decimal.NewFromInt(20),
	}
	require.NoError(t, store.SaveBalance(ctx, b))

	// WHEN: Saving again for the same (employee, type, year) under a
	// different row ID
	b.ID = "bal-other"
	b.Pending = decimal.NewFromInt(3)
	require.NoError(t, store.SaveBalance(ctx, b))

	// THEN: Still exactly one row; the uniqueness guard turned the
	// second insert into an update
	balances, err := store.ListBalances(ctx, "emp-1", 2026)
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.True(t, balances[0].Pending.Equal(decimal.NewFromInt(3)))
}

func TestBalances_PersistsCallerTimestamp(t *testing.T) {
	// GIVEN: A balance stamped by the caller, not the store
	store := newStore(t)
	ctx := context.Background()
	stamped := time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC)
	require.NoError(t, store.SaveBalance(ctx, leave.LeaveBalance{
		ID: "bal-1", EmployeeID: "emp-1", LeaveTypeID: "vacation", Year: 2026,
		Entitlement: decimal.NewFromInt(20),
		UpdatedAt:   stamped,
	}))

	// WHEN: Reading it back
	got, err := store.GetBalance(ctx, "emp-1", "vacation", 2026)
	require.NoError(t, err)
	require.NotNil(t, got)

	// THEN: The stored timestamp is the caller's, to the second
	assert.True(t, got.UpdatedAt.Equal(stamped), "updated_at %s", got.UpdatedAt)
}

func TestBalances_GetMissingReturnsNil(t *testing.T) {
	store := newStore(t)

	got, err := store.GetBalance(context.Background(), "emp-1", "vacation", 2026)
	require.NoError(t, err)
	assert.Nil(t, got)
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func TestHolidays_RegionAndYearFilter(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveHoliday(ctx, leave.PublicHoliday{
		ID: "h1", Name: "New Year", Date: leave.NewDate(2026, time.January, 1), Region: "us",
	}))
	require.NoError(t, store.SaveHoliday(ctx, leave.PublicHoliday{
		ID: "h2", Name: "Bastille Day", Date: leave.NewDate(2026, time.July, 14), Region: "fr",
	}))
	require.NoError(t, store.SaveHoliday(ctx, leave.PublicHoliday{
		ID: "h3", Name: "New Year", Date: leave.NewDate(2027, time.January, 1), Region: "us",
	}))

	us2026, err := store.ListHolidays(ctx, "us", 2026)
	require.NoError(t, err)
	require.Len(t, us2026, 1)
	assert.Equal(t, "h1", us2026[0].ID)

	require.NoError(t, store.DeleteHoliday(ctx, "h1"))
	us2026, err = store.ListHolidays(ctx, "us", 2026)
	require.NoError(t, err)
	assert.Empty(t, us2026)
}

// =============================================================================
// THRESHOLDS
// =============================================================================

func TestThresholds_DefaultsAndOverride(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	th, err := store.GetThresholds(ctx)
	require.NoError(t, err)
	assert.Equal(t, leave.DefaultThresholds(), th)

	require.NoError(t, store.SaveThresholds(ctx, leave.Thresholds{
		WarningPercent: 30, CriticalPercent: 60,
	}))

	th, err = store.GetThresholds(ctx)
	require.NoError(t, err)
	assert.Equal(t, 30, th.WarningPercent)
	assert.Equal(t, 60, th.CriticalPercent)
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

func TestWithTx_RollsBackOnError(t *testing.T) {
	// GIVEN: An existing balance
	store := newStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveBalance(ctx, leave.LeaveBalance{
		ID: "bal-1", EmployeeID: "emp-1", LeaveTypeID: "vacation", Year: 2026,
		Entitlement: decimal.NewFromInt(20),
	}))

	// WHEN: A transaction mutates it and then fails
	boom := errors.New("boom")
	err := store.WithTx(ctx, func(tx leave.Store) error {
		b, err := tx.GetBalance(ctx, "emp-1", "vacation", 2026)
		if err != nil {
			return err
		}
		b.Pending = decimal.NewFromInt(5)
		if err := tx.SaveBalance(ctx, *b); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// THEN: The mutation is gone
	b, err := store.GetBalance(ctx, "emp-1", "vacation", 2026)
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.True(t, b.Pending.IsZero(), "pending %s", b.Pending)
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	err := store.WithTx(ctx, func(tx leave.Store) error {
		if err := tx.SaveBalance(ctx, leave.LeaveBalance{
			ID: "bal-1", EmployeeID: "emp-1", LeaveTypeID: "vacation", Year: 2026,
			Entitlement: decimal.NewFromInt(20),
		}); err != nil {
			return err
		}
		return tx.SaveRequest(ctx, sampleRequest("req-1",
			leave.NewDate(2026, time.March, 9), leave.NewDate(2026, time.March, 13),
			leave.StatusPending))
	})
	require.NoError(t, err)

	b, err := store.GetBalance(ctx, "emp-1", "vacation", 2026)
	require.NoError(t, err)
	assert.NotNil(t, b)

	r, err := store.GetRequest(ctx, "req-1")
	require.NoError(t, err)
	assert.NotNil(t, r)
}
