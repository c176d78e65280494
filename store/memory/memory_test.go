package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leavedesk/leave"
	"github.com/warp/leavedesk/store/memory"
)

func TestWithTx_RestoresSnapshotOnError(t *testing.T) {
	// GIVEN: A store with one balance and one request
	store := memory.New()
	ctx := context.Background()
	require.NoError(t, store.SaveBalance(ctx, leave.LeaveBalance{
		ID: "bal-1", EmployeeID: "emp-1", LeaveTypeID: "vacation", Year: 2026,
		Entitlement: decimal.NewFromInt(20),
	}))

	// WHEN: A transaction mutates both and fails at the end
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
		if err := tx.SaveRequest(ctx, leave.LeaveRequest{
			ID: "req-1", EmployeeID: "emp-1", LeaveTypeID: "vacation",
			StartDate: leave.NewDate(2026, time.March, 9),
			EndDate:   leave.NewDate(2026, time.March, 13),
			TotalDays: decimal.NewFromInt(5),
			Status:    leave.StatusPending,
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// THEN: Neither write survived
	b, err := store.GetBalance(ctx, "emp-1", "vacation", 2026)
	require.NoError(t, err)
	assert.True(t, b.Pending.IsZero())

	r, err := store.GetRequest(ctx, "req-1")
	require.NoError(t, err)
	assert.Nil(t, r)
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	err := store.WithTx(ctx, func(tx leave.Store) error {
		return tx.SaveLeaveType(ctx, leave.LeaveType{
			ID: "vacation", Name: "Vacation", Code: "VAC", IsActive: true,
		})
	})
	require.NoError(t, err)

	lt, err := store.GetLeaveType(ctx, "vacation")
	require.NoError(t, err)
	assert.NotNil(t, lt)
}
