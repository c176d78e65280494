package rollover_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leavedesk/leave"
	"github.com/warp/leavedesk/rollover"
	"github.com/warp/leavedesk/store/memory"
)

func newRoller(store *memory.Store) *rollover.Roller {
	seq := 0
	return rollover.NewRoller(store, zerolog.Nop(), func() string {
		seq++
		return fmt.Sprintf("roll-%d", seq)
	})
}

func saveBalance(t *testing.T, store *memory.Store, employeeID string, entitlement, used, pending, carry float64) {
	t.Helper()
	require.NoError(t, store.SaveBalance(context.Background(), leave.LeaveBalance{
		ID:          employeeID + "-2026",
		EmployeeID:  employeeID,
		LeaveTypeID: "vacation",
		Year:        2026,
		Entitlement: decimal.NewFromFloat(entitlement),
		Used:        decimal.NewFromFloat(used),
		Pending:     decimal.NewFromFloat(pending),
		CarryOver:   decimal.NewFromFloat(carry),
	}))
}

func TestRun_CarriesRemainderForward(t *testing.T) {
	// GIVEN: 20 entitled + 2 carried, 15 used, 1 pending => 6 available
	store := memory.New()
	saveBalance(t, store, "emp-1", 20, 15, 1, 2)

	// WHEN: Rolling 2026 into 2027
	result, err := newRoller(store).Run(context.Background(), 2026)
	require.NoError(t, err)

	// THEN: New row carries 6, copies entitlement, starts clean
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 0, result.Skipped)

	next, err := store.GetBalance(context.Background(), "emp-1", "vacation", 2027)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.True(t, next.CarryOver.Equal(decimal.NewFromInt(6)), "carry %s", next.CarryOver)
	assert.True(t, next.Entitlement.Equal(decimal.NewFromInt(20)))
	assert.True(t, next.Used.IsZero())
	assert.True(t, next.Pending.IsZero())
}

func TestRun_NegativeAvailabilityFloorsAtZero(t *testing.T) {
	// GIVEN: More consumed than granted
	store := memory.New()
	saveBalance(t, store, "emp-1", 5, 8, 0, 0)

	// WHEN: Rolling over
	_, err := newRoller(store).Run(context.Background(), 2026)
	require.NoError(t, err)

	// THEN: Deficits do not follow the employee into the new year
	next, err := store.GetBalance(context.Background(), "emp-1", "vacation", 2027)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.True(t, next.CarryOver.IsZero(), "carry %s", next.CarryOver)
}

func TestRun_Idempotent(t *testing.T) {
	// GIVEN: A completed rollover
	store := memory.New()
	saveBalance(t, store, "emp-1", 20, 10, 0, 0)
	roller := newRoller(store)
	_, err := roller.Run(context.Background(), 2026)
	require.NoError(t, err)

	// WHEN: Running it again
	second, err := roller.Run(context.Background(), 2026)
	require.NoError(t, err)

	// THEN: Existing target rows are skipped, not overwritten
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 1, second.Skipped)

	balances, err := store.ListBalancesForYear(context.Background(), 2027)
	require.NoError(t, err)
	assert.Len(t, balances, 1)
}

func TestRun_MultipleEmployees(t *testing.T) {
	store := memory.New()
	saveBalance(t, store, "emp-1", 20, 5, 0, 0)
	saveBalance(t, store, "emp-2", 25, 25, 0, 0)

	result, err := newRoller(store).Run(context.Background(), 2026)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)

	b1, err := store.GetBalance(context.Background(), "emp-1", "vacation", 2027)
	require.NoError(t, err)
	assert.True(t, b1.CarryOver.Equal(decimal.NewFromInt(15)))

	b2, err := store.GetBalance(context.Background(), "emp-2", "vacation", 2027)
	require.NoError(t, err)
	assert.True(t, b2.CarryOver.IsZero())
}
