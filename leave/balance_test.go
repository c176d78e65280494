package leave_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/warp/leavedesk/leave"
)

func days(n float64) decimal.Decimal { return decimal.NewFromFloat(n) }

func TestAvailable_Formula(t *testing.T) {
	// GIVEN: entitlement 20, carry-over 3, used 5, pending 2
	b := leave.LeaveBalance{
		Entitlement: days(20),
		CarryOver:   days(3),
		Used:        days(5),
		Pending:     days(2),
	}

	// THEN: available = 20 + 3 - 5 - 2 = 16
	assert.True(t, b.Available().Equal(days(16)), "got %s", b.Available())
}

func TestAvailable_CanGoNegative(t *testing.T) {
	// GIVEN: more consumed than granted (retroactive entitlement cut)
	b := leave.LeaveBalance{Entitlement: days(5), Used: days(8)}

	// THEN: available reports the true deficit, not zero
	assert.True(t, b.Available().Equal(days(-3)), "got %s", b.Available())
}

func TestApplyPendingDelta_ClampsAtZero(t *testing.T) {
	// GIVEN: pending 1
	b := leave.LeaveBalance{Pending: days(1)}

	// WHEN: Subtracting more than is pending
	leave.ApplyPendingDelta(&b, days(-5))

	// THEN: pending floors at zero instead of going negative
	assert.True(t, b.Pending.IsZero(), "got %s", b.Pending)
}

func TestApplyUsedDelta_ClampsAtZero(t *testing.T) {
	b := leave.LeaveBalance{Used: days(2)}

	leave.ApplyUsedDelta(&b, days(-3))

	assert.True(t, b.Used.IsZero(), "got %s", b.Used)
}

func TestMoveToUsed(t *testing.T) {
	// GIVEN: 4.5 days pending
	b := leave.LeaveBalance{Pending: days(4.5)}

	// WHEN: An approval moves 4.5 days to used
	leave.MoveToUsed(&b, days(4.5))

	// THEN: pending drains, used fills
	assert.True(t, b.Pending.IsZero(), "pending %s", b.Pending)
	assert.True(t, b.Used.Equal(days(4.5)), "used %s", b.Used)
}

func TestNewYearBalance_StartsAtZero(t *testing.T) {
	b := leave.NewYearBalance("id-1", "emp-1", "type-1", 2026)

	assert.Equal(t, 2026, b.Year)
	assert.True(t, b.Entitlement.IsZero())
	assert.True(t, b.Used.IsZero())
	assert.True(t, b.Pending.IsZero())
	assert.True(t, b.CarryOver.IsZero())
	assert.True(t, b.Available().IsZero())
}
