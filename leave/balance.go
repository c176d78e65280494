/*
balance.go - Balance ledger mutations

PURPOSE:
  The four counters on a LeaveBalance (entitlement, used, pending,
  carry-over) are only ever mutated through the helpers here, keyed to
  lifecycle transitions in service.go. Available() stays a derived value.

INVARIANTS:
  - pending and used never drop below zero; a negative delta past zero
    clamps at zero rather than going negative
  - available = entitlement + carryOver - used - pending after every
    mutation (no clamp on available itself; over-allocation shows as a
    negative number)

TRANSITION TABLE (who calls what):
  submit    ->  ApplyPendingDelta(+totalDays)
  approve   ->  MoveToUsed(totalDays)        pending -= n, used += n
  reject    ->  ApplyPendingDelta(-totalDays)
  cancel of pending  -> ApplyPendingDelta(-totalDays)
  cancel of approved -> ApplyUsedDelta(-totalDays)
*/
package leave

import "github.com/shopspring/decimal"

// ApplyPendingDelta adjusts the pending counter, clamping at zero.
func ApplyPendingDelta(b *LeaveBalance, delta decimal.Decimal) {
	b.Pending = floorZero(b.Pending.Add(delta))
}

// ApplyUsedDelta adjusts the used counter, clamping at zero.
func ApplyUsedDelta(b *LeaveBalance, delta decimal.Decimal) {
	b.Used = floorZero(b.Used.Add(delta))
}

// MoveToUsed records an approval: the requested days leave pending and
// enter used in one step.
func MoveToUsed(b *LeaveBalance, days decimal.Decimal) {
	ApplyPendingDelta(b, days.Neg())
	ApplyUsedDelta(b, days)
}

func floorZero(d decimal.Decimal) decimal.Decimal {
	if d.Sign() < 0 {
		return decimal.Zero
	}
	return d
}

// NewYearBalance returns a zero-valued balance row for an employee,
// leave type and year. InitializeYear on the service guards uniqueness
// before persisting these.
func NewYearBalance(id, employeeID, leaveTypeID string, year int) LeaveBalance {
	return LeaveBalance{
		ID:          id,
		EmployeeID:  employeeID,
		LeaveTypeID: leaveTypeID,
		Year:        year,
		Entitlement: decimal.Zero,
		Used:        decimal.Zero,
		Pending:     decimal.Zero,
		CarryOver:   decimal.Zero,
	}
}
