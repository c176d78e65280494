/*
Package rollover carries unused leave into the next year.

PURPOSE:
  At year end, each employee's remaining allowance becomes the next
  year's carry-over. Entitlement is copied forward unchanged; pending
  and used start the new year at zero.

RULES:
  - carryOver(Y+1) = max(0, available(Y))
    Negative availability (over-consumption) never produces negative
    carry-over.
  - Rollover is idempotent per (employee, leave type, year): a balance
    row that already exists for the target year is left untouched, so
    re-running a partially failed rollover is safe.

SEE ALSO:
  - rollover/scheduler.go: Cron-driven automatic runs
  - api/handlers.go: Manual trigger endpoint
*/
package rollover

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/warp/leavedesk/leave"
)

// Roller performs year-end balance rollovers.
type Roller struct {
	Store leave.TxStore
	Log   zerolog.Logger
	NewID func() string
}

// NewRoller creates a Roller with the default ID generator.
func NewRoller(store leave.TxStore, log zerolog.Logger, newID func() string) *Roller {
	return &Roller{Store: store, Log: log, NewID: newID}
}

// Result summarizes one rollover run.
type Result struct {
	FromYear int `json:"fromYear"`
	ToYear   int `json:"toYear"`
	Created  int `json:"created"`
	Skipped  int `json:"skipped"`
}

// Run rolls every balance of fromYear into fromYear+1. Balances that
// already exist for the target year are skipped. The whole run commits
// atomically.
func (r *Roller) Run(ctx context.Context, fromYear int) (Result, error) {
	toYear := fromYear + 1
	result := Result{FromYear: fromYear, ToYear: toYear}

	err := r.Store.WithTx(ctx, func(tx leave.Store) error {
		balances, err := tx.ListBalancesForYear(ctx, fromYear)
		if err != nil {
			return fmt.Errorf("failed to list balances for %d: %w", fromYear, err)
		}

		for _, b := range balances {
			existing, err := tx.GetBalance(ctx, b.EmployeeID, b.LeaveTypeID, toYear)
			if err != nil {
				return err
			}
			if existing != nil {
				result.Skipped++
				continue
			}

			carry := b.Available()
			if carry.Sign() < 0 {
				carry = decimal.Zero
			}

			next := leave.NewYearBalance(r.NewID(), b.EmployeeID, b.LeaveTypeID, toYear)
			next.Entitlement = b.Entitlement
			next.CarryOver = carry
			next.UpdatedAt = time.Now().UTC()

			if err := tx.SaveBalance(ctx, next); err != nil {
				return err
			}
			result.Created++
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	r.Log.Info().
		Int("from_year", fromYear).
		Int("to_year", toYear).
		Int("created", result.Created).
		Int("skipped", result.Skipped).
		Msg("rollover complete")
	return result, nil
}
