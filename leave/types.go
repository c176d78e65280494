/*
Package leave implements the leave accounting and scheduling core.

PURPOSE:
  This package contains the domain model and algorithms for a
  leave-management system: working-day computation, per-year balance
  bookkeeping (entitlement, used, pending, carry-over), the request
  lifecycle state machine, and the team overlap/conflict analyzer.

KEY CONCEPTS IN THIS FILE (types.go):
  - LeaveType:       An administrator-configured category (PTO, sick, ...)
  - LeaveRequest:    An employee's dated request with lifecycle status
  - LeaveBalance:    Entitlement/used/pending/carry-over for one
                     (employee, leave type, year)
  - PublicHoliday:   A dated holiday record (region-scoped)
  - ConflictAnalysis: Ephemeral result of the overlap analyzer

DESIGN PRINCIPLES:
  1. Precision: All day quantities use decimal.Decimal (halves only)
  2. Derived values are computed, never stored alongside their inputs:
     Available() replays entitlement + carryOver - used - pending
  3. Statuses are a closed enum; transitions live in service.go

SEE ALSO:
  - date.go:     Date type and working-day counting
  - balance.go:  Ledger mutations with zero-floor clamping
  - service.go:  Submit/Approve/Reject/Cancel state machine
  - conflict.go: Deterministic overlap analyzer
*/
package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// LEAVE TYPE - Administrator-configured category
// =============================================================================

// LeaveType is a category of leave an employee can request.
// Code is unique among active types; archived types keep their rows so
// historic requests stay resolvable (types are never hard-deleted while
// referenced).
type LeaveType struct {
	ID                string
	Name              string
	Code              string
	Color             string
	Icon              string
	RequiresApproval  bool
	MaxDaysPerRequest *decimal.Decimal // nil = no cap
	IsActive          bool
	SortOrder         int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// =============================================================================
// LEAVE REQUEST - Dated request with lifecycle status
// =============================================================================

type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusApproved  RequestStatus = "approved"
	StatusRejected  RequestStatus = "rejected"
	StatusCancelled RequestStatus = "cancelled"
)

// LeaveRequest is a request for time off between StartDate and EndDate
// inclusive. TotalDays is derived from the working-day count at submit
// time and persisted with the request.
type LeaveRequest struct {
	ID            string
	EmployeeID    string
	EmployeeName  string
	EmployeeEmail string
	LeaveTypeID   string

	StartDate    Date
	EndDate      Date
	HalfDayStart bool
	HalfDayEnd   bool
	TotalDays    decimal.Decimal

	Reason string
	Status RequestStatus

	// Approval tracking (set on approve/reject)
	ApproverID       string
	ApproverName     string
	ApproverComments string
	ApprovedAt       *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Overlaps reports whether the request's date range intersects
// [start, end] inclusively. Half-day flags do not narrow the interval:
// a half-day absence still blocks the whole day for coverage purposes.
func (r *LeaveRequest) Overlaps(start, end Date) bool {
	return !start.After(r.EndDate) && !end.Before(r.StartDate)
}

// CountsForCoverage reports whether the request holds team capacity
// (approved or pending; rejected/cancelled requests never conflict).
func (r *LeaveRequest) CountsForCoverage() bool {
	return r.Status == StatusApproved || r.Status == StatusPending
}

// =============================================================================
// LEAVE BALANCE - Per (employee, leave type, year) counters
// =============================================================================

// LeaveBalance holds the four counters for one employee, leave type and
// year. One row per (EmployeeID, LeaveTypeID, Year); the store enforces
// uniqueness.
type LeaveBalance struct {
	ID          string
	EmployeeID  string
	LeaveTypeID string
	Year        int

	Entitlement decimal.Decimal
	Used        decimal.Decimal
	Pending     decimal.Decimal
	CarryOver   decimal.Decimal

	UpdatedAt time.Time
}

// Available returns entitlement + carryOver - used - pending.
// Not clamped: a negative result signals an admin over-allocation and is
// the caller's to present.
func (b *LeaveBalance) Available() decimal.Decimal {
	return b.Entitlement.Add(b.CarryOver).Sub(b.Used).Sub(b.Pending)
}

// =============================================================================
// PUBLIC HOLIDAY
// =============================================================================

// PublicHoliday is a dated holiday record. Recurring is stored but not
// expanded into future years; see DESIGN.md for the open question on
// holiday exclusion from working-day counts.
type PublicHoliday struct {
	ID        string
	Name      string
	Date      Date
	Region    string
	Recurring bool
	CreatedAt time.Time
}

// =============================================================================
// CONFLICT ANALYSIS - Ephemeral analyzer output (never persisted)
// =============================================================================

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// ConflictAnalysis is the result of analyzing a candidate date range
// against a team's existing approved/pending requests.
type ConflictAnalysis struct {
	HasConflict         bool
	Severity            Severity
	OverlappingRequests []LeaveRequest
	TeamCoveragePercent int
	Message             string
	Suggestions         []string
}
