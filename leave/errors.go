/*
errors.go - Centralized error types for the leave core

PURPOSE:
  All validation failures surface synchronously to the caller as one of
  four categories. Collaborators (HTTP handlers, jobs) map categories to
  their own surfaces; none are retried automatically.

ERROR CATEGORIES:
  1. InvalidRange      - start date after end date
  2. PolicyViolation   - request exceeds a leave-type rule
  3. InvalidTransition - lifecycle transition not permitted
  4. NotFound          - referenced leave type or balance missing

USAGE:
  Check categories with errors.Is:

    if errors.Is(err, leave.ErrPolicyViolation) { ... }

  Structured variants carry context and unwrap to their sentinel.
*/
package leave

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidRange is returned when a start date is after its end date.
	ErrInvalidRange = errors.New("invalid range: start after end")

	// ErrPolicyViolation is returned when a request breaks a leave-type
	// rule (inactive type, zero working days, per-request day cap).
	ErrPolicyViolation = errors.New("policy violation")

	// ErrInvalidTransition is returned when a lifecycle transition is not
	// permitted from the request's current status.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrNotFound is returned when a referenced leave type, request or
	// balance does not exist.
	ErrNotFound = errors.New("not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidRangeError reports a reversed date range.
type InvalidRangeError struct {
	Start Date
	End   Date
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid range: start %s after end %s", e.Start, e.End)
}

func (e *InvalidRangeError) Unwrap() error { return ErrInvalidRange }

// PolicyViolationError reports which rule a request broke.
type PolicyViolationError struct {
	Rule      string // e.g. "max_days_per_request", "inactive_leave_type"
	LeaveType string
	Requested decimal.Decimal
	Limit     *decimal.Decimal
}

func (e *PolicyViolationError) Error() string {
	if e.Limit != nil {
		return fmt.Sprintf("policy violation (%s): requested %s days, limit %s for type %s",
			e.Rule, e.Requested, e.Limit, e.LeaveType)
	}
	return fmt.Sprintf("policy violation (%s) for type %s", e.Rule, e.LeaveType)
}

func (e *PolicyViolationError) Unwrap() error { return ErrPolicyViolation }

// InvalidTransitionError reports an illegal lifecycle move.
type InvalidTransitionError struct {
	RequestID string
	From      RequestStatus
	To        RequestStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition for request %s: %s -> %s", e.RequestID, e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// NotFoundError reports a missing record by kind and id.
type NotFoundError struct {
	Kind string // "leave_type", "request", "balance"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input
// rather than a system failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrPolicyViolation) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrNotFound)
}
