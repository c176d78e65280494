/*
service.go - Request lifecycle state machine

PURPOSE:
  Orchestrates the full lifecycle of leave requests and keeps the
  balance ledger in step with every transition.

STATE MACHINE:
  pending  -> approved | rejected | cancelled
  approved -> cancelled
  rejected, cancelled: terminal

LEDGER EFFECTS:
  submit            pending += totalDays
  approve           pending -= totalDays, used += totalDays
  reject            pending -= totalDays
  cancel (pending)  pending -= totalDays
  cancel (approved) used    -= totalDays

  All pending/used adjustments clamp at zero (balance.go).

ATOMICITY:
  Each transition runs inside TxStore.WithTx: the request's status and
  the balance delta commit together or not at all.

VALIDATION (on submit):
  - leave type exists and is active
  - startDate <= endDate
  - totalDays (working-day count) > 0
  - totalDays <= MaxDaysPerRequest when the type declares a cap
  Violations surface as ErrNotFound / ErrInvalidRange / ErrPolicyViolation
  and leave the balance untouched.

SEE ALSO:
  - balance.go: ledger helpers
  - date.go:    working-day count
  - store.go:   TxStore contract
*/
package leave

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// REQUEST SERVICE
// =============================================================================

// RequestService handles the request lifecycle against a transactional
// store. Clock and NewID are injectable for tests.
type RequestService struct {
	Store TxStore

	// Calendar for working-day counts. Defaults to NoHolidays (the
	// reference behavior: weekends only).
	Calendar HolidayCalendar

	Clock func() time.Time
	NewID func() string
}

func NewRequestService(store TxStore) *RequestService {
	return &RequestService{
		Store:    store,
		Calendar: NoHolidays{},
		Clock:    time.Now,
		NewID:    uuid.NewString,
	}
}

func (s *RequestService) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

func (s *RequestService) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

// =============================================================================
// SUBMIT
// =============================================================================

// SubmitInput carries everything needed to create a request.
type SubmitInput struct {
	EmployeeID    string
	EmployeeName  string
	EmployeeEmail string
	LeaveTypeID   string
	StartDate     Date
	EndDate       Date
	HalfDayStart  bool
	HalfDayEnd    bool
	Reason        string
}

// Submit validates the input, computes the working-day total, creates a
// pending request and reserves the days against the start-year balance.
func (s *RequestService) Submit(ctx context.Context, in SubmitInput) (*LeaveRequest, error) {
	lt, err := s.Store.GetLeaveType(ctx, in.LeaveTypeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load leave type: %w", err)
	}
	if lt == nil {
		return nil, &NotFoundError{Kind: "leave_type", ID: in.LeaveTypeID}
	}
	if !lt.IsActive {
		return nil, &PolicyViolationError{Rule: "inactive_leave_type", LeaveType: lt.Code}
	}

	total, err := WorkingDaysWithCalendar(in.StartDate, in.EndDate, in.HalfDayStart, in.HalfDayEnd, s.Calendar)
	if err != nil {
		return nil, err
	}
	if total.Sign() <= 0 {
		return nil, &PolicyViolationError{Rule: "no_working_days", LeaveType: lt.Code, Requested: total}
	}
	if lt.MaxDaysPerRequest != nil && total.GreaterThan(*lt.MaxDaysPerRequest) {
		return nil, &PolicyViolationError{
			Rule:      "max_days_per_request",
			LeaveType: lt.Code,
			Requested: total,
			Limit:     lt.MaxDaysPerRequest,
		}
	}

	now := s.now()
	request := &LeaveRequest{
		ID:            s.newID(),
		EmployeeID:    in.EmployeeID,
		EmployeeName:  in.EmployeeName,
		EmployeeEmail: in.EmployeeEmail,
		LeaveTypeID:   in.LeaveTypeID,
		StartDate:     in.StartDate,
		EndDate:       in.EndDate,
		HalfDayStart:  in.HalfDayStart,
		HalfDayEnd:    in.HalfDayEnd,
		TotalDays:     total,
		Reason:        in.Reason,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = s.Store.WithTx(ctx, func(tx Store) error {
		balance, err := tx.GetBalance(ctx, in.EmployeeID, in.LeaveTypeID, in.StartDate.Year())
		if err != nil {
			return fmt.Errorf("failed to load balance: %w", err)
		}
		if balance == nil {
			return &NotFoundError{
				Kind: "balance",
				ID:   fmt.Sprintf("%s/%s/%d", in.EmployeeID, in.LeaveTypeID, in.StartDate.Year()),
			}
		}

		ApplyPendingDelta(balance, total)
		balance.UpdatedAt = now
		if err := tx.SaveBalance(ctx, *balance); err != nil {
			return fmt.Errorf("failed to save balance: %w", err)
		}
		return tx.SaveRequest(ctx, *request)
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// =============================================================================
// APPROVE / REJECT / CANCEL
// =============================================================================

// Approve moves a pending request to approved and shifts its days from
// pending to used on the ledger.
func (s *RequestService) Approve(ctx context.Context, requestID, approverID, approverName, comments string) (*LeaveRequest, error) {
	return s.transition(ctx, requestID, StatusApproved, func(req *LeaveRequest, balance *LeaveBalance, now time.Time) {
		req.ApproverID = approverID
		req.ApproverName = approverName
		req.ApproverComments = comments
		req.ApprovedAt = &now
		MoveToUsed(balance, req.TotalDays)
	})
}

// Reject moves a pending request to rejected and releases the reserved
// pending days.
func (s *RequestService) Reject(ctx context.Context, requestID, approverID, approverName, comments string) (*LeaveRequest, error) {
	return s.transition(ctx, requestID, StatusRejected, func(req *LeaveRequest, balance *LeaveBalance, _ time.Time) {
		req.ApproverID = approverID
		req.ApproverName = approverName
		req.ApproverComments = comments
		ApplyPendingDelta(balance, req.TotalDays.Neg())
	})
}

// Cancel moves a pending or approved request to cancelled, reversing
// whichever counter the request currently occupies.
func (s *RequestService) Cancel(ctx context.Context, requestID string) (*LeaveRequest, error) {
	return s.transition(ctx, requestID, StatusCancelled, func(req *LeaveRequest, balance *LeaveBalance, _ time.Time) {
		// The effect depends on the status being left; transition has
		// already verified it is pending or approved.
		if req.Status == StatusPending {
			ApplyPendingDelta(balance, req.TotalDays.Neg())
		} else {
			ApplyUsedDelta(balance, req.TotalDays.Neg())
		}
	})
}

// legalFrom lists which statuses may move to the target status.
func legalFrom(to RequestStatus) []RequestStatus {
	switch to {
	case StatusApproved, StatusRejected:
		return []RequestStatus{StatusPending}
	case StatusCancelled:
		return []RequestStatus{StatusPending, StatusApproved}
	default:
		return nil
	}
}

// transition loads the request and its balance, applies the mutation and
// persists both atomically.
func (s *RequestService) transition(
	ctx context.Context,
	requestID string,
	to RequestStatus,
	apply func(req *LeaveRequest, balance *LeaveBalance, now time.Time),
) (*LeaveRequest, error) {
	var result *LeaveRequest

	err := s.Store.WithTx(ctx, func(tx Store) error {
		req, err := tx.GetRequest(ctx, requestID)
		if err != nil {
			return fmt.Errorf("failed to load request: %w", err)
		}
		if req == nil {
			return &NotFoundError{Kind: "request", ID: requestID}
		}

		allowed := false
		for _, from := range legalFrom(to) {
			if req.Status == from {
				allowed = true
				break
			}
		}
		if !allowed {
			return &InvalidTransitionError{RequestID: requestID, From: req.Status, To: to}
		}

		balance, err := tx.GetBalance(ctx, req.EmployeeID, req.LeaveTypeID, req.StartDate.Year())
		if err != nil {
			return fmt.Errorf("failed to load balance: %w", err)
		}
		if balance == nil {
			return &NotFoundError{
				Kind: "balance",
				ID:   fmt.Sprintf("%s/%s/%d", req.EmployeeID, req.LeaveTypeID, req.StartDate.Year()),
			}
		}

		now := s.now()
		apply(req, balance, now)
		req.Status = to
		req.UpdatedAt = now
		balance.UpdatedAt = now

		if err := tx.SaveBalance(ctx, *balance); err != nil {
			return fmt.Errorf("failed to save balance: %w", err)
		}
		if err := tx.SaveRequest(ctx, *req); err != nil {
			return fmt.Errorf("failed to save request: %w", err)
		}

		result = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// =============================================================================
// YEAR INITIALIZATION
// =============================================================================

// InitializeYear creates one zero-valued balance row per active leave
// type for the employee and year. Existing rows are left untouched, so
// repeated calls are idempotent.
func (s *RequestService) InitializeYear(ctx context.Context, employeeID string, year int) ([]LeaveBalance, error) {
	types, err := s.Store.ListLeaveTypes(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave types: %w", err)
	}

	var created []LeaveBalance
	err = s.Store.WithTx(ctx, func(tx Store) error {
		for _, lt := range types {
			existing, err := tx.GetBalance(ctx, employeeID, lt.ID, year)
			if err != nil {
				return err
			}
			if existing != nil {
				continue
			}
			b := NewYearBalance(s.newID(), employeeID, lt.ID, year)
			b.UpdatedAt = s.now()
			if err := tx.SaveBalance(ctx, b); err != nil {
				return err
			}
			created = append(created, b)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
