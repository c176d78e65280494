/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

DECIMALS:
  Day quantities use decimal.Decimal, which marshals to a quoted
  string ("2.5") and unmarshals from either a string or a bare
  number. The exact decimal representation means 2.5 days never
  becomes 2.4999999.

VALIDATION:
  Validation is done in handlers and the domain layer, not in DTOs.
  DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - leave/types.go: Domain model these map from
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/leavedesk/leave"
)

// =============================================================================
// LEAVE TYPES
// =============================================================================

// LeaveTypeDTO represents a leave type in API responses.
type LeaveTypeDTO struct {
	ID                string           `json:"id"`
	Name              string           `json:"name"`
	Code              string           `json:"code"`
	Color             string           `json:"color,omitempty"`
	Icon              string           `json:"icon,omitempty"`
	RequiresApproval  bool             `json:"requires_approval"`
	MaxDaysPerRequest *decimal.Decimal `json:"max_days_per_request,omitempty"`
	IsActive          bool             `json:"is_active"`
	SortOrder         int              `json:"sort_order"`
	CreatedAt         string           `json:"created_at,omitempty"`
}

// UpsertLeaveTypeRequest creates or updates a leave type.
type UpsertLeaveTypeRequest struct {
	Name              string           `json:"name"`
	Code              string           `json:"code"`
	Color             string           `json:"color"`
	Icon              string           `json:"icon"`
	RequiresApproval  *bool            `json:"requires_approval,omitempty"`
	MaxDaysPerRequest *decimal.Decimal `json:"max_days_per_request,omitempty"`
	SortOrder         int              `json:"sort_order"`
}

func leaveTypeDTO(lt leave.LeaveType) LeaveTypeDTO {
	return LeaveTypeDTO{
		ID:                lt.ID,
		Name:              lt.Name,
		Code:              lt.Code,
		Color:             lt.Color,
		Icon:              lt.Icon,
		RequiresApproval:  lt.RequiresApproval,
		MaxDaysPerRequest: lt.MaxDaysPerRequest,
		IsActive:          lt.IsActive,
		SortOrder:         lt.SortOrder,
		CreatedAt:         lt.CreatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// REQUESTS
// =============================================================================

// SubmitRequestDTO is the request body for submitting leave.
type SubmitRequestDTO struct {
	EmployeeID    string `json:"employee_id"`
	EmployeeName  string `json:"employee_name"`
	EmployeeEmail string `json:"employee_email"`
	LeaveTypeID   string `json:"leave_type_id"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	HalfDayStart  bool   `json:"half_day_start"`
	HalfDayEnd    bool   `json:"half_day_end"`
	Reason        string `json:"reason"`
}

// DecideRequestDTO carries approver identity for approve/reject.
type DecideRequestDTO struct {
	ApproverID   string `json:"approver_id"`
	ApproverName string `json:"approver_name"`
	Comments     string `json:"comments"`
}

// RequestDTO represents a leave request in API responses.
type RequestDTO struct {
	ID               string          `json:"id"`
	EmployeeID       string          `json:"employee_id"`
	EmployeeName     string          `json:"employee_name,omitempty"`
	EmployeeEmail    string          `json:"employee_email,omitempty"`
	LeaveTypeID      string          `json:"leave_type_id"`
	StartDate        string          `json:"start_date"`
	EndDate          string          `json:"end_date"`
	HalfDayStart     bool            `json:"half_day_start"`
	HalfDayEnd       bool            `json:"half_day_end"`
	TotalDays        decimal.Decimal `json:"total_days"`
	Reason           string          `json:"reason,omitempty"`
	Status           string          `json:"status"`
	ApproverID       string          `json:"approver_id,omitempty"`
	ApproverName     string          `json:"approver_name,omitempty"`
	ApproverComments string          `json:"approver_comments,omitempty"`
	ApprovedAt       string          `json:"approved_at,omitempty"`
	CreatedAt        string          `json:"created_at,omitempty"`
}

func requestDTO(r leave.LeaveRequest) RequestDTO {
	dto := RequestDTO{
		ID:               r.ID,
		EmployeeID:       r.EmployeeID,
		EmployeeName:     r.EmployeeName,
		EmployeeEmail:    r.EmployeeEmail,
		LeaveTypeID:      r.LeaveTypeID,
		StartDate:        r.StartDate.String(),
		EndDate:          r.EndDate.String(),
		HalfDayStart:     r.HalfDayStart,
		HalfDayEnd:       r.HalfDayEnd,
		TotalDays:        r.TotalDays,
		Reason:           r.Reason,
		Status:           string(r.Status),
		ApproverID:       r.ApproverID,
		ApproverName:     r.ApproverName,
		ApproverComments: r.ApproverComments,
		CreatedAt:        r.CreatedAt.Format(time.RFC3339),
	}
	if r.ApprovedAt != nil {
		dto.ApprovedAt = r.ApprovedAt.Format(time.RFC3339)
	}
	return dto
}

func requestDTOs(requests []leave.LeaveRequest) []RequestDTO {
	dtos := make([]RequestDTO, 0, len(requests))
	for _, r := range requests {
		dtos = append(dtos, requestDTO(r))
	}
	return dtos
}

// =============================================================================
// BALANCES
// =============================================================================

// BalanceDTO represents one employee/type/year balance row.
type BalanceDTO struct {
	ID          string          `json:"id"`
	EmployeeID  string          `json:"employee_id"`
	LeaveTypeID string          `json:"leave_type_id"`
	Year        int             `json:"year"`
	Entitlement decimal.Decimal `json:"entitlement"`
	Used        decimal.Decimal `json:"used"`
	Pending     decimal.Decimal `json:"pending"`
	CarryOver   decimal.Decimal `json:"carry_over"`
	Available   decimal.Decimal `json:"available"`
}

func balanceDTO(b leave.LeaveBalance) BalanceDTO {
	return BalanceDTO{
		ID:          b.ID,
		EmployeeID:  b.EmployeeID,
		LeaveTypeID: b.LeaveTypeID,
		Year:        b.Year,
		Entitlement: b.Entitlement,
		Used:        b.Used,
		Pending:     b.Pending,
		CarryOver:   b.CarryOver,
		Available:   b.Available(),
	}
}

// InitializeYearRequest creates zero balances for every active type.
type InitializeYearRequest struct {
	Year int `json:"year"`
}

// AdjustBalanceRequest sets entitlement and carry-over for one balance.
// Used and pending are never adjusted directly; they move only through
// the request lifecycle.
type AdjustBalanceRequest struct {
	Year        int              `json:"year"`
	Entitlement *decimal.Decimal `json:"entitlement,omitempty"`
	CarryOver   *decimal.Decimal `json:"carry_over,omitempty"`
}

// =============================================================================
// HOLIDAYS
// =============================================================================

// HolidayDTO represents a public holiday.
type HolidayDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Date      string `json:"date"`
	Region    string `json:"region,omitempty"`
	Recurring bool   `json:"recurring"`
}

// CreateHolidayRequest adds a public holiday.
type CreateHolidayRequest struct {
	Name      string `json:"name"`
	Date      string `json:"date"`
	Region    string `json:"region"`
	Recurring bool   `json:"recurring"`
}

func holidayDTO(h leave.PublicHoliday) HolidayDTO {
	return HolidayDTO{
		ID:        h.ID,
		Name:      h.Name,
		Date:      h.Date.String(),
		Region:    h.Region,
		Recurring: h.Recurring,
	}
}

// =============================================================================
// CONFLICTS
// =============================================================================

// AnalyzeConflictsRequest asks for a coverage check of a date range.
// TeamMemberIDs are the colleagues whose requests count; RequesterID
// is the person asking and is excluded so their own requests never
// count against team coverage. TeamSize is the denominator for
// coverage (defaults to len(TeamMemberIDs)).
type AnalyzeConflictsRequest struct {
	RequesterID   string   `json:"requester_id,omitempty"`
	StartDate     string   `json:"start_date"`
	EndDate       string   `json:"end_date"`
	TeamMemberIDs []string `json:"team_member_ids"`
	TeamSize      int      `json:"team_size,omitempty"`
}

// ConflictAnalysisDTO is the analyzer verdict.
type ConflictAnalysisDTO struct {
	HasConflict         bool         `json:"has_conflict"`
	Severity            string       `json:"severity"`
	OverlappingRequests []RequestDTO `json:"overlapping_requests"`
	TeamCoveragePercent int          `json:"team_coverage_percent"`
	Message             string       `json:"message"`
	Suggestions         []string     `json:"suggestions,omitempty"`
}

// ThresholdsDTO configures conflict severity boundaries.
type ThresholdsDTO struct {
	WarningPercent  int `json:"warning_percent"`
	CriticalPercent int `json:"critical_percent"`
}

// =============================================================================
// ADMIN
// =============================================================================

// RolloverRequest triggers a year-end rollover.
type RolloverRequest struct {
	FromYear int `json:"from_year"`
}

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
