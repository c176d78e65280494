/*
handlers.go - HTTP handlers for the leave management API

PURPOSE:
  Implements all HTTP endpoints. Each handler parses the request,
  delegates to the domain layer, and serializes the response.

ENDPOINTS:
  Leave types:
    GET    /api/leave-types              List (optionally active only)
    POST   /api/leave-types              Create
    GET    /api/leave-types/{id}         Get
    PUT    /api/leave-types/{id}         Update
    DELETE /api/leave-types/{id}         Archive (never hard-deletes)

  Requests:
    POST   /api/requests                 Submit leave request
    GET    /api/requests                 List (filter by employee/status)
    GET    /api/requests/{id}            Get
    POST   /api/requests/{id}/approve    Approve (pending only)
    POST   /api/requests/{id}/reject     Reject (pending only)
    POST   /api/requests/{id}/cancel     Cancel (pending or approved)

  Balances:
    GET    /api/employees/{id}/balances            List for a year
    POST   /api/employees/{id}/balances/initialize Create year rows
    PUT    /api/employees/{id}/balances/{typeId}   Adjust entitlement

  Holidays:
    GET    /api/holidays                 List (filter by region/year)
    POST   /api/holidays                 Create
    DELETE /api/holidays/{id}            Delete

  Conflicts:
    POST   /api/conflicts/analyze        Team coverage analysis
    GET    /api/settings/thresholds      Read severity thresholds
    PUT    /api/settings/thresholds      Update severity thresholds

  Admin:
    POST   /api/admin/rollover           Year-end balance rollover

ERROR MAPPING:
  Domain errors map to status codes through their sentinels:
    ErrInvalidRange, ErrPolicyViolation -> 400
    ErrNotFound                         -> 404
    ErrInvalidTransition                -> 409
    anything else                       -> 500

SEE ALSO:
  - server.go: Route wiring
  - leave/service.go: Request lifecycle logic
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/warp/leavedesk/leave"
	"github.com/warp/leavedesk/rollover"
)

// Handler holds all dependencies for the HTTP layer.
type Handler struct {
	Store   leave.TxStore
	Service *leave.RequestService
	Roller  *rollover.Roller
	Log     zerolog.Logger

	// NewID generates identifiers for resources created directly by
	// handlers (leave types, holidays). Overridable in tests.
	NewID func() string
}

// NewHandler creates a handler with its dependencies.
func NewHandler(store leave.TxStore, svc *leave.RequestService, roller *rollover.Roller, log zerolog.Logger) *Handler {
	return &Handler{
		Store:   store,
		Service: svc,
		Roller:  roller,
		Log:     log,
		NewID:   uuid.NewString,
	}
}

// =============================================================================
// LEAVE TYPE HANDLERS
// =============================================================================

func (h *Handler) ListLeaveTypes(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"

	types, err := h.Store.ListLeaveTypes(r.Context(), activeOnly)
	if err != nil {
		h.serverError(w, r, "Failed to list leave types", err)
		return
	}

	dtos := make([]LeaveTypeDTO, 0, len(types))
	for _, lt := range types {
		dtos = append(dtos, leaveTypeDTO(lt))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateLeaveType(w http.ResponseWriter, r *http.Request) {
	var req UpsertLeaveTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" || req.Code == "" {
		writeError(w, http.StatusBadRequest, "name and code are required", nil)
		return
	}

	taken, err := h.codeTaken(r.Context(), req.Code, "")
	if err != nil {
		h.serverError(w, r, "Failed to check leave type code", err)
		return
	}
	if taken {
		writeError(w, http.StatusConflict, "An active leave type with this code already exists", nil)
		return
	}

	requiresApproval := true
	if req.RequiresApproval != nil {
		requiresApproval = *req.RequiresApproval
	}

	now := time.Now().UTC()
	lt := leave.LeaveType{
		ID:                h.NewID(),
		Name:              req.Name,
		Code:              req.Code,
		Color:             req.Color,
		Icon:              req.Icon,
		RequiresApproval:  requiresApproval,
		MaxDaysPerRequest: req.MaxDaysPerRequest,
		IsActive:          true,
		SortOrder:         req.SortOrder,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := h.Store.SaveLeaveType(r.Context(), lt); err != nil {
		h.serverError(w, r, "Failed to create leave type", err)
		return
	}
	writeJSON(w, http.StatusCreated, leaveTypeDTO(lt))
}

func (h *Handler) GetLeaveType(w http.ResponseWriter, r *http.Request) {
	lt, err := h.Store.GetLeaveType(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.serverError(w, r, "Failed to get leave type", err)
		return
	}
	if lt == nil {
		writeError(w, http.StatusNotFound, "Leave type not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, leaveTypeDTO(*lt))
}

func (h *Handler) UpdateLeaveType(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	lt, err := h.Store.GetLeaveType(r.Context(), id)
	if err != nil {
		h.serverError(w, r, "Failed to get leave type", err)
		return
	}
	if lt == nil {
		writeError(w, http.StatusNotFound, "Leave type not found", nil)
		return
	}

	var req UpsertLeaveTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" || req.Code == "" {
		writeError(w, http.StatusBadRequest, "name and code are required", nil)
		return
	}

	if req.Code != lt.Code {
		taken, err := h.codeTaken(r.Context(), req.Code, id)
		if err != nil {
			h.serverError(w, r, "Failed to check leave type code", err)
			return
		}
		if taken {
			writeError(w, http.StatusConflict, "An active leave type with this code already exists", nil)
			return
		}
	}

	lt.Name = req.Name
	lt.Code = req.Code
	lt.Color = req.Color
	lt.Icon = req.Icon
	if req.RequiresApproval != nil {
		lt.RequiresApproval = *req.RequiresApproval
	}
	lt.MaxDaysPerRequest = req.MaxDaysPerRequest
	lt.SortOrder = req.SortOrder
	lt.UpdatedAt = time.Now().UTC()

	if err := h.Store.SaveLeaveType(r.Context(), *lt); err != nil {
		h.serverError(w, r, "Failed to update leave type", err)
		return
	}
	writeJSON(w, http.StatusOK, leaveTypeDTO(*lt))
}

// ArchiveLeaveType deactivates a leave type. Types are never
// hard-deleted: historical requests keep referencing them.
func (h *Handler) ArchiveLeaveType(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	lt, err := h.Store.GetLeaveType(r.Context(), id)
	if err != nil {
		h.serverError(w, r, "Failed to get leave type", err)
		return
	}
	if lt == nil {
		writeError(w, http.StatusNotFound, "Leave type not found", nil)
		return
	}

	lt.IsActive = false
	lt.UpdatedAt = time.Now().UTC()
	if err := h.Store.SaveLeaveType(r.Context(), *lt); err != nil {
		h.serverError(w, r, "Failed to archive leave type", err)
		return
	}
	writeJSON(w, http.StatusOK, leaveTypeDTO(*lt))
}

func (h *Handler) codeTaken(ctx context.Context, code, excludeID string) (bool, error) {
	types, err := h.Store.ListLeaveTypes(ctx, true)
	if err != nil {
		return false, err
	}
	for _, lt := range types {
		if lt.Code == code && lt.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

// =============================================================================
// REQUEST HANDLERS
// =============================================================================

func (h *Handler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.EmployeeID == "" || req.LeaveTypeID == "" {
		writeError(w, http.StatusBadRequest, "employee_id and leave_type_id are required", nil)
		return
	}

	start, err := leave.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date format (use YYYY-MM-DD)", err)
		return
	}
	end, err := leave.ParseDate(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_date format (use YYYY-MM-DD)", err)
		return
	}

	created, err := h.Service.Submit(r.Context(), leave.SubmitInput{
		EmployeeID:    req.EmployeeID,
		EmployeeName:  req.EmployeeName,
		EmployeeEmail: req.EmployeeEmail,
		LeaveTypeID:   req.LeaveTypeID,
		StartDate:     start,
		EndDate:       end,
		HalfDayStart:  req.HalfDayStart,
		HalfDayEnd:    req.HalfDayEnd,
		Reason:        req.Reason,
	})
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	h.Log.Info().
		Str("request_id", created.ID).
		Str("employee_id", created.EmployeeID).
		Str("total_days", created.TotalDays.String()).
		Msg("leave request submitted")
	writeJSON(w, http.StatusCreated, requestDTO(*created))
}

func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	filter := leave.RequestFilter{
		EmployeeID: r.URL.Query().Get("employee_id"),
	}
	if statuses := r.URL.Query().Get("status"); statuses != "" {
		for _, s := range strings.Split(statuses, ",") {
			filter.Statuses = append(filter.Statuses, leave.RequestStatus(strings.TrimSpace(s)))
		}
	}

	requests, err := h.Store.ListRequests(r.Context(), filter)
	if err != nil {
		h.serverError(w, r, "Failed to list requests", err)
		return
	}
	writeJSON(w, http.StatusOK, requestDTOs(requests))
}

func (h *Handler) GetRequest(w http.ResponseWriter, r *http.Request) {
	req, err := h.Store.GetRequest(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.serverError(w, r, "Failed to get request", err)
		return
	}
	if req == nil {
		writeError(w, http.StatusNotFound, "Request not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, requestDTO(*req))
}

func (h *Handler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.Service.Approve)
}

func (h *Handler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.Service.Reject)
}

type decideFn func(ctx context.Context, requestID, approverID, approverName, comments string) (*leave.LeaveRequest, error)

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, fn decideFn) {
	var body DecideRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	updated, err := fn(r.Context(), chi.URLParam(r, "id"), body.ApproverID, body.ApproverName, body.Comments)
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	h.Log.Info().
		Str("request_id", updated.ID).
		Str("status", string(updated.Status)).
		Str("approver_id", body.ApproverID).
		Msg("leave request decided")
	writeJSON(w, http.StatusOK, requestDTO(*updated))
}

func (h *Handler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	updated, err := h.Service.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	h.Log.Info().
		Str("request_id", updated.ID).
		Msg("leave request cancelled")
	writeJSON(w, http.StatusOK, requestDTO(*updated))
}

// =============================================================================
// BALANCE HANDLERS
// =============================================================================

func (h *Handler) ListBalances(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")
	year := queryYear(r)

	balances, err := h.Store.ListBalances(r.Context(), employeeID, year)
	if err != nil {
		h.serverError(w, r, "Failed to list balances", err)
		return
	}

	dtos := make([]BalanceDTO, 0, len(balances))
	for _, b := range balances {
		dtos = append(dtos, balanceDTO(b))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) InitializeBalances(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")

	var req InitializeYearRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Year == 0 {
		req.Year = time.Now().Year()
	}

	balances, err := h.Service.InitializeYear(r.Context(), employeeID, req.Year)
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	dtos := make([]BalanceDTO, 0, len(balances))
	for _, b := range balances {
		dtos = append(dtos, balanceDTO(b))
	}
	writeJSON(w, http.StatusCreated, dtos)
}

// AdjustBalance sets entitlement/carry-over on one balance row. The
// used and pending counters are off limits here: they only move
// through the request lifecycle.
func (h *Handler) AdjustBalance(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")
	leaveTypeID := chi.URLParam(r, "typeId")

	var req AdjustBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Year == 0 {
		req.Year = time.Now().Year()
	}

	var adjusted *leave.LeaveBalance
	err := h.Store.WithTx(r.Context(), func(tx leave.Store) error {
		b, err := tx.GetBalance(r.Context(), employeeID, leaveTypeID, req.Year)
		if err != nil {
			return err
		}
		if b == nil {
			return &leave.NotFoundError{Kind: "balance", ID: employeeID + "/" + leaveTypeID}
		}
		if req.Entitlement != nil {
			b.Entitlement = *req.Entitlement
		}
		if req.CarryOver != nil {
			b.CarryOver = *req.CarryOver
		}
		b.UpdatedAt = time.Now().UTC()
		if err := tx.SaveBalance(r.Context(), *b); err != nil {
			return err
		}
		adjusted = b
		return nil
	})
	if err != nil {
		h.domainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceDTO(*adjusted))
}

// =============================================================================
// HOLIDAY HANDLERS
// =============================================================================

func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	region := r.URL.Query().Get("region")
	year := queryYear(r)

	holidays, err := h.Store.ListHolidays(r.Context(), region, year)
	if err != nil {
		h.serverError(w, r, "Failed to list holidays", err)
		return
	}

	dtos := make([]HolidayDTO, 0, len(holidays))
	for _, hol := range holidays {
		dtos = append(dtos, holidayDTO(hol))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req CreateHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}

	date, err := leave.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	holiday := leave.PublicHoliday{
		ID:        h.NewID(),
		Name:      req.Name,
		Date:      date,
		Region:    req.Region,
		Recurring: req.Recurring,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.Store.SaveHoliday(r.Context(), holiday); err != nil {
		h.serverError(w, r, "Failed to create holiday", err)
		return
	}
	writeJSON(w, http.StatusCreated, holidayDTO(holiday))
}

func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteHoliday(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.serverError(w, r, "Failed to delete holiday", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// =============================================================================
// CONFLICT HANDLERS
// =============================================================================

func (h *Handler) AnalyzeConflicts(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeConflictsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	start, err := leave.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date format (use YYYY-MM-DD)", err)
		return
	}
	end, err := leave.ParseDate(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_date format (use YYYY-MM-DD)", err)
		return
	}
	if start.After(end) {
		writeError(w, http.StatusBadRequest, "start_date must not be after end_date", nil)
		return
	}

	teamSize := req.TeamSize
	if teamSize == 0 {
		teamSize = len(req.TeamMemberIDs)
	}

	requests, err := h.Store.ListRequests(r.Context(), leave.RequestFilter{
		EmployeeIDs:       req.TeamMemberIDs,
		ExcludeEmployeeID: req.RequesterID,
		Statuses:          []leave.RequestStatus{leave.StatusPending, leave.StatusApproved},
		OverlapsStart:     start,
		OverlapsEnd:       end,
	})
	if err != nil {
		h.serverError(w, r, "Failed to load team requests", err)
		return
	}

	thresholds, err := h.Store.GetThresholds(r.Context())
	if err != nil {
		h.serverError(w, r, "Failed to load thresholds", err)
		return
	}

	analysis := leave.Analyze(start, end, requests, teamSize, thresholds)
	writeJSON(w, http.StatusOK, ConflictAnalysisDTO{
		HasConflict:         analysis.HasConflict,
		Severity:            string(analysis.Severity),
		OverlappingRequests: requestDTOs(analysis.OverlappingRequests),
		TeamCoveragePercent: analysis.TeamCoveragePercent,
		Message:             analysis.Message,
		Suggestions:         analysis.Suggestions,
	})
}

func (h *Handler) GetThresholds(w http.ResponseWriter, r *http.Request) {
	th, err := h.Store.GetThresholds(r.Context())
	if err != nil {
		h.serverError(w, r, "Failed to load thresholds", err)
		return
	}
	writeJSON(w, http.StatusOK, ThresholdsDTO{
		WarningPercent:  th.WarningPercent,
		CriticalPercent: th.CriticalPercent,
	})
}

func (h *Handler) UpdateThresholds(w http.ResponseWriter, r *http.Request) {
	var req ThresholdsDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.WarningPercent < 0 || req.CriticalPercent > 100 || req.WarningPercent >= req.CriticalPercent {
		writeError(w, http.StatusBadRequest, "thresholds must satisfy 0 <= warning < critical <= 100", nil)
		return
	}

	th := leave.Thresholds{
		WarningPercent:  req.WarningPercent,
		CriticalPercent: req.CriticalPercent,
	}
	if err := h.Store.SaveThresholds(r.Context(), th); err != nil {
		h.serverError(w, r, "Failed to save thresholds", err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

func (h *Handler) TriggerRollover(w http.ResponseWriter, r *http.Request) {
	var req RolloverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.FromYear == 0 {
		req.FromYear = time.Now().Year() - 1
	}

	result, err := h.Roller.Run(r.Context(), req.FromYear)
	if err != nil {
		h.serverError(w, r, "Rollover failed", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// domainError maps domain errors to HTTP status codes via their
// sentinels.
func (h *Handler) domainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, leave.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, leave.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error(), nil)
	case leave.IsClientError(err):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	default:
		h.serverError(w, r, "Internal error", err)
	}
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, message string, err error) {
	h.Log.Error().Err(err).Str("path", r.URL.Path).Msg(message)
	writeError(w, http.StatusInternalServerError, message, err)
}

func queryYear(r *http.Request) int {
	if v := r.URL.Query().Get("year"); v != "" {
		if year, err := strconv.Atoi(v); err == nil {
			return year
		}
	}
	return time.Now().Year()
}
