/*
Package sqlite provides a SQLite-backed implementation of leave.TxStore.

PURPOSE:
  Implements persistence for leave types, requests, balances, holidays
  and threshold settings. In production the same patterns apply to
  PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  leave_types:    Administrator-configured categories (archived, never
                  hard-deleted while requests reference them)
  leave_requests: Requests with lifecycle status and approver fields
  leave_balances: One row per (employee, leave type, year) - uniqueness
                  enforced by index
  holidays:       Public holiday records
  settings:       Key/value store for conflict thresholds

TRANSACTIONS:
  WithTx wraps a function in a database transaction so a lifecycle
  transition's status update and balance delta commit together. This is
  the transactional boundary the domain requires for its two-record
  updates.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/leavedesk.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := leave.NewRequestService(store)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - leave/store.go: Interface definitions
  - store/memory: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/leavedesk/leave"
)

// Store implements leave.TxStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ leave.TxStore = (*Store)(nil)

// New creates a SQLite store at the given path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer; a second pooled connection would
	// also see a different database entirely when dbPath is ":memory:".
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS leave_types (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		code TEXT NOT NULL,
		color TEXT,
		icon TEXT,
		requires_approval BOOLEAN NOT NULL DEFAULT TRUE,
		max_days_per_request TEXT,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		sort_order INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Code is unique among ACTIVE types; archived types free their code.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_leave_types_active_code
		ON leave_types(code) WHERE is_active = 1;

	CREATE TABLE IF NOT EXISTS leave_requests (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		employee_name TEXT,
		employee_email TEXT,
		leave_type_id TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		half_day_start BOOLEAN NOT NULL DEFAULT FALSE,
		half_day_end BOOLEAN NOT NULL DEFAULT FALSE,
		total_days TEXT NOT NULL,
		reason TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		approver_id TEXT,
		approver_name TEXT,
		approver_comments TEXT,
		approved_at TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_requests_employee
		ON leave_requests(employee_id);
	CREATE INDEX IF NOT EXISTS idx_requests_status
		ON leave_requests(status);
	-- Overlap queries for the conflict analyzer (hot path)
	CREATE INDEX IF NOT EXISTS idx_requests_dates
		ON leave_requests(start_date, end_date);
	CREATE INDEX IF NOT EXISTS idx_requests_type
		ON leave_requests(leave_type_id);

	CREATE TABLE IF NOT EXISTS leave_balances (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		leave_type_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		entitlement TEXT NOT NULL DEFAULT '0',
		used TEXT NOT NULL DEFAULT '0',
		pending TEXT NOT NULL DEFAULT '0',
		carry_over TEXT NOT NULL DEFAULT '0',
		updated_at TEXT NOT NULL
	);

	-- One balance row per (employee, type, year). Repeated year
	-- initialization must not create duplicate rows.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_balances_unique
		ON leave_balances(employee_id, leave_type_id, year);
	CREATE INDEX IF NOT EXISTS idx_balances_employee_year
		ON leave_balances(employee_id, year);

	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		date TEXT NOT NULL,
		region TEXT NOT NULL DEFAULT '',
		recurring BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_holidays_region_date
		ON holidays(region, date);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_holidays_unique
		ON holidays(region, date, name);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// LEAVE TYPES
// =============================================================================

func (s *Store) SaveLeaveType(ctx context.Context, lt leave.LeaveType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveLeaveType(ctx, s.db, lt)
}

func saveLeaveType(ctx context.Context, db dbtx, lt leave.LeaveType) error {
	query := `
		INSERT INTO leave_types
		(id, name, code, color, icon, requires_approval, max_days_per_request,
		 is_active, sort_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			code = excluded.code,
			color = excluded.color,
			icon = excluded.icon,
			requires_approval = excluded.requires_approval,
			max_days_per_request = excluded.max_days_per_request,
			is_active = excluded.is_active,
			sort_order = excluded.sort_order,
			updated_at = excluded.updated_at
	`

	var maxDays any
	if lt.MaxDaysPerRequest != nil {
		maxDays = lt.MaxDaysPerRequest.String()
	}

	createdAt := lt.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := db.ExecContext(ctx, query,
		lt.ID, lt.Name, lt.Code, lt.Color, lt.Icon,
		lt.RequiresApproval, maxDays, lt.IsActive, lt.SortOrder,
		createdAt.Format(time.RFC3339),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save leave type: %w", err)
	}
	return nil
}

func (s *Store) GetLeaveType(ctx context.Context, id string) (*leave.LeaveType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getLeaveType(ctx, s.db, id)
}

func getLeaveType(ctx context.Context, db dbtx, id string) (*leave.LeaveType, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, name, code, color, icon, requires_approval, max_days_per_request,
		       is_active, sort_order, created_at, updated_at
		FROM leave_types WHERE id = ?`, id)

	lt, err := scanLeaveType(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return lt, nil
}

func (s *Store) ListLeaveTypes(ctx context.Context, activeOnly bool) ([]leave.LeaveType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listLeaveTypes(ctx, s.db, activeOnly)
}

func listLeaveTypes(ctx context.Context, db dbtx, activeOnly bool) ([]leave.LeaveType, error) {
	query := `
		SELECT id, name, code, color, icon, requires_approval, max_days_per_request,
		       is_active, sort_order, created_at, updated_at
		FROM leave_types`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY sort_order, name`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave types: %w", err)
	}
	defer rows.Close()

	var types []leave.LeaveType
	for rows.Next() {
		lt, err := scanLeaveType(rows)
		if err != nil {
			return nil, err
		}
		types = append(types, *lt)
	}
	return types, rows.Err()
}

func (s *Store) CountRequestsForType(ctx context.Context, leaveTypeID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return countRequestsForType(ctx, s.db, leaveTypeID)
}

func countRequestsForType(ctx context.Context, db dbtx, leaveTypeID string) (int, error) {
	var count int
	err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM leave_requests WHERE leave_type_id = ?", leaveTypeID,
	).Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLeaveType(row rowScanner) (*leave.LeaveType, error) {
	var (
		lt        leave.LeaveType
		color     sql.NullString
		icon      sql.NullString
		maxDays   sql.NullString
		createdAt string
		updatedAt string
	)

	err := row.Scan(&lt.ID, &lt.Name, &lt.Code, &color, &icon,
		&lt.RequiresApproval, &maxDays, &lt.IsActive, &lt.SortOrder,
		&createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	lt.Color = color.String
	lt.Icon = icon.String
	if maxDays.Valid && maxDays.String != "" {
		d, err := decimal.NewFromString(maxDays.String)
		if err != nil {
			return nil, fmt.Errorf("invalid max_days_per_request for type %s: %w", lt.ID, err)
		}
		lt.MaxDaysPerRequest = &d
	}
	lt.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	lt.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &lt, nil
}

// =============================================================================
// REQUESTS
// =============================================================================

func (s *Store) SaveRequest(ctx context.Context, r leave.LeaveRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveRequest(ctx, s.db, r)
}

func saveRequest(ctx context.Context, db dbtx, r leave.LeaveRequest) error {
	query := `
		INSERT INTO leave_requests
		(id, employee_id, employee_name, employee_email, leave_type_id,
		 start_date, end_date, half_day_start, half_day_end, total_days,
		 reason, status, approver_id, approver_name, approver_comments,
		 approved_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			approver_id = excluded.approver_id,
			approver_name = excluded.approver_name,
			approver_comments = excluded.approver_comments,
			approved_at = excluded.approved_at,
			updated_at = excluded.updated_at
	`

	var approvedAt any
	if r.ApprovedAt != nil {
		approvedAt = r.ApprovedAt.UTC().Format(time.RFC3339)
	}

	_, err := db.ExecContext(ctx, query,
		r.ID, r.EmployeeID, r.EmployeeName, r.EmployeeEmail, r.LeaveTypeID,
		r.StartDate.String(), r.EndDate.String(), r.HalfDayStart, r.HalfDayEnd,
		r.TotalDays.String(), r.Reason, string(r.Status),
		nullString(r.ApproverID), nullString(r.ApproverName), nullString(r.ApproverComments),
		approvedAt,
		r.CreatedAt.UTC().Format(time.RFC3339),
		r.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save request: %w", err)
	}
	return nil
}

const selectRequest = `
	SELECT id, employee_id, employee_name, employee_email, leave_type_id,
	       start_date, end_date, half_day_start, half_day_end, total_days,
	       reason, status, approver_id, approver_name, approver_comments,
	       approved_at, created_at, updated_at
	FROM leave_requests`

func (s *Store) GetRequest(ctx context.Context, id string) (*leave.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getRequest(ctx, s.db, id)
}

func getRequest(ctx context.Context, db dbtx, id string) (*leave.LeaveRequest, error) {
	row := db.QueryRowContext(ctx, selectRequest+" WHERE id = ?", id)
	r, err := scanRequest(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Store) ListRequests(ctx context.Context, f leave.RequestFilter) ([]leave.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listRequests(ctx, s.db, f)
}

func listRequests(ctx context.Context, db dbtx, f leave.RequestFilter) ([]leave.LeaveRequest, error) {
	var (
		conds []string
		args  []any
	)

	if f.EmployeeID != "" {
		conds = append(conds, "employee_id = ?")
		args = append(args, f.EmployeeID)
	}
	if f.ExcludeEmployeeID != "" {
		conds = append(conds, "employee_id != ?")
		args = append(args, f.ExcludeEmployeeID)
	}
	if len(f.EmployeeIDs) > 0 {
		conds = append(conds, "employee_id IN ("+placeholders(len(f.EmployeeIDs))+")")
		for _, id := range f.EmployeeIDs {
			args = append(args, id)
		}
	}
	if len(f.Statuses) > 0 {
		conds = append(conds, "status IN ("+placeholders(len(f.Statuses))+")")
		for _, st := range f.Statuses {
			args = append(args, string(st))
		}
	}
	if !f.OverlapsStart.IsZero() && !f.OverlapsEnd.IsZero() {
		// Inclusive interval intersection
		conds = append(conds, "start_date <= ? AND end_date >= ?")
		args = append(args, f.OverlapsEnd.String(), f.OverlapsStart.String())
	}

	query := selectRequest
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at ASC, id ASC"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	defer rows.Close()

	var requests []leave.LeaveRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *r)
	}
	return requests, rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func scanRequest(row rowScanner) (*leave.LeaveRequest, error) {
	var (
		r                leave.LeaveRequest
		employeeName     sql.NullString
		employeeEmail    sql.NullString
		startDate        string
		endDate          string
		totalDays        string
		reason           sql.NullString
		approverID       sql.NullString
		approverName     sql.NullString
		approverComments sql.NullString
		approvedAt       sql.NullString
		createdAt        string
		updatedAt        string
	)

	err := row.Scan(&r.ID, &r.EmployeeID, &employeeName, &employeeEmail, &r.LeaveTypeID,
		&startDate, &endDate, &r.HalfDayStart, &r.HalfDayEnd, &totalDays,
		&reason, &r.Status, &approverID, &approverName, &approverComments,
		&approvedAt, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	r.EmployeeName = employeeName.String
	r.EmployeeEmail = employeeEmail.String
	if r.StartDate, err = leave.ParseDate(startDate); err != nil {
		return nil, fmt.Errorf("invalid start_date for request %s: %w", r.ID, err)
	}
	if r.EndDate, err = leave.ParseDate(endDate); err != nil {
		return nil, fmt.Errorf("invalid end_date for request %s: %w", r.ID, err)
	}
	if r.TotalDays, err = decimal.NewFromString(totalDays); err != nil {
		return nil, fmt.Errorf("invalid total_days for request %s: %w", r.ID, err)
	}
	r.Reason = reason.String
	r.ApproverID = approverID.String
	r.ApproverName = approverName.String
	r.ApproverComments = approverComments.String
	if approvedAt.Valid {
		t, _ := time.Parse(time.RFC3339, approvedAt.String)
		r.ApprovedAt = &t
	}
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	r.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &r, nil
}

// =============================================================================
// BALANCES
// =============================================================================

func (s *Store) SaveBalance(ctx context.Context, b leave.LeaveBalance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveBalance(ctx, s.db, b)
}

func saveBalance(ctx context.Context, db dbtx, b leave.LeaveBalance) error {
	query := `
		INSERT INTO leave_balances
		(id, employee_id, leave_type_id, year, entitlement, used, pending, carry_over, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id, leave_type_id, year) DO UPDATE SET
			entitlement = excluded.entitlement,
			used = excluded.used,
			pending = excluded.pending,
			carry_over = excluded.carry_over,
			updated_at = excluded.updated_at
	`

	_, err := db.ExecContext(ctx, query,
		b.ID, b.EmployeeID, b.LeaveTypeID, b.Year,
		b.Entitlement.String(), b.Used.String(), b.Pending.String(), b.CarryOver.String(),
		b.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save balance: %w", err)
	}
	return nil
}

const selectBalance = `
	SELECT id, employee_id, leave_type_id, year, entitlement, used, pending, carry_over, updated_at
	FROM leave_balances`

func (s *Store) GetBalance(ctx context.Context, employeeID, leaveTypeID string, year int) (*leave.LeaveBalance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getBalance(ctx, s.db, employeeID, leaveTypeID, year)
}

func getBalance(ctx context.Context, db dbtx, employeeID, leaveTypeID string, year int) (*leave.LeaveBalance, error) {
	row := db.QueryRowContext(ctx, selectBalance+`
		WHERE employee_id = ? AND leave_type_id = ? AND year = ?`,
		employeeID, leaveTypeID, year)

	b, err := scanBalance(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Store) ListBalances(ctx context.Context, employeeID string, year int) ([]leave.LeaveBalance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryBalances(ctx, s.db, selectBalance+`
		WHERE employee_id = ? AND year = ? ORDER BY leave_type_id`, employeeID, year)
}

func (s *Store) ListBalancesForYear(ctx context.Context, year int) ([]leave.LeaveBalance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryBalances(ctx, s.db, selectBalance+`
		WHERE year = ? ORDER BY employee_id, leave_type_id`, year)
}

func queryBalances(ctx context.Context, db dbtx, query string, args ...any) ([]leave.LeaveBalance, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query balances: %w", err)
	}
	defer rows.Close()

	var balances []leave.LeaveBalance
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, err
		}
		balances = append(balances, *b)
	}
	return balances, rows.Err()
}

func scanBalance(row rowScanner) (*leave.LeaveBalance, error) {
	var (
		b           leave.LeaveBalance
		entitlement string
		used        string
		pending     string
		carryOver   string
		updatedAt   string
	)

	err := row.Scan(&b.ID, &b.EmployeeID, &b.LeaveTypeID, &b.Year,
		&entitlement, &used, &pending, &carryOver, &updatedAt)
	if err != nil {
		return nil, err
	}

	if b.Entitlement, err = decimal.NewFromString(entitlement); err != nil {
		return nil, fmt.Errorf("invalid entitlement for balance %s: %w", b.ID, err)
	}
	if b.Used, err = decimal.NewFromString(used); err != nil {
		return nil, fmt.Errorf("invalid used for balance %s: %w", b.ID, err)
	}
	if b.Pending, err = decimal.NewFromString(pending); err != nil {
		return nil, fmt.Errorf("invalid pending for balance %s: %w", b.ID, err)
	}
	if b.CarryOver, err = decimal.NewFromString(carryOver); err != nil {
		return nil, fmt.Errorf("invalid carry_over for balance %s: %w", b.ID, err)
	}
	b.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &b, nil
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func (s *Store) SaveHoliday(ctx context.Context, h leave.PublicHoliday) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveHoliday(ctx, s.db, h)
}

func saveHoliday(ctx context.Context, db dbtx, h leave.PublicHoliday) error {
	createdAt := h.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO holidays (id, name, date, region, recurring, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			date = excluded.date,
			region = excluded.region,
			recurring = excluded.recurring`,
		h.ID, h.Name, h.Date.String(), h.Region, h.Recurring,
		createdAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save holiday: %w", err)
	}
	return nil
}

func (s *Store) ListHolidays(ctx context.Context, region string, year int) ([]leave.PublicHoliday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listHolidays(ctx, s.db, region, year)
}

func listHolidays(ctx context.Context, db dbtx, region string, year int) ([]leave.PublicHoliday, error) {
	query := "SELECT id, name, date, region, recurring, created_at FROM holidays"
	var (
		conds []string
		args  []any
	)
	if region != "" {
		conds = append(conds, "region = ?")
		args = append(args, region)
	}
	if year != 0 {
		conds = append(conds, "date >= ? AND date <= ?")
		args = append(args, fmt.Sprintf("%04d-01-01", year), fmt.Sprintf("%04d-12-31", year))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY date"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	defer rows.Close()

	var holidays []leave.PublicHoliday
	for rows.Next() {
		var (
			h         leave.PublicHoliday
			date      string
			createdAt string
		)
		if err := rows.Scan(&h.ID, &h.Name, &date, &h.Region, &h.Recurring, &createdAt); err != nil {
			return nil, err
		}
		if h.Date, err = leave.ParseDate(date); err != nil {
			return nil, fmt.Errorf("invalid date for holiday %s: %w", h.ID, err)
		}
		h.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

func (s *Store) DeleteHoliday(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM holidays WHERE id = ?", id)
	return err
}

// =============================================================================
// THRESHOLD SETTINGS
// =============================================================================

const (
	settingWarningPercent  = "conflict_warning_percent"
	settingCriticalPercent = "conflict_critical_percent"
)

func (s *Store) GetThresholds(ctx context.Context) (leave.Thresholds, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getThresholds(ctx, s.db)
}

func getThresholds(ctx context.Context, db dbtx) (leave.Thresholds, error) {
	th := leave.DefaultThresholds()

	rows, err := db.QueryContext(ctx,
		"SELECT key, value FROM settings WHERE key IN (?, ?)",
		settingWarningPercent, settingCriticalPercent)
	if err != nil {
		return th, fmt.Errorf("failed to load thresholds: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return th, err
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			continue
		}
		switch key {
		case settingWarningPercent:
			th.WarningPercent = n
		case settingCriticalPercent:
			th.CriticalPercent = n
		}
	}
	return th, rows.Err()
}

func (s *Store) SaveThresholds(ctx context.Context, th leave.Thresholds) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveThresholds(ctx, s.db, th)
}

func saveThresholds(ctx context.Context, db dbtx, th leave.Thresholds) error {
	now := time.Now().UTC().Format(time.RFC3339)
	for key, value := range map[string]int{
		settingWarningPercent:  th.WarningPercent,
		settingCriticalPercent: th.CriticalPercent,
	} {
		_, err := db.ExecContext(ctx, `
			INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			key, strconv.Itoa(value), now)
		if err != nil {
			return fmt.Errorf("failed to save threshold %s: %w", key, err)
		}
	}
	return nil
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// WithTx executes fn within a database transaction. Any error from fn
// rolls the whole transaction back.
func (s *Store) WithTx(ctx context.Context, fn func(leave.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx}); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// txStore routes every Store call through the open transaction.
type txStore struct {
	tx *sql.Tx
}

var _ leave.Store = (*txStore)(nil)

func (ts *txStore) SaveLeaveType(ctx context.Context, lt leave.LeaveType) error {
	return saveLeaveType(ctx, ts.tx, lt)
}

func (ts *txStore) GetLeaveType(ctx context.Context, id string) (*leave.LeaveType, error) {
	return getLeaveType(ctx, ts.tx, id)
}

func (ts *txStore) ListLeaveTypes(ctx context.Context, activeOnly bool) ([]leave.LeaveType, error) {
	return listLeaveTypes(ctx, ts.tx, activeOnly)
}

func (ts *txStore) CountRequestsForType(ctx context.Context, leaveTypeID string) (int, error) {
	return countRequestsForType(ctx, ts.tx, leaveTypeID)
}

func (ts *txStore) SaveRequest(ctx context.Context, r leave.LeaveRequest) error {
	return saveRequest(ctx, ts.tx, r)
}

func (ts *txStore) GetRequest(ctx context.Context, id string) (*leave.LeaveRequest, error) {
	return getRequest(ctx, ts.tx, id)
}

func (ts *txStore) ListRequests(ctx context.Context, f leave.RequestFilter) ([]leave.LeaveRequest, error) {
	return listRequests(ctx, ts.tx, f)
}

func (ts *txStore) SaveBalance(ctx context.Context, b leave.LeaveBalance) error {
	return saveBalance(ctx, ts.tx, b)
}

func (ts *txStore) GetBalance(ctx context.Context, employeeID, leaveTypeID string, year int) (*leave.LeaveBalance, error) {
	return getBalance(ctx, ts.tx, employeeID, leaveTypeID, year)
}

func (ts *txStore) ListBalances(ctx context.Context, employeeID string, year int) ([]leave.LeaveBalance, error) {
	return queryBalances(ctx, ts.tx, selectBalance+`
		WHERE employee_id = ? AND year = ? ORDER BY leave_type_id`, employeeID, year)
}

func (ts *txStore) ListBalancesForYear(ctx context.Context, year int) ([]leave.LeaveBalance, error) {
	return queryBalances(ctx, ts.tx, selectBalance+`
		WHERE year = ? ORDER BY employee_id, leave_type_id`, year)
}

func (ts *txStore) SaveHoliday(ctx context.Context, h leave.PublicHoliday) error {
	return saveHoliday(ctx, ts.tx, h)
}

func (ts *txStore) ListHolidays(ctx context.Context, region string, year int) ([]leave.PublicHoliday, error) {
	return listHolidays(ctx, ts.tx, region, year)
}

func (ts *txStore) DeleteHoliday(ctx context.Context, id string) error {
	_, err := ts.tx.ExecContext(ctx, "DELETE FROM holidays WHERE id = ?", id)
	return err
}

func (ts *txStore) GetThresholds(ctx context.Context) (leave.Thresholds, error) {
	return getThresholds(ctx, ts.tx)
}

func (ts *txStore) SaveThresholds(ctx context.Context, th leave.Thresholds) error {
	return saveThresholds(ctx, ts.tx, th)
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
