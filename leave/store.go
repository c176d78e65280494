/*
store.go - Persistence interfaces for the leave domain

PURPOSE:
  Defines the interface between the domain logic and the database.
  Different implementations can use SQLite or in-memory storage.

KEY INTERFACES:
  Store:   CRUD for leave types, requests, balances, holidays, settings
  TxStore: Store plus WithTx for atomic multi-record updates

ATOMICITY:
  Every lifecycle transition touches two records: the request row and
  its balance row. TxStore.WithTx wraps both writes in one database
  transaction so a crash or concurrent approval cannot leave the status
  changed with the ledger delta missing.

IMPLEMENTATIONS:
  - store/sqlite: production SQLite (WAL mode)
  - store/memory: in-memory for tests
*/
package leave

import "context"

// =============================================================================
// STORE
// =============================================================================

// RequestFilter narrows ListRequests. Zero values mean "no constraint".
type RequestFilter struct {
	EmployeeID        string
	EmployeeIDs       []string // any of these employees
	ExcludeEmployeeID string
	Statuses          []RequestStatus
	OverlapsStart     Date // with OverlapsEnd: inclusive range intersection
	OverlapsEnd       Date
}

// Store handles persistence of all domain records.
type Store interface {
	// Leave types. Types are archived, never deleted, while requests
	// reference them.
	SaveLeaveType(ctx context.Context, lt LeaveType) error
	GetLeaveType(ctx context.Context, id string) (*LeaveType, error)
	ListLeaveTypes(ctx context.Context, activeOnly bool) ([]LeaveType, error)
	CountRequestsForType(ctx context.Context, leaveTypeID string) (int, error)

	// Requests
	SaveRequest(ctx context.Context, r LeaveRequest) error
	GetRequest(ctx context.Context, id string) (*LeaveRequest, error)
	ListRequests(ctx context.Context, f RequestFilter) ([]LeaveRequest, error)

	// Balances. GetBalance returns (nil, nil) when no row exists.
	SaveBalance(ctx context.Context, b LeaveBalance) error
	GetBalance(ctx context.Context, employeeID, leaveTypeID string, year int) (*LeaveBalance, error)
	ListBalances(ctx context.Context, employeeID string, year int) ([]LeaveBalance, error)
	ListBalancesForYear(ctx context.Context, year int) ([]LeaveBalance, error)

	// Holidays
	SaveHoliday(ctx context.Context, h PublicHoliday) error
	ListHolidays(ctx context.Context, region string, year int) ([]PublicHoliday, error)
	DeleteHoliday(ctx context.Context, id string) error

	// Conflict thresholds (admin-configured settings)
	GetThresholds(ctx context.Context) (Thresholds, error)
	SaveThresholds(ctx context.Context, th Thresholds) error
}

// =============================================================================
// TRANSACTIONAL STORE
// =============================================================================

// TxStore wraps Store with transaction support.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction. If fn returns an error,
	// the transaction is rolled back; otherwise it is committed.
	WithTx(ctx context.Context, fn func(Store) error) error
}
