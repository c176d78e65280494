// Package memory provides an in-memory leave.TxStore for tests and dev.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/leavedesk/leave"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type balanceKey struct {
	EmployeeID  string
	LeaveTypeID string
	Year        int
}

type Store struct {
	mu         sync.RWMutex
	leaveTypes map[string]leave.LeaveType
	requests   map[string]leave.LeaveRequest
	balances   map[balanceKey]leave.LeaveBalance
	holidays   map[string]leave.PublicHoliday
	thresholds leave.Thresholds
}

func New() *Store {
	return &Store{
		leaveTypes: make(map[string]leave.LeaveType),
		requests:   make(map[string]leave.LeaveRequest),
		balances:   make(map[balanceKey]leave.LeaveBalance),
		holidays:   make(map[string]leave.PublicHoliday),
		thresholds: leave.DefaultThresholds(),
	}
}

var _ leave.TxStore = (*Store)(nil)

// =============================================================================
// LEAVE TYPES
// =============================================================================

func (m *Store) SaveLeaveType(_ context.Context, lt leave.LeaveType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leaveTypes[lt.ID] = lt
	return nil
}

func (m *Store) GetLeaveType(_ context.Context, id string) (*leave.LeaveType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getLeaveTypeLocked(id), nil
}

func (m *Store) getLeaveTypeLocked(id string) *leave.LeaveType {
	lt, ok := m.leaveTypes[id]
	if !ok {
		return nil
	}
	return &lt
}

func (m *Store) ListLeaveTypes(_ context.Context, activeOnly bool) ([]leave.LeaveType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []leave.LeaveType
	for _, lt := range m.leaveTypes {
		if activeOnly && !lt.IsActive {
			continue
		}
		result = append(result, lt)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].SortOrder != result[j].SortOrder {
			return result[i].SortOrder < result[j].SortOrder
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func (m *Store) CountRequestsForType(_ context.Context, leaveTypeID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, r := range m.requests {
		if r.LeaveTypeID == leaveTypeID {
			count++
		}
	}
	return count, nil
}

// =============================================================================
// REQUESTS
// =============================================================================

func (m *Store) SaveRequest(_ context.Context, r leave.LeaveRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveRequestLocked(r)
	return nil
}

func (m *Store) saveRequestLocked(r leave.LeaveRequest) {
	m.requests[r.ID] = r
}

func (m *Store) GetRequest(_ context.Context, id string) (*leave.LeaveRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getRequestLocked(id), nil
}

func (m *Store) getRequestLocked(id string) *leave.LeaveRequest {
	r, ok := m.requests[id]
	if !ok {
		return nil
	}
	return &r
}

func (m *Store) ListRequests(_ context.Context, f leave.RequestFilter) ([]leave.LeaveRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []leave.LeaveRequest
	for _, r := range m.requests {
		if matches(r, f) {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func matches(r leave.LeaveRequest, f leave.RequestFilter) bool {
	if f.EmployeeID != "" && r.EmployeeID != f.EmployeeID {
		return false
	}
	if f.ExcludeEmployeeID != "" && r.EmployeeID == f.ExcludeEmployeeID {
		return false
	}
	if len(f.EmployeeIDs) > 0 {
		found := false
		for _, id := range f.EmployeeIDs {
			if r.EmployeeID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if r.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if !f.OverlapsStart.IsZero() && !f.OverlapsEnd.IsZero() && !r.Overlaps(f.OverlapsStart, f.OverlapsEnd) {
		return false
	}
	return true
}

// =============================================================================
// BALANCES
// =============================================================================

func (m *Store) SaveBalance(_ context.Context, b leave.LeaveBalance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveBalanceLocked(b)
	return nil
}

func (m *Store) saveBalanceLocked(b leave.LeaveBalance) {
	m.balances[balanceKey{b.EmployeeID, b.LeaveTypeID, b.Year}] = b
}

func (m *Store) GetBalance(_ context.Context, employeeID, leaveTypeID string, year int) (*leave.LeaveBalance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getBalanceLocked(employeeID, leaveTypeID, year), nil
}

func (m *Store) getBalanceLocked(employeeID, leaveTypeID string, year int) *leave.LeaveBalance {
	b, ok := m.balances[balanceKey{employeeID, leaveTypeID, year}]
	if !ok {
		return nil
	}
	return &b
}

func (m *Store) ListBalances(_ context.Context, employeeID string, year int) ([]leave.LeaveBalance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []leave.LeaveBalance
	for k, b := range m.balances {
		if k.EmployeeID == employeeID && k.Year == year {
			result = append(result, b)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].LeaveTypeID < result[j].LeaveTypeID })
	return result, nil
}

func (m *Store) ListBalancesForYear(_ context.Context, year int) ([]leave.LeaveBalance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []leave.LeaveBalance
	for k, b := range m.balances {
		if k.Year == year {
			result = append(result, b)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].EmployeeID != result[j].EmployeeID {
			return result[i].EmployeeID < result[j].EmployeeID
		}
		return result[i].LeaveTypeID < result[j].LeaveTypeID
	})
	return result, nil
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func (m *Store) SaveHoliday(_ context.Context, h leave.PublicHoliday) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.holidays[h.ID] = h
	return nil
}

func (m *Store) ListHolidays(_ context.Context, region string, year int) ([]leave.PublicHoliday, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []leave.PublicHoliday
	for _, h := range m.holidays {
		if region != "" && h.Region != region {
			continue
		}
		if year != 0 && h.Date.Year() != year {
			continue
		}
		result = append(result, h)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

func (m *Store) DeleteHoliday(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.holidays, id)
	return nil
}

// =============================================================================
// THRESHOLDS
// =============================================================================

func (m *Store) GetThresholds(_ context.Context) (leave.Thresholds, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.thresholds, nil
}

func (m *Store) SaveThresholds(_ context.Context, th leave.Thresholds) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.thresholds = th
	return nil
}

// =============================================================================
// TRANSACTIONS - Snapshot + rollback on error
// =============================================================================

// WithTx executes fn against an unlocked view while holding the write
// lock; on error the pre-transaction snapshot is restored.
func (m *Store) WithTx(_ context.Context, fn func(leave.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.snapshot()
	if err := fn(&txView{parent: m}); err != nil {
		m.restore(snapshot)
		return err
	}
	return nil
}

type memorySnapshot struct {
	leaveTypes map[string]leave.LeaveType
	requests   map[string]leave.LeaveRequest
	balances   map[balanceKey]leave.LeaveBalance
	holidays   map[string]leave.PublicHoliday
	thresholds leave.Thresholds
}

func (m *Store) snapshot() memorySnapshot {
	s := memorySnapshot{
		leaveTypes: make(map[string]leave.LeaveType, len(m.leaveTypes)),
		requests:   make(map[string]leave.LeaveRequest, len(m.requests)),
		balances:   make(map[balanceKey]leave.LeaveBalance, len(m.balances)),
		holidays:   make(map[string]leave.PublicHoliday, len(m.holidays)),
		thresholds: m.thresholds,
	}
	for k, v := range m.leaveTypes {
		s.leaveTypes[k] = v
	}
	for k, v := range m.requests {
		s.requests[k] = v
	}
	for k, v := range m.balances {
		s.balances[k] = v
	}
	for k, v := range m.holidays {
		s.holidays[k] = v
	}
	return s
}

func (m *Store) restore(s memorySnapshot) {
	m.leaveTypes = s.leaveTypes
	m.requests = s.requests
	m.balances = s.balances
	m.holidays = s.holidays
	m.thresholds = s.thresholds
}

// txView operates on the parent's maps without re-locking. Only valid
// inside WithTx, which already holds the write lock.
type txView struct {
	parent *Store
}

var _ leave.Store = (*txView)(nil)

func (tv *txView) SaveLeaveType(_ context.Context, lt leave.LeaveType) error {
	tv.parent.leaveTypes[lt.ID] = lt
	return nil
}

func (tv *txView) GetLeaveType(_ context.Context, id string) (*leave.LeaveType, error) {
	return tv.parent.getLeaveTypeLocked(id), nil
}

func (tv *txView) ListLeaveTypes(ctx context.Context, activeOnly bool) ([]leave.LeaveType, error) {
	var result []leave.LeaveType
	for _, lt := range tv.parent.leaveTypes {
		if activeOnly && !lt.IsActive {
			continue
		}
		result = append(result, lt)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SortOrder < result[j].SortOrder })
	return result, nil
}

func (tv *txView) CountRequestsForType(_ context.Context, leaveTypeID string) (int, error) {
	count := 0
	for _, r := range tv.parent.requests {
		if r.LeaveTypeID == leaveTypeID {
			count++
		}
	}
	return count, nil
}

func (tv *txView) SaveRequest(_ context.Context, r leave.LeaveRequest) error {
	tv.parent.saveRequestLocked(r)
	return nil
}

func (tv *txView) GetRequest(_ context.Context, id string) (*leave.LeaveRequest, error) {
	return tv.parent.getRequestLocked(id), nil
}

func (tv *txView) ListRequests(_ context.Context, f leave.RequestFilter) ([]leave.LeaveRequest, error) {
	var result []leave.LeaveRequest
	for _, r := range tv.parent.requests {
		if matches(r, f) {
			result = append(result, r)
		}
	}
	return result, nil
}

func (tv *txView) SaveBalance(_ context.Context, b leave.LeaveBalance) error {
	tv.parent.saveBalanceLocked(b)
	return nil
}

func (tv *txView) GetBalance(_ context.Context, employeeID, leaveTypeID string, year int) (*leave.LeaveBalance, error) {
	return tv.parent.getBalanceLocked(employeeID, leaveTypeID, year), nil
}

func (tv *txView) ListBalances(_ context.Context, employeeID string, year int) ([]leave.LeaveBalance, error) {
	var result []leave.LeaveBalance
	for k, b := range tv.parent.balances {
		if k.EmployeeID == employeeID && k.Year == year {
			result = append(result, b)
		}
	}
	return result, nil
}

func (tv *txView) ListBalancesForYear(_ context.Context, year int) ([]leave.LeaveBalance, error) {
	var result []leave.LeaveBalance
	for k, b := range tv.parent.balances {
		if k.Year == year {
			result = append(result, b)
		}
	}
	return result, nil
}

func (tv *txView) SaveHoliday(_ context.Context, h leave.PublicHoliday) error {
	tv.parent.holidays[h.ID] = h
	return nil
}

func (tv *txView) ListHolidays(_ context.Context, region string, year int) ([]leave.PublicHoliday, error) {
	var result []leave.PublicHoliday
	for _, h := range tv.parent.holidays {
		if region != "" && h.Region != region {
			continue
		}
		if year != 0 && h.Date.Year() != year {
			continue
		}
		result = append(result, h)
	}
	return result, nil
}

func (tv *txView) DeleteHoliday(_ context.Context, id string) error {
	delete(tv.parent.holidays, id)
	return nil
}

func (tv *txView) GetThresholds(_ context.Context) (leave.Thresholds, error) {
	return tv.parent.thresholds, nil
}

func (tv *txView) SaveThresholds(_ context.Context, th leave.Thresholds) error {
	tv.parent.thresholds = th
	return nil
}
