// Package store provides DataStore implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/smylay/absence-engine/absence"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements absence.HolidayStore with mutex-guarded maps and the
// same optimistic-concurrency contract as the SQLite store.
type Memory struct {
	mu        sync.RWMutex
	employees map[absence.EmployeeID]absence.Employee
	requests  map[absence.RequestID]absence.Request
	holidays  map[string]absence.Holiday
}

func NewMemory() *Memory {
	return &Memory{
		employees: make(map[absence.EmployeeID]absence.Employee),
		requests:  make(map[absence.RequestID]absence.Request),
		holidays:  make(map[string]absence.Holiday),
	}
}

var _ absence.HolidayStore = (*Memory)(nil)

// =============================================================================
// HOLIDAYS
// =============================================================================

func (m *Memory) FindHolidays(_ context.Context) ([]absence.Holiday, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]absence.Holiday, 0, len(m.holidays))
	for _, h := range m.holidays {
		result = append(result, h)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

func (m *Memory) SaveHoliday(_ context.Context, h absence.Holiday) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.holidays[h.ID] = h
	return nil
}

func (m *Memory) DeleteHoliday(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.holidays[id]; !ok {
		return &absence.NotFoundError{Kind: "holiday", ID: id}
	}
	delete(m.holidays, id)
	return nil
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func (m *Memory) GetEmployee(_ context.Context, id absence.EmployeeID) (*absence.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.employees[id]
	if !ok {
		return nil, &absence.NotFoundError{Kind: "employee", ID: string(id)}
	}
	return &e, nil
}

func (m *Memory) SaveEmployee(_ context.Context, e *absence.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e.Version == 0 {
		e.Version = 1
		m.employees[e.ID] = *e
		return nil
	}

	existing, ok := m.employees[e.ID]
	if !ok {
		return &absence.NotFoundError{Kind: "employee", ID: string(e.ID)}
	}
	if existing.Version != e.Version {
		return &absence.ConflictError{Kind: "employee", ID: string(e.ID)}
	}
	e.Version++
	m.employees[e.ID] = *e
	return nil
}

func (m *Memory) ListEmployees(_ context.Context) ([]absence.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]absence.Employee, 0, len(m.employees))
	for _, e := range m.employees {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// =============================================================================
// REQUESTS
// =============================================================================

func (m *Memory) GetRequest(_ context.Context, id absence.RequestID) (*absence.Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.requests[id]
	if !ok {
		return nil, &absence.NotFoundError{Kind: "request", ID: string(id)}
	}
	return &r, nil
}

func (m *Memory) SaveRequest(_ context.Context, r *absence.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r.Version == 0 {
		r.Version = 1
		m.requests[r.ID] = *r
		return nil
	}

	existing, ok := m.requests[r.ID]
	if !ok {
		return &absence.NotFoundError{Kind: "request", ID: string(r.ID)}
	}
	if existing.Version != r.Version {
		return &absence.ConflictError{Kind: "request", ID: string(r.ID)}
	}
	r.Version++
	m.requests[r.ID] = *r
	return nil
}

func (m *Memory) DeleteRequest(_ context.Context, r *absence.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.requests[r.ID]
	if !ok {
		return &absence.NotFoundError{Kind: "request", ID: string(r.ID)}
	}
	if existing.Version != r.Version {
		return &absence.ConflictError{Kind: "request", ID: string(r.ID)}
	}
	delete(m.requests, r.ID)
	return nil
}

func (m *Memory) ListRequests(_ context.Context) ([]absence.Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]absence.Request, 0, len(m.requests))
	for _, r := range m.requests {
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Start.Equal(result[j].Start) {
			return result[i].Start.Before(result[j].Start)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// =============================================================================
// HISTORY QUERIES
// =============================================================================

func (m *Memory) FindAbsences(_ context.Context, employee absence.EmployeeID, window absence.Period, reason absence.Reason) ([]absence.Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []absence.Request
	for _, r := range m.requests {
		if r.EmployeeID != employee || r.Reason != reason {
			continue
		}
		if window.Overlaps(r.Start, r.End) {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Start.Before(result[j].Start) })
	return result, nil
}

func (m *Memory) SumChargeableDays(ctx context.Context, employee absence.EmployeeID, window absence.Period, reason absence.Reason) (int, error) {
	absences, err := m.FindAbsences(ctx, employee, window, reason)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, r := range absences {
		total += r.ChargeableDays
	}
	return total, nil
}

func (m *Memory) CountAbsences(ctx context.Context, employee absence.EmployeeID, window absence.Period, reason absence.Reason) (int, error) {
	absences, err := m.FindAbsences(ctx, employee, window, reason)
	if err != nil {
		return 0, err
	}
	return len(absences), nil
}
