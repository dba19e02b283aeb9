/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements absence.HolidayStore using SQLite. In production the same
  patterns apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  employees:  organization members with allowance and rating columns
  absences:   submitted absence requests (approved requests persist;
              denied/cancelled requests are deleted)
  holidays:   organization-wide non-working dates

OPTIMISTIC CONCURRENCY:
  employees and absences carry a version column. Every UPDATE and DELETE
  is conditioned on the expected version; zero rows affected means either
  the row is gone (NotFoundError) or another actor won the race
  (ConflictError). This serializes concurrent approve/deny/cancel calls
  on the same request.

HISTORY QUERIES:
  SumChargeableDays and CountAbsences use the Period.Overlaps predicate:
  a request is in-window when either endpoint lies strictly between the
  window bounds. Missing history returns zero, not an error.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  multiple readers don't block and crash recovery improves.

USAGE:
  st, err := sqlite.New("./data/absence.db")
  if err != nil { ... }
  defer st.Close()
  lifecycle := absence.NewLifecycle(st, notifier, nil, nil)

SEE ALSO:
  - absence/store.go: interface definitions and contracts
  - absence/store/memory.go: in-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/smylay/absence-engine/absence"
)

// Store implements absence.HolidayStore using SQLite.
type Store struct {
	db *sql.DB
}

var _ absence.HolidayStore = (*Store)(nil)

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id             TEXT PRIMARY KEY,
		name           TEXT NOT NULL,
		job_title      TEXT NOT NULL DEFAULT '',
		email          TEXT NOT NULL DEFAULT '',
		telephone      TEXT NOT NULL DEFAULT '',
		role           TEXT NOT NULL,
		days_allowed   INTEGER NOT NULL DEFAULT 25,
		absence_rating INTEGER NOT NULL DEFAULT 0,
		absence_count  INTEGER NOT NULL DEFAULT 0,
		version        INTEGER NOT NULL DEFAULT 1,
		created_at     TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS absences (
		id              TEXT PRIMARY KEY,
		employee_id     TEXT NOT NULL REFERENCES employees(id),
		reason          TEXT NOT NULL,
		start_date      TEXT NOT NULL,
		end_date        TEXT NOT NULL,
		chargeable_days INTEGER NOT NULL,
		state           TEXT NOT NULL,
		approved        BOOLEAN NOT NULL DEFAULT FALSE,
		version         INTEGER NOT NULL DEFAULT 1,
		created_at      TEXT NOT NULL,
		updated_at      TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_absences_employee
		ON absences(employee_id);
	CREATE INDEX IF NOT EXISTS idx_absences_state
		ON absences(state);

	-- Composite index for history queries (rating refresh hot path)
	CREATE INDEX IF NOT EXISTS idx_absences_employee_reason_dates
		ON absences(employee_id, reason, start_date, end_date);

	CREATE TABLE IF NOT EXISTS holidays (
		id         TEXT PRIMARY KEY,
		date       TEXT NOT NULL,
		name       TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_holidays_unique
		ON holidays(date, name);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func (s *Store) FindHolidays(ctx context.Context) ([]absence.Holiday, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, date, name FROM holidays ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("failed to query holidays: %w", err)
	}
	defer rows.Close()

	var result []absence.Holiday
	for rows.Next() {
		var h absence.Holiday
		var date string
		if err := rows.Scan(&h.ID, &date, &h.Name); err != nil {
			return nil, err
		}
		h.Date, err = absence.ParseDate(date)
		if err != nil {
			return nil, err
		}
		result = append(result, h)
	}
	return result, rows.Err()
}

func (s *Store) SaveHoliday(ctx context.Context, h absence.Holiday) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO holidays (id, date, name, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET date = excluded.date, name = excluded.name`,
		h.ID, h.Date.String(), h.Name, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save holiday: %w", err)
	}
	return nil
}

func (s *Store) DeleteHoliday(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM holidays WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete holiday: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &absence.NotFoundError{Kind: "holiday", ID: id}
	}
	return nil
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func (s *Store) GetEmployee(ctx context.Context, id absence.EmployeeID) (*absence.Employee, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, job_title, email, telephone, role,
		        days_allowed, absence_rating, absence_count, version, created_at
		 FROM employees WHERE id = ?`, id)
	e, err := scanEmployee(row)
	if err != nil {
		if errors.Is(err, absence.ErrNotFound) {
			return nil, &absence.NotFoundError{Kind: "employee", ID: string(id)}
		}
		return nil, err
	}
	return e, nil
}

func (s *Store) SaveEmployee(ctx context.Context, e *absence.Employee) error {
	if e.Version == 0 {
		if e.CreatedAt.IsZero() {
			e.CreatedAt = time.Now().UTC()
		}
		e.Version = 1
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO employees
			   (id, name, job_title, email, telephone, role,
			    days_allowed, absence_rating, absence_count, version, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.Name, e.JobTitle, e.Email, e.Telephone, e.Role,
			e.DaysAllowed, e.AbsenceRating, e.AbsenceCount, e.Version,
			e.CreatedAt.Format(time.RFC3339))
		if err != nil {
			return fmt.Errorf("failed to insert employee: %w", err)
		}
		return nil
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE employees
		 SET name = ?, job_title = ?, email = ?, telephone = ?, role = ?,
		     days_allowed = ?, absence_rating = ?, absence_count = ?,
		     version = version + 1
		 WHERE id = ? AND version = ?`,
		e.Name, e.JobTitle, e.Email, e.Telephone, e.Role,
		e.DaysAllowed, e.AbsenceRating, e.AbsenceCount,
		e.ID, e.Version)
	if err != nil {
		return fmt.Errorf("failed to update employee: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return s.staleWrite(ctx, "employee", `SELECT 1 FROM employees WHERE id = ?`, string(e.ID))
	}
	e.Version++
	return nil
}

func (s *Store) ListEmployees(ctx context.Context) ([]absence.Employee, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, job_title, email, telephone, role,
		        days_allowed, absence_rating, absence_count, version, created_at
		 FROM employees ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var result []absence.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *e)
	}
	return result, rows.Err()
}

// =============================================================================
// REQUESTS
// =============================================================================

func (s *Store) GetRequest(ctx context.Context, id absence.RequestID) (*absence.Request, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, employee_id, reason, start_date, end_date,
		        chargeable_days, state, approved, version, created_at, updated_at
		 FROM absences WHERE id = ?`, id)
	r, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, absence.ErrNotFound) {
			return nil, &absence.NotFoundError{Kind: "request", ID: string(id)}
		}
		return nil, err
	}
	return r, nil
}

func (s *Store) SaveRequest(ctx context.Context, r *absence.Request) error {
	if r.Version == 0 {
		r.Version = 1
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO absences
			   (id, employee_id, reason, start_date, end_date,
			    chargeable_days, state, approved, version, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.EmployeeID, r.Reason, r.Start.String(), r.End.String(),
			r.ChargeableDays, r.State, r.Approved, r.Version,
			r.CreatedAt.Format(time.RFC3339), r.UpdatedAt.Format(time.RFC3339))
		if err != nil {
			return fmt.Errorf("failed to insert request: %w", err)
		}
		return nil
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE absences
		 SET reason = ?, start_date = ?, end_date = ?, chargeable_days = ?,
		     state = ?, approved = ?, version = version + 1, updated_at = ?
		 WHERE id = ? AND version = ?`,
		r.Reason, r.Start.String(), r.End.String(), r.ChargeableDays,
		r.State, r.Approved, r.UpdatedAt.Format(time.RFC3339),
		r.ID, r.Version)
	if err != nil {
		return fmt.Errorf("failed to update request: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return s.staleWrite(ctx, "request", `SELECT 1 FROM absences WHERE id = ?`, string(r.ID))
	}
	r.Version++
	return nil
}

func (s *Store) DeleteRequest(ctx context.Context, r *absence.Request) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM absences WHERE id = ? AND version = ?`, r.ID, r.Version)
	if err != nil {
		return fmt.Errorf("failed to delete request: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return s.staleWrite(ctx, "request", `SELECT 1 FROM absences WHERE id = ?`, string(r.ID))
	}
	return nil
}

func (s *Store) ListRequests(ctx context.Context) ([]absence.Request, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, employee_id, reason, start_date, end_date,
		        chargeable_days, state, approved, version, created_at, updated_at
		 FROM absences ORDER BY start_date, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	var result []absence.Request
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *r)
	}
	return result, rows.Err()
}

// =============================================================================
// HISTORY QUERIES
// =============================================================================

// Strict inequalities on both bounds, mirroring Period.Overlaps.
const overlapClause = `employee_id = ? AND reason = ?
	AND ((end_date > ? AND end_date < ?) OR (start_date > ? AND start_date < ?))`

func (s *Store) FindAbsences(ctx context.Context, employee absence.EmployeeID, window absence.Period, reason absence.Reason) ([]absence.Request, error) {
	ws, we := window.Start.String(), window.End.String()
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, employee_id, reason, start_date, end_date,
		        chargeable_days, state, approved, version, created_at, updated_at
		 FROM absences WHERE `+overlapClause+` ORDER BY start_date`,
		employee, reason, ws, we, ws, we)
	if err != nil {
		return nil, fmt.Errorf("failed to query absences: %w", err)
	}
	defer rows.Close()

	var result []absence.Request
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *r)
	}
	return result, rows.Err()
}

func (s *Store) SumChargeableDays(ctx context.Context, employee absence.EmployeeID, window absence.Period, reason absence.Reason) (int, error) {
	ws, we := window.Start.String(), window.End.String()
	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(chargeable_days), 0) FROM absences WHERE `+overlapClause,
		employee, reason, ws, we, ws, we).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum chargeable days: %w", err)
	}
	return total, nil
}

func (s *Store) CountAbsences(ctx context.Context, employee absence.EmployeeID, window absence.Period, reason absence.Reason) (int, error) {
	ws, we := window.Start.String(), window.End.String()
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(id) FROM absences WHERE `+overlapClause,
		employee, reason, ws, we, ws, we).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count absences: %w", err)
	}
	return count, nil
}

// =============================================================================
// SCAN HELPERS
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (*absence.Employee, error) {
	var e absence.Employee
	var createdAt string
	err := row.Scan(&e.ID, &e.Name, &e.JobTitle, &e.Email, &e.Telephone, &e.Role,
		&e.DaysAllowed, &e.AbsenceRating, &e.AbsenceCount, &e.Version, &createdAt)
	if err == sql.ErrNoRows {
		return nil, &absence.NotFoundError{Kind: "employee"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan employee: %w", err)
	}
	e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &e, nil
}

func scanRequest(row rowScanner) (*absence.Request, error) {
	var r absence.Request
	var start, end, createdAt, updatedAt string
	err := row.Scan(&r.ID, &r.EmployeeID, &r.Reason, &start, &end,
		&r.ChargeableDays, &r.State, &r.Approved, &r.Version, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, &absence.NotFoundError{Kind: "request"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan request: %w", err)
	}
	if r.Start, err = absence.ParseDate(start); err != nil {
		return nil, err
	}
	if r.End, err = absence.ParseDate(end); err != nil {
		return nil, err
	}
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	r.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &r, nil
}

// staleWrite distinguishes a lost race from a missing row after a
// version-conditioned write touched nothing.
func (s *Store) staleWrite(ctx context.Context, kind, existsQuery, id string) error {
	var one int
	err := s.db.QueryRowContext(ctx, existsQuery, id).Scan(&one)
	if err == sql.ErrNoRows {
		return &absence.NotFoundError{Kind: kind, ID: id}
	}
	if err != nil {
		return fmt.Errorf("failed to check %s existence: %w", kind, err)
	}
	return &absence.ConflictError{Kind: kind, ID: id}
}
