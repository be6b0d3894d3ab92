package payroll

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrRunFinalized = errors.New("payroll run already finalized")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) CreateRun(ctx context.Context, run Run) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO payroll_runs (period_start, period_end, attendance_weight, billable_weight, salary_floor, status)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING id
  `, run.PeriodStart, run.PeriodEnd, run.Weights.Attendance, run.Weights.Billable, run.SalaryFloor, RunStatusDraft).Scan(&id)
	return id, err
}

func (s *Store) GetRun(ctx context.Context, runID string) (Run, error) {
	var run Run
	err := s.DB.QueryRow(ctx, `
    SELECT id, period_start, period_end, attendance_weight, billable_weight, salary_floor, status, finalized_at, created_at
    FROM payroll_runs
    WHERE id = $1
  `, runID).Scan(&run.ID, &run.PeriodStart, &run.PeriodEnd, &run.Weights.Attendance, &run.Weights.Billable,
		&run.SalaryFloor, &run.Status, &run.FinalizedAt, &run.CreatedAt)
	return run, err
}

func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, period_start, period_end, attendance_weight, billable_weight, salary_floor, status, finalized_at, created_at
    FROM payroll_runs
    ORDER BY period_start DESC
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.PeriodStart, &run.PeriodEnd, &run.Weights.Attendance, &run.Weights.Billable,
			&run.SalaryFloor, &run.Status, &run.FinalizedAt, &run.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ReplaceResults swaps the run's result rows in one transaction, guarded by
// a row lock on the run so a finalize cannot interleave with a recompute.
func (s *Store) ReplaceResults(ctx context.Context, runID string, results []Result) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var status string
	if err := tx.QueryRow(ctx, "SELECT status FROM payroll_runs WHERE id = $1 FOR UPDATE", runID).Scan(&status); err != nil {
		return err
	}
	if status == RunStatusFinalized {
		return ErrRunFinalized
	}

	if _, err := tx.Exec(ctx, "DELETE FROM payroll_results WHERE run_id = $1", runID); err != nil {
		return err
	}
	for _, result := range results {
		if _, err := tx.Exec(ctx, `
      INSERT INTO payroll_results (run_id, employee_id, attendance_rate, billable_rate, score, base_salary, net_salary)
      VALUES ($1,$2,$3,$4,$5,$6,$7)
    `, runID, result.EmployeeID, result.AttendanceRate, result.BillableRate, result.Score,
			result.BaseSalary, result.NetSalary); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (s *Store) FinalizeRun(ctx context.Context, runID string, at time.Time) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var status string
	if err := tx.QueryRow(ctx, "SELECT status FROM payroll_runs WHERE id = $1 FOR UPDATE", runID).Scan(&status); err != nil {
		return err
	}
	if status == RunStatusFinalized {
		return ErrRunFinalized
	}

	if _, err := tx.Exec(ctx, `
    UPDATE payroll_runs SET status = $1, finalized_at = $2 WHERE id = $3
  `, RunStatusFinalized, at, runID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) ResultsForRun(ctx context.Context, runID string) ([]Result, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT r.id, r.run_id, r.employee_id, e.first_name || ' ' || e.last_name,
           r.attendance_rate, r.billable_rate, r.score, r.base_salary, r.net_salary
    FROM payroll_results r
    JOIN employees e ON r.employee_id = e.id
    WHERE r.run_id = $1
    ORDER BY e.last_name, e.first_name
  `, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var result Result
		if err := rows.Scan(&result.ID, &result.RunID, &result.EmployeeID, &result.EmployeeName,
			&result.AttendanceRate, &result.BillableRate, &result.Score, &result.BaseSalary, &result.NetSalary); err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

func (s *Store) ResultForEmployee(ctx context.Context, runID, employeeID string) (Result, error) {
	var result Result
	err := s.DB.QueryRow(ctx, `
    SELECT r.id, r.run_id, r.employee_id, e.first_name || ' ' || e.last_name,
           r.attendance_rate, r.billable_rate, r.score, r.base_salary, r.net_salary
    FROM payroll_results r
    JOIN employees e ON r.employee_id = e.id
    WHERE r.run_id = $1 AND r.employee_id = $2
  `, runID, employeeID).Scan(&result.ID, &result.RunID, &result.EmployeeID, &result.EmployeeName,
		&result.AttendanceRate, &result.BillableRate, &result.Score, &result.BaseSalary, &result.NetSalary)
	return result, err
}
