package employee

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const employeeColumns = `id, first_name, last_name, email, start_date, status, manager_id, base_salary, target_hours, created_at`

func (s *Store) Create(ctx context.Context, payload Employee) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO employees (first_name, last_name, email, start_date, status, manager_id, base_salary, target_hours)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    RETURNING id
  `, payload.FirstName, payload.LastName, payload.Email, payload.StartDate, StatusActive,
		payload.ManagerID, payload.BaseSalary, payload.TargetHours).Scan(&id)
	return id, err
}

func (s *Store) Get(ctx context.Context, employeeID string) (Employee, error) {
	var e Employee
	err := s.DB.QueryRow(ctx, fmt.Sprintf("SELECT %s FROM employees WHERE id = $1", employeeColumns), employeeID).
		Scan(&e.ID, &e.FirstName, &e.LastName, &e.Email, &e.StartDate, &e.Status, &e.ManagerID, &e.BaseSalary, &e.TargetHours, &e.CreatedAt)
	return e, err
}

func (s *Store) List(ctx context.Context, status string, limit, offset int) ([]Employee, int, error) {
	query := fmt.Sprintf("SELECT %s FROM employees", employeeColumns)
	countQuery := "SELECT COUNT(1) FROM employees"
	var args []any
	if status != "" {
		query += " WHERE status = $1"
		countQuery += " WHERE status = $1"
		args = append(args, status)
	}

	var total int
	if err := s.DB.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(" ORDER BY last_name, first_name LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		var e Employee
		if err := rows.Scan(&e.ID, &e.FirstName, &e.LastName, &e.Email, &e.StartDate, &e.Status, &e.ManagerID, &e.BaseSalary, &e.TargetHours, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		employees = append(employees, e)
	}
	return employees, total, rows.Err()
}

func (s *Store) Update(ctx context.Context, payload Employee) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE employees
    SET first_name = $1, last_name = $2, email = $3, start_date = $4, manager_id = $5, base_salary = $6, target_hours = $7
    WHERE id = $8
  `, payload.FirstName, payload.LastName, payload.Email, payload.StartDate, payload.ManagerID,
		payload.BaseSalary, payload.TargetHours, payload.ID)
	return err
}

func (s *Store) UpdateStatus(ctx context.Context, employeeID, status string) error {
	_, err := s.DB.Exec(ctx, "UPDATE employees SET status = $1 WHERE id = $2", status, employeeID)
	return err
}

func (s *Store) ListActive(ctx context.Context) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, fmt.Sprintf("SELECT %s FROM employees WHERE status = $1 ORDER BY last_name", employeeColumns), StatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		var e Employee
		if err := rows.Scan(&e.ID, &e.FirstName, &e.LastName, &e.Email, &e.StartDate, &e.Status, &e.ManagerID, &e.BaseSalary, &e.TargetHours, &e.CreatedAt); err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}
