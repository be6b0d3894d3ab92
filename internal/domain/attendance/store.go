package attendance

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

// Upsert records one attendance entry per employee per date; a later
// correction overwrites the earlier entry.
func (s *Store) Upsert(ctx context.Context, record Record) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO attendance_records (employee_id, date, kind, billable_hours)
    VALUES ($1,$2,$3,$4)
    ON CONFLICT (employee_id, date)
    DO UPDATE SET kind = EXCLUDED.kind, billable_hours = EXCLUDED.billable_hours
    RETURNING id
  `, record.EmployeeID, record.Date, record.Kind, record.BillableHours).Scan(&id)
	return id, err
}

func (s *Store) ListForEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]Record, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id, date, kind, billable_hours, created_at
    FROM attendance_records
    WHERE employee_id = $1 AND date >= $2 AND date <= $3
    ORDER BY date
  `, employeeID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var record Record
		if err := rows.Scan(&record.ID, &record.EmployeeID, &record.Date, &record.Kind, &record.BillableHours, &record.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
