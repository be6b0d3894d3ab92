package calendar

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Holiday struct {
	ID   string    `json:"id"`
	Date time.Time `json:"date"`
	Name string    `json:"name"`
}

// Store reads the administrable calendar configuration. Load is called per
// request so edits to weekends and holidays take effect immediately.
type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) Load(ctx context.Context) (Calendar, error) {
	weekend, err := s.WeekendDays(ctx)
	if err != nil {
		return Calendar{}, err
	}

	rows, err := s.DB.Query(ctx, "SELECT date FROM holidays")
	if err != nil {
		return Calendar{}, err
	}
	defer rows.Close()

	var holidays []time.Time
	for rows.Next() {
		var date time.Time
		if err := rows.Scan(&date); err != nil {
			return Calendar{}, err
		}
		holidays = append(holidays, date)
	}
	if err := rows.Err(); err != nil {
		return Calendar{}, err
	}
	return New(weekend, holidays), nil
}

func (s *Store) WeekendDays(ctx context.Context) ([]time.Weekday, error) {
	rows, err := s.DB.Query(ctx, "SELECT weekday FROM weekend_settings ORDER BY weekday")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var weekend []time.Weekday
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		if day, ok := ParseWeekday(name); ok {
			weekend = append(weekend, day)
		}
	}
	return weekend, rows.Err()
}

func (s *Store) ReplaceWeekendDays(ctx context.Context, days []time.Weekday) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM weekend_settings"); err != nil {
		return err
	}
	for _, day := range days {
		if _, err := tx.Exec(ctx, "INSERT INTO weekend_settings (weekday) VALUES ($1) ON CONFLICT DO NOTHING", day.String()); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (s *Store) ListHolidays(ctx context.Context) ([]Holiday, error) {
	rows, err := s.DB.Query(ctx, "SELECT id, date, name FROM holidays ORDER BY date")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holidays []Holiday
	for rows.Next() {
		var h Holiday
		if err := rows.Scan(&h.ID, &h.Date, &h.Name); err != nil {
			return nil, err
		}
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

func (s *Store) CreateHoliday(ctx context.Context, date time.Time, name string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO holidays (date, name)
    VALUES ($1, $2)
    RETURNING id
  `, date, name).Scan(&id)
	return id, err
}

func (s *Store) DeleteHoliday(ctx context.Context, holidayID string) error {
	_, err := s.DB.Exec(ctx, "DELETE FROM holidays WHERE id = $1", holidayID)
	return err
}
