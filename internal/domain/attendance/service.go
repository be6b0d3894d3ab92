package attendance

import (
	"context"
	"errors"
	"time"

	"hrops/internal/domain/calendar"
)

var ErrInvalidKind = errors.New("invalid attendance kind")

type Service struct {
	Store    *Store
	Calendar *calendar.Store
	Weights  Weights
}

func NewService(store *Store, calendarStore *calendar.Store, weights Weights) *Service {
	return &Service{Store: store, Calendar: calendarStore, Weights: weights}
}

func (s *Service) RecordDay(ctx context.Context, record Record) (string, error) {
	if !ValidKind(record.Kind) {
		return "", ErrInvalidKind
	}
	return s.Store.Upsert(ctx, record)
}

func (s *Service) ListForEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]Record, error) {
	return s.Store.ListForEmployee(ctx, employeeID, from, to)
}

// Performance scores one employee's attendance over a period using the
// calendar active at call time.
func (s *Service) Performance(ctx context.Context, employeeID string, periodStart, periodEnd time.Time) (Performance, error) {
	cal, err := s.Calendar.Load(ctx)
	if err != nil {
		return Performance{}, err
	}
	records, err := s.Store.ListForEmployee(ctx, employeeID, periodStart, periodEnd)
	if err != nil {
		return Performance{}, err
	}
	perf := Score(cal, records, periodStart, periodEnd, s.Weights)
	perf.EmployeeID = employeeID
	return perf, nil
}
