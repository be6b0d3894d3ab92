package employee

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrMissingFields     = errors.New("missing required fields")
)

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

func (s *Service) Create(ctx context.Context, payload Employee) (string, error) {
	if strings.TrimSpace(payload.FirstName) == "" || strings.TrimSpace(payload.LastName) == "" || strings.TrimSpace(payload.Email) == "" {
		return "", ErrMissingFields
	}
	return s.Store.Create(ctx, payload)
}

func (s *Service) Get(ctx context.Context, employeeID string) (Employee, error) {
	return s.Store.Get(ctx, employeeID)
}

func (s *Service) List(ctx context.Context, status string, limit, offset int) ([]Employee, int, error) {
	return s.Store.List(ctx, status, limit, offset)
}

func (s *Service) Update(ctx context.Context, payload Employee) error {
	if payload.ID == "" {
		return ErrMissingFields
	}
	return s.Store.Update(ctx, payload)
}

// ChangeStatus applies a soft lifecycle transition. Records are never
// removed; terminated and resigned are terminal.
func (s *Service) ChangeStatus(ctx context.Context, employeeID, status string) error {
	current, err := s.Store.Get(ctx, employeeID)
	if err != nil {
		return err
	}
	if !TransitionAllowed(current.Status, status) {
		return ErrInvalidTransition
	}
	return s.Store.UpdateStatus(ctx, employeeID, status)
}
