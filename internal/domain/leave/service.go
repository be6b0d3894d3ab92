package leave

import (
	"context"
	"errors"
	"time"

	"hrops/internal/domain/calendar"
)

var (
	ErrInvalidState = errors.New("invalid state")
	ErrInvalidRange = errors.New("end date before start date")
)

type Service struct {
	Store    *Store
	Calendar *calendar.Store
}

func NewService(store *Store, calendarStore *calendar.Store) *Service {
	return &Service{Store: store, Calendar: calendarStore}
}

func (s *Service) ListPolicies(ctx context.Context) ([]PolicyInfo, error) {
	return s.Store.ListPolicies(ctx)
}

func (s *Service) CreatePolicy(ctx context.Context, payload PolicyInfo) (string, error) {
	if payload.Kind != KindTiered && payload.Kind != KindRollingWindow {
		return "", ErrUnknownPolicyKind
	}
	id, err := s.Store.CreatePolicy(ctx, payload)
	if err != nil {
		return "", err
	}
	if payload.Kind == KindTiered && len(payload.Tiers) > 0 {
		if err := s.Store.ReplaceTiers(ctx, id, payload.Tiers); err != nil {
			return "", err
		}
	}
	return id, nil
}

func (s *Service) ReplaceTiers(ctx context.Context, policyID string, tiers []Tier) error {
	policy, err := s.Store.GetPolicy(ctx, policyID)
	if err != nil {
		return err
	}
	if policy.Kind() != KindTiered {
		return ErrInvalidState
	}
	return s.Store.ReplaceTiers(ctx, policyID, tiers)
}

// BalanceSummary computes entitled/used/remaining for one employee against
// one policy. Calendar configuration is loaded fresh so administrative
// edits to weekends or holidays are reflected immediately.
func (s *Service) BalanceSummary(ctx context.Context, employeeID, policyID string, asOf time.Time) (Summary, error) {
	cal, err := s.Calendar.Load(ctx)
	if err != nil {
		return Summary{}, err
	}
	policy, err := s.Store.GetPolicy(ctx, policyID)
	if err != nil {
		return Summary{}, err
	}
	startDate, err := s.Store.EmployeeStartDate(ctx, employeeID)
	if err != nil {
		return Summary{}, err
	}
	spans, err := s.approvedSpansFor(ctx, employeeID, policy, asOf)
	if err != nil {
		return Summary{}, err
	}
	return ComputeSummary(cal, policy, startDate, spans, asOf)
}

// CheckAvailability answers whether the employee can take the requested
// span under the policy. Negative outcomes are structured results.
func (s *Service) CheckAvailability(ctx context.Context, employeeID, policyID string, reqStart, reqEnd, asOf time.Time) (Availability, error) {
	cal, err := s.Calendar.Load(ctx)
	if err != nil {
		return Availability{}, err
	}
	policy, err := s.Store.GetPolicy(ctx, policyID)
	if err != nil {
		return Availability{}, err
	}
	startDate, err := s.Store.EmployeeStartDate(ctx, employeeID)
	if err != nil {
		return Availability{}, err
	}
	spans, err := s.approvedSpansFor(ctx, employeeID, policy, effectiveAsOf(policy, reqStart, asOf))
	if err != nil {
		return Availability{}, err
	}
	return CheckAvailability(cal, policy, startDate, spans, reqStart, reqEnd, asOf)
}

// approvedSpansFor queries approved records overlapping the period the
// policy kind cares about: the calendar year for tiered policies, the
// trailing window for rolling ones.
func (s *Service) approvedSpansFor(ctx context.Context, employeeID string, policy Policy, asOf time.Time) ([]Span, error) {
	switch rules := policy.Rules.(type) {
	case TieredRules:
		yearStart := time.Date(asOf.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		yearEnd := time.Date(asOf.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
		return s.Store.ApprovedSpans(ctx, employeeID, policy.ID, yearStart, yearEnd)
	case RollingWindowRules:
		months := rules.PeriodMonths
		if months < 0 {
			months = 0
		}
		return s.Store.ApprovedSpans(ctx, employeeID, policy.ID, asOf.AddDate(0, -months, 0), asOf)
	default:
		return nil, ErrUnknownPolicyKind
	}
}

type SubmitResult struct {
	Record       *Record      `json:"record,omitempty"`
	Availability Availability `json:"availability"`
}

// SubmitRequest gates the request through the availability check and
// creates a pending record only when the span is available. Force bypasses
// the balance gate for HR overrides but never the working-day rule.
func (s *Service) SubmitRequest(ctx context.Context, employeeID, policyID string, startDate, endDate time.Time, reason string, force bool) (SubmitResult, error) {
	if endDate.Before(startDate) {
		return SubmitResult{}, ErrInvalidRange
	}

	availability, err := s.CheckAvailability(ctx, employeeID, policyID, startDate, endDate, time.Now().UTC())
	if err != nil {
		return SubmitResult{}, err
	}
	allowed := availability.Available || (force && availability.RequestedDays > 0)
	if !allowed {
		return SubmitResult{Availability: availability}, nil
	}

	record, err := s.Store.CreateRecord(ctx, employeeID, policyID, startDate, endDate, reason)
	if err != nil {
		return SubmitResult{}, err
	}
	return SubmitResult{Record: &record, Availability: availability}, nil
}

func (s *Service) GetRecord(ctx context.Context, recordID string) (Record, error) {
	return s.Store.GetRecord(ctx, recordID)
}

func (s *Service) ListRecords(ctx context.Context, filter RecordFilter) ([]Record, int, error) {
	return s.Store.ListRecords(ctx, filter)
}

func (s *Service) Approve(ctx context.Context, recordID, actorID string) (Record, error) {
	return s.Store.DecideRecord(ctx, recordID, StatusPending, StatusApproved, actorID)
}

func (s *Service) Reject(ctx context.Context, recordID, actorID string) (Record, error) {
	return s.Store.DecideRecord(ctx, recordID, StatusPending, StatusRejected, actorID)
}

// Cancel allows withdrawing a record while it is still pending, or after
// approval as long as the leave has not started yet.
func (s *Service) Cancel(ctx context.Context, recordID, actorID string, today time.Time) (Record, error) {
	record, err := s.Store.GetRecord(ctx, recordID)
	if err != nil {
		return Record{}, err
	}
	switch record.Status {
	case StatusPending:
		return s.Store.DecideRecord(ctx, recordID, StatusPending, StatusCancelled, actorID)
	case StatusApproved:
		if !record.StartDate.After(today) {
			return record, ErrInvalidState
		}
		return s.Store.DecideRecord(ctx, recordID, StatusApproved, StatusCancelled, actorID)
	default:
		return record, ErrInvalidState
	}
}

func (s *Service) CalendarExportRows(ctx context.Context, employeeID string) ([]CalendarExportRow, error) {
	return s.Store.CalendarExportRows(ctx, employeeID)
}
