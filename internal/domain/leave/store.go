package leave

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) ListPolicies(ctx context.Context) ([]PolicyInfo, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, kind, COALESCE(initial_days, 0), COALESCE(total_days, 0), COALESCE(period_months, 0)
    FROM leave_policies
    ORDER BY name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var policies []PolicyInfo
	for rows.Next() {
		var p PolicyInfo
		if err := rows.Scan(&p.ID, &p.Name, &p.Kind, &p.InitialDays, &p.TotalDays, &p.PeriodMonths); err != nil {
			return nil, err
		}
		policies = append(policies, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range policies {
		if policies[i].Kind != KindTiered {
			continue
		}
		tiers, err := s.listTiers(ctx, policies[i].ID)
		if err != nil {
			return nil, err
		}
		policies[i].Tiers = tiers
	}
	return policies, nil
}

func (s *Store) CreatePolicy(ctx context.Context, payload PolicyInfo) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO leave_policies (name, kind, initial_days, total_days, period_months)
    VALUES ($1,$2,$3,$4,$5)
    RETURNING id
  `, payload.Name, payload.Kind, payload.InitialDays, payload.TotalDays, payload.PeriodMonths).Scan(&id)
	return id, err
}

// GetPolicy loads a policy row plus tiers and materializes the rules
// variant for its kind. Missing config columns default to zero so a
// misconfigured policy grants nothing rather than everything.
func (s *Store) GetPolicy(ctx context.Context, policyID string) (Policy, error) {
	var (
		policy       Policy
		kind         Kind
		initialDays  float64
		totalDays    float64
		periodMonths int
	)
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, kind, COALESCE(initial_days, 0), COALESCE(total_days, 0), COALESCE(period_months, 0)
    FROM leave_policies
    WHERE id = $1
  `, policyID).Scan(&policy.ID, &policy.Name, &kind, &initialDays, &totalDays, &periodMonths)
	if err != nil {
		return Policy{}, err
	}

	switch kind {
	case KindTiered:
		tiers, err := s.listTiers(ctx, policy.ID)
		if err != nil {
			return Policy{}, err
		}
		policy.Rules = TieredRules{InitialDays: initialDays, Tiers: tiers}
	case KindRollingWindow:
		policy.Rules = RollingWindowRules{TotalDays: totalDays, PeriodMonths: periodMonths}
	default:
		return Policy{}, fmt.Errorf("%w: %q", ErrUnknownPolicyKind, kind)
	}
	return policy, nil
}

func (s *Store) listTiers(ctx context.Context, policyID string) ([]Tier, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, min_years, max_years, annual_days
    FROM leave_policy_tiers
    WHERE policy_id = $1
    ORDER BY min_years
  `, policyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tiers []Tier
	for rows.Next() {
		var tier Tier
		if err := rows.Scan(&tier.ID, &tier.MinYears, &tier.MaxYears, &tier.AnnualDays); err != nil {
			return nil, err
		}
		tiers = append(tiers, tier)
	}
	return tiers, rows.Err()
}

// ReplaceTiers swaps a policy's tier set in one transaction. The persisted
// monthly_accrual_rate is recomputed here, explicitly, on every write.
func (s *Store) ReplaceTiers(ctx context.Context, policyID string, tiers []Tier) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM leave_policy_tiers WHERE policy_id = $1", policyID); err != nil {
		return err
	}
	for _, tier := range tiers {
		rate := tier.MonthlyAccrualRate()
		if _, err := tx.Exec(ctx, `
      INSERT INTO leave_policy_tiers (policy_id, min_years, max_years, annual_days, monthly_accrual_rate)
      VALUES ($1,$2,$3,$4,$5)
    `, policyID, tier.MinYears, tier.MaxYears, tier.AnnualDays, rate); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// ApprovedSpans returns the approved record spans for employee+policy that
// overlap the inclusive period [from, to].
func (s *Store) ApprovedSpans(ctx context.Context, employeeID, policyID string, from, to time.Time) ([]Span, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT start_date, end_date
    FROM leave_records
    WHERE employee_id = $1 AND policy_id = $2 AND status = $3
      AND start_date <= $4 AND end_date >= $5
  `, employeeID, policyID, StatusApproved, to, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var spans []Span
	for rows.Next() {
		var span Span
		if err := rows.Scan(&span.Start, &span.End); err != nil {
			return nil, err
		}
		spans = append(spans, span)
	}
	return spans, rows.Err()
}

func (s *Store) EmployeeStartDate(ctx context.Context, employeeID string) (*time.Time, error) {
	var startDate *time.Time
	err := s.DB.QueryRow(ctx, "SELECT start_date FROM employees WHERE id = $1", employeeID).Scan(&startDate)
	return startDate, err
}

func (s *Store) CreateRecord(ctx context.Context, employeeID, policyID string, startDate, endDate time.Time, reason string) (Record, error) {
	record := Record{
		EmployeeID: employeeID,
		PolicyID:   policyID,
		StartDate:  startDate,
		EndDate:    endDate,
		Status:     StatusPending,
		Reason:     reason,
	}
	err := s.DB.QueryRow(ctx, `
    INSERT INTO leave_records (employee_id, policy_id, start_date, end_date, status, reason)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING id, created_at
  `, employeeID, policyID, startDate, endDate, StatusPending, reason).Scan(&record.ID, &record.CreatedAt)
	return record, err
}

func (s *Store) GetRecord(ctx context.Context, recordID string) (Record, error) {
	var record Record
	err := s.DB.QueryRow(ctx, `
    SELECT id, employee_id, policy_id, start_date, end_date, status, COALESCE(reason, ''), decided_by, decided_at, created_at
    FROM leave_records
    WHERE id = $1
  `, recordID).Scan(&record.ID, &record.EmployeeID, &record.PolicyID, &record.StartDate, &record.EndDate,
		&record.Status, &record.Reason, &record.DecidedBy, &record.DecidedAt, &record.CreatedAt)
	return record, err
}

type RecordFilter struct {
	EmployeeID string
	Status     string
	Limit      int
	Offset     int
}

func (s *Store) ListRecords(ctx context.Context, filter RecordFilter) ([]Record, int, error) {
	query := `
    SELECT id, employee_id, policy_id, start_date, end_date, status, COALESCE(reason, ''), decided_by, decided_at, created_at
    FROM leave_records
    WHERE 1=1
  `
	countQuery := "SELECT COUNT(1) FROM leave_records WHERE 1=1"
	var args []any
	var countArgs []any

	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		query += fmt.Sprintf(" AND employee_id = $%d", len(args))
		countArgs = append(countArgs, filter.EmployeeID)
		countQuery += fmt.Sprintf(" AND employee_id = $%d", len(countArgs))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
		countArgs = append(countArgs, filter.Status)
		countQuery += fmt.Sprintf(" AND status = $%d", len(countArgs))
	}

	var total int
	if err := s.DB.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += " ORDER BY created_at DESC"
	args = append(args, filter.Limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, filter.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var record Record
		if err := rows.Scan(&record.ID, &record.EmployeeID, &record.PolicyID, &record.StartDate, &record.EndDate,
			&record.Status, &record.Reason, &record.DecidedBy, &record.DecidedAt, &record.CreatedAt); err != nil {
			return nil, 0, err
		}
		records = append(records, record)
	}
	return records, total, rows.Err()
}

// DecideRecord moves a record out of pending inside one transaction,
// guarding the current status with a row lock so two approvers cannot race.
func (s *Store) DecideRecord(ctx context.Context, recordID, fromStatus, toStatus, actorID string) (Record, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return Record{}, err
	}
	defer tx.Rollback(ctx)

	var record Record
	err = tx.QueryRow(ctx, `
    SELECT id, employee_id, policy_id, start_date, end_date, status, COALESCE(reason, ''), created_at
    FROM leave_records
    WHERE id = $1
    FOR UPDATE
  `, recordID).Scan(&record.ID, &record.EmployeeID, &record.PolicyID, &record.StartDate, &record.EndDate,
		&record.Status, &record.Reason, &record.CreatedAt)
	if err != nil {
		return Record{}, err
	}
	if record.Status != fromStatus {
		return record, ErrInvalidState
	}

	now := time.Now().UTC()
	if _, err := tx.Exec(ctx, `
    UPDATE leave_records SET status = $1, decided_by = $2, decided_at = $3 WHERE id = $4
  `, toStatus, actorID, now, recordID); err != nil {
		return Record{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Record{}, err
	}

	record.Status = toStatus
	record.DecidedBy = &actorID
	record.DecidedAt = &now
	return record, nil
}

type CalendarExportRow struct {
	RecordID   string
	EmployeeID string
	Employee   string
	PolicyName string
	StartDate  time.Time
	EndDate    time.Time
	Status     string
}

func (s *Store) CalendarExportRows(ctx context.Context, employeeID string) ([]CalendarExportRow, error) {
	query := `
    SELECT r.id, r.employee_id, e.first_name || ' ' || e.last_name, p.name, r.start_date, r.end_date, r.status
    FROM leave_records r
    JOIN employees e ON r.employee_id = e.id
    JOIN leave_policies p ON r.policy_id = p.id
    WHERE r.status IN ($1, $2)
  `
	args := []any{StatusPending, StatusApproved}
	if employeeID != "" {
		query += " AND r.employee_id = $3"
		args = append(args, employeeID)
	}
	query += " ORDER BY r.start_date"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CalendarExportRow
	for rows.Next() {
		var row CalendarExportRow
		if err := rows.Scan(&row.RecordID, &row.EmployeeID, &row.Employee, &row.PolicyName, &row.StartDate, &row.EndDate, &row.Status); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
