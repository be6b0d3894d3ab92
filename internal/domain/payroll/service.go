package payroll

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"hrops/internal/domain/attendance"
	"hrops/internal/domain/employee"
	"hrops/internal/platform/crypto"
)

var ErrInvalidPeriod = errors.New("period end must not precede period start")

type Service struct {
	Store              *Store
	Employees          *employee.Store
	Attendance         *attendance.Service
	Crypto             *crypto.Service
	PayslipDir         string
	DefaultSalaryFloor float64
}

func NewService(store *Store, employees *employee.Store, att *attendance.Service, cryptoSvc *crypto.Service, payslipDir string, defaultSalaryFloor float64) *Service {
	return &Service{
		Store:              store,
		Employees:          employees,
		Attendance:         att,
		Crypto:             cryptoSvc,
		PayslipDir:         payslipDir,
		DefaultSalaryFloor: defaultSalaryFloor,
	}
}

func (s *Service) CreateRun(ctx context.Context, run Run) (Run, error) {
	if run.PeriodEnd.Before(run.PeriodStart) {
		return Run{}, ErrInvalidPeriod
	}
	if err := run.Weights.Validate(); err != nil {
		return Run{}, err
	}
	if run.SalaryFloor < 0 || run.SalaryFloor > 1 {
		return Run{}, errors.New("salary floor must be within [0, 1]")
	}
	id, err := s.Store.CreateRun(ctx, run)
	if err != nil {
		return Run{}, err
	}
	return s.Store.GetRun(ctx, id)
}

func (s *Service) GetRun(ctx context.Context, runID string) (Run, error) {
	return s.Store.GetRun(ctx, runID)
}

func (s *Service) ListRuns(ctx context.Context) ([]Run, error) {
	return s.Store.ListRuns(ctx)
}

// ProcessRun computes a result row for every active employee and replaces
// any previous results. Draft runs can be reprocessed any number of times;
// finalized runs are immutable.
func (s *Service) ProcessRun(ctx context.Context, runID string) ([]Result, error) {
	run, err := s.Store.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run.Status == RunStatusFinalized {
		return nil, ErrRunFinalized
	}

	employees, err := s.Employees.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(employees))
	for _, emp := range employees {
		perf, err := s.Attendance.Performance(ctx, emp.ID, run.PeriodStart, run.PeriodEnd)
		if err != nil {
			return nil, fmt.Errorf("score attendance for %s: %w", emp.ID, err)
		}
		billable := BillableRate(perf.BillableHours, emp.TargetHours)
		score := Score(perf.Rate, billable, run.Weights)
		results = append(results, Result{
			RunID:          runID,
			EmployeeID:     emp.ID,
			EmployeeName:   emp.FirstName + " " + emp.LastName,
			AttendanceRate: perf.Rate,
			BillableRate:   billable,
			Score:          score,
			BaseSalary:     emp.BaseSalary,
			NetSalary:      Salary(emp.BaseSalary, score, run.SalaryFloor),
		})
	}

	if err := s.Store.ReplaceResults(ctx, runID, results); err != nil {
		return nil, err
	}
	return s.Store.ResultsForRun(ctx, runID)
}

func (s *Service) Finalize(ctx context.Context, runID string) (Run, error) {
	if err := s.Store.FinalizeRun(ctx, runID, time.Now().UTC()); err != nil {
		return Run{}, err
	}
	return s.Store.GetRun(ctx, runID)
}

func (s *Service) Results(ctx context.Context, runID string) ([]Result, error) {
	return s.Store.ResultsForRun(ctx, runID)
}

// GeneratePayslipPDF renders one employee's payslip for a run and writes it
// under PayslipDir. When an encryption key is configured the plaintext file
// is replaced with an encrypted .enc copy.
func (s *Service) GeneratePayslipPDF(ctx context.Context, runID, employeeID string) (string, error) {
	run, err := s.Store.GetRun(ctx, runID)
	if err != nil {
		return "", err
	}
	result, err := s.Store.ResultForEmployee(ctx, runID, employeeID)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.PayslipDir, 0o750); err != nil {
		return "", err
	}
	filePath := filepath.Join(s.PayslipDir, fmt.Sprintf("payslip-%s-%s.pdf", runID, employeeID))

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s", result.EmployeeName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s to %s", run.PeriodStart.Format("2006-01-02"), run.PeriodEnd.Format("2006-01-02")))
	pdf.Ln(10)
	pdf.Cell(0, 8, fmt.Sprintf("Attendance rate: %.2f%%", result.AttendanceRate*100))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Billable rate: %.2f%%", result.BillableRate*100))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Score: %.4f", result.Score))
	pdf.Ln(10)
	pdf.Cell(0, 8, fmt.Sprintf("Base salary: %s", result.BaseSalary.StringFixed(2)))
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Net salary: %s", result.NetSalary.StringFixed(2)))

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", err
	}

	if s.Crypto != nil && s.Crypto.Configured() {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return "", err
		}
		encrypted, err := s.Crypto.Encrypt(data)
		if err != nil {
			return "", err
		}
		encryptedPath := filePath + ".enc"
		if err := os.WriteFile(encryptedPath, encrypted, 0o600); err != nil {
			return "", err
		}
		if err := os.Remove(filePath); err != nil {
			return "", err
		}
		return encryptedPath, nil
	}

	return filePath, nil
}

var registerHeaders = []string{"Employee", "Attendance rate", "Billable rate", "Score", "Base salary", "Net salary"}

// RegisterXLSX builds the payroll register spreadsheet for a run.
func (s *Service) RegisterXLSX(ctx context.Context, runID string) (*bytes.Buffer, error) {
	run, err := s.Store.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	results, err := s.Store.ResultsForRun(ctx, runID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Register"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	title := fmt.Sprintf("Payroll %s to %s (%s)",
		run.PeriodStart.Format("2006-01-02"), run.PeriodEnd.Format("2006-01-02"), run.Status)
	if err := f.SetCellValue(sheet, "A1", title); err != nil {
		return nil, err
	}
	for col, header := range registerHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 2)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, err
		}
	}
	for i, result := range results {
		row := i + 3
		values := []any{
			result.EmployeeName,
			result.AttendanceRate,
			result.BillableRate,
			result.Score,
			result.BaseSalary.StringFixed(2),
			result.NetSalary.StringFixed(2),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	return f.WriteToBuffer()
}
