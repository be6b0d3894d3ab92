package payrollhandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"hrops/internal/domain/audit"
	"hrops/internal/domain/payroll"
	"hrops/internal/platform/jobs"
	"hrops/internal/platform/metrics"
	"hrops/internal/transport/http/api"
	"hrops/internal/transport/http/middleware"
	"hrops/internal/transport/http/shared"
)

type Handler struct {
	Service *payroll.Service
	Audit   *audit.Service
	Jobs    *jobs.Service
	Metrics *metrics.Collector
}

func NewHandler(service *payroll.Service, auditSvc *audit.Service, jobsSvc *jobs.Service, collector *metrics.Collector) *Handler {
	return &Handler{Service: service, Audit: auditSvc, Jobs: jobsSvc, Metrics: collector}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/payroll", func(r chi.Router) {
		r.Use(middleware.RequireManager)
		r.Get("/runs", h.handleListRuns)
		r.Post("/runs", h.handleCreateRun)
		r.Get("/runs/{runID}", h.handleGetRun)
		r.Post("/runs/{runID}/process", h.handleProcessRun)
		r.Post("/runs/{runID}/finalize", h.handleFinalizeRun)
		r.Get("/runs/{runID}/results", h.handleResults)
		r.Get("/runs/{runID}/register.xlsx", h.handleRegisterXLSX)
		r.Get("/runs/{runID}/payslips/{employeeID}.pdf", h.handlePayslipPDF)
	})
}

type createRunPayload struct {
	PeriodStart      string   `json:"periodStart"`
	PeriodEnd        string   `json:"periodEnd"`
	AttendanceWeight float64  `json:"attendanceWeight"`
	BillableWeight   float64  `json:"billableWeight"`
	SalaryFloor      *float64 `json:"salaryFloor"`
}

func (h *Handler) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload createRunPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_body", "invalid request body", reqID)
		return
	}
	start, errStart := shared.ParseDate(payload.PeriodStart)
	end, errEnd := shared.ParseDate(payload.PeriodEnd)
	if errStart != nil || errEnd != nil || start.IsZero() || end.IsZero() {
		api.Fail(w, http.StatusBadRequest, "missing_fields", "periodStart and periodEnd are required", reqID)
		return
	}

	run := payroll.Run{
		PeriodStart: start,
		PeriodEnd:   end,
		Weights:     payroll.RunWeights{Attendance: payload.AttendanceWeight, Billable: payload.BillableWeight},
	}
	if payload.SalaryFloor != nil {
		run.SalaryFloor = *payload.SalaryFloor
	} else {
		run.SalaryFloor = h.Service.DefaultSalaryFloor
	}

	created, err := h.Service.CreateRun(r.Context(), run)
	if err != nil {
		switch {
		case errors.Is(err, payroll.ErrInvalidPeriod), errors.Is(err, payroll.ErrInvalidWeights):
			api.Fail(w, http.StatusBadRequest, "invalid_run", err.Error(), reqID)
		default:
			api.Fail(w, http.StatusInternalServerError, "run_create_failed", "failed to create payroll run", reqID)
		}
		return
	}

	if h.Audit != nil {
		if err := h.Audit.Record(r.Context(), user.UserID, "payroll.run_create", "payroll_run", created.ID, reqID, payload); err != nil {
			slog.Warn("audit record failed", "err", err)
		}
	}
	api.Created(w, created, reqID)
}

func (h *Handler) handleListRuns(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	runs, err := h.Service.ListRuns(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "runs_failed", "failed to list payroll runs", reqID)
		return
	}
	api.Success(w, runs, reqID)
}

func (h *Handler) handleGetRun(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	run, err := h.Service.GetRun(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			api.Fail(w, http.StatusNotFound, "not_found", "payroll run not found", reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "run_failed", "failed to load payroll run", reqID)
		return
	}
	api.Success(w, run, reqID)
}

func (h *Handler) handleProcessRun(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	runID := chi.URLParam(r, "runID")

	async := r.URL.Query().Get("async") == "true"
	if async && h.Jobs != nil {
		enqueued := h.Jobs.Enqueue(jobs.JobPayrollProcess, func(ctx context.Context) (any, error) {
			results, err := h.Service.ProcessRun(ctx, runID)
			return map[string]any{"runId": runID, "results": len(results)}, err
		})
		if !enqueued {
			api.Fail(w, http.StatusServiceUnavailable, "queue_full", "job queue is full, retry later", reqID)
			return
		}
		api.WriteJSON(w, http.StatusAccepted, api.Envelope{Success: true, Data: map[string]string{"runId": runID, "status": "queued"}, RequestID: reqID})
		return
	}

	results, err := h.Service.ProcessRun(r.Context(), runID)
	if err != nil {
		switch {
		case errors.Is(err, payroll.ErrRunFinalized):
			api.Fail(w, http.StatusConflict, "run_finalized", "finalized runs cannot be reprocessed", reqID)
		case errors.Is(err, pgx.ErrNoRows):
			api.Fail(w, http.StatusNotFound, "not_found", "payroll run not found", reqID)
		default:
			api.Fail(w, http.StatusInternalServerError, "process_failed", "failed to process payroll run", reqID)
		}
		return
	}
	if h.Metrics != nil {
		h.Metrics.RecordPayrollRun()
	}

	if h.Audit != nil {
		if err := h.Audit.Record(r.Context(), user.UserID, "payroll.run_process", "payroll_run", runID, reqID, map[string]int{"results": len(results)}); err != nil {
			slog.Warn("audit record failed", "err", err)
		}
	}
	api.Success(w, results, reqID)
}

func (h *Handler) handleFinalizeRun(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	runID := chi.URLParam(r, "runID")

	run, err := h.Service.Finalize(r.Context(), runID)
	if err != nil {
		switch {
		case errors.Is(err, payroll.ErrRunFinalized):
			api.Fail(w, http.StatusConflict, "run_finalized", "payroll run already finalized", reqID)
		case errors.Is(err, pgx.ErrNoRows):
			api.Fail(w, http.StatusNotFound, "not_found", "payroll run not found", reqID)
		default:
			api.Fail(w, http.StatusInternalServerError, "finalize_failed", "failed to finalize payroll run", reqID)
		}
		return
	}

	if h.Audit != nil {
		if err := h.Audit.Record(r.Context(), user.UserID, "payroll.run_finalize", "payroll_run", runID, reqID, nil); err != nil {
			slog.Warn("audit record failed", "err", err)
		}
	}
	api.Success(w, run, reqID)
}

func (h *Handler) handleResults(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	results, err := h.Service.Results(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "results_failed", "failed to list payroll results", reqID)
		return
	}
	api.Success(w, results, reqID)
}

func (h *Handler) handleRegisterXLSX(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	runID := chi.URLParam(r, "runID")

	buf, err := h.Service.RegisterXLSX(r.Context(), runID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			api.Fail(w, http.StatusNotFound, "not_found", "payroll run not found", reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "register_failed", "failed to build payroll register", reqID)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="payroll-register.xlsx"`)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Warn("register write failed", "err", err)
	}
}

func (h *Handler) handlePayslipPDF(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	runID := chi.URLParam(r, "runID")
	employeeID := chi.URLParam(r, "employeeID")

	path, err := h.Service.GeneratePayslipPDF(r.Context(), runID, employeeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			api.Fail(w, http.StatusNotFound, "not_found", "payroll result not found", reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "payslip_failed", "failed to generate payslip", reqID)
		return
	}

	if h.Audit != nil {
		if err := h.Audit.Record(r.Context(), user.UserID, "payroll.payslip_generate", "payroll_run", runID, reqID, map[string]string{"employeeId": employeeID}); err != nil {
			slog.Warn("audit record failed", "err", err)
		}
	}

	if filepath.Ext(path) == ".enc" {
		// Encrypted at rest; hand back the location instead of the bytes.
		api.Success(w, map[string]string{"path": path, "encrypted": "true"}, reqID)
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "payslip_failed", "failed to read payslip", reqID)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filepath.Base(path)+`"`)
	if _, err := w.Write(data); err != nil {
		slog.Warn("payslip write failed", "err", err)
	}
}
