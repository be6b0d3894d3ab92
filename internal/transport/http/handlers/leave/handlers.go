package leavehandler

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"hrops/internal/domain/audit"
	"hrops/internal/domain/leave"
	"hrops/internal/platform/metrics"
	"hrops/internal/transport/http/api"
	"hrops/internal/transport/http/middleware"
	"hrops/internal/transport/http/shared"
)

type Handler struct {
	Service *leave.Service
	Audit   *audit.Service
	Metrics *metrics.Collector
}

func NewHandler(service *leave.Service, auditSvc *audit.Service, collector *metrics.Collector) *Handler {
	return &Handler{Service: service, Audit: auditSvc, Metrics: collector}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/leave", func(r chi.Router) {
		r.With(middleware.RequireAuth).Get("/policies", h.handleListPolicies)
		r.With(middleware.RequireManager).Post("/policies", h.handleCreatePolicy)
		r.With(middleware.RequireManager).Put("/policies/{policyID}/tiers", h.handleReplaceTiers)
		r.With(middleware.RequireAuth).Get("/balance", h.handleBalance)
		r.With(middleware.RequireAuth).Get("/availability", h.handleAvailability)
		r.With(middleware.RequireAuth).Post("/records", h.handleSubmit)
		r.With(middleware.RequireAuth).Get("/records", h.handleListRecords)
		r.With(middleware.RequireAuth).Get("/records/{recordID}", h.handleGetRecord)
		r.With(middleware.RequireManager).Post("/records/{recordID}/approve", h.handleApprove)
		r.With(middleware.RequireManager).Post("/records/{recordID}/reject", h.handleReject)
		r.With(middleware.RequireAuth).Post("/records/{recordID}/cancel", h.handleCancel)
		r.With(middleware.RequireAuth).Get("/calendar/export", h.handleCalendarExport)
	})
}

func (h *Handler) handleListPolicies(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	policies, err := h.Service.ListPolicies(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "policies_failed", "failed to list policies", reqID)
		return
	}
	api.Success(w, policies, reqID)
}

func (h *Handler) handleCreatePolicy(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload leave.PolicyInfo
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_body", "invalid request body", reqID)
		return
	}
	if payload.Name == "" {
		api.Fail(w, http.StatusBadRequest, "missing_fields", "policy name is required", reqID)
		return
	}

	id, err := h.Service.CreatePolicy(r.Context(), payload)
	if err != nil {
		if errors.Is(err, leave.ErrUnknownPolicyKind) {
			api.Fail(w, http.StatusBadRequest, "invalid_kind", "policy kind must be tiered or rolling_window", reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "policy_create_failed", "failed to create policy", reqID)
		return
	}

	if h.Audit != nil {
		if err := h.Audit.Record(r.Context(), user.UserID, "leave.policy_create", "leave_policy", id, reqID, payload); err != nil {
			slog.Warn("audit record failed", "err", err)
		}
	}
	api.Created(w, map[string]string{"id": id}, reqID)
}

func (h *Handler) handleReplaceTiers(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	policyID := chi.URLParam(r, "policyID")

	var tiers []leave.Tier
	if err := json.NewDecoder(r.Body).Decode(&tiers); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_body", "invalid request body", reqID)
		return
	}

	if err := h.Service.ReplaceTiers(r.Context(), policyID, tiers); err != nil {
		switch {
		case errors.Is(err, leave.ErrInvalidState):
			api.Fail(w, http.StatusConflict, "not_tiered", "policy does not use tiers", reqID)
		case errors.Is(err, pgx.ErrNoRows):
			api.Fail(w, http.StatusNotFound, "not_found", "policy not found", reqID)
		default:
			api.Fail(w, http.StatusInternalServerError, "tiers_failed", "failed to replace tiers", reqID)
		}
		return
	}

	if h.Audit != nil {
		if err := h.Audit.Record(r.Context(), user.UserID, "leave.tiers_replace", "leave_policy", policyID, reqID, tiers); err != nil {
			slog.Warn("audit record failed", "err", err)
		}
	}
	api.Success(w, map[string]string{"id": policyID}, reqID)
}

// employeeScope resolves which employee a self-service query targets.
// Non-managers may only look at themselves.
func employeeScope(r *http.Request) (string, bool) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		return "", false
	}
	requested := r.URL.Query().Get("employeeId")
	if requested == "" || requested == user.EmployeeID {
		return user.EmployeeID, user.EmployeeID != ""
	}
	if !user.CanManage() {
		return "", false
	}
	return requested, true
}

func (h *Handler) handleBalance(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	employeeID, ok := employeeScope(r)
	if !ok {
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot view another employee's balance", reqID)
		return
	}
	policyID := r.URL.Query().Get("policyId")
	if policyID == "" {
		api.Fail(w, http.StatusBadRequest, "missing_fields", "policyId is required", reqID)
		return
	}
	asOf := time.Now().UTC()
	if raw := r.URL.Query().Get("asOf"); raw != "" {
		parsed, err := shared.ParseDate(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_date", "invalid asOf date", reqID)
			return
		}
		asOf = parsed
	} else if raw := r.URL.Query().Get("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil || year < 1900 || year > 9999 {
			api.Fail(w, http.StatusBadRequest, "invalid_date", "invalid year", reqID)
			return
		}
		asOf = time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	}

	summary, err := h.Service.BalanceSummary(r.Context(), employeeID, policyID, asOf)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			api.Fail(w, http.StatusNotFound, "not_found", "policy or employee not found", reqID)
		case errors.Is(err, leave.ErrUnknownPolicyKind):
			api.Fail(w, http.StatusInternalServerError, "invalid_policy", "policy configuration is invalid", reqID)
		default:
			api.Fail(w, http.StatusInternalServerError, "balance_failed", "failed to compute balance", reqID)
		}
		return
	}
	if h.Metrics != nil {
		h.Metrics.RecordBalanceCheck()
	}
	api.Success(w, summary, reqID)
}

func (h *Handler) handleAvailability(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	employeeID, ok := employeeScope(r)
	if !ok {
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot check another employee's availability", reqID)
		return
	}
	policyID := r.URL.Query().Get("policyId")
	start, errStart := shared.ParseDate(r.URL.Query().Get("start"))
	end, errEnd := shared.ParseDate(r.URL.Query().Get("end"))
	if policyID == "" || errStart != nil || errEnd != nil || start.IsZero() || end.IsZero() {
		api.Fail(w, http.StatusBadRequest, "missing_fields", "policyId, start and end are required", reqID)
		return
	}
	if end.Before(start) {
		api.Fail(w, http.StatusBadRequest, "invalid_range", "end date before start date", reqID)
		return
	}

	availability, err := h.Service.CheckAvailability(r.Context(), employeeID, policyID, start, end, time.Now().UTC())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			api.Fail(w, http.StatusNotFound, "not_found", "policy or employee not found", reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "availability_failed", "failed to check availability", reqID)
		return
	}
	if h.Metrics != nil {
		h.Metrics.RecordBalanceCheck()
	}
	api.Success(w, availability, reqID)
}

type submitPayload struct {
	EmployeeID string `json:"employeeId"`
	PolicyID   string `json:"policyId"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	Reason     string `json:"reason"`
	Force      bool   `json:"force"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload submitPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_body", "invalid request body", reqID)
		return
	}
	employeeID := payload.EmployeeID
	if employeeID == "" {
		employeeID = user.EmployeeID
	}
	if employeeID == "" {
		api.Fail(w, http.StatusBadRequest, "missing_fields", "employeeId is required", reqID)
		return
	}
	if employeeID != user.EmployeeID && !user.CanManage() {
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot submit leave for another employee", reqID)
		return
	}
	if payload.Force && !user.CanManage() {
		api.Fail(w, http.StatusForbidden, "forbidden", "force submit requires hr or admin role", reqID)
		return
	}
	start, errStart := shared.ParseDate(payload.StartDate)
	end, errEnd := shared.ParseDate(payload.EndDate)
	if payload.PolicyID == "" || errStart != nil || errEnd != nil || start.IsZero() || end.IsZero() {
		api.Fail(w, http.StatusBadRequest, "missing_fields", "policyId, startDate and endDate are required", reqID)
		return
	}

	result, err := h.Service.SubmitRequest(r.Context(), employeeID, payload.PolicyID, start, end, payload.Reason, payload.Force)
	if err != nil {
		switch {
		case errors.Is(err, leave.ErrInvalidRange):
			api.Fail(w, http.StatusBadRequest, "invalid_range", "end date before start date", reqID)
		case errors.Is(err, pgx.ErrNoRows):
			api.Fail(w, http.StatusNotFound, "not_found", "policy or employee not found", reqID)
		default:
			api.Fail(w, http.StatusInternalServerError, "submit_failed", "failed to submit leave request", reqID)
		}
		return
	}
	if result.Record == nil {
		// Availability gate said no; surface the structured verdict.
		api.WriteJSON(w, http.StatusUnprocessableEntity, api.Envelope{Success: false, Data: result, RequestID: reqID,
			Error: &api.Error{Code: "unavailable", Message: result.Availability.Message}})
		return
	}

	if h.Audit != nil {
		if err := h.Audit.Record(r.Context(), user.UserID, "leave.submit", "leave_record", result.Record.ID, reqID, payload); err != nil {
			slog.Warn("audit record failed", "err", err)
		}
	}
	api.Created(w, result, reqID)
}

func (h *Handler) handleListRecords(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	page := shared.ParsePagination(r, 50, 200)

	filter := leave.RecordFilter{
		EmployeeID: r.URL.Query().Get("employeeId"),
		Status:     r.URL.Query().Get("status"),
		Limit:      page.Limit,
		Offset:     page.Offset,
	}
	if !user.CanManage() {
		filter.EmployeeID = user.EmployeeID
	}

	records, total, err := h.Service.ListRecords(r.Context(), filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "records_failed", "failed to list leave records", reqID)
		return
	}
	api.Success(w, map[string]any{"items": records, "total": total}, reqID)
}

func (h *Handler) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	record, err := h.Service.GetRecord(r.Context(), chi.URLParam(r, "recordID"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			api.Fail(w, http.StatusNotFound, "not_found", "leave record not found", reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "record_failed", "failed to load leave record", reqID)
		return
	}
	if record.EmployeeID != user.EmployeeID && !user.CanManage() {
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot view another employee's leave record", reqID)
		return
	}
	api.Success(w, record, reqID)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, action string,
	decide func(ctx context.Context, recordID, actorID string) (leave.Record, error)) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	recordID := chi.URLParam(r, "recordID")

	record, err := decide(r.Context(), recordID, user.UserID)
	if err != nil {
		switch {
		case errors.Is(err, leave.ErrInvalidState):
			api.Fail(w, http.StatusConflict, "invalid_state", "leave record is not in a decidable state", reqID)
		case errors.Is(err, pgx.ErrNoRows):
			api.Fail(w, http.StatusNotFound, "not_found", "leave record not found", reqID)
		default:
			api.Fail(w, http.StatusInternalServerError, "decision_failed", "failed to update leave record", reqID)
		}
		return
	}

	if h.Audit != nil {
		if err := h.Audit.Record(r.Context(), user.UserID, action, "leave_record", recordID, reqID, nil); err != nil {
			slog.Warn("audit record failed", "err", err)
		}
	}
	api.Success(w, record, reqID)
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "leave.approve", h.Service.Approve)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "leave.reject", h.Service.Reject)
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	recordID := chi.URLParam(r, "recordID")

	record, err := h.Service.GetRecord(r.Context(), recordID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			api.Fail(w, http.StatusNotFound, "not_found", "leave record not found", reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "cancel_failed", "failed to load leave record", reqID)
		return
	}
	if record.EmployeeID != user.EmployeeID && !user.CanManage() {
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot cancel another employee's leave record", reqID)
		return
	}

	cancelled, err := h.Service.Cancel(r.Context(), recordID, user.UserID, time.Now().UTC())
	if err != nil {
		if errors.Is(err, leave.ErrInvalidState) {
			api.Fail(w, http.StatusConflict, "invalid_state", "leave record cannot be cancelled", reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "cancel_failed", "failed to cancel leave record", reqID)
		return
	}

	if h.Audit != nil {
		if err := h.Audit.Record(r.Context(), user.UserID, "leave.cancel", "leave_record", recordID, reqID, nil); err != nil {
			slog.Warn("audit record failed", "err", err)
		}
	}
	api.Success(w, cancelled, reqID)
}

func (h *Handler) handleCalendarExport(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	employeeID := r.URL.Query().Get("employeeId")
	if !user.CanManage() {
		employeeID = user.EmployeeID
	}

	rows, err := h.Service.CalendarExportRows(r.Context(), employeeID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to export leave calendar", reqID)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="leave-calendar.csv"`)
	writer := csv.NewWriter(w)
	_ = writer.Write([]string{"record_id", "employee_id", "employee", "policy", "start_date", "end_date", "status"})
	for _, row := range rows {
		_ = writer.Write([]string{
			row.RecordID,
			row.EmployeeID,
			row.Employee,
			row.PolicyName,
			row.StartDate.Format("2006-01-02"),
			row.EndDate.Format("2006-01-02"),
			row.Status,
		})
	}
	writer.Flush()
}
