package employeehandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"hrops/internal/domain/audit"
	"hrops/internal/domain/employee"
	"hrops/internal/transport/http/api"
	"hrops/internal/transport/http/middleware"
	"hrops/internal/transport/http/shared"
)

type Handler struct {
	Service *employee.Service
	Audit   *audit.Service
}

func NewHandler(service *employee.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.With(middleware.RequireAuth).Get("/", h.handleList)
		r.With(middleware.RequireAuth).Get("/{employeeID}", h.handleGet)
		r.With(middleware.RequireManager).Post("/", h.handleCreate)
		r.With(middleware.RequireManager).Put("/{employeeID}", h.handleUpdate)
		r.With(middleware.RequireManager).Post("/{employeeID}/status", h.handleChangeStatus)
	})
}

type employeePayload struct {
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	Email       string  `json:"email"`
	StartDate   string  `json:"startDate"`
	ManagerID   *string `json:"managerId"`
	BaseSalary  string  `json:"baseSalary"`
	TargetHours float64 `json:"targetHours"`
}

func (p employeePayload) toModel() (employee.Employee, error) {
	emp := employee.Employee{
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		Email:       p.Email,
		ManagerID:   p.ManagerID,
		TargetHours: p.TargetHours,
	}
	if p.StartDate != "" {
		parsed, err := shared.ParseDate(p.StartDate)
		if err != nil {
			return employee.Employee{}, err
		}
		emp.StartDate = &parsed
	}
	if p.BaseSalary != "" {
		salary, err := decimal.NewFromString(p.BaseSalary)
		if err != nil {
			return employee.Employee{}, err
		}
		emp.BaseSalary = salary
	}
	return emp, nil
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	page := shared.ParsePagination(r, 50, 200)
	status := r.URL.Query().Get("status")

	employees, total, err := h.Service.List(r.Context(), status, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employees_failed", "failed to list employees", reqID)
		return
	}
	api.Success(w, map[string]any{"items": employees, "total": total}, reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	emp, err := h.Service.Get(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			api.Fail(w, http.StatusNotFound, "not_found", "employee not found", reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "employee_failed", "failed to load employee", reqID)
		return
	}
	api.Success(w, emp, reqID)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload employeePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_body", "invalid request body", reqID)
		return
	}
	emp, err := payload.toModel()
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_body", err.Error(), reqID)
		return
	}

	id, err := h.Service.Create(r.Context(), emp)
	if err != nil {
		if errors.Is(err, employee.ErrMissingFields) {
			api.Fail(w, http.StatusBadRequest, "missing_fields", err.Error(), reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "employee_create_failed", "failed to create employee", reqID)
		return
	}

	if h.Audit != nil {
		if err := h.Audit.Record(r.Context(), user.UserID, "employee.create", "employee", id, reqID, payload); err != nil {
			slog.Warn("audit record failed", "err", err)
		}
	}

	created, err := h.Service.Get(r.Context(), id)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_create_failed", "failed to load created employee", reqID)
		return
	}
	api.Created(w, created, reqID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	var payload employeePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_body", "invalid request body", reqID)
		return
	}
	emp, err := payload.toModel()
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_body", err.Error(), reqID)
		return
	}
	emp.ID = employeeID

	if err := h.Service.Update(r.Context(), emp); err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_update_failed", "failed to update employee", reqID)
		return
	}

	if h.Audit != nil {
		if err := h.Audit.Record(r.Context(), user.UserID, "employee.update", "employee", employeeID, reqID, payload); err != nil {
			slog.Warn("audit record failed", "err", err)
		}
	}

	updated, err := h.Service.Get(r.Context(), employeeID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_update_failed", "failed to load updated employee", reqID)
		return
	}
	api.Success(w, updated, reqID)
}

type statusPayload struct {
	Status      string `json:"status"`
	EffectiveAt string `json:"effectiveAt"`
}

func (h *Handler) handleChangeStatus(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	var payload statusPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_body", "invalid request body", reqID)
		return
	}
	if payload.EffectiveAt != "" {
		if _, err := shared.ParseDate(payload.EffectiveAt); err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_date", "invalid effectiveAt date", reqID)
			return
		}
	}

	if err := h.Service.ChangeStatus(r.Context(), employeeID, payload.Status); err != nil {
		switch {
		case errors.Is(err, employee.ErrInvalidTransition):
			api.Fail(w, http.StatusConflict, "invalid_transition", err.Error(), reqID)
		case errors.Is(err, pgx.ErrNoRows):
			api.Fail(w, http.StatusNotFound, "not_found", "employee not found", reqID)
		default:
			api.Fail(w, http.StatusInternalServerError, "status_change_failed", "failed to change status", reqID)
		}
		return
	}

	if h.Audit != nil {
		if err := h.Audit.Record(r.Context(), user.UserID, "employee.status_change", "employee", employeeID, reqID, map[string]string{
			"status":      payload.Status,
			"effectiveAt": payload.EffectiveAt,
			"changedAt":   time.Now().UTC().Format(time.RFC3339),
		}); err != nil {
			slog.Warn("audit record failed", "err", err)
		}
	}

	updated, err := h.Service.Get(r.Context(), employeeID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "status_change_failed", "failed to load employee", reqID)
		return
	}
	api.Success(w, updated, reqID)
}
