package attendancehandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"hrops/internal/domain/attendance"
	"hrops/internal/transport/http/api"
	"hrops/internal/transport/http/middleware"
	"hrops/internal/transport/http/shared"
)

type Handler struct {
	Service *attendance.Service
}

func NewHandler(service *attendance.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/attendance", func(r chi.Router) {
		r.With(middleware.RequireAuth).Post("/records", h.handleRecordDay)
		r.With(middleware.RequireAuth).Get("/records", h.handleList)
		r.With(middleware.RequireAuth).Get("/score", h.handleScore)
	})
}

type recordPayload struct {
	EmployeeID    string  `json:"employeeId"`
	Date          string  `json:"date"`
	Kind          string  `json:"kind"`
	BillableHours float64 `json:"billableHours"`
}

func (h *Handler) handleRecordDay(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload recordPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_body", "invalid request body", reqID)
		return
	}
	employeeID := payload.EmployeeID
	if employeeID == "" {
		employeeID = user.EmployeeID
	}
	if employeeID != user.EmployeeID && !user.CanManage() {
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot record attendance for another employee", reqID)
		return
	}
	date, err := shared.ParseDate(payload.Date)
	if err != nil || date.IsZero() || employeeID == "" {
		api.Fail(w, http.StatusBadRequest, "missing_fields", "employeeId, date and kind are required", reqID)
		return
	}
	if payload.BillableHours < 0 || payload.BillableHours > 24 {
		api.Fail(w, http.StatusBadRequest, "invalid_hours", "billableHours must be between 0 and 24", reqID)
		return
	}

	id, err := h.Service.RecordDay(r.Context(), attendance.Record{
		EmployeeID:    employeeID,
		Date:          date,
		Kind:          payload.Kind,
		BillableHours: payload.BillableHours,
	})
	if err != nil {
		if errors.Is(err, attendance.ErrInvalidKind) {
			api.Fail(w, http.StatusBadRequest, "invalid_kind", "kind must be present, wfh, permission or absent", reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "attendance_failed", "failed to record attendance", reqID)
		return
	}
	api.Created(w, map[string]string{"id": id}, reqID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	employeeID := r.URL.Query().Get("employeeId")
	if employeeID == "" {
		employeeID = user.EmployeeID
	}
	if employeeID != user.EmployeeID && !user.CanManage() {
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot view another employee's attendance", reqID)
		return
	}
	from, errFrom := shared.ParseDate(r.URL.Query().Get("from"))
	to, errTo := shared.ParseDate(r.URL.Query().Get("to"))
	if errFrom != nil || errTo != nil || from.IsZero() || to.IsZero() {
		api.Fail(w, http.StatusBadRequest, "missing_fields", "from and to are required", reqID)
		return
	}

	records, err := h.Service.ListForEmployee(r.Context(), employeeID, from, to)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			api.Fail(w, http.StatusNotFound, "not_found", "employee not found", reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "attendance_failed", "failed to list attendance", reqID)
		return
	}
	api.Success(w, records, reqID)
}

func (h *Handler) handleScore(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	employeeID := r.URL.Query().Get("employeeId")
	if employeeID == "" {
		employeeID = user.EmployeeID
	}
	if employeeID != user.EmployeeID && !user.CanManage() {
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot view another employee's performance", reqID)
		return
	}
	from, errFrom := shared.ParseDate(r.URL.Query().Get("from"))
	to, errTo := shared.ParseDate(r.URL.Query().Get("to"))
	if errFrom != nil || errTo != nil || from.IsZero() || to.IsZero() {
		api.Fail(w, http.StatusBadRequest, "missing_fields", "from and to are required", reqID)
		return
	}
	if to.Before(from) {
		api.Fail(w, http.StatusBadRequest, "invalid_range", "to before from", reqID)
		return
	}
	// Guard against unbounded day enumeration.
	if to.Sub(from) > 366*24*time.Hour {
		api.Fail(w, http.StatusBadRequest, "invalid_range", "period must not exceed one year", reqID)
		return
	}

	perf, err := h.Service.Performance(r.Context(), employeeID, from, to)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "performance_failed", "failed to score attendance", reqID)
		return
	}
	api.Success(w, perf, reqID)
}
