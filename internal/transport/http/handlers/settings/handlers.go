package settingshandler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"hrops/internal/domain/audit"
	"hrops/internal/domain/calendar"
	"hrops/internal/transport/http/api"
	"hrops/internal/transport/http/middleware"
	"hrops/internal/transport/http/shared"
)

type Handler struct {
	Store *calendar.Store
	Audit *audit.Service
}

func NewHandler(store *calendar.Store, auditSvc *audit.Service) *Handler {
	return &Handler{Store: store, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/settings", func(r chi.Router) {
		r.With(middleware.RequireAuth).Get("/weekend", h.handleGetWeekend)
		r.With(middleware.RequireManager).Put("/weekend", h.handlePutWeekend)
		r.With(middleware.RequireAuth).Get("/holidays", h.handleListHolidays)
		r.With(middleware.RequireManager).Post("/holidays", h.handleCreateHoliday)
		r.With(middleware.RequireManager).Delete("/holidays/{holidayID}", h.handleDeleteHoliday)
	})
}

func (h *Handler) handleGetWeekend(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	days, err := h.Store.WeekendDays(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "weekend_failed", "failed to load weekend settings", reqID)
		return
	}
	names := make([]string, 0, len(days))
	for _, day := range days {
		names = append(names, day.String())
	}
	api.Success(w, map[string]any{"days": names}, reqID)
}

type weekendPayload struct {
	Days []string `json:"days"`
}

func (h *Handler) handlePutWeekend(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload weekendPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_body", "invalid request body", reqID)
		return
	}
	days := make([]time.Weekday, 0, len(payload.Days))
	for _, name := range payload.Days {
		day, ok := calendar.ParseWeekday(name)
		if !ok {
			api.Fail(w, http.StatusBadRequest, "invalid_weekday", "unknown weekday: "+name, reqID)
			return
		}
		days = append(days, day)
	}

	if err := h.Store.ReplaceWeekendDays(r.Context(), days); err != nil {
		api.Fail(w, http.StatusInternalServerError, "weekend_failed", "failed to update weekend settings", reqID)
		return
	}

	if h.Audit != nil {
		if err := h.Audit.Record(r.Context(), user.UserID, "settings.weekend_update", "weekend_settings", "", reqID, payload); err != nil {
			slog.Warn("audit record failed", "err", err)
		}
	}
	api.Success(w, payload, reqID)
}

func (h *Handler) handleListHolidays(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	holidays, err := h.Store.ListHolidays(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "holidays_failed", "failed to list holidays", reqID)
		return
	}
	api.Success(w, holidays, reqID)
}

type holidayPayload struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

func (h *Handler) handleCreateHoliday(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload holidayPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_body", "invalid request body", reqID)
		return
	}
	date, err := shared.ParseDate(payload.Date)
	if err != nil || date.IsZero() || payload.Name == "" {
		api.Fail(w, http.StatusBadRequest, "missing_fields", "date and name are required", reqID)
		return
	}

	id, err := h.Store.CreateHoliday(r.Context(), date, payload.Name)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "holiday_failed", "failed to create holiday", reqID)
		return
	}

	if h.Audit != nil {
		if err := h.Audit.Record(r.Context(), user.UserID, "settings.holiday_create", "holiday", id, reqID, payload); err != nil {
			slog.Warn("audit record failed", "err", err)
		}
	}
	api.Created(w, map[string]string{"id": id}, reqID)
}

func (h *Handler) handleDeleteHoliday(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	holidayID := chi.URLParam(r, "holidayID")

	if err := h.Store.DeleteHoliday(r.Context(), holidayID); err != nil {
		api.Fail(w, http.StatusInternalServerError, "holiday_failed", "failed to delete holiday", reqID)
		return
	}

	if h.Audit != nil {
		if err := h.Audit.Record(r.Context(), user.UserID, "settings.holiday_delete", "holiday", holidayID, reqID, nil); err != nil {
			slog.Warn("audit record failed", "err", err)
		}
	}
	api.Success(w, map[string]string{"id": holidayID}, reqID)
}
