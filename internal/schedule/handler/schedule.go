package handler

import (
	"fmt"
	"net/http"

	"gymdesk/internal/auth"
	"gymdesk/internal/schedule/service"
	"gymdesk/pkg/dates"
	apperrors "gymdesk/pkg/errors"
	httputil "gymdesk/pkg/http"
	"gymdesk/pkg/logger"
	"gymdesk/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type ScheduleHandler struct {
	service service.ScheduleService
	log     *logger.Logger
}

func NewScheduleHandler(service service.ScheduleService, log *logger.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		service: service,
		log:     log,
	}
}

type bookingBody struct {
	Date     dates.Date     `json:"date"`
	Period   model.Period   `json:"period"`
	Location model.Facility `json:"location"`
}

type approveBody struct {
	Mode service.ApproveMode `json:"mode"`
}

type baseScheduleBody struct {
	Schedule []model.BaseScheduleEntry `json:"schedule"`
}

type removedResponse struct {
	ID      model.ID `json:"id"`
	Removed bool     `json:"removed"`
}

type weekResponse struct {
	Monday dates.Date                       `json:"monday"`
	Days   map[model.Weekday][]service.Cell `json:"days"`
}

func (h *ScheduleHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *ScheduleHandler) Slot(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	date, err := parseDate(query.Get("date"), false)
	if err != nil {
		h.writeError(w, "Slot", err)
		return
	}

	cell, err := h.service.ResolveSlot(date, model.Period(query.Get("period")), model.Facility(query.Get("location")))
	if err != nil {
		h.writeError(w, "Slot", err)
		return
	}

	if err := httputil.WriteSuccess(w, cell); err != nil {
		h.log.Error("failed to write success response", "handler", "Slot", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ScheduleHandler) Day(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	date, err := parseDate(query.Get("date"), true)
	if err != nil {
		h.writeError(w, "Day", err)
		return
	}

	cells, err := h.service.ResolveDay(date, model.Facility(query.Get("location")))
	if err != nil {
		h.writeError(w, "Day", err)
		return
	}

	if err := httputil.WriteList(w, cells); err != nil {
		h.log.Error("failed to write list response", "handler", "Day", "operation", "WriteList", "error", err)
	}
}

func (h *ScheduleHandler) Week(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	date, err := parseDate(query.Get("date"), true)
	if err != nil {
		h.writeError(w, "Week", err)
		return
	}

	days, err := h.service.ResolveWeek(date, model.Facility(query.Get("location")))
	if err != nil {
		h.writeError(w, "Week", err)
		return
	}

	if err := httputil.WriteSuccess(w, weekResponse{Monday: date.Monday(), Days: days}); err != nil {
		h.log.Error("failed to write success response", "handler", "Week", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ScheduleHandler) ListBookings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	filter := service.BookingFilter{
		Class:    query.Get("class"),
		Location: model.Facility(query.Get("location")),
	}

	if raw := query.Get("status"); raw != "" {
		status, err := model.ParseBookingStatus(raw)
		if err != nil {
			h.writeError(w, "ListBookings", apperrors.InvalidInput(fmt.Sprintf("invalid status parameter: %s", raw)))
			return
		}
		filter.Status = status
	}

	if raw := query.Get("from"); raw != "" {
		from, err := parseDate(raw, false)
		if err != nil {
			h.writeError(w, "ListBookings", err)
			return
		}
		filter.From = from
	}
	if raw := query.Get("to"); raw != "" {
		to, err := parseDate(raw, false)
		if err != nil {
			h.writeError(w, "ListBookings", err)
			return
		}
		filter.To = to
	}

	if err := httputil.WriteList(w, h.service.ListBookings(filter)); err != nil {
		h.log.Error("failed to write list response", "handler", "ListBookings", "operation", "WriteList", "error", err)
	}
}

func (h *ScheduleHandler) PendingMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := auth.RequireActor(r.Context())
	if err != nil {
		h.writeError(w, "PendingMine", err)
		return
	}

	if err := httputil.WriteList(w, h.service.PendingForActor(actor)); err != nil {
		h.log.Error("failed to write list response", "handler", "PendingMine", "operation", "WriteList", "error", err)
	}
}

func (h *ScheduleHandler) RequestBooking(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := auth.RequireActor(r.Context())
	if err != nil {
		h.writeError(w, "RequestBooking", err)
		return
	}

	var body bookingBody
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.writeError(w, "RequestBooking", err)
		return
	}

	booking, err := h.service.RequestBooking(r.Context(), actor, body.Date, body.Period, body.Location)
	if err != nil {
		h.writeError(w, "RequestBooking", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "RequestBooking", "operation", "WriteCreated", "error", err)
	}
}

func (h *ScheduleHandler) CanApprove(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := auth.RequireActor(r.Context())
	if err != nil {
		h.writeError(w, "CanApprove", err)
		return
	}

	allowed, err := h.service.CanApprove(actor, model.ID(ps.ByName("id")))
	if err != nil {
		h.writeError(w, "CanApprove", err)
		return
	}

	if err := httputil.WriteSuccess(w, map[string]bool{"canApprove": allowed}); err != nil {
		h.log.Error("failed to write success response", "handler", "CanApprove", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ScheduleHandler) Approve(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := auth.RequireActor(r.Context())
	if err != nil {
		h.writeError(w, "Approve", err)
		return
	}

	var body approveBody
	if r.ContentLength != 0 {
		if err := httputil.DecodeJSON(r, &body); err != nil {
			h.writeError(w, "Approve", err)
			return
		}
	}

	result, err := h.service.Approve(r.Context(), actor, model.ID(ps.ByName("id")), body.Mode)
	if err != nil {
		h.writeError(w, "Approve", err)
		return
	}

	if result.NeedsDecision() {
		if err := httputil.WriteJSON(w, http.StatusConflict, httputil.ErrorResponse{
			Error: "Slot already has an approved booking; choose duplicate or replace",
			Code:  apperrors.CodeConflict,
			Details: map[string]any{
				"booking":   result.Booking,
				"conflicts": result.Conflicts,
				"modes":     []service.ApproveMode{service.ApproveDuplicate, service.ApproveReplace},
			},
		}); err != nil {
			h.log.Error("failed to write JSON response", "handler", "Approve", "operation", "WriteJSON", "error", err)
		}
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "Approve", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ScheduleHandler) Reject(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := auth.RequireActor(r.Context())
	if err != nil {
		h.writeError(w, "Reject", err)
		return
	}

	id := model.ID(ps.ByName("id"))
	removed, err := h.service.Reject(r.Context(), actor, id)
	if err != nil {
		h.writeError(w, "Reject", err)
		return
	}

	if err := httputil.WriteSuccess(w, removedResponse{ID: id, Removed: removed}); err != nil {
		h.log.Error("failed to write success response", "handler", "Reject", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ScheduleHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := auth.RequireActor(r.Context())
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	id := model.ID(ps.ByName("id"))
	removed, err := h.service.Cancel(r.Context(), actor, id)
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	if err := httputil.WriteSuccess(w, removedResponse{ID: id, Removed: removed}); err != nil {
		h.log.Error("failed to write success response", "handler", "Cancel", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ScheduleHandler) BaseSchedule(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteList(w, h.service.BaseSchedule()); err != nil {
		h.log.Error("failed to write list response", "handler", "BaseSchedule", "operation", "WriteList", "error", err)
	}
}

func (h *ScheduleHandler) ReplaceBaseSchedule(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := auth.RequireActor(r.Context())
	if err != nil {
		h.writeError(w, "ReplaceBaseSchedule", err)
		return
	}

	var body baseScheduleBody
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.writeError(w, "ReplaceBaseSchedule", err)
		return
	}

	if _, err := h.service.ReplaceBaseSchedule(r.Context(), actor, body.Schedule); err != nil {
		h.writeError(w, "ReplaceBaseSchedule", err)
		return
	}

	if err := httputil.WriteList(w, h.service.BaseSchedule()); err != nil {
		h.log.Error("failed to write list response", "handler", "ReplaceBaseSchedule", "operation", "WriteList", "error", err)
	}
}

// parseDate reads a query date. An empty value is today when defaultToday
// is set and an error otherwise.
func parseDate(raw string, defaultToday bool) (dates.Date, error) {
	if raw == "" {
		if defaultToday {
			return dates.Today(), nil
		}
		return dates.Date{}, apperrors.InvalidInput("date parameter is required")
	}
	d, err := dates.Parse(raw)
	if err != nil {
		return dates.Date{}, apperrors.InvalidInput(fmt.Sprintf("invalid date parameter: %s", raw))
	}
	return d, nil
}

func (h *ScheduleHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/slots", h.Slot)
	router.GET("/api/v1/timetable", h.Day)
	router.GET("/api/v1/timetable/week", h.Week)

	router.GET("/api/v1/bookings", h.ListBookings)
	router.POST("/api/v1/bookings", h.RequestBooking)
	router.GET("/api/v1/bookings/pending/mine", h.PendingMine)
	router.GET("/api/v1/bookings/id/:id/can-approve", h.CanApprove)
	router.POST("/api/v1/bookings/id/:id/approve", h.Approve)
	router.POST("/api/v1/bookings/id/:id/reject", h.Reject)
	router.DELETE("/api/v1/bookings/id/:id", h.Cancel)

	router.GET("/api/v1/base-schedule", h.BaseSchedule)
	router.PUT("/api/v1/base-schedule", h.ReplaceBaseSchedule)
}
