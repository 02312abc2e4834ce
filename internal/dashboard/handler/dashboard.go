package handler

import (
	"net/http"

	"gymdesk/internal/auth"
	"gymdesk/internal/dashboard/service"
	httputil "gymdesk/pkg/http"
	"gymdesk/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type DashboardHandler struct {
	service service.DashboardService
	log     *logger.Logger
}

func NewDashboardHandler(service service.DashboardService, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		log:     log,
	}
}

type greetingBody struct {
	Text string `json:"text"`
}

func (h *DashboardHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *DashboardHandler) Activity(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteList(w, h.service.Activity()); err != nil {
		h.log.Error("failed to write list response", "handler", "Activity", "operation", "WriteList", "error", err)
	}
}

func (h *DashboardHandler) Greeting(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteSuccess(w, greetingBody{Text: h.service.Greeting()}); err != nil {
		h.log.Error("failed to write success response", "handler", "Greeting", "operation", "WriteSuccess", "error", err)
	}
}

func (h *DashboardHandler) UpdateGreeting(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := auth.RequireActor(r.Context())
	if err != nil {
		h.writeError(w, "UpdateGreeting", err)
		return
	}

	var body greetingBody
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.writeError(w, "UpdateGreeting", err)
		return
	}

	text, err := h.service.UpdateGreeting(r.Context(), actor, body.Text)
	if err != nil {
		h.writeError(w, "UpdateGreeting", err)
		return
	}

	if err := httputil.WriteSuccess(w, greetingBody{Text: text}); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateGreeting", "operation", "WriteSuccess", "error", err)
	}
}

func (h *DashboardHandler) Refresh(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if _, err := auth.RequireActor(r.Context()); err != nil {
		h.writeError(w, "Refresh", err)
		return
	}

	source, err := h.service.Refresh(r.Context())
	if err != nil {
		h.writeError(w, "Refresh", err)
		return
	}

	if err := httputil.WriteSuccess(w, map[string]string{"source": source.String()}); err != nil {
		h.log.Error("failed to write success response", "handler", "Refresh", "operation", "WriteSuccess", "error", err)
	}
}

func (h *DashboardHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/activity", h.Activity)
	router.GET("/api/v1/greeting", h.Greeting)
	router.PUT("/api/v1/greeting", h.UpdateGreeting)
	router.POST("/api/v1/refresh", h.Refresh)
}
