package app

import (
	"context"
	"net/http"
	"time"

	httputil "gymdesk/pkg/http"
	"gymdesk/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

const readyTimeout = 2 * time.Second

type HealthResponse struct {
	Status     string `json:"status"`
	Dependency string `json:"dependency,omitempty"`
	Detail     string `json:"detail,omitempty"`
}

// ReadyCheck reports whether the process can serve traffic. name labels
// the dependency in the response.
type ReadyCheck struct {
	Name  string
	Check func(ctx context.Context) (string, error)
}

type HealthHandler struct {
	ready *ReadyCheck
	log   *logger.Logger
}

func NewHealthHandler(ready *ReadyCheck, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		ready: ready,
		log:   log,
	}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteJSON(w, http.StatusOK, HealthResponse{Status: "ok"}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Health", "operation", "WriteJSON", "error", err)
	}
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if h.ready == nil {
		if err := httputil.WriteJSON(w, http.StatusOK, HealthResponse{Status: "ready"}); err != nil {
			h.log.Error("failed to write JSON response", "handler", "Ready", "operation", "WriteJSON", "error", err)
		}
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	detail, err := h.ready.Check(ctx)
	if err != nil {
		h.log.Error("Readiness check failed",
			"dependency", h.ready.Name,
			"error", err,
			"path", r.URL.Path,
		)
		if writeErr := httputil.WriteJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:     "unavailable",
			Dependency: h.ready.Name,
			Detail:     "error",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Ready", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteJSON(w, http.StatusOK, HealthResponse{
		Status:     "ready",
		Dependency: h.ready.Name,
		Detail:     detail,
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Ready", "operation", "WriteJSON", "error", err)
	}
}

func (h *HealthHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
}
