package handler

import (
	"fmt"
	"net/http"

	"gymdesk/internal/auth"
	"gymdesk/internal/workflow/service"
	apperrors "gymdesk/pkg/errors"
	httputil "gymdesk/pkg/http"
	"gymdesk/pkg/logger"
	"gymdesk/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type RequestHandler struct {
	service service.RequestService
	log     *logger.Logger
}

func NewRequestHandler(service service.RequestService, log *logger.Logger) *RequestHandler {
	return &RequestHandler{
		service: service,
		log:     log,
	}
}

type submitBody struct {
	Type    model.RequestType `json:"type"`
	Content string            `json:"content"`
}

type updateBody struct {
	Status model.RequestStatus `json:"status"`
	Memo   string              `json:"memo"`
}

func (h *RequestHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *RequestHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := auth.RequireActor(r.Context())
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	query := r.URL.Query()
	var filter service.RequestFilter

	if raw := query.Get("type"); raw != "" {
		kind, err := model.ParseRequestType(raw)
		if err != nil {
			h.writeError(w, "List", apperrors.InvalidInput(fmt.Sprintf("invalid type parameter: %s", raw)))
			return
		}
		filter.Type = kind
	}
	if raw := query.Get("status"); raw != "" {
		status, err := model.ParseRequestStatus(raw)
		if err != nil {
			h.writeError(w, "List", apperrors.InvalidInput(fmt.Sprintf("invalid status parameter: %s", raw)))
			return
		}
		filter.Status = status
	}

	// Teachers only see what they asked for.
	if !actor.IsAdmin() {
		filter.Requester = actor.ID
	}

	if err := httputil.WriteList(w, h.service.List(filter)); err != nil {
		h.log.Error("failed to write list response", "handler", "List", "operation", "WriteList", "error", err)
	}
}

func (h *RequestHandler) Submit(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := auth.RequireActor(r.Context())
	if err != nil {
		h.writeError(w, "Submit", err)
		return
	}

	var body submitBody
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.writeError(w, "Submit", err)
		return
	}

	request, err := h.service.Submit(r.Context(), actor, body.Type, body.Content)
	if err != nil {
		h.writeError(w, "Submit", err)
		return
	}

	if err := httputil.WriteCreated(w, request); err != nil {
		h.log.Error("failed to write created response", "handler", "Submit", "operation", "WriteCreated", "error", err)
	}
}

func (h *RequestHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := auth.RequireActor(r.Context())
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	var body updateBody
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	request, err := h.service.UpdateStatus(r.Context(), actor, model.ID(ps.ByName("id")), body.Status, body.Memo)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, request); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RequestHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := auth.RequireActor(r.Context())
	if err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	if _, err := h.service.Delete(r.Context(), actor, model.ID(ps.ByName("id"))); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *RequestHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/requests", h.List)
	router.POST("/api/v1/requests", h.Submit)
	router.PATCH("/api/v1/requests/id/:id", h.Update)
	router.DELETE("/api/v1/requests/id/:id", h.Delete)
}
