package handler

import (
	"errors"
	"io"
	"net/http"

	"gymdesk/internal/sheetstore/service"
	apperrors "gymdesk/pkg/errors"
	httputil "gymdesk/pkg/http"
	"gymdesk/pkg/logger"
	"gymdesk/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// ExecPath is the single endpoint of the remote-store protocol.
const ExecPath = "/exec"

type SheetHandler struct {
	service service.SheetService
	log     *logger.Logger
}

func NewSheetHandler(service service.SheetService, log *logger.Logger) *SheetHandler {
	return &SheetHandler{
		service: service,
		log:     log,
	}
}

// Snapshot answers the bare GET with the full state, unwrapped.
func (h *SheetHandler) Snapshot(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	snap, err := h.service.Snapshot(r.Context())
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Snapshot", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteJSON(w, http.StatusOK, snap); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Snapshot", "operation", "WriteJSON", "error", err)
	}
}

// Exec applies one action. Every reply is an acknowledgement object;
// business rejections keep status 200 with success=false.
func (h *SheetHandler) Exec(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeAck(w, http.StatusBadRequest, model.Ack{Message: "failed to read request body"})
		return
	}

	reply, err := h.service.Dispatch(r.Context(), body)
	if err != nil {
		status, msg := ackStatus(err)
		h.writeAck(w, status, model.Ack{Message: msg})
		return
	}

	if err := httputil.WriteJSON(w, http.StatusOK, reply); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Exec", "operation", "WriteJSON", "error", err)
	}
}

func ackStatus(err error) (int, string) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError, "Internal server error"
	}
	switch appErr.Code {
	case apperrors.CodeInvalidInput:
		return http.StatusBadRequest, appErr.Message
	case apperrors.CodeInternal:
		return http.StatusInternalServerError, appErr.Message
	default:
		return http.StatusOK, appErr.Message
	}
}

func (h *SheetHandler) writeAck(w http.ResponseWriter, status int, ack model.Ack) {
	if err := httputil.WriteJSON(w, status, ack); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Exec", "operation", "WriteJSON", "error", err)
	}
}

func (h *SheetHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET(ExecPath, h.Snapshot)
	router.POST(ExecPath, h.Exec)
}
