package handler

import (
	"net/http"

	"gymdesk/internal/accounts/service"
	"gymdesk/internal/auth"
	httputil "gymdesk/pkg/http"
	"gymdesk/pkg/logger"
	"gymdesk/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type AccountHandler struct {
	service service.AccountService
	log     *logger.Logger
}

func NewAccountHandler(service service.AccountService, log *logger.Logger) *AccountHandler {
	return &AccountHandler{
		service: service,
		log:     log,
	}
}

type loginBody struct {
	ID       string `json:"id"`
	Password string `json:"password"`
}

type registerBody struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type passwordBody struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type profileBody struct {
	Name string `json:"name"`
}

type adminActionBody struct {
	Role model.Role `json:"role,omitempty"`
}

func (h *AccountHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body loginBody
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.writeError(w, "Login", err)
		return
	}

	session, err := h.service.Login(r.Context(), body.ID, body.Password)
	if err != nil {
		h.writeError(w, "Login", err)
		return
	}

	if err := httputil.WriteSuccess(w, session); err != nil {
		h.log.Error("failed to write success response", "handler", "Login", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body registerBody
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.writeError(w, "Register", err)
		return
	}

	account, err := h.service.Register(r.Context(), body.ID, body.Name, body.Password)
	if err != nil {
		h.writeError(w, "Register", err)
		return
	}

	if err := httputil.WriteCreated(w, account); err != nil {
		h.log.Error("failed to write created response", "handler", "Register", "operation", "WriteCreated", "error", err)
	}
}

func (h *AccountHandler) ChangePassword(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := auth.RequireActor(r.Context())
	if err != nil {
		h.writeError(w, "ChangePassword", err)
		return
	}

	var body passwordBody
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.writeError(w, "ChangePassword", err)
		return
	}

	if err := h.service.ChangePassword(r.Context(), actor, body.OldPassword, body.NewPassword); err != nil {
		h.writeError(w, "ChangePassword", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := auth.RequireActor(r.Context())
	if err != nil {
		h.writeError(w, "UpdateProfile", err)
		return
	}

	var body profileBody
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.writeError(w, "UpdateProfile", err)
		return
	}

	session, err := h.service.UpdateProfile(r.Context(), actor, body.Name)
	if err != nil {
		h.writeError(w, "UpdateProfile", err)
		return
	}

	if err := httputil.WriteSuccess(w, session); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateProfile", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AccountHandler) ListAdmins(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := auth.RequireActor(r.Context())
	if err != nil {
		h.writeError(w, "ListAdmins", err)
		return
	}

	admins, err := h.service.ListAdmins(actor)
	if err != nil {
		h.writeError(w, "ListAdmins", err)
		return
	}

	if err := httputil.WriteList(w, admins); err != nil {
		h.log.Error("failed to write list response", "handler", "ListAdmins", "operation", "WriteList", "error", err)
	}
}

func (h *AccountHandler) AdminAction(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := auth.RequireActor(r.Context())
	if err != nil {
		h.writeError(w, "AdminAction", err)
		return
	}

	act := model.AdminAct(ps.ByName("act"))
	var body adminActionBody
	if act == model.AdminUpdateRole {
		if err := httputil.DecodeJSON(r, &body); err != nil {
			h.writeError(w, "AdminAction", err)
			return
		}
	}

	if err := h.service.AdminAction(r.Context(), actor, ps.ByName("id"), act, body.Role); err != nil {
		h.writeError(w, "AdminAction", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *AccountHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/auth/login", h.Login)
	router.POST("/api/v1/auth/register", h.Register)
	router.PUT("/api/v1/auth/password", h.ChangePassword)
	router.PATCH("/api/v1/auth/profile", h.UpdateProfile)

	router.GET("/api/v1/admins", h.ListAdmins)
	router.POST("/api/v1/admins/id/:id/:act", h.AdminAction)
}
