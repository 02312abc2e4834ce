package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	accounterrors "gymdesk/internal/accounts/errors"
	"gymdesk/internal/accounts/service"
	"gymdesk/internal/auth"
	"gymdesk/internal/permission"
	apperrors "gymdesk/pkg/errors"
	"gymdesk/pkg/logger"
	"gymdesk/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAccountService struct {
	loginFunc       func(ctx context.Context, id, password string) (*service.Session, error)
	adminActionFunc func(ctx context.Context, actor permission.Actor, targetID string, act model.AdminAct, role model.Role) error
}

func (m *mockAccountService) Login(ctx context.Context, id, password string) (*service.Session, error) {
	if m.loginFunc != nil {
		return m.loginFunc(ctx, id, password)
	}
	return nil, nil
}

func (m *mockAccountService) Register(ctx context.Context, id, name, password string) (*model.Admin, error) {
	return &model.Admin{ID: id, Name: name, Role: model.RolePending}, nil
}

func (m *mockAccountService) ChangePassword(ctx context.Context, actor permission.Actor, oldPassword, newPassword string) error {
	return nil
}

func (m *mockAccountService) UpdateProfile(ctx context.Context, actor permission.Actor, name string) (*service.Session, error) {
	return nil, nil
}

func (m *mockAccountService) AdminAction(ctx context.Context, actor permission.Actor, targetID string, act model.AdminAct, role model.Role) error {
	if m.adminActionFunc != nil {
		return m.adminActionFunc(ctx, actor, targetID, act, role)
	}
	return nil
}

func (m *mockAccountService) ListAdmins(actor permission.Actor) ([]model.Admin, error) {
	return nil, nil
}

func serve(svc service.AccountService, r *http.Request) *httptest.ResponseRecorder {
	router := httprouter.New()
	NewAccountHandler(svc, logger.Discard()).RegisterRoutes(router)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w
}

func TestLoginReturnsSession(t *testing.T) {
	mock := &mockAccountService{
		loginFunc: func(ctx context.Context, id, password string) (*service.Session, error) {
			assert.Equal(t, "5-1", id)
			assert.Equal(t, "1234", password)
			return &service.Session{Token: "tok", Actor: permission.Actor{ID: id, Name: "김선생", Role: model.RoleTeacher}}, nil
		},
	}

	w := serve(mock, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"id":"5-1","password":"1234"}`)))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":{"token":"tok","actor":{"id":"5-1","name":"김선생","role":"teacher"}}}`, w.Body.String())
}

func TestLoginPending(t *testing.T) {
	mock := &mockAccountService{
		loginFunc: func(ctx context.Context, id, password string) (*service.Session, error) {
			return nil, apperrors.Forbidden("Account is waiting for approval").WithCause(accounterrors.ErrPendingApproval)
		},
	}

	w := serve(mock, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"id":"6-2","password":"1234"}`)))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLoginRejectsUnknownFields(t *testing.T) {
	w := serve(&mockAccountService{}, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"id":"5-1","pin":"1234"}`)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminActionRoutesAct(t *testing.T) {
	var gotAct model.AdminAct
	var gotRole model.Role
	mock := &mockAccountService{
		adminActionFunc: func(ctx context.Context, actor permission.Actor, targetID string, act model.AdminAct, role model.Role) error {
			assert.Equal(t, "5-1", targetID)
			gotAct, gotRole = act, role
			return nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admins/id/5-1/update_role", strings.NewReader(`{"role":"manager"}`))
	req = req.WithContext(auth.WithActor(req.Context(), permission.Actor{ID: "admin", Role: model.RoleMaster}))
	w := serve(mock, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, model.AdminUpdateRole, gotAct)
	assert.Equal(t, model.RoleManager, gotRole)
}

func TestChangePasswordRequiresActor(t *testing.T) {
	w := serve(&mockAccountService{}, httptest.NewRequest(http.MethodPut, "/api/v1/auth/password", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
