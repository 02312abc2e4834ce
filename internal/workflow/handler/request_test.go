package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"gymdesk/internal/auth"
	"gymdesk/internal/permission"
	"gymdesk/internal/workflow/service"
	"gymdesk/pkg/logger"
	"gymdesk/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRequestService struct {
	submitFunc func(ctx context.Context, actor permission.Actor, kind model.RequestType, content string) (*model.AdminRequest, error)
	listFunc   func(filter service.RequestFilter) []model.AdminRequest
	deleteFunc func(ctx context.Context, actor permission.Actor, id model.ID) (bool, error)
}

func (m *mockRequestService) Submit(ctx context.Context, actor permission.Actor, kind model.RequestType, content string) (*model.AdminRequest, error) {
	if m.submitFunc != nil {
		return m.submitFunc(ctx, actor, kind, content)
	}
	return nil, nil
}

func (m *mockRequestService) UpdateStatus(ctx context.Context, actor permission.Actor, id model.ID, status model.RequestStatus, memo string) (*model.AdminRequest, error) {
	return nil, nil
}

func (m *mockRequestService) Delete(ctx context.Context, actor permission.Actor, id model.ID) (bool, error) {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, actor, id)
	}
	return false, nil
}

func (m *mockRequestService) List(filter service.RequestFilter) []model.AdminRequest {
	if m.listFunc != nil {
		return m.listFunc(filter)
	}
	return nil
}

func serve(svc service.RequestService, r *http.Request) *httptest.ResponseRecorder {
	router := httprouter.New()
	NewRequestHandler(svc, logger.Discard()).RegisterRoutes(router)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w
}

func withActor(r *http.Request, actor permission.Actor) *http.Request {
	return r.WithContext(auth.WithActor(r.Context(), actor))
}

func TestSubmitDecodesKoreanType(t *testing.T) {
	var got model.RequestType
	mock := &mockRequestService{
		submitFunc: func(ctx context.Context, actor permission.Actor, kind model.RequestType, content string) (*model.AdminRequest, error) {
			got = kind
			return &model.AdminRequest{ID: "q1", Type: kind, Content: content, Requester: actor.ID, Status: model.RequestPending}, nil
		},
	}

	req := withActor(httptest.NewRequest(http.MethodPost, "/api/v1/requests", strings.NewReader(`{"type":"구매","content":"공"}`)),
		permission.Actor{ID: "5-1", Role: model.RoleTeacher})
	w := serve(mock, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, model.RequestPurchase, got)
	assert.Contains(t, w.Body.String(), `"status":"대기"`)
}

func TestListScopesTeachersToOwnRequests(t *testing.T) {
	var got service.RequestFilter
	mock := &mockRequestService{
		listFunc: func(filter service.RequestFilter) []model.AdminRequest {
			got = filter
			return nil
		},
	}

	req := withActor(httptest.NewRequest(http.MethodGet, "/api/v1/requests?"+url.Values{"status": {"진행"}}.Encode(), nil),
		permission.Actor{ID: "5-1", Role: model.RoleTeacher})
	w := serve(mock, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "5-1", got.Requester)
	assert.Equal(t, model.RequestInProgress, got.Status)

	req = withActor(httptest.NewRequest(http.MethodGet, "/api/v1/requests", nil),
		permission.Actor{ID: "office", Role: model.RoleMaster})
	serve(mock, req)
	assert.Empty(t, got.Requester)
}

func TestListRejectsUnknownType(t *testing.T) {
	req := withActor(httptest.NewRequest(http.MethodGet, "/api/v1/requests?type=other", nil),
		permission.Actor{ID: "office", Role: model.RoleMaster})
	w := serve(&mockRequestService{}, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteReturnsNoContent(t *testing.T) {
	called := false
	mock := &mockRequestService{
		deleteFunc: func(ctx context.Context, actor permission.Actor, id model.ID) (bool, error) {
			called = true
			assert.Equal(t, model.ID("q1"), id)
			return false, nil
		},
	}

	req := withActor(httptest.NewRequest(http.MethodDelete, "/api/v1/requests/id/q1", nil),
		permission.Actor{ID: "office", Role: model.RoleMaster})
	w := serve(mock, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, called)
}
