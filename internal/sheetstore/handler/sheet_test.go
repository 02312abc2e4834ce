package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gymdesk/internal/sheetstore/service"
	apperrors "gymdesk/pkg/errors"
	"gymdesk/pkg/logger"
	"gymdesk/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSheetService struct {
	snapshotFunc func(ctx context.Context) (*model.Snapshot, error)
	dispatchFunc func(ctx context.Context, body []byte) (any, error)
}

func (m *mockSheetService) Snapshot(ctx context.Context) (*model.Snapshot, error) {
	if m.snapshotFunc != nil {
		return m.snapshotFunc(ctx)
	}
	return model.NewSnapshot(), nil
}

func (m *mockSheetService) Dispatch(ctx context.Context, body []byte) (any, error) {
	if m.dispatchFunc != nil {
		return m.dispatchFunc(ctx, body)
	}
	return model.Ack{Success: true}, nil
}

func serve(svc service.SheetService, r *http.Request) *httptest.ResponseRecorder {
	router := httprouter.New()
	NewSheetHandler(svc, logger.Discard()).RegisterRoutes(router)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w
}

func TestSnapshotIsUnwrapped(t *testing.T) {
	mock := &mockSheetService{
		snapshotFunc: func(ctx context.Context) (*model.Snapshot, error) {
			snap := model.NewSnapshot()
			snap.Greeting = "안녕"
			return snap, nil
		},
	}

	w := serve(mock, httptest.NewRequest(http.MethodGet, ExecPath, nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"greeting":"안녕"`)
	assert.NotContains(t, w.Body.String(), `"data"`)
}

func TestSnapshotFailure(t *testing.T) {
	mock := &mockSheetService{
		snapshotFunc: func(ctx context.Context) (*model.Snapshot, error) {
			return nil, apperrors.Internal("Failed to read sheet", errors.New("boom"))
		},
	}

	w := serve(mock, httptest.NewRequest(http.MethodGet, ExecPath, nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestExecPassesBody(t *testing.T) {
	var got string
	mock := &mockSheetService{
		dispatchFunc: func(ctx context.Context, body []byte) (any, error) {
			got = string(body)
			return model.Ack{Success: true}, nil
		},
	}

	body := `{"action":"approveBooking","id":"b1"}`
	w := serve(mock, httptest.NewRequest(http.MethodPost, ExecPath, strings.NewReader(body)))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, body, got)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
}

func TestExecAckStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "unknown action",
			err:        apperrors.InvalidInput(`unknown action "x"`),
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"success":false,"message":"unknown action \"x\""}`,
		},
		{
			name:       "business rejection",
			err:        apperrors.Conflict("이미 존재하는 아이디입니다."),
			wantStatus: http.StatusOK,
			wantBody:   `{"success":false,"message":"이미 존재하는 아이디입니다."}`,
		},
		{
			name:       "store failure",
			err:        apperrors.Internal("Failed to write sheet", errors.New("mongo down")),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"success":false,"message":"Failed to write sheet"}`,
		},
		{
			name:       "plain error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"success":false,"message":"Internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockSheetService{
				dispatchFunc: func(ctx context.Context, body []byte) (any, error) {
					return nil, tt.err
				},
			}

			w := serve(mock, httptest.NewRequest(http.MethodPost, ExecPath, strings.NewReader(`{"action":"x"}`)))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}
