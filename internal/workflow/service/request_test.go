package service

import (
	"context"
	"testing"

	"gymdesk/internal/permission"
	"gymdesk/internal/state"
	"gymdesk/internal/state/statetest"
	workflowerrors "gymdesk/internal/workflow/errors"
	"gymdesk/pkg/config"
	"gymdesk/pkg/dates"
	"gymdesk/pkg/logger"
	"gymdesk/pkg/model"
	"gymdesk/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	admin   = permission.Actor{ID: "office", Role: model.RoleManager}
	teacher = permission.Actor{ID: "5-1", Role: model.RoleTeacher}
)

func newTestService(t *testing.T, snap *model.Snapshot) (RequestService, *state.Store, *statetest.Remote) {
	t.Helper()
	store, remote := statetest.NewStore(t, snap)
	log := logger.Discard()
	return NewRequestService(store, validation.New(log), &config.Config{Log: log}), store, remote
}

func TestPurchaseLifecycle(t *testing.T) {
	svc, store, remote := newTestService(t, nil)
	ctx := context.Background()

	req, err := svc.Submit(ctx, teacher, model.RequestPurchase, "  배드민턴 라켓 10개  ")
	require.NoError(t, err)
	assert.Equal(t, model.RequestPending, req.Status)
	assert.Equal(t, "배드민턴 라켓 10개", req.Content)
	assert.Equal(t, "5-1", req.Requester)
	assert.Equal(t, dates.MustParse("2026-03-04"), req.Date)

	_, err = svc.UpdateStatus(ctx, teacher, req.ID, model.RequestDone, "")
	assert.ErrorIs(t, err, workflowerrors.ErrAdminOnly)

	updated, err := svc.UpdateStatus(ctx, admin, req.ID, model.RequestDone, "주문 완료")
	require.NoError(t, err)
	assert.Equal(t, model.RequestDone, updated.Status)
	assert.Equal(t, "주문 완료", updated.Memo)

	// Jumping back is allowed and does not log again.
	_, err = svc.UpdateStatus(ctx, admin, req.ID, model.RequestPending, "")
	require.NoError(t, err)

	assert.Equal(t, []model.ActionName{
		model.ActionAddRequest,
		model.ActionUpdateRequest,
		model.ActionLogActivity,
		model.ActionUpdateRequest,
	}, statetest.Flush(t, store, remote))

	logs := store.Snapshot().ActivityLogs
	require.Len(t, logs, 1)
	assert.Equal(t, "요청하신 배드민턴 라켓 10개 구매가 완료 되었습니다.", logs[0].Message)
}

func TestBugReportDoneDoesNotLog(t *testing.T) {
	svc, store, _ := newTestService(t, nil)
	ctx := context.Background()

	req, err := svc.Submit(ctx, teacher, model.RequestBug, "달력이 안 보여요")
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, admin, req.ID, model.RequestDone, "")
	require.NoError(t, err)
	assert.Empty(t, store.Snapshot().ActivityLogs)
}

func TestSubmitValidation(t *testing.T) {
	tests := []struct {
		name    string
		actor   permission.Actor
		kind    model.RequestType
		content string
	}{
		{name: "empty content", actor: teacher, kind: model.RequestBug, content: "   "},
		{name: "unknown type", actor: teacher, kind: model.RequestType(9), content: "x"},
		{name: "anonymous", actor: permission.Actor{}, kind: model.RequestBug, content: "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, remote := newTestService(t, nil)
			_, err := svc.Submit(context.Background(), tt.actor, tt.kind, tt.content)
			require.Error(t, err)
			assert.Empty(t, statetest.Flush(t, store, remote))
		})
	}
}

func TestUpdateUnknownRequest(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	_, err := svc.UpdateStatus(context.Background(), admin, "missing", model.RequestInProgress, "")
	assert.ErrorIs(t, err, workflowerrors.ErrRequestNotFound)
}

func TestDeleteIsIdempotent(t *testing.T) {
	snap := model.NewSnapshot()
	snap.AdminRequests = []model.AdminRequest{
		{ID: "q1", Type: model.RequestBug, Content: "x", Requester: "5-1", Status: model.RequestPending},
	}
	svc, store, remote := newTestService(t, snap)
	ctx := context.Background()

	_, err := svc.Delete(ctx, teacher, "q1")
	assert.ErrorIs(t, err, workflowerrors.ErrAdminOnly)

	removed, err := svc.Delete(ctx, admin, "q1")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = svc.Delete(ctx, admin, "q1")
	require.NoError(t, err)
	assert.False(t, removed)

	assert.Equal(t, []model.ActionName{model.ActionDeleteRequest}, statetest.Flush(t, store, remote))
}

func TestListFilters(t *testing.T) {
	snap := model.NewSnapshot()
	snap.AdminRequests = []model.AdminRequest{
		{ID: "a", Type: model.RequestPurchase, Content: "공", Requester: "5-1", Status: model.RequestPending, Date: dates.MustParse("2026-03-01")},
		{ID: "b", Type: model.RequestBug, Content: "버그", Requester: "6-2", Status: model.RequestPending, Date: dates.MustParse("2026-03-03")},
		{ID: "c", Type: model.RequestPurchase, Content: "콘", Requester: "6-2", Status: model.RequestDone, Date: dates.MustParse("2026-03-02")},
	}
	svc, _, _ := newTestService(t, snap)

	ids := func(reqs []model.AdminRequest) []model.ID {
		out := make([]model.ID, 0, len(reqs))
		for _, r := range reqs {
			out = append(out, r.ID)
		}
		return out
	}

	assert.Equal(t, []model.ID{"b", "c", "a"}, ids(svc.List(RequestFilter{})))
	assert.Equal(t, []model.ID{"c", "a"}, ids(svc.List(RequestFilter{Type: model.RequestPurchase})))
	assert.Equal(t, []model.ID{"b", "a"}, ids(svc.List(RequestFilter{Status: model.RequestPending})))
	assert.Equal(t, []model.ID{"b", "c"}, ids(svc.List(RequestFilter{Requester: "6-2"})))
}
