package service

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	accounterrors "gymdesk/internal/accounts/errors"
	"gymdesk/internal/auth"
	"gymdesk/internal/permission"
	"gymdesk/internal/remote"
	"gymdesk/internal/state"
	"gymdesk/internal/state/statetest"
	"gymdesk/pkg/config"
	apperrors "gymdesk/pkg/errors"
	"gymdesk/pkg/logger"
	"gymdesk/pkg/model"
	"gymdesk/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	loginFunc func(ctx context.Context, id, password string) (*model.LoginResult, error)
	callFunc  func(ctx context.Context, action model.Action, out *model.Ack) error
	calls     []model.ActionName
}

func (f *fakeGateway) Login(ctx context.Context, id, password string) (*model.LoginResult, error) {
	if f.loginFunc != nil {
		return f.loginFunc(ctx, id, password)
	}
	return &model.LoginResult{Success: true, ID: id, Name: "선생님", Role: model.RoleTeacher}, nil
}

func (f *fakeGateway) Call(ctx context.Context, action model.Action, out *model.Ack) error {
	f.calls = append(f.calls, action.Name)
	if f.callFunc != nil {
		return f.callFunc(ctx, action, out)
	}
	out.Success = true
	return nil
}

var master = permission.Actor{ID: "admin", Name: "관리자", Role: model.RoleMaster}

const secret = "test-secret-0123456789"

func newTestService(t *testing.T, snap *model.Snapshot, gw *fakeGateway) (AccountService, *state.Store, *statetest.Remote) {
	t.Helper()
	store, rem := statetest.NewStore(t, snap)
	log := logger.Discard()
	svc := NewAccountService(store, gw, auth.NewIssuer(secret, time.Hour), validation.New(log), &config.Config{Log: log})
	return svc, store, rem
}

func accounts() *model.Snapshot {
	snap := model.NewSnapshot()
	snap.Admins = []model.Admin{
		{ID: "admin", Name: "관리자", Role: model.RoleMaster},
		{ID: "5-1", Name: "김선생", Role: model.RoleTeacher},
		{ID: "6-2", Name: "이선생", Role: model.RolePending},
	}
	return snap
}

func TestLoginIssuesToken(t *testing.T) {
	svc, _, _ := newTestService(t, accounts(), &fakeGateway{})

	session, err := svc.Login(context.Background(), " 5-1 ", "1234")
	require.NoError(t, err)
	assert.Equal(t, "5-1", session.Actor.ID)
	assert.Equal(t, model.RoleTeacher, session.Actor.Role)

	claims, err := auth.NewIssuer(secret, time.Hour).ValidateToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.Actor, claims.Actor())
}

func TestLoginFallsBackToLocalRole(t *testing.T) {
	gw := &fakeGateway{
		loginFunc: func(ctx context.Context, id, password string) (*model.LoginResult, error) {
			return &model.LoginResult{Success: true}, nil
		},
	}
	svc, _, _ := newTestService(t, accounts(), gw)

	session, err := svc.Login(context.Background(), "5-1", "1234")
	require.NoError(t, err)
	assert.Equal(t, model.RoleTeacher, session.Actor.Role)
	assert.Equal(t, "김선생", session.Actor.Name)
}

func TestLoginFailures(t *testing.T) {
	tests := []struct {
		name       string
		password   string
		loginErr   error
		role       model.Role
		wantStatus int
		wantErr    error
	}{
		{name: "bad pin format", password: "12ab", wantStatus: http.StatusUnprocessableEntity},
		{name: "rejected", password: "1234", loginErr: fmt.Errorf("%w: login: wrong password", remote.ErrRejected), wantStatus: http.StatusUnauthorized, wantErr: accounterrors.ErrInvalidCredentials},
		{name: "timeout", password: "1234", loginErr: fmt.Errorf("%w: login", remote.ErrTimeout), wantStatus: http.StatusGatewayTimeout},
		{name: "unreachable", password: "1234", loginErr: fmt.Errorf("%w: login", remote.ErrUnavailable), wantStatus: http.StatusServiceUnavailable},
		{name: "pending", password: "1234", role: model.RolePending, wantStatus: http.StatusForbidden, wantErr: accounterrors.ErrPendingApproval},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &fakeGateway{
				loginFunc: func(ctx context.Context, id, password string) (*model.LoginResult, error) {
					if tt.loginErr != nil {
						return &model.LoginResult{}, tt.loginErr
					}
					return &model.LoginResult{Success: true, ID: id, Name: "x", Role: tt.role}, nil
				},
			}
			svc, _, _ := newTestService(t, accounts(), gw)

			_, err := svc.Login(context.Background(), "6-2", tt.password)
			require.Error(t, err)
			appErr := apperrors.AsAppError(err)
			require.NotNil(t, appErr)
			assert.Equal(t, tt.wantStatus, appErr.StatusCode())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestRegisterAddsPendingAccount(t *testing.T) {
	gw := &fakeGateway{}
	svc, store, _ := newTestService(t, accounts(), gw)

	account, err := svc.Register(context.Background(), "3-4", " 박선생 ", "5678")
	require.NoError(t, err)
	assert.Equal(t, model.RolePending, account.Role)
	assert.Equal(t, "박선생", account.Name)
	assert.Equal(t, []model.ActionName{model.ActionRegister}, gw.calls)

	snap := store.Snapshot()
	i := snap.FindAdmin("3-4")
	require.GreaterOrEqual(t, i, 0)
	assert.Equal(t, model.RolePending, snap.Admins[i].Role)
}

func TestRegisterRejectedByStore(t *testing.T) {
	gw := &fakeGateway{
		callFunc: func(ctx context.Context, action model.Action, out *model.Ack) error {
			return fmt.Errorf("%w: register: duplicate id", remote.ErrRejected)
		},
	}
	svc, store, _ := newTestService(t, accounts(), gw)

	_, err := svc.Register(context.Background(), "5-1", "김선생", "5678")
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, apperrors.AsAppError(err).StatusCode())
	assert.Len(t, store.Snapshot().Admins, 3)
}

func TestChangePassword(t *testing.T) {
	gw := &fakeGateway{}
	svc, _, _ := newTestService(t, accounts(), gw)
	teacher := permission.Actor{ID: "5-1", Role: model.RoleTeacher}

	err := svc.ChangePassword(context.Background(), teacher, "1234", "99")
	require.Error(t, err)
	assert.Empty(t, gw.calls)

	require.NoError(t, svc.ChangePassword(context.Background(), teacher, "1234", "4321"))
	assert.Equal(t, []model.ActionName{model.ActionChangePassword}, gw.calls)
}

func TestAdminAction(t *testing.T) {
	tests := []struct {
		name     string
		actor    permission.Actor
		target   string
		act      model.AdminAct
		role     model.Role
		wantErr  error
		wantRole model.Role
		gone     bool
	}{
		{name: "manager cannot", actor: permission.Actor{ID: "m", Role: model.RoleManager}, target: "6-2", act: model.AdminApprove, wantErr: accounterrors.ErrMasterOnly},
		{name: "unknown act", actor: master, target: "6-2", act: "ban", wantErr: accounterrors.ErrInvalidAct},
		{name: "self", actor: master, target: "admin", act: model.AdminDelete, wantErr: accounterrors.ErrSelfAction},
		{name: "missing", actor: master, target: "9-9", act: model.AdminApprove, wantErr: accounterrors.ErrAccountNotFound},
		{name: "approve", actor: master, target: "6-2", act: model.AdminApprove, wantRole: model.RoleTeacher},
		{name: "promote", actor: master, target: "5-1", act: model.AdminUpdateRole, role: model.RoleManager, wantRole: model.RoleManager},
		{name: "delete", actor: master, target: "5-1", act: model.AdminDelete, gone: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, rem := newTestService(t, accounts(), &fakeGateway{})

			err := svc.AdminAction(context.Background(), tt.actor, tt.target, tt.act, tt.role)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			snap := store.Snapshot()
			i := snap.FindAdmin(tt.target)
			if tt.gone {
				assert.Equal(t, -1, i)
			} else {
				require.GreaterOrEqual(t, i, 0)
				assert.Equal(t, tt.wantRole, snap.Admins[i].Role)
			}
			assert.Equal(t, []model.ActionName{model.ActionAdminAction}, statetest.Flush(t, store, rem))
		})
	}
}

func TestUpdateProfileReissuesToken(t *testing.T) {
	svc, store, rem := newTestService(t, accounts(), &fakeGateway{})

	session, err := svc.UpdateProfile(context.Background(), permission.Actor{ID: "5-1", Name: "김선생", Role: model.RoleTeacher}, "김담임")
	require.NoError(t, err)
	assert.Equal(t, "김담임", session.Actor.Name)
	assert.NotEmpty(t, session.Token)

	snap := store.Snapshot()
	assert.Equal(t, "김담임", snap.Admins[snap.FindAdmin("5-1")].Name)
	assert.Equal(t, []model.ActionName{model.ActionUpdateProfile}, statetest.Flush(t, store, rem))
}

func TestListAdminsPendingFirst(t *testing.T) {
	svc, _, _ := newTestService(t, accounts(), &fakeGateway{})

	_, err := svc.ListAdmins(permission.Actor{ID: "5-1", Role: model.RoleTeacher})
	require.Error(t, err)

	list, err := svc.ListAdmins(master)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "6-2", list[0].ID)
	assert.Equal(t, "5-1", list[1].ID)
	assert.Equal(t, "admin", list[2].ID)
}
