package service

import (
	"context"
	"errors"
	"slices"
	"strings"

	accounterrors "gymdesk/internal/accounts/errors"
	"gymdesk/internal/auth"
	"gymdesk/internal/permission"
	"gymdesk/internal/remote"
	"gymdesk/internal/state"
	"gymdesk/pkg/config"
	apperrors "gymdesk/pkg/errors"
	"gymdesk/pkg/model"
	"gymdesk/pkg/sanitizer"
	"gymdesk/pkg/validation"
)

// Gateway is the part of the remote store client that answers
// synchronously. Account changes need the store's verdict before the
// caller can be told anything.
type Gateway interface {
	Login(ctx context.Context, id, password string) (*model.LoginResult, error)
	Call(ctx context.Context, action model.Action, out *model.Ack) error
}

type AccountService interface {
	Login(ctx context.Context, id, password string) (*Session, error)
	Register(ctx context.Context, id, name, password string) (*model.Admin, error)
	ChangePassword(ctx context.Context, actor permission.Actor, oldPassword, newPassword string) error
	UpdateProfile(ctx context.Context, actor permission.Actor, name string) (*Session, error)
	AdminAction(ctx context.Context, actor permission.Actor, targetID string, act model.AdminAct, role model.Role) error
	ListAdmins(actor permission.Actor) ([]model.Admin, error)
}

// Session is what a successful login hands back to the client.
type Session struct {
	Token string           `json:"token"`
	Actor permission.Actor `json:"actor"`
}

type accountService struct {
	store     *state.Store
	gateway   Gateway
	issuer    *auth.Issuer
	validator *validation.Validator
	cfg       *config.Config
}

func NewAccountService(store *state.Store, gateway Gateway, issuer *auth.Issuer, validator *validation.Validator, cfg *config.Config) AccountService {
	return &accountService{
		store:     store,
		gateway:   gateway,
		issuer:    issuer,
		validator: validator,
		cfg:       cfg,
	}
}

// remoteError maps a failed synchronous call. rejected is returned when the
// store answered but refused.
func remoteError(err error, rejected *apperrors.AppError) error {
	switch {
	case errors.Is(err, remote.ErrRejected):
		return rejected.WithDetails(map[string]any{"reason": err.Error()})
	case errors.Is(err, remote.ErrTimeout):
		return apperrors.Timeout("Remote store did not answer in time")
	default:
		return apperrors.Unavailable("remote store")
	}
}

func (s *accountService) Login(ctx context.Context, id, password string) (*Session, error) {
	payload := model.LoginPayload{ID: sanitizer.NormalizeClass(id), Password: password}
	if err := s.validator.Check(payload); err != nil {
		return nil, err
	}

	result, err := s.gateway.Login(ctx, payload.ID, payload.Password)
	if err != nil {
		s.cfg.Log.Warn("Login failed", "id", payload.ID, "error", err)
		return nil, remoteError(err, apperrors.Unauthorized("Invalid id or password").WithCause(accounterrors.ErrInvalidCredentials))
	}

	actor := permission.Actor{ID: payload.ID, Name: result.Name, Role: result.Role}
	if result.ID != "" {
		actor.ID = result.ID
	}
	if !actor.Role.Valid() || actor.Name == "" {
		s.store.View(func(snap *model.Snapshot) {
			if i := snap.FindAdmin(actor.ID); i >= 0 {
				if !actor.Role.Valid() {
					actor.Role = snap.Admins[i].Role
				}
				if actor.Name == "" {
					actor.Name = snap.Admins[i].Name
				}
			}
		})
	}
	if !permission.RoleAtLeast(actor.Role, model.RoleTeacher) {
		return nil, apperrors.Forbidden("Account is waiting for approval").WithCause(accounterrors.ErrPendingApproval)
	}

	token, err := s.issuer.GenerateToken(actor)
	if err != nil {
		return nil, apperrors.Internal("Failed to issue token", err)
	}

	s.cfg.Log.Info("User logged in", "id", actor.ID, "role", actor.Role.String())
	return &Session{Token: token, Actor: actor}, nil
}

// Register creates a pending account. It becomes usable once a master
// approves it.
func (s *accountService) Register(ctx context.Context, id, name, password string) (*model.Admin, error) {
	payload := model.RegisterPayload{
		ID:       sanitizer.NormalizeClass(id),
		Name:     sanitizer.NormalizeName(name),
		Password: password,
	}
	if err := s.validator.Check(payload); err != nil {
		return nil, err
	}

	var ack model.Ack
	if err := s.gateway.Call(ctx, model.NewAction(model.ActionRegister, payload), &ack); err != nil {
		s.cfg.Log.Warn("Registration failed", "id", payload.ID, "error", err)
		return nil, remoteError(err, apperrors.Conflict("Account could not be registered"))
	}

	account := model.Admin{ID: payload.ID, Name: payload.Name, Role: model.RolePending}
	if _, err := s.store.Commit(ctx, func(snap *model.Snapshot) ([]model.Action, error) {
		if snap.FindAdmin(account.ID) < 0 {
			snap.Admins = append(snap.Admins, account)
		}
		return nil, nil
	}); err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Account registered", "id", account.ID)
	return &account, nil
}

func (s *accountService) ChangePassword(ctx context.Context, actor permission.Actor, oldPassword, newPassword string) error {
	payload := model.ChangePasswordPayload{ID: actor.ID, OldPassword: oldPassword, NewPassword: newPassword}
	if err := s.validator.Check(payload); err != nil {
		return err
	}

	var ack model.Ack
	if err := s.gateway.Call(ctx, model.NewAction(model.ActionChangePassword, payload), &ack); err != nil {
		s.cfg.Log.Warn("Password change failed", "id", actor.ID, "error", err)
		return remoteError(err, apperrors.Unauthorized("Current password is incorrect").WithCause(accounterrors.ErrInvalidCredentials))
	}

	s.cfg.Log.Info("Password changed", "id", actor.ID)
	return nil
}

// UpdateProfile renames the caller and returns a fresh token carrying the
// new name.
func (s *accountService) UpdateProfile(ctx context.Context, actor permission.Actor, name string) (*Session, error) {
	payload := model.ProfilePayload{ID: actor.ID, Name: sanitizer.NormalizeName(name)}
	if err := s.validator.Check(payload); err != nil {
		return nil, err
	}

	if _, err := s.store.Commit(ctx, func(snap *model.Snapshot) ([]model.Action, error) {
		if i := snap.FindAdmin(actor.ID); i >= 0 {
			snap.Admins[i].Name = payload.Name
		}
		return []model.Action{model.NewAction(model.ActionUpdateProfile, payload)}, nil
	}); err != nil {
		return nil, err
	}

	actor.Name = payload.Name
	token, err := s.issuer.GenerateToken(actor)
	if err != nil {
		return nil, apperrors.Internal("Failed to issue token", err)
	}

	s.cfg.Log.Info("Profile updated", "id", actor.ID)
	return &Session{Token: token, Actor: actor}, nil
}

func (s *accountService) AdminAction(ctx context.Context, actor permission.Actor, targetID string, act model.AdminAct, role model.Role) error {
	if actor.Role != model.RoleMaster {
		return apperrors.Forbidden("Master role required").WithCause(accounterrors.ErrMasterOnly)
	}
	if !act.Valid() {
		return apperrors.InvalidInput("Unknown account action").WithCause(accounterrors.ErrInvalidAct)
	}
	if act == model.AdminUpdateRole && (!role.Valid() || role == model.RolePending) {
		return apperrors.Validation("Role must be teacher, manager or master", map[string]any{"role": role.String()})
	}
	targetID = strings.TrimSpace(targetID)
	if targetID == actor.ID {
		return apperrors.Forbidden("Cannot change your own account").WithCause(accounterrors.ErrSelfAction)
	}

	payload := model.AdminActionPayload{TargetID: targetID, Act: act}
	if act == model.AdminUpdateRole {
		payload.Role = role
	}

	_, err := s.store.Commit(ctx, func(snap *model.Snapshot) ([]model.Action, error) {
		i := snap.FindAdmin(targetID)
		if i < 0 {
			return nil, apperrors.NotFoundWithID("Account", targetID).WithCause(accounterrors.ErrAccountNotFound)
		}
		switch act {
		case model.AdminApprove:
			if snap.Admins[i].Role == model.RolePending {
				snap.Admins[i].Role = model.RoleTeacher
			}
		case model.AdminUpdateRole:
			snap.Admins[i].Role = role
		case model.AdminDelete:
			snap.Admins = slices.Delete(snap.Admins, i, i+1)
		}
		return []model.Action{model.NewAction(model.ActionAdminAction, payload)}, nil
	})
	if err != nil {
		return err
	}

	s.cfg.Log.Info("Account updated", "target", targetID, "act", string(act), "by", actor.ID)
	return nil
}

// ListAdmins lists accounts, pending ones first.
func (s *accountService) ListAdmins(actor permission.Actor) ([]model.Admin, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.Forbidden("Admin role required")
	}

	var out []model.Admin
	s.store.View(func(snap *model.Snapshot) {
		out = slices.Clone(snap.Admins)
	})
	slices.SortStableFunc(out, func(a, b model.Admin) int {
		if a.Role != b.Role {
			if a.Role == model.RolePending {
				return -1
			}
			if b.Role == model.RolePending {
				return 1
			}
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}
