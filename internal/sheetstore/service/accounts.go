package service

import (
	"context"
	"errors"

	sheeterrors "gymdesk/internal/sheetstore/errors"
	apperrors "gymdesk/pkg/errors"
	"gymdesk/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/crypto/bcrypt"
)

const (
	msgInvalidCredentials = "아이디 또는 비밀번호가 일치하지 않습니다."
	msgWrongPassword      = "현재 비밀번호가 일치하지 않습니다."
)

// accountEvent is what account actions publish: never the password.
type accountEvent struct {
	ID   string         `json:"id"`
	Act  model.AdminAct `json:"act,omitempty"`
	Role model.Role     `json:"role,omitempty"`
	Name string         `json:"name,omitempty"`
}

// login answers with success=false rather than an error for bad
// credentials, the reply shape clients expect.
func (s *sheetService) login(ctx context.Context, body []byte) (any, error) {
	p, err := decode[model.LoginPayload](body)
	if err != nil {
		return nil, err
	}

	admin, err := s.repo.FindAdmin(ctx, p.ID)
	if errors.Is(err, sheeterrors.ErrNotFound) {
		return model.LoginResult{Success: false, Message: msgInvalidCredentials}, nil
	}
	if err != nil {
		return nil, storeError(err, "account")
	}

	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(p.Password)) != nil {
		s.cfg.Log.Warn("Login rejected", "id", p.ID)
		return model.LoginResult{Success: false, Message: msgInvalidCredentials}, nil
	}

	return model.LoginResult{
		Success: true,
		ID:      admin.ID,
		Name:    admin.Name,
		Role:    admin.Role,
	}, nil
}

func (s *sheetService) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return "", apperrors.Internal("Failed to hash password", err)
	}
	return string(h), nil
}

// register creates a pending account that a master must approve.
func (s *sheetService) register(ctx context.Context, body []byte) (any, error) {
	p, err := decode[model.RegisterPayload](body)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Check(p); err != nil {
		return nil, err
	}

	hash, err := s.hash(p.Password)
	if err != nil {
		return nil, err
	}
	admin := model.Admin{ID: p.ID, Name: p.Name, Role: model.RolePending, PasswordHash: hash}
	if err := s.repo.InsertAdmin(ctx, admin); err != nil {
		return nil, storeError(err, "account")
	}

	s.publish(ctx, model.ActionRegister, p.ID, accountEvent{ID: p.ID, Name: p.Name, Role: model.RolePending})
	return ack(), nil
}

func (s *sheetService) changePassword(ctx context.Context, body []byte) (any, error) {
	p, err := decode[model.ChangePasswordPayload](body)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Check(p); err != nil {
		return nil, err
	}

	admin, err := s.repo.FindAdmin(ctx, p.ID)
	if err != nil {
		return nil, storeError(err, "account")
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(p.OldPassword)) != nil {
		return nil, apperrors.Unauthorized(msgWrongPassword).WithCause(sheeterrors.ErrInvalidCredentials)
	}

	hash, err := s.hash(p.NewPassword)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateAdmin(ctx, p.ID, bson.M{"password_hash": hash}); err != nil {
		return nil, storeError(err, "account")
	}

	s.publish(ctx, model.ActionChangePassword, p.ID, accountEvent{ID: p.ID})
	return ack(), nil
}

func (s *sheetService) adminAction(ctx context.Context, body []byte) (any, error) {
	p, err := decode[model.AdminActionPayload](body)
	if err != nil {
		return nil, err
	}
	if p.TargetID == "" {
		return nil, invalidField("targetId", "required")
	}

	switch p.Act {
	case model.AdminApprove:
		err = s.repo.UpdateAdmin(ctx, p.TargetID, bson.M{"role": model.RoleTeacher})
	case model.AdminUpdateRole:
		if !p.Role.Valid() || p.Role == model.RolePending {
			return nil, invalidField("role", "must be teacher, manager or master")
		}
		err = s.repo.UpdateAdmin(ctx, p.TargetID, bson.M{"role": p.Role})
	case model.AdminDelete:
		err = s.repo.DeleteAdmin(ctx, p.TargetID)
	default:
		return nil, invalidField("act", "unknown admin action")
	}
	if err != nil {
		return nil, storeError(err, "account")
	}

	s.publish(ctx, model.ActionAdminAction, p.TargetID, accountEvent{ID: p.TargetID, Act: p.Act, Role: p.Role})
	return ack(), nil
}

func (s *sheetService) updateProfile(ctx context.Context, body []byte) (any, error) {
	p, err := decode[model.ProfilePayload](body)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Check(p); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateAdmin(ctx, p.ID, bson.M{"name": p.Name}); err != nil {
		return nil, storeError(err, "account")
	}

	s.publish(ctx, model.ActionUpdateProfile, p.ID, accountEvent{ID: p.ID, Name: p.Name})
	return ack(), nil
}
