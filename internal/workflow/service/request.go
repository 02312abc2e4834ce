package service

import (
	"context"
	"fmt"
	"slices"

	"gymdesk/internal/permission"
	"gymdesk/internal/state"
	workflowerrors "gymdesk/internal/workflow/errors"
	"gymdesk/pkg/config"
	apperrors "gymdesk/pkg/errors"
	"gymdesk/pkg/model"
	"gymdesk/pkg/sanitizer"
	"gymdesk/pkg/validation"
)

type RequestService interface {
	Submit(ctx context.Context, actor permission.Actor, kind model.RequestType, content string) (*model.AdminRequest, error)
	UpdateStatus(ctx context.Context, actor permission.Actor, id model.ID, status model.RequestStatus, memo string) (*model.AdminRequest, error)
	Delete(ctx context.Context, actor permission.Actor, id model.ID) (bool, error)
	List(filter RequestFilter) []model.AdminRequest
}

// RequestFilter narrows List. Zero fields match everything.
type RequestFilter struct {
	Type      model.RequestType
	Status    model.RequestStatus
	Requester string
}

func (f RequestFilter) Match(r model.AdminRequest) bool {
	if f.Type != 0 && r.Type != f.Type {
		return false
	}
	if f.Status != 0 && r.Status != f.Status {
		return false
	}
	return f.Requester == "" || r.Requester == f.Requester
}

type requestService struct {
	store     *state.Store
	validator *validation.Validator
	cfg       *config.Config
}

func NewRequestService(store *state.Store, validator *validation.Validator, cfg *config.Config) RequestService {
	return &requestService{
		store:     store,
		validator: validator,
		cfg:       cfg,
	}
}

func notFound(id model.ID) error {
	return apperrors.NotFoundWithID("Request", id.String()).WithCause(workflowerrors.ErrRequestNotFound)
}

func (s *requestService) Submit(ctx context.Context, actor permission.Actor, kind model.RequestType, content string) (*model.AdminRequest, error) {
	if actor.ID == "" {
		return nil, apperrors.Unauthorized("Login required")
	}
	content = sanitizer.NormalizeText(content)
	if content == "" {
		return nil, apperrors.Validation("Request content is required", map[string]any{"content": "required"}).
			WithCause(workflowerrors.ErrEmptyContent)
	}

	request := model.AdminRequest{
		ID:        model.NewID(),
		Type:      kind,
		Content:   content,
		Requester: actor.ID,
		Status:    model.RequestPending,
		Date:      s.store.Today(),
	}
	if err := s.validator.Check(request); err != nil {
		s.cfg.Log.Warn("Request validation failed", "requester", actor.ID, "error", err)
		return nil, err
	}

	if _, err := s.store.Commit(ctx, func(snap *model.Snapshot) ([]model.Action, error) {
		snap.AdminRequests = append(snap.AdminRequests, request)
		return []model.Action{model.NewAction(model.ActionAddRequest, model.RequestPayload{Data: request})}, nil
	}); err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Request submitted", "request_id", request.ID, "type", kind.String(), "requester", actor.ID)
	return &request, nil
}

// UpdateStatus sets any status, in any direction. A purchase request that
// reaches done is announced in the activity log.
func (s *requestService) UpdateStatus(ctx context.Context, actor permission.Actor, id model.ID, status model.RequestStatus, memo string) (*model.AdminRequest, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.Forbidden("Admin role required").WithCause(workflowerrors.ErrAdminOnly)
	}
	if !status.Valid() {
		return nil, apperrors.Validation("Unknown request status", map[string]any{"status": int(status)})
	}
	memo = sanitizer.NormalizeText(memo)

	var request model.AdminRequest
	_, err := s.store.Commit(ctx, func(snap *model.Snapshot) ([]model.Action, error) {
		i := snap.FindRequest(id)
		if i < 0 {
			return nil, notFound(id)
		}
		current := &snap.AdminRequests[i]
		completed := current.Status != model.RequestDone && status == model.RequestDone
		current.Status = status
		current.Memo = memo
		request = *current

		actions := []model.Action{model.NewAction(model.ActionUpdateRequest, model.RequestUpdatePayload{
			ID:     id,
			Status: status,
			Memo:   memo,
		})}
		if completed && current.Type == model.RequestPurchase {
			actions = append(actions, s.store.RecordActivity(snap, fmt.Sprintf("요청하신 %s 구매가 완료 되었습니다.", current.Content)))
		}
		return actions, nil
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Request updated", "request_id", id, "status", status.String())
	return &request, nil
}

func (s *requestService) Delete(ctx context.Context, actor permission.Actor, id model.ID) (bool, error) {
	if !actor.IsAdmin() {
		return false, apperrors.Forbidden("Admin role required").WithCause(workflowerrors.ErrAdminOnly)
	}

	removed := false
	_, err := s.store.Commit(ctx, func(snap *model.Snapshot) ([]model.Action, error) {
		i := snap.FindRequest(id)
		if i < 0 {
			return nil, nil
		}
		snap.AdminRequests = slices.Delete(snap.AdminRequests, i, i+1)
		removed = true
		return []model.Action{model.NewAction(model.ActionDeleteRequest, model.IDPayload{ID: id})}, nil
	})
	if err != nil {
		return false, err
	}

	if removed {
		s.cfg.Log.Info("Request deleted", "request_id", id)
	}
	return removed, nil
}

// List returns matching requests, newest first.
func (s *requestService) List(filter RequestFilter) []model.AdminRequest {
	out := []model.AdminRequest{}
	s.store.View(func(snap *model.Snapshot) {
		for _, r := range snap.AdminRequests {
			if filter.Match(r) {
				out = append(out, r)
			}
		}
	})
	slices.Reverse(out)
	slices.SortStableFunc(out, func(a, b model.AdminRequest) int {
		return b.Date.Compare(a.Date)
	})
	return out
}
