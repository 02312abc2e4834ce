// Package service serves the shared front-page data: the activity feed,
// the greeting banner and manual resynchronisation with the remote store.
package service

import (
	"context"
	"errors"
	"slices"
	"unicode/utf8"

	"gymdesk/internal/permission"
	"gymdesk/internal/remote"
	"gymdesk/internal/state"
	"gymdesk/pkg/config"
	apperrors "gymdesk/pkg/errors"
	"gymdesk/pkg/model"
	"gymdesk/pkg/sanitizer"
)

const maxGreetingLength = 500

type DashboardService interface {
	Activity() []model.ActivityLog
	Greeting() string
	UpdateGreeting(ctx context.Context, actor permission.Actor, text string) (string, error)
	Refresh(ctx context.Context) (state.Source, error)
	Source() state.Source
}

type dashboardService struct {
	store *state.Store
	cfg   *config.Config
}

func NewDashboardService(store *state.Store, cfg *config.Config) DashboardService {
	return &dashboardService{store: store, cfg: cfg}
}

func (s *dashboardService) Activity() []model.ActivityLog {
	var out []model.ActivityLog
	s.store.View(func(snap *model.Snapshot) {
		out = slices.Clone(snap.ActivityLogs)
	})
	return out
}

func (s *dashboardService) Greeting() string {
	var greeting string
	s.store.View(func(snap *model.Snapshot) {
		greeting = snap.Greeting
	})
	return greeting
}

func (s *dashboardService) UpdateGreeting(ctx context.Context, actor permission.Actor, text string) (string, error) {
	if !actor.IsAdmin() {
		return "", apperrors.Forbidden("Admin role required")
	}
	text = sanitizer.NormalizeText(text)
	if utf8.RuneCountInString(text) > maxGreetingLength {
		return "", apperrors.Validation("Greeting is too long", map[string]any{"max": maxGreetingLength})
	}

	if _, err := s.store.Commit(ctx, func(snap *model.Snapshot) ([]model.Action, error) {
		snap.Greeting = text
		return []model.Action{model.NewAction(model.ActionUpdateGreeting, model.GreetingPayload{Text: text})}, nil
	}); err != nil {
		return "", err
	}

	s.cfg.Log.Info("Greeting updated", "by", actor.ID)
	return text, nil
}

// Refresh replaces local state with the remote snapshot. Local state is
// kept when the store cannot be reached.
func (s *dashboardService) Refresh(ctx context.Context) (state.Source, error) {
	if err := s.store.Refresh(ctx); err != nil {
		if errors.Is(err, remote.ErrTimeout) {
			return s.store.Source(), apperrors.Timeout("Remote store did not answer in time")
		}
		return s.store.Source(), apperrors.Unavailable("remote store")
	}
	return s.store.Source(), nil
}

func (s *dashboardService) Source() state.Source {
	return s.store.Source()
}
