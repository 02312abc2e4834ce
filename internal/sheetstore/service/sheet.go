// Package service applies remote-store actions to the sheet tables and
// assembles the snapshot clients fetch.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sheeterrors "gymdesk/internal/sheetstore/errors"
	"gymdesk/internal/sheetstore/repository"
	"gymdesk/pkg/config"
	"gymdesk/pkg/dates"
	apperrors "gymdesk/pkg/errors"
	"gymdesk/pkg/kafka"
	"gymdesk/pkg/model"
	"gymdesk/pkg/sanitizer"
	"gymdesk/pkg/validation"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"
)

const timestampLayout = "2006-01-02 15:04:05"

// EventPublisher receives one event per applied action. *kafka.Producer
// satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type SheetService interface {
	Snapshot(ctx context.Context) (*model.Snapshot, error)
	Dispatch(ctx context.Context, body []byte) (any, error)
}

type actionFunc func(ctx context.Context, body []byte) (any, error)

type sheetService struct {
	repo      repository.SheetRepository
	validator *validation.Validator
	events    EventPublisher
	cfg       *config.Config
	actions   map[model.ActionName]actionFunc
	hashCost  int
	now       func() time.Time
}

// NewSheetService wires the action table. events may be nil when Kafka is
// disabled.
func NewSheetService(repo repository.SheetRepository, validator *validation.Validator, events EventPublisher, cfg *config.Config) SheetService {
	s := &sheetService{
		repo:      repo,
		validator: validator,
		events:    events,
		cfg:       cfg,
		hashCost:  bcrypt.DefaultCost,
		now:       time.Now,
	}
	s.actions = map[model.ActionName]actionFunc{
		model.ActionAddBooking:          s.addBooking,
		model.ActionApproveBooking:      s.approveBooking,
		model.ActionDeleteBooking:       s.deleteBooking,
		model.ActionReplaceBaseSchedule: s.replaceBaseSchedule,

		model.ActionAddInventoryItem:    s.addItem,
		model.ActionUpdateInventoryItem: s.updateItem,
		model.ActionDeleteInventoryItem: s.deleteItem,
		model.ActionAddRental:           s.addRental,
		model.ActionReturnItem:          s.returnItem,
		model.ActionPartialReturn:       s.partialReturn,
		model.ActionAddRepair:           s.addRepair,
		model.ActionUpdateRepair:        s.updateRepair,
		model.ActionAddLocation:         s.addLocation,
		model.ActionDeleteLocation:      s.deleteLocation,
		model.ActionUpdateBulkLocation:  s.moveItems,

		model.ActionAddRequest:    s.addRequest,
		model.ActionUpdateRequest: s.updateRequest,
		model.ActionDeleteRequest: s.deleteRequest,

		model.ActionLogActivity:    s.logActivity,
		model.ActionUpdateGreeting: s.updateGreeting,

		model.ActionLogin:          s.login,
		model.ActionRegister:       s.register,
		model.ActionChangePassword: s.changePassword,
		model.ActionAdminAction:    s.adminAction,
		model.ActionUpdateProfile:  s.updateProfile,
	}
	return s
}

// Snapshot reads every table concurrently.
func (s *sheetService) Snapshot(ctx context.Context) (*model.Snapshot, error) {
	snap := &model.Snapshot{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) { snap.BaseSchedule, err = s.repo.BaseSchedule(gctx); return })
	g.Go(func() (err error) { snap.WeeklySchedule, err = s.repo.Bookings(gctx); return })
	g.Go(func() (err error) { snap.Inventory, err = s.repo.Inventory(gctx); return })
	g.Go(func() (err error) { snap.Admins, err = s.repo.Admins(gctx); return })
	g.Go(func() (err error) { snap.AdminRequests, err = s.repo.Requests(gctx); return })
	g.Go(func() (err error) { snap.Locations, err = s.repo.Locations(gctx); return })
	g.Go(func() (err error) { snap.ActivityLogs, err = s.repo.ActivityLogs(gctx, s.cfg.ActivityLogLimit); return })
	g.Go(func() (err error) { snap.Greeting, err = s.repo.Greeting(gctx); return })

	if err := g.Wait(); err != nil {
		s.cfg.Log.Error("Failed to assemble snapshot", "error", err)
		return nil, apperrors.Internal("Failed to read sheet", err)
	}

	for i := range snap.Admins {
		snap.Admins[i].PasswordHash = ""
	}
	snap.Locations = sanitizer.NormalizeLocations(snap.Locations)
	snap.Normalize()
	return snap, nil
}

// Dispatch applies one action body of the form {"action": name, ...fields}.
// Domain rejections come back as AppErrors; the caller turns them into a
// negative acknowledgement.
func (s *sheetService) Dispatch(ctx context.Context, body []byte) (any, error) {
	var head struct {
		Action model.ActionName `json:"action"`
	}
	if err := json.Unmarshal(body, &head); err != nil {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid action body: %v", err)).WithCause(sheeterrors.ErrInvalidPayload)
	}

	fn, ok := s.actions[head.Action]
	if !ok {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown action %q", head.Action)).WithCause(sheeterrors.ErrUnknownAction)
	}

	start := s.now()
	reply, err := fn(ctx, body)
	result := resultSuccess
	if err != nil {
		result = resultFor(err)
	}
	actionsTotal.WithLabelValues(string(head.Action), result).Inc()
	actionDuration.WithLabelValues(string(head.Action)).Observe(s.now().Sub(start).Seconds())

	if err != nil {
		s.cfg.Log.Warn("Action not applied", "action", head.Action, "error", err)
		return nil, err
	}
	s.cfg.Log.Info("Action applied", "action", head.Action)
	return reply, nil
}

func decode[T any](body []byte) (T, error) {
	var payload T
	if err := json.Unmarshal(body, &payload); err != nil {
		return payload, apperrors.InvalidInput(fmt.Sprintf("invalid payload: %v", err)).WithCause(sheeterrors.ErrInvalidPayload)
	}
	return payload, nil
}

// storeError maps repository failures onto AppErrors.
func storeError(err error, what string) error {
	switch {
	case errors.Is(err, sheeterrors.ErrNotFound):
		return apperrors.NotFound(what).WithCause(sheeterrors.ErrNotFound)
	case errors.Is(err, sheeterrors.ErrLocationInUse):
		return apperrors.Conflict("Location already exists").WithCause(sheeterrors.ErrLocationInUse)
	case errors.Is(err, sheeterrors.ErrDuplicateAccount):
		return apperrors.Conflict("이미 존재하는 아이디입니다.").WithCause(sheeterrors.ErrDuplicateAccount)
	default:
		return apperrors.Internal("Failed to write sheet", err)
	}
}

func ack() model.Ack {
	return model.Ack{Success: true}
}

func (s *sheetService) timestamp() string {
	return s.now().In(dates.School).Format(timestampLayout)
}
