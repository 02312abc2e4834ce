package service

import (
	"context"
	"fmt"
	"slices"

	"gymdesk/internal/permission"
	scheduleerrors "gymdesk/internal/schedule/errors"
	"gymdesk/internal/state"
	"gymdesk/pkg/config"
	"gymdesk/pkg/dates"
	apperrors "gymdesk/pkg/errors"
	"gymdesk/pkg/model"
	"gymdesk/pkg/sanitizer"
	"gymdesk/pkg/validation"
)

type ScheduleService interface {
	ResolveSlot(date dates.Date, period model.Period, location model.Facility) (Cell, error)
	ResolveDay(date dates.Date, location model.Facility) ([]Cell, error)
	ResolveWeek(date dates.Date, location model.Facility) (map[model.Weekday][]Cell, error)

	RequestBooking(ctx context.Context, actor permission.Actor, date dates.Date, period model.Period, location model.Facility) (*model.BookingRequest, error)
	CanApprove(actor permission.Actor, id model.ID) (bool, error)
	Approve(ctx context.Context, actor permission.Actor, id model.ID, mode ApproveMode) (*ApprovalResult, error)
	Reject(ctx context.Context, actor permission.Actor, id model.ID) (bool, error)
	Cancel(ctx context.Context, actor permission.Actor, id model.ID) (bool, error)

	BaseSchedule() []model.BaseScheduleEntry
	ReplaceBaseSchedule(ctx context.Context, actor permission.Actor, entries []model.BaseScheduleEntry) (*state.Receipt, error)
	ListBookings(filter BookingFilter) []model.BookingRequest
	PendingForActor(actor permission.Actor) []model.BookingRequest
}

type scheduleService struct {
	store     *state.Store
	validator *validation.Validator
	cfg       *config.Config
}

func NewScheduleService(store *state.Store, validator *validation.Validator, cfg *config.Config) ScheduleService {
	return &scheduleService{
		store:     store,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *scheduleService) ResolveSlot(date dates.Date, period model.Period, location model.Facility) (Cell, error) {
	if err := validateSlot(date, period, location); err != nil {
		return Cell{}, err
	}

	var cell Cell
	s.store.View(func(snap *model.Snapshot) {
		cell = resolve(snap, model.Slot{Date: date, Period: period, Location: location})
	})
	return cell, nil
}

func (s *scheduleService) ResolveDay(date dates.Date, location model.Facility) ([]Cell, error) {
	if err := validateSlot(date, model.Period1, location); err != nil {
		return nil, err
	}

	cells := make([]Cell, 0, len(model.Periods))
	s.store.View(func(snap *model.Snapshot) {
		for _, p := range model.Periods {
			cells = append(cells, resolve(snap, model.Slot{Date: date, Period: p, Location: location}))
		}
	})
	return cells, nil
}

// ResolveWeek resolves Monday through Friday of the week containing date.
func (s *scheduleService) ResolveWeek(date dates.Date, location model.Facility) (map[model.Weekday][]Cell, error) {
	if err := validateSlot(date, model.Period1, location); err != nil {
		return nil, err
	}

	monday := date.Monday()
	week := make(map[model.Weekday][]Cell, len(model.Weekdays))
	s.store.View(func(snap *model.Snapshot) {
		for i, day := range model.Weekdays {
			d := monday.AddDays(i)
			cells := make([]Cell, 0, len(model.Periods))
			for _, p := range model.Periods {
				cells = append(cells, resolve(snap, model.Slot{Date: d, Period: p, Location: location}))
			}
			week[day] = cells
		}
	})
	return week, nil
}

func (s *scheduleService) RequestBooking(ctx context.Context, actor permission.Actor, date dates.Date, period model.Period, location model.Facility) (*model.BookingRequest, error) {
	class := sanitizer.NormalizeClass(actor.ID)
	if class == "" {
		return nil, apperrors.Unauthorized("Login required to request a booking")
	}
	if err := validateSlot(date, period, location); err != nil {
		return nil, err
	}
	if _, ok := model.WeekdayOf(date); !ok {
		return nil, apperrors.Validation("Bookings are only accepted on school days",
			map[string]any{"date": date.String()}).WithCause(scheduleerrors.ErrNotSchoolDay)
	}

	booking := model.BookingRequest{
		ID:       model.NewID(),
		Date:     date,
		Period:   period,
		Location: location,
		Class:    class,
		Status:   model.BookingPending,
	}
	if err := s.validator.Check(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "class", class, "error", err)
		return nil, err
	}

	_, err := s.store.Commit(ctx, func(snap *model.Snapshot) ([]model.Action, error) {
		snap.WeeklySchedule = append(snap.WeeklySchedule, booking)
		msg := fmt.Sprintf("%s에서 %s %s %s을 예약하였습니다.", class, date.Korean(), period, location)
		return []model.Action{
			model.NewAction(model.ActionAddBooking, model.BookingPayload{Data: booking}),
			s.store.RecordActivity(snap, msg),
		}, nil
	})
	if err != nil {
		return nil, apperrors.Internal("Failed to request booking", err)
	}

	s.cfg.Log.Info("Booking requested",
		"booking_id", booking.ID,
		"class", class,
		"slot", booking.Slot().String(),
	)
	return &booking, nil
}

func (s *scheduleService) CanApprove(actor permission.Actor, id model.ID) (bool, error) {
	var (
		allowed bool
		found   bool
	)
	s.store.View(func(snap *model.Snapshot) {
		i := snap.FindBooking(id)
		if i < 0 {
			return
		}
		found = true
		allowed = permission.Allowed(snap, snap.WeeklySchedule[i], actor)
	})
	if !found {
		return false, apperrors.NotFoundWithID("Booking", id.String()).WithCause(scheduleerrors.ErrNotFound)
	}
	return allowed, nil
}

// Approve never picks a side on its own: with other approvals on the slot
// and mode ApproveDirect it returns the conflicts and changes nothing.
func (s *scheduleService) Approve(ctx context.Context, actor permission.Actor, id model.ID, mode ApproveMode) (*ApprovalResult, error) {
	if mode == "" {
		mode = ApproveDirect
	}
	if !mode.Valid() {
		return nil, apperrors.InvalidInput(fmt.Sprintf("Unknown approval mode %q", mode)).WithCause(scheduleerrors.ErrInvalidMode)
	}

	result := &ApprovalResult{}
	_, err := s.store.Commit(ctx, func(snap *model.Snapshot) ([]model.Action, error) {
		i := snap.FindBooking(id)
		if i < 0 {
			return nil, apperrors.NotFoundWithID("Booking", id.String()).WithCause(scheduleerrors.ErrNotFound)
		}
		booking := snap.WeeklySchedule[i]
		if booking.Status != model.BookingPending {
			return nil, apperrors.Conflict("Booking is not pending").WithCause(scheduleerrors.ErrNotPending)
		}
		if !permission.Allowed(snap, booking, actor) {
			return nil, apperrors.Forbidden("Not allowed to approve this booking").WithCause(scheduleerrors.ErrNotAllowed)
		}

		conflicts := approvedOn(snap, booking)
		result.Booking = booking
		if len(conflicts) > 0 && mode == ApproveDirect {
			result.Conflicts = conflicts
			return nil, nil
		}

		var actions []model.Action
		if mode == ApproveReplace {
			for _, c := range conflicts {
				snap.WeeklySchedule = slices.DeleteFunc(snap.WeeklySchedule, func(b model.BookingRequest) bool { return b.ID == c.ID })
				actions = append(actions, model.NewAction(model.ActionDeleteBooking, model.IDPayload{ID: c.ID}))
				result.Replaced = append(result.Replaced, c.ID)
			}
		} else {
			result.Conflicts = conflicts
		}

		i = snap.FindBooking(id)
		snap.WeeklySchedule[i].Status = model.BookingApproved
		result.Booking = snap.WeeklySchedule[i]
		result.Approved = true

		msg := fmt.Sprintf("%s에서 신청한 %s %s %s 사용이 승인되었습니다.",
			booking.Class, booking.Date.Korean(), booking.Period, booking.Location)
		actions = append(actions,
			model.NewAction(model.ActionApproveBooking, model.IDPayload{ID: id}),
			s.store.RecordActivity(snap, msg),
		)
		return actions, nil
	})
	if err != nil {
		s.cfg.Log.Warn("Booking approval rejected", "booking_id", id, "actor", actor.ID, "error", err)
		return nil, err
	}

	if result.NeedsDecision() {
		s.cfg.Log.Info("Booking approval needs a decision",
			"booking_id", id,
			"conflicts", len(result.Conflicts),
		)
		return result, nil
	}

	s.cfg.Log.Info("Booking approved",
		"booking_id", id,
		"mode", mode,
		"replaced", len(result.Replaced),
		"actor", actor.ID,
	)
	return result, nil
}

func approvedOn(snap *model.Snapshot, booking model.BookingRequest) []model.BookingRequest {
	var out []model.BookingRequest
	slot := booking.Slot()
	for _, b := range snap.WeeklySchedule {
		if b.ID != booking.ID && b.Status == model.BookingApproved && b.Occupies(slot) {
			out = append(out, b)
		}
	}
	return out
}

// Reject removes a pending booking the actor may decide on. Approved
// bookings only leave through Cancel.
func (s *scheduleService) Reject(ctx context.Context, actor permission.Actor, id model.ID) (bool, error) {
	return s.remove(ctx, id, func(snap *model.Snapshot, b model.BookingRequest) (string, error) {
		if b.Status != model.BookingPending {
			return "", apperrors.Conflict("Booking is not pending").WithCause(scheduleerrors.ErrNotPending)
		}
		if !permission.Allowed(snap, b, actor) {
			return "", apperrors.Forbidden("Not allowed to reject this booking").WithCause(scheduleerrors.ErrNotAllowed)
		}
		return "", nil
	})
}

// Cancel removes a booking on behalf of an admin or of the requesting class.
func (s *scheduleService) Cancel(ctx context.Context, actor permission.Actor, id model.ID) (bool, error) {
	return s.remove(ctx, id, func(snap *model.Snapshot, b model.BookingRequest) (string, error) {
		switch {
		case actor.IsAdmin():
			if b.Status == model.BookingApproved {
				return "관리자가 승인된 예약을 취소했습니다.", nil
			}
			return "", nil
		case actor.ID != "" && b.Class == actor.ID:
			return fmt.Sprintf("%s이 예약을 취소했습니다.", actor.ID), nil
		default:
			return "", apperrors.Forbidden("Only the requester or an admin may cancel this booking").WithCause(scheduleerrors.ErrNotOwner)
		}
	})
}

// remove is the single deletion path behind reject and cancel. A booking
// that no longer exists is a no-op.
func (s *scheduleService) remove(ctx context.Context, id model.ID, authorize func(*model.Snapshot, model.BookingRequest) (string, error)) (bool, error) {
	removed := false
	_, err := s.store.Commit(ctx, func(snap *model.Snapshot) ([]model.Action, error) {
		i := snap.FindBooking(id)
		if i < 0 {
			return nil, nil
		}
		msg, err := authorize(snap, snap.WeeklySchedule[i])
		if err != nil {
			return nil, err
		}

		snap.WeeklySchedule = slices.Delete(snap.WeeklySchedule, i, i+1)
		removed = true

		actions := []model.Action{model.NewAction(model.ActionDeleteBooking, model.IDPayload{ID: id})}
		if msg != "" {
			actions = append(actions, s.store.RecordActivity(snap, msg))
		}
		return actions, nil
	})
	if err != nil {
		return false, err
	}

	if removed {
		s.cfg.Log.Info("Booking removed", "booking_id", id)
	} else {
		s.cfg.Log.Debug("Booking already gone", "booking_id", id)
	}
	return removed, nil
}

func (s *scheduleService) BaseSchedule() []model.BaseScheduleEntry {
	var out []model.BaseScheduleEntry
	s.store.View(func(snap *model.Snapshot) {
		out = slices.Clone(snap.BaseSchedule)
	})
	return out
}

// ReplaceBaseSchedule swaps the whole recurring timetable. The receipt lets
// bulk imports wait for the remote store.
func (s *scheduleService) ReplaceBaseSchedule(ctx context.Context, actor permission.Actor, entries []model.BaseScheduleEntry) (*state.Receipt, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.Forbidden("Only admins may edit the base schedule")
	}

	type key struct {
		day      model.Weekday
		period   model.Period
		location model.Facility
	}
	seen := make(map[key]int, len(entries))
	clean := make([]model.BaseScheduleEntry, 0, len(entries))
	for n, e := range entries {
		e.Class = sanitizer.NormalizeClass(e.Class)
		if err := s.validator.Check(e); err != nil {
			return nil, err
		}
		k := key{e.Day, e.Period, e.Location}
		if first, dup := seen[k]; dup {
			return nil, apperrors.Validation("Duplicate base schedule entry", map[string]any{
				"entry":     n,
				"duplicate": first,
				"day":       e.Day,
				"period":    e.Period,
				"location":  e.Location,
			}).WithCause(scheduleerrors.ErrDuplicateBaseEntry)
		}
		seen[k] = n
		clean = append(clean, e)
	}

	receipt, err := s.store.Commit(ctx, func(snap *model.Snapshot) ([]model.Action, error) {
		snap.BaseSchedule = clean
		return []model.Action{
			model.NewAction(model.ActionReplaceBaseSchedule, model.BaseSchedulePayload{Schedule: clean}),
		}, nil
	})
	if err != nil {
		return nil, apperrors.Internal("Failed to replace base schedule", err)
	}

	s.cfg.Log.Info("Base schedule replaced", "entries", len(clean), "actor", actor.ID)
	return receipt, nil
}

func (s *scheduleService) ListBookings(filter BookingFilter) []model.BookingRequest {
	var out []model.BookingRequest
	s.store.View(func(snap *model.Snapshot) {
		for _, b := range snap.WeeklySchedule {
			if filter.Match(b) {
				out = append(out, b)
			}
		}
	})
	sortBookings(out)
	return out
}

// PendingForActor lists the pending bookings the actor may decide on.
func (s *scheduleService) PendingForActor(actor permission.Actor) []model.BookingRequest {
	var out []model.BookingRequest
	s.store.View(func(snap *model.Snapshot) {
		for _, b := range snap.WeeklySchedule {
			if b.Status == model.BookingPending && permission.Allowed(snap, b, actor) {
				out = append(out, b)
			}
		}
	})
	sortBookings(out)
	return out
}

func sortBookings(bookings []model.BookingRequest) {
	slices.SortStableFunc(bookings, func(a, b model.BookingRequest) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return slices.Index(model.Periods, a.Period) - slices.Index(model.Periods, b.Period)
	})
}

func validateSlot(date dates.Date, period model.Period, location model.Facility) error {
	details := map[string]any{}
	if date.IsZero() {
		details["date"] = "date is required"
	}
	if !period.Valid() {
		details["period"] = fmt.Sprintf("unknown period %q", period)
	}
	if !location.Valid() {
		details["location"] = fmt.Sprintf("unknown location %q", location)
	}
	if len(details) > 0 {
		return apperrors.Validation("Invalid slot", details)
	}
	return nil
}
