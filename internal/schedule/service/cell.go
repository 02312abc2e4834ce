package service

import (
	"gymdesk/pkg/dates"
	"gymdesk/pkg/model"
)

type CellState string

const (
	CellEmpty CellState = "empty"
	// CellBase shows the recurring owner, possibly with pending overlays.
	CellBase CellState = "base"
	// CellPending has no owner, only requests waiting for a decision.
	CellPending CellState = "pending"
	// CellOverridden shows approved bookings in place of the base entry.
	CellOverridden CellState = "overridden"
)

// Cell is what one slot of the timetable displays.
type Cell struct {
	Slot     model.Slot               `json:"slot"`
	State    CellState                `json:"state"`
	Base     *model.BaseScheduleEntry `json:"base,omitempty"`
	Approved []model.BookingRequest   `json:"approved,omitempty"`
	Pending  []model.BookingRequest   `json:"pending,omitempty"`
}

// Occupant is the class shown as holding the slot, or "" when free.
// With duplicate approvals the earliest approved booking is reported.
func (c Cell) Occupant() string {
	switch {
	case len(c.Approved) > 0:
		return c.Approved[0].Class
	case c.Base != nil:
		return c.Base.Class
	default:
		return ""
	}
}

func resolve(snap *model.Snapshot, slot model.Slot) Cell {
	cell := Cell{Slot: slot, State: CellEmpty}

	for _, b := range snap.WeeklySchedule {
		if !b.Occupies(slot) {
			continue
		}
		switch b.Status {
		case model.BookingApproved:
			cell.Approved = append(cell.Approved, b)
		case model.BookingPending:
			cell.Pending = append(cell.Pending, b)
		}
	}

	if len(cell.Approved) > 0 {
		cell.State = CellOverridden
		cell.Pending = nil
		return cell
	}

	for i := range snap.BaseSchedule {
		if snap.BaseSchedule[i].Covers(slot) {
			entry := snap.BaseSchedule[i]
			cell.Base = &entry
			cell.State = CellBase
			return cell
		}
	}

	if len(cell.Pending) > 0 {
		cell.State = CellPending
	}
	return cell
}

type ApproveMode string

const (
	// ApproveDirect approves only when no other booking holds the slot.
	ApproveDirect ApproveMode = "direct"
	// ApproveDuplicate keeps the existing approvals next to the new one.
	ApproveDuplicate ApproveMode = "duplicate"
	// ApproveReplace deletes the existing approvals first.
	ApproveReplace ApproveMode = "replace"
)

func (m ApproveMode) Valid() bool {
	return m == ApproveDirect || m == ApproveDuplicate || m == ApproveReplace
}

// ApprovalResult reports either an approval or the conflicts that need an
// explicit duplicate or replace decision.
type ApprovalResult struct {
	Booking   model.BookingRequest   `json:"booking"`
	Approved  bool                   `json:"approved"`
	Conflicts []model.BookingRequest `json:"conflicts,omitempty"`
	Replaced  []model.ID             `json:"replaced,omitempty"`
}

func (r *ApprovalResult) NeedsDecision() bool {
	return !r.Approved && len(r.Conflicts) > 0
}

// BookingFilter selects bookings; zero fields match everything.
type BookingFilter struct {
	Status   model.BookingStatus
	From     dates.Date
	To       dates.Date
	Class    string
	Location model.Facility
}

func (f BookingFilter) Match(b model.BookingRequest) bool {
	if f.Status != 0 && b.Status != f.Status {
		return false
	}
	if !f.From.IsZero() && b.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && f.To.Before(b.Date) {
		return false
	}
	if f.Class != "" && b.Class != f.Class {
		return false
	}
	return f.Location == "" || b.Location == f.Location
}
