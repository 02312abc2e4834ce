// Package permission decides who may arbitrate a pending booking.
package permission

import (
	"gymdesk/pkg/model"
)

// Actor is the authenticated caller. ID is the class identifier that
// bookings and rentals are recorded under.
type Actor struct {
	ID   string     `json:"id"`
	Name string     `json:"name"`
	Role model.Role `json:"role"`
}

func (a Actor) IsAdmin() bool {
	return a.Role.IsAdmin()
}

var rank = map[model.Role]int{
	model.RolePending: 0,
	model.RoleTeacher: 1,
	model.RoleManager: 2,
	model.RoleMaster:  3,
}

// RoleAtLeast reports whether role ranks at or above minimum on the ladder
// master > manager > teacher > pending. Unknown roles rank below everything.
func RoleAtLeast(role, minimum model.Role) bool {
	r, ok := rank[role]
	if !ok {
		return false
	}
	return r >= rank[minimum]
}

// CanApprove reports whether actor may approve or reject booking. Admins
// always may. Anyone else must own the base slot for the booking's weekday
// or hold an approved booking for the exact same slot on that date.
func CanApprove(snap *model.Snapshot, booking model.BookingRequest, actor Actor, isAdmin bool) bool {
	if isAdmin {
		return true
	}
	if actor.ID == "" {
		return false
	}

	slot := booking.Slot()
	for _, entry := range snap.BaseSchedule {
		if entry.Class == actor.ID && entry.Covers(slot) {
			return true
		}
	}
	for _, other := range snap.WeeklySchedule {
		if other.ID == booking.ID || other.Status != model.BookingApproved {
			continue
		}
		if other.Class == actor.ID && other.Occupies(slot) {
			return true
		}
	}
	return false
}

// Allowed is CanApprove with the admin flag taken from the actor's role.
func Allowed(snap *model.Snapshot, booking model.BookingRequest, actor Actor) bool {
	return CanApprove(snap, booking, actor, actor.IsAdmin())
}
