package permission

import (
	"testing"

	"gymdesk/pkg/dates"
	"gymdesk/pkg/model"

	"github.com/stretchr/testify/assert"
)

// 2026-03-02 is a Monday.
var monday = dates.MustParse("2026-03-02")

func fixture() *model.Snapshot {
	snap := model.NewSnapshot()
	snap.BaseSchedule = []model.BaseScheduleEntry{
		{Day: model.Monday, Period: model.Period1, Location: model.Gymnasium, Class: "2-3"},
	}
	snap.WeeklySchedule = []model.BookingRequest{
		{ID: "held", Date: monday, Period: model.Period2, Location: model.Gymnasium, Class: "4-2", Status: model.BookingApproved},
		{ID: "p1", Date: monday, Period: model.Period1, Location: model.Gymnasium, Class: "5-1", Status: model.BookingPending},
		{ID: "p2", Date: monday, Period: model.Period2, Location: model.Gymnasium, Class: "6-1", Status: model.BookingPending},
	}
	return snap
}

func TestCanApprove(t *testing.T) {
	snap := fixture()
	p1, p2 := snap.WeeklySchedule[1], snap.WeeklySchedule[2]

	tests := []struct {
		name    string
		booking model.BookingRequest
		actor   Actor
		isAdmin bool
		want    bool
	}{
		{"admin always", p1, Actor{ID: "office"}, true, true},
		{"base slot owner", p1, Actor{ID: "2-3"}, false, true},
		{"base owner of another slot", p2, Actor{ID: "2-3"}, false, false},
		{"holder of approved booking", p2, Actor{ID: "4-2"}, false, true},
		{"holder on another period", p1, Actor{ID: "4-2"}, false, false},
		{"requester cannot self approve", p1, Actor{ID: "5-1"}, false, false},
		{"anonymous", p1, Actor{}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanApprove(snap, tt.booking, tt.actor, tt.isAdmin))
		})
	}
}

func TestCanApproveOtherDateOfSameWeekday(t *testing.T) {
	snap := fixture()
	nextMonday := snap.WeeklySchedule[2]
	nextMonday.Date = monday.AddDays(7)

	// The base owner covers every Monday, an approved holder only its date.
	base := snap.WeeklySchedule[1]
	base.Date = monday.AddDays(7)
	assert.True(t, CanApprove(snap, base, Actor{ID: "2-3"}, false))
	assert.False(t, CanApprove(snap, nextMonday, Actor{ID: "4-2"}, false))
}

func TestAllowedUsesRole(t *testing.T) {
	snap := fixture()
	p1 := snap.WeeklySchedule[1]

	assert.True(t, Allowed(snap, p1, Actor{ID: "x", Role: model.RoleManager}))
	assert.True(t, Allowed(snap, p1, Actor{ID: "x", Role: model.RoleMaster}))
	assert.False(t, Allowed(snap, p1, Actor{ID: "x", Role: model.RoleTeacher}))
}

func TestRoleAtLeast(t *testing.T) {
	assert.True(t, RoleAtLeast(model.RoleMaster, model.RoleManager))
	assert.True(t, RoleAtLeast(model.RoleTeacher, model.RoleTeacher))
	assert.False(t, RoleAtLeast(model.RolePending, model.RoleTeacher))
	assert.False(t, RoleAtLeast(model.Role(99), model.RolePending))
}
