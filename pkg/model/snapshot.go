package model

import "slices"

// DefaultActivityLimit is how many activity entries a client keeps.
const DefaultActivityLimit = 20

type ActivityLog struct {
	Timestamp string `json:"timestamp" bson:"timestamp"`
	Message   string `json:"message" bson:"message"`
}

// Snapshot is the full state served by the remote store on a bare fetch.
type Snapshot struct {
	BaseSchedule   []BaseScheduleEntry `json:"baseSchedule"`
	WeeklySchedule []BookingRequest    `json:"weeklySchedule"`
	Inventory      []InventoryItem     `json:"inventory"`
	Admins         []Admin             `json:"admins"`
	AdminRequests  []AdminRequest      `json:"adminRequests"`
	Locations      []string            `json:"locations"`
	ActivityLogs   []ActivityLog       `json:"activityLogs"`
	Greeting       string              `json:"greeting"`
}

func NewSnapshot() *Snapshot {
	s := &Snapshot{}
	s.Normalize()
	return s
}

// Normalize replaces nil collections with empty ones and restores the
// default storage locations when none are known.
func (s *Snapshot) Normalize() {
	if s.BaseSchedule == nil {
		s.BaseSchedule = []BaseScheduleEntry{}
	}
	if s.WeeklySchedule == nil {
		s.WeeklySchedule = []BookingRequest{}
	}
	if s.Inventory == nil {
		s.Inventory = []InventoryItem{}
	}
	for i := range s.Inventory {
		if s.Inventory[i].Rentals == nil {
			s.Inventory[i].Rentals = []Rental{}
		}
		if s.Inventory[i].Repairs == nil {
			s.Inventory[i].Repairs = []Repair{}
		}
	}
	if s.Admins == nil {
		s.Admins = []Admin{}
	}
	if s.AdminRequests == nil {
		s.AdminRequests = []AdminRequest{}
	}
	if len(s.Locations) == 0 {
		s.Locations = slices.Clone(DefaultLocations)
	}
	if s.ActivityLogs == nil {
		s.ActivityLogs = []ActivityLog{}
	}
}

// Clone returns a deep copy safe to hand out while the original keeps
// being mutated.
func (s *Snapshot) Clone() *Snapshot {
	c := &Snapshot{
		BaseSchedule:   slices.Clone(s.BaseSchedule),
		WeeklySchedule: slices.Clone(s.WeeklySchedule),
		Inventory:      make([]InventoryItem, len(s.Inventory)),
		Admins:         slices.Clone(s.Admins),
		AdminRequests:  slices.Clone(s.AdminRequests),
		Locations:      slices.Clone(s.Locations),
		ActivityLogs:   slices.Clone(s.ActivityLogs),
		Greeting:       s.Greeting,
	}
	for i, item := range s.Inventory {
		item.Rentals = slices.Clone(item.Rentals)
		item.Repairs = slices.Clone(item.Repairs)
		c.Inventory[i] = item
	}
	c.Normalize()
	return c
}

// PrependActivity records entry as the newest log line and trims the log
// to limit entries.
func (s *Snapshot) PrependActivity(entry ActivityLog, limit int) {
	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	s.ActivityLogs = append([]ActivityLog{entry}, s.ActivityLogs...)
	if len(s.ActivityLogs) > limit {
		s.ActivityLogs = s.ActivityLogs[:limit]
	}
}

func (s *Snapshot) FindBooking(id ID) int {
	return slices.IndexFunc(s.WeeklySchedule, func(b BookingRequest) bool { return b.ID == id })
}

func (s *Snapshot) FindItem(id ID) int {
	return slices.IndexFunc(s.Inventory, func(i InventoryItem) bool { return i.ID == id })
}

// FindRental locates a rental across all items.
func (s *Snapshot) FindRental(id ID) (item, rental int) {
	for i := range s.Inventory {
		if r := s.Inventory[i].FindRental(id); r >= 0 {
			return i, r
		}
	}
	return -1, -1
}

func (s *Snapshot) FindRepair(id ID) (item, repair int) {
	for i := range s.Inventory {
		if r := s.Inventory[i].FindRepair(id); r >= 0 {
			return i, r
		}
	}
	return -1, -1
}

func (s *Snapshot) FindRequest(id ID) int {
	return slices.IndexFunc(s.AdminRequests, func(r AdminRequest) bool { return r.ID == id })
}

func (s *Snapshot) FindAdmin(id string) int {
	return slices.IndexFunc(s.Admins, func(a Admin) bool { return a.ID == id })
}

func (s *Snapshot) HasLocation(name string) bool {
	return slices.Contains(s.Locations, name)
}
