package model

import (
	"time"

	"gymdesk/pkg/dates"
)

type Weekday string

const (
	Monday    Weekday = "월요일"
	Tuesday   Weekday = "화요일"
	Wednesday Weekday = "수요일"
	Thursday  Weekday = "목요일"
	Friday    Weekday = "금요일"
)

var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday}

// weekdayByIndex follows time.Weekday: Sunday is 0.
var weekdayByIndex = [...]Weekday{"", Monday, Tuesday, Wednesday, Thursday, Friday, ""}

// WeekdayOf returns the school weekday of d. Weekends have none.
func WeekdayOf(d dates.Date) (Weekday, bool) {
	if d.IsZero() {
		return "", false
	}
	w := weekdayByIndex[d.Weekday()]
	return w, w != ""
}

func (w Weekday) Valid() bool {
	for _, known := range Weekdays {
		if w == known {
			return true
		}
	}
	return false
}

// Index maps Monday..Friday to time.Monday..time.Friday.
func (w Weekday) Index() time.Weekday {
	for i, known := range weekdayByIndex {
		if known != "" && known == w {
			return time.Weekday(i)
		}
	}
	return -1
}

type Period string

const (
	Period1 Period = "1교시"
	Period2 Period = "2교시"
	Period3 Period = "3교시"
	Period4 Period = "4교시"
	Lunch   Period = "점심시간"
	Period5 Period = "5교시"
	Period6 Period = "6교시"
)

// Periods lists the day in timetable order.
var Periods = []Period{Period1, Period2, Period3, Period4, Lunch, Period5, Period6}

var periodTimes = map[Period]string{
	Period1: "09:00-09:40",
	Period2: "09:50-10:30",
	Period3: "10:40-11:20",
	Period4: "11:30-12:10",
	Lunch:   "12:10-13:00",
	Period5: "13:00-13:40",
	Period6: "13:50-14:30",
}

func (p Period) Valid() bool {
	_, ok := periodTimes[p]
	return ok
}

func (p Period) Time() string {
	return periodTimes[p]
}

type Facility string

const (
	Gymnasium  Facility = "체육관"
	IndoorGym  Facility = "실내 체육실"
	Playground Facility = "운동장"
)

var Facilities = []Facility{Gymnasium, IndoorGym, Playground}

func (f Facility) Valid() bool {
	for _, known := range Facilities {
		if f == known {
			return true
		}
	}
	return false
}

// BaseScheduleEntry is the recurring weekly owner of a facility period.
type BaseScheduleEntry struct {
	Day      Weekday  `json:"day" bson:"day" validate:"required,weekday" yaml:"day"`
	Period   Period   `json:"period" bson:"period" validate:"required,period" yaml:"period"`
	Location Facility `json:"location" bson:"location" validate:"required,facility" yaml:"location"`
	Class    string   `json:"class" bson:"class" validate:"required,min=1,max=50" yaml:"class"`
}

// Slot is the unit of scheduling contention.
type Slot struct {
	Date     dates.Date `json:"date"`
	Period   Period     `json:"period"`
	Location Facility   `json:"location"`
}

func (s Slot) String() string {
	return s.Date.String() + " " + string(s.Period) + " " + string(s.Location)
}

// BookingRequest is a one-off, date-specific request for a slot.
type BookingRequest struct {
	ID       ID            `json:"id" bson:"_id" validate:"required"`
	Date     dates.Date    `json:"date" bson:"date" validate:"required"`
	Period   Period        `json:"period" bson:"period" validate:"required,period"`
	Location Facility      `json:"location" bson:"location" validate:"required,facility"`
	Class    string        `json:"class" bson:"class" validate:"required,min=1,max=50,notdate"`
	Status   BookingStatus `json:"status" bson:"status" validate:"required,enum"`
}

func (b BookingRequest) Slot() Slot {
	return Slot{Date: b.Date, Period: b.Period, Location: b.Location}
}

func (b BookingRequest) Occupies(s Slot) bool {
	return b.Date == s.Date && b.Period == s.Period && b.Location == s.Location
}

func (e BaseScheduleEntry) Covers(s Slot) bool {
	day, ok := WeekdayOf(s.Date)
	return ok && e.Day == day && e.Period == s.Period && e.Location == s.Location
}
