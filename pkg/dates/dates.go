// Package dates holds the civil calendar date used everywhere a booking,
// rental or log entry refers to a day. All parsing goes through Parse so a
// stored "2026-03-02T15:00:00.000Z" and a requested "2026-03-03" compare the
// way a teacher in Seoul expects.
package dates

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

const Layout = "2006-01-02"

// School is the time zone dates are resolved in. A fixed offset keeps the
// binary independent of the host tzdata.
var School = time.FixedZone("KST", 9*60*60)

var ErrInvalidDate = errors.New("invalid date")

// Date is a calendar day without a time of day. The zero value is "no date".
type Date struct {
	year  int
	month time.Month
	day   int
}

func New(year int, month time.Month, day int) Date {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return Date{year: t.Year(), month: t.Month(), day: t.Day()}
}

// Of returns the calendar date of t as seen in the school time zone.
func Of(t time.Time) Date {
	t = t.In(School)
	return Date{year: t.Year(), month: t.Month(), day: t.Day()}
}

func Today() Date {
	return Of(time.Now())
}

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Parse normalizes the date representations found in stored records:
// plain YYYY-MM-DD, YYYY/MM/DD and ISO datetimes. Datetimes are shifted
// into the school time zone before truncation.
func Parse(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, fmt.Errorf("%w: empty", ErrInvalidDate)
	}

	if len(s) == len(Layout) {
		normalized := strings.ReplaceAll(s, "/", "-")
		if t, err := time.Parse(Layout, normalized); err == nil {
			return Date{year: t.Year(), month: t.Month(), day: t.Day()}, nil
		}
	}

	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if layout == "2006-01-02T15:04:05" || layout == "2006-01-02 15:04:05" {
				return Date{year: t.Year(), month: t.Month(), day: t.Day()}, nil
			}
			return Of(t), nil
		}
	}

	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// MustParse is for tests and static tables.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) IsZero() bool {
	return d.year == 0 && d.month == 0 && d.day == 0
}

func (d Date) Time() time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, School)
}

func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

func (d Date) AddDays(n int) Date {
	return Of(d.Time().AddDate(0, 0, n))
}

// Monday returns the Monday of d's week. Sunday belongs to the week that
// ends with it.
func (d Date) Monday() Date {
	offset := int(d.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7
	}
	return d.AddDays(-offset)
}

func (d Date) Before(o Date) bool {
	return d.Time().Before(o.Time())
}

func (d Date) Compare(o Date) int {
	return d.Time().Compare(o.Time())
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.year, int(d.month), d.day)
}

var koreanDays = [...]string{"일", "월", "화", "수", "목", "금", "토"}

// Korean renders the date the way activity log entries spell it, e.g.
// "3월 2일 월요일".
func (d Date) Korean() string {
	return fmt.Sprintf("%d월 %d일 %s요일", int(d.month), d.day, koreanDays[d.Weekday()])
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(d.String())
}

func (d *Date) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bsontype.String:
		s, ok := bson.RawValue{Type: t, Value: data}.StringValueOK()
		if !ok {
			return fmt.Errorf("%w: malformed bson string", ErrInvalidDate)
		}
		return d.UnmarshalText([]byte(s))
	case bsontype.DateTime:
		ms, ok := bson.RawValue{Type: t, Value: data}.DateTimeOK()
		if !ok {
			return fmt.Errorf("%w: malformed bson datetime", ErrInvalidDate)
		}
		*d = Of(time.UnixMilli(ms))
		return nil
	case bsontype.Null, bsontype.Undefined:
		*d = Date{}
		return nil
	default:
		return fmt.Errorf("%w: unsupported bson type %s", ErrInvalidDate, t)
	}
}
