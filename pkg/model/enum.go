package model

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

var ErrUnknownValue = errors.New("unknown enum value")

// Statuses and types are closed sets. The Korean strings exist only on the
// wire; inside the process the values are compared as integers.

type BookingStatus int

const (
	BookingPending BookingStatus = iota + 1
	BookingApproved
)

var bookingStatusNames = map[BookingStatus]string{
	BookingPending:  "대기",
	BookingApproved: "승인",
}

type RepairStatus int

const (
	RepairPending RepairStatus = iota + 1
	RepairInProgress
	RepairDone
)

var repairStatusNames = map[RepairStatus]string{
	RepairPending:    "대기",
	RepairInProgress: "수리중",
	RepairDone:       "완료",
}

type RequestStatus int

const (
	RequestPending RequestStatus = iota + 1
	RequestInProgress
	RequestDone
)

var requestStatusNames = map[RequestStatus]string{
	RequestPending:    "대기",
	RequestInProgress: "진행",
	RequestDone:       "완료",
}

type RequestType int

const (
	RequestPurchase RequestType = iota + 1
	RequestBug
)

var requestTypeNames = map[RequestType]string{
	RequestPurchase: "구매",
	RequestBug:      "버그",
}

type Role int

const (
	RolePending Role = iota + 1
	RoleTeacher
	RoleManager
	RoleMaster
)

var roleNames = map[Role]string{
	RolePending: "pending",
	RoleTeacher: "teacher",
	RoleManager: "manager",
	RoleMaster:  "master",
}

func (s BookingStatus) String() string { return enumName(s, bookingStatusNames) }
func (s RepairStatus) String() string  { return enumName(s, repairStatusNames) }
func (s RequestStatus) String() string { return enumName(s, requestStatusNames) }
func (t RequestType) String() string   { return enumName(t, requestTypeNames) }
func (r Role) String() string          { return enumName(r, roleNames) }

func (s BookingStatus) Valid() bool { return hasName(s, bookingStatusNames) }
func (s RepairStatus) Valid() bool  { return hasName(s, repairStatusNames) }
func (s RequestStatus) Valid() bool { return hasName(s, requestStatusNames) }
func (t RequestType) Valid() bool   { return hasName(t, requestTypeNames) }
func (r Role) Valid() bool          { return hasName(r, roleNames) }

// IsAdmin reports whether the role may act on every booking and ticket.
func (r Role) IsAdmin() bool { return r == RoleMaster || r == RoleManager }

func ParseBookingStatus(s string) (BookingStatus, error) {
	return parseEnum(s, bookingStatusNames, "booking status")
}

func ParseRepairStatus(s string) (RepairStatus, error) {
	return parseEnum(s, repairStatusNames, "repair status")
}

func ParseRequestStatus(s string) (RequestStatus, error) {
	return parseEnum(s, requestStatusNames, "request status")
}

func ParseRequestType(s string) (RequestType, error) {
	return parseEnum(s, requestTypeNames, "request type")
}

func ParseRole(s string) (Role, error) {
	return parseEnum(s, roleNames, "role")
}

func (s BookingStatus) MarshalText() ([]byte, error) { return marshalEnum(s, bookingStatusNames) }
func (s RepairStatus) MarshalText() ([]byte, error)  { return marshalEnum(s, repairStatusNames) }
func (s RequestStatus) MarshalText() ([]byte, error) { return marshalEnum(s, requestStatusNames) }
func (t RequestType) MarshalText() ([]byte, error)   { return marshalEnum(t, requestTypeNames) }
func (r Role) MarshalText() ([]byte, error)          { return marshalEnum(r, roleNames) }

func (s *BookingStatus) UnmarshalText(b []byte) (err error) {
	*s, err = ParseBookingStatus(string(b))
	return err
}

func (s *RepairStatus) UnmarshalText(b []byte) (err error) {
	*s, err = ParseRepairStatus(string(b))
	return err
}

func (s *RequestStatus) UnmarshalText(b []byte) (err error) {
	*s, err = ParseRequestStatus(string(b))
	return err
}

func (t *RequestType) UnmarshalText(b []byte) (err error) {
	*t, err = ParseRequestType(string(b))
	return err
}

func (r *Role) UnmarshalText(b []byte) (err error) {
	*r, err = ParseRole(string(b))
	return err
}

func (s BookingStatus) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(s.String())
}

func (s RepairStatus) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(s.String())
}

func (s RequestStatus) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(s.String())
}

func (t RequestType) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(t.String())
}

func (r Role) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(r.String())
}

func (s *BookingStatus) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	return unmarshalBSONText(t, data, s)
}

func (s *RepairStatus) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	return unmarshalBSONText(t, data, s)
}

func (s *RequestStatus) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	return unmarshalBSONText(t, data, s)
}

func (r *RequestType) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	return unmarshalBSONText(t, data, r)
}

func (r *Role) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	return unmarshalBSONText(t, data, r)
}

func enumName[T comparable](v T, names map[T]string) string {
	if name, ok := names[v]; ok {
		return name
	}
	return ""
}

func hasName[T comparable](v T, names map[T]string) bool {
	_, ok := names[v]
	return ok
}

func parseEnum[T comparable](s string, names map[T]string, kind string) (T, error) {
	for v, name := range names {
		if name == s {
			return v, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%w: %s %q", ErrUnknownValue, kind, s)
}

func marshalEnum[T comparable](v T, names map[T]string) ([]byte, error) {
	name, ok := names[v]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownValue, v)
	}
	return []byte(name), nil
}

type textUnmarshaler interface {
	UnmarshalText([]byte) error
}

func unmarshalBSONText(t bsontype.Type, data []byte, target textUnmarshaler) error {
	s, ok := bson.RawValue{Type: t, Value: data}.StringValueOK()
	if !ok {
		return fmt.Errorf("%w: expected bson string, got %s", ErrUnknownValue, t)
	}
	return target.UnmarshalText([]byte(s))
}
