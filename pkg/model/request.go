package model

import "gymdesk/pkg/dates"

// AdminRequest is a purchase request or bug report addressed to the admins.
type AdminRequest struct {
	ID        ID            `json:"id" bson:"_id" validate:"required"`
	Type      RequestType   `json:"type" bson:"type" validate:"required,enum"`
	Content   string        `json:"content" bson:"content" validate:"required,min=1,max=1000"`
	Requester string        `json:"requester" bson:"requester" validate:"required,max=50"`
	Status    RequestStatus `json:"status" bson:"status" validate:"required,enum"`
	Memo      string        `json:"memo" bson:"memo" validate:"max=500"`
	Date      dates.Date    `json:"date" bson:"date"`
}

// Admin is a user account. The id doubles as the class identifier that
// bookings and rentals are recorded under.
type Admin struct {
	ID           string `json:"id" bson:"_id" validate:"required,min=1,max=50"`
	Name         string `json:"name" bson:"name" validate:"required,min=1,max=50"`
	Role         Role   `json:"role" bson:"role" validate:"required,enum"`
	PasswordHash string `json:"-" bson:"password_hash"`
}
