package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusPaid      BookingStatus = "paid"
	StatusNoShow    BookingStatus = "no_show"
	StatusCompleted BookingStatus = "completed"
)

// AvailabilityBlockingStatuses mark bookings that occupy the staff member's
// calendar for slot generation. Completed bookings stay in this set so past
// days render correctly.
var AvailabilityBlockingStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
	StatusPaid,
	StatusCompleted,
}

// CreationBlockingStatuses is the narrower set checked at booking-creation
// time. Completed bookings are necessarily in the past and cannot collide
// with a future creation request, so they are left out. The two sets are
// intentionally distinct.
var CreationBlockingStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
	StatusPaid,
}

type BookingSource string

const (
	SourceTelegram BookingSource = "telegram"
	SourceDirect   BookingSource = "direct"
)

type Booking struct {
	ID         string               `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	BusinessID string               `json:"business_id" bson:"business_id" validate:"required,mongodb"`
	ServiceID  string               `json:"service_id" bson:"service_id" validate:"required,mongodb"`
	StaffID    string               `json:"staff_id" bson:"staff_id" validate:"required,mongodb"`
	ClientID   string               `json:"client_id,omitempty" bson:"client_id,omitempty" validate:"omitempty,mongodb"`
	StartAt    time.Time            `json:"start_at" bson:"start_at" validate:"required"`
	EndAt      time.Time            `json:"end_at" bson:"end_at" validate:"required,gtfield=StartAt"`
	Status     BookingStatus        `json:"status" bson:"status" validate:"required,oneof=pending confirmed paid no_show completed"`
	Source     BookingSource        `json:"source" bson:"source" validate:"required,oneof=telegram direct"`
	Notes      string               `json:"notes,omitempty" bson:"notes,omitempty" validate:"omitempty,max=2000"`
	TotalPrice primitive.Decimal128 `json:"total_price" bson:"total_price"`
	CreatedAt  time.Time            `json:"created_at" bson:"created_at" validate:"omitempty"`
}
