package model

import "time"

// SlotQuery asks for free slots for one staff member on one calendar day.
// StepMinutes zero means "use the configured default".
type SlotQuery struct {
	BusinessID  string `json:"business_id" validate:"required,mongodb"`
	ServiceID   string `json:"service_id" validate:"required,mongodb"`
	StaffID     string `json:"staff_id" validate:"required,mongodb"`
	Day         string `json:"day" validate:"required,datetime=2006-01-02"`
	StepMinutes int    `json:"step_minutes,omitempty" validate:"omitempty,min=5,max=60"`
}

// Slot is one bookable candidate interval, exactly the service duration long.
type Slot struct {
	StartAt time.Time `json:"start_at"`
	EndAt   time.Time `json:"end_at"`
}

// BookingRequest is the booking-creation payload. The end instant is never
// accepted from the client; it is computed from the service duration.
type BookingRequest struct {
	BusinessID string        `json:"business_id" validate:"required,mongodb"`
	ServiceID  string        `json:"service_id" validate:"required,mongodb"`
	StaffID    string        `json:"staff_id" validate:"required,mongodb"`
	ClientID   string        `json:"client_id,omitempty" validate:"omitempty,mongodb"`
	StartAt    time.Time     `json:"start_at" validate:"required"`
	Source     BookingSource `json:"source,omitempty" validate:"omitempty,oneof=telegram direct"`
	Notes      string        `json:"notes,omitempty" validate:"omitempty,max=2000"`
}
