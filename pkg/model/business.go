package model

import "time"

// Business is the tenant owning staff, services and bookings. Its timezone is
// data, not configuration: every schedule entry for the business is interpreted
// in this location.
type Business struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name      string    `json:"name" bson:"name" validate:"required,min=2,max=255"`
	Timezone  string    `json:"timezone" bson:"timezone" validate:"required,timezone"`
	Currency  string    `json:"currency" bson:"currency" validate:"required,len=3"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}
