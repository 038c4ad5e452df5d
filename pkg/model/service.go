package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// Service is a bookable offering. DurationMinutes fixes the length of every
// booking made for it.
type Service struct {
	ID              string               `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	BusinessID      string               `json:"business_id" bson:"business_id" validate:"required,mongodb"`
	Name            string               `json:"name" bson:"name" validate:"required,min=2,max=255"`
	Price           primitive.Decimal128 `json:"price" bson:"price"`
	DurationMinutes int                  `json:"duration_minutes" bson:"duration_minutes" validate:"required,min=1"`
	IsActive        bool                 `json:"is_active" bson:"is_active"`
}
