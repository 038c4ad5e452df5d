package model

type Staff struct {
	ID         string `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	BusinessID string `json:"business_id" bson:"business_id" validate:"required,mongodb"`
	FullName   string `json:"full_name" bson:"full_name" validate:"required,min=2,max=255"`
	Role       string `json:"role" bson:"role" validate:"omitempty,max=100"`
	IsActive   bool   `json:"is_active" bson:"is_active"`
}
