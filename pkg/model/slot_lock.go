package model

import "time"

// SlotLock is an advisory lock serializing booking creation for one staff
// member and calendar day. The duplicate-key error on insert is the mutual
// exclusion; a TTL index on ExpiresAt reaps locks leaked by crashed requests.
type SlotLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
