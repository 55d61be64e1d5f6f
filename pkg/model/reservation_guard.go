package model

import "time"

// ReservationGuard is an advisory lock document taken while a leasing is
// being confirmed to RESERVED. Its _id is derived from the plot id, so a
// second confirmation racing on the same plot fails with a duplicate-key
// error instead of double-booking. ExpiresAt backs a TTL index that reaps
// guards leaked by crashed requests.
type ReservationGuard struct {
	ID        string    `bson:"_id" json:"id"`
	LeasingID string    `bson:"leasing_id" json:"leasing_id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
