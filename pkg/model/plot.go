package model

import "time"

// Plot is the leasable garden-field resource. The engine only consults its
// identity, its owner and the soft-delete flag; the size and price fields
// feed the derived price quote on a leasing.
type Plot struct {
	ID         string     `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	OwnerID    string     `json:"owner_id" bson:"owner_id" validate:"required,mongodb"`
	Name       string     `json:"name" bson:"name" validate:"required,min=1,max=100"`
	SizeM2     float64    `json:"size_m2" bson:"size_m2" validate:"omitempty,gt=0"`
	PricePerM2 float64    `json:"price_per_m2" bson:"price_per_m2" validate:"omitempty,gte=0"`
	CreatedAt  time.Time  `json:"created_at" bson:"created_at" validate:"omitempty"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty" bson:"deleted_at,omitempty"`
}

func (p *Plot) Deleted() bool {
	return p.DeletedAt != nil
}

// QuoteCents derives the leasing price in cents for an inclusive day count:
// size in m2 times price per m2 times days, expressed in cents.
func (p *Plot) QuoteCents(days int) int64 {
	return int64(p.SizeM2 * p.PricePerM2 * float64(days) * 100)
}
