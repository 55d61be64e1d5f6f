package model

import (
	"time"

	"plotlease/pkg/interval"
)

// LeasingStatus is the lifecycle state of a leasing.
type LeasingStatus string

const (
	// StatusOpen is a tentative request, not yet confirmed by the owner.
	// Open leasings from different renters may overlap on the same plot.
	StatusOpen LeasingStatus = "OPEN"
	// StatusReserved is a confirmed leasing; exclusive over its range per plot.
	StatusReserved LeasingStatus = "RESERVED"
	// StatusRejected is terminal; set by the owner on an open request.
	StatusRejected LeasingStatus = "REJECTED"
	// StatusCancelled is terminal; reachable from both OPEN and RESERVED.
	StatusCancelled LeasingStatus = "CANCELLED"
)

// transitions is the full edge table of the leasing state machine. A missing
// entry means the edge is illegal. REJECTED is deliberately not reachable
// from RESERVED: once confirmed, only cancellation applies.
var transitions = map[LeasingStatus][]LeasingStatus{
	StatusOpen:     {StatusReserved, StatusRejected, StatusCancelled},
	StatusReserved: {StatusCancelled},
}

// CanTransition reports whether the edge from -> to is a legal lifecycle
// transition.
func CanTransition(from, to LeasingStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s LeasingStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusReserved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

func (s LeasingStatus) Terminal() bool {
	return len(transitions[s]) == 0 && s.Valid()
}

// Leasing ties a renter to a garden plot for a date range. OwnerID is
// denormalized from the plot at creation time so owner-scoped queries stay a
// single collection scan. DeletedAt is the soft-delete marker; every query
// in the repository excludes documents where it is set.
type Leasing struct {
	ID               string        `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	PlotID           string        `json:"plot_id" bson:"plot_id" validate:"required,mongodb"`
	UserID           string        `json:"user_id" bson:"user_id" validate:"required,mongodb"`
	OwnerID          string        `json:"owner_id" bson:"owner_id" validate:"required,mongodb"`
	From             time.Time     `json:"from" bson:"from" validate:"required"`
	To               time.Time     `json:"to" bson:"to" validate:"required"`
	Status           LeasingStatus `json:"status" bson:"status" validate:"required,oneof=OPEN RESERVED REJECTED CANCELLED"`
	PaymentSessionID string        `json:"payment_session_id,omitempty" bson:"payment_session_id,omitempty"`
	PriceCents       int64         `json:"price_cents" bson:"price_cents"`
	CreatedAt        time.Time     `json:"created_at" bson:"created_at" validate:"omitempty"`
	DeletedAt        *time.Time    `json:"deleted_at,omitempty" bson:"deleted_at,omitempty"`
}

// Interval returns the leased date range.
func (l *Leasing) Interval() interval.Interval {
	return interval.New(l.From, l.To)
}

// PeriodInDays is the inclusive day count of the leasing; the first and the
// last day both count.
func (l *Leasing) PeriodInDays() int {
	return l.Interval().Days()
}

// Deleted reports whether the leasing has been soft-deleted.
func (l *Leasing) Deleted() bool {
	return l.DeletedAt != nil
}

// Blocks reports whether this leasing prevents requesterID from booking an
// overlapping range on the same plot. A RESERVED leasing blocks everyone;
// an OPEN leasing only blocks its own creator from filing a duplicate.
func (l *Leasing) Blocks(requesterID string) bool {
	switch l.Status {
	case StatusReserved:
		return true
	case StatusOpen:
		return l.UserID == requesterID
	}
	return false
}
