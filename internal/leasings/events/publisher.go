package events

import (
	"context"
	"time"

	"plotlease/pkg/kafka"
	"plotlease/pkg/logger"
	"plotlease/pkg/model"
)

// Event types carried on the leasing lifecycle topic.
const (
	TypeLeasingCreated       = "leasing.created"
	TypeLeasingStatusChanged = "leasing.status_changed"
	TypeLeasingDeleted       = "leasing.deleted"

	schemaVersion = "1"
	sourceService = "leasings"
)

// LeasingEvent is the payload shared by all lifecycle events. PrevStatus is
// only set on status changes.
type LeasingEvent struct {
	LeasingID  string     `json:"leasing_id"`
	PlotID     string     `json:"plot_id"`
	UserID     string     `json:"user_id"`
	OwnerID    string     `json:"owner_id"`
	From       time.Time  `json:"from"`
	To         time.Time  `json:"to"`
	Status     string     `json:"status"`
	PrevStatus string     `json:"prev_status,omitempty"`
	PriceCents int64      `json:"price_cents"`
	OccurredAt time.Time  `json:"occurred_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
}

// Publisher announces leasing lifecycle changes to downstream consumers
// (notifications, search indexing). Delivery is best-effort; a failed publish
// never rolls back the mutation it describes.
type Publisher interface {
	LeasingCreated(ctx context.Context, leasing *model.Leasing) error
	LeasingStatusChanged(ctx context.Context, leasing *model.Leasing, prev model.LeasingStatus) error
	LeasingDeleted(ctx context.Context, leasing *model.Leasing) error
}

type kafkaPublisher struct {
	producer *kafka.Producer
	log      *logger.Logger
}

func NewKafkaPublisher(producer *kafka.Producer, log *logger.Logger) Publisher {
	return &kafkaPublisher{
		producer: producer,
		log:      log,
	}
}

func (p *kafkaPublisher) LeasingCreated(ctx context.Context, leasing *model.Leasing) error {
	return p.publish(ctx, TypeLeasingCreated, leasing, "")
}

func (p *kafkaPublisher) LeasingStatusChanged(ctx context.Context, leasing *model.Leasing, prev model.LeasingStatus) error {
	return p.publish(ctx, TypeLeasingStatusChanged, leasing, prev)
}

func (p *kafkaPublisher) LeasingDeleted(ctx context.Context, leasing *model.Leasing) error {
	return p.publish(ctx, TypeLeasingDeleted, leasing, "")
}

func (p *kafkaPublisher) publish(ctx context.Context, eventType string, leasing *model.Leasing, prev model.LeasingStatus) error {
	event := LeasingEvent{
		LeasingID:  leasing.ID,
		PlotID:     leasing.PlotID,
		UserID:     leasing.UserID,
		OwnerID:    leasing.OwnerID,
		From:       leasing.From,
		To:         leasing.To,
		Status:     string(leasing.Status),
		PrevStatus: string(prev),
		PriceCents: leasing.PriceCents,
		OccurredAt: time.Now().UTC(),
		DeletedAt:  leasing.DeletedAt,
	}

	// Keyed by plot so all events of one plot stay in partition order.
	msg := kafka.NewMessage().
		WithKey(leasing.PlotID).
		WithValue(event).
		WithEventID("").
		WithEventType(eventType).
		WithSchemaVersion(schemaVersion).
		WithSource(sourceService).
		Build()

	return p.producer.Publish(ctx, msg)
}

// noopPublisher drops every event; used when no brokers are configured.
type noopPublisher struct{}

func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) LeasingCreated(context.Context, *model.Leasing) error { return nil }

func (noopPublisher) LeasingStatusChanged(context.Context, *model.Leasing, model.LeasingStatus) error {
	return nil
}

func (noopPublisher) LeasingDeleted(context.Context, *model.Leasing) error { return nil }
