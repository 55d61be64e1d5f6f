package repository

import (
	"context"

	"plotlease/pkg/clock"
	"plotlease/pkg/config"
	"plotlease/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ReservationGuardRepository provides operations for the advisory guard taken
// while a leasing is confirmed to RESERVED.
type ReservationGuardRepository interface {
	Create(ctx context.Context, guard *model.ReservationGuard) (*model.ReservationGuard, error)
	Delete(ctx context.Context, guardID string) error
}

type mongoReservationGuardRepository struct {
	collection *mongo.Collection
	clock      clock.Clock
}

func NewReservationGuardRepository(cfg *config.Config) ReservationGuardRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoReservationGuardRepository{
		collection: db.Collection("Reservation_guards"),
		clock:      cfg.Clock,
	}
}

// Returns duplicate key error if a guard for the same plot already exists
func (r *mongoReservationGuardRepository) Create(ctx context.Context, guard *model.ReservationGuard) (*model.ReservationGuard, error) {
	guard.CreatedAt = r.clock.Now()

	_, err := r.collection.InsertOne(ctx, guard)
	if err != nil {
		return nil, err
	}

	return guard, nil
}

// Delete removes an advisory guard
func (r *mongoReservationGuardRepository) Delete(ctx context.Context, guardID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": guardID})
	return err
}
