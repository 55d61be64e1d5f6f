package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	plotserrors "plotlease/internal/plots/errors"
	"plotlease/pkg/config"
	"plotlease/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	CollectionName = "Plots"
)

// PlotRepository resolves the leased resource. The engine only reads plots;
// plot management lives in another service.
type PlotRepository interface {
	FindByID(ctx context.Context, id string) (*model.Plot, error)
}

type mongoPlotRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoPlotRepository(cfg *config.Config) PlotRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoPlotRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

// FindByID resolves a live plot. Soft-deleted plots are treated as absent.
func (r *mongoPlotRepository) FindByID(ctx context.Context, id string) (*model.Plot, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", plotserrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID, "deleted_at": nil}

	var plot model.Plot
	err = r.collection.FindOne(ctx, filter).Decode(&plot)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, plotserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find plot: %w", err)
	}

	return &plot, nil
}

func (r *mongoPlotRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}
