package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	leasingserrors "plotlease/internal/leasings/errors"
	"plotlease/pkg/config"
	mongotx "plotlease/pkg/db/mongo"
	"plotlease/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Leasings"
)

// Scope selects which reference field a listing query matches on.
type Scope string

const (
	ScopePlot   Scope = "plot"
	ScopeRenter Scope = "renter"
	ScopeOwner  Scope = "owner"
)

// Field maps the scope to its document field.
func (s Scope) Field() string {
	switch s {
	case ScopePlot:
		return "plot_id"
	case ScopeRenter:
		return "user_id"
	case ScopeOwner:
		return "owner_id"
	}
	return ""
}

func (s Scope) Valid() bool {
	return s.Field() != ""
}

// Bucket places a leasing relative to a reference instant.
type Bucket string

const (
	BucketPast    Bucket = "past"
	BucketOngoing Bucket = "ongoing"
	BucketFuture  Bucket = "future"
)

func (b Bucket) Valid() bool {
	switch b {
	case BucketPast, BucketOngoing, BucketFuture:
		return true
	}
	return false
}

// ListFilter is the optional-predicate set of a scoped listing query. A zero
// field means the predicate is omitted entirely, never a null comparison.
// Now anchors the temporal bucket and must be supplied when Bucket is set.
type ListFilter struct {
	Statuses []model.LeasingStatus
	From     *time.Time
	To       *time.Time
	Bucket   Bucket
	Now      time.Time
}

type mongoLeasingRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type LeasingRepository interface {
	Create(ctx context.Context, leasing *model.Leasing) error
	FindByID(ctx context.Context, id string) (*model.Leasing, error)
	UpdateStatus(ctx context.Context, id string, status model.LeasingStatus) error
	SoftDelete(ctx context.Context, id string, deletedAt time.Time) error
	FindOverlapCandidates(ctx context.Context, plotID string, from, to time.Time) ([]*model.Leasing, error)
	FindReservedByPlot(ctx context.Context, plotID string) ([]*model.Leasing, error)
	FindByScope(ctx context.Context, scope Scope, refID string, filter ListFilter, limit int, offset int64) ([]*model.Leasing, error)
	CountByScope(ctx context.Context, scope Scope, refID string, filter ListFilter) (int64, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoLeasingRepository(cfg *config.Config) LeasingRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoLeasingRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo.Client),
	}
}

// withTimeout wraps the context with a timeout if not already in a transaction.
// When inside a transaction (SessionContext), returns the original context
// unchanged with a no-op cancel function, as wrapping a SessionContext would
// break transaction semantics.
func (r *mongoLeasingRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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

func (r *mongoLeasingRepository) Create(ctx context.Context, leasing *model.Leasing) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	leasing.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, leasing)
	if err != nil {
		return fmt.Errorf("failed to create leasing: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		leasing.ID = oid.Hex()
	}
	return nil
}

func (r *mongoLeasingRepository) FindByID(ctx context.Context, id string) (*model.Leasing, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", leasingserrors.ErrInvalidID, id)
	}

	filter := notDeleted(bson.M{"_id": objectID})

	var leasing model.Leasing
	err = r.collection.FindOne(ctx, filter).Decode(&leasing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, leasingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find leasing: %w", err)
	}

	return &leasing, nil
}

func (r *mongoLeasingRepository) UpdateStatus(ctx context.Context, id string, status model.LeasingStatus) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", leasingserrors.ErrInvalidID, id)
	}

	filter := notDeleted(bson.M{"_id": objectID})
	update := bson.M{"$set": bson.M{"status": status}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update leasing status: %w", err)
	}

	if result.MatchedCount == 0 {
		return leasingserrors.ErrNotFound
	}

	return nil
}

// SoftDelete marks the leasing deleted; the document stays in the collection
// but vanishes from every repository query.
func (r *mongoLeasingRepository) SoftDelete(ctx context.Context, id string, deletedAt time.Time) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", leasingserrors.ErrInvalidID, id)
	}

	filter := notDeleted(bson.M{"_id": objectID})
	update := bson.M{"$set": bson.M{"deleted_at": deletedAt}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to delete leasing: %w", err)
	}

	if result.MatchedCount == 0 {
		return leasingserrors.ErrNotFound
	}

	return nil
}

// FindOverlapCandidates returns every live leasing on the plot whose range
// intersects [from, to). This is a pre-filter by plot and range only; the
// caller applies the status predicate.
func (r *mongoLeasingRepository) FindOverlapCandidates(ctx context.Context, plotID string, from, to time.Time) ([]*model.Leasing, error) {
	if !to.After(from) {
		return nil, fmt.Errorf("%w: %s - %s", leasingserrors.ErrInvalidTimeRange,
			from.Format(time.RFC3339), to.Format(time.RFC3339))
	}

	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := overlapFilter(plotID, from, to)

	opts := options.Find().SetSort(sortOrder())

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find overlap candidates: %w", err)
	}
	defer cursor.Close(ctx)

	var leasings []*model.Leasing
	if err = cursor.All(ctx, &leasings); err != nil {
		return nil, fmt.Errorf("failed to decode overlap candidates: %w", err)
	}

	return leasings, nil
}

func (r *mongoLeasingRepository) FindReservedByPlot(ctx context.Context, plotID string) ([]*model.Leasing, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := notDeleted(bson.M{
		"plot_id": plotID,
		"status":  model.StatusReserved,
	})

	opts := options.Find().SetSort(sortOrder())

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find reserved leasings: %w", err)
	}
	defer cursor.Close(ctx)

	var leasings []*model.Leasing
	if err = cursor.All(ctx, &leasings); err != nil {
		return nil, fmt.Errorf("failed to decode reserved leasings: %w", err)
	}

	return leasings, nil
}

func (r *mongoLeasingRepository) FindByScope(ctx context.Context, scope Scope, refID string, filter ListFilter, limit int, offset int64) ([]*model.Leasing, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	query, err := buildScopeFilter(scope, refID, filter)
	if err != nil {
		return nil, err
	}

	opts := options.Find().
		SetSort(sortOrder()).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find leasings: %w", err)
	}
	defer cursor.Close(ctx)

	var leasings []*model.Leasing
	if err = cursor.All(ctx, &leasings); err != nil {
		return nil, fmt.Errorf("failed to decode leasings: %w", err)
	}

	return leasings, nil
}

func (r *mongoLeasingRepository) CountByScope(ctx context.Context, scope Scope, refID string, filter ListFilter) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	query, err := buildScopeFilter(scope, refID, filter)
	if err != nil {
		return 0, err
	}

	count, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to count leasings: %w", err)
	}
	return count, nil
}

func (r *mongoLeasingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

// notDeleted adds the uniform soft-delete predicate to a filter. Every query
// in this repository goes through it.
func notDeleted(filter bson.M) bson.M {
	filter["deleted_at"] = nil
	return filter
}

// overlapFilter matches live leasings on the plot whose range intersects
// [from, to). Soft-deleted documents never count as candidates.
func overlapFilter(plotID string, from, to time.Time) bson.M {
	return notDeleted(bson.M{
		"plot_id": plotID,
		"from":    bson.M{"$lt": to},
		"to":      bson.M{"$gt": from},
	})
}

// sortOrder is the deterministic listing order: from ascending, ties broken
// by id so pagination stays stable.
func sortOrder() bson.D {
	return bson.D{{Key: "from", Value: 1}, {Key: "_id", Value: 1}}
}

// buildScopeFilter composes the optional predicates of a scoped listing. A
// predicate whose parameter is absent is omitted entirely.
func buildScopeFilter(scope Scope, refID string, filter ListFilter) (bson.M, error) {
	if !scope.Valid() {
		return nil, fmt.Errorf("unknown listing scope: %s", scope)
	}

	query := notDeleted(bson.M{scope.Field(): refID})

	if len(filter.Statuses) > 0 {
		query["status"] = bson.M{"$in": filter.Statuses}
	}

	// Range containment, not overlap: the leasing must start no earlier than
	// From and end no later than To.
	if filter.From != nil {
		query["from"] = bson.M{"$gte": *filter.From}
	}
	if filter.To != nil {
		query["to"] = bson.M{"$lte": *filter.To}
	}

	if filter.Bucket != "" {
		if !filter.Bucket.Valid() {
			return nil, fmt.Errorf("unknown temporal bucket: %s", filter.Bucket)
		}
		now := filter.Now
		switch filter.Bucket {
		case BucketPast:
			query["to"] = mergeRange(query["to"], bson.M{"$lt": now})
		case BucketOngoing:
			query["from"] = mergeRange(query["from"], bson.M{"$lte": now})
			query["to"] = mergeRange(query["to"], bson.M{"$gte": now})
		case BucketFuture:
			query["from"] = mergeRange(query["from"], bson.M{"$gt": now})
		}
	}

	return query, nil
}

// mergeRange folds a bucket bound into an existing range predicate on the
// same field, so from/to filters and buckets compose conjunctively.
func mergeRange(existing any, extra bson.M) bson.M {
	merged, ok := existing.(bson.M)
	if !ok {
		return extra
	}
	for op, v := range extra {
		merged[op] = v
	}
	return merged
}
