package testutil

import (
	"context"
	"testing"
	"time"

	"plotlease/pkg/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DefaultMongoURI            = "mongodb://localhost:27017"
	DefaultDatabaseName        = "plotlease"
	ConnectionTimeout          = 10 * time.Second
	LeasingsCollection         = "Leasings"
	PlotsCollection            = "Plots"
	ReservationGuardCollection = "Reservation_guards"
)

// MongoHelper provides MongoDB test utilities
type MongoHelper struct {
	Client   *mongo.Client
	Database *mongo.Database
	DBName   string
}

// NewMongoHelper creates a new MongoDB test helper
func NewMongoHelper(t *testing.T, mongoURI, dbName string) *MongoHelper {
	t.Helper()

	if mongoURI == "" {
		mongoURI = DefaultMongoURI
	}
	if dbName == "" {
		dbName = DefaultDatabaseName
	}

	ctx, cancel := context.WithTimeout(context.Background(), ConnectionTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		t.Fatalf("failed to connect to MongoDB: %v", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		t.Fatalf("failed to ping MongoDB: %v", err)
	}

	return &MongoHelper{
		Client:   client,
		Database: client.Database(dbName),
		DBName:   dbName,
	}
}

// Close closes MongoDB connection
func (m *MongoHelper) Close(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := m.Client.Disconnect(ctx); err != nil {
		t.Logf("warning: failed to disconnect from MongoDB: %v", err)
	}
}

// CleanDatabase drops all collections to ensure clean state
func (m *MongoHelper) CleanDatabase(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	collections, err := m.Database.ListCollectionNames(ctx, map[string]interface{}{})
	if err != nil {
		t.Fatalf("failed to list collections: %v", err)
	}

	for _, collName := range collections {
		// Skip system collections and migrations
		if collName == "_migrations" || collName == "system.indexes" {
			continue
		}

		if _, err := m.Database.Collection(collName).DeleteMany(ctx, map[string]interface{}{}); err != nil {
			t.Fatalf("failed to clean collection %s: %v", collName, err)
		}
	}
}

// CountDocuments returns the number of documents in a collection
func (m *MongoHelper) CountDocuments(t *testing.T, collectionName string) int64 {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	count, err := m.Database.Collection(collectionName).CountDocuments(ctx, map[string]interface{}{})
	if err != nil {
		t.Fatalf("failed to count documents in %s: %v", collectionName, err)
	}
	return count
}

// InsertPlot inserts a plot fixture and returns its hex id
func (m *MongoHelper) InsertPlot(t *testing.T, plot *model.Plot) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := m.Database.Collection(PlotsCollection).InsertOne(ctx, plot)
	if err != nil {
		t.Fatalf("failed to insert plot fixture: %v", err)
	}
	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		t.Fatalf("unexpected inserted id type %T", result.InsertedID)
	}
	return oid.Hex()
}

// InsertLeasing inserts a leasing document directly and returns its hex id.
// Useful for seeding states the API cannot produce, like soft-deleted rows.
func (m *MongoHelper) InsertLeasing(t *testing.T, leasing *model.Leasing) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := m.Database.Collection(LeasingsCollection).InsertOne(ctx, leasing)
	if err != nil {
		t.Fatalf("failed to insert leasing fixture: %v", err)
	}
	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		t.Fatalf("unexpected inserted id type %T", result.InsertedID)
	}
	return oid.Hex()
}

// FindLeasing loads a leasing document directly from the store
func (m *MongoHelper) FindLeasing(t *testing.T, id string) *model.Leasing {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		t.Fatalf("invalid leasing id %q: %v", id, err)
	}

	var leasing model.Leasing
	err = m.Database.Collection(LeasingsCollection).
		FindOne(ctx, map[string]interface{}{"_id": objectID}).
		Decode(&leasing)
	if err != nil {
		t.Fatalf("failed to load leasing %s: %v", id, err)
	}
	return &leasing
}

// GetCollection returns a collection for direct access
func (m *MongoHelper) GetCollection(collectionName string) *mongo.Collection {
	return m.Database.Collection(collectionName)
}
