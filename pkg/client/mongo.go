package client

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"plotlease/pkg/logger"
)

type MongoClient struct {
	Client *mongo.Client
}

func NewMongoClient(log *logger.Logger, mongoURI string, connTimeout time.Duration) *MongoClient {
	ctx, cancel := context.WithTimeout(context.Background(), connTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		log.Fatal("Failed to ping MongoDB", "error", err)
	}

	log.Info("Successfully connected to MongoDB")
	return &MongoClient{Client: client}
}

// Ping verifies the connection is still healthy; used by readiness checks.
func (m *MongoClient) Ping(ctx context.Context) error {
	return m.Client.Ping(ctx, readpref.Primary())
}
