package client

import (
	"context"
	"time"

	"plotlease/pkg/logger"
)

// Client bundles the shared outbound clients a service holds for its
// lifetime. Only the clients a service explicitly sets are non-nil.
type Client struct {
	Mongo *MongoClient
}

func New() *Client {
	return &Client{}
}

func (c *Client) SetMongo(log *logger.Logger, mongoURI string, connTimeout time.Duration) {
	c.Mongo = NewMongoClient(log, mongoURI, connTimeout)
}

func (c *Client) GracefulShutdown() {
	if c.Mongo == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = c.Mongo.Client.Disconnect(ctx)
}
