package client

import (
	"context"
	"time"

	"pgstay/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// Client bundles the external connections the service holds for its
// lifetime. Setters fail fast: a backend that cannot be reached at startup
// is a configuration problem, not a runtime condition.
type Client struct {
	Mongo *mongo.Client
	Redis *redis.Client

	log *logger.Logger
}

func NewClient() *Client {
	return &Client{}
}

func (c *Client) GracefulShutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if c.Mongo != nil {
		if err := c.Mongo.Disconnect(ctx); err != nil && c.log != nil {
			c.log.Error("Failed to disconnect MongoDB", "error", err)
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil && c.log != nil {
			c.log.Error("Failed to close Redis connection", "error", err)
		}
	}
}
