package client

import (
	"context"
	"time"

	"pgstay/pkg/logger"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (c *Client) SetMongo(log *logger.Logger, mongoURI string, connTimeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), connTimeout)
	defer cancel()

	mc, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB",
			"error", err,
		)
	}

	if err := mc.Ping(ctx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB", "error", err)
	}

	log.Info("Successfully connected to MongoDB")
	c.Mongo = mc
	c.log = log
}
