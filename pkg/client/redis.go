package client

import (
	"context"
	"time"

	"pgstay/pkg/logger"

	"github.com/redis/go-redis/v9"
)

func (c *Client) SetRedis(log *logger.Logger, addr, password string, dialTimeout time.Duration) {
	rc := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DialTimeout: dialTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	if err := rc.Ping(ctx).Err(); err != nil {
		log.Fatal("Failed to ping Redis", "error", err, "addr", addr)
	}

	log.Info("Successfully connected to Redis", "addr", addr)
	c.Redis = rc
	c.log = log
}
