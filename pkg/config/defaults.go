package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "pgstay"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultRedisAddr        = "localhost:6379"
	DefaultAvailabilityTTL  = 30 * time.Second
	DefaultRedisDialTimeout = 5 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultEventsTopic = "pgstay.bookings"

	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultLockTTL = 10 * time.Second

	DefaultIdempotencyTTL = 24 * time.Hour

	DefaultPaginationLimit = 100
)
