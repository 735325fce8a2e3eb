package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvRedisAddr         = "REDIS_ADDR"
	EnvRedisPassword     = "REDIS_PASSWORD"
	EnvAvailabilityTTL   = "AVAILABILITY_CACHE_TTL"
	EnvRedisDialTimeout  = "REDIS_DIAL_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvJWTSecret = "JWT_SECRET"

	EnvEventsEnabled = "EVENTS_ENABLED"
	EnvEventsTopic   = "EVENTS_TOPIC"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvLockTTL = "TRANSITION_LOCK_TTL"

	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
)
