package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"pgstay/pkg/client"
	"pgstay/pkg/logger"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	RedisAddr        string
	RedisPassword    string
	RedisDialTimeout time.Duration
	AvailabilityTTL  time.Duration

	Port string

	JWTSecret string

	EventsEnabled bool
	EventsTopic   string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// TransitionLockTTL bounds how long a crashed transition can hold a
	// booking's advisory lock.
	TransitionLockTTL time.Duration

	IdempotencyTTL time.Duration

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		RedisAddr:        getEnvStr(EnvRedisAddr, DefaultRedisAddr),
		RedisPassword:    getEnvStr(EnvRedisPassword, ""),
		RedisDialTimeout: getEnvDuration(EnvRedisDialTimeout, DefaultRedisDialTimeout),
		AvailabilityTTL:  getEnvDuration(EnvAvailabilityTTL, DefaultAvailabilityTTL),

		Port: getEnvStr(EnvPort, DefaultPort),

		JWTSecret: getEnvStr(EnvJWTSecret, ""),

		EventsEnabled: getEnvBool(EnvEventsEnabled, false),
		EventsTopic:   getEnvStr(EnvEventsTopic, DefaultEventsTopic),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		TransitionLockTTL: getEnvDuration(EnvLockTTL, DefaultLockTTL),

		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) SetRedis() {
	cfg.Client.SetRedis(cfg.Log, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDialTimeout)
}

func (cfg *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errs = append(errs, "MongoURI cannot be empty")
	} else if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errs = append(errs, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", cfg.MongoURI))
	}

	if cfg.MongoDatabaseName == "" {
		errs = append(errs, "MongoDatabaseName cannot be empty")
	}
	if cfg.MongoConnTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
	}

	if cfg.RedisAddr == "" {
		errs = append(errs, "RedisAddr cannot be empty")
	}
	if cfg.AvailabilityTTL <= 0 {
		errs = append(errs, fmt.Sprintf("AvailabilityTTL must be positive, got: %s", cfg.AvailabilityTTL))
	}

	if cfg.JWTSecret == "" {
		errs = append(errs, "JWTSecret cannot be empty")
	}

	if cfg.RateLimitRequests <= 0 {
		errs = append(errs, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.RateLimitWindow <= 0 {
		errs = append(errs, fmt.Sprintf("RateLimitWindow must be positive, got: %s", cfg.RateLimitWindow))
	}
	if cfg.RequestTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.MaxRequestSize <= 0 {
		errs = append(errs, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.ReadTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}
	if cfg.TransitionLockTTL <= 0 {
		errs = append(errs, fmt.Sprintf("TransitionLockTTL must be positive, got: %s", cfg.TransitionLockTTL))
	}

	if len(errs) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, e := range errs {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, e)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"redis_addr", cfg.RedisAddr,
		"availability_ttl", cfg.AvailabilityTTL,
		"port", cfg.Port,
		"jwt_secret_set", cfg.JWTSecret != "",
		"events_enabled", cfg.EventsEnabled,
		"events_topic", cfg.EventsTopic,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"transition_lock_ttl", cfg.TransitionLockTTL,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown()
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = 10
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
