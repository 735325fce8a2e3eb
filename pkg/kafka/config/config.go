package kafka_config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the Kafka producer configuration.
type Config struct {
	Brokers []string

	ProducerMaxAttempts  int
	ProducerBatchTimeout time.Duration
	ProducerRequireAcks  int    // -1 = all, 0 = none, 1 = leader only
	ProducerCompression  string // "none", "gzip", "snappy", "lz4", "zstd"
	ProducerAsync        bool
}

// Load creates a Kafka config from environment variables.
func Load() *Config {
	brokersStr := getEnvStr(EnvKafkaBrokers, DefaultKafkaBrokers)
	brokers := strings.Split(brokersStr, ",")
	for i, broker := range brokers {
		brokers[i] = strings.TrimSpace(broker)
	}

	return &Config{
		Brokers: brokers,

		ProducerMaxAttempts:  getEnvInt(EnvKafkaProducerMaxAttempts, DefaultProducerMaxAttempts),
		ProducerBatchTimeout: getEnvDuration(EnvKafkaProducerBatchTimeout, DefaultProducerBatchTimeout),
		ProducerRequireAcks:  getEnvInt(EnvKafkaProducerRequireAcks, DefaultProducerRequireAcks),
		ProducerCompression:  getEnvStr(EnvKafkaProducerCompression, DefaultProducerCompression),
		ProducerAsync:        getEnvBool(EnvKafkaProducerAsync, DefaultProducerAsync),
	}
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
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
