package kafka_middleware

import (
	"context"
	"time"

	"pgstay/pkg/kafka"
	"pgstay/pkg/logger"
)

// LoggingProducerMiddleware logs every publish attempt with its outcome.
func LoggingProducerMiddleware(log *logger.Logger) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()

		err := next(ctx, msg)

		if err != nil {
			log.Error("Failed to publish event",
				"key", msg.Key,
				"event_id", msg.GetEventID(),
				"event_type", msg.GetEventType(),
				"duration_ms", time.Since(start).Milliseconds(),
				"error", err,
			)
			return err
		}

		log.Debug("Event published",
			"key", msg.Key,
			"event_id", msg.GetEventID(),
			"event_type", msg.GetEventType(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil
	}
}
