package kafka_middleware

import (
	"context"
	"sync/atomic"
	"time"

	"pgstay/pkg/kafka"
)

// Metrics holds in-process counters for publish operations.
type Metrics struct {
	MessagesPublished       int64
	MessagesPublishedFailed int64
	PublishDurationTotal    int64 // nanoseconds
}

var globalMetrics = &Metrics{}

func GetMetrics() *Metrics {
	return globalMetrics
}

// Reset zeroes all counters. Useful in tests.
func (m *Metrics) Reset() {
	atomic.StoreInt64(&m.MessagesPublished, 0)
	atomic.StoreInt64(&m.MessagesPublishedFailed, 0)
	atomic.StoreInt64(&m.PublishDurationTotal, 0)
}

func (m *Metrics) Published() int64 {
	return atomic.LoadInt64(&m.MessagesPublished)
}

func (m *Metrics) PublishedFailed() int64 {
	return atomic.LoadInt64(&m.MessagesPublishedFailed)
}

// MetricsProducerMiddleware records publish counts and latency.
func MetricsProducerMiddleware() kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()

		err := next(ctx, msg)

		atomic.AddInt64(&globalMetrics.PublishDurationTotal, int64(time.Since(start)))
		if err != nil {
			atomic.AddInt64(&globalMetrics.MessagesPublishedFailed, 1)
		} else {
			atomic.AddInt64(&globalMetrics.MessagesPublished, 1)
		}

		return err
	}
}
