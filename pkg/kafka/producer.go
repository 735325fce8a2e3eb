package kafka

import (
	"context"
	"fmt"
	"log"
	"sync"

	kafka_config "pgstay/pkg/kafka/config"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/compress"
)

// Producer wraps a kafka-go writer with a middleware chain.
type Producer struct {
	writer     *kafka.Writer
	topic      string
	middleware []ProducerMiddleware
	closed     bool
	mu         sync.RWMutex
}

// ProducerMiddleware intercepts publish operations.
type ProducerMiddleware func(ctx context.Context, msg Message, next func(ctx context.Context, msg Message) error) error

func NewProducer(cfg *kafka_config.Config, topic string) (*Producer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic cannot be empty")
	}

	var compression compress.Compression
	switch cfg.ProducerCompression {
	case "gzip":
		compression = compress.Gzip
	case "snappy":
		compression = compress.Snappy
	case "lz4":
		compression = compress.Lz4
	case "zstd":
		compression = compress.Zstd
	default:
		compression = compress.Snappy
	}

	var requiredAcks kafka.RequiredAcks
	switch cfg.ProducerRequireAcks {
	case 0:
		requiredAcks = kafka.RequireNone
	case 1:
		requiredAcks = kafka.RequireOne
	default:
		requiredAcks = kafka.RequireAll
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{}, // hash by key keeps per-booking ordering
		RequiredAcks: requiredAcks,
		Compression:  compression,
		MaxAttempts:  cfg.ProducerMaxAttempts,
		BatchTimeout: cfg.ProducerBatchTimeout,
		Async:        cfg.ProducerAsync,
		Logger:       kafka.LoggerFunc(func(msg string, args ...any) {}),
		ErrorLogger:  kafka.LoggerFunc(log.Printf),
	}

	return &Producer{
		writer:     writer,
		topic:      topic,
		middleware: make([]ProducerMiddleware, 0),
	}, nil
}

// Use adds middleware to the producer.
func (p *Producer) Use(middleware ProducerMiddleware) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.middleware = append(p.middleware, middleware)
}

// Publish publishes a message through the middleware chain.
func (p *Producer) Publish(ctx context.Context, msg Message) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return ErrProducerClosed
	}
	p.mu.RUnlock()

	if msg.Key == "" {
		return ErrEmptyKey
	}
	if len(msg.Value) == 0 {
		return ErrEmptyValue
	}

	handler := p.publishInternal
	for i := len(p.middleware) - 1; i >= 0; i-- {
		middleware := p.middleware[i]
		next := handler
		handler = func(ctx context.Context, m Message) error {
			return middleware(ctx, m, next)
		}
	}

	return handler(ctx, msg)
}

func (p *Producer) publishInternal(ctx context.Context, msg Message) error {
	kafkaMsg := kafka.Message{
		Key:   []byte(msg.Key),
		Value: msg.Value,
		Time:  msg.Timestamp,
	}

	for k, v := range msg.Headers {
		kafkaMsg.Headers = append(kafkaMsg.Headers, kafka.Header{
			Key:   k,
			Value: []byte(v),
		})
	}

	return p.writer.WriteMessages(ctx, kafkaMsg)
}

// Close flushes and closes the underlying writer.
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	return p.writer.Close()
}
