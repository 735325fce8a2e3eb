package events

import (
	"context"
	"time"

	"pgstay/pkg/kafka"
	"pgstay/pkg/logger"
	"pgstay/pkg/middleware"
	"pgstay/pkg/model"
)

const (
	BookingCreated   = "booking.created"
	BookingConfirmed = "booking.confirmed"
	BookingCancelled = "booking.cancelled"
	BookingDeleted   = "booking.deleted"
)

// BookingEvent is the payload published for every booking lifecycle
// transition. Downstream consumers (dashboards, messaging) subscribe to
// these; nothing in this service reads them back.
type BookingEvent struct {
	BookingID  string              `json:"booking_id"`
	PropertyID string              `json:"property_id"`
	UserID     string              `json:"user_id"`
	RoomType   model.RoomType      `json:"room_type"`
	Status     model.BookingStatus `json:"status"`
	OccurredAt time.Time           `json:"occurred_at"`
}

// Publisher emits booking lifecycle events. Publishing is best-effort:
// implementations log failures and never fail the request that triggered
// the event.
type Publisher interface {
	BookingChanged(ctx context.Context, eventType string, booking *model.Booking)
	Close() error
}

type kafkaPublisher struct {
	producer *kafka.Producer
	source   string
	log      *logger.Logger
}

func NewKafkaPublisher(producer *kafka.Producer, source string, log *logger.Logger) Publisher {
	return &kafkaPublisher{
		producer: producer,
		source:   source,
		log:      log,
	}
}

func (p *kafkaPublisher) BookingChanged(ctx context.Context, eventType string, booking *model.Booking) {
	msg := kafka.NewMessage().
		WithKey(booking.ID).
		WithEventType(eventType).
		WithSource(p.source).
		WithCorrelationID(middleware.RequestIDFrom(ctx)).
		WithValue(BookingEvent{
			BookingID:  booking.ID,
			PropertyID: booking.PropertyID,
			UserID:     booking.UserID,
			RoomType:   booking.RoomType,
			Status:     booking.Status,
			OccurredAt: time.Now().UTC(),
		}).
		Build()

	if err := p.producer.Publish(ctx, msg); err != nil {
		p.log.Error("Failed to publish booking event",
			"event_type", eventType,
			"booking_id", booking.ID,
			"error", err,
		)
	}
}

func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}

type nopPublisher struct{}

// NewNopPublisher returns a publisher that drops everything. Used when
// event publishing is disabled.
func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) BookingChanged(context.Context, string, *model.Booking) {}

func (nopPublisher) Close() error { return nil }
