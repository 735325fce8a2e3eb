package kafka

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Message is a Kafka message plus the metadata headers every event in
// this system carries.
type Message struct {
	Key       string
	Value     []byte
	Headers   map[string]string
	Topic     string
	Timestamp time.Time
}

const (
	HeaderEventID       = "event-id"
	HeaderEventType     = "event-type"
	HeaderCorrelationID = "correlation-id"
	HeaderSource        = "source"
	HeaderTimestamp     = "timestamp"
)

// MessageBuilder provides a fluent interface for building messages.
type MessageBuilder struct {
	msg Message
}

func NewMessage() *MessageBuilder {
	return &MessageBuilder{
		msg: Message{
			Headers:   make(map[string]string),
			Timestamp: time.Now(),
		},
	}
}

// WithKey sets the partition key.
func (mb *MessageBuilder) WithKey(key string) *MessageBuilder {
	mb.msg.Key = key
	return mb
}

// WithValue JSON-encodes the payload.
func (mb *MessageBuilder) WithValue(value any) *MessageBuilder {
	data, err := json.Marshal(value)
	if err != nil {
		mb.msg.Value = nil
		return mb
	}
	mb.msg.Value = data
	return mb
}

func (mb *MessageBuilder) WithHeader(key, value string) *MessageBuilder {
	mb.msg.Headers[key] = value
	return mb
}

func (mb *MessageBuilder) WithEventType(eventType string) *MessageBuilder {
	mb.msg.Headers[HeaderEventType] = eventType
	return mb
}

func (mb *MessageBuilder) WithCorrelationID(correlationID string) *MessageBuilder {
	if correlationID != "" {
		mb.msg.Headers[HeaderCorrelationID] = correlationID
	}
	return mb
}

func (mb *MessageBuilder) WithSource(source string) *MessageBuilder {
	mb.msg.Headers[HeaderSource] = source
	return mb
}

// Build returns the constructed message with event id and timestamp
// headers guaranteed present.
func (mb *MessageBuilder) Build() Message {
	if mb.msg.Headers[HeaderEventID] == "" {
		mb.msg.Headers[HeaderEventID] = uuid.NewString()
	}
	if mb.msg.Headers[HeaderTimestamp] == "" {
		mb.msg.Headers[HeaderTimestamp] = mb.msg.Timestamp.Format(time.RFC3339)
	}
	return mb.msg
}

func (m *Message) DecodeValue(v any) error {
	return json.Unmarshal(m.Value, v)
}

func (m *Message) GetEventID() string {
	return m.Headers[HeaderEventID]
}

func (m *Message) GetEventType() string {
	return m.Headers[HeaderEventType]
}

func (m *Message) GetCorrelationID() string {
	return m.Headers[HeaderCorrelationID]
}
