package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// Publisher defines the interface for emitting domain events
type Publisher interface {
	Publish(ctx context.Context, eventType EventType, data interface{}) error
	Close() error
}

// NewEvent builds the envelope for a payload
func NewEvent(eventType EventType, data interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    "learning-service",
		Data:      data,
	}
}

// KafkaPublisher emits events through Watermill's Kafka transport
type KafkaPublisher struct {
	publisher message.Publisher
	logger    *slog.Logger
	topic     string
}

type PublisherConfig struct {
	KafkaBrokers []string
	Topic        string
	Logger       *slog.Logger
}

func NewKafkaPublisher(config PublisherConfig) (*KafkaPublisher, error) {
	logger := watermill.NewSlogLogger(config.Logger)

	publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:   config.KafkaBrokers,
		Marshaler: kafka.DefaultMarshaler{},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka publisher: %w", err)
	}

	return &KafkaPublisher{
		publisher: publisher,
		logger:    config.Logger,
		topic:     config.Topic,
	}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, eventType EventType, data interface{}) error {
	event := NewEvent(eventType, data)

	eventBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(event.ID, eventBytes)
	msg.Metadata.Set("event_type", string(event.Type))
	msg.Metadata.Set("source", event.Source)
	msg.Metadata.Set("timestamp", event.Timestamp.Format(time.RFC3339))

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		p.logger.Error("Failed to publish event",
			"event_id", event.ID,
			"event_type", event.Type,
			"error", err)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Info("Published event",
		"event_id", event.ID,
		"event_type", event.Type,
		"topic", p.topic)

	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.publisher.Close()
}

// MockPublisher records events in memory; used when Kafka is disabled and in
// tests.
type MockPublisher struct {
	Events []Event
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{Events: make([]Event, 0)}
}

func (m *MockPublisher) Publish(ctx context.Context, eventType EventType, data interface{}) error {
	m.Events = append(m.Events, *NewEvent(eventType, data))
	return nil
}

func (m *MockPublisher) Close() error {
	return nil
}
