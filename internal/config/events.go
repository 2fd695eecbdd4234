package config

import (
	"log/slog"
	"strings"

	"github.com/nexora-edu/learning-service/internal/events"
)

// EventConfig holds configuration for event publishing
type EventConfig struct {
	Enabled      bool
	KafkaBrokers string
	Topic        string
}

// GetKafkaBrokers returns Kafka brokers as a slice
func (c *EventConfig) GetKafkaBrokers() []string {
	return strings.Split(c.KafkaBrokers, ",")
}

// CreatePublisher wires an event publisher from configuration, falling back
// to the in-memory mock when publishing is disabled.
func (c *EventConfig) CreatePublisher(logger *slog.Logger) (events.Publisher, error) {
	if !c.Enabled {
		logger.Info("Event publishing disabled, using mock publisher")
		return events.NewMockPublisher(), nil
	}

	logger.Info("Creating Kafka event publisher",
		"brokers", c.KafkaBrokers,
		"topic", c.Topic)

	return events.NewKafkaPublisher(events.PublisherConfig{
		KafkaBrokers: c.GetKafkaBrokers(),
		Topic:        c.Topic,
		Logger:       logger,
	})
}
