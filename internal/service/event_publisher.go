package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Buffden/Event-Management-System-sub005/internal/domain"
	"github.com/Buffden/Event-Management-System-sub005/pkg/kafka"
)

// FactPublisher defines the interface for publishing lifecycle facts
type FactPublisher interface {
	// PublishEventFact publishes an event lifecycle fact
	PublishEventFact(ctx context.Context, factType domain.LifecycleFactType, eventID, reason string) error

	// PublishTicketFact publishes a ticket lifecycle fact
	PublishTicketFact(ctx context.Context, factType domain.LifecycleFactType, ticket *domain.Ticket) error

	// Close closes the publisher
	Close() error
}

// KafkaFactPublisher implements FactPublisher using Kafka
type KafkaFactPublisher struct {
	producer    *kafka.Producer
	topic       string
	serviceName string
}

// FactPublisherConfig contains configuration for the fact publisher
type FactPublisherConfig struct {
	Brokers     []string
	Topic       string
	ServiceName string
	ClientID    string
}

// NewKafkaFactPublisher creates a new Kafka fact publisher
func NewKafkaFactPublisher(ctx context.Context, cfg *FactPublisherConfig) (*KafkaFactPublisher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("fact publisher config is required")
	}

	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}

	topic := cfg.Topic
	if topic == "" {
		topic = "event-lifecycle"
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "event-engine"
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "event-engine-producer"
	}

	producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
		Brokers:       cfg.Brokers,
		ClientID:      clientID,
		MaxRetries:    3,
		RetryInterval: 2 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &KafkaFactPublisher{
		producer:    producer,
		topic:       topic,
		serviceName: serviceName,
	}, nil
}

// PublishEventFact publishes an event lifecycle fact
func (p *KafkaFactPublisher) PublishEventFact(ctx context.Context, factType domain.LifecycleFactType, eventID, reason string) error {
	fact := domain.NewLifecycleFact(uuid.New().String(), factType, eventID)
	fact.Reason = reason
	return p.publish(ctx, fact)
}

// PublishTicketFact publishes a ticket lifecycle fact
func (p *KafkaFactPublisher) PublishTicketFact(ctx context.Context, factType domain.LifecycleFactType, ticket *domain.Ticket) error {
	fact := domain.NewLifecycleFact(uuid.New().String(), factType, ticket.EventID)
	fact.TicketID = ticket.ID
	fact.UserID = ticket.UserID
	fact.Reason = ticket.RevokeReason
	return p.publish(ctx, fact)
}

// Close closes the publisher
func (p *KafkaFactPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

func (p *KafkaFactPublisher) publish(ctx context.Context, fact *domain.LifecycleFact) error {
	headers := map[string]string{
		"fact_type": string(fact.Type),
		"fact_id":   fact.FactID,
		"source":    p.serviceName,
	}

	if err := p.producer.ProduceJSON(ctx, p.topic, fact.Key(), fact, headers); err != nil {
		return fmt.Errorf("failed to publish %s fact: %w", fact.Type, err)
	}
	return nil
}

// NoOpFactPublisher is a no-op implementation of FactPublisher used when
// Kafka is not configured and in tests
type NoOpFactPublisher struct{}

// NewNoOpFactPublisher creates a new no-op fact publisher
func NewNoOpFactPublisher() *NoOpFactPublisher {
	return &NoOpFactPublisher{}
}

// PublishEventFact is a no-op
func (p *NoOpFactPublisher) PublishEventFact(ctx context.Context, factType domain.LifecycleFactType, eventID, reason string) error {
	return nil
}

// PublishTicketFact is a no-op
func (p *NoOpFactPublisher) PublishTicketFact(ctx context.Context, factType domain.LifecycleFactType, ticket *domain.Ticket) error {
	return nil
}

// Close is a no-op
func (p *NoOpFactPublisher) Close() error {
	return nil
}

var _ FactPublisher = (*KafkaFactPublisher)(nil)
var _ FactPublisher = (*NoOpFactPublisher)(nil)
