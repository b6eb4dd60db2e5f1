package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/wareline/warehouse-receiving/pkg/logger"
)

// Publisher wraps a Kafka sync producer for the receiving audit stream.
// A nil Publisher is valid and drops every event, so the engine runs
// without a broker in development.
type Publisher struct {
	producer sarama.SyncProducer
	brokers  []string
}

// NewPublisher creates a new Kafka publisher
func NewPublisher(brokers []string) (*Publisher, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Retry.Max = 3
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Compression = sarama.CompressionSnappy

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	logger.Logger.Info().
		Strs("brokers", brokers).
		Msg("Kafka audit publisher initialized")

	return &Publisher{producer: producer, brokers: brokers}, nil
}

// PublishItemReceived publishes an item-received audit event.
func (p *Publisher) PublishItemReceived(ctx context.Context, event ItemReceivedEvent) error {
	event.EventType = EventTypeItemReceived
	if event.EventID == "" {
		event.EventID = newEventID()
	}
	event.Timestamp = time.Now()

	key := fmt.Sprintf("session_%d", event.SessionID)
	return p.publish(ctx, event.EventType, event.EventID, key, event)
}

// PublishQCDecision publishes a supervisor decision audit event.
func (p *Publisher) PublishQCDecision(ctx context.Context, event QCDecisionEvent) error {
	event.EventType = EventTypeQCDecision
	if event.EventID == "" {
		event.EventID = newEventID()
	}
	event.Timestamp = time.Now()

	key := fmt.Sprintf("session_%d", event.SessionID)
	return p.publish(ctx, event.EventType, event.EventID, key, event)
}

// PublishProductMapped publishes a product mapping audit event.
func (p *Publisher) PublishProductMapped(ctx context.Context, event ProductMappedEvent) error {
	event.EventType = EventTypeProductMapped
	if event.EventID == "" {
		event.EventID = newEventID()
	}
	event.Timestamp = time.Now()

	key := fmt.Sprintf("product_%d", event.ProductID)
	return p.publish(ctx, event.EventType, event.EventID, key, event)
}

func (p *Publisher) publish(ctx context.Context, eventType, eventID, key string, event any) error {
	if p == nil || p.producer == nil {
		return nil
	}

	tracer := otel.Tracer("kafka-publisher")
	ctx, span := tracer.Start(ctx, "kafka.publish."+eventType,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", TopicReceivingAudit),
			attribute.String("event.type", eventType),
			attribute.String("event.id", eventID),
		),
	)
	defer span.End()

	payload, err := json.Marshal(event)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to marshal event")
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	// Inject trace context into the message headers
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	headers := []sarama.RecordHeader{
		{Key: []byte("event_type"), Value: []byte(eventType)},
		{Key: []byte("event_id"), Value: []byte(eventID)},
	}
	for k, v := range carrier {
		headers = append(headers, sarama.RecordHeader{Key: []byte(k), Value: []byte(v)})
	}

	msg := &sarama.ProducerMessage{
		Topic:   TopicReceivingAudit,
		Key:     sarama.StringEncoder(key),
		Value:   sarama.ByteEncoder(payload),
		Headers: headers,
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to send message")
		logger.Logger.Error().
			Err(err).
			Str("topic", TopicReceivingAudit).
			Str("event_type", eventType).
			Msg("Failed to publish audit event")
		return fmt.Errorf("failed to send message to Kafka: %w", err)
	}

	span.SetAttributes(
		attribute.Int("messaging.kafka.partition", int(partition)),
		attribute.Int64("messaging.kafka.offset", offset),
	)
	return nil
}

// Close shuts the producer down.
func (p *Publisher) Close() error {
	if p == nil || p.producer == nil {
		return nil
	}
	return p.producer.Close()
}

func newEventID() string {
	return fmt.Sprintf("evt_%d", time.Now().UnixNano())
}
