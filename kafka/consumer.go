package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/pickerpack/fulfillment/pkg/logger"
)

// TaskCompletedHandler handles task completion events.
type TaskCompletedHandler func(ctx context.Context, event TaskCompletedEvent) error

// OrderPickedHandler handles order picked events.
type OrderPickedHandler func(ctx context.Context, event OrderPickedEvent) error

// Consumer subscribes to fulfillment event topics. Other service
// instances publish; every instance may consume, so packing stations
// see picks made anywhere in the warehouse.
type Consumer struct {
	group   sarama.ConsumerGroup
	brokers []string
	groupID string
	topics  []string

	onTaskCompleted TaskCompletedHandler
	onOrderPicked   OrderPickedHandler
}

// NewConsumer creates a new Kafka consumer group subscribed to the
// fulfillment topics.
func NewConsumer(brokers []string, groupID string) (*Consumer, error) {
	config := sarama.NewConfig()
	config.Version = sarama.V2_6_0_0
	config.Consumer.Group.Rebalance.Strategy = sarama.NewBalanceStrategyRoundRobin()
	config.Consumer.Offsets.Initial = sarama.OffsetNewest
	config.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(brokers, groupID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka consumer: %w", err)
	}

	topics := []string{TopicTaskCompleted, TopicOrderPicked}
	logger.Logger.Info().
		Strs("brokers", brokers).
		Str("group_id", groupID).
		Strs("topics", topics).
		Msg("Kafka consumer initialized")

	return &Consumer{
		group:   group,
		brokers: brokers,
		groupID: groupID,
		topics:  topics,
	}, nil
}

// OnTaskCompleted registers the task completion handler.
func (c *Consumer) OnTaskCompleted(handler TaskCompletedHandler) {
	c.onTaskCompleted = handler
}

// OnOrderPicked registers the order picked handler.
func (c *Consumer) OnOrderPicked(handler OrderPickedHandler) {
	c.onOrderPicked = handler
}

// Start starts consuming messages until the context is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	handler := &consumerGroupHandler{consumer: c}

	go func() {
		for {
			select {
			case <-ctx.Done():
				logger.Logger.Info().Msg("Consumer context cancelled, stopping...")
				return
			default:
				if err := c.group.Consume(ctx, c.topics, handler); err != nil {
					logger.Logger.Error().Err(err).Msg("Error from consumer")
				}
			}
		}
	}()

	go func() {
		for err := range c.group.Errors() {
			logger.Logger.Error().Err(err).Msg("Consumer error")
		}
	}()

	logger.Logger.Info().
		Strs("topics", c.topics).
		Str("group_id", c.groupID).
		Msg("Kafka consumer started")
	return nil
}

// Close closes the Kafka consumer.
func (c *Consumer) Close() error {
	if c.group != nil {
		return c.group.Close()
	}
	return nil
}

// consumerGroupHandler implements sarama.ConsumerGroupHandler
type consumerGroupHandler struct {
	consumer *Consumer
}

func (h *consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		h.handleMessage(session.Context(), message)
		session.MarkMessage(message, "")
	}
	return nil
}

func (h *consumerGroupHandler) handleMessage(ctx context.Context, message *sarama.ConsumerMessage) {
	// Rejoin the publisher's trace via the propagated headers.
	carrier := propagation.MapCarrier{}
	eventType := ""
	eventID := ""
	for _, header := range message.Headers {
		switch key := string(header.Key); key {
		case "traceparent", "tracestate":
			carrier[key] = string(header.Value)
		case "event_type":
			eventType = string(header.Value)
		case "event_id":
			eventID = string(header.Value)
		}
	}
	ctx = otel.GetTextMapPropagator().Extract(ctx, carrier)

	tracer := otel.Tracer("kafka-consumer")
	ctx, span := tracer.Start(ctx, "kafka.consume."+eventType,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.source", message.Topic),
			attribute.Int("messaging.kafka.partition", int(message.Partition)),
			attribute.Int64("messaging.kafka.offset", message.Offset),
			attribute.String("event.type", eventType),
			attribute.String("event.id", eventID),
		),
	)
	defer span.End()

	if eventType == "" {
		span.SetStatus(codes.Error, "Message without event_type header")
		logger.Logger.Warn().Str("topic", message.Topic).Msg("Message without event_type header")
		return
	}

	var err error
	switch eventType {
	case EventTypeTaskCompleted:
		if h.consumer.onTaskCompleted == nil {
			return
		}
		var event TaskCompletedEvent
		if err = json.Unmarshal(message.Value, &event); err == nil {
			span.SetAttributes(attribute.Int64("task.id", int64(event.TaskID)))
			err = h.consumer.onTaskCompleted(ctx, event)
		}
	case EventTypeOrderPicked:
		if h.consumer.onOrderPicked == nil {
			return
		}
		var event OrderPickedEvent
		if err = json.Unmarshal(message.Value, &event); err == nil {
			span.SetAttributes(attribute.Int64("order.id", int64(event.OrderID)))
			err = h.consumer.onOrderPicked(ctx, event)
		}
	default:
		span.SetStatus(codes.Error, "Unknown event type")
		logger.Logger.Warn().Str("event_type", eventType).Msg("Unknown event type")
		return
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to handle event")
		logger.Error(ctx).
			Err(err).
			Str("event_type", eventType).
			Str("event_id", eventID).
			Msg("Failed to handle event")
		return
	}

	span.SetStatus(codes.Ok, "Event handled")
	logger.Info(ctx).
		Str("event_type", eventType).
		Str("event_id", eventID).
		Msg("Event handled")
}
