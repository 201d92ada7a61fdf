package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"gym-pos-service/internal/models"
	"gym-pos-service/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventPublisher handles publishing domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishTransactionCompleted publishes TransactionCompleted event
func (ep *EventPublisher) PublishTransactionCompleted(ctx context.Context, event *models.TransactionCompletedEvent) error {
	key := fmt.Sprintf("transaction-%d", event.TransactionID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishSubscriptionExpiring publishes SubscriptionExpiring event
func (ep *EventPublisher) PublishSubscriptionExpiring(ctx context.Context, event *models.SubscriptionExpiringEvent) error {
	key := fmt.Sprintf("subscription-%d", event.SubscriptionID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishLowStock publishes LowStock event
func (ep *EventPublisher) PublishLowStock(ctx context.Context, event *models.LowStockEvent) error {
	key := fmt.Sprintf("product-%d", event.ProductID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// EventHandler routes incoming events to registered handlers
type EventHandler struct {
	logger                *zap.Logger
	onTransactionComplete func(context.Context, *models.TransactionCompletedEvent) error
	onSubscriptionExpire  func(context.Context, *models.SubscriptionExpiringEvent) error
	onLowStock            func(context.Context, *models.LowStockEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{logger: util.GetLogger()}
}

// OnTransactionCompleted registers a handler for TransactionCompleted events
func (eh *EventHandler) OnTransactionCompleted(handler func(context.Context, *models.TransactionCompletedEvent) error) {
	eh.onTransactionComplete = handler
}

// OnSubscriptionExpiring registers a handler for SubscriptionExpiring events
func (eh *EventHandler) OnSubscriptionExpiring(handler func(context.Context, *models.SubscriptionExpiringEvent) error) {
	eh.onSubscriptionExpire = handler
}

// OnLowStock registers a handler for LowStock events
func (eh *EventHandler) OnLowStock(handler func(context.Context, *models.LowStockEvent) error) {
	eh.onLowStock = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	eh.logger.Debug("Handling event",
		zap.String("type", baseEvent.EventType),
		zap.String("event_id", baseEvent.EventID))

	switch baseEvent.EventType {
	case models.EventTypeTransactionCompleted:
		if eh.onTransactionComplete != nil {
			var event models.TransactionCompletedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal TransactionCompleted event: %w", err)
			}
			return eh.onTransactionComplete(ctx, &event)
		}

	case models.EventTypeSubscriptionExpiring, models.EventTypeSubscriptionExpired:
		if eh.onSubscriptionExpire != nil {
			var event models.SubscriptionExpiringEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal SubscriptionExpiring event: %w", err)
			}
			return eh.onSubscriptionExpire(ctx, &event)
		}

	case models.EventTypeLowStock:
		if eh.onLowStock != nil {
			var event models.LowStockEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal LowStock event: %w", err)
			}
			return eh.onLowStock(ctx, &event)
		}

	default:
		eh.logger.Warn("Unhandled event type", zap.String("type", baseEvent.EventType))
	}

	return nil
}
