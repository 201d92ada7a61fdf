package worker

import (
	"context"

	"gym-pos-service/internal/broker"
	"gym-pos-service/internal/models"
	"gym-pos-service/internal/service"
	"gym-pos-service/internal/store"
	"gym-pos-service/internal/util"

	"go.uber.org/zap"
)

// NotificationWorker consumes domain events and turns them into staff-facing
// notifications. Event IDs are tracked in processed_events so redelivery
// after a consumer-group rebalance does not duplicate alerts.
type NotificationWorker struct {
	consumer      *broker.Consumer
	eventHandler  *broker.EventHandler
	store         *store.Store
	subscriptions *service.SubscriptionService
	reports       *service.ReportService
	logger        *zap.Logger
}

// NewNotificationWorker creates a new notification worker
func NewNotificationWorker(
	consumer *broker.Consumer,
	store *store.Store,
	subscriptions *service.SubscriptionService,
	reports *service.ReportService,
) *NotificationWorker {
	w := &NotificationWorker{
		consumer:      consumer,
		store:         store,
		subscriptions: subscriptions,
		reports:       reports,
		logger:        util.NamedLogger("worker"),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnSubscriptionExpiring(w.handleSubscriptionExpiring)
	eventHandler.OnLowStock(w.handleLowStock)
	eventHandler.OnTransactionCompleted(w.handleTransactionCompleted)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *NotificationWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting notification worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *NotificationWorker) Stop() error {
	w.logger.Info("Stopping notification worker")
	return w.consumer.Close()
}

func (w *NotificationWorker) handleSubscriptionExpiring(ctx context.Context, event *models.SubscriptionExpiringEvent) error {
	processed, err := w.store.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return err
	}
	if processed {
		return nil
	}

	if err := w.subscriptions.RecordExpiryNotification(ctx, event); err != nil {
		return err
	}

	return w.store.MarkEventProcessed(ctx, event.EventID, event.EventType)
}

func (w *NotificationWorker) handleLowStock(ctx context.Context, event *models.LowStockEvent) error {
	processed, err := w.store.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return err
	}
	if processed {
		return nil
	}

	n := &models.Notification{
		Message: event.ProductName + " is running low on stock",
		Level:   models.NotificationLevelWarning,
	}
	if err := w.store.CreateNotification(ctx, n); err != nil {
		return err
	}

	w.logger.Warn("Low stock",
		zap.Int64("product_id", event.ProductID),
		zap.Int("available", event.Available))

	return w.store.MarkEventProcessed(ctx, event.EventID, event.EventType)
}

func (w *NotificationWorker) handleTransactionCompleted(ctx context.Context, event *models.TransactionCompletedEvent) error {
	// Sales reports are cached; a completed sale makes the cache stale.
	w.reports.InvalidateSales(ctx)

	w.logger.Debug("Transaction completed",
		zap.Int64("transaction_id", event.TransactionID))
	return nil
}
