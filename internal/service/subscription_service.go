package service

import (
	"context"
	"fmt"
	"time"

	"gym-pos-service/internal/models"
	"gym-pos-service/internal/store"
	"gym-pos-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Expiry warning window: main plans expiring within this many days trigger a
// warning notification; already-expired plans an expired one.
const expiryWarningDays = 3

// SubscriptionEventPublisher publishes subscription domain events.
type SubscriptionEventPublisher interface {
	PublishSubscriptionExpiring(ctx context.Context, event *models.SubscriptionExpiringEvent) error
}

// SubscriptionService handles customer subscriptions and the periodic expiry
// scan that feeds the notification worker.
type SubscriptionService struct {
	store  *store.Store
	events SubscriptionEventPublisher
	logger *zap.Logger
}

// NewSubscriptionService creates a new subscription service
func NewSubscriptionService(store *store.Store, events SubscriptionEventPublisher) *SubscriptionService {
	return &SubscriptionService{
		store:  store,
		events: events,
		logger: util.NamedLogger("subscriptions"),
	}
}

// Customers returns all gym clients.
func (ss *SubscriptionService) Customers(ctx context.Context) ([]models.Customer, error) {
	return ss.store.GetCustomers(ctx)
}

// CustomerSubscriptions returns one client's subscription history.
func (ss *SubscriptionService) CustomerSubscriptions(ctx context.Context, customerID int64) ([]models.Subscription, error) {
	if _, err := ss.store.GetCustomerByID(ctx, customerID); err != nil {
		return nil, err
	}
	return ss.store.GetSubscriptionsByCustomerID(ctx, customerID)
}

// Subscriptions returns all subscriptions.
func (ss *SubscriptionService) Subscriptions(ctx context.Context) ([]models.Subscription, error) {
	return ss.store.GetSubscriptions(ctx)
}

// ScanExpiring publishes an event for every main-plan subscription that is
// expired or expiring within the warning window. The notification worker
// consumes these and records the staff-facing alerts; the scan itself writes
// nothing, so re-running it is harmless.
func (ss *SubscriptionService) ScanExpiring(ctx context.Context, now time.Time) (int, error) {
	ctx, span := util.StartSpan(ctx, "SubscriptionService.ScanExpiring")
	defer span.End()

	cutoff := now.AddDate(0, 0, expiryWarningDays)
	subs, err := ss.store.GetMainPlansExpiringBefore(ctx, cutoff.Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("failed to query expiring plans: %w", err)
	}

	published := 0
	for _, sub := range subs {
		customer, err := ss.store.GetCustomerByID(ctx, sub.CustomerID)
		if err != nil {
			ss.logger.Error("Failed to load customer for expiring plan",
				zap.Int64("subscription_id", sub.ID),
				zap.Error(err))
			continue
		}

		expired := !sub.ExpireDate.After(now)
		eventType := models.EventTypeSubscriptionExpiring
		if expired {
			eventType = models.EventTypeSubscriptionExpired
		}

		event := &models.SubscriptionExpiringEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: eventType,
				Timestamp: now,
			},
			SubscriptionID: sub.ID,
			CustomerID:     sub.CustomerID,
			CustomerName:   customer.Name,
			Service:        sub.Service,
			ExpireDate:     sub.ExpireDate,
			Expired:        expired,
		}

		if err := ss.events.PublishSubscriptionExpiring(ctx, event); err != nil {
			ss.logger.Error("Failed to publish SubscriptionExpiring event",
				zap.Int64("subscription_id", sub.ID),
				zap.Error(err))
			continue
		}
		published++
	}

	ss.logger.Info("Expiry scan completed",
		zap.Int("candidates", len(subs)),
		zap.Int("published", published))
	return published, nil
}

// RecordExpiryNotification persists the staff-facing alert for one expiry
// event. Called by the notification worker; deduplicated per customer and
// level over 24h so daily scans do not stack repeats.
func (ss *SubscriptionService) RecordExpiryNotification(ctx context.Context, event *models.SubscriptionExpiringEvent) error {
	level := models.NotificationLevelWarning
	message := fmt.Sprintf("%s's %s subscription expires on %s",
		event.CustomerName, event.Service, event.ExpireDate.Format("Jan 2, 2006"))
	if event.Expired {
		level = models.NotificationLevelExpired
		message = fmt.Sprintf("%s's %s subscription has expired",
			event.CustomerName, event.Service)
	}

	since := event.Timestamp.Add(-24 * time.Hour)
	exists, err := ss.store.HasNotificationSince(ctx, event.CustomerID, level, since)
	if err != nil {
		return fmt.Errorf("failed to check existing notifications: %w", err)
	}
	if exists {
		return nil
	}

	n := &models.Notification{
		CustomerID: event.CustomerID,
		Message:    message,
		Level:      level,
	}
	if err := ss.store.CreateNotification(ctx, n); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	util.ExpiryNotificationsTotal.WithLabelValues(level).Inc()
	return nil
}

// Notifications returns unread staff notifications.
func (ss *SubscriptionService) Notifications(ctx context.Context) ([]models.Notification, error) {
	return ss.store.GetUnreadNotifications(ctx)
}

// MarkNotificationRead dismisses a notification.
func (ss *SubscriptionService) MarkNotificationRead(ctx context.Context, id int64) error {
	return ss.store.MarkNotificationRead(ctx, id)
}
