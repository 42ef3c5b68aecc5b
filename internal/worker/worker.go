package worker

import (
	"context"
	"log"

	"directory-service/internal/broker"
	"directory-service/internal/models"
	"directory-service/internal/util"

	"go.uber.org/zap"
)

// Notifier delivers notifications to business owners. The email/SMS
// transport lives outside this service; implementations here only hand the
// message off.
type Notifier interface {
	NotifyVerification(ctx context.Context, businessID int64, status string) error
	NotifyPaymentCompleted(ctx context.Context, businessID int64, reference string, amount int64) error
	NotifyTierChange(ctx context.Context, businessID int64, newTier string) error
}

// LogNotifier records notifications to the service log. Stands in for the
// external notification relay in development.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a log-backed notifier
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{logger: util.GetLogger()}
}

func (n *LogNotifier) NotifyVerification(ctx context.Context, businessID int64, status string) error {
	n.logger.Info("Notify: verification decision",
		zap.Int64("business_id", businessID),
		zap.String("status", status))
	return nil
}

func (n *LogNotifier) NotifyPaymentCompleted(ctx context.Context, businessID int64, reference string, amount int64) error {
	n.logger.Info("Notify: payment completed",
		zap.Int64("business_id", businessID),
		zap.String("reference", reference),
		zap.Int64("amount", amount))
	return nil
}

func (n *LogNotifier) NotifyTierChange(ctx context.Context, businessID int64, newTier string) error {
	n.logger.Info("Notify: tier changed",
		zap.Int64("business_id", businessID),
		zap.String("new_tier", newTier))
	return nil
}

// NotificationWorker consumes directory events and triggers owner
// notifications for verification decisions and completed payments.
type NotificationWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	notifier     Notifier
}

// NewNotificationWorker creates a new notification worker
func NewNotificationWorker(consumer *broker.Consumer, notifier Notifier) *NotificationWorker {
	eventHandler := broker.NewEventHandler()

	eventHandler.OnBusinessVerified(func(ctx context.Context, event *models.BusinessVerifiedEvent) error {
		return notifier.NotifyVerification(ctx, event.BusinessID, event.Status)
	})

	eventHandler.OnPaymentCompleted(func(ctx context.Context, event *models.PaymentCompletedEvent) error {
		return notifier.NotifyPaymentCompleted(ctx, event.BusinessID, event.Reference, event.Amount)
	})

	eventHandler.OnBusinessUpgraded(func(ctx context.Context, event *models.BusinessUpgradedEvent) error {
		return notifier.NotifyTierChange(ctx, event.BusinessID, event.NewTier)
	})

	return &NotificationWorker{
		consumer:     consumer,
		eventHandler: eventHandler,
		notifier:     notifier,
	}
}

// Start starts the worker
func (w *NotificationWorker) Start(ctx context.Context) error {
	log.Println("Starting notification worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *NotificationWorker) Stop() error {
	log.Println("Stopping notification worker...")
	return w.consumer.Close()
}
