package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"directory-service/internal/models"

	"github.com/segmentio/kafka-go"
)

// EventPublisher handles publishing domain events. Events are keyed by
// business so consumers see one business's events in order.
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

func businessKey(businessID int64) string {
	return fmt.Sprintf("business-%d", businessID)
}

// PublishPaymentInitiated publishes PaymentInitiated event
func (ep *EventPublisher) PublishPaymentInitiated(ctx context.Context, event *models.PaymentInitiatedEvent) error {
	return ep.producer.PublishEvent(ctx, businessKey(event.BusinessID), event)
}

// PublishPaymentCompleted publishes PaymentCompleted event
func (ep *EventPublisher) PublishPaymentCompleted(ctx context.Context, event *models.PaymentCompletedEvent) error {
	return ep.producer.PublishEvent(ctx, businessKey(event.BusinessID), event)
}

// PublishPaymentFailed publishes PaymentFailed event
func (ep *EventPublisher) PublishPaymentFailed(ctx context.Context, event *models.PaymentFailedEvent) error {
	return ep.producer.PublishEvent(ctx, businessKey(event.BusinessID), event)
}

// PublishBusinessUpgraded publishes BusinessUpgraded event
func (ep *EventPublisher) PublishBusinessUpgraded(ctx context.Context, event *models.BusinessUpgradedEvent) error {
	return ep.producer.PublishEvent(ctx, businessKey(event.BusinessID), event)
}

// PublishBusinessVerified publishes BusinessVerified event
func (ep *EventPublisher) PublishBusinessVerified(ctx context.Context, event *models.BusinessVerifiedEvent) error {
	return ep.producer.PublishEvent(ctx, businessKey(event.BusinessID), event)
}

// PublishAdvertCreated publishes AdvertCreated event
func (ep *EventPublisher) PublishAdvertCreated(ctx context.Context, event *models.AdvertCreatedEvent) error {
	return ep.producer.PublishEvent(ctx, businessKey(event.BusinessID), event)
}

// PublishAdvertDeleted publishes AdvertDeleted event
func (ep *EventPublisher) PublishAdvertDeleted(ctx context.Context, event *models.AdvertDeletedEvent) error {
	return ep.producer.PublishEvent(ctx, businessKey(event.BusinessID), event)
}

// EventHandler handles incoming events
type EventHandler struct {
	onPaymentCompleted func(context.Context, *models.PaymentCompletedEvent) error
	onBusinessVerified func(context.Context, *models.BusinessVerifiedEvent) error
	onBusinessUpgraded func(context.Context, *models.BusinessUpgradedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnPaymentCompleted registers a handler for PaymentCompleted events
func (eh *EventHandler) OnPaymentCompleted(handler func(context.Context, *models.PaymentCompletedEvent) error) {
	eh.onPaymentCompleted = handler
}

// OnBusinessVerified registers a handler for BusinessVerified events
func (eh *EventHandler) OnBusinessVerified(handler func(context.Context, *models.BusinessVerifiedEvent) error) {
	eh.onBusinessVerified = handler
}

// OnBusinessUpgraded registers a handler for BusinessUpgraded events
func (eh *EventHandler) OnBusinessUpgraded(handler func(context.Context, *models.BusinessUpgradedEvent) error) {
	eh.onBusinessUpgraded = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	log.Printf("Handling event: type=%s, id=%s", baseEvent.EventType, baseEvent.EventID)

	switch baseEvent.EventType {
	case models.EventTypePaymentCompleted:
		if eh.onPaymentCompleted != nil {
			var event models.PaymentCompletedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal PaymentCompleted event: %w", err)
			}
			return eh.onPaymentCompleted(ctx, &event)
		}

	case models.EventTypeBusinessVerified, models.EventTypeBusinessRejected:
		if eh.onBusinessVerified != nil {
			var event models.BusinessVerifiedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal BusinessVerified event: %w", err)
			}
			return eh.onBusinessVerified(ctx, &event)
		}

	case models.EventTypeBusinessUpgraded:
		if eh.onBusinessUpgraded != nil {
			var event models.BusinessUpgradedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal BusinessUpgraded event: %w", err)
			}
			return eh.onBusinessUpgraded(ctx, &event)
		}

	default:
		log.Printf("Unhandled event type: %s", baseEvent.EventType)
	}

	return nil
}
