package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"directory-service/config"
	"directory-service/internal/broker"
	"directory-service/internal/entitlement"
	"directory-service/internal/models"
	"directory-service/internal/redisclient"
	"directory-service/internal/store"
	"directory-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// webhookSeenTTL bounds the fast-path dedup cache; the processed_webhooks
// row covers re-deliveries after expiry.
const webhookSeenTTL = 24 * time.Hour

// PaymentService owns payment initiation and the webhook-driven state
// machine that applies tier and quota effects to businesses.
type PaymentService struct {
	store          *store.Store
	redis          *redisclient.Client
	eventPublisher *broker.EventPublisher
	gateway        GatewayClient
	table          entitlement.Table
	pricing        config.EntitlementConfig
	logger         *zap.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	store *store.Store,
	redis *redisclient.Client,
	eventPublisher *broker.EventPublisher,
	gateway GatewayClient,
	table entitlement.Table,
	pricing config.EntitlementConfig,
) *PaymentService {
	return &PaymentService{
		store:          store,
		redis:          redis,
		eventPublisher: eventPublisher,
		gateway:        gateway,
		table:          table,
		pricing:        pricing,
		logger:         util.GetLogger(),
	}
}

// InitiatePaymentRequest represents a request to start a payment
type InitiatePaymentRequest struct {
	BusinessID  int64  `json:"business_id" binding:"required"`
	PaymentType string `json:"payment_type" binding:"required"`
	PackageType string `json:"package_type,omitempty"`
}

// InitiatePaymentResponse carries the pending payment and the processor URL
type InitiatePaymentResponse struct {
	PaymentID  int64  `json:"payment_id"`
	Reference  string `json:"reference"`
	Amount     int64  `json:"amount"`
	PaymentURL string `json:"payment_url"`
}

// InitiatePayment creates a pending payment and returns the hosted checkout
// URL. The payment stays pending until the processor's webhook finalizes it.
func (ps *PaymentService) InitiatePayment(ctx context.Context, req *InitiatePaymentRequest) (*InitiatePaymentResponse, error) {
	ctx, span := util.StartSpan(ctx, "PaymentService.InitiatePayment")
	defer span.End()

	paymentType, err := models.ParsePaymentType(req.PaymentType)
	if err != nil {
		return nil, err
	}

	business, err := ps.store.GetBusinessByID(ctx, req.BusinessID)
	if err != nil {
		return nil, err
	}

	var packageType models.Tier
	var amount int64

	switch paymentType {
	case models.PaymentTypeUpgrade:
		packageType, err = models.ParseTier(req.PackageType)
		if err != nil {
			return nil, err
		}
		amount, err = ps.upgradePrice(packageType)
		if err != nil {
			return nil, err
		}
	case models.PaymentTypeAdvert:
		amount = ps.pricing.AdvertSlotPrice
	}

	payment := &models.Payment{
		BusinessID:  business.ID,
		Reference:   NewPaymentReference(),
		Amount:      amount,
		PaymentType: paymentType,
		PackageType: packageType,
		Status:      models.PaymentStatusPending,
	}

	if err := ps.store.CreatePayment(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	paymentURL, err := ps.gateway.PaymentURL(payment)
	if err != nil {
		return nil, fmt.Errorf("failed to build payment URL: %w", err)
	}

	util.PaymentsInitiatedTotal.WithLabelValues(paymentType).Inc()
	ps.logger.Info("Payment initiated",
		zap.Int64("business_id", business.ID),
		zap.String("reference", payment.Reference),
		zap.String("payment_type", paymentType),
		zap.Int64("amount", amount))

	event := &models.PaymentInitiatedEvent{
		BaseEvent:   newBaseEvent(models.EventTypePaymentInitiated),
		PaymentID:   payment.ID,
		BusinessID:  business.ID,
		Reference:   payment.Reference,
		Amount:      amount,
		PaymentType: paymentType,
		PackageType: packageType.String(),
	}
	if err := ps.eventPublisher.PublishPaymentInitiated(ctx, event); err != nil {
		ps.logger.Error("Failed to publish PaymentInitiated event", zap.Error(err))
	}

	return &InitiatePaymentResponse{
		PaymentID:  payment.ID,
		Reference:  payment.Reference,
		Amount:     amount,
		PaymentURL: paymentURL,
	}, nil
}

func (ps *PaymentService) upgradePrice(tier models.Tier) (int64, error) {
	switch tier {
	case models.TierBronze:
		return ps.pricing.BronzePrice, nil
	case models.TierSilver:
		return ps.pricing.SilverPrice, nil
	case models.TierGold:
		return ps.pricing.GoldPrice, nil
	default:
		// basic is the free tier, it cannot be purchased
		return 0, fmt.Errorf("%w: tier %q is not purchasable", models.ErrInvalidTier, tier)
	}
}

// WebhookRequest is the processor's asynchronous outcome notification
type WebhookRequest struct {
	Reference       string `json:"reference" binding:"required"`
	ProcessorStatus string `json:"status" binding:"required"`
	TransactionID   string `json:"transaction_id,omitempty"`
	RawPayload      string `json:"-"`
}

// WebhookResult reports what the webhook did
type WebhookResult struct {
	Duplicate bool
	Payment   *models.Payment
	Business  *models.Business
}

// MapProcessorStatus translates the processor's status vocabulary to the
// payment state machine's terminal states.
func MapProcessorStatus(processorStatus string) (string, error) {
	switch strings.ToLower(processorStatus) {
	case "success", "successful", "completed", "paid":
		return models.PaymentStatusCompleted, nil
	case "failed", "declined", "cancelled", "abandoned":
		return models.PaymentStatusFailed, nil
	default:
		return "", fmt.Errorf("%w: processor status %q", models.ErrInvalidStatus, processorStatus)
	}
}

// HandleWebhook finalizes the referenced payment and applies the business
// effect in one transaction: completed upgrades reset tier and quota,
// completed advert purchases add one slot, failures record only. Duplicate
// deliveries return Duplicate=true with no mutation; the handler reports
// them as success so the processor does not retry.
func (ps *PaymentService) HandleWebhook(ctx context.Context, req *WebhookRequest) (*WebhookResult, error) {
	ctx, span := util.StartSpan(ctx, "PaymentService.HandleWebhook")
	defer span.End()

	start := time.Now()
	defer func() {
		util.WebhookProcessingLatency.Observe(time.Since(start).Seconds())
	}()

	status, err := MapProcessorStatus(req.ProcessorStatus)
	if err != nil {
		return nil, err
	}

	if seen, err := ps.redis.IsWebhookSeen(ctx, req.Reference); err == nil && seen {
		ps.logger.Info("Webhook already seen, skipping",
			zap.String("reference", req.Reference))
		util.WebhookDuplicatesTotal.Inc()
		return &WebhookResult{Duplicate: true}, nil
	}

	if processed, err := ps.store.IsWebhookProcessed(ctx, req.Reference); err == nil && processed {
		ps.logger.Info("Webhook already processed",
			zap.String("reference", req.Reference))
		util.WebhookDuplicatesTotal.Inc()
		return &WebhookResult{Duplicate: true}, nil
	}

	var previousTier models.Tier

	apply := func(payment *models.Payment, business *models.Business) error {
		previousTier = business.Tier
		switch payment.PaymentType {
		case models.PaymentTypeUpgrade:
			limits, err := ps.table.LimitsFor(payment.PackageType)
			if err != nil {
				return err
			}
			return business.ApplyTierChange(payment.PackageType, payment.Reference, limits.AdvertSlots)
		case models.PaymentTypeAdvert:
			business.AddAdvertSlot()
			return nil
		default:
			return fmt.Errorf("%w: payment type %q", models.ErrInvalidStatus, payment.PaymentType)
		}
	}

	payment, business, err := ps.store.FinalizePaymentTx(ctx,
		req.Reference, status, req.TransactionID, req.RawPayload, apply)
	if err != nil {
		if errors.Is(err, models.ErrAlreadyFinalized) {
			ps.logger.Info("Duplicate webhook delivery",
				zap.String("reference", req.Reference))
			util.WebhookDuplicatesTotal.Inc()
			return &WebhookResult{Duplicate: true}, nil
		}
		return nil, err
	}

	if err := ps.redis.MarkWebhookSeen(ctx, req.Reference, webhookSeenTTL); err != nil {
		ps.logger.Warn("Failed to mark webhook seen in Redis", zap.Error(err))
	}

	ps.publishOutcome(ctx, payment, business, previousTier)

	return &WebhookResult{Payment: payment, Business: business}, nil
}

func (ps *PaymentService) publishOutcome(ctx context.Context, payment *models.Payment, business *models.Business, previousTier models.Tier) {
	switch payment.Status {
	case models.PaymentStatusCompleted:
		util.PaymentsCompletedTotal.WithLabelValues(payment.PaymentType).Inc()
		ps.logger.Info("Payment completed",
			zap.String("reference", payment.Reference),
			zap.String("tx_id", payment.TransactionID),
			zap.Int64("business_id", business.ID))

		event := &models.PaymentCompletedEvent{
			BaseEvent:     newBaseEvent(models.EventTypePaymentCompleted),
			PaymentID:     payment.ID,
			BusinessID:    business.ID,
			Reference:     payment.Reference,
			Amount:        payment.Amount,
			PaymentType:   payment.PaymentType,
			TransactionID: payment.TransactionID,
		}
		if err := ps.eventPublisher.PublishPaymentCompleted(ctx, event); err != nil {
			ps.logger.Error("Failed to publish PaymentCompleted event", zap.Error(err))
		}

		if payment.PaymentType == models.PaymentTypeUpgrade {
			util.TierUpgradesTotal.WithLabelValues(business.Tier.String()).Inc()
			upgraded := &models.BusinessUpgradedEvent{
				BaseEvent:        newBaseEvent(models.EventTypeBusinessUpgraded),
				BusinessID:       business.ID,
				PreviousTier:     previousTier.String(),
				NewTier:          business.Tier.String(),
				AdvertsRemaining: business.AdvertsRemaining,
			}
			if err := ps.eventPublisher.PublishBusinessUpgraded(ctx, upgraded); err != nil {
				ps.logger.Error("Failed to publish BusinessUpgraded event", zap.Error(err))
			}
		}

	case models.PaymentStatusFailed:
		util.PaymentsFailedTotal.Inc()
		ps.logger.Warn("Payment failed",
			zap.String("reference", payment.Reference),
			zap.Int64("business_id", business.ID))

		event := &models.PaymentFailedEvent{
			BaseEvent:  newBaseEvent(models.EventTypePaymentFailed),
			PaymentID:  payment.ID,
			BusinessID: business.ID,
			Reference:  payment.Reference,
			Reason:     "processor_declined",
		}
		if err := ps.eventPublisher.PublishPaymentFailed(ctx, event); err != nil {
			ps.logger.Error("Failed to publish PaymentFailed event", zap.Error(err))
		}
	}
}

// GetPayment retrieves a payment by reference
func (ps *PaymentService) GetPayment(ctx context.Context, reference string) (*models.Payment, error) {
	return ps.store.GetPaymentByReference(ctx, reference)
}

// NewPaymentReference generates a unique, human-traceable payment reference:
// fixed prefix, UTC timestamp, random suffix.
func NewPaymentReference() string {
	suffix := strings.ToUpper(uuid.New().String()[:6])
	return fmt.Sprintf("DIR-%s-%s", time.Now().UTC().Format("20060102150405"), suffix)
}

func newBaseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
}
