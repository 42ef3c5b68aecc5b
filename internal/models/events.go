package models

import "time"

// Event types
const (
	EventTypePaymentInitiated = "PAYMENT_INITIATED"
	EventTypePaymentCompleted = "PAYMENT_COMPLETED"
	EventTypePaymentFailed    = "PAYMENT_FAILED"
	EventTypeBusinessUpgraded = "BUSINESS_UPGRADED"
	EventTypeBusinessVerified = "BUSINESS_VERIFIED"
	EventTypeBusinessRejected = "BUSINESS_REJECTED"
	EventTypeAdvertCreated    = "ADVERT_CREATED"
	EventTypeAdvertDeleted    = "ADVERT_DELETED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// PaymentInitiatedEvent published when a pending payment is created
type PaymentInitiatedEvent struct {
	BaseEvent
	PaymentID   int64  `json:"payment_id"`
	BusinessID  int64  `json:"business_id"`
	Reference   string `json:"reference"`
	Amount      int64  `json:"amount"`
	PaymentType string `json:"payment_type"`
	PackageType string `json:"package_type,omitempty"`
}

// PaymentCompletedEvent published when a payment webhook finalizes successfully
type PaymentCompletedEvent struct {
	BaseEvent
	PaymentID     int64  `json:"payment_id"`
	BusinessID    int64  `json:"business_id"`
	Reference     string `json:"reference"`
	Amount        int64  `json:"amount"`
	PaymentType   string `json:"payment_type"`
	TransactionID string `json:"transaction_id"`
}

// PaymentFailedEvent published when the processor reports a failed payment
type PaymentFailedEvent struct {
	BaseEvent
	PaymentID  int64  `json:"payment_id"`
	BusinessID int64  `json:"business_id"`
	Reference  string `json:"reference"`
	Reason     string `json:"reason"`
}

// BusinessUpgradedEvent published when a completed upgrade payment changes the tier
type BusinessUpgradedEvent struct {
	BaseEvent
	BusinessID       int64  `json:"business_id"`
	PreviousTier     string `json:"previous_tier"`
	NewTier          string `json:"new_tier"`
	AdvertsRemaining int    `json:"adverts_remaining"`
}

// BusinessVerifiedEvent published when an admin approves or rejects a business
type BusinessVerifiedEvent struct {
	BaseEvent
	BusinessID int64  `json:"business_id"`
	Status     string `json:"status"`
}

// AdvertCreatedEvent published when an advert consumes a quota slot
type AdvertCreatedEvent struct {
	BaseEvent
	AdvertID         int64 `json:"advert_id"`
	BusinessID       int64 `json:"business_id"`
	AdvertsRemaining int   `json:"adverts_remaining"`
}

// AdvertDeletedEvent published when deletion releases a quota slot
type AdvertDeletedEvent struct {
	BaseEvent
	AdvertID         int64 `json:"advert_id"`
	BusinessID       int64 `json:"business_id"`
	AdvertsRemaining int   `json:"adverts_remaining"`
}
