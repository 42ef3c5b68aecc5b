package models

import (
	"fmt"
	"time"
)

// Tier is the package level a business subscribes to. Tiers are ordered:
// Basic < Bronze < Silver < Gold.
type Tier string

const (
	TierBasic  Tier = "basic"
	TierBronze Tier = "bronze"
	TierSilver Tier = "silver"
	TierGold   Tier = "gold"
)

var tierRank = map[Tier]int{
	TierBasic:  0,
	TierBronze: 1,
	TierSilver: 2,
	TierGold:   3,
}

// ParseTier validates a tier value received at the boundary.
func ParseTier(s string) (Tier, error) {
	t := Tier(s)
	if _, ok := tierRank[t]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidTier, s)
	}
	return t, nil
}

// AtLeast reports whether t is the same tier as other or a higher one.
func (t Tier) AtLeast(other Tier) bool {
	return tierRank[t] >= tierRank[other]
}

func (t Tier) String() string { return string(t) }

// Verification statuses
const (
	VerificationPending  = "pending"
	VerificationVerified = "verified"
	VerificationRejected = "rejected"
)

// ParseVerificationStatus accepts only the statuses an admin may set.
func ParseVerificationStatus(s string) (string, error) {
	switch s {
	case VerificationVerified, VerificationRejected:
		return s, nil
	default:
		return "", fmt.Errorf("%w: verification status %q", ErrInvalidStatus, s)
	}
}

// Business represents a registered directory business
type Business struct {
	ID                    int64     `db:"id" json:"id"`
	Name                  string    `db:"name" json:"name"`
	Tier                  Tier      `db:"tier" json:"tier"`
	VerificationStatus    string    `db:"verification_status" json:"verification_status"`
	AdvertsRemaining      int       `db:"adverts_remaining" json:"adverts_remaining"`
	SubscriptionReference string    `db:"subscription_reference" json:"subscription_reference,omitempty"`
	CreatedAt             time.Time `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time `db:"updated_at" json:"updated_at"`
}

// NewBusiness returns a business in its registration state.
func NewBusiness(name string) *Business {
	return &Business{
		Name:               name,
		Tier:               TierBasic,
		VerificationStatus: VerificationPending,
		AdvertsRemaining:   0,
	}
}

// ApplyTierChange moves the business to newTier and resets the advert quota
// to advertSlots. The quota is overwritten, never added to, so repeated
// upgrade/downgrade cycles cannot accumulate slots and a second call with
// the same tier lands on the same absolute quota.
func (b *Business) ApplyTierChange(newTier Tier, subscriptionRef string, advertSlots int) error {
	if _, ok := tierRank[newTier]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidTier, newTier)
	}
	b.Tier = newTier
	b.SubscriptionReference = subscriptionRef
	b.AdvertsRemaining = advertSlots
	return nil
}

// ConsumeAdvertSlot takes one advert slot. The quota never goes negative;
// a call at zero fails with ErrQuotaExceeded and changes nothing.
func (b *Business) ConsumeAdvertSlot() error {
	if b.AdvertsRemaining <= 0 {
		return fmt.Errorf("%w: business %d has no advert slots remaining", ErrQuotaExceeded, b.ID)
	}
	b.AdvertsRemaining--
	return nil
}

// ReleaseAdvertSlot returns one advert slot after an advert is deleted.
// No ceiling is enforced: slots can exceed the tier's nominal allotment
// when deletions outpace creations across tier changes.
func (b *Business) ReleaseAdvertSlot() {
	b.AdvertsRemaining++
}

// AddAdvertSlot credits a single purchased extra slot. Unlike a tier
// change this is additive.
func (b *Business) AddAdvertSlot() {
	b.AdvertsRemaining++
}

// Payment types
const (
	PaymentTypeUpgrade = "upgrade"
	PaymentTypeAdvert  = "advert"
)

// ParsePaymentType validates a payment type received at the boundary.
func ParsePaymentType(s string) (string, error) {
	switch s {
	case PaymentTypeUpgrade, PaymentTypeAdvert:
		return s, nil
	default:
		return "", fmt.Errorf("%w: payment type %q", ErrInvalidStatus, s)
	}
}

// Payment statuses
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// Payment represents one payment attempt against a business
type Payment struct {
	ID            int64     `db:"id" json:"id"`
	BusinessID    int64     `db:"business_id" json:"business_id"`
	Reference     string    `db:"reference" json:"reference"`
	Amount        int64     `db:"amount" json:"amount"`
	PaymentType   string    `db:"payment_type" json:"payment_type"`
	PackageType   Tier      `db:"package_type" json:"package_type,omitempty"`
	Status        string    `db:"status" json:"status"`
	TransactionID string    `db:"transaction_id" json:"transaction_id,omitempty"`
	RawPayload    string    `db:"raw_payload" json:"-"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// IsFinal reports whether the payment has reached a terminal status.
func (p *Payment) IsFinal() bool {
	return p.Status == PaymentStatusCompleted || p.Status == PaymentStatusFailed
}

// Finalize moves a pending payment to completed or failed. Terminal states
// are absorbing: finalizing an already-final payment returns
// ErrAlreadyFinalized and mutates nothing, which protects against duplicate
// webhook delivery re-applying business-side effects.
func (p *Payment) Finalize(status, transactionID, rawPayload string) error {
	if p.IsFinal() {
		return fmt.Errorf("%w: payment %s is already %s", ErrAlreadyFinalized, p.Reference, p.Status)
	}
	if status != PaymentStatusCompleted && status != PaymentStatusFailed {
		return fmt.Errorf("%w: payment status %q", ErrInvalidStatus, status)
	}
	p.Status = status
	p.RawPayload = rawPayload
	if status == PaymentStatusCompleted {
		p.TransactionID = transactionID
	}
	return nil
}

// Advert statuses
const (
	AdvertStatusPending  = "pending"
	AdvertStatusActive   = "active"
	AdvertStatusRejected = "rejected"
	AdvertStatusExpired  = "expired"
)

// Advert is a quota-consuming listing owned by one business
type Advert struct {
	ID         int64     `db:"id" json:"id"`
	BusinessID int64     `db:"business_id" json:"business_id"`
	Title      string    `db:"title" json:"title"`
	Body       string    `db:"body" json:"body,omitempty"`
	Status     string    `db:"status" json:"status"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// Product statuses
const (
	ProductStatusActive   = "active"
	ProductStatusInactive = "inactive"
)

// Product is a tier-gated listing owned by one business
type Product struct {
	ID         int64     `db:"id" json:"id"`
	BusinessID int64     `db:"business_id" json:"business_id"`
	Name       string    `db:"name" json:"name"`
	Price      int64     `db:"price" json:"price"`
	Status     string    `db:"status" json:"status"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// ProcessedWebhook records a handled processor notification for idempotency
type ProcessedWebhook struct {
	Reference   string    `db:"reference"`
	Outcome     string    `db:"outcome"`
	ProcessedAt time.Time `db:"processed_at"`
}
