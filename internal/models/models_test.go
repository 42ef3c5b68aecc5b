package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBusinessStartsAtBasic(t *testing.T) {
	b := NewBusiness("Acme Plumbing")

	assert.Equal(t, TierBasic, b.Tier)
	assert.Equal(t, VerificationPending, b.VerificationStatus)
	assert.Equal(t, 0, b.AdvertsRemaining)
}

func TestApplyTierChangeResetsQuota(t *testing.T) {
	b := NewBusiness("Acme Plumbing")
	b.AdvertsRemaining = 7 // stale balance from earlier cycles

	err := b.ApplyTierChange(TierGold, "sub-001", 3)
	assert.NoError(t, err)
	assert.Equal(t, TierGold, b.Tier)
	assert.Equal(t, "sub-001", b.SubscriptionReference)
	assert.Equal(t, 3, b.AdvertsRemaining, "quota must be reset, not added")

	// idempotent for a repeated tier: same absolute quota, not doubled
	err = b.ApplyTierChange(TierGold, "sub-001", 3)
	assert.NoError(t, err)
	assert.Equal(t, 3, b.AdvertsRemaining)
}

func TestApplyTierChangeDowngrade(t *testing.T) {
	b := NewBusiness("Acme Plumbing")
	_ = b.ApplyTierChange(TierGold, "sub-001", 3)

	err := b.ApplyTierChange(TierSilver, "sub-002", 1)
	assert.NoError(t, err)
	assert.Equal(t, TierSilver, b.Tier)
	assert.Equal(t, 1, b.AdvertsRemaining)
}

func TestApplyTierChangeRejectsUnknownTier(t *testing.T) {
	b := NewBusiness("Acme Plumbing")

	err := b.ApplyTierChange(Tier("platinum"), "sub-001", 10)
	assert.ErrorIs(t, err, ErrInvalidTier)
	assert.Equal(t, TierBasic, b.Tier, "failed change must not be partially applied")
	assert.Equal(t, 0, b.AdvertsRemaining)
}

func TestConsumeAdvertSlot(t *testing.T) {
	b := NewBusiness("Acme Plumbing")
	b.AdvertsRemaining = 2

	assert.NoError(t, b.ConsumeAdvertSlot())
	assert.Equal(t, 1, b.AdvertsRemaining)
	assert.NoError(t, b.ConsumeAdvertSlot())
	assert.Equal(t, 0, b.AdvertsRemaining)

	err := b.ConsumeAdvertSlot()
	assert.ErrorIs(t, err, ErrQuotaExceeded)
	assert.Equal(t, 0, b.AdvertsRemaining, "quota never goes negative")
}

func TestReleaseAdvertSlot(t *testing.T) {
	b := NewBusiness("Acme Plumbing")
	b.AdvertsRemaining = 2

	b.ReleaseAdvertSlot()
	assert.Equal(t, 3, b.AdvertsRemaining)

	// no ceiling: releases past the nominal allotment are kept
	b.Tier = TierSilver
	b.ReleaseAdvertSlot()
	assert.Equal(t, 4, b.AdvertsRemaining)
}

func TestAddAdvertSlotIsAdditive(t *testing.T) {
	b := NewBusiness("Acme Plumbing")
	_ = b.ApplyTierChange(TierSilver, "sub-001", 1)

	b.AddAdvertSlot()
	assert.Equal(t, 2, b.AdvertsRemaining)
}

func TestPaymentFinalizeCompleted(t *testing.T) {
	p := &Payment{Reference: "DIR-20240101120000-ABC123", Status: PaymentStatusPending}

	err := p.Finalize(PaymentStatusCompleted, "TXN-9001", `{"status":"success"}`)
	assert.NoError(t, err)
	assert.Equal(t, PaymentStatusCompleted, p.Status)
	assert.Equal(t, "TXN-9001", p.TransactionID)
	assert.Equal(t, `{"status":"success"}`, p.RawPayload)
}

func TestPaymentFinalizeFailed(t *testing.T) {
	p := &Payment{Reference: "DIR-20240101120000-ABC123", Status: PaymentStatusPending}

	err := p.Finalize(PaymentStatusFailed, "", `{"status":"declined"}`)
	assert.NoError(t, err)
	assert.Equal(t, PaymentStatusFailed, p.Status)
	assert.Empty(t, p.TransactionID, "transaction id is only set on completion")
}

func TestPaymentFinalizeIsAbsorbing(t *testing.T) {
	p := &Payment{Reference: "DIR-20240101120000-ABC123", Status: PaymentStatusPending}
	assert.NoError(t, p.Finalize(PaymentStatusCompleted, "TXN-9001", "{}"))

	// duplicate webhook delivery
	err := p.Finalize(PaymentStatusCompleted, "TXN-9002", "{}")
	assert.ErrorIs(t, err, ErrAlreadyFinalized)
	assert.Equal(t, "TXN-9001", p.TransactionID, "second delivery must not mutate")

	// completed never becomes failed
	err = p.Finalize(PaymentStatusFailed, "", "{}")
	assert.ErrorIs(t, err, ErrAlreadyFinalized)
	assert.Equal(t, PaymentStatusCompleted, p.Status)
}

func TestPaymentFinalizeRejectsBadStatus(t *testing.T) {
	p := &Payment{Reference: "DIR-20240101120000-ABC123", Status: PaymentStatusPending}

	err := p.Finalize("refunded", "TXN-9001", "{}")
	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.Equal(t, PaymentStatusPending, p.Status)
}

func TestParseTier(t *testing.T) {
	tier, err := ParseTier("silver")
	assert.NoError(t, err)
	assert.Equal(t, TierSilver, tier)

	_, err = ParseTier("platinum")
	assert.ErrorIs(t, err, ErrInvalidTier)
}

func TestTierOrdering(t *testing.T) {
	assert.True(t, TierGold.AtLeast(TierSilver))
	assert.True(t, TierSilver.AtLeast(TierSilver))
	assert.False(t, TierBronze.AtLeast(TierSilver))
	assert.True(t, TierBronze.AtLeast(TierBasic))
}

func TestParseVerificationStatus(t *testing.T) {
	s, err := ParseVerificationStatus("verified")
	assert.NoError(t, err)
	assert.Equal(t, VerificationVerified, s)

	// admins may not set a business back to pending
	_, err = ParseVerificationStatus("pending")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = ParseVerificationStatus("banana")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestParsePaymentType(t *testing.T) {
	pt, err := ParsePaymentType("upgrade")
	assert.NoError(t, err)
	assert.Equal(t, PaymentTypeUpgrade, pt)

	_, err = ParsePaymentType("refund")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
