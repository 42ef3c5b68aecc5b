package service

import (
	"regexp"
	"testing"

	"directory-service/config"
	"directory-service/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestNewPaymentReference(t *testing.T) {
	ref := NewPaymentReference()

	// prefix + UTC timestamp + random suffix
	assert.Regexp(t, regexp.MustCompile(`^DIR-\d{14}-[0-9A-F]{6}$`), ref)

	second := NewPaymentReference()
	assert.NotEqual(t, ref, second, "references must be unique")
}

func TestMapProcessorStatus(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"success", models.PaymentStatusCompleted},
		{"SUCCESSFUL", models.PaymentStatusCompleted},
		{"paid", models.PaymentStatusCompleted},
		{"failed", models.PaymentStatusFailed},
		{"declined", models.PaymentStatusFailed},
		{"abandoned", models.PaymentStatusFailed},
	}

	for _, tt := range tests {
		got, err := MapProcessorStatus(tt.in)
		assert.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestMapProcessorStatusRejectsUnknown(t *testing.T) {
	_, err := MapProcessorStatus("refunded")
	assert.ErrorIs(t, err, models.ErrInvalidStatus)
}

func TestUpgradePrice(t *testing.T) {
	ps := &PaymentService{
		pricing: config.EntitlementConfig{
			BronzePrice: 5000,
			SilverPrice: 15000,
			GoldPrice:   40000,
		},
	}

	price, err := ps.upgradePrice(models.TierGold)
	assert.NoError(t, err)
	assert.Equal(t, int64(40000), price)

	price, err = ps.upgradePrice(models.TierBronze)
	assert.NoError(t, err)
	assert.Equal(t, int64(5000), price)

	// the free tier cannot be purchased
	_, err = ps.upgradePrice(models.TierBasic)
	assert.ErrorIs(t, err, models.ErrInvalidTier)
}
