package service

import (
	"testing"

	"directory-service/internal/entitlement"
	"directory-service/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCheckProductGate(t *testing.T) {
	as := &AdvertService{table: entitlement.DefaultTable()}

	bronze := &models.Business{ID: 1, Tier: models.TierBronze}
	err := as.checkProductGate(bronze, 0)
	assert.ErrorIs(t, err, models.ErrFeatureNotAvailable)

	silver := &models.Business{ID: 2, Tier: models.TierSilver}
	assert.NoError(t, as.checkProductGate(silver, 0))
	assert.NoError(t, as.checkProductGate(silver, 19))

	// silver caps out at 20 products
	err = as.checkProductGate(silver, 20)
	assert.ErrorIs(t, err, models.ErrQuotaExceeded)

	// gold is unlimited
	gold := &models.Business{ID: 3, Tier: models.TierGold}
	assert.NoError(t, as.checkProductGate(gold, 5000))
}

func TestCheckProductGateUnknownTier(t *testing.T) {
	as := &AdvertService{table: entitlement.DefaultTable()}

	b := &models.Business{ID: 1, Tier: models.Tier("platinum")}
	err := as.checkProductGate(b, 0)
	assert.ErrorIs(t, err, models.ErrInvalidTier)
}
