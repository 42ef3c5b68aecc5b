package entitlement

import (
	"testing"

	"directory-service/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestLimitsForEachTier(t *testing.T) {
	table := DefaultTable()

	tests := []struct {
		tier models.Tier
		want Limits
	}{
		{models.TierBasic, Limits{}},
		{models.TierBronze, Limits{CanShowContact: true}},
		{models.TierSilver, Limits{
			AdvertSlots:     1,
			ProductLimit:    20,
			CanListProducts: true,
			CanShowContact:  true,
			CanShowWebsite:  true,
		}},
		{models.TierGold, Limits{
			AdvertSlots:     DefaultGoldAdvertSlots,
			ProductLimit:    ProductsUnlimited,
			CanListProducts: true,
			CanShowContact:  true,
			CanShowWebsite:  true,
		}},
	}

	for _, tt := range tests {
		got, err := table.LimitsFor(tt.tier)
		assert.NoError(t, err, "tier %s", tt.tier)
		assert.Equal(t, tt.want, got, "tier %s", tt.tier)
	}
}

func TestLimitsForUnknownTier(t *testing.T) {
	table := DefaultTable()

	_, err := table.LimitsFor(models.Tier("platinum"))
	assert.ErrorIs(t, err, models.ErrInvalidTier)
}

func TestConfigurableGoldQuota(t *testing.T) {
	table := NewTable(4)

	limits, err := table.LimitsFor(models.TierGold)
	assert.NoError(t, err)
	assert.Equal(t, 4, limits.AdvertSlots)

	// non-positive override falls back to the default
	limits, err = NewTable(0).LimitsFor(models.TierGold)
	assert.NoError(t, err)
	assert.Equal(t, DefaultGoldAdvertSlots, limits.AdvertSlots)
}

func TestAllows(t *testing.T) {
	table := DefaultTable()

	tests := []struct {
		tier    models.Tier
		feature Feature
		want    bool
	}{
		{models.TierBasic, FeatureContact, false},
		{models.TierBronze, FeatureContact, true},
		{models.TierBronze, FeatureWebsite, false},
		{models.TierBronze, FeatureProducts, false},
		{models.TierSilver, FeatureProducts, true},
		{models.TierSilver, FeatureWebsite, true},
		{models.TierSilver, FeatureSocialBoost, false},
		{models.TierGold, FeatureSocialBoost, true},
	}

	for _, tt := range tests {
		got, err := table.Allows(tt.tier, tt.feature)
		assert.NoError(t, err, "%s/%s", tt.tier, tt.feature)
		assert.Equal(t, tt.want, got, "%s/%s", tt.tier, tt.feature)
	}
}

func TestAllowsUnknownFeature(t *testing.T) {
	table := DefaultTable()

	_, err := table.Allows(models.TierGold, Feature("hologram"))
	assert.ErrorIs(t, err, models.ErrInvalidStatus)
}

func TestParseFeature(t *testing.T) {
	f, err := ParseFeature("website")
	assert.NoError(t, err)
	assert.Equal(t, FeatureWebsite, f)

	_, err = ParseFeature("hologram")
	assert.ErrorIs(t, err, models.ErrInvalidStatus)
}
