// Package entitlement holds the static mapping from package tier to feature
// flags and numeric limits. It is pure lookup: the services decide when to
// consult it and the store applies the resulting mutations.
package entitlement

import (
	"fmt"

	"directory-service/internal/models"
)

// ProductsUnlimited marks a tier with no product count ceiling.
const ProductsUnlimited = -1

// DefaultGoldAdvertSlots is the advert quota granted on activation of the
// Gold tier. Overridable through configuration; see Table.
const DefaultGoldAdvertSlots = 3

// Feature names a tier-gated capability. The set is closed: unknown feature
// names are caller programming errors and are rejected, never silently denied.
type Feature string

const (
	FeatureContact     Feature = "contact"
	FeatureWebsite     Feature = "website"
	FeatureProducts    Feature = "products"
	FeatureSocialBoost Feature = "social_boost"
)

// ParseFeature validates a feature name received at the boundary.
func ParseFeature(s string) (Feature, error) {
	switch f := Feature(s); f {
	case FeatureContact, FeatureWebsite, FeatureProducts, FeatureSocialBoost:
		return f, nil
	default:
		return "", fmt.Errorf("%w: feature %q", models.ErrInvalidStatus, s)
	}
}

// Limits is the entitlement row for one tier.
type Limits struct {
	AdvertSlots     int
	ProductLimit    int
	CanListProducts bool
	CanShowContact  bool
	CanShowWebsite  bool
}

// Table resolves tiers to limits. GoldAdvertSlots is kept configurable
// because historical deployments disagreed on the value (3 vs 4); everything
// else is fixed.
type Table struct {
	GoldAdvertSlots int
}

// DefaultTable returns the table with the standard Gold quota.
func DefaultTable() Table {
	return Table{GoldAdvertSlots: DefaultGoldAdvertSlots}
}

// NewTable returns a table with a custom Gold advert quota. Non-positive
// values fall back to the default.
func NewTable(goldAdvertSlots int) Table {
	if goldAdvertSlots <= 0 {
		goldAdvertSlots = DefaultGoldAdvertSlots
	}
	return Table{GoldAdvertSlots: goldAdvertSlots}
}

// LimitsFor returns the entitlement row for a tier. An unknown tier is an
// input-contract violation and is rejected.
func (t Table) LimitsFor(tier models.Tier) (Limits, error) {
	switch tier {
	case models.TierBasic:
		return Limits{}, nil
	case models.TierBronze:
		return Limits{CanShowContact: true}, nil
	case models.TierSilver:
		return Limits{
			AdvertSlots:     1,
			ProductLimit:    20,
			CanListProducts: true,
			CanShowContact:  true,
			CanShowWebsite:  true,
		}, nil
	case models.TierGold:
		return Limits{
			AdvertSlots:     t.GoldAdvertSlots,
			ProductLimit:    ProductsUnlimited,
			CanListProducts: true,
			CanShowContact:  true,
			CanShowWebsite:  true,
		}, nil
	default:
		return Limits{}, fmt.Errorf("%w: %q", models.ErrInvalidTier, tier)
	}
}

// Allows reports whether the tier unlocks the named feature.
func (t Table) Allows(tier models.Tier, feature Feature) (bool, error) {
	limits, err := t.LimitsFor(tier)
	if err != nil {
		return false, err
	}
	switch feature {
	case FeatureContact:
		return limits.CanShowContact, nil
	case FeatureWebsite:
		return limits.CanShowWebsite, nil
	case FeatureProducts:
		return limits.CanListProducts, nil
	case FeatureSocialBoost:
		return tier == models.TierGold, nil
	default:
		return false, fmt.Errorf("%w: feature %q", models.ErrInvalidStatus, feature)
	}
}
