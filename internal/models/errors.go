package models

import "errors"

// Sentinel errors for the entitlement and payment core. Quota and gating
// violations are expected business outcomes and are matched with errors.Is
// by callers; database failures are wrapped separately and never map to
// these values.
var (
	ErrQuotaExceeded       = errors.New("advert quota exceeded")
	ErrFeatureNotAvailable = errors.New("feature not available on current tier")
	ErrInvalidTier         = errors.New("invalid tier")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrAlreadyFinalized    = errors.New("payment already finalized")
	ErrNotFound            = errors.New("not found")
)
