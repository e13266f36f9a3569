package queryengine

import (
	"fmt"
	"log/slog"

	"github.com/stayscout/stayscout/store"
)

// Verdict is the outcome of validating one candidate.
type Verdict struct {
	Valid  bool
	Reason string
}

// Validator is a defensive data-integrity gate against upstream data errors.
// It is not a relevance filter: a candidate passing every check is never
// dropped here, and a failing candidate is always dropped.
type Validator struct {
	bands TierBandsConfig
}

// NewValidator creates a new Validator.
func NewValidator(bands TierBandsConfig) *Validator {
	return &Validator{bands: bands}
}

// Validate checks one candidate. All checks are independent; the first
// failing check is reported.
func (v *Validator) Validate(c Candidate) Verdict {
	if c.Hotel.Price <= 0 {
		return Verdict{Reason: fmt.Sprintf("non-positive price %.2f", c.Hotel.Price)}
	}
	if c.Hotel.Tier != nil {
		if !v.priceMatchesTier(c.Hotel.Price, *c.Hotel.Tier) {
			return Verdict{Reason: fmt.Sprintf("price %.2f outside %s band", c.Hotel.Price, *c.Hotel.Tier)}
		}
	}
	if !store.IsValidCity(c.Hotel.Location) {
		return Verdict{Reason: fmt.Sprintf("unknown location %q", c.Hotel.Location)}
	}
	if c.SemanticScore < -1 || c.SemanticScore > 1 {
		return Verdict{Reason: fmt.Sprintf("semantic score %.4f out of range", c.SemanticScore)}
	}
	if c.Hotel.Name == "" {
		return Verdict{Reason: "empty name"}
	}
	return Verdict{Valid: true}
}

// priceMatchesTier checks the fixed tier price bands. The Mid-tier/Luxury
// overlap band accepts both tiers.
func (v *Validator) priceMatchesTier(price float64, tier store.Tier) bool {
	switch tier {
	case store.TierBudget:
		return price <= v.bands.BudgetMax
	case store.TierMid:
		return price >= v.bands.MidMin && price <= v.bands.MidMax
	case store.TierLuxury:
		return price >= v.bands.LuxuryMin
	}
	// Unknown tier strings were already coerced to nil upstream; anything
	// left here is an upstream data error.
	return false
}

// FilterValid drops invalid candidates, logging each drop. One bad record
// must not fail the whole query, so failures never reach the caller.
func (v *Validator) FilterValid(candidates []Candidate) []Candidate {
	valid := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		verdict := v.Validate(c)
		if !verdict.Valid {
			slog.Warn("dropping invalid candidate",
				"hotel", c.Hotel.Name,
				"uid", c.Hotel.UID,
				"reason", verdict.Reason)
			continue
		}
		valid = append(valid, c)
	}
	return valid
}
