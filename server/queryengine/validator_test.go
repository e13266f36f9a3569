package queryengine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stayscout/stayscout/store"
)

func defaultValidator() *Validator {
	return NewValidator(DefaultConfig().TierBands)
}

func TestValidatorValidate(t *testing.T) {
	validator := defaultValidator()

	tests := []struct {
		name      string
		candidate Candidate
		wantValid bool
	}{
		{
			name:      "valid budget hotel",
			candidate: Candidate{Hotel: testHotel("Backpacker Inn", "Sydney", 85, store.TierBudget), SemanticScore: 0.4},
			wantValid: true,
		},
		{
			name:      "zero price",
			candidate: Candidate{Hotel: testHotel("Free Hotel", "Sydney", 0, store.TierBudget)},
			wantValid: false,
		},
		{
			name:      "negative price",
			candidate: Candidate{Hotel: testHotel("Refund Hotel", "Sydney", -20, store.TierBudget)},
			wantValid: false,
		},
		{
			name:      "budget priced like luxury",
			candidate: Candidate{Hotel: testHotel("Mislabeled", "Sydney", 480, store.TierBudget)},
			wantValid: false,
		},
		{
			name:      "luxury priced like budget",
			candidate: Candidate{Hotel: testHotel("Mislabeled", "Sydney", 90, store.TierLuxury)},
			wantValid: false,
		},
		{
			name:      "mid below band",
			candidate: Candidate{Hotel: testHotel("Too Cheap", "Sydney", 120, store.TierMid)},
			wantValid: false,
		},
		{
			name:      "overlap band valid as mid",
			candidate: Candidate{Hotel: testHotel("Overlap Mid", "Sydney", 350, store.TierMid)},
			wantValid: true,
		},
		{
			name:      "overlap band valid as luxury",
			candidate: Candidate{Hotel: testHotel("Overlap Lux", "Sydney", 350, store.TierLuxury)},
			wantValid: true,
		},
		{
			name:      "budget band edge",
			candidate: Candidate{Hotel: testHotel("Edge", "Sydney", 150, store.TierBudget)},
			wantValid: true,
		},
		{
			name:      "unknown city",
			candidate: Candidate{Hotel: testHotel("Remote Lodge", "Perth", 200, store.TierMid)},
			wantValid: false,
		},
		{
			name:      "semantic score out of range",
			candidate: Candidate{Hotel: testHotel("Weird Score", "Sydney", 200, store.TierMid), SemanticScore: 1.5},
			wantValid: false,
		},
		{
			name:      "semantic score lower bound",
			candidate: Candidate{Hotel: testHotel("Opposite", "Sydney", 200, store.TierMid), SemanticScore: -1.0},
			wantValid: true,
		},
		{
			name:      "empty name",
			candidate: Candidate{Hotel: testHotel("", "Sydney", 200, store.TierMid)},
			wantValid: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := validator.Validate(tt.candidate)
			assert.Equal(t, tt.wantValid, verdict.Valid)
			if !tt.wantValid {
				assert.NotEmpty(t, verdict.Reason)
			}
		})
	}
}

func TestValidatorNilTierSkipsBandCheck(t *testing.T) {
	validator := defaultValidator()
	c := Candidate{Hotel: &store.Hotel{Name: "Unrated", Location: "Sydney", Price: 999}}
	assert.True(t, validator.Validate(c).Valid)
}

func TestValidatorFilterValid(t *testing.T) {
	validator := defaultValidator()
	candidates := []Candidate{
		{Hotel: testHotel("Good", "Sydney", 120, store.TierBudget)},
		{Hotel: testHotel("Bad Price", "Sydney", -5, store.TierBudget)},
		{Hotel: testHotel("Also Good", "Melbourne", 320, store.TierLuxury)},
		{Hotel: testHotel("Bad City", "Hobart", 100, store.TierBudget)},
	}

	valid := validator.FilterValid(candidates)
	assert.Len(t, valid, 2)
	assert.Equal(t, "Good", valid[0].Hotel.Name)
	assert.Equal(t, "Also Good", valid[1].Hotel.Name)
}
