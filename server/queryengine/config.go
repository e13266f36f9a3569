package queryengine

import (
	"fmt"
)

// Config holds all tunable constants of the query pipeline. Weights and
// bands are explicit configuration rather than hidden module constants so
// alternate weightings can be tested without code changes.
type Config struct {
	// Scoring configuration
	Scoring ScoringConfig `json:"scoring" yaml:"scoring"`

	// Tier price bands used by the result validator
	TierBands TierBandsConfig `json:"tierBands" yaml:"tierBands"`

	// Result bounding configuration
	Results ResultsConfig `json:"results" yaml:"results"`

	// Retrieval configuration
	Retrieval RetrievalConfig `json:"retrieval" yaml:"retrieval"`

	// Intent override configuration
	Intent IntentConfig `json:"intent" yaml:"intent"`
}

// ScoringConfig configures the lexical scorer and the score combiner.
type ScoringConfig struct {
	// Weight of the semantic score in the combined score
	SemanticWeight float64 `json:"semanticWeight" yaml:"semanticWeight"`
	// BM25 term saturation constant
	BM25K1 float64 `json:"bm25K1" yaml:"bm25K1"`
	// BM25 length normalization constant
	BM25B float64 `json:"bm25B" yaml:"bm25B"`
	// Assumed average document length in characters
	AvgDocLength float64 `json:"avgDocLength" yaml:"avgDocLength"`
	// Weight of the normalized BM25 accumulation in the lexical score
	TermWeight float64 `json:"termWeight" yaml:"termWeight"`
	// Weight of the keyword coverage fraction in the lexical score
	CoverageWeight float64 `json:"coverageWeight" yaml:"coverageWeight"`
	// Minimum token length when falling back to raw query words
	MinFallbackTokenLen int `json:"minFallbackTokenLen" yaml:"minFallbackTokenLen"`
}

// TierBandsConfig are the accepted price bands per tier. The 300-400 overlap
// between Mid-tier and Luxury is deliberate; real pricing is fuzzy there.
type TierBandsConfig struct {
	BudgetMax float64 `json:"budgetMax" yaml:"budgetMax"`
	MidMin    float64 `json:"midMin" yaml:"midMin"`
	MidMax    float64 `json:"midMax" yaml:"midMax"`
	LuxuryMin float64 `json:"luxuryMin" yaml:"luxuryMin"`
}

// ResultsConfig bounds the final result list.
type ResultsConfig struct {
	MinResults int `json:"minResults" yaml:"minResults"`
	MaxResults int `json:"maxResults" yaml:"maxResults"`
}

// RetrievalConfig configures the candidate retrieval call.
type RetrievalConfig struct {
	// Max candidates requested from vector retrieval
	Limit int `json:"limit" yaml:"limit"`
}

// IntentConfig configures the intent-to-hints override.
type IntentConfig struct {
	// Price ceiling applied for "cheapest" queries. Deriving this purely
	// from the catalog minimum proved too tight in practice, so it is a
	// per-catalog tunable.
	CheapestCeiling float64 `json:"cheapestCeiling" yaml:"cheapestCeiling"`
	// Fraction of the location maximum used as the floor for
	// "most expensive" queries
	ExpensiveFloorRatio float64 `json:"expensiveFloorRatio" yaml:"expensiveFloorRatio"`
	// Band applied around an explicit price target
	PriceTargetSpread float64 `json:"priceTargetSpread" yaml:"priceTargetSpread"`
}

// DefaultConfig returns the default pipeline configuration.
func DefaultConfig() *Config {
	return &Config{
		Scoring: ScoringConfig{
			SemanticWeight:      0.5,
			BM25K1:              1.5,
			BM25B:               0.75,
			AvgDocLength:        200,
			TermWeight:          0.6,
			CoverageWeight:      0.4,
			MinFallbackTokenLen: 2,
		},
		TierBands: TierBandsConfig{
			BudgetMax: 150,
			MidMin:    150,
			MidMax:    400,
			LuxuryMin: 300,
		},
		Results: ResultsConfig{
			MinResults: 3,
			MaxResults: 5,
		},
		Retrieval: RetrievalConfig{
			Limit: 20,
		},
		Intent: IntentConfig{
			CheapestCeiling:     50,
			ExpensiveFloorRatio: 0.8,
			PriceTargetSpread:   0.2,
		},
	}
}

// ValidateConfig verifies config consistency.
func ValidateConfig(config *Config) error {
	if config.Scoring.SemanticWeight < 0 || config.Scoring.SemanticWeight > 1 {
		return ErrInvalidConfig{Field: "Scoring.SemanticWeight", Value: config.Scoring.SemanticWeight}
	}
	if config.Scoring.BM25K1 <= 0 {
		return ErrInvalidConfig{Field: "Scoring.BM25K1", Value: config.Scoring.BM25K1}
	}
	if config.Scoring.BM25B < 0 || config.Scoring.BM25B > 1 {
		return ErrInvalidConfig{Field: "Scoring.BM25B", Value: config.Scoring.BM25B}
	}
	if config.Scoring.AvgDocLength <= 0 {
		return ErrInvalidConfig{Field: "Scoring.AvgDocLength", Value: config.Scoring.AvgDocLength}
	}
	if config.Scoring.TermWeight+config.Scoring.CoverageWeight <= 0 {
		return ErrInvalidConfig{Field: "Scoring.TermWeight", Value: config.Scoring.TermWeight}
	}
	if config.TierBands.BudgetMax <= 0 || config.TierBands.MidMax <= config.TierBands.MidMin {
		return ErrInvalidConfig{Field: "TierBands", Value: config.TierBands}
	}
	if config.TierBands.LuxuryMin > config.TierBands.MidMax {
		// The Mid/Luxury overlap band must exist, otherwise prices between
		// the two bands validate as neither tier.
		return ErrInvalidConfig{Field: "TierBands.LuxuryMin", Value: config.TierBands.LuxuryMin}
	}
	if config.Results.MinResults < 1 || config.Results.MaxResults < config.Results.MinResults {
		return ErrInvalidConfig{Field: "Results", Value: config.Results}
	}
	if config.Retrieval.Limit < config.Results.MaxResults {
		return ErrInvalidConfig{Field: "Retrieval.Limit", Value: config.Retrieval.Limit}
	}
	if config.Intent.CheapestCeiling <= 0 {
		return ErrInvalidConfig{Field: "Intent.CheapestCeiling", Value: config.Intent.CheapestCeiling}
	}
	if config.Intent.ExpensiveFloorRatio <= 0 || config.Intent.ExpensiveFloorRatio > 1 {
		return ErrInvalidConfig{Field: "Intent.ExpensiveFloorRatio", Value: config.Intent.ExpensiveFloorRatio}
	}
	if config.Intent.PriceTargetSpread <= 0 || config.Intent.PriceTargetSpread >= 1 {
		return ErrInvalidConfig{Field: "Intent.PriceTargetSpread", Value: config.Intent.PriceTargetSpread}
	}
	return nil
}

// ErrInvalidConfig reports an invalid configuration field.
type ErrInvalidConfig struct {
	Field string
	Value interface{}
}

func (e ErrInvalidConfig) Error() string {
	return fmt.Sprintf("invalid config field '%s': %v", e.Field, e.Value)
}
