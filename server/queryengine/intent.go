package queryengine

import (
	"context"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/stayscout/stayscout/store"
)

// Intent classifies what the user is optimizing for price-wise.
type Intent string

const (
	IntentMostExpensive Intent = "most_expensive"
	IntentCheapest      Intent = "cheapest"
	IntentPriceRange    Intent = "price_range"
	IntentNormal        Intent = "normal"
)

// Confidence constants per intent class. "normal" is the certain default,
// not a weaker guess.
const (
	superlativeConfidence = 0.9
	priceTargetConfidence = 0.85
	normalConfidence      = 1.0
)

// IntentDetection is the detector output, derived purely from the raw query
// string and independent of the structured parse.
type IntentDetection struct {
	Intent        Intent
	Confidence    float32
	MatchedPhrase string
	PriceTarget   *float64
	Location      string
}

// IntentDetector recognizes superlative and price-target phrasing with
// ordered pattern sets. English and Vietnamese vocabulary are both covered;
// a generic structured parse rarely maps "mắc nhất" to a usable price, so
// this runs as an independent, deterministic second opinion.
type IntentDetector struct {
	mostExpensivePatterns []*regexp.Regexp
	cheapestPatterns      []*regexp.Regexp
	priceTargetPatterns   []*regexp.Regexp
}

// NewIntentDetector creates a new IntentDetector.
func NewIntentDetector() *IntentDetector {
	return &IntentDetector{
		mostExpensivePatterns: []*regexp.Regexp{
			regexp.MustCompile(`most\s+expensive`),
			regexp.MustCompile(`most\s+luxurious`),
			regexp.MustCompile(`priciest`),
			regexp.MustCompile(`highest\s+price`),
			regexp.MustCompile(`mắc\s+nhất`),
			regexp.MustCompile(`đắt\s+nhất`),
			regexp.MustCompile(`sang\s+(?:trọng\s+)?nhất`),
			regexp.MustCompile(`cao\s+cấp\s+nhất`),
		},
		cheapestPatterns: []*regexp.Regexp{
			regexp.MustCompile(`cheapest`),
			regexp.MustCompile(`lowest\s+price`),
			regexp.MustCompile(`least\s+expensive`),
			regexp.MustCompile(`rẻ\s+nhất`),
			regexp.MustCompile(`giá\s+(?:rẻ|thấp)\s+nhất`),
			regexp.MustCompile(`tiết\s+kiệm\s+nhất`),
		},
		priceTargetPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?:around|about|approximately|roughly|near)\s*\$?\s*(\d+(?:\.\d+)?)`),
			regexp.MustCompile(`(?:khoảng|tầm|cỡ|chừng)\s*\$?\s*(\d+(?:\.\d+)?)`),
			regexp.MustCompile(`~\s*\$?\s*(\d+(?:\.\d+)?)`),
		},
	}
}

// Detect classifies the raw query. First matching pattern wins; the pattern
// classes are checked in priority order: most expensive, cheapest, price
// target, normal.
func (d *IntentDetector) Detect(query string) IntentDetection {
	q := strings.ToLower(strings.TrimSpace(query))

	for _, p := range d.mostExpensivePatterns {
		if m := p.FindString(q); m != "" {
			return IntentDetection{
				Intent:        IntentMostExpensive,
				Confidence:    superlativeConfidence,
				MatchedPhrase: m,
				Location:      detectCity(q),
			}
		}
	}

	for _, p := range d.cheapestPatterns {
		if m := p.FindString(q); m != "" {
			return IntentDetection{
				Intent:        IntentCheapest,
				Confidence:    superlativeConfidence,
				MatchedPhrase: m,
				Location:      detectCity(q),
			}
		}
	}

	for _, p := range d.priceTargetPatterns {
		if m := p.FindStringSubmatch(q); m != nil {
			target, err := strconv.ParseFloat(m[1], 64)
			if err == nil && target > 0 {
				return IntentDetection{
					Intent:        IntentPriceRange,
					Confidence:    priceTargetConfidence,
					MatchedPhrase: m[0],
					PriceTarget:   &target,
					Location:      detectCity(q),
				}
			}
		}
	}

	return IntentDetection{
		Intent:     IntentNormal,
		Confidence: normalConfidence,
	}
}

// detectCity matches catalog cities by substring against the lowercase query.
func detectCity(queryLower string) string {
	for _, city := range store.Cities() {
		if strings.Contains(queryLower, strings.ToLower(city)) {
			return city
		}
	}
	return ""
}

// StatsSource provides the catalog statistics the intent override consumes.
// *store.Store satisfies it.
type StatsSource interface {
	GetLocationStats(ctx context.Context, location string) (*store.CatalogStats, error)
	GetCatalogStats(ctx context.Context) (*store.CatalogStats, error)
}

// ApplyIntentOverride translates a detected intent into concrete hint
// fields using catalog statistics. It returns a new hints copy; the input
// is never mutated. The override requires a known location and is a no-op
// for normal intent.
func ApplyIntentOverride(ctx context.Context, config *Config, stats StatsSource, hints SearchHints, detection IntentDetection) (SearchHints, error) {
	if detection.Intent == IntentNormal || hints.Location == "" {
		return hints, nil
	}

	switch detection.Intent {
	case IntentMostExpensive:
		locStats, err := stats.GetLocationStats(ctx, hints.Location)
		if err != nil {
			return hints, err
		}
		catalogStats, err := stats.GetCatalogStats(ctx)
		if err != nil {
			return hints, err
		}
		tier := store.TierLuxury
		hints.Tier = &tier
		floor := math.Floor(config.Intent.ExpensiveFloorRatio * locStats.MaxPrice)
		if catalogStats.MinPrice > floor {
			floor = catalogStats.MinPrice
		}
		hints.MinPrice = &floor
		hints.MaxPrice = nil
		hints.SortIntent = SortPriceDesc

	case IntentCheapest:
		tier := store.TierBudget
		hints.Tier = &tier
		ceiling := config.Intent.CheapestCeiling
		hints.MaxPrice = &ceiling
		hints.MinPrice = nil
		hints.SortIntent = SortPriceAsc

	case IntentPriceRange:
		if detection.PriceTarget != nil {
			lo := math.Floor((1 - config.Intent.PriceTargetSpread) * *detection.PriceTarget)
			hi := math.Ceil((1 + config.Intent.PriceTargetSpread) * *detection.PriceTarget)
			hints.MinPrice = &lo
			hints.MaxPrice = &hi
		}
	}

	return hints, nil
}
