package queryengine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayscout/stayscout/store"
)

func TestIntentDetectorDetect(t *testing.T) {
	detector := NewIntentDetector()

	tests := []struct {
		name        string
		query       string
		wantIntent  Intent
		wantTarget  *float64
		wantCity    string
		wantMinConf float32
	}{
		{"plain query", "quiet hotel with a pool", IntentNormal, nil, "", 1.0},
		{"most expensive", "most expensive hotel in Sydney", IntentMostExpensive, nil, "Sydney", 0.9},
		{"priciest", "show me the priciest option", IntentMostExpensive, nil, "", 0.9},
		{"most luxurious", "the most luxurious stay in Melbourne", IntentMostExpensive, nil, "Melbourne", 0.9},
		{"vietnamese most expensive", "khách sạn mắc nhất ở Sydney", IntentMostExpensive, nil, "Sydney", 0.9},
		{"vietnamese dat nhat", "khách sạn đắt nhất", IntentMostExpensive, nil, "", 0.9},
		{"cheapest", "cheapest hotel in Melbourne", IntentCheapest, nil, "Melbourne", 0.9},
		{"lowest price", "lowest price place in Brisbane", IntentCheapest, nil, "Brisbane", 0.9},
		{"vietnamese cheapest", "khách sạn rẻ nhất ở Brisbane", IntentCheapest, nil, "Brisbane", 0.9},
		{"around price", "hotel around $200 in Brisbane", IntentPriceRange, floatPtr(200), "Brisbane", 0.85},
		{"about price no dollar", "somewhere about 150 a night", IntentPriceRange, floatPtr(150), "", 0.85},
		{"vietnamese khoang", "khách sạn khoảng $120 ở Sydney", IntentPriceRange, floatPtr(120), "Sydney", 0.85},
		{"tilde price", "something ~ $90", IntentPriceRange, floatPtr(90), "", 0.85},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detector.Detect(tt.query)
			assert.Equal(t, tt.wantIntent, got.Intent)
			assert.Equal(t, tt.wantCity, got.Location)
			assert.InDelta(t, tt.wantMinConf, got.Confidence, 1e-6)
			if tt.wantTarget == nil {
				assert.Nil(t, got.PriceTarget)
			} else {
				require.NotNil(t, got.PriceTarget)
				assert.Equal(t, *tt.wantTarget, *got.PriceTarget)
			}
			if tt.wantIntent != IntentNormal {
				assert.NotEmpty(t, got.MatchedPhrase)
			}
		})
	}
}

func TestIntentDetectorPriorityOrder(t *testing.T) {
	detector := NewIntentDetector()
	// Superlatives outrank price targets when both appear.
	got := detector.Detect("most expensive hotel around $300 in Sydney")
	assert.Equal(t, IntentMostExpensive, got.Intent)
}

func TestIntentDetectorCaseInsensitive(t *testing.T) {
	detector := NewIntentDetector()
	got := detector.Detect("CHEAPEST hotel in MELBOURNE")
	assert.Equal(t, IntentCheapest, got.Intent)
	assert.Equal(t, "Melbourne", got.Location)
}

// fakeStats is an in-memory StatsSource for override tests.
type fakeStats struct {
	location *store.CatalogStats
	catalog  *store.CatalogStats
	err      error
}

func (f *fakeStats) GetLocationStats(_ context.Context, _ string) (*store.CatalogStats, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.location, nil
}

func (f *fakeStats) GetCatalogStats(_ context.Context) (*store.CatalogStats, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.catalog, nil
}

func TestApplyIntentOverrideMostExpensive(t *testing.T) {
	stats := &fakeStats{
		location: &store.CatalogStats{MinPrice: 80, MaxPrice: 500, Count: 12},
		catalog:  &store.CatalogStats{MinPrice: 45, MaxPrice: 520, Count: 90},
	}
	hints := SearchHints{Location: "Sydney", SortIntent: SortRelevance}
	detection := IntentDetection{Intent: IntentMostExpensive, Location: "Sydney"}

	got, err := ApplyIntentOverride(context.Background(), DefaultConfig(), stats, hints, detection)
	require.NoError(t, err)

	require.NotNil(t, got.Tier)
	assert.Equal(t, store.TierLuxury, *got.Tier)
	require.NotNil(t, got.MinPrice)
	assert.Equal(t, 400.0, *got.MinPrice) // floor(0.8 * 500)
	assert.Nil(t, got.MaxPrice)
	assert.Equal(t, SortPriceDesc, got.SortIntent)

	// Input untouched.
	assert.Nil(t, hints.Tier)
	assert.Equal(t, SortRelevance, hints.SortIntent)
}

func TestApplyIntentOverrideMostExpensiveFloorClampedToCatalogMin(t *testing.T) {
	// A tiny location where 80% of the max undercuts the global minimum.
	stats := &fakeStats{
		location: &store.CatalogStats{MinPrice: 50, MaxPrice: 55, Count: 1},
		catalog:  &store.CatalogStats{MinPrice: 45, MaxPrice: 520, Count: 90},
	}
	hints := SearchHints{Location: "Brisbane"}
	detection := IntentDetection{Intent: IntentMostExpensive}

	got, err := ApplyIntentOverride(context.Background(), DefaultConfig(), stats, hints, detection)
	require.NoError(t, err)
	require.NotNil(t, got.MinPrice)
	assert.Equal(t, 45.0, *got.MinPrice)
}

func TestApplyIntentOverrideCheapest(t *testing.T) {
	hints := SearchHints{Location: "Melbourne", MinPrice: floatPtr(100)}
	detection := IntentDetection{Intent: IntentCheapest}

	got, err := ApplyIntentOverride(context.Background(), DefaultConfig(), &fakeStats{}, hints, detection)
	require.NoError(t, err)

	require.NotNil(t, got.Tier)
	assert.Equal(t, store.TierBudget, *got.Tier)
	require.NotNil(t, got.MaxPrice)
	assert.Equal(t, 50.0, *got.MaxPrice)
	assert.Nil(t, got.MinPrice)
	assert.Equal(t, SortPriceAsc, got.SortIntent)
}

func TestApplyIntentOverridePriceRange(t *testing.T) {
	hints := SearchHints{Location: "Brisbane"}
	detection := IntentDetection{Intent: IntentPriceRange, PriceTarget: floatPtr(200)}

	got, err := ApplyIntentOverride(context.Background(), DefaultConfig(), &fakeStats{}, hints, detection)
	require.NoError(t, err)

	require.NotNil(t, got.MinPrice)
	require.NotNil(t, got.MaxPrice)
	assert.Equal(t, 160.0, *got.MinPrice)
	assert.Equal(t, 240.0, *got.MaxPrice)
}

func TestApplyIntentOverrideNoOpCases(t *testing.T) {
	config := DefaultConfig()

	t.Run("normal intent", func(t *testing.T) {
		hints := SearchHints{Location: "Sydney", MaxPrice: floatPtr(180)}
		got, err := ApplyIntentOverride(context.Background(), config, &fakeStats{}, hints, IntentDetection{Intent: IntentNormal})
		require.NoError(t, err)
		assert.Equal(t, hints, got)
	})

	t.Run("unknown location", func(t *testing.T) {
		hints := SearchHints{}
		got, err := ApplyIntentOverride(context.Background(), config, &fakeStats{}, hints, IntentDetection{Intent: IntentCheapest})
		require.NoError(t, err)
		assert.Equal(t, hints, got)
	})
}

func TestApplyIntentOverrideStatsError(t *testing.T) {
	stats := &fakeStats{err: assert.AnError}
	hints := SearchHints{Location: "Sydney"}
	detection := IntentDetection{Intent: IntentMostExpensive}

	_, err := ApplyIntentOverride(context.Background(), DefaultConfig(), stats, hints, detection)
	assert.Error(t, err)
}

func floatPtr(v float64) *float64 {
	return &v
}
