package store

// CatalogStats summarizes prices over a slice of the active catalog.
// Statistics are read-only reference data for the query engine; the
// intent detector uses them to turn superlative language into bounds.
type CatalogStats struct {
	MinPrice    float64
	MaxPrice    float64
	AvgPrice    float64
	MedianPrice float64
	Count       int
}

// TierStats extends CatalogStats with a recommended price range for the tier.
type TierStats struct {
	CatalogStats

	RecommendedMin float64
	RecommendedMax float64
}
