package queryengine

import (
	"sort"
)

// Selector orders and bounds the final result list.
type Selector struct {
	results ResultsConfig
}

// NewSelector creates a new Selector.
func NewSelector(results ResultsConfig) *Selector {
	return &Selector{results: results}
}

// Select sorts candidates per the sort intent and truncates to the
// configured bounds. Price intent always wins once detected: relevance
// scores are ignored entirely for price_asc/price_desc. For relevance
// order, an exact combined-score tie is broken by ascending price so the
// order is reproducible.
func (s *Selector) Select(candidates []Candidate, sortIntent SortIntent) []Candidate {
	selected := make([]Candidate, len(candidates))
	copy(selected, candidates)

	switch sortIntent {
	case SortPriceAsc:
		sort.SliceStable(selected, func(i, j int) bool {
			return selected[i].Hotel.Price < selected[j].Hotel.Price
		})
	case SortPriceDesc:
		sort.SliceStable(selected, func(i, j int) bool {
			return selected[i].Hotel.Price > selected[j].Hotel.Price
		})
	default:
		sort.SliceStable(selected, func(i, j int) bool {
			if selected[i].CombinedScore == selected[j].CombinedScore {
				return selected[i].Hotel.Price < selected[j].Hotel.Price
			}
			return selected[i].CombinedScore > selected[j].CombinedScore
		})
	}

	// Return as many as available up to maxResults; never pad below
	// minResults, an undersized catalog slice returns whole.
	bound := s.Bound(len(selected))
	return selected[:bound]
}

// Bound computes the output size for k available candidates:
// min(maxResults, max(minResults, k)), capped at k.
func (s *Selector) Bound(k int) int {
	bound := k
	if bound < s.results.MinResults {
		bound = s.results.MinResults
	}
	if bound > s.results.MaxResults {
		bound = s.results.MaxResults
	}
	if bound > k {
		bound = k
	}
	return bound
}
