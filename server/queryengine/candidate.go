package queryengine

import (
	"strings"

	"github.com/stayscout/stayscout/store"
)

// Candidate is a catalog record flowing through the ranking pipeline.
// Candidates are created fresh per query from retrieval output; stages
// annotate copies rather than mutating shared state.
type Candidate struct {
	Hotel *store.Hotel

	// SemanticScore is cosine-similarity-derived, in [-1, 1].
	SemanticScore float64
	// LexicalScore is the keyword relevance score, in [0, 1].
	LexicalScore float64
	// CombinedScore is the blended ranking score, in [0, 1].
	CombinedScore float64
}

// candidatesFromScored converts retrieval output into pipeline candidates.
func candidatesFromScored(scored []*store.ScoredHotel) []Candidate {
	candidates := make([]Candidate, 0, len(scored))
	for _, s := range scored {
		candidates = append(candidates, Candidate{
			Hotel:         s.Hotel,
			SemanticScore: float64(s.Similarity),
		})
	}
	return candidates
}

// document returns the lowercase text blob the lexical scorer and the
// context filter match against.
func (c Candidate) document() string {
	parts := []string{c.Hotel.Name, c.Hotel.Description}
	if c.Hotel.Tier != nil {
		parts = append(parts, string(*c.Hotel.Tier))
	}
	parts = append(parts, c.Hotel.Amenities...)
	return strings.ToLower(strings.Join(parts, " "))
}
