package queryengine

import (
	"fmt"
	"strings"
)

// ExplanationBuilder produces the per-result match justification. Output is
// fully deterministic: same candidate and hints, same string.
type ExplanationBuilder struct{}

// NewExplanationBuilder creates a new ExplanationBuilder.
func NewExplanationBuilder() *ExplanationBuilder {
	return &ExplanationBuilder{}
}

// Build composes the explanation clauses for one returned candidate.
func (b *ExplanationBuilder) Build(c Candidate, hints SearchHints) string {
	clauses := []string{"Located in " + c.Hotel.Location}

	if hints.MaxPrice != nil && c.Hotel.Price <= *hints.MaxPrice {
		clauses = append(clauses, fmt.Sprintf("$%.0f/night within budget", c.Hotel.Price))
	} else {
		clauses = append(clauses, fmt.Sprintf("$%.0f/night", c.Hotel.Price))
	}

	if c.Hotel.Tier != nil {
		if hints.Tier != nil && *c.Hotel.Tier == *hints.Tier {
			clauses = append(clauses, string(*c.Hotel.Tier)+" as requested")
		} else {
			clauses = append(clauses, string(*c.Hotel.Tier))
		}
	}

	if matched := matchedAmenities(hints.Amenities, c.Hotel.Amenities); len(matched) > 0 {
		clauses = append(clauses, "offers "+strings.Join(matched, ", "))
	}

	clauses = append(clauses, fmt.Sprintf("match: semantic %.0f%%, keywords %.0f%%",
		(c.SemanticScore+1)/2*100, c.LexicalScore*100))

	return strings.Join(clauses, "; ")
}

// matchedAmenities returns the requested amenities that substring-match any
// candidate amenity, case-insensitively, in request order.
func matchedAmenities(requested, available []string) []string {
	matched := []string{}
	for _, want := range requested {
		w := strings.ToLower(want)
		for _, have := range available {
			h := strings.ToLower(have)
			if strings.Contains(h, w) || strings.Contains(w, h) {
				matched = append(matched, want)
				break
			}
		}
	}
	return matched
}
