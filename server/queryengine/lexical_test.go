package queryengine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stayscout/stayscout/store"
)

func defaultScorer() *LexicalScorer {
	return NewLexicalScorer(DefaultConfig().Scoring)
}

func descHotel(description string) Candidate {
	tier := store.TierMid
	return Candidate{Hotel: &store.Hotel{
		Name:        "Test Hotel",
		Description: description,
		Location:    "Sydney",
		Price:       200,
		Tier:        &tier,
	}}
}

func TestLexicalScoreRange(t *testing.T) {
	scorer := defaultScorer()
	candidates := []Candidate{
		descHotel(""),
		descHotel("quiet"),
		descHotel(strings.Repeat("quiet peaceful beachfront pool spa ", 40)),
	}
	keywords := []string{"quiet", "pool", "spa", "gym"}

	for _, c := range candidates {
		score := scorer.Score(c, keywords)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 1.0)
	}
}

func TestLexicalScoreEmptyKeywords(t *testing.T) {
	scorer := defaultScorer()
	assert.Zero(t, scorer.Score(descHotel("quiet peaceful retreat"), nil))
	assert.Zero(t, scorer.Score(descHotel("quiet peaceful retreat"), []string{}))
}

func TestLexicalScoreNoMatches(t *testing.T) {
	scorer := defaultScorer()
	assert.Zero(t, scorer.Score(descHotel("downtown business tower"), []string{"beachfront", "snorkeling"}))
}

func TestLexicalTermFrequencyMonotonic(t *testing.T) {
	scorer := defaultScorer()
	once := descHotel("a quiet hotel near the park")
	thrice := descHotel("a quiet hotel, quiet rooms, quiet garden near the park")

	scoreOnce := scorer.Score(once, []string{"quiet"})
	scoreThrice := scorer.Score(thrice, []string{"quiet"})
	assert.Greater(t, scoreThrice, scoreOnce,
		"more occurrences of the same keyword must score at least as high")
}

func TestLexicalCoverageRewarded(t *testing.T) {
	scorer := defaultScorer()
	keywords := []string{"quiet", "pool", "spa"}

	// One hotel repeats a single keyword; the other covers all three once.
	repeats := descHotel("quiet quiet quiet quiet quiet quiet")
	covers := descHotel("quiet retreat with pool and spa")

	assert.Greater(t, scorer.Score(covers, keywords), scorer.Score(repeats, keywords))
}

func TestLexicalScoreUsesAmenities(t *testing.T) {
	scorer := defaultScorer()
	tier := store.TierMid
	withAmenity := Candidate{Hotel: &store.Hotel{
		Name:      "Plain Name",
		Location:  "Sydney",
		Price:     200,
		Tier:      &tier,
		Amenities: []string{"rooftop pool", "gym"},
	}}
	without := Candidate{Hotel: &store.Hotel{
		Name:     "Plain Name",
		Location: "Sydney",
		Price:    200,
		Tier:     &tier,
	}}

	keywords := []string{"pool"}
	assert.Greater(t, scorer.Score(withAmenity, keywords), scorer.Score(without, keywords))
}

func TestLexicalScoreDeterministic(t *testing.T) {
	scorer := defaultScorer()
	c := descHotel("quiet beachfront hotel with pool and spa")
	keywords := []string{"quiet", "pool"}
	first := scorer.Score(c, keywords)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, scorer.Score(c, keywords))
	}
}
