package queryengine

import (
	"strings"
)

// LexicalScorer computes keyword relevance in [0, 1] using BM25 term
// weighting blended with raw keyword coverage. Pure BM25 over a handful of
// keywords and short texts is noisy; coverage rewards hotels that touch
// every requested concept at least once, which matters more than term
// frequency at this catalog size. No IDF: the catalog is too small for
// corpus statistics to mean anything, so every keyword weighs the same.
type LexicalScorer struct {
	config ScoringConfig
}

// NewLexicalScorer creates a new LexicalScorer.
func NewLexicalScorer(config ScoringConfig) *LexicalScorer {
	return &LexicalScorer{config: config}
}

// Score scores one candidate document against the keyword set.
func (s *LexicalScorer) Score(candidate Candidate, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0
	}

	doc := candidate.document()
	docLength := float64(len(doc))
	k1 := s.config.BM25K1
	b := s.config.BM25B

	accumulated := 0.0
	matched := 0
	for _, kw := range keywords {
		termFreq := float64(strings.Count(doc, kw))
		if termFreq == 0 {
			continue
		}
		matched++
		norm := termFreq + k1*(1-b+b*docLength/s.config.AvgDocLength)
		accumulated += termFreq * (k1 + 1) / norm
	}

	normalized := accumulated / (float64(len(keywords)) * (k1 + 1))
	if normalized > 1 {
		normalized = 1
	}
	coverage := float64(matched) / float64(len(keywords))

	score := s.config.TermWeight*normalized + s.config.CoverageWeight*coverage
	return clamp01(score)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
