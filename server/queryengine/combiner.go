package queryengine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/stayscout/stayscout/plugin/ai"
)

// Combine blends a semantic score in [-1, 1] and a lexical score in [0, 1]
// into one comparable ranking score in [0, 1]. Pure and total.
func Combine(semanticScore, lexicalScore, semanticWeight float64) float64 {
	normalized := (semanticScore + 1) / 2
	return clamp01(normalized*semanticWeight + lexicalScore*(1-semanticWeight))
}

// RankingStrategy assigns combined scores to candidates. The default is the
// deterministic weighted blend; a generative reranker can be plugged in
// behind the same interface.
type RankingStrategy interface {
	Name() string
	// Rank returns a new slice with CombinedScore populated on every
	// candidate. Order of the returned slice is not significant; the
	// result selector sorts.
	Rank(ctx context.Context, query string, candidates []Candidate) []Candidate
}

// WeightedStrategy is the deterministic combined-score strategy.
type WeightedStrategy struct {
	semanticWeight float64
}

// NewWeightedStrategy creates the default ranking strategy.
func NewWeightedStrategy(semanticWeight float64) *WeightedStrategy {
	return &WeightedStrategy{semanticWeight: semanticWeight}
}

func (s *WeightedStrategy) Name() string {
	return "weighted"
}

func (s *WeightedStrategy) Rank(_ context.Context, _ string, candidates []Candidate) []Candidate {
	ranked := make([]Candidate, len(candidates))
	for i, c := range candidates {
		c.CombinedScore = Combine(c.SemanticScore, c.LexicalScore, s.semanticWeight)
		ranked[i] = c
	}
	return ranked
}

// vagueValuePhrases trigger the generative rerank; anything else stays on
// the deterministic path.
var vagueValuePhrases = []string{
	"best value", "good value", "best deal", "worth it", "bang for",
	"đáng giá", "đáng tiền", "hời nhất", "hợp lý nhất",
}

// LLMRerankStrategy asks a generative model to reorder candidates for vague
// "best value" requests. It degrades to the fallback strategy whenever the
// trigger phrases are absent or the generative call fails, so ranking stays
// deterministic in every non-vague case.
type LLMRerankStrategy struct {
	llm      ai.LLMService
	fallback RankingStrategy
}

// NewLLMRerankStrategy creates a rerank strategy wrapping fallback.
func NewLLMRerankStrategy(llm ai.LLMService, fallback RankingStrategy) *LLMRerankStrategy {
	return &LLMRerankStrategy{llm: llm, fallback: fallback}
}

func (s *LLMRerankStrategy) Name() string {
	return "llm_rerank"
}

func (s *LLMRerankStrategy) Rank(ctx context.Context, query string, candidates []Candidate) []Candidate {
	if s.llm == nil || !hasVagueValuePhrase(query) || len(candidates) < 2 {
		return s.fallback.Rank(ctx, query, candidates)
	}

	order, err := s.requestOrder(ctx, query, candidates)
	if err != nil {
		slog.Warn("generative rerank failed, falling back to weighted order", "error", err)
		return s.fallback.Rank(ctx, query, candidates)
	}

	// Scores are synthesized from the returned order so the selector's
	// combined-score sort reproduces it. Unlisted candidates keep their
	// weighted scores, scaled under the reranked block.
	ranked := s.fallback.Rank(ctx, query, candidates)
	base := 1.0
	seen := map[int]bool{}
	for _, idx := range order {
		if idx < 0 || idx >= len(ranked) || seen[idx] {
			continue
		}
		seen[idx] = true
		ranked[idx].CombinedScore = base
		base -= 0.01
	}
	for i := range ranked {
		if !seen[i] {
			ranked[i].CombinedScore = clamp01(ranked[i].CombinedScore * 0.5)
		}
	}
	return ranked
}

func hasVagueValuePhrase(query string) bool {
	q := strings.ToLower(query)
	for _, phrase := range vagueValuePhrases {
		if strings.Contains(q, phrase) {
			return true
		}
	}
	return false
}

const rerankPrompt = `You are ranking hotels for the request: %q

Hotels (index: name, price, tier, description):
%s
Order the hotels from best to worst value for this request. Only output JSON: {"order": [indices]}`

type rerankResponse struct {
	Order []int `json:"order"`
}

func (s *LLMRerankStrategy) requestOrder(ctx context.Context, query string, candidates []Candidate) ([]int, error) {
	var sb strings.Builder
	for i, c := range candidates {
		tier := "unrated"
		if c.Hotel.Tier != nil {
			tier = string(*c.Hotel.Tier)
		}
		desc := truncateRunes(c.Hotel.Description, 160)
		fmt.Fprintf(&sb, "%d: %s, $%.0f, %s, %s\n", i, c.Hotel.Name, c.Hotel.Price, tier, desc)
	}

	response, err := s.llm.Chat(ctx, []ai.Message{
		ai.UserMessage(fmt.Sprintf(rerankPrompt, query, sb.String())),
	})
	if err != nil {
		return nil, err
	}

	raw, err := ai.ExtractJSON(response)
	if err != nil {
		return nil, err
	}
	var parsed rerankResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, err
	}
	if len(parsed.Order) == 0 {
		return nil, fmt.Errorf("empty rerank order")
	}
	return parsed.Order, nil
}

// truncateRunes shortens s to at most n runes, never splitting a
// multi-byte character.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
