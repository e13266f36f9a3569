package queryengine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/stayscout/stayscout/plugin/ai"
)

// interpretPrompt instructs the model to extract structured constraints.
// The model only extracts; all validation happens on our side.
const interpretPrompt = `You are a hotel search query parser. Extract structured search constraints from the user's message. The user may write in English or Vietnamese.

Known cities: Sydney, Melbourne, Brisbane.
Known tiers: Budget, Mid-tier, Luxury.

Output JSON with these fields (use null for anything not stated):
- location: one of the known cities, or null
- min_price: number or null
- max_price: number or null
- exact_price: number or null
- tier: one of the known tiers, or null
- keywords: array of short lowercase search terms from the message (amenities, vibe, features)

Only output JSON, nothing else.`

// Interpreter turns raw user text into SearchHints via the structured-parse
// service, then sanitizes the result against the schema.
type Interpreter struct {
	llm ai.LLMService
}

// NewInterpreter creates a new Interpreter.
func NewInterpreter(llm ai.LLMService) *Interpreter {
	return &Interpreter{llm: llm}
}

// parsedQuery is the raw JSON shape returned by the structured parse.
type parsedQuery struct {
	Location   string   `json:"location"`
	MinPrice   *float64 `json:"min_price"`
	MaxPrice   *float64 `json:"max_price"`
	ExactPrice *float64 `json:"exact_price"`
	Tier       string   `json:"tier"`
	Keywords   []string `json:"keywords"`
}

// Interpret parses query into SearchHints. conversationContext, when
// non-empty, is earlier dialog the parse may use to resolve follow-ups
// ("what about Brisbane?"). Failure returns a ParseError; no retry.
func (i *Interpreter) Interpret(ctx context.Context, query string, conversationContext string) (SearchHints, error) {
	if i.llm == nil {
		return SearchHints{}, &ParseError{Err: fmt.Errorf("LLM service not configured")}
	}

	userContent := query
	if conversationContext != "" {
		userContent = "Earlier conversation:\n" + conversationContext + "\n\nCurrent message: " + query
	}

	response, err := i.llm.Chat(ctx, []ai.Message{
		ai.SystemPrompt(interpretPrompt),
		ai.UserMessage(userContent),
	})
	if err != nil {
		return SearchHints{}, &ParseError{Err: err}
	}

	raw, err := ai.ExtractJSON(response)
	if err != nil {
		return SearchHints{}, &ParseError{Err: err}
	}

	var parsed parsedQuery
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return SearchHints{}, &ParseError{Err: err}
	}

	return SanitizeParsed(parsed.Location, parsed.MinPrice, parsed.MaxPrice, parsed.ExactPrice, parsed.Tier, parsed.Keywords), nil
}

// SanitizeParsed validates raw parse output against the hints schema and
// derives keywords' downstream fields (amenities, inferred tier).
func SanitizeParsed(location string, minPrice, maxPrice, exactPrice *float64, tier string, keywords []string) SearchHints {
	hints := SearchHints{
		Location:   sanitizeLocation(location),
		SortIntent: SortRelevance,
	}

	if minPrice != nil && *minPrice >= 0 {
		v := *minPrice
		hints.MinPrice = &v
	}
	if maxPrice != nil && *maxPrice > 0 {
		v := *maxPrice
		hints.MaxPrice = &v
	}
	if exactPrice != nil && *exactPrice > 0 {
		v := *exactPrice
		hints.ExactPrice = &v
	}

	hints.Keywords = normalizeKeywords(keywords)
	hints.Amenities = amenitiesFromKeywords(hints.Keywords)

	hints.Tier = sanitizeTier(tier)
	if hints.Tier == nil {
		hints.Tier = inferTierFromKeywords(hints.Keywords)
	}

	return hints
}

// FallbackKeywords tokenizes the raw query when the parse produced no
// keywords: whitespace words longer than minLen, lowercased, deduplicated.
func FallbackKeywords(query string, minLen int) []string {
	words := strings.Fields(strings.ToLower(query))
	keywords := []string{}
	for _, w := range words {
		w = strings.Trim(w, ".,!?\"'()$")
		if len([]rune(w)) > minLen {
			keywords = append(keywords, w)
		}
	}
	return normalizeKeywords(keywords)
}
