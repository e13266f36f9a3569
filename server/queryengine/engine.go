package queryengine

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/stayscout/stayscout/plugin/ai"
	"github.com/stayscout/stayscout/store"
)

// Retriever is the candidate retrieval boundary. Retrieval applies the hard
// constraints (active-only, location, price bounds, tier) and annotates each
// candidate with its semantic similarity; retry policy lives behind this
// interface, not in the engine.
type Retriever interface {
	SearchHotelsByVector(ctx context.Context, opts *store.VectorSearchOptions) ([]*store.ScoredHotel, error)
}

// CatalogSource is everything the engine needs from the catalog.
// *store.Store satisfies it.
type CatalogSource interface {
	Retriever
	StatsSource
}

// ResponseType discriminates engine responses.
type ResponseType string

const (
	// ResponseClarification asks the user for a missing required field.
	ResponseClarification ResponseType = "clarification"
	// ResponseResults carries the ranked result list (which may be empty).
	ResponseResults ResponseType = "results"
)

// RankedHotel is one returned candidate with its scores and explanation.
type RankedHotel struct {
	Hotel         *store.Hotel
	SemanticScore float64
	LexicalScore  float64
	CombinedScore float64
	Explanation   string
}

// Response is the engine's answer to one query.
type Response struct {
	Type    ResponseType
	Message string

	// Clarification fields
	MissingFields []string
	PartialHints  *SearchHints

	// Result fields
	Hints        *SearchHints
	Hotels       []RankedHotel
	MatchReasons []string
}

// Engine runs the full query pipeline: interpret, detect intent, retrieve,
// score, validate, filter, select, explain. An Engine is stateless across
// requests and safe for concurrent use.
type Engine struct {
	config        *Config
	catalog       CatalogSource
	embedding     ai.EmbeddingService
	interpreter   *Interpreter
	detector      *IntentDetector
	scorer        *LexicalScorer
	strategy      RankingStrategy
	validator     *Validator
	contextFilter *ContextFilter
	selector      *Selector
	explainer     *ExplanationBuilder
}

// Option configures an Engine.
type Option func(*Engine)

// WithRankingStrategy replaces the default weighted strategy.
func WithRankingStrategy(strategy RankingStrategy) Option {
	return func(e *Engine) {
		e.strategy = strategy
	}
}

// NewEngine creates an Engine. llm serves the structured parse; embedding
// serves query vectorization; catalog serves retrieval and statistics.
func NewEngine(config *Config, catalog CatalogSource, embedding ai.EmbeddingService, llm ai.LLMService, opts ...Option) (*Engine, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := ValidateConfig(config); err != nil {
		return nil, err
	}

	engine := &Engine{
		config:        config,
		catalog:       catalog,
		embedding:     embedding,
		interpreter:   NewInterpreter(llm),
		detector:      NewIntentDetector(),
		scorer:        NewLexicalScorer(config.Scoring),
		strategy:      NewWeightedStrategy(config.Scoring.SemanticWeight),
		validator:     NewValidator(config.TierBands),
		contextFilter: NewContextFilter(),
		selector:      NewSelector(config.Results),
		explainer:     NewExplanationBuilder(),
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine, nil
}

// Search answers one query. conversationContext carries earlier dialog for
// follow-up resolution and may be empty. The response is either a
// clarification request (location unknown) or a ranked result list; an
// empty list is a normal outcome, not an error.
func (e *Engine) Search(ctx context.Context, query string, conversationContext string) (*Response, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &ParseError{Err: fmt.Errorf("empty query")}
	}

	requestID := uuid.NewString()[:8]
	started := time.Now()
	slog.Info("hotel query started", "request", requestID, "query", query)

	// The structured parse and the query embedding are independent; issue
	// them concurrently. Retrieval needs both.
	var hints SearchHints
	var queryVector []float32
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		parsed, err := e.interpreter.Interpret(gctx, query, conversationContext)
		if err != nil {
			return err
		}
		hints = parsed
		return nil
	})
	g.Go(func() error {
		vector, err := e.embedding.Embed(gctx, query)
		if err != nil {
			return &RetrievalError{Err: fmt.Errorf("query embedding: %w", err)}
		}
		queryVector = vector
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// The intent detector runs on the raw text, independent of the parse.
	// The parse's location wins when both found one.
	detection := e.detector.Detect(query)
	if hints.Location == "" && detection.Location != "" {
		hints.Location = detection.Location
	}

	if hints.Location == "" {
		slog.Info("hotel query needs clarification", "request", requestID)
		return &Response{
			Type:          ResponseClarification,
			Message:       "Which city would you like to stay in? I cover Sydney, Melbourne and Brisbane.",
			MissingFields: []string{"location"},
			PartialHints:  &hints,
		}, nil
	}

	overridden, err := ApplyIntentOverride(ctx, e.config, e.catalog, hints, detection)
	if err != nil {
		// Statistics are an enhancement for superlative queries; losing
		// them degrades the query, it does not fail it.
		slog.Warn("intent override skipped", "request", requestID, "error", err)
	} else {
		hints = overridden
	}
	hints = e.expandExactPrice(hints)

	candidates, err := e.retrieve(ctx, queryVector, hints)
	if err != nil {
		return nil, err
	}

	keywords := hints.Keywords
	if len(keywords) == 0 {
		keywords = FallbackKeywords(query, e.config.Scoring.MinFallbackTokenLen)
	}
	candidates = e.scoreLexical(candidates, keywords)
	candidates = e.strategy.Rank(ctx, query, candidates)
	candidates = e.validator.FilterValid(candidates)
	candidates, removed := e.contextFilter.Apply(query, candidates)
	final := e.selector.Select(candidates, hints.SortIntent)

	hotels := make([]RankedHotel, 0, len(final))
	reasons := make([]string, 0, len(final))
	for _, c := range final {
		explanation := e.explainer.Build(c, hints)
		hotels = append(hotels, RankedHotel{
			Hotel:         c.Hotel,
			SemanticScore: c.SemanticScore,
			LexicalScore:  c.LexicalScore,
			CombinedScore: c.CombinedScore,
			Explanation:   explanation,
		})
		reasons = append(reasons, explanation)
	}

	slog.Info("hotel query finished",
		"request", requestID,
		"results", len(hotels),
		"filtered", len(removed),
		"sort", hints.SortIntent,
		"duration", time.Since(started))

	return &Response{
		Type:         ResponseResults,
		Message:      resultMessage(len(hotels), hints),
		Hints:        &hints,
		Hotels:       hotels,
		MatchReasons: reasons,
	}, nil
}

func (e *Engine) retrieve(ctx context.Context, queryVector []float32, hints SearchHints) ([]Candidate, error) {
	opts := &store.VectorSearchOptions{
		Embedding: queryVector,
		MinPrice:  hints.MinPrice,
		MaxPrice:  hints.MaxPrice,
		Tier:      hints.Tier,
		Limit:     e.config.Retrieval.Limit,
	}
	if hints.Location != "" {
		location := hints.Location
		opts.Location = &location
	}

	scored, err := e.catalog.SearchHotelsByVector(ctx, opts)
	if err != nil {
		return nil, &RetrievalError{Err: err}
	}
	return candidatesFromScored(scored), nil
}

// scoreLexical returns a new slice with lexical scores populated.
func (e *Engine) scoreLexical(candidates []Candidate, keywords []string) []Candidate {
	scored := make([]Candidate, len(candidates))
	for i, c := range candidates {
		c.LexicalScore = e.scorer.Score(c, keywords)
		scored[i] = c
	}
	return scored
}

// expandExactPrice turns a lone exact price into a band, mirroring the
// explicit "around $N" treatment. Explicit bounds take precedence.
func (e *Engine) expandExactPrice(hints SearchHints) SearchHints {
	if hints.ExactPrice == nil || hints.MinPrice != nil || hints.MaxPrice != nil {
		return hints
	}
	lo := math.Floor((1 - e.config.Intent.PriceTargetSpread) * *hints.ExactPrice)
	hi := math.Ceil((1 + e.config.Intent.PriceTargetSpread) * *hints.ExactPrice)
	hints.MinPrice = &lo
	hints.MaxPrice = &hi
	return hints
}

func resultMessage(count int, hints SearchHints) string {
	if count == 0 {
		return fmt.Sprintf("I couldn't find any hotels in %s matching your criteria. Try relaxing the price range or tier.", hints.Location)
	}
	switch hints.SortIntent {
	case SortPriceAsc:
		return fmt.Sprintf("Here are the %d most affordable matches in %s, cheapest first.", count, hints.Location)
	case SortPriceDesc:
		return fmt.Sprintf("Here are the %d top-end matches in %s, priciest first.", count, hints.Location)
	default:
		return fmt.Sprintf("Found %d hotels in %s matching your request.", count, hints.Location)
	}
}
