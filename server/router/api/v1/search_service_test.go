package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayscout/stayscout/plugin/ai"
	"github.com/stayscout/stayscout/server/queryengine"
	"github.com/stayscout/stayscout/store"
)

type stubLLM struct {
	response string
	err      error
}

func (s *stubLLM) Chat(_ context.Context, _ []ai.Message) (string, error) {
	return s.response, s.err
}

func (s *stubLLM) ChatStream(ctx context.Context, messages []ai.Message) (<-chan string, <-chan error) {
	contentCh := make(chan string, 1)
	errCh := make(chan error, 1)
	if s.err != nil {
		errCh <- s.err
	} else {
		contentCh <- s.response
	}
	close(contentCh)
	close(errCh)
	return contentCh, errCh
}

type stubEmbedding struct{}

func (stubEmbedding) Embed(_ context.Context, _ string) ([]float32, error) {
	return []float32{0.5, 0.5}, nil
}

func (s stubEmbedding) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i], _ = s.Embed(ctx, texts[i])
	}
	return result, nil
}

func (stubEmbedding) Dimensions() int { return 2 }

type stubCatalog struct {
	scored []*store.ScoredHotel
}

func (s *stubCatalog) SearchHotelsByVector(_ context.Context, _ *store.VectorSearchOptions) ([]*store.ScoredHotel, error) {
	return s.scored, nil
}

func (s *stubCatalog) GetLocationStats(_ context.Context, _ string) (*store.CatalogStats, error) {
	return &store.CatalogStats{MinPrice: 40, MaxPrice: 500, Count: 10}, nil
}

func (s *stubCatalog) GetCatalogStats(_ context.Context) (*store.CatalogStats, error) {
	return &store.CatalogStats{MinPrice: 30, MaxPrice: 600, Count: 40}, nil
}

func newSearchService(t *testing.T, parseResponse string, scored []*store.ScoredHotel) *APIV1Service {
	t.Helper()
	engine, err := queryengine.NewEngine(queryengine.DefaultConfig(),
		&stubCatalog{scored: scored}, stubEmbedding{}, &stubLLM{response: parseResponse})
	require.NoError(t, err)
	return NewAPIV1Service(nil, nil, engine)
}

func postSearch(service *APIV1Service, body string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	_ = service.Search(c)
	return rec
}

func TestSearchReturnsResults(t *testing.T) {
	tier := store.TierMid
	scored := []*store.ScoredHotel{
		{
			Hotel: &store.Hotel{
				ID: 1, UID: "h1", Name: "Harbour View", Location: "Sydney",
				Price: 220, Tier: &tier, Description: "quiet rooms near the bay",
			},
			Similarity: 0.7,
		},
	}
	service := newSearchService(t, `{"location": "Sydney", "keywords": ["quiet"]}`, scored)

	rec := postSearch(service, `{"query": "quiet hotel in Sydney"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var response SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "results", response.Type)
	require.Len(t, response.Results, 1)
	assert.Equal(t, "Harbour View", response.Results[0].Hotel.Name)
	assert.Equal(t, "h1", response.Results[0].Hotel.UID)
	assert.NotEmpty(t, response.Results[0].Explanation)
	require.NotNil(t, response.Hints)
	assert.Equal(t, "Sydney", response.Hints.Location)
}

func TestSearchReturnsClarification(t *testing.T) {
	service := newSearchService(t, `{"location": null, "max_price": 200, "keywords": ["hotel"]}`, nil)

	rec := postSearch(service, `{"query": "I need a hotel under $200"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var response SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "clarification", response.Type)
	assert.Equal(t, []string{"location"}, response.MissingFields)
	require.NotNil(t, response.PartialHints)
	require.NotNil(t, response.PartialHints.MaxPrice)
	assert.Equal(t, 200.0, *response.PartialHints.MaxPrice)
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	service := newSearchService(t, `{}`, nil)

	rec := postSearch(service, `{"query": "   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_ARGUMENT")
}

func TestSearchRejectsMalformedBody(t *testing.T) {
	service := newSearchService(t, `{}`, nil)

	rec := postSearch(service, `{"query": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchParseFailureReturns500(t *testing.T) {
	engine, err := queryengine.NewEngine(queryengine.DefaultConfig(),
		&stubCatalog{}, stubEmbedding{}, &stubLLM{response: "not json at all"})
	require.NoError(t, err)
	service := NewAPIV1Service(nil, nil, engine)

	rec := postSearch(service, `{"query": "hotel in Sydney"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "PARSE_FAILED")
}

func TestSearchUnavailableWithoutEngine(t *testing.T) {
	service := NewAPIV1Service(nil, nil, nil)

	rec := postSearch(service, `{"query": "hotel in Sydney"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
