package v1

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayscout/stayscout/internal/profile"
	"github.com/stayscout/stayscout/store"
)

// fakeDriver is an in-memory store.Driver for handler tests.
type fakeDriver struct {
	hotels []*store.Hotel
	nextID int32
}

func (d *fakeDriver) GetDB() *sql.DB { return nil }
func (d *fakeDriver) Close() error   { return nil }

func (d *fakeDriver) IsInitialized(_ context.Context) (bool, error) { return true, nil }
func (d *fakeDriver) Migrate(_ context.Context) error               { return nil }

func (d *fakeDriver) CreateHotel(_ context.Context, create *store.Hotel) (*store.Hotel, error) {
	d.nextID++
	create.ID = d.nextID
	d.hotels = append(d.hotels, create)
	return create, nil
}

func (d *fakeDriver) ListHotels(_ context.Context, find *store.FindHotel) ([]*store.Hotel, error) {
	list := []*store.Hotel{}
	for _, h := range d.hotels {
		if find.ID != nil && h.ID != *find.ID {
			continue
		}
		if find.UID != nil && h.UID != *find.UID {
			continue
		}
		if find.RowStatus != nil && h.RowStatus != *find.RowStatus {
			continue
		}
		if find.Location != nil && h.Location != *find.Location {
			continue
		}
		if find.Tier != nil && (h.Tier == nil || *h.Tier != *find.Tier) {
			continue
		}
		if find.MaxPrice != nil && h.Price > *find.MaxPrice {
			continue
		}
		if find.MinPrice != nil && h.Price < *find.MinPrice {
			continue
		}
		list = append(list, h)
	}
	return list, nil
}

func (d *fakeDriver) UpdateHotel(_ context.Context, _ *store.UpdateHotel) error { return nil }

func (d *fakeDriver) DeleteHotel(_ context.Context, delete *store.DeleteHotel) error {
	kept := []*store.Hotel{}
	for _, h := range d.hotels {
		if h.ID != delete.ID {
			kept = append(kept, h)
		}
	}
	d.hotels = kept
	return nil
}

func (d *fakeDriver) UpsertHotelEmbedding(_ context.Context, _ int32, _ string, _ []float32) error {
	return nil
}

func (d *fakeDriver) FindHotelsWithoutEmbedding(_ context.Context, _ string, _ int) ([]*store.Hotel, error) {
	return nil, nil
}

func (d *fakeDriver) SearchHotelsByVector(_ context.Context, _ *store.VectorSearchOptions) ([]*store.ScoredHotel, error) {
	return nil, nil
}

func (d *fakeDriver) GetLocationStats(_ context.Context, location string) (*store.CatalogStats, error) {
	return d.stats(func(h *store.Hotel) bool { return h.Location == location }), nil
}

func (d *fakeDriver) GetTierStats(_ context.Context, tier store.Tier) (*store.CatalogStats, error) {
	return d.stats(func(h *store.Hotel) bool { return h.Tier != nil && *h.Tier == tier }), nil
}

func (d *fakeDriver) GetCatalogStats(_ context.Context) (*store.CatalogStats, error) {
	return d.stats(func(_ *store.Hotel) bool { return true }), nil
}

func (d *fakeDriver) stats(match func(*store.Hotel) bool) *store.CatalogStats {
	stats := &store.CatalogStats{}
	total := 0.0
	for _, h := range d.hotels {
		if !match(h) {
			continue
		}
		if stats.Count == 0 || h.Price < stats.MinPrice {
			stats.MinPrice = h.Price
		}
		if h.Price > stats.MaxPrice {
			stats.MaxPrice = h.Price
		}
		total += h.Price
		stats.Count++
	}
	if stats.Count > 0 {
		stats.AvgPrice = total / float64(stats.Count)
	}
	return stats
}

func newCatalogService(t *testing.T) (*APIV1Service, *store.Store) {
	t.Helper()
	s := store.New(&fakeDriver{}, &profile.Profile{Mode: "dev"})
	t.Cleanup(func() { _ = s.Close() })
	return NewAPIV1Service(&profile.Profile{Mode: "dev"}, s, nil), s
}

func doRequest(service *APIV1Service, method, target, body string, handler echo.HandlerFunc, paramNames []string, paramValues []string) *httptest.ResponseRecorder {
	e := echo.New()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames(paramNames...)
	c.SetParamValues(paramValues...)
	_ = handler(c)
	return rec
}

func TestCreateHotel(t *testing.T) {
	service, _ := newCatalogService(t)

	rec := doRequest(service, http.MethodPost, "/api/v1/hotels",
		`{"name": "Harbour View", "location": "Sydney", "price": 220, "tier": "Mid-tier", "amenities": ["pool"]}`,
		service.CreateHotel, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload HotelPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.NotEmpty(t, payload.UID)
	assert.Equal(t, "Harbour View", payload.Name)
	assert.Equal(t, "Mid-tier", payload.Tier)
	assert.NotZero(t, payload.CreatedTs)
}

func TestCreateHotelValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"location": "Sydney", "price": 100}`},
		{"unknown city", `{"name": "X", "location": "Perth", "price": 100}`},
		{"non-positive price", `{"name": "X", "location": "Sydney", "price": 0}`},
		{"unknown tier", `{"name": "X", "location": "Sydney", "price": 100, "tier": "Platinum"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _ := newCatalogService(t)
			rec := doRequest(service, http.MethodPost, "/api/v1/hotels", tt.body, service.CreateHotel, nil, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestGetHotel(t *testing.T) {
	service, s := newCatalogService(t)
	created, err := s.CreateHotel(context.Background(), &store.Hotel{
		Name: "Found Inn", Location: "Brisbane", Price: 90,
	})
	require.NoError(t, err)

	rec := doRequest(service, http.MethodGet, "/api/v1/hotels/"+created.UID, "",
		service.GetHotel, []string{"uid"}, []string{created.UID})
	require.Equal(t, http.StatusOK, rec.Code)

	var payload HotelPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "Found Inn", payload.Name)
}

func TestGetHotelNotFound(t *testing.T) {
	service, _ := newCatalogService(t)
	rec := doRequest(service, http.MethodGet, "/api/v1/hotels/missing", "",
		service.GetHotel, []string{"uid"}, []string{"missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "NOT_FOUND")
}

func TestListHotelsFilters(t *testing.T) {
	service, s := newCatalogService(t)
	tier := store.TierBudget
	for _, h := range []*store.Hotel{
		{Name: "Sydney Budget", Location: "Sydney", Price: 80, Tier: &tier},
		{Name: "Sydney Pricey", Location: "Sydney", Price: 300},
		{Name: "Brisbane Stay", Location: "Brisbane", Price: 120},
	} {
		_, err := s.CreateHotel(context.Background(), h)
		require.NoError(t, err)
	}

	rec := doRequest(service, http.MethodGet, "/api/v1/hotels?location=Sydney&maxPrice=100", "",
		service.ListHotels, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload []HotelPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload, 1)
	assert.Equal(t, "Sydney Budget", payload[0].Name)
}

func TestDeleteHotel(t *testing.T) {
	service, s := newCatalogService(t)
	created, err := s.CreateHotel(context.Background(), &store.Hotel{
		Name: "Short Lived", Location: "Sydney", Price: 100,
	})
	require.NoError(t, err)

	rec := doRequest(service, http.MethodDelete, "/api/v1/hotels/"+created.UID, "",
		service.DeleteHotel, []string{"uid"}, []string{created.UID})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(service, http.MethodGet, "/api/v1/hotels/"+created.UID, "",
		service.GetHotel, []string{"uid"}, []string{created.UID})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatsEndpoints(t *testing.T) {
	service, s := newCatalogService(t)
	tier := store.TierMid
	for _, h := range []*store.Hotel{
		{Name: "A", Location: "Sydney", Price: 100, Tier: &tier},
		{Name: "B", Location: "Sydney", Price: 300, Tier: &tier},
		{Name: "C", Location: "Melbourne", Price: 200},
	} {
		_, err := s.CreateHotel(context.Background(), h)
		require.NoError(t, err)
	}

	t.Run("location", func(t *testing.T) {
		rec := doRequest(service, http.MethodGet, "/api/v1/stats/locations/Sydney", "",
			service.GetLocationStats, []string{"city"}, []string{"Sydney"})
		require.Equal(t, http.StatusOK, rec.Code)

		var stats StatsPayload
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
		assert.Equal(t, 100.0, stats.MinPrice)
		assert.Equal(t, 300.0, stats.MaxPrice)
		assert.Equal(t, 2, stats.Count)
	})

	t.Run("unknown city", func(t *testing.T) {
		rec := doRequest(service, http.MethodGet, "/api/v1/stats/locations/Perth", "",
			service.GetLocationStats, []string{"city"}, []string{"Perth"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("tier includes recommendation", func(t *testing.T) {
		rec := doRequest(service, http.MethodGet, "/api/v1/stats/tiers/Mid-tier", "",
			service.GetTierStats, []string{"tier"}, []string{"Mid-tier"})
		require.Equal(t, http.StatusOK, rec.Code)

		var stats StatsPayload
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
		require.NotNil(t, stats.RecommendedMin)
		require.NotNil(t, stats.RecommendedMax)
		assert.InDelta(t, 160.0, *stats.RecommendedMin, 1e-9)
		assert.InDelta(t, 240.0, *stats.RecommendedMax, 1e-9)
	})

	t.Run("catalog", func(t *testing.T) {
		rec := doRequest(service, http.MethodGet, "/api/v1/stats/catalog", "",
			service.GetCatalogStats, nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var stats StatsPayload
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
		assert.Equal(t, 3, stats.Count)
	})
}
