package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayscout/stayscout/internal/profile"
)

// countingDriver records how often each stats query hits the database.
type countingDriver struct {
	hotels []*Hotel
	nextID int32

	locationStatsCalls int
	tierStatsCalls     int
	catalogStatsCalls  int
}

func (d *countingDriver) GetDB() *sql.DB                                { return nil }
func (d *countingDriver) Close() error                                  { return nil }
func (d *countingDriver) IsInitialized(_ context.Context) (bool, error) { return true, nil }
func (d *countingDriver) Migrate(_ context.Context) error               { return nil }

func (d *countingDriver) CreateHotel(_ context.Context, create *Hotel) (*Hotel, error) {
	d.nextID++
	create.ID = d.nextID
	d.hotels = append(d.hotels, create)
	return create, nil
}

func (d *countingDriver) ListHotels(_ context.Context, find *FindHotel) ([]*Hotel, error) {
	list := []*Hotel{}
	for _, h := range d.hotels {
		if find.UID != nil && h.UID != *find.UID {
			continue
		}
		if find.ID != nil && h.ID != *find.ID {
			continue
		}
		list = append(list, h)
	}
	return list, nil
}

func (d *countingDriver) UpdateHotel(_ context.Context, _ *UpdateHotel) error { return nil }
func (d *countingDriver) DeleteHotel(_ context.Context, _ *DeleteHotel) error { return nil }

func (d *countingDriver) UpsertHotelEmbedding(_ context.Context, _ int32, _ string, _ []float32) error {
	return nil
}

func (d *countingDriver) FindHotelsWithoutEmbedding(_ context.Context, _ string, _ int) ([]*Hotel, error) {
	return nil, nil
}

func (d *countingDriver) SearchHotelsByVector(_ context.Context, _ *VectorSearchOptions) ([]*ScoredHotel, error) {
	return nil, nil
}

func (d *countingDriver) GetLocationStats(_ context.Context, _ string) (*CatalogStats, error) {
	d.locationStatsCalls++
	return &CatalogStats{MinPrice: 50, MaxPrice: 500, AvgPrice: 200, Count: 10}, nil
}

func (d *countingDriver) GetTierStats(_ context.Context, _ Tier) (*CatalogStats, error) {
	d.tierStatsCalls++
	return &CatalogStats{MinPrice: 150, MaxPrice: 400, AvgPrice: 250, Count: 5}, nil
}

func (d *countingDriver) GetCatalogStats(_ context.Context) (*CatalogStats, error) {
	d.catalogStatsCalls++
	return &CatalogStats{MinPrice: 30, MaxPrice: 600, AvgPrice: 220, Count: 40}, nil
}

func newTestStore(t *testing.T) (*Store, *countingDriver) {
	t.Helper()
	driver := &countingDriver{}
	s := New(driver, &profile.Profile{Mode: "dev"})
	t.Cleanup(func() { _ = s.Close() })
	return s, driver
}

func TestCreateHotelAssignsDefaults(t *testing.T) {
	s, _ := newTestStore(t)

	hotel, err := s.CreateHotel(context.Background(), &Hotel{
		Name: "Harbour View", Location: "Sydney", Price: 220,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, hotel.UID)
	assert.Equal(t, Normal, hotel.RowStatus)
	assert.NotZero(t, hotel.CreatedTs)
	assert.Equal(t, hotel.CreatedTs, hotel.UpdatedTs)
}

func TestCreateHotelKeepsExplicitUID(t *testing.T) {
	s, _ := newTestStore(t)

	hotel, err := s.CreateHotel(context.Background(), &Hotel{
		UID: "fixed-uid", Name: "X", Location: "Sydney", Price: 100,
	})
	require.NoError(t, err)
	assert.Equal(t, "fixed-uid", hotel.UID)
}

func TestGetHotelReturnsNilWhenAbsent(t *testing.T) {
	s, _ := newTestStore(t)
	uid := "missing"
	hotel, err := s.GetHotel(context.Background(), &FindHotel{UID: &uid})
	require.NoError(t, err)
	assert.Nil(t, hotel)
}

func TestStatsAreCached(t *testing.T) {
	s, driver := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := s.GetLocationStats(ctx, "Sydney")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, driver.locationStatsCalls)

	for i := 0; i < 3; i++ {
		_, err := s.GetCatalogStats(ctx)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, driver.catalogStatsCalls)
}

func TestStatsCacheKeyedByLocation(t *testing.T) {
	s, driver := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetLocationStats(ctx, "Sydney")
	require.NoError(t, err)
	_, err = s.GetLocationStats(ctx, "Melbourne")
	require.NoError(t, err)
	assert.Equal(t, 2, driver.locationStatsCalls)
}

func TestCatalogWritesInvalidateStats(t *testing.T) {
	s, driver := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetLocationStats(ctx, "Sydney")
	require.NoError(t, err)

	_, err = s.CreateHotel(ctx, &Hotel{Name: "New", Location: "Sydney", Price: 100})
	require.NoError(t, err)

	_, err = s.GetLocationStats(ctx, "Sydney")
	require.NoError(t, err)
	assert.Equal(t, 2, driver.locationStatsCalls)
}

func TestGetTierStatsDerivesRecommendedRange(t *testing.T) {
	s, _ := newTestStore(t)

	stats, err := s.GetTierStats(context.Background(), TierMid)
	require.NoError(t, err)
	assert.InDelta(t, 200.0, stats.RecommendedMin, 1e-9) // 0.8 * avg
	assert.InDelta(t, 300.0, stats.RecommendedMax, 1e-9) // 1.2 * avg
}

func TestTierValidity(t *testing.T) {
	assert.True(t, TierBudget.IsValid())
	assert.True(t, TierMid.IsValid())
	assert.True(t, TierLuxury.IsValid())
	assert.False(t, Tier("Platinum").IsValid())
	assert.Len(t, Tiers(), 3)
}

func TestCityValidity(t *testing.T) {
	for _, city := range Cities() {
		assert.True(t, IsValidCity(city))
	}
	assert.False(t, IsValidCity("Perth"))
	assert.False(t, IsValidCity("sydney"))
}
