package store

import (
	"context"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"

	"github.com/stayscout/stayscout/internal/profile"
	"github.com/stayscout/stayscout/store/cache"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver

	// statsCache fronts the catalog statistics queries. Statistics change
	// only when the catalog is edited, so a short TTL is plenty.
	statsCache *cache.Cache
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
		statsCache: cache.New(cache.Config{
			DefaultTTL:      10 * time.Minute,
			CleanupInterval: 5 * time.Minute,
			MaxItems:        100,
		}),
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	s.statsCache.Close()
	return s.driver.Close()
}

func (s *Store) Migrate(ctx context.Context) error {
	return s.driver.Migrate(ctx)
}

// CreateHotel creates a hotel, assigning a UID and timestamps.
func (s *Store) CreateHotel(ctx context.Context, create *Hotel) (*Hotel, error) {
	if create.UID == "" {
		create.UID = shortuuid.New()
	}
	if create.RowStatus == "" {
		create.RowStatus = Normal
	}
	now := time.Now().Unix()
	if create.CreatedTs == 0 {
		create.CreatedTs = now
	}
	if create.UpdatedTs == 0 {
		create.UpdatedTs = now
	}
	hotel, err := s.driver.CreateHotel(ctx, create)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create hotel")
	}
	s.invalidateStats()
	return hotel, nil
}

func (s *Store) ListHotels(ctx context.Context, find *FindHotel) ([]*Hotel, error) {
	return s.driver.ListHotels(ctx, find)
}

// GetHotel returns the single hotel matching find, or nil when absent.
func (s *Store) GetHotel(ctx context.Context, find *FindHotel) (*Hotel, error) {
	list, err := s.driver.ListHotels(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *Store) UpdateHotel(ctx context.Context, update *UpdateHotel) error {
	now := time.Now().Unix()
	update.UpdatedTs = &now
	if err := s.driver.UpdateHotel(ctx, update); err != nil {
		return errors.Wrap(err, "failed to update hotel")
	}
	s.invalidateStats()
	return nil
}

func (s *Store) DeleteHotel(ctx context.Context, delete *DeleteHotel) error {
	if err := s.driver.DeleteHotel(ctx, delete); err != nil {
		return errors.Wrap(err, "failed to delete hotel")
	}
	s.invalidateStats()
	return nil
}

func (s *Store) UpsertHotelEmbedding(ctx context.Context, hotelID int32, model string, embedding []float32) error {
	return s.driver.UpsertHotelEmbedding(ctx, hotelID, model, embedding)
}

func (s *Store) FindHotelsWithoutEmbedding(ctx context.Context, model string, limit int) ([]*Hotel, error) {
	return s.driver.FindHotelsWithoutEmbedding(ctx, model, limit)
}

func (s *Store) SearchHotelsByVector(ctx context.Context, opts *VectorSearchOptions) ([]*ScoredHotel, error) {
	return s.driver.SearchHotelsByVector(ctx, opts)
}

// GetLocationStats returns cached price statistics for one city.
func (s *Store) GetLocationStats(ctx context.Context, location string) (*CatalogStats, error) {
	key := "stats:location:" + location
	if v, ok := s.statsCache.Get(key); ok {
		return v.(*CatalogStats), nil
	}
	stats, err := s.driver.GetLocationStats(ctx, location)
	if err != nil {
		return nil, err
	}
	s.statsCache.Set(key, stats)
	return stats, nil
}

// GetTierStats returns cached price statistics for one tier, with a
// recommended price range derived from the observed spread.
func (s *Store) GetTierStats(ctx context.Context, tier Tier) (*TierStats, error) {
	key := "stats:tier:" + string(tier)
	if v, ok := s.statsCache.Get(key); ok {
		return v.(*TierStats), nil
	}
	stats, err := s.driver.GetTierStats(ctx, tier)
	if err != nil {
		return nil, err
	}
	result := &TierStats{
		CatalogStats:   *stats,
		RecommendedMin: stats.AvgPrice * 0.8,
		RecommendedMax: stats.AvgPrice * 1.2,
	}
	s.statsCache.Set(key, result)
	return result, nil
}

// GetCatalogStats returns cached price statistics over the whole active catalog.
func (s *Store) GetCatalogStats(ctx context.Context) (*CatalogStats, error) {
	key := "stats:catalog"
	if v, ok := s.statsCache.Get(key); ok {
		return v.(*CatalogStats), nil
	}
	stats, err := s.driver.GetCatalogStats(ctx)
	if err != nil {
		return nil, err
	}
	s.statsCache.Set(key, stats)
	return stats, nil
}

func (s *Store) invalidateStats() {
	s.statsCache.Purge()
}
