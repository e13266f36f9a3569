package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)
	Migrate(ctx context.Context) error

	// Hotel model related methods.
	CreateHotel(ctx context.Context, create *Hotel) (*Hotel, error)
	ListHotels(ctx context.Context, find *FindHotel) ([]*Hotel, error)
	UpdateHotel(ctx context.Context, update *UpdateHotel) error
	DeleteHotel(ctx context.Context, delete *DeleteHotel) error

	// UpsertHotelEmbedding stores the embedding vector for a hotel.
	UpsertHotelEmbedding(ctx context.Context, hotelID int32, model string, embedding []float32) error

	// FindHotelsWithoutEmbedding returns active hotels missing an embedding
	// for the given model, up to limit.
	FindHotelsWithoutEmbedding(ctx context.Context, model string, limit int) ([]*Hotel, error)

	// SearchHotelsByVector performs semantic search using vector similarity.
	// Only active rows are returned, hard-filtered by the non-nil options,
	// pre-sorted by similarity descending.
	SearchHotelsByVector(ctx context.Context, opts *VectorSearchOptions) ([]*ScoredHotel, error)

	// Catalog statistics, computed over active rows only.
	GetLocationStats(ctx context.Context, location string) (*CatalogStats, error)
	GetTierStats(ctx context.Context, tier Tier) (*CatalogStats, error)
	GetCatalogStats(ctx context.Context) (*CatalogStats, error)
}
