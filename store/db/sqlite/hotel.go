package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/stayscout/stayscout/store"
)

// CreateHotel inserts a hotel row.
func (d *DB) CreateHotel(ctx context.Context, create *store.Hotel) (*store.Hotel, error) {
	amenities, err := json.Marshal(create.Amenities)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal amenities")
	}

	var tier *string
	if create.Tier != nil {
		t := string(*create.Tier)
		tier = &t
	}

	stmt := `
		INSERT INTO hotel (uid, row_status, created_ts, updated_ts, name, description, location, price, tier, amenities)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`
	err = d.db.QueryRowContext(ctx, stmt,
		create.UID,
		create.RowStatus,
		create.CreatedTs,
		create.UpdatedTs,
		create.Name,
		create.Description,
		create.Location,
		create.Price,
		tier,
		string(amenities),
	).Scan(&create.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create hotel")
	}

	return create, nil
}

// ListHotels lists hotels matching find.
func (d *DB) ListHotels(ctx context.Context, find *store.FindHotel) ([]*store.Hotel, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "id = ?"), append(args, *find.ID)
	}
	if find.UID != nil {
		where, args = append(where, "uid = ?"), append(args, *find.UID)
	}
	if find.RowStatus != nil {
		where, args = append(where, "row_status = ?"), append(args, string(*find.RowStatus))
	}
	if find.Location != nil {
		where, args = append(where, "location = ?"), append(args, *find.Location)
	}
	if find.Tier != nil {
		where, args = append(where, "tier = ?"), append(args, string(*find.Tier))
	}
	if find.MinPrice != nil {
		where, args = append(where, "price >= ?"), append(args, *find.MinPrice)
	}
	if find.MaxPrice != nil {
		where, args = append(where, "price <= ?"), append(args, *find.MaxPrice)
	}

	query := `
		SELECT id, uid, row_status, created_ts, updated_ts, name, description, location, price, tier, amenities
		FROM hotel
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY id
	`
	if find.Limit != nil {
		query += " LIMIT ?"
		args = append(args, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list hotels")
	}
	defer rows.Close()

	list := []*store.Hotel{}
	for rows.Next() {
		hotel, err := scanHotel(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, hotel)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// UpdateHotel patches a hotel row.
func (d *DB) UpdateHotel(ctx context.Context, update *store.UpdateHotel) error {
	set, args := []string{}, []any{}

	if update.UpdatedTs != nil {
		set, args = append(set, "updated_ts = ?"), append(args, *update.UpdatedTs)
	}
	if update.RowStatus != nil {
		set, args = append(set, "row_status = ?"), append(args, string(*update.RowStatus))
	}
	if update.Name != nil {
		set, args = append(set, "name = ?"), append(args, *update.Name)
	}
	if update.Description != nil {
		set, args = append(set, "description = ?"), append(args, *update.Description)
	}
	if update.Location != nil {
		set, args = append(set, "location = ?"), append(args, *update.Location)
	}
	if update.Price != nil {
		set, args = append(set, "price = ?"), append(args, *update.Price)
	}
	if update.Tier != nil {
		set, args = append(set, "tier = ?"), append(args, string(*update.Tier))
	}
	if update.Amenities != nil {
		amenities, err := json.Marshal(update.Amenities)
		if err != nil {
			return errors.Wrap(err, "failed to marshal amenities")
		}
		set, args = append(set, "amenities = ?"), append(args, string(amenities))
	}
	if len(set) == 0 {
		return nil
	}

	stmt := `UPDATE hotel SET ` + strings.Join(set, ", ") + ` WHERE id = ?`
	args = append(args, update.ID)
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return errors.Wrap(err, "failed to update hotel")
	}
	return nil
}

// DeleteHotel deletes a hotel row; embeddings cascade.
func (d *DB) DeleteHotel(ctx context.Context, delete *store.DeleteHotel) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM hotel WHERE id = ?`, delete.ID); err != nil {
		return errors.Wrap(err, "failed to delete hotel")
	}
	return nil
}

// UpsertHotelEmbedding stores the embedding vector as a JSON array.
func (d *DB) UpsertHotelEmbedding(ctx context.Context, hotelID int32, model string, embedding []float32) error {
	blob, err := json.Marshal(embedding)
	if err != nil {
		return errors.Wrap(err, "failed to marshal embedding")
	}
	now := time.Now().Unix()
	stmt := `
		INSERT INTO hotel_embedding (hotel_id, embedding, model, created_ts, updated_ts)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (hotel_id, model)
		DO UPDATE SET embedding = excluded.embedding, updated_ts = excluded.updated_ts
	`
	if _, err := d.db.ExecContext(ctx, stmt, hotelID, string(blob), model, now, now); err != nil {
		return errors.Wrap(err, "failed to upsert hotel embedding")
	}
	return nil
}

// FindHotelsWithoutEmbedding returns active hotels missing an embedding for
// the given model, oldest first.
func (d *DB) FindHotelsWithoutEmbedding(ctx context.Context, model string, limit int) ([]*store.Hotel, error) {
	query := `
		SELECT h.id, h.uid, h.row_status, h.created_ts, h.updated_ts, h.name, h.description, h.location, h.price, h.tier, h.amenities
		FROM hotel h
		LEFT JOIN hotel_embedding e ON e.hotel_id = h.id AND e.model = ?
		WHERE h.row_status = 'NORMAL' AND e.id IS NULL
		ORDER BY h.id
		LIMIT ?
	`
	rows, err := d.db.QueryContext(ctx, query, model, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find hotels without embedding")
	}
	defer rows.Close()

	list := []*store.Hotel{}
	for rows.Next() {
		hotel, err := scanHotel(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, hotel)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// SearchHotelsByVector scans all active hotels and ranks them by cosine
// similarity computed in Go. Brute force, but the catalog is small.
func (d *DB) SearchHotelsByVector(ctx context.Context, opts *store.VectorSearchOptions) ([]*store.ScoredHotel, error) {
	where, args := []string{"h.row_status = 'NORMAL'"}, []any{}

	if opts.Location != nil {
		where, args = append(where, "h.location = ?"), append(args, *opts.Location)
	}
	if opts.MinPrice != nil {
		where, args = append(where, "h.price >= ?"), append(args, *opts.MinPrice)
	}
	if opts.MaxPrice != nil {
		where, args = append(where, "h.price <= ?"), append(args, *opts.MaxPrice)
	}
	if opts.Tier != nil {
		where, args = append(where, "h.tier = ?"), append(args, string(*opts.Tier))
	}

	query := `
		SELECT h.id, h.uid, h.row_status, h.created_ts, h.updated_ts, h.name, h.description, h.location, h.price, h.tier, h.amenities,
			e.embedding
		FROM hotel h
		JOIN hotel_embedding e ON e.hotel_id = h.id
		WHERE ` + strings.Join(where, " AND ")

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to search hotels by vector")
	}
	defer rows.Close()

	list := []*store.ScoredHotel{}
	for rows.Next() {
		var hotel store.Hotel
		var tier sql.NullString
		var amenities, blob string
		err := rows.Scan(
			&hotel.ID,
			&hotel.UID,
			&hotel.RowStatus,
			&hotel.CreatedTs,
			&hotel.UpdatedTs,
			&hotel.Name,
			&hotel.Description,
			&hotel.Location,
			&hotel.Price,
			&tier,
			&amenities,
			&blob,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan scored hotel")
		}
		applyTierAndAmenities(&hotel, tier, amenities)

		var embedding []float32
		if err := json.Unmarshal([]byte(blob), &embedding); err != nil {
			continue
		}
		list = append(list, &store.ScoredHotel{
			Hotel:      &hotel,
			Similarity: cosineSimilarity(opts.Embedding, embedding),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Similarity > list[j].Similarity
	})

	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

// GetLocationStats computes price statistics for one city over active rows.
func (d *DB) GetLocationStats(ctx context.Context, location string) (*store.CatalogStats, error) {
	return d.priceStats(ctx, "location = ?", location)
}

// GetTierStats computes price statistics for one tier over active rows.
func (d *DB) GetTierStats(ctx context.Context, tier store.Tier) (*store.CatalogStats, error) {
	return d.priceStats(ctx, "tier = ?", string(tier))
}

// GetCatalogStats computes price statistics over the whole active catalog.
func (d *DB) GetCatalogStats(ctx context.Context) (*store.CatalogStats, error) {
	return d.priceStats(ctx, "1 = 1")
}

// priceStats pulls prices and aggregates in Go; SQLite has no PERCENTILE_CONT.
func (d *DB) priceStats(ctx context.Context, condition string, args ...any) (*store.CatalogStats, error) {
	query := `SELECT price FROM hotel WHERE row_status = 'NORMAL' AND ` + condition
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query prices")
	}
	defer rows.Close()

	prices := []float64{}
	for rows.Next() {
		var p float64
		if err := rows.Scan(&p); err != nil {
			return nil, errors.Wrap(err, "failed to scan price")
		}
		prices = append(prices, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stats := &store.CatalogStats{Count: len(prices)}
	if len(prices) == 0 {
		return stats, nil
	}

	sort.Float64s(prices)
	stats.MinPrice = prices[0]
	stats.MaxPrice = prices[len(prices)-1]
	sum := 0.0
	for _, p := range prices {
		sum += p
	}
	stats.AvgPrice = sum / float64(len(prices))
	mid := len(prices) / 2
	if len(prices)%2 == 0 {
		stats.MedianPrice = (prices[mid-1] + prices[mid]) / 2
	} else {
		stats.MedianPrice = prices[mid]
	}
	return stats, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHotel(row rowScanner) (*store.Hotel, error) {
	var hotel store.Hotel
	var tier sql.NullString
	var amenities string
	err := row.Scan(
		&hotel.ID,
		&hotel.UID,
		&hotel.RowStatus,
		&hotel.CreatedTs,
		&hotel.UpdatedTs,
		&hotel.Name,
		&hotel.Description,
		&hotel.Location,
		&hotel.Price,
		&tier,
		&amenities,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan hotel")
	}
	applyTierAndAmenities(&hotel, tier, amenities)
	return &hotel, nil
}

func applyTierAndAmenities(hotel *store.Hotel, tier sql.NullString, amenities string) {
	if tier.Valid {
		t := store.Tier(tier.String)
		hotel.Tier = &t
	}
	if amenities != "" {
		_ = json.Unmarshal([]byte(amenities), &hotel.Amenities)
	}
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
