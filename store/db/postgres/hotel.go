package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/pgvector/pgvector-go"
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
		VALUES (` + placeholders(10) + `)
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
		amenities,
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
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *find.ID)
	}
	if find.UID != nil {
		where, args = append(where, "uid = "+placeholder(len(args)+1)), append(args, *find.UID)
	}
	if find.RowStatus != nil {
		where, args = append(where, "row_status = "+placeholder(len(args)+1)), append(args, string(*find.RowStatus))
	}
	if find.Location != nil {
		where, args = append(where, "location = "+placeholder(len(args)+1)), append(args, *find.Location)
	}
	if find.Tier != nil {
		where, args = append(where, "tier = "+placeholder(len(args)+1)), append(args, string(*find.Tier))
	}
	if find.MinPrice != nil {
		where, args = append(where, "price >= "+placeholder(len(args)+1)), append(args, *find.MinPrice)
	}
	if find.MaxPrice != nil {
		where, args = append(where, "price <= "+placeholder(len(args)+1)), append(args, *find.MaxPrice)
	}

	query := `
		SELECT id, uid, row_status, created_ts, updated_ts, name, description, location, price, tier, amenities
		FROM hotel
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY id
	`
	if find.Limit != nil {
		query += " LIMIT " + placeholder(len(args)+1)
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
		set, args = append(set, "updated_ts = "+placeholder(len(args)+1)), append(args, *update.UpdatedTs)
	}
	if update.RowStatus != nil {
		set, args = append(set, "row_status = "+placeholder(len(args)+1)), append(args, string(*update.RowStatus))
	}
	if update.Name != nil {
		set, args = append(set, "name = "+placeholder(len(args)+1)), append(args, *update.Name)
	}
	if update.Description != nil {
		set, args = append(set, "description = "+placeholder(len(args)+1)), append(args, *update.Description)
	}
	if update.Location != nil {
		set, args = append(set, "location = "+placeholder(len(args)+1)), append(args, *update.Location)
	}
	if update.Price != nil {
		set, args = append(set, "price = "+placeholder(len(args)+1)), append(args, *update.Price)
	}
	if update.Tier != nil {
		set, args = append(set, "tier = "+placeholder(len(args)+1)), append(args, string(*update.Tier))
	}
	if update.Amenities != nil {
		amenities, err := json.Marshal(update.Amenities)
		if err != nil {
			return errors.Wrap(err, "failed to marshal amenities")
		}
		set, args = append(set, "amenities = "+placeholder(len(args)+1)), append(args, amenities)
	}
	if len(set) == 0 {
		return nil
	}

	stmt := `UPDATE hotel SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args)+1)
	args = append(args, update.ID)
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return errors.Wrap(err, "failed to update hotel")
	}
	return nil
}

// DeleteHotel deletes a hotel row; embeddings cascade.
func (d *DB) DeleteHotel(ctx context.Context, delete *store.DeleteHotel) error {
	stmt := `DELETE FROM hotel WHERE id = ` + placeholder(1)
	if _, err := d.db.ExecContext(ctx, stmt, delete.ID); err != nil {
		return errors.Wrap(err, "failed to delete hotel")
	}
	return nil
}

// UpsertHotelEmbedding inserts or updates a hotel embedding.
func (d *DB) UpsertHotelEmbedding(ctx context.Context, hotelID int32, model string, embedding []float32) error {
	now := time.Now().Unix()
	stmt := `
		INSERT INTO hotel_embedding (hotel_id, embedding, model, created_ts, updated_ts)
		VALUES (` + placeholders(5) + `)
		ON CONFLICT (hotel_id, model)
		DO UPDATE SET
			embedding = EXCLUDED.embedding,
			updated_ts = EXCLUDED.updated_ts
	`
	vector := pgvector.NewVector(embedding)
	if _, err := d.db.ExecContext(ctx, stmt, hotelID, vector, model, now, now); err != nil {
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
		LEFT JOIN hotel_embedding e ON e.hotel_id = h.id AND e.model = $1
		WHERE h.row_status = 'NORMAL' AND e.id IS NULL
		ORDER BY h.id
		LIMIT $2
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

// SearchHotelsByVector performs cosine similarity search over active hotels.
// Location, price bounds and tier are the only hard filters.
func (d *DB) SearchHotelsByVector(ctx context.Context, opts *store.VectorSearchOptions) ([]*store.ScoredHotel, error) {
	vector := pgvector.NewVector(opts.Embedding)
	where, args := []string{"h.row_status = 'NORMAL'"}, []any{vector}

	if opts.Location != nil {
		where, args = append(where, "h.location = "+placeholder(len(args)+1)), append(args, *opts.Location)
	}
	if opts.MinPrice != nil {
		where, args = append(where, "h.price >= "+placeholder(len(args)+1)), append(args, *opts.MinPrice)
	}
	if opts.MaxPrice != nil {
		where, args = append(where, "h.price <= "+placeholder(len(args)+1)), append(args, *opts.MaxPrice)
	}
	if opts.Tier != nil {
		where, args = append(where, "h.tier = "+placeholder(len(args)+1)), append(args, string(*opts.Tier))
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}

	// 1 - cosine distance = cosine similarity, in [-1, 1].
	query := `
		SELECT h.id, h.uid, h.row_status, h.created_ts, h.updated_ts, h.name, h.description, h.location, h.price, h.tier, h.amenities,
			1 - (e.embedding <=> $1) AS similarity
		FROM hotel h
		JOIN hotel_embedding e ON e.hotel_id = h.id
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY similarity DESC
		LIMIT ` + placeholder(len(args)+1)
	args = append(args, limit)

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to search hotels by vector")
	}
	defer rows.Close()

	list := []*store.ScoredHotel{}
	for rows.Next() {
		var hotel store.Hotel
		var tier sql.NullString
		var amenities []byte
		var similarity float64
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
			&similarity,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan scored hotel")
		}
		applyTierAndAmenities(&hotel, tier, amenities)
		list = append(list, &store.ScoredHotel{Hotel: &hotel, Similarity: float32(similarity)})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// GetLocationStats computes price statistics for one city over active rows.
func (d *DB) GetLocationStats(ctx context.Context, location string) (*store.CatalogStats, error) {
	return d.priceStats(ctx, "location = "+placeholder(1), location)
}

// GetTierStats computes price statistics for one tier over active rows.
func (d *DB) GetTierStats(ctx context.Context, tier store.Tier) (*store.CatalogStats, error) {
	return d.priceStats(ctx, "tier = "+placeholder(1), string(tier))
}

// GetCatalogStats computes price statistics over the whole active catalog.
func (d *DB) GetCatalogStats(ctx context.Context) (*store.CatalogStats, error) {
	return d.priceStats(ctx, "1 = 1")
}

func (d *DB) priceStats(ctx context.Context, condition string, args ...any) (*store.CatalogStats, error) {
	query := `
		SELECT
			COALESCE(MIN(price), 0),
			COALESCE(MAX(price), 0),
			COALESCE(AVG(price), 0),
			COALESCE(PERCENTILE_CONT(0.5) WITHIN GROUP (ORDER BY price), 0),
			COUNT(*)
		FROM hotel
		WHERE row_status = 'NORMAL' AND ` + condition

	stats := &store.CatalogStats{}
	err := d.db.QueryRowContext(ctx, query, args...).Scan(
		&stats.MinPrice,
		&stats.MaxPrice,
		&stats.AvgPrice,
		&stats.MedianPrice,
		&stats.Count,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to compute price stats")
	}
	return stats, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHotel(row rowScanner) (*store.Hotel, error) {
	var hotel store.Hotel
	var tier sql.NullString
	var amenities []byte
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

func applyTierAndAmenities(hotel *store.Hotel, tier sql.NullString, amenities []byte) {
	if tier.Valid {
		t := store.Tier(tier.String)
		hotel.Tier = &t
	}
	if len(amenities) > 0 {
		// Amenity decode failures leave the slice empty rather than failing
		// the whole row.
		_ = json.Unmarshal(amenities, &hotel.Amenities)
	}
}
