package db

import (
	"github.com/pkg/errors"

	"github.com/stayscout/stayscout/internal/profile"
	"github.com/stayscout/stayscout/store"
	"github.com/stayscout/stayscout/store/db/postgres"
	"github.com/stayscout/stayscout/store/db/sqlite"
)

// NewDBDriver creates new db driver based on profile.
//
// PostgreSQL: full support, including pgvector semantic search.
// SQLite: development/testing; vector search falls back to brute-force
// cosine similarity in Go, which is fine for a catalog of this size.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	var driver store.Driver
	var err error

	switch profile.Driver {
	case "sqlite":
		driver, err = sqlite.NewDB(profile)
	case "postgres":
		driver, err = postgres.NewDB(profile)
	default:
		return nil, errors.New("unknown db driver: only 'postgres' and 'sqlite' are supported")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create db driver")
	}
	return driver, nil
}
