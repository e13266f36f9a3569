// Package v1 exposes the HTTP API.
package v1

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/stayscout/stayscout/internal/profile"
	"github.com/stayscout/stayscout/server/middleware"
	"github.com/stayscout/stayscout/server/queryengine"
	"github.com/stayscout/stayscout/store"
)

type APIV1Service struct {
	Profile *profile.Profile
	Store   *store.Store
	Engine  *queryengine.Engine

	rateLimiter *middleware.RateLimiter
}

// NewAPIV1Service creates the API service. engine may be nil when the AI
// stack is disabled; the search endpoint then reports unavailability.
func NewAPIV1Service(profile *profile.Profile, store *store.Store, engine *queryengine.Engine) *APIV1Service {
	return &APIV1Service{
		Profile:     profile,
		Store:       store,
		Engine:      engine,
		rateLimiter: middleware.NewRateLimiter(10, 20),
	}
}

// Register mounts all /api/v1 routes on the echo server.
func (s *APIV1Service) Register(echoServer *echo.Echo) {
	group := echoServer.Group("/api/v1")
	group.Use(echomw.CORS())
	group.Use(s.rateLimiter.Middleware())

	group.POST("/search", s.Search)

	group.POST("/hotels", s.CreateHotel)
	group.GET("/hotels", s.ListHotels)
	group.GET("/hotels/:uid", s.GetHotel)
	group.DELETE("/hotels/:uid", s.DeleteHotel)

	group.GET("/stats/catalog", s.GetCatalogStats)
	group.GET("/stats/locations/:city", s.GetLocationStats)
	group.GET("/stats/tiers/:tier", s.GetTierStats)
}
