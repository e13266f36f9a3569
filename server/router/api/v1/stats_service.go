package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apierrors "github.com/stayscout/stayscout/server/internal/errors"
	"github.com/stayscout/stayscout/store"
)

// StatsPayload is the wire form of price statistics.
type StatsPayload struct {
	MinPrice    float64 `json:"minPrice"`
	MaxPrice    float64 `json:"maxPrice"`
	AvgPrice    float64 `json:"avgPrice"`
	MedianPrice float64 `json:"medianPrice"`
	Count       int     `json:"count"`

	// Recommended price range, present for tier stats only.
	RecommendedMin *float64 `json:"recommendedMin,omitempty"`
	RecommendedMax *float64 `json:"recommendedMax,omitempty"`
}

// GetCatalogStats handles GET /api/v1/stats/catalog.
func (s *APIV1Service) GetCatalogStats(c echo.Context) error {
	stats, err := s.Store.GetCatalogStats(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError,
			apierrors.New(apierrors.CodeInternal, "failed to compute catalog stats"))
	}
	return c.JSON(http.StatusOK, convertStats(stats))
}

// GetLocationStats handles GET /api/v1/stats/locations/:city.
func (s *APIV1Service) GetLocationStats(c echo.Context) error {
	city := c.Param("city")
	if !store.IsValidCity(city) {
		return c.JSON(http.StatusBadRequest,
			apierrors.New(apierrors.CodeInvalidArgument, "unknown city"))
	}

	stats, err := s.Store.GetLocationStats(c.Request().Context(), city)
	if err != nil {
		return c.JSON(http.StatusInternalServerError,
			apierrors.New(apierrors.CodeInternal, "failed to compute location stats"))
	}
	return c.JSON(http.StatusOK, convertStats(stats))
}

// GetTierStats handles GET /api/v1/stats/tiers/:tier.
func (s *APIV1Service) GetTierStats(c echo.Context) error {
	tier := store.Tier(c.Param("tier"))
	if !tier.IsValid() {
		return c.JSON(http.StatusBadRequest,
			apierrors.New(apierrors.CodeInvalidArgument, "unknown tier"))
	}

	stats, err := s.Store.GetTierStats(c.Request().Context(), tier)
	if err != nil {
		return c.JSON(http.StatusInternalServerError,
			apierrors.New(apierrors.CodeInternal, "failed to compute tier stats"))
	}
	payload := convertStats(&stats.CatalogStats)
	payload.RecommendedMin = &stats.RecommendedMin
	payload.RecommendedMax = &stats.RecommendedMax
	return c.JSON(http.StatusOK, payload)
}

func convertStats(stats *store.CatalogStats) *StatsPayload {
	return &StatsPayload{
		MinPrice:    stats.MinPrice,
		MaxPrice:    stats.MaxPrice,
		AvgPrice:    stats.AvgPrice,
		MedianPrice: stats.MedianPrice,
		Count:       stats.Count,
	}
}
