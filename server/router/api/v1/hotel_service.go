package v1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	apierrors "github.com/stayscout/stayscout/server/internal/errors"
	"github.com/stayscout/stayscout/store"
)

// HotelPayload is the wire form of a catalog hotel.
type HotelPayload struct {
	UID         string   `json:"uid"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Price       float64  `json:"price"`
	Tier        string   `json:"tier,omitempty"`
	Amenities   []string `json:"amenities"`
	CreatedTs   int64    `json:"createdTs"`
	UpdatedTs   int64    `json:"updatedTs"`
}

// CreateHotelRequest is the body of POST /api/v1/hotels.
type CreateHotelRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Price       float64  `json:"price"`
	Tier        string   `json:"tier"`
	Amenities   []string `json:"amenities"`
}

// CreateHotel handles POST /api/v1/hotels. The embedding runner picks the
// new hotel up asynchronously; it becomes searchable shortly after.
func (s *APIV1Service) CreateHotel(c echo.Context) error {
	request := &CreateHotelRequest{}
	if err := c.Bind(request); err != nil {
		return c.JSON(http.StatusBadRequest,
			apierrors.New(apierrors.CodeInvalidArgument, "malformed request body"))
	}

	if request.Name == "" {
		return c.JSON(http.StatusBadRequest,
			apierrors.New(apierrors.CodeInvalidArgument, "name is required"))
	}
	if !store.IsValidCity(request.Location) {
		return c.JSON(http.StatusBadRequest,
			apierrors.New(apierrors.CodeInvalidArgument, "location must be a known city"))
	}
	if request.Price <= 0 {
		return c.JSON(http.StatusBadRequest,
			apierrors.New(apierrors.CodeInvalidArgument, "price must be positive"))
	}

	create := &store.Hotel{
		Name:        request.Name,
		Description: request.Description,
		Location:    request.Location,
		Price:       request.Price,
		Amenities:   request.Amenities,
	}
	if request.Tier != "" {
		tier := store.Tier(request.Tier)
		if !tier.IsValid() {
			return c.JSON(http.StatusBadRequest,
				apierrors.New(apierrors.CodeInvalidArgument, "unknown tier"))
		}
		create.Tier = &tier
	}

	hotel, err := s.Store.CreateHotel(c.Request().Context(), create)
	if err != nil {
		return c.JSON(http.StatusInternalServerError,
			apierrors.New(apierrors.CodeInternal, "failed to create hotel"))
	}
	return c.JSON(http.StatusOK, convertHotel(hotel))
}

// ListHotels handles GET /api/v1/hotels with optional location, tier and
// price filters.
func (s *APIV1Service) ListHotels(c echo.Context) error {
	normal := store.Normal
	find := &store.FindHotel{RowStatus: &normal}

	if location := c.QueryParam("location"); location != "" {
		if !store.IsValidCity(location) {
			return c.JSON(http.StatusBadRequest,
				apierrors.New(apierrors.CodeInvalidArgument, "unknown city"))
		}
		find.Location = &location
	}
	if raw := c.QueryParam("tier"); raw != "" {
		tier := store.Tier(raw)
		if !tier.IsValid() {
			return c.JSON(http.StatusBadRequest,
				apierrors.New(apierrors.CodeInvalidArgument, "unknown tier"))
		}
		find.Tier = &tier
	}
	if raw := c.QueryParam("maxPrice"); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil || price <= 0 {
			return c.JSON(http.StatusBadRequest,
				apierrors.New(apierrors.CodeInvalidArgument, "maxPrice must be a positive number"))
		}
		find.MaxPrice = &price
	}

	hotels, err := s.Store.ListHotels(c.Request().Context(), find)
	if err != nil {
		return c.JSON(http.StatusInternalServerError,
			apierrors.New(apierrors.CodeInternal, "failed to list hotels"))
	}

	payload := make([]HotelPayload, 0, len(hotels))
	for _, h := range hotels {
		payload = append(payload, convertHotel(h))
	}
	return c.JSON(http.StatusOK, payload)
}

// GetHotel handles GET /api/v1/hotels/:uid.
func (s *APIV1Service) GetHotel(c echo.Context) error {
	uid := c.Param("uid")
	normal := store.Normal
	hotel, err := s.Store.GetHotel(c.Request().Context(), &store.FindHotel{UID: &uid, RowStatus: &normal})
	if err != nil {
		return c.JSON(http.StatusInternalServerError,
			apierrors.New(apierrors.CodeInternal, "failed to get hotel"))
	}
	if hotel == nil {
		return c.JSON(http.StatusNotFound,
			apierrors.New(apierrors.CodeNotFound, "hotel not found"))
	}
	return c.JSON(http.StatusOK, convertHotel(hotel))
}

// DeleteHotel handles DELETE /api/v1/hotels/:uid.
func (s *APIV1Service) DeleteHotel(c echo.Context) error {
	uid := c.Param("uid")
	hotel, err := s.Store.GetHotel(c.Request().Context(), &store.FindHotel{UID: &uid})
	if err != nil {
		return c.JSON(http.StatusInternalServerError,
			apierrors.New(apierrors.CodeInternal, "failed to get hotel"))
	}
	if hotel == nil {
		return c.JSON(http.StatusNotFound,
			apierrors.New(apierrors.CodeNotFound, "hotel not found"))
	}
	if err := s.Store.DeleteHotel(c.Request().Context(), &store.DeleteHotel{ID: hotel.ID}); err != nil {
		return c.JSON(http.StatusInternalServerError,
			apierrors.New(apierrors.CodeInternal, "failed to delete hotel"))
	}
	return c.NoContent(http.StatusNoContent)
}
