package v1

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/stayscout/stayscout/plugin/ai/timeout"
	apierrors "github.com/stayscout/stayscout/server/internal/errors"
	"github.com/stayscout/stayscout/server/queryengine"
	"github.com/stayscout/stayscout/store"
)

// SearchRequest is the body of POST /api/v1/search.
type SearchRequest struct {
	Query string `json:"query"`
	// ConversationContext carries earlier dialog for follow-up queries.
	ConversationContext string `json:"conversationContext,omitempty"`
}

// SearchResponse is either a clarification request or a ranked result list.
type SearchResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`

	MissingFields []string      `json:"missingFields,omitempty"`
	PartialHints  *HintsPayload `json:"partialHints,omitempty"`

	Hints   *HintsPayload  `json:"hints,omitempty"`
	Results []SearchResult `json:"results,omitempty"`
}

// HintsPayload is the wire form of the interpreted query constraints.
type HintsPayload struct {
	Location   string   `json:"location,omitempty"`
	MinPrice   *float64 `json:"minPrice,omitempty"`
	MaxPrice   *float64 `json:"maxPrice,omitempty"`
	ExactPrice *float64 `json:"exactPrice,omitempty"`
	Tier       string   `json:"tier,omitempty"`
	Keywords   []string `json:"keywords,omitempty"`
	Amenities  []string `json:"amenities,omitempty"`
	SortIntent string   `json:"sortIntent,omitempty"`
}

// SearchResult is one ranked hotel with its scores and explanation.
type SearchResult struct {
	Hotel         HotelPayload `json:"hotel"`
	SemanticScore float64      `json:"semanticScore"`
	LexicalScore  float64      `json:"lexicalScore"`
	CombinedScore float64      `json:"combinedScore"`
	Explanation   string       `json:"explanation"`
}

// Search handles POST /api/v1/search.
func (s *APIV1Service) Search(c echo.Context) error {
	if s.Engine == nil {
		return c.JSON(http.StatusServiceUnavailable,
			apierrors.New(apierrors.CodeInternal, "search is unavailable: AI services are not configured"))
	}

	request := &SearchRequest{}
	if err := c.Bind(request); err != nil {
		return c.JSON(http.StatusBadRequest,
			apierrors.New(apierrors.CodeInvalidArgument, "malformed request body"))
	}
	if strings.TrimSpace(request.Query) == "" {
		return c.JSON(http.StatusBadRequest,
			apierrors.New(apierrors.CodeInvalidArgument, "query must not be empty"))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), timeout.QueryTimeout)
	defer cancel()

	response, err := s.Engine.Search(ctx, request.Query, request.ConversationContext)
	if err != nil {
		switch {
		case queryengine.IsParseError(err):
			return c.JSON(http.StatusInternalServerError,
				apierrors.New(apierrors.CodeParseFailed, "could not interpret the query, please rephrase"))
		case queryengine.IsRetrievalError(err):
			return c.JSON(http.StatusInternalServerError,
				apierrors.New(apierrors.CodeRetrievalFailed, "search is temporarily unavailable"))
		default:
			return c.JSON(http.StatusInternalServerError,
				apierrors.New(apierrors.CodeInternal, "internal error"))
		}
	}

	return c.JSON(http.StatusOK, convertSearchResponse(response))
}

func convertSearchResponse(response *queryengine.Response) *SearchResponse {
	out := &SearchResponse{
		Type:    string(response.Type),
		Message: response.Message,
	}

	if response.Type == queryengine.ResponseClarification {
		out.MissingFields = response.MissingFields
		out.PartialHints = convertHints(response.PartialHints)
		return out
	}

	out.Hints = convertHints(response.Hints)
	out.Results = make([]SearchResult, 0, len(response.Hotels))
	for _, r := range response.Hotels {
		out.Results = append(out.Results, SearchResult{
			Hotel:         convertHotel(r.Hotel),
			SemanticScore: r.SemanticScore,
			LexicalScore:  r.LexicalScore,
			CombinedScore: r.CombinedScore,
			Explanation:   r.Explanation,
		})
	}
	return out
}

func convertHints(hints *queryengine.SearchHints) *HintsPayload {
	if hints == nil {
		return nil
	}
	payload := &HintsPayload{
		Location:   hints.Location,
		MinPrice:   hints.MinPrice,
		MaxPrice:   hints.MaxPrice,
		ExactPrice: hints.ExactPrice,
		Keywords:   hints.Keywords,
		Amenities:  hints.Amenities,
		SortIntent: string(hints.SortIntent),
	}
	if hints.Tier != nil {
		payload.Tier = string(*hints.Tier)
	}
	return payload
}

func convertHotel(hotel *store.Hotel) HotelPayload {
	payload := HotelPayload{
		UID:         hotel.UID,
		Name:        hotel.Name,
		Description: hotel.Description,
		Location:    hotel.Location,
		Price:       hotel.Price,
		Amenities:   hotel.Amenities,
		CreatedTs:   hotel.CreatedTs,
		UpdatedTs:   hotel.UpdatedTs,
	}
	if hotel.Tier != nil {
		payload.Tier = string(*hotel.Tier)
	}
	return payload
}
