package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/dharmasatrya/tripplanner/internal/models"
	"github.com/dharmasatrya/tripplanner/internal/providers"
)

// Planner is the orchestration surface the HTTP layer drives.
type Planner interface {
	SearchFlights(ctx context.Context, req models.FlightRequest) (*models.AggregatedResult, error)
	SearchHotels(ctx context.Context, reqs []models.HotelRequest) (*models.AggregatedResult, error)
	GenerateItinerary(ctx context.Context, req models.ItineraryRequest) (string, error)
	PlanTrip(ctx context.Context, req models.TravelPlanRequest) (*models.AggregatedResult, error)
}

type SearchHandler struct {
	planner Planner
	logger  *zap.Logger
}

func NewSearchHandler(planner Planner, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{
		planner: planner,
		logger:  logger.Named("handler"),
	}
}

// Register mounts every planner route on e.
func (h *SearchHandler) Register(e *echo.Echo) {
	e.POST("/search_flights/", h.SearchFlights)
	e.POST("/search_hotels/", h.SearchHotels)
	e.POST("/complete_search/", h.CompleteSearch)
	e.POST("/generate_itinerary/", h.GenerateItinerary)
	e.POST("/ai_travel_plan/", h.AITravelPlan)
	e.GET("/health", HealthHandler)
}

func (h *SearchHandler) SearchFlights(c echo.Context) error {
	var req models.FlightRequest
	if err := c.Bind(&req); err != nil {
		return bindError(c, err)
	}

	result, err := h.planner.SearchFlights(c.Request().Context(), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// SearchHotels accepts either a single hotel request or a list of them.
func (h *SearchHandler) SearchHotels(c echo.Context) error {
	var reqs models.HotelRequestList
	if err := c.Bind(&reqs); err != nil {
		return bindError(c, err)
	}

	result, err := h.planner.SearchHotels(c.Request().Context(), reqs)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *SearchHandler) CompleteSearch(c echo.Context) error {
	var req models.TravelPlanRequest
	if err := c.Bind(&req); err != nil {
		return bindError(c, err)
	}
	return h.planTrip(c, req)
}

func (h *SearchHandler) GenerateItinerary(c echo.Context) error {
	var req models.ItineraryRequest
	if err := c.Bind(&req); err != nil {
		return bindError(c, err)
	}

	itinerary, err := h.planner.GenerateItinerary(c.Request().Context(), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, models.ItineraryResponse{Itinerary: itinerary})
}

// AITravelPlan takes the planner form (urlencoded or JSON) and runs the
// combined flow with one hotel stay at the destination.
func (h *SearchHandler) AITravelPlan(c echo.Context) error {
	var form models.PlanFormRequest
	if err := c.Bind(&form); err != nil {
		return bindError(c, err)
	}
	return h.planTrip(c, form.ToTravelPlan())
}

func (h *SearchHandler) planTrip(c echo.Context, req models.TravelPlanRequest) error {
	result, err := h.planner.PlanTrip(c.Request().Context(), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func bindError(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "invalid_request",
		Message: "Failed to parse request body: " + err.Error(),
		Code:    http.StatusBadRequest,
	})
}

func (h *SearchHandler) fail(c echo.Context, err error) error {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	}
	return c.JSON(status, models.ErrorResponse{
		Error:   code,
		Message: err.Error(),
		Code:    status,
	})
}

func classify(err error) (int, string) {
	var ve models.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, "validation_error"
	}
	if errors.Is(err, providers.ErrNoResults) {
		return http.StatusNotFound, "no_results"
	}
	var pe *providers.ProviderError
	if errors.As(err, &pe) {
		if pe.Kind == providers.KindCredentials {
			return http.StatusUnprocessableEntity, "provider_not_configured"
		}
		return http.StatusBadGateway, "provider_error"
	}
	return http.StatusInternalServerError, "internal_error"
}

func HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
