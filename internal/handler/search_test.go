package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dharmasatrya/tripplanner/internal/models"
	"github.com/dharmasatrya/tripplanner/internal/providers"
)

type fakePlanner struct {
	err error

	flightReq    models.FlightRequest
	hotelReqs    []models.HotelRequest
	itineraryReq models.ItineraryRequest
	planReq      models.TravelPlanRequest
}

func (f *fakePlanner) SearchFlights(_ context.Context, req models.FlightRequest) (*models.AggregatedResult, error) {
	f.flightReq = req
	if f.err != nil {
		return nil, f.err
	}
	result := models.NewAggregatedResult("s-1")
	result.AIFlightRecommendation = "Recommended Departure Flight: 1"
	return result, nil
}

func (f *fakePlanner) SearchHotels(_ context.Context, reqs []models.HotelRequest) (*models.AggregatedResult, error) {
	f.hotelReqs = reqs
	if f.err != nil {
		return nil, f.err
	}
	return models.NewAggregatedResult("s-2"), nil
}

func (f *fakePlanner) GenerateItinerary(_ context.Context, req models.ItineraryRequest) (string, error) {
	f.itineraryReq = req
	if f.err != nil {
		return "", f.err
	}
	return "# Day 1", nil
}

func (f *fakePlanner) PlanTrip(_ context.Context, req models.TravelPlanRequest) (*models.AggregatedResult, error) {
	f.planReq = req
	if f.err != nil {
		return nil, f.err
	}
	result := models.NewAggregatedResult("s-3")
	result.Itinerary = "# Trip"
	return result, nil
}

func newServer(p Planner) *echo.Echo {
	e := echo.New()
	NewSearchHandler(p, zap.NewNop()).Register(e)
	return e
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestSearchFlights(t *testing.T) {
	p := &fakePlanner{}
	rec := doJSON(newServer(p), http.MethodPost, "/search_flights/",
		`{"origin":"DEL","destination":"BOM","outbound_date":"2025-07-01","return_date":"2025-07-05"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "DEL", p.flightReq.Origin)
	assert.Equal(t, "2025-07-05", p.flightReq.ReturnDate)

	var got models.AggregatedResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "s-1", got.SearchID)
	assert.Equal(t, "Recommended Departure Flight: 1", got.AIFlightRecommendation)
	assert.NotNil(t, got.Flights)
}

func TestSearchHotels_AcceptsObjectOrList(t *testing.T) {
	p := &fakePlanner{}
	e := newServer(p)

	rec := doJSON(e, http.MethodPost, "/search_hotels/",
		`{"location":"Goa","check_in_date":"2025-07-01","check_out_date":"2025-07-03"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, p.hotelReqs, 1)
	assert.Equal(t, "Goa", p.hotelReqs[0].Location)

	rec = doJSON(e, http.MethodPost, "/search_hotels/", `[
		{"location":"Goa","check_in_date":"2025-07-01","check_out_date":"2025-07-03"},
		{"location":"Pune","check_in_date":"2025-07-03","check_out_date":"2025-07-05"}
	]`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, p.hotelReqs, 2)
	assert.Equal(t, "Pune", p.hotelReqs[1].Location)
}

func TestCompleteSearch(t *testing.T) {
	p := &fakePlanner{}
	rec := doJSON(newServer(p), http.MethodPost, "/complete_search/", `{
		"flight_request": {"origin":"DEL","destination":"GOI","outbound_date":"2025-07-01"},
		"hotel_request": [{"location":"Goa","check_in_date":"2025-07-01","check_out_date":"2025-07-04"}],
		"special_instructions": "vegetarian food"
	}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "GOI", p.planReq.FlightRequest.Destination)
	require.Len(t, p.planReq.HotelRequests, 1)
	assert.Equal(t, "vegetarian food", p.planReq.SpecialInstructions)

	var got models.AggregatedResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "# Trip", got.Itinerary)
}

func TestGenerateItinerary(t *testing.T) {
	p := &fakePlanner{}
	rec := doJSON(newServer(p), http.MethodPost, "/generate_itinerary/",
		`{"destination":"Goa","check_in_date":"2025-07-01","check_out_date":"2025-07-04","flights":"f","hotels":"h"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Goa", p.itineraryReq.Destination)

	var got models.ItineraryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "# Day 1", got.Itinerary)
}

func TestAITravelPlan_Form(t *testing.T) {
	p := &fakePlanner{}
	form := url.Values{}
	form.Set("source_city", "DEL")
	form.Set("destination_city", "GOI")
	form.Set("from_date", "2025-07-01")
	form.Set("return_date", "2025-07-04")
	form.Set("instructions", "beaches")

	req := httptest.NewRequest(http.MethodPost, "/ai_travel_plan/", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	newServer(p).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "DEL", p.planReq.FlightRequest.Origin)
	assert.Equal(t, "2025-07-04", p.planReq.FlightRequest.ReturnDate)
	require.Len(t, p.planReq.HotelRequests, 1)
	assert.Equal(t, "GOI", p.planReq.HotelRequests[0].Location)
	assert.Equal(t, "2025-07-04", p.planReq.HotelRequests[0].CheckOutDate)
	assert.Equal(t, "beaches", p.planReq.SpecialInstructions)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", models.ErrMissingOrigin, http.StatusBadRequest, "validation_error"},
		{"no results", providers.ErrNoResults, http.StatusNotFound, "no_results"},
		{"credentials", providers.NewProviderError("serpapi_flights", providers.KindCredentials, providers.ErrMissingCredentials), http.StatusUnprocessableEntity, "provider_not_configured"},
		{"upstream", providers.NewProviderError("serpapi_flights", providers.KindUpstream, errors.New("status 503")), http.StatusBadGateway, "provider_error"},
		{"payload", providers.NewProviderError("booking", providers.KindPayload, errors.New("actor failed")), http.StatusBadGateway, "provider_error"},
		{"other", context.DeadlineExceeded, http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(newServer(&fakePlanner{err: tt.err}), http.MethodPost, "/search_flights/",
				`{"origin":"DEL","destination":"BOM","outbound_date":"2025-07-01"}`)

			assert.Equal(t, tt.status, rec.Code)
			var got models.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.code, got.Error)
			assert.Equal(t, tt.status, got.Code)
			assert.Equal(t, tt.err.Error(), got.Message)
		})
	}
}

func TestBindError(t *testing.T) {
	p := &fakePlanner{}
	rec := doJSON(newServer(p), http.MethodPost, "/complete_search/", `{"flight_request": [}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var got models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "invalid_request", got.Error)
}

func TestHealth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	newServer(&fakePlanner{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
