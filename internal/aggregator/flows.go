package aggregator

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dharmasatrya/tripplanner/internal/fanout"
	"github.com/dharmasatrya/tripplanner/internal/models"
	"github.com/dharmasatrya/tripplanner/internal/pkg/logger"
	"github.com/dharmasatrya/tripplanner/internal/recommend"
	"github.com/dharmasatrya/tripplanner/internal/selection"
)

const (
	FlightsUnavailable = "Could not retrieve flights."
	HotelsUnavailable  = "Could not retrieve hotels."
)

func (a *Aggregator) searchLogger(ctx context.Context, searchID string) *zap.Logger {
	return a.logger.With(
		zap.String("search_id", searchID),
		zap.String("request_id", logger.RequestID(ctx)))
}

// SearchFlights runs a single flight search and recommends one option.
// Provider failures and empty results are returned as errors.
func (a *Aggregator) SearchFlights(ctx context.Context, req models.FlightRequest) (*models.AggregatedResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	result := models.NewAggregatedResult(uuid.NewString())
	log := a.searchLogger(ctx, result.SearchID)

	flights, err := a.fetchFlights(ctx, req, log)
	if err != nil {
		log.Error("flight search failed", zap.Error(err))
		return nil, err
	}

	result.Flights = flights
	result.AIFlightRecommendation = a.recommend(ctx, models.KindFlights, a.formatter.Flights(flights), log)
	return result, nil
}

// SearchHotels searches every location and recommends a hotel per location.
// Failed locations become empty groups; the call fails only when every
// location failed, with the first location's error.
func (a *Aggregator) SearchHotels(ctx context.Context, reqs []models.HotelRequest) (*models.AggregatedResult, error) {
	if len(reqs) == 0 {
		return nil, models.ErrMissingHotelRequest
	}
	for i := range reqs {
		if err := reqs[i].Validate(); err != nil {
			return nil, err
		}
	}

	result := models.NewAggregatedResult(uuid.NewString())
	log := a.searchLogger(ctx, result.SearchID)

	groups, errs := a.searchHotelGroups(ctx, reqs, log)
	if allFailed(errs) {
		return nil, errs[0]
	}

	a.fillHotels(ctx, result, groups, log)
	return result, nil
}

// GenerateItinerary writes an itinerary from caller-supplied flight and
// hotel text. Generation failures yield the placeholder text.
func (a *Aggregator) GenerateItinerary(ctx context.Context, req models.ItineraryRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	log := a.searchLogger(ctx, uuid.NewString())
	return a.synthesize(ctx, recommend.ItineraryInput{
		Destination:  req.Destination,
		Flights:      req.Flights,
		Hotels:       req.Hotels,
		CheckIn:      req.CheckInDate,
		CheckOut:     req.CheckOutDate,
		Instructions: req.SpecialInstructions,
	}, log)
}

// PlanTrip runs the combined flow. The flight and hotel branches run
// concurrently and degrade independently; only validation errors are
// returned. The itinerary is written only when a flight and at least one
// hotel were selected.
func (a *Aggregator) PlanTrip(ctx context.Context, req models.TravelPlanRequest) (*models.AggregatedResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	result := models.NewAggregatedResult(uuid.NewString())
	log := a.searchLogger(ctx, result.SearchID)
	log.Info("planning trip",
		zap.String("origin", req.FlightRequest.Origin),
		zap.String("destination", req.FlightRequest.Destination),
		zap.Int("locations", len(req.HotelRequests)))

	var (
		wg     sync.WaitGroup
		groups []models.HotelGroup
	)
	wg.Add(2)

	go func() {
		defer wg.Done()
		flights, err := a.fetchFlights(ctx, req.FlightRequest, log)
		if err != nil {
			log.Error("flight branch failed", zap.Error(err))
			result.AIFlightRecommendation = FlightsUnavailable
			return
		}
		result.Flights = flights
		result.AIFlightRecommendation = a.recommend(ctx, models.KindFlights, a.formatter.Flights(flights), log)
	}()

	go func() {
		defer wg.Done()
		var errs []error
		groups, errs = a.searchHotelGroups(ctx, req.HotelRequests, log)
		if allFailed(errs) {
			log.Error("hotel branch failed", zap.Error(errs[0]))
		}
	}()

	wg.Wait()
	a.fillHotels(ctx, result, groups, log)

	flightIdx := selection.ParseFlightIndices(result.AIFlightRecommendation)
	chosenFlight := selection.FallbackFlight(result.Flights,
		selection.ResolveFlight(result.Flights, flightIdx.Departure, flightIdx.Return))

	var chosenHotels []models.LocatedHotel
	for i, g := range result.HotelsGrouped {
		idx := selection.ParseHotelIndex(result.AIHotelRecommendations[i])
		if h := selection.ResolveHotel(g, idx); h != nil {
			chosenHotels = append(chosenHotels, *h)
		}
	}

	if !chosenFlight.Selected() || len(chosenHotels) == 0 {
		log.Info("itinerary skipped",
			zap.Bool("flight_selected", chosenFlight.Selected()),
			zap.Int("hotels_selected", len(chosenHotels)))
		return result, nil
	}

	itinerary, err := a.synthesize(ctx, recommend.ItineraryInput{
		Destination:  tripDestination(req.FlightRequest, chosenHotels),
		Flights:      a.formatter.SelectedFlight(chosenFlight),
		Hotels:       a.formatter.SelectedHotels(chosenHotels),
		CheckIn:      req.FlightRequest.OutboundDate,
		CheckOut:     tripEnd(req.FlightRequest, chosenHotels),
		Instructions: req.SpecialInstructions,
	}, log)
	if err != nil {
		log.Warn("itinerary not generated", zap.Error(err))
		return result, nil
	}

	result.Itinerary = itinerary
	return result, nil
}

// searchHotelGroups returns one group per request, in request order. A
// failed location yields an empty group and its error at the same index.
func (a *Aggregator) searchHotelGroups(ctx context.Context, reqs []models.HotelRequest, log *zap.Logger) ([]models.HotelGroup, []error) {
	tasks := make([]fanout.Task[[]models.HotelOption], len(reqs))
	for i, req := range reqs {
		req := req
		tasks[i] = func(ctx context.Context) ([]models.HotelOption, error) {
			return a.fetchHotels(ctx, req, log)
		}
	}

	results := fanout.Run(ctx, a.config.MaxConcurrent, tasks)

	groups := make([]models.HotelGroup, len(reqs))
	errs := make([]error, len(reqs))
	for i, r := range results {
		groups[i] = models.HotelGroup{
			Location: reqs[i].Location,
			CheckIn:  reqs[i].CheckInDate,
			CheckOut: reqs[i].CheckOutDate,
			Hotels:   make([]models.HotelOption, 0),
		}
		if r.Err != nil {
			log.Warn("hotel search failed for location",
				zap.String("location", reqs[i].Location),
				zap.Error(r.Err))
			errs[i] = r.Err
			continue
		}
		groups[i].Hotels = r.Value
	}
	return groups, errs
}

// fillHotels stores groups with one recommendation per group at the same
// index. Empty groups get the unavailable placeholder without a generation
// call.
func (a *Aggregator) fillHotels(ctx context.Context, result *models.AggregatedResult, groups []models.HotelGroup, log *zap.Logger) {
	tasks := make([]fanout.Task[string], len(groups))
	for i, g := range groups {
		g := g
		tasks[i] = func(ctx context.Context) (string, error) {
			if len(g.Hotels) == 0 {
				return HotelsUnavailable, nil
			}
			text := a.formatter.Hotels(models.Flatten([]models.HotelGroup{g}))
			return a.recommend(ctx, models.KindHotels, text, log), nil
		}
	}

	recs := make([]string, len(groups))
	for i, r := range fanout.Run(ctx, a.config.MaxConcurrent, tasks) {
		recs[i] = r.Value
		if r.Err != nil {
			recs[i] = recommend.FailurePlaceholder(models.KindHotels)
		}
	}

	result.HotelsGrouped = groups
	result.AIHotelRecommendations = recs
	for _, g := range groups {
		result.Hotels = append(result.Hotels, g.Hotels...)
	}
}

func allFailed(errs []error) bool {
	if len(errs) == 0 {
		return false
	}
	for _, err := range errs {
		if err == nil {
			return false
		}
	}
	return true
}

// tripDestination names the distinct hotel locations in order, or the
// flight destination when they are all blank.
func tripDestination(flight models.FlightRequest, hotels []models.LocatedHotel) string {
	seen := make(map[string]bool)
	var names []string
	for _, h := range hotels {
		if h.Location == "" || seen[h.Location] {
			continue
		}
		seen[h.Location] = true
		names = append(names, h.Location)
	}
	if len(names) == 0 {
		return flight.Destination
	}
	return strings.Join(names, ", ")
}

// tripEnd is the return date, or the last hotel checkout for one-way trips.
func tripEnd(flight models.FlightRequest, hotels []models.LocatedHotel) string {
	if flight.RoundTrip() {
		return flight.ReturnDate
	}
	return hotels[len(hotels)-1].CheckOut
}
