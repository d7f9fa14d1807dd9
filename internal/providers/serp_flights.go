package providers

import (
	"context"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/dharmasatrya/tripplanner/internal/fanout"
	"github.com/dharmasatrya/tripplanner/internal/models"
)

// maxOtherReturnFlights caps return candidates taken from other_flights when
// the provider offers no best set, keeping recommendation prompts small.
const maxOtherReturnFlights = 3

// SerpFlightProvider searches Google Flights through SerpAPI.
type SerpFlightProvider struct {
	search        serpSearch
	maxConcurrent int
	logger        *zap.Logger
}

func NewSerpFlightProvider(cfg SerpConfig, maxConcurrent int, logger *zap.Logger) *SerpFlightProvider {
	return &SerpFlightProvider{
		search:        newSerpSearch("serpapi_flights", cfg),
		maxConcurrent: maxConcurrent,
		logger:        logger.Named("serpapi_flights"),
	}
}

func (p *SerpFlightProvider) Name() string {
	return p.search.name
}

func (p *SerpFlightProvider) query(ctx context.Context, req models.FlightRequest, departureToken string) (gjson.Result, error) {
	values := p.search.baseParams("google_flights")
	values.Set("departure_id", req.Origin)
	values.Set("arrival_id", req.Destination)
	values.Set("outbound_date", req.OutboundDate)
	if req.RoundTrip() {
		values.Set("return_date", req.ReturnDate)
	} else {
		values.Set("type", "2")
	}
	if departureToken != "" {
		values.Set("departure_token", departureToken)
	}
	return p.search.run(ctx, values)
}

func (p *SerpFlightProvider) SearchFlights(ctx context.Context, req models.FlightRequest) ([]models.FlightOption, error) {
	p.logger.Info("searching flights",
		zap.String("origin", req.Origin),
		zap.String("destination", req.Destination),
		zap.String("outbound_date", req.OutboundDate),
		zap.String("return_date", req.ReturnDate))

	res, err := p.query(ctx, req, "")
	if err != nil {
		return nil, err
	}

	best := arrayField(res, "best_flights")
	if len(best) == 0 {
		return nil, ErrNoResults
	}

	options := make([]models.FlightOption, 0, len(best))
	tokens := make([]string, 0, len(best))
	for i, raw := range best {
		it, err := normalizeItinerary(raw)
		if err != nil {
			p.logger.Warn("skipping malformed flight record", zap.Int("index", i), zap.Error(err))
			continue
		}
		options = append(options, it.toFlightOption(req.ReturnDate))
		tokens = append(tokens, raw.Get("departure_token").String())
	}
	if len(options) == 0 {
		return nil, ErrNoResults
	}

	if req.RoundTrip() {
		p.attachReturnFlights(ctx, req, options, tokens)
	}

	p.logger.Info("found flights", zap.Int("count", len(options)))
	return options, nil
}

// attachReturnFlights runs one secondary fetch per departure carrying a
// departure token. Each fetch writes only its own option; failures leave
// that option without return candidates.
func (p *SerpFlightProvider) attachReturnFlights(ctx context.Context, req models.FlightRequest, options []models.FlightOption, tokens []string) {
	var (
		tasks   []fanout.Task[[]models.ReturnFlight]
		targets []int
	)
	for i, token := range tokens {
		if token == "" {
			continue
		}
		token := token
		tasks = append(tasks, func(ctx context.Context) ([]models.ReturnFlight, error) {
			return p.fetchReturnFlights(ctx, req, token)
		})
		targets = append(targets, i)
	}

	results := fanout.Run(ctx, p.maxConcurrent, tasks)
	for n, r := range results {
		idx := targets[n]
		if r.Err != nil {
			p.logger.Warn("return flight fetch failed",
				zap.Int("departure_index", idx),
				zap.Error(r.Err))
			continue
		}
		options[idx].ReturnFlights = r.Value
	}
}

func (p *SerpFlightProvider) fetchReturnFlights(ctx context.Context, req models.FlightRequest, token string) ([]models.ReturnFlight, error) {
	res, err := p.query(ctx, req, token)
	if err != nil {
		return nil, err
	}

	candidates := arrayField(res, "best_flights")
	if len(candidates) == 0 {
		candidates = arrayField(res, "other_flights")
		if len(candidates) > maxOtherReturnFlights {
			candidates = candidates[:maxOtherReturnFlights]
		}
	}

	returns := make([]models.ReturnFlight, 0, len(candidates))
	for i, raw := range candidates {
		it, err := normalizeItinerary(raw)
		if err != nil {
			p.logger.Warn("skipping malformed return flight record", zap.Int("index", i), zap.Error(err))
			continue
		}
		returns = append(returns, it.toReturnFlight())
	}
	return returns, nil
}

// itinerary is the shape shared by departure options and return candidates.
type itinerary struct {
	airline     string
	price       int
	duration    int
	stops       string
	departure   string
	arrival     string
	travelClass string
	airlineLogo string
	legs        []models.FlightLeg
	layovers    []models.Layover
}

func (it itinerary) toFlightOption(returnDate string) models.FlightOption {
	return models.FlightOption{
		Airline:     it.airline,
		Price:       it.price,
		Duration:    it.duration,
		Stops:       it.stops,
		Departure:   it.departure,
		Arrival:     it.arrival,
		TravelClass: it.travelClass,
		ReturnDate:  returnDate,
		AirlineLogo: it.airlineLogo,
		Legs:        it.legs,
		Layovers:    it.layovers,
	}
}

func (it itinerary) toReturnFlight() models.ReturnFlight {
	return models.ReturnFlight{
		Airline:     it.airline,
		Price:       it.price,
		Duration:    it.duration,
		Stops:       it.stops,
		Departure:   it.departure,
		Arrival:     it.arrival,
		TravelClass: it.travelClass,
		AirlineLogo: it.airlineLogo,
		Legs:        it.legs,
		Layovers:    it.layovers,
	}
}

var errNoLegs = errors.New("record has no flight legs")

func normalizeItinerary(raw gjson.Result) (itinerary, error) {
	rawLegs := arrayField(raw, "flights")
	if len(rawLegs) == 0 {
		return itinerary{}, errNoLegs
	}

	legs := make([]models.FlightLeg, len(rawLegs))
	for i, l := range rawLegs {
		leg, err := normalizeLeg(l)
		if err != nil {
			return itinerary{}, fmt.Errorf("leg %d: %w", i, err)
		}
		legs[i] = leg
	}

	rawLayovers := arrayField(raw, "layovers")
	layovers := make([]models.Layover, len(rawLayovers))
	for i, l := range rawLayovers {
		duration, err := intField(l, "duration")
		if err != nil {
			return itinerary{}, fmt.Errorf("layover %d: %w", i, err)
		}
		layovers[i] = models.Layover{
			Airport:   stringField(l, "name", ""),
			AirportID: stringField(l, "id", ""),
			Duration:  duration,
			Overnight: l.Get("overnight").Bool(),
		}
	}

	price, err := intField(raw, "price")
	if err != nil {
		return itinerary{}, err
	}
	total, err := intField(raw, "total_duration")
	if err != nil {
		return itinerary{}, err
	}

	first, last := rawLegs[0], rawLegs[len(rawLegs)-1]
	return itinerary{
		airline:     stringField(first, "airline", "Unknown Airline"),
		price:       price,
		duration:    total,
		stops:       models.StopsLabel(len(rawLegs)),
		departure:   endpointSummary(first.Get("departure_airport")),
		arrival:     endpointSummary(last.Get("arrival_airport")),
		travelClass: stringField(first, "travel_class", "Economy"),
		airlineLogo: stringField(first, "airline_logo", ""),
		legs:        legs,
		layovers:    layovers,
	}, nil
}

func normalizeLeg(l gjson.Result) (models.FlightLeg, error) {
	if !l.IsObject() {
		return models.FlightLeg{}, fmt.Errorf("leg is %s, not an object", l.Type)
	}
	duration, err := intField(l, "duration")
	if err != nil {
		return models.FlightLeg{}, err
	}
	if duration < 0 {
		return models.FlightLeg{}, fmt.Errorf("negative leg duration %d", duration)
	}
	dep, arr := l.Get("departure_airport"), l.Get("arrival_airport")
	return models.FlightLeg{
		DepartureAirport: airportLabel(dep),
		DepartureTime:    stringField(dep, "time", "N/A"),
		ArrivalAirport:   airportLabel(arr),
		ArrivalTime:      stringField(arr, "time", "N/A"),
		Airline:          stringField(l, "airline", "Unknown Airline"),
		AirlineLogo:      stringField(l, "airline_logo", ""),
		TravelClass:      stringField(l, "travel_class", "Economy"),
		FlightNumber:     stringField(l, "flight_number", ""),
		Duration:         duration,
	}, nil
}

func airportLabel(a gjson.Result) string {
	return fmt.Sprintf("%s (%s)", stringField(a, "name", "Unknown"), stringField(a, "id", "???"))
}

func endpointSummary(a gjson.Result) string {
	return fmt.Sprintf("%s at %s", airportLabel(a), stringField(a, "time", "N/A"))
}
