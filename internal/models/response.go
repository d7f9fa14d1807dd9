package models

// AggregatedResult is the envelope returned by every search flow.
// AIHotelRecommendations[i] always describes HotelsGrouped[i].
type AggregatedResult struct {
	SearchID               string         `json:"search_id,omitempty"`
	Flights                []FlightOption `json:"flights"`
	Hotels                 []HotelOption  `json:"hotels"`
	HotelsGrouped          []HotelGroup   `json:"hotels_grouped"`
	AIFlightRecommendation string         `json:"ai_flight_recommendation"`
	AIHotelRecommendations []string       `json:"ai_hotel_recommendations"`
	Itinerary              string         `json:"itinerary"`
}

// NewAggregatedResult returns a result with non-nil collections so that the
// JSON form always carries arrays.
func NewAggregatedResult(searchID string) *AggregatedResult {
	return &AggregatedResult{
		SearchID:               searchID,
		Flights:                make([]FlightOption, 0),
		Hotels:                 make([]HotelOption, 0),
		HotelsGrouped:          make([]HotelGroup, 0),
		AIHotelRecommendations: make([]string, 0),
	}
}

type ItineraryResponse struct {
	Itinerary string `json:"itinerary"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
