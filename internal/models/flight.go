package models

import "fmt"

type FlightLeg struct {
	DepartureAirport string `json:"departure_airport"`
	DepartureTime    string `json:"departure_time"`
	ArrivalAirport   string `json:"arrival_airport"`
	ArrivalTime      string `json:"arrival_time"`
	Airline          string `json:"airline"`
	AirlineLogo      string `json:"airline_logo"`
	TravelClass      string `json:"travel_class"`
	FlightNumber     string `json:"flight_number"`
	Duration         int    `json:"duration"`
}

type Layover struct {
	Airport   string `json:"airport"`
	AirportID string `json:"airport_id"`
	Duration  int    `json:"duration"`
	Overnight bool   `json:"overnight"`
}

// ReturnFlight is a return-leg candidate paired with one departure option.
type ReturnFlight struct {
	Airline     string      `json:"airline"`
	Price       int         `json:"price"`
	Duration    int         `json:"duration"`
	Stops       string      `json:"stops"`
	Departure   string      `json:"departure"`
	Arrival     string      `json:"arrival"`
	TravelClass string      `json:"travel_class"`
	AirlineLogo string      `json:"airline_logo"`
	Legs        []FlightLeg `json:"legs"`
	Layovers    []Layover   `json:"layovers"`
}

type FlightOption struct {
	Airline       string         `json:"airline"`
	Price         int            `json:"price"`
	Duration      int            `json:"duration"`
	Stops         string         `json:"stops"`
	Departure     string         `json:"departure"`
	Arrival       string         `json:"arrival"`
	TravelClass   string         `json:"travel_class"`
	ReturnDate    string         `json:"return_date"`
	AirlineLogo   string         `json:"airline_logo"`
	Legs          []FlightLeg    `json:"legs"`
	Layovers      []Layover      `json:"layovers"`
	ReturnFlights []ReturnFlight `json:"return_flights"`
}

// StopsLabel describes an itinerary by its leg count: "Nonstop" or "<n> stop(s)".
func StopsLabel(legs int) string {
	if legs <= 1 {
		return "Nonstop"
	}
	return fmt.Sprintf("%d stop(s)", legs-1)
}
