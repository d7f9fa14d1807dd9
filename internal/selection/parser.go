// Package selection turns free-text recommendations into concrete picks from
// the search results.
package selection

import (
	"regexp"
	"strconv"
)

// Markers may be wrapped in markdown emphasis or inline code, so asterisks and
// backticks are allowed between the colon and the number.
var (
	departureMarker = regexp.MustCompile("(?i)Recommended Departure Flight:[\\s*`]*(\\d+)")
	returnMarker    = regexp.MustCompile("(?i)Recommended Return Flight:[\\s*`]*(\\d+)")
	hotelMarker     = regexp.MustCompile("(?i)Recommended Hotel:[\\s*`]*(\\d+)")
)

// FlightIndices are zero-based positions parsed from a flight recommendation.
// They are not checked against any result list.
type FlightIndices struct {
	Departure int
	Return    int
}

// ParseFlightIndices reads the first departure and return markers. A missing
// or unparsable marker yields 0.
func ParseFlightIndices(text string) FlightIndices {
	return FlightIndices{
		Departure: markerIndex(departureMarker, text),
		Return:    markerIndex(returnMarker, text),
	}
}

// ParseHotelIndex reads the first hotel marker. A missing or unparsable
// marker yields 0.
func ParseHotelIndex(text string) int {
	return markerIndex(hotelMarker, text)
}

// markerIndex converts the one-based number after a marker to a zero-based
// index. "0" becomes -1, which the resolver treats as out of range.
func markerIndex(marker *regexp.Regexp, text string) int {
	m := marker.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n - 1
}
