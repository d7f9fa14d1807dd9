// Package corpus renders search results as markdown text for recommendation
// and itinerary prompts.
package corpus

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/dharmasatrya/tripplanner/internal/models"
	"github.com/dharmasatrya/tripplanner/internal/selection"
	"github.com/dharmasatrya/tripplanner/pkg/currency"
)

const InvalidKind = "Invalid data type."

type Formatter struct {
	currency string
}

func NewFormatter(currencyCode string) *Formatter {
	if currencyCode == "" {
		currencyCode = "INR"
	}
	return &Formatter{currency: currencyCode}
}

// Format renders a full result set. data must be []models.FlightOption for
// flights and []models.LocatedHotel for hotels. Nil or zero-length data yields
// the empty text for kind; any other type, or an unknown kind, yields
// InvalidKind.
func (f *Formatter) Format(kind models.Kind, data any) string {
	switch kind {
	case models.KindFlights, models.KindHotels:
		if isEmpty(data) {
			return empty(kind)
		}
	}

	switch kind {
	case models.KindFlights:
		options, ok := data.([]models.FlightOption)
		if !ok {
			return InvalidKind
		}
		return f.Flights(options)
	case models.KindHotels:
		hotels, ok := data.([]models.LocatedHotel)
		if !ok {
			return InvalidKind
		}
		return f.Hotels(hotels)
	default:
		return InvalidKind
	}
}

// FormatSelected renders a narrowed result set. data must be a
// selection.FlightSelection for flights and []models.LocatedHotel for hotels.
func (f *Formatter) FormatSelected(kind models.Kind, data any) string {
	switch kind {
	case models.KindFlights, models.KindHotels:
		if isEmpty(data) {
			return none(kind)
		}
	}

	switch kind {
	case models.KindFlights:
		sel, ok := data.(selection.FlightSelection)
		if !ok {
			return InvalidKind
		}
		return f.SelectedFlight(sel)
	case models.KindHotels:
		hotels, ok := data.([]models.LocatedHotel)
		if !ok {
			return InvalidKind
		}
		return f.SelectedHotels(hotels)
	default:
		return InvalidKind
	}
}

// Flights enumerates every departure with its return candidates, numbered
// from 1 to match the recommendation markers.
func (f *Formatter) Flights(options []models.FlightOption) string {
	if len(options) == 0 {
		return empty(models.KindFlights)
	}

	var b strings.Builder
	b.WriteString("**Available flight options**:\n\n")
	for i, opt := range options {
		fmt.Fprintf(&b, "**Departure Flight %d:**\n", i+1)
		f.writeFlight(&b, "", opt.Airline, opt.Price, opt.Duration, opt.Stops, opt.Departure, opt.Arrival, opt.TravelClass)
		for j, ret := range opt.ReturnFlights {
			fmt.Fprintf(&b, "\n  **Return Flight %d:**\n", j+1)
			f.writeFlight(&b, "  ", ret.Airline, ret.Price, ret.Duration, ret.Stops, ret.Departure, ret.Arrival, ret.TravelClass)
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

func (f *Formatter) writeFlight(b *strings.Builder, indent, airline string, price, duration int, stops, departure, arrival, class string) {
	fmt.Fprintf(b, "%s**Airline:** %s\n", indent, airline)
	fmt.Fprintf(b, "%s**Price:** %s\n", indent, currency.Format(float64(price), f.currency))
	fmt.Fprintf(b, "%s**Duration:** %s\n", indent, formatDuration(duration))
	fmt.Fprintf(b, "%s**Stops:** %s\n", indent, stops)
	fmt.Fprintf(b, "%s**Departure:** %s\n", indent, departure)
	fmt.Fprintf(b, "%s**Arrival:** %s\n", indent, arrival)
	fmt.Fprintf(b, "%s**Class:** %s\n", indent, class)
}

// Hotels enumerates every hotel across all locations, each carrying its own
// location and stay dates.
func (f *Formatter) Hotels(hotels []models.LocatedHotel) string {
	if len(hotels) == 0 {
		return empty(models.KindHotels)
	}

	var b strings.Builder
	b.WriteString("**Available hotel options**:\n\n")
	for i, h := range hotels {
		fmt.Fprintf(&b, "**Hotel %d:**\n", i+1)
		fmt.Fprintf(&b, "**Name:** %s\n", h.Hotel.Name)
		fmt.Fprintf(&b, "**Price:** %s per night\n", currency.Format(h.Hotel.Price, f.currency))
		fmt.Fprintf(&b, "**Rating:** %s\n", formatRating(h.Hotel.Rating))
		fmt.Fprintf(&b, "**Location:** %s\n", hotelLocation(h))
		fmt.Fprintf(&b, "**Check-in:** %s\n", orNA(h.CheckIn))
		fmt.Fprintf(&b, "**Check-out:** %s\n", orNA(h.CheckOut))
		fmt.Fprintf(&b, "**More Info:** [Link](%s)\n\n", h.Hotel.Link)
	}
	return strings.TrimSpace(b.String())
}

// SelectedFlight renders the chosen departure and return. The quoted total
// is the return price when positive, otherwise the departure price.
func (f *Formatter) SelectedFlight(sel selection.FlightSelection) string {
	if !sel.Selected() {
		return none(models.KindFlights)
	}
	dep := sel.Departure

	var b strings.Builder
	b.WriteString("**Selected Departure Flight**\n")
	writeSelectedFlight(&b, dep.Airline, dep.Duration, dep.Stops, dep.Departure, dep.Arrival, dep.TravelClass)

	total := dep.Price
	if ret := sel.Return; ret != nil {
		b.WriteString("\n**Selected Return Flight**\n")
		writeSelectedFlight(&b, ret.Airline, ret.Duration, ret.Stops, ret.Departure, ret.Arrival, ret.TravelClass)
		if ret.Price > 0 {
			total = ret.Price
		}
		fmt.Fprintf(&b, "Total round-trip Price: %s\n", currency.Format(float64(total), f.currency))
	} else {
		fmt.Fprintf(&b, "Price: %s\n", currency.Format(float64(total), f.currency))
	}
	return strings.TrimSpace(b.String())
}

func writeSelectedFlight(b *strings.Builder, airline string, duration int, stops, departure, arrival, class string) {
	fmt.Fprintf(b, "- Airline: %s\n", airline)
	fmt.Fprintf(b, "- Duration: %s\n", formatDuration(duration))
	fmt.Fprintf(b, "- Stops: %s\n", stops)
	fmt.Fprintf(b, "- Departure: %s\n", departure)
	fmt.Fprintf(b, "- Arrival: %s\n", arrival)
	fmt.Fprintf(b, "- Class: %s\n", class)
}

// SelectedHotels renders one chosen hotel per location.
func (f *Formatter) SelectedHotels(hotels []models.LocatedHotel) string {
	if len(hotels) == 0 {
		return none(models.KindHotels)
	}

	var b strings.Builder
	for i, h := range hotels {
		fmt.Fprintf(&b, "**Selected Hotel %d**\n", i+1)
		fmt.Fprintf(&b, "- Name: %s\n", h.Hotel.Name)
		fmt.Fprintf(&b, "- Price: %s per night\n", currency.Format(h.Hotel.Price, f.currency))
		fmt.Fprintf(&b, "- Rating: %s\n", formatRating(h.Hotel.Rating))
		fmt.Fprintf(&b, "- Location: %s\n", hotelLocation(h))
		fmt.Fprintf(&b, "- Check-in: %s\n", orNA(h.CheckIn))
		fmt.Fprintf(&b, "- Check-out: %s\n", orNA(h.CheckOut))
		fmt.Fprintf(&b, "- More Info: %s\n\n", h.Hotel.Link)
	}
	return strings.TrimSpace(b.String())
}

func isEmpty(data any) bool {
	if data == nil {
		return true
	}
	v := reflect.ValueOf(data)
	switch v.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return v.Len() == 0
	case reflect.Pointer:
		return v.IsNil()
	}
	return false
}

func empty(kind models.Kind) string {
	return fmt.Sprintf("No %s available.", kind)
}

func none(kind models.Kind) string {
	return fmt.Sprintf("No %s selected.", kind)
}

// formatDuration writes minutes as "2h 10m".
func formatDuration(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

func formatRating(r float64) string {
	if r == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.1f", r)
}

func hotelLocation(h models.LocatedHotel) string {
	if h.Location == "" {
		return orNA(h.Hotel.Location)
	}
	if h.Hotel.Location == "" || h.Hotel.Location == "N/A" {
		return h.Location
	}
	return fmt.Sprintf("%s (%s)", h.Location, h.Hotel.Location)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
