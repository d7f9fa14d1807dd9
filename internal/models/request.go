package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

type FlightRequest struct {
	Origin       string `json:"origin"`
	Destination  string `json:"destination"`
	OutboundDate string `json:"outbound_date"`
	ReturnDate   string `json:"return_date,omitempty"`
}

// Validate normalizes airport codes and checks the request is searchable.
// An empty ReturnDate means a one-way search.
func (r *FlightRequest) Validate() error {
	r.Origin = strings.ToUpper(strings.TrimSpace(r.Origin))
	r.Destination = strings.ToUpper(strings.TrimSpace(r.Destination))

	if r.Origin == "" {
		return ErrMissingOrigin
	}
	if r.Destination == "" {
		return ErrMissingDestination
	}
	if r.OutboundDate == "" {
		return ErrMissingOutboundDate
	}
	outbound, err := ParseDate(r.OutboundDate)
	if err != nil {
		return ErrInvalidDate
	}
	if r.ReturnDate == "" {
		return nil
	}
	ret, err := ParseDate(r.ReturnDate)
	if err != nil {
		return ErrInvalidDate
	}
	if ret.Before(outbound) {
		return ErrReturnBeforeOutbound
	}
	return nil
}

func (r FlightRequest) RoundTrip() bool {
	return r.ReturnDate != ""
}

type HotelRequest struct {
	Location     string `json:"location"`
	CheckInDate  string `json:"check_in_date"`
	CheckOutDate string `json:"check_out_date"`
}

// Validate checks the request is well formed. Stay length is checked
// separately by Nights so that a bad stay can degrade a single location.
func (r *HotelRequest) Validate() error {
	r.Location = strings.TrimSpace(r.Location)
	if r.Location == "" {
		return ErrMissingLocation
	}
	if r.CheckInDate == "" || r.CheckOutDate == "" {
		return ErrMissingStayDates
	}
	if _, err := ParseDate(r.CheckInDate); err != nil {
		return ErrInvalidDate
	}
	if _, err := ParseDate(r.CheckOutDate); err != nil {
		return ErrInvalidDate
	}
	return nil
}

// Nights returns the stay length, failing with ErrNonPositiveStay when
// checkout is not strictly after checkin.
func (r HotelRequest) Nights() (int, error) {
	return NightsBetween(r.CheckInDate, r.CheckOutDate)
}

type ItineraryRequest struct {
	Destination         string `json:"destination"`
	CheckInDate         string `json:"check_in_date"`
	CheckOutDate        string `json:"check_out_date"`
	Flights             string `json:"flights"`
	Hotels              string `json:"hotels"`
	SpecialInstructions string `json:"special_instructions,omitempty"`
}

func (r *ItineraryRequest) Validate() error {
	r.Destination = strings.TrimSpace(r.Destination)
	if r.Destination == "" {
		return ErrMissingDestination
	}
	if r.CheckInDate == "" || r.CheckOutDate == "" {
		return ErrMissingStayDates
	}
	_, err := NightsBetween(r.CheckInDate, r.CheckOutDate)
	return err
}

// HotelRequestList decodes from either a single request object or an array.
type HotelRequestList []HotelRequest

func (l *HotelRequestList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if len(data) > 0 && data[0] == '{' {
		var one HotelRequest
		if err := json.Unmarshal(data, &one); err != nil {
			return err
		}
		*l = HotelRequestList{one}
		return nil
	}
	var many []HotelRequest
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*l = many
	return nil
}

// TravelPlanRequest drives the combined search-to-itinerary flow.
type TravelPlanRequest struct {
	FlightRequest       FlightRequest    `json:"flight_request"`
	HotelRequests       HotelRequestList `json:"hotel_request,omitempty"`
	SpecialInstructions string           `json:"special_instructions,omitempty"`
}

// Validate rejects malformed flight or hotel requests. When no hotel request
// is given, a single one is derived from the flight destination and dates.
func (r *TravelPlanRequest) Validate() error {
	if err := r.FlightRequest.Validate(); err != nil {
		return err
	}
	if len(r.HotelRequests) == 0 {
		if !r.FlightRequest.RoundTrip() {
			return ErrMissingHotelRequest
		}
		r.HotelRequests = []HotelRequest{{
			Location:     r.FlightRequest.Destination,
			CheckInDate:  r.FlightRequest.OutboundDate,
			CheckOutDate: r.FlightRequest.ReturnDate,
		}}
	}
	for i := range r.HotelRequests {
		if err := r.HotelRequests[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// PlanFormRequest is the simplified form submitted by the planner UI.
type PlanFormRequest struct {
	SourceCity      string `json:"source_city" form:"source_city"`
	DestinationCity string `json:"destination_city" form:"destination_city"`
	FromDate        string `json:"from_date" form:"from_date"`
	ReturnDate      string `json:"return_date" form:"return_date"`
	Instructions    string `json:"instructions,omitempty" form:"instructions"`
}

func (f PlanFormRequest) ToTravelPlan() TravelPlanRequest {
	return TravelPlanRequest{
		FlightRequest: FlightRequest{
			Origin:       f.SourceCity,
			Destination:  f.DestinationCity,
			OutboundDate: f.FromDate,
			ReturnDate:   f.ReturnDate,
		},
		HotelRequests: HotelRequestList{{
			Location:     strings.TrimSpace(f.DestinationCity),
			CheckInDate:  f.FromDate,
			CheckOutDate: f.ReturnDate,
		}},
		SpecialInstructions: f.Instructions,
	}
}

func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

// NightsBetween counts whole days from checkin to checkout.
func NightsBetween(checkIn, checkOut string) (int, error) {
	in, err := ParseDate(checkIn)
	if err != nil {
		return 0, ErrInvalidDate
	}
	out, err := ParseDate(checkOut)
	if err != nil {
		return 0, ErrInvalidDate
	}
	nights := int(out.Sub(in).Hours() / 24)
	if nights <= 0 {
		return 0, ErrNonPositiveStay
	}
	return nights, nil
}

type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}

const (
	ErrMissingOrigin        ValidationError = "origin is required"
	ErrMissingDestination   ValidationError = "destination is required"
	ErrMissingOutboundDate  ValidationError = "outbound_date is required"
	ErrMissingLocation      ValidationError = "location is required"
	ErrMissingStayDates     ValidationError = "check_in_date and check_out_date are required"
	ErrMissingHotelRequest  ValidationError = "at least one hotel request is required"
	ErrInvalidDate          ValidationError = "dates must use the YYYY-MM-DD format"
	ErrReturnBeforeOutbound ValidationError = "return_date must not be before outbound_date"
	ErrNonPositiveStay      ValidationError = "check_out_date must be after check_in_date"
)
