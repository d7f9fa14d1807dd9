package models

// Kind names a result category in recommendation and formatting calls.
type Kind string

const (
	KindFlights Kind = "flights"
	KindHotels  Kind = "hotels"
)
