package selection

import "github.com/dharmasatrya/tripplanner/internal/models"

// FlightSelection is the departure chosen from a result set and, when that
// departure has return candidates, one of its returns.
type FlightSelection struct {
	Departure *models.FlightOption
	Return    *models.ReturnFlight
}

// Selected reports whether a departure was chosen.
func (s FlightSelection) Selected() bool {
	return s.Departure != nil
}

// ResolveFlight picks options[depIndex]. An out of range depIndex yields no
// selection. retIndex is checked against the chosen departure's own return
// list; an out of range retIndex leaves Return nil.
func ResolveFlight(options []models.FlightOption, depIndex, retIndex int) FlightSelection {
	if depIndex < 0 || depIndex >= len(options) {
		return FlightSelection{}
	}
	dep := &options[depIndex]
	sel := FlightSelection{Departure: dep}
	if retIndex >= 0 && retIndex < len(dep.ReturnFlights) {
		sel.Return = &dep.ReturnFlights[retIndex]
	}
	return sel
}

// FallbackFlight completes a selection with first-available choices: the
// first departure when none was chosen, and that departure's first return
// when it has one and none was chosen.
func FallbackFlight(options []models.FlightOption, sel FlightSelection) FlightSelection {
	if sel.Departure == nil {
		if len(options) == 0 {
			return FlightSelection{}
		}
		sel = FlightSelection{Departure: &options[0]}
	}
	if sel.Return == nil && len(sel.Departure.ReturnFlights) > 0 {
		sel.Return = &sel.Departure.ReturnFlights[0]
	}
	return sel
}

// ResolveHotel picks group.Hotels[index], falling back to the first hotel
// when index is out of range. An empty group yields nil.
func ResolveHotel(group models.HotelGroup, index int) *models.LocatedHotel {
	if len(group.Hotels) == 0 {
		return nil
	}
	if index < 0 || index >= len(group.Hotels) {
		index = 0
	}
	return &models.LocatedHotel{
		Hotel:    group.Hotels[index],
		Location: group.Location,
		CheckIn:  group.CheckIn,
		CheckOut: group.CheckOut,
	}
}
