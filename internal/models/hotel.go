package models

type HotelOption struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Rating   float64 `json:"rating"`
	Location string  `json:"location"`
	Link     string  `json:"link"`
}

// HotelGroup keeps one location's search context together with its results.
type HotelGroup struct {
	Location string        `json:"location"`
	CheckIn  string        `json:"check_in_date"`
	CheckOut string        `json:"check_out_date"`
	Hotels   []HotelOption `json:"hotels"`
}

// LocatedHotel is a hotel carried together with its group's location and stay dates.
type LocatedHotel struct {
	Hotel    HotelOption
	Location string
	CheckIn  string
	CheckOut string
}

// Flatten lists every hotel of every group, each with its group context.
func Flatten(groups []HotelGroup) []LocatedHotel {
	var out []LocatedHotel
	for _, g := range groups {
		for _, h := range g.Hotels {
			out = append(out, LocatedHotel{
				Hotel:    h,
				Location: g.Location,
				CheckIn:  g.CheckIn,
				CheckOut: g.CheckOut,
			})
		}
	}
	return out
}
