package recommend

import (
	"fmt"
	"strings"

	"github.com/dharmasatrya/tripplanner/internal/models"
)

type persona struct {
	role      string
	goal      string
	backstory string
}

func (p persona) system() string {
	return fmt.Sprintf("You are %s.\nGoal: %s\nBackground: %s", p.role, p.goal, p.backstory)
}

var personas = map[models.Kind]persona{
	models.KindFlights: {
		role:      "an AI Flight Analyst",
		goal:      "Analyze round-trip flight options and recommend the best combination considering price, duration, stops, and overall convenience for both departure and return flights.",
		backstory: "An expert that provides in-depth analysis comparing round-trip flight options based on multiple factors.",
	},
	models.KindHotels: {
		role:      "an AI Hotel Analyst",
		goal:      "Analyze hotel options and recommend the best one considering price, rating, location, and amenities.",
		backstory: "An expert that provides in-depth analysis comparing hotel options based on multiple factors.",
	},
}

const flightTask = `Recommend the best round-trip flight combination from the available options, based on the details provided below.

**At the start of your response, clearly state the recommended departure flight in the format:**
Recommended Departure Flight: <number>
**For the selected departure flight, clearly state the recommended return flight in the next line in the format:**
Recommended Return Flight: <number>

**Reasoning for Recommendation:**
- **Price:** Explain why this round-trip offers the best value.
- **Duration:** Explain why the total travel time is optimal.
- **Stops:** Discuss the convenience of stops for both legs.
- **Travel Class:** Describe comfort and amenities for both flights.

Use markdown formatting. Justify your choice for both departure and return flights. Do not repeat the flight details in your response.`

const hotelTask = `Generate a detailed recommendation for the best hotel from the options below.

**At the start of your response, clearly state the recommended hotel in the format:**
Recommended Hotel: <number>

**Reasoning for Recommendation:**
- **Price:** Why it offers the best value for the amenities and services provided.
- **Rating:** How its rating compares to the alternatives.
- **Location:** How convenient it is for the important attractions.
- **Amenities:** Which amenities make it suitable for different types of travelers.

Compare it against the other options and explain why it stands out. Keep the reasoning concise and use markdown formatting.`

var tasks = map[models.Kind]string{
	models.KindFlights: flightTask,
	models.KindHotels:  hotelTask,
}

func recommendationPrompt(kind models.Kind, corpus string) (Prompt, error) {
	p, ok := personas[kind]
	if !ok {
		return Prompt{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return Prompt{
		System: p.system(),
		User:   fmt.Sprintf("%s\n\nData to analyze:\n%s", tasks[kind], corpus),
	}, nil
}

var plannerPersona = persona{
	role:      "an AI Travel Planner",
	goal:      "Create a detailed itinerary for the user based on flight and hotel information.",
	backstory: "A travel expert generating day-by-day itineraries including flight details, hotel stays, and must-visit locations in the destination.",
}

func itineraryPrompt(in ItineraryInput, days int) Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "Based on the following details, create a %d-day itinerary for the user:\n\n", days)
	fmt.Fprintf(&b, "**Flight Details**:\n%s\n\n", in.Flights)
	fmt.Fprintf(&b, "**Hotel Details**:\n%s\n\n", in.Hotels)
	fmt.Fprintf(&b, "**Destination**: %s\n\n", in.Destination)
	fmt.Fprintf(&b, "**Travel Dates**: %s to %s (%d days)\n\n", in.CheckIn, in.CheckOut, days)
	if s := strings.TrimSpace(in.Instructions); s != "" {
		fmt.Fprintf(&b, "**Special Instructions**: %s\n\n", s)
	}
	b.WriteString(`The itinerary should include:
- Flight arrival and departure information
- Hotel check-in and check-out details
- Day-by-day breakdown of activities
- Must-visit attractions and estimated visit times
- Restaurant recommendations for meals
- Tips for local transportation

Format requirements:
- Use markdown with clear headings (# for main headings, ## for days, ### for sections)
- Use bullet points for listing activities
- Include estimated timings for each activity`)

	return Prompt{System: plannerPersona.system(), User: b.String()}
}
