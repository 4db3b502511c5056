package schema

import "github.com/ppiankov/basir/internal/model"

var catalog = map[model.Label]*Schema{
	model.LabelActivity: New("ActivityOutputSchema", model.LabelActivity.Plural(),
		Field{"Country", String, "Country where the activity is available"},
		Field{"City", String, "City where the activity is located"},
		Field{"ActivityName", String, "Name of the activity"},
		Field{"Description", String, "Detailed description of the activity"},
		Field{"Category", String, "Type/category of activity"},
		Field{"PriceRange", OptionalString, "Approximate cost range"},
		Field{"BestTimeToVisit", OptionalString, "Recommended time for this activity"},
		Field{"Duration", OptionalString, "How long the activity typically takes"},
		Field{"Location", OptionalString, "Specific location or address"},
	),
	model.LabelAccommodation: New("AccommodationOutputSchema", model.LabelAccommodation.Plural(),
		Field{"Country", String, "Country where accommodation is located"},
		Field{"City", String, "City where accommodation is located"},
		Field{"Name", String, "Name of the accommodation"},
		Field{"Type", String, "Type of accommodation (hotel, hostel, etc.)"},
		Field{"PriceRange", String, "Price range in USD"},
		Field{"Location", String, "Location details"},
		Field{"Rating", OptionalString, "Rating if available"},
		Field{"Amenities", OptionalStringList, "List of amenities"},
	),
	model.LabelDish: New("DishOutputSchema", model.LabelDish.Plural(),
		Field{"Country", String, "Country where dish originates"},
		Field{"Region", OptionalString, "Specific region if applicable"},
		Field{"DishName", String, "Name of the dish"},
		Field{"Description", String, "Description of the dish"},
		Field{"Ingredients", StringList, "Main ingredients"},
		Field{"TypicalMealTime", OptionalString, "When it's typically eaten"},
		Field{"Vegetarian", OptionalBool, "Whether it's vegetarian"},
	),
	model.LabelRestaurant: New("RestaurantOutputSchema", model.LabelRestaurant.Plural(),
		Field{"Country", String, "Country where restaurant is located"},
		Field{"City", String, "City where restaurant is located"},
		Field{"Name", String, "Name of the restaurant"},
		Field{"CuisineType", String, "Type of cuisine served"},
		Field{"PriceRange", String, "Price range indicator"},
		Field{"Address", String, "Physical address"},
		Field{"Rating", OptionalString, "Rating if available"},
		Field{"SpecialDiets", OptionalStringList, "Dietary options available"},
	),
	model.LabelScam: New("ScamOutputSchema", model.LabelScam.Plural(),
		Field{"Country", String, "Country where the scam is common."},
		Field{"City", OptionalString, "City where the scam is common."},
		Field{"ScamType", String, "The type or name of the scam."},
		Field{"Description", String, "A detailed description of how the scam works."},
		Field{"Location", String, "Specific locations where the scam often occurs (e.g., tourist areas, train stations)."},
		Field{"PreventionTips", String, "Actionable tips on how to avoid this scam."},
	),
	model.LabelSeasonal: New("SeasonalOutputSchema", model.LabelSeasonal.Plural(),
		Field{"Country", String, "The country the seasonal information pertains to."},
		Field{"Question", String, "The user's question about seasonal travel (e.g., 'best time to visit')."},
		Field{"Answer", String, "A detailed answer regarding seasons, weather, and best travel times."},
	),
	model.LabelTransportation: New("TransportationOutputSchema", model.LabelTransportation.Plural(),
		Field{"Country", String, "Country of the transport option."},
		Field{"From", String, "Starting point of the journey."},
		Field{"To", String, "Destination of the journey."},
		Field{"TransportMode", String, "Mode of transport (e.g., Train, Bus, Ferry)."},
		Field{"Provider", OptionalString, "The company providing the service."},
		Field{"Schedule", OptionalString, "Information on schedules or frequency."},
		Field{"DurationInHours", OptionalString, "Estimated duration of the trip in hours."},
		Field{"PriceRangeInUSD", OptionalString, "Typical price range in USD."},
		Field{"CostDetailsAndOptions", OptionalString, "More details on costs and options."},
		Field{"AdditionalInfo", OptionalString, "Any other relevant information."},
	),
	model.LabelVisa: New("VisaOutputSchema", model.LabelVisa.Plural(),
		Field{"Country", String, "The country the visa information pertains to."},
		Field{"Question", String, "The user's question about visa requirements."},
		Field{"Answer", String, "A clear and concise answer to the visa question."},
	),
}

// For returns the output schema bound to a label.
func For(label model.Label) (*Schema, bool) {
	s, ok := catalog[label]
	return s, ok
}
