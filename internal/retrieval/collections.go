package retrieval

import (
	"github.com/ppiankov/basir/internal/model"
)

// Collection names a Milvus collection and the scalar fields returned from it
type Collection struct {
	Name   string
	Fields []string
}

// DefaultCollections maps every taxonomy label to its collection.
func DefaultCollections() map[model.Label]Collection {
	return map[model.Label]Collection{
		model.LabelActivity: {
			Name: "Activity",
			Fields: []string{"Country", "City", "Activity", "Description", "TypeOfTraveler", "Duration",
				"BudgetInUSD", "BudgetDetails", "TipsAndRecommendations", "For", "FamilyFriendly", "Category"},
		},
		model.LabelDish: {
			Name:   "Dishes",
			Fields: []string{"Country", "City", "DishName", "DishDetails", "Type", "AvgPriceInUSD", "BestFor"},
		},
		model.LabelRestaurant: {
			Name: "Restaurants",
			Fields: []string{"Country", "City", "RestaurantName", "TypeOfCuisine", "MealsServed", "RecommendedDish",
				"MealDescription", "AvgPricePerPersonInUSD", "BudgetRange", "Suitability"},
		},
		model.LabelScam: {
			Name:   "Scams",
			Fields: []string{"Country", "City", "ScamType", "Description", "Location", "PreventionTips"},
		},
		model.LabelAccommodation: {
			Name:   "Accommodations",
			Fields: []string{"Country", "City", "AccommodationName", "AccommodationDetails", "Type", "AvgNightPriceInUSD"},
		},
		model.LabelTransportation: {
			Name: "Transportation",
			Fields: []string{"Country", "From", "To", "TransportMode", "Provider", "Schedule", "RouteInfo",
				"DurationInHours", "PriceRangeInUSD", "CostDetailsAndOptions", "AdditionalInfo"},
		},
		model.LabelVisa: {
			Name:   "Visa",
			Fields: []string{"Country", "Question", "Answer"},
		},
		model.LabelSeasonal: {
			Name:   "Seasonal",
			Fields: []string{"Country", "Question", "Answer"},
		},
	}
}
