package model

import "strings"

// Label is one category of the fixed travel taxonomy.
// Labels are always stored in their canonical lowercase form.
type Label string

const (
	LabelActivity       Label = "activity"
	LabelAccommodation  Label = "accommodation"
	LabelDish           Label = "dish"
	LabelRestaurant     Label = "restaurant"
	LabelScam           Label = "scam"
	LabelSeasonal       Label = "seasonal"
	LabelTransportation Label = "transportation"
	LabelVisa           Label = "visa"
)

// taxonomy is the closed label set in prompt order.
var taxonomy = [...]Label{
	LabelActivity,
	LabelAccommodation,
	LabelVisa,
	LabelScam,
	LabelDish,
	LabelTransportation,
	LabelSeasonal,
	LabelRestaurant,
}

var plurals = map[Label]string{
	LabelActivity:       "activities",
	LabelAccommodation:  "accommodations",
	LabelDish:           "dishes",
	LabelRestaurant:     "restaurants",
	LabelScam:           "scams",
	LabelSeasonal:       "seasonals",
	LabelTransportation: "transportations",
	LabelVisa:           "visas",
}

// AllLabels returns every taxonomy label in prompt order.
// The returned slice is a fresh copy.
func AllLabels() []Label {
	out := make([]Label, len(taxonomy))
	copy(out, taxonomy[:])
	return out
}

// ParseLabel matches s against the taxonomy, ignoring case and surrounding
// whitespace. Only exact membership counts.
func ParseLabel(s string) (Label, bool) {
	l := Label(strings.ToLower(strings.TrimSpace(s)))
	if l.Valid() {
		return l, true
	}
	return "", false
}

// Valid reports whether l is a canonical taxonomy label.
func (l Label) Valid() bool {
	_, ok := plurals[l]
	return ok
}

// Plural returns the output key used for this label's task results
// (e.g. "restaurant" -> "restaurants").
func (l Label) Plural() string {
	return plurals[l]
}

func (l Label) String() string {
	return string(l)
}
