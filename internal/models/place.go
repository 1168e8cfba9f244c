package models

// PlaceSuggestion is one autocomplete result. Coordinates is nil when the
// upstream feature carried no usable geometry.
type PlaceSuggestion struct {
	ID            string       `json:"id"`
	FormattedName string       `json:"formattedName"`
	Coordinates   *Coordinates `json:"coordinates,omitempty"`
}

// SearchQueryState is a point-in-time copy of the search controller state.
// Suggestions keep the upstream relevance order.
type SearchQueryState struct {
	RawText     string            `json:"rawText"`
	State       string            `json:"state"`
	Suggestions []PlaceSuggestion `json:"suggestions"`
}
