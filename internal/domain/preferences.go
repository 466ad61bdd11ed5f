package domain

// Preferences are the user's persisted display settings.
type Preferences struct {
	ViewMode   ViewMode           `json:"view_mode"`
	Animations bool               `json:"animations"`
	Physics    map[string]float64 `json:"physics,omitempty"`
	LastFilter StatusFilter       `json:"last_filter"`
	LastQuery  string             `json:"last_query"`
}

// DefaultPreferences returns the settings used before anything is persisted.
func DefaultPreferences() Preferences {
	return Preferences{
		ViewMode:   ViewList,
		Animations: true,
		LastFilter: FilterAll,
	}
}

// Point is a saved node position in the graph view.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LayoutHints maps course ids to saved graph positions.
type LayoutHints map[string]Point
