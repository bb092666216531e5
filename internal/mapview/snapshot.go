package mapview

// Snapshot is a copy of the map state safe to hand outside the session.
type Snapshot struct {
	Markers       []Marker      `json:"markers"`
	Selected      string        `json:"selected,omitempty"`
	FilterEarly   bool          `json:"filter_early"`
	FilterEvening bool          `json:"filter_evening"`
	SaveEnabled   bool          `json:"save_enabled"`
	SearchError   bool          `json:"search_error"`
	SearchOrigin  *SearchOrigin `json:"search_origin,omitempty"`
	Viewport      Viewport      `json:"viewport"`
	InfoWindow    string        `json:"info_window,omitempty"`
	Loading       bool          `json:"loading"`
}

// Snapshot copies the current state.
func (r *Reconciler) Snapshot() Snapshot {
	s := Snapshot{
		Markers:       make([]Marker, 0, len(r.markers)),
		FilterEarly:   r.filterEarly,
		FilterEvening: r.filterEvening,
		SaveEnabled:   r.saveEnabled,
		SearchError:   r.searchError,
		Viewport:      r.viewport,
		InfoWindow:    r.infoWindowCode,
		Loading:       r.Loading(),
	}
	for _, m := range r.markers {
		s.Markers = append(s.Markers, *m)
	}
	if r.selected != nil {
		s.Selected = r.selected.Code
	}
	if r.searchOrigin != nil {
		origin := *r.searchOrigin
		s.SearchOrigin = &origin
	}
	return s
}
