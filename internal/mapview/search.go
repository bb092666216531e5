package mapview

import "strings"

// Results the geocoder returns when it could not resolve the address.
var bogusResults = map[string]bool{
	"Nederland":      true,
	"8362 Nederland": true,
}

// SearchOptions controls what a successful search does besides panning.
type SearchOptions struct {
	// AddMarker places a search origin marker on the result.
	AddMarker bool
	// Refetch replaces the markers with the locations nearest the result.
	Refetch bool
}

// ApplySearchResults handles the results of an address search. The first
// result located in the configured country is used; with none the search
// error is set. It reports whether the map moved.
func (r *Reconciler) ApplySearchResults(results []GeocodeResult, opts SearchOptions) bool {
	r.searchError = false
	r.Unselect()

	var hit *GeocodeResult
	for i := range results {
		if bogusResults[strings.TrimSpace(results[i].FormattedAddress)] {
			continue
		}
		if r.inCountry(results[i]) {
			hit = &results[i]
			break
		}
	}
	if hit == nil {
		r.searchError = true
		return false
	}

	r.viewport.Center = hit.Location
	if r.viewport.Zoom < r.opts.MinSearchZoom {
		r.viewport.Zoom = r.opts.MinSearchZoom
	}
	// Bounds of the new view are unknown until the client reports them.
	r.viewport.Bounds = Bounds{}

	if opts.Refetch {
		r.RemoveMarkers()
		r.FetchNearest(false)
	}
	if opts.AddMarker {
		r.searchOrigin = &SearchOrigin{Title: hit.FormattedAddress, Position: hit.Location}
	}
	return true
}

func (r *Reconciler) inCountry(res GeocodeResult) bool {
	for _, c := range res.AddressComponents {
		if strings.EqualFold(c.ShortName, r.opts.Country) {
			return true
		}
	}
	return false
}

// SearchError reports whether the last search found nothing usable.
func (r *Reconciler) SearchError() bool {
	return r.searchError
}

// SearchOrigin returns the search origin marker, if any.
func (r *Reconciler) SearchOrigin() *SearchOrigin {
	return r.searchOrigin
}
