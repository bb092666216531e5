package mapview

// LatLng is a geographic point.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Bounds is a rectangular map area.
type Bounds struct {
	NorthEast LatLng `json:"north_east"`
	SouthWest LatLng `json:"south_west"`
}

// IsZero reports whether no bounds are known.
func (b Bounds) IsZero() bool {
	return b == Bounds{}
}

// Contains reports whether p lies inside b. Bounds spanning the
// antimeridian have SouthWest.Lng > NorthEast.Lng.
func (b Bounds) Contains(p LatLng) bool {
	if p.Lat < b.SouthWest.Lat || p.Lat > b.NorthEast.Lat {
		return false
	}
	if b.SouthWest.Lng <= b.NorthEast.Lng {
		return p.Lng >= b.SouthWest.Lng && p.Lng <= b.NorthEast.Lng
	}
	return p.Lng >= b.SouthWest.Lng || p.Lng <= b.NorthEast.Lng
}

// Viewport is the visible part of the map.
type Viewport struct {
	Center LatLng `json:"center"`
	Bounds Bounds `json:"bounds"`
	Zoom   int    `json:"zoom"`
}

// AddressComponent is one part of a geocoder result.
type AddressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types,omitempty"`
}

// GeocodeResult is one candidate of an address search.
type GeocodeResult struct {
	FormattedAddress  string             `json:"formatted_address"`
	Location          LatLng             `json:"location"`
	AddressComponents []AddressComponent `json:"address_components"`
}
