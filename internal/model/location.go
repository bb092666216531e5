package model

import "time"

// LocationType is a pickup capability offered by a location.
type LocationType string

const (
	LocationPickup        LocationType = "PG"  // regular point, opens in the afternoon
	LocationExpressPickup LocationType = "PGE" // express point, available early in the morning
	LocationDispenser     LocationType = "PA"  // unattended parcel locker
)

// AllowedTypes holds which location capabilities may be offered.
type AllowedTypes struct {
	PG  bool
	PGE bool
	PA  bool
}

// Allows reports whether t may be offered.
func (a AllowedTypes) Allows(t LocationType) bool {
	switch t {
	case LocationPickup:
		return a.PG
	case LocationExpressPickup:
		return a.PGE
	case LocationDispenser:
		return a.PA
	}
	return false
}

// LocationAddress is the address block of a pickup location. Field names
// follow the upstream so the block can be echoed back on save.
type LocationAddress struct {
	Street      string `json:"Street"`
	HouseNr     string `json:"HouseNr"`
	HouseNrExt  string `json:"HouseNrExt,omitempty"`
	Zipcode     string `json:"Zipcode"`
	City        string `json:"City"`
	Countrycode string `json:"Countrycode,omitempty"`
}

// OpeningHours maps a weekday name ("Monday") to its "HH:MM-HH:MM" ranges.
// A missing or empty entry means closed.
type OpeningHours map[string][]string

// On returns the ranges for the given weekday.
func (h OpeningHours) On(day time.Weekday) []string {
	return h[day.String()]
}

// IsOpen reports whether the location has any opening range on day.
func (h OpeningHours) IsOpen(day time.Weekday) bool {
	ranges := h.On(day)
	return len(ranges) > 0 && ranges[0] != ""
}

// Location is a pickup point. Code is the canonical, whitespace-free identity.
type Location struct {
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	Address      LocationAddress `json:"address"`
	Latitude     float64         `json:"latitude"`
	Longitude    float64         `json:"longitude"`
	Distance     float64         `json:"distance"`
	OpeningHours OpeningHours    `json:"opening_hours"`
	Types        []LocationType  `json:"types"`
	Evening      bool            `json:"evening"`
	// Date is the first day on or after the requested delivery date on which
	// the location is open.
	Date         string `json:"date"`
	TooltipClass string `json:"tooltip_class,omitempty"`
}

// Offers reports whether the location has capability t.
func (l *Location) Offers(t LocationType) bool {
	for _, lt := range l.Types {
		if lt == t {
			return true
		}
	}
	return false
}

// OffersAny reports whether at least one of the location's capabilities is allowed.
func (l *Location) OffersAny(allowed AllowedTypes) bool {
	for _, lt := range l.Types {
		if allowed.Allows(lt) {
			return true
		}
	}
	return false
}
