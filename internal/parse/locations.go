package parse

import (
	"strings"
	"time"
	"unicode"

	"delivery-options-backend/internal/model"
	"delivery-options-backend/internal/upstream"
)

// Tooltip classes of the distinguished slots.
const (
	TooltipFirst  = "first"
	TooltipSecond = "second"
	TooltipThird  = "third"
)

// LocationOptions controls which capabilities the parser may fill.
type LocationOptions struct {
	Allowed      model.AllowedTypes
	DeliveryDate time.Time
}

// LocationResult is the outcome of a location walk. Regular, Express and
// Dispenser point into Locations and may be nil. Regular and Express point
// at the same entry when a single location filled both.
type LocationResult struct {
	Locations []*model.Location
	Regular   *model.Location
	Express   *model.Location
	Dispenser *model.Location
}

// Find returns the retained entry with the given canonical code.
func (r *LocationResult) Find(code string) *model.Location {
	for _, l := range r.Locations {
		if l.Code == code {
			return l
		}
	}
	return nil
}

// Complete reports whether every slot is filled.
func (r *LocationResult) Complete() bool {
	return r.Regular != nil && r.Express != nil && r.Dispenser != nil
}

// CanonicalCode strips all whitespace from an upstream location code.
func CanonicalCode(code string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, code)
}

// ParseLocation converts a raw record. Unknown capability tokens are dropped.
func ParseLocation(raw upstream.Location, deliveryDate time.Time) model.Location {
	hours := raw.OpeningHours.Model()
	loc := model.Location{
		Code:         CanonicalCode(raw.LocationCode),
		Name:         strings.TrimSpace(raw.Name),
		Address:      raw.Address,
		Latitude:     float64(raw.Latitude),
		Longitude:    float64(raw.Longitude),
		Distance:     float64(raw.Distance),
		OpeningHours: hours,
		Evening:      raw.IsEvening,
		Date:         model.FormatDate(AvailableDate(hours, deliveryDate)),
	}
	for _, tok := range raw.DeliveryOptions.String {
		switch t := model.LocationType(strings.ToUpper(strings.TrimSpace(tok))); t {
		case model.LocationPickup, model.LocationExpressPickup, model.LocationDispenser:
			if !loc.Offers(t) {
				loc.Types = append(loc.Types, t)
			}
		}
	}
	return loc
}

// ParseLocations walks records in order, filling the regular, express and
// dispenser slots first-come. The walk stops once all three are filled;
// every record visited before that is retained.
func ParseLocations(records []upstream.Location, opts LocationOptions) LocationResult {
	var res LocationResult
	allowed := opts.Allowed

	for _, raw := range records {
		if res.Complete() {
			break
		}

		loc := ParseLocation(raw, opts.DeliveryDate)
		if res.Find(loc.Code) != nil {
			continue
		}

		switch {
		case allowed.PG && res.Regular == nil && loc.Offers(model.LocationPickup) &&
			allowed.PGE && res.Express == nil && loc.Offers(model.LocationExpressPickup):
			loc.TooltipClass = TooltipFirst
			res.Regular = &loc
			res.Express = &loc
		case allowed.PGE && res.Express == nil && loc.Offers(model.LocationExpressPickup):
			loc.TooltipClass = TooltipFirst
			res.Express = &loc
		case allowed.PG && res.Regular == nil && loc.Offers(model.LocationPickup):
			loc.TooltipClass = TooltipSecond
			res.Regular = &loc
		case allowed.PA && res.Dispenser == nil && loc.Offers(model.LocationDispenser):
			loc.TooltipClass = TooltipThird
			res.Dispenser = &loc
		}

		res.Locations = append(res.Locations, &loc)
	}
	return res
}
