package mapview

import (
	"strings"

	"delivery-options-backend/internal/model"
)

// Shape is the clickable outline of a marker.
type Shape string

const (
	ShapeDefault           Shape = "default"
	ShapeSelected          Shape = "selected"
	ShapeDispenser         Shape = "dispenser"
	ShapeDispenserSelected Shape = "dispenser_selected"
)

const (
	iconPrefix         = "crc_"
	selectedIconPrefix = "drp_"
	dispenserImage     = "automaat"
	defaultImage       = "default"
)

var brandImages = map[string]string{
	"albert heijn":          "albertheijn",
	"bruna":                 "bruna",
	"c1000":                 "c1000",
	"coop":                  "coop",
	"coopcompact":           "coop",
	"postnl":                "default",
	"emté supermarkt":       "emte",
	"jumbo":                 "jumbo",
	"plus":                  "plus",
	"primera":               "primera",
	"the read shop":         "readshop",
	"spar":                  "spar",
	"staples office centre": "staples",
	"gamma":                 "gamma",
	"karwei":                "karwei",
	"automaat":              "automaat",
}

// ImageName maps a location to the brand image of its marker. Dispensers
// always use the dispenser image.
func ImageName(loc *model.Location) string {
	if isDispenser(loc) {
		return dispenserImage
	}
	if img, ok := brandImages[strings.ToLower(strings.TrimSpace(loc.Name))]; ok {
		return img
	}
	return defaultImage
}

func isDispenser(loc *model.Location) bool {
	return loc.Offers(model.LocationDispenser)
}

func (r *Reconciler) iconFor(loc *model.Location, selected bool) string {
	prefix := iconPrefix
	if selected {
		prefix = selectedIconPrefix
	}
	return strings.TrimRight(r.opts.ImageBaseURL, "/") + "/" + prefix + ImageName(loc) + ".png"
}

func shapeFor(loc *model.Location, selected bool) Shape {
	switch {
	case isDispenser(loc) && selected:
		return ShapeDispenserSelected
	case isDispenser(loc):
		return ShapeDispenser
	case selected:
		return ShapeSelected
	}
	return ShapeDefault
}
