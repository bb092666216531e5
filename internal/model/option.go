package model

// OptionType tags the kind of the active selection. Location selections use
// the location capability codes, timeframe selections the timeframe tag.
type OptionType string

const (
	OptionPickup          = OptionType(LocationPickup)
	OptionExpressPickup   = OptionType(LocationExpressPickup)
	OptionDispenser       = OptionType(LocationDispenser)
	OptionDaytimeDelivery = OptionType(TimeframeDaytime)
	OptionEveningDelivery = OptionType(TimeframeEvening)
)

// IsLocation reports whether the option refers to a pickup location.
func (t OptionType) IsLocation() bool {
	switch t {
	case OptionPickup, OptionExpressPickup, OptionDispenser:
		return true
	}
	return false
}

// LocationType converts a location option back to its capability.
func (t OptionType) LocationType() LocationType {
	return LocationType(t)
}

// OptionPayload is what gets persisted for a selection. Address is only set
// for location selections.
type OptionPayload struct {
	Type    OptionType       `json:"type"`
	Date    string           `json:"date"`
	Cost    float64          `json:"cost"`
	Address *LocationAddress `json:"address,omitempty"`
}
