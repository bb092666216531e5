package model

// TimeframeType is the upstream tag of a delivery timeframe.
type TimeframeType string

const (
	TimeframeDaytime TimeframeType = "Overdag"
	TimeframeEvening TimeframeType = "Avond"
)

// Timeframe is a single selectable delivery slot. Index is its identity
// within the current result set.
type Timeframe struct {
	Index int           `json:"index"`
	Date  string        `json:"date"`
	From  string        `json:"from"`
	To    string        `json:"to"`
	Type  TimeframeType `json:"type"`
}

// IsEvening reports whether the slot is an evening delivery.
func (t Timeframe) IsEvening() bool {
	return t.Type == TimeframeEvening
}

// OptionType returns the option type a selection of this slot persists as.
func (t Timeframe) OptionType() OptionType {
	return OptionType(t.Type)
}
