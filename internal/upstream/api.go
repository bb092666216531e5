package upstream

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"delivery-options-backend/internal/model"
)

// TimeframeDay is one day of the timeframes response.
type TimeframeDay struct {
	Date       string `json:"Date"`
	Timeframes struct {
		TimeframeTimeFrame []TimeframeSlot `json:"TimeframeTimeFrame"`
	} `json:"Timeframes"`
}

// TimeframeSlot is a single sub-timeframe of a day.
type TimeframeSlot struct {
	From          string `json:"From"`
	To            string `json:"To"`
	TimeframeType string `json:"TimeframeType"`
}

// Location is a raw location record as returned by every location endpoint.
type Location struct {
	LocationCode    string                `json:"LocationCode"`
	Name            string                `json:"Name"`
	Address         model.LocationAddress `json:"Address"`
	Distance        Number                `json:"Distance"`
	Latitude        Number                `json:"Latitude"`
	Longitude       Number                `json:"Longitude"`
	OpeningHours    OpeningHours          `json:"OpeningHours"`
	DeliveryOptions StringWrapper         `json:"DeliveryOptions"`
	IsEvening       bool                  `json:"isEvening"`
}

// OpeningHours is the per-weekday opening hours block.
type OpeningHours struct {
	Monday    StringWrapper `json:"Monday"`
	Tuesday   StringWrapper `json:"Tuesday"`
	Wednesday StringWrapper `json:"Wednesday"`
	Thursday  StringWrapper `json:"Thursday"`
	Friday    StringWrapper `json:"Friday"`
	Saturday  StringWrapper `json:"Saturday"`
	Sunday    StringWrapper `json:"Sunday"`
}

// Model converts the block to the domain representation.
func (h OpeningHours) Model() model.OpeningHours {
	out := model.OpeningHours{}
	days := map[string]StringList{
		"Monday":    h.Monday.String,
		"Tuesday":   h.Tuesday.String,
		"Wednesday": h.Wednesday.String,
		"Thursday":  h.Thursday.String,
		"Friday":    h.Friday.String,
		"Saturday":  h.Saturday.String,
		"Sunday":    h.Sunday.String,
	}
	for day, ranges := range days {
		if len(ranges) > 0 {
			out[day] = []string(ranges)
		}
	}
	return out
}

// StringWrapper is the {"string": [...]} envelope the upstream puts around lists.
type StringWrapper struct {
	String StringList `json:"string"`
}

// StringList decodes either a JSON array of strings or a single string.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = StringList{s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("failed to decode string list: %w", err)
	}
	*l = list
	return nil
}

// Number decodes a JSON number that may arrive quoted.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("failed to decode number %q: %w", s, err)
	}
	*n = Number(f)
	return nil
}

// DecodeTimeframes unmarshals a timeframes response body.
func DecodeTimeframes(body []byte) ([]TimeframeDay, error) {
	var days []TimeframeDay
	if err := json.Unmarshal(body, &days); err != nil {
		return nil, fmt.Errorf("failed to unmarshal timeframes: %w", err)
	}
	return days, nil
}

// DecodeLocations unmarshals a locations response body.
func DecodeLocations(body []byte) ([]Location, error) {
	var locs []Location
	if err := json.Unmarshal(body, &locs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal locations: %w", err)
	}
	return locs, nil
}
