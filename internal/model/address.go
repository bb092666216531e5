package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the day-month-year layout the upstream uses for every date.
const DateLayout = "02-01-2006"

// Address is the shipping address a checkout session was opened for.
// It is read-only once the session starts.
type Address struct {
	Postcode     string    `json:"postcode"`
	HouseNumber  string    `json:"house_number"`
	FullAddress  string    `json:"full_address"`
	DeliveryDate time.Time `json:"delivery_date"`
}

// Validate reports the first missing field, if any.
func (a Address) Validate() error {
	var missing []string
	if strings.TrimSpace(a.Postcode) == "" {
		missing = append(missing, "postcode")
	}
	if strings.TrimSpace(a.HouseNumber) == "" {
		missing = append(missing, "house_number")
	}
	if strings.TrimSpace(a.FullAddress) == "" {
		missing = append(missing, "full_address")
	}
	if a.DeliveryDate.IsZero() {
		missing = append(missing, "delivery_date")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidAddress, strings.Join(missing, ", "))
	}
	return nil
}

// ErrInvalidAddress is returned when an address lacks a required field.
var ErrInvalidAddress = errors.New("invalid address")

// FormatDate renders t in the upstream date layout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a date in the upstream layout.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse date %q: %w", s, err)
	}
	return t, nil
}
