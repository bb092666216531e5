package carrier

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const (
	Code            = "postnl"
	FlatRateMethod  = "flatrate"
	TableRateMethod = "tablerate"
	// LegacyMethod is still accepted on existing orders.
	LegacyMethod = "postnl"
)

// ErrInvalidRateType is returned for a rate type other than flat or table.
var ErrInvalidRateType = errors.New("invalid rate type")

// Methods lists every shipping method identifier of the carrier.
func Methods() []string {
	return []string{
		Code + "_" + LegacyMethod,
		Code + "_" + FlatRateMethod,
		Code + "_" + TableRateMethod,
	}
}

// IsCarrierMethod reports whether method belongs to the carrier.
func IsCarrierMethod(method string) bool {
	for _, m := range Methods() {
		if m == method {
			return true
		}
	}
	return false
}

// CurrentMethod returns the shipping method for the configured rate type.
func CurrentMethod(rateType string) (string, error) {
	switch rateType {
	case "flat":
		return Code + "_" + FlatRateMethod, nil
	case "table":
		return Code + "_" + TableRateMethod, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRateType, rateType)
}

// Destination is where a shipment goes.
type Destination struct {
	CountryCode string `form:"country" json:"country"`
	Postcode    string `form:"postcode" json:"postcode"`
}

// TrackAndTraceURL builds the tracking link of a barcode. Dutch shipments
// carry the postcode, international ones the international flag.
func TrackAndTraceURL(baseURL, barcode string, dest Destination) string {
	var b strings.Builder
	b.WriteString(baseURL)
	b.WriteString("&B=")
	b.WriteString(url.QueryEscape(barcode))

	switch {
	case dest.CountryCode == "NL" && dest.Postcode != "":
		b.WriteString("&P=")
		b.WriteString(url.QueryEscape(dest.Postcode))
	case dest.CountryCode != "" && dest.CountryCode != "NL":
		b.WriteString("&I=True")
	}
	return b.String()
}
