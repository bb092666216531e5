package parse

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	phoneSeparatorRe = regexp.MustCompile(`[\s\-.()/]+`)
	phoneRe          = regexp.MustCompile(`^\+?\d{8,15}$`)
)

// ErrInvalidPhone is returned when a number cannot be normalized.
var ErrInvalidPhone = errors.New("invalid phone number")

// NormalizePhone strips separators and checks the remaining digits.
func NormalizePhone(raw string) (string, error) {
	s := phoneSeparatorRe.ReplaceAllString(strings.TrimSpace(raw), "")
	if strings.HasPrefix(s, "00") {
		s = "+" + s[2:]
	}
	if !phoneRe.MatchString(s) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPhone, raw)
	}
	return s, nil
}
