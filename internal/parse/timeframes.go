package parse

import (
	"strings"
	"time"

	"delivery-options-backend/internal/model"
	"delivery-options-backend/internal/upstream"
)

// TimeframeOptions controls which slots survive parsing.
type TimeframeOptions struct {
	// AllowMultiple keeps every slot; otherwise only the first kept one.
	AllowMultiple bool
	AllowEvening  bool
}

const (
	defaultFrom = "09:00"
	defaultTo   = "18:00"
)

// ParseTimeframes flattens the per-day response into a single ordered list.
// Slots are numbered by their position in the result.
func ParseTimeframes(days []upstream.TimeframeDay, opts TimeframeOptions) []model.Timeframe {
	var out []model.Timeframe
	for _, day := range days {
		for _, slot := range day.Timeframes.TimeframeTimeFrame {
			tf := model.Timeframe{
				Index: len(out),
				Date:  strings.TrimSpace(day.Date),
				From:  clock(slot.From),
				To:    clock(slot.To),
				Type:  model.TimeframeType(strings.TrimSpace(slot.TimeframeType)),
			}
			if tf.IsEvening() && !opts.AllowEvening {
				continue
			}
			out = append(out, tf)
			if !opts.AllowMultiple {
				return out
			}
		}
	}
	return out
}

// DefaultTimeframe is the single daytime slot offered when the upstream
// yields nothing usable.
func DefaultTimeframe(deliveryDate time.Time) model.Timeframe {
	return model.Timeframe{
		Index: 0,
		Date:  model.FormatDate(deliveryDate),
		From:  defaultFrom,
		To:    defaultTo,
		Type:  model.TimeframeDaytime,
	}
}

// TimeframesOrDefault parses days and falls back to DefaultTimeframe when
// nothing survives.
func TimeframesOrDefault(days []upstream.TimeframeDay, opts TimeframeOptions, deliveryDate time.Time) []model.Timeframe {
	out := ParseTimeframes(days, opts)
	if len(out) == 0 {
		return []model.Timeframe{DefaultTimeframe(deliveryDate)}
	}
	return out
}

// clock trims "HH:MM:SS" to "HH:MM".
func clock(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 5 && s[5] == ':' {
		return s[:5]
	}
	return s
}
