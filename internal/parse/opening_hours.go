package parse

import (
	"time"

	"delivery-options-backend/internal/model"
)

// OpenDaySearchLimit bounds how many days past the first the open-day
// search looks ahead.
const OpenDaySearchLimit = 7

// AvailableDate returns the first day on or after from on which the location
// is open. When none is found within the limit it returns the day after the
// last one checked.
func AvailableDate(hours model.OpeningHours, from time.Time) time.Time {
	for n := 0; n <= OpenDaySearchLimit; n++ {
		day := from.AddDate(0, 0, n)
		if hours.IsOpen(day.Weekday()) {
			return day
		}
	}
	return from.AddDate(0, 0, OpenDaySearchLimit+1)
}
