package domain

import (
	"fmt"
	"time"
)

// WeekKey derives the ISO-8601 calendar week identifier for t, formatted
// "2026-W07". The computation always happens in UTC so that two calls for
// the same UTC calendar day agree regardless of the host timezone; keys
// change exactly at Monday 00:00 UTC.
func WeekKey(t time.Time) string {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)

	// Shift to the Thursday of the same ISO week (Monday=1..Sunday=7).
	weekday := int(day.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	thursday := day.AddDate(0, 0, 4-weekday)

	yearStart := time.Date(thursday.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	daysSinceJan1 := int(thursday.Sub(yearStart).Hours() / 24)
	week := daysSinceJan1/7 + 1

	return fmt.Sprintf("%d-W%02d", thursday.Year(), week)
}

// CurrentWeekKey is WeekKey for the current instant
func CurrentWeekKey() string {
	return WeekKey(time.Now())
}
