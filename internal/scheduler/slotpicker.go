package scheduler

import (
	"math/rand"
	"time"
)

const minutesPerDay = 24 * 60

// PickPromptTime selects the next prompt instant after now, in UTC.
//
// The candidate day is today unless the last prompt already fired today,
// in which case it is tomorrow. The minute of day is drawn uniformly from
// {0..1439} minus excludedMinutes; a fully excluded set falls back to the
// unrestricted range. If the picked instant has already passed (today's
// candidate day, earlier minute), the pick is redone once for tomorrow and
// accepted unconditionally. The result is always strictly after now.
func PickPromptTime(now time.Time, lastPrompt *time.Time, excludedMinutes map[int]bool, rng *rand.Rand) time.Time {
	now = now.UTC()
	day := startOfDay(now)
	if lastPrompt != nil && startOfDay(lastPrompt.UTC()).Equal(day) {
		day = day.AddDate(0, 0, 1)
	}

	target := day.Add(time.Duration(pickMinute(excludedMinutes, rng)) * time.Minute)
	if !target.After(now) {
		day = startOfDay(now).AddDate(0, 0, 1)
		target = day.Add(time.Duration(pickMinute(excludedMinutes, rng)) * time.Minute)
	}
	return target
}

// pickMinute draws a uniform minute of day outside the excluded set
func pickMinute(excludedMinutes map[int]bool, rng *rand.Rand) int {
	available := make([]int, 0, minutesPerDay)
	for m := 0; m < minutesPerDay; m++ {
		if !excludedMinutes[m] {
			available = append(available, m)
		}
	}
	if len(available) == 0 {
		// Pathological: every minute excluded. Fall back to the full range.
		return rng.Intn(minutesPerDay)
	}
	return available[rng.Intn(len(available))]
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
