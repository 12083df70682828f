package models

import "time"

// PromptHistoryEntry records one fired prompt, keyed by its minute of day.
// The history is only ever read back as an avoidance set of minutes.
type PromptHistoryEntry struct {
	ID          int64
	PromptTime  time.Time
	MinuteOfDay int
}

// MinuteOfDay encodes a UTC instant as minutes since midnight (0..1439)
func MinuteOfDay(t time.Time) int {
	utc := t.UTC()
	return utc.Hour()*60 + utc.Minute()
}
