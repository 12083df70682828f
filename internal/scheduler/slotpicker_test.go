package scheduler

import (
	"math/rand"
	"testing"
	"time"
)

func TestPickPromptTimeIsAlwaysInTheFuture(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	starts := []time.Time{
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 12, 30, 45, 0, time.UTC),
		time.Date(2024, 1, 1, 23, 59, 59, 0, time.UTC),
		time.Date(2024, 6, 15, 6, 0, 0, 0, time.UTC),
	}

	for _, now := range starts {
		for i := 0; i < 200; i++ {
			target := PickPromptTime(now, nil, nil, rng)
			if !target.After(now) {
				t.Fatalf("PickPromptTime(%v) = %v, not in the future", now, target)
			}
		}
	}
}

func TestPickPromptTimeSameDaySchedulesTomorrow(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	now := time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC)
	last := time.Date(2024, 3, 10, 9, 17, 0, 0, time.UTC)

	for i := 0; i < 100; i++ {
		target := PickPromptTime(now, &last, nil, rng)
		if got, want := startOfDay(target), startOfDay(now).AddDate(0, 0, 1); !got.Equal(want) {
			t.Fatalf("target day = %v, want %v (last prompt fired the same day)", got, want)
		}
	}
}

func TestPickPromptTimeDifferentDayCanLandToday(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	// Early morning leaves most of the day available
	now := time.Date(2024, 3, 10, 0, 5, 0, 0, time.UTC)
	last := time.Date(2024, 3, 9, 22, 0, 0, 0, time.UTC)

	sawToday := false
	for i := 0; i < 200; i++ {
		target := PickPromptTime(now, &last, nil, rng)
		if !target.After(now) {
			t.Fatalf("target %v is not after now %v", target, now)
		}
		if startOfDay(target).Equal(startOfDay(now)) {
			sawToday = true
		}
	}
	if !sawToday {
		t.Error("expected at least one same-day target when yesterday's prompt is done")
	}
}

func TestPickPromptTimeHonorsExcludedMinutes(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	now := time.Date(2024, 3, 10, 0, 0, 1, 0, time.UTC)

	// Exclude everything except minute 720
	excluded := make(map[int]bool, minutesPerDay)
	for m := 0; m < minutesPerDay; m++ {
		if m != 720 {
			excluded[m] = true
		}
	}

	for i := 0; i < 50; i++ {
		target := PickPromptTime(now, nil, excluded, rng)
		if got := target.Hour()*60 + target.Minute(); got != 720 {
			t.Fatalf("minute of day = %d, want 720", got)
		}
	}
}

func TestPickPromptTimeSaturatedExclusionFallsBack(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	now := time.Date(2024, 3, 10, 0, 0, 1, 0, time.UTC)

	excluded := make(map[int]bool, minutesPerDay)
	for m := 0; m < minutesPerDay; m++ {
		excluded[m] = true
	}

	target := PickPromptTime(now, nil, excluded, rng)
	if !target.After(now) {
		t.Fatalf("fully excluded set produced non-future target %v", target)
	}
}

func TestPickPromptTimeLateEveningRetry(t *testing.T) {
	// At 23:50 most minutes of the day have passed, so the single
	// next-day retry fires often. The result must still be future-dated
	// either way.
	rng := rand.New(rand.NewSource(12345))
	now := time.Date(2024, 1, 1, 23, 50, 0, 0, time.UTC)

	for i := 0; i < 500; i++ {
		target := PickPromptTime(now, nil, nil, rng)
		if !target.After(now) {
			t.Fatalf("late-evening pick produced non-future target %v", target)
		}
		if target.After(now.AddDate(0, 0, 2)) {
			t.Fatalf("target %v more than two days out", target)
		}
	}
}

func TestPickMinuteUniformCoverage(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	seen := make(map[int]bool)
	for i := 0; i < 20000; i++ {
		m := pickMinute(nil, rng)
		if m < 0 || m >= minutesPerDay {
			t.Fatalf("pickMinute returned out-of-range minute %d", m)
		}
		seen[m] = true
	}
	// With 20k draws over 1440 slots, coverage should be near total
	if len(seen) < 1400 {
		t.Errorf("pickMinute covered only %d of %d minutes", len(seen), minutesPerDay)
	}
}
