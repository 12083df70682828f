package scheduler

import (
	"testing"
	"time"
)

func TestWithinWindow(t *testing.T) {
	prompt := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	window := 60 * time.Second

	tests := []struct {
		name       string
		now        time.Time
		lastPrompt *time.Time
		want       bool
	}{
		{
			name:       "no prompt yet",
			now:        prompt,
			lastPrompt: nil,
			want:       false,
		},
		{
			name:       "at the prompt instant",
			now:        prompt,
			lastPrompt: &prompt,
			want:       true,
		},
		{
			name:       "mid window",
			now:        prompt.Add(30 * time.Second),
			lastPrompt: &prompt,
			want:       true,
		},
		{
			name:       "exactly at the boundary",
			now:        prompt.Add(60 * time.Second),
			lastPrompt: &prompt,
			want:       true,
		},
		{
			name:       "one second late",
			now:        prompt.Add(61 * time.Second),
			lastPrompt: &prompt,
			want:       false,
		},
		{
			name:       "before the prompt",
			now:        prompt.Add(-time.Second),
			lastPrompt: &prompt,
			want:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WithinWindow(tt.now, tt.lastPrompt, window); got != tt.want {
				t.Errorf("WithinWindow(%v, %v) = %v, want %v", tt.now, tt.lastPrompt, got, tt.want)
			}
		})
	}
}
