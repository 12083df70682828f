package bot

import (
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{"zero", 0, "0s"},
		{"negative clamps to zero", -5 * time.Second, "0s"},
		{"seconds only", 42 * time.Second, "42s"},
		{"minutes and seconds", 3*time.Minute + 4*time.Second, "3m 4s"},
		{"hours", 2*time.Hour + 30*time.Minute, "2h 30m 0s"},
		{"days", 25*time.Hour + time.Second, "1d 1h 0m 1s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatDuration(tt.d); got != tt.want {
				t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
			}
		})
	}
}

func TestFormatDatetime(t *testing.T) {
	if got := formatDatetime(nil); got != "—" {
		t.Errorf("formatDatetime(nil) = %q, want em dash", got)
	}

	loc := time.FixedZone("CET", 3600)
	local := time.Date(2024, 3, 10, 13, 5, 9, 0, loc)
	if got, want := formatDatetime(&local), "2024-03-10 12:05:09 UTC"; got != want {
		t.Errorf("formatDatetime() = %q, want %q", got, want)
	}
}
