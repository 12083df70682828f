package scheduler

import "time"

// WithinWindow reports whether a submission at now falls inside the capture
// window opened by the last broadcast prompt. False when no prompt has ever
// fired. The boundary is inclusive: a submission exactly window after the
// prompt is accepted.
//
// Pure and safe to call concurrently from any number of submission handlers.
func WithinWindow(now time.Time, lastPrompt *time.Time, window time.Duration) bool {
	if lastPrompt == nil {
		return false
	}
	elapsed := now.Sub(*lastPrompt)
	return elapsed >= 0 && elapsed <= window
}
