package models

import "time"

// Photo is one accepted capture-window submission
type Photo struct {
	ID            int64
	ParticipantID int64
	CapturedAt    time.Time
	ObjectKey     string
}
