package models

import "time"

// Participant represents a registered Telegram user
type Participant struct {
	ID         int64
	TelegramID int64
	Username   string
	CreatedAt  time.Time
}

// ParticipantWithPhotoCount is a participant joined with their photo count
type ParticipantWithPhotoCount struct {
	Participant
	PhotoCount int
}

// BannedUser records a Telegram id excluded from prompts and submissions
type BannedUser struct {
	TelegramID int64
	Reason     string
	CreatedAt  time.Time
}
