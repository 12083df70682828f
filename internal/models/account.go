package models

import "time"

// Account represents a password-based web account, administered by the owner
type Account struct {
	ID           int64
	Username     string
	PasswordHash string
	IsAdmin      bool
	IsBanned     bool
	CreatedAt    time.Time
}

// AccountWithPhotoCount is an account joined with its photo count
type AccountWithPhotoCount struct {
	Account
	PhotoCount int
}

// AccountPhoto is a photo record owned by a web account
type AccountPhoto struct {
	ID        int64
	AccountID int64
	Timestamp time.Time
	ObjectKey string
}
