package repository

import (
	"fmt"
	"time"

	"momentary/internal/database"
)

// SettingsRepository handles the registrations-open singleton
type SettingsRepository struct {
	db *database.DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *database.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// RegistrationsOpen reports whether new registrations are accepted.
// A missing row reads as open, matching the seeded default.
func (r *SettingsRepository) RegistrationsOpen() (bool, error) {
	var open bool
	query := "SELECT registrations_open FROM registration_state WHERE id = 1"
	if err := r.db.QueryRow(query).Scan(&open); err != nil {
		return false, fmt.Errorf("failed to get registration state: %w", err)
	}
	return open, nil
}

// SetRegistrationsOpen toggles whether new registrations are accepted
func (r *SettingsRepository) SetRegistrationsOpen(open bool) error {
	query := "UPDATE registration_state SET registrations_open = ?, updated_at = ? WHERE id = 1"
	if _, err := r.db.Exec(query, open, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to set registration state: %w", err)
	}
	return nil
}
