package repository

import (
	"fmt"
	"time"

	"momentary/internal/database"
	"momentary/internal/models"
)

// BanRepository handles database operations for banned Telegram ids
type BanRepository struct {
	db *database.DB
}

// NewBanRepository creates a new ban repository
func NewBanRepository(db *database.DB) *BanRepository {
	return &BanRepository{db: db}
}

// Ban adds or updates a ban for a Telegram id
func (r *BanRepository) Ban(telegramID int64, reason string) error {
	query := fmt.Sprintf(`
		INSERT INTO banned_users (telegram_id, reason, created_at)
		VALUES (?, ?, ?)
		%s
	`, r.db.Dialect.UpsertConflictClause("telegram_id", "reason"))

	if _, err := r.db.Exec(query, telegramID, nullString(reason), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to ban user: %w", err)
	}
	return nil
}

// Unban removes a ban; unbanning an unbanned id is a no-op
func (r *BanRepository) Unban(telegramID int64) error {
	if _, err := r.db.Exec("DELETE FROM banned_users WHERE telegram_id = ?", telegramID); err != nil {
		return fmt.Errorf("failed to unban user: %w", err)
	}
	return nil
}

// IsBanned reports whether a Telegram id is banned
func (r *BanRepository) IsBanned(telegramID int64) (bool, error) {
	var count int
	query := "SELECT COUNT(*) FROM banned_users WHERE telegram_id = ?"
	if err := r.db.QueryRow(query, telegramID).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check ban: %w", err)
	}
	return count > 0, nil
}

// GetAll retrieves all bans, newest first
func (r *BanRepository) GetAll() ([]models.BannedUser, error) {
	query := `
		SELECT telegram_id, COALESCE(reason, ''), created_at
		FROM banned_users
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query bans: %w", err)
	}
	defer rows.Close()

	var bans []models.BannedUser
	for rows.Next() {
		var ban models.BannedUser
		if err := rows.Scan(&ban.TelegramID, &ban.Reason, &ban.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ban: %w", err)
		}
		bans = append(bans, ban)
	}

	return bans, rows.Err()
}

// BannedIDs returns the ban set keyed by Telegram id
func (r *BanRepository) BannedIDs() (map[int64]bool, error) {
	bans, err := r.GetAll()
	if err != nil {
		return nil, err
	}
	ids := make(map[int64]bool, len(bans))
	for _, ban := range bans {
		ids[ban.TelegramID] = true
	}
	return ids, nil
}

// Count returns the number of banned ids
func (r *BanRepository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM banned_users").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count bans: %w", err)
	}
	return count, nil
}
