package repository

import (
	"database/sql"
	"fmt"
	"time"

	"momentary/internal/database"
	"momentary/internal/models"
)

// ParticipantRepository handles database operations for registered participants
type ParticipantRepository struct {
	db *database.DB
}

// NewParticipantRepository creates a new participant repository
func NewParticipantRepository(db *database.DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

// Upsert inserts a participant or refreshes the username of an existing one,
// returning the participant's row id
func (r *ParticipantRepository) Upsert(telegramID int64, username string) (int64, error) {
	query := fmt.Sprintf(`
		INSERT INTO participants (telegram_id, username, created_at)
		VALUES (?, ?, ?)
		%s
	`, r.db.Dialect.UpsertConflictClause("telegram_id", "username"))

	if _, err := r.db.Exec(query, telegramID, nullString(username), time.Now().UTC()); err != nil {
		return 0, fmt.Errorf("failed to upsert participant: %w", err)
	}

	var id int64
	err := r.db.QueryRow("SELECT id FROM participants WHERE telegram_id = ?", telegramID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to read participant id: %w", err)
	}
	return id, nil
}

// GetByTelegramID retrieves a participant by Telegram id
func (r *ParticipantRepository) GetByTelegramID(telegramID int64) (*models.Participant, error) {
	query := `
		SELECT id, telegram_id, COALESCE(username, ''), created_at
		FROM participants
		WHERE telegram_id = ?
	`
	participant := &models.Participant{}
	err := r.db.QueryRow(query, telegramID).Scan(
		&participant.ID,
		&participant.TelegramID,
		&participant.Username,
		&participant.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}

	return participant, nil
}

// GetAll retrieves all participants ordered by registration
func (r *ParticipantRepository) GetAll() ([]models.Participant, error) {
	query := `
		SELECT id, telegram_id, COALESCE(username, ''), created_at
		FROM participants
		ORDER BY id
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants: %w", err)
	}
	defer rows.Close()

	var participants []models.Participant
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.ID, &p.TelegramID, &p.Username, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}

	return participants, rows.Err()
}

// GetAllWithPhotoCounts retrieves all participants joined with their photo counts
func (r *ParticipantRepository) GetAllWithPhotoCounts() ([]models.ParticipantWithPhotoCount, error) {
	query := `
		SELECT
			u.id,
			u.telegram_id,
			COALESCE(u.username, ''),
			u.created_at,
			COUNT(p.id) AS photo_count
		FROM participants u
		LEFT JOIN photos p ON p.participant_id = u.id
		GROUP BY u.id, u.telegram_id, u.username, u.created_at
		ORDER BY u.id
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants: %w", err)
	}
	defer rows.Close()

	var participants []models.ParticipantWithPhotoCount
	for rows.Next() {
		var p models.ParticipantWithPhotoCount
		if err := rows.Scan(&p.ID, &p.TelegramID, &p.Username, &p.CreatedAt, &p.PhotoCount); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}

	return participants, rows.Err()
}

// Delete removes a participant and their photo records, reporting whether
// a participant existed
func (r *ParticipantRepository) Delete(telegramID int64) (bool, error) {
	participant, err := r.GetByTelegramID(telegramID)
	if err != nil {
		return false, err
	}
	if participant == nil {
		return false, nil
	}

	if _, err := r.db.Exec("DELETE FROM photos WHERE participant_id = ?", participant.ID); err != nil {
		return false, fmt.Errorf("failed to delete participant photos: %w", err)
	}
	if _, err := r.db.Exec("DELETE FROM participants WHERE id = ?", participant.ID); err != nil {
		return false, fmt.Errorf("failed to delete participant: %w", err)
	}
	return true, nil
}

// Count returns the number of registered participants
func (r *ParticipantRepository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM participants").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count participants: %w", err)
	}
	return count, nil
}

// nullString maps "" to SQL NULL
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
