package repository

import (
	"fmt"
	"time"

	"momentary/internal/database"
	"momentary/internal/models"
)

// PhotoRepository handles database operations for photo records
type PhotoRepository struct {
	db *database.DB
}

// NewPhotoRepository creates a new photo repository
func NewPhotoRepository(db *database.DB) *PhotoRepository {
	return &PhotoRepository{db: db}
}

// Add records an accepted submission
func (r *PhotoRepository) Add(participantID int64, capturedAt time.Time, objectKey string) (int64, error) {
	query := `
		INSERT INTO photos (participant_id, captured_at, object_key)
		VALUES (?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, participantID, capturedAt.UTC(), objectKey)
	if err != nil {
		return 0, fmt.Errorf("failed to add photo: %w", err)
	}
	return id, nil
}

// ListForParticipant retrieves a participant's photos, newest first
func (r *PhotoRepository) ListForParticipant(participantID int64) ([]models.Photo, error) {
	query := `
		SELECT id, participant_id, captured_at, object_key
		FROM photos
		WHERE participant_id = ?
		ORDER BY captured_at DESC
	`
	rows, err := r.db.Query(query, participantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query photos: %w", err)
	}
	defer rows.Close()

	var photos []models.Photo
	for rows.Next() {
		var photo models.Photo
		if err := rows.Scan(&photo.ID, &photo.ParticipantID, &photo.CapturedAt, &photo.ObjectKey); err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		photos = append(photos, photo)
	}

	return photos, rows.Err()
}

// CountForParticipant returns the number of photos a participant has submitted
func (r *PhotoRepository) CountForParticipant(participantID int64) (int, error) {
	var count int
	query := "SELECT COUNT(*) FROM photos WHERE participant_id = ?"
	if err := r.db.QueryRow(query, participantID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count photos: %w", err)
	}
	return count, nil
}

// CountTotal returns the number of photos across all participants
func (r *PhotoRepository) CountTotal() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM photos").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count photos: %w", err)
	}
	return count, nil
}
