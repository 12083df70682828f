package repository

import (
	"database/sql"
	"fmt"
	"time"

	"momentary/internal/database"
	"momentary/internal/models"
)

// PromptRepository owns the schedule state singletons (last/next prompt)
// and the bounded ring of past prompt minutes
type PromptRepository struct {
	db *database.DB
}

// NewPromptRepository creates a new prompt repository
func NewPromptRepository(db *database.DB) *PromptRepository {
	return &PromptRepository{db: db}
}

// NextPrompt returns the persisted next-prompt instant, or nil if none is set
func (r *PromptRepository) NextPrompt() (*time.Time, error) {
	var next sql.NullTime
	query := "SELECT next_prompt FROM schedule_state WHERE id = 1"
	if err := r.db.QueryRow(query).Scan(&next); err != nil {
		return nil, fmt.Errorf("failed to get next prompt: %w", err)
	}
	if !next.Valid {
		return nil, nil
	}
	t := next.Time.UTC()
	return &t, nil
}

// SetNextPrompt persists the next-prompt instant; nil clears it
func (r *PromptRepository) SetNextPrompt(target *time.Time) error {
	var value sql.NullTime
	if target != nil {
		value = sql.NullTime{Time: target.UTC(), Valid: true}
	}
	query := "UPDATE schedule_state SET next_prompt = ?, updated_at = ? WHERE id = 1"
	if _, err := r.db.Exec(query, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to set next prompt: %w", err)
	}
	return nil
}

// LastPrompt returns the instant of the last broadcast prompt, or nil if
// no prompt has ever fired
func (r *PromptRepository) LastPrompt() (*time.Time, error) {
	var last sql.NullTime
	query := "SELECT last_prompt FROM prompt_state WHERE id = 1"
	if err := r.db.QueryRow(query).Scan(&last); err != nil {
		return nil, fmt.Errorf("failed to get last prompt: %w", err)
	}
	if !last.Valid {
		return nil, nil
	}
	t := last.Time.UTC()
	return &t, nil
}

// SetLastPrompt persists the instant of the just-fired prompt
func (r *PromptRepository) SetLastPrompt(t time.Time) error {
	query := "UPDATE prompt_state SET last_prompt = ? WHERE id = 1"
	if _, err := r.db.Exec(query, t.UTC()); err != nil {
		return fmt.Errorf("failed to set last prompt: %w", err)
	}
	return nil
}

// AddHistory appends a prompt instant to the history, keyed by its minute of day
func (r *PromptRepository) AddHistory(t time.Time) error {
	query := "INSERT INTO prompt_history (prompt_time, minute_of_day) VALUES (?, ?)"
	if _, err := r.db.Exec(query, t.UTC(), models.MinuteOfDay(t)); err != nil {
		return fmt.Errorf("failed to add prompt history: %w", err)
	}
	return nil
}

// RecentMinutes returns up to limit minute-of-day values, most recently
// inserted first
func (r *PromptRepository) RecentMinutes(limit int) ([]int, error) {
	query := `
		SELECT minute_of_day
		FROM prompt_history
		ORDER BY id DESC
		LIMIT ?
	`
	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query prompt history: %w", err)
	}
	defer rows.Close()

	var minutes []int
	for rows.Next() {
		var minute int
		if err := rows.Scan(&minute); err != nil {
			return nil, fmt.Errorf("failed to scan prompt history: %w", err)
		}
		minutes = append(minutes, minute)
	}

	return minutes, rows.Err()
}

// PruneHistory deletes all but the limit most-recently-inserted entries
func (r *PromptRepository) PruneHistory(limit int) error {
	query := `
		DELETE FROM prompt_history
		WHERE id NOT IN (
			SELECT id FROM (
				SELECT id FROM prompt_history ORDER BY id DESC LIMIT ?
			) keep
		)
	`
	if _, err := r.db.Exec(query, limit); err != nil {
		return fmt.Errorf("failed to prune prompt history: %w", err)
	}
	return nil
}

// CountHistory returns the number of retained history entries
func (r *PromptRepository) CountHistory() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM prompt_history").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count prompt history: %w", err)
	}
	return count, nil
}
