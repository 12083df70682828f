package service

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"momentary/internal/database"
)

// BackupData represents the complete database backup structure
type BackupData struct {
	Version           string               `json:"version"`
	ExportedAt        time.Time            `json:"exported_at"`
	RegistrationsOpen bool                 `json:"registrations_open"`
	LastPrompt        *time.Time           `json:"last_prompt"`
	NextPrompt        *time.Time           `json:"next_prompt"`
	Participants      []ParticipantBackup  `json:"participants"`
	Photos            []PhotoBackup        `json:"photos"`
	BannedUsers       []BannedUserBackup   `json:"banned_users"`
	PromptHistory     []HistoryEntryBackup `json:"prompt_history"`
	Accounts          []AccountBackup      `json:"accounts"`
}

// ParticipantBackup represents a participant record for backup
type ParticipantBackup struct {
	ID         int64     `json:"id"`
	TelegramID int64     `json:"telegram_id"`
	Username   string    `json:"username"`
	CreatedAt  time.Time `json:"created_at"`
}

// PhotoBackup represents a photo record for backup
type PhotoBackup struct {
	ID            int64     `json:"id"`
	ParticipantID int64     `json:"participant_id"`
	CapturedAt    time.Time `json:"captured_at"`
	ObjectKey     string    `json:"object_key"`
}

// BannedUserBackup represents a ban record for backup
type BannedUserBackup struct {
	TelegramID int64     `json:"telegram_id"`
	Reason     string    `json:"reason"`
	CreatedAt  time.Time `json:"created_at"`
}

// HistoryEntryBackup represents a prompt history record for backup
type HistoryEntryBackup struct {
	ID          int64     `json:"id"`
	PromptTime  time.Time `json:"prompt_time"`
	MinuteOfDay int       `json:"minute_of_day"`
}

// AccountBackup represents a web account record for backup
type AccountBackup struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	IsAdmin      bool      `json:"is_admin"`
	IsBanned     bool      `json:"is_banned"`
	CreatedAt    time.Time `json:"created_at"`
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// Export creates a complete backup of the database to a file
func (s *BackupService) Export(outputPath string) error {
	log.Println("Starting database export...")

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(file); err != nil {
		return err
	}

	log.Printf("Database exported successfully to %s", outputPath)
	return nil
}

// ExportToWriter exports the database to an io.Writer
func (s *BackupService) ExportToWriter(w io.Writer) error {
	backup := &BackupData{
		Version:    "1.0",
		ExportedAt: time.Now().UTC(),
	}

	if err := s.exportState(backup); err != nil {
		return fmt.Errorf("failed to export state: %w", err)
	}
	if err := s.exportParticipants(backup); err != nil {
		return fmt.Errorf("failed to export participants: %w", err)
	}
	if err := s.exportPhotos(backup); err != nil {
		return fmt.Errorf("failed to export photos: %w", err)
	}
	if err := s.exportBannedUsers(backup); err != nil {
		return fmt.Errorf("failed to export banned users: %w", err)
	}
	if err := s.exportHistory(backup); err != nil {
		return fmt.Errorf("failed to export prompt history: %w", err)
	}
	if err := s.exportAccounts(backup); err != nil {
		return fmt.Errorf("failed to export accounts: %w", err)
	}

	log.Printf("Exported: %d participants, %d photos, %d bans, %d history entries, %d accounts",
		len(backup.Participants), len(backup.Photos), len(backup.BannedUsers),
		len(backup.PromptHistory), len(backup.Accounts))

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(backup)
}

// Import restores a database from a backup file
func (s *BackupService) Import(inputPath string) error {
	log.Printf("Starting database import from %s...", inputPath)

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(file)
}

// ImportFromReader restores a database from a backup reader
func (s *BackupService) ImportFromReader(reader io.Reader) error {
	var backup BackupData
	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}

	log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)

	// Import in order of dependencies
	if err := s.importParticipants(backup.Participants); err != nil {
		return fmt.Errorf("failed to import participants: %w", err)
	}
	if err := s.importPhotos(backup.Photos); err != nil {
		return fmt.Errorf("failed to import photos: %w", err)
	}
	if err := s.importBannedUsers(backup.BannedUsers); err != nil {
		return fmt.Errorf("failed to import banned users: %w", err)
	}
	if err := s.importHistory(backup.PromptHistory); err != nil {
		return fmt.Errorf("failed to import prompt history: %w", err)
	}
	if err := s.importAccounts(backup.Accounts); err != nil {
		return fmt.Errorf("failed to import accounts: %w", err)
	}
	if err := s.importState(&backup); err != nil {
		return fmt.Errorf("failed to import state: %w", err)
	}

	log.Println("Database import completed successfully")
	return nil
}

func (s *BackupService) exportState(backup *BackupData) error {
	var lastPrompt, nextPrompt sql.NullTime
	if err := s.db.QueryRow("SELECT last_prompt FROM prompt_state WHERE id = 1").Scan(&lastPrompt); err != nil && err != sql.ErrNoRows {
		return err
	}
	if err := s.db.QueryRow("SELECT next_prompt FROM schedule_state WHERE id = 1").Scan(&nextPrompt); err != nil && err != sql.ErrNoRows {
		return err
	}
	if lastPrompt.Valid {
		backup.LastPrompt = &lastPrompt.Time
	}
	if nextPrompt.Valid {
		backup.NextPrompt = &nextPrompt.Time
	}

	open := true
	if err := s.db.QueryRow("SELECT registrations_open FROM registration_state WHERE id = 1").Scan(&open); err != nil && err != sql.ErrNoRows {
		return err
	}
	backup.RegistrationsOpen = open
	return nil
}

func (s *BackupService) exportParticipants(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, telegram_id, COALESCE(username, ''), created_at FROM participants ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p ParticipantBackup
		if err := rows.Scan(&p.ID, &p.TelegramID, &p.Username, &p.CreatedAt); err != nil {
			return err
		}
		backup.Participants = append(backup.Participants, p)
	}
	return rows.Err()
}

func (s *BackupService) exportPhotos(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, participant_id, captured_at, object_key FROM photos ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p PhotoBackup
		if err := rows.Scan(&p.ID, &p.ParticipantID, &p.CapturedAt, &p.ObjectKey); err != nil {
			return err
		}
		backup.Photos = append(backup.Photos, p)
	}
	return rows.Err()
}

func (s *BackupService) exportBannedUsers(backup *BackupData) error {
	rows, err := s.db.Query("SELECT telegram_id, COALESCE(reason, ''), created_at FROM banned_users ORDER BY telegram_id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var b BannedUserBackup
		if err := rows.Scan(&b.TelegramID, &b.Reason, &b.CreatedAt); err != nil {
			return err
		}
		backup.BannedUsers = append(backup.BannedUsers, b)
	}
	return rows.Err()
}

func (s *BackupService) exportHistory(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, prompt_time, minute_of_day FROM prompt_history ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var h HistoryEntryBackup
		if err := rows.Scan(&h.ID, &h.PromptTime, &h.MinuteOfDay); err != nil {
			return err
		}
		backup.PromptHistory = append(backup.PromptHistory, h)
	}
	return rows.Err()
}

func (s *BackupService) exportAccounts(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, username, password_hash, is_admin, is_banned, created_at FROM accounts ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var a AccountBackup
		if err := rows.Scan(&a.ID, &a.Username, &a.PasswordHash, &a.IsAdmin, &a.IsBanned, &a.CreatedAt); err != nil {
			return err
		}
		backup.Accounts = append(backup.Accounts, a)
	}
	return rows.Err()
}

func (s *BackupService) importParticipants(participants []ParticipantBackup) error {
	log.Printf("Importing %d participants...", len(participants))
	for _, p := range participants {
		query := "INSERT INTO participants (id, telegram_id, username, created_at) VALUES (?, ?, ?, ?)"
		if _, err := s.db.Exec(query, p.ID, p.TelegramID, nullIfEmpty(p.Username), p.CreatedAt); err != nil {
			return fmt.Errorf("failed to import participant %d: %w", p.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importPhotos(photos []PhotoBackup) error {
	log.Printf("Importing %d photos...", len(photos))
	for _, p := range photos {
		query := "INSERT INTO photos (id, participant_id, captured_at, object_key) VALUES (?, ?, ?, ?)"
		if _, err := s.db.Exec(query, p.ID, p.ParticipantID, p.CapturedAt, p.ObjectKey); err != nil {
			return fmt.Errorf("failed to import photo %d: %w", p.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importBannedUsers(bans []BannedUserBackup) error {
	log.Printf("Importing %d bans...", len(bans))
	for _, b := range bans {
		query := "INSERT INTO banned_users (telegram_id, reason, created_at) VALUES (?, ?, ?)"
		if _, err := s.db.Exec(query, b.TelegramID, nullIfEmpty(b.Reason), b.CreatedAt); err != nil {
			return fmt.Errorf("failed to import ban %d: %w", b.TelegramID, err)
		}
	}
	return nil
}

func (s *BackupService) importHistory(entries []HistoryEntryBackup) error {
	log.Printf("Importing %d history entries...", len(entries))
	for _, h := range entries {
		query := "INSERT INTO prompt_history (id, prompt_time, minute_of_day) VALUES (?, ?, ?)"
		if _, err := s.db.Exec(query, h.ID, h.PromptTime, h.MinuteOfDay); err != nil {
			return fmt.Errorf("failed to import history entry %d: %w", h.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importAccounts(accounts []AccountBackup) error {
	log.Printf("Importing %d accounts...", len(accounts))
	for _, a := range accounts {
		query := "INSERT INTO accounts (id, username, password_hash, is_admin, is_banned, created_at) VALUES (?, ?, ?, ?, ?, ?)"
		if _, err := s.db.Exec(query, a.ID, a.Username, a.PasswordHash, a.IsAdmin, a.IsBanned, a.CreatedAt); err != nil {
			return fmt.Errorf("failed to import account %d: %w", a.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importState(backup *BackupData) error {
	var lastPrompt interface{}
	if backup.LastPrompt != nil {
		lastPrompt = *backup.LastPrompt
	}
	if _, err := s.db.Exec("UPDATE prompt_state SET last_prompt = ? WHERE id = 1", lastPrompt); err != nil {
		return err
	}

	var nextPrompt interface{}
	if backup.NextPrompt != nil {
		nextPrompt = *backup.NextPrompt
	}
	if _, err := s.db.Exec("UPDATE schedule_state SET next_prompt = ? WHERE id = 1", nextPrompt); err != nil {
		return err
	}

	_, err := s.db.Exec("UPDATE registration_state SET registrations_open = ? WHERE id = 1", backup.RegistrationsOpen)
	return err
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
