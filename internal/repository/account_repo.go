package repository

import (
	"database/sql"
	"fmt"
	"time"

	"momentary/internal/database"
	"momentary/internal/models"
)

// AccountRepository handles database operations for password-based web accounts
type AccountRepository struct {
	db *database.DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create inserts a new account
func (r *AccountRepository) Create(username, passwordHash string, isAdmin bool) (*models.Account, error) {
	query := `
		INSERT INTO accounts (username, password_hash, is_admin, is_banned, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	now := time.Now().UTC()
	id, err := r.db.ExecReturningID(query, username, passwordHash, isAdmin, false, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return &models.Account{
		ID:           id,
		Username:     username,
		PasswordHash: passwordHash,
		IsAdmin:      isAdmin,
		CreatedAt:    now,
	}, nil
}

// GetByUsername retrieves an account by username
func (r *AccountRepository) GetByUsername(username string) (*models.Account, error) {
	query := `
		SELECT id, username, password_hash, is_admin, is_banned, created_at
		FROM accounts
		WHERE username = ?
	`
	account := &models.Account{}
	err := r.db.QueryRow(query, username).Scan(
		&account.ID,
		&account.Username,
		&account.PasswordHash,
		&account.IsAdmin,
		&account.IsBanned,
		&account.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return account, nil
}

// SetBanned updates an account's banned flag
func (r *AccountRepository) SetBanned(accountID int64, banned bool) error {
	query := "UPDATE accounts SET is_banned = ? WHERE id = ?"
	if _, err := r.db.Exec(query, banned, accountID); err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	return nil
}

// GetAllWithPhotoCounts retrieves all accounts joined with their photo counts
func (r *AccountRepository) GetAllWithPhotoCounts() ([]models.AccountWithPhotoCount, error) {
	query := `
		SELECT
			a.id,
			a.username,
			a.password_hash,
			a.is_admin,
			a.is_banned,
			a.created_at,
			COUNT(ap.id) AS photo_count
		FROM accounts a
		LEFT JOIN account_photos ap ON ap.account_id = a.id
		GROUP BY a.id, a.username, a.password_hash, a.is_admin, a.is_banned, a.created_at
		ORDER BY a.id
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.AccountWithPhotoCount
	for rows.Next() {
		var a models.AccountWithPhotoCount
		if err := rows.Scan(&a.ID, &a.Username, &a.PasswordHash, &a.IsAdmin, &a.IsBanned, &a.CreatedAt, &a.PhotoCount); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}

	return accounts, rows.Err()
}

// Count returns the number of web accounts
func (r *AccountRepository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM accounts").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count accounts: %w", err)
	}
	return count, nil
}
