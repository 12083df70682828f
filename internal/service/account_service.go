package service

import (
	"errors"
	"fmt"

	"momentary/internal/models"
	"momentary/internal/repository"
	"momentary/internal/security"
)

var (
	// ErrUsernameTaken is returned when creating an account with an
	// existing username
	ErrUsernameTaken = errors.New("username is already taken")
	// ErrInvalidCredentials is returned when a username/password pair
	// does not match an account
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// AccountService manages web accounts
type AccountService struct {
	accountRepo *repository.AccountRepository
}

// NewAccountService creates a new account service
func NewAccountService(accountRepo *repository.AccountRepository) *AccountService {
	return &AccountService{accountRepo: accountRepo}
}

// Create registers a new account with a bcrypt-hashed password
func (s *AccountService) Create(username, password string, isAdmin bool) (*models.Account, error) {
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	existing, err := s.accountRepo.GetByUsername(username)
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account, err := s.accountRepo.Create(username, hash, isAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return account, nil
}

// Authenticate checks a username/password pair against stored accounts
func (s *AccountService) Authenticate(username, password string) (*models.Account, error) {
	account, err := s.accountRepo.GetByUsername(username)
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	if account == nil || account.IsBanned {
		return nil, ErrInvalidCredentials
	}
	if !security.CheckPassword(password, account.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return account, nil
}

// SetBanned flips an account's banned flag
func (s *AccountService) SetBanned(accountID int64, banned bool) error {
	return s.accountRepo.SetBanned(accountID, banned)
}

// ListWithPhotoCounts returns all accounts with photo counts
func (s *AccountService) ListWithPhotoCounts() ([]models.AccountWithPhotoCount, error) {
	return s.accountRepo.GetAllWithPhotoCounts()
}
