package service

import (
	"errors"
	"fmt"
	"strconv"

	"momentary/internal/repository"
	"momentary/internal/security"
)

var (
	ErrLoginFailed         = errors.New("invalid login assertion")
	ErrBanned              = errors.New("banned from this app")
	ErrRegistrationsClosed = errors.New("registrations are closed")
)

// AuthService turns a verified Telegram login assertion into a session token
type AuthService struct {
	participantRepo *repository.ParticipantRepository
	banRepo         *repository.BanRepository
	settingsRepo    *repository.SettingsRepository
	verifier        *security.LoginVerifier
	signer          *security.SessionSigner
}

// NewAuthService creates a new auth service
func NewAuthService(
	participantRepo *repository.ParticipantRepository,
	banRepo *repository.BanRepository,
	settingsRepo *repository.SettingsRepository,
	verifier *security.LoginVerifier,
	signer *security.SessionSigner,
) *AuthService {
	return &AuthService{
		participantRepo: participantRepo,
		banRepo:         banRepo,
		settingsRepo:    settingsRepo,
		verifier:        verifier,
		signer:          signer,
	}
}

// Login verifies a Telegram Login Widget assertion and mints a session
// token for the asserted user. Unknown users are registered on the fly
// while registrations are open.
func (s *AuthService) Login(params map[string]string) (string, int64, error) {
	claims, ok := s.verifier.Verify(params)
	if !ok {
		return "", 0, ErrLoginFailed
	}

	telegramID, err := strconv.ParseInt(claims["id"], 10, 64)
	if err != nil {
		return "", 0, ErrLoginFailed
	}

	banned, err := s.banRepo.IsBanned(telegramID)
	if err != nil {
		return "", 0, fmt.Errorf("failed to check ban: %w", err)
	}
	if banned {
		return "", 0, ErrBanned
	}

	existing, err := s.participantRepo.GetByTelegramID(telegramID)
	if err != nil {
		return "", 0, fmt.Errorf("failed to look up participant: %w", err)
	}
	if existing == nil {
		open, err := s.settingsRepo.RegistrationsOpen()
		if err != nil {
			return "", 0, fmt.Errorf("failed to check registration state: %w", err)
		}
		if !open {
			return "", 0, ErrRegistrationsClosed
		}
	}

	if _, err := s.participantRepo.Upsert(telegramID, claims["username"]); err != nil {
		return "", 0, fmt.Errorf("failed to register participant: %w", err)
	}

	token, err := s.signer.Issue(telegramID)
	if err != nil {
		return "", 0, err
	}
	return token, telegramID, nil
}

// VerifySession validates a session token and returns the authenticated
// Telegram id
func (s *AuthService) VerifySession(token string) (int64, bool) {
	claims, ok := s.signer.Verify(token)
	if !ok {
		return 0, false
	}
	return claims.TelegramID, true
}
